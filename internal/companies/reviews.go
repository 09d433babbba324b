package companies

import (
	"context"
	"fmt"
	"strings"

	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/platform/ids"
	"github.com/odyssey-erp/teamhub/internal/rbac"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// SubmitReview records a performance review. The reviewer must outrank the
// employee. Ratings are clamped to 1..5.
func (s *Service) SubmitReview(ctx context.Context, code, reviewer string, in ReviewInput) (Review, error) {
	company, err := s.repo.Get(ctx, code)
	if err != nil {
		return Review{}, err
	}
	if !company.HasMember(in.Employee) || !company.HasMember(reviewer) {
		return Review{}, fmt.Errorf("review participants in %s: %w", code, shared.ErrNotFound)
	}
	reviewerUser, err := s.users.Get(ctx, reviewer)
	if err != nil {
		return Review{}, err
	}
	employee, err := s.users.Get(ctx, in.Employee)
	if err != nil {
		return Review{}, err
	}
	if reviewer == in.Employee || !rbac.CanManageRole(reviewerUser.Role, employee.Role) {
		return Review{}, fmt.Errorf("%w: cannot review %s", shared.ErrPermissionDenied, in.Employee)
	}
	if strings.TrimSpace(in.ReviewPeriod) == "" {
		return Review{}, fmt.Errorf("%w: review period is required", shared.ErrValidation)
	}

	review := Review{
		ID:               ids.New(),
		EmployeeUsername: in.Employee,
		ReviewerUsername: reviewer,
		ReviewPeriod:     strings.TrimSpace(in.ReviewPeriod),
		GoalsAchieved:    nonNil(in.GoalsAchieved),
		AreasImprovement: nonNil(in.AreasImprovement),
		OverallRating:    max(1, min(5, in.OverallRating)),
		Comments:         in.Comments,
		CreatedAt:        s.now().UTC(),
		Status:           "submitted",
	}
	if err := s.repo.AppendReview(ctx, code, review); err != nil {
		return Review{}, fmt.Errorf("companies: save review: %w", err)
	}
	if _, err := s.notifier.SendPerformance(ctx, in.Employee, "submitted", reviewer, notifications.PriorityHigh); err != nil {
		return Review{}, fmt.Errorf("companies: notify review: %w", err)
	}
	return review, nil
}

// Reviews lists the reviews of one employee.
func (s *Service) Reviews(ctx context.Context, code, employee string) ([]Review, error) {
	all, err := s.repo.Reviews(ctx, code)
	if err != nil {
		return nil, err
	}
	out := []Review{}
	for _, r := range all {
		if r.EmployeeUsername == employee {
			out = append(out, r)
		}
	}
	return out, nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
