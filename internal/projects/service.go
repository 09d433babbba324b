package projects

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/teamhub/internal/moderation"
	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/platform/ids"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Service handles company projects.
type Service struct {
	repo     *Repository
	roster   Roster
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds Service instance.
func NewService(repo *Repository, roster Roster, notifier Notifier, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{repo: repo, roster: roster, notifier: notifier, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a project in the planning state and notifies each team
// member except the creator.
func (s *Service) Create(ctx context.Context, code, createdBy string, in Input) (Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Project{}, fmt.Errorf("%w: project name required", shared.ErrValidation)
	}
	if in.Budget < 0 {
		return Project{}, fmt.Errorf("%w: budget cannot be negative", shared.ErrValidation)
	}
	if err := checkDates(in.StartDate, in.EndDate); err != nil {
		return Project{}, err
	}
	if err := moderation.CheckAll(in.Name, in.Description); err != nil {
		return Project{}, err
	}
	team, err := s.members(ctx, code, in.ProjectManager, in.TeamMembers)
	if err != nil {
		return Project{}, err
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return Project{}, err
	}
	project := Project{
		ID:             ids.New(),
		Name:           in.Name,
		Description:    strings.TrimSpace(in.Description),
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		Budget:         in.Budget,
		ProjectManager: in.ProjectManager,
		TeamMembers:    team,
		CreatedBy:      createdBy,
		CreatedAt:      s.now().UTC(),
		Status:         StatusPlanning,
		Milestones:     []Milestone{},
	}
	all[code] = append(all[code], project)
	if err := s.repo.SaveAll(ctx, all); err != nil {
		return Project{}, err
	}
	s.logger.Info("project created", slog.String("company", code), slog.String("project_id", project.ID))

	for _, member := range team {
		if member == createdBy {
			continue
		}
		if _, err := s.notifier.SendProject(ctx, member, project.Name, "assigned", createdBy, notifications.PriorityNormal); err != nil {
			s.logger.Error("projects: notify member", slog.String("to", member), slog.Any("error", err))
		}
	}
	return project, nil
}

// List returns the company's projects.
func (s *Service) List(ctx context.Context, code string) ([]Project, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	out := all[code]
	if out == nil {
		out = []Project{}
	}
	return out, nil
}

// Get returns one project.
func (s *Service) Get(ctx context.Context, code, id string) (Project, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return Project{}, err
	}
	i := indexOf(all[code], id)
	if i < 0 {
		return Project{}, fmt.Errorf("project %s: %w", id, shared.ErrNotFound)
	}
	return all[code][i], nil
}

// UpdateProgress sets progress, clamped to 0..100. Only people working on
// the project may update it.
func (s *Service) UpdateProgress(ctx context.Context, code, id string, progress int, updatedBy string) (Project, error) {
	return s.update(ctx, code, id, updatedBy, func(p *Project) error {
		p.Progress = clampProgress(progress)
		return nil
	})
}

// SetStatus moves the project to another status.
func (s *Service) SetStatus(ctx context.Context, code, id, status, updatedBy string) (Project, error) {
	if _, ok := statuses[status]; !ok {
		return Project{}, fmt.Errorf("%w: unknown project status %q", shared.ErrValidation, status)
	}
	return s.update(ctx, code, id, updatedBy, func(p *Project) error {
		p.Status = status
		return nil
	})
}

// AddMilestone appends a pending milestone.
func (s *Service) AddMilestone(ctx context.Context, code, id, createdBy string, in MilestoneInput) (Milestone, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return Milestone{}, fmt.Errorf("%w: milestone title required", shared.ErrValidation)
	}
	if err := checkDates(in.DueDate, ""); err != nil {
		return Milestone{}, err
	}
	if err := moderation.CheckAll(in.Title, in.Description); err != nil {
		return Milestone{}, err
	}
	m := Milestone{
		ID:          ids.New(),
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate,
		CreatedBy:   createdBy,
		CreatedAt:   s.now().UTC(),
		Status:      "pending",
	}
	_, err := s.update(ctx, code, id, createdBy, func(p *Project) error {
		p.Milestones = append(p.Milestones, m)
		return nil
	})
	if err != nil {
		return Milestone{}, err
	}
	return m, nil
}

func (s *Service) update(ctx context.Context, code, id, username string, mutate func(*Project) error) (Project, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return Project{}, err
	}
	list := all[code]
	i := indexOf(list, id)
	if i < 0 {
		return Project{}, fmt.Errorf("project %s: %w", id, shared.ErrNotFound)
	}
	if !list[i].involves(username) {
		return Project{}, fmt.Errorf("%w: %s is not on project %s", shared.ErrPermissionDenied, username, id)
	}
	if err := mutate(&list[i]); err != nil {
		return Project{}, err
	}
	now := s.now().UTC()
	list[i].UpdatedAt = &now
	list[i].UpdatedBy = username
	if err := s.repo.SaveAll(ctx, all); err != nil {
		return Project{}, err
	}
	return list[i], nil
}

func (s *Service) members(ctx context.Context, code, manager string, requested []string) ([]string, error) {
	roster, err := s.roster.Usernames(ctx, code)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(roster))
	for _, u := range roster {
		known[u] = struct{}{}
	}
	if manager != "" {
		if _, ok := known[manager]; !ok {
			return nil, fmt.Errorf("%w: project manager %s is not a member of the company", shared.ErrValidation, manager)
		}
	}
	out := []string{}
	seen := map[string]struct{}{}
	for _, m := range requested {
		m = strings.TrimSpace(m)
		if _, dup := seen[m]; dup || m == "" {
			continue
		}
		if _, ok := known[m]; !ok {
			return nil, fmt.Errorf("%w: %s is not a member of the company", shared.ErrValidation, m)
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out, nil
}

func checkDates(start, end string) error {
	var s, e time.Time
	var err error
	if start != "" {
		if s, err = time.Parse(time.DateOnly, start); err != nil {
			return fmt.Errorf("%w: dates must be YYYY-MM-DD", shared.ErrValidation)
		}
	}
	if end != "" {
		if e, err = time.Parse(time.DateOnly, end); err != nil {
			return fmt.Errorf("%w: dates must be YYYY-MM-DD", shared.ErrValidation)
		}
	}
	if !s.IsZero() && !e.IsZero() && e.Before(s) {
		return fmt.Errorf("%w: project ends before it starts", shared.ErrValidation)
	}
	return nil
}

func indexOf(list []Project, id string) int {
	for i, p := range list {
		if p.ID == id {
			return i
		}
	}
	return -1
}
