package polls

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

// Service handles company polls.
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

// Create opens a poll and notifies the other members.
func (s *Service) Create(ctx context.Context, code, createdBy string, in Input) (Poll, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return Poll{}, fmt.Errorf("%w: question required", shared.ErrValidation)
	}
	options := make([]string, 0, len(in.Options))
	for _, o := range in.Options {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}
	if len(options) < 2 {
		return Poll{}, fmt.Errorf("%w: a poll needs at least two options", shared.ErrValidation)
	}
	if in.DurationHours < 0 {
		return Poll{}, fmt.Errorf("%w: duration must be positive", shared.ErrValidation)
	}
	if err := moderation.CheckAll(append([]string{question}, options...)...); err != nil {
		return Poll{}, err
	}
	duration := DefaultDuration
	if in.DurationHours > 0 {
		duration = time.Duration(in.DurationHours) * time.Hour
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return Poll{}, err
	}
	now := s.now().UTC()
	poll := Poll{
		ID:            ids.New(),
		Question:      question,
		Options:       options,
		AllowMultiple: in.AllowMultiple,
		CreatedBy:     createdBy,
		CreatedAt:     now,
		ExpiresAt:     now.Add(duration),
		Votes:         map[string][]int{},
		Status:        StatusActive,
	}
	all[code] = append(all[code], poll)
	if err := s.repo.SaveAll(ctx, all); err != nil {
		return Poll{}, err
	}

	members, err := s.roster.Usernames(ctx, code)
	if err != nil {
		s.logger.Error("polls: list members for notification", slog.String("company", code), slog.Any("error", err))
		return poll, nil
	}
	for _, member := range members {
		if member == createdBy {
			continue
		}
		if _, err := s.notifier.SendPoll(ctx, member, question, "created", createdBy, notifications.PriorityNormal); err != nil {
			s.logger.Error("polls: notify member", slog.String("to", member), slog.Any("error", err))
		}
	}
	return poll, nil
}

// Vote records username's selection. Closed or expired polls return
// shared.ErrExpired, a second vote returns shared.ErrAlreadyExists and an
// invalid selection returns shared.ErrValidation.
func (s *Service) Vote(ctx context.Context, code, pollID, username string, selected []int) (Poll, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return Poll{}, err
	}
	list := all[code]
	i := indexOf(list, pollID)
	if i < 0 {
		return Poll{}, fmt.Errorf("poll %s: %w", pollID, shared.ErrNotFound)
	}
	poll := &list[i]
	if poll.expire(s.now()) {
		if err := s.repo.SaveAll(ctx, all); err != nil {
			return Poll{}, err
		}
	}
	if poll.Status != StatusActive {
		return Poll{}, fmt.Errorf("poll %s is %s: %w", pollID, poll.Status, shared.ErrExpired)
	}
	if _, voted := poll.Votes[username]; voted {
		return Poll{}, fmt.Errorf("%s already voted: %w", username, shared.ErrAlreadyExists)
	}
	if err := validSelection(*poll, selected); err != nil {
		return Poll{}, err
	}
	if poll.Votes == nil {
		poll.Votes = map[string][]int{}
	}
	poll.Votes[username] = append([]int(nil), selected...)
	if err := s.repo.SaveAll(ctx, all); err != nil {
		return Poll{}, err
	}
	return *poll, nil
}

// Close ends a poll early. Only its creator may close it.
func (s *Service) Close(ctx context.Context, code, pollID, username string) (Poll, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return Poll{}, err
	}
	list := all[code]
	i := indexOf(list, pollID)
	if i < 0 {
		return Poll{}, fmt.Errorf("poll %s: %w", pollID, shared.ErrNotFound)
	}
	if list[i].CreatedBy != username {
		return Poll{}, fmt.Errorf("%w: only the creator can close a poll", shared.ErrPermissionDenied)
	}
	if list[i].Status == StatusActive {
		list[i].Status = StatusClosed
		if err := s.repo.SaveAll(ctx, all); err != nil {
			return Poll{}, err
		}
	}
	return list[i], nil
}

// List returns the company's polls, marking those past their deadline as
// expired.
func (s *Service) List(ctx context.Context, code string) ([]Poll, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	list := all[code]
	now := s.now()
	changed := false
	for i := range list {
		if list[i].expire(now) {
			changed = true
		}
	}
	if changed {
		if err := s.repo.SaveAll(ctx, all); err != nil {
			return nil, err
		}
	}
	if list == nil {
		list = []Poll{}
	}
	return list, nil
}

func validSelection(p Poll, selected []int) error {
	if len(selected) == 0 {
		return fmt.Errorf("%w: select at least one option", shared.ErrValidation)
	}
	if len(selected) > 1 && !p.AllowMultiple {
		return fmt.Errorf("%w: this poll allows a single choice", shared.ErrValidation)
	}
	seen := make(map[int]struct{}, len(selected))
	for _, i := range selected {
		if i < 0 || i >= len(p.Options) {
			return fmt.Errorf("%w: option %d does not exist", shared.ErrValidation, i)
		}
		if _, dup := seen[i]; dup {
			return fmt.Errorf("%w: option %d selected twice", shared.ErrValidation, i)
		}
		seen[i] = struct{}{}
	}
	return nil
}

func indexOf(list []Poll, id string) int {
	for i, p := range list {
		if p.ID == id {
			return i
		}
	}
	return -1
}
