package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/odyssey-erp/teamhub/internal/moderation"
	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/platform/ids"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Service handles the company calendar.
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

// CreateEvent adds an event and notifies every attendee except the creator.
// Attendees must be members of the company.
func (s *Service) CreateEvent(ctx context.Context, code, createdBy string, in Input) (Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return Event{}, fmt.Errorf("%w: title required", shared.ErrValidation)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return Event{}, fmt.Errorf("%w: start and end required", shared.ErrValidation)
	}
	if in.EndDate.Before(in.StartDate) {
		return Event{}, fmt.Errorf("%w: event ends before it starts", shared.ErrValidation)
	}
	if in.EventType == "" {
		in.EventType = TypeMeeting
	}
	if _, ok := eventTypes[in.EventType]; !ok {
		return Event{}, fmt.Errorf("%w: unknown event type %q", shared.ErrValidation, in.EventType)
	}
	if err := moderation.CheckAll(in.Title, in.Description); err != nil {
		return Event{}, err
	}
	attendees, err := s.attendees(ctx, code, in.Attendees)
	if err != nil {
		return Event{}, err
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return Event{}, err
	}
	event := Event{
		ID:          ids.New(),
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		StartDate:   in.StartDate.UTC(),
		EndDate:     in.EndDate.UTC(),
		EventType:   in.EventType,
		CreatedBy:   createdBy,
		Attendees:   attendees,
		CreatedAt:   s.now().UTC(),
		Status:      "active",
	}
	all[code] = append(all[code], event)
	if err := s.repo.SaveAll(ctx, all); err != nil {
		return Event{}, err
	}

	for _, attendee := range attendees {
		if attendee == createdBy {
			continue
		}
		if _, err := s.notifier.SendCalendar(ctx, attendee, event.Title, "created", createdBy, notifications.PriorityNormal); err != nil {
			s.logger.Error("calendar: notify attendee", slog.String("to", attendee), slog.Any("error", err))
		}
	}
	return event, nil
}

// Events lists company events sorted by start. When both bounds are set only
// events lying entirely within [from, to] are returned.
func (s *Service) Events(ctx context.Context, code string, from, to time.Time) ([]Event, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(all[code]))
	for _, e := range all[code] {
		if !from.IsZero() && !to.IsZero() && (e.StartDate.Before(from) || e.EndDate.After(to)) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// UserEvents lists the events username created or attends.
func (s *Service) UserEvents(ctx context.Context, code, username string) ([]Event, error) {
	events, err := s.Events(ctx, code, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.involves(username) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Service) attendees(ctx context.Context, code string, requested []string) ([]string, error) {
	out := []string{}
	if len(requested) == 0 {
		return out, nil
	}
	members, err := s.roster.Usernames(ctx, code)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(members))
	for _, m := range members {
		known[m] = struct{}{}
	}
	seen := make(map[string]struct{}, len(requested))
	for _, a := range requested {
		a = strings.TrimSpace(a)
		if _, dup := seen[a]; dup || a == "" {
			continue
		}
		if _, ok := known[a]; !ok {
			return nil, fmt.Errorf("%w: %s is not a member of the company", shared.ErrValidation, a)
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out, nil
}
