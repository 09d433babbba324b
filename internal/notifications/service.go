package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/teamhub/internal/platform/ids"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Service appends notifications to mailboxes and alerts live viewers.
type Service struct {
	repo    *Repository
	prefs   PreferenceSource
	names   NameResolver
	alerter Alerter
	metrics Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithRecorder counts notifications and alerts.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs a Service. prefs and names may be nil, in which case
// every switch is on and usernames are shown as-is.
func NewService(repo *Repository, prefs PreferenceSource, names NameResolver, alerter Alerter, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if alerter == nil {
		alerter = NewLogAlerter(logger)
	}
	s := &Service{
		repo:    repo,
		prefs:   prefs,
		names:   names,
		alerter: alerter,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify appends a notification to the recipient's mailbox. A persistence
// failure is returned to the caller. When the recipient is the viewer in ctx
// the alert is delivered before Notify returns.
func (s *Service) Notify(ctx context.Context, out Outgoing) (Notification, error) {
	to := strings.TrimSpace(out.To)
	if to == "" {
		return Notification{}, fmt.Errorf("%w: recipient required", shared.ErrValidation)
	}
	typ, err := ParseType(string(out.Type))
	if err != nil {
		return Notification{}, err
	}
	priority, err := ParsePriority(string(out.Priority))
	if err != nil {
		return Notification{}, err
	}

	now := s.now()
	n := Notification{
		ID:           ids.NewSortable(),
		Title:        out.Title,
		Message:      out.Message,
		Type:         typ,
		FromUsername: out.From,
		CreatedAt:    now.UTC(),
		Read:         false,
		Priority:     priority,
		Timestamp:    float64(now.UnixNano()) / float64(time.Second),
	}
	err = s.repo.Update(ctx, func(all map[string][]Notification) error {
		all[to] = append(all[to], n)
		return nil
	})
	if err != nil {
		return Notification{}, fmt.Errorf("notifications: persist for %s: %w", to, err)
	}
	if s.metrics != nil {
		s.metrics.CountNotification(string(typ), string(priority))
	}

	if viewer, ok := ViewerFromContext(ctx); ok && viewer.Username == to {
		prefs := s.preferences(ctx, to)
		if prefs.Enabled && prefs.Popup && markShown(viewer, n.ID) {
			s.deliver(ctx, newAlert(to, n, prefs.Sound))
		}
	}
	return n, nil
}

// Mailbox returns a user's notifications in insertion order.
func (s *Service) Mailbox(ctx context.Context, username string) ([]Notification, error) {
	list, err := s.repo.Mailbox(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("notifications: mailbox %s: %w", username, err)
	}
	if list == nil {
		list = []Notification{}
	}
	return list, nil
}

// UnreadCount counts unread notifications.
func (s *Service) UnreadCount(ctx context.Context, username string) (int, error) {
	list, err := s.Mailbox(ctx, username)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range list {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead flags one notification as read. Marking an already read or
// unknown notification is a no-op.
func (s *Service) MarkRead(ctx context.Context, username, id string) error {
	return s.repo.Update(ctx, func(all map[string][]Notification) error {
		list := all[username]
		for i := range list {
			if list[i].ID == id {
				if list[i].Read {
					return errNoChange
				}
				list[i].Read = true
				return nil
			}
		}
		return errNoChange
	})
}

// MarkAllRead flags the whole mailbox as read and reports how many changed.
func (s *Service) MarkAllRead(ctx context.Context, username string) (int, error) {
	changed := 0
	err := s.repo.Update(ctx, func(all map[string][]Notification) error {
		list := all[username]
		for i := range list {
			if !list[i].Read {
				list[i].Read = true
				changed++
			}
		}
		return nil
	})
	return changed, err
}

// Delete removes one notification.
func (s *Service) Delete(ctx context.Context, username, id string) error {
	return s.repo.Update(ctx, func(all map[string][]Notification) error {
		list := all[username]
		for i := range list {
			if list[i].ID == id {
				all[username] = append(list[:i], list[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("notification %s: %w", id, shared.ErrNotFound)
	})
}

// ShowPending alerts the viewer of every unread notification not shown to
// them yet. It returns the alerts that were delivered.
func (s *Service) ShowPending(ctx context.Context) ([]Alert, error) {
	viewer, ok := ViewerFromContext(ctx)
	if !ok {
		return nil, nil
	}
	prefs := s.preferences(ctx, viewer.Username)
	if !prefs.Enabled {
		return nil, nil
	}
	list, err := s.Mailbox(ctx, viewer.Username)
	if err != nil {
		return nil, err
	}
	var delivered []Alert
	for _, n := range list {
		if n.Read || !markShown(viewer, n.ID) {
			continue
		}
		if !prefs.Popup {
			continue
		}
		alert := newAlert(viewer.Username, n, prefs.Sound)
		s.deliver(ctx, alert)
		delivered = append(delivered, alert)
	}
	return delivered, nil
}

// PurgeRead drops read notifications created before now minus olderThan and
// returns how many were removed.
func (s *Service) PurgeRead(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)
	removed := 0
	err := s.repo.Update(ctx, func(all map[string][]Notification) error {
		for user, list := range all {
			kept := list[:0]
			for _, n := range list {
				if n.Read && n.CreatedAt.Before(cutoff) {
					removed++
					continue
				}
				kept = append(kept, n)
			}
			all[user] = kept
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("notifications: purge: %w", err)
	}
	return removed, nil
}

func (s *Service) preferences(ctx context.Context, username string) Preferences {
	if s.prefs == nil {
		return DefaultPreferences()
	}
	prefs, err := s.prefs.Preferences(ctx, username)
	if err != nil {
		s.logger.Warn("notification preferences", slog.String("username", username), slog.Any("error", err))
		return DefaultPreferences()
	}
	return prefs
}

func (s *Service) deliver(ctx context.Context, alert Alert) {
	outcome := "delivered"
	if err := s.alerter.Alert(ctx, alert); err != nil {
		outcome = "failed"
		s.logger.Error("deliver alert",
			slog.String("username", alert.Username),
			slog.String("notification_id", alert.NotificationID),
			slog.Any("error", err))
	}
	if s.metrics != nil {
		s.metrics.CountAlert(outcome)
	}
}

func (s *Service) fullName(ctx context.Context, username string) string {
	if s.names == nil {
		return username
	}
	if name := s.names.FullName(ctx, username); name != "" {
		return name
	}
	return username
}

func markShown(v Viewer, id string) bool {
	if v.Shown == nil {
		return true
	}
	return v.Shown.MarkShown(id)
}
