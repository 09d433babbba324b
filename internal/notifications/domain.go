// Package notifications keeps a per-user mailbox of typed, prioritised events
// and alerts the viewing user when one of their own notifications arrives.
package notifications

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Type classifies a notification.
type Type string

// Notification types.
const (
	TypeTask        Type = "task"
	TypeFile        Type = "file"
	TypePoll        Type = "poll"
	TypeCalendar    Type = "calendar"
	TypeChat        Type = "chat"
	TypeProject     Type = "project"
	TypePerformance Type = "performance"
	TypeSuccess     Type = "success"
	TypeWarning     Type = "warning"
	TypeError       Type = "error"
	TypeInfo        Type = "info"
)

// Priority orders how urgently a notification should be read.
type Priority string

// Priorities.
const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Style is how a notification type is presented in an alert.
type Style struct {
	Icon      string `json:"icon"`
	Color     string `json:"color"`
	Frequency int    `json:"frequency"`
}

var styles = map[Type]Style{
	TypeTask:        {Icon: "📋", Color: "#4CAF50", Frequency: 800},
	TypeFile:        {Icon: "📁", Color: "#2196F3", Frequency: 600},
	TypePoll:        {Icon: "📊", Color: "#FF9800", Frequency: 1000},
	TypeCalendar:    {Icon: "📅", Color: "#9C27B0", Frequency: 400},
	TypeChat:        {Icon: "💬", Color: "#00BCD4", Frequency: 1200},
	TypeProject:     {Icon: "📈", Color: "#607D8B", Frequency: 700},
	TypePerformance: {Icon: "📊", Color: "#795548", Frequency: 500},
	TypeSuccess:     {Icon: "✅", Color: "#4CAF50", Frequency: 900},
	TypeWarning:     {Icon: "⚠️", Color: "#FF9800", Frequency: 300},
	TypeError:       {Icon: "❌", Color: "#F44336", Frequency: 200},
	TypeInfo:        {Icon: "ℹ️", Color: "#2196F3", Frequency: 600},
}

var fallbackStyle = Style{Icon: "🔔", Color: "#2196F3", Frequency: 600}

// Meta returns the presentation of a type. Unknown types get the bell.
func Meta(t Type) Style {
	if s, ok := styles[t]; ok {
		return s
	}
	return fallbackStyle
}

// ParseType validates a type name. The empty string means info.
func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	if t == "" {
		return TypeInfo, nil
	}
	if _, ok := styles[t]; !ok {
		return "", fmt.Errorf("%w: unknown notification type %q", shared.ErrValidation, raw)
	}
	return t, nil
}

// ParsePriority validates a priority. The empty string means normal.
func ParsePriority(raw string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PriorityNormal, nil
	case PriorityNormal, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown priority %q", shared.ErrValidation, raw)
	}
}

// Notification is one mailbox entry.
type Notification struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Type         Type      `json:"type"`
	FromUsername string    `json:"from_username,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Read         bool      `json:"read"`
	Priority     Priority  `json:"priority"`
	Timestamp    float64   `json:"timestamp"`
}

// Outgoing describes a notification to deliver.
type Outgoing struct {
	To       string
	Title    string
	Message  string
	Type     Type
	From     string
	Priority Priority
}

// Alert is the payload handed to an Alerter.
type Alert struct {
	NotificationID string    `json:"notification_id"`
	Username       string    `json:"username"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Type           Type      `json:"type"`
	Priority       Priority  `json:"priority"`
	Style          Style     `json:"style"`
	Sound          bool      `json:"sound"`
	CreatedAt      time.Time `json:"created_at"`
}

func newAlert(username string, n Notification, sound bool) Alert {
	return Alert{
		NotificationID: n.ID,
		Username:       username,
		Title:          n.Title,
		Message:        n.Message,
		Type:           n.Type,
		Priority:       n.Priority,
		Style:          Meta(n.Type),
		Sound:          sound,
		CreatedAt:      n.CreatedAt,
	}
}

// Preferences are the recipient's notification switches.
type Preferences struct {
	Enabled bool
	Sound   bool
	Popup   bool
}

// DefaultPreferences has every switch on.
func DefaultPreferences() Preferences {
	return Preferences{Enabled: true, Sound: true, Popup: true}
}

// PreferenceSource reads a user's notification switches.
type PreferenceSource interface {
	Preferences(ctx context.Context, username string) (Preferences, error)
}

// NameResolver turns a username into a display name.
type NameResolver interface {
	FullName(ctx context.Context, username string) string
}

// Alerter delivers an immediate alert to a live viewer.
type Alerter interface {
	Alert(ctx context.Context, alert Alert) error
}

// Recorder counts notification activity. A nil Recorder is allowed.
type Recorder interface {
	CountNotification(notificationType, priority string)
	CountAlert(outcome string)
}

// ShownSet remembers which notifications were already alerted to a viewer.
type ShownSet interface {
	// MarkShown records id and reports whether it was not shown before.
	MarkShown(id string) bool
}

// Viewer is the user looking at the service in the current request.
type Viewer struct {
	Username string
	Shown    ShownSet
}

type viewerContextKey struct{}

// WithViewer attaches the current viewer to ctx.
func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerContextKey{}, v)
}

// ViewerFromContext returns the viewer attached by WithViewer.
func ViewerFromContext(ctx context.Context) (Viewer, bool) {
	v, ok := ctx.Value(viewerContextKey{}).(Viewer)
	return v, ok && v.Username != ""
}

// ShownIDs is a concurrency safe ShownSet.
type ShownIDs struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewShownIDs returns an empty set.
func NewShownIDs() *ShownIDs {
	return &ShownIDs{ids: make(map[string]struct{})}
}

// MarkShown implements ShownSet.
func (s *ShownIDs) MarkShown(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.ids[id]; seen {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Reset forgets every shown id.
func (s *ShownIDs) Reset() {
	s.mu.Lock()
	s.ids = make(map[string]struct{})
	s.mu.Unlock()
}

// Len reports how many ids were shown.
func (s *ShownIDs) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
