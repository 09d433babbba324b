package calendar

import (
	"context"
	"time"

	"github.com/odyssey-erp/teamhub/internal/notifications"
)

// Event types.
const (
	TypeMeeting  = "meeting"
	TypeDeadline = "deadline"
	TypeReminder = "reminder"
	TypeHoliday  = "holiday"
	TypeOther    = "other"
)

var eventTypes = map[string]struct{}{
	TypeMeeting: {}, TypeDeadline: {}, TypeReminder: {}, TypeHoliday: {}, TypeOther: {},
}

// Event is a company calendar entry.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	EventType   string    `json:"event_type"`
	CreatedBy   string    `json:"created_by"`
	Attendees   []string  `json:"attendees"`
	CreatedAt   time.Time `json:"created_at"`
	Status      string    `json:"status"`
}

// Input describes a new event.
type Input struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	EventType   string
	Attendees   []string
}

// Notifier delivers calendar notifications.
type Notifier interface {
	SendCalendar(ctx context.Context, to, eventTitle, action, from string, priority notifications.Priority) (notifications.Notification, error)
}

// Roster lists company members.
type Roster interface {
	Usernames(ctx context.Context, code string) ([]string, error)
}

func (e Event) involves(username string) bool {
	if e.CreatedBy == username {
		return true
	}
	for _, a := range e.Attendees {
		if a == username {
			return true
		}
	}
	return false
}
