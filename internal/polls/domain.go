package polls

import (
	"context"
	"time"

	"github.com/odyssey-erp/teamhub/internal/notifications"
)

// Poll statuses.
const (
	StatusActive  = "active"
	StatusExpired = "expired"
	StatusClosed  = "closed"
)

// DefaultDuration applies when a poll is created without a duration.
const DefaultDuration = 24 * time.Hour

// Poll is a company vote. Votes maps usernames to selected option indexes.
type Poll struct {
	ID            string           `json:"id"`
	Question      string           `json:"question"`
	Options       []string         `json:"options"`
	AllowMultiple bool             `json:"allow_multiple"`
	CreatedBy     string           `json:"created_by"`
	CreatedAt     time.Time        `json:"created_at"`
	ExpiresAt     time.Time        `json:"expires_at"`
	Votes         map[string][]int `json:"votes"`
	Status        string           `json:"status"`
}

// Input describes a new poll. A zero DurationHours means DefaultDuration.
type Input struct {
	Question      string
	Options       []string
	AllowMultiple bool
	DurationHours int
}

// Tally counts the votes per option.
func (p Poll) Tally() []int {
	counts := make([]int, len(p.Options))
	for _, selected := range p.Votes {
		for _, i := range selected {
			if i >= 0 && i < len(counts) {
				counts[i]++
			}
		}
	}
	return counts
}

// expire flips an active poll past its deadline to expired and reports
// whether it changed.
func (p *Poll) expire(now time.Time) bool {
	if p.Status == StatusActive && now.After(p.ExpiresAt) {
		p.Status = StatusExpired
		return true
	}
	return false
}

// Notifier delivers poll notifications.
type Notifier interface {
	SendPoll(ctx context.Context, to, question, action, from string, priority notifications.Priority) (notifications.Notification, error)
}

// Roster lists company members.
type Roster interface {
	Usernames(ctx context.Context, code string) ([]string, error)
}
