package chat

import (
	"context"
	"time"

	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/users"
)

// DefaultLimit caps message listings.
const DefaultLimit = 50

// Message types.
const (
	TypeText = "text"
	TypeCode = "code"
	TypeLink = "link"
)

// Pin scopes.
const (
	ScopeCompany = "company"
	ScopePrivate = "private"
)

// Message is a company or private chat message. Deleted messages stay in the
// document and are hidden from listings.
type Message struct {
	ID           string     `json:"id"`
	FromUsername string     `json:"from_username"`
	FromName     string     `json:"from_name"`
	FromRole     string     `json:"from_role,omitempty"`
	ToUsername   string     `json:"to_username,omitempty"`
	Message      string     `json:"message"`
	MessageType  string     `json:"message_type"`
	Timestamp    time.Time  `json:"timestamp"`
	Read         bool       `json:"read"`
	Edited       bool       `json:"edited"`
	EditedAt     *time.Time `json:"edited_at,omitempty"`
	Deleted      bool       `json:"deleted"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Conversation summarises one private chat from a participant's side.
type Conversation struct {
	OtherUser     string    `json:"other_user"`
	OtherUserName string    `json:"other_user_name"`
	LastMessage   string    `json:"last_message"`
	LastTimestamp time.Time `json:"last_timestamp"`
	UnreadCount   int       `json:"unread_count"`
}

// Pin marks a message as pinned in a company.
type Pin struct {
	ID          string    `json:"id"`
	MessageID   string    `json:"message_id"`
	MessageType string    `json:"message_type"`
	PinnedBy    string    `json:"pinned_by"`
	PinnedAt    time.Time `json:"pinned_at"`
}

// SearchResult is one search hit.
type SearchResult struct {
	Type    string  `json:"type"`
	Message Message `json:"message"`
	Context string  `json:"context"`
}

// Notifier delivers chat notifications.
type Notifier interface {
	SendChat(ctx context.Context, to, senderName, preview string, priority notifications.Priority) (notifications.Notification, error)
}

// Directory answers company membership questions.
type Directory interface {
	Usernames(ctx context.Context, code string) ([]string, error)
	SameCompany(ctx context.Context, a, b string) (bool, error)
}

// People looks up user records.
type People interface {
	Get(ctx context.Context, username string) (users.User, error)
}

func live(list []Message, limit int) []Message {
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := make([]Message, 0, len(list))
	for _, m := range list {
		if !m.Deleted {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func indexOf(list []Message, id string) int {
	for i, m := range list {
		if m.ID == id {
			return i
		}
	}
	return -1
}
