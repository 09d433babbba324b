package files

import (
	"context"
	"time"

	"github.com/odyssey-erp/teamhub/internal/notifications"
)

// MaxSize is the largest accepted upload in bytes.
const MaxSize = 5 << 20

// File is a stored upload. Content is omitted from listings.
type File struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int       `json:"size"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedTo string    `json:"uploaded_to,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
	Downloads  int       `json:"downloads"`
	Content    []byte    `json:"content,omitempty"`
}

// Shared is a private file seen from one side of the pair.
type Shared struct {
	File
	OtherUser string `json:"other_user"`
}

// Upload carries a new file.
type Upload struct {
	Name    string
	Type    string
	Content []byte
}

// Notifier delivers file notifications.
type Notifier interface {
	SendFile(ctx context.Context, to, fileName, action, from string, priority notifications.Priority) (notifications.Notification, error)
}

// Directory answers company membership questions.
type Directory interface {
	Usernames(ctx context.Context, code string) ([]string, error)
	SameCompany(ctx context.Context, a, b string) (bool, error)
}

func (f File) metadata() File {
	f.Content = nil
	return f
}

func indexOf(list []File, id string) int {
	for i, f := range list {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func metadataOf(list []File) []File {
	out := make([]File, 0, len(list))
	for _, f := range list {
		out = append(out, f.metadata())
	}
	return out
}
