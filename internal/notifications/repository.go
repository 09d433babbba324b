package notifications

import (
	"context"
	"errors"
	"sync"

	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
)

// errNoChange lets an Update callback skip the write without failing.
var errNoChange = errors.New("notifications: no change")

// mailboxes maps a username to their notifications, oldest first.
type mailboxes map[string][]Notification

// Repository stores every mailbox in the notifications document.
type Repository struct {
	store docstore.Store
	// mu serialises read-modify-write cycles issued by this process.
	mu sync.Mutex
}

// NewRepository constructs a Repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Mailbox returns one user's notifications.
func (r *Repository) Mailbox(ctx context.Context, username string) ([]Notification, error) {
	all, err := docstore.Read[mailboxes](ctx, r.store, docstore.Notifications)
	if err != nil {
		return nil, err
	}
	return all[username], nil
}

// All returns every mailbox.
func (r *Repository) All(ctx context.Context) (map[string][]Notification, error) {
	all, err := docstore.Read[mailboxes](ctx, r.store, docstore.Notifications)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = mailboxes{}
	}
	return all, nil
}

// Update loads all mailboxes, applies fn and saves the result. Nothing is
// written when fn fails or returns errNoChange.
func (r *Repository) Update(ctx context.Context, fn func(map[string][]Notification) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.All(ctx)
	if err != nil {
		return err
	}
	if err := fn(all); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	return docstore.Write(ctx, r.store, docstore.Notifications, mailboxes(all))
}
