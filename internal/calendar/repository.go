package calendar

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
)

// Repository persists events keyed by company code.
type Repository struct {
	store docstore.Store
}

// NewRepository constructs a repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// All returns every company's events.
func (r *Repository) All(ctx context.Context) (map[string][]Event, error) {
	all, err := docstore.ReadMap[[]Event](ctx, r.store, docstore.Calendar)
	if err != nil {
		return nil, fmt.Errorf("calendar: load: %w", err)
	}
	return all, nil
}

// SaveAll replaces the calendar document.
func (r *Repository) SaveAll(ctx context.Context, all map[string][]Event) error {
	if err := docstore.Write(ctx, r.store, docstore.Calendar, all); err != nil {
		return fmt.Errorf("calendar: save: %w", err)
	}
	return nil
}
