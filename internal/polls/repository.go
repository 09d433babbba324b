package polls

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
)

// Repository persists polls keyed by company code.
type Repository struct {
	store docstore.Store
}

// NewRepository constructs a repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// All returns every company's polls.
func (r *Repository) All(ctx context.Context) (map[string][]Poll, error) {
	all, err := docstore.ReadMap[[]Poll](ctx, r.store, docstore.Polls)
	if err != nil {
		return nil, fmt.Errorf("polls: load: %w", err)
	}
	return all, nil
}

// SaveAll replaces the polls document.
func (r *Repository) SaveAll(ctx context.Context, all map[string][]Poll) error {
	if err := docstore.Write(ctx, r.store, docstore.Polls, all); err != nil {
		return fmt.Errorf("polls: save: %w", err)
	}
	return nil
}
