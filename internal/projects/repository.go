package projects

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
)

// Repository persists projects keyed by company code.
type Repository struct {
	store docstore.Store
}

// NewRepository constructs a repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// All returns every company's projects.
func (r *Repository) All(ctx context.Context) (map[string][]Project, error) {
	all, err := docstore.ReadMap[[]Project](ctx, r.store, docstore.Projects)
	if err != nil {
		return nil, fmt.Errorf("projects: load: %w", err)
	}
	return all, nil
}

// SaveAll replaces the projects document.
func (r *Repository) SaveAll(ctx context.Context, all map[string][]Project) error {
	if err := docstore.Write(ctx, r.store, docstore.Projects, all); err != nil {
		return fmt.Errorf("projects: save: %w", err)
	}
	return nil
}
