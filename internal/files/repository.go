package files

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
)

// Repository persists company files keyed by company code and private files
// keyed by user pair.
type Repository struct {
	store docstore.Store
}

// NewRepository constructs a repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Company returns every company's files.
func (r *Repository) Company(ctx context.Context) (map[string][]File, error) {
	return r.load(ctx, docstore.Files)
}

// SaveCompany replaces the company files document.
func (r *Repository) SaveCompany(ctx context.Context, all map[string][]File) error {
	return r.save(ctx, docstore.Files, all)
}

// Private returns every private file keyed by pair.
func (r *Repository) Private(ctx context.Context) (map[string][]File, error) {
	return r.load(ctx, docstore.PrivateFiles)
}

// SavePrivate replaces the private files document.
func (r *Repository) SavePrivate(ctx context.Context, all map[string][]File) error {
	return r.save(ctx, docstore.PrivateFiles, all)
}

func (r *Repository) load(ctx context.Context, c docstore.Collection) (map[string][]File, error) {
	all, err := docstore.ReadMap[[]File](ctx, r.store, c)
	if err != nil {
		return nil, fmt.Errorf("files: load %s: %w", c, err)
	}
	return all, nil
}

func (r *Repository) save(ctx context.Context, c docstore.Collection, all map[string][]File) error {
	if err := docstore.Write(ctx, r.store, c, all); err != nil {
		return fmt.Errorf("files: save %s: %w", c, err)
	}
	return nil
}
