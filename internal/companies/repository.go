package companies

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Repository stores all companies in the companies document, keyed by code.
type Repository struct {
	store docstore.Store
}

// NewRepository constructs a Repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// All returns every company keyed by code.
func (r *Repository) All(ctx context.Context) (map[string]Company, error) {
	all, err := docstore.Read[map[string]Company](ctx, r.store, docstore.Companies)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = make(map[string]Company)
	}
	return all, nil
}

// SaveAll replaces the companies document.
func (r *Repository) SaveAll(ctx context.Context, all map[string]Company) error {
	return docstore.Write(ctx, r.store, docstore.Companies, all)
}

// Get returns one company.
func (r *Repository) Get(ctx context.Context, code string) (Company, error) {
	all, err := r.All(ctx)
	if err != nil {
		return Company{}, err
	}
	c, ok := all[code]
	if !ok {
		return Company{}, fmt.Errorf("company %q: %w", code, shared.ErrNotFound)
	}
	return c, nil
}

// Put inserts or replaces one company.
func (r *Repository) Put(ctx context.Context, c Company) error {
	all, err := r.All(ctx)
	if err != nil {
		return err
	}
	all[c.Code] = c
	return r.SaveAll(ctx, all)
}

// Delete removes a company. Only creation rollback uses it.
func (r *Repository) Delete(ctx context.Context, code string) error {
	all, err := r.All(ctx)
	if err != nil {
		return err
	}
	delete(all, code)
	return r.SaveAll(ctx, all)
}

// Reviews returns the performance reviews of a company.
func (r *Repository) Reviews(ctx context.Context, code string) ([]Review, error) {
	all, err := docstore.Read[map[string][]Review](ctx, r.store, docstore.Performance)
	if err != nil {
		return nil, err
	}
	return all[code], nil
}

// AppendReview adds a review to a company's list.
func (r *Repository) AppendReview(ctx context.Context, code string, review Review) error {
	all, err := docstore.Read[map[string][]Review](ctx, r.store, docstore.Performance)
	if err != nil {
		return err
	}
	if all == nil {
		all = make(map[string][]Review)
	}
	all[code] = append(all[code], review)
	return docstore.Write(ctx, r.store, docstore.Performance, all)
}
