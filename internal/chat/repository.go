package chat

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
)

// Repository persists company chats keyed by company code, private chats
// keyed by pair and pins keyed by company code.
type Repository struct {
	store docstore.Store
}

// NewRepository constructs a repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Company returns every company chat.
func (r *Repository) Company(ctx context.Context) (map[string][]Message, error) {
	return load[[]Message](ctx, r.store, docstore.CompanyChat)
}

// SaveCompany replaces the company chat document.
func (r *Repository) SaveCompany(ctx context.Context, all map[string][]Message) error {
	return save(ctx, r.store, docstore.CompanyChat, all)
}

// Private returns every private chat.
func (r *Repository) Private(ctx context.Context) (map[string][]Message, error) {
	return load[[]Message](ctx, r.store, docstore.PrivateChat)
}

// SavePrivate replaces the private chat document.
func (r *Repository) SavePrivate(ctx context.Context, all map[string][]Message) error {
	return save(ctx, r.store, docstore.PrivateChat, all)
}

// Pins returns every company's pins.
func (r *Repository) Pins(ctx context.Context) (map[string][]Pin, error) {
	return load[[]Pin](ctx, r.store, docstore.Pins)
}

// SavePins replaces the pins document.
func (r *Repository) SavePins(ctx context.Context, all map[string][]Pin) error {
	return save(ctx, r.store, docstore.Pins, all)
}

func load[V any](ctx context.Context, store docstore.Store, c docstore.Collection) (map[string]V, error) {
	all, err := docstore.ReadMap[V](ctx, store, c)
	if err != nil {
		return nil, fmt.Errorf("chat: load %s: %w", c, err)
	}
	return all, nil
}

func save[V any](ctx context.Context, store docstore.Store, c docstore.Collection, all map[string]V) error {
	if err := docstore.Write(ctx, store, c, all); err != nil {
		return fmt.Errorf("chat: save %s: %w", c, err)
	}
	return nil
}
