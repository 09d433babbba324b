package users

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Per-user document fields.
const (
	FieldSettings      = "settings"
	FieldCategories    = "categories"
	FieldTasks         = "tasks"
	FieldAssignedTasks = "assigned_tasks"
)

// Repository persists users in the users document, keyed by username, and
// owns the per-user documents.
type Repository struct {
	store docstore.Store
}

// NewRepository constructs a repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// All returns every user keyed by username.
func (r *Repository) All(ctx context.Context) (map[string]User, error) {
	all, err := docstore.Read[map[string]User](ctx, r.store, docstore.Users)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = make(map[string]User)
	}
	return all, nil
}

// SaveAll replaces the users document.
func (r *Repository) SaveAll(ctx context.Context, all map[string]User) error {
	return docstore.Write(ctx, r.store, docstore.Users, all)
}

// Get returns one user.
func (r *Repository) Get(ctx context.Context, username string) (User, error) {
	all, err := r.All(ctx)
	if err != nil {
		return User{}, err
	}
	u, ok := all[username]
	if !ok {
		return User{}, fmt.Errorf("user %q: %w", username, shared.ErrNotFound)
	}
	return u, nil
}

// Put inserts or replaces one user.
func (r *Repository) Put(ctx context.Context, u User) error {
	all, err := r.All(ctx)
	if err != nil {
		return err
	}
	all[u.Username] = u
	return r.SaveAll(ctx, all)
}

// Delete removes a user record. Only registration rollback uses it.
func (r *Repository) Delete(ctx context.Context, username string) error {
	all, err := r.All(ctx)
	if err != nil {
		return err
	}
	delete(all, username)
	return r.SaveAll(ctx, all)
}

// InitUserData writes a fresh per-user document.
func (r *Repository) InitUserData(ctx context.Context, username string) error {
	doc := map[string]any{
		FieldTasks:           []any{},
		"notes":              []any{},
		"contacts":           []any{},
		"goals":              []any{},
		FieldAssignedTasks:   []any{},
		"team_notifications": []any{},
		FieldCategories:      DefaultCategories,
		FieldSettings:        DefaultSettings(),
	}
	return docstore.Write(ctx, r.store, docstore.UserData(username), doc)
}

// Settings reads the settings field, falling back to defaults.
func (r *Repository) Settings(ctx context.Context, username string) (Settings, error) {
	settings := DefaultSettings()
	if err := docstore.ReadField(ctx, r.store, docstore.UserData(username), FieldSettings, &settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// SaveSettings replaces the settings field.
func (r *Repository) SaveSettings(ctx context.Context, username string, settings Settings) error {
	return docstore.WriteField(ctx, r.store, docstore.UserData(username), FieldSettings, settings)
}
