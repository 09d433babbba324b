package tasks

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
	"github.com/odyssey-erp/teamhub/internal/users"
)

// Repository reads and writes task lists in per-user documents and task
// comments in the shared comments document.
type Repository struct {
	store docstore.Store
}

// NewRepository constructs a repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Tasks returns the personal tasks of username.
func (r *Repository) Tasks(ctx context.Context, username string) ([]Task, error) {
	return r.list(ctx, username, users.FieldTasks)
}

// Assigned returns the tasks assigned to username.
func (r *Repository) Assigned(ctx context.Context, username string) ([]Task, error) {
	return r.list(ctx, username, users.FieldAssignedTasks)
}

// SaveTasks replaces the personal tasks of username.
func (r *Repository) SaveTasks(ctx context.Context, username string, list []Task) error {
	return r.save(ctx, username, users.FieldTasks, list)
}

// SaveAssigned replaces the assigned tasks of username.
func (r *Repository) SaveAssigned(ctx context.Context, username string, list []Task) error {
	return r.save(ctx, username, users.FieldAssignedTasks, list)
}

// Comments returns every comment thread keyed by task id.
func (r *Repository) Comments(ctx context.Context) (map[string][]Comment, error) {
	all, err := docstore.Read[map[string][]Comment](ctx, r.store, docstore.TaskComments)
	if err != nil {
		return nil, fmt.Errorf("tasks: load comments: %w", err)
	}
	if all == nil {
		all = make(map[string][]Comment)
	}
	return all, nil
}

// SaveComments replaces the comments document.
func (r *Repository) SaveComments(ctx context.Context, all map[string][]Comment) error {
	if err := docstore.Write(ctx, r.store, docstore.TaskComments, all); err != nil {
		return fmt.Errorf("tasks: save comments: %w", err)
	}
	return nil
}

func (r *Repository) list(ctx context.Context, username, field string) ([]Task, error) {
	var list []Task
	if err := docstore.ReadField(ctx, r.store, docstore.UserData(username), field, &list); err != nil {
		return nil, fmt.Errorf("tasks: load %s of %s: %w", field, username, err)
	}
	if list == nil {
		list = []Task{}
	}
	return list, nil
}

func (r *Repository) save(ctx context.Context, username, field string, list []Task) error {
	if err := docstore.WriteField(ctx, r.store, docstore.UserData(username), field, list); err != nil {
		return fmt.Errorf("tasks: save %s of %s: %w", field, username, err)
	}
	return nil
}
