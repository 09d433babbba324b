package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/teamhub/internal/moderation"
	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/platform/ids"
	"github.com/odyssey-erp/teamhub/internal/rbac"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Service handles personal and assigned tasks.
type Service struct {
	repo      *Repository
	directory Directory
	names     NameResolver
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds Service instance.
func NewService(repo *Repository, directory Directory, names NameResolver, notifier Notifier, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{repo: repo, directory: directory, names: names, notifier: notifier, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create adds a personal task for username.
func (s *Service) Create(ctx context.Context, username string, in Input) (Task, error) {
	in, err := in.normalize()
	if err != nil {
		return Task{}, err
	}
	if err := moderation.CheckAll(in.Title, in.Description); err != nil {
		return Task{}, err
	}
	list, err := s.repo.Tasks(ctx, username)
	if err != nil {
		return Task{}, err
	}
	task := s.newTask(in, StatusPending)
	list = append(list, task)
	if err := s.repo.SaveTasks(ctx, username, list); err != nil {
		return Task{}, err
	}
	return task, nil
}

// List returns the personal and assigned tasks of username.
func (s *Service) List(ctx context.Context, username string) (Lists, error) {
	own, err := s.repo.Tasks(ctx, username)
	if err != nil {
		return Lists{}, err
	}
	assigned, err := s.repo.Assigned(ctx, username)
	if err != nil {
		return Lists{}, err
	}
	return Lists{Tasks: own, Assigned: assigned}, nil
}

// Complete marks a personal or assigned task as done. Completing an assigned
// task notifies whoever assigned it.
func (s *Service) Complete(ctx context.Context, username, id string) (Task, error) {
	own, err := s.repo.Tasks(ctx, username)
	if err != nil {
		return Task{}, err
	}
	if i := indexOf(own, id); i >= 0 {
		s.markDone(&own[i])
		if err := s.repo.SaveTasks(ctx, username, own); err != nil {
			return Task{}, err
		}
		return own[i], nil
	}

	assigned, err := s.repo.Assigned(ctx, username)
	if err != nil {
		return Task{}, err
	}
	i := indexOf(assigned, id)
	if i < 0 {
		return Task{}, fmt.Errorf("task %s: %w", id, shared.ErrNotFound)
	}
	alreadyDone := assigned[i].Completed
	s.markDone(&assigned[i])
	if err := s.repo.SaveAssigned(ctx, username, assigned); err != nil {
		return Task{}, err
	}
	task := assigned[i]
	if !alreadyDone && task.AssignedBy != "" {
		if _, err := s.notifier.SendTask(ctx, task.AssignedBy, task.Title, "completed", username, notifications.PriorityNormal); err != nil {
			return task, fmt.Errorf("tasks: notify completion: %w", err)
		}
	}
	return task, nil
}

// Delete removes a personal task. Assigned tasks cannot be deleted by the
// assignee.
func (s *Service) Delete(ctx context.Context, username, id string) error {
	own, err := s.repo.Tasks(ctx, username)
	if err != nil {
		return err
	}
	i := indexOf(own, id)
	if i < 0 {
		return fmt.Errorf("task %s: %w", id, shared.ErrNotFound)
	}
	own = append(own[:i], own[i+1:]...)
	return s.repo.SaveTasks(ctx, username, own)
}

// Assign gives a task to another user of the same company. The assigner
// needs the assign capability and must outrank the assignee.
func (s *Service) Assign(ctx context.Context, from, to string, in Input) (Task, error) {
	actor, err := s.directory.Actor(ctx, from)
	if err != nil {
		return Task{}, err
	}
	if !rbac.CanAssignTasks(actor) {
		return Task{}, fmt.Errorf("%w: %s cannot assign tasks", shared.ErrPermissionDenied, from)
	}
	target, err := s.directory.Actor(ctx, to)
	if err != nil {
		return Task{}, err
	}
	if !rbac.CanAssignTaskToUser(actor, target) {
		return Task{}, fmt.Errorf("%w: %s cannot assign tasks to %s", shared.ErrPermissionDenied, from, to)
	}
	same, err := s.directory.SameCompany(ctx, from, to)
	if err != nil {
		return Task{}, err
	}
	if !same {
		return Task{}, fmt.Errorf("%w: %s is not in your company", shared.ErrPermissionDenied, to)
	}

	in, err = in.normalize()
	if err != nil {
		return Task{}, err
	}
	if err := moderation.CheckAll(in.Title, in.Description); err != nil {
		return Task{}, err
	}
	assigned, err := s.repo.Assigned(ctx, to)
	if err != nil {
		return Task{}, err
	}
	task := s.newTask(in, StatusAssigned)
	task.AssignedBy = from
	task.AssignedTo = to
	assigned = append(assigned, task)
	if err := s.repo.SaveAssigned(ctx, to, assigned); err != nil {
		return Task{}, err
	}
	s.logger.Info("task assigned", slog.String("from", from), slog.String("to", to), slog.String("task_id", task.ID))

	if _, err := s.notifier.SendTask(ctx, to, task.Title, "assigned", from, notifications.PriorityHigh); err != nil {
		return task, fmt.Errorf("tasks: notify assignment: %w", err)
	}
	return task, nil
}

// AddComment appends a comment to a task thread.
func (s *Service) AddComment(ctx context.Context, taskID, username, text string) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, fmt.Errorf("%w: comment required", shared.ErrValidation)
	}
	if err := moderation.Check(text); err != nil {
		return Comment{}, err
	}
	all, err := s.repo.Comments(ctx)
	if err != nil {
		return Comment{}, err
	}
	c := Comment{
		ID:        ids.New(),
		Username:  username,
		UserName:  s.names.FullName(ctx, username),
		Comment:   text,
		Timestamp: s.now().UTC(),
	}
	all[taskID] = append(all[taskID], c)
	if err := s.repo.SaveComments(ctx, all); err != nil {
		return Comment{}, err
	}
	return c, nil
}

// Comments returns the live comments of a task, oldest first.
func (s *Service) Comments(ctx context.Context, taskID string) ([]Comment, error) {
	all, err := s.repo.Comments(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Comment, 0, len(all[taskID]))
	for _, c := range all[taskID] {
		if !c.Deleted {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) newTask(in Input, status string) Task {
	return Task{
		ID:          ids.New(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Tags:        in.Tags,
		Status:      status,
		CreatedAt:   s.now().UTC(),
	}
}

func (s *Service) markDone(t *Task) {
	if t.Completed {
		return
	}
	done := s.now().UTC()
	t.Completed = true
	t.Status = StatusCompleted
	t.CompletedAt = &done
}
