package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/rbac"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Task statuses.
const (
	StatusPending   = "pending"
	StatusAssigned  = "assigned"
	StatusCompleted = "completed"
)

// Task is a personal task or one assigned by another user.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	DueDate     string     `json:"due_date,omitempty"`
	Tags        []string   `json:"tags"`
	Status      string     `json:"status"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	AssignedBy  string     `json:"assigned_by,omitempty"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	Feedback    string     `json:"feedback,omitempty"`
}

// Input describes a new task.
type Input struct {
	Title       string
	Description string
	Category    string
	Priority    string
	DueDate     string
	Tags        []string
}

// Lists holds a user's own and assigned tasks.
type Lists struct {
	Tasks    []Task `json:"tasks"`
	Assigned []Task `json:"assigned_tasks"`
}

// Comment is a note left on a task.
type Comment struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	UserName  string    `json:"user_name"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
	Edited    bool      `json:"edited"`
	Deleted   bool      `json:"deleted"`
}

// DefaultCategory applies when the input names none.
const DefaultCategory = "Work"

// Notifier delivers task notifications.
type Notifier interface {
	SendTask(ctx context.Context, to, taskTitle, action, from string, priority notifications.Priority) (notifications.Notification, error)
}

// Directory resolves actors and company membership.
type Directory interface {
	Actor(ctx context.Context, username string) (rbac.Actor, error)
	SameCompany(ctx context.Context, a, b string) (bool, error)
}

// NameResolver returns display names.
type NameResolver interface {
	FullName(ctx context.Context, username string) string
}

func (in Input) normalize() (Input, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, fmt.Errorf("%w: title required", shared.ErrValidation)
	}
	in.Description = strings.TrimSpace(in.Description)
	if in.Category == "" {
		in.Category = DefaultCategory
	}
	in.Priority = strings.ToLower(strings.TrimSpace(in.Priority))
	switch in.Priority {
	case "":
		in.Priority = "medium"
	case "low", "medium", "high":
	default:
		return in, fmt.Errorf("%w: priority must be low, medium or high", shared.ErrValidation)
	}
	if in.DueDate != "" {
		if _, err := time.Parse(time.DateOnly, in.DueDate); err != nil {
			return in, fmt.Errorf("%w: due date must be YYYY-MM-DD", shared.ErrValidation)
		}
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
	return in, nil
}

func indexOf(list []Task, id string) int {
	for i, t := range list {
		if t.ID == id {
			return i
		}
	}
	return -1
}
