package projects

import (
	"context"
	"time"

	"github.com/odyssey-erp/teamhub/internal/notifications"
)

// Project statuses.
const (
	StatusPlanning  = "planning"
	StatusActive    = "active"
	StatusOnHold    = "on_hold"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var statuses = map[string]struct{}{
	StatusPlanning: {}, StatusActive: {}, StatusOnHold: {}, StatusCompleted: {}, StatusCancelled: {},
}

// Project is a company project.
type Project struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	StartDate      string      `json:"start_date"`
	EndDate        string      `json:"end_date"`
	Budget         float64     `json:"budget"`
	ProjectManager string      `json:"project_manager"`
	TeamMembers    []string    `json:"team_members"`
	CreatedBy      string      `json:"created_by"`
	CreatedAt      time.Time   `json:"created_at"`
	Status         string      `json:"status"`
	Progress       int         `json:"progress"`
	Milestones     []Milestone `json:"milestones"`
	UpdatedAt      *time.Time  `json:"updated_at,omitempty"`
	UpdatedBy      string      `json:"updated_by,omitempty"`
}

// Milestone is a dated checkpoint inside a project.
type Milestone struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     string    `json:"due_date"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	Status      string    `json:"status"`
}

// Input describes a new project. Dates are YYYY-MM-DD.
type Input struct {
	Name           string
	Description    string
	StartDate      string
	EndDate        string
	Budget         float64
	ProjectManager string
	TeamMembers    []string
}

// MilestoneInput describes a new milestone.
type MilestoneInput struct {
	Title       string
	Description string
	DueDate     string
}

// Notifier delivers project notifications.
type Notifier interface {
	SendProject(ctx context.Context, to, projectName, action, from string, priority notifications.Priority) (notifications.Notification, error)
}

// Roster lists company members.
type Roster interface {
	Usernames(ctx context.Context, code string) ([]string, error)
}

// involves reports whether username works on the project.
func (p Project) involves(username string) bool {
	if p.CreatedBy == username || p.ProjectManager == username {
		return true
	}
	for _, m := range p.TeamMembers {
		if m == username {
			return true
		}
	}
	return false
}

func clampProgress(p int) int {
	return max(0, min(100, p))
}
