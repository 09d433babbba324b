// Package companies manages company membership, role changes and
// company-scoped configuration.
package companies

import (
	"context"
	"time"

	"github.com/odyssey-erp/teamhub/internal/notifications"
)

// Company is a tenant.
type Company struct {
	Code          string                `json:"code"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	AdminUsername string                `json:"admin_username"`
	CreatedAt     time.Time             `json:"created_at"`
	Employees     []EmployeeRef         `json:"employees"`
	Departments   []string              `json:"departments"`
	CustomRoles   map[string]CustomRole `json:"custom_roles,omitempty"`
	Settings      Settings              `json:"company_settings"`
}

// EmployeeRef is a membership entry. Role and FullName are copies of the user
// record and are refreshed on read by Service.Employees.
type EmployeeRef struct {
	Username string    `json:"username"`
	UserID   string    `json:"user_id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
	Active   bool      `json:"active"`
}

// CustomRole is a company specific role name. Custom roles carry a level for
// display only; authorization treats them as level 0.
type CustomRole struct {
	Name      string    `json:"name"`
	Level     int       `json:"level"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Settings are company wide switches.
type Settings struct {
	AllowSelfRegistration bool   `json:"allow_self_registration"`
	RequireApproval       bool   `json:"require_approval"`
	DefaultEmployeeRole   string `json:"default_employee_role"`
}

// Review is a performance review of one employee.
type Review struct {
	ID               string    `json:"id"`
	EmployeeUsername string    `json:"employee_username"`
	ReviewerUsername string    `json:"reviewer_username"`
	ReviewPeriod     string    `json:"review_period"`
	GoalsAchieved    []string  `json:"goals_achieved"`
	AreasImprovement []string  `json:"areas_improvement"`
	OverallRating    int       `json:"overall_rating"`
	Comments         string    `json:"comments"`
	CreatedAt        time.Time `json:"created_at"`
	Status           string    `json:"status"`
}

// ReviewInput carries a new review.
type ReviewInput struct {
	Employee         string
	ReviewPeriod     string
	GoalsAchieved    []string
	AreasImprovement []string
	OverallRating    int
	Comments         string
}

// DefaultDepartments are created with every company.
var DefaultDepartments = []string{"General", "HR", "IT", "Sales", "Marketing", "Finance"}

// DefaultSettings apply to new companies.
func DefaultSettings() Settings {
	return Settings{
		AllowSelfRegistration: true,
		RequireApproval:       false,
		DefaultEmployeeRole:   "employee",
	}
}

// Notifier is the subset of the notification service companies use.
type Notifier interface {
	Notify(ctx context.Context, out notifications.Outgoing) (notifications.Notification, error)
	SendPerformance(ctx context.Context, to, action, from string, priority notifications.Priority) (notifications.Notification, error)
}

func (c Company) employeeIndex(username string) int {
	for i, e := range c.Employees {
		if e.Username == username {
			return i
		}
	}
	return -1
}

// HasMember reports whether username is on the employee list.
func (c Company) HasMember(username string) bool {
	return c.employeeIndex(username) >= 0
}
