package users

import (
	"context"
	"time"
)

// User is an account record. Users are never deleted, only deactivated.
type User struct {
	ID           string     `json:"user_id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"password_hash"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Role         string     `json:"role"`
	CompanyCode  string     `json:"company_code,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
	Active       bool       `json:"active"`
}

// Profile is the public view of a user.
type Profile struct {
	ID          string     `json:"user_id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	CompanyCode string     `json:"company_code,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	Active      bool       `json:"active"`
}

// Profile strips the password hash.
func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		CompanyCode: u.CompanyCode,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
		Active:      u.Active,
	}
}

// Settings are per-user preferences kept in the user's own document.
type Settings struct {
	Theme             string `json:"theme"`
	Notifications     bool   `json:"notifications"`
	NotificationSound bool   `json:"notification_sound"`
	NotificationPopup bool   `json:"notification_popup"`
	DefaultPriority   string `json:"default_priority"`
	ShowTeamTasks     bool   `json:"show_team_tasks"`
}

// DefaultSettings are written at registration.
func DefaultSettings() Settings {
	return Settings{
		Theme:             "light",
		Notifications:     true,
		NotificationSound: true,
		NotificationPopup: true,
		DefaultPriority:   "medium",
		ShowTeamTasks:     true,
	}
}

// DefaultCategories seed the personal task categories.
var DefaultCategories = []string{"Work", "Personal", "Health", "Learning", "Finance", "Team"}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Username    string
	Password    string
	Email       string
	FullName    string
	Role        string
	CompanyCode string
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Membership attaches new users to an existing company.
type Membership interface {
	// DefaultRole returns the role new members of code receive.
	DefaultRole(ctx context.Context, code string) (string, error)
	// Join appends user to the company's employee list.
	Join(ctx context.Context, code string, user User) error
}
