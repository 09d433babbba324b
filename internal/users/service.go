package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/platform/ids"
	"github.com/odyssey-erp/teamhub/internal/rbac"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// registrationRoles are the roles a user may pick for themselves.
var registrationRoles = map[string]struct{}{
	string(rbac.RolePersonal): {},
	string(rbac.RoleEmployee): {},
	string(rbac.RoleManager):  {},
}

var (
	validThemes     = map[string]struct{}{"light": {}, "dark": {}}
	validPriorities = map[string]struct{}{"low": {}, "medium": {}, "high": {}}
)

// Service handles user business logic.
type Service struct {
	repo       *Repository
	membership Membership
	logger     *slog.Logger
	hashCost   int
	now        func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithHashCost sets the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds Service instance.
func NewService(repo *Repository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{repo: repo, logger: logger, hashCost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AttachMembership connects company membership. Companies are built on top of
// the users repository, so they are attached after construction.
func (s *Service) AttachMembership(m Membership) {
	s.membership = m
}

// Register creates an account and, when a company code is given, joins the
// company.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	code := strings.ToUpper(strings.TrimSpace(in.CompanyCode))
	if username == "" || email == "" {
		return User{}, fmt.Errorf("%w: username and email are required", shared.ErrValidation)
	}
	if len(in.Password) < MinPasswordLength {
		return User{}, fmt.Errorf("%w: Password must be at least %d characters long!", shared.ErrValidation, MinPasswordLength)
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return User{}, fmt.Errorf("users: load: %w", err)
	}
	if _, taken := all[username]; taken {
		return User{}, fmt.Errorf("%w: Username already exists!", shared.ErrValidation)
	}
	for _, existing := range all {
		if strings.EqualFold(existing.Email, email) {
			return User{}, fmt.Errorf("%w: Email already registered!", shared.ErrValidation)
		}
	}

	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role != "" {
		if _, ok := registrationRoles[role]; !ok {
			return User{}, fmt.Errorf("%w: role %q cannot be chosen at registration", shared.ErrValidation, role)
		}
	}
	if code != "" {
		if s.membership == nil {
			return User{}, errors.New("users: company membership is not configured")
		}
		defaultRole, err := s.membership.DefaultRole(ctx, code)
		if err != nil {
			return User{}, fmt.Errorf("invalid company code %s: %w", code, err)
		}
		if role == "" {
			role = defaultRole
		}
	}
	if role == "" {
		role = string(rbac.RolePersonal)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}
	user := User{
		ID:           ids.New(),
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		Role:         role,
		CompanyCode:  code,
		CreatedAt:    s.now().UTC(),
		Active:       true,
	}
	if user.FullName == "" {
		user.FullName = username
	}

	all[username] = user
	if err := s.repo.SaveAll(ctx, all); err != nil {
		return User{}, fmt.Errorf("users: save: %w", err)
	}
	if err := s.repo.InitUserData(ctx, username); err != nil {
		s.rollback(ctx, username)
		return User{}, fmt.Errorf("users: init data: %w", err)
	}
	if code != "" {
		if err := s.membership.Join(ctx, code, user); err != nil {
			s.rollback(ctx, username)
			return User{}, fmt.Errorf("users: join %s: %w", code, err)
		}
	}
	s.logger.Info("user registered", slog.String("username", username), slog.String("role", role), slog.String("company", code))
	return user, nil
}

func (s *Service) rollback(ctx context.Context, username string) {
	if err := s.repo.Delete(ctx, username); err != nil {
		s.logger.Error("rollback registration", slog.String("username", username), slog.Any("error", err))
	}
}

// Authenticate validates credentials and stamps last_login.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, err := s.repo.Get(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, shared.ErrInvalidCredentials
		}
		return User{}, err
	}
	if !user.Active {
		return User{}, fmt.Errorf("account is deactivated: %w", shared.ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	now := s.now().UTC()
	user.LastLogin = &now
	if err := s.repo.Put(ctx, user); err != nil {
		return User{}, fmt.Errorf("users: stamp login: %w", err)
	}
	return user, nil
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, username string) (User, error) {
	return s.repo.Get(ctx, username)
}

// Deactivate disables login for a user.
func (s *Service) Deactivate(ctx context.Context, username string) error {
	user, err := s.repo.Get(ctx, username)
	if err != nil {
		return err
	}
	user.Active = false
	return s.repo.Put(ctx, user)
}

// Settings returns the user's settings.
func (s *Service) Settings(ctx context.Context, username string) (Settings, error) {
	return s.repo.Settings(ctx, username)
}

// UpdateSettings validates and stores settings.
func (s *Service) UpdateSettings(ctx context.Context, username string, settings Settings) (Settings, error) {
	if _, err := s.repo.Get(ctx, username); err != nil {
		return Settings{}, err
	}
	settings.Theme = strings.ToLower(strings.TrimSpace(settings.Theme))
	settings.DefaultPriority = strings.ToLower(strings.TrimSpace(settings.DefaultPriority))
	if _, ok := validThemes[settings.Theme]; !ok {
		return Settings{}, fmt.Errorf("%w: unknown theme %q", shared.ErrValidation, settings.Theme)
	}
	if _, ok := validPriorities[settings.DefaultPriority]; !ok {
		return Settings{}, fmt.Errorf("%w: unknown priority %q", shared.ErrValidation, settings.DefaultPriority)
	}
	if err := s.repo.SaveSettings(ctx, username, settings); err != nil {
		return Settings{}, fmt.Errorf("users: save settings: %w", err)
	}
	return settings, nil
}

// Preferences implements notifications.PreferenceSource.
func (s *Service) Preferences(ctx context.Context, username string) (notifications.Preferences, error) {
	settings, err := s.repo.Settings(ctx, username)
	if err != nil {
		return notifications.Preferences{}, err
	}
	return notifications.Preferences{
		Enabled: settings.Notifications,
		Sound:   settings.NotificationSound,
		Popup:   settings.NotificationPopup,
	}, nil
}

// FullName implements notifications.NameResolver. Unknown users are shown by
// username.
func (s *Service) FullName(ctx context.Context, username string) string {
	user, err := s.repo.Get(ctx, username)
	if err != nil || user.FullName == "" {
		return username
	}
	return user.FullName
}
