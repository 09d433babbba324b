package companies

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/platform/ids"
	"github.com/odyssey-erp/teamhub/internal/rbac"
	"github.com/odyssey-erp/teamhub/internal/shared"
	"github.com/odyssey-erp/teamhub/internal/users"
)

// Service handles company business logic.
type Service struct {
	repo     *Repository
	users    *users.Repository
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
	newCode  func() string
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCodeGenerator overrides company code generation.
func WithCodeGenerator(gen func() string) Option {
	return func(s *Service) { s.newCode = gen }
}

// NewService builds Service instance.
func NewService(repo *Repository, userRepo *users.Repository, notifier Notifier, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:     repo,
		users:    userRepo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		newCode:  ids.CompanyCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a company with adminUsername as its admin. The admin must
// not belong to another company.
func (s *Service) Create(ctx context.Context, name, description, adminUsername string) (Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Company{}, fmt.Errorf("%w: company name is required", shared.ErrValidation)
	}
	admin, err := s.users.Get(ctx, adminUsername)
	if err != nil {
		return Company{}, err
	}
	if admin.CompanyCode != "" {
		return Company{}, fmt.Errorf("%w: %s already belongs to company %s", shared.ErrAlreadyExists, adminUsername, admin.CompanyCode)
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return Company{}, fmt.Errorf("companies: load: %w", err)
	}
	code := s.newCode()
	for {
		if _, taken := all[code]; !taken {
			break
		}
		code = s.newCode()
	}

	now := s.now().UTC()
	admin.Role = string(rbac.RoleAdmin)
	admin.CompanyCode = code
	company := Company{
		Code:          code,
		Name:          name,
		Description:   strings.TrimSpace(description),
		AdminUsername: admin.Username,
		CreatedAt:     now,
		Employees:     []EmployeeRef{refFor(admin, now)},
		Departments:   append([]string(nil), DefaultDepartments...),
		CustomRoles:   map[string]CustomRole{},
		Settings:      DefaultSettings(),
	}
	all[code] = company
	if err := s.repo.SaveAll(ctx, all); err != nil {
		return Company{}, fmt.Errorf("companies: save: %w", err)
	}
	if err := s.users.Put(ctx, admin); err != nil {
		if rbErr := s.repo.Delete(ctx, code); rbErr != nil {
			s.logger.Error("rollback company", slog.String("code", code), slog.Any("error", rbErr))
		}
		return Company{}, fmt.Errorf("companies: update admin: %w", err)
	}
	s.logger.Info("company created", slog.String("code", code), slog.String("admin", admin.Username))
	return company, nil
}

// DefaultRole returns the role given to users joining code.
func (s *Service) DefaultRole(ctx context.Context, code string) (string, error) {
	company, err := s.repo.Get(ctx, code)
	if err != nil {
		return "", err
	}
	if company.Settings.DefaultEmployeeRole == "" {
		return string(rbac.RoleEmployee), nil
	}
	return company.Settings.DefaultEmployeeRole, nil
}

// Join adds user to the company's employee list.
func (s *Service) Join(ctx context.Context, code string, user users.User) error {
	all, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("companies: load: %w", err)
	}
	company, ok := all[code]
	if !ok {
		return fmt.Errorf("company %q: %w", code, shared.ErrNotFound)
	}
	if !company.Settings.AllowSelfRegistration {
		return fmt.Errorf("%w: company %s does not accept self registration", shared.ErrPermissionDenied, code)
	}
	if company.HasMember(user.Username) {
		return fmt.Errorf("%w: %s is already a member", shared.ErrAlreadyExists, user.Username)
	}
	company.Employees = append(company.Employees, refFor(user, s.now().UTC()))
	all[code] = company
	if err := s.repo.SaveAll(ctx, all); err != nil {
		return fmt.Errorf("companies: save: %w", err)
	}
	return nil
}

// Get returns one company.
func (s *Service) Get(ctx context.Context, code string) (Company, error) {
	return s.repo.Get(ctx, code)
}

// CompanyOf returns the company username belongs to.
func (s *Service) CompanyOf(ctx context.Context, username string) (Company, error) {
	user, err := s.users.Get(ctx, username)
	if err != nil {
		return Company{}, err
	}
	if user.CompanyCode == "" {
		return Company{}, fmt.Errorf("%s has no company: %w", username, shared.ErrNotFound)
	}
	return s.repo.Get(ctx, user.CompanyCode)
}

// Employees lists members with role, name and active flag taken from the
// user records.
func (s *Service) Employees(ctx context.Context, code string) ([]EmployeeRef, error) {
	company, err := s.repo.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	all, err := s.users.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("companies: load users: %w", err)
	}
	out := make([]EmployeeRef, 0, len(company.Employees))
	for _, ref := range company.Employees {
		if u, ok := all[ref.Username]; ok {
			ref.Role = u.Role
			ref.FullName = u.FullName
			ref.Active = u.Active
		}
		out = append(out, ref)
	}
	return out, nil
}

// Usernames lists the usernames of every member.
func (s *Service) Usernames(ctx context.Context, code string) ([]string, error) {
	company, err := s.repo.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(company.Employees))
	for _, ref := range company.Employees {
		out = append(out, ref.Username)
	}
	return out, nil
}

// Actor implements rbac.ActorResolver.
func (s *Service) Actor(ctx context.Context, username string) (rbac.Actor, error) {
	user, err := s.users.Get(ctx, username)
	if err != nil {
		return rbac.Actor{}, err
	}
	actor := rbac.Actor{Username: user.Username, Role: user.Role}
	if user.CompanyCode == "" {
		return actor, nil
	}
	company, err := s.repo.Get(ctx, user.CompanyCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return actor, nil
		}
		return rbac.Actor{}, err
	}
	actor.CompanyAdmin = company.AdminUsername
	return actor, nil
}

// ChangeRole moves target to newRole on behalf of actorUsername. The user
// record is written first, then the employee entry; if the second write fails
// the first is reverted.
func (s *Service) ChangeRole(ctx context.Context, code, target, newRole, actorUsername string) error {
	allUsers, err := s.users.All(ctx)
	if err != nil {
		return fmt.Errorf("companies: load users: %w", err)
	}
	actor, ok := allUsers[actorUsername]
	if !ok {
		return fmt.Errorf("user %q: %w", actorUsername, shared.ErrNotFound)
	}
	targetUser, ok := allUsers[target]
	if !ok {
		return fmt.Errorf("user %q: %w", target, shared.ErrNotFound)
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("companies: load: %w", err)
	}
	company, ok := all[code]
	if !ok {
		return fmt.Errorf("company %q: %w", code, shared.ErrNotFound)
	}
	idx := company.employeeIndex(target)
	if idx < 0 {
		return fmt.Errorf("%s in company %s: %w", target, code, shared.ErrNotFound)
	}

	role := strings.ToLower(strings.TrimSpace(newRole))
	if _, custom := company.CustomRoles[role]; !rbac.IsFixed(role) && !custom {
		return fmt.Errorf("%w: unknown role %q", shared.ErrValidation, newRole)
	}
	if actor.CompanyCode != code || !rbac.CanManageRole(actor.Role, targetUser.Role) {
		return fmt.Errorf("%w: cannot change the role of %s", shared.ErrPermissionDenied, target)
	}

	previousRole := targetUser.Role
	targetUser.Role = role
	allUsers[target] = targetUser
	if err := s.users.SaveAll(ctx, allUsers); err != nil {
		return fmt.Errorf("companies: save user role: %w", err)
	}

	company.Employees[idx].Role = role
	all[code] = company
	if err := s.repo.SaveAll(ctx, all); err != nil {
		s.revertRole(ctx, target, previousRole)
		return fmt.Errorf("companies: save employee role: %w", err)
	}

	s.logger.Info("role changed",
		slog.String("company", code),
		slog.String("target", target),
		slog.String("from", previousRole),
		slog.String("to", role),
		slog.String("actor", actorUsername))

	_, err = s.notifier.Notify(ctx, notifications.Outgoing{
		To:       target,
		Title:    "Role Changed",
		Message:  fmt.Sprintf("Your role has been changed to %s by %s", rbac.DisplayName(role), displayName(actor)),
		Type:     notifications.TypeInfo,
		From:     actorUsername,
		Priority: notifications.PriorityHigh,
	})
	if err != nil {
		return fmt.Errorf("companies: notify role change: %w", err)
	}
	return nil
}

func (s *Service) revertRole(ctx context.Context, username, role string) {
	user, err := s.users.Get(ctx, username)
	if err == nil {
		user.Role = role
		err = s.users.Put(ctx, user)
	}
	if err != nil {
		s.logger.Error("revert role change", slog.String("username", username), slog.Any("error", err))
	}
}

// AddCustomRole defines a company specific role. Only admin, ceo, cfo and
// cto may do so.
func (s *Service) AddCustomRole(ctx context.Context, code, name string, level int, creator string) (CustomRole, error) {
	creatorUser, err := s.users.Get(ctx, creator)
	if err != nil {
		return CustomRole{}, err
	}
	if !rbac.CanCreateCustomRole(creatorUser.Role) || creatorUser.CompanyCode != code {
		return CustomRole{}, fmt.Errorf("%w: only admin, ceo, cfo and cto can add custom roles", shared.ErrPermissionDenied)
	}
	name = strings.TrimSpace(name)
	key := strings.ToLower(name)
	if key == "" {
		return CustomRole{}, fmt.Errorf("%w: role name is required", shared.ErrValidation)
	}
	if level < 1 || level > 9 {
		return CustomRole{}, fmt.Errorf("%w: custom role level must be between 1 and 9", shared.ErrValidation)
	}
	if rbac.IsFixed(key) || key == string(rbac.RolePersonal) {
		return CustomRole{}, fmt.Errorf("%w: %q is a built-in role", shared.ErrAlreadyExists, key)
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return CustomRole{}, fmt.Errorf("companies: load: %w", err)
	}
	company, ok := all[code]
	if !ok {
		return CustomRole{}, fmt.Errorf("company %q: %w", code, shared.ErrNotFound)
	}
	if company.CustomRoles == nil {
		company.CustomRoles = map[string]CustomRole{}
	}
	role := CustomRole{Name: name, Level: level, CreatedBy: creator, CreatedAt: s.now().UTC()}
	company.CustomRoles[key] = role
	all[code] = company
	if err := s.repo.SaveAll(ctx, all); err != nil {
		return CustomRole{}, fmt.Errorf("companies: save: %w", err)
	}
	return role, nil
}

// AddDepartment appends a department name. The actor must be able to
// manage roles in the company.
func (s *Service) AddDepartment(ctx context.Context, code, name, actorUsername string) error {
	actor, err := s.Actor(ctx, actorUsername)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: department name is required", shared.ErrValidation)
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("companies: load: %w", err)
	}
	company, ok := all[code]
	if !ok {
		return fmt.Errorf("company %q: %w", code, shared.ErrNotFound)
	}
	if !company.HasMember(actorUsername) || !(actor.IsCompanyAdmin() || rbac.CanAccessRoleManagement(actor.Role)) {
		return fmt.Errorf("%w: cannot manage departments", shared.ErrPermissionDenied)
	}
	for _, d := range company.Departments {
		if strings.EqualFold(d, name) {
			return fmt.Errorf("%w: department %q", shared.ErrAlreadyExists, name)
		}
	}
	company.Departments = append(company.Departments, name)
	all[code] = company
	return s.repo.SaveAll(ctx, all)
}

func refFor(u users.User, joined time.Time) EmployeeRef {
	return EmployeeRef{
		Username: u.Username,
		UserID:   u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
		JoinedAt: joined,
		Active:   u.Active,
	}
}

func displayName(u users.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
