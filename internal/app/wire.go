package app

import (
	"errors"
	"log/slog"

	"github.com/odyssey-erp/teamhub/internal/calendar"
	"github.com/odyssey-erp/teamhub/internal/chat"
	"github.com/odyssey-erp/teamhub/internal/companies"
	"github.com/odyssey-erp/teamhub/internal/files"
	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/observability"
	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
	"github.com/odyssey-erp/teamhub/internal/polls"
	"github.com/odyssey-erp/teamhub/internal/projects"
	"github.com/odyssey-erp/teamhub/internal/rbac"
	"github.com/odyssey-erp/teamhub/internal/session"
	"github.com/odyssey-erp/teamhub/internal/tasks"
	"github.com/odyssey-erp/teamhub/internal/users"
)

// Deps are the infrastructure pieces a Container is built from.
type Deps struct {
	Config  *Config
	Logger  *slog.Logger
	Store   docstore.Store
	Alerter notifications.Alerter
	Metrics *observability.Metrics
	// UserOptions customise the users service, e.g. a cheaper hash cost in
	// tests.
	UserOptions []users.Option
}

// Container holds the wired services.
type Container struct {
	Users         *users.Service
	Notifications *notifications.Service
	Companies     *companies.Service
	Sessions      *session.Manager
	RBAC          rbac.Middleware
	Tasks         *tasks.Service
	Chat          *chat.Service
	Files         *files.Service
	Calendar      *calendar.Service
	Polls         *polls.Service
	Projects      *projects.Service
}

// NewContainer wires every service over the shared document store.
func NewContainer(d Deps) (*Container, error) {
	if d.Config == nil || d.Store == nil {
		return nil, errors.New("app: config and store are required")
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	userRepo := users.NewRepository(d.Store)
	usersSvc := users.NewService(userRepo, logger, d.UserOptions...)

	var notifOpts []notifications.Option
	if d.Metrics != nil {
		notifOpts = append(notifOpts, notifications.WithRecorder(d.Metrics))
	}
	notif := notifications.NewService(notifications.NewRepository(d.Store), usersSvc, usersSvc, d.Alerter, logger, notifOpts...)

	companiesSvc := companies.NewService(companies.NewRepository(d.Store), userRepo, notif, logger)
	usersSvc.AttachMembership(companiesSvc)

	signer, err := session.NewSigner(d.Config.SessionSecret)
	if err != nil {
		return nil, err
	}
	sessions := session.NewManager(d.Store, usersSvc, signer, logger, session.WithTimeout(d.Config.SessionTimeout))

	return &Container{
		Users:         usersSvc,
		Notifications: notif,
		Companies:     companiesSvc,
		Sessions:      sessions,
		RBAC:          rbac.Middleware{Resolver: companiesSvc, Logger: logger},
		Tasks:         tasks.NewService(tasks.NewRepository(d.Store), companiesSvc, usersSvc, notif, logger),
		Chat:          chat.NewService(chat.NewRepository(d.Store), companiesSvc, usersSvc, notif, logger),
		Files:         files.NewService(files.NewRepository(d.Store), companiesSvc, notif, logger),
		Calendar:      calendar.NewService(calendar.NewRepository(d.Store), companiesSvc, notif, logger),
		Polls:         polls.NewService(polls.NewRepository(d.Store), companiesSvc, notif, logger),
		Projects:      projects.NewService(projects.NewRepository(d.Store), companiesSvc, notif, logger),
	}, nil
}
