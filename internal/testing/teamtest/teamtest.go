// Package teamtest wires the account services over an in-memory store for
// package tests of the collaboration features.
package teamtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/teamhub/internal/companies"
	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
	_ "github.com/odyssey-erp/teamhub/internal/testing/guard"
	"github.com/odyssey-erp/teamhub/internal/users"
)

// Password is used for every registered test user.
const Password = "secret1"

// Fixture holds the wired services.
type Fixture struct {
	Store         docstore.Store
	UserRepo      *users.Repository
	Users         *users.Service
	Notifications *notifications.Service
	Companies     *companies.Service
}

// New wires the services over store, or over a fresh memory store when
// store is nil.
func New(t testing.TB, store docstore.Store) *Fixture {
	t.Helper()
	if store == nil {
		store = docstore.NewMemory()
	}
	userRepo := users.NewRepository(store)
	userSvc := users.NewService(userRepo, nil, users.WithHashCost(bcrypt.MinCost))
	notif := notifications.NewService(notifications.NewRepository(store), userSvc, userSvc, notifications.NewLogAlerter(nil), nil)
	comp := companies.NewService(companies.NewRepository(store), userRepo, notif, nil)
	userSvc.AttachMembership(comp)
	return &Fixture{Store: store, UserRepo: userRepo, Users: userSvc, Notifications: notif, Companies: comp}
}

// Register creates username, joining code when it is not empty.
func (f *Fixture) Register(t testing.TB, username, code string) users.User {
	t.Helper()
	u, err := f.Users.Register(context.Background(), users.RegisterInput{
		Username:    username,
		Password:    Password,
		Email:       username + "@example.com",
		FullName:    username + " full",
		CompanyCode: code,
	})
	require.NoError(t, err)
	return u
}

// Company registers admin, creates a company owned by them and registers
// each of staff into it as employees.
func (f *Fixture) Company(t testing.TB, admin string, staff ...string) companies.Company {
	t.Helper()
	f.Register(t, admin, "")
	company, err := f.Companies.Create(context.Background(), admin+" inc", "", admin)
	require.NoError(t, err)
	for _, name := range staff {
		f.Register(t, name, company.Code)
	}
	return company
}

// SetRole overwrites the role on the user record.
func (f *Fixture) SetRole(t testing.TB, username, role string) {
	t.Helper()
	ctx := context.Background()
	u, err := f.UserRepo.Get(ctx, username)
	require.NoError(t, err)
	u.Role = role
	require.NoError(t, f.UserRepo.Put(ctx, u))
}

// Mailbox returns the notifications of username.
func (f *Fixture) Mailbox(t testing.TB, username string) []notifications.Notification {
	t.Helper()
	list, err := f.Notifications.Mailbox(context.Background(), username)
	require.NoError(t, err)
	return list
}
