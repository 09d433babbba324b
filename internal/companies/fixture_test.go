package companies

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
	"github.com/odyssey-erp/teamhub/internal/users"
)

type fixture struct {
	store         docstore.Store
	userRepo      *users.Repository
	users         *users.Service
	notifications *notifications.Service
	companies     *Service
}

func newFixture(t *testing.T, store docstore.Store) *fixture {
	t.Helper()
	userRepo := users.NewRepository(store)
	userSvc := users.NewService(userRepo, nil, users.WithHashCost(bcrypt.MinCost))
	notif := notifications.NewService(notifications.NewRepository(store), userSvc, userSvc, notifications.NewLogAlerter(nil), nil)
	comp := NewService(NewRepository(store), userRepo, notif, nil)
	userSvc.AttachMembership(comp)
	return &fixture{store: store, userRepo: userRepo, users: userSvc, notifications: notif, companies: comp}
}

func (f *fixture) register(t *testing.T, username, code string) users.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), users.RegisterInput{
		Username:    username,
		Password:    "secret1",
		Email:       username + "@example.com",
		FullName:    username + " full",
		CompanyCode: code,
	})
	require.NoError(t, err)
	return u
}

// companyWithStaff creates a company owned by "alice" and registers each of
// staff into it.
func (f *fixture) companyWithStaff(t *testing.T, staff ...string) Company {
	t.Helper()
	f.register(t, "alice", "")
	company, err := f.companies.Create(context.Background(), "Acme", "Widgets", "alice")
	require.NoError(t, err)
	for _, name := range staff {
		f.register(t, name, company.Code)
	}
	return company
}

// setRole writes a role straight into both records.
func (f *fixture) setRole(t *testing.T, code, username, role string) {
	t.Helper()
	ctx := context.Background()
	u, err := f.userRepo.Get(ctx, username)
	require.NoError(t, err)
	u.Role = role
	require.NoError(t, f.userRepo.Put(ctx, u))

	repo := NewRepository(f.store)
	c, err := repo.Get(ctx, code)
	require.NoError(t, err)
	c.Employees[c.employeeIndex(username)].Role = role
	require.NoError(t, repo.Put(ctx, c))
}

// flakyStore fails saves to one collection while failing is set.
type flakyStore struct {
	docstore.Store
	collection docstore.Collection
	failing    atomic.Bool
}

func (f *flakyStore) Save(ctx context.Context, c docstore.Collection, doc []byte) error {
	if c == f.collection && f.failing.Load() {
		return errors.New("write failed")
	}
	return f.Store.Save(ctx, c, doc)
}

// gatedStore holds every Load of one collection until release is closed, so
// concurrent callers observe the same version of the document.
type gatedStore struct {
	docstore.Store
	collection docstore.Collection
	armed      atomic.Bool
	arrived    chan struct{}
	release    chan struct{}
	once       sync.Once
}

func newGatedStore(inner docstore.Store, c docstore.Collection) *gatedStore {
	return &gatedStore{Store: inner, collection: c, arrived: make(chan struct{}, 16), release: make(chan struct{})}
}

func (g *gatedStore) Load(ctx context.Context, c docstore.Collection) ([]byte, error) {
	doc, err := g.Store.Load(ctx, c)
	if c == g.collection && g.armed.Load() {
		g.arrived <- struct{}{}
		<-g.release
	}
	return doc, err
}

func (g *gatedStore) open() {
	g.armed.Store(false)
	g.once.Do(func() { close(g.release) })
}
