package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

type stubMembership struct {
	codes  map[string]string
	joined map[string][]string
	err    error
}

func (m *stubMembership) DefaultRole(_ context.Context, code string) (string, error) {
	role, ok := m.codes[code]
	if !ok {
		return "", shared.ErrNotFound
	}
	return role, nil
}

func (m *stubMembership) Join(_ context.Context, code string, u User) error {
	if m.err != nil {
		return m.err
	}
	m.joined[code] = append(m.joined[code], u.Username)
	return nil
}

func newTestService(t *testing.T) (*Service, *stubMembership, docstore.Store) {
	t.Helper()
	store := docstore.NewMemory()
	svc := NewService(NewRepository(store), nil, WithHashCost(bcrypt.MinCost))
	m := &stubMembership{codes: map[string]string{"ACME01": "employee"}, joined: map[string][]string{}}
	svc.AttachMembership(m)
	return svc, m, store
}

func TestRegisterPersonal(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Username: "lee", Password: "secret1", Email: "lee@example.com", FullName: "Lee"})
	require.NoError(t, err)
	assert.Equal(t, "personal", u.Role)
	assert.Empty(t, u.CompanyCode)
	assert.True(t, u.Active)
	assert.Nil(t, u.LastLogin)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.NotEmpty(t, u.ID)

	settings, err := svc.Settings(ctx, "lee")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)

	var categories []string
	require.NoError(t, docstore.ReadField(ctx, store, docstore.UserData("lee"), FieldCategories, &categories))
	assert.Equal(t, DefaultCategories, categories)
}

func TestRegisterWithCompanyUsesDefaultRole(t *testing.T) {
	svc, m, _ := newTestService(t)

	u, err := svc.Register(context.Background(), RegisterInput{Username: "bob", Password: "secret1", Email: "bob@example.com", FullName: "Bob", CompanyCode: "acme01"})
	require.NoError(t, err)
	assert.Equal(t, "employee", u.Role)
	assert.Equal(t, "ACME01", u.CompanyCode)
	assert.Equal(t, []string{"bob"}, m.joined["ACME01"])
}

func TestRegisterRejections(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Username: "bob", Password: "secret1", Email: "bob@example.com"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Password: "secret1", Email: "other@example.com"})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Contains(t, err.Error(), "Username already exists!")

	_, err = svc.Register(ctx, RegisterInput{Username: "rob", Password: "secret1", Email: "BOB@example.com"})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Contains(t, err.Error(), "Email already registered!")

	_, err = svc.Register(ctx, RegisterInput{Username: "amy", Password: "12345", Email: "amy@example.com"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Register(ctx, RegisterInput{Username: "amy", Password: "secret1", Email: "amy@example.com", Role: "admin"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Register(ctx, RegisterInput{Username: "amy", Password: "secret1", Email: "amy@example.com", CompanyCode: "NOPE00"})
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Get(ctx, "amy")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRegisterRollsBackWhenJoinFails(t *testing.T) {
	svc, m, _ := newTestService(t)
	m.err = errors.New("companies unavailable")

	_, err := svc.Register(context.Background(), RegisterInput{Username: "bob", Password: "secret1", Email: "bob@example.com", CompanyCode: "ACME01"})
	require.Error(t, err)

	_, err = svc.Get(context.Background(), "bob")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	loginAt := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return loginAt }

	_, err := svc.Register(ctx, RegisterInput{Username: "bob", Password: "secret1", Email: "bob@example.com"})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "bob", "secret1")
	require.NoError(t, err)
	require.NotNil(t, u.LastLogin)
	assert.True(t, loginAt.Equal(*u.LastLogin))

	stored, err := svc.Get(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)

	_, err = svc.Authenticate(ctx, "bob", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody", "secret1")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	require.NoError(t, svc.Deactivate(ctx, "bob"))
	_, err = svc.Authenticate(ctx, "bob", "secret1")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestUpdateSettingsFeedsPreferences(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Username: "bob", Password: "secret1", Email: "bob@example.com", FullName: "Bob Builder"})
	require.NoError(t, err)
	require.NoError(t, docstore.WriteField(ctx, store, docstore.UserData("bob"), FieldTasks, []string{"keep me"}))

	updated := DefaultSettings()
	updated.Theme = "Dark"
	updated.NotificationSound = false
	got, err := svc.UpdateSettings(ctx, "bob", updated)
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)

	prefs, err := svc.Preferences(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, prefs.Enabled)
	assert.False(t, prefs.Sound)
	assert.True(t, prefs.Popup)

	var tasks []string
	require.NoError(t, docstore.ReadField(ctx, store, docstore.UserData("bob"), FieldTasks, &tasks))
	assert.Equal(t, []string{"keep me"}, tasks)

	updated.Theme = "neon"
	_, err = svc.UpdateSettings(ctx, "bob", updated)
	require.ErrorIs(t, err, shared.ErrValidation)

	assert.Equal(t, "Bob Builder", svc.FullName(ctx, "bob"))
	assert.Equal(t, "ghost", svc.FullName(ctx, "ghost"))
}
