package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

func TestMiddlewareAttachesIdentity(t *testing.T) {
	store := docstore.NewMemory()
	clock := &testClock{now: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)}
	m := newTestManager(t, store, clock)
	token, err := m.Login(context.Background(), "bob", "secret1")
	require.NoError(t, err)

	var (
		username string
		viewer   notifications.Viewer
	)
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, _ = shared.UsernameFromContext(r.Context())
		viewer, _ = notifications.ViewerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.Value)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "bob", username)
	assert.Equal(t, "bob", viewer.Username)
	assert.Same(t, token.Session.Shown, viewer.Shown)

	clock.Advance(40 * time.Hour)
	req = httptest.NewRequest(http.MethodPost, "/tasks", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token.Value})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	clock.Advance(40 * time.Hour)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.Value)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code, "the POST refreshed the session")
}

func TestMiddlewareRejectsMissingAndExpired(t *testing.T) {
	store := docstore.NewMemory()
	clock := &testClock{now: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)}
	m := newTestManager(t, store, clock)
	token, err := m.Login(context.Background(), "bob", "secret1")
	require.NoError(t, err)

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	clock.Advance(49 * time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.Value)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
