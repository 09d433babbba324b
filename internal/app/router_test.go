package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/observability"
	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
	_ "github.com/odyssey-erp/teamhub/internal/testing/guard"
	"github.com/odyssey-erp/teamhub/internal/users"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &Config{
		AppEnv:            "test",
		AppRequestTimeout: 5 * time.Second,
		DocstoreDriver:    DriverMemory,
		SessionSecret:     "router-test-secret",
		SessionTimeout:    48 * time.Hour,
		CORSOrigins:       []string{"http://localhost:3000"},
	}
	metrics := observability.NewMetrics()
	container, err := NewContainer(Deps{
		Config:      cfg,
		Store:       docstore.NewMemory(),
		Alerter:     notifications.NewLogAlerter(nil),
		Metrics:     metrics,
		UserOptions: []users.Option{users.WithHashCost(bcrypt.MinCost)},
	})
	require.NoError(t, err)
	return &testServer{t: t, handler: NewRouter(RouterParams{Config: cfg, Container: container, Metrics: metrics})}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) decode(rr *httptest.ResponseRecorder, dst any) {
	s.t.Helper()
	require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), dst))
}

func (s *testServer) signup(username, code string) string {
	s.t.Helper()
	rr := s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username":     username,
		"password":     "secret1",
		"email":        username + "@example.com",
		"full_name":    strings.ToUpper(username[:1]) + username[1:] + " Doe",
		"company_code": code,
	})
	require.Equal(s.t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.do(http.MethodPost, "/auth/login", "", map[string]string{"username": username, "password": "secret1"})
	require.Equal(s.t, http.StatusOK, rr.Code, rr.Body.String())
	var login struct {
		Token string `json:"token"`
	}
	s.decode(rr, &login)
	require.NotEmpty(s.t, login.Token)
	return login.Token
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "teamhub_http_requests_total")
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/me", "/tasks", "/notifications", "/chat/messages", "/projects"} {
		rr := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
	rr := s.do(http.MethodGet, "/tasks", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCompanyFlowThroughRouter(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("alice", "")

	rr := s.do(http.MethodGet, "/chat/messages", alice, nil)
	require.Equal(t, http.StatusForbidden, rr.Code, "no company yet")

	rr = s.do(http.MethodPost, "/companies", alice, map[string]string{"name": "Acme"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var company struct {
		Code string `json:"code"`
	}
	s.decode(rr, &company)
	require.Len(t, company.Code, 6)

	bob := s.signup("bob", company.Code)

	rr = s.do(http.MethodPost, "/chat/messages", alice, map[string]string{"message": "Standup moved to ten"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.do(http.MethodGet, "/chat/messages", bob, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Standup moved to ten")

	rr = s.do(http.MethodGet, "/notifications", bob, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var inbox struct {
		Notifications []notifications.Notification `json:"notifications"`
	}
	s.decode(rr, &inbox)
	require.Len(t, inbox.Notifications, 1)
	assert.True(t, strings.HasPrefix(inbox.Notifications[0].Title, "New Message from"))

	rr = s.do(http.MethodPost, "/projects", alice, map[string]any{"name": "Apollo", "team_members": []string{"bob"}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.do(http.MethodPost, "/auth/logout", bob, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = s.do(http.MethodGet, "/me", bob, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
