package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/platform/httpx"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// CookieName carries the token for browser clients.
const CookieName = "teamhub_session"

type sessionContextKey struct{}
type tokenContextKey struct{}

// FromContext returns the session attached by the middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*Session)
	return sess, ok && sess != nil
}

// TokenFromContext returns the raw token of the current request.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}

// TokenFromRequest reads a bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Middleware validates the session on every request and refreshes it on
// requests that change state. The username and notification viewer are
// attached to the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			httpx.RespondError(w, shared.ErrInvalidCredentials)
			return
		}
		var (
			sess *Session
			err  error
		)
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			sess, err = m.Validate(r.Context(), token)
		default:
			sess, err = m.Refresh(r.Context(), token)
		}
		if err != nil {
			if !errors.Is(err, shared.ErrExpired) && !errors.Is(err, shared.ErrInvalidCredentials) {
				m.logger.Error("session middleware", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithSession(r.Context(), sess, token)))
	})
}

func contextWithSession(ctx context.Context, sess *Session, token string) context.Context {
	ctx = context.WithValue(ctx, sessionContextKey{}, sess)
	ctx = context.WithValue(ctx, tokenContextKey{}, token)
	ctx = shared.ContextWithUsername(ctx, sess.Username)
	return notifications.WithViewer(ctx, sess.Viewer())
}
