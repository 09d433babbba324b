package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/teamhub/internal/platform/httpx"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	manager   *Manager
	secure    bool
	validator *validator.Validate
}

// NewHandler constructs a Handler instance. secure marks the session cookie
// as HTTPS only.
func NewHandler(logger *slog.Logger, manager *Manager, secure bool) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, manager: manager, secure: secure, validator: validator.New()}
}

// MountPublicRoutes registers routes reachable without a session.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

// MountRoutes registers routes that need a session.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/logout", h.handleLogout)
	r.Get("/session", h.current)
	r.Put("/session/page", h.setPage)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token       string    `json:"token"`
	Username    string    `json:"username"`
	CurrentPage string    `json:"current_page"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	token, err := h.manager.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Warn("login failed", slog.String("username", req.Username), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token.Value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.manager.Timeout().Seconds()),
	})
	httpx.JSON(w, http.StatusOK, loginResponse{
		Token:       token.Value,
		Username:    token.Session.Username,
		CurrentPage: token.Session.CurrentPage,
		ExpiresAt:   token.Session.Timestamp.Add(h.manager.Timeout()).UTC(),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Logout(r.Context(), TokenFromContext(r.Context())); err != nil {
		h.logger.Error("logout", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: h.secure})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	sess, ok := FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"username":     sess.Username,
		"current_page": sess.CurrentPage,
		"expires_at":   sess.Timestamp.Add(h.manager.Timeout()).UTC(),
	})
}

type pageRequest struct {
	Page string `json:"page" validate:"required,max=64"`
}

func (h *Handler) setPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	if err := h.manager.SetPage(r.Context(), TokenFromContext(r.Context()), req.Page); err != nil {
		h.logger.Error("set page", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
