package notifications

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/teamhub/internal/platform/httpx"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Handler exposes the caller's mailbox.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers notification routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/unread-count", h.unreadCount)
	r.Get("/pending", h.pending)
	r.Post("/read-all", h.markAllRead)
	r.Post("/{id}/read", h.markRead)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	username, ok := shared.UsernameFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	list, err := h.service.Mailbox(r.Context(), username)
	if err != nil {
		h.fail(w, "list notifications", err)
		return
	}
	if page, ok := shared.PaginationFromRequest(r, len(list)); ok {
		start, end := page.Bounds()
		httpx.JSON(w, http.StatusOK, map[string]any{"notifications": list[start:end], "pagination": page})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notifications": list})
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	username, ok := shared.UsernameFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	count, err := h.service.UnreadCount(r.Context(), username)
	if err != nil {
		h.fail(w, "count notifications", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (h *Handler) pending(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.ShowPending(r.Context())
	if err != nil {
		h.fail(w, "show pending notifications", err)
		return
	}
	if alerts == nil {
		alerts = []Alert{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	username, ok := shared.UsernameFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	if err := h.service.MarkRead(r.Context(), username, chi.URLParam(r, "id")); err != nil {
		h.fail(w, "mark notification read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	username, ok := shared.UsernameFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	changed, err := h.service.MarkAllRead(r.Context(), username)
	if err != nil {
		h.fail(w, "mark all notifications read", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"marked": changed})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	username, ok := shared.UsernameFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	if err := h.service.Delete(r.Context(), username, chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete notification", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
