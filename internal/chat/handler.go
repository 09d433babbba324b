package chat

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/teamhub/internal/companies"
	"github.com/odyssey-erp/teamhub/internal/platform/httpx"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Handler exposes chat endpoints. Routes expect the caller's company code on
// the context, see companies.Service.RequireCompany.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers chat routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/messages", h.recent)
	r.Post("/messages", h.send)
	r.Put("/messages/{id}", h.edit)
	r.Delete("/messages/{id}", h.delete)
	r.Get("/search", h.search)

	r.Get("/pins", h.pinned)
	r.Post("/pins", h.pin)
	r.Delete("/pins/{messageID}", h.unpin)

	r.Get("/private", h.conversations)
	r.Get("/private/{username}", h.conversation)
	r.Post("/private/{username}", h.sendPrivate)
	r.Post("/private/{username}/{id}/read", h.markRead)
}

type messageRequest struct {
	Message     string `json:"message" validate:"required,max=4000"`
	MessageType string `json:"message_type" validate:"omitempty,oneof=text code link"`
}

func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	list, err := h.service.Recent(r.Context(), code, limitParam(r))
	if err != nil {
		h.fail(w, "list messages", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"messages": list})
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	username, _ := shared.UsernameFromContext(r.Context())
	var req messageRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	msg, err := h.service.Send(r.Context(), code, username, req.Message, req.MessageType)
	if err != nil {
		h.fail(w, "send message", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, msg)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	username, _ := shared.UsernameFromContext(r.Context())
	var req messageRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	msg, err := h.service.Edit(r.Context(), code, chi.URLParam(r, "id"), username, req.Message)
	if err != nil {
		h.fail(w, "edit message", err)
		return
	}
	httpx.JSON(w, http.StatusOK, msg)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	username, _ := shared.UsernameFromContext(r.Context())
	if err := h.service.Delete(r.Context(), code, chi.URLParam(r, "id"), username); err != nil {
		h.fail(w, "delete message", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	username, _ := shared.UsernameFromContext(r.Context())
	q := r.URL.Query()
	results, err := h.service.Search(r.Context(), code, username, q.Get("q"), q.Get("scope"))
	if err != nil {
		h.fail(w, "search messages", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"results": results})
}

type pinRequest struct {
	MessageID   string `json:"message_id" validate:"required"`
	MessageType string `json:"message_type" validate:"omitempty,oneof=company private"`
}

func (h *Handler) pin(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	username, _ := shared.UsernameFromContext(r.Context())
	var req pinRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	pin, err := h.service.Pin(r.Context(), code, req.MessageID, username, req.MessageType)
	if err != nil {
		h.fail(w, "pin message", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, pin)
}

func (h *Handler) unpin(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	if err := h.service.Unpin(r.Context(), code, chi.URLParam(r, "messageID")); err != nil {
		h.fail(w, "unpin message", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pinned(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	pins, err := h.service.Pinned(r.Context(), code)
	if err != nil {
		h.fail(w, "list pins", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"pins": pins})
}

func (h *Handler) conversations(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	list, err := h.service.Conversations(r.Context(), username)
	if err != nil {
		h.fail(w, "list conversations", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"conversations": list})
}

func (h *Handler) conversation(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	list, err := h.service.Conversation(r.Context(), username, chi.URLParam(r, "username"), limitParam(r))
	if err != nil {
		h.fail(w, "load conversation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"messages": list})
}

func (h *Handler) sendPrivate(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	var req messageRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	msg, err := h.service.SendPrivate(r.Context(), username, chi.URLParam(r, "username"), req.Message, req.MessageType)
	if err != nil {
		h.fail(w, "send private message", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, msg)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	err := h.service.MarkPrivateRead(r.Context(), username, chi.URLParam(r, "username"), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "mark private message read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func limitParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return DefaultLimit
	}
	return n
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
