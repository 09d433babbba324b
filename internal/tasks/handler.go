package tasks

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/teamhub/internal/platform/httpx"
	"github.com/odyssey-erp/teamhub/internal/rbac"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Handler exposes task endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers task routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/{id}/complete", h.complete)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/comments", h.comments)
	r.Post("/{id}/comments", h.addComment)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireTaskAssigner())
		r.Post("/assign", h.assign)
	})
}

type taskRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=4000"`
	Category    string   `json:"category" validate:"max=60"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     string   `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=40"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	lists, err := h.service.List(r.Context(), username)
	if err != nil {
		h.fail(w, "list tasks", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lists)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	var req taskRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	task, err := h.service.Create(r.Context(), username, Input(req))
	if err != nil {
		h.fail(w, "create task", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	task, err := h.service.Complete(r.Context(), username, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "complete task", err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	if err := h.service.Delete(r.Context(), username, chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type assignRequest struct {
	To string `json:"to" validate:"required"`
	taskRequest
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	var req assignRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	task, err := h.service.Assign(r.Context(), username, req.To, Input(req.taskRequest))
	if err != nil {
		h.fail(w, "assign task", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

type commentRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

func (h *Handler) comments(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Comments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "list comments", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"comments": list})
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	var req commentRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	c, err := h.service.AddComment(r.Context(), chi.URLParam(r, "id"), username, req.Comment)
	if err != nil {
		h.fail(w, "add comment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
