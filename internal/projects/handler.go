package projects

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/teamhub/internal/companies"
	"github.com/odyssey-erp/teamhub/internal/platform/httpx"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Handler exposes project endpoints.
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

// MountRoutes registers project routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}/progress", h.progress)
	r.Put("/{id}/status", h.status)
	r.Post("/{id}/milestones", h.addMilestone)
}

type createRequest struct {
	Name           string   `json:"name" validate:"required,max=200"`
	Description    string   `json:"description" validate:"max=5000"`
	StartDate      string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Budget         float64  `json:"budget" validate:"gte=0"`
	ProjectManager string   `json:"project_manager"`
	TeamMembers    []string `json:"team_members" validate:"max=100"`
}

type progressRequest struct {
	Progress int `json:"progress"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type milestoneRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	DueDate     string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	list, err := h.service.List(r.Context(), code)
	if err != nil {
		h.fail(w, "list projects", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"projects": list})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	project, err := h.service.Get(r.Context(), code, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get project", err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	username, _ := shared.UsernameFromContext(r.Context())
	var req createRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	project, err := h.service.Create(r.Context(), code, username, Input(req))
	if err != nil {
		h.fail(w, "create project", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, project)
}

// progress accepts any integer; the service clamps it.
func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	username, _ := shared.UsernameFromContext(r.Context())
	var req progressRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	project, err := h.service.UpdateProgress(r.Context(), code, chi.URLParam(r, "id"), req.Progress, username)
	if err != nil {
		h.fail(w, "update progress", err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	username, _ := shared.UsernameFromContext(r.Context())
	var req statusRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	project, err := h.service.SetStatus(r.Context(), code, chi.URLParam(r, "id"), req.Status, username)
	if err != nil {
		h.fail(w, "set project status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *Handler) addMilestone(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	username, _ := shared.UsernameFromContext(r.Context())
	var req milestoneRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	m, err := h.service.AddMilestone(r.Context(), code, chi.URLParam(r, "id"), username, MilestoneInput(req))
	if err != nil {
		h.fail(w, "add milestone", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
