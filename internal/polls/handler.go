package polls

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/teamhub/internal/companies"
	"github.com/odyssey-erp/teamhub/internal/platform/httpx"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Handler exposes poll endpoints.
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

// MountRoutes registers poll routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/{id}/votes", h.vote)
	r.Post("/{id}/close", h.close)
}

type pollView struct {
	Poll
	Results []int `json:"results"`
}

func viewOf(p Poll) pollView {
	return pollView{Poll: p, Results: p.Tally()}
}

type createRequest struct {
	Question      string   `json:"question" validate:"required,max=300"`
	Options       []string `json:"options" validate:"min=2,max=20,dive,required,max=200"`
	AllowMultiple bool     `json:"allow_multiple"`
	DurationHours int      `json:"duration_hours" validate:"min=0,max=720"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	list, err := h.service.List(r.Context(), code)
	if err != nil {
		h.fail(w, "list polls", err)
		return
	}
	views := make([]pollView, 0, len(list))
	for _, p := range list {
		views = append(views, viewOf(p))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"polls": views})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	username, _ := shared.UsernameFromContext(r.Context())
	var req createRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	poll, err := h.service.Create(r.Context(), code, username, Input(req))
	if err != nil {
		h.fail(w, "create poll", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, viewOf(poll))
}

type voteRequest struct {
	Options []int `json:"options" validate:"required,min=1"`
}

func (h *Handler) vote(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	username, _ := shared.UsernameFromContext(r.Context())
	var req voteRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	poll, err := h.service.Vote(r.Context(), code, chi.URLParam(r, "id"), username, req.Options)
	if err != nil {
		h.fail(w, "vote", err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(poll))
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	username, _ := shared.UsernameFromContext(r.Context())
	poll, err := h.service.Close(r.Context(), code, chi.URLParam(r, "id"), username)
	if err != nil {
		h.fail(w, "close poll", err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(poll))
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
