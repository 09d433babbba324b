package calendar

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/teamhub/internal/companies"
	"github.com/odyssey-erp/teamhub/internal/platform/httpx"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Handler exposes calendar endpoints.
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

// MountRoutes registers calendar routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.events)
	r.Get("/mine", h.mine)
	r.Post("/", h.create)
}

type eventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=4000"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	EventType   string    `json:"event_type" validate:"omitempty,oneof=meeting deadline reminder holiday other"`
	Attendees   []string  `json:"attendees" validate:"max=200"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	username, _ := shared.UsernameFromContext(r.Context())
	var req eventRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	event, err := h.service.CreateEvent(r.Context(), code, username, Input(req))
	if err != nil {
		h.fail(w, "create event", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, event)
}

func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	from, err := timeParam(r, "from")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	to, err := timeParam(r, "to")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	events, err := h.service.Events(r.Context(), code, from, to)
	if err != nil {
		h.fail(w, "list events", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	username, _ := shared.UsernameFromContext(r.Context())
	events, err := h.service.UserEvents(r.Context(), code, username)
	if err != nil {
		h.fail(w, "list own events", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"events": events})
}

// timeParam accepts RFC 3339 timestamps or plain dates.
func timeParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s must be RFC 3339 or YYYY-MM-DD", shared.ErrValidation, name)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
