package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/teamhub/internal/platform/httpx"
	"github.com/odyssey-erp/teamhub/internal/rbac"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Handler manages registration and profile endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	actors    rbac.ActorResolver
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, actors rbac.ActorResolver) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, actors: actors, validator: validator.New()}
}

// MountPublicRoutes registers routes reachable without a session.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/register", h.register)
}

// MountRoutes registers routes for the signed-in user.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.me)
	r.Get("/settings", h.settings)
	r.Put("/settings", h.updateSettings)
}

type registerRequest struct {
	Username    string `json:"username" validate:"required,max=64"`
	Password    string `json:"password" validate:"required,min=6"`
	Email       string `json:"email" validate:"required,email"`
	FullName    string `json:"full_name" validate:"required"`
	Role        string `json:"role" validate:"omitempty,oneof=personal employee manager"`
	CompanyCode string `json:"company_code" validate:"omitempty,len=6,alphanum"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	user, err := h.service.Register(r.Context(), RegisterInput(req))
	if err != nil {
		h.logger.Warn("register user", slog.String("username", req.Username), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user.Profile())
}

type meResponse struct {
	Profile
	Capabilities rbac.Capabilities `json:"capabilities"`
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	username, ok := shared.UsernameFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	user, err := h.service.Get(r.Context(), username)
	if err != nil {
		h.logger.Error("load profile", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	resp := meResponse{Profile: user.Profile()}
	if h.actors != nil {
		actor, err := h.actors.Actor(r.Context(), username)
		if err != nil {
			h.logger.Error("resolve actor", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		resp.Capabilities = rbac.CapabilitiesOf(actor)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) settings(w http.ResponseWriter, r *http.Request) {
	username, ok := shared.UsernameFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	settings, err := h.service.Settings(r.Context(), username)
	if err != nil {
		h.logger.Error("load settings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

type settingsRequest struct {
	Theme             string `json:"theme" validate:"required,oneof=light dark"`
	Notifications     bool   `json:"notifications"`
	NotificationSound bool   `json:"notification_sound"`
	NotificationPopup bool   `json:"notification_popup"`
	DefaultPriority   string `json:"default_priority" validate:"required,oneof=low medium high"`
	ShowTeamTasks     bool   `json:"show_team_tasks"`
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	username, ok := shared.UsernameFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	var req settingsRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	settings, err := h.service.UpdateSettings(r.Context(), username, Settings(req))
	if err != nil {
		h.logger.Error("update settings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}
