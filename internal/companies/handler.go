package companies

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/teamhub/internal/platform/httpx"
	"github.com/odyssey-erp/teamhub/internal/rbac"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Handler exposes company endpoints.
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

// MountRoutes registers company routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/mine", h.mine)
	r.Route("/{code}", func(r chi.Router) {
		r.Use(h.requireMember)
		r.Get("/", h.get)
		r.Get("/employees", h.employees)
		r.Post("/departments", h.addDepartment)
		r.Post("/reviews", h.submitReview)
		r.Get("/reviews/{username}", h.reviews)
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireRoleManager())
			r.Put("/employees/{username}/role", h.changeRole)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireCustomRoleCreator())
			r.Post("/roles", h.addCustomRole)
		})
	})
}

// requireMember rejects callers outside the company in the path.
func (h *Handler) requireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := shared.UsernameFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.ErrInvalidCredentials)
			return
		}
		company, err := h.service.Get(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			h.fail(w, "load company", err)
			return
		}
		if !company.HasMember(username) {
			httpx.RespondError(w, shared.ErrPermissionDenied)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type createRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=1000"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	username, ok := shared.UsernameFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	var req createRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	company, err := h.service.Create(r.Context(), req.Name, req.Description, username)
	if err != nil {
		h.fail(w, "create company", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, company)
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	username, ok := shared.UsernameFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	company, err := h.service.CompanyOf(r.Context(), username)
	if err != nil {
		h.fail(w, "load own company", err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	company, err := h.service.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.fail(w, "load company", err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *Handler) employees(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Employees(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.fail(w, "list employees", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"employees": list})
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	var req changeRoleRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	err := h.service.ChangeRole(r.Context(), chi.URLParam(r, "code"), chi.URLParam(r, "username"), req.Role, username)
	if err != nil {
		h.fail(w, "change role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type customRoleRequest struct {
	Name  string `json:"name" validate:"required,max=40"`
	Level int    `json:"level" validate:"min=1,max=9"`
}

func (h *Handler) addCustomRole(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	var req customRoleRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	role, err := h.service.AddCustomRole(r.Context(), chi.URLParam(r, "code"), req.Name, req.Level, username)
	if err != nil {
		h.fail(w, "add custom role", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

type departmentRequest struct {
	Name string `json:"name" validate:"required,max=80"`
}

func (h *Handler) addDepartment(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	var req departmentRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	if err := h.service.AddDepartment(r.Context(), chi.URLParam(r, "code"), req.Name, username); err != nil {
		h.fail(w, "add department", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reviewRequest struct {
	Employee         string   `json:"employee" validate:"required"`
	ReviewPeriod     string   `json:"review_period" validate:"required"`
	GoalsAchieved    []string `json:"goals_achieved"`
	AreasImprovement []string `json:"areas_improvement"`
	OverallRating    int      `json:"overall_rating" validate:"min=1,max=5"`
	Comments         string   `json:"comments"`
}

func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	var req reviewRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	review, err := h.service.SubmitReview(r.Context(), chi.URLParam(r, "code"), username, ReviewInput(req))
	if err != nil {
		h.fail(w, "submit review", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, review)
}

func (h *Handler) reviews(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	employee := chi.URLParam(r, "username")
	if employee != username {
		actor, err := h.service.Actor(r.Context(), username)
		if err != nil {
			h.fail(w, "resolve actor", err)
			return
		}
		if !rbac.CanAccessRoleManagement(actor.Role) && !actor.IsCompanyAdmin() {
			httpx.RespondError(w, shared.ErrPermissionDenied)
			return
		}
	}
	list, err := h.service.Reviews(r.Context(), chi.URLParam(r, "code"), employee)
	if err != nil {
		h.fail(w, "list reviews", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"reviews": list})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
