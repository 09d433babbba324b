package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/teamhub/internal/platform/httpx"
)

// Handler exposes the role hierarchy.
type Handler struct{}

// NewHandler builds Handler instance.
func NewHandler() *Handler {
	return &Handler{}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listRoles)
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": Hierarchy()})
}
