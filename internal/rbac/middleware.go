package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/teamhub/internal/shared"
)

// ActorResolver loads the authorization snapshot of a user.
type ActorResolver interface {
	Actor(ctx context.Context, username string) (Actor, error)
}

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Resolver ActorResolver
	Logger   *slog.Logger
}

type actorContextKey struct{}

// ContextWithActor stores a resolved actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the actor resolved by the middleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}

// RequireTaskAssigner admits actors that pass CanAssignTasks.
func (m Middleware) RequireTaskAssigner() func(http.Handler) http.Handler {
	return m.require("task assigner", CanAssignTasks)
}

// RequireRoleManager admits actors that pass CanAccessRoleManagement.
func (m Middleware) RequireRoleManager() func(http.Handler) http.Handler {
	return m.require("role manager", func(a Actor) bool { return CanAccessRoleManagement(a.Role) })
}

// RequireCustomRoleCreator admits admin, ceo, cfo and cto.
func (m Middleware) RequireCustomRoleCreator() func(http.Handler) http.Handler {
	return m.require("custom role creator", func(a Actor) bool { return CanCreateCustomRole(a.Role) })
}

func (m Middleware) require(name string, allowed func(Actor) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := m.currentActor(w, r, name)
			if !ok {
				return
			}
			if !allowed(actor) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}

func (m Middleware) currentActor(w http.ResponseWriter, r *http.Request, name string) (Actor, bool) {
	username, ok := shared.UsernameFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return Actor{}, false
	}
	actor, err := m.Resolver.Actor(r.Context(), username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return Actor{}, false
		}
		if m.Logger != nil {
			m.Logger.Error("rbac resolve actor", slog.String("check", name), slog.Any("error", err))
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return Actor{}, false
	}
	return actor, true
}
