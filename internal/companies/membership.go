package companies

import (
	"context"
	"fmt"
	"net/http"

	"github.com/odyssey-erp/teamhub/internal/platform/httpx"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

type codeContextKey struct{}

// ContextWithCode stores the caller's company code.
func ContextWithCode(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, codeContextKey{}, code)
}

// CodeFromContext returns the code stored by RequireCompany.
func CodeFromContext(ctx context.Context) (string, bool) {
	code, ok := ctx.Value(codeContextKey{}).(string)
	return code, ok && code != ""
}

// MemberCode returns the code of the company username belongs to.
func (s *Service) MemberCode(ctx context.Context, username string) (string, error) {
	user, err := s.users.Get(ctx, username)
	if err != nil {
		return "", err
	}
	if user.CompanyCode == "" {
		return "", fmt.Errorf("%s is not in a company: %w", username, shared.ErrPermissionDenied)
	}
	return user.CompanyCode, nil
}

// SameCompany reports whether both users belong to the same company.
func (s *Service) SameCompany(ctx context.Context, a, b string) (bool, error) {
	ua, err := s.users.Get(ctx, a)
	if err != nil {
		return false, err
	}
	ub, err := s.users.Get(ctx, b)
	if err != nil {
		return false, err
	}
	return ua.CompanyCode != "" && ua.CompanyCode == ub.CompanyCode, nil
}

// RequireCompany rejects callers without a company and stores the code of
// the caller's company on the request context.
func (s *Service) RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := shared.UsernameFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.ErrInvalidCredentials)
			return
		}
		code, err := s.MemberCode(r.Context(), username)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithCode(r.Context(), code)))
	})
}
