// Package rbac provides role-based access middleware for the catalog routes.
//
// Roles gate the route, not the record: ownership of an individual product
// is enforced separately by the product service.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/vipani/pkg/middleware"
	"github.com/shashiranjanraj/vipani/pkg/response"
)

// HasRole returns middleware that allows access only to actors carrying one
// of the given roles. Requires middleware.Auth to have already run.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r.Context())
			if !ok || !allowed[role] {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
