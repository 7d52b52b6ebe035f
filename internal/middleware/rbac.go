package middleware

import (
	"net/http"
	"slices"

	"eval-flow/internal/auth"
)

// RequireRole allows the request when the caller holds any of roles
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetIdentity(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}
			if !HasAnyRole(id, roles...) {
				respondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is RequireRole(auth.RoleAdmin)
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(auth.RoleAdmin)(next)
}

// HasAnyRole reports whether id holds at least one of roles
func HasAnyRole(id auth.Identity, roles ...string) bool {
	for _, role := range roles {
		if slices.Contains(id.Roles, role) {
			return true
		}
	}
	return false
}
