package middleware

import (
	"net/http"

	domainauth "calibra/internal/domain/auth"
	"calibra/internal/transport/http/api"
)

// RequirePermission gates a route on the fixed capability vocabulary. An
// unresolved identity is unauthorized; a resolved identity without the
// permission is forbidden.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if !domainauth.HasPermission(user.Role, permission) {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
