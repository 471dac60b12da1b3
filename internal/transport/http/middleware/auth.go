package middleware

import (
	"context"
	"net/http"
	"strings"

	"calibra/internal/auth"
	domainauth "calibra/internal/domain/auth"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// Auth resolves the caller's identity from the bearer token. Requests with
// no or invalid credentials pass through anonymous; RequirePermission is
// what turns a missing identity into a 401.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, domainauth.UserContext{
				UserID:       claims.UserID,
				TenantID:     claims.TenantID,
				Role:         claims.Role,
				DepartmentID: claims.DepartmentID,
				Email:        claims.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (domainauth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(domainauth.UserContext)
	return user, ok
}

// WithUser is a test helper injecting a resolved identity.
func WithUser(ctx context.Context, user domainauth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}
