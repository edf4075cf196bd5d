package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/ukydev/fleet-maintenance/internal/auth"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

type contextKey string

// ClaimsContextKey holds the *models.Claims of an authenticated request.
const ClaimsContextKey contextKey = "claims"

// AuthMiddleware guards API routes with bearer tokens issued by auth.Service.
// It is applied per route so public endpoints never see it.
type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="fleet-maintenance"`)
	http.Error(w, msg, http.StatusUnauthorized)
}

// Authenticate requires a valid bearer token and stores its claims in the
// request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			unauthorized(w, "Authorization header required")
			return
		}
		claims, err := m.authService.ValidateToken(header)
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			unauthorized(w, "Token expired")
			return
		case err != nil:
			unauthorized(w, "Invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authorize lets the request through when allowed accepts the caller's claims.
// It must run after Authenticate.
func authorize(allowed func(*models.Claims) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaimsFromContext(r.Context())
			if !ok {
				unauthorized(w, "Authentication required")
				return
			}
			if !allowed(claims) {
				http.Error(w, "Insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole admits callers with role, and admins.
func (m *AuthMiddleware) RequireRole(role models.Role) func(http.Handler) http.Handler {
	return authorize(func(c *models.Claims) bool {
		return c.Role == role || c.Role == models.RoleAdmin
	})
}

// RequirePermission admits callers whose role may perform action.
func (m *AuthMiddleware) RequirePermission(action string) func(http.Handler) http.Handler {
	return authorize(func(c *models.Claims) bool {
		return c.Role.HasPermission(action)
	})
}

// Protect authenticates the request and checks the caller may perform action.
func (m *AuthMiddleware) Protect(action string, h http.Handler) http.Handler {
	return m.Authenticate(m.RequirePermission(action)(h))
}

// GetClaimsFromContext returns the claims stored by Authenticate.
func GetClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*models.Claims)
	return claims, ok
}
