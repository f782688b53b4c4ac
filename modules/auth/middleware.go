package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/invoicedesk/svc/auth"
)

// Authenticate validates the bearer access token and stores the
// resulting identity in the request context.
func (m *Module) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, envelope{
				Status:  statusError,
				Message: "Authentication required",
			})
			return
		}
		claims, err := m.tokens.VerifyAccess(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, envelope{
				Status:  statusError,
				Message: "Invalid or expired token",
			})
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, envelope{
				Status:  statusError,
				Message: "Invalid or expired token",
			})
			return
		}
		ctx := auth.WithIdentity(r.Context(), auth.Identity{
			UserID: userID,
			Email:  claims.Email,
			Role:   auth.Role(claims.Role),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects authenticated requests whose identity is not an
// admin. Must run after Authenticate.
func (m *Module) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok || id.Role != auth.RoleAdmin {
			writeJSON(w, http.StatusForbidden, envelope{
				Status:  statusError,
				Message: "Insufficient permissions",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
