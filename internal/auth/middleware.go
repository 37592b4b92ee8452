package auth

import (
	"net/http"
	"strings"

	"github.com/voli-hq/voli/internal/platform/httpx"
)

// Middleware wires the authorization gate into chi handler chains.
type Middleware struct {
	Service *Service
}

// RequireAuth admits any request carrying a valid bearer token whose subject
// still resolves to an account, and stores the live user in the context.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.Service.AuthenticateToken(r.Context(), BearerToken(r))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// RequireRole admits requests whose token role snapshot holds at least one of
// the given roles.
func (m Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := m.Service.AuthorizeToken(r.Context(), BearerToken(r), roles)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Absent or malformed headers yield the empty string, which the gate
// treats as unauthenticated.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
