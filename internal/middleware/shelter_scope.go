package middleware

import (
	"context"
	"net/http"
	"strings"

	"shelter-meds/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// RequireShelter corta con 401 si no hay claims y con 403 si el shelter
// de la URL no es el del usuario. Deja el auth.Scope en el contexto.
func RequireShelter(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok || strings.TrimSpace(claims.UserID) == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			shelterID := strings.TrimSpace(chi.URLParam(r, param))
			if shelterID == "" || shelterID != claims.TenantID {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), scopeKey, auth.ScopeFromClaims(claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetScope devuelve el scope puesto por RequireShelter.
func GetScope(ctx context.Context) (auth.Scope, bool) {
	s, ok := ctx.Value(scopeKey).(auth.Scope)
	return s, ok
}
