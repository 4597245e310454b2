package middleware

import (
	"context"
	"net/http"
	"strings"

	"shelter-meds/internal/ports/auth"

	"go.uber.org/zap"
)

type ctxKey string

const (
	claimsKey ctxKey = "claims"
	scopeKey  ctxKey = "scope"
)

const (
	HeaderDebugUserID    = "X-Debug-User-ID"
	HeaderDebugShelterID = "X-Debug-Shelter-ID"
)

// AuthContext:
// - Si verifier != nil y viene Bearer token => Verify() y setea claims (con el token).
// - Si verifier == nil => modo dev: X-Debug-User-ID / X-Debug-Shelter-ID => claims.
// - Si no hay claims, el request sigue igual; RequireShelter decide 401/403.
func AuthContext(verifier auth.AuthVerifier, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				if uid := strings.TrimSpace(r.Header.Get(HeaderDebugUserID)); uid != "" {
					claims := auth.Claims{
						UserID:   uid,
						TenantID: strings.TrimSpace(r.Header.Get(HeaderDebugShelterID)),
					}
					next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
					return
				}

				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				log.Debug("token verification failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if claims.Token == "" {
				claims.Token = token
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
