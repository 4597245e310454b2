package auth

import (
	"strings"
	"time"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID   string
	Email    string
	TenantID string // shelter al que pertenece el usuario

	// Token original; se propaga como Credential hacia los adapters.
	Token string
}

// Credential es el bearer token emitido por el identity provider.
// Se pasa explícitamente a cada llamada externa (nada de estado global).
type Credential struct {
	Token     string
	SubjectID string
	ExpiresAt time.Time
}

func (c Credential) IsZero() bool {
	return strings.TrimSpace(c.Token) == ""
}

// Expired indica si el token ya venció respecto de now.
// Un ExpiresAt cero significa "desconocido" y no se considera vencido.
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Scope es el límite multi-tenant de cada operación: el shelter
// sobre el que se actúa y la credencial con la que se actúa.
type Scope struct {
	ShelterID  string
	Credential Credential
}

// ScopeFromClaims arma el Scope de un request autenticado.
func ScopeFromClaims(c Claims) Scope {
	return Scope{
		ShelterID: c.TenantID,
		Credential: Credential{
			Token:     c.Token,
			SubjectID: c.UserID,
		},
	}
}
