package auth

import "context"

// AuthVerifier valida el bearer token de un request y devuelve los claims
// del usuario, con TenantID = shelter del perfil. Lo implementa
// accounts.Service sobre el identity provider.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
