package accounts

import (
	"context"

	"shelter-meds/internal/ports/auth"
)

// Repository guarda shelters y perfiles. Todavía no hay shelter en el
// contexto (se está creando), así que las operaciones reciben la credencial.
// GetProfile devuelve ErrNotFound si el uid no tiene perfil y GetShelter
// ErrShelterNotFound si el id no existe.
type Repository interface {
	CreateShelter(ctx context.Context, cred auth.Credential, s Shelter) error
	GetShelter(ctx context.Context, cred auth.Credential, id string) (Shelter, error)
	CreateProfile(ctx context.Context, cred auth.Credential, p Profile) error
	GetProfile(ctx context.Context, cred auth.Credential, uid string) (Profile, error)
}
