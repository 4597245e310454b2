package medications

import (
	"context"

	"shelter-meds/internal/ports/auth"
)

// Repository: todas las operaciones quedan acotadas a scope.ShelterID.
// GetByID/Update devuelven ErrNotFound si el id no existe en ese shelter.
type Repository interface {
	Create(ctx context.Context, scope auth.Scope, m Medication) error
	Update(ctx context.Context, scope auth.Scope, m Medication) error
	GetByID(ctx context.Context, scope auth.Scope, id string) (Medication, error)
	List(ctx context.Context, scope auth.Scope) ([]Medication, error)
}
