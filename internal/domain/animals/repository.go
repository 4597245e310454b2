package animals

import (
	"context"

	"shelter-meds/internal/ports/auth"
)

type Repository interface {
	Create(ctx context.Context, scope auth.Scope, a Animal) error
	Update(ctx context.Context, scope auth.Scope, a Animal) error
	GetByID(ctx context.Context, scope auth.Scope, id string) (Animal, error)
	List(ctx context.Context, scope auth.Scope, filter ListFilter) ([]Animal, error)
}
