package schedule

import (
	"context"
	"time"

	"shelter-meds/internal/ports/auth"
)

type DoseFilter struct {
	AnimalID            string
	IncludeDiscontinued bool
}

// LogFilter: From/To sobre TimeAdministered, ambos inclusive; nil = abierto.
type LogFilter struct {
	AnimalID        string
	ScheduledDoseID string
	From            *time.Time
	To              *time.Time
}

// Repository guarda dosis y logs por shelter (scope.ShelterID).
// Los logs son append-only: no hay update ni delete.
type Repository interface {
	CreateDose(ctx context.Context, scope auth.Scope, d ScheduledDose) error
	UpdateDose(ctx context.Context, scope auth.Scope, d ScheduledDose) error
	GetDose(ctx context.Context, scope auth.Scope, id string) (ScheduledDose, error)
	ListDoses(ctx context.Context, scope auth.Scope, filter DoseFilter) ([]ScheduledDose, error)

	AppendLog(ctx context.Context, scope auth.Scope, l DoseLog) error
	ListLogs(ctx context.Context, scope auth.Scope, filter LogFilter) ([]DoseLog, error)
}

// Claimer reserva una ocurrencia entre procesos (SETNX o similar) para
// cerrar la carrera de la política reject. Opcional.
type Claimer interface {
	Claim(ctx context.Context, shelterID, occurrenceID string) (bool, error)
	Release(ctx context.Context, shelterID, occurrenceID string) error
}
