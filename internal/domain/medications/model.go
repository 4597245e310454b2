package medications

import "time"

// Medication es dato de referencia del shelter. No se borra: las dosis
// programadas y los logs la referencian.
type Medication struct {
	ID        string
	ShelterID string

	Name          string
	DefaultDosage string // "1 tablet", "10ml"

	Instructions         string
	StorageInstructions  string
	HandlingInstructions string

	CreatedAt time.Time
	UpdatedAt time.Time
}
