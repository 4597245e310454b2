package animals

import "time"

// Animal es el registro mínimo que necesita el scheduler: existe, pertenece
// a un shelter y puede archivarse (IsActive=false) sin borrarse.
type Animal struct {
	ID        string
	ShelterID string

	Name    string
	Species string
	Breed   string
	Color   string

	DateOfBirth *time.Time
	PhotoURL    string
	IsActive    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ListFilter struct {
	IncludeInactive bool
}
