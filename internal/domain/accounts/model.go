package accounts

import "time"

// Shelter es el tenant: todo dato de negocio cuelga de un shelter.
type Shelter struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
}

// Profile vincula la cuenta del identity provider con su shelter.
type Profile struct {
	UID         string
	Email       string
	DisplayName string
	ShelterID   string
	CreatedAt   time.Time
}
