package identity

import (
	"context"
	"errors"

	"shelter-meds/internal/ports/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// ErrRejected: el provider rechazó los datos (password débil, email mal formado).
	ErrRejected = errors.New("rejected by identity provider")
)

// Account es lo que el identity provider sabe de un usuario.
type Account struct {
	UID   string
	Email string
}

// Provider canjea credenciales por un token + subject id.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (auth.Credential, error)
	SignUp(ctx context.Context, email, password string) (auth.Credential, error)
	// Lookup valida un token emitido por el provider y devuelve su cuenta.
	Lookup(ctx context.Context, token string) (Account, error)
}
