package blob

import (
	"context"

	"shelter-meds/internal/ports/auth"
)

// Uploader sube bytes a path y devuelve la URL pública del objeto.
type Uploader interface {
	Upload(ctx context.Context, cred auth.Credential, path string, data []byte, contentType string) (string, error)
}
