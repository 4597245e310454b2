// Package docstore implementa los repositorios de dominio sobre el puerto
// de documentos (ports/docstore). Los datos del shelter viven bajo
// shelters/{sid}/<colección>; perfiles y shelters en colecciones raíz.
package docstore

import (
	"errors"
	"fmt"
	"time"

	ds "shelter-meds/internal/ports/docstore"

	"go.uber.org/zap"
)

const (
	colShelters       = "shelters"
	colUsers          = "users"
	colMedications    = "medications"
	colAnimals        = "animals"
	colScheduledDoses = "scheduledDoses"
	colDoseLogs       = "doseLogs"
)

// decodeAll decodifica un lote. Un documento que no decodifica se saltea
// y se loguea como PartialParseError.
func decodeAll[T any](log *zap.Logger, collection string, docs []ds.Document, decode func(ds.Document) (T, error)) []T {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode(doc)
		if err != nil {
			log.Warn("skipping malformed document",
				zap.Error(&ds.PartialParseError{Collection: collection, DocumentID: doc.ID, Err: err}),
			)
			continue
		}
		out = append(out, v)
	}
	return out
}

// mapNotFound traduce el ErrNotFound del store al sentinel del dominio.
func mapNotFound(err, domainErr error) error {
	if errors.Is(err, ds.ErrNotFound) {
		return domainErr
	}
	return err
}

// fieldReader acumula el primer error de lectura para no cortar cada línea.
type fieldReader struct {
	f   ds.Fields
	err error
}

func (r *fieldReader) str(key string) string {
	if r.err != nil {
		return ""
	}
	s, err := r.f.String(key)
	r.err = err
	return s
}

func (r *fieldReader) required(key string) string {
	if r.err != nil {
		return ""
	}
	s, err := r.f.RequireString(key)
	r.err = err
	return s
}

func (r *fieldReader) boolean(key string) bool {
	if r.err != nil {
		return false
	}
	b, err := r.f.Bool(key)
	r.err = err
	return b
}

func (r *fieldReader) integer(key string) int {
	if r.err != nil {
		return 0
	}
	i, err := r.f.Int(key)
	r.err = err
	return int(i)
}

func (r *fieldReader) timePtr(key string) *time.Time {
	if r.err != nil {
		return nil
	}
	t, err := r.f.Time(key)
	r.err = err
	return t
}

// timestamp: zero time si falta.
func (r *fieldReader) timestamp(key string) time.Time {
	if t := r.timePtr(key); t != nil {
		return *t
	}
	return time.Time{}
}

func (r *fieldReader) strings(key string) []string {
	if r.err != nil {
		return nil
	}
	ss, err := r.f.Strings(key)
	r.err = err
	return ss
}

func (r *fieldReader) ints(key string) []int64 {
	if r.err != nil {
		return nil
	}
	is, err := r.f.Ints(key)
	r.err = err
	return is
}

func (r *fieldReader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("field %q: %w", key, err)
	}
}
