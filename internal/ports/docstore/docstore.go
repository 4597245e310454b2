package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shelter-meds/internal/ports/auth"
)

var (
	ErrNotFound = errors.New("document not found")
)

// Document es un documento crudo: id + mapa plano de campos etiquetados.
type Document struct {
	ID         string
	Fields     Fields
	CreateTime time.Time
	UpdateTime time.Time
}

// Op es el operador de un filtro de consulta estructurada.
type Op string

const (
	OpEqual          Op = "EQUAL"
	OpLessThan       Op = "LESS_THAN"
	OpLessOrEqual    Op = "LESS_THAN_OR_EQUAL"
	OpGreaterThan    Op = "GREATER_THAN"
	OpGreaterOrEqual Op = "GREATER_THAN_OR_EQUAL"
)

// Filter es un predicado campo-operador-valor. Varios filtros se combinan con AND.
type Filter struct {
	Field string
	Op    Op
	Value Value
}

func Eq(field string, v Value) Filter { return Filter{Field: field, Op: OpEqual, Value: v} }

// Reader lee documentos de una colección. shelterID vacío = colección raíz.
type Reader interface {
	GetDocuments(ctx context.Context, cred auth.Credential, shelterID, collection string, filters ...Filter) ([]Document, error)
	GetDocument(ctx context.Context, cred auth.Credential, shelterID, collection, id string) (Document, error)
}

// Writer escribe documentos. PatchDocument solo toca los campos enviados.
type Writer interface {
	CreateDocument(ctx context.Context, cred auth.Credential, shelterID, collection, id string, fields Fields) error
	PatchDocument(ctx context.Context, cred auth.Credential, shelterID, collection, id string, fields Fields) error
	DeleteDocument(ctx context.Context, cred auth.Credential, shelterID, collection, id string) error
}

type Store interface {
	Reader
	Writer
}

// PartialParseError indica que un documento de un lote no se pudo decodificar.
// La política es saltarlo, loguear y seguir con el resto.
type PartialParseError struct {
	Collection string
	DocumentID string
	Err        error
}

func (e *PartialParseError) Error() string {
	return fmt.Sprintf("decode %s/%s: %v", e.Collection, e.DocumentID, e.Err)
}

func (e *PartialParseError) Unwrap() error { return e.Err }
