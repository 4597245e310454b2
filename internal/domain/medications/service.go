package medications

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"shelter-meds/internal/ports/auth"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("medication not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name                 string
	DefaultDosage        string
	Instructions         string
	StorageInstructions  string
	HandlingInstructions string
}

func (s *Service) Create(ctx context.Context, scope auth.Scope, in CreateInput) (Medication, error) {
	if strings.TrimSpace(scope.ShelterID) == "" {
		return Medication{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Medication{}, ErrInvalidInput
	}

	now := s.now().UTC()
	m := Medication{
		ID:                   uuid.NewString(),
		ShelterID:            scope.ShelterID,
		Name:                 strings.TrimSpace(in.Name),
		DefaultDosage:        strings.TrimSpace(in.DefaultDosage),
		Instructions:         strings.TrimSpace(in.Instructions),
		StorageInstructions:  strings.TrimSpace(in.StorageInstructions),
		HandlingInstructions: strings.TrimSpace(in.HandlingInstructions),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Create(ctx, scope, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

// UpdateInput: punteros para PATCH real, nil = no tocar.
type UpdateInput struct {
	Name                 *string
	DefaultDosage        *string
	Instructions         *string
	StorageInstructions  *string
	HandlingInstructions *string
}

// Update no reescribe los logs ya emitidos: esos guardan su propia copia
// de nombre y dosis.
func (s *Service) Update(ctx context.Context, scope auth.Scope, id string, in UpdateInput) (Medication, error) {
	m, err := s.Get(ctx, scope, id)
	if err != nil {
		return Medication{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Medication{}, ErrInvalidInput
		}
		m.Name = name
	}
	if in.DefaultDosage != nil {
		m.DefaultDosage = strings.TrimSpace(*in.DefaultDosage)
	}
	if in.Instructions != nil {
		m.Instructions = strings.TrimSpace(*in.Instructions)
	}
	if in.StorageInstructions != nil {
		m.StorageInstructions = strings.TrimSpace(*in.StorageInstructions)
	}
	if in.HandlingInstructions != nil {
		m.HandlingInstructions = strings.TrimSpace(*in.HandlingInstructions)
	}
	m.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, scope, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, scope auth.Scope, id string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(scope.ShelterID) == "" {
		return Medication{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, scope, id)
}

// List ordena por nombre (case-insensitive) y luego id.
func (s *Service) List(ctx context.Context, scope auth.Scope) ([]Medication, error) {
	if strings.TrimSpace(scope.ShelterID) == "" {
		return nil, ErrInvalidInput
	}
	items, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}
