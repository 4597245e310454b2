package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"shelter-meds/internal/domain/medications"
	"shelter-meds/internal/ports/auth"
)

type medicationRepo struct {
	mu        sync.RWMutex
	byShelter map[string]map[string]medications.Medication
}

func NewMedicationRepo() medications.Repository {
	return &medicationRepo{
		byShelter: make(map[string]map[string]medications.Medication),
	}
}

func (r *medicationRepo) Create(ctx context.Context, scope auth.Scope, m medications.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("medication id required")
	}
	items := r.byShelter[scope.ShelterID]
	if items == nil {
		items = make(map[string]medications.Medication)
		r.byShelter[scope.ShelterID] = items
	}
	if _, exists := items[m.ID]; exists {
		return errors.New("medication already exists")
	}
	items[m.ID] = m
	return nil
}

func (r *medicationRepo) Update(ctx context.Context, scope auth.Scope, m medications.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.byShelter[scope.ShelterID]
	if _, exists := items[m.ID]; !exists {
		return medications.ErrNotFound
	}
	items[m.ID] = m
	return nil
}

func (r *medicationRepo) GetByID(ctx context.Context, scope auth.Scope, id string) (medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byShelter[scope.ShelterID][id]
	if !ok {
		return medications.Medication{}, medications.ErrNotFound
	}
	return m, nil
}

func (r *medicationRepo) List(ctx context.Context, scope auth.Scope) ([]medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.byShelter[scope.ShelterID]
	out := make([]medications.Medication, 0, len(items))
	for _, m := range items {
		out = append(out, m)
	}
	return out, nil
}
