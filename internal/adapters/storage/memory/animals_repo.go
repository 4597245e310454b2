package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"shelter-meds/internal/domain/animals"
	"shelter-meds/internal/ports/auth"
)

type animalRepo struct {
	mu        sync.RWMutex
	byShelter map[string]map[string]animals.Animal
}

func NewAnimalRepo() animals.Repository {
	return &animalRepo{
		byShelter: make(map[string]map[string]animals.Animal),
	}
}

func (r *animalRepo) Create(ctx context.Context, scope auth.Scope, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	items := r.byShelter[scope.ShelterID]
	if items == nil {
		items = make(map[string]animals.Animal)
		r.byShelter[scope.ShelterID] = items
	}
	if _, exists := items[a.ID]; exists {
		return errors.New("animal already exists")
	}
	items[a.ID] = a
	return nil
}

func (r *animalRepo) Update(ctx context.Context, scope auth.Scope, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.byShelter[scope.ShelterID]
	if _, exists := items[a.ID]; !exists {
		return animals.ErrNotFound
	}
	items[a.ID] = a
	return nil
}

func (r *animalRepo) GetByID(ctx context.Context, scope auth.Scope, id string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byShelter[scope.ShelterID][id]
	if !ok {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, nil
}

func (r *animalRepo) List(ctx context.Context, scope auth.Scope, filter animals.ListFilter) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.byShelter[scope.ShelterID]
	out := make([]animals.Animal, 0, len(items))
	for _, a := range items {
		if !a.IsActive && !filter.IncludeInactive {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
