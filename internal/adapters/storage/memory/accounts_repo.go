package memory

import (
	"context"
	"errors"
	"sync"

	"shelter-meds/internal/domain/accounts"
	"shelter-meds/internal/ports/auth"
)

type accountsRepo struct {
	mu       sync.RWMutex
	shelters map[string]accounts.Shelter
	profiles map[string]accounts.Profile // uid -> profile
}

func NewAccountsRepo() accounts.Repository {
	return &accountsRepo{
		shelters: make(map[string]accounts.Shelter),
		profiles: make(map[string]accounts.Profile),
	}
}

func (r *accountsRepo) CreateShelter(ctx context.Context, cred auth.Credential, s accounts.Shelter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.shelters[s.ID]; exists {
		return errors.New("shelter already exists")
	}
	r.shelters[s.ID] = s
	return nil
}

func (r *accountsRepo) GetShelter(ctx context.Context, cred auth.Credential, id string) (accounts.Shelter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.shelters[id]
	if !ok {
		return accounts.Shelter{}, accounts.ErrShelterNotFound
	}
	return s, nil
}

func (r *accountsRepo) CreateProfile(ctx context.Context, cred auth.Credential, p accounts.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[p.UID]; exists {
		return errors.New("profile already exists")
	}
	r.profiles[p.UID] = p
	return nil
}

func (r *accountsRepo) GetProfile(ctx context.Context, cred auth.Credential, uid string) (accounts.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[uid]
	if !ok {
		return accounts.Profile{}, accounts.ErrNotFound
	}
	return p, nil
}
