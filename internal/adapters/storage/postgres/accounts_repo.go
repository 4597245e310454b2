package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"shelter-meds/internal/domain/accounts"
	"shelter-meds/internal/ports/auth"
)

// AccountsRepo: la credencial no se usa acá, la base no aplica reglas por usuario.
type AccountsRepo struct {
	db *sql.DB
}

func NewAccountsRepo(db *sql.DB) *AccountsRepo {
	return &AccountsRepo{db: db}
}

func (r *AccountsRepo) CreateShelter(ctx context.Context, _ auth.Credential, s accounts.Shelter) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shelters (id, name, address, created_at)
		VALUES ($1,$2,$3,$4)
	`, s.ID, s.Name, s.Address, s.CreatedAt)
	return err
}

func (r *AccountsRepo) GetShelter(ctx context.Context, _ auth.Credential, id string) (accounts.Shelter, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return accounts.Shelter{}, accounts.ErrShelterNotFound
	}

	var s accounts.Shelter
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, address, created_at
		FROM shelters
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Address, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return accounts.Shelter{}, accounts.ErrShelterNotFound
		}
		return accounts.Shelter{}, err
	}
	return s, nil
}

func (r *AccountsRepo) CreateProfile(ctx context.Context, _ auth.Credential, p accounts.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_profiles (uid, email, display_name, shelter_id, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, p.UID, p.Email, p.DisplayName, p.ShelterID, p.CreatedAt)
	return err
}

func (r *AccountsRepo) GetProfile(ctx context.Context, _ auth.Credential, uid string) (accounts.Profile, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return accounts.Profile{}, accounts.ErrNotFound
	}

	var p accounts.Profile
	err := r.db.QueryRowContext(ctx, `
		SELECT uid, email, display_name, shelter_id, created_at
		FROM user_profiles
		WHERE uid = $1
	`, uid).Scan(&p.UID, &p.Email, &p.DisplayName, &p.ShelterID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return accounts.Profile{}, accounts.ErrNotFound
		}
		return accounts.Profile{}, err
	}
	return p, nil
}
