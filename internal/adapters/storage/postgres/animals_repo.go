package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"shelter-meds/internal/domain/animals"
	"shelter-meds/internal/ports/auth"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `
	id, shelter_id,
	name, species, breed, color,
	date_of_birth, photo_url, is_active,
	created_at, updated_at`

func (r *AnimalsRepo) Create(ctx context.Context, scope auth.Scope, a animals.Animal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO animals (`+animalColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		a.ID,
		scope.ShelterID,
		a.Name,
		a.Species,
		a.Breed,
		a.Color,
		toNullDate(a.DateOfBirth),
		a.PhotoURL,
		a.IsActive,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AnimalsRepo) Update(ctx context.Context, scope auth.Scope, a animals.Animal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE animals
		SET
			name = $3,
			species = $4,
			breed = $5,
			color = $6,
			date_of_birth = $7,
			photo_url = $8,
			is_active = $9,
			updated_at = $10
		WHERE id = $1 AND shelter_id = $2
	`,
		a.ID,
		scope.ShelterID,
		a.Name,
		a.Species,
		a.Breed,
		a.Color,
		toNullDate(a.DateOfBirth),
		a.PhotoURL,
		a.IsActive,
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return animals.ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) GetByID(ctx context.Context, scope auth.Scope, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, animals.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT`+animalColumns+`
		FROM animals
		WHERE id = $1 AND shelter_id = $2
	`, id, scope.ShelterID)

	a, err := scanAnimal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return animals.Animal{}, animals.ErrNotFound
		}
		return animals.Animal{}, err
	}
	return a, nil
}

func (r *AnimalsRepo) List(ctx context.Context, scope auth.Scope, filter animals.ListFilter) ([]animals.Animal, error) {
	q := `
		SELECT` + animalColumns + `
		FROM animals
		WHERE shelter_id = $1`
	if !filter.IncludeInactive {
		q += ` AND is_active`
	}
	q += ` ORDER BY lower(name), id`

	rows, err := r.db.QueryContext(ctx, q, scope.ShelterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAnimal(s rowScanner) (animals.Animal, error) {
	var a animals.Animal
	var dob sql.NullTime
	if err := s.Scan(
		&a.ID,
		&a.ShelterID,
		&a.Name,
		&a.Species,
		&a.Breed,
		&a.Color,
		&dob,
		&a.PhotoURL,
		&a.IsActive,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return animals.Animal{}, err
	}
	if dob.Valid {
		t := dob.Time.UTC()
		a.DateOfBirth = &t
	}
	return a, nil
}

func toNullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format("2006-01-02")
}
