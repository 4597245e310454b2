package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"shelter-meds/internal/domain/medications"
	"shelter-meds/internal/ports/auth"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

const medicationColumns = `
	id, shelter_id,
	name, default_dosage,
	instructions, storage_instructions, handling_instructions,
	created_at, updated_at`

func (r *MedicationsRepo) Create(ctx context.Context, scope auth.Scope, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (`+medicationColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		m.ID,
		scope.ShelterID,
		m.Name,
		m.DefaultDosage,
		m.Instructions,
		m.StorageInstructions,
		m.HandlingInstructions,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, scope auth.Scope, m medications.Medication) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medications
		SET
			name = $3,
			default_dosage = $4,
			instructions = $5,
			storage_instructions = $6,
			handling_instructions = $7,
			updated_at = $8
		WHERE id = $1 AND shelter_id = $2
	`,
		m.ID,
		scope.ShelterID,
		m.Name,
		m.DefaultDosage,
		m.Instructions,
		m.StorageInstructions,
		m.HandlingInstructions,
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, scope auth.Scope, id string) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, medications.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT`+medicationColumns+`
		FROM medications
		WHERE id = $1 AND shelter_id = $2
	`, id, scope.ShelterID)

	m, err := scanMedication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return medications.Medication{}, medications.ErrNotFound
		}
		return medications.Medication{}, err
	}
	return m, nil
}

func (r *MedicationsRepo) List(ctx context.Context, scope auth.Scope) ([]medications.Medication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT`+medicationColumns+`
		FROM medications
		WHERE shelter_id = $1
		ORDER BY lower(name), id
	`, scope.ShelterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// rowScanner cubre *sql.Row y *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedication(s rowScanner) (medications.Medication, error) {
	var m medications.Medication
	err := s.Scan(
		&m.ID,
		&m.ShelterID,
		&m.Name,
		&m.DefaultDosage,
		&m.Instructions,
		&m.StorageInstructions,
		&m.HandlingInstructions,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}
