package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shelter-meds/internal/domain/schedule"
	"shelter-meds/internal/ports/auth"
	ds "shelter-meds/internal/ports/docstore"

	"go.uber.org/zap"
)

const tableDoses = "scheduled_doses"

type ScheduleRepo struct {
	db  *sql.DB
	log *zap.Logger
}

var _ schedule.Repository = (*ScheduleRepo)(nil)

func NewScheduleRepo(db *sql.DB, log *zap.Logger) *ScheduleRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &ScheduleRepo{db: db, log: log.Named("schedule_repo")}
}

const doseColumns = `
	id, shelter_id, animal_id, medication_id,
	dosage, notes,
	recurrence_type, interval_days, weekdays,
	time_of_day, doses_per_day, time_slots,
	food_relationship, start_date, end_date,
	status, created_by_uid, created_at, updated_at`

const logColumns = `
	id, shelter_id, scheduled_dose_id, animal_id, occurrence_id,
	medication_name, dosage,
	time_administered, administered_by_uid, was_given, notes,
	recorded_at`

func (r *ScheduleRepo) CreateDose(ctx context.Context, scope auth.Scope, d schedule.ScheduledDose) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scheduled_doses (`+doseColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`,
		d.ID,
		scope.ShelterID,
		d.AnimalID,
		d.MedicationID,
		d.Dosage,
		d.Notes,
		string(d.Rule.Type),
		d.Rule.IntervalDays,
		joinWeekdays(d.Rule.Weekdays),
		d.TimeOfDay,
		d.DosesPerDay,
		strings.Join(d.TimeSlots, ","),
		string(d.Food),
		d.StartDate.String(),
		endDateArg(d.EndDate),
		string(d.Status),
		d.CreatedByUID,
		d.CreatedAt,
		d.UpdatedAt,
	)
	return err
}

// UpdateDose no toca animal_id ni los campos de auditoría de alta.
func (r *ScheduleRepo) UpdateDose(ctx context.Context, scope auth.Scope, d schedule.ScheduledDose) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE scheduled_doses
		SET
			medication_id = $3,
			dosage = $4,
			notes = $5,
			recurrence_type = $6,
			interval_days = $7,
			weekdays = $8,
			time_of_day = $9,
			doses_per_day = $10,
			time_slots = $11,
			food_relationship = $12,
			start_date = $13,
			end_date = $14,
			status = $15,
			updated_at = $16
		WHERE id = $1 AND shelter_id = $2
	`,
		d.ID,
		scope.ShelterID,
		d.MedicationID,
		d.Dosage,
		d.Notes,
		string(d.Rule.Type),
		d.Rule.IntervalDays,
		joinWeekdays(d.Rule.Weekdays),
		d.TimeOfDay,
		d.DosesPerDay,
		strings.Join(d.TimeSlots, ","),
		string(d.Food),
		d.StartDate.String(),
		endDateArg(d.EndDate),
		string(d.Status),
		d.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return schedule.ErrNotFound
	}
	return nil
}

func (r *ScheduleRepo) GetDose(ctx context.Context, scope auth.Scope, id string) (schedule.ScheduledDose, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return schedule.ScheduledDose{}, schedule.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT`+doseColumns+`
		FROM scheduled_doses
		WHERE id = $1 AND shelter_id = $2
	`, id, scope.ShelterID)

	d, err := scanDose(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return schedule.ScheduledDose{}, schedule.ErrNotFound
		}
		return schedule.ScheduledDose{}, err
	}
	return d, nil
}

func (r *ScheduleRepo) ListDoses(ctx context.Context, scope auth.Scope, filter schedule.DoseFilter) ([]schedule.ScheduledDose, error) {
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT` + doseColumns + `
		FROM scheduled_doses
		WHERE shelter_id = $1`)

	args := []any{scope.ShelterID}
	if id := strings.TrimSpace(filter.AnimalID); id != "" {
		args = append(args, id)
		sb.WriteString(fmt.Sprintf(" AND animal_id = $%d", len(args)))
	}
	if !filter.IncludeDiscontinued {
		args = append(args, string(schedule.LifecycleActive))
		sb.WriteString(fmt.Sprintf(" AND status = $%d", len(args)))
	}
	sb.WriteString(" ORDER BY animal_id, id")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]schedule.ScheduledDose, 0)
	for rows.Next() {
		d, err := scanDose(rows)
		if err != nil {
			// Una fila con columnas ilegibles no tumba el listado.
			var perr *ds.PartialParseError
			if errors.As(err, &perr) {
				r.log.Warn("skipping malformed row", zap.Error(perr))
				continue
			}
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *ScheduleRepo) AppendLog(ctx context.Context, scope auth.Scope, l schedule.DoseLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dose_logs (`+logColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		l.ID,
		scope.ShelterID,
		l.ScheduledDoseID,
		l.AnimalID,
		l.OccurrenceID,
		l.MedicationName,
		l.Dosage,
		l.TimeAdministered,
		l.AdministeredByUID,
		l.WasGiven,
		l.Notes,
		l.RecordedAt,
	)
	return err
}

func (r *ScheduleRepo) ListLogs(ctx context.Context, scope auth.Scope, filter schedule.LogFilter) ([]schedule.DoseLog, error) {
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT` + logColumns + `
		FROM dose_logs
		WHERE shelter_id = $1`)

	args := []any{scope.ShelterID}
	if id := strings.TrimSpace(filter.AnimalID); id != "" {
		args = append(args, id)
		sb.WriteString(fmt.Sprintf(" AND animal_id = $%d", len(args)))
	}
	if id := strings.TrimSpace(filter.ScheduledDoseID); id != "" {
		args = append(args, id)
		sb.WriteString(fmt.Sprintf(" AND scheduled_dose_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		sb.WriteString(fmt.Sprintf(" AND time_administered >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		sb.WriteString(fmt.Sprintf(" AND time_administered <= $%d", len(args)))
	}
	sb.WriteString(" ORDER BY time_administered DESC, id")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]schedule.DoseLog, 0)
	for rows.Next() {
		var l schedule.DoseLog
		if err := rows.Scan(
			&l.ID,
			&l.ShelterID,
			&l.ScheduledDoseID,
			&l.AnimalID,
			&l.OccurrenceID,
			&l.MedicationName,
			&l.Dosage,
			&l.TimeAdministered,
			&l.AdministeredByUID,
			&l.WasGiven,
			&l.Notes,
			&l.RecordedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanDose(s rowScanner) (schedule.ScheduledDose, error) {
	var (
		d                      schedule.ScheduledDose
		ruleType, food, status string
		weekdays, slots        string
		start                  time.Time
		end                    sql.NullTime
	)
	if err := s.Scan(
		&d.ID,
		&d.ShelterID,
		&d.AnimalID,
		&d.MedicationID,
		&d.Dosage,
		&d.Notes,
		&ruleType,
		&d.Rule.IntervalDays,
		&weekdays,
		&d.TimeOfDay,
		&d.DosesPerDay,
		&slots,
		&food,
		&start,
		&end,
		&status,
		&d.CreatedByUID,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return schedule.ScheduledDose{}, err
	}

	wd, err := splitWeekdays(weekdays)
	if err != nil {
		return schedule.ScheduledDose{}, &ds.PartialParseError{Collection: tableDoses, DocumentID: d.ID, Err: err}
	}
	d.Rule.Type = schedule.RecurrenceType(ruleType)
	d.Rule.Weekdays = wd
	d.TimeSlots = splitList(slots)
	d.Food = schedule.FoodRelationship(food)
	d.Status = schedule.Lifecycle(status)
	d.StartDate = schedule.DateOf(start, time.UTC)
	if end.Valid {
		e := schedule.DateOf(end.Time, time.UTC)
		d.EndDate = &e
	}
	return d, nil
}

func endDateArg(d *schedule.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func joinWeekdays(days []time.Weekday) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(int(d)))
	}
	return strings.Join(parts, ",")
}

func splitWeekdays(s string) ([]time.Weekday, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, nil
	}
	out := make([]time.Weekday, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid weekday %q", p)
		}
		out = append(out, time.Weekday(n))
	}
	return out, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
