package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrNotFound                = errors.New("not found")
	ErrDuplicateAdministration = errors.New("dose already recorded for this occurrence")
)

// ValidationError describe por qué una dosis no se puede persistir.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate verifica la regla por sí sola.
func (r RecurrenceRule) Validate() error {
	if !r.Type.Valid() {
		return invalid("recurrence_type", "unknown value %q", r.Type)
	}

	switch r.Type {
	case RecurrenceEveryXDays:
		if r.IntervalDays < 1 {
			return invalid("interval_days", "must be >= 1, got %d", r.IntervalDays)
		}
	case RecurrenceWeekly:
		seen := make(map[time.Weekday]bool, len(r.Weekdays))
		for _, w := range r.Weekdays {
			if w < time.Sunday || w > time.Saturday {
				return invalid("weekdays", "weekday %d out of range 0-6", int(w))
			}
			if seen[w] {
				return invalid("weekdays", "duplicate weekday %s", w)
			}
			seen[w] = true
		}
	}
	return nil
}

// Normalize completa defaults antes de validar (DosesPerDay 0 => 1,
// food vacío => does_not_matter) y limpia espacios.
func (d *ScheduledDose) Normalize() {
	d.AnimalID = strings.TrimSpace(d.AnimalID)
	d.MedicationID = strings.TrimSpace(d.MedicationID)
	d.Dosage = strings.TrimSpace(d.Dosage)
	d.Notes = strings.TrimSpace(d.Notes)
	d.TimeOfDay = strings.TrimSpace(d.TimeOfDay)

	if d.DosesPerDay == 0 {
		d.DosesPerDay = 1
	}
	for i := range d.TimeSlots {
		d.TimeSlots[i] = strings.TrimSpace(d.TimeSlots[i])
	}
	if d.Food == "" {
		d.Food = FoodDoesNotMatter
	}
	if d.Status == "" {
		d.Status = LifecycleActive
	}
}

// Validate se corre en create/update, nunca durante la generación.
func (d ScheduledDose) Validate() error {
	if d.AnimalID == "" {
		return invalid("animal_id", "required")
	}
	if d.MedicationID == "" {
		return invalid("medication_id", "required")
	}
	if err := d.Rule.Validate(); err != nil {
		return err
	}
	if d.Food != "" && !d.Food.Valid() {
		return invalid("food_relationship", "unknown value %q", d.Food)
	}
	if d.EndDate != nil && !d.StartDate.IsZero() && d.EndDate.Before(d.StartDate) {
		return invalid("end_date", "must not be before start_date")
	}

	switch {
	case d.DosesPerDay < 0:
		return invalid("doses_per_day", "must be >= 0, got %d", d.DosesPerDay)

	case d.DosesPerDay > 1:
		if len(d.TimeSlots) != d.DosesPerDay {
			return invalid("time_slots", "expected %d slots, got %d", d.DosesPerDay, len(d.TimeSlots))
		}
		seen := make(map[Clock]bool, len(d.TimeSlots))
		for _, s := range d.TimeSlots {
			c, err := ParseClock(s)
			if err != nil {
				return invalid("time_slots", "%v", err)
			}
			if seen[c] {
				return invalid("time_slots", "duplicate slot %s", c)
			}
			seen[c] = true
		}

	default:
		if d.Rule.Type == RecurrenceAsNeeded && d.TimeOfDay == "" {
			return nil
		}
		if _, err := ParseClock(d.TimeOfDay); err != nil {
			return invalid("time_of_day", "%v", err)
		}
	}
	return nil
}
