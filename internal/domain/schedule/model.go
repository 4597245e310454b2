package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RecurrenceRule: qué días del calendario está activa una dosis.
type RecurrenceRule struct {
	Type         RecurrenceType
	IntervalDays int            // solo every_x_days
	Weekdays     []time.Weekday // solo weekly
}

// ScheduledDose es la receta de una medicación para un animal.
type ScheduledDose struct {
	ID           string
	ShelterID    string
	AnimalID     string
	MedicationID string

	Dosage string // override; vacío = dosis por defecto de la medicación
	Notes  string

	Rule RecurrenceRule

	// Si DosesPerDay > 1 mandan TimeSlots; si no, TimeOfDay.
	TimeOfDay   string
	DosesPerDay int
	TimeSlots   []string

	Food FoodRelationship

	StartDate Date  // ancla de la recurrencia
	EndDate   *Date // inclusive; nil = sin fin

	Status       Lifecycle
	CreatedByUID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (d ScheduledDose) IsActive() bool { return d.Status != LifecycleDiscontinued }

// Slots devuelve las horas del día de la dosis, ordenadas.
// Entradas que no parsean se ignoran: Validate ya las rechazó al persistir.
func (d ScheduledDose) Slots() []Clock {
	raw := []string{d.TimeOfDay}
	if d.DosesPerDay > 1 {
		raw = d.TimeSlots
	}

	out := make([]Clock, 0, len(raw))
	for _, s := range raw {
		c, err := ParseClock(s)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Covers indica si la fecha cae dentro de [StartDate, EndDate].
func (d ScheduledDose) Covers(day Date) bool {
	if !d.StartDate.IsZero() && day.Before(d.StartDate) {
		return false
	}
	if d.EndDate != nil && day.After(*d.EndDate) {
		return false
	}
	return true
}

// DoseOccurrence es una administración esperada. Se calcula, no se persiste.
type DoseOccurrence struct {
	ID              string
	ScheduledDoseID string
	AnimalID        string
	MedicationID    string

	Date  Date
	Slot  Clock
	DueAt time.Time

	Dosage string
	Food   FoodRelationship
	Notes  string
}

// DoseLog es el registro de auditoría. Append-only.
// MedicationName y Dosage son una foto del momento de la administración.
type DoseLog struct {
	ID              string
	ShelterID       string
	ScheduledDoseID string
	AnimalID        string
	OccurrenceID    string // vacío para registros ad hoc (as_needed)

	MedicationName string
	Dosage         string

	TimeAdministered  time.Time
	AdministeredByUID string
	WasGiven          bool
	Notes             string

	RecordedAt time.Time
}

type DoseStatus struct {
	Occurrence DoseOccurrence
	Status     DoseStatusKind
	Log        *DoseLog
}

// OccurrenceID: "<doseID>@<YYYY-MM-DD>T<HH:mm>". Estable entre llamadas.
func OccurrenceID(doseID string, day Date, slot Clock) string {
	return doseID + "@" + day.String() + "T" + slot.String()
}

// ParseOccurrenceID separa por el último "@" (los ids de dosis pueden contenerlo).
func ParseOccurrenceID(id string) (doseID string, day Date, slot Clock, err error) {
	i := strings.LastIndex(id, "@")
	if i <= 0 {
		return "", Date{}, 0, fmt.Errorf("%w: occurrence id %q", ErrInvalidInput, id)
	}
	doseID = id[:i]

	ds, cs, ok := strings.Cut(id[i+1:], "T")
	if !ok {
		return "", Date{}, 0, fmt.Errorf("%w: occurrence id %q", ErrInvalidInput, id)
	}
	if day, err = ParseDate(ds); err != nil {
		return "", Date{}, 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if slot, err = ParseClock(cs); err != nil {
		return "", Date{}, 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return doseID, day, slot, nil
}
