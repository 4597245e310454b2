package schedule

import (
	"sort"
	"time"
)

// Generator expande dosis programadas en ocurrencias concretas.
// Location es la zona del shelter; Now solo se usa para defaultear el fin de ventana.
type Generator struct {
	Location *time.Location
	Now      func() time.Time
}

func NewGenerator(loc *time.Location) Generator {
	if loc == nil {
		loc = time.UTC
	}
	return Generator{Location: loc, Now: time.Now}
}

func (g Generator) loc() *time.Location {
	if g.Location == nil {
		return time.UTC
	}
	return g.Location
}

// Today es la fecha actual en la zona del shelter.
func (g Generator) Today() Date {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return DateOf(now(), g.loc())
}

// Anchor es el primer día de la dosis: StartDate o, si no se guardó, el día de creación.
func (g Generator) Anchor(d ScheduledDose) Date {
	if !d.StartDate.IsZero() {
		return d.StartDate
	}
	if !d.CreatedAt.IsZero() {
		return DateOf(d.CreatedAt, g.loc())
	}
	return Date{}
}

// Generate devuelve las ocurrencias de [start, end], ambos inclusive.
// end cero => hoy. end < start => vacío. Las dosis as_needed y las
// discontinuadas no aparecen nunca.
// Orden: fecha, hora, animal, dosis. Mismas entradas => misma salida.
func (g Generator) Generate(doses []ScheduledDose, start, end Date) []DoseOccurrence {
	if end.IsZero() {
		end = g.Today()
	}
	if start.IsZero() {
		start = end
	}
	if end.Before(start) {
		return []DoseOccurrence{}
	}

	loc := g.loc()
	days := DaysBetween(start, end) + 1
	out := make([]DoseOccurrence, 0)

	for _, d := range doses {
		if d.Rule.Type == RecurrenceAsNeeded || !d.IsActive() {
			continue
		}
		slots := d.Slots()
		if len(slots) == 0 {
			continue
		}
		anchor := g.Anchor(d)

		for i := 0; i < days; i++ {
			day := start.AddDays(i)
			if !d.Covers(day) || !d.Rule.IsActive(day, anchor) {
				continue
			}
			for _, slot := range slots {
				out = append(out, DoseOccurrence{
					ID:              OccurrenceID(d.ID, day, slot),
					ScheduledDoseID: d.ID,
					AnimalID:        d.AnimalID,
					MedicationID:    d.MedicationID,
					Date:            day,
					Slot:            slot,
					DueAt:           day.At(slot, loc),
					Dosage:          d.Dosage,
					Food:            d.Food,
					Notes:           d.Notes,
				})
			}
		}
	}

	SortOccurrences(out)
	return out
}

func SortOccurrences(occs []DoseOccurrence) {
	sort.SliceStable(occs, func(i, j int) bool {
		return occurrenceLess(occs[i], occs[j])
	})
}

func occurrenceLess(a, b DoseOccurrence) bool {
	if a.Date != b.Date {
		return a.Date.Before(b.Date)
	}
	if a.Slot != b.Slot {
		return a.Slot < b.Slot
	}
	if a.AnimalID != b.AnimalID {
		return a.AnimalID < b.AnimalID
	}
	return a.ScheduledDoseID < b.ScheduledDoseID
}
