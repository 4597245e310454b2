package schedule

import (
	"reflect"
	"testing"
	"time"
)

func testDose(id string, rule RecurrenceRule, start Date) ScheduledDose {
	return ScheduledDose{
		ID:           id,
		ShelterID:    "s1",
		AnimalID:     "a1",
		MedicationID: "m1",
		Rule:         rule,
		TimeOfDay:    "08:00",
		DosesPerDay:  1,
		Food:         FoodWith,
		StartDate:    start,
		Status:       LifecycleActive,
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	g := NewGenerator(time.UTC)
	start := NewDate(2024, time.January, 1)
	doses := []ScheduledDose{
		testDose("d1", RecurrenceRule{Type: RecurrenceDaily}, start),
		testDose("d2", RecurrenceRule{Type: RecurrenceEveryXDays, IntervalDays: 3}, start),
		testDose("d3", RecurrenceRule{Type: RecurrenceWeekly, Weekdays: []time.Weekday{time.Tuesday}}, start),
	}

	a := g.Generate(doses, start, start.AddDays(13))
	b := g.Generate(doses, start, start.AddDays(13))
	if len(a) == 0 {
		t.Fatalf("expected occurrences")
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected same output for same input")
	}
}

func TestGenerate_MultipleSlotsDistinctIDs(t *testing.T) {
	g := NewGenerator(time.UTC)
	day := NewDate(2024, time.March, 10)
	d := testDose("d1", RecurrenceRule{Type: RecurrenceDaily}, day)
	d.DosesPerDay = 3
	d.TimeSlots = []string{"20:00", "08:00", "14:00"}

	occs := g.Generate([]ScheduledDose{d}, day, day)
	if len(occs) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(occs))
	}

	seen := map[string]bool{}
	for _, o := range occs {
		if seen[o.ID] {
			t.Fatalf("duplicate occurrence id %s", o.ID)
		}
		seen[o.ID] = true
	}
	if occs[0].Slot != NewClock(8, 0) || occs[1].Slot != NewClock(14, 0) || occs[2].Slot != NewClock(20, 0) {
		t.Fatalf("expected slots ordered by time, got %s %s %s", occs[0].Slot, occs[1].Slot, occs[2].Slot)
	}
	if !occs[1].DueAt.Equal(time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected due at %s", occs[1].DueAt)
	}
}

func TestGenerate_SkipsAsNeededAndDiscontinued(t *testing.T) {
	g := NewGenerator(time.UTC)
	day := NewDate(2024, time.March, 10)

	prn := testDose("prn", RecurrenceRule{Type: RecurrenceAsNeeded}, day)
	off := testDose("off", RecurrenceRule{Type: RecurrenceDaily}, day)
	off.Status = LifecycleDiscontinued

	if occs := g.Generate([]ScheduledDose{prn, off}, day, day.AddDays(30)); len(occs) != 0 {
		t.Fatalf("expected no occurrences, got %d", len(occs))
	}
}

func TestGenerate_ClipsToStartAndEnd(t *testing.T) {
	g := NewGenerator(time.UTC)
	start := NewDate(2024, time.March, 10)
	end := NewDate(2024, time.March, 12)
	d := testDose("d1", RecurrenceRule{Type: RecurrenceDaily}, start)
	d.EndDate = &end

	occs := g.Generate([]ScheduledDose{d}, start.AddDays(-5), start.AddDays(10))
	if len(occs) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(occs))
	}
	if occs[0].Date != start || occs[2].Date != end {
		t.Fatalf("unexpected range %s..%s", occs[0].Date, occs[2].Date)
	}
}

func TestGenerate_EndBeforeStartIsEmpty(t *testing.T) {
	g := NewGenerator(time.UTC)
	day := NewDate(2024, time.March, 10)
	d := testDose("d1", RecurrenceRule{Type: RecurrenceDaily}, day)

	if occs := g.Generate([]ScheduledDose{d}, day.AddDays(1), day); len(occs) != 0 {
		t.Fatalf("expected empty, got %d", len(occs))
	}
}

func TestGenerate_ZeroEndDefaultsToToday(t *testing.T) {
	g := Generator{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC) },
	}
	d := testDose("d1", RecurrenceRule{Type: RecurrenceDaily}, NewDate(2024, time.March, 1))

	occs := g.Generate([]ScheduledDose{d}, Date{}, Date{})
	if len(occs) != 1 || occs[0].Date != NewDate(2024, time.March, 12) {
		t.Fatalf("expected only today, got %+v", occs)
	}
}

func TestGenerate_OrderedByDateSlotAnimal(t *testing.T) {
	g := NewGenerator(time.UTC)
	day := NewDate(2024, time.March, 10)

	a := testDose("d-a", RecurrenceRule{Type: RecurrenceDaily}, day)
	a.AnimalID = "zeta"
	b := testDose("d-b", RecurrenceRule{Type: RecurrenceDaily}, day)
	b.AnimalID = "alpha"
	c := testDose("d-c", RecurrenceRule{Type: RecurrenceDaily}, day)
	c.TimeOfDay = "07:00"

	occs := g.Generate([]ScheduledDose{a, b, c}, day, day.AddDays(1))
	got := make([]string, 0, len(occs))
	for _, o := range occs {
		got = append(got, o.ScheduledDoseID)
	}
	want := []string{"d-c", "d-b", "d-a", "d-c", "d-b", "d-a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestGenerate_UsesShelterLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}
	g := NewGenerator(loc)
	day := NewDate(2024, time.March, 10)
	d := testDose("d1", RecurrenceRule{Type: RecurrenceDaily}, day)

	occs := g.Generate([]ScheduledDose{d}, day, day)
	if len(occs) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(occs))
	}
	// 08:00 en Buenos Aires (UTC-3) son las 11:00 UTC.
	if want := time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC); !occs[0].DueAt.Equal(want) {
		t.Fatalf("expected %s, got %s", want, occs[0].DueAt.UTC())
	}
}
