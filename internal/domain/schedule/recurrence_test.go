package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestRecurrence_DailyAlwaysActive(t *testing.T) {
	r := RecurrenceRule{Type: RecurrenceDaily}
	anchor := NewDate(2024, time.January, 1)

	for i := -10; i < 400; i++ {
		day := anchor.AddDays(i)
		if !r.IsActive(day, anchor) {
			t.Fatalf("daily should be active on %s", day)
		}
	}
}

func TestRecurrence_EveryXDays(t *testing.T) {
	r := RecurrenceRule{Type: RecurrenceEveryXDays, IntervalDays: 2}
	anchor := NewDate(2024, time.January, 1)

	cases := map[string]bool{
		"2023-12-30": true,
		"2023-12-31": false,
		"2024-01-01": true,
		"2024-01-02": false,
		"2024-01-03": true,
		"2024-01-04": false,
		"2024-01-05": true,
		"2024-03-01": true, // 60 días después
	}
	for s, want := range cases {
		day, err := ParseDate(s)
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		if got := r.IsActive(day, anchor); got != want {
			t.Fatalf("%s: expected %v, got %v", s, want, got)
		}
	}
}

func TestRecurrence_EveryXDays_ZeroIntervalNeverFires(t *testing.T) {
	r := RecurrenceRule{Type: RecurrenceEveryXDays}
	anchor := NewDate(2024, time.January, 1)
	if r.IsActive(anchor, anchor) {
		t.Fatalf("interval 0 must never fire")
	}
}

func TestRecurrence_WeeklyMondayFriday(t *testing.T) {
	r := RecurrenceRule{Type: RecurrenceWeekly, Weekdays: []time.Weekday{time.Monday, time.Friday}}
	anchor := NewDate(2024, time.January, 1)

	var hits []string
	for i := 0; i < 7; i++ {
		day := anchor.AddDays(i)
		if r.IsActive(day, anchor) {
			hits = append(hits, day.String())
		}
	}
	if len(hits) != 2 || hits[0] != "2024-01-01" || hits[1] != "2024-01-05" {
		t.Fatalf("expected [2024-01-01 2024-01-05], got %v", hits)
	}
}

func TestRecurrence_WeeklyEmptyNeverFires(t *testing.T) {
	r := RecurrenceRule{Type: RecurrenceWeekly}
	anchor := NewDate(2024, time.January, 1)
	for i := 0; i < 14; i++ {
		if r.IsActive(anchor.AddDays(i), anchor) {
			t.Fatalf("weekly without weekdays must never fire")
		}
	}
}

func TestRecurrence_BiWeekly(t *testing.T) {
	r := RecurrenceRule{Type: RecurrenceBiWeekly}
	anchor := NewDate(2024, time.January, 1)

	if !r.IsActive(NewDate(2024, time.January, 15), anchor) {
		t.Fatalf("expected active 14 days after anchor")
	}
	if r.IsActive(NewDate(2024, time.January, 8), anchor) {
		t.Fatalf("expected inactive 7 days after anchor")
	}
	if !r.IsActive(NewDate(2023, time.December, 18), anchor) {
		t.Fatalf("expected active 14 days before anchor")
	}
}

func TestRecurrence_MonthlyClampsToLastDay(t *testing.T) {
	r := RecurrenceRule{Type: RecurrenceMonthly}
	anchor := NewDate(2023, time.January, 31)

	active := []Date{
		NewDate(2023, time.January, 31),
		NewDate(2023, time.February, 28),
		NewDate(2023, time.March, 31),
		NewDate(2023, time.April, 30),
		NewDate(2024, time.February, 29),
	}
	for _, d := range active {
		if !r.IsActive(d, anchor) {
			t.Fatalf("expected active on %s", d)
		}
	}

	inactive := []Date{
		NewDate(2023, time.February, 27),
		NewDate(2023, time.March, 30),
		NewDate(2023, time.April, 29),
	}
	for _, d := range inactive {
		if r.IsActive(d, anchor) {
			t.Fatalf("expected inactive on %s", d)
		}
	}
}

func TestRecurrence_AsNeededNeverFires(t *testing.T) {
	r := RecurrenceRule{Type: RecurrenceAsNeeded}
	anchor := NewDate(2024, time.January, 1)
	if r.IsActive(anchor, anchor) {
		t.Fatalf("as_needed must never fire")
	}
}

func TestRecurrenceRule_Validate(t *testing.T) {
	bad := map[string]RecurrenceRule{
		"unknown type":     {Type: "hourly"},
		"zero interval":    {Type: RecurrenceEveryXDays},
		"weekday range":    {Type: RecurrenceWeekly, Weekdays: []time.Weekday{7}},
		"negative weekday": {Type: RecurrenceWeekly, Weekdays: []time.Weekday{-1}},
		"dup weekday":      {Type: RecurrenceWeekly, Weekdays: []time.Weekday{time.Monday, time.Monday}},
	}
	for name, r := range bad {
		err := r.Validate()
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field == "" {
			t.Fatalf("%s: expected ValidationError with field, got %v", name, err)
		}
	}

	good := []RecurrenceRule{
		{Type: RecurrenceDaily},
		{Type: RecurrenceEveryXDays, IntervalDays: 3},
		{Type: RecurrenceWeekly},
		{Type: RecurrenceWeekly, Weekdays: []time.Weekday{time.Sunday, time.Saturday}},
		{Type: RecurrenceBiWeekly},
		{Type: RecurrenceMonthly},
		{Type: RecurrenceAsNeeded},
	}
	for _, r := range good {
		if err := r.Validate(); err != nil {
			t.Fatalf("%s: unexpected error %v", r.Type, err)
		}
	}
}

func TestParseClock(t *testing.T) {
	ok := map[string]Clock{
		"08:00": NewClock(8, 0),
		"8:00":  NewClock(8, 0),
		"23:59": NewClock(23, 59),
		"00:00": 0,
	}
	for s, want := range ok {
		got, err := ParseClock(s)
		if err != nil || got != want {
			t.Fatalf("%q: expected %s, got %s (%v)", s, want, got, err)
		}
	}

	for _, s := range []string{"24:00", "12:60", "8", "8:0", "ab:cd", "-1:00", ""} {
		if _, err := ParseClock(s); err == nil {
			t.Fatalf("%q: expected error", s)
		}
	}
}

func TestOccurrenceID_RoundTrip(t *testing.T) {
	day := NewDate(2024, time.March, 10)
	id := OccurrenceID("dose@1", day, NewClock(8, 30))
	if id != "dose@1@2024-03-10T08:30" {
		t.Fatalf("unexpected id %q", id)
	}

	doseID, gotDay, slot, err := ParseOccurrenceID(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doseID != "dose@1" || gotDay != day || slot != NewClock(8, 30) {
		t.Fatalf("unexpected parse: %s %s %s", doseID, gotDay, slot)
	}

	for _, s := range []string{"", "nodate", "@2024-03-10T08:00", "d@2024-13-01T08:00", "d@2024-03-10"} {
		if _, _, _, err := ParseOccurrenceID(s); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%q: expected ErrInvalidInput, got %v", s, err)
		}
	}
}
