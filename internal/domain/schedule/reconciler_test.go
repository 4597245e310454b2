package schedule

import (
	"testing"
	"time"
)

func occAt(doseID string, hour, minute int) DoseOccurrence {
	day := NewDate(2024, time.March, 10)
	slot := NewClock(hour, minute)
	return DoseOccurrence{
		ID:              OccurrenceID(doseID, day, slot),
		ScheduledDoseID: doseID,
		AnimalID:        "a1",
		MedicationID:    "m1",
		Date:            day,
		Slot:            slot,
		DueAt:           day.At(slot, time.UTC),
	}
}

func logAt(id, doseID string, hour, minute int, given bool) DoseLog {
	return DoseLog{
		ID:               id,
		ScheduledDoseID:  doseID,
		AnimalID:         "a1",
		TimeAdministered: time.Date(2024, 3, 10, hour, minute, 0, 0, time.UTC),
		WasGiven:         given,
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestReconcile_WithinTolerance(t *testing.T) {
	occs := []DoseOccurrence{occAt("d1", 8, 0)}
	logs := []DoseLog{logAt("l1", "d1", 8, 7, true)}

	r := NewReconciler(Policy{Tolerance: 10 * time.Minute, GracePeriod: time.Hour}, time.UTC)
	st := r.Reconcile(occs, logs, at(12, 0))
	if st[0].Status != StatusGiven || st[0].Log == nil || st[0].Log.ID != "l1" {
		t.Fatalf("expected given with l1, got %+v", st[0])
	}
}

func TestReconcile_OutsideToleranceFallsBackToClock(t *testing.T) {
	occs := []DoseOccurrence{occAt("d1", 8, 0)}
	logs := []DoseLog{logAt("l1", "d1", 8, 7, true)}
	r := NewReconciler(Policy{Tolerance: 5 * time.Minute, GracePeriod: time.Hour}, time.UTC)

	cases := []struct {
		now  time.Time
		want DoseStatusKind
	}{
		{at(7, 0), StatusUpcoming},
		{at(8, 0), StatusDueNow},
		{at(8, 30), StatusDueNow},
		{at(9, 0), StatusDueNow},
		{at(9, 30), StatusMissed},
	}
	for _, c := range cases {
		st := r.Reconcile(occs, logs, c.now)
		if st[0].Status != c.want {
			t.Fatalf("now=%s: expected %s, got %s", c.now.Format("15:04"), c.want, st[0].Status)
		}
		if st[0].Log != nil {
			t.Fatalf("now=%s: expected no matched log", c.now.Format("15:04"))
		}
	}
}

func TestReconcile_SkippedLog(t *testing.T) {
	occs := []DoseOccurrence{occAt("d1", 8, 0)}
	logs := []DoseLog{logAt("l1", "d1", 8, 2, false)}

	st := NewReconciler(DefaultPolicy(), time.UTC).Reconcile(occs, logs, at(12, 0))
	if st[0].Status != StatusSkipped {
		t.Fatalf("expected skipped, got %s", st[0].Status)
	}
}

func TestReconcile_OneLogCoversOneOccurrence(t *testing.T) {
	occs := []DoseOccurrence{occAt("d1", 8, 0), occAt("d1", 8, 30)}
	logs := []DoseLog{logAt("l1", "d1", 8, 20, true)}

	st := NewReconciler(DefaultPolicy(), time.UTC).Reconcile(occs, logs, at(12, 0))
	if st[0].Status != StatusMissed {
		t.Fatalf("expected 08:00 missed, got %s", st[0].Status)
	}
	if st[1].Status != StatusGiven {
		t.Fatalf("expected 08:30 given (closest), got %s", st[1].Status)
	}
}

func TestReconcile_ClosestLogWins(t *testing.T) {
	occs := []DoseOccurrence{occAt("d1", 8, 0)}
	logs := []DoseLog{
		logAt("l-given", "d1", 8, 25, true),
		logAt("l-skip", "d1", 8, 1, false),
	}

	r := NewReconciler(Policy{Tolerance: 30 * time.Minute, GracePeriod: time.Hour}, time.UTC)
	st := r.Reconcile(occs, logs, at(12, 0))
	if st[0].Status != StatusSkipped || st[0].Log == nil || st[0].Log.ID != "l-skip" {
		t.Fatalf("expected skipped via closest log l-skip, got %+v", st[0])
	}
}

func TestReconcile_LateLogStaysOnItsOccurrence(t *testing.T) {
	morning, noon := occAt("d1", 8, 0), occAt("d1", 11, 0)
	late := logAt("l1", "d1", 10, 30, true)
	late.OccurrenceID = morning.ID

	st := NewReconciler(DefaultPolicy(), time.UTC).Reconcile([]DoseOccurrence{morning, noon}, []DoseLog{late}, at(10, 31))
	if st[0].Status != StatusGiven || st[0].Log == nil || st[0].Log.ID != "l1" {
		t.Fatalf("expected 08:00 given via l1, got %+v", st[0])
	}
	if st[1].Status != StatusUpcoming || st[1].Log != nil {
		t.Fatalf("expected 11:00 upcoming, got %+v", st[1])
	}
}

func TestReconcile_BoundLogBeatsCloserAdHocLog(t *testing.T) {
	morning, later := occAt("d1", 8, 0), occAt("d1", 8, 30)
	bound := logAt("l-bound", "d1", 8, 28, true)
	bound.OccurrenceID = morning.ID
	adHoc := logAt("l-adhoc", "d1", 8, 2, true)

	st := NewReconciler(DefaultPolicy(), time.UTC).Reconcile([]DoseOccurrence{morning, later}, []DoseLog{adHoc, bound}, at(12, 0))
	if st[0].Log == nil || st[0].Log.ID != "l-bound" {
		t.Fatalf("expected 08:00 covered by its own log, got %+v", st[0])
	}
	if st[1].Log == nil || st[1].Log.ID != "l-adhoc" {
		t.Fatalf("expected 08:30 covered by the ad hoc log, got %+v", st[1])
	}
}

func TestReconcile_BoundLogForUnknownOccurrenceIsIgnored(t *testing.T) {
	occs := []DoseOccurrence{occAt("d1", 8, 0)}
	l := logAt("l1", "d1", 8, 1, true)
	l.OccurrenceID = occAt("d1", 20, 0).ID

	st := NewReconciler(DefaultPolicy(), time.UTC).Reconcile(occs, []DoseLog{l}, at(8, 10))
	if st[0].Log != nil || st[0].Status != StatusDueNow {
		t.Fatalf("expected 08:00 due_now without log, got %+v", st[0])
	}
}

func TestReconcile_IgnoresOtherDoseOrAnimalOrDay(t *testing.T) {
	occs := []DoseOccurrence{occAt("d1", 0, 10)}

	otherDose := logAt("l1", "d2", 0, 10, true)
	otherAnimal := logAt("l2", "d1", 0, 10, true)
	otherAnimal.AnimalID = "a2"
	// 20 minutos antes pero del día anterior.
	prevDay := logAt("l3", "d1", 0, 0, true)
	prevDay.TimeAdministered = time.Date(2024, 3, 9, 23, 50, 0, 0, time.UTC)

	st := NewReconciler(DefaultPolicy(), time.UTC).Reconcile(occs, []DoseLog{otherDose, otherAnimal, prevDay}, at(0, 0))
	if st[0].Log != nil {
		t.Fatalf("expected no match, got %s", st[0].Log.ID)
	}
	if st[0].Status != StatusUpcoming {
		t.Fatalf("expected upcoming, got %s", st[0].Status)
	}
}

func TestReconcile_KeepsInputOrder(t *testing.T) {
	occs := []DoseOccurrence{occAt("d2", 9, 0), occAt("d1", 8, 0)}
	st := NewReconciler(DefaultPolicy(), time.UTC).Reconcile(occs, nil, at(7, 0))
	if len(st) != 2 || st[0].Occurrence.ScheduledDoseID != "d2" || st[1].Occurrence.ScheduledDoseID != "d1" {
		t.Fatalf("expected input order preserved, got %+v", st)
	}
}
