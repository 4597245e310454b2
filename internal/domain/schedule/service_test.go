package schedule

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"shelter-meds/internal/domain/animals"
	"shelter-meds/internal/domain/medications"
	"shelter-meds/internal/ports/auth"
)

type testRepo struct {
	doses map[string]ScheduledDose // shelterID/id
	logs  []DoseLog
}

func newTestRepo() *testRepo {
	return &testRepo{doses: map[string]ScheduledDose{}}
}

func (r *testRepo) CreateDose(ctx context.Context, scope auth.Scope, d ScheduledDose) error {
	r.doses[scope.ShelterID+"/"+d.ID] = d
	return nil
}

func (r *testRepo) UpdateDose(ctx context.Context, scope auth.Scope, d ScheduledDose) error {
	if _, ok := r.doses[scope.ShelterID+"/"+d.ID]; !ok {
		return ErrNotFound
	}
	r.doses[scope.ShelterID+"/"+d.ID] = d
	return nil
}

func (r *testRepo) GetDose(ctx context.Context, scope auth.Scope, id string) (ScheduledDose, error) {
	d, ok := r.doses[scope.ShelterID+"/"+id]
	if !ok {
		return ScheduledDose{}, ErrNotFound
	}
	return d, nil
}

func (r *testRepo) ListDoses(ctx context.Context, scope auth.Scope, filter DoseFilter) ([]ScheduledDose, error) {
	out := make([]ScheduledDose, 0)
	for _, d := range r.doses {
		if d.ShelterID != scope.ShelterID {
			continue
		}
		if filter.AnimalID != "" && d.AnimalID != filter.AnimalID {
			continue
		}
		if !filter.IncludeDiscontinued && !d.IsActive() {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *testRepo) AppendLog(ctx context.Context, scope auth.Scope, l DoseLog) error {
	r.logs = append(r.logs, l)
	return nil
}

func (r *testRepo) ListLogs(ctx context.Context, scope auth.Scope, filter LogFilter) ([]DoseLog, error) {
	out := make([]DoseLog, 0)
	for _, l := range r.logs {
		if l.ShelterID != scope.ShelterID {
			continue
		}
		if filter.AnimalID != "" && l.AnimalID != filter.AnimalID {
			continue
		}
		if filter.ScheduledDoseID != "" && l.ScheduledDoseID != filter.ScheduledDoseID {
			continue
		}
		if filter.From != nil && l.TimeAdministered.Before(*filter.From) {
			continue
		}
		if filter.To != nil && l.TimeAdministered.After(*filter.To) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

type testMeds map[string]medications.Medication

func (m testMeds) Get(ctx context.Context, scope auth.Scope, id string) (medications.Medication, error) {
	med, ok := m[id]
	if !ok || med.ShelterID != scope.ShelterID {
		return medications.Medication{}, medications.ErrNotFound
	}
	return med, nil
}

type testAnimals map[string]animals.Animal

func (a testAnimals) Get(ctx context.Context, scope auth.Scope, id string) (animals.Animal, error) {
	an, ok := a[id]
	if !ok || an.ShelterID != scope.ShelterID {
		return animals.Animal{}, animals.ErrNotFound
	}
	return an, nil
}

type testClaimer struct {
	claimed  map[string]bool
	released []string
}

func (c *testClaimer) Claim(ctx context.Context, shelterID, occurrenceID string) (bool, error) {
	k := shelterID + "/" + occurrenceID
	if c.claimed[k] {
		return false, nil
	}
	c.claimed[k] = true
	return true, nil
}

func (c *testClaimer) Release(ctx context.Context, shelterID, occurrenceID string) error {
	delete(c.claimed, shelterID+"/"+occurrenceID)
	c.released = append(c.released, occurrenceID)
	return nil
}

type fixture struct {
	svc   *Service
	repo  *testRepo
	meds  testMeds
	scope auth.Scope
	clock *time.Time
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	repo := newTestRepo()
	meds := testMeds{
		"m1": {ID: "m1", ShelterID: "s1", Name: "Amoxicillin", DefaultDosage: "1 tablet"},
	}
	herd := testAnimals{
		"a1": {ID: "a1", ShelterID: "s1", Name: "Luna", IsActive: true},
		"a2": {ID: "a2", ShelterID: "s1", Name: "Toby", IsActive: true},
	}

	svc := NewService(repo, meds, herd, cfg, nil)
	now := time.Date(2024, 3, 10, 8, 5, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}

	return &fixture{
		svc:  svc,
		repo: repo,
		meds: meds,
		scope: auth.Scope{
			ShelterID:  "s1",
			Credential: auth.Credential{Token: "tok", SubjectID: "u1"},
		},
		clock: &now,
	}
}

func dailyAt(animalID, hhmm string) DoseInput {
	return DoseInput{
		AnimalID:     animalID,
		MedicationID: "m1",
		Rule:         RecurrenceRule{Type: RecurrenceDaily},
		TimeOfDay:    hhmm,
		StartDate:    NewDate(2024, time.March, 1),
	}
}

func TestService_CreateDose_DefaultsAndAudit(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	in := dailyAt("a1", "08:00")
	in.StartDate = Date{}
	d, err := f.svc.CreateDose(context.Background(), f.scope, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.StartDate != NewDate(2024, time.March, 10) {
		t.Fatalf("expected start date today, got %s", d.StartDate)
	}
	if d.DosesPerDay != 1 || d.Food != FoodDoesNotMatter || d.Status != LifecycleActive {
		t.Fatalf("unexpected defaults: %+v", d)
	}
	if d.CreatedByUID != "u1" || d.ShelterID != "s1" {
		t.Fatalf("expected audit fields from scope, got %+v", d)
	}
}

func TestService_CreateDose_Rejects(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	bad := map[string]func(in *DoseInput){
		"weekday out of range": func(in *DoseInput) {
			in.Rule = RecurrenceRule{Type: RecurrenceWeekly, Weekdays: []time.Weekday{7}}
		},
		"zero interval": func(in *DoseInput) {
			in.Rule = RecurrenceRule{Type: RecurrenceEveryXDays}
		},
		"slots mismatch": func(in *DoseInput) {
			in.DosesPerDay = 3
			in.TimeSlots = []string{"08:00", "20:00"}
		},
		"duplicate slots": func(in *DoseInput) {
			in.DosesPerDay = 2
			in.TimeSlots = []string{"08:00", "8:00"}
		},
		"bad time": func(in *DoseInput) {
			in.TimeOfDay = "25:00"
		},
		"end before start": func(in *DoseInput) {
			end := NewDate(2024, time.February, 1)
			in.EndDate = &end
		},
		"unknown food": func(in *DoseInput) {
			in.Food = "with_wine"
		},
	}
	for name, mutate := range bad {
		in := dailyAt("a1", "08:00")
		mutate(&in)
		if _, err := f.svc.CreateDose(ctx, f.scope, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}

	if _, err := f.svc.CreateDose(ctx, f.scope, dailyAt("ghost", "08:00")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown animal, got %v", err)
	}

	in := dailyAt("a1", "08:00")
	in.MedicationID = "ghost"
	if _, err := f.svc.CreateDose(ctx, f.scope, in); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown medication, got %v", err)
	}

	if len(f.repo.doses) != 0 {
		t.Fatalf("expected nothing persisted, got %d", len(f.repo.doses))
	}
}

func TestService_CreateDose_AsNeededWithoutTime(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	in := dailyAt("a1", "")
	in.Rule = RecurrenceRule{Type: RecurrenceAsNeeded}
	if _, err := f.svc.CreateDose(context.Background(), f.scope, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_GetDueToday_ReconcilesAgainstLogs(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	morning, err := f.svc.CreateDose(ctx, f.scope, dailyAt("a1", "08:00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.CreateDose(ctx, f.scope, dailyAt("a2", "18:00")); err != nil {
		t.Fatalf("create: %v", err)
	}

	due, err := f.svc.GetDueToday(ctx, f.scope, "")
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(due))
	}
	if due[0].Status != StatusDueNow || due[1].Status != StatusUpcoming {
		t.Fatalf("expected due_now/upcoming, got %s/%s", due[0].Status, due[1].Status)
	}

	occID := OccurrenceID(morning.ID, NewDate(2024, time.March, 10), NewClock(8, 0))
	if due[0].Occurrence.ID != occID {
		t.Fatalf("expected occurrence %s, got %s", occID, due[0].Occurrence.ID)
	}

	if _, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{OccurrenceID: occID, WasGiven: true}); err != nil {
		t.Fatalf("record: %v", err)
	}

	due, err = f.svc.GetDueToday(ctx, f.scope, "a1")
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 1 || due[0].Status != StatusGiven || due[0].Log == nil {
		t.Fatalf("expected single given occurrence, got %+v", due)
	}
}

func TestService_GetDue_WindowChecks(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()
	from := NewDate(2024, time.March, 1)

	if _, err := f.svc.GetDue(ctx, f.scope, "", from, from.AddDays(-1)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for to < from, got %v", err)
	}
	if _, err := f.svc.GetDue(ctx, f.scope, "", from, from.AddDays(31)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for 32-day window, got %v", err)
	}
	if _, err := f.svc.GetDue(ctx, f.scope, "", from, from.AddDays(30)); err != nil {
		t.Fatalf("31-day window should pass, got %v", err)
	}
	if _, err := f.svc.GetDue(ctx, f.scope, "ghost", from, from); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown animal, got %v", err)
	}
	if _, err := f.svc.GetDue(ctx, auth.Scope{}, "", from, from); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without shelter, got %v", err)
	}
}

func TestService_RecordAdministration_SnapshotSurvivesMedicationEdit(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	d, err := f.svc.CreateDose(ctx, f.scope, dailyAt("a1", "08:00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	occID := OccurrenceID(d.ID, NewDate(2024, time.March, 10), NewClock(8, 0))

	l, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{OccurrenceID: occID, WasGiven: true, Notes: " ate well "})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if l.MedicationName != "Amoxicillin" || l.Dosage != "1 tablet" {
		t.Fatalf("expected snapshot of medication, got %+v", l)
	}
	if l.AdministeredByUID != "u1" || l.Notes != "ate well" {
		t.Fatalf("unexpected log fields: %+v", l)
	}

	f.meds["m1"] = medications.Medication{ID: "m1", ShelterID: "s1", Name: "Amoxicillin 500", DefaultDosage: "2 tablets"}

	hist, err := f.svc.GetHistory(ctx, f.scope, "a1", Date{}, Date{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 || hist[0].MedicationName != "Amoxicillin" || hist[0].Dosage != "1 tablet" {
		t.Fatalf("expected original snapshot in history, got %+v", hist)
	}
}

func TestService_RecordAdministration_DosageOverride(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	in := dailyAt("a1", "08:00")
	in.Dosage = "half tablet"
	d, err := f.svc.CreateDose(ctx, f.scope, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	l, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{ScheduledDoseID: d.ID, WasGiven: true, AdministeredByUID: "vet-7"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if l.Dosage != "half tablet" || l.AdministeredByUID != "vet-7" || l.OccurrenceID != "" {
		t.Fatalf("unexpected log: %+v", l)
	}
}

func TestService_RecordAdministration_Rejects(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	d, err := f.svc.CreateDose(ctx, f.scope, dailyAt("a1", "08:00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cases := map[string]RecordInput{
		"no dose":          {},
		"bad occurrence":   {OccurrenceID: "garbage"},
		"wrong slot":       {OccurrenceID: OccurrenceID(d.ID, NewDate(2024, time.March, 10), NewClock(9, 0))},
		"before start":     {OccurrenceID: OccurrenceID(d.ID, NewDate(2024, time.February, 1), NewClock(8, 0))},
		"mismatching dose": {OccurrenceID: OccurrenceID(d.ID, NewDate(2024, time.March, 10), NewClock(8, 0)), ScheduledDoseID: "other"},
	}
	for name, in := range cases {
		if _, err := f.svc.RecordAdministration(ctx, f.scope, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}

	if _, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{ScheduledDoseID: "ghost"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	noSubject := auth.Scope{ShelterID: "s1"}
	if _, err := f.svc.RecordAdministration(ctx, noSubject, RecordInput{ScheduledDoseID: d.ID}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without administrator, got %v", err)
	}

	if len(f.repo.logs) != 0 {
		t.Fatalf("expected no logs, got %d", len(f.repo.logs))
	}
}

func TestService_RecordAdministration_AllowPolicyKeepsDuplicates(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	d, _ := f.svc.CreateDose(ctx, f.scope, dailyAt("a1", "08:00"))
	occID := OccurrenceID(d.ID, NewDate(2024, time.March, 10), NewClock(8, 0))

	for i := 0; i < 2; i++ {
		if _, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{OccurrenceID: occID, WasGiven: true}); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	if len(f.repo.logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(f.repo.logs))
	}
}

func TestService_RecordAdministration_RejectPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Duplicates = DuplicatesReject
	f := newFixture(t, cfg)
	ctx := context.Background()

	d, _ := f.svc.CreateDose(ctx, f.scope, dailyAt("a1", "08:00"))
	occID := OccurrenceID(d.ID, NewDate(2024, time.March, 10), NewClock(8, 0))

	if _, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{OccurrenceID: occID, WasGiven: true}); err != nil {
		t.Fatalf("first record: %v", err)
	}
	_, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{OccurrenceID: occID, WasGiven: true})
	if !errors.Is(err, ErrDuplicateAdministration) {
		t.Fatalf("expected ErrDuplicateAdministration, got %v", err)
	}

	// Un log ad hoc dentro de la tolerancia también cuenta como registro.
	other, _ := f.svc.CreateDose(ctx, f.scope, dailyAt("a2", "08:00"))
	if _, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{ScheduledDoseID: other.ID, WasGiven: true}); err != nil {
		t.Fatalf("ad hoc record: %v", err)
	}
	otherOcc := OccurrenceID(other.ID, NewDate(2024, time.March, 10), NewClock(8, 0))
	_, err = f.svc.RecordAdministration(ctx, f.scope, RecordInput{OccurrenceID: otherOcc, WasGiven: true})
	if !errors.Is(err, ErrDuplicateAdministration) {
		t.Fatalf("expected ErrDuplicateAdministration after matching ad hoc log, got %v", err)
	}

	if len(f.repo.logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(f.repo.logs))
	}
}

func twoSlots(animalID string, slots ...string) DoseInput {
	in := dailyAt(animalID, "")
	in.DosesPerDay = len(slots)
	in.TimeSlots = slots
	return in
}

func TestService_RecordAdministration_RejectPolicyNeighbourSlot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Duplicates = DuplicatesReject
	f := newFixture(t, cfg)
	ctx := context.Background()
	day := NewDate(2024, time.March, 10)

	d, err := f.svc.CreateDose(ctx, f.scope, twoSlots("a1", "08:00", "09:00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	first := OccurrenceID(d.ID, day, NewClock(8, 0))
	second := OccurrenceID(d.ID, day, NewClock(9, 0))

	// 08:05
	if _, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{OccurrenceID: first, WasGiven: true}); err != nil {
		t.Fatalf("record 08:00: %v", err)
	}

	*f.clock = time.Date(2024, 3, 10, 9, 2, 0, 0, time.UTC)
	if _, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{OccurrenceID: second, WasGiven: true}); err != nil {
		t.Fatalf("record 09:00 should not collide with 08:00, got %v", err)
	}

	_, err = f.svc.RecordAdministration(ctx, f.scope, RecordInput{OccurrenceID: first, WasGiven: true})
	if !errors.Is(err, ErrDuplicateAdministration) {
		t.Fatalf("expected ErrDuplicateAdministration for 08:00 again, got %v", err)
	}
	if len(f.repo.logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(f.repo.logs))
	}
}

func TestService_RecordAdministration_RejectPolicyAdHocNeighbour(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Duplicates = DuplicatesReject
	f := newFixture(t, cfg)
	ctx := context.Background()

	d, _ := f.svc.CreateDose(ctx, f.scope, twoSlots("a1", "08:00", "09:00"))

	// Ad hoc a las 08:05: queda en la toma de las 08:00, no en la de las 09:00.
	if _, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{ScheduledDoseID: d.ID, WasGiven: true}); err != nil {
		t.Fatalf("ad hoc record: %v", err)
	}

	*f.clock = time.Date(2024, 3, 10, 9, 2, 0, 0, time.UTC)
	second := OccurrenceID(d.ID, NewDate(2024, time.March, 10), NewClock(9, 0))
	if _, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{OccurrenceID: second, WasGiven: true}); err != nil {
		t.Fatalf("record 09:00: %v", err)
	}
}

func TestService_GetDueToday_LateRecordStaysOnItsSlot(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()
	day := NewDate(2024, time.March, 10)

	d, err := f.svc.CreateDose(ctx, f.scope, twoSlots("a1", "08:00", "11:00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	*f.clock = time.Date(2024, 3, 10, 10, 30, 0, 0, time.UTC)
	morning := OccurrenceID(d.ID, day, NewClock(8, 0))
	if _, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{OccurrenceID: morning, WasGiven: true}); err != nil {
		t.Fatalf("record: %v", err)
	}

	due, err := f.svc.GetDueToday(ctx, f.scope, "a1")
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(due))
	}
	if due[0].Occurrence.ID != morning || due[0].Status != StatusGiven {
		t.Fatalf("expected 08:00 given, got %s %s", due[0].Occurrence.ID, due[0].Status)
	}
	if due[1].Status != StatusUpcoming || due[1].Log != nil {
		t.Fatalf("expected 11:00 upcoming, got %s", due[1].Status)
	}
}

func TestService_RecordAdministration_RejectPolicyUsesClaimer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Duplicates = DuplicatesReject
	f := newFixture(t, cfg)
	ctx := context.Background()

	claimer := &testClaimer{claimed: map[string]bool{}}
	f.svc.WithClaimer(claimer)

	d, _ := f.svc.CreateDose(ctx, f.scope, dailyAt("a1", "08:00"))
	occID := OccurrenceID(d.ID, NewDate(2024, time.March, 10), NewClock(8, 0))

	// Otro proceso ya reservó la ocurrencia pero todavía no escribió el log.
	claimer.claimed["s1/"+occID] = true

	_, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{OccurrenceID: occID, WasGiven: true})
	if !errors.Is(err, ErrDuplicateAdministration) {
		t.Fatalf("expected ErrDuplicateAdministration, got %v", err)
	}
	if len(f.repo.logs) != 0 {
		t.Fatalf("expected no logs, got %d", len(f.repo.logs))
	}
}

func TestService_DiscontinueDose_StopsOccurrencesKeepsHistory(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	d, _ := f.svc.CreateDose(ctx, f.scope, dailyAt("a1", "08:00"))
	if _, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{ScheduledDoseID: d.ID, WasGiven: true}); err != nil {
		t.Fatalf("record: %v", err)
	}

	off, err := f.svc.DiscontinueDose(ctx, f.scope, d.ID)
	if err != nil {
		t.Fatalf("discontinue: %v", err)
	}
	if off.Status != LifecycleDiscontinued {
		t.Fatalf("expected discontinued, got %s", off.Status)
	}
	if _, err := f.svc.DiscontinueDose(ctx, f.scope, d.ID); err != nil {
		t.Fatalf("discontinue should be idempotent, got %v", err)
	}

	due, err := f.svc.GetDueToday(ctx, f.scope, "")
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("expected no occurrences, got %d", len(due))
	}

	occID := OccurrenceID(d.ID, NewDate(2024, time.March, 10), NewClock(8, 0))
	if _, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{OccurrenceID: occID}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for discontinued occurrence, got %v", err)
	}

	if _, err := f.svc.UpdateDose(ctx, f.scope, d.ID, DoseUpdate{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput updating discontinued dose, got %v", err)
	}

	hist, _ := f.svc.GetHistory(ctx, f.scope, "a1", Date{}, Date{})
	if len(hist) != 1 {
		t.Fatalf("expected history kept, got %d", len(hist))
	}
}

func TestService_UpdateDose_Partial(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	end := NewDate(2024, time.March, 20)
	in := dailyAt("a1", "08:00")
	in.EndDate = &end
	d, _ := f.svc.CreateDose(ctx, f.scope, in)

	rt := RecurrenceWeekly
	days := []time.Weekday{time.Monday}
	upd, err := f.svc.UpdateDose(ctx, f.scope, d.ID, DoseUpdate{
		RuleType:     &rt,
		Weekdays:     &days,
		ClearEndDate: true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Rule.Type != RecurrenceWeekly || len(upd.Rule.Weekdays) != 1 || upd.EndDate != nil {
		t.Fatalf("unexpected update result: %+v", upd)
	}
	if upd.TimeOfDay != "08:00" || upd.MedicationID != "m1" {
		t.Fatalf("expected untouched fields kept, got %+v", upd)
	}

	slots := 2
	if _, err := f.svc.UpdateDose(ctx, f.scope, d.ID, DoseUpdate{DosesPerDay: &slots}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing slots, got %v", err)
	}

	ghost := "ghost"
	if _, err := f.svc.UpdateDose(ctx, f.scope, d.ID, DoseUpdate{MedicationID: &ghost}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown medication, got %v", err)
	}

	stored, _ := f.svc.GetDose(ctx, f.scope, d.ID)
	if stored.Rule.Type != RecurrenceWeekly || stored.MedicationID != "m1" {
		t.Fatalf("failed updates must not persist, got %+v", stored)
	}
}

func TestService_GetHistory_OrderAndRange(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	d, _ := f.svc.CreateDose(ctx, f.scope, dailyAt("a1", "08:00"))

	for _, ts := range []time.Time{
		time.Date(2024, 3, 8, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC),
	} {
		*f.clock = ts
		if _, err := f.svc.RecordAdministration(ctx, f.scope, RecordInput{ScheduledDoseID: d.ID, WasGiven: true}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	hist, err := f.svc.GetHistory(ctx, f.scope, "a1", Date{}, Date{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 3 || hist[0].TimeAdministered.Day() != 10 || hist[2].TimeAdministered.Day() != 8 {
		t.Fatalf("expected newest first, got %+v", hist)
	}

	hist, _ = f.svc.GetHistory(ctx, f.scope, "a1", NewDate(2024, time.March, 9), NewDate(2024, time.March, 9))
	if len(hist) != 1 || hist[0].TimeAdministered.Day() != 9 {
		t.Fatalf("expected only 9th, got %+v", hist)
	}

	if _, err := f.svc.GetHistory(ctx, f.scope, "", Date{}, Date{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.svc.GetHistory(ctx, f.scope, "ghost", Date{}, Date{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_ScopedByShelter(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	d, _ := f.svc.CreateDose(ctx, f.scope, dailyAt("a1", "08:00"))

	other := auth.Scope{ShelterID: "s2", Credential: auth.Credential{SubjectID: "u2"}}
	if _, err := f.svc.GetDose(ctx, other, d.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across shelters, got %v", err)
	}
	due, err := f.svc.GetDueToday(ctx, other, "")
	if err != nil || len(due) != 0 {
		t.Fatalf("expected empty due list for other shelter, got %d (%v)", len(due), err)
	}
}
