package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"shelter-meds/internal/domain/animals"
	"shelter-meds/internal/domain/medications"
	"shelter-meds/internal/ports/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MedicationLookup y AnimalLookup son los servicios de los módulos vecinos.
type MedicationLookup interface {
	Get(ctx context.Context, scope auth.Scope, id string) (medications.Medication, error)
}

type AnimalLookup interface {
	Get(ctx context.Context, scope auth.Scope, id string) (animals.Animal, error)
}

type Config struct {
	Location      *time.Location
	Policy        Policy
	Duplicates    DuplicatePolicy
	MaxWindowDays int
}

func DefaultConfig() Config {
	return Config{
		Location:      time.UTC,
		Policy:        DefaultPolicy(),
		Duplicates:    DuplicatesAllow,
		MaxWindowDays: 31,
	}
}

type Service struct {
	repo    Repository
	meds    MedicationLookup
	animals AnimalLookup
	claimer Claimer
	cfg     Config
	log     *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewService(repo Repository, meds MedicationLookup, animalsSvc AnimalLookup, cfg Config, log *zap.Logger) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Duplicates == "" {
		cfg.Duplicates = DuplicatesAllow
	}
	if cfg.MaxWindowDays <= 0 {
		cfg.MaxWindowDays = 31
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		meds:    meds,
		animals: animalsSvc,
		cfg:     cfg,
		log:     log.Named("schedule"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// WithClaimer activa el guard distribuido para la política reject.
func (s *Service) WithClaimer(c Claimer) *Service {
	s.claimer = c
	return s
}

func (s *Service) Location() *time.Location { return s.cfg.Location }

func (s *Service) generator() Generator {
	return Generator{Location: s.cfg.Location, Now: s.now}
}

func (s *Service) reconciler() Reconciler {
	return Reconciler{Policy: s.cfg.Policy, Location: s.cfg.Location}
}

func (s *Service) Today() Date { return s.generator().Today() }

// -------------------------
// Dosis programadas
// -------------------------

type DoseInput struct {
	AnimalID     string
	MedicationID string
	Dosage       string
	Notes        string
	Rule         RecurrenceRule
	TimeOfDay    string
	DosesPerDay  int
	TimeSlots    []string
	Food         FoodRelationship
	StartDate    Date  // cero = hoy
	EndDate      *Date // nil = sin fin
}

func (s *Service) CreateDose(ctx context.Context, scope auth.Scope, in DoseInput) (ScheduledDose, error) {
	if err := requireShelter(scope); err != nil {
		return ScheduledDose{}, err
	}

	now := s.now().UTC()
	d := ScheduledDose{
		ID:           s.newID(),
		ShelterID:    scope.ShelterID,
		AnimalID:     in.AnimalID,
		MedicationID: in.MedicationID,
		Dosage:       in.Dosage,
		Notes:        in.Notes,
		Rule:         in.Rule,
		TimeOfDay:    in.TimeOfDay,
		DosesPerDay:  in.DosesPerDay,
		TimeSlots:    append([]string(nil), in.TimeSlots...),
		Food:         in.Food,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Status:       LifecycleActive,
		CreatedByUID: scope.Credential.SubjectID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if d.StartDate.IsZero() {
		d.StartDate = s.Today()
	}

	d.Normalize()
	if err := d.Validate(); err != nil {
		return ScheduledDose{}, err
	}
	if _, err := s.animal(ctx, scope, d.AnimalID); err != nil {
		return ScheduledDose{}, err
	}
	if _, err := s.medication(ctx, scope, d.MedicationID); err != nil {
		return ScheduledDose{}, err
	}

	if err := s.repo.CreateDose(ctx, scope, d); err != nil {
		return ScheduledDose{}, err
	}
	return d, nil
}

// DoseUpdate: nil = no tocar. ClearEndDate tiene prioridad sobre EndDate.
type DoseUpdate struct {
	MedicationID *string
	Dosage       *string
	Notes        *string
	RuleType     *RecurrenceType
	IntervalDays *int
	Weekdays     *[]time.Weekday
	TimeOfDay    *string
	DosesPerDay  *int
	TimeSlots    *[]string
	Food         *FoodRelationship
	StartDate    *Date
	EndDate      *Date
	ClearEndDate bool
}

// UpdateDose cambia el régimen. Los logs existentes no se tocan.
func (s *Service) UpdateDose(ctx context.Context, scope auth.Scope, id string, in DoseUpdate) (ScheduledDose, error) {
	d, err := s.GetDose(ctx, scope, id)
	if err != nil {
		return ScheduledDose{}, err
	}
	if !d.IsActive() {
		return ScheduledDose{}, invalid("status", "dose is discontinued")
	}

	medChanged := false
	if in.MedicationID != nil && strings.TrimSpace(*in.MedicationID) != d.MedicationID {
		d.MedicationID = *in.MedicationID
		medChanged = true
	}
	if in.Dosage != nil {
		d.Dosage = *in.Dosage
	}
	if in.Notes != nil {
		d.Notes = *in.Notes
	}
	if in.RuleType != nil {
		d.Rule.Type = *in.RuleType
	}
	if in.IntervalDays != nil {
		d.Rule.IntervalDays = *in.IntervalDays
	}
	if in.Weekdays != nil {
		d.Rule.Weekdays = append([]time.Weekday(nil), (*in.Weekdays)...)
	}
	if in.TimeOfDay != nil {
		d.TimeOfDay = *in.TimeOfDay
	}
	if in.DosesPerDay != nil {
		d.DosesPerDay = *in.DosesPerDay
	}
	if in.TimeSlots != nil {
		d.TimeSlots = append([]string(nil), (*in.TimeSlots)...)
	}
	if in.Food != nil {
		d.Food = *in.Food
	}
	if in.StartDate != nil {
		d.StartDate = *in.StartDate
	}
	if in.ClearEndDate {
		d.EndDate = nil
	} else if in.EndDate != nil {
		end := *in.EndDate
		d.EndDate = &end
	}

	d.Normalize()
	if err := d.Validate(); err != nil {
		return ScheduledDose{}, err
	}
	if medChanged {
		if _, err := s.medication(ctx, scope, d.MedicationID); err != nil {
			return ScheduledDose{}, err
		}
	}

	d.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateDose(ctx, scope, d); err != nil {
		return ScheduledDose{}, err
	}
	return d, nil
}

func (s *Service) GetDose(ctx context.Context, scope auth.Scope, id string) (ScheduledDose, error) {
	if err := requireShelter(scope); err != nil {
		return ScheduledDose{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ScheduledDose{}, invalid("dose_id", "required")
	}
	return s.repo.GetDose(ctx, scope, id)
}

func (s *Service) ListDoses(ctx context.Context, scope auth.Scope, filter DoseFilter) ([]ScheduledDose, error) {
	if err := requireShelter(scope); err != nil {
		return nil, err
	}
	items, err := s.repo.ListDoses(ctx, scope, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].AnimalID != items[j].AnimalID {
			return items[i].AnimalID < items[j].AnimalID
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// DiscontinueDose es el "borrado" lógico. Idempotente.
func (s *Service) DiscontinueDose(ctx context.Context, scope auth.Scope, id string) (ScheduledDose, error) {
	d, err := s.GetDose(ctx, scope, id)
	if err != nil {
		return ScheduledDose{}, err
	}
	if !d.IsActive() {
		return d, nil
	}

	d.Status = LifecycleDiscontinued
	d.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateDose(ctx, scope, d); err != nil {
		return ScheduledDose{}, err
	}
	return d, nil
}

// -------------------------
// Qué toca dar
// -------------------------

// GetDueToday: vista del día para todo el shelter (animalID vacío) o un animal.
func (s *Service) GetDueToday(ctx context.Context, scope auth.Scope, animalID string) ([]DoseStatus, error) {
	today := s.Today()
	return s.GetDue(ctx, scope, animalID, today, today)
}

// GetDue es GetDueToday sobre una ventana arbitraria [from, to].
func (s *Service) GetDue(ctx context.Context, scope auth.Scope, animalID string, from, to Date) ([]DoseStatus, error) {
	if err := requireShelter(scope); err != nil {
		return nil, err
	}
	if from.IsZero() {
		from = s.Today()
	}
	if to.IsZero() {
		to = from
	}
	if to.Before(from) {
		return nil, invalid("to", "must not be before from")
	}
	if n := DaysBetween(from, to) + 1; n > s.cfg.MaxWindowDays {
		return nil, invalid("window", "at most %d days, got %d", s.cfg.MaxWindowDays, n)
	}

	animalID = strings.TrimSpace(animalID)
	if animalID != "" {
		if _, err := s.animal(ctx, scope, animalID); err != nil {
			return nil, err
		}
	}

	doses, err := s.repo.ListDoses(ctx, scope, DoseFilter{AnimalID: animalID})
	if err != nil {
		return nil, fmt.Errorf("list doses: %w", err)
	}

	// Un día extra al final: un log atado a su ocurrencia puede haberse
	// registrado pasada la medianoche.
	loc := s.cfg.Location
	fromT, toT := from.Start(loc), to.AddDays(1).End(loc)
	logs, err := s.repo.ListLogs(ctx, scope, LogFilter{AnimalID: animalID, From: &fromT, To: &toT})
	if err != nil {
		return nil, fmt.Errorf("list dose logs: %w", err)
	}

	occs := s.generator().Generate(doses, from, to)
	return s.reconciler().Reconcile(occs, logs, s.now()), nil
}

// -------------------------
// Registro de administración
// -------------------------

type RecordInput struct {
	// OccurrenceID identifica la toma programada. Vacío = registro ad hoc
	// (obligatorio ScheduledDoseID).
	OccurrenceID      string
	ScheduledDoseID   string
	AdministeredByUID string // vacío = sujeto de la credencial
	WasGiven          bool
	Notes             string
}

// RecordAdministration crea exactamente un DoseLog con la foto actual de
// medicación y dosis. Con política reject devuelve ErrDuplicateAdministration
// si la ocurrencia ya tiene un log.
func (s *Service) RecordAdministration(ctx context.Context, scope auth.Scope, in RecordInput) (DoseLog, error) {
	if err := requireShelter(scope); err != nil {
		return DoseLog{}, err
	}

	by := strings.TrimSpace(in.AdministeredByUID)
	if by == "" {
		by = strings.TrimSpace(scope.Credential.SubjectID)
	}
	if by == "" {
		return DoseLog{}, invalid("administered_by_uid", "required")
	}

	occID := strings.TrimSpace(in.OccurrenceID)
	doseID := strings.TrimSpace(in.ScheduledDoseID)

	var occDay Date
	if occID != "" {
		id, day, _, err := ParseOccurrenceID(occID)
		if err != nil {
			return DoseLog{}, err
		}
		if doseID != "" && doseID != id {
			return DoseLog{}, invalid("scheduled_dose_id", "does not match occurrence")
		}
		doseID, occDay = id, day
	}
	if doseID == "" {
		return DoseLog{}, invalid("scheduled_dose_id", "required")
	}

	dose, err := s.GetDose(ctx, scope, doseID)
	if err != nil {
		return DoseLog{}, err
	}

	var occ *DoseOccurrence
	if occID != "" {
		for _, o := range s.generator().Generate([]ScheduledDose{dose}, occDay, occDay) {
			if o.ID == occID {
				occ = &o
				break
			}
		}
		if occ == nil {
			return DoseLog{}, invalid("occurrence_id", "dose is not scheduled at %s", occID)
		}
	}

	med, err := s.medication(ctx, scope, dose.MedicationID)
	if err != nil {
		return DoseLog{}, err
	}

	dosage := dose.Dosage
	if dosage == "" {
		dosage = med.DefaultDosage
	}

	if occ != nil && s.cfg.Duplicates == DuplicatesReject {
		release, err := s.guardOccurrence(ctx, scope, dose, *occ)
		if err != nil {
			return DoseLog{}, err
		}
		l, err := s.appendLog(ctx, scope, dose, occID, med.Name, dosage, by, in)
		if err != nil {
			release()
			return DoseLog{}, err
		}
		return l, nil
	}

	return s.appendLog(ctx, scope, dose, occID, med.Name, dosage, by, in)
}

func (s *Service) appendLog(ctx context.Context, scope auth.Scope, dose ScheduledDose, occID, medName, dosage, by string, in RecordInput) (DoseLog, error) {
	now := s.now().UTC()
	l := DoseLog{
		ID:                s.newID(),
		ShelterID:         scope.ShelterID,
		ScheduledDoseID:   dose.ID,
		AnimalID:          dose.AnimalID,
		OccurrenceID:      occID,
		MedicationName:    medName,
		Dosage:            dosage,
		TimeAdministered:  now,
		AdministeredByUID: by,
		WasGiven:          in.WasGiven,
		Notes:             strings.TrimSpace(in.Notes),
		RecordedAt:        now,
	}

	if err := s.repo.AppendLog(ctx, scope, l); err != nil {
		return DoseLog{}, fmt.Errorf("append dose log: %w", err)
	}

	s.log.Info("dose recorded",
		zap.String("shelter_id", scope.ShelterID),
		zap.String("dose_log_id", l.ID),
		zap.String("scheduled_dose_id", l.ScheduledDoseID),
		zap.String("occurrence_id", l.OccurrenceID),
		zap.Bool("was_given", l.WasGiven),
	)
	return l, nil
}

// guardOccurrence aplica la política reject: primero contra los logs
// guardados (misma asignación que el reconciler) y después contra el
// Claimer, si hay. Devuelve la función que libera la reserva.
func (s *Service) guardOccurrence(ctx context.Context, scope auth.Scope, dose ScheduledDose, occ DoseOccurrence) (func(), error) {
	// Sin rango de fechas: un log atado a la ocurrencia puede haberse
	// registrado otro día.
	existing, err := s.repo.ListLogs(ctx, scope, LogFilter{
		AnimalID:        dose.AnimalID,
		ScheduledDoseID: dose.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("list dose logs: %w", err)
	}

	// Se reconcilia el día completo de la dosis: un log de la toma vecina
	// no cuenta como registro de esta.
	dup := false
	dayOccs := s.generator().Generate([]ScheduledDose{dose}, occ.Date, occ.Date)
	for _, st := range s.reconciler().Reconcile(dayOccs, existing, s.now()) {
		if st.Occurrence.ID == occ.ID {
			dup = st.Log != nil
			break
		}
	}
	if dup {
		s.log.Warn("duplicate administration rejected",
			zap.String("shelter_id", scope.ShelterID),
			zap.String("occurrence_id", occ.ID),
		)
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAdministration, occ.ID)
	}

	if s.claimer == nil {
		return func() {}, nil
	}
	ok, err := s.claimer.Claim(ctx, scope.ShelterID, occ.ID)
	if err != nil {
		return nil, fmt.Errorf("claim occurrence: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAdministration, occ.ID)
	}
	return func() {
		if err := s.claimer.Release(context.WithoutCancel(ctx), scope.ShelterID, occ.ID); err != nil {
			s.log.Warn("release occurrence claim failed", zap.String("occurrence_id", occ.ID), zap.Error(err))
		}
	}, nil
}

// -------------------------
// Historial
// -------------------------

// GetHistory: logs del animal en [from, to] (fechas en la zona del shelter,
// cero = abierto), del más reciente al más viejo.
func (s *Service) GetHistory(ctx context.Context, scope auth.Scope, animalID string, from, to Date) ([]DoseLog, error) {
	if err := requireShelter(scope); err != nil {
		return nil, err
	}
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return nil, invalid("animal_id", "required")
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, invalid("to", "must not be before from")
	}
	if _, err := s.animal(ctx, scope, animalID); err != nil {
		return nil, err
	}

	filter := LogFilter{AnimalID: animalID}
	if !from.IsZero() {
		t := from.Start(s.cfg.Location)
		filter.From = &t
	}
	if !to.IsZero() {
		t := to.End(s.cfg.Location)
		filter.To = &t
	}

	logs, err := s.repo.ListLogs(ctx, scope, filter)
	if err != nil {
		return nil, fmt.Errorf("list dose logs: %w", err)
	}
	SortLogsDesc(logs)
	return logs, nil
}

func SortLogsDesc(logs []DoseLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		if !logs[i].TimeAdministered.Equal(logs[j].TimeAdministered) {
			return logs[i].TimeAdministered.After(logs[j].TimeAdministered)
		}
		return logs[i].ID < logs[j].ID
	})
}

// -------------------------
// helpers
// -------------------------

func requireShelter(scope auth.Scope) error {
	if strings.TrimSpace(scope.ShelterID) == "" {
		return invalid("shelter_id", "required")
	}
	return nil
}

func (s *Service) animal(ctx context.Context, scope auth.Scope, id string) (animals.Animal, error) {
	a, err := s.animals.Get(ctx, scope, id)
	if err != nil {
		if errors.Is(err, animals.ErrNotFound) {
			return animals.Animal{}, fmt.Errorf("%w: animal %s", ErrNotFound, id)
		}
		if errors.Is(err, animals.ErrInvalidInput) {
			return animals.Animal{}, invalid("animal_id", "required")
		}
		return animals.Animal{}, err
	}
	return a, nil
}

func (s *Service) medication(ctx context.Context, scope auth.Scope, id string) (medications.Medication, error) {
	m, err := s.meds.Get(ctx, scope, id)
	if err != nil {
		if errors.Is(err, medications.ErrNotFound) {
			return medications.Medication{}, fmt.Errorf("%w: medication %s", ErrNotFound, id)
		}
		if errors.Is(err, medications.ErrInvalidInput) {
			return medications.Medication{}, invalid("medication_id", "required")
		}
		return medications.Medication{}, err
	}
	return m, nil
}
