package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"shelter-meds/internal/domain/schedule"
	"shelter-meds/internal/ports/auth"
)

type scheduleRepo struct {
	mu    sync.RWMutex
	doses map[string]map[string]schedule.ScheduledDose // shelterID -> id -> dose
	logs  map[string][]schedule.DoseLog                // shelterID -> append-only
}

func NewScheduleRepo() schedule.Repository {
	return &scheduleRepo{
		doses: make(map[string]map[string]schedule.ScheduledDose),
		logs:  make(map[string][]schedule.DoseLog),
	}
}

func (r *scheduleRepo) CreateDose(ctx context.Context, scope auth.Scope, d schedule.ScheduledDose) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return errors.New("dose id required")
	}
	items := r.doses[scope.ShelterID]
	if items == nil {
		items = make(map[string]schedule.ScheduledDose)
		r.doses[scope.ShelterID] = items
	}
	if _, exists := items[d.ID]; exists {
		return errors.New("dose already exists")
	}
	items[d.ID] = cloneDose(d)
	return nil
}

func (r *scheduleRepo) UpdateDose(ctx context.Context, scope auth.Scope, d schedule.ScheduledDose) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.doses[scope.ShelterID]
	if _, exists := items[d.ID]; !exists {
		return schedule.ErrNotFound
	}
	items[d.ID] = cloneDose(d)
	return nil
}

func (r *scheduleRepo) GetDose(ctx context.Context, scope auth.Scope, id string) (schedule.ScheduledDose, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.doses[scope.ShelterID][id]
	if !ok {
		return schedule.ScheduledDose{}, schedule.ErrNotFound
	}
	return cloneDose(d), nil
}

func (r *scheduleRepo) ListDoses(ctx context.Context, scope auth.Scope, filter schedule.DoseFilter) ([]schedule.ScheduledDose, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.doses[scope.ShelterID]
	out := make([]schedule.ScheduledDose, 0, len(items))
	for _, d := range items {
		if filter.AnimalID != "" && d.AnimalID != filter.AnimalID {
			continue
		}
		if !filter.IncludeDiscontinued && !d.IsActive() {
			continue
		}
		out = append(out, cloneDose(d))
	}
	return out, nil
}

func (r *scheduleRepo) AppendLog(ctx context.Context, scope auth.Scope, l schedule.DoseLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(l.ID) == "" {
		return errors.New("dose log id required")
	}
	r.logs[scope.ShelterID] = append(r.logs[scope.ShelterID], l)
	return nil
}

func (r *scheduleRepo) ListLogs(ctx context.Context, scope auth.Scope, filter schedule.LogFilter) ([]schedule.DoseLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schedule.DoseLog, 0)
	for _, l := range r.logs[scope.ShelterID] {
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

// cloneDose evita que el llamador comparta slices con lo guardado.
func cloneDose(d schedule.ScheduledDose) schedule.ScheduledDose {
	d.TimeSlots = append([]string(nil), d.TimeSlots...)
	if d.Rule.Weekdays != nil {
		d.Rule.Weekdays = append(d.Rule.Weekdays[:0:0], d.Rule.Weekdays...)
	}
	if d.EndDate != nil {
		end := *d.EndDate
		d.EndDate = &end
	}
	return d
}
