package docstore

import (
	"context"
	"errors"
	"time"

	"shelter-meds/internal/domain/schedule"
	"shelter-meds/internal/ports/auth"
	ds "shelter-meds/internal/ports/docstore"

	"go.uber.org/zap"
)

type ScheduleRepo struct {
	store ds.Store
	log   *zap.Logger
}

var _ schedule.Repository = (*ScheduleRepo)(nil)

func NewScheduleRepo(store ds.Store, log *zap.Logger) *ScheduleRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &ScheduleRepo{store: store, log: log.Named("schedule_repo")}
}

func doseFields(d schedule.ScheduledDose) ds.Fields {
	weekdays := make([]int64, 0, len(d.Rule.Weekdays))
	for _, wd := range d.Rule.Weekdays {
		weekdays = append(weekdays, int64(wd))
	}
	start, end := ds.Null(), ds.Null()
	if !d.StartDate.IsZero() {
		start = ds.String(d.StartDate.String())
	}
	if d.EndDate != nil {
		end = ds.String(d.EndDate.String())
	}

	return ds.Fields{
		"animalId":         ds.String(d.AnimalID),
		"medicationId":     ds.String(d.MedicationID),
		"dosage":           ds.String(d.Dosage),
		"notes":            ds.String(d.Notes),
		"recurrenceType":   ds.String(string(d.Rule.Type)),
		"intervalDays":     ds.Integer(int64(d.Rule.IntervalDays)),
		"weekdays":         ds.Integers(weekdays),
		"timeOfDay":        ds.String(d.TimeOfDay),
		"dosesPerDay":      ds.Integer(int64(d.DosesPerDay)),
		"timeSlots":        ds.Strings(d.TimeSlots),
		"foodRelationship": ds.String(string(d.Food)),
		"startDate":        start,
		"endDate":          end,
		"status":           ds.String(string(d.Status)),
		"createdByUid":     ds.String(d.CreatedByUID),
		"createdAt":        ds.Timestamp(d.CreatedAt),
		"updatedAt":        ds.Timestamp(d.UpdatedAt),
	}
}

func decodeDose(shelterID string) func(ds.Document) (schedule.ScheduledDose, error) {
	return func(doc ds.Document) (schedule.ScheduledDose, error) {
		r := fieldReader{f: doc.Fields}
		d := schedule.ScheduledDose{
			ID:           doc.ID,
			ShelterID:    shelterID,
			AnimalID:     r.required("animalId"),
			MedicationID: r.required("medicationId"),
			Dosage:       r.str("dosage"),
			Notes:        r.str("notes"),
			Rule: schedule.RecurrenceRule{
				Type:         schedule.RecurrenceType(r.required("recurrenceType")),
				IntervalDays: r.integer("intervalDays"),
			},
			TimeOfDay:    r.str("timeOfDay"),
			DosesPerDay:  r.integer("dosesPerDay"),
			TimeSlots:    r.strings("timeSlots"),
			Food:         schedule.FoodRelationship(r.str("foodRelationship")),
			Status:       schedule.Lifecycle(r.str("status")),
			CreatedByUID: r.str("createdByUid"),
			CreatedAt:    r.timestamp("createdAt"),
			UpdatedAt:    r.timestamp("updatedAt"),
		}

		for _, wd := range r.ints("weekdays") {
			if wd < 0 || wd > 6 {
				r.fail("weekdays", errors.New("weekday out of range"))
				break
			}
			d.Rule.Weekdays = append(d.Rule.Weekdays, time.Weekday(wd))
		}

		if s := r.str("startDate"); s != "" {
			start, err := schedule.ParseDate(s)
			if err != nil {
				r.fail("startDate", err)
			}
			d.StartDate = start
		}
		if s := r.str("endDate"); s != "" {
			end, err := schedule.ParseDate(s)
			if err != nil {
				r.fail("endDate", err)
			}
			d.EndDate = &end
		}

		if d.Status == "" {
			d.Status = schedule.LifecycleActive
		}
		if d.Food == "" {
			d.Food = schedule.FoodDoesNotMatter
		}
		return d, r.err
	}
}

func logFields(l schedule.DoseLog) ds.Fields {
	return ds.Fields{
		"scheduledDoseId":   ds.String(l.ScheduledDoseID),
		"animalId":          ds.String(l.AnimalID),
		"occurrenceId":      ds.String(l.OccurrenceID),
		"medicationName":    ds.String(l.MedicationName),
		"dosage":            ds.String(l.Dosage),
		"timeAdministered":  ds.Timestamp(l.TimeAdministered),
		"administeredByUid": ds.String(l.AdministeredByUID),
		"wasGiven":          ds.Bool(l.WasGiven),
		"notes":             ds.String(l.Notes),
		"recordedAt":        ds.Timestamp(l.RecordedAt),
	}
}

func decodeLog(shelterID string) func(ds.Document) (schedule.DoseLog, error) {
	return func(doc ds.Document) (schedule.DoseLog, error) {
		r := fieldReader{f: doc.Fields}
		l := schedule.DoseLog{
			ID:                doc.ID,
			ShelterID:         shelterID,
			ScheduledDoseID:   r.required("scheduledDoseId"),
			AnimalID:          r.required("animalId"),
			OccurrenceID:      r.str("occurrenceId"),
			MedicationName:    r.str("medicationName"),
			Dosage:            r.str("dosage"),
			TimeAdministered:  r.timestamp("timeAdministered"),
			AdministeredByUID: r.str("administeredByUid"),
			WasGiven:          r.boolean("wasGiven"),
			Notes:             r.str("notes"),
			RecordedAt:        r.timestamp("recordedAt"),
		}
		if r.err == nil && l.TimeAdministered.IsZero() {
			r.fail("timeAdministered", errors.New("required"))
		}
		return l, r.err
	}
}

func (r *ScheduleRepo) CreateDose(ctx context.Context, scope auth.Scope, d schedule.ScheduledDose) error {
	return r.store.CreateDocument(ctx, scope.Credential, scope.ShelterID, colScheduledDoses, d.ID, doseFields(d))
}

func (r *ScheduleRepo) UpdateDose(ctx context.Context, scope auth.Scope, d schedule.ScheduledDose) error {
	err := r.store.PatchDocument(ctx, scope.Credential, scope.ShelterID, colScheduledDoses, d.ID, doseFields(d))
	return mapNotFound(err, schedule.ErrNotFound)
}

func (r *ScheduleRepo) GetDose(ctx context.Context, scope auth.Scope, id string) (schedule.ScheduledDose, error) {
	doc, err := r.store.GetDocument(ctx, scope.Credential, scope.ShelterID, colScheduledDoses, id)
	if err != nil {
		return schedule.ScheduledDose{}, mapNotFound(err, schedule.ErrNotFound)
	}
	return decodeDose(scope.ShelterID)(doc)
}

func (r *ScheduleRepo) ListDoses(ctx context.Context, scope auth.Scope, filter schedule.DoseFilter) ([]schedule.ScheduledDose, error) {
	var filters []ds.Filter
	if filter.AnimalID != "" {
		filters = append(filters, ds.Eq("animalId", ds.String(filter.AnimalID)))
	}

	docs, err := r.store.GetDocuments(ctx, scope.Credential, scope.ShelterID, colScheduledDoses, filters...)
	if err != nil {
		return nil, err
	}
	all := decodeAll(r.log, colScheduledDoses, docs, decodeDose(scope.ShelterID))

	out := make([]schedule.ScheduledDose, 0, len(all))
	for _, d := range all {
		if d.IsActive() || filter.IncludeDiscontinued {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *ScheduleRepo) AppendLog(ctx context.Context, scope auth.Scope, l schedule.DoseLog) error {
	return r.store.CreateDocument(ctx, scope.Credential, scope.ShelterID, colDoseLogs, l.ID, logFields(l))
}

// ListLogs manda a la query solo igualdades; el rango de fechas se aplica
// acá para no depender de índices compuestos.
func (r *ScheduleRepo) ListLogs(ctx context.Context, scope auth.Scope, filter schedule.LogFilter) ([]schedule.DoseLog, error) {
	var filters []ds.Filter
	if filter.AnimalID != "" {
		filters = append(filters, ds.Eq("animalId", ds.String(filter.AnimalID)))
	}
	if filter.ScheduledDoseID != "" {
		filters = append(filters, ds.Eq("scheduledDoseId", ds.String(filter.ScheduledDoseID)))
	}
	if len(filters) == 0 {
		if filter.From != nil {
			filters = append(filters, ds.Filter{Field: "timeAdministered", Op: ds.OpGreaterOrEqual, Value: ds.Timestamp(*filter.From)})
		}
		if filter.To != nil {
			filters = append(filters, ds.Filter{Field: "timeAdministered", Op: ds.OpLessOrEqual, Value: ds.Timestamp(*filter.To)})
		}
	}

	docs, err := r.store.GetDocuments(ctx, scope.Credential, scope.ShelterID, colDoseLogs, filters...)
	if err != nil {
		return nil, err
	}
	all := decodeAll(r.log, colDoseLogs, docs, decodeLog(scope.ShelterID))

	out := make([]schedule.DoseLog, 0, len(all))
	for _, l := range all {
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
