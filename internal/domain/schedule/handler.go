package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shelter-meds/internal/middleware"
	"shelter-meds/internal/platform/httpclient"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta las rutas bajo /shelters/{shelterID}.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/doses", func(dr chi.Router) {
		dr.Post("/", createDoseHandler(svc))
		dr.Get("/", listDosesHandler(svc))
		dr.Get("/{doseID}", getDoseHandler(svc))
		dr.Patch("/{doseID}", updateDoseHandler(svc))
		dr.Post("/{doseID}/discontinue", discontinueDoseHandler(svc))
	})

	r.Get("/due", dueHandler(svc))
	r.Post("/dose-logs", recordAdministrationHandler(svc))

	r.Get("/animals/{animalID}/dose-logs", historyHandler(svc))
	r.Get("/animals/{animalID}/dose-logs/export", exportHistoryHandler(svc))
}

// doseRequest es el cuerpo para programar una medicación a un animal.
type doseRequest struct {
	AnimalID         string           `json:"animal_id"`
	MedicationID     string           `json:"medication_id"`
	Dosage           string           `json:"dosage"` // override opcional de la dosis por defecto
	Notes            string           `json:"notes"`
	RecurrenceType   RecurrenceType   `json:"recurrence_type" enums:"daily,every_x_days,weekly,bi_weekly,monthly,as_needed"`
	IntervalDays     int              `json:"interval_days"` // every_x_days
	Weekdays         []int            `json:"weekdays"`      // weekly; 0=domingo .. 6=sábado
	TimeOfDay        string           `json:"time_of_day"`   // HH:mm cuando doses_per_day <= 1
	DosesPerDay      int              `json:"doses_per_day"`
	TimeSlots        []string         `json:"time_slots"` // HH:mm, uno por toma cuando doses_per_day > 1
	FoodRelationship FoodRelationship `json:"food_relationship" enums:"does_not_matter,with_food,without_food,before_meal,after_meal"`
	StartDate        string           `json:"start_date"` // YYYY-MM-DD, opcional (default hoy)
	EndDate          string           `json:"end_date"`   // YYYY-MM-DD, opcional
}

type updateDoseRequest struct {
	MedicationID     *string           `json:"medication_id"`
	Dosage           *string           `json:"dosage"`
	Notes            *string           `json:"notes"`
	RecurrenceType   *RecurrenceType   `json:"recurrence_type"`
	IntervalDays     *int              `json:"interval_days"`
	Weekdays         *[]int            `json:"weekdays"`
	TimeOfDay        *string           `json:"time_of_day"`
	DosesPerDay      *int              `json:"doses_per_day"`
	TimeSlots        *[]string         `json:"time_slots"`
	FoodRelationship *FoodRelationship `json:"food_relationship"`
	StartDate        *string           `json:"start_date"`
	EndDate          *string           `json:"end_date"` // null = sin fin
}

// doseResponse representa una dosis programada.
type doseResponse struct {
	ID               string           `json:"id"`
	ShelterID        string           `json:"shelter_id"`
	AnimalID         string           `json:"animal_id"`
	MedicationID     string           `json:"medication_id"`
	Dosage           string           `json:"dosage"`
	Notes            string           `json:"notes"`
	RecurrenceType   RecurrenceType   `json:"recurrence_type"`
	IntervalDays     int              `json:"interval_days,omitempty"`
	Weekdays         []int            `json:"weekdays,omitempty"`
	TimeOfDay        string           `json:"time_of_day"`
	DosesPerDay      int              `json:"doses_per_day"`
	TimeSlots        []string         `json:"time_slots,omitempty"`
	FoodRelationship FoodRelationship `json:"food_relationship"`
	StartDate        Date             `json:"start_date" swaggertype:"string"`
	EndDate          *Date            `json:"end_date,omitempty" swaggertype:"string"`
	Status           Lifecycle        `json:"status"`
	CreatedByUID     string           `json:"created_by_uid"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// dueResponse es una ocurrencia con su estado reconciliado.
type dueResponse struct {
	OccurrenceID     string           `json:"occurrence_id"`
	ScheduledDoseID  string           `json:"scheduled_dose_id"`
	AnimalID         string           `json:"animal_id"`
	MedicationID     string           `json:"medication_id"`
	Date             Date             `json:"date" swaggertype:"string"`
	TimeSlot         string           `json:"time_slot"`
	DueAt            time.Time        `json:"due_at"`
	Dosage           string           `json:"dosage"`
	FoodRelationship FoodRelationship `json:"food_relationship"`
	Notes            string           `json:"notes"`
	Status           DoseStatusKind   `json:"status" enums:"given,skipped,missed,due_now,upcoming"`
	Log              *doseLogResponse `json:"log,omitempty"`
}

// recordRequest registra que una toma se dio (o se salteó).
type recordRequest struct {
	OccurrenceID      string `json:"occurrence_id"`     // de GET /due; vacío = ad hoc
	ScheduledDoseID   string `json:"scheduled_dose_id"` // obligatorio si no hay occurrence_id
	AdministeredByUID string `json:"administered_by_uid"`
	WasGiven          *bool  `json:"was_given"` // default true
	Notes             string `json:"notes"`
}

// doseLogResponse es un registro de administración (inmutable).
type doseLogResponse struct {
	ID                string    `json:"id"`
	ScheduledDoseID   string    `json:"scheduled_dose_id"`
	AnimalID          string    `json:"animal_id"`
	OccurrenceID      string    `json:"occurrence_id,omitempty"`
	MedicationName    string    `json:"medication_name"`
	Dosage            string    `json:"dosage"`
	TimeAdministered  time.Time `json:"time_administered"`
	AdministeredByUID string    `json:"administered_by_uid"`
	WasGiven          bool      `json:"was_given"`
	Notes             string    `json:"notes,omitempty"`
	RecordedAt        time.Time `json:"recorded_at"`
}

// createDoseHandler godoc
// @Summary Programar dosis
// @Description Crea la receta de una medicación para un animal. Reglas: every_x_days exige interval_days >= 1; weekly acepta weekdays 0..6 sin repetir (vacío = nunca); si doses_per_day > 1, time_slots debe tener exactamente doses_per_day horarios HH:mm distintos; si no, time_of_day es obligatorio (salvo as_needed).
// @Tags doses
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Shelter-ID header string false "Solo en modo dev, shelter del usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param shelterID path string true "ID del shelter"
// @Param payload body doseRequest true "Dosis programada"
// @Success 201 {object} doseResponse
// @Failure 400 {string} string "invalid json / regla de recurrencia inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "animal / medication not found"
// @Router /shelters/{shelterID}/doses [post]
func createDoseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req doseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		start, err := optionalDate(req.StartDate)
		if err != nil {
			http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		var end *Date
		if strings.TrimSpace(req.EndDate) != "" {
			d, err := ParseDate(req.EndDate)
			if err != nil {
				http.Error(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			end = &d
		}

		d, err := svc.CreateDose(r.Context(), scope, DoseInput{
			AnimalID:     req.AnimalID,
			MedicationID: req.MedicationID,
			Dosage:       req.Dosage,
			Notes:        req.Notes,
			Rule: RecurrenceRule{
				Type:         req.RecurrenceType,
				IntervalDays: req.IntervalDays,
				Weekdays:     toWeekdays(req.Weekdays),
			},
			TimeOfDay:   req.TimeOfDay,
			DosesPerDay: req.DosesPerDay,
			TimeSlots:   req.TimeSlots,
			Food:        req.FoodRelationship,
			StartDate:   start,
			EndDate:     end,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toDoseResponse(d))
	}
}

// listDosesHandler godoc
// @Summary Listar dosis programadas
// @Tags doses
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param animal_id query string false "Filtrar por animal"
// @Param include_discontinued query bool false "Incluir discontinuadas"
// @Success 200 {array} doseResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 502 {string} string "upstream error"
// @Router /shelters/{shelterID}/doses [get]
func listDosesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q := r.URL.Query()
		items, err := svc.ListDoses(r.Context(), scope, DoseFilter{
			AnimalID:            strings.TrimSpace(q.Get("animal_id")),
			IncludeDiscontinued: strings.EqualFold(q.Get("include_discontinued"), "true"),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]doseResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toDoseResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getDoseHandler godoc
// @Summary Obtener dosis programada
// @Tags doses
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param doseID path string true "ID de la dosis"
// @Success 200 {object} doseResponse
// @Failure 404 {string} string "not found"
// @Router /shelters/{shelterID}/doses/{doseID} [get]
func getDoseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		d, err := svc.GetDose(r.Context(), scope, chi.URLParam(r, "doseID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoseResponse(d))
	}
}

// updateDoseHandler godoc
// @Summary Modificar régimen
// @Description PATCH parcial; la dosis resultante se valida completa. `end_date: null` quita la fecha de fin. Los logs ya registrados no cambian.
// @Tags doses
// @Accept json
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param doseID path string true "ID de la dosis"
// @Param payload body updateDoseRequest true "Campos a modificar"
// @Success 200 {object} doseResponse
// @Failure 400 {string} string "invalid json / regla inválida / dosis discontinuada"
// @Failure 404 {string} string "not found"
// @Router /shelters/{shelterID}/doses/{doseID} [patch]
func updateDoseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Map primero: end_date null tiene que distinguirse de "no enviado".
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		var req updateDoseRequest
		{
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		in := DoseUpdate{
			MedicationID: req.MedicationID,
			Dosage:       req.Dosage,
			Notes:        req.Notes,
			RuleType:     req.RecurrenceType,
			IntervalDays: req.IntervalDays,
			TimeOfDay:    req.TimeOfDay,
			DosesPerDay:  req.DosesPerDay,
			TimeSlots:    req.TimeSlots,
			Food:         req.FoodRelationship,
		}
		if req.Weekdays != nil {
			wd := toWeekdays(*req.Weekdays)
			in.Weekdays = &wd
		}
		if req.StartDate != nil {
			d, err := ParseDate(*req.StartDate)
			if err != nil {
				http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			in.StartDate = &d
		}
		if v, exists := raw["end_date"]; exists {
			if string(v) == "null" {
				in.ClearEndDate = true
			} else if req.EndDate != nil {
				d, err := ParseDate(*req.EndDate)
				if err != nil {
					http.Error(w, "end_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				in.EndDate = &d
			}
		}

		d, err := svc.UpdateDose(r.Context(), scope, chi.URLParam(r, "doseID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoseResponse(d))
	}
}

// discontinueDoseHandler godoc
// @Summary Discontinuar dosis
// @Description Baja lógica: deja de generar ocurrencias, el historial se conserva. Idempotente.
// @Tags doses
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param doseID path string true "ID de la dosis"
// @Success 200 {object} doseResponse
// @Failure 404 {string} string "not found"
// @Router /shelters/{shelterID}/doses/{doseID}/discontinue [post]
func discontinueDoseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		d, err := svc.DiscontinueDose(r.Context(), scope, chi.URLParam(r, "doseID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoseResponse(d))
	}
}

// dueHandler godoc
// @Summary Tomas del día (o de una ventana)
// @Description Genera las ocurrencias de las dosis activas y las reconcilia contra los logs: given / skipped / missed / due_now / upcoming. Sin from/to = hoy en la zona del shelter. Ventana máxima configurable (31 días por defecto).
// @Tags doses
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param animal_id query string false "Vista de un solo animal"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Success 200 {array} dueResponse
// @Failure 400 {string} string "fechas inválidas / ventana demasiado grande"
// @Failure 404 {string} string "animal not found"
// @Failure 502 {string} string "upstream error"
// @Router /shelters/{shelterID}/due [get]
func dueHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		from, to, err := dateRange(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.GetDue(r.Context(), scope, r.URL.Query().Get("animal_id"), from, to)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]dueResponse, 0, len(items))
		for _, st := range items {
			out = append(out, toDueResponse(st))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// recordAdministrationHandler godoc
// @Summary Registrar administración
// @Description Crea un dose log con nombre de medicación y dosis copiados en ese momento. Con `schedule.duplicate_policy=reject` devuelve 409 si la ocurrencia ya tiene un registro.
// @Tags dose-logs
// @Accept json
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param payload body recordRequest true "Ocurrencia (o dosis, si es ad hoc) y resultado"
// @Success 201 {object} doseLogResponse
// @Failure 400 {string} string "invalid json / occurrence_id inválido"
// @Failure 404 {string} string "dose / medication not found"
// @Failure 409 {string} string "dose already recorded for this occurrence"
// @Failure 502 {string} string "upstream error"
// @Router /shelters/{shelterID}/dose-logs [post]
func recordAdministrationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req recordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		given := true
		if req.WasGiven != nil {
			given = *req.WasGiven
		}

		l, err := svc.RecordAdministration(r.Context(), scope, RecordInput{
			OccurrenceID:      req.OccurrenceID,
			ScheduledDoseID:   req.ScheduledDoseID,
			AdministeredByUID: req.AdministeredByUID,
			WasGiven:          given,
			Notes:             req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toDoseLogResponse(l))
	}
}

// historyHandler godoc
// @Summary Historial de administraciones de un animal
// @Description Del más reciente al más viejo. from/to son fechas en la zona del shelter, ambas opcionales.
// @Tags dose-logs
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param animalID path string true "ID del animal"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Success 200 {array} doseLogResponse
// @Failure 400 {string} string "fechas inválidas"
// @Failure 404 {string} string "animal not found"
// @Router /shelters/{shelterID}/animals/{animalID}/dose-logs [get]
func historyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		from, to, err := dateRange(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		logs, err := svc.GetHistory(r.Context(), scope, chi.URLParam(r, "animalID"), from, to)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]doseLogResponse, 0, len(logs))
		for _, l := range logs {
			out = append(out, toDoseLogResponse(l))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// exportHistoryHandler godoc
// @Summary Exportar historial a Excel
// @Tags dose-logs
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param shelterID path string true "ID del shelter"
// @Param animalID path string true "ID del animal"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Success 200 {file} file
// @Failure 400 {string} string "fechas inválidas"
// @Failure 404 {string} string "animal not found"
// @Router /shelters/{shelterID}/animals/{animalID}/dose-logs/export [get]
func exportHistoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		from, to, err := dateRange(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		buf, filename, err := svc.ExportHistory(r.Context(), scope, chi.URLParam(r, "animalID"), from, to)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

func dateRange(r *http.Request) (Date, Date, error) {
	q := r.URL.Query()
	from, err := optionalDate(q.Get("from"))
	if err != nil {
		return Date{}, Date{}, errors.New("from must be YYYY-MM-DD")
	}
	to, err := optionalDate(q.Get("to"))
	if err != nil {
		return Date{}, Date{}, errors.New("to must be YYYY-MM-DD")
	}
	return from, to, nil
}

func optionalDate(s string) (Date, error) {
	if strings.TrimSpace(s) == "" {
		return Date{}, nil
	}
	return ParseDate(s)
}

// toWeekdays no valida el rango: eso lo hace RecurrenceRule.Validate.
func toWeekdays(in []int) []time.Weekday {
	if in == nil {
		return nil
	}
	out := make([]time.Weekday, 0, len(in))
	for _, d := range in {
		out = append(out, time.Weekday(d))
	}
	return out
}

func fromWeekdays(in []time.Weekday) []int {
	if len(in) == 0 {
		return nil
	}
	out := make([]int, 0, len(in))
	for _, d := range in {
		out = append(out, int(d))
	}
	return out
}

func toDoseResponse(d ScheduledDose) doseResponse {
	return doseResponse{
		ID:               d.ID,
		ShelterID:        d.ShelterID,
		AnimalID:         d.AnimalID,
		MedicationID:     d.MedicationID,
		Dosage:           d.Dosage,
		Notes:            d.Notes,
		RecurrenceType:   d.Rule.Type,
		IntervalDays:     d.Rule.IntervalDays,
		Weekdays:         fromWeekdays(d.Rule.Weekdays),
		TimeOfDay:        d.TimeOfDay,
		DosesPerDay:      d.DosesPerDay,
		TimeSlots:        d.TimeSlots,
		FoodRelationship: d.Food,
		StartDate:        d.StartDate,
		EndDate:          d.EndDate,
		Status:           d.Status,
		CreatedByUID:     d.CreatedByUID,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func toDueResponse(st DoseStatus) dueResponse {
	o := st.Occurrence
	out := dueResponse{
		OccurrenceID:     o.ID,
		ScheduledDoseID:  o.ScheduledDoseID,
		AnimalID:         o.AnimalID,
		MedicationID:     o.MedicationID,
		Date:             o.Date,
		TimeSlot:         o.Slot.String(),
		DueAt:            o.DueAt,
		Dosage:           o.Dosage,
		FoodRelationship: o.Food,
		Notes:            o.Notes,
		Status:           st.Status,
	}
	if st.Log != nil {
		l := toDoseLogResponse(*st.Log)
		out.Log = &l
	}
	return out
}

func toDoseLogResponse(l DoseLog) doseLogResponse {
	return doseLogResponse{
		ID:                l.ID,
		ScheduledDoseID:   l.ScheduledDoseID,
		AnimalID:          l.AnimalID,
		OccurrenceID:      l.OccurrenceID,
		MedicationName:    l.MedicationName,
		Dosage:            l.Dosage,
		TimeAdministered:  l.TimeAdministered,
		AdministeredByUID: l.AdministeredByUID,
		WasGiven:          l.WasGiven,
		Notes:             l.Notes,
		RecordedAt:        l.RecordedAt,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicateAdministration):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, httpclient.ErrTransport):
		http.Error(w, "upstream error", http.StatusBadGateway)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
