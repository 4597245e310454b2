package medications

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"shelter-meds/internal/middleware"
	"shelter-meds/internal/platform/httpclient"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta las rutas bajo /shelters/{shelterID}.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/medications", func(mr chi.Router) {
		mr.Post("/", createMedicationHandler(svc))
		mr.Get("/", listMedicationsHandler(svc))
		mr.Get("/{medicationID}", getMedicationHandler(svc))
		mr.Patch("/{medicationID}", updateMedicationHandler(svc))
	})
}

// createMedicationRequest es el cuerpo para dar de alta una medicación del shelter.
type createMedicationRequest struct {
	Name                 string `json:"name"`
	DefaultDosage        string `json:"default_dosage"`
	Instructions         string `json:"instructions"`
	StorageInstructions  string `json:"storage_instructions"`
	HandlingInstructions string `json:"handling_instructions"`
}

type updateMedicationRequest struct {
	Name                 *string `json:"name"`
	DefaultDosage        *string `json:"default_dosage"`
	Instructions         *string `json:"instructions"`
	StorageInstructions  *string `json:"storage_instructions"`
	HandlingInstructions *string `json:"handling_instructions"`
}

// medicationResponse representa una medicación devuelta por la API.
type medicationResponse struct {
	ID                   string    `json:"id"`
	ShelterID            string    `json:"shelter_id"`
	Name                 string    `json:"name"`
	DefaultDosage        string    `json:"default_dosage"`
	Instructions         string    `json:"instructions"`
	StorageInstructions  string    `json:"storage_instructions"`
	HandlingInstructions string    `json:"handling_instructions"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// createMedicationHandler godoc
// @Summary Crear medicación
// @Description Da de alta una medicación de referencia en el shelter. Autenticación: `X-Debug-User-ID` + `X-Debug-Shelter-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags medications
// @Accept json
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param payload body createMedicationRequest true "Datos de la medicación"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "invalid json / name requerido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /shelters/{shelterID}/medications [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Create(r.Context(), scope, CreateInput{
			Name:                 req.Name,
			DefaultDosage:        req.DefaultDosage,
			Instructions:         req.Instructions,
			StorageInstructions:  req.StorageInstructions,
			HandlingInstructions: req.HandlingInstructions,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toMedicationResponse(m))
	}
}

// listMedicationsHandler godoc
// @Summary Listar medicaciones
// @Tags medications
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Success 200 {array} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 502 {string} string "upstream error"
// @Router /shelters/{shelterID}/medications [get]
func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.List(r.Context(), scope)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getMedicationHandler godoc
// @Summary Obtener medicación
// @Tags medications
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param medicationID path string true "ID de la medicación"
// @Success 200 {object} medicationResponse
// @Failure 404 {string} string "medication not found"
// @Router /shelters/{shelterID}/medications/{medicationID} [get]
func getMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		m, err := svc.Get(r.Context(), scope, chi.URLParam(r, "medicationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// updateMedicationHandler godoc
// @Summary Editar medicación
// @Description PATCH parcial: los campos omitidos no se tocan. Los dose logs ya registrados conservan el nombre y la dosis que tenían.
// @Tags medications
// @Accept json
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param medicationID path string true "ID de la medicación"
// @Param payload body updateMedicationRequest true "Campos a modificar"
// @Success 200 {object} medicationResponse
// @Failure 400 {string} string "invalid json"
// @Failure 404 {string} string "medication not found"
// @Router /shelters/{shelterID}/medications/{medicationID} [patch]
func updateMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateMedicationRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Update(r.Context(), scope, chi.URLParam(r, "medicationID"), UpdateInput{
			Name:                 req.Name,
			DefaultDosage:        req.DefaultDosage,
			Instructions:         req.Instructions,
			StorageInstructions:  req.StorageInstructions,
			HandlingInstructions: req.HandlingInstructions,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

func toMedicationResponse(m Medication) medicationResponse {
	return medicationResponse{
		ID:                   m.ID,
		ShelterID:            m.ShelterID,
		Name:                 m.Name,
		DefaultDosage:        m.DefaultDosage,
		Instructions:         m.Instructions,
		StorageInstructions:  m.StorageInstructions,
		HandlingInstructions: m.HandlingInstructions,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "medication not found", http.StatusNotFound)
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
