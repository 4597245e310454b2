package animals

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"shelter-meds/internal/middleware"
	"shelter-meds/internal/platform/httpclient"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta rutas planas bajo /shelters/{shelterID}; el módulo
// schedule cuelga /animals/{animalID}/dose-logs del mismo router.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/animals", createAnimalHandler(svc))
	r.Get("/animals", listAnimalsHandler(svc))
	r.Get("/animals/{animalID}", getAnimalHandler(svc))
	r.Patch("/animals/{animalID}", updateAnimalHandler(svc))
	r.Post("/animals/{animalID}/photo", uploadPhotoHandler(svc))
}

type createAnimalRequest struct {
	Name        string `json:"name"`
	Species     string `json:"species"`
	Breed       string `json:"breed"`
	Color       string `json:"color"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD opcional
}

type updateAnimalRequest struct {
	Name     *string `json:"name"`
	Species  *string `json:"species"`
	Breed    *string `json:"breed"`
	Color    *string `json:"color"`
	IsActive *bool   `json:"is_active"`
}

// animalResponse representa un animal del shelter.
type animalResponse struct {
	ID          string     `json:"id"`
	ShelterID   string     `json:"shelter_id"`
	Name        string     `json:"name"`
	Species     string     `json:"species"`
	Breed       string     `json:"breed"`
	Color       string     `json:"color"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	PhotoURL    string     `json:"photo_url"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// createAnimalHandler godoc
// @Summary Registrar animal
// @Tags animals
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Shelter-ID header string false "Solo en modo dev, shelter del usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param shelterID path string true "ID del shelter"
// @Param payload body createAnimalRequest true "Datos del animal; date_of_birth en formato YYYY-MM-DD"
// @Success 201 {object} animalResponse
// @Failure 400 {string} string "invalid json / date_of_birth inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /shelters/{shelterID}/animals [post]
func createAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var dob *time.Time
		if strings.TrimSpace(req.DateOfBirth) != "" {
			t, err := time.Parse("2006-01-02", req.DateOfBirth)
			if err != nil {
				http.Error(w, "date_of_birth must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			dob = &t
		}

		a, err := svc.Create(r.Context(), scope, CreateInput{
			Name:        req.Name,
			Species:     req.Species,
			Breed:       req.Breed,
			Color:       req.Color,
			DateOfBirth: dob,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

// listAnimalsHandler godoc
// @Summary Listar animales
// @Description Por defecto solo los activos; `include_inactive=true` incluye los archivados.
// @Tags animals
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param include_inactive query bool false "Incluir archivados"
// @Success 200 {array} animalResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 502 {string} string "upstream error"
// @Router /shelters/{shelterID}/animals [get]
func listAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		filter := ListFilter{
			IncludeInactive: strings.EqualFold(r.URL.Query().Get("include_inactive"), "true"),
		}
		items, err := svc.List(r.Context(), scope, filter)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getAnimalHandler godoc
// @Summary Obtener animal
// @Tags animals
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param animalID path string true "ID del animal"
// @Success 200 {object} animalResponse
// @Failure 404 {string} string "animal not found"
// @Router /shelters/{shelterID}/animals/{animalID} [get]
func getAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.Get(r.Context(), scope, chi.URLParam(r, "animalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

// updateAnimalHandler godoc
// @Summary Editar animal
// @Description PATCH parcial. `date_of_birth: null` limpia la fecha; `is_active: false` archiva.
// @Tags animals
// @Accept json
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param animalID path string true "ID del animal"
// @Param payload body updateAnimalRequest true "Campos a modificar"
// @Success 200 {object} animalResponse
// @Failure 400 {string} string "invalid json"
// @Failure 404 {string} string "animal not found"
// @Router /shelters/{shelterID}/animals/{animalID} [patch]
func updateAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Decodificamos a map primero para detectar presencia de date_of_birth.
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var req updateAnimalRequest
		{
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		var dob PatchDate
		if v, exists := raw["date_of_birth"]; exists {
			dob.Present = true
			if string(v) != "null" {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					http.Error(w, "date_of_birth must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				t, err := time.Parse("2006-01-02", s)
				if err != nil {
					http.Error(w, "date_of_birth must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				dob.Value = &t
			}
		}

		a, err := svc.Update(r.Context(), scope, chi.URLParam(r, "animalID"), UpdateInput{
			Name:        req.Name,
			Species:     req.Species,
			Breed:       req.Breed,
			Color:       req.Color,
			DateOfBirth: dob,
			IsActive:    req.IsActive,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

// uploadPhotoHandler godoc
// @Summary Subir foto del animal
// @Description multipart/form-data con el archivo en el campo `photo`. La extensión sale del nombre de archivo o, si no tiene, del content type.
// @Tags animals
// @Accept mpfd
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param animalID path string true "ID del animal"
// @Param photo formData file true "Imagen"
// @Success 200 {object} animalResponse
// @Failure 400 {string} string "photo requerida / demasiado grande"
// @Failure 404 {string} string "animal not found"
// @Failure 502 {string} string "upstream error"
// @Failure 503 {string} string "photo storage not configured"
// @Router /shelters/{shelterID}/animals/{animalID}/photo [post]
func uploadPhotoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, MaxPhotoBytes+1<<20)
		if err := r.ParseMultipartForm(MaxPhotoBytes); err != nil {
			http.Error(w, "invalid multipart form", http.StatusBadRequest)
			return
		}

		f, hdr, err := r.FormFile("photo")
		if err != nil {
			http.Error(w, "photo is required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, MaxPhotoBytes+1))
		if err != nil {
			http.Error(w, "invalid photo", http.StatusBadRequest)
			return
		}

		contentType := hdr.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}

		a, err := svc.UploadPhoto(r.Context(), scope, chi.URLParam(r, "animalID"), hdr.Filename, contentType, data)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func toAnimalResponse(a Animal) animalResponse {
	return animalResponse{
		ID:          a.ID,
		ShelterID:   a.ShelterID,
		Name:        a.Name,
		Species:     a.Species,
		Breed:       a.Breed,
		Color:       a.Color,
		DateOfBirth: a.DateOfBirth,
		PhotoURL:    a.PhotoURL,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "animal not found", http.StatusNotFound)
	case errors.Is(err, ErrNotConfigured):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
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
