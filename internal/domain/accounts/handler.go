package accounts

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"shelter-meds/internal/middleware"
	"shelter-meds/internal/platform/httpclient"
	"shelter-meds/internal/ports/auth"
	"shelter-meds/internal/ports/identity"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", registerHandler(svc))
		ar.Post("/login", loginHandler(svc))
	})
	r.Get("/me", meHandler(svc))
}

// RegisterShelterRoutes cuelga de /shelters/{shelterID}, ya con el scope
// validado por el middleware.
func RegisterShelterRoutes(r chi.Router, svc *Service) {
	r.Get("/", shelterHandler(svc))
}

type registerRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	DisplayName    string `json:"display_name"`
	ShelterName    string `json:"shelter_name"`
	ShelterAddress string `json:"shelter_address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse: token para mandar como Bearer + shelter del usuario.
type sessionResponse struct {
	Token       string     `json:"token"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UserID      string     `json:"user_id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	ShelterID   string     `json:"shelter_id"`
}

type profileResponse struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	ShelterID   string    `json:"shelter_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type shelterResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// registerHandler godoc
// @Summary Registrar shelter
// @Description Crea la cuenta en el identity provider, un shelter nuevo y el perfil del usuario.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Datos de alta"
// @Success 201 {object} sessionResponse
// @Failure 400 {string} string "invalid json / email o password inválidos"
// @Failure 409 {string} string "email already registered"
// @Failure 502 {string} string "upstream error"
// @Failure 503 {string} string "identity provider not configured"
// @Router /auth/register [post]
func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sess, err := svc.Register(r.Context(), RegisterInput{
			Email:          req.Email,
			Password:       req.Password,
			DisplayName:    req.DisplayName,
			ShelterName:    req.ShelterName,
			ShelterAddress: req.ShelterAddress,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSessionResponse(sess))
	}
}

// loginHandler godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} sessionResponse
// @Failure 400 {string} string "invalid json"
// @Failure 401 {string} string "invalid email or password"
// @Failure 404 {string} string "profile not found"
// @Failure 503 {string} string "identity provider not configured"
// @Router /auth/login [post]
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sess, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sess))
	}
}

// meHandler godoc
// @Summary Perfil del usuario autenticado
// @Tags auth
// @Produce json
// @Success 200 {object} profileResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "profile not found"
// @Security BearerAuth
// @Router /me [get]
func meHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.UserID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.GetProfile(r.Context(), auth.Credential{Token: claims.Token, SubjectID: claims.UserID})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profileResponse{
			UserID:      p.UID,
			Email:       p.Email,
			DisplayName: p.DisplayName,
			ShelterID:   p.ShelterID,
			CreatedAt:   p.CreatedAt.UTC(),
		})
	}
}

// shelterHandler godoc
// @Summary Datos del shelter
// @Tags auth
// @Produce json
// @Param shelterID path string true "Shelter ID"
// @Success 200 {object} shelterResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "shelter not found"
// @Security BearerAuth
// @Router /shelters/{shelterID} [get]
func shelterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := middleware.GetScope(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		s, err := svc.GetShelter(r.Context(), scope)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, shelterResponse{
			ID:        s.ID,
			Name:      s.Name,
			Address:   s.Address,
			CreatedAt: s.CreatedAt.UTC(),
		})
	}
}

func toSessionResponse(s Session) sessionResponse {
	out := sessionResponse{
		Token:       s.Credential.Token,
		UserID:      s.Profile.UID,
		Email:       s.Profile.Email,
		DisplayName: s.Profile.DisplayName,
		ShelterID:   s.Profile.ShelterID,
	}
	if !s.Credential.ExpiresAt.IsZero() {
		exp := s.Credential.ExpiresAt.UTC()
		out.ExpiresAt = &exp
	}
	return out
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, identity.ErrRejected):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrInvalidToken):
		http.Error(w, "invalid email or password", http.StatusUnauthorized)
	case errors.Is(err, identity.ErrEmailExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrShelterNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
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
