package router

import (
	"net/http"

	"shelter-meds/internal/domain/accounts"
	"shelter-meds/internal/domain/animals"
	"shelter-meds/internal/domain/medications"
	"shelter-meds/internal/domain/schedule"
	"shelter-meds/internal/middleware"
	"shelter-meds/internal/ports/auth"

	_ "shelter-meds/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Options struct {
	Accounts    *accounts.Service
	Medications *medications.Service
	Animals     *animals.Service
	Schedule    *schedule.Service

	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev: headers X-Debug-*)
	Logger       *zap.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log.Named("http")))
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier, log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	if opts.Accounts != nil {
		accounts.RegisterRoutes(r, opts.Accounts)
	}

	// Todo lo de negocio cuelga del shelter del usuario.
	r.Route("/shelters/{shelterID}", func(sr chi.Router) {
		sr.Use(middleware.RequireShelter("shelterID"))

		if opts.Accounts != nil {
			accounts.RegisterShelterRoutes(sr, opts.Accounts)
		}
		if opts.Medications != nil {
			medications.RegisterRoutes(sr, opts.Medications)
		}
		if opts.Animals != nil {
			animals.RegisterRoutes(sr, opts.Animals)
		}
		if opts.Schedule != nil {
			schedule.RegisterRoutes(sr, opts.Schedule)
		}
	})

	return r
}
