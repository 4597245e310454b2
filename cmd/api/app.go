package main

import (
	"context"
	"fmt"
	"net/http"

	"shelter-meds/internal/adapters/auth/firebase"
	"shelter-meds/internal/adapters/blob/firebasestorage"
	"shelter-meds/internal/adapters/dedup/redisguard"
	"shelter-meds/internal/adapters/firestore"
	docrepo "shelter-meds/internal/adapters/storage/docstore"
	mem "shelter-meds/internal/adapters/storage/memory"
	"shelter-meds/internal/adapters/storage/postgres"
	"shelter-meds/internal/config"
	"shelter-meds/internal/domain/accounts"
	"shelter-meds/internal/domain/animals"
	"shelter-meds/internal/domain/medications"
	"shelter-meds/internal/domain/schedule"
	"shelter-meds/internal/platform/httpclient"
	"shelter-meds/internal/ports/auth"
	"shelter-meds/internal/ports/blob"
	"shelter-meds/internal/ports/identity"
	"shelter-meds/internal/router"

	"go.uber.org/zap"
)

type repos struct {
	medications medications.Repository
	animals     animals.Repository
	schedule    schedule.Repository
	accounts    accounts.Repository
}

// app agrupa los servicios ya cableados según la config.
type app struct {
	cfg *config.Config
	log *zap.Logger

	accounts    *accounts.Service
	medications *medications.Service
	animals     *animals.Service
	schedule    *schedule.Service
	verifier    auth.AuthVerifier

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	hc, err := httpclient.New(httpclient.Options{
		Timeout:    cfg.HTTP.Timeout,
		RetryCount: cfg.HTTP.RetryCount,
	})
	if err != nil {
		return nil, fmt.Errorf("http client: %w", err)
	}

	r, err := a.openRepos(ctx, hc)
	if err != nil {
		a.Close()
		return nil, err
	}

	var idp identity.Provider
	if cfg.Firebase.APIKey != "" {
		c, err := firebase.NewClient(hc, firebase.Config{
			BaseURL: cfg.Firebase.AuthURL,
			APIKey:  cfg.Firebase.APIKey,
		}, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("identity provider: %w", err)
		}
		idp = c
	} else {
		log.Warn("firebase.api_key not set: register/login disabled")
	}

	var photos blob.Uploader
	if cfg.Firebase.StorageBucket != "" {
		u, err := firebasestorage.New(hc, firebasestorage.Config{
			BaseURL: cfg.Firebase.StorageURL,
			Bucket:  cfg.Firebase.StorageBucket,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("photo storage: %w", err)
		}
		photos = u
	}

	a.accounts = accounts.NewService(idp, r.accounts, log)
	a.medications = medications.NewService(r.medications)
	a.animals = animals.NewService(r.animals, photos)

	sc, err := scheduleConfig(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.schedule = schedule.NewService(r.schedule, a.medications, a.animals, sc, log)

	if sc.Duplicates == schedule.DuplicatesReject && cfg.Redis.Addr != "" {
		guard := redisguard.New(redisguard.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.ClaimTTL,
		})
		if err := guard.Ping(ctx); err != nil {
			_ = guard.Close()
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, guard.Close)
		a.schedule.WithClaimer(guard)
		log.Info("duplicate guard enabled", zap.String("redis_addr", cfg.Redis.Addr))
	}

	if cfg.Auth.DevMode {
		log.Warn("auth.dev_mode enabled: X-Debug-* headers are trusted")
	} else {
		a.verifier = a.accounts
	}

	return a, nil
}

func (a *app) openRepos(ctx context.Context, hc *httpclient.Client) (repos, error) {
	cfg := a.cfg
	log := a.log.With(zap.String("backend", cfg.Storage.Backend))

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Database.DSN, postgres.PoolOptions{}, log)
		if err != nil {
			return repos{}, err
		}
		a.closers = append(a.closers, db.Close)
		return repos{
			medications: postgres.NewMedicationsRepo(db),
			animals:     postgres.NewAnimalsRepo(db),
			schedule:    postgres.NewScheduleRepo(db, log),
			accounts:    postgres.NewAccountsRepo(db),
		}, nil

	case config.BackendFirestore:
		store, err := firestore.New(hc, firestore.Options{
			BaseURL:   cfg.Firebase.FirestoreURL,
			ProjectID: cfg.Firebase.ProjectID,
		}, log)
		if err != nil {
			return repos{}, fmt.Errorf("firestore: %w", err)
		}
		return repos{
			medications: docrepo.NewMedicationsRepo(store, log),
			animals:     docrepo.NewAnimalsRepo(store, log),
			schedule:    docrepo.NewScheduleRepo(store, log),
			accounts:    docrepo.NewAccountsRepo(store, log),
		}, nil

	default:
		log.Info("using in-memory storage")
		return repos{
			medications: mem.NewMedicationRepo(),
			animals:     mem.NewAnimalRepo(),
			schedule:    mem.NewScheduleRepo(),
			accounts:    mem.NewAccountsRepo(),
		}, nil
	}
}

func scheduleConfig(cfg *config.Config) (schedule.Config, error) {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return schedule.Config{}, fmt.Errorf("schedule timezone: %w", err)
	}

	dup := schedule.DuplicatesAllow
	if cfg.Schedule.DuplicatePolicy == config.PolicyReject {
		dup = schedule.DuplicatesReject
	}

	return schedule.Config{
		Location: loc,
		Policy: schedule.Policy{
			Tolerance:   cfg.Schedule.Tolerance,
			GracePeriod: cfg.Schedule.GracePeriod,
		},
		Duplicates:    dup,
		MaxWindowDays: cfg.Schedule.MaxWindowDays,
	}, nil
}

func (a *app) handler() http.Handler {
	return router.NewRouter(router.Options{
		Accounts:     a.accounts,
		Medications:  a.medications,
		Animals:      a.animals,
		Schedule:     a.schedule,
		AuthVerifier: a.verifier,
		Logger:       a.log,
	})
}

// Close libera en orden inverso a la apertura.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}
