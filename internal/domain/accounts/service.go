package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"shelter-meds/internal/ports/auth"
	"shelter-meds/internal/ports/identity"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("profile not found")
	ErrShelterNotFound = errors.New("shelter not found")
	ErrNotConfigured   = errors.New("identity provider not configured")
)

const minPasswordLen = 6

type Service struct {
	idp  identity.Provider // nil => register/login devuelven ErrNotConfigured
	repo Repository
	log  *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewService(idp identity.Provider, repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		idp:   idp,
		repo:  repo,
		log:   log.Named("accounts"),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Session es el resultado de register/login.
type Session struct {
	Credential auth.Credential
	Profile    Profile
}

type RegisterInput struct {
	Email          string
	Password       string
	DisplayName    string
	ShelterName    string
	ShelterAddress string
}

// Register: alta en el identity provider => shelter nuevo => perfil.
// Si falla después del alta, la cuenta queda sin perfil y el login lo rechaza.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	if s.idp == nil {
		return Session{}, ErrNotConfigured
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateCredentials(email, in.Password); err != nil {
		return Session{}, err
	}
	shelterName := strings.TrimSpace(in.ShelterName)
	if shelterName == "" {
		return Session{}, fmt.Errorf("%w: shelter_name required", ErrInvalidInput)
	}
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}

	cred, err := s.idp.SignUp(ctx, email, in.Password)
	if err != nil {
		return Session{}, err
	}

	now := s.now().UTC()
	shelter := Shelter{
		ID:        s.newID(),
		Name:      shelterName,
		Address:   strings.TrimSpace(in.ShelterAddress),
		CreatedAt: now,
	}
	if err := s.repo.CreateShelter(ctx, cred, shelter); err != nil {
		s.log.Error("create shelter failed", zap.String("uid", cred.SubjectID), zap.Error(err))
		return Session{}, fmt.Errorf("create shelter: %w", err)
	}

	p := Profile{
		UID:         cred.SubjectID,
		Email:       email,
		DisplayName: displayName,
		ShelterID:   shelter.ID,
		CreatedAt:   now,
	}
	if err := s.repo.CreateProfile(ctx, cred, p); err != nil {
		s.log.Error("create profile failed",
			zap.String("uid", cred.SubjectID),
			zap.String("shelter_id", shelter.ID),
			zap.Error(err),
		)
		return Session{}, fmt.Errorf("create profile: %w", err)
	}

	s.log.Info("shelter registered", zap.String("uid", p.UID), zap.String("shelter_id", p.ShelterID))
	return Session{Credential: cred, Profile: p}, nil
}

// Login: signIn => perfil. Sin perfil no hay shelter, así que falla.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	if s.idp == nil {
		return Session{}, ErrNotConfigured
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%w: email and password required", ErrInvalidInput)
	}

	cred, err := s.idp.SignIn(ctx, email, password)
	if err != nil {
		return Session{}, err
	}

	p, err := s.repo.GetProfile(ctx, cred, cred.SubjectID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.log.Warn("login without profile", zap.String("uid", cred.SubjectID))
		}
		return Session{}, err
	}
	return Session{Credential: cred, Profile: p}, nil
}

// Verify implementa auth.AuthVerifier: token => cuenta => perfil => claims
// con el shelter del usuario.
func (s *Service) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if s.idp == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, identity.ErrInvalidToken
	}

	acc, err := s.idp.Lookup(ctx, token)
	if err != nil {
		return auth.Claims{}, err
	}

	cred := auth.Credential{Token: token, SubjectID: acc.UID}
	p, err := s.repo.GetProfile(ctx, cred, acc.UID)
	if err != nil {
		return auth.Claims{}, err
	}

	email := acc.Email
	if email == "" {
		email = p.Email
	}
	return auth.Claims{
		UserID:   acc.UID,
		Email:    email,
		TenantID: p.ShelterID,
		Token:    token,
	}, nil
}

// GetProfile devuelve el perfil del dueño de la credencial.
func (s *Service) GetProfile(ctx context.Context, cred auth.Credential) (Profile, error) {
	uid := strings.TrimSpace(cred.SubjectID)
	if uid == "" {
		return Profile{}, fmt.Errorf("%w: subject required", ErrInvalidInput)
	}
	return s.repo.GetProfile(ctx, cred, uid)
}

// GetShelter devuelve el shelter del scope.
func (s *Service) GetShelter(ctx context.Context, scope auth.Scope) (Shelter, error) {
	id := strings.TrimSpace(scope.ShelterID)
	if id == "" {
		return Shelter{}, fmt.Errorf("%w: shelter required", ErrInvalidInput)
	}
	return s.repo.GetShelter(ctx, scope.Credential, id)
}

func validateCredentials(email, password string) error {
	if email == "" {
		return fmt.Errorf("%w: email required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	return nil
}
