package animals

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"shelter-meds/internal/ports/auth"
	"shelter-meds/internal/ports/blob"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("animal not found")
	ErrNotConfigured = errors.New("photo storage not configured")
)

const MaxPhotoBytes = 10 << 20

type Service struct {
	repo   Repository
	photos blob.Uploader // puede ser nil: UploadPhoto => ErrNotConfigured
	now    func() time.Time
}

func NewService(repo Repository, photos blob.Uploader) *Service {
	return &Service{
		repo:   repo,
		photos: photos,
		now:    time.Now,
	}
}

type CreateInput struct {
	Name        string
	Species     string
	Breed       string
	Color       string
	DateOfBirth *time.Time
}

func (s *Service) Create(ctx context.Context, scope auth.Scope, in CreateInput) (Animal, error) {
	if strings.TrimSpace(scope.ShelterID) == "" {
		return Animal{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Animal{}, ErrInvalidInput
	}

	now := s.now().UTC()
	a := Animal{
		ID:          uuid.NewString(),
		ShelterID:   scope.ShelterID,
		Name:        strings.TrimSpace(in.Name),
		Species:     strings.TrimSpace(in.Species),
		Breed:       strings.TrimSpace(in.Breed),
		Color:       strings.TrimSpace(in.Color),
		DateOfBirth: in.DateOfBirth,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, scope, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// PatchDate distingue "no enviado" de "enviado null" (= limpiar).
type PatchDate struct {
	Present bool
	Value   *time.Time
}

type UpdateInput struct {
	Name        *string
	Species     *string
	Breed       *string
	Color       *string
	DateOfBirth PatchDate
	IsActive    *bool
}

func (s *Service) Update(ctx context.Context, scope auth.Scope, id string, in UpdateInput) (Animal, error) {
	a, err := s.Get(ctx, scope, id)
	if err != nil {
		return Animal{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Animal{}, ErrInvalidInput
		}
		a.Name = name
	}
	if in.Species != nil {
		a.Species = strings.TrimSpace(*in.Species)
	}
	if in.Breed != nil {
		a.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Color != nil {
		a.Color = strings.TrimSpace(*in.Color)
	}
	if in.DateOfBirth.Present {
		a.DateOfBirth = in.DateOfBirth.Value
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
	a.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, scope, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, scope auth.Scope, id string) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(scope.ShelterID) == "" {
		return Animal{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, scope, id)
}

// List ordena por nombre y luego id.
func (s *Service) List(ctx context.Context, scope auth.Scope, filter ListFilter) ([]Animal, error) {
	if strings.TrimSpace(scope.ShelterID) == "" {
		return nil, ErrInvalidInput
	}
	items, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// UploadPhoto sube la foto a shelters/{sid}/animals/{id}{ext} y guarda la URL pública.
func (s *Service) UploadPhoto(ctx context.Context, scope auth.Scope, id, fileName, contentType string, data []byte) (Animal, error) {
	if s.photos == nil {
		return Animal{}, ErrNotConfigured
	}
	if len(data) == 0 || len(data) > MaxPhotoBytes {
		return Animal{}, ErrInvalidInput
	}

	a, err := s.Get(ctx, scope, id)
	if err != nil {
		return Animal{}, err
	}

	path := PhotoPath(scope.ShelterID, a.ID, fileName, contentType)
	url, err := s.photos.Upload(ctx, scope.Credential, path, data, contentType)
	if err != nil {
		return Animal{}, fmt.Errorf("upload photo: %w", err)
	}

	a.PhotoURL = url
	a.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, scope, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

func PhotoPath(shelterID, animalID, fileName, contentType string) string {
	return fmt.Sprintf("shelters/%s/animals/%s%s", shelterID, animalID, photoExt(fileName, contentType))
}

// photoExt: extensión del nombre de archivo; si no hay, por content type.
func photoExt(fileName, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(strings.TrimSpace(fileName))); ext != "" {
		return ext
	}
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ".jpg"
	}
}
