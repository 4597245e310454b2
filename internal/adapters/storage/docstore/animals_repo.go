package docstore

import (
	"context"
	"sort"

	"shelter-meds/internal/domain/animals"
	"shelter-meds/internal/ports/auth"
	ds "shelter-meds/internal/ports/docstore"

	"go.uber.org/zap"
)

type AnimalsRepo struct {
	store ds.Store
	log   *zap.Logger
}

var _ animals.Repository = (*AnimalsRepo)(nil)

func NewAnimalsRepo(store ds.Store, log *zap.Logger) *AnimalsRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnimalsRepo{store: store, log: log.Named("animals_repo")}
}

func animalFields(a animals.Animal) ds.Fields {
	return ds.Fields{
		"name":        ds.String(a.Name),
		"species":     ds.String(a.Species),
		"breed":       ds.String(a.Breed),
		"color":       ds.String(a.Color),
		"dateOfBirth": ds.TimestampPtr(a.DateOfBirth),
		"photoUrl":    ds.String(a.PhotoURL),
		"isActive":    ds.Bool(a.IsActive),
		"createdAt":   ds.Timestamp(a.CreatedAt),
		"updatedAt":   ds.Timestamp(a.UpdatedAt),
	}
}

func decodeAnimal(shelterID string) func(ds.Document) (animals.Animal, error) {
	return func(doc ds.Document) (animals.Animal, error) {
		r := fieldReader{f: doc.Fields}
		a := animals.Animal{
			ID:          doc.ID,
			ShelterID:   shelterID,
			Name:        r.required("name"),
			Species:     r.str("species"),
			Breed:       r.str("breed"),
			Color:       r.str("color"),
			DateOfBirth: r.timePtr("dateOfBirth"),
			PhotoURL:    r.str("photoUrl"),
			CreatedAt:   r.timestamp("createdAt"),
			UpdatedAt:   r.timestamp("updatedAt"),
		}
		// Documentos viejos no traen isActive: se consideran activos.
		if _, ok := doc.Fields["isActive"]; ok {
			a.IsActive = r.boolean("isActive")
		} else {
			a.IsActive = true
		}
		return a, r.err
	}
}

func (r *AnimalsRepo) Create(ctx context.Context, scope auth.Scope, a animals.Animal) error {
	return r.store.CreateDocument(ctx, scope.Credential, scope.ShelterID, colAnimals, a.ID, animalFields(a))
}

func (r *AnimalsRepo) Update(ctx context.Context, scope auth.Scope, a animals.Animal) error {
	err := r.store.PatchDocument(ctx, scope.Credential, scope.ShelterID, colAnimals, a.ID, animalFields(a))
	return mapNotFound(err, animals.ErrNotFound)
}

func (r *AnimalsRepo) GetByID(ctx context.Context, scope auth.Scope, id string) (animals.Animal, error) {
	doc, err := r.store.GetDocument(ctx, scope.Credential, scope.ShelterID, colAnimals, id)
	if err != nil {
		return animals.Animal{}, mapNotFound(err, animals.ErrNotFound)
	}
	return decodeAnimal(scope.ShelterID)(doc)
}

func (r *AnimalsRepo) List(ctx context.Context, scope auth.Scope, filter animals.ListFilter) ([]animals.Animal, error) {
	// Sin filtro en la query: los documentos sin isActive también cuentan como activos.
	docs, err := r.store.GetDocuments(ctx, scope.Credential, scope.ShelterID, colAnimals)
	if err != nil {
		return nil, err
	}
	all := decodeAll(r.log, colAnimals, docs, decodeAnimal(scope.ShelterID))

	out := make([]animals.Animal, 0, len(all))
	for _, a := range all {
		if a.IsActive || filter.IncludeInactive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
