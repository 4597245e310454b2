package docstore

import (
	"context"
	"sort"

	"shelter-meds/internal/domain/medications"
	"shelter-meds/internal/ports/auth"
	ds "shelter-meds/internal/ports/docstore"

	"go.uber.org/zap"
)

type MedicationsRepo struct {
	store ds.Store
	log   *zap.Logger
}

var _ medications.Repository = (*MedicationsRepo)(nil)

func NewMedicationsRepo(store ds.Store, log *zap.Logger) *MedicationsRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &MedicationsRepo{store: store, log: log.Named("medications_repo")}
}

func medicationFields(m medications.Medication) ds.Fields {
	return ds.Fields{
		"name":                 ds.String(m.Name),
		"defaultDosage":        ds.String(m.DefaultDosage),
		"instructions":         ds.String(m.Instructions),
		"storageInstructions":  ds.String(m.StorageInstructions),
		"handlingInstructions": ds.String(m.HandlingInstructions),
		"createdAt":            ds.Timestamp(m.CreatedAt),
		"updatedAt":            ds.Timestamp(m.UpdatedAt),
	}
}

func decodeMedication(shelterID string) func(ds.Document) (medications.Medication, error) {
	return func(doc ds.Document) (medications.Medication, error) {
		r := fieldReader{f: doc.Fields}
		m := medications.Medication{
			ID:                   doc.ID,
			ShelterID:            shelterID,
			Name:                 r.required("name"),
			DefaultDosage:        r.str("defaultDosage"),
			Instructions:         r.str("instructions"),
			StorageInstructions:  r.str("storageInstructions"),
			HandlingInstructions: r.str("handlingInstructions"),
			CreatedAt:            r.timestamp("createdAt"),
			UpdatedAt:            r.timestamp("updatedAt"),
		}
		return m, r.err
	}
}

func (r *MedicationsRepo) Create(ctx context.Context, scope auth.Scope, m medications.Medication) error {
	return r.store.CreateDocument(ctx, scope.Credential, scope.ShelterID, colMedications, m.ID, medicationFields(m))
}

func (r *MedicationsRepo) Update(ctx context.Context, scope auth.Scope, m medications.Medication) error {
	err := r.store.PatchDocument(ctx, scope.Credential, scope.ShelterID, colMedications, m.ID, medicationFields(m))
	return mapNotFound(err, medications.ErrNotFound)
}

func (r *MedicationsRepo) GetByID(ctx context.Context, scope auth.Scope, id string) (medications.Medication, error) {
	doc, err := r.store.GetDocument(ctx, scope.Credential, scope.ShelterID, colMedications, id)
	if err != nil {
		return medications.Medication{}, mapNotFound(err, medications.ErrNotFound)
	}
	return decodeMedication(scope.ShelterID)(doc)
}

func (r *MedicationsRepo) List(ctx context.Context, scope auth.Scope) ([]medications.Medication, error) {
	docs, err := r.store.GetDocuments(ctx, scope.Credential, scope.ShelterID, colMedications)
	if err != nil {
		return nil, err
	}
	out := decodeAll(r.log, colMedications, docs, decodeMedication(scope.ShelterID))
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
