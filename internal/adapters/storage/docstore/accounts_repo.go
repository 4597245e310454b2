package docstore

import (
	"context"

	"shelter-meds/internal/domain/accounts"
	"shelter-meds/internal/ports/auth"
	ds "shelter-meds/internal/ports/docstore"

	"go.uber.org/zap"
)

// AccountsRepo: shelters/{id} y users/{uid} son colecciones raíz.
type AccountsRepo struct {
	store ds.Store
	log   *zap.Logger
}

var _ accounts.Repository = (*AccountsRepo)(nil)

func NewAccountsRepo(store ds.Store, log *zap.Logger) *AccountsRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountsRepo{store: store, log: log.Named("accounts_repo")}
}

func (r *AccountsRepo) CreateShelter(ctx context.Context, cred auth.Credential, s accounts.Shelter) error {
	return r.store.CreateDocument(ctx, cred, "", colShelters, s.ID, ds.Fields{
		"name":      ds.String(s.Name),
		"address":   ds.String(s.Address),
		"createdAt": ds.Timestamp(s.CreatedAt),
	})
}

func (r *AccountsRepo) GetShelter(ctx context.Context, cred auth.Credential, id string) (accounts.Shelter, error) {
	doc, err := r.store.GetDocument(ctx, cred, "", colShelters, id)
	if err != nil {
		return accounts.Shelter{}, mapNotFound(err, accounts.ErrShelterNotFound)
	}

	fr := fieldReader{f: doc.Fields}
	s := accounts.Shelter{
		ID:        doc.ID,
		Name:      fr.required("name"),
		Address:   fr.str("address"),
		CreatedAt: fr.timestamp("createdAt"),
	}
	if fr.err != nil {
		return accounts.Shelter{}, &ds.PartialParseError{Collection: colShelters, DocumentID: id, Err: fr.err}
	}
	return s, nil
}

func (r *AccountsRepo) CreateProfile(ctx context.Context, cred auth.Credential, p accounts.Profile) error {
	return r.store.CreateDocument(ctx, cred, "", colUsers, p.UID, ds.Fields{
		"uid":         ds.String(p.UID),
		"email":       ds.String(p.Email),
		"displayName": ds.String(p.DisplayName),
		"shelterId":   ds.String(p.ShelterID),
		"createdAt":   ds.Timestamp(p.CreatedAt),
	})
}

func (r *AccountsRepo) GetProfile(ctx context.Context, cred auth.Credential, uid string) (accounts.Profile, error) {
	doc, err := r.store.GetDocument(ctx, cred, "", colUsers, uid)
	if err != nil {
		return accounts.Profile{}, mapNotFound(err, accounts.ErrNotFound)
	}

	fr := fieldReader{f: doc.Fields}
	p := accounts.Profile{
		UID:         doc.ID,
		Email:       fr.str("email"),
		DisplayName: fr.str("displayName"),
		ShelterID:   fr.required("shelterId"),
		CreatedAt:   fr.timestamp("createdAt"),
	}
	if fr.err != nil {
		r.log.Warn("malformed profile",
			zap.Error(&ds.PartialParseError{Collection: colUsers, DocumentID: uid, Err: fr.err}),
		)
		return accounts.Profile{}, accounts.ErrNotFound
	}
	return p, nil
}
