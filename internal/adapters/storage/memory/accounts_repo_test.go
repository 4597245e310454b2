package memory

import (
	"context"
	"testing"

	"shelter-meds/internal/domain/accounts"
	"shelter-meds/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountsRepo_ShelterAndProfile(t *testing.T) {
	repo := NewAccountsRepo()
	ctx := context.Background()
	cred := auth.Credential{SubjectID: "u1"}

	require.NoError(t, repo.CreateShelter(ctx, cred, accounts.Shelter{ID: "s1", Name: "Patitas"}))
	require.Error(t, repo.CreateShelter(ctx, cred, accounts.Shelter{ID: "s1", Name: "Otro"}))
	require.NoError(t, repo.CreateProfile(ctx, cred, accounts.Profile{UID: "u1", ShelterID: "s1"}))

	sh, err := repo.GetShelter(ctx, cred, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Patitas", sh.Name)

	_, err = repo.GetShelter(ctx, cred, "s2")
	assert.ErrorIs(t, err, accounts.ErrShelterNotFound)

	p, err := repo.GetProfile(ctx, cred, "u1")
	require.NoError(t, err)
	assert.Equal(t, "s1", p.ShelterID)

	_, err = repo.GetProfile(ctx, cred, "u2")
	assert.ErrorIs(t, err, accounts.ErrNotFound)
}
