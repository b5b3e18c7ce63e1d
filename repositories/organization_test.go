package repositories

import (
	"testing"

	"help-desk/domain"
	"help-desk/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func setupOrganizations(t *testing.T) OrganizationRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewOrganizationRepository(db)
}

func TestOrganizationRepository_SaveAndGet(t *testing.T) {
	req := require.New(t)
	repo := setupOrganizations(t)

	school := domain.SchoolContext{
		Name:               "Oakfield Primary",
		Type:               "academy",
		Phase:              "primary",
		TrustName:          "Northern Lights Trust",
		PupilCount:         412,
		OldestBuildingYear: 1968,
	}

	req.NoError(repo.Save("org-1", school))
	fetched, err := repo.Get("org-1")

	req.NoError(err)
	req.Equal(school, fetched)
}

func TestOrganizationRepository_Get_NotFound(t *testing.T) {
	repo := setupOrganizations(t)

	_, err := repo.Get("missing")

	require.ErrorIs(t, err, errors.ErrOrganizationNotFound)
}

func TestOrganizationRepository_Save_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		school domain.SchoolContext
	}{
		{name: "Missing id", id: "", school: domain.SchoolContext{Name: "Oakfield"}},
		{name: "Unknown type", id: "org-1", school: domain.SchoolContext{Type: "castle"}},
		{name: "Negative pupils", id: "org-1", school: domain.SchoolContext{PupilCount: -1}},
		{name: "Future building", id: "org-1", school: domain.SchoolContext{OldestBuildingYear: 3020}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := setupOrganizations(t)
			require.Error(t, repo.Save(tt.id, tt.school))
		})
	}
}
