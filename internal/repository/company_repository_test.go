package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyRepository_CreateAssignsID(t *testing.T) {
	_, repos := setupTestDB(t)
	ctx := context.Background()

	company := testCompany("user_1", "Acme")
	require.NoError(t, repos.CompanyRepository.Create(ctx, company))
	assert.NotEmpty(t, company.ID)
	assert.Contains(t, company.ID, "cmp_")
}

func TestCompanyRepository_GetByIDScopedToUser(t *testing.T) {
	_, repos := setupTestDB(t)
	ctx := context.Background()

	company := testCompany("user_1", "Acme")
	require.NoError(t, repos.CompanyRepository.Create(ctx, company))

	found, err := repos.CompanyRepository.GetByID(ctx, "user_1", company.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Acme", found.Name)

	// Another user cannot see it.
	found, err = repos.CompanyRepository.GetByID(ctx, "user_2", company.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCompanyRepository_ExistsActiveName(t *testing.T) {
	_, repos := setupTestDB(t)
	ctx := context.Background()

	company := testCompany("user_1", "Acme")
	require.NoError(t, repos.CompanyRepository.Create(ctx, company))

	taken, err := repos.CompanyRepository.ExistsActiveName(ctx, "user_1", "Acme", "")
	require.NoError(t, err)
	assert.True(t, taken)

	// Matching is case-insensitive.
	taken, err = repos.CompanyRepository.ExistsActiveName(ctx, "user_1", "ACME", "")
	require.NoError(t, err)
	assert.True(t, taken)

	// Names are per user.
	taken, err = repos.CompanyRepository.ExistsActiveName(ctx, "user_2", "Acme", "")
	require.NoError(t, err)
	assert.False(t, taken)

	// A company does not collide with itself on update.
	taken, err = repos.CompanyRepository.ExistsActiveName(ctx, "user_1", "Acme", company.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestCompanyRepository_SoftDeleteReleasesName(t *testing.T) {
	_, repos := setupTestDB(t)
	ctx := context.Background()

	company := testCompany("user_1", "Acme")
	require.NoError(t, repos.CompanyRepository.Create(ctx, company))
	require.NoError(t, repos.CompanyRepository.SoftDelete(ctx, "user_1", company.ID))

	// The record survives but is inactive.
	stored, err := repos.CompanyRepository.GetByID(ctx, "user_1", company.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.IsActive)

	// Its name becomes available again.
	taken, err := repos.CompanyRepository.ExistsActiveName(ctx, "user_1", "Acme", "")
	require.NoError(t, err)
	assert.False(t, taken)

	// And it no longer shows up in listings.
	companies, err := repos.CompanyRepository.ListActive(ctx, "user_1")
	require.NoError(t, err)
	assert.Empty(t, companies)
}

func TestCompanyRepository_SoftDeleteTwice(t *testing.T) {
	_, repos := setupTestDB(t)
	ctx := context.Background()

	company := testCompany("user_1", "Acme")
	require.NoError(t, repos.CompanyRepository.Create(ctx, company))

	require.NoError(t, repos.CompanyRepository.SoftDelete(ctx, "user_1", company.ID))
	err := repos.CompanyRepository.SoftDelete(ctx, "user_1", company.ID)
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCompanyRepository_Update(t *testing.T) {
	_, repos := setupTestDB(t)
	ctx := context.Background()

	company := testCompany("user_1", "Acme")
	require.NoError(t, repos.CompanyRepository.Create(ctx, company))

	company.Name = "Acme Corp"
	company.SenderInfo.Signature = "Best regards"
	require.NoError(t, repos.CompanyRepository.Update(ctx, company))

	stored, err := repos.CompanyRepository.GetByID(ctx, "user_1", company.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", stored.Name)
	assert.Equal(t, "Best regards", stored.SenderInfo.Signature)
}

func TestCompanyRepository_UpdateMissing(t *testing.T) {
	_, repos := setupTestDB(t)

	company := testCompany("user_1", "Ghost")
	company.ID = "cmp_missing"
	err := repos.CompanyRepository.Update(context.Background(), company)
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCompanyRepository_CountActive(t *testing.T) {
	_, repos := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repos.CompanyRepository.Create(ctx, testCompany("user_1", "Acme")))
	second := testCompany("user_1", "Globex")
	require.NoError(t, repos.CompanyRepository.Create(ctx, second))
	require.NoError(t, repos.CompanyRepository.SoftDelete(ctx, "user_1", second.ID))

	count, err := repos.CompanyRepository.CountActive(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
