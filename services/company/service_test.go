package company

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mailfleet/mailfleet/internal/enum"
	"github.com/mailfleet/mailfleet/internal/models"
	"github.com/mailfleet/mailfleet/internal/repository"
	"github.com/mailfleet/mailfleet/internal/utils"
	"github.com/mailfleet/mailfleet/services/smtp"
)

var companyDBCounter int

func setupService(t *testing.T) (*Service, *repository.Repositories) {
	t.Helper()

	companyDBCounter++
	dsn := fmt.Sprintf("file:companysvc%d?mode=memory&cache=shared", companyDBCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.MigrateDB(db))

	repos := repository.InitRepositories(db)
	return NewService(repos), repos
}

func userContext(userID string) context.Context {
	return utils.WithCustomContext(context.Background(), &utils.CustomContext{UserId: userID})
}

func validCompany(name string) *models.Company {
	return &models.Company{
		Name: name,
		EmailSettings: models.EmailSettings{
			Provider:    enum.ProviderGmail,
			Email:       "outbound@acme.com",
			AppPassword: "app-password",
		},
		SenderInfo: models.SenderInfo{Name: "Acme Sales"},
	}
}

func TestCreate_Valid(t *testing.T) {
	service, _ := setupService(t)
	ctx := userContext("user_1")

	created, err := service.Create(ctx, validCompany("Acme"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "user_1", created.UserID)
	assert.True(t, created.IsActive)
}

func TestCreate_ValidationErrors(t *testing.T) {
	service, _ := setupService(t)
	ctx := userContext("user_1")

	tests := []struct {
		name    string
		mutate  func(c *models.Company)
		wantErr error
	}{
		{"empty name", func(c *models.Company) { c.Name = "  " }, ErrNameRequired},
		{"missing sender name", func(c *models.Company) { c.SenderInfo.Name = "" }, ErrSenderName},
		{"long signature", func(c *models.Company) { c.SenderInfo.Signature = strings.Repeat("x", 2001) }, ErrSignatureTooLong},
		{"missing password", func(c *models.Company) { c.EmailSettings.AppPassword = "" }, ErrPasswordRequired},
		{"invalid account email", func(c *models.Company) { c.EmailSettings.Email = "nope" }, ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := validCompany("Acme")
			tt.mutate(candidate)
			_, err := service.Create(ctx, candidate)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreate_CustomProviderNeedsHost(t *testing.T) {
	service, _ := setupService(t)
	ctx := userContext("user_1")

	candidate := validCompany("Acme")
	candidate.EmailSettings.Provider = enum.ProviderCustom
	candidate.EmailSettings.SMTPPort = 587

	_, err := service.Create(ctx, candidate)
	var configErr *smtp.ConfigurationError
	assert.ErrorAs(t, err, &configErr)
}

func TestCreate_DuplicateActiveName(t *testing.T) {
	service, _ := setupService(t)
	ctx := userContext("user_1")

	_, err := service.Create(ctx, validCompany("Acme"))
	require.NoError(t, err)

	_, err = service.Create(ctx, validCompany("acme"))
	assert.ErrorIs(t, err, ErrNameTaken)

	// A different user may reuse the name.
	_, err = service.Create(userContext("user_2"), validCompany("Acme"))
	assert.NoError(t, err)
}

func TestUpdate_PartialPatch(t *testing.T) {
	service, _ := setupService(t)
	ctx := userContext("user_1")

	created, err := service.Create(ctx, validCompany("Acme"))
	require.NoError(t, err)

	newName := "Acme Corp"
	newSignature := "Best regards,\nAcme"
	updated, err := service.Update(ctx, created.ID, &UpdatePatch{
		Name:       &newName,
		SenderInfo: &SenderInfoPatch{Signature: &newSignature},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, newSignature, updated.SenderInfo.Signature)
	// Untouched fields survive.
	assert.Equal(t, "outbound@acme.com", updated.EmailSettings.Email)
	assert.Equal(t, "app-password", updated.EmailSettings.AppPassword)
	assert.Equal(t, "Acme Sales", updated.SenderInfo.Name)
}

func TestUpdate_NameCollision(t *testing.T) {
	service, _ := setupService(t)
	ctx := userContext("user_1")

	_, err := service.Create(ctx, validCompany("Acme"))
	require.NoError(t, err)
	second, err := service.Create(ctx, validCompany("Globex"))
	require.NoError(t, err)

	taken := "Acme"
	_, err = service.Update(ctx, second.ID, &UpdatePatch{Name: &taken})
	assert.ErrorIs(t, err, ErrNameTaken)

	// Re-submitting its own name is fine.
	own := "Globex"
	_, err = service.Update(ctx, second.ID, &UpdatePatch{Name: &own})
	assert.NoError(t, err)
}

func TestDelete_SoftDeletesAndFreesName(t *testing.T) {
	service, _ := setupService(t)
	ctx := userContext("user_1")

	created, err := service.Create(ctx, validCompany("Acme"))
	require.NoError(t, err)
	require.NoError(t, service.Delete(ctx, created.ID))

	companies, err := service.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, companies)

	_, err = service.Create(ctx, validCompany("Acme"))
	assert.NoError(t, err)

	assert.ErrorIs(t, service.Delete(ctx, created.ID), ErrCompanyNotFound)
}

func TestGetActive(t *testing.T) {
	service, repos := setupService(t)
	ctx := userContext("user_1")

	created, err := service.Create(ctx, validCompany("Acme"))
	require.NoError(t, err)

	found, err := service.GetActive(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = service.GetActive(userContext("user_2"), created.ID)
	assert.ErrorIs(t, err, ErrCompanyNotFound)

	require.NoError(t, repos.CompanyRepository.SoftDelete(context.Background(), "user_1", created.ID))
	_, err = service.GetActive(ctx, created.ID)
	assert.ErrorIs(t, err, ErrCompanyNotActive)
}
