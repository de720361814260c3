package repository

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mailfleet/mailfleet/internal/enum"
	"github.com/mailfleet/mailfleet/internal/models"
)

var testDBCounter int

func setupTestDB(t *testing.T) (*gorm.DB, *Repositories) {
	t.Helper()

	testDBCounter++
	dsn := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared", testDBCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	if err := MigrateDB(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db, InitRepositories(db)
}

func testCompany(userID, name string) *models.Company {
	return &models.Company{
		UserID:   userID,
		Name:     name,
		IsActive: true,
		EmailSettings: models.EmailSettings{
			Provider:    enum.ProviderGmail,
			Email:       "outbound@example.com",
			AppPassword: "app-password",
		},
		SenderInfo: models.SenderInfo{
			Name: "Outbound Team",
		},
	}
}

func testEmail(userID, companyID string, status enum.EmailStatus) *models.Email {
	return &models.Email{
		UserID:    userID,
		CompanyID: companyID,
		ToAddress: "recipient@example.com",
		Subject:   "Hello",
		BodyHTML:  "<p>Hello</p>",
		Status:    status,
	}
}
