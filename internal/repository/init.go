package repository

import (
	"gorm.io/gorm"

	"github.com/mailfleet/mailfleet/interfaces"
	"github.com/mailfleet/mailfleet/internal/models"
)

type Repositories struct {
	CompanyRepository interfaces.CompanyRepository
	EmailRepository   interfaces.EmailRepository
	UserRepository    interfaces.UserRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		CompanyRepository: NewCompanyRepository(db),
		EmailRepository:   NewEmailRepository(db),
		UserRepository:    NewUserRepository(db),
	}
}

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Email{},
	)
}
