package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/mailfleet/mailfleet/internal/utils"
)

// User is the owner of companies and ledger records. Authentication is a
// thin surface here; the interesting scoping happens in the repositories.
type User struct {
	ID           string    `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Email        string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	DisplayName  string    `gorm:"column:display_name;type:varchar(255)" json:"displayName"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = utils.GenerateNanoIDWithPrefix("user", 16)
	}
	u.CreatedAt = utils.Now()
	return nil
}
