package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/mailfleet/mailfleet/internal/enum"
	"github.com/mailfleet/mailfleet/internal/utils"
)

// Company is a sending identity: SMTP credentials plus display info,
// owned by exactly one user.
type Company struct {
	ID            string        `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	UserID        string        `gorm:"column:user_id;type:varchar(50);index;not null" json:"userId"`
	Name          string        `gorm:"column:name;type:varchar(255);not null" json:"name"`
	EmailSettings EmailSettings `gorm:"embedded" json:"emailSettings"`
	SenderInfo    SenderInfo    `gorm:"embedded" json:"senderInfo"`
	Description   string        `gorm:"column:description;type:text" json:"description"`
	IsActive      bool          `gorm:"column:is_active;type:boolean;default:true" json:"isActive"`
	CreatedAt     time.Time     `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt     time.Time     `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

// EmailSettings holds the SMTP account configuration for a company.
// SMTPHost and SMTPPort are meaningful only when Provider is custom.
// The app password never leaves the API boundary.
type EmailSettings struct {
	Provider    enum.EmailProvider `gorm:"column:provider;type:varchar(50);index;not null" json:"provider"`
	Email       string             `gorm:"column:account_email;type:varchar(255);not null" json:"email"`
	AppPassword string             `gorm:"column:account_password;type:varchar(255);not null" json:"-"`
	SMTPHost    string             `gorm:"column:smtp_host;type:varchar(255)" json:"smtpHost,omitempty"`
	SMTPPort    int                `gorm:"column:smtp_port" json:"smtpPort,omitempty"`
	UseSSL      bool               `gorm:"column:use_ssl;not null;default:true" json:"useSSL"`
	UseTLS      bool               `gorm:"column:use_tls;not null;default:true" json:"useTLS"`
}

// SenderInfo is the display side of the identity.
type SenderInfo struct {
	Name      string `gorm:"column:sender_name;type:varchar(255);not null" json:"name"`
	Signature string `gorm:"column:sender_signature;type:text" json:"signature,omitempty"`
}

func (Company) TableName() string {
	return "companies"
}

func (m *Company) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = utils.GenerateNanoIDWithPrefix("cmp", 16)
	}
	m.CreatedAt = utils.Now()
	return nil
}
