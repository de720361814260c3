package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/mailfleet/mailfleet/internal/enum"
	"github.com/mailfleet/mailfleet/internal/utils"
)

// Metadata keys stored alongside a delivery record. Raw provider text
// lives only here, never in API responses.
const (
	MetadataClientIP     = "clientIp"
	MetadataUserAgent    = "userAgent"
	MetadataCampaignName = "campaignName"
	MetadataRawResponse  = "rawResponse"
)

// Email is one row of the delivery ledger: a single send attempt and its
// outcome. Rows are immutable after the status-finalizing update and are
// never hard-deleted.
type Email struct {
	ID        string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	UserID    string `gorm:"column:user_id;type:varchar(50);index;not null" json:"userId"`
	CompanyID string `gorm:"column:company_id;type:varchar(50);index;not null" json:"companyId"`

	ToAddress   string         `gorm:"column:to_address;type:varchar(255);not null" json:"to"`
	CcAddresses pq.StringArray `gorm:"column:cc_addresses;type:text[]" json:"cc,omitempty"`
	Subject     string         `gorm:"column:subject;type:varchar(200)" json:"subject"`
	BodyHTML    string         `gorm:"column:body_html;type:text" json:"htmlContent"`
	BodyText    string         `gorm:"column:body_text;type:text" json:"textContent,omitempty"`

	Status       enum.EmailStatus `gorm:"column:status;type:varchar(50);index;not null" json:"status"`
	SentAt       *time.Time       `gorm:"column:sent_at;type:timestamp;index" json:"sentAt,omitempty"`
	ErrorMessage string           `gorm:"column:error_message;type:text" json:"errorMessage,omitempty"`
	MessageID    string           `gorm:"column:message_id;type:varchar(255);index" json:"messageId,omitempty"`

	Metadata JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (Email) TableName() string {
	return "emails"
}

func (e *Email) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.GenerateNanoIDWithPrefix("email", 24)
	}
	if e.Status == "" {
		e.Status = enum.EmailStatusPending
	}
	e.CreatedAt = utils.Now()
	return nil
}

// MarshalJSON renders the row for API responses with the raw provider
// response removed. The raw text stays in the database only.
func (e Email) MarshalJSON() ([]byte, error) {
	type emailAlias Email
	out := emailAlias(e)
	if _, ok := out.Metadata[MetadataRawResponse]; ok {
		filtered := make(JSONMap, len(out.Metadata))
		for key, value := range out.Metadata {
			if key != MetadataRawResponse {
				filtered[key] = value
			}
		}
		if len(filtered) == 0 {
			filtered = nil
		}
		out.Metadata = filtered
	}
	return json.Marshal(out)
}

// CampaignName pulls the campaign tag out of the metadata bag, if present.
func (e *Email) CampaignName() string {
	if e.Metadata == nil {
		return ""
	}
	name, _ := e.Metadata[MetadataCampaignName].(string)
	return name
}
