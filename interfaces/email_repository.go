package interfaces

import (
	"context"
	"time"

	"github.com/mailfleet/mailfleet/internal/enum"
	"github.com/mailfleet/mailfleet/internal/models"
)

// EmailFilters narrows ledger queries. Zero values mean "no filter".
type EmailFilters struct {
	CompanyID string
	Status    enum.EmailStatus
}

// EmailStats is the aggregate view over a trailing window.
type EmailStats struct {
	TotalEmails     int64
	StatusBreakdown map[enum.EmailStatus]int64
}

type EmailRepository interface {
	// Create inserts a new ledger record. The status set on the model is
	// respected, so post-hoc writers (the bulk runner) can insert final
	// records directly.
	Create(ctx context.Context, email *models.Email) error
	GetByID(ctx context.Context, userID, id string) (*models.Email, error)
	// Finalize performs the single allowed pending -> sent/failed
	// transition. It returns false without error when the record is
	// unknown or already finalized; callers log and move on.
	Finalize(ctx context.Context, id string, status enum.EmailStatus, messageID, errorMessage, rawResponse string) (bool, error)
	// UpdateDeliveryStatus records out-of-band sent -> delivered/bounced
	// transitions. Not part of the dispatch path.
	UpdateDeliveryStatus(ctx context.Context, id string, status enum.EmailStatus) (bool, error)
	List(ctx context.Context, userID string, filters EmailFilters, page, pageSize int) ([]*models.Email, int64, error)
	Stats(ctx context.Context, userID, companyID string, since time.Time) (*EmailStats, error)
	// FailStalePending closes out records stuck in pending longer than
	// the cutoff, returning how many rows were touched.
	FailStalePending(ctx context.Context, cutoff time.Time, errorMessage string) (int64, error)
}
