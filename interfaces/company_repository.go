package interfaces

import (
	"context"

	"github.com/mailfleet/mailfleet/internal/models"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, userID, id string) (*models.Company, error)
	ListActive(ctx context.Context, userID string) ([]*models.Company, error)
	// ExistsActiveName reports whether the user already has an active company
	// with this name, ignoring excludeID (pass "" on create).
	ExistsActiveName(ctx context.Context, userID, name, excludeID string) (bool, error)
	Update(ctx context.Context, company *models.Company) error
	// SoftDelete flips is_active; the row is retained.
	SoftDelete(ctx context.Context, userID, id string) error
	CountActive(ctx context.Context, userID string) (int64, error)
}
