package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/mailfleet/mailfleet/interfaces"
	"github.com/mailfleet/mailfleet/internal/models"
	"github.com/mailfleet/mailfleet/internal/tracing"
	"github.com/mailfleet/mailfleet/internal/utils"
)

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) interfaces.CompanyRepository {
	return &companyRepository{
		db: db,
	}
}

func (r *companyRepository) Create(ctx context.Context, company *models.Company) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "companyRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if company.UserID == "" || company.Name == "" {
		return ErrInvalidInput
	}

	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

// GetByID fetches regardless of the active flag so soft-deleted companies
// remain inspectable by their owner.
func (r *companyRepository) GetByID(ctx context.Context, userID, id string) (*models.Company, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "companyRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	var company models.Company
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&company).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) ListActive(ctx context.Context, userID string) ([]*models.Company, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "companyRepository.ListActive")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var companies []*models.Company
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&companies).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return companies, nil
}

// ExistsActiveName only considers active companies: a soft-deleted company
// releases its name.
func (r *companyRepository) ExistsActiveName(ctx context.Context, userID, name, excludeID string) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "companyRepository.ExistsActiveName")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	query := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("user_id = ? AND is_active = ? AND LOWER(name) = LOWER(?)", userID, true, name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		tracing.TraceErr(span, err)
		return false, err
	}
	return count > 0, nil
}

func (r *companyRepository) Update(ctx context.Context, company *models.Company) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "companyRepository.Update")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, company.ID)

	company.UpdatedAt = utils.Now()
	result := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("id = ? AND user_id = ?", company.ID, company.UserID).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(company)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (r *companyRepository) SoftDelete(ctx context.Context, userID, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "companyRepository.SoftDelete")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	result := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("id = ? AND user_id = ? AND is_active = ?", id, userID, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": utils.Now(),
		})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (r *companyRepository) CountActive(ctx context.Context, userID string) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "companyRepository.CountActive")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error; err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}
	return count, nil
}
