package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/mailfleet/mailfleet/interfaces"
	"github.com/mailfleet/mailfleet/internal/enum"
	"github.com/mailfleet/mailfleet/internal/models"
	"github.com/mailfleet/mailfleet/internal/tracing"
	"github.com/mailfleet/mailfleet/internal/utils"
)

type emailRepository struct {
	db *gorm.DB
}

func NewEmailRepository(db *gorm.DB) interfaces.EmailRepository {
	return &emailRepository{
		db: db,
	}
}

func (r *emailRepository) Create(ctx context.Context, email *models.Email) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if email.UserID == "" || email.CompanyID == "" {
		return ErrInvalidInput
	}

	if err := r.db.WithContext(ctx).Create(email).Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (r *emailRepository) GetByID(ctx context.Context, userID, id string) (*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var email models.Email
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &email, nil
}

// Finalize performs the single pending -> sent/failed transition. The
// status guard in the WHERE clause makes repeat calls and races between
// writers a no-op rather than a second transition.
func (r *emailRepository) Finalize(ctx context.Context, id string, status enum.EmailStatus, messageID, errorMessage, rawResponse string) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.Finalize")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	if status != enum.EmailStatusSent && status != enum.EmailStatusFailed {
		return false, ErrInvalidInput
	}

	var current models.Email
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&current).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		tracing.TraceErr(span, err)
		return false, err
	}
	if current.Status != enum.EmailStatusPending {
		return false, nil
	}

	updates := map[string]interface{}{
		"status":     status,
		"updated_at": utils.Now(),
	}
	if status == enum.EmailStatusSent {
		updates["sent_at"] = utils.NowPtr()
		updates["message_id"] = messageID
	} else {
		updates["error_message"] = errorMessage
	}
	if rawResponse != "" {
		metadata := current.Metadata
		if metadata == nil {
			metadata = make(models.JSONMap)
		}
		metadata[models.MetadataRawResponse] = rawResponse
		updates["metadata"] = metadata
	}

	result := r.db.WithContext(ctx).Model(&models.Email{}).
		Where("id = ? AND status = ?", id, enum.EmailStatusPending).
		Updates(updates)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// UpdateDeliveryStatus records out-of-band delivered/bounced updates for
// records that were already sent. The dispatch path never calls this.
func (r *emailRepository) UpdateDeliveryStatus(ctx context.Context, id string, status enum.EmailStatus) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.UpdateDeliveryStatus")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	if status != enum.EmailStatusDelivered && status != enum.EmailStatusBounced {
		return false, ErrInvalidInput
	}

	result := r.db.WithContext(ctx).Model(&models.Email{}).
		Where("id = ? AND status = ?", id, enum.EmailStatusSent).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": utils.Now(),
		})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *emailRepository) List(ctx context.Context, userID string, filters interfaces.EmailFilters, page, pageSize int) ([]*models.Email, int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.List")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := r.db.WithContext(ctx).Model(&models.Email{}).Where("user_id = ?", userID)
	if filters.CompanyID != "" {
		query = query.Where("company_id = ?", filters.CompanyID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, 0, err
	}

	var emails []*models.Email
	if err := query.
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&emails).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, 0, err
	}

	return emails, count, nil
}

func (r *emailRepository) Stats(ctx context.Context, userID, companyID string, since time.Time) (*interfaces.EmailStats, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.Stats")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	query := r.db.WithContext(ctx).Model(&models.Email{}).
		Where("user_id = ? AND created_at >= ?", userID, since)
	if companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}

	type statusCount struct {
		Status enum.EmailStatus
		Count  int64
	}
	var rows []statusCount
	if err := query.
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	stats := &interfaces.EmailStats{
		StatusBreakdown: make(map[enum.EmailStatus]int64),
	}
	for _, row := range rows {
		stats.StatusBreakdown[row.Status] = row.Count
		stats.TotalEmails += row.Count
	}

	return stats, nil
}

func (r *emailRepository) FailStalePending(ctx context.Context, cutoff time.Time, errorMessage string) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.FailStalePending")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	result := r.db.WithContext(ctx).Model(&models.Email{}).
		Where("status = ? AND created_at < ?", enum.EmailStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":        enum.EmailStatusFailed,
			"error_message": errorMessage,
			"updated_at":    utils.Now(),
		})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
