package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apierrors "github.com/mailfleet/mailfleet/api/errors"
	"github.com/mailfleet/mailfleet/interfaces"
	"github.com/mailfleet/mailfleet/internal/enum"
	"github.com/mailfleet/mailfleet/internal/logger"
	"github.com/mailfleet/mailfleet/internal/repository"
	"github.com/mailfleet/mailfleet/internal/utils"
	"github.com/mailfleet/mailfleet/services"
	"github.com/mailfleet/mailfleet/services/email"
)

const (
	defaultPageSize  = 20
	maxPageSize      = 100
	defaultStatsDays = 30
)

type EmailHandler struct {
	log          logger.Logger
	services     *services.Services
	repositories *repository.Repositories
}

func NewEmailHandler(log logger.Logger, s *services.Services, repos *repository.Repositories) *EmailHandler {
	return &EmailHandler{
		log:          log,
		services:     s,
		repositories: repos,
	}
}

type sendEmailRequest struct {
	CompanyID    string   `json:"companyId" binding:"required"`
	To           string   `json:"to"`
	Cc           []string `json:"cc"`
	Subject      string   `json:"subject"`
	HTMLContent  string   `json:"htmlContent"`
	TextContent  string   `json:"textContent"`
	CampaignName string   `json:"campaignName"`
}

func (h *EmailHandler) Send() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request sendEmailRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "companyId is required"})
			return
		}

		record, err := h.services.EmailService.Send(c.Request.Context(), &email.SendRequest{
			CompanyID:    request.CompanyID,
			To:           request.To,
			Cc:           request.Cc,
			Subject:      request.Subject,
			HTMLContent:  request.HTMLContent,
			TextContent:  request.TextContent,
			CampaignName: request.CampaignName,
		})
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": record, "messageId": record.MessageID})
	}
}

type bulkRecipientRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name"`
}

type sendBulkRequest struct {
	CompanyID    string                 `json:"companyId" binding:"required"`
	Recipients   []bulkRecipientRequest `json:"recipients"`
	Subject      string                 `json:"subject"`
	HTMLContent  string                 `json:"htmlContent"`
	TextContent  string                 `json:"textContent"`
	CampaignName string                 `json:"campaignName"`
	Delay        int                    `json:"delay"`
	DelayMs      int                    `json:"delayMs"`
}

// pauseOverride accepts the pause between sends under either spelling,
// in milliseconds. delayMs wins when both are set.
func (r *sendBulkRequest) pauseOverride() int {
	if r.DelayMs > 0 {
		return r.DelayMs
	}
	return r.Delay
}

func (h *EmailHandler) SendBulk() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request sendBulkRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "companyId and recipients are required"})
			return
		}

		recipients := make([]email.BulkRecipient, 0, len(request.Recipients))
		for _, r := range request.Recipients {
			recipients = append(recipients, email.BulkRecipient{Email: r.Email, Name: r.Name})
		}

		result, err := h.services.EmailService.SendBulk(c.Request.Context(), &email.BulkRequest{
			CompanyID:    request.CompanyID,
			Recipients:   recipients,
			Subject:      request.Subject,
			HTMLContent:  request.HTMLContent,
			TextContent:  request.TextContent,
			CampaignName: request.CampaignName,
			DelayMs:      request.pauseOverride(),
		})
		if err != nil && result == nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": result})
	}
}

func (h *EmailHandler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		page := intQuery(c, "page", 1)
		pageSize := intQuery(c, "limit", 0)
		if pageSize == 0 {
			pageSize = intQuery(c, "pageSize", defaultPageSize)
		}
		if page < 1 {
			page = 1
		}
		if pageSize < 1 || pageSize > maxPageSize {
			pageSize = defaultPageSize
		}

		filters := interfaces.EmailFilters{CompanyID: c.Query("companyId")}
		if statusParam := c.Query("status"); statusParam != "" {
			status := enum.EmailStatus(statusParam)
			if !status.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
				return
			}
			filters.Status = status
		}

		ctx := c.Request.Context()
		emails, total, err := h.repositories.EmailRepository.List(ctx, utils.GetUserIdFromContext(ctx), filters, page, pageSize)
		if err != nil {
			h.log.Errorf("failed to list emails: %v", err)
			apierrors.Respond(c, err)
			return
		}

		totalPages := total / int64(pageSize)
		if total%int64(pageSize) != 0 {
			totalPages++
		}
		c.JSON(http.StatusOK, gin.H{
			"emails": emails,
			"pagination": gin.H{
				"page":       page,
				"pageSize":   pageSize,
				"total":      total,
				"totalPages": totalPages,
			},
		})
	}
}

func (h *EmailHandler) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		record, err := h.repositories.EmailRepository.GetByID(ctx, utils.GetUserIdFromContext(ctx), c.Param("id"))
		if err != nil {
			h.log.Errorf("failed to load email %s: %v", c.Param("id"), err)
			apierrors.Respond(c, err)
			return
		}
		if record == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": record})
	}
}

// Stats aggregates delivery outcomes over a trailing window of days.
func (h *EmailHandler) Stats() gin.HandlerFunc {
	return func(c *gin.Context) {
		days := intQuery(c, "days", defaultStatsDays)
		if days < 1 {
			days = defaultStatsDays
		}
		since := utils.Now().AddDate(0, 0, -days)

		ctx := c.Request.Context()
		userID := utils.GetUserIdFromContext(ctx)
		stats, err := h.repositories.EmailRepository.Stats(ctx, userID, c.Query("companyId"), since)
		if err != nil {
			h.log.Errorf("failed to compute email stats: %v", err)
			apierrors.Respond(c, err)
			return
		}
		totalCompanies, err := h.repositories.CompanyRepository.CountActive(ctx, userID)
		if err != nil {
			h.log.Errorf("failed to count active companies: %v", err)
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"periodDays":      days,
			"since":           since.Format(time.RFC3339),
			"totalEmails":     stats.TotalEmails,
			"totalCompanies":  totalCompanies,
			"statusBreakdown": stats.StatusBreakdown,
		})
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return value
}
