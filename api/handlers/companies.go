package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/mailfleet/mailfleet/api/errors"
	"github.com/mailfleet/mailfleet/internal/enum"
	"github.com/mailfleet/mailfleet/internal/logger"
	"github.com/mailfleet/mailfleet/internal/models"
	"github.com/mailfleet/mailfleet/services"
	"github.com/mailfleet/mailfleet/services/company"
)

type CompanyHandler struct {
	log      logger.Logger
	services *services.Services
}

func NewCompanyHandler(log logger.Logger, s *services.Services) *CompanyHandler {
	return &CompanyHandler{
		log:      log,
		services: s,
	}
}

type emailSettingsRequest struct {
	Provider    string `json:"provider"`
	Email       string `json:"email"`
	AppPassword string `json:"appPassword"`
	SMTPHost    string `json:"smtpHost"`
	SMTPPort    int    `json:"smtpPort"`
	UseSSL      bool   `json:"useSSL"`
	UseTLS      bool   `json:"useTLS"`
}

type senderInfoRequest struct {
	Name      string `json:"name"`
	Signature string `json:"signature"`
}

type createCompanyRequest struct {
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	EmailSettings emailSettingsRequest `json:"emailSettings"`
	SenderInfo    senderInfoRequest    `json:"senderInfo"`
}

func (h *CompanyHandler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		companies, err := h.services.CompanyService.List(c.Request.Context())
		if err != nil {
			h.log.Errorf("failed to list companies: %v", err)
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"companies": companies})
	}
}

func (h *CompanyHandler) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request createCompanyRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		created, err := h.services.CompanyService.Create(c.Request.Context(), &models.Company{
			Name:        request.Name,
			Description: request.Description,
			EmailSettings: models.EmailSettings{
				Provider:    enum.DecodeEmailProvider(request.EmailSettings.Provider),
				Email:       request.EmailSettings.Email,
				AppPassword: request.EmailSettings.AppPassword,
				SMTPHost:    request.EmailSettings.SMTPHost,
				SMTPPort:    request.EmailSettings.SMTPPort,
				UseSSL:      request.EmailSettings.UseSSL,
				UseTLS:      request.EmailSettings.UseTLS,
			},
			SenderInfo: models.SenderInfo{
				Name:      request.SenderInfo.Name,
				Signature: request.SenderInfo.Signature,
			},
		})
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"company": created})
	}
}

type updateEmailSettingsRequest struct {
	Provider    *string `json:"provider"`
	Email       *string `json:"email"`
	AppPassword *string `json:"appPassword"`
	SMTPHost    *string `json:"smtpHost"`
	SMTPPort    *int    `json:"smtpPort"`
	UseSSL      *bool   `json:"useSSL"`
	UseTLS      *bool   `json:"useTLS"`
}

type updateSenderInfoRequest struct {
	Name      *string `json:"name"`
	Signature *string `json:"signature"`
}

type updateCompanyRequest struct {
	Name          *string                     `json:"name"`
	Description   *string                     `json:"description"`
	EmailSettings *updateEmailSettingsRequest `json:"emailSettings"`
	SenderInfo    *updateSenderInfoRequest    `json:"senderInfo"`
}

func (h *CompanyHandler) Update() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request updateCompanyRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		patch := &company.UpdatePatch{
			Name:        request.Name,
			Description: request.Description,
		}
		if es := request.EmailSettings; es != nil {
			patch.EmailSettings = &company.EmailSettingsPatch{
				Provider:    es.Provider,
				Email:       es.Email,
				AppPassword: es.AppPassword,
				SMTPHost:    es.SMTPHost,
				SMTPPort:    es.SMTPPort,
				UseSSL:      es.UseSSL,
				UseTLS:      es.UseTLS,
			}
		}
		if si := request.SenderInfo; si != nil {
			patch.SenderInfo = &company.SenderInfoPatch{
				Name:      si.Name,
				Signature: si.Signature,
			}
		}

		updated, err := h.services.CompanyService.Update(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"company": updated})
	}
}

func (h *CompanyHandler) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.services.CompanyService.Delete(c.Request.Context(), c.Param("id")); err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "company deactivated"})
	}
}

type testEmailRequest struct {
	To string `json:"to"`
}

// TestEmail fires a real send through the company's configuration. The
// recipient defaults to the configured account itself.
func (h *CompanyHandler) TestEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request testEmailRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}
		}

		record, err := h.services.EmailService.TestEmail(c.Request.Context(), c.Param("id"), request.To)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "test email sent",
			"email":   record,
		})
	}
}
