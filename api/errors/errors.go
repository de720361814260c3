package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/mailfleet/mailfleet/services/company"
	"github.com/mailfleet/mailfleet/services/email"
	"github.com/mailfleet/mailfleet/services/smtp"
)

// statusFor maps service-layer errors onto HTTP statuses. Anything not
// listed is an internal error and its text is not shown to the caller.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, company.ErrCompanyNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, company.ErrNameTaken):
		return http.StatusConflict, true
	case errors.Is(err, company.ErrCompanyNotActive),
		errors.Is(err, company.ErrNameRequired),
		errors.Is(err, company.ErrSenderName),
		errors.Is(err, company.ErrSignatureTooLong),
		errors.Is(err, company.ErrInvalidEmail),
		errors.Is(err, company.ErrPasswordRequired),
		errors.Is(err, email.ErrRecipientRequired),
		errors.Is(err, email.ErrInvalidRecipient),
		errors.Is(err, email.ErrInvalidCc),
		errors.Is(err, email.ErrSubjectRequired),
		errors.Is(err, email.ErrSubjectTooLong),
		errors.Is(err, email.ErrBodyRequired),
		errors.Is(err, email.ErrRecipientsRequired):
		return http.StatusBadRequest, true
	}

	var configErr *smtp.ConfigurationError
	if errors.As(err, &configErr) {
		return http.StatusBadRequest, true
	}
	return http.StatusInternalServerError, false
}

// Respond writes the error mapped to its status. Delivery failures get
// their user-safe translation; everything unexpected gets a generic 500
// so raw provider or database text never leaks out.
func Respond(c *gin.Context, err error) {
	var deliveryErr *smtp.DeliveryError
	if errors.As(err, &deliveryErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": deliveryErr.UserMessage()})
		return
	}

	status, known := statusFor(err)
	if known {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(status, gin.H{"error": "An unexpected error occurred"})
}
