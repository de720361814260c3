package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/lib/pq"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/mailfleet/mailfleet/interfaces"
	"github.com/mailfleet/mailfleet/internal/enum"
	"github.com/mailfleet/mailfleet/internal/metrics"
	"github.com/mailfleet/mailfleet/internal/models"
	"github.com/mailfleet/mailfleet/internal/tracing"
	"github.com/mailfleet/mailfleet/internal/utils"
	"github.com/mailfleet/mailfleet/services/smtp"
)

// SendRequest is a single outbound email on behalf of one company.
type SendRequest struct {
	CompanyID    string
	To           string
	Cc           []string
	Subject      string
	HTMLContent  string
	TextContent  string
	CampaignName string
}

// Send performs one dispatch attempt. The ledger sees the attempt before
// the wire does: a pending record is created first, then finalized to
// sent or failed. Ledger write failures are logged and never change the
// outcome reported to the caller.
func (s *Service) Send(ctx context.Context, request *SendRequest) (*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailService.Send")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, request.CompanyID)

	sendingCompany, err := s.companies.GetActive(ctx, request.CompanyID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if err := validateSendRequest(request); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	record := s.recordAttempt(ctx, sendingCompany, request)

	message := &interfaces.OutboundMessage{
		FromName:    sendingCompany.SenderInfo.Name,
		FromAddress: sendingCompany.EmailSettings.Email,
		To:          request.To,
		Cc:          request.Cc,
		Subject:     request.Subject,
		BodyHTML:    request.HTMLContent,
		BodyText:    request.TextContent,
	}

	provider := sendingCompany.EmailSettings.Provider.String()

	result, sendErr := s.dispatcher.Send(ctx, sendingCompany, message)
	if sendErr != nil {
		kind, userMessage := classify(sendErr)
		metrics.EmailsFailed.WithLabelValues(provider, string(kind)).Inc()
		s.finalize(ctx, record, enum.EmailStatusFailed, "", userMessage, sendErr.Error())
		tracing.TraceErr(span, sendErr)
		return record, sendErr
	}

	metrics.EmailsSent.WithLabelValues(provider).Inc()
	s.finalize(ctx, record, enum.EmailStatusSent, result.MessageID, "", result.RawResponse)
	return record, nil
}

// TestEmail sends a short connection-test message through a company's
// configuration. The attempt goes through the regular ledger path so it
// shows up in history like any other send.
func (s *Service) TestEmail(ctx context.Context, companyID, to string) (*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailService.TestEmail")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyID)

	sendingCompany, err := s.companies.GetActive(ctx, companyID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if to == "" {
		to = sendingCompany.EmailSettings.Email
	}

	body := fmt.Sprintf(
		"<p>This is a test email from <strong>%s</strong>.</p><p>If you received this, the email configuration is working.</p>",
		sendingCompany.Name)

	return s.Send(ctx, &SendRequest{
		CompanyID:    companyID,
		To:           to,
		Subject:      fmt.Sprintf("Test email from %s", sendingCompany.Name),
		HTMLContent:  body,
		CampaignName: "connection-test",
	})
}

// recordAttempt writes the pending ledger row. A nil return means the
// ledger was unavailable; the send proceeds anyway and the gap is logged.
func (s *Service) recordAttempt(ctx context.Context, sendingCompany *models.Company, request *SendRequest) *models.Email {
	record := newLedgerRecord(ctx, sendingCompany, request.To, request)
	if err := s.repositories.EmailRepository.Create(ctx, record); err != nil {
		s.log.Errorf("failed to record send attempt for company %s: %v", sendingCompany.ID, err)
		return nil
	}
	return record
}

func (s *Service) finalize(ctx context.Context, record *models.Email, status enum.EmailStatus, messageID, errorMessage, rawResponse string) {
	if record == nil {
		return
	}
	updated, err := s.repositories.EmailRepository.Finalize(ctx, record.ID, status, messageID, errorMessage, rawResponse)
	if err != nil {
		s.log.Errorf("failed to finalize email %s to %s: %v", record.ID, status, err)
	} else if !updated {
		s.log.Warnf("email %s was not pending, finalize to %s skipped", record.ID, status)
	}

	record.Status = status
	record.MessageID = messageID
	record.ErrorMessage = errorMessage
	if status == enum.EmailStatusSent {
		record.SentAt = utils.NowPtr()
	}
}

func newLedgerRecord(ctx context.Context, sendingCompany *models.Company, to string, request *SendRequest) *models.Email {
	metadata := models.JSONMap{}
	if ip := utils.GetClientIPFromContext(ctx); ip != "" {
		metadata[models.MetadataClientIP] = ip
	}
	if agent := utils.GetUserAgentFromContext(ctx); agent != "" {
		metadata[models.MetadataUserAgent] = agent
	}
	if request.CampaignName != "" {
		metadata[models.MetadataCampaignName] = request.CampaignName
	}

	return &models.Email{
		UserID:      utils.GetUserIdFromContext(ctx),
		CompanyID:   sendingCompany.ID,
		ToAddress:   to,
		CcAddresses: pq.StringArray(request.Cc),
		Subject:     request.Subject,
		BodyHTML:    request.HTMLContent,
		BodyText:    request.TextContent,
		Status:      enum.EmailStatusPending,
		Metadata:    metadata,
	}
}

// classify maps a dispatch error to its ledger kind and the only text a
// caller is allowed to see. Raw provider output stays in the metadata.
func classify(sendErr error) (smtp.DeliveryKind, string) {
	var deliveryErr *smtp.DeliveryError
	if errors.As(sendErr, &deliveryErr) {
		return deliveryErr.Kind, deliveryErr.UserMessage()
	}
	return smtp.KindUnknown, (&smtp.DeliveryError{Kind: smtp.KindUnknown}).UserMessage()
}

func validateSendRequest(request *SendRequest) error {
	request.To = strings.TrimSpace(request.To)
	if request.To == "" {
		return ErrRecipientRequired
	}
	if !mailvalidate.ValidateEmailSyntax(request.To).IsValid {
		return ErrInvalidRecipient
	}
	for _, cc := range request.Cc {
		if !mailvalidate.ValidateEmailSyntax(cc).IsValid {
			return ErrInvalidCc
		}
	}
	if strings.TrimSpace(request.Subject) == "" {
		return ErrSubjectRequired
	}
	if len(request.Subject) > maxSubjectLength {
		return ErrSubjectTooLong
	}
	if strings.TrimSpace(request.HTMLContent) == "" {
		return ErrBodyRequired
	}
	return nil
}
