package email

import (
	"context"
	"strings"
	"time"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"

	"github.com/mailfleet/mailfleet/interfaces"
	"github.com/mailfleet/mailfleet/internal/enum"
	"github.com/mailfleet/mailfleet/internal/metrics"
	"github.com/mailfleet/mailfleet/internal/models"
	"github.com/mailfleet/mailfleet/internal/tracing"
	"github.com/mailfleet/mailfleet/internal/utils"
	"github.com/mailfleet/mailfleet/services/smtp"
)

const namePlaceholder = "{name}"

// BulkRecipient is one target of a campaign. Name feeds the {name}
// placeholder in subject and body.
type BulkRecipient struct {
	Email string
	Name  string
}

// BulkRequest is a campaign: the same templated message for a list of
// recipients, sent sequentially through one company.
type BulkRequest struct {
	CompanyID    string
	Recipients   []BulkRecipient
	Subject      string
	HTMLContent  string
	TextContent  string
	CampaignName string
	// DelayMs overrides the configured pause between recipients when > 0.
	DelayMs int
}

// BulkResult aggregates the per-recipient outcomes of one campaign run.
type BulkResult struct {
	Total       int             `json:"total"`
	SentCount   int             `json:"sent"`
	FailedCount int             `json:"failed"`
	Emails      []*models.Email `json:"emails"`
}

// SendBulk runs a campaign. Recipients are processed strictly in order,
// one SMTP transaction each, with a pause between sends but not after
// the last one. A failure for one recipient never stops the rest; every
// recipient ends up in the ledger with a final status.
func (s *Service) SendBulk(ctx context.Context, request *BulkRequest) (*BulkResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailService.SendBulk")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, request.CompanyID)
	span.LogFields(log.Int("recipients", len(request.Recipients)))

	sendingCompany, err := s.companies.GetActive(ctx, request.CompanyID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if len(request.Recipients) == 0 {
		return nil, ErrRecipientsRequired
	}
	if err := validateBulkTemplate(request); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	delay := time.Duration(s.cfg.AppConfig.BulkSendDelayMs) * time.Millisecond
	if request.DelayMs > 0 {
		delay = time.Duration(request.DelayMs) * time.Millisecond
	}

	result := &BulkResult{Total: len(request.Recipients)}
	for i, recipient := range request.Recipients {
		record := s.sendOne(ctx, sendingCompany, request, recipient)
		result.Emails = append(result.Emails, record)
		if record.Status == enum.EmailStatusSent {
			result.SentCount++
		} else {
			result.FailedCount++
		}

		if i == len(request.Recipients)-1 {
			break
		}
		select {
		case <-ctx.Done():
			tracing.TraceErr(span, ctx.Err())
			return result, ctx.Err()
		case <-time.After(delay):
		}
	}

	span.LogFields(log.Int("sent", result.SentCount), log.Int("failed", result.FailedCount))
	return result, nil
}

// sendOne dispatches to a single campaign recipient and persists the
// outcome. Unlike the single-send path, the ledger row is written once,
// after the outcome is known.
func (s *Service) sendOne(ctx context.Context, sendingCompany *models.Company, request *BulkRequest, recipient BulkRecipient) *models.Email {
	personalized := &SendRequest{
		CompanyID:    request.CompanyID,
		To:           strings.TrimSpace(recipient.Email),
		Subject:      personalize(request.Subject, recipient.Name),
		HTMLContent:  personalize(request.HTMLContent, recipient.Name),
		TextContent:  personalize(request.TextContent, recipient.Name),
		CampaignName: request.CampaignName,
	}
	record := newLedgerRecord(ctx, sendingCompany, personalized.To, personalized)
	provider := sendingCompany.EmailSettings.Provider.String()

	// Substitution can push a valid template past the subject bound.
	if len(personalized.Subject) > maxSubjectLength {
		record.Subject = personalized.Subject[:maxSubjectLength]
		record.Status = enum.EmailStatusFailed
		record.ErrorMessage = ErrSubjectTooLong.Error()
		s.persistBulkRecord(ctx, record)
		return record
	}

	if !mailvalidate.ValidateEmailSyntax(personalized.To).IsValid {
		record.Status = enum.EmailStatusFailed
		record.ErrorMessage = ErrInvalidRecipient.Error()
		metrics.EmailsFailed.WithLabelValues(provider, string(smtp.KindInvalidRecipient)).Inc()
		s.persistBulkRecord(ctx, record)
		return record
	}

	message := &interfaces.OutboundMessage{
		FromName:    sendingCompany.SenderInfo.Name,
		FromAddress: sendingCompany.EmailSettings.Email,
		To:          personalized.To,
		Subject:     personalized.Subject,
		BodyHTML:    personalized.HTMLContent,
		BodyText:    personalized.TextContent,
	}

	dispatchResult, sendErr := s.dispatcher.Send(ctx, sendingCompany, message)
	if sendErr != nil {
		kind, userMessage := classify(sendErr)
		metrics.EmailsFailed.WithLabelValues(provider, string(kind)).Inc()
		record.Status = enum.EmailStatusFailed
		record.ErrorMessage = userMessage
		record.Metadata[models.MetadataRawResponse] = sendErr.Error()
	} else {
		metrics.EmailsSent.WithLabelValues(provider).Inc()
		record.Status = enum.EmailStatusSent
		record.SentAt = utils.NowPtr()
		record.MessageID = dispatchResult.MessageID
		if dispatchResult.RawResponse != "" {
			record.Metadata[models.MetadataRawResponse] = dispatchResult.RawResponse
		}
	}

	s.persistBulkRecord(ctx, record)
	return record
}

func (s *Service) persistBulkRecord(ctx context.Context, record *models.Email) {
	if err := s.repositories.EmailRepository.Create(ctx, record); err != nil {
		s.log.Errorf("failed to record campaign email to %s: %v", record.ToAddress, err)
	}
}

func personalize(template, name string) string {
	return strings.ReplaceAll(template, namePlaceholder, name)
}

func validateBulkTemplate(request *BulkRequest) error {
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
