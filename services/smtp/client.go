package smtp

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/mailfleet/mailfleet/interfaces"
	"github.com/mailfleet/mailfleet/internal/metrics"
	"github.com/mailfleet/mailfleet/internal/models"
	"github.com/mailfleet/mailfleet/internal/tracing"
	"github.com/mailfleet/mailfleet/internal/utils"
)

// SMTPClient dispatches one message per Send call over a fresh session.
type SMTPClient struct{}

func NewSMTPClient() *SMTPClient {
	return &SMTPClient{}
}

var _ interfaces.Dispatcher = (*SMTPClient)(nil)

func (s *SMTPClient) Send(ctx context.Context, company *models.Company, message *interfaces.OutboundMessage) (*interfaces.DispatchResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPClient.Send")
	defer span.Finish()
	tracing.TagComponentSmtp(span)
	tracing.TagCompany(span, company.ID)

	profile, err := ResolveProfile(company.EmailSettings)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.SetTag("smtp.host", profile.Host)

	messageID := utils.GenerateMessageID(utils.ExtractDomainFromEmail(message.FromAddress))
	payload, err := buildMessage(message, messageID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, deliveryError(KindUnknown, err)
	}

	start := time.Now()
	rawResponse, err := s.transact(profile, message, payload)
	metrics.SMTPSendDuration.WithLabelValues(company.EmailSettings.Provider.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return &interfaces.DispatchResult{
		MessageID:   messageID,
		RawResponse: rawResponse,
	}, nil
}

// transact runs the full MAIL/RCPT/DATA exchange and returns the server's
// final DATA-phase reply, which is the closest thing SMTP has to a
// delivery receipt.
func (s *SMTPClient) transact(profile *ConnectionProfile, message *interfaces.OutboundMessage, payload []byte) (string, error) {
	session, err := OpenSession(profile)
	if err != nil {
		return "", err
	}
	defer session.Close()

	client := session.client

	if err := client.Mail(message.FromAddress); err != nil {
		return "", deliveryError(KindUnknown, errors.Wrap(err, "SMTP MAIL command failed"))
	}

	for _, recipient := range envelopeRecipients(message) {
		if err := client.Rcpt(recipient); err != nil {
			return "", deliveryError(KindInvalidRecipient, errors.Wrapf(err, "SMTP RCPT command failed for %s", recipient))
		}
	}

	// DATA is driven through the textproto conn directly so the final
	// 250 reply text can be captured for the ledger.
	id, err := client.Text.Cmd("DATA")
	if err != nil {
		return "", deliveryError(KindUnknown, errors.Wrap(err, "SMTP DATA command failed"))
	}
	client.Text.StartResponse(id)
	if _, _, err := client.Text.ReadResponse(354); err != nil {
		client.Text.EndResponse(id)
		return "", deliveryError(KindUnknown, errors.Wrap(err, "SMTP DATA command rejected"))
	}
	client.Text.EndResponse(id)

	writer := client.Text.DotWriter()
	if _, err := writer.Write(payload); err != nil {
		writer.Close()
		return "", deliveryError(KindUnknown, errors.Wrap(err, "failed to write message data"))
	}
	if err := writer.Close(); err != nil {
		return "", deliveryError(KindUnknown, errors.Wrap(err, "failed to finish message data"))
	}

	code, reply, err := client.Text.ReadResponse(250)
	if err != nil {
		return "", deliveryError(KindUnknown, errors.Wrap(err, "message rejected by server"))
	}

	return fmt.Sprintf("%d %s", code, reply), nil
}

func envelopeRecipients(message *interfaces.OutboundMessage) []string {
	recipients := make([]string, 0, 1+len(message.Cc))
	recipients = append(recipients, message.To)
	recipients = append(recipients, message.Cc...)
	return recipients
}

// buildMessage renders the RFC 5322 payload: headers plus a
// multipart/alternative body with text and HTML parts.
func buildMessage(message *interfaces.OutboundMessage, messageID string) ([]byte, error) {
	buffer := bytes.NewBuffer(nil)
	writer := multipart.NewWriter(buffer)

	headers := buildHeaders(message, messageID, writer.Boundary())
	writeHeaders(headers, buffer)

	text := message.BodyText
	if text == "" {
		text = utils.StripHTMLTags(message.BodyHTML)
	}

	if err := addPart(writer, "text/plain", text); err != nil {
		return nil, err
	}
	if message.BodyHTML != "" {
		if err := addPart(writer, "text/html", message.BodyHTML); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

func buildHeaders(message *interfaces.OutboundMessage, messageID, boundary string) []header {
	from := message.FromAddress
	if message.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", message.FromName), message.FromAddress)
	}

	headers := []header{
		{"From", from},
		{"To", message.To},
	}
	if len(message.Cc) > 0 {
		headers = append(headers, header{"Cc", joinAddresses(message.Cc)})
	}
	headers = append(headers,
		header{"Subject", mime.QEncoding.Encode("utf-8", message.Subject)},
		header{"Message-ID", messageID},
		header{"Date", time.Now().Format(time.RFC1123Z)},
		header{"MIME-Version", "1.0"},
		header{"Content-Type", "multipart/alternative; boundary=" + boundary},
	)
	return headers
}

type header struct {
	key   string
	value string
}

func writeHeaders(headers []header, buffer *bytes.Buffer) {
	for _, h := range headers {
		buffer.WriteString(fmt.Sprintf("%s: %s\r\n", h.key, h.value))
	}
	buffer.WriteString("\r\n")
}

func joinAddresses(addresses []string) string {
	joined := ""
	for i, address := range addresses {
		if i > 0 {
			joined += ", "
		}
		joined += address
	}
	return joined
}

func addPart(writer *multipart.Writer, contentType, content string) error {
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType + "; charset=UTF-8"},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to create %s part", contentType)
	}

	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(content)); err != nil {
		return errors.Wrapf(err, "failed to write %s content", contentType)
	}
	return qp.Close()
}
