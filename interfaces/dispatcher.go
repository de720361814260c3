package interfaces

import (
	"context"

	"github.com/mailfleet/mailfleet/internal/models"
)

// OutboundMessage is one formatted message ready for dispatch.
type OutboundMessage struct {
	FromName    string
	FromAddress string
	To          string
	Cc          []string
	Subject     string
	BodyHTML    string
	BodyText    string
}

// DispatchResult is the provider outcome normalized across providers.
type DispatchResult struct {
	MessageID   string
	RawResponse string
}

// Dispatcher performs exactly one SMTP transaction per Send call. It does
// not retry; classification of the failure is carried in the error.
type Dispatcher interface {
	Send(ctx context.Context, company *models.Company, message *OutboundMessage) (*DispatchResult, error)
}
