package smtp

import (
	"net"

	"github.com/pkg/errors"
)

// DeliveryKind classifies a failed SMTP transaction. One attempt per send
// request; nothing here is retried.
type DeliveryKind string

const (
	KindAuthenticationFailed DeliveryKind = "authentication_failed"
	KindConnectionFailed     DeliveryKind = "connection_failed"
	KindInvalidRecipient     DeliveryKind = "invalid_recipient"
	KindTimeout              DeliveryKind = "timeout"
	KindUnknown              DeliveryKind = "unknown"
)

// DeliveryError carries the failure class plus the raw provider error. The
// raw text is for the ledger's metadata only; UserMessage is what callers
// may show.
type DeliveryError struct {
	Kind DeliveryKind
	Err  error
}

func (e *DeliveryError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// UserMessage translates the failure into text safe to return to end
// users. Raw provider responses never pass through here.
func (e *DeliveryError) UserMessage() string {
	switch e.Kind {
	case KindAuthenticationFailed:
		return "Authentication failed. Please check your email and password."
	case KindConnectionFailed:
		return "Could not connect to the email server. Please check your SMTP settings."
	case KindInvalidRecipient:
		return "The recipient address was rejected by the email server."
	case KindTimeout:
		return "The email server took too long to respond. Please try again later."
	default:
		return "The email could not be sent due to an unexpected error."
	}
}

func deliveryError(kind DeliveryKind, err error) *DeliveryError {
	// Timeouts win over the stage-derived kind.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		kind = KindTimeout
	}
	return &DeliveryError{Kind: kind, Err: err}
}
