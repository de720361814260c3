package enum

import "strings"

type EmailProvider string

const (
	ProviderGmail   EmailProvider = "gmail"
	ProviderOutlook EmailProvider = "outlook"
	ProviderYahoo   EmailProvider = "yahoo"
	ProviderCustom  EmailProvider = "custom"
)

func (t EmailProvider) String() string {
	return string(t)
}

func (t EmailProvider) IsValid() bool {
	switch t {
	case ProviderGmail, ProviderOutlook, ProviderYahoo, ProviderCustom:
		return true
	}
	return false
}

// DecodeEmailProvider normalizes user input; an unknown value decodes
// to the empty provider, which never passes IsValid.
func DecodeEmailProvider(s string) EmailProvider {
	v := EmailProvider(strings.ToLower(strings.TrimSpace(s)))
	if v.IsValid() {
		return v
	}
	return EmailProvider(s)
}

type EmailStatus string

const (
	EmailStatusPending   EmailStatus = "pending"
	EmailStatusSent      EmailStatus = "sent"
	EmailStatusFailed    EmailStatus = "failed"
	EmailStatusDelivered EmailStatus = "delivered"
	EmailStatusBounced   EmailStatus = "bounced"
)

func (t EmailStatus) String() string {
	return string(t)
}

func (t EmailStatus) IsValid() bool {
	switch t {
	case EmailStatusPending, EmailStatusSent, EmailStatusFailed, EmailStatusDelivered, EmailStatusBounced:
		return true
	}
	return false
}

// IsFinal reports whether a dispatch attempt may still transition out of this status.
func (t EmailStatus) IsFinal() bool {
	return t != EmailStatusPending
}

type EmailSecurity string

const (
	EmailSecurityNone     EmailSecurity = "none"
	EmailSecuritySSL      EmailSecurity = "ssl"
	EmailSecurityStartTLS EmailSecurity = "startTLS"
)

func (t EmailSecurity) String() string {
	return string(t)
}
