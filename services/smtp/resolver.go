package smtp

import (
	"fmt"

	"github.com/mailfleet/mailfleet/internal/enum"
	"github.com/mailfleet/mailfleet/internal/models"
)

// ConnectionProfile is a resolved set of SMTP connection parameters, ready
// to open a session with.
type ConnectionProfile struct {
	Host     string
	Port     int
	Security enum.EmailSecurity
	Username string
	Password string
	// VerifyCert controls server certificate validation. Only the custom
	// provider may opt out (its use-TLS flag); well-known providers always
	// verify.
	VerifyCert bool
}

// Address returns the host:port dial target.
func (p *ConnectionProfile) Address() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// ConfigurationError marks company settings that cannot produce a usable
// connection profile. It is rejected before any network I/O.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "smtp configuration error: " + e.Reason
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// profileBuilder builds the profile for one provider family. Adding a
// provider means registering a builder, not growing a conditional chain.
type profileBuilder func(settings models.EmailSettings) (*ConnectionProfile, error)

var profileBuilders = map[enum.EmailProvider]profileBuilder{
	enum.ProviderGmail:   wellKnownProvider("smtp.gmail.com", 587, enum.EmailSecurityStartTLS),
	enum.ProviderOutlook: wellKnownProvider("smtp-mail.outlook.com", 587, enum.EmailSecurityStartTLS),
	enum.ProviderYahoo:   wellKnownProvider("smtp.mail.yahoo.com", 465, enum.EmailSecuritySSL),
	enum.ProviderCustom:  customProvider,
}

func wellKnownProvider(host string, port int, security enum.EmailSecurity) profileBuilder {
	return func(settings models.EmailSettings) (*ConnectionProfile, error) {
		return &ConnectionProfile{
			Host:       host,
			Port:       port,
			Security:   security,
			Username:   settings.Email,
			Password:   settings.AppPassword,
			VerifyCert: true,
		}, nil
	}
}

func customProvider(settings models.EmailSettings) (*ConnectionProfile, error) {
	if settings.SMTPHost == "" {
		return nil, configErrorf("smtp host is required for custom provider")
	}
	if settings.SMTPPort < 1 || settings.SMTPPort > 65535 {
		return nil, configErrorf("smtp port %d is outside [1,65535]", settings.SMTPPort)
	}

	// Port 465 is implicit TLS by convention even when the SSL flag is off.
	security := enum.EmailSecurityStartTLS
	if settings.UseSSL || settings.SMTPPort == 465 {
		security = enum.EmailSecuritySSL
	}

	return &ConnectionProfile{
		Host:       settings.SMTPHost,
		Port:       settings.SMTPPort,
		Security:   security,
		Username:   settings.Email,
		Password:   settings.AppPassword,
		VerifyCert: settings.UseTLS,
	}, nil
}

// ResolveProfile maps a company's email settings to a connection profile.
func ResolveProfile(settings models.EmailSettings) (*ConnectionProfile, error) {
	builder, ok := profileBuilders[settings.Provider]
	if !ok {
		return nil, configErrorf("unsupported email provider %q", settings.Provider)
	}
	if settings.Email == "" {
		return nil, configErrorf("account email is required")
	}
	return builder(settings)
}
