package smtp

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailfleet/mailfleet/internal/enum"
	"github.com/mailfleet/mailfleet/internal/models"
)

func gmailSettings() models.EmailSettings {
	return models.EmailSettings{
		Provider:    enum.ProviderGmail,
		Email:       "sender@gmail.com",
		AppPassword: "app-password",
	}
}

func TestResolveProfile_WellKnownProviders(t *testing.T) {
	tests := []struct {
		provider enum.EmailProvider
		host     string
		port     int
		security enum.EmailSecurity
	}{
		{enum.ProviderGmail, "smtp.gmail.com", 587, enum.EmailSecurityStartTLS},
		{enum.ProviderOutlook, "smtp-mail.outlook.com", 587, enum.EmailSecurityStartTLS},
		{enum.ProviderYahoo, "smtp.mail.yahoo.com", 465, enum.EmailSecuritySSL},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			settings := gmailSettings()
			settings.Provider = tt.provider

			profile, err := ResolveProfile(settings)
			require.NoError(t, err)
			assert.Equal(t, tt.host, profile.Host)
			assert.Equal(t, tt.port, profile.Port)
			assert.Equal(t, tt.security, profile.Security)
			assert.Equal(t, "sender@gmail.com", profile.Username)
			assert.Equal(t, "app-password", profile.Password)
			assert.True(t, profile.VerifyCert)
		})
	}
}

func TestResolveProfile_WellKnownIgnoresHostOverrides(t *testing.T) {
	settings := gmailSettings()
	settings.SMTPHost = "evil.example.com"
	settings.SMTPPort = 2525

	profile, err := ResolveProfile(settings)
	require.NoError(t, err)
	assert.Equal(t, "smtp.gmail.com", profile.Host)
	assert.Equal(t, 587, profile.Port)
}

func TestResolveProfile_UnknownProvider(t *testing.T) {
	settings := gmailSettings()
	settings.Provider = "pigeon"

	_, err := ResolveProfile(settings)
	var configErr *ConfigurationError
	require.ErrorAs(t, err, &configErr)
}

func TestResolveProfile_MissingEmail(t *testing.T) {
	settings := gmailSettings()
	settings.Email = ""

	_, err := ResolveProfile(settings)
	var configErr *ConfigurationError
	require.ErrorAs(t, err, &configErr)
}

func TestResolveProfile_CustomRequiresHost(t *testing.T) {
	settings := gmailSettings()
	settings.Provider = enum.ProviderCustom
	settings.SMTPPort = 587

	_, err := ResolveProfile(settings)
	var configErr *ConfigurationError
	require.ErrorAs(t, err, &configErr)
}

func TestResolveProfile_CustomSecurity(t *testing.T) {
	base := gmailSettings()
	base.Provider = enum.ProviderCustom
	base.SMTPHost = "mail.example.com"

	tests := []struct {
		name     string
		port     int
		useSSL   bool
		security enum.EmailSecurity
	}{
		{"starttls by default", 587, false, enum.EmailSecurityStartTLS},
		{"ssl when flagged", 587, true, enum.EmailSecuritySSL},
		{"port 465 implies ssl", 465, false, enum.EmailSecuritySSL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := base
			settings.SMTPPort = tt.port
			settings.UseSSL = tt.useSSL

			profile, err := ResolveProfile(settings)
			require.NoError(t, err)
			assert.Equal(t, tt.security, profile.Security)
			assert.Equal(t, "mail.example.com", profile.Host)
		})
	}
}

func TestResolveProfile_CustomVerifyCertFollowsUseTLS(t *testing.T) {
	settings := gmailSettings()
	settings.Provider = enum.ProviderCustom
	settings.SMTPHost = "mail.example.com"
	settings.SMTPPort = 587

	profile, err := ResolveProfile(settings)
	require.NoError(t, err)
	assert.False(t, profile.VerifyCert)

	settings.UseTLS = true
	profile, err = ResolveProfile(settings)
	require.NoError(t, err)
	assert.True(t, profile.VerifyCert)
}

// A custom profile resolves exactly when the port is within [1,65535].
func TestProperty_CustomPortBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("port_in_range_resolves", prop.ForAll(
		func(port int) bool {
			settings := gmailSettings()
			settings.Provider = enum.ProviderCustom
			settings.SMTPHost = "mail.example.com"
			settings.SMTPPort = port

			profile, err := ResolveProfile(settings)
			inRange := port >= 1 && port <= 65535
			if inRange {
				return err == nil && profile.Port == port
			}
			return err != nil && profile == nil
		},
		gen.IntRange(-1000, 70000),
	))

	properties.TestingRun(t)
}
