package email

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailfleet/mailfleet/interfaces"
	"github.com/mailfleet/mailfleet/internal/enum"
	"github.com/mailfleet/mailfleet/internal/models"
	"github.com/mailfleet/mailfleet/services/company"
	"github.com/mailfleet/mailfleet/services/smtp"
)

func TestSendBulk_MixedOutcomes(t *testing.T) {
	connErr := &smtp.DeliveryError{
		Kind: smtp.KindConnectionFailed,
		Err:  errors.New("dial tcp: connection refused"),
	}
	dispatcher := &fakeDispatcher{failFor: map[string]error{"b@example.com": connErr}}
	service, repos := setupService(t, dispatcher)
	ctx := userContext("user_1")
	acme := seedCompany(t, repos, "user_1")

	result, err := service.SendBulk(ctx, &BulkRequest{
		CompanyID: acme.ID,
		Recipients: []BulkRecipient{
			{Email: "a@example.com", Name: "Alice"},
			{Email: "b@example.com", Name: "Bob"},
		},
		Subject:      "Hi {name}",
		HTMLContent:  "<p>Hello {name}!</p>",
		CampaignName: "launch",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.SentCount)
	assert.Equal(t, 1, result.FailedCount)
	require.Len(t, result.Emails, 2)

	// Personalization replaces the placeholder per recipient.
	require.Len(t, dispatcher.calls, 2)
	assert.Equal(t, "Hi Alice", dispatcher.calls[0].Subject)
	assert.Equal(t, "<p>Hello Alice!</p>", dispatcher.calls[0].BodyHTML)
	assert.Equal(t, "Hi Bob", dispatcher.calls[1].Subject)

	// Every recipient lands in the ledger with a final status.
	emails, total, err := repos.EmailRepository.List(ctx, "user_1", interfaces.EmailFilters{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	byAddress := map[string]*models.Email{}
	for _, e := range emails {
		byAddress[e.ToAddress] = e
	}
	require.Contains(t, byAddress, "a@example.com")
	require.Contains(t, byAddress, "b@example.com")
	assert.Equal(t, enum.EmailStatusSent, byAddress["a@example.com"].Status)
	assert.Equal(t, "launch", byAddress["a@example.com"].CampaignName())
	assert.Equal(t, enum.EmailStatusFailed, byAddress["b@example.com"].Status)
	assert.Equal(t, "Could not connect to the email server. Please check your SMTP settings.", byAddress["b@example.com"].ErrorMessage)
}

func TestSendBulk_NoRecipients(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	service, repos := setupService(t, dispatcher)
	ctx := userContext("user_1")
	acme := seedCompany(t, repos, "user_1")

	_, err := service.SendBulk(ctx, &BulkRequest{
		CompanyID:   acme.ID,
		Subject:     "Hi",
		HTMLContent: "<p>Hi</p>",
	})
	assert.ErrorIs(t, err, ErrRecipientsRequired)
}

func TestSendBulk_UnknownCompany(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	service, _ := setupService(t, dispatcher)

	_, err := service.SendBulk(userContext("user_1"), &BulkRequest{
		CompanyID:   "cmp_missing",
		Recipients:  []BulkRecipient{{Email: "a@example.com"}},
		Subject:     "Hi",
		HTMLContent: "<p>Hi</p>",
	})
	assert.ErrorIs(t, err, company.ErrCompanyNotFound)
}

func TestSendBulk_InvalidRecipientRecordedWithoutDispatch(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	service, repos := setupService(t, dispatcher)
	ctx := userContext("user_1")
	acme := seedCompany(t, repos, "user_1")

	result, err := service.SendBulk(ctx, &BulkRequest{
		CompanyID: acme.ID,
		Recipients: []BulkRecipient{
			{Email: "not-an-address", Name: "Nope"},
			{Email: "ok@example.com", Name: "Okay"},
		},
		Subject:     "Hi {name}",
		HTMLContent: "<p>Hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SentCount)
	assert.Equal(t, 1, result.FailedCount)

	// The bad address never hit the wire but is still in the ledger.
	require.Len(t, dispatcher.calls, 1)
	assert.Equal(t, "ok@example.com", dispatcher.calls[0].To)

	_, total, err := repos.EmailRepository.List(ctx, "user_1", interfaces.EmailFilters{Status: enum.EmailStatusFailed}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestSendBulk_DelayBetweenSendsNotAfterLast(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	service, repos := setupService(t, dispatcher)
	ctx := userContext("user_1")
	acme := seedCompany(t, repos, "user_1")

	delay := 40 * time.Millisecond
	_, err := service.SendBulk(ctx, &BulkRequest{
		CompanyID: acme.ID,
		Recipients: []BulkRecipient{
			{Email: "a@example.com"},
			{Email: "b@example.com"},
			{Email: "c@example.com"},
		},
		Subject:     "Hi",
		HTMLContent: "<p>Hi</p>",
		DelayMs:     int(delay / time.Millisecond),
	})
	returned := time.Now()
	require.NoError(t, err)

	require.Len(t, dispatcher.times, 3)
	assert.GreaterOrEqual(t, dispatcher.times[1].Sub(dispatcher.times[0]), delay)
	assert.GreaterOrEqual(t, dispatcher.times[2].Sub(dispatcher.times[1]), delay)
	// No pause after the last recipient.
	assert.Less(t, returned.Sub(dispatcher.times[2]), delay)
}

func TestSendBulk_SubjectOverBoundAfterSubstitution(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	service, repos := setupService(t, dispatcher)
	ctx := userContext("user_1")
	acme := seedCompany(t, repos, "user_1")

	// The template fits the bound; substituting a long recipient name
	// pushes the subject past it.
	subject := "Hello {name}, " + strings.Repeat("x", maxSubjectLength-20)
	require.LessOrEqual(t, len(strings.ReplaceAll(subject, namePlaceholder, "")), maxSubjectLength)

	result, err := service.SendBulk(ctx, &BulkRequest{
		CompanyID: acme.ID,
		Recipients: []BulkRecipient{
			{Email: "long@example.com", Name: strings.Repeat("N", 60)},
			{Email: "short@example.com", Name: "Bo"},
		},
		Subject:     subject,
		HTMLContent: "<p>Hello {name}</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SentCount)
	assert.Equal(t, 1, result.FailedCount)

	// The oversized recipient never reached the dispatcher.
	require.Len(t, dispatcher.calls, 1)
	assert.Equal(t, "short@example.com", dispatcher.calls[0].To)

	require.Len(t, result.Emails, 2)
	failed := result.Emails[0]
	assert.Equal(t, enum.EmailStatusFailed, failed.Status)
	assert.Equal(t, ErrSubjectTooLong.Error(), failed.ErrorMessage)
	assert.Len(t, failed.Subject, maxSubjectLength)

	stored, err := repos.EmailRepository.GetByID(ctx, "user_1", failed.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, enum.EmailStatusFailed, stored.Status)
}
