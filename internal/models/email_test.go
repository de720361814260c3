package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailfleet/mailfleet/internal/enum"
)

func TestEmailJSONOmitsRawResponse(t *testing.T) {
	record := &Email{
		ID:        "email_1",
		UserID:    "user_1",
		CompanyID: "cmp_1",
		ToAddress: "buyer@example.com",
		Subject:   "Quote",
		Status:    enum.EmailStatusFailed,
		Metadata: JSONMap{
			MetadataRawResponse:  "535 5.7.8 authentication rejected",
			MetadataCampaignName: "launch",
		},
	}

	raw, err := json.Marshal(record)
	require.NoError(t, err)

	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &view))

	metadata, ok := view["metadata"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "launch", metadata[MetadataCampaignName])
	assert.NotContains(t, metadata, MetadataRawResponse)
	assert.NotContains(t, string(raw), "535 5.7.8")

	// The in-memory record keeps the raw text for persistence.
	assert.Equal(t, "535 5.7.8 authentication rejected", record.Metadata[MetadataRawResponse])
}

func TestEmailJSONDropsMetadataWhenOnlyRawResponse(t *testing.T) {
	record := &Email{
		ID:       "email_2",
		Status:   enum.EmailStatusSent,
		Metadata: JSONMap{MetadataRawResponse: "250 2.0.0 OK"},
	}

	raw, err := json.Marshal(record)
	require.NoError(t, err)

	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &view))
	assert.NotContains(t, view, "metadata")
}
