package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webshop/pkg/domain"
)

func TestDocumentToProfile(t *testing.T) {
	raw := json.RawMessage(`{
		"firstName": "Kari",
		"surname": "Nordmann",
		"email": "kari@example.com",
		"phone": "+4791234567",
		"travelcard": {"id": 1616006913, "expires": {"seconds": 1735686000, "nanoseconds": 0}},
		"consents": [{"id": 1, "choice": true, "email": "kari@example.com"}],
		"signInMethods": [{"provider": "password", "uid": "abc"}]
	}`)

	doc, err := DecodeDocument(raw)
	require.NoError(t, err)

	oslo, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)
	p := doc.ToProfile(domain.AccountID("ATB:CustomerAccount:1"), oslo)

	assert.Equal(t, "Kari", p.FirstName)
	assert.Equal(t, "Nordmann", p.LastName)
	require.NotNil(t, p.TravelCard)
	assert.Equal(t, int64(1616006913), p.TravelCard.ID)
	require.NotNil(t, p.TravelCard.Expires)
	assert.Equal(t, int64(1735686000000), p.TravelCard.Expires.Timestamp)
	// 2025-01-01 00:00 in Oslo
	assert.Equal(t, domain.CalendarParts{Year: 2025, Month: 1, Day: 1}, p.TravelCard.Expires.Parts)
	require.Len(t, p.Consents, 1)
	assert.Nil(t, p.Consents[0].Modified)
	assert.True(t, p.HasProvider(ProviderPassword))
	assert.False(t, p.HasProvider(ProviderPhone))
	assert.Nil(t, p.Created)
}

func TestDecodeDocumentEmpty(t *testing.T) {
	doc, err := DecodeDocument(nil)
	require.NoError(t, err)

	p := doc.ToProfile("42", nil)
	assert.Nil(t, p.TravelCard)
	assert.NotNil(t, p.Consents)
	assert.NotNil(t, p.SignInMethods)
}

func TestDecodeDocumentMalformed(t *testing.T) {
	_, err := DecodeDocument(json.RawMessage(`{"firstName": 12}`))
	require.Error(t, err)
}
