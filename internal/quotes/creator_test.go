package quotes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brooklynmaids/sms-concierge/internal/intent"
)

func TestCreatorCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/bot/create-quote", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "+15551234567", payload["phoneNumber"])
		assert.Equal(t, "2", payload["bedrooms"])
		assert.Equal(t, "1", payload["bathrooms"])
		assert.Equal(t, "sms_bot", payload["source"])
		assert.Equal(t, float64(240), payload["totalPrice"])

		json.NewEncoder(w).Encode(map[string]any{
			"success":    true,
			"quoteCode":  "Q-123",
			"quoteId":    "42",
			"bookingUrl": "https://brooklynmaids.com/booking?quote=Q-123",
		})
	}))
	defer srv.Close()

	c, err := NewCreator(CreatorConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	res, err := c.Create(context.Background(), Quote{
		ConversationID: "conv-1",
		PhoneNumber:    "+15551234567",
		Bedrooms:       "2",
		Bathrooms:      "1",
		Service:        intent.ServiceStandard,
		Addons:         []intent.Addon{intent.AddonInsideFridge},
		TotalPrice:     240,
	})
	require.NoError(t, err)
	assert.Equal(t, "Q-123", res.QuoteCode)
	assert.Equal(t, "https://brooklynmaids.com/booking?quote=Q-123", res.BookingURL)
}

func TestCreatorCreateServerRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false})
	}))
	defer srv.Close()

	c, err := NewCreator(CreatorConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Create(context.Background(), Quote{ConversationID: "conv-1"})
	assert.Error(t, err)
}

func TestCreatorCreateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewCreator(CreatorConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Create(context.Background(), Quote{ConversationID: "conv-1"})
	assert.ErrorContains(t, err, "unexpected status 500")
}

func TestNewCreatorRequiresBaseURL(t *testing.T) {
	_, err := NewCreator(CreatorConfig{})
	assert.Error(t, err)
}
