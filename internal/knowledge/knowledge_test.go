package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrandByName(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPhone string
		wantOK    bool
	}{
		{"exact", "Brooklyn Maids", "(347) 750-4380", true},
		{"case insensitive", "mesa maids", "(480) 520-0202", true},
		{"padded", "  St. Louis Maids  ", "(314) 310-0970", true},
		{"unknown falls back to default", "Queens Maids", DefaultBrand.Phone, false},
		{"empty falls back to default", "", DefaultBrand.Phone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := BrandByName(tt.query)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPhone, b.Phone)
		})
	}
}

func TestPromptBuilderSystem(t *testing.T) {
	b := NewPromptBuilder("Sarah", "Brooklyn Maids", "https://brooklynmaids.com/booking")
	prompt := b.System()

	assert.Contains(t, prompt, "You are Sarah, a friendly person who works for Brooklyn Maids.")
	assert.Contains(t, prompt, "Booking: https://brooklynmaids.com/booking")
	assert.Contains(t, prompt, "DO NOT include the booking link (https://brooklynmaids.com/booking)")
	assert.Contains(t, prompt, "Studio=$70")
	assert.Contains(t, prompt, "Weekly 10% off, Bi-weekly 5% off, Monthly $10 off")
	assert.NotContains(t, prompt, "%s", "all placeholders must be interpolated")
	assert.NotContains(t, prompt, "%!", "no malformed format verbs")
}

func TestPromptBuilderDefaults(t *testing.T) {
	b := NewPromptBuilder("", "", "")
	prompt := b.System()

	assert.True(t, strings.HasPrefix(prompt, "You are Sarah, a friendly person who works for Brooklyn Maids."))
	assert.Contains(t, prompt, DefaultBrand.BookingURL)
}

func TestPromptBuilderUnknownBrandBookingURL(t *testing.T) {
	b := NewPromptBuilder("Sarah", "Queens Maids", "")
	assert.Contains(t, b.System(), DefaultBrand.BookingURL)
}
