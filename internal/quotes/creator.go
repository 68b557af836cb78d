package quotes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brooklynmaids/sms-concierge/internal/intent"
	"github.com/brooklynmaids/sms-concierge/pkg/logging"
)

const defaultCreatorTimeout = 10 * time.Second

// CreatorConfig controls the quote-creation client.
type CreatorConfig struct {
	// BaseURL is the cleaning site root, e.g. https://brooklynmaids.com.
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Creator pushes quotes into the cleaning site's bot endpoint so the
// office sees SMS quotes alongside web ones. Failures are reported as
// errors; callers treat them as best-effort, the customer-facing reply
// never depends on this call.
type Creator struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewCreator builds a creator with sane defaults.
func NewCreator(cfg CreatorConfig) (*Creator, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("quotes: base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultCreatorTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Creator{baseURL: baseURL, httpClient: httpClient, logger: logger}, nil
}

type createPayload struct {
	PhoneNumber    string             `json:"phoneNumber"`
	Bedrooms       string             `json:"bedrooms"`
	Bathrooms      string             `json:"bathrooms"`
	ServiceType    intent.ServiceType `json:"serviceType"`
	Addons         []intent.Addon     `json:"addons"`
	TotalPrice     int                `json:"totalPrice"`
	ConversationID string             `json:"conversationId"`
	Source         string             `json:"source"`
}

type createResponse struct {
	Success    bool   `json:"success"`
	QuoteCode  string `json:"quoteCode"`
	QuoteID    string `json:"quoteId"`
	BookingURL string `json:"bookingUrl"`
}

// CreateResult carries the identifiers the external system assigned.
type CreateResult struct {
	QuoteCode  string
	QuoteID    string
	BookingURL string
}

// Create registers the quote with the external system and returns its
// assigned code and booking URL.
func (c *Creator) Create(ctx context.Context, q Quote) (CreateResult, error) {
	payload := createPayload{
		PhoneNumber:    q.PhoneNumber,
		Bedrooms:       q.Bedrooms,
		Bathrooms:      q.Bathrooms,
		ServiceType:    q.Service,
		Addons:         q.Addons,
		TotalPrice:     q.TotalPrice,
		ConversationID: q.ConversationID,
		Source:         "sms_bot",
	}
	if payload.Addons == nil {
		payload.Addons = []intent.Addon{}
	}

	var out createResponse
	if err := c.post(ctx, "/api/bot/create-quote", payload, &out); err != nil {
		return CreateResult{}, err
	}
	if !out.Success {
		return CreateResult{}, errors.New("quotes: invalid response from server")
	}

	c.logger.Info("quote created in external system",
		"quote_code", out.QuoteCode,
		"conversation_id", q.ConversationID,
	)
	return CreateResult{QuoteCode: out.QuoteCode, QuoteID: out.QuoteID, BookingURL: out.BookingURL}, nil
}

func (c *Creator) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("quotes: failed to encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("quotes: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("quotes: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("quotes: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("quotes: failed to decode response: %w", err)
	}
	return nil
}
