package booking

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
)

const defaultClientTimeout = 15 * time.Second

// CreateRequest is the payload for the cleaning site's bot booking
// endpoint.
type CreateRequest struct {
	PhoneNumber string             `json:"phoneNumber"`
	Email       string             `json:"email"`
	Bedrooms    string             `json:"bedrooms"`
	Bathrooms   string             `json:"bathrooms"`
	Service     intent.ServiceType `json:"serviceType"`
	Addons      []intent.Addon     `json:"addons"`
	TotalPrice  int                `json:"totalPrice"`
	ServiceDate string             `json:"serviceDate"`
	ServiceTime string             `json:"serviceTime"`
	Address     string             `json:"address"`
	Source      string             `json:"source"`
}

// CreateResult carries the external system's booking identifier.
type CreateResult struct {
	BookingID string
}

// ClientConfig controls the booking client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client posts bookings to the cleaning site.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client with sane defaults.
func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("booking: base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultClientTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

type createResponse struct {
	Success   bool   `json:"success"`
	BookingID string `json:"bookingId"`
}

// Create registers the booking with the external system.
func (c *Client) Create(ctx context.Context, req CreateRequest) (CreateResult, error) {
	req.Source = "sms_bot_direct"
	if req.Addons == nil {
		req.Addons = []intent.Addon{}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return CreateResult{}, fmt.Errorf("booking: failed to encode payload: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/bot/create-booking", bytes.NewReader(body))
	if err != nil {
		return CreateResult{}, fmt.Errorf("booking: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return CreateResult{}, fmt.Errorf("booking: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return CreateResult{}, fmt.Errorf("booking: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return CreateResult{}, fmt.Errorf("booking: failed to decode response: %w", err)
	}
	if !out.Success {
		return CreateResult{}, errors.New("booking: server reported failure")
	}
	return CreateResult{BookingID: out.BookingID}, nil
}
