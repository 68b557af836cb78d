// Package openphone wraps the OpenPhone REST endpoints the concierge
// needs: sending SMS and paging conversation history.
package openphone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/brooklynmaids/sms-concierge/pkg/logging"
)

const defaultBaseURL = "https://api.openphone.com/v1"

// Config controls how the OpenPhone client behaves.
type Config struct {
	BaseURL string
	// APIKey is sent raw in the Authorization header; OpenPhone does
	// not use a Bearer prefix.
	APIKey string
	// UserID attributes outbound sends to an OpenPhone user.
	UserID     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client wraps the OpenPhone REST API.
type Client struct {
	apiKey     string
	userID     string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openphone: API key is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		apiKey:     cfg.APIKey,
		userID:     cfg.UserID,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Message is one SMS as OpenPhone reports it.
type Message struct {
	ID             string    `json:"id"`
	Direction      string    `json:"direction"`
	From           string    `json:"from"`
	To             []string  `json:"to"`
	Body           string    `json:"body"`
	Content        string    `json:"content"`
	ConversationID string    `json:"conversationId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Text returns the message body, falling back to the legacy content
// field some payloads use instead.
func (m Message) Text() string {
	if m.Body != "" {
		return m.Body
	}
	return m.Content
}

// Send delivers one SMS from the given number. OpenPhone acknowledges
// accepted sends with 202; anything else is a failure.
func (c *Client) Send(ctx context.Context, to, from, content string) error {
	if strings.TrimSpace(to) == "" {
		return errors.New("openphone: destination number required")
	}
	body, err := json.Marshal(struct {
		Content        string   `json:"content"`
		From           string   `json:"from"`
		To             []string `json:"to"`
		UserID         string   `json:"userId,omitempty"`
		SetInboxStatus string   `json:"setInboxStatus"`
	}{
		Content:        content,
		From:           from,
		To:             []string{to},
		UserID:         c.userID,
		SetInboxStatus: "done",
	})
	if err != nil {
		return fmt.Errorf("openphone: marshal send body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("openphone: build send request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openphone: send request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("openphone: unexpected send status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}

type messagesResponse struct {
	Data []Message `json:"data"`
}

// ListMessages fetches up to limit prior messages for a conversation,
// returned oldest-first. On any error the list is empty rather than
// failing the caller: generation proceeds without remote context.
func (c *Client) ListMessages(ctx context.Context, conversationID string, limit int) []Message {
	if limit <= 0 {
		limit = 20
	}
	q := url.Values{}
	q.Set("conversationId", conversationID)
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/messages?"+q.Encode(), nil)
	if err != nil {
		c.logger.Error("failed to build history request", "error", err)
		return nil
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("history fetch failed", "error", err, "conversation_id", conversationID)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("history fetch returned unexpected status",
			"status", resp.StatusCode,
			"conversation_id", conversationID,
		)
		return nil
	}

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.Error("failed to decode history response", "error", err)
		return nil
	}

	// OpenPhone pages newest-first; reverse to oldest-first.
	for i, j := 0, len(out.Data)-1; i < j; i, j = i+1, j-1 {
		out.Data[i], out.Data[j] = out.Data[j], out.Data[i]
	}
	return out.Data
}
