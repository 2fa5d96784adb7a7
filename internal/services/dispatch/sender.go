// Package dispatch hands outbound messages to the channel-adapter layer.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	domainerrors "github.com/omnidesk/autoreply-service/internal/domain/errors"
	"github.com/omnidesk/autoreply-service/internal/domain/models"
)

// Sender dispatches an outbound message to the customer's channel.
type Sender interface {
	// Send dispatches the message. A non-nil error means the message was not
	// delivered; the caller owns retry policy.
	Send(ctx context.Context, userID string, msg *models.OutboundMessage) error
}

// ClientConfig holds the configuration for the channel-adapter client.
type ClientConfig struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
}

// HTTPClient implements Sender against the channel-adapter HTTP API.
type HTTPClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewHTTPClient creates a new channel-adapter client.
func NewHTTPClient(cfg *ClientConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type sendRequest struct {
	UserID  string                  `json:"userId"`
	Message *models.OutboundMessage `json:"message"`
}

type sendResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Send dispatches the message through the channel adapter.
func (c *HTTPClient) Send(ctx context.Context, userID string, msg *models.OutboundMessage) error {
	body, err := json.Marshal(sendRequest{UserID: userID, Message: msg})
	if err != nil {
		return fmt.Errorf("failed to marshal send request: %w", err)
	}

	url := c.baseURL + "/api/v1/messages/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.serviceKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainerrors.NewDispatchFailureError(msg.Platform, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domainerrors.NewDispatchFailureError(msg.Platform,
			fmt.Errorf("channel adapter returned status %d", resp.StatusCode))
	}

	var parsed sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domainerrors.NewDispatchFailureError(msg.Platform,
			fmt.Errorf("failed to decode send response: %w", err))
	}
	if !parsed.Success {
		return domainerrors.NewDispatchFailureError(msg.Platform,
			fmt.Errorf("channel adapter rejected message: %s", parsed.Error))
	}
	return nil
}
