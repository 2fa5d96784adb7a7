// Package directory provides the agent directory client for resolving agent
// profiles (personality, tier, knowledge sources) from the platform service.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/omnidesk/autoreply-service/internal/domain/models"
)

// Service defines the interface for agent profile resolution.
type Service interface {
	// GetProfile retrieves the profile for an agent. Returns (nil, nil) if the
	// agent is unknown.
	GetProfile(ctx context.Context, tenantID, agentID string) (*models.AgentProfile, error)
}

// ClientConfig holds the configuration for the directory client.
type ClientConfig struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
}

// HTTPClient implements Service against the platform service HTTP API.
type HTTPClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewHTTPClient creates a new directory client.
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

// GetProfile retrieves the agent profile.
func (c *HTTPClient) GetProfile(ctx context.Context, tenantID, agentID string) (*models.AgentProfile, error) {
	url := fmt.Sprintf("%s/api/v1/tenants/%s/agents/%s", c.baseURL, tenantID, agentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}
	if c.serviceKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory service returned status %d", resp.StatusCode)
	}

	var profile models.AgentProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode agent profile: %w", err)
	}
	return &profile, nil
}
