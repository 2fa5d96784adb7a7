// Package knowledge wraps the external vector-similarity search capability.
// The search implementation itself lives in a separate service; this package
// only fetches ranked context snippets over its HTTP API.
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/omnidesk/autoreply-service/internal/domain/models"
)

// SearchRequest describes one retrieval call.
type SearchRequest struct {
	Query           string  `json:"query"`
	TenantID        string  `json:"tenantId"`
	AgentID         string  `json:"agentId"`
	UserID          string  `json:"userId"`
	Limit           int     `json:"limit"`
	SimilarityFloor float64 `json:"similarityFloor"`
}

// Searcher retrieves ranked knowledge snippets for a query.
type Searcher interface {
	// Search returns up to Limit snippets at or above the similarity floor,
	// best match first.
	Search(ctx context.Context, req SearchRequest) ([]models.KnowledgeContext, error)
}

// ClientConfig holds the configuration for the knowledge service client.
type ClientConfig struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
}

// HTTPClient implements Searcher against the knowledge service HTTP API.
type HTTPClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewHTTPClient creates a new knowledge service client.
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

type searchResponse struct {
	Results []models.KnowledgeContext `json:"results"`
}

// Search calls the knowledge service and returns the matching snippets.
func (c *HTTPClient) Search(ctx context.Context, req SearchRequest) ([]models.KnowledgeContext, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	url := c.baseURL + "/api/v1/knowledge/search"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.serviceKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.serviceKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("knowledge search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("knowledge service returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	// The service is expected to honor the floor, but enforce it here too.
	results := make([]models.KnowledgeContext, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.Similarity >= req.SimilarityFloor {
			results = append(results, r)
		}
	}
	return results, nil
}
