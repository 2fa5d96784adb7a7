package escalation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/omnidesk/autoreply-service/internal/domain/models"
)

// Notifier alerts human operators about a new handoff. Notification is best
// effort; failures must not block the escalation itself.
type Notifier interface {
	NotifyHandoff(ctx context.Context, handoff *models.Handoff) error
}

// WebhookNotifierConfig holds the configuration for the webhook notifier.
type WebhookNotifierConfig struct {
	URL        string
	ServiceKey string
	Timeout    time.Duration
}

// WebhookNotifier posts handoff alerts to a configured webhook endpoint.
type WebhookNotifier struct {
	url        string
	serviceKey string
	httpClient *http.Client
}

// NewWebhookNotifier creates a new webhook notifier.
func NewWebhookNotifier(cfg *WebhookNotifierConfig) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &WebhookNotifier{
		url:        cfg.URL,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type handoffAlert struct {
	HandoffID      string `json:"handoffId"`
	ConversationID string `json:"conversationId"`
	TenantID       string `json:"tenantId"`
	AgentID        string `json:"agentId"`
	Reason         string `json:"reason"`
	Urgency        string `json:"urgency"`
	CreatedAt      string `json:"createdAt"`
}

// NotifyHandoff posts the handoff to the webhook.
func (n *WebhookNotifier) NotifyHandoff(ctx context.Context, handoff *models.Handoff) error {
	alert := handoffAlert{
		HandoffID:      handoff.ID,
		ConversationID: handoff.ConversationID,
		TenantID:       handoff.TenantID,
		AgentID:        handoff.FromAgentID,
		Reason:         handoff.Reason,
		Urgency:        string(handoff.Urgency),
		CreatedAt:      handoff.CreatedAt.Format(time.RFC3339),
	}
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal handoff alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.serviceKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.serviceKey)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver handoff alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("handoff webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// NoopNotifier discards alerts. Used when no webhook is configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyHandoff(_ context.Context, _ *models.Handoff) error { return nil }
