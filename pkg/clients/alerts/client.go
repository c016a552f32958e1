// Package alerts delivers low-health notifications to an operator-configured
// webhook endpoint.
package alerts

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/agritrack/internal/config"
)

// HealthAlert describes one record whose health score fell below the
// configured threshold.
type HealthAlert struct {
	UserID   string   `json:"userId"`
	RecordID string   `json:"recordId"`
	Score    int      `json:"score"`
	Issues   []string `json:"issues"`
}

// Client exposes the alert delivery operation used by the record service.
type Client interface {
	SendHealthAlert(ctx context.Context, alert HealthAlert) error
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
}

// NewClient builds a webhook alert client from the provided configuration.
func NewClient(cfg config.AlertsConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.WebhookURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	if cfg.Token != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Token))
	}

	return &WebhookClient{httpClient: restyClient}
}

// apiError represents an error payload returned by the webhook receiver.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendHealthAlert posts the alert payload to the webhook.
func (c *WebhookClient) SendHealthAlert(ctx context.Context, alert HealthAlert) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(alert).
		SetError(apiErr).
		Post("")
	if err != nil {
		return fmt.Errorf("send health alert: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Error.Message
		if message == "" {
			message = resp.Status()
		}
		return fmt.Errorf("health alert rejected: %s (status %d)", message, resp.StatusCode())
	}

	return nil
}
