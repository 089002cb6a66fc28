package notify

import (
	"context"
	"fmt"

	"SigPulse/internal/domain/models"
	apphttp "SigPulse/pkg/http"
)

// Webhook POSTs the structured decision as JSON to an arbitrary URL.
type Webhook struct {
	url     string
	headers map[string]string
	http    *apphttp.Client
}

// NewWebhook creates a webhook channel. Extra headers are sent with
// every request, typically for bearer auth.
func NewWebhook(httpClient *apphttp.Client, url string, headers map[string]string) *Webhook {
	return &Webhook{url: url, headers: headers, http: httpClient}
}

func (w *Webhook) Name() string { return "webhook" }

type webhookPayload struct {
	Text     string           `json:"text"`
	Decision *models.Decision `json:"decision"`
}

func (w *Webhook) Send(ctx context.Context, d *models.Decision, text string) error {
	err := w.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method:  apphttp.MethodPost,
		URL:     w.url,
		Headers: w.headers,
		Body:    webhookPayload{Text: text, Decision: d},
	}, nil)
	if err != nil {
		return fmt.Errorf("webhook send: %w", err)
	}
	return nil
}
