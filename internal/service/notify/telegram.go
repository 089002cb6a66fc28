package notify

import (
	"context"
	"fmt"

	"SigPulse/internal/domain/models"
	apphttp "SigPulse/pkg/http"
)

// Telegram sends alerts through the Bot API sendMessage endpoint.
type Telegram struct {
	apiBase string
	token   string
	chatID  string
	http    *apphttp.Client
}

// NewTelegram creates a Telegram channel.
func NewTelegram(httpClient *apphttp.Client, token, chatID string) *Telegram {
	return &Telegram{
		apiBase: "https://api.telegram.org",
		token:   token,
		chatID:  chatID,
		http:    httpClient,
	}
}

func (t *Telegram) Name() string { return "telegram" }

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) Send(ctx context.Context, _ *models.Decision, text string) error {
	var resp telegramResponse
	err := t.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodPost,
		URL:    fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token),
		Body: map[string]interface{}{
			"chat_id": t.chatID,
			"text":    text,
		},
	}, &resp)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("telegram send: api rejected message: %s", resp.Description)
	}
	return nil
}
