package notify

import (
	"context"
	"fmt"
	"strings"

	"SigPulse/internal/domain/models"
	apphttp "SigPulse/pkg/http"
)

// ServerChan pushes alerts to WeChat via the ServerChan relay.
type ServerChan struct {
	apiBase string
	sendKey string
	http    *apphttp.Client
}

// NewServerChan creates a ServerChan channel.
func NewServerChan(httpClient *apphttp.Client, sendKey string) *ServerChan {
	return &ServerChan{
		apiBase: "https://sctapi.ftqq.com",
		sendKey: sendKey,
		http:    httpClient,
	}
}

func (s *ServerChan) Name() string { return "serverchan" }

type serverChanResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *ServerChan) Send(ctx context.Context, d *models.Decision, text string) error {
	title := "SigPulse alert"
	if d != nil {
		title = fmt.Sprintf("%s %s", d.Tier.Label(), d.Pair)
	}
	var resp serverChanResponse
	err := s.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method:  apphttp.MethodPost,
		URL:     fmt.Sprintf("%s/%s.send", s.apiBase, s.sendKey),
		Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body: map[string]string{
			"title": title,
			// ServerChan renders markdown; newlines need doubling.
			"desp": strings.ReplaceAll(text, "\n", "\n\n"),
		},
	}, &resp)
	if err != nil {
		return fmt.Errorf("serverchan send: %w", err)
	}
	if resp.Code != 0 {
		return fmt.Errorf("serverchan send: code %d: %s", resp.Code, resp.Message)
	}
	return nil
}
