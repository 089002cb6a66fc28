package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"SigPulse/internal/domain/models"
)

// Email delivers alerts over SMTP with plain auth.
type Email struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string

	// send is swapped in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmail creates an SMTP channel.
func NewEmail(host string, port int, username, password, from string, to []string) *Email {
	return &Email{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
		send:     smtp.SendMail,
	}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Send(ctx context.Context, d *models.Decision, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := "SigPulse alert"
	if d != nil {
		subject = fmt.Sprintf("%s %s (%s)", d.Tier.Label(), d.Pair, d.Timeframe)
	}
	msg := e.buildMessage(subject, text)
	auth := smtp.PlainAuth("", e.username, e.password, e.host)
	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	if err := e.send(addr, auth, e.from, e.to, msg); err != nil {
		return fmt.Errorf("email send: %w", err)
	}
	return nil
}

func (e *Email) buildMessage(subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(e.to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
