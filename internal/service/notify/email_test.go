package notify

import (
	"context"
	"net/smtp"
	"strings"
	"testing"
)

func TestEmailSend(t *testing.T) {
	e := NewEmail("smtp.test", 587, "user", "pass", "alerts@test", []string{"a@test"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	e.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	if err := e.Send(context.Background(), testDecision(), "body text"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.test:587" {
		t.Fatalf("addr = %q", gotAddr)
	}
	if gotFrom != "alerts@test" || len(gotTo) != 1 || gotTo[0] != "a@test" {
		t.Fatalf("from=%q to=%v", gotFrom, gotTo)
	}
	if !strings.Contains(string(gotMsg), "Subject: STRONG BUY BTC_USDT (1h)") {
		t.Fatalf("message:\n%s", gotMsg)
	}
}

func TestEmailSendRespectsContext(t *testing.T) {
	e := NewEmail("smtp.test", 587, "user", "pass", "alerts@test", []string{"a@test"})
	e.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send called with cancelled context")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Send(ctx, testDecision(), "body"); err == nil {
		t.Fatal("expected context error")
	}
}
