package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"SigPulse/internal/domain/models"
	applogger "SigPulse/pkg/logger"
)

type fakeChannel struct {
	name  string
	fail  bool
	sent  []string
	calls int
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Send(_ context.Context, _ *models.Decision, text string) error {
	f.calls++
	if f.fail {
		return errors.New("transport down")
	}
	f.sent = append(f.sent, text)
	return nil
}

type fakeQueue struct {
	published []interface{}
	types     []string
	err       error
}

func (f *fakeQueue) PublishMessage(_ context.Context, msgType string, payload interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.types = append(f.types, msgType)
	f.published = append(f.published, payload)
	return nil
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testDecision() *models.Decision {
	return &models.Decision{
		Pair:      "BTC_USDT",
		Timeframe: "1h",
		Tier:      models.TierStrongBuy,
		Score:     72.4,
		Risk:      &models.RiskLevels{Entry: 42000, StopLoss: 41000, TakeProfit: 43500},
		Reasons:   []string{"elevated participation confirms move"},
		Emitted:   true,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDispatchFansOutToAllChannels(t *testing.T) {
	a := &fakeChannel{name: "a"}
	b := &fakeChannel{name: "b"}
	d := NewDispatcher(testLogger(t), nil, a, b)

	if err := d.Dispatch(context.Background(), testDecision(), nil); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Fatalf("calls = %d/%d, want 1/1", a.calls, b.calls)
	}
	if a.sent[0] != b.sent[0] {
		t.Fatal("channels received different text")
	}
}

func TestDispatchPartialFailureSucceedsAndQueuesRetry(t *testing.T) {
	ok := &fakeChannel{name: "ok"}
	bad := &fakeChannel{name: "bad", fail: true}
	q := &fakeQueue{}
	d := NewDispatcher(testLogger(t), q, ok, bad)

	if err := d.Dispatch(context.Background(), testDecision(), nil); err != nil {
		t.Fatalf("partial failure should not error: %v", err)
	}
	if len(q.published) != 1 {
		t.Fatalf("queued %d retries, want 1", len(q.published))
	}
	if q.types[0] != RetryMessageType {
		t.Fatalf("retry type = %q", q.types[0])
	}
	payload, okCast := q.published[0].(RetryPayload)
	if !okCast || payload.Channel != "bad" {
		t.Fatalf("retry payload = %+v", q.published[0])
	}
}

func TestDispatchTotalFailureErrors(t *testing.T) {
	a := &fakeChannel{name: "a", fail: true}
	b := &fakeChannel{name: "b", fail: true}
	d := NewDispatcher(testLogger(t), &fakeQueue{}, a, b)

	if err := d.Dispatch(context.Background(), testDecision(), nil); err == nil {
		t.Fatal("all channels failed but Dispatch returned nil")
	}
}

func TestDispatchNoChannelsIsNoop(t *testing.T) {
	d := NewDispatcher(testLogger(t), nil)
	if err := d.Dispatch(context.Background(), testDecision(), nil); err != nil {
		t.Fatalf("Dispatch with no channels: %v", err)
	}
}

func TestRetryJobRedelivers(t *testing.T) {
	ch := &fakeChannel{name: "telegram"}
	job := NewRetryJob(testLogger(t), ch)

	payload := RetryPayload{Channel: "telegram", Text: "hello", Decision: testDecision()}
	if err := job.Handle(context.Background(), payload); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if ch.calls != 1 || ch.sent[0] != "hello" {
		t.Fatalf("channel state = %+v", ch)
	}
}

func TestRetryJobDropsUnknownChannel(t *testing.T) {
	job := NewRetryJob(testLogger(t))
	payload := RetryPayload{Channel: "gone", Text: "hello"}
	if err := job.Handle(context.Background(), payload); err != nil {
		t.Fatalf("unknown channel should be dropped, got %v", err)
	}
}

func TestFormatDecisionContents(t *testing.T) {
	d := testDecision()
	tk := &models.Ticker{Price: 42000, Change24h: 3.1, High24h: 42500, Low24h: 40800}
	text := FormatDecision(d, tk)

	for _, want := range []string{
		"STRONG BUY", "BTC_USDT", "1h", "+72.4",
		"Entry: 42000.00", "Stop loss: 41000.00", "Take profit: 43500.00",
		"R:R 1.5", "elevated participation confirms move",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("formatted text missing %q:\n%s", want, text)
		}
	}
}

func TestFormatDecisionWithoutTickerOrRisk(t *testing.T) {
	d := testDecision()
	d.Risk = nil
	text := FormatDecision(d, nil)
	if strings.Contains(text, "Entry") || strings.Contains(text, "24h range") {
		t.Fatalf("unexpected sections in:\n%s", text)
	}
}

func TestEmailMessageHeaders(t *testing.T) {
	e := NewEmail("smtp.test", 587, "user", "pass", "alerts@test", []string{"a@test", "b@test"})
	msg := string(e.buildMessage("STRONG BUY BTC_USDT (1h)", "body text"))
	for _, want := range []string{
		"From: alerts@test\r\n",
		"To: a@test, b@test\r\n",
		"Subject: STRONG BUY BTC_USDT (1h)\r\n",
		"\r\n\r\nbody text",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func testAlert() *models.MarketAlert {
	return &models.MarketAlert{
		Type:      models.AlertWaterfall,
		Direction: -1,
		Severity:  models.SeverityDanger,
		Message:   "🌊 Waterfall drop",
		Details:   map[string]string{"window_change": "-5.00%", "vol_ratio": "2.7x"},
		Timeframe: "15m",
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDispatchAlertSkipsKafkaChannel(t *testing.T) {
	text := &fakeChannel{name: "telegram"}
	bus := &fakeChannel{name: "kafka"}
	d := NewDispatcher(testLogger(t), nil, text, bus)

	if err := d.DispatchAlert(context.Background(), testAlert(), nil); err != nil {
		t.Fatalf("DispatchAlert: %v", err)
	}
	if text.calls != 1 {
		t.Fatalf("text channel calls = %d, want 1", text.calls)
	}
	if bus.calls != 0 {
		t.Fatalf("kafka channel calls = %d, want 0", bus.calls)
	}
}

func TestDispatchAlertAllTextChannelsFail(t *testing.T) {
	bad := &fakeChannel{name: "webhook", fail: true}
	bus := &fakeChannel{name: "kafka"}
	d := NewDispatcher(testLogger(t), nil, bad, bus)

	if err := d.DispatchAlert(context.Background(), testAlert(), nil); err == nil {
		t.Fatal("expected error when every text channel fails")
	}
}

func TestDispatchAlertFailureQueuesRetry(t *testing.T) {
	bad := &fakeChannel{name: "webhook", fail: true}
	good := &fakeChannel{name: "telegram"}
	q := &fakeQueue{}
	d := NewDispatcher(testLogger(t), q, bad, good)

	if err := d.DispatchAlert(context.Background(), testAlert(), nil); err != nil {
		t.Fatalf("DispatchAlert: %v", err)
	}
	if len(q.types) != 1 || q.types[0] != RetryMessageType {
		t.Fatalf("queued types = %v, want one %s", q.types, RetryMessageType)
	}
	p, ok := q.published[0].(RetryPayload)
	if !ok {
		t.Fatalf("payload type %T", q.published[0])
	}
	if p.Channel != "webhook" || p.Decision != nil {
		t.Fatalf("payload = %+v, want webhook retry without decision", p)
	}
}

func TestFormatAlertContents(t *testing.T) {
	tk := &models.Ticker{Price: 42000, Change24h: -4.2}
	text := FormatAlert(testAlert(), tk)

	for _, want := range []string{
		"Waterfall drop", "[15m]", "Severity: danger",
		"Price: 42000.00 (24h -4.20%)",
		"vol_ratio: 2.7x", "window_change: -5.00%",
		"2024-05-01 12:00:00 UTC",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("alert text missing %q:\n%s", want, text)
		}
	}
}
