package notify

import (
	"context"
	"fmt"
	"strings"

	"SigPulse/internal/domain/models"
	drepo "SigPulse/internal/domain/repository"
	applogger "SigPulse/pkg/logger"
	"SigPulse/pkg/queue"
)

// Channel delivers one alert over one transport.
type Channel interface {
	Name() string
	Send(ctx context.Context, d *models.Decision, text string) error
}

// RetryMessageType identifies queued redelivery payloads.
const RetryMessageType = "notify.delivery.retry"

// RetryPayload carries everything a worker needs to re-attempt one
// channel delivery.
type RetryPayload struct {
	Channel  string           `json:"channel"`
	Text     string           `json:"text"`
	Decision *models.Decision `json:"decision"`
}

// Dispatcher fans an emitted decision out to every configured channel.
// A channel failing does not block the others; failed deliveries are
// handed to the retry queue when one is attached.
type Dispatcher struct {
	channels []Channel
	queue    queue.QueueService
	log      *applogger.Logger
}

var _ drepo.Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher over the given channels. The
// queue is optional; without it failed deliveries are only logged.
func NewDispatcher(log *applogger.Logger, q queue.QueueService, channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels, queue: q, log: log}
}

// Dispatch formats the decision once and sends it everywhere. It
// returns an error only when every channel failed; partial delivery
// counts as success.
func (d *Dispatcher) Dispatch(ctx context.Context, dec *models.Decision, tk *models.Ticker) error {
	if len(d.channels) == 0 {
		return nil
	}
	text := FormatDecision(dec, tk)

	var failed []string
	for _, ch := range d.channels {
		if err := ch.Send(ctx, dec, text); err != nil {
			failed = append(failed, ch.Name())
			d.log.Error("notification delivery failed",
				applogger.String("channel", ch.Name()),
				applogger.String("pair", dec.Pair),
				applogger.Error(err))
			d.enqueueRetry(ctx, ch.Name(), text, dec)
		}
	}

	if len(failed) == len(d.channels) {
		return fmt.Errorf("all notification channels failed: %s", strings.Join(failed, ", "))
	}
	return nil
}

// DispatchAlert sends a market anomaly notice over the text channels.
// The Kafka channel is skipped: its topic carries decisions, keyed by
// pair, and an alert has neither.
func (d *Dispatcher) DispatchAlert(ctx context.Context, a *models.MarketAlert, tk *models.Ticker) error {
	text := FormatAlert(a, tk)

	var attempted, failed []string
	for _, ch := range d.channels {
		if ch.Name() == "kafka" {
			continue
		}
		attempted = append(attempted, ch.Name())
		if err := ch.Send(ctx, nil, text); err != nil {
			failed = append(failed, ch.Name())
			d.log.Error("alert delivery failed",
				applogger.String("channel", ch.Name()),
				applogger.String("alert", a.Key()),
				applogger.Error(err))
			d.enqueueRetry(ctx, ch.Name(), text, nil)
		}
	}

	if len(attempted) > 0 && len(failed) == len(attempted) {
		return fmt.Errorf("all alert channels failed: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (d *Dispatcher) enqueueRetry(ctx context.Context, channel, text string, dec *models.Decision) {
	if d.queue == nil {
		return
	}
	payload := RetryPayload{Channel: channel, Text: text, Decision: dec}
	if err := d.queue.PublishMessage(ctx, RetryMessageType, payload); err != nil {
		d.log.Error("retry enqueue failed",
			applogger.String("channel", channel),
			applogger.Error(err))
	}
}

// RetryJob re-attempts a single failed channel delivery off the queue.
type RetryJob struct {
	channels map[string]Channel
	log      *applogger.Logger
}

var _ queue.Job = (*RetryJob)(nil)

// NewRetryJob builds the redelivery worker over the same channel set
// the dispatcher uses.
func NewRetryJob(log *applogger.Logger, channels ...Channel) *RetryJob {
	byName := make(map[string]Channel, len(channels))
	for _, ch := range channels {
		byName[ch.Name()] = ch
	}
	return &RetryJob{channels: byName, log: log}
}

func (j *RetryJob) Name() string { return "notify-delivery-retry" }
func (j *RetryJob) Type() string { return RetryMessageType }

func (j *RetryJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RetryPayload](payload)
	if err != nil {
		return fmt.Errorf("parse retry payload: %w", err)
	}
	ch, ok := j.channels[p.Channel]
	if !ok {
		// Channel was removed from configuration; drop the retry.
		j.log.Warn("retry for unknown channel dropped", applogger.String("channel", p.Channel))
		return nil
	}
	return ch.Send(ctx, p.Decision, p.Text)
}
