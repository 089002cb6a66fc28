package notify

import (
	"context"
	"fmt"
	"strings"

	applogger "SigPulse/pkg/logger"
	"SigPulse/pkg/queue"
)

// LogAlertMessageType identifies aggregated error-log batches on the queue.
const LogAlertMessageType = "log.errors"

// LogAlertJob forwards aggregated error logs to the notification
// channels so repeated runtime failures reach an operator.
type LogAlertJob struct {
	channels []Channel
	log      *applogger.Logger
}

var _ queue.Job = (*LogAlertJob)(nil)

func NewLogAlertJob(log *applogger.Logger, channels ...Channel) *LogAlertJob {
	return &LogAlertJob{channels: channels, log: log}
}

func (j *LogAlertJob) Name() string { return "log-error-alert" }
func (j *LogAlertJob) Type() string { return LogAlertMessageType }

func (j *LogAlertJob) Handle(ctx context.Context, payload interface{}) error {
	entries, err := queue.ParsePayload[[]applogger.AggregatedLogEntry](payload)
	if err != nil {
		return fmt.Errorf("parse log alert payload: %w", err)
	}
	if len(*entries) == 0 || len(j.channels) == 0 {
		return nil
	}

	text := formatLogAlert(*entries)
	var failed []string
	for _, ch := range j.channels {
		if err := ch.Send(ctx, nil, text); err != nil {
			failed = append(failed, ch.Name())
			j.log.Warn("log alert delivery failed",
				applogger.String("channel", ch.Name()),
				applogger.Error(err))
		}
	}
	if len(failed) == len(j.channels) {
		return fmt.Errorf("log alert failed on all channels: %s", strings.Join(failed, ", "))
	}
	return nil
}

func formatLogAlert(entries []applogger.AggregatedLogEntry) string {
	var b strings.Builder
	b.WriteString("⚠️ Error report\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "\n[%s] %s (x%d)\n", strings.ToUpper(e.Level), e.Message, e.Count)
		fmt.Fprintf(&b, "first %s, last %s\n",
			e.FirstSeen.UTC().Format("15:04:05"), e.LastSeen.UTC().Format("15:04:05"))
	}
	return b.String()
}
