package models

import "time"

// AlertType names a market anomaly class.
type AlertType string

const (
	AlertTrend     AlertType = "trend"
	AlertWaterfall AlertType = "waterfall"
	AlertPinBar    AlertType = "pin_bar"
)

// AlertSeverity grades how urgent an alert is.
type AlertSeverity string

const (
	SeverityWarning AlertSeverity = "warning"
	SeverityDanger  AlertSeverity = "danger"
)

// MarketAlert describes a detected market anomaly on one timeframe.
// Direction is +1 for upward moves and -1 for downward moves.
type MarketAlert struct {
	Type      AlertType
	Direction int
	Severity  AlertSeverity
	Message   string
	Details   map[string]string
	Timeframe string
	Timestamp time.Time
}

// Key identifies the alert class for cooldown tracking.
func (a *MarketAlert) Key() string {
	dir := "up"
	if a.Direction < 0 {
		dir = "down"
	}
	return string(a.Type) + "_" + dir + "_" + a.Timeframe
}
