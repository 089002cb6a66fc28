package notify

import (
	"fmt"
	"sort"
	"strings"

	"SigPulse/internal/domain/models"
)

// FormatDecision renders the alert text for an emitted decision. The
// same text goes to every text-based channel; structured channels
// publish the decision itself.
func FormatDecision(d *models.Decision, tk *models.Ticker) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s [%s]\n", tierEmoji(d.Tier), d.Tier.Label(), d.Pair)
	fmt.Fprintf(&b, "Timeframe: %s\n", d.Timeframe)
	fmt.Fprintf(&b, "Score: %+.1f\n", d.Score)

	if tk != nil {
		fmt.Fprintf(&b, "Price: %s (24h %+.2f%%)\n", formatPrice(tk.Price), tk.Change24h)
		fmt.Fprintf(&b, "24h range: %s - %s\n", formatPrice(tk.Low24h), formatPrice(tk.High24h))
	}

	if d.Risk != nil {
		fmt.Fprintf(&b, "Entry: %s\n", formatPrice(d.Risk.Entry))
		fmt.Fprintf(&b, "Stop loss: %s\n", formatPrice(d.Risk.StopLoss))
		fmt.Fprintf(&b, "Take profit: %s (R:R %.1f)\n", formatPrice(d.Risk.TakeProfit), d.Risk.RewardRiskRatio())
	}

	if len(d.Reasons) > 0 {
		b.WriteString("Signals:\n")
		for _, r := range d.Reasons {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
	}

	fmt.Fprintf(&b, "Time: %s", d.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))
	return b.String()
}

// FormatAlert renders a market anomaly notice. Details are sorted by
// key so the text is stable.
func FormatAlert(a *models.MarketAlert, tk *models.Ticker) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s [%s]\n", a.Message, a.Timeframe)
	fmt.Fprintf(&b, "Severity: %s\n", a.Severity)

	if tk != nil {
		fmt.Fprintf(&b, "Price: %s (24h %+.2f%%)\n", formatPrice(tk.Price), tk.Change24h)
	}

	keys := make([]string, 0, len(a.Details))
	for k := range a.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %s\n", k, a.Details[k])
	}

	fmt.Fprintf(&b, "Time: %s", a.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))
	return b.String()
}

func tierEmoji(t models.SignalTier) string {
	switch t {
	case models.TierStrongBuy:
		return "\U0001F680" // rocket
	case models.TierBuy:
		return "\U0001F4C8" // chart up
	case models.TierSell:
		return "\U0001F4C9" // chart down
	case models.TierStrongSell:
		return "⚠️" // warning
	default:
		return "⏸️" // pause
	}
}

// formatPrice trims precision for large prices and keeps it for
// sub-dollar pairs.
func formatPrice(p float64) string {
	switch {
	case p >= 1000:
		return fmt.Sprintf("%.2f", p)
	case p >= 1:
		return fmt.Sprintf("%.4f", p)
	default:
		return fmt.Sprintf("%.8f", p)
	}
}
