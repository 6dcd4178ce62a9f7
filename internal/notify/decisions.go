package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/alanyoungcy/betalert/internal/domain"
)

// DecisionNotifier adapts the Notifier to the engine's hook: each
// placed wager becomes one formatted notification. Delivery is
// fire-and-forget from the engine's point of view.
type DecisionNotifier struct {
	notifier *Notifier
}

func NewDecisionNotifier(notifier *Notifier) *DecisionNotifier {
	return &DecisionNotifier{notifier: notifier}
}

// DecisionPlaced announces a successfully placed wager.
func (d *DecisionNotifier) DecisionPlaced(ctx context.Context, dec domain.Decision) {
	title := fmt.Sprintf("Wager placed: %s vs %s", dec.Home, dec.Away)
	_ = d.notifier.Notify(ctx, EventWagerPlaced, title, FormatDecision(dec))
}

// FormatDecision renders a decision for humans.
func FormatDecision(d domain.Decision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Market: %s %s", d.MarketType, d.Outcome)
	if d.MarketType != domain.LineMoneyLine {
		fmt.Fprintf(&b, " %g", d.Points)
	}
	if d.Period == domain.PeriodFirstHalf {
		b.WriteString(" (1st half)")
	}
	fmt.Fprintf(&b, "\nOdds: %.2f\nEV: %.2f%%\nStake: %.0f", d.Odds, d.EVPercent, d.Stake)
	return b.String()
}
