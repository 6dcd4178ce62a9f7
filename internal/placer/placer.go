// Package placer holds the placement collaborators. The real placement
// path is the browser automation that logs into the target book's web
// UI; it lives outside this repo and is reached through the same
// interface the dry-run placer implements here.
package placer

import (
	"context"
	"log/slog"

	"github.com/alanyoungcy/betalert/internal/domain"
)

// DryRun logs each wager instead of placing it. Used in monitor mode
// and anywhere the automation collaborator is not wired up.
type DryRun struct {
	logger *slog.Logger
}

func NewDryRun(logger *slog.Logger) *DryRun {
	return &DryRun{logger: logger.With("component", "placer")}
}

// Place reports the wager as placed without touching the book.
func (p *DryRun) Place(_ context.Context, account *domain.Account, d domain.Decision) (bool, error) {
	p.logger.Info("dry-run placement",
		"account", account.Name,
		"home", d.Home, "away", d.Away,
		"line", d.MarketType, "outcome", d.Outcome, "points", d.Points,
		"period", d.Period, "odds", d.Odds, "stake", d.Stake,
		"market_id", d.Locator.MarketID, "outcome_id", d.Locator.OutcomeID)
	return true, nil
}
