package domain

import (
	"fmt"
	"time"
)

// QuoteSet maps outcome labels to vig-inclusive decimal odds for one
// market and period on the reference book. A usable set has at least two
// outcomes and every price above 1.0; totals are keyed home (over) /
// away (under) by the reference-book client so the pricing layer sees a
// single convention.
type QuoteSet map[Outcome]float64

// Valid reports whether the set can be devigged at all.
func (q QuoteSet) Valid() bool {
	if len(q) < 2 {
		return false
	}
	for _, odds := range q {
		if odds <= 1.0 {
			return false
		}
	}
	return true
}

// FairPrices maps outcome labels to vig-free probabilities. Produced by
// the pricing layer; probabilities sum to 1 within floating tolerance
// and each lies in (0, 1).
type FairPrices map[Outcome]float64

// MarketLocator addresses one placeable wager on the target book: the
// resolved event, market, and outcome identifiers, the decimal odds
// observed there, and the points value the catalog actually carries
// (which may differ from the requested line after rounding).
type MarketLocator struct {
	EventID   string
	MarketID  string
	OutcomeID string
	Odds      float64
	Points    float64
}

// Decision is a fully evaluated, actionable wager candidate. It is
// created once per surviving market by the orchestrator and never
// mutated afterward; dispatch consumes it exactly once.
type Decision struct {
	ID         string        `json:"id"`
	GameKey    string        `json:"game_key"`
	Home       string        `json:"home"`
	Away       string        `json:"away"`
	MarketType LineType      `json:"market_type"`
	Outcome    Outcome       `json:"outcome"`
	Odds       float64       `json:"odds"`
	Points     float64       `json:"points"`
	Period     Period        `json:"period"`
	EVPercent  float64       `json:"ev_percent"`
	Stake      float64       `json:"stake"`
	Locator    MarketLocator `json:"locator"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Signature derives the wager-level identity used for duplicate
// suppression: event, market, outcome, price, handicap, and period all
// participate, so the same market at a moved price is a distinct wager.
func (d *Decision) Signature() string {
	return BetSignature(d.Locator.EventID, d.Locator.MarketID, d.Locator.OutcomeID, d.Odds, d.Points, d.Period)
}

// BetSignature builds the ledger key for one specific wager instance.
func BetSignature(eventID, marketID, outcomeID string, odds, handicap float64, period Period) string {
	flag := "ft"
	if period == PeriodFirstHalf {
		flag = "fh"
	}
	return fmt.Sprintf("%s_%s_%s_%.2f_%.2f_%s", eventID, marketID, outcomeID, odds, handicap, flag)
}
