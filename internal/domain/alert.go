// Package domain defines the core types shared across the decision
// engine: alerts, quote sets, market locators, decisions, accounts, and
// the derived identities used for fixture- and wager-level deduplication.
package domain

import (
	"fmt"
	"strings"
)

// LineType identifies the market family of an alert or candidate wager.
type LineType string

const (
	LineMoneyLine LineType = "money_line"
	LineSpread    LineType = "spread"
	LineTotal     LineType = "total"
)

// Period identifies which portion of the fixture a market covers.
type Period string

const (
	PeriodFull      Period = "full"
	PeriodFirstHalf Period = "first_half"
)

// Outcome labels one side of a market. Totals use over/under; every
// other family uses home/away (plus draw for three-way money lines).
type Outcome string

const (
	OutcomeHome  Outcome = "home"
	OutcomeAway  Outcome = "away"
	OutcomeDraw  Outcome = "draw"
	OutcomeOver  Outcome = "over"
	OutcomeUnder Outcome = "under"
)

// Alert is one odds-movement notification from the reference book,
// immutable once shaped. Points is nil for money-line alerts. Its
// lifetime is a single pipeline pass.
type Alert struct {
	Home      string
	Away      string
	LineType  LineType
	Outcome   Outcome
	Points    *float64
	Period    Period
	EventID   string // reference-book event id
	Starts    int64  // fixture kickoff, unix ms; 0 when unknown
	Timestamp int64  // alert emission time, unix ms
}

// Validate checks that the alert carries every field the evaluation
// pipeline requires. Returns ErrInvalidInput describing the first
// missing field.
func (a *Alert) Validate() error {
	switch {
	case strings.TrimSpace(a.Home) == "":
		return fmt.Errorf("%w: missing home team", ErrInvalidInput)
	case strings.TrimSpace(a.Away) == "":
		return fmt.Errorf("%w: missing away team", ErrInvalidInput)
	case a.LineType != LineMoneyLine && a.LineType != LineSpread && a.LineType != LineTotal:
		return fmt.Errorf("%w: unknown line type %q", ErrInvalidInput, a.LineType)
	case a.Outcome == "":
		return fmt.Errorf("%w: missing outcome", ErrInvalidInput)
	case a.EventID == "":
		return fmt.Errorf("%w: missing reference event id", ErrInvalidInput)
	}
	return nil
}

// GameKey returns the derived fixture identity used to suppress
// reprocessing of repeated alerts for the same match. When the kickoff
// time is unknown the key degrades to the team pair alone.
func (a *Alert) GameKey() string {
	if a.Starts > 0 {
		return fmt.Sprintf("%s_%s_%d", a.Home, a.Away, a.Starts)
	}
	return fmt.Sprintf("%s_%s", a.Home, a.Away)
}
