// Package registry holds the orchestrator's process-lifetime state:
// which market outcomes have been backed per fixture, and which exact
// wagers have already been attempted. Both stores are safe for
// concurrent use and are never persisted.
package registry

import (
	"fmt"
	"sync"

	"github.com/alanyoungcy/betalert/internal/domain"
)

// OutcomeRegistry tracks, per fixture, which mutually exclusive market
// outcomes have already been backed, so the engine never ends up on
// both sides of the same coin. Devigged probabilities from one quote
// can pass the EV bar on both sides through estimation noise; once one
// side is recorded, the opposite side is refused for the lifetime of
// the fixture. Money-line and spread share one home/away family, so a
// spread on the home side also blocks a money-line on the away side.
// Tokens are append-only; a fixture's set never shrinks.
type OutcomeRegistry struct {
	backed map[string]map[string]bool // game key -> backed tokens
	mu     sync.Mutex
}

func NewOutcomeRegistry() *OutcomeRegistry {
	return &OutcomeRegistry{backed: make(map[string]map[string]bool)}
}

// ShouldSkip reports whether backing (lineType, outcome) would take the
// opposite side of something already backed for this fixture. Backing
// the same side again is allowed here; the ledger handles identical
// repeats.
func (r *OutcomeRegistry) ShouldSkip(gameKey string, lineType domain.LineType, outcome domain.Outcome) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens := r.backed[gameKey]
	if len(tokens) == 0 {
		return false
	}

	switch lineType {
	case domain.LineTotal:
		opposite := domain.OutcomeUnder
		if outcome == domain.OutcomeUnder {
			opposite = domain.OutcomeOver
		}
		return tokens[outcomeToken(domain.LineTotal, opposite)]
	case domain.LineMoneyLine, domain.LineSpread:
		var opposite domain.Outcome
		switch outcome {
		case domain.OutcomeHome:
			opposite = domain.OutcomeAway
		case domain.OutcomeAway:
			opposite = domain.OutcomeHome
		default:
			// Draw sits outside the home/away exclusivity family.
			return false
		}
		return tokens[outcomeToken(domain.LineMoneyLine, opposite)] ||
			tokens[outcomeToken(domain.LineSpread, opposite)]
	}
	return false
}

// Record marks (lineType, outcome) as backed for the fixture.
func (r *OutcomeRegistry) Record(gameKey string, lineType domain.LineType, outcome domain.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens, ok := r.backed[gameKey]
	if !ok {
		tokens = make(map[string]bool)
		r.backed[gameKey] = tokens
	}
	tokens[outcomeToken(lineType, outcome)] = true
}

// Backed returns how many outcome tokens the fixture has accumulated.
func (r *OutcomeRegistry) Backed(gameKey string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.backed[gameKey])
}

func outcomeToken(lineType domain.LineType, outcome domain.Outcome) string {
	return fmt.Sprintf("%s_%s", lineType, outcome)
}
