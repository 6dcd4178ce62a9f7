package registry

import (
	"testing"

	"github.com/alanyoungcy/betalert/internal/domain"
)

func TestShouldSkipCrossFamily(t *testing.T) {
	r := NewOutcomeRegistry()
	r.Record("g1", domain.LineSpread, domain.OutcomeHome)

	if !r.ShouldSkip("g1", domain.LineMoneyLine, domain.OutcomeAway) {
		t.Error("money_line away should be skipped after spread home")
	}
	if !r.ShouldSkip("g1", domain.LineSpread, domain.OutcomeAway) {
		t.Error("spread away should be skipped after spread home")
	}
	if r.ShouldSkip("g1", domain.LineSpread, domain.OutcomeHome) {
		t.Error("same side must never be skipped by the registry")
	}
	if r.ShouldSkip("g1", domain.LineMoneyLine, domain.OutcomeHome) {
		t.Error("money_line home should be allowed after spread home")
	}
}

func TestShouldSkipTotals(t *testing.T) {
	r := NewOutcomeRegistry()
	r.Record("g1", domain.LineTotal, domain.OutcomeOver)

	if !r.ShouldSkip("g1", domain.LineTotal, domain.OutcomeUnder) {
		t.Error("under should be skipped after over")
	}
	if r.ShouldSkip("g1", domain.LineTotal, domain.OutcomeOver) {
		t.Error("over should remain allowed after over")
	}
	// Totals never constrain the home/away family.
	if r.ShouldSkip("g1", domain.LineMoneyLine, domain.OutcomeAway) {
		t.Error("totals must not block money_line outcomes")
	}
}

func TestShouldSkipDrawOutsideFamily(t *testing.T) {
	r := NewOutcomeRegistry()
	r.Record("g1", domain.LineMoneyLine, domain.OutcomeHome)

	if r.ShouldSkip("g1", domain.LineMoneyLine, domain.OutcomeDraw) {
		t.Error("draw sits outside the home/away family")
	}
}

func TestRegistryIsolatesFixtures(t *testing.T) {
	r := NewOutcomeRegistry()
	r.Record("g1", domain.LineMoneyLine, domain.OutcomeHome)

	if r.ShouldSkip("g2", domain.LineMoneyLine, domain.OutcomeAway) {
		t.Error("fixtures must not share backed outcomes")
	}
	if r.Backed("g1") != 1 || r.Backed("g2") != 0 {
		t.Errorf("backed counts = %d/%d, want 1/0", r.Backed("g1"), r.Backed("g2"))
	}
}
