// Package pricing implements the numeric core of the decision engine:
// vigorish removal (fair-price estimation), expected-value computation,
// and risk-bounded stake sizing. Everything here is a pure function over
// its inputs; the orchestrator owns all shared state.
package pricing

import (
	"fmt"
	"math"
	"sort"

	"github.com/alanyoungcy/betalert/internal/domain"
)

// Bounds of the power-method exponent search.
const (
	powerLo  = 0.001
	powerHi  = 10.0
	powerTol = 1e-10
)

// Devig strips the bookmaker margin from a set of decimal odds for
// mutually exclusive outcomes using the power method: it finds the
// exponent p minimizing |Σ odds[i]^-p − 1|, takes odds[i]^-p as the
// implied probabilities, and renormalizes them to sum to exactly 1.
//
// Fails with domain.ErrNoSolution when fewer than two odds are given or
// any price is at or below even money; a one-sided or arbitrage-free
// set cannot be devigged. Deterministic for identical inputs.
func Devig(odds []float64) ([]float64, error) {
	if len(odds) < 2 {
		return nil, fmt.Errorf("pricing: devig needs at least 2 outcomes, got %d: %w", len(odds), domain.ErrNoSolution)
	}
	for _, o := range odds {
		if o <= 1.0 {
			return nil, fmt.Errorf("pricing: devig odds must exceed 1.0, got %v: %w", o, domain.ErrNoSolution)
		}
	}

	objective := func(p float64) float64 {
		sum := 0.0
		for _, o := range odds {
			sum += math.Pow(o, -p)
		}
		return math.Abs(sum - 1)
	}
	p := minimizeScalar(objective, powerLo, powerHi, powerTol)

	probs := make([]float64, len(odds))
	total := 0.0
	for i, o := range odds {
		probs[i] = math.Pow(o, -p)
		total += probs[i]
	}
	for i := range probs {
		probs[i] /= total
	}
	return probs, nil
}

// FairPrices devigs a quote set and maps the fair probabilities back
// onto their outcome labels. Labels are processed in sorted order so the
// result is deterministic regardless of map iteration.
func FairPrices(quotes domain.QuoteSet) (domain.FairPrices, error) {
	if !quotes.Valid() {
		return nil, fmt.Errorf("pricing: quote set not devigable: %w", domain.ErrNoSolution)
	}

	labels := make([]domain.Outcome, 0, len(quotes))
	for label := range quotes {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	odds := make([]float64, len(labels))
	for i, label := range labels {
		odds[i] = quotes[label]
	}

	probs, err := Devig(odds)
	if err != nil {
		return nil, err
	}

	fair := make(domain.FairPrices, len(labels))
	for i, label := range labels {
		fair[label] = probs[i]
	}
	return fair, nil
}

// minimizeScalar runs a golden-section search for the minimum of f on
// [lo, hi], shrinking the bracket until it is narrower than tol. The
// devig objective is unimodal on the search interval (the implied
// probability sum is strictly decreasing in the exponent), so the
// bracket always contains the minimum.
func minimizeScalar(f func(float64) float64, lo, hi, tol float64) float64 {
	invPhi := (math.Sqrt(5) - 1) / 2

	a, b := lo, hi
	c := b - (b-a)*invPhi
	d := a + (b-a)*invPhi
	fc, fd := f(c), f(d)

	for b-a > tol {
		if fc < fd {
			b = d
			d, fd = c, fc
			c = b - (b-a)*invPhi
			fc = f(c)
		} else {
			a = c
			c, fc = d, fd
			d = a + (b-a)*invPhi
			fd = f(d)
		}
	}
	return (a + b) / 2
}
