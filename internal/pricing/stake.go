package pricing

import "math"

// StakeRange bounds stakes for one odds bucket. A zero MaxOdds means
// the bucket is open-ended upward.
type StakeRange struct {
	Name     string
	MinOdds  float64
	MaxOdds  float64
	MinStake float64
	MaxStake float64
}

// Sizer converts a fair probability and an offered price into a final
// monetary stake: fractional Kelly, clamped to the stake range of the
// odds bucket the price falls into, then rounded to a denomination a
// manual bettor would use. Staking is advisory; when pricing data is
// missing the Sizer falls back to DefaultStake instead of erroring so
// it can never block the pipeline.
type Sizer struct {
	Fraction     float64 // fractional Kelly multiplier, e.g. 0.3
	MinStake     float64 // global bounds used when no bucket matches
	MaxStake     float64
	DefaultStake float64
	Buckets      []StakeRange
}

// Kelly returns the full-Kelly stake for the given fair probability,
// decimal odds, and bankroll: bankroll · (b·p − q)/b with b = odds − 1.
// Zero when the edge is non-positive; a candidate that passed the EV
// screen can still fail here on estimation noise, and Kelly's own
// criterion is the final word.
func Kelly(prob, odds, bankroll float64) float64 {
	b := odds - 1
	if b <= 0 {
		return 0
	}
	q := 1 - prob
	numerator := b*prob - q
	if numerator <= 0 {
		return 0
	}
	return bankroll * numerator / b
}

// Size produces the final stake for one candidate wager.
func (s *Sizer) Size(fairProb, odds, bankroll float64) float64 {
	if fairProb <= 0 || fairProb >= 1 || odds <= 1 {
		return RoundHumanlike(s.DefaultStake)
	}

	full := Kelly(fairProb, odds, bankroll)
	if full <= 0 {
		return 0
	}
	stake := full * s.Fraction

	lo, hi := s.limitsFor(odds)
	if stake < lo {
		stake = lo
	}
	if stake > hi {
		stake = hi
	}
	return RoundHumanlike(stake)
}

// limitsFor returns the stake bounds for the bucket containing odds,
// falling back to the global bounds when no bucket matches.
func (s *Sizer) limitsFor(odds float64) (float64, float64) {
	for _, r := range s.Buckets {
		hi := r.MaxOdds
		if hi == 0 {
			hi = math.Inf(1)
		}
		if odds >= r.MinOdds && odds <= hi {
			return r.MinStake, r.MaxStake
		}
	}
	return s.MinStake, s.MaxStake
}

// RoundHumanlike rounds a stake to the denominations a manual bettor
// tends to pick. The exact mapping is part of the engine contract and
// is covered by tests; it must not be approximated.
func RoundHumanlike(stake float64) float64 {
	switch {
	case stake < 50:
		return math.Round(stake/5) * 5
	case stake < 100:
		return math.Round(stake/10) * 10
	case stake < 200:
		return math.Round(stake/25) * 25
	case stake < 1000:
		return math.Round(stake/50) * 50
	case stake < 5000:
		return math.Round(stake/100) * 100
	case stake < 10000:
		return math.Round(stake/250) * 250
	default:
		return math.Round(stake/500) * 500
	}
}
