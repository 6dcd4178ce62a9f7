package pricing

// EVUnavailable is the sentinel edge returned when no fair price can be
// established for an outcome. Large and negative so it can never clear
// a minimum-EV threshold; callers treat it as "do not bet" rather than
// an error.
const EVUnavailable = -100.0

// EV returns the expected profit per unit stake, as a percentage, of
// backing offeredOdds when the outcome's fair probability is fairProb:
//
//	EV% = ((offeredOdds − 1)·p − (1 − p)) · 100
//
// which is the standard (offeredOdds·p − 1)·100. A fairProb outside
// (0, 1) yields EVUnavailable.
func EV(offeredOdds, fairProb float64) float64 {
	if fairProb <= 0 || fairProb >= 1 {
		return EVUnavailable
	}
	return ((offeredOdds-1)*fairProb - (1 - fairProb)) * 100
}
