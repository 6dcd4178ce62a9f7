package correlate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/alanyoungcy/betalert/internal/domain"
	"github.com/alanyoungcy/betalert/internal/platform/targetbook"
)

// Catalog market ids. The 1X2 and totals markets have distinct
// first-half ids; handicap and draw-no-bet reuse the same id and are
// distinguished by market group.
const (
	marketMoneyLine     = "1x2"
	marketMoneyLineHalf = "FH1X2"
	marketTotal         = "TGOU"
	marketTotalHalf     = "HTGOU_LS"
	marketHandicap      = "HC"
	marketDrawNoBet     = "DNB"
)

// Outcome ids within a catalog market.
const (
	outcomeIDHome  = "HOME"
	outcomeIDAway  = "AWAY"
	outcomeIDDraw  = "DRAW"
	outcomeIDOver  = "OVER"
	outcomeIDUnder = "UNDER"
)

// pointsTolerance absorbs float noise when comparing catalog lines.
const pointsTolerance = 0.01

// handicapPattern pulls the line out of outcome names like "Home (-1)"
// or "Away [+2]".
var handicapPattern = regexp.MustCompile(`[(\[]([+-]?\d+\.?\d*)[)\]]`)

// MapAsianHandicap converts a half-point Asian handicap to the whole-
// number European line the target book quotes: -2.5 becomes -2, -0.5
// becomes 0, +0.5 becomes +1, +1.5 becomes +2. Whole-number handicaps
// pass through unchanged.
func MapAsianHandicap(points float64) float64 {
	frac := math.Abs(points - math.Trunc(points))
	if math.Abs(frac-0.5) < pointsTolerance {
		return math.Trunc(points + 0.5)
	}
	return math.Trunc(points)
}

// Locate resolves one (line type, outcome, points, period) tuple
// against an event's catalog entry, returning the concrete market and
// outcome ids plus the live odds. For spreads the points are the
// already-mapped European handicap; a zero handicap redirects to the
// draw-no-bet market. Totals and spreads match their line exactly,
// never a neighboring one. Fails with domain.ErrMarketUnresolved when
// the book does not offer the line.
func Locate(details *targetbook.EventDetails, lineType domain.LineType, outcome domain.Outcome, points float64, period domain.Period) (domain.MarketLocator, error) {
	var (
		loc domain.MarketLocator
		ok  bool
	)
	switch lineType {
	case domain.LineMoneyLine:
		loc, ok = locateMoneyLine(details, outcome, period)
	case domain.LineTotal:
		loc, ok = locateTotal(details, outcome, points, period)
	case domain.LineSpread:
		if math.Abs(points) < pointsTolerance {
			loc, ok = locateByID(details, marketDrawNoBet, sideOutcomeID(outcome), 0, period)
		} else {
			loc, ok = locateHandicap(details, outcome, points, period)
		}
	default:
		return domain.MarketLocator{}, fmt.Errorf("correlate: unsupported line type %q: %w", lineType, domain.ErrMarketUnresolved)
	}
	if !ok {
		return domain.MarketLocator{}, fmt.Errorf("correlate: no %s %s line %v (%s) for event %s: %w",
			lineType, outcome, points, period, details.EventID, domain.ErrMarketUnresolved)
	}
	loc.EventID = details.EventID
	return loc, nil
}

func locateMoneyLine(details *targetbook.EventDetails, outcome domain.Outcome, period domain.Period) (domain.MarketLocator, bool) {
	marketID := marketMoneyLine
	if period == domain.PeriodFirstHalf {
		marketID = marketMoneyLineHalf
	}
	var outcomeID string
	switch outcome {
	case domain.OutcomeHome:
		outcomeID = outcomeIDHome
	case domain.OutcomeAway:
		outcomeID = outcomeIDAway
	case domain.OutcomeDraw:
		outcomeID = outcomeIDDraw
	default:
		return domain.MarketLocator{}, false
	}
	return locateByID(details, marketID, outcomeID, 0, period)
}

func locateTotal(details *targetbook.EventDetails, outcome domain.Outcome, points float64, period domain.Period) (domain.MarketLocator, bool) {
	marketID := marketTotal
	if period == domain.PeriodFirstHalf {
		marketID = marketTotalHalf
	}
	var outcomeID string
	switch outcome {
	case domain.OutcomeOver:
		outcomeID = outcomeIDOver
	case domain.OutcomeUnder:
		outcomeID = outcomeIDUnder
	default:
		return domain.MarketLocator{}, false
	}

	// Reference totals can come on quarter lines; the catalog quotes
	// half-goal lines only.
	target := math.Round(points*2) / 2

	for _, market := range marketsByID(details, marketID, period) {
		for _, o := range market.Outcomes {
			if o.ID != outcomeID {
				continue
			}
			line, err := totalLineFromName(o.Name)
			if err != nil {
				continue
			}
			if math.Abs(line-target) < pointsTolerance {
				return domain.MarketLocator{
					MarketID:  market.ID,
					OutcomeID: o.ID,
					Odds:      o.Value,
					Points:    line,
				}, true
			}
		}
	}
	return domain.MarketLocator{}, false
}

func locateHandicap(details *targetbook.EventDetails, outcome domain.Outcome, points float64, period domain.Period) (domain.MarketLocator, bool) {
	outcomeID := sideOutcomeID(outcome)
	if outcomeID == "" {
		return domain.MarketLocator{}, false
	}
	for _, market := range marketsByID(details, marketHandicap, period) {
		for _, o := range market.Outcomes {
			if o.ID != outcomeID {
				continue
			}
			m := handicapPattern.FindStringSubmatch(o.Name)
			if m == nil {
				continue
			}
			line, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			if math.Abs(line-points) < pointsTolerance {
				return domain.MarketLocator{
					MarketID:  market.ID,
					OutcomeID: o.ID,
					Odds:      o.Value,
					Points:    line,
				}, true
			}
		}
	}
	return domain.MarketLocator{}, false
}

// locateByID finds the first outcome with the given id in the given
// market, for markets whose outcomes carry no line.
func locateByID(details *targetbook.EventDetails, marketID, outcomeID string, points float64, period domain.Period) (domain.MarketLocator, bool) {
	if outcomeID == "" {
		return domain.MarketLocator{}, false
	}
	for _, market := range marketsByID(details, marketID, period) {
		for _, o := range market.Outcomes {
			if o.ID == outcomeID {
				return domain.MarketLocator{
					MarketID:  market.ID,
					OutcomeID: o.ID,
					Odds:      o.Value,
					Points:    points,
				}, true
			}
		}
	}
	return domain.MarketLocator{}, false
}

func sideOutcomeID(outcome domain.Outcome) string {
	switch outcome {
	case domain.OutcomeHome:
		return outcomeIDHome
	case domain.OutcomeAway:
		return outcomeIDAway
	}
	return ""
}

// marketsByID returns the markets with the given id inside groups
// belonging to the requested period. Handicap and draw-no-bet reuse one
// market id across periods, so group membership is what tells a
// first-half line from a full-match one.
func marketsByID(details *targetbook.EventDetails, id string, period domain.Period) []targetbook.Market {
	var out []targetbook.Market
	for _, group := range details.Groups {
		if firstHalfGroup(group.Name) != (period == domain.PeriodFirstHalf) {
			continue
		}
		for _, market := range group.Markets {
			if market.ID == id {
				out = append(out, market)
			}
		}
	}
	return out
}

func firstHalfGroup(name string) bool {
	s := strings.ToLower(name)
	return strings.Contains(s, "1st half") || strings.Contains(s, "first half")
}

// totalLineFromName parses the goal line from names like "Over 2.5".
func totalLineFromName(name string) (float64, error) {
	s := strings.ToLower(name)
	switch {
	case strings.Contains(s, "over"):
		s = strings.TrimSpace(strings.ReplaceAll(s, "over", ""))
	case strings.Contains(s, "under"):
		s = strings.TrimSpace(strings.ReplaceAll(s, "under", ""))
	default:
		return 0, fmt.Errorf("correlate: no total line in %q", name)
	}
	return strconv.ParseFloat(s, 64)
}
