package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/alanyoungcy/betalert/internal/domain"
	"github.com/alanyoungcy/betalert/internal/platform/targetbook"
	"github.com/alanyoungcy/betalert/internal/pricing"
	"github.com/alanyoungcy/betalert/internal/registry"
)

type fakeMatcher struct {
	eventID string
	err     error
}

func (f *fakeMatcher) FindEvent(context.Context, string, string, int64) (string, error) {
	return f.eventID, f.err
}

type fakeCatalog struct {
	details *targetbook.EventDetails
}

func (f *fakeCatalog) EventDetails(context.Context, string) (*targetbook.EventDetails, error) {
	if f.details == nil {
		return nil, errors.New("no details")
	}
	return f.details, nil
}

// fakeReference serves quotes for specific (lineType, points, period)
// cells and reports everything else stale. Every requested cell is
// recorded.
type fakeReference struct {
	quotes   map[string]domain.QuoteSet
	requests []string
	calls    int
}

func refKey(lineType domain.LineType, points float64, period domain.Period) string {
	return fmt.Sprintf("%s_%.2f_%s", lineType, points, period)
}

func (f *fakeReference) LiveQuotes(_ context.Context, _ string, lineType domain.LineType, points float64, period domain.Period) (domain.QuoteSet, error) {
	f.calls++
	key := refKey(lineType, points, period)
	f.requests = append(f.requests, key)
	if q, ok := f.quotes[key]; ok {
		return q, nil
	}
	return nil, fmt.Errorf("no line: %w", domain.ErrDataStale)
}

type fakePlacer struct {
	placed []domain.Decision
	ok     bool
}

func (f *fakePlacer) Place(_ context.Context, _ *domain.Account, d domain.Decision) (bool, error) {
	f.placed = append(f.placed, d)
	return f.ok, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSizer() *pricing.Sizer {
	return &pricing.Sizer{
		Fraction:     0.3,
		MinStake:     500,
		MaxStake:     15000,
		DefaultStake: 1000,
		Buckets: []pricing.StakeRange{
			{Name: "low_odds", MinOdds: 0, MaxOdds: 1.99, MinStake: 6000, MaxStake: 12000},
			{Name: "medium_odds", MinOdds: 2.0, MaxOdds: 3.0, MinStake: 3000, MaxStake: 7000},
		},
	}
}

// totalOnlyCatalog offers a single full-match total market.
func totalOnlyCatalog() *targetbook.EventDetails {
	return &targetbook.EventDetails{
		EventID: "tb9",
		Home:    "A",
		Away:    "B",
		Groups: []targetbook.MarketGroup{
			{
				Name: "Main",
				Markets: []targetbook.Market{
					{
						ID:   "TGOU",
						Name: "Goals - Under/Over",
						Outcomes: []targetbook.MarketOutcome{
							{ID: "OVER", Name: "Over 2.5", Value: 2.2},
							{ID: "UNDER", Name: "Under 2.5", Value: 1.7},
						},
					},
				},
			},
		},
	}
}

func newTestOrchestrator(catalog *targetbook.EventDetails, ref *fakeReference) *Orchestrator {
	cfg := Config{
		MinEVPercent: 5.0,
		MaxRefOdds:   3.0,
		Bankroll:     100000,
	}
	return New(cfg,
		&fakeMatcher{eventID: "tb9"},
		&fakeCatalog{details: catalog},
		ref,
		testSizer(),
		registry.NewOutcomeRegistry(),
		registry.NewBetLedger(100),
		nil, &fakePlacer{ok: true}, nil,
		testLogger())
}

func totalAlert() domain.Alert {
	points := 2.5
	return domain.Alert{
		Home:     "A",
		Away:     "B",
		LineType: domain.LineTotal,
		Outcome:  domain.OutcomeOver,
		Points:   &points,
		Period:   domain.PeriodFull,
		EventID:  "ref1",
	}
}

func TestEvaluateTotalScenario(t *testing.T) {
	// Even reference quotes devig to 0.5 each; the target's 2.2 on the
	// over carries a 10% edge.
	ref := &fakeReference{quotes: map[string]domain.QuoteSet{
		refKey(domain.LineTotal, 2.5, domain.PeriodFull): {
			domain.OutcomeHome: 2.0,
			domain.OutcomeAway: 2.0,
		},
	}}
	o := newTestOrchestrator(totalOnlyCatalog(), ref)

	decisions, err := o.Evaluate(context.Background(), totalAlert())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(decisions) != 1 {
		t.Fatalf("got %d decisions, want 1", len(decisions))
	}

	d := decisions[0]
	if d.MarketType != domain.LineTotal || d.Outcome != domain.OutcomeOver {
		t.Errorf("decision targets %s/%s, want total/over", d.MarketType, d.Outcome)
	}
	if d.Odds != 2.2 || d.Points != 2.5 {
		t.Errorf("decision priced at %v on %v, want 2.2 on 2.5", d.Odds, d.Points)
	}
	if math.Abs(d.EVPercent-10.0) > 1e-6 {
		t.Errorf("EV = %v, want 10.0", d.EVPercent)
	}
	// Kelly 0.3-fractional lands below the medium bucket floor of 3000.
	if d.Stake != 3000 {
		t.Errorf("stake = %v, want 3000", d.Stake)
	}
	if d.Locator.MarketID != "TGOU" || d.Locator.OutcomeID != "OVER" {
		t.Errorf("locator = %+v", d.Locator)
	}
	if d.ID == "" {
		t.Error("decision needs an id")
	}
}

// spreadOnlyCatalog offers a single away handicap line.
func spreadOnlyCatalog() *targetbook.EventDetails {
	return &targetbook.EventDetails{
		EventID: "tb9",
		Home:    "A",
		Away:    "B",
		Groups: []targetbook.MarketGroup{
			{
				Name: "Main",
				Markets: []targetbook.Market{
					{
						ID:   "HC",
						Name: "Handicap",
						Outcomes: []targetbook.MarketOutcome{
							{ID: "AWAY", Name: "B (+1)", Value: 2.2},
						},
					},
				},
			},
		},
	}
}

func TestEvaluateAwaySpreadPricesInvertedReferenceLine(t *testing.T) {
	// Spread quotes on the reference book are keyed by the home
	// handicap: the fair probability of the away side of "B (+1)" lives
	// in the hdp=-1 entry. Quotes are served there and nowhere else.
	ref := &fakeReference{quotes: map[string]domain.QuoteSet{
		refKey(domain.LineSpread, -1.0, domain.PeriodFull): {
			domain.OutcomeHome: 2.0,
			domain.OutcomeAway: 2.0,
		},
	}}
	o := newTestOrchestrator(spreadOnlyCatalog(), ref)

	points := 1.0
	alert := domain.Alert{
		Home:     "A",
		Away:     "B",
		LineType: domain.LineSpread,
		Outcome:  domain.OutcomeAway,
		Points:   &points,
		Period:   domain.PeriodFull,
		EventID:  "ref1",
	}

	decisions, err := o.Evaluate(context.Background(), alert)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(decisions) != 1 {
		t.Fatalf("got %d decisions, want 1", len(decisions))
	}

	d := decisions[0]
	if d.MarketType != domain.LineSpread || d.Outcome != domain.OutcomeAway {
		t.Errorf("decision targets %s/%s, want spread/away", d.MarketType, d.Outcome)
	}
	if d.Points != 1.0 || d.Odds != 2.2 {
		t.Errorf("decision priced at %v on %v, want 2.2 on +1", d.Odds, d.Points)
	}
	if math.Abs(d.EVPercent-10.0) > 1e-6 {
		t.Errorf("EV = %v, want 10.0 from the hdp=-1 fair price", d.EVPercent)
	}
	if d.Locator.MarketID != "HC" || d.Locator.OutcomeID != "AWAY" {
		t.Errorf("locator = %+v", d.Locator)
	}

	inverted := refKey(domain.LineSpread, -1.0, domain.PeriodFull)
	found := false
	for _, req := range ref.requests {
		if req == inverted {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("reference never asked for the inverted away line %s; requests: %v", inverted, ref.requests)
	}
}

func TestEvaluateIdempotentPerFixture(t *testing.T) {
	ref := &fakeReference{quotes: map[string]domain.QuoteSet{
		refKey(domain.LineTotal, 2.5, domain.PeriodFull): {
			domain.OutcomeHome: 2.0,
			domain.OutcomeAway: 2.0,
		},
	}}
	o := newTestOrchestrator(totalOnlyCatalog(), ref)

	first, err := o.Evaluate(context.Background(), totalAlert())
	if err != nil {
		t.Fatalf("first Evaluate: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("first pass got %d decisions, want 1", len(first))
	}

	second, err := o.Evaluate(context.Background(), totalAlert())
	if err != nil {
		t.Fatalf("second Evaluate: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second pass got %d decisions, want 0", len(second))
	}
}

func TestEvaluateRegistryBlocksOppositeSide(t *testing.T) {
	// Both sides of the total clear the EV bar: under at 2.3 against a
	// fair 0.5 is +15%. The registry must keep only the first side.
	catalog := totalOnlyCatalog()
	catalog.Groups[0].Markets[0].Outcomes[1].Value = 2.3
	ref := &fakeReference{quotes: map[string]domain.QuoteSet{
		refKey(domain.LineTotal, 2.5, domain.PeriodFull): {
			domain.OutcomeHome: 2.0,
			domain.OutcomeAway: 2.0,
		},
	}}
	o := newTestOrchestrator(catalog, ref)

	decisions, err := o.Evaluate(context.Background(), totalAlert())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(decisions) != 1 {
		t.Fatalf("got %d decisions, want 1", len(decisions))
	}
	if decisions[0].Outcome != domain.OutcomeOver {
		t.Errorf("kept %s, want the first-seen over side", decisions[0].Outcome)
	}
}

func TestEvaluateMaxRefOddsCeiling(t *testing.T) {
	ref := &fakeReference{quotes: map[string]domain.QuoteSet{
		refKey(domain.LineTotal, 2.5, domain.PeriodFull): {
			domain.OutcomeHome: 3.5, // above the 3.0 ceiling
			domain.OutcomeAway: 1.4,
		},
	}}
	o := newTestOrchestrator(totalOnlyCatalog(), ref)

	decisions, err := o.Evaluate(context.Background(), totalAlert())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	for _, d := range decisions {
		if d.Outcome == domain.OutcomeOver {
			t.Errorf("outlier reference price produced a decision: %+v", d)
		}
	}
}

func TestEvaluateLedgerSuppressesAttemptedWager(t *testing.T) {
	ref := &fakeReference{quotes: map[string]domain.QuoteSet{
		refKey(domain.LineTotal, 2.5, domain.PeriodFull): {
			domain.OutcomeHome: 2.0,
			domain.OutcomeAway: 2.0,
		},
	}}
	o := newTestOrchestrator(totalOnlyCatalog(), ref)

	decisions, err := o.Evaluate(context.Background(), totalAlert())
	if err != nil || len(decisions) != 1 {
		t.Fatalf("Evaluate = %d decisions, %v", len(decisions), err)
	}

	// The wager reaches the attempted stage and is recorded, then the
	// same fixture comes back under a different game key.
	o.OnDecisionDispatched(decisions[0], false)

	alert := totalAlert()
	alert.Starts = 1234567890000 // changes the GameKey, bypassing fixture dedup
	again, err := o.Evaluate(context.Background(), alert)
	if err != nil {
		t.Fatalf("second Evaluate: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("attempted wager was re-created: %+v", again)
	}
}

func TestEvaluateInvalidAlert(t *testing.T) {
	o := newTestOrchestrator(totalOnlyCatalog(), &fakeReference{})
	_, err := o.Evaluate(context.Background(), domain.Alert{Home: "A"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestEvaluateUnmatchedFixture(t *testing.T) {
	cfg := Config{MinEVPercent: 5, MaxRefOdds: 3, Bankroll: 1000}
	o := New(cfg,
		&fakeMatcher{err: fmt.Errorf("nothing scored: %w", domain.ErrMarketUnresolved)},
		&fakeCatalog{}, &fakeReference{}, testSizer(),
		registry.NewOutcomeRegistry(), registry.NewBetLedger(10),
		nil, &fakePlacer{}, nil, testLogger())

	_, err := o.Evaluate(context.Background(), totalAlert())
	if !errors.Is(err, domain.ErrMarketUnresolved) {
		t.Errorf("err = %v, want ErrMarketUnresolved", err)
	}
}
