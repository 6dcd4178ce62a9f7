// Package engine contains the orchestrator: it turns one shaped alert
// into zero or more dispatched wagers by sweeping every supported
// market on the matched fixture through the correlate, pricing, and
// registry layers.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/betalert/internal/correlate"
	"github.com/alanyoungcy/betalert/internal/domain"
	"github.com/alanyoungcy/betalert/internal/platform/targetbook"
	"github.com/alanyoungcy/betalert/internal/pricing"
	"github.com/alanyoungcy/betalert/internal/registry"
)

// Line grids swept per fixture. The feed alerts on one line, but the
// whole fixture is evaluated; the alert is only the trigger.
var (
	totalLines  = []float64{0.5, 1.5, 2.5, 3.5, 4.5, 5.5}
	spreadLines = []float64{-2.5, -2.0, -1.5, -1.0, 0.5, 1.0, 1.5, 2.0, 2.5}
)

var sweepPeriods = []domain.Period{domain.PeriodFull, domain.PeriodFirstHalf}

// EventFinder resolves a fixture to a target-book event id.
type EventFinder interface {
	FindEvent(ctx context.Context, home, away string, starts int64) (string, error)
}

// Catalog fetches the target book's market catalog for an event.
type Catalog interface {
	EventDetails(ctx context.Context, eventID string) (*targetbook.EventDetails, error)
}

// ReferenceOdds fetches live quotes from the reference book.
type ReferenceOdds interface {
	LiveQuotes(ctx context.Context, eventID string, lineType domain.LineType, points float64, period domain.Period) (domain.QuoteSet, error)
}

// Config carries the orchestrator's thresholds and limits.
type Config struct {
	MinEVPercent  float64 // decisions need an edge strictly above this
	MaxRefOdds    float64 // reference prices above this are treated as mispriced outliers
	Bankroll      float64
	QueueSize     int // dispatch queue depth
	MaxConcurrent int // global in-flight placement ceiling
}

// Orchestrator owns the per-fixture state (outcome registry, ledger,
// processed-fixture set) and drives alert evaluation and dispatch. It
// is the single writer for all of that state.
type Orchestrator struct {
	cfg       Config
	matcher   EventFinder
	catalog   Catalog
	reference ReferenceOdds
	sizer     *pricing.Sizer
	outcomes  *registry.OutcomeRegistry
	ledger    *registry.BetLedger
	dispatch  *dispatcher
	logger    *slog.Logger

	processedGames map[string]bool
	mu             sync.Mutex
}

func New(cfg Config, matcher EventFinder, catalog Catalog, reference ReferenceOdds,
	sizer *pricing.Sizer, outcomes *registry.OutcomeRegistry, ledger *registry.BetLedger,
	accounts []*domain.Account, placer Placer, notifier Notifier, logger *slog.Logger) *Orchestrator {

	o := &Orchestrator{
		cfg:            cfg,
		matcher:        matcher,
		catalog:        catalog,
		reference:      reference,
		sizer:          sizer,
		outcomes:       outcomes,
		ledger:         ledger,
		logger:         logger.With("component", "engine"),
		processedGames: make(map[string]bool),
	}
	o.dispatch = newDispatcher(cfg, accounts, placer, notifier, o.OnDecisionDispatched, o.logger)
	return o
}

// Start launches the dispatch workers; they drain when ctx ends.
func (o *Orchestrator) Start(ctx context.Context) error {
	return o.dispatch.run(ctx)
}

// Process handles one shaped alert end to end: evaluate the fixture,
// then queue every surviving decision for placement. Implements the
// feed's sink. A fixture already processed is a silent no-op.
func (o *Orchestrator) Process(ctx context.Context, alert domain.Alert) error {
	decisions, err := o.Evaluate(ctx, alert)
	if err != nil {
		return err
	}
	for _, d := range decisions {
		o.dispatch.enqueue(d)
	}
	return nil
}

// Evaluate runs the full market sweep for the alert's fixture and
// returns every actionable decision. The fixture is marked processed
// after the sweep no matter how many candidates survived, so repeated
// alerts for the same fixture cannot reprocess it. Per-candidate
// failures (unresolved markets, stale quotes, devig failures) are
// definitive no-bets for this pass, never retried and never fatal.
func (o *Orchestrator) Evaluate(ctx context.Context, alert domain.Alert) ([]domain.Decision, error) {
	if err := alert.Validate(); err != nil {
		o.logger.Info("alert rejected", "error", err)
		return nil, err
	}

	gameKey := alert.GameKey()
	o.mu.Lock()
	if o.processedGames[gameKey] {
		o.mu.Unlock()
		o.logger.Debug("fixture already processed", "game", gameKey)
		return nil, nil
	}
	o.mu.Unlock()

	eventID, err := o.matcher.FindEvent(ctx, alert.Home, alert.Away, alert.Starts)
	if err != nil {
		o.logger.Info("fixture not found on target book",
			"home", alert.Home, "away", alert.Away, "error", err)
		return nil, err
	}
	details, err := o.catalog.EventDetails(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("engine: event details for %s: %w", eventID, err)
	}

	decisions := o.sweep(ctx, &alert, gameKey, details)

	o.mu.Lock()
	o.processedGames[gameKey] = true
	o.mu.Unlock()

	o.logger.Info("fixture sweep complete",
		"home", alert.Home, "away", alert.Away,
		"game", gameKey, "decisions", len(decisions))
	return decisions, nil
}

// candidate is one (line type, outcome, line, period) cell of the
// sweep. refPoints is the line used for the reference-book lookup;
// catalogPoints is the already-remapped line the target catalog is
// searched for. They differ only for spreads.
type candidate struct {
	lineType      domain.LineType
	outcome       domain.Outcome
	refPoints     float64
	catalogPoints float64
	period        domain.Period
}

func (o *Orchestrator) sweep(ctx context.Context, alert *domain.Alert, gameKey string, details *targetbook.EventDetails) []domain.Decision {
	var decisions []domain.Decision
	for _, c := range sweepCandidates() {
		if ctx.Err() != nil {
			break
		}
		d, ok := o.evaluateCandidate(ctx, alert, gameKey, details, c)
		if !ok {
			continue
		}
		decisions = append(decisions, d)
	}
	return decisions
}

// sweepCandidates enumerates every market cell checked per fixture.
func sweepCandidates() []candidate {
	var out []candidate
	for _, period := range sweepPeriods {
		for _, outcome := range []domain.Outcome{domain.OutcomeHome, domain.OutcomeAway, domain.OutcomeDraw} {
			out = append(out, candidate{lineType: domain.LineMoneyLine, outcome: outcome, period: period})
		}
		for _, outcome := range []domain.Outcome{domain.OutcomeOver, domain.OutcomeUnder} {
			for _, line := range totalLines {
				out = append(out, candidate{
					lineType:      domain.LineTotal,
					outcome:       outcome,
					refPoints:     line,
					catalogPoints: line,
					period:        period,
				})
			}
		}
		for _, outcome := range []domain.Outcome{domain.OutcomeHome, domain.OutcomeAway} {
			for _, line := range spreadLines {
				// The reference feed keys spread entries by the home
				// handicap, so an away line flips its sign for the
				// lookup while the catalog keeps the away handicap.
				refPoints := line
				if outcome == domain.OutcomeAway {
					refPoints = -line
				}
				out = append(out, candidate{
					lineType:      domain.LineSpread,
					outcome:       outcome,
					refPoints:     refPoints,
					catalogPoints: correlate.MapAsianHandicap(line),
					period:        period,
				})
			}
			// Zero handicap rides the draw-no-bet market.
			out = append(out, candidate{
				lineType: domain.LineSpread,
				outcome:  outcome,
				period:   period,
			})
		}
	}
	return out
}

func (o *Orchestrator) evaluateCandidate(ctx context.Context, alert *domain.Alert, gameKey string, details *targetbook.EventDetails, c candidate) (domain.Decision, bool) {
	if o.outcomes.ShouldSkip(gameKey, c.lineType, c.outcome) {
		return domain.Decision{}, false
	}

	loc, err := correlate.Locate(details, c.lineType, c.outcome, c.catalogPoints, c.period)
	if err != nil {
		// The book simply does not offer this line.
		return domain.Decision{}, false
	}

	// Quotes are always fetched at evaluation time. The prices that
	// rode along on the alert are stale by definition and never used.
	quotes, err := o.reference.LiveQuotes(ctx, alert.EventID, c.lineType, c.refPoints, c.period)
	if err != nil {
		o.logger.Debug("no live reference quotes",
			"line", c.lineType, "outcome", c.outcome, "points", c.refPoints, "error", err)
		return domain.Decision{}, false
	}

	outcomeKey := referenceOutcomeKey(c.lineType, c.outcome)
	refOdds, ok := quotes[outcomeKey]
	if !ok {
		return domain.Decision{}, false
	}
	if o.cfg.MaxRefOdds > 0 && refOdds > o.cfg.MaxRefOdds {
		o.logger.Debug("reference price above ceiling",
			"line", c.lineType, "outcome", c.outcome, "odds", refOdds)
		return domain.Decision{}, false
	}

	fair, err := pricing.FairPrices(quotes)
	if err != nil {
		return domain.Decision{}, false
	}
	fairProb, ok := fair[outcomeKey]
	if !ok {
		return domain.Decision{}, false
	}

	ev := pricing.EV(loc.Odds, fairProb)
	if ev <= o.cfg.MinEVPercent {
		return domain.Decision{}, false
	}

	stake := o.sizer.Size(fairProb, loc.Odds, o.cfg.Bankroll)
	if stake <= 0 {
		return domain.Decision{}, false
	}

	signature := domain.BetSignature(loc.EventID, loc.MarketID, loc.OutcomeID, loc.Odds, loc.Points, c.period)
	if o.ledger.IsDuplicate(signature) {
		o.logger.Debug("duplicate wager suppressed", "signature", signature)
		return domain.Decision{}, false
	}

	o.outcomes.Record(gameKey, c.lineType, c.outcome)

	d := domain.Decision{
		ID:         uuid.NewString(),
		GameKey:    gameKey,
		Home:       alert.Home,
		Away:       alert.Away,
		MarketType: c.lineType,
		Outcome:    c.outcome,
		Odds:       loc.Odds,
		Points:     loc.Points,
		Period:     c.period,
		EVPercent:  ev,
		Stake:      stake,
		Locator:    loc,
		CreatedAt:  time.Now().UTC(),
	}
	o.logger.Info("decision created",
		"home", d.Home, "away", d.Away,
		"line", d.MarketType, "outcome", d.Outcome, "points", d.Points,
		"period", d.Period, "odds", d.Odds, "ev_percent", d.EVPercent, "stake", d.Stake)
	return d, true
}

// OnDecisionDispatched records the attempted wager in the ledger. Both
// successes and failures count; a failed attempt may still have reached
// the book, and resubmitting it blind is worse than letting it go.
func (o *Orchestrator) OnDecisionDispatched(d domain.Decision, success bool) {
	o.ledger.Record(registry.LedgerEntry{
		Signature: d.Signature(),
		Home:      d.Home,
		Away:      d.Away,
		Odds:      d.Odds,
		Stake:     d.Stake,
		PlacedAt:  time.Now().UTC(),
	})
	if !success {
		o.logger.Warn("placement failed",
			"home", d.Home, "away", d.Away, "line", d.MarketType, "outcome", d.Outcome)
	}
}

// LedgerSize reports how many attempted wagers the ledger holds.
func (o *Orchestrator) LedgerSize() int {
	return o.ledger.Len()
}

// referenceOutcomeKey maps a candidate outcome to its key in the
// reference quote set; totals come back keyed home (over) / away
// (under).
func referenceOutcomeKey(lineType domain.LineType, outcome domain.Outcome) domain.Outcome {
	if lineType != domain.LineTotal {
		return outcome
	}
	if outcome == domain.OutcomeOver {
		return domain.OutcomeHome
	}
	return domain.OutcomeAway
}
