package engine

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/alanyoungcy/betalert/internal/domain"
)

// Placer submits one wager through an account. Implementations wrap the
// browser automation collaborator; the engine only sees success or
// failure.
type Placer interface {
	Place(ctx context.Context, account *domain.Account, d domain.Decision) (bool, error)
}

// Notifier announces placed wagers to the outside world.
type Notifier interface {
	DecisionPlaced(ctx context.Context, d domain.Decision)
}

// dispatcher decouples evaluation from placement: a bounded queue feeds
// workers capped by a global in-flight ceiling, and each worker must
// additionally win a slot on a specific account before placing.
type dispatcher struct {
	queue     chan domain.Decision
	accounts  []*domain.Account
	placer    Placer
	notifier  Notifier
	onAttempt func(domain.Decision, bool)
	sem       *semaphore.Weighted
	logger    *slog.Logger
}

func newDispatcher(cfg Config, accounts []*domain.Account, placer Placer, notifier Notifier,
	onAttempt func(domain.Decision, bool), logger *slog.Logger) *dispatcher {

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	return &dispatcher{
		queue:     make(chan domain.Decision, queueSize),
		accounts:  accounts,
		placer:    placer,
		notifier:  notifier,
		onAttempt: onAttempt,
		sem:       semaphore.NewWeighted(int64(maxConcurrent)),
		logger:    logger.With("component", "dispatch"),
	}
}

// enqueue hands a decision to the workers. A full queue drops the
// decision; evaluation must never block on placement.
func (d *dispatcher) enqueue(dec domain.Decision) {
	select {
	case d.queue <- dec:
	default:
		d.logger.Warn("dispatch queue full, decision dropped",
			"home", dec.Home, "away", dec.Away, "line", dec.MarketType, "outcome", dec.Outcome)
	}
}

// run consumes the queue until ctx ends, then waits for in-flight
// placements to finish. Already-dispatched wagers are never cancelled.
func (d *dispatcher) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for {
		select {
		case <-ctx.Done():
			err := g.Wait()
			if err != nil {
				return err
			}
			return ctx.Err()
		case dec := <-d.queue:
			if err := d.sem.Acquire(ctx, 1); err != nil {
				_ = g.Wait()
				return err
			}
			g.Go(func() error {
				defer d.sem.Release(1)
				d.place(ctx, dec)
				return nil
			})
		}
	}
}

func (d *dispatcher) place(ctx context.Context, dec domain.Decision) {
	account := d.pickAccount()
	if account == nil {
		// No account has a free slot. Dropping is the policy; the
		// feed will alert again if the edge persists.
		d.logger.Warn("no account available, decision dropped",
			"home", dec.Home, "away", dec.Away, "line", dec.MarketType,
			"error", domain.ErrCapacityExceeded)
		return
	}
	defer account.Release()

	success, err := d.placer.Place(ctx, account, dec)
	if err != nil {
		d.logger.Error("placement error",
			"account", account.Name, "home", dec.Home, "away", dec.Away, "error", err)
		success = false
	}
	d.onAttempt(dec, success)

	if success {
		d.logger.Info("wager placed",
			"account", account.Name, "home", dec.Home, "away", dec.Away,
			"line", dec.MarketType, "outcome", dec.Outcome,
			"odds", dec.Odds, "stake", dec.Stake)
		if d.notifier != nil {
			d.notifier.DecisionPlaced(ctx, dec)
		}
	}
}

// pickAccount reserves a slot on the first active account below its
// concurrency cap.
func (d *dispatcher) pickAccount() *domain.Account {
	for _, a := range d.accounts {
		if a.TryAcquire() {
			return a
		}
	}
	return nil
}
