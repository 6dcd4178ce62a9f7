package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunMode runs the full pipeline: alert polling, evaluation, dispatch,
// notifications, and the operator surface.
func (a *App) RunMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting run mode",
		"accounts", len(deps.Accounts))
	return a.runPipeline(ctx, deps)
}

// MonitorMode runs the same goroutine set with dry-run placement only;
// every decision is logged and streamed but no wager reaches the book.
// Keeping the pipeline identical makes monitor a faithful rehearsal of
// run.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")
	return a.runPipeline(ctx, deps)
}

func (a *App) runPipeline(ctx context.Context, deps *Dependencies) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Hub.Run(ctx)
	})
	g.Go(func() error {
		return deps.Orchestrator.Start(ctx)
	})
	g.Go(func() error {
		return deps.Poller.Run(ctx)
	})

	if deps.Server != nil {
		g.Go(func() error {
			return deps.Server.Start()
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return deps.Server.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
