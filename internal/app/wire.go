package app

import (
	"context"
	"log/slog"

	"github.com/alanyoungcy/betalert/internal/config"
	"github.com/alanyoungcy/betalert/internal/correlate"
	"github.com/alanyoungcy/betalert/internal/domain"
	"github.com/alanyoungcy/betalert/internal/engine"
	"github.com/alanyoungcy/betalert/internal/feed"
	"github.com/alanyoungcy/betalert/internal/notify"
	"github.com/alanyoungcy/betalert/internal/placer"
	"github.com/alanyoungcy/betalert/internal/platform/sharpbook"
	"github.com/alanyoungcy/betalert/internal/platform/targetbook"
	"github.com/alanyoungcy/betalert/internal/pricing"
	"github.com/alanyoungcy/betalert/internal/registry"
	"github.com/alanyoungcy/betalert/internal/server"
	"github.com/alanyoungcy/betalert/internal/server/ws"
)

// Dependencies bundles everything the modes need to run.
type Dependencies struct {
	Sharpbook    *sharpbook.Client
	Orchestrator *engine.Orchestrator
	Poller       *feed.Poller
	Hub          *ws.Hub
	Server       *server.Server
	Accounts     []*domain.Account
	Notifier     *notify.Notifier
}

// Wire constructs the full dependency graph from configuration. The
// returned cleanup function releases resources on shutdown; today every
// dependency is in-process so it is a no-op placeholder.
func Wire(cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	cleanup := func() {}

	sharp := sharpbook.NewClient(cfg.Sharpbook.AlertHost, cfg.Sharpbook.OddsHost, cfg.Sharpbook.UserID)
	target := targetbook.NewClient(cfg.Targetbook.BaseURL)
	matcher := correlate.NewMatcher(target, logger)

	sizer := &pricing.Sizer{
		Fraction:     cfg.Bets.KellyFraction,
		MinStake:     cfg.Bets.MinStake,
		MaxStake:     cfg.Bets.MaxStake,
		DefaultStake: cfg.Bets.DefaultStake,
		Buckets:      stakeBuckets(cfg.Bets.StakeRanges),
	}

	outcomes := registry.NewOutcomeRegistry()
	ledger := registry.NewBetLedger(cfg.Engine.LedgerSize)
	accounts := buildAccounts(cfg.Accounts)

	// Notifications: engine hook + operator channels.
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	notifier := notify.NewNotifier(senders, cfg.Notify.Events, logger)

	hub := ws.NewHub(logger)

	engineNotifier := multiNotifier{
		notify.NewDecisionNotifier(notifier),
		server.NewDecisionStream(hub),
	}

	// The real placement collaborator is the external automation; until
	// it is attached, every mode places through the dry-run logger.
	place := placer.NewDryRun(logger)

	orch := engine.New(
		engine.Config{
			MinEVPercent:  cfg.Bets.MinEV,
			MaxRefOdds:    cfg.Bets.MaxRefOdds,
			Bankroll:      cfg.Bets.Bankroll,
			QueueSize:     cfg.Engine.QueueSize,
			MaxConcurrent: cfg.Engine.MaxConcurrent,
		},
		matcher, target, sharp, sizer, outcomes, ledger, accounts, place, engineNotifier, logger,
	)

	poller := feed.NewPoller(sharp, orch, cfg.PollInterval(), logger)

	var srv *server.Server
	if cfg.Server.Enabled {
		srv = server.NewServer(server.Config{Port: cfg.Server.Port}, cfg.Mode, orch, accounts, hub, logger)
	}

	return &Dependencies{
		Sharpbook:    sharp,
		Orchestrator: orch,
		Poller:       poller,
		Hub:          hub,
		Server:       srv,
		Accounts:     accounts,
		Notifier:     notifier,
	}, cleanup, nil
}

func buildAccounts(configs []config.AccountConfig) []*domain.Account {
	accounts := make([]*domain.Account, 0, len(configs))
	for _, c := range configs {
		accounts = append(accounts, &domain.Account{
			Name:          c.Name,
			Username:      c.Username,
			Password:      c.Password,
			Proxy:         c.Proxy,
			MaxConcurrent: c.MaxConcurrent,
			MinBalance:    c.MinBalance,
			Active:        c.Active,
		})
	}
	return accounts
}

func stakeBuckets(ranges []config.StakeRange) []pricing.StakeRange {
	buckets := make([]pricing.StakeRange, 0, len(ranges))
	for _, r := range ranges {
		buckets = append(buckets, pricing.StakeRange{
			Name:     r.Name,
			MinOdds:  r.MinOdds,
			MaxOdds:  r.MaxOdds,
			MinStake: r.MinStake,
			MaxStake: r.MaxStake,
		})
	}
	return buckets
}

// multiNotifier fans one placed decision out to every hook.
type multiNotifier []engine.Notifier

func (m multiNotifier) DecisionPlaced(ctx context.Context, d domain.Decision) {
	for _, n := range m {
		n.DecisionPlaced(ctx, d)
	}
}
