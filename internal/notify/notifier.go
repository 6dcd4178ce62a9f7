// Package notify fans wager events out to the configured channels
// (Telegram, Discord). Operators can restrict which event types reach
// them; placement itself never waits on delivery.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Event types emitted by the engine.
const (
	EventWagerPlaced = "wager_placed"
	EventWagerFailed = "wager_failed"
	EventEngineError = "engine_error"
)

// Sender is one delivery channel.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Notifier dispatches to every registered sender, filtered by event
// type. An empty event list allows everything.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With("component", "notifier"),
	}
}

// Notify delivers the message to every sender if the event type passes
// the filter. A failing sender never blocks the others.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.Debug("event filtered out", "event", event)
		return nil
	}
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.Error("sender failed", "sender", s.Name(), "error", err)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.Debug("notification sent", "sender", s.Name(), "title", title)
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
