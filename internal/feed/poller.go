// Package feed polls the reference book's alert feed, applies the
// ingestion gates, and hands shaped alerts to the decision engine.
package feed

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/alanyoungcy/betalert/internal/domain"
	"github.com/alanyoungcy/betalert/internal/platform/sharpbook"
)

// minAlertAge holds back alerts fresher than this; the reference book
// sometimes revises a notification moments after emitting it.
const minAlertAge = 30 * time.Second

// lookback is how far behind the poll cursor trails, so a missed cycle
// cannot lose alerts.
const lookback = 10 * time.Minute

// Bounds on the dedup sets; oldest entries scroll out.
const (
	maxProcessedEvents    = 1000
	maxProcessedEventLine = 2000
	maxProcessedAlertIDs  = 3000
)

// AlertSource is the slice of the reference-book client the poller
// needs.
type AlertSource interface {
	Alerts(ctx context.Context, since int64) ([]sharpbook.APIAlert, error)
}

// Sink receives shaped alerts that passed every gate.
type Sink interface {
	Process(ctx context.Context, alert domain.Alert) error
}

// Poller drives the ingestion loop: poll, gate, shape, hand off. It
// remembers what it has already forwarded so the feed's replay window
// never causes double processing.
type Poller struct {
	source   AlertSource
	sink     Sink
	interval time.Duration
	logger   *slog.Logger

	processedEvents    *boundedSet // reference event ids
	processedEventLine *boundedSet // event id + line type pairs
	processedAlertIDs  *boundedSet // direct alert ids

	now func() time.Time
}

func NewPoller(source AlertSource, sink Sink, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		source:             source,
		sink:               sink,
		interval:           interval,
		logger:             logger.With("component", "feed"),
		processedEvents:    newBoundedSet(maxProcessedEvents),
		processedEventLine: newBoundedSet(maxProcessedEventLine),
		processedAlertIDs:  newBoundedSet(maxProcessedAlertIDs),
		now:                time.Now,
	}
}

// Run polls until the context is cancelled. In-flight alert handling
// finishes before Run returns; dispatched wagers are never cancelled.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("alert polling started", "interval", p.interval)
	for {
		p.poll(ctx)
		select {
		case <-ctx.Done():
			p.logger.Info("alert polling stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	since := p.now().Add(-lookback).UnixMilli()
	alerts, err := p.source.Alerts(ctx, since)
	if err != nil {
		p.logger.Warn("alert fetch failed", "error", err)
		return
	}
	if len(alerts) == 0 {
		return
	}
	p.logger.Info("alerts retrieved", "count", len(alerts))

	for i := range alerts {
		if ctx.Err() != nil {
			return
		}
		p.handle(ctx, &alerts[i])
	}
}

func (p *Poller) handle(ctx context.Context, raw *sharpbook.APIAlert) {
	if wait := p.ageHold(raw); wait > 0 {
		p.logger.Info("holding fresh alert", "alert_id", raw.ID, "wait", wait)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}

	eventID := raw.EventID.String()
	eventLineKey := eventID + "_" + raw.LineType

	if raw.ID != "" && p.processedAlertIDs.Contains(raw.ID) {
		return
	}
	if p.processedEventLine.Contains(eventLineKey) {
		p.logger.Debug("event and line already processed", "key", eventLineKey)
		return
	}

	if skip, reason := p.gate(raw); skip {
		p.logger.Info("alert gated", "reason", reason, "home", raw.Home, "away", raw.Away)
		p.markProcessed(raw, eventID, eventLineKey)
		return
	}

	alert, ok := shapeAlert(raw)
	if !ok {
		p.logger.Info("alert missing required fields", "alert_id", raw.ID)
		return
	}

	if err := p.sink.Process(ctx, alert); err != nil {
		p.logger.Warn("alert processing failed",
			"home", alert.Home, "away", alert.Away, "error", err)
	}
	p.markProcessed(raw, eventID, eventLineKey)
}

// ageHold returns how long the alert still has to mature, zero when it
// is old enough already.
func (p *Poller) ageHold(raw *sharpbook.APIAlert) time.Duration {
	if raw.Timestamp <= 0 {
		return 0
	}
	age := p.now().Sub(time.UnixMilli(raw.Timestamp))
	if age >= minAlertAge {
		return 0
	}
	return minAlertAge - age
}

// gate applies the content filters: corners markets are out of scope,
// and a match that has already kicked off cannot be pre-matched.
func (p *Poller) gate(raw *sharpbook.APIAlert) (bool, string) {
	if strings.Contains(raw.Home, "(Corners)") || strings.Contains(raw.Away, "(Corners)") {
		return true, "corners market"
	}
	if raw.Starts > 0 && raw.Starts <= p.now().UnixMilli() {
		return true, "match already started"
	}
	return false, ""
}

func (p *Poller) markProcessed(raw *sharpbook.APIAlert, eventID, eventLineKey string) {
	p.processedEvents.Add(eventID)
	p.processedEventLine.Add(eventLineKey)
	if raw.ID != "" {
		p.processedAlertIDs.Add(raw.ID)
	}
}

// shapeAlert converts a raw feed notification into the engine's alert
// type. Returns false when a required field is missing.
func shapeAlert(raw *sharpbook.APIAlert) (domain.Alert, bool) {
	if raw.Home == "" || raw.Away == "" || raw.LineType == "" || raw.Outcome == "" {
		return domain.Alert{}, false
	}

	period := domain.PeriodFull
	if raw.PeriodNumber.String() == "1" {
		period = domain.PeriodFirstHalf
	}

	return domain.Alert{
		Home:      raw.Home,
		Away:      raw.Away,
		LineType:  domain.LineType(strings.ToLower(raw.LineType)),
		Outcome:   domain.Outcome(strings.ToLower(raw.Outcome)),
		Points:    raw.Points,
		Period:    period,
		EventID:   raw.EventID.String(),
		Starts:    raw.Starts,
		Timestamp: raw.Timestamp,
	}, true
}
