// Package correlate maps fixtures and lines named by the reference book
// onto the target book's catalog: fuzzy event matching by team names and
// kickoff time, and market resolution from (line type, outcome, points,
// period) tuples to concrete market and outcome ids.
package correlate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/alanyoungcy/betalert/internal/domain"
	"github.com/alanyoungcy/betalert/internal/platform/targetbook"
)

// Searcher is the slice of the target-book client the matcher needs.
type Searcher interface {
	Search(ctx context.Context, text string) ([]targetbook.Event, error)
}

// Kickoff times from the two books rarely agree to the minute; anything
// beyond this gap is a different fixture.
const kickoffWindow = time.Hour + 5*time.Minute

// Roster-variant markers. A candidate whose name carries one of these
// while the wanted fixture does not is a different squad, no matter how
// well the club names overlap.
var variantMarkers = []string{
	"ladies", "women", "u21", "u-21", "u23", "u-23",
	"youth", "junior", "reserve", "b team",
}

// Matcher finds the target-book event for a fixture the reference book
// names only by its two team strings and kickoff time.
type Matcher struct {
	searcher Searcher
	logger   *slog.Logger
}

func NewMatcher(searcher Searcher, logger *slog.Logger) *Matcher {
	return &Matcher{
		searcher: searcher,
		logger:   logger.With("component", "matcher"),
	}
}

// FindEvent returns the id of the best-scoring catalog event for the
// fixture. Candidates are collected from every search text, from the
// full pairing down to single long tokens, and the global best wins;
// a looser query can surface a better match than a stricter one.
// starts is the kickoff in unix milliseconds; zero disables the time
// check. Fails with domain.ErrMarketUnresolved when nothing scores.
func (m *Matcher) FindEvent(ctx context.Context, home, away string, starts int64) (string, error) {
	type candidate struct {
		event targetbook.Event
		score int
	}

	var (
		best     *candidate
		searched = make(map[string]bool)
	)
	for _, text := range searchTexts(home, away) {
		if searched[text] {
			continue
		}
		searched[text] = true

		events, err := m.searcher.Search(ctx, text)
		if err != nil {
			m.logger.Warn("catalog search failed", "text", text, "error", err)
			continue
		}
		for _, ev := range events {
			score, ok := m.scoreEvent(ev, home, away, starts)
			if !ok {
				continue
			}
			// Strictly greater keeps the first-seen candidate on ties.
			if best == nil || score > best.score {
				best = &candidate{event: ev, score: score}
			}
		}
	}

	if best == nil {
		return "", fmt.Errorf("correlate: no catalog match for %s vs %s: %w", home, away, domain.ErrMarketUnresolved)
	}
	m.logger.Debug("matched event",
		"home", home, "away", away,
		"event_id", best.event.ID, "score", best.score)
	return best.event.ID, nil
}

// scoreEvent rates one catalog event against the wanted fixture. The
// boolean is false when a hard filter rejects the candidate.
func (m *Matcher) scoreEvent(ev targetbook.Event, home, away string, starts int64) (int, bool) {
	evHome := strings.ToLower(ev.Home)
	evAway := strings.ToLower(ev.Away)
	wantHome := strings.ToLower(home)
	wantAway := strings.ToLower(away)

	evName := evHome + " vs " + evAway
	for _, marker := range variantMarkers {
		if strings.Contains(evName, marker) &&
			!strings.Contains(wantHome, marker) && !strings.Contains(wantAway, marker) {
			return 0, false
		}
	}

	score := 0
	if strings.Contains(evHome, wantHome) && strings.Contains(evAway, wantAway) {
		score += 10
	}

	homeOverlap := wordOverlap(evHome, wantHome)
	awayOverlap := wordOverlap(evAway, wantAway)
	if homeOverlap == 0 || awayOverlap == 0 {
		return 0, false
	}
	score += homeOverlap + awayOverlap

	if starts > 0 && ev.StartTime > 0 {
		gap := time.Duration(math.Abs(float64(ev.StartTime-starts))) * time.Millisecond
		if gap > kickoffWindow {
			return 0, false
		}
		score += 10
	}
	return score, true
}

// searchTexts yields search strings from most to least specific: the
// full pairing, each team alone, then individual long tokens.
func searchTexts(home, away string) []string {
	texts := []string{
		strings.ToLower(home + " " + away),
		strings.ToLower(home),
		strings.ToLower(away),
	}
	for _, team := range []string{home, away} {
		for _, tok := range strings.Fields(strings.ToLower(team)) {
			if len(tok) > 3 {
				texts = append(texts, tok)
			}
		}
	}
	return texts
}

// wordOverlap counts words longer than one character shared between the
// two names.
func wordOverlap(a, b string) int {
	words := make(map[string]bool)
	for _, w := range strings.Fields(a) {
		if len(w) > 1 {
			words[w] = true
		}
	}
	n := 0
	for _, w := range strings.Fields(b) {
		if len(w) > 1 && words[w] {
			n++
		}
	}
	return n
}
