package correlate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alanyoungcy/betalert/internal/domain"
	"github.com/alanyoungcy/betalert/internal/platform/targetbook"
)

type fakeSearcher struct {
	events []targetbook.Event
	calls  []string
	err    error
}

func (f *fakeSearcher) Search(_ context.Context, text string) ([]targetbook.Event, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

// perTextSearcher returns a different result set per search text, the
// way the live catalog does.
type perTextSearcher struct {
	results map[string][]targetbook.Event
	calls   []string
}

func (f *perTextSearcher) Search(_ context.Context, text string) ([]targetbook.Event, error) {
	f.calls = append(f.calls, text)
	return f.results[text], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFindEventPicksBestCandidate(t *testing.T) {
	kickoff := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC).UnixMilli()
	searcher := &fakeSearcher{events: []targetbook.Event{
		{ID: "1", Home: "Arsenal FC", Away: "Chelsea FC", StartTime: kickoff},
		{ID: "2", Home: "Arsenal Reserve", Away: "Chelsea Reserve", StartTime: kickoff},
		{ID: "3", Home: "Everton FC", Away: "Chelsea FC", StartTime: kickoff},
	}}
	m := NewMatcher(searcher, discardLogger())

	id, err := m.FindEvent(context.Background(), "Arsenal", "Chelsea", kickoff+10*60*1000)
	if err != nil {
		t.Fatalf("FindEvent: %v", err)
	}
	if id != "1" {
		t.Errorf("matched event %q, want 1", id)
	}
}

func TestFindEventScoresAcrossAllSearchTexts(t *testing.T) {
	// The full-pair query only surfaces a weak partial match; the exact
	// fixture shows up for the single-team query. The weak candidate
	// must not shadow the stronger one found by a later query.
	searcher := &perTextSearcher{results: map[string][]targetbook.Event{
		"arsenal london chelsea london": {
			{ID: "weak", Home: "Arsenal", Away: "Chelsea"},
		},
		"arsenal london": {
			{ID: "exact", Home: "Arsenal London", Away: "Chelsea London"},
		},
	}}
	m := NewMatcher(searcher, discardLogger())

	id, err := m.FindEvent(context.Background(), "Arsenal London", "Chelsea London", 0)
	if err != nil {
		t.Fatalf("FindEvent: %v", err)
	}
	if id != "exact" {
		t.Errorf("matched %q, want the globally best-scoring candidate %q", id, "exact")
	}
	if len(searcher.calls) < 3 {
		t.Errorf("only %d queries issued, want every search text consulted", len(searcher.calls))
	}
}

func TestFindEventRejectsRosterVariants(t *testing.T) {
	searcher := &fakeSearcher{events: []targetbook.Event{
		{ID: "w", Home: "Arsenal Women", Away: "Chelsea Women"},
		{ID: "u", Home: "Arsenal U21", Away: "Chelsea U21"},
	}}
	m := NewMatcher(searcher, discardLogger())

	_, err := m.FindEvent(context.Background(), "Arsenal", "Chelsea", 0)
	if !errors.Is(err, domain.ErrMarketUnresolved) {
		t.Errorf("err = %v, want ErrMarketUnresolved", err)
	}
}

func TestFindEventAcceptsVariantWhenWanted(t *testing.T) {
	searcher := &fakeSearcher{events: []targetbook.Event{
		{ID: "w", Home: "Arsenal Women", Away: "Chelsea Women"},
	}}
	m := NewMatcher(searcher, discardLogger())

	id, err := m.FindEvent(context.Background(), "Arsenal Women", "Chelsea Women", 0)
	if err != nil {
		t.Fatalf("FindEvent: %v", err)
	}
	if id != "w" {
		t.Errorf("matched event %q, want w", id)
	}
}

func TestFindEventKickoffIsHardFilter(t *testing.T) {
	kickoff := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC).UnixMilli()
	twoHours := int64(2 * 60 * 60 * 1000)
	searcher := &fakeSearcher{events: []targetbook.Event{
		{ID: "late", Home: "Arsenal", Away: "Chelsea", StartTime: kickoff + twoHours},
	}}
	m := NewMatcher(searcher, discardLogger())

	if _, err := m.FindEvent(context.Background(), "Arsenal", "Chelsea", kickoff); !errors.Is(err, domain.ErrMarketUnresolved) {
		t.Errorf("err = %v, want ErrMarketUnresolved for kickoff gap beyond window", err)
	}
}

func TestFindEventRequiresOverlapOnBothSides(t *testing.T) {
	searcher := &fakeSearcher{events: []targetbook.Event{
		{ID: "half", Home: "Arsenal", Away: "Tottenham"},
	}}
	m := NewMatcher(searcher, discardLogger())

	if _, err := m.FindEvent(context.Background(), "Arsenal", "Chelsea", 0); !errors.Is(err, domain.ErrMarketUnresolved) {
		t.Errorf("err = %v, want ErrMarketUnresolved when only one side overlaps", err)
	}
}

func TestFindEventSurvivesSearchErrors(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("upstream down")}
	m := NewMatcher(searcher, discardLogger())

	if _, err := m.FindEvent(context.Background(), "Arsenal", "Chelsea", 0); !errors.Is(err, domain.ErrMarketUnresolved) {
		t.Errorf("err = %v, want ErrMarketUnresolved after failed searches", err)
	}
	if len(searcher.calls) == 0 {
		t.Error("expected every search strategy to be attempted")
	}
}

func TestSearchTexts(t *testing.T) {
	texts := searchTexts("Manchester City", "AC Milan")
	want := map[string]bool{
		"manchester city ac milan": true,
		"manchester city":          true,
		"ac milan":                 true,
		"manchester":               true,
		"city":                     true,
		"milan":                    true,
	}
	for _, text := range texts {
		if !want[text] {
			t.Errorf("unexpected search text %q (short tokens must be skipped)", text)
		}
		delete(want, text)
	}
	for text := range want {
		t.Errorf("missing search text %q", text)
	}
}
