// Package sharpbook is the REST client for the reference book: the
// alert feed that drives the pipeline and the live-odds lookup used to
// price candidates at evaluation time.
package sharpbook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/alanyoungcy/betalert/internal/domain"
)

// linePointsTolerance matches a requested line against the feed's
// spread/total entries.
const linePointsTolerance = 0.01

// Period keys in the live-odds response.
const (
	periodKeyFull      = "num_0"
	periodKeyFirstHalf = "num_1"
)

// Client talks to the reference book's alert and odds endpoints.
type Client struct {
	alertHost  string // alert feed root
	oddsHost   string // live-odds API root
	userID     string
	httpClient *http.Client
}

func NewClient(alertHost, oddsHost, userID string) *Client {
	return &Client{
		alertHost: alertHost,
		oddsHost:  oddsHost,
		userID:    userID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Alerts returns the notifications emitted since the cursor time (unix
// ms). The feed replays everything after the cursor, so callers must
// dedupe by alert id.
func (c *Client) Alerts(ctx context.Context, since int64) ([]APIAlert, error) {
	params := url.Values{}
	cursor := fmt.Sprintf("%d-0", since)
	params.Set("dropNotificationsCursor", cursor)
	params.Set("limitChangeNotificationsCursor", cursor)
	params.Set("openingLineNotificationsCursor", fmt.Sprintf("%d-1", since))

	path := fmt.Sprintf("%s/alerts/%s?%s", c.alertHost, url.PathEscape(c.userID), params.Encode())

	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("sharpbook: fetch alerts: %w", err)
	}

	var resp apiAlertsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("sharpbook: decode alerts: %w", err)
	}
	return resp.Data, nil
}

// LiveQuotes fetches the current reference prices for one market and
// period of an event. Spreads and totals match the requested line
// exactly; a missing line yields ErrDataStale so the caller rejects the
// candidate rather than pricing it from anything cached. Totals come
// back keyed home (over) / away (under) so the pricing layer sees one
// convention for every two-way market.
func (c *Client) LiveQuotes(ctx context.Context, eventID string, lineType domain.LineType, points float64, period domain.Period) (domain.QuoteSet, error) {
	if eventID == "" {
		return nil, fmt.Errorf("sharpbook: live quotes need an event id: %w", domain.ErrDataStale)
	}

	path := fmt.Sprintf("%s/events/%s", c.oddsHost, url.PathEscape(eventID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("sharpbook: fetch event %s: %w", eventID, err)
	}

	var resp apiEventResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("sharpbook: decode event %s: %w", eventID, err)
	}
	if resp.Data == nil || len(resp.Data.Periods) == 0 {
		return nil, fmt.Errorf("sharpbook: event %s has no period data: %w", eventID, domain.ErrDataStale)
	}

	key := periodKeyFull
	if period == domain.PeriodFirstHalf {
		key = periodKeyFirstHalf
	}
	p, ok := resp.Data.Periods[key]
	if !ok {
		return nil, fmt.Errorf("sharpbook: event %s missing period %s: %w", eventID, key, domain.ErrDataStale)
	}

	quotes := quotesFromPeriod(p, lineType, points)
	if len(quotes) == 0 {
		return nil, fmt.Errorf("sharpbook: event %s has no %s line %v in period %s: %w",
			eventID, lineType, points, key, domain.ErrDataStale)
	}
	return quotes, nil
}

func quotesFromPeriod(p apiPeriod, lineType domain.LineType, points float64) domain.QuoteSet {
	quotes := make(domain.QuoteSet)
	switch lineType {
	case domain.LineMoneyLine:
		if v, ok := p.MoneyLine["home"]; ok {
			quotes[domain.OutcomeHome] = v
		}
		if v, ok := p.MoneyLine["away"]; ok {
			quotes[domain.OutcomeAway] = v
		}
		if v, ok := p.MoneyLine["draw"]; ok {
			quotes[domain.OutcomeDraw] = v
		}
	case domain.LineSpread:
		for _, line := range p.Spreads {
			if line.Hdp == nil || math.Abs(*line.Hdp-points) >= linePointsTolerance {
				continue
			}
			if line.Home != nil {
				quotes[domain.OutcomeHome] = *line.Home
			}
			if line.Away != nil {
				quotes[domain.OutcomeAway] = *line.Away
			}
			break
		}
	case domain.LineTotal:
		for _, line := range p.Totals {
			if line.Points == nil || math.Abs(*line.Points-points) >= linePointsTolerance {
				continue
			}
			if line.Over != nil {
				quotes[domain.OutcomeHome] = *line.Over
			}
			if line.Under != nil {
				quotes[domain.OutcomeAway] = *line.Under
			}
			break
		}
	}
	return quotes
}

func (c *Client) doGet(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
