// Package targetbook is the REST client for the target bookmaker's
// public catalog: event search and per-event market details. Placement
// itself goes through the browser automation collaborator, not this
// client.
package targetbook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client reads the target book's catalog endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Search queries the catalog for events matching the text.
func (c *Client) Search(ctx context.Context, text string) ([]Event, error) {
	params := url.Values{}
	params.Set("q", text)

	body, err := c.doGet(ctx, "/events/search?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("targetbook: search %q: %w", text, err)
	}

	var resp apiSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("targetbook: decode search results: %w", err)
	}

	events := make([]Event, 0, len(resp.Data))
	for _, e := range resp.Data {
		home, away := splitEventNames(e.EventNames)
		events = append(events, Event{
			ID:        fmt.Sprint(e.ID),
			Home:      home,
			Away:      away,
			StartTime: e.StartTime,
		})
	}
	return events, nil
}

// EventDetails returns the full market catalog for one event.
func (c *Client) EventDetails(ctx context.Context, eventID string) (*EventDetails, error) {
	body, err := c.doGet(ctx, "/events/"+url.PathEscape(eventID))
	if err != nil {
		return nil, fmt.Errorf("targetbook: event %s: %w", eventID, err)
	}

	var resp apiEventDetails
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("targetbook: decode event %s: %w", eventID, err)
	}

	home, away := splitEventNames(resp.EventNames)
	details := &EventDetails{
		EventID:   eventID,
		Home:      home,
		Away:      away,
		StartTime: resp.StartTime,
		Groups:    make([]MarketGroup, 0, len(resp.MarketGroups)),
	}
	for _, g := range resp.MarketGroups {
		group := MarketGroup{Name: g.Name, Markets: make([]Market, 0, len(g.Markets))}
		for _, m := range g.Markets {
			market := Market{ID: m.ID, Name: m.Name, Outcomes: make([]MarketOutcome, 0, len(m.Outcomes))}
			for _, o := range m.Outcomes {
				market.Outcomes = append(market.Outcomes, MarketOutcome{
					ID:    o.ID,
					Name:  o.Name,
					Value: o.Value,
				})
			}
			group.Markets = append(group.Markets, market)
		}
		details.Groups = append(details.Groups, group)
	}
	return details, nil
}

// splitEventNames extracts the two team names. The catalog usually
// sends them as separate entries; older rows carry a single "A v B"
// string.
func splitEventNames(names []string) (home, away string) {
	switch {
	case len(names) >= 2:
		return names[0], names[1]
	case len(names) == 1:
		for _, sep := range []string{" vs ", " v "} {
			if parts := strings.SplitN(names[0], sep, 2); len(parts) == 2 {
				return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
			}
		}
		return names[0], ""
	}
	return "", ""
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
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
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}
