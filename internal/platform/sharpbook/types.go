package sharpbook

import "encoding/json"

// apiAlertsResponse mirrors the alert feed's JSON envelope.
type apiAlertsResponse struct {
	Data []APIAlert `json:"data"`
}

// APIAlert is one raw odds-movement notification from the reference
// book. Prices ride along on the alert but are never used for pricing;
// quotes are always re-fetched at evaluation time.
type APIAlert struct {
	ID           string      `json:"id"`
	Home         string      `json:"home"`
	Away         string      `json:"away"`
	LineType     string      `json:"lineType"`
	Outcome      string      `json:"outcome"`
	Points       *float64    `json:"points"`
	PeriodNumber json.Number `json:"periodNumber"`
	EventID      json.Number `json:"eventId"`
	Starts       int64       `json:"starts"`
	Timestamp    int64       `json:"timestamp"`
	Type         string      `json:"type"`
	SportID      json.Number `json:"sportId"`
}

// apiEventResponse mirrors the live-odds endpoint's JSON envelope.
type apiEventResponse struct {
	Data *apiEventData `json:"data"`
}

type apiEventData struct {
	Periods map[string]apiPeriod `json:"periods"`
}

// apiPeriod holds one period's markets. Spreads and totals are keyed by
// an opaque line identifier; the line itself lives in the entry.
type apiPeriod struct {
	MoneyLine map[string]float64 `json:"money_line"`
	Spreads   map[string]apiLine `json:"spreads"`
	Totals    map[string]apiLine `json:"totals"`
}

type apiLine struct {
	Hdp    *float64 `json:"hdp"`
	Points *float64 `json:"points"`
	Home   *float64 `json:"home"`
	Away   *float64 `json:"away"`
	Over   *float64 `json:"over"`
	Under  *float64 `json:"under"`
}
