package targetbook

// Event is one row in the catalog search response.
type Event struct {
	ID        string
	Home      string
	Away      string
	StartTime int64 // unix ms
}

// EventDetails is the full catalog entry for one event: team names plus
// every market the book currently offers, grouped the way the site
// groups them (full-match groups and first-half groups side by side).
type EventDetails struct {
	EventID   string
	Home      string
	Away      string
	StartTime int64
	Groups    []MarketGroup
}

// MarketGroup is a named collection of markets, e.g. "Main" or
// "1st Half".
type MarketGroup struct {
	Name    string
	Markets []Market
}

// Market is one wager market with its outcomes.
type Market struct {
	ID       string
	Name     string
	Outcomes []MarketOutcome
}

// MarketOutcome is one selectable side of a market. Value is the
// decimal odds; Name carries the line for totals ("Over 2.5") and
// handicaps ("Home (-1)").
type MarketOutcome struct {
	ID    string
	Name  string
	Value float64
}

// apiSearchResponse mirrors the catalog search endpoint's JSON.
type apiSearchResponse struct {
	Data []apiEvent `json:"data"`
}

type apiEvent struct {
	ID         any      `json:"id"`
	EventNames []string `json:"eventNames"`
	StartTime  int64    `json:"startTime"`
}

// apiEventDetails mirrors the event details endpoint's JSON.
type apiEventDetails struct {
	EventNames      []string         `json:"eventNames"`
	StartTime       int64            `json:"startTime"`
	CompetitionName string           `json:"competitionName"`
	MarketGroups    []apiMarketGroup `json:"marketGroups"`
}

type apiMarketGroup struct {
	Name    string      `json:"name"`
	Markets []apiMarket `json:"markets"`
}

type apiMarket struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Outcomes []apiOutcome `json:"outcomes"`
}

type apiOutcome struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}
