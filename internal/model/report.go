package model

import "time"

// Report is the complete result of one search
// This is what gets rendered to JSON, Markdown and XLSX
type Report struct {
	Sequence   uint64      `json:"sequence"` // request number within the session
	Query      SearchQuery `json:"query"`
	SearchedAt time.Time   `json:"searched_at"`

	Online []PartResult `json:"online"` // remote lookup results as returned
	Local  []PartResult `json:"local"`  // supplier records matching the query
	Merged []PartResult `json:"merged"` // online + local, deduplicated by id

	DevicePrices DevicePrices      `json:"device_prices"`
	History      []HistoricalOffer `json:"history,omitempty"`
	Analysis     Analysis          `json:"analysis"`
	Quotes       []QuoteOption     `json:"quotes"`

	Lookup LookupMeta `json:"lookup"`
	Feed   FeedMeta   `json:"feed"`

	Warnings []string `json:"warnings,omitempty"`
}

// LookupMeta describes where the online results came from
type LookupMeta struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	Cached   bool   `json:"cached"`
	Fallback bool   `json:"fallback"` // mock payload served after a failure
}

// FeedMeta summarizes the local supplier feed used for the search
type FeedMeta struct {
	Source      string `json:"source,omitempty"`
	TotalRows   int    `json:"total_rows"`
	Accepted    int    `json:"accepted"`
	Skipped     int    `json:"skipped"`
	Matched     int    `json:"matched"`
	Unavailable bool   `json:"unavailable"`
}

// Quote returns the option for a strategy
func (r *Report) Quote(s Strategy) (QuoteOption, bool) {
	for _, q := range r.Quotes {
		if q.Strategy == s {
			return q, true
		}
	}
	return QuoteOption{}, false
}
