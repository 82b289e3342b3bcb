package model

import "time"

// DateLayout is the calendar date format used for historical offers
const DateLayout = "2006-01-02"

// HistoricalOffer is a past negotiation outcome. Read-only to the analysis.
type HistoricalOffer struct {
	ID           string      `json:"id"`
	Date         time.Time   `json:"date"`
	Query        SearchQuery `json:"query"`
	OfferedPrice float64     `json:"offeredPrice"`
	Accepted     bool        `json:"accepted"`
}
