// Package history provides the past negotiation outcomes plotted next to
// current prices.
package history

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

// Seed returns the built-in offers for the default query
func Seed() []model.HistoricalOffer {
	q := model.DefaultQuery()
	return []model.HistoricalOffer{
		{ID: "h1", Date: date(2024, 5, 10), Query: q, OfferedPrice: 3800, Accepted: true},
		{ID: "h2", Date: date(2024, 4, 22), Query: q, OfferedPrice: 4200, Accepted: false},
		{ID: "h3", Date: date(2024, 6, 1), Query: q, OfferedPrice: 3650, Accepted: true},
		{ID: "h4", Date: date(2024, 6, 15), Query: q, OfferedPrice: 4500, Accepted: false},
		{ID: "h5", Date: date(2024, 3, 18), Query: q, OfferedPrice: 3500, Accepted: true},
		{ID: "h6", Date: date(2024, 2, 5), Query: q, OfferedPrice: 4000, Accepted: true},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fileOffer is the on-disk shape of one offer
type fileOffer struct {
	ID           string             `yaml:"id"`
	Date         string             `yaml:"date"`
	Query        *model.SearchQuery `yaml:"query,omitempty"`
	OfferedPrice float64            `yaml:"offeredPrice"`
	Accepted     bool               `yaml:"accepted"`
}

// Load returns the offers in path, or the seed when path is empty
func Load(path string) ([]model.HistoricalOffer, error) {
	if path == "" {
		return Seed(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a YAML list of offers. Dates use YYYY-MM-DD; offers without
// a query inherit the default query.
func LoadFile(path string) ([]model.HistoricalOffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	var raw []fileOffer
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}

	offers := make([]model.HistoricalOffer, 0, len(raw))
	for i, r := range raw {
		if strings.TrimSpace(r.ID) == "" {
			return nil, fmt.Errorf("history entry %d: missing id", i+1)
		}
		d, err := time.Parse(model.DateLayout, strings.TrimSpace(r.Date))
		if err != nil {
			return nil, fmt.Errorf("history entry %s: invalid date %q: %w", r.ID, r.Date, err)
		}
		if r.OfferedPrice < 0 {
			return nil, fmt.Errorf("history entry %s: negative price", r.ID)
		}

		q := model.DefaultQuery()
		if r.Query != nil {
			q = *r.Query
		}

		offers = append(offers, model.HistoricalOffer{
			ID:           r.ID,
			Date:         d,
			Query:        q,
			OfferedPrice: r.OfferedPrice,
			Accepted:     r.Accepted,
		})
	}
	return offers, nil
}

// SortedByDateDesc returns a copy ordered newest first, for tables
func SortedByDateDesc(offers []model.HistoricalOffer) []model.HistoricalOffer {
	sorted := make([]model.HistoricalOffer, len(offers))
	copy(sorted, offers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted
}

// ForQuery keeps the offers whose brand, model and part match q, ignoring case
func ForQuery(offers []model.HistoricalOffer, q model.SearchQuery) []model.HistoricalOffer {
	out := make([]model.HistoricalOffer, 0, len(offers))
	for _, o := range offers {
		if strings.EqualFold(o.Query.Brand, q.Brand) &&
			strings.EqualFold(o.Query.Model, q.Model) &&
			strings.EqualFold(o.Query.Part, q.Part) {
			out = append(out, o)
		}
	}
	return out
}
