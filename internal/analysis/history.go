package analysis

import (
	"fmt"
	"sort"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

const (
	// maxRejectedPoints bounds the rejected overlay
	maxRejectedPoints = 2
	// noAcceptedPrice makes every rejected offer eligible when nothing was accepted
	noAcceptedPrice = -1
)

// SelectHistoricalPoints picks the accepted and rejected past offers worth
// overlaying on the chart: the cheapest accepted offer, the two most expensive
// accepted offers, and up to two of the cheapest rejections that were still
// above every accepted price.
//
// Offers with equal prices keep their input order.
func SelectHistoricalPoints(history []model.HistoricalOffer, chart []model.ChartPoint) model.HistoricalPoints {
	var accepted, rejected []model.HistoricalOffer
	for _, h := range history {
		if h.Accepted {
			accepted = append(accepted, h)
		} else {
			rejected = append(rejected, h)
		}
	}
	byPrice := func(offers []model.HistoricalOffer) {
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].OfferedPrice < offers[j].OfferedPrice
		})
	}
	byPrice(accepted)
	byPrice(rejected)

	highestAccepted := float64(noAcceptedPrice)
	if len(accepted) > 0 {
		highestAccepted = accepted[len(accepted)-1].OfferedPrice
	}

	points := model.HistoricalPoints{
		Accepted: []model.Indicator{},
		Rejected: []model.Indicator{},
	}

	candidates := make([]model.HistoricalOffer, 0, 3)
	candidates = append(candidates, lowest(accepted, 1)...)
	candidates = append(candidates, highest(accepted, 2)...)
	for _, h := range dedupeByID(candidates) {
		points.Accepted = append(points.Accepted, historicalPoint(h, "Aceptado", chart))
	}

	for _, h := range rejected {
		if len(points.Rejected) == maxRejectedPoints {
			break
		}
		if h.OfferedPrice > highestAccepted {
			points.Rejected = append(points.Rejected, historicalPoint(h, "Rechazado", chart))
		}
	}

	return points
}

func lowest(sorted []model.HistoricalOffer, n int) []model.HistoricalOffer {
	if len(sorted) < n {
		n = len(sorted)
	}
	return sorted[:n]
}

func highest(sorted []model.HistoricalOffer, n int) []model.HistoricalOffer {
	if len(sorted) < n {
		n = len(sorted)
	}
	return sorted[len(sorted)-n:]
}

// dedupeByID keeps the first occurrence of every id
func dedupeByID(offers []model.HistoricalOffer) []model.HistoricalOffer {
	seen := make(map[string]bool, len(offers))
	var unique []model.HistoricalOffer
	for _, h := range offers {
		if seen[h.ID] {
			continue
		}
		seen[h.ID] = true
		unique = append(unique, h)
	}
	return unique
}

func historicalPoint(h model.HistoricalOffer, label string, chart []model.ChartPoint) model.Indicator {
	return model.Indicator{
		Name:          fmt.Sprintf("%s: $%s", label, formatPrice(h.OfferedPrice)),
		Price:         h.OfferedPrice,
		ChartPosition: NearestIndex(h.OfferedPrice, chart),
		ID:            h.ID,
	}
}

// formatPrice prints whole prices without decimals
func formatPrice(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d", int64(p))
	}
	return fmt.Sprintf("%.2f", p)
}
