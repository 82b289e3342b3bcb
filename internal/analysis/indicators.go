// Package analysis computes the price indicators, device ratios and the
// historical overlay for the price-distribution chart.
package analysis

import (
	"math"
	"sort"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

// ThreeQuartersFactor scales the average into the ¾-average indicator
const ThreeQuartersFactor = 0.75

// maxYHeadroom leaves room above the highest plotted value
const maxYHeadroom = 1.1

// Analyzer builds the chart analysis for a result set
type Analyzer struct{}

// NewAnalyzer creates a new analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze assembles chart data, indicators, ratios and historical points.
// Every part degrades to an empty value when results are empty.
func (a *Analyzer) Analyze(results []model.PartResult, prices model.DevicePrices, history []model.HistoricalOffer) model.Analysis {
	chart := ChartData(results)
	indicators := ComputeIndicators(results)

	return model.Analysis{
		Chart:      chart,
		Indicators: indicators,
		Historical: SelectHistoricalPoints(history, chart),
		Ratios:     DeviceRatios(indicators, prices),
		MaxY:       maxY(results, prices),
	}
}

// ChartData sorts results ascending by price; the position in the sorted
// slice is the x axis index used by every other chart element
func ChartData(results []model.PartResult) []model.ChartPoint {
	sorted := make([]model.PartResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PriceMXN < sorted[j].PriceMXN
	})

	points := make([]model.ChartPoint, len(sorted))
	for i, r := range sorted {
		points[i] = model.ChartPoint{
			Index:        i,
			Price:        r.PriceMXN,
			ID:           r.ID,
			Platform:     r.Platform,
			Condition:    r.Condition,
			SellerRating: r.SellerRating,
		}
	}
	return points
}

// NearestIndex returns the index of the point whose price is closest to
// price. The first point wins ties. Returns 0 for an empty chart.
//
// Linear scan; the chart holds tens of points. A binary search over the
// sorted prices would do if that ever changes.
func NearestIndex(price float64, points []model.ChartPoint) int {
	best := 0
	for i := range points {
		if math.Abs(points[i].Price-price) < math.Abs(points[best].Price-price) {
			best = i
		}
	}
	return best
}

// ComputeIndicators derives the minimum, ¾-average, average and maximum
// indicators and maps each to its nearest chart position
func ComputeIndicators(results []model.PartResult) model.IndicatorSet {
	if len(results) == 0 {
		return model.IndicatorSet{Line: []model.Indicator{}, Points: []model.Indicator{}}
	}

	minPrice := results[0].PriceMXN
	maxPrice := results[0].PriceMXN
	sum := 0.0
	for _, r := range results {
		if r.PriceMXN < minPrice {
			minPrice = r.PriceMXN
		}
		if r.PriceMXN > maxPrice {
			maxPrice = r.PriceMXN
		}
		sum += r.PriceMXN
	}
	avgPrice := sum / float64(len(results))

	chart := ChartData(results)
	indicator := func(name model.IndicatorName, price float64) model.Indicator {
		return model.Indicator{
			Name:          string(name),
			Price:         price,
			ChartPosition: NearestIndex(price, chart),
		}
	}

	line := []model.Indicator{
		indicator(model.IndicatorMinimum, minPrice),
		indicator(model.IndicatorThreeQuarters, avgPrice*ThreeQuartersFactor),
		indicator(model.IndicatorAverage, avgPrice),
		indicator(model.IndicatorMaximum, maxPrice),
	}
	sort.SliceStable(line, func(i, j int) bool {
		return line[i].ChartPosition < line[j].ChartPosition
	})

	points := make([]model.Indicator, len(line))
	copy(points, line)

	return model.IndicatorSet{Line: line, Points: points}
}

// DeviceRatios expresses the average indicator price as a percentage of the
// used and new device average. A zero band average yields 0.
func DeviceRatios(indicators model.IndicatorSet, prices model.DevicePrices) model.Ratios {
	avg := 0.0
	if ind, ok := indicators.Find(model.IndicatorAverage); ok {
		avg = ind.Price
	}

	return model.Ratios{
		Used: percentOf(avg, prices.Used.Average),
		New:  percentOf(avg, prices.New.Average),
	}
}

func percentOf(value, base float64) float64 {
	if base <= 0 {
		return 0
	}
	return value / base * 100
}

// maxY is the chart's y axis ceiling
func maxY(results []model.PartResult, prices model.DevicePrices) float64 {
	top := prices.New.High
	for _, r := range results {
		if r.PriceMXN > top {
			top = r.PriceMXN
		}
	}
	return top * maxYHeadroom
}
