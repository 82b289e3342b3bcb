package model

// ChartPoint is a part result positioned on the price-sorted x axis
type ChartPoint struct {
	Index        int       `json:"index"`
	Price        float64   `json:"price"`
	ID           string    `json:"id"`
	Platform     string    `json:"platform"`
	Condition    Condition `json:"condition"`
	SellerRating float64   `json:"sellerRating"`
}

// IndicatorName names a statistical marker
type IndicatorName string

const (
	IndicatorMinimum       IndicatorName = "Precio Mínimo"
	IndicatorThreeQuarters IndicatorName = "3/4 Promedio"
	IndicatorAverage       IndicatorName = "Promedio"
	IndicatorMaximum       IndicatorName = "Precio Máximo"
)

// Indicator is a derived price marker mapped to its nearest chart position
type Indicator struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChartPosition int     `json:"index"`
	ID            string  `json:"id,omitempty"` // source offer, historical points only
}

// IndicatorSet is the connecting line and the individually plotted points
type IndicatorSet struct {
	Line   []Indicator `json:"line"`
	Points []Indicator `json:"points"`
}

// Find returns the indicator with the given name
func (s IndicatorSet) Find(name IndicatorName) (Indicator, bool) {
	for _, ind := range s.Points {
		if ind.Name == string(name) {
			return ind, true
		}
	}
	return Indicator{}, false
}

// HistoricalPoints are the past offers selected for the chart overlay
type HistoricalPoints struct {
	Accepted []Indicator `json:"accepted"`
	Rejected []Indicator `json:"rejected"`
}

// Ratios is the average part price as a percentage of the device price
type Ratios struct {
	Used float64 `json:"proportionUsed"`
	New  float64 `json:"proportionNew"`
}

// Analysis is everything the charting collaborator needs
type Analysis struct {
	Chart      []ChartPoint     `json:"chart"`
	Indicators IndicatorSet     `json:"indicators"`
	Historical HistoricalPoints `json:"historical"`
	Ratios     Ratios           `json:"ratios"`
	MaxY       float64          `json:"maxY"`
}
