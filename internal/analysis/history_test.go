package analysis

import (
	"testing"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

func offer(id string, price float64, accepted bool) model.HistoricalOffer {
	return model.HistoricalOffer{ID: id, OfferedPrice: price, Accepted: accepted}
}

func seedHistory() []model.HistoricalOffer {
	return []model.HistoricalOffer{
		offer("h1", 3800, true),
		offer("h2", 4200, false),
		offer("h3", 3650, true),
		offer("h4", 4500, false),
		offer("h5", 3500, true),
		offer("h6", 4000, true),
	}
}

func prices(points []model.Indicator) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Price
	}
	return out
}

func equalPrices(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSelectHistoricalPoints_Seed(t *testing.T) {
	chart := ChartData(sampleResults())
	got := SelectHistoricalPoints(seedHistory(), chart)

	if want := []float64{3500, 3800, 4000}; !equalPrices(prices(got.Accepted), want) {
		t.Errorf("Accepted = %v, want %v", prices(got.Accepted), want)
	}
	if want := []float64{4200, 4500}; !equalPrices(prices(got.Rejected), want) {
		t.Errorf("Rejected = %v, want %v", prices(got.Rejected), want)
	}

	if got.Accepted[0].Name != "Aceptado: $3500" {
		t.Errorf("Unexpected accepted name: %s", got.Accepted[0].Name)
	}
	if got.Rejected[0].Name != "Rechazado: $4200" {
		t.Errorf("Unexpected rejected name: %s", got.Rejected[0].Name)
	}

	// 3500 sits exactly on ml1 (index 4); everything above maps to amz1 (index 5)
	if got.Accepted[0].ChartPosition != 4 {
		t.Errorf("Expected 3500 at index 4, got %d", got.Accepted[0].ChartPosition)
	}
	for _, p := range got.Rejected {
		if p.ChartPosition != 5 {
			t.Errorf("Expected %v at index 5, got %d", p.Price, p.ChartPosition)
		}
	}
}

func TestSelectHistoricalPoints_AcceptedOverlap(t *testing.T) {
	tests := []struct {
		name    string
		history []model.HistoricalOffer
		want    []float64
	}{
		{"none", nil, []float64{}},
		{"one", []model.HistoricalOffer{offer("a", 100, true)}, []float64{100}},
		{"two", []model.HistoricalOffer{offer("b", 200, true), offer("a", 100, true)}, []float64{100, 200}},
		{"three", []model.HistoricalOffer{offer("c", 300, true), offer("a", 100, true), offer("b", 200, true)}, []float64{100, 200, 300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectHistoricalPoints(tt.history, nil)
			if !equalPrices(prices(got.Accepted), tt.want) {
				t.Errorf("Accepted = %v, want %v", prices(got.Accepted), tt.want)
			}
		})
	}
}

func TestSelectHistoricalPoints_NoAcceptedMakesAllRejectedEligible(t *testing.T) {
	history := []model.HistoricalOffer{
		offer("r1", 900, false),
		offer("r2", 0, false),
		offer("r3", 500, false),
	}

	got := SelectHistoricalPoints(history, nil)

	if len(got.Accepted) != 0 {
		t.Errorf("Expected no accepted points, got %v", got.Accepted)
	}
	if want := []float64{0, 500}; !equalPrices(prices(got.Rejected), want) {
		t.Errorf("Rejected = %v, want %v", prices(got.Rejected), want)
	}
}

func TestSelectHistoricalPoints_RejectedBelowAcceptedIgnored(t *testing.T) {
	history := []model.HistoricalOffer{
		offer("a1", 1000, true),
		offer("r1", 800, false),
		offer("r2", 1000, false),
		offer("r3", 1200, false),
	}

	got := SelectHistoricalPoints(history, nil)

	if want := []float64{1200}; !equalPrices(prices(got.Rejected), want) {
		t.Errorf("Rejected = %v, want %v", prices(got.Rejected), want)
	}
}

func TestSelectHistoricalPoints_EqualPricesKeepInputOrder(t *testing.T) {
	history := []model.HistoricalOffer{
		offer("first", 500, false),
		offer("second", 500, false),
		offer("third", 500, false),
		offer("x", 100, true),
		offer("y", 100, true),
		offer("z", 100, true),
	}

	got := SelectHistoricalPoints(history, []model.ChartPoint{{Price: 500}})

	if len(got.Rejected) != 2 || got.Rejected[0].ID != "first" || got.Rejected[1].ID != "second" {
		t.Errorf("Expected first and second rejected, got %+v", got.Rejected)
	}
	var ids []string
	for _, p := range got.Accepted {
		ids = append(ids, p.ID)
	}
	if len(ids) != 3 || ids[0] != "x" || ids[1] != "y" || ids[2] != "z" {
		t.Errorf("Expected accepted x, y, z, got %v", ids)
	}
	if history[0].ID != "first" {
		t.Errorf("Input mutated: %+v", history)
	}
}

// The accepted overlay is the cheapest accepted offer plus the two most
// expensive ones, deduped by id: up to 3 points, not 2. This mirrors how the
// chart has always been drawn; do not tighten the bound to 2.
func TestSelectHistoricalPoints_Bounds(t *testing.T) {
	var history []model.HistoricalOffer
	for i := 0; i < 40; i++ {
		history = append(history, offer(string(rune('A'+i)), float64((i*37)%11*100), i%3 != 0))
	}
	// duplicated ids inside accepted must collapse
	history = append(history, offer("B", 5000, true), offer("B", 5100, true))

	got := SelectHistoricalPoints(history, ChartData(sampleResults()))

	if len(got.Accepted) > 3 {
		t.Errorf("Accepted overlay too large: %d", len(got.Accepted))
	}
	seen := make(map[string]bool)
	for _, p := range got.Accepted {
		if seen[p.ID] {
			t.Errorf("Duplicate accepted id %s", p.ID)
		}
		seen[p.ID] = true
	}
	if len(got.Rejected) > 2 {
		t.Errorf("Rejected overlay too large: %d", len(got.Rejected))
	}
}

func TestSelectHistoricalPoints_ThreeAcceptedPoints(t *testing.T) {
	history := []model.HistoricalOffer{
		offer("a1", 3000, true),
		offer("a2", 3200, true),
		offer("a3", 3400, true),
		offer("a4", 3600, true),
		offer("a5", 3800, true),
	}

	got := SelectHistoricalPoints(history, ChartData(sampleResults()))

	want := []string{"a1", "a4", "a5"}
	if len(got.Accepted) != len(want) {
		t.Fatalf("Expected %d accepted points, got %d", len(want), len(got.Accepted))
	}
	for i, id := range want {
		if got.Accepted[i].ID != id {
			t.Errorf("Accepted[%d] = %s, want %s", i, got.Accepted[i].ID, id)
		}
	}
}
