package quote

import (
	"math"
	"testing"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

func mockResults() []model.PartResult {
	return []model.PartResult{
		{ID: "ml1", Platform: "MercadoLibre", PriceMXN: 3500, DeliveryTime: "2-3 días"},
		{ID: "ml2", Platform: "MercadoLibre", PriceMXN: 3250, DeliveryTime: "1-2 días"},
		{ID: "amz1", Platform: "Amazon MX", PriceMXN: 3800, DeliveryTime: "1 día"},
		{ID: "ali1", Platform: "AliExpress", PriceMXN: 2100, DeliveryTime: "15-20 días"},
		{ID: "ali2", Platform: "AliExpress", PriceMXN: 2350, DeliveryTime: "12-18 días"},
		{ID: "ebay1", Platform: "Ebay", PriceMXN: 2900, DeliveryTime: "10-15 días"},
	}
}

func TestCustomerPrice_MarkupRounding(t *testing.T) {
	d := DefaultDeriver()

	tests := []struct {
		cost float64
		want float64
	}{
		{3500, 4730}, // 4725 -> 472.5 -> 473
		{2137, 2890}, // 2884.95 -> 288.495 -> 289
		{3250, 4390},
		{2100, 2840},
		{1000, 1350},
		{0, 0},
		{1, 10},
	}

	for _, tt := range tests {
		if got := d.CustomerPrice(tt.cost); got != tt.want {
			t.Errorf("CustomerPrice(%v) = %v, want %v", tt.cost, got, tt.want)
		}
	}
}

func TestDeliveryDays(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1 día", 1},
		{"2-3 días", 2},
		{"15-20 días", 15},
		{"  7 días", 7},
		{"10", 10},
		{"", UnknownDeliveryDays},
		{"Inmediata", UnknownDeliveryDays},
		{"días 3", UnknownDeliveryDays},
		{"0 días", UnknownDeliveryDays},
		{"+", UnknownDeliveryDays},
		{"1.5 días", 1},
		{"99999999999999999999 días", math.MaxInt},
		{"-99999999999999999999", math.MinInt},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := DeliveryDays(tt.in); got != tt.want {
				t.Errorf("DeliveryDays(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestDeriveDefault_Fastest(t *testing.T) {
	draft := DeriveDefault(mockResults(), model.StrategyFastest)

	// ml2 and amz1 both start at 1 day; ml2 is cheaper
	if draft.BasedOnResultID != "ml2" {
		t.Errorf("Expected base ml2, got %s", draft.BasedOnResultID)
	}
	if draft.CustomerPrice != 4390 {
		t.Errorf("Expected customer price 4390, got %v", draft.CustomerPrice)
	}
	if draft.DeliveryTime != "1-2 días" {
		t.Errorf("Expected delivery copied verbatim, got %q", draft.DeliveryTime)
	}
	if draft.Notes != model.DefaultQuoteNotes {
		t.Errorf("Unexpected notes: %q", draft.Notes)
	}
}

func TestDeriveDefault_Cheapest(t *testing.T) {
	draft := DeriveDefault(mockResults(), model.StrategyCheapest)

	if draft.BasedOnResultID != "ali1" {
		t.Errorf("Expected base ali1, got %s", draft.BasedOnResultID)
	}
	if draft.CustomerPrice != 2840 {
		t.Errorf("Expected customer price 2840, got %v", draft.CustomerPrice)
	}
	if draft.DeliveryTime != "15-20 días" {
		t.Errorf("Unexpected delivery: %q", draft.DeliveryTime)
	}
}

func TestDeriveDefault_ReferencePrice(t *testing.T) {
	results := []model.PartResult{{ID: "only", PriceMXN: 3500, DeliveryTime: "3 días"}}

	for _, s := range []model.Strategy{model.StrategyFastest, model.StrategyCheapest} {
		if got := DeriveDefault(results, s).CustomerPrice; got != 4730 {
			t.Errorf("%s: expected 4730, got %v", s, got)
		}
	}
}

func TestDeriveDefault_FastestRanksHugeDeliveryLast(t *testing.T) {
	results := []model.PartResult{
		{ID: "overflow", PriceMXN: 50, DeliveryTime: "99999999999999999999 días"},
		{ID: "unknown", PriceMXN: 100, DeliveryTime: "Consultar"},
	}

	draft := DeriveDefault(results, model.StrategyFastest)

	if draft.BasedOnResultID != "unknown" {
		t.Errorf("Expected the unknown delivery to rank before the huge one, got %s", draft.BasedOnResultID)
	}
}

func TestDeriveDefault_FastestTieBreaksOnPrice(t *testing.T) {
	results := []model.PartResult{
		{ID: "pricier", PriceMXN: 100, DeliveryTime: "Consultar"},
		{ID: "cheaper", PriceMXN: 90, DeliveryTime: "Consultar"},
	}

	draft := DeriveDefault(results, model.StrategyFastest)

	if draft.BasedOnResultID != "cheaper" {
		t.Errorf("Expected cheaper result as base, got %s", draft.BasedOnResultID)
	}
}

func TestDeriveDefault_Empty(t *testing.T) {
	for _, s := range []model.Strategy{model.StrategyFastest, model.StrategyCheapest} {
		if draft := DeriveDefault(nil, s); !draft.IsZero() {
			t.Errorf("%s: expected zero draft, got %+v", s, draft)
		}
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	results := mockResults()
	_ = Rank(results, model.StrategyCheapest)
	if results[0].ID != "ml1" {
		t.Errorf("Input reordered: %s first", results[0].ID)
	}
}

func TestNewDeriver_Defaults(t *testing.T) {
	d := NewDeriver(0, 0, "")
	if d.Markup != DefaultMarkup || d.RoundingStep != DefaultRoundingStep || d.Notes != model.DefaultQuoteNotes {
		t.Errorf("Unexpected defaults: %+v", d)
	}

	custom := NewDeriver(1.5, 50, "Sin instalación")
	if got := custom.CustomerPrice(1000); got != 1500 {
		t.Errorf("Expected 1500 with 50%% markup, got %v", got)
	}
	if got := custom.CustomerPrice(1010); got != 1550 {
		t.Errorf("Expected 1550 (1515 rounded up to 50), got %v", got)
	}
}
