// Package quote derives the default customer quote from a result set and
// tracks staff edits on top of it.
package quote

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

const (
	// DefaultMarkup is the 35% margin over cost
	DefaultMarkup = 1.35
	// DefaultRoundingStep rounds customer prices up to a multiple of 10 pesos
	DefaultRoundingStep = 10
	// UnknownDeliveryDays ranks results with no parseable delivery time last
	UnknownDeliveryDays = 99
)

// Deriver applies the markup rule to a base result
type Deriver struct {
	Markup       float64
	RoundingStep float64
	Notes        string
}

// NewDeriver creates a deriver, falling back to defaults for zero values
func NewDeriver(markup, roundingStep float64, notes string) *Deriver {
	if markup <= 0 {
		markup = DefaultMarkup
	}
	if roundingStep <= 0 {
		roundingStep = DefaultRoundingStep
	}
	if notes == "" {
		notes = model.DefaultQuoteNotes
	}
	return &Deriver{Markup: markup, RoundingStep: roundingStep, Notes: notes}
}

// DefaultDeriver uses the shop's standard markup rule
func DefaultDeriver() *Deriver {
	return NewDeriver(DefaultMarkup, DefaultRoundingStep, model.DefaultQuoteNotes)
}

// DeriveDefault derives a draft with the standard markup rule
func DeriveDefault(results []model.PartResult, strategy model.Strategy) model.QuoteDraft {
	return DefaultDeriver().Derive(results, strategy)
}

// Derive ranks results by strategy and builds a draft from the first one.
// Returns a zero draft for empty results.
func (d *Deriver) Derive(results []model.PartResult, strategy model.Strategy) model.QuoteDraft {
	base, ok := Base(results, strategy)
	if !ok {
		return model.QuoteDraft{}
	}
	return d.FromResult(base)
}

// FromResult builds a draft from an explicitly chosen base result
func (d *Deriver) FromResult(base model.PartResult) model.QuoteDraft {
	return model.QuoteDraft{
		CustomerPrice:   d.CustomerPrice(base.PriceMXN),
		DeliveryTime:    base.DeliveryTime,
		Notes:           d.Notes,
		BasedOnResultID: base.ID,
	}
}

// CustomerPrice applies the markup and rounds up to the rounding step:
// ceil(cost * markup / step) * step
func (d *Deriver) CustomerPrice(cost float64) float64 {
	return math.Ceil(cost*d.Markup/d.RoundingStep) * d.RoundingStep
}

// Base returns the first result after ranking by strategy
func Base(results []model.PartResult, strategy model.Strategy) (model.PartResult, bool) {
	ranked := Rank(results, strategy)
	if len(ranked) == 0 {
		return model.PartResult{}, false
	}
	return ranked[0], true
}

// Rank returns a sorted copy of results.
//
// fastest: ascending delivery days, then ascending price.
// cheapest: ascending price only.
// Unknown strategies keep the input order.
func Rank(results []model.PartResult, strategy model.Strategy) []model.PartResult {
	ranked := make([]model.PartResult, len(results))
	copy(ranked, results)

	switch strategy {
	case model.StrategyFastest:
		sort.SliceStable(ranked, func(i, j int) bool {
			di, dj := DeliveryDays(ranked[i].DeliveryTime), DeliveryDays(ranked[j].DeliveryTime)
			if di != dj {
				return di < dj
			}
			return ranked[i].PriceMXN < ranked[j].PriceMXN
		})
	case model.StrategyCheapest:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].PriceMXN < ranked[j].PriceMXN
		})
	}

	return ranked
}

// DeliveryDays reads the leading integer of a delivery time such as
// "2-3 días". Text without a leading integer, or a leading zero, ranks as
// UnknownDeliveryDays.
func DeliveryDays(deliveryTime string) int {
	s := strings.TrimLeftFunc(deliveryTime, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return UnknownDeliveryDays
	}

	days, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		// clamped to MaxInt or MinInt, so the ranking order still holds
		return days
	}
	if err != nil || days == 0 {
		return UnknownDeliveryDays
	}
	return days
}
