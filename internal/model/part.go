package model

// Condition is the physical condition of a listed part
type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "used"
)

// Label returns the customer-facing (es-MX) label
func (c Condition) Label() string {
	switch c {
	case ConditionUsed:
		return "Usado"
	default:
		return "Nuevo"
	}
}

// PartResult is one priced offer for a repair part
type PartResult struct {
	ID           string    `json:"id" yaml:"id"`
	Platform     string    `json:"platform" yaml:"platform"`
	PriceMXN     float64   `json:"priceMXN" yaml:"priceMXN"`
	SellerRating float64   `json:"sellerRating" yaml:"sellerRating"` // 0-5, not validated
	DeliveryTime string    `json:"deliveryTime" yaml:"deliveryTime"` // free text, e.g. "2-3 días"
	Condition    Condition `json:"condition" yaml:"condition"`
	URL          string    `json:"url" yaml:"url"`
}

// PriceBand is a low/average/high estimate for a full device
type PriceBand struct {
	Low     float64 `json:"low" yaml:"low"`
	Average float64 `json:"average" yaml:"average"`
	High    float64 `json:"high" yaml:"high"`
}

// DevicePrices holds the price bands for the whole device, new and used
type DevicePrices struct {
	New  PriceBand `json:"new" yaml:"new"`
	Used PriceBand `json:"used" yaml:"used"`
}

// LookupResponse is the payload returned by the remote pricing lookup
type LookupResponse struct {
	PartResults  []PartResult `json:"partResults"`
	DevicePrices DevicePrices `json:"devicePrices"`

	// Provenance, never part of the upstream payload
	Provider string   `json:"provider,omitempty"`
	Model    string   `json:"model,omitempty"`
	Cached   bool     `json:"cached,omitempty"`
	Fallback bool     `json:"fallback,omitempty"` // true when the mock payload was served
	Warnings []string `json:"warnings,omitempty"`
}
