package model

import (
	"fmt"
	"strings"
)

// SearchQuery identifies the part being priced
type SearchQuery struct {
	DeviceType string `json:"deviceType" yaml:"deviceType"`
	Brand      string `json:"brand" yaml:"brand"`
	Model      string `json:"model" yaml:"model"`
	Part       string `json:"part" yaml:"part"`
	Variant1   string `json:"variant1" yaml:"variant1"`
	Variant2   string `json:"variant2" yaml:"variant2"`
}

// Key returns a normalized identity for the query, used for caching
func (q SearchQuery) Key() string {
	fields := []string{q.DeviceType, q.Brand, q.Model, q.Part, q.Variant1, q.Variant2}
	for i, f := range fields {
		fields[i] = strings.ToLower(strings.TrimSpace(f))
	}
	return strings.Join(fields, "|")
}

// Subject is the human-readable "<part> para <brand> <model>" line
func (q SearchQuery) Subject() string {
	return fmt.Sprintf("%s para %s %s", q.Part, q.Brand, q.Model)
}

// Variants joins the non-empty variants with " / "
func (q SearchQuery) Variants() string {
	var parts []string
	for _, v := range []string{q.Variant1, q.Variant2} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " / ")
}

// Validate checks the fields needed to match local suppliers
func (q SearchQuery) Validate() error {
	var missing []string
	if strings.TrimSpace(q.Brand) == "" {
		missing = append(missing, "brand")
	}
	if strings.TrimSpace(q.Model) == "" {
		missing = append(missing, "model")
	}
	if strings.TrimSpace(q.Part) == "" {
		missing = append(missing, "part")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing query fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DefaultQuery is the query the shop form opens with
func DefaultQuery() SearchQuery {
	return SearchQuery{
		DeviceType: "Celular",
		Brand:      "Apple",
		Model:      "iPhone 14 Pro",
		Part:       "Display",
		Variant1:   "OLED",
		Variant2:   "Original",
	}
}
