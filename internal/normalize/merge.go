// Package normalize turns the online and local supplier feeds into one
// canonical, deduplicated result set.
package normalize

import (
	"strings"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

const (
	// LocalSellerRating is assigned to local suppliers, the sheet has no rating
	LocalSellerRating = 5.0
	// LocalURL is the placeholder link for local suppliers
	LocalURL = "#"
)

// Merge concatenates remote then local and deduplicates by ID.
//
// An id keeps the position of its first occurrence but takes the value of its
// last one, so a local record overrides a remote record with the same id.
func Merge(remote, local []model.PartResult) []model.PartResult {
	merged := make([]model.PartResult, 0, len(remote)+len(local))
	position := make(map[string]int, len(remote)+len(local))

	for _, set := range [][]model.PartResult{remote, local} {
		for _, r := range set {
			if i, ok := position[r.ID]; ok {
				merged[i] = r
				continue
			}
			position[r.ID] = len(merged)
			merged = append(merged, r)
		}
	}

	return merged
}

// FilterLocal keeps the supplier records whose brand, model and part match
// the query exactly, ignoring case
func FilterLocal(records []model.SupplierRecord, q model.SearchQuery) []model.SupplierRecord {
	var matched []model.SupplierRecord
	for _, r := range records {
		if strings.EqualFold(r.Brand, q.Brand) &&
			strings.EqualFold(r.Model, q.Model) &&
			strings.EqualFold(r.Part, q.Part) {
			matched = append(matched, r)
		}
	}
	return matched
}

// FromSupplier maps a supplier record into the canonical result shape
func FromSupplier(r model.SupplierRecord) model.PartResult {
	return model.PartResult{
		ID:           r.ID,
		Platform:     r.Platform,
		PriceMXN:     r.PriceMXN,
		SellerRating: LocalSellerRating,
		DeliveryTime: r.DeliveryTime,
		Condition:    model.ConditionNew,
		URL:          LocalURL,
	}
}

// LocalResults filters the supplier records for the query and maps them
func LocalResults(records []model.SupplierRecord, q model.SearchQuery) []model.PartResult {
	matched := FilterLocal(records, q)
	results := make([]model.PartResult, 0, len(matched))
	for _, r := range matched {
		results = append(results, FromSupplier(r))
	}
	return results
}
