package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

// ErrMalformedResponse is returned when the model's answer is not the
// expected JSON shape
var ErrMalformedResponse = errors.New("invalid data structure from API")

type wirePartResult struct {
	ID           string  `json:"id"`
	Platform     string  `json:"platform"`
	PriceMXN     float64 `json:"priceMXN"`
	SellerRating float64 `json:"sellerRating"`
	DeliveryTime string  `json:"deliveryTime"`
	Condition    string  `json:"condition"`
	URL          string  `json:"url"`
}

type wireLookup struct {
	PartResults  *[]wirePartResult   `json:"partResults"`
	DevicePrices *model.DevicePrices `json:"devicePrices"`
}

// ParseLookupJSON decodes a model answer into a lookup payload. Markdown code
// fences and text around the outermost JSON object are ignored. Both
// partResults and devicePrices must be present.
func ParseLookupJSON(text string) (*model.LookupResponse, error) {
	body := extractJSONObject(text)
	if body == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrMalformedResponse)
	}

	var wire wireLookup
	if err := json.Unmarshal([]byte(body), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if wire.PartResults == nil || wire.DevicePrices == nil {
		return nil, fmt.Errorf("%w: missing partResults or devicePrices", ErrMalformedResponse)
	}

	results := make([]model.PartResult, 0, len(*wire.PartResults))
	for i, r := range *wire.PartResults {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			// keeps unnamed listings from collapsing into one on merge
			id = fmt.Sprintf("r%d", i+1)
		}
		results = append(results, model.PartResult{
			ID:           id,
			Platform:     r.Platform,
			PriceMXN:     r.PriceMXN,
			SellerRating: r.SellerRating,
			DeliveryTime: r.DeliveryTime,
			Condition:    ParseCondition(r.Condition),
			URL:          r.URL,
		})
	}

	return &model.LookupResponse{
		PartResults:  results,
		DevicePrices: *wire.DevicePrices,
	}, nil
}

// ParseCondition maps "Nuevo"/"Usado" (or "new"/"used") to a Condition.
// Anything else reads as new.
func ParseCondition(s string) model.Condition {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "usado", "used":
		return model.ConditionUsed
	default:
		return model.ConditionNew
	}
}

func extractJSONObject(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ""
	}
	return text[start : end+1]
}
