package llm

import "github.com/hospitaldelmovil/cotizador/internal/model"

// MockProviderName marks responses served from the built-in payload
const MockProviderName = "mock"

// MockResponse returns the built-in sample payload for the default query.
// Every call returns a fresh copy.
func MockResponse() *model.LookupResponse {
	return &model.LookupResponse{
		PartResults: []model.PartResult{
			{ID: "ml1", Platform: "MercadoLibre", PriceMXN: 3500, SellerRating: 4.8, DeliveryTime: "2-3 días", Condition: model.ConditionNew, URL: "#"},
			{ID: "ml2", Platform: "MercadoLibre", PriceMXN: 3250, SellerRating: 4.9, DeliveryTime: "1-2 días", Condition: model.ConditionNew, URL: "#"},
			{ID: "amz1", Platform: "Amazon MX", PriceMXN: 3800, SellerRating: 4.7, DeliveryTime: "1 día", Condition: model.ConditionNew, URL: "#"},
			{ID: "ali1", Platform: "AliExpress", PriceMXN: 2100, SellerRating: 4.5, DeliveryTime: "15-20 días", Condition: model.ConditionNew, URL: "#"},
			{ID: "ali2", Platform: "AliExpress", PriceMXN: 2350, SellerRating: 4.6, DeliveryTime: "12-18 días", Condition: model.ConditionNew, URL: "#"},
			{ID: "ebay1", Platform: "Ebay", PriceMXN: 2900, SellerRating: 4.4, DeliveryTime: "10-15 días", Condition: model.ConditionUsed, URL: "#"},
		},
		DevicePrices: model.DevicePrices{
			New:  model.PriceBand{Low: 19000, Average: 21500, High: 23000},
			Used: model.PriceBand{Low: 12000, Average: 14000, High: 15500},
		},
		Provider: MockProviderName,
	}
}
