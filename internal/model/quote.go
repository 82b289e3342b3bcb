package model

// DefaultQuoteNotes is the note attached to every derived quote
const DefaultQuoteNotes = "Incluye instalación y mano de obra profesional."

// Strategy selects which result a default quote is based on
type Strategy string

const (
	StrategyFastest  Strategy = "fastest"
	StrategyCheapest Strategy = "cheapest"
)

// Title returns the quote card title for the strategy
func (s Strategy) Title() string {
	switch s {
	case StrategyFastest:
		return "Entrega Rápida"
	case StrategyCheapest:
		return "Más Económica"
	default:
		return string(s)
	}
}

// QuoteDraft is the editable customer-facing proposal
type QuoteDraft struct {
	CustomerPrice   float64 `json:"customerPrice"`
	DeliveryTime    string  `json:"deliveryTime"`
	Notes           string  `json:"notes"`
	BasedOnResultID string  `json:"basedOnResultId"` // last selection pointer, not re-validated
}

// IsZero reports whether the draft was derived from nothing
func (d QuoteDraft) IsZero() bool {
	return d == QuoteDraft{}
}

// QuoteState tracks whether a draft still reflects its derivation
type QuoteState string

const (
	QuoteDerived        QuoteState = "derived"
	QuoteManuallyEdited QuoteState = "manually_edited"
)

// QuoteOption is one quote card: a strategy and its current draft
type QuoteOption struct {
	Strategy Strategy   `json:"strategy"`
	Title    string     `json:"title"`
	State    QuoteState `json:"state"`
	Draft    QuoteDraft `json:"draft"`
}

// QuoteSettings is the branding of the exported quote sheet
type QuoteSettings struct {
	BrandName       string `json:"brand_name" yaml:"brand_name" mapstructure:"brand_name"`
	PhoneNumber     string `json:"phone_number" yaml:"phone_number" mapstructure:"phone_number"`
	Email           string `json:"email" yaml:"email" mapstructure:"email"`
	ShowPhoneNumber bool   `json:"show_phone_number" yaml:"show_phone_number" mapstructure:"show_phone_number"`
	ShowEmail       bool   `json:"show_email" yaml:"show_email" mapstructure:"show_email"`
	QuoteValidity   string `json:"quote_validity" yaml:"quote_validity" mapstructure:"quote_validity"`
	WarrantyInfo    string `json:"warranty_info" yaml:"warranty_info" mapstructure:"warranty_info"`
	Salesperson     string `json:"salesperson" yaml:"salesperson" mapstructure:"salesperson"`
	ShowSalesperson bool   `json:"show_salesperson" yaml:"show_salesperson" mapstructure:"show_salesperson"`
	ShowDate        bool   `json:"show_date" yaml:"show_date" mapstructure:"show_date"`
}

// DefaultQuoteSettings returns the shop's default branding
func DefaultQuoteSettings() QuoteSettings {
	return QuoteSettings{
		BrandName:       "Hospital del Móvil",
		PhoneNumber:     "55-1234-5678",
		Email:           "contacto@hospitaldelmovil.com",
		ShowPhoneNumber: true,
		ShowEmail:       true,
		QuoteValidity:   "7 días",
		WarrantyInfo:    "Garantía de 90 días en la instalación y pieza.",
		Salesperson:     "Juan Pérez",
		ShowSalesperson: true,
		ShowDate:        true,
	}
}
