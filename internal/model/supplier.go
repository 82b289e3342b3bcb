package model

// SupplierRecord is one row of the local supplier sheet
type SupplierRecord struct {
	DeviceType   string  `json:"deviceType"`
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	Part         string  `json:"part"`
	Variant1     string  `json:"variant1"`
	Variant2     string  `json:"variant2"`
	ID           string  `json:"id"`       // llave
	Platform     string  `json:"platform"` // supplier name
	DeliveryTime string  `json:"deliveryTime"`
	PriceMXN     float64 `json:"priceMXN"`
}

// DeviceModel is a selectable model in the device catalog
type DeviceModel struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Model string `json:"model"`
}

// PartDetail lists the alternative names and type of a catalog part
type PartDetail struct {
	Names []string `json:"names"`
	Type  string   `json:"type"` // Interior, Exterior, Equipo
}

// Catalog is the device and part catalog offered by the search form
type Catalog struct {
	DeviceTypes []string                 `json:"deviceTypes"`
	Brands      []string                 `json:"brands"`
	Models      map[string][]DeviceModel `json:"models"`
	Parts       []string                 `json:"parts"`
	PartDetails map[string]PartDetail    `json:"partDetails"`
	Variants    []string                 `json:"variants"`
}
