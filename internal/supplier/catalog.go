package supplier

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

// Part types offered by the search form
var catalogPartTypes = map[string]bool{
	"Interior": true,
	"Exterior": true,
	"Equipo":   true,
}

// DefaultVariants are the variant choices offered for every part
var DefaultVariants = []string{"OLED", "LCD", "Original", "Compatible", "Grado A"}

// ParseDeviceCatalog reads the device sheet with headers
// Dispositivo, Marca, Modelo, Etiqueta, ID_Modelo, Modelo_Activo.
// Rows with Modelo_Activo=false are dropped.
func ParseDeviceCatalog(r io.Reader) (deviceTypes, brands []string, models map[string][]model.DeviceModel, err error) {
	rows, err := readHeaderCSV(r)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse device catalog: %w", err)
	}

	typeSet := make(map[string]bool)
	brandSet := make(map[string]bool)
	models = make(map[string][]model.DeviceModel)

	for _, row := range rows {
		if isFalse(row["Modelo_Activo"]) {
			continue
		}
		typeSet[row["Dispositivo"]] = true
		brandSet[row["Marca"]] = true
		models[row["Marca"]] = append(models[row["Marca"]], model.DeviceModel{
			ID:    row["ID_Modelo"],
			Label: row["Etiqueta"],
			Model: row["Modelo"],
		})
	}

	col := collate.New(language.Spanish)
	for brand := range models {
		list := models[brand]
		sort.SliceStable(list, func(i, j int) bool {
			return col.CompareString(list[i].Label, list[j].Label) < 0
		})
	}

	return sortedKeys(typeSet), sortedKeys(brandSet), models, nil
}

// ParsePartCatalog reads the parts sheet with headers
// Pieza, Tipo, Otros Nombres, Activo.
// Inactive parts and parts outside Interior/Exterior/Equipo are dropped.
func ParsePartCatalog(r io.Reader) (parts []string, details map[string]model.PartDetail, err error) {
	rows, err := readHeaderCSV(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse part catalog: %w", err)
	}

	nameSet := make(map[string]bool)
	details = make(map[string]model.PartDetail)

	for _, row := range rows {
		if isFalse(row["Activo"]) || !catalogPartTypes[row["Tipo"]] {
			continue
		}

		name := row["Pieza"]
		nameSet[name] = true

		names := []string{name}
		for _, alt := range strings.Split(row["Otros Nombres"], ",") {
			if alt = strings.TrimSpace(alt); alt != "" {
				names = append(names, alt)
			}
		}
		details[name] = model.PartDetail{Names: names, Type: row["Tipo"]}
	}

	return sortedKeys(nameSet), details, nil
}

// readHeaderCSV maps every data row onto the first row's headers.
// Missing trailing cells read as "".
func readHeaderCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(strings.Trim(h, `"`))
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isFalse(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "false")
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultCatalog is used when no catalog sheets are configured or they fail to load
func DefaultCatalog() model.Catalog {
	return model.Catalog{
		DeviceTypes: []string{"Celular", "Tablet", "Smartwatch"},
		Brands:      []string{"Samsung", "Apple", "Xiaomi", "Motorola", "Huawei"},
		Models:      defaultModels(),
		Parts:       []string{"Display", "Batería", "Cámara Trasera", "Puerto de Carga"},
		PartDetails: defaultPartDetails(),
		Variants:    append([]string(nil), DefaultVariants...),
	}
}

func defaultModels() map[string][]model.DeviceModel {
	return map[string][]model.DeviceModel{
		"Samsung": {
			{ID: "sam_s23", Label: "Galaxy S23", Model: "S23"},
			{ID: "sam_a54", Label: "Galaxy A54", Model: "A54"},
			{ID: "sam_zf5", Label: "Galaxy Z Fold 5", Model: "Z Fold 5"},
		},
		"Apple": {
			{ID: "app_i15", Label: "iPhone 15", Model: "iPhone 15"},
			{ID: "app_i14p", Label: "iPhone 14 Pro", Model: "iPhone 14 Pro"},
			{ID: "app_ise", Label: "iPhone SE", Model: "iPhone SE"},
		},
		"Xiaomi": {
			{ID: "xia_rn12", Label: "Redmi Note 12", Model: "Note 12"},
			{ID: "xia_pf5", Label: "Poco F5", Model: "F5"},
			{ID: "xia_x13t", Label: "Xiaomi 13T", Model: "13T"},
		},
		"Motorola": {
			{ID: "mot_g84", Label: "Moto G84", Model: "G84"},
			{ID: "mot_e40", Label: "Edge 40", Model: "Edge 40"},
			{ID: "mot_r40u", Label: "Razr 40 Ultra", Model: "Razr 40 Ultra"},
		},
		"Huawei": {
			{ID: "hua_p60p", Label: "P60 Pro", Model: "P60 Pro"},
			{ID: "hua_n11", Label: "Nova 11", Model: "Nova 11"},
			{ID: "hua_mx3", Label: "Mate X3", Model: "Mate X3"},
		},
	}
}

func defaultPartDetails() map[string]model.PartDetail {
	return map[string]model.PartDetail{
		"Display":         {Names: []string{"Display", "Pantalla", "LCD", "OLED"}, Type: "Exterior"},
		"Batería":         {Names: []string{"Batería", "Battery", "Pila"}, Type: "Interior"},
		"Cámara Trasera":  {Names: []string{"Cámara Trasera", "Cámara Principal", "Main Camera"}, Type: "Equipo"},
		"Puerto de Carga": {Names: []string{"Puerto de Carga", "Conector USB", "Puerto USB-C"}, Type: "Interior"},
	}
}
