package supplier

import (
	"strings"
	"testing"
)

const deviceSheet = `Dispositivo,Marca,Modelo,Etiqueta,ID_Modelo,Modelo_Activo
Celular,Samsung,S23,Galaxy S23,sam_s23,TRUE
Celular,Apple,iPhone 15,iPhone 15,app_i15,true
Tablet,Apple,iPad Air,iPad Air,app_ipa,
Celular,Apple,iPhone 8,iPhone 8,app_i8,FALSE
Celular,Samsung,A54,Galaxy A54,sam_a54,true
Smartwatch,Huawei,Watch 4,Watch 4,hua_w4,false
`

const partSheet = `Pieza,Tipo,Otros Nombres,Activo
Display,Exterior,"Pantalla, LCD , OLED",true
Batería,Interior,,TRUE
Tornillo,Consumible,,true
Flex,Interior,Cable flex,false
`

func TestParseDeviceCatalog(t *testing.T) {
	types, brands, models, err := ParseDeviceCatalog(strings.NewReader(deviceSheet))
	if err != nil {
		t.Fatalf("ParseDeviceCatalog failed: %v", err)
	}

	if strings.Join(types, ",") != "Celular,Tablet" {
		t.Errorf("Unexpected device types: %v", types)
	}
	if strings.Join(brands, ",") != "Apple,Samsung" {
		t.Errorf("Unexpected brands: %v", brands)
	}

	apple := models["Apple"]
	if len(apple) != 2 || apple[0].Label != "iPad Air" || apple[1].Label != "iPhone 15" {
		t.Errorf("Unexpected Apple models: %+v", apple)
	}

	samsung := models["Samsung"]
	if len(samsung) != 2 || samsung[0].ID != "sam_a54" || samsung[1].ID != "sam_s23" {
		t.Errorf("Expected Samsung models sorted by label, got %+v", samsung)
	}

	if _, ok := models["Huawei"]; ok {
		t.Error("Expected inactive-only brand to be absent")
	}
}

func TestParsePartCatalog(t *testing.T) {
	parts, details, err := ParsePartCatalog(strings.NewReader(partSheet))
	if err != nil {
		t.Fatalf("ParsePartCatalog failed: %v", err)
	}

	if strings.Join(parts, ",") != "Batería,Display" {
		t.Errorf("Unexpected parts: %v", parts)
	}

	display := details["Display"]
	if display.Type != "Exterior" {
		t.Errorf("Unexpected type: %s", display.Type)
	}
	if strings.Join(display.Names, "|") != "Display|Pantalla|LCD|OLED" {
		t.Errorf("Unexpected names: %v", display.Names)
	}

	if got := details["Batería"].Names; len(got) != 1 {
		t.Errorf("Expected only the part name, got %v", got)
	}
	if _, ok := details["Tornillo"]; ok {
		t.Error("Expected unknown part type to be dropped")
	}
	if _, ok := details["Flex"]; ok {
		t.Error("Expected inactive part to be dropped")
	}
}

func TestParseCatalog_HeaderOnly(t *testing.T) {
	types, brands, models, err := ParseDeviceCatalog(strings.NewReader("Dispositivo,Marca\n"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(types) != 0 || len(brands) != 0 || len(models) != 0 {
		t.Errorf("Expected empty catalog, got %v %v %v", types, brands, models)
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	if len(c.Brands) != 5 || len(c.Models["Apple"]) != 3 {
		t.Errorf("Unexpected default catalog: %+v", c)
	}
	if c.PartDetails["Display"].Type != "Exterior" {
		t.Errorf("Unexpected display details: %+v", c.PartDetails["Display"])
	}

	c.Variants[0] = "changed"
	if DefaultVariants[0] != "OLED" {
		t.Error("DefaultCatalog must not share the variants slice")
	}
}
