package llm

import (
	"fmt"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

// Marketplaces the lookup is asked to search
var Marketplaces = []string{
	"amazon.com.mx",
	"mercadolibre.com.mx",
	"ebay.com",
	"aliexpress.com",
}

// ListingsPerSite caps the listings requested from each marketplace
const ListingsPerSite = 3

// DeliveryPostalCode is the shop's delivery destination
const DeliveryPostalCode = "03023"

const systemPrompt = "Respondes únicamente con un objeto JSON válido, sin texto adicional."

// BuildPrompt constructs the pricing prompt for a query
func BuildPrompt(q model.SearchQuery) string {
	sites := ""
	for i, site := range Marketplaces {
		sites += fmt.Sprintf("%d. %s\n", i+1, site)
	}

	return fmt.Sprintf(`Actúa como un experto agregador de datos de comercio electrónico. Tu tarea es encontrar precios de refacciones y dispositivos completos en sitios web específicos.

Busca el siguiente artículo:
- Tipo de Dispositivo: %s
- Marca: %s
- Modelo: %s
- Pieza: %s
- Variante 1: %s
- Variante 2: %s

Consulta los siguientes sitios web:
%s
Para cada sitio web, encuentra hasta %d anuncios. Para cada anuncio, proporciona la siguiente información:
- platform: El nombre del sitio web (ej. 'Amazon MX', 'MercadoLibre').
- priceMXN: El precio en Pesos Mexicanos. Si está en otra moneda, conviértelo. Debe ser un número.
- sellerRating: La calificación del vendedor, un número entre 0 y 5.
- deliveryTime: El tiempo de entrega estimado en días a Ciudad de México, CP %s.
- condition: "Nuevo" o "Usado".
- url: El enlace directo a la página del producto.
- id: Un ID único para este resultado (puedes usar una combinación de plataforma y precio).

Adicionalmente, busca el precio del dispositivo completo (%s %s), tanto nuevo como usado en excelentes condiciones, en los mismos sitios. Proporciona un precio bajo, promedio y alto estimado para cada condición.

Devuelve tu respuesta completa como un único objeto JSON minificado. No incluyas texto, explicaciones o formato markdown fuera del JSON. El JSON debe seguir esta estructura exacta:
{"partResults":[{"platform":"string","priceMXN":number,"sellerRating":number,"deliveryTime":"string","condition":"string","url":"string","id":"string"}],"devicePrices":{"new":{"low":number,"average":number,"high":number},"used":{"low":number,"average":number,"high":number}}}
`,
		q.DeviceType, q.Brand, q.Model, q.Part, q.Variant1, q.Variant2,
		sites, ListingsPerSite, DeliveryPostalCode,
		q.Brand, q.Model)
}
