package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/hospitaldelmovil/cotizador/internal/history"
	"github.com/hospitaldelmovil/cotizador/internal/model"
)

// exportPrefix starts every exported quote file name
const exportPrefix = "Cotizacion-HMOV"

// displayDate is how dates are shown to customers (es-MX short date)
const displayDate = "2/1/2006"

var mxPrinter = message.NewPrinter(language.MustParse("es-MX"))

// formatMXN formats a peso amount the way the shop prints prices
func formatMXN(v float64) string {
	return "$" + mxPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// ExportName returns the file name of an exported quote, without extension
func ExportName(q model.SearchQuery, at time.Time) string {
	compact := strings.Join(strings.Fields(q.Model), "")
	return fmt.Sprintf("%s-%s-%d", exportPrefix, compact, at.UnixMilli())
}

// Renderer writes reports in the supported output formats
type Renderer struct {
	settings model.QuoteSettings
	now      func() time.Time
}

// NewRenderer creates a renderer using settings for the quote sheet
func NewRenderer(settings model.QuoteSettings) *Renderer {
	return &Renderer{settings: settings, now: time.Now}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	return writeFile(path, data)
}

// RenderMarkdown writes the analysis and quote sheet as Markdown
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder
	r.WriteMarkdown(&b, report)
	return writeFile(path, []byte(b.String()))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// WriteMarkdown renders the report to w
func (r *Renderer) WriteMarkdown(w io.Writer, report *model.Report) {
	q := report.Query
	fmt.Fprintf(w, "# Análisis de Precios: %s\n\n", q.Subject())
	if v := q.Variants(); v != "" {
		fmt.Fprintf(w, "**Variantes:** %s  \n", v)
	}
	fmt.Fprintf(w, "**Fecha de búsqueda:** %s  \n", report.SearchedAt.Format(displayDate))
	fmt.Fprintf(w, "**Fuente en línea:** %s", sourceLabel(report.Lookup))
	fmt.Fprintf(w, "\n\n")

	if len(report.Warnings) > 0 {
		fmt.Fprintf(w, "> **Avisos**\n")
		for _, warn := range report.Warnings {
			fmt.Fprintf(w, "> - %s\n", warn)
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "## 1. Resultados\n\n")
	writeResultsTable(w, "Resultados en Línea", report.Online)
	writeResultsTable(w, "Proveedores Locales", report.Local)

	fmt.Fprintf(w, "## 2. Análisis\n\n")
	writeAnalysis(w, report)

	fmt.Fprintf(w, "## 3. Historial de Cotizaciones (Misma Pieza)\n\n")
	writeHistory(w, report.History)

	fmt.Fprintf(w, "## 4. Cotización para Cliente\n\n")
	r.writeQuoteSheet(w, report)
}

func sourceLabel(m model.LookupMeta) string {
	label := m.Provider
	if label == "" {
		label = "mock"
	}
	if m.Model != "" {
		label += " (" + m.Model + ")"
	}
	if m.Cached {
		label += ", en caché"
	}
	if m.Fallback {
		label += ", datos de ejemplo"
	}
	return label
}

func writeResultsTable(w io.Writer, title string, results []model.PartResult) {
	fmt.Fprintf(w, "### %s\n\n", title)
	fmt.Fprintf(w, "| Plataforma/Proveedor | Precio (MXN) | Rating | Entrega | Condición | Enlace |\n")
	fmt.Fprintf(w, "|---|---|---|---|---|---|\n")
	if len(results) == 0 {
		fmt.Fprintf(w, "| No se encontraron resultados. | | | | | |\n\n")
		return
	}
	for _, res := range results {
		link := "-"
		if res.URL != "" && res.URL != "#" {
			link = fmt.Sprintf("[Ver](%s)", res.URL)
		}
		fmt.Fprintf(w, "| %s | %s | %.1f ★ | %s | %s | %s |\n",
			escapeCell(res.Platform), formatMXN(res.PriceMXN), res.SellerRating,
			escapeCell(res.DeliveryTime), res.Condition.Label(), link)
	}
	fmt.Fprintf(w, "\n")
}

func writeAnalysis(w io.Writer, report *model.Report) {
	a := report.Analysis
	if len(a.Chart) == 0 {
		fmt.Fprintf(w, "Sin resultados para analizar.\n\n")
		return
	}

	fmt.Fprintf(w, "| Indicador | Precio (MXN) | Posición |\n")
	fmt.Fprintf(w, "|---|---|---|\n")
	for _, ind := range a.Indicators.Line {
		fmt.Fprintf(w, "| %s | %s | %d |\n", ind.Name, formatMXN(ind.Price), ind.ChartPosition)
	}
	for _, ind := range a.Historical.Accepted {
		fmt.Fprintf(w, "| %s | %s | %d |\n", ind.Name, formatMXN(ind.Price), ind.ChartPosition)
	}
	for _, ind := range a.Historical.Rejected {
		fmt.Fprintf(w, "| %s | %s | %d |\n", ind.Name, formatMXN(ind.Price), ind.ChartPosition)
	}
	fmt.Fprintf(w, "\n")

	dp := report.DevicePrices
	fmt.Fprintf(w, "**Precio del equipo nuevo:** %s - %s (promedio %s)  \n",
		formatMXN(dp.New.Low), formatMXN(dp.New.High), formatMXN(dp.New.Average))
	fmt.Fprintf(w, "**Precio del equipo usado:** %s - %s (promedio %s)  \n",
		formatMXN(dp.Used.Low), formatMXN(dp.Used.High), formatMXN(dp.Used.Average))
	fmt.Fprintf(w, "**Pieza vs. equipo nuevo:** %.1f%%  \n", a.Ratios.New)
	fmt.Fprintf(w, "**Pieza vs. equipo usado:** %.1f%%\n\n", a.Ratios.Used)
}

func writeHistory(w io.Writer, offers []model.HistoricalOffer) {
	if len(offers) == 0 {
		fmt.Fprintf(w, "Sin cotizaciones previas.\n\n")
		return
	}
	fmt.Fprintf(w, "| Fecha | Precio Ofrecido (MXN) | Resultado |\n")
	fmt.Fprintf(w, "|---|---|---|\n")
	for _, h := range history.SortedByDateDesc(offers) {
		fmt.Fprintf(w, "| %s | %s | %s |\n", h.Date.Format(displayDate), formatMXN(h.OfferedPrice), outcome(h.Accepted))
	}
	fmt.Fprintf(w, "\n")
}

func outcome(accepted bool) string {
	if accepted {
		return "ACEPTADO"
	}
	return "NO ACEPTADO"
}

func (r *Renderer) writeQuoteSheet(w io.Writer, report *model.Report) {
	s := r.settings
	fmt.Fprintf(w, "### %s\n\n", s.BrandName)
	if contact := contactLine(s); contact != "" {
		fmt.Fprintf(w, "%s\n\n", contact)
	}

	fmt.Fprintf(w, "Cotización para: **%s**\n\n", report.Query.Subject())
	wrote := false
	for _, opt := range report.Quotes {
		if opt.Draft.IsZero() {
			continue
		}
		wrote = true
		fmt.Fprintf(w, "#### %s\n\n", opt.Title)
		fmt.Fprintf(w, "- **Precio:** %s\n", formatMXN(opt.Draft.CustomerPrice))
		fmt.Fprintf(w, "- **Entrega:** %s\n", opt.Draft.DeliveryTime)
		fmt.Fprintf(w, "- **Notas:** %s\n\n", opt.Draft.Notes)
	}
	if !wrote {
		fmt.Fprintf(w, "Sin opciones de cotización.\n\n")
	}

	fmt.Fprintf(w, "---\n\n")
	fmt.Fprintf(w, "**Garantía:** %s  \n", s.WarrantyInfo)
	fmt.Fprintf(w, "%s\n", r.footerLine())
}

func contactLine(s model.QuoteSettings) string {
	var parts []string
	if s.ShowPhoneNumber && s.PhoneNumber != "" {
		parts = append(parts, "Tel: "+s.PhoneNumber)
	}
	if s.ShowEmail && s.Email != "" {
		parts = append(parts, s.Email)
	}
	return strings.Join(parts, " | ")
}

func (r *Renderer) footerLine() string {
	s := r.settings
	var parts []string
	if s.ShowSalesperson {
		parts = append(parts, "Atendido por: "+s.Salesperson)
	}
	if s.ShowDate {
		parts = append(parts, "Fecha: "+r.now().Format(displayDate))
	}
	parts = append(parts, "**Vigencia:** "+s.QuoteValidity)
	return strings.Join(parts, " | ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// RenderSummary prints a short overview to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	r.WriteSummary(os.Stdout, report)
}

// WriteSummary writes a short overview to w
func (r *Renderer) WriteSummary(w io.Writer, report *model.Report) {
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(w, "%s\n", report.Query.Subject())
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", 60))

	fmt.Fprintf(w, "Resultados: %d en línea, %d locales, %d combinados\n",
		len(report.Online), len(report.Local), len(report.Merged))
	fmt.Fprintf(w, "Fuente: %s\n", sourceLabel(report.Lookup))

	for _, name := range []model.IndicatorName{model.IndicatorMinimum, model.IndicatorAverage, model.IndicatorMaximum} {
		if ind, ok := report.Analysis.Indicators.Find(name); ok {
			fmt.Fprintf(w, "  %-14s %s\n", ind.Name+":", formatMXN(ind.Price))
		}
	}

	fmt.Fprintf(w, "\nCotizaciones:\n")
	for _, opt := range report.Quotes {
		if opt.Draft.IsZero() {
			fmt.Fprintf(w, "  %-14s -\n", opt.Title+":")
			continue
		}
		fmt.Fprintf(w, "  %-14s %s (%s)\n", opt.Title+":", formatMXN(opt.Draft.CustomerPrice), opt.Draft.DeliveryTime)
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintf(w, "\nAvisos:\n")
		for _, warn := range report.Warnings {
			fmt.Fprintf(w, "  ! %s\n", warn)
		}
	}
	fmt.Fprintf(w, "\n")
}
