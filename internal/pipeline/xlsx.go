package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/hospitaldelmovil/cotizador/internal/history"
	"github.com/hospitaldelmovil/cotizador/internal/model"
)

// Workbook sheet names
const (
	SheetResults = "Resultados"
	SheetHistory = "Historial"
	SheetQuote   = "Cotización"
)

// RenderXLSX writes the results, history and quote sheets to path
func (r *Renderer) RenderXLSX(report *model.Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := r.WriteXLSX(f, report); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteXLSX writes the workbook to w
func (r *Renderer) WriteXLSX(w io.Writer, report *model.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetResults); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeResultsSheet(f, report); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetHistory); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeHistorySheet(f, report.History); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetQuote); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := r.writeQuoteSheetXLSX(f, report); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeResultsSheet(f *excelize.File, report *model.Report) error {
	rows := [][]interface{}{
		{"Origen", "ID", "Plataforma/Proveedor", "Precio (MXN)", "Rating", "Entrega", "Condición", "Enlace"},
	}
	local := make(map[string]bool, len(report.Local))
	for _, res := range report.Local {
		local[res.ID] = true
	}
	for _, res := range report.Merged {
		origin := "En línea"
		if local[res.ID] {
			origin = "Local"
		}
		rows = append(rows, []interface{}{
			origin, res.ID, res.Platform, res.PriceMXN, res.SellerRating,
			res.DeliveryTime, res.Condition.Label(), res.URL,
		})
	}
	return setRows(f, SheetResults, rows)
}

func writeHistorySheet(f *excelize.File, offers []model.HistoricalOffer) error {
	rows := [][]interface{}{{"ID", "Fecha", "Precio Ofrecido (MXN)", "Resultado"}}
	for _, h := range history.SortedByDateDesc(offers) {
		rows = append(rows, []interface{}{h.ID, h.Date.Format(model.DateLayout), h.OfferedPrice, outcome(h.Accepted)})
	}
	return setRows(f, SheetHistory, rows)
}

func (r *Renderer) writeQuoteSheetXLSX(f *excelize.File, report *model.Report) error {
	s := r.settings
	rows := [][]interface{}{
		{s.BrandName},
		{contactLine(s)},
		{},
		{"Cotización para:", report.Query.Subject()},
		{},
		{"Opción", "Precio (MXN)", "Entrega", "Notas", "Basado en"},
	}
	for _, opt := range report.Quotes {
		if opt.Draft.IsZero() {
			continue
		}
		rows = append(rows, []interface{}{
			opt.Title, opt.Draft.CustomerPrice, opt.Draft.DeliveryTime, opt.Draft.Notes, opt.Draft.BasedOnResultID,
		})
	}
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"Garantía:", s.WarrantyInfo},
		[]interface{}{"Vigencia:", s.QuoteValidity},
	)
	if s.ShowSalesperson {
		rows = append(rows, []interface{}{"Atendido por:", s.Salesperson})
	}
	if s.ShowDate {
		rows = append(rows, []interface{}{"Fecha:", r.now().Format(displayDate)})
	}
	return setRows(f, SheetQuote, rows)
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
