package supplier

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

// ParseXLSX reads the supplier schema from an .xlsx workbook.
// An empty sheet name selects the first sheet.
func ParseXLSX(r io.Reader, sheet string) (*Feed, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return &Feed{Records: []model.SupplierRecord{}}, nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	b := &feedBuilder{feed: &Feed{Records: []model.SupplierRecord{}}}
	for i, row := range rows {
		b.add(i+1, row)
	}
	return b.feed, nil
}
