// Package supplier reads the local supplier sheet and the device/part catalog.
package supplier

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

// FeedColumns is the fixed positional schema of the supplier sheet:
// deviceType, brand, model, part, variant1, variant2, id, platform, deliveryTime, priceMXN
const FeedColumns = 10

var (
	// ErrShortRow marks a row with fewer than FeedColumns fields
	ErrShortRow = errors.New("short row")
	// ErrBadPrice marks a row whose price column is not a number
	ErrBadPrice = errors.New("invalid price")
)

// RowError describes a skipped row
type RowError struct {
	Line int
	Raw  string
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Raw)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Diagnostics counts what happened to each row of a feed
type Diagnostics struct {
	TotalRows int
	Accepted  int
	ShortRows int
	BadPrice  int
	Errors    []*RowError
}

// Skipped returns the number of dropped rows
func (d Diagnostics) Skipped() int {
	return d.TotalRows - d.Accepted
}

// Feed is a parsed supplier sheet
type Feed struct {
	Records     []model.SupplierRecord
	Diagnostics Diagnostics
}

// Warnings returns one human-readable line per skipped row
func (f *Feed) Warnings() []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.Diagnostics.Errors))
	for _, e := range f.Diagnostics.Errors {
		out = append(out, "Skipping supplier row: "+e.Error())
	}
	return out
}

// ParseFeed parses the headerless 10-column supplier CSV.
// Blank lines are ignored; malformed rows are recorded and skipped.
func ParseFeed(r io.Reader) (*Feed, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	b := &feedBuilder{feed: &Feed{Records: []model.SupplierRecord{}}}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				b.skip(perr.Line, "", perr.Err)
				continue
			}
			return nil, fmt.Errorf("read supplier csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		b.add(line, row)
	}

	return b.feed, nil
}

// feedBuilder turns raw rows into records, shared by the CSV and XLSX readers
type feedBuilder struct {
	feed *Feed
}

func (b *feedBuilder) add(line int, row []string) {
	if isBlank(row) {
		return
	}

	b.feed.Diagnostics.TotalRows++

	cols := make([]string, len(row))
	for i, c := range row {
		cols[i] = strings.TrimSpace(c)
	}

	if len(cols) < FeedColumns {
		b.feed.Diagnostics.ShortRows++
		b.skip(line, strings.Join(cols, ","), ErrShortRow)
		return
	}

	price, ok := parsePrice(cols[9])
	if !ok {
		b.feed.Diagnostics.BadPrice++
		b.skip(line, strings.Join(cols, ","), ErrBadPrice)
		return
	}

	b.feed.Records = append(b.feed.Records, model.SupplierRecord{
		DeviceType:   cols[0],
		Brand:        cols[1],
		Model:        cols[2],
		Part:         cols[3],
		Variant1:     cols[4],
		Variant2:     cols[5],
		ID:           cols[6],
		Platform:     cols[7],
		DeliveryTime: cols[8],
		PriceMXN:     price,
	})
	b.feed.Diagnostics.Accepted++
}

func (b *feedBuilder) skip(line int, raw string, err error) {
	b.feed.Diagnostics.Errors = append(b.feed.Diagnostics.Errors, &RowError{Line: line, Raw: raw, Err: err})
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parsePrice reads the leading decimal number of s, so "1500 MXN" is 1500.
// Text without a leading number is rejected.
func parsePrice(s string) (float64, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && isDigit(s[end]) {
			end++
		}
	}
	if end == start || (end == start+1 && s[start] == '.') {
		return 0, false
	}

	// optional exponent, only when followed by digits
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		if exp < len(s) && isDigit(s[exp]) {
			for exp < len(s) && isDigit(s[exp]) {
				exp++
			}
			end = exp
		}
	}

	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
