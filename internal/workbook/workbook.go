package workbook

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mshaim001-hue/ikap2/internal/models"
)

// ReadSheets parses an xlsx workbook and returns its sheets in tab order.
// Cells are read as raw values so that number formats such as "#,##0.00" do
// not leak grouping separators into amounts. Numeric cells carrying a date
// format are rendered as DD.MM.YYYY. Blank cells are "". A sheet that cannot
// be read is returned with no rows rather than failing the whole workbook.
func ReadSheets(data []byte) ([]models.RawSheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	dates := newDateStyles(f)
	names := f.GetSheetList()
	sheets := make([]models.RawSheet, 0, len(names))
	for i, name := range names {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			rows = nil
		}
		dates.render(name, rows)
		sheets = append(sheets, models.RawSheet{Name: name, Index: i, Rows: rows})
	}
	return sheets, nil
}

// dateLayout is how statement dates are printed.
const dateLayout = "02.01.2006"

// dateStyles remembers which cell style indexes carry a date format.
type dateStyles struct {
	f       *excelize.File
	use1904 bool
	known   map[int]bool
}

func newDateStyles(f *excelize.File) *dateStyles {
	d := &dateStyles{f: f, known: map[int]bool{}}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.use1904 = *props.Date1904
	}
	return d
}

// render replaces date serials in rows with formatted dates, in place.
func (d *dateStyles) render(sheet string, rows [][]string) {
	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			serial, err := strconv.ParseFloat(value, 64)
			if err != nil || serial <= 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			idx, err := d.f.GetCellStyle(sheet, cell)
			if err != nil || !d.isDate(idx) {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, d.use1904)
			if err != nil {
				continue
			}
			row[c] = t.Format(dateLayout)
		}
	}
}

func (d *dateStyles) isDate(idx int) bool {
	if idx == 0 {
		return false
	}
	if v, ok := d.known[idx]; ok {
		return v
	}
	v := false
	if style, err := d.f.GetStyle(idx); err == nil && style != nil {
		switch {
		case style.CustomNumFmt != nil:
			v = isDateFormat(*style.CustomNumFmt)
		default:
			v = builtinDateFormat(style.NumFmt)
		}
	}
	d.known[idx] = v
	return v
}

// builtinDateFormat reports whether a built-in number format id shows a
// calendar date. Pure time formats are left alone.
func builtinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 17, id == 22:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormat looks for day or year tokens in a custom format code,
// ignoring quoted literals, escaped characters and bracketed sections such as
// colors or locales. Month alone is ambiguous with minutes.
func isDateFormat(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	runes := []rune(strings.ToLower(code))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuote:
			inQuote = r != '"'
		case inBracket:
			inBracket = r != ']'
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		case r == '\\':
			i++
		default:
			b.WriteRune(r)
		}
	}
	plain := b.String()
	return strings.ContainsAny(plain, "dy")
}

// NameFor derives the workbook file name from the source PDF name:
// "statement.pdf" becomes "statement.xlsx".
func NameFor(pdfName string) string {
	base := filepath.Base(strings.TrimSpace(pdfName))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "converted.xlsx"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".xlsx"
}
