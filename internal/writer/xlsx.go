package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mshaim001-hue/ikap2/internal/models"
)

const (
	transactionsSheet = "Transactions"
	metadataSheet     = "Metadata"
)

// XLSXWriter writes credit rows to an xlsx workbook: one sheet with the
// rows and one with document metadata.
type XLSXWriter struct {
	IncludeHeader bool
}

// WriteToFile writes documents to an xlsx file at the given path.
func (w *XLSXWriter) WriteToFile(path string, docs []models.DocumentResult) error {
	f, err := w.build(docs)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %q: %w", path, err)
	}
	return nil
}

// Write writes the workbook to out.
func (w *XLSXWriter) Write(out io.Writer, docs []models.DocumentResult) error {
	f, err := w.build(docs)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *XLSXWriter) build(docs []models.DocumentResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := Columns(docs)
	rowNum := 1
	if err := setRow(f, transactionsSheet, rowNum, header); err != nil {
		f.Close()
		return nil, err
	}
	for _, doc := range docs {
		for _, row := range doc.Transactions {
			rowNum++
			if err := setRow(f, transactionsSheet, rowNum, Cells(header, doc.SourceFile, row)); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	if w.IncludeHeader {
		if _, err := f.NewSheet(metadataSheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to add metadata sheet: %w", err)
		}
		rowNum = 1
		if err := setRow(f, metadataSheet, rowNum, []string{SourceFileColumn, "key", "value"}); err != nil {
			f.Close()
			return nil, err
		}
		for _, doc := range docs {
			for _, key := range MetadataKeys(doc.Metadata) {
				rowNum++
				if err := setRow(f, metadataSheet, rowNum, []string{doc.SourceFile, key, doc.Metadata[key]}); err != nil {
					f.Close()
					return nil, err
				}
			}
		}
	}
	return f, nil
}

// setRow writes values as strings so amounts like "1500,00" keep their form.
func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}
