package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/mshaim001-hue/ikap2/internal/models"
)

// SourceFileColumn names the column that records which input a row came from.
const SourceFileColumn = "source_file"

// CSVWriter writes credit rows to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes documents to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, docs []models.DocumentResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, docs)
}

// Write writes the rows of every document as one CSV table. The column set
// is the union of all row keys in first-seen order, led by source_file.
func (w *CSVWriter) Write(out io.Writer, docs []models.DocumentResult) error {
	writer := csv.NewWriter(out)

	// Metadata as comment rows
	if w.IncludeHeader {
		for _, doc := range docs {
			if err := writer.Write([]string{"# " + SourceFileColumn, doc.SourceFile}); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
			for _, key := range MetadataKeys(doc.Metadata) {
				if err := writer.Write([]string{"# " + key, doc.Metadata[key]}); err != nil {
					return fmt.Errorf("failed to write CSV metadata: %w", err)
				}
			}
		}
	}

	header := Columns(docs)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, doc := range docs {
		for _, row := range doc.Transactions {
			if err := writer.Write(Cells(header, doc.SourceFile, row)); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// Columns returns source_file followed by the union of row keys across
// docs, in the order they are first seen.
func Columns(docs []models.DocumentResult) []string {
	columns := []string{SourceFileColumn}
	seen := map[string]bool{SourceFileColumn: true}
	for _, doc := range docs {
		for _, row := range doc.Transactions {
			for _, key := range row.Keys() {
				if !seen[key] {
					seen[key] = true
					columns = append(columns, key)
				}
			}
		}
	}
	return columns
}

// Cells lays row out along columns. Missing values are blank.
func Cells(columns []string, source string, row models.FlatRow) []string {
	cells := make([]string, len(columns))
	for i, c := range columns {
		switch c {
		case SourceFileColumn:
			cells[i] = source
		case "page_number":
			cells[i] = strconv.Itoa(row.PageNumber)
		case "bank_name":
			cells[i] = row.BankName
		default:
			cells[i] = row.Values.Get(models.Column(c))
		}
	}
	return cells
}

// MetadataKeys returns the printable metadata keys in sorted order. The raw
// header block is multi-line and left out.
func MetadataKeys(meta map[string]string) []string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		if k == "raw_header" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
