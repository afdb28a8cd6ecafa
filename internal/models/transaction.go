package models

import (
	"bytes"
	"encoding/json"
)

// RawSheet is one tab of the converted spreadsheet. Empty cells are "".
type RawSheet struct {
	Name  string
	Index int
	Rows  [][]string
}

// ProcessedTable holds the credit rows extracted from one section of a sheet.
type ProcessedTable struct {
	PageNumber int      `json:"page_number"`
	BankName   string   `json:"bank_name,omitempty"`
	Columns    []Column `json:"columns"`
	Rows       []Record `json:"rows"`
}

// StatementExtraction is the result of processing one statement PDF.
type StatementExtraction struct {
	BankName string            `json:"bank_name,omitempty"`
	Metadata map[string]string `json:"metadata"`
	Tables   []ProcessedTable  `json:"tables"`

	// Workbook is the spreadsheet returned by the conversion service, kept
	// so the caller can inspect or store it.
	Workbook     []byte `json:"-"`
	WorkbookName string `json:"-"`
}

// TotalRows returns the number of transaction rows across all tables.
func (s *StatementExtraction) TotalRows() int {
	n := 0
	for _, t := range s.Tables {
		n += len(t.Rows)
	}
	return n
}

// FlatRow is a single merged output row: page, bank, then the record fields.
type FlatRow struct {
	PageNumber int
	BankName   string
	Values     Record
}

// Keys returns the output column names of the row in order.
func (r FlatRow) Keys() []string {
	keys := []string{"page_number", "bank_name"}
	for _, c := range r.Values.Columns() {
		keys = append(keys, string(c))
	}
	return keys
}

// MarshalJSON keeps the record's column order in the JSON object.
func (r FlatRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.WriteString(`"page_number":`)
	page, _ := json.Marshal(r.PageNumber)
	buf.Write(page)
	buf.WriteString(`,"bank_name":`)
	if r.BankName == "" {
		buf.WriteString("null")
	} else {
		name, err := json.Marshal(r.BankName)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
	}
	for _, c := range r.Values.Columns() {
		if c == "page_number" || c == "bank_name" {
			continue
		}
		key, err := json.Marshal(string(c))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Values.Get(c))
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DocumentResult is the outcome for one input file as reported by the CLI
// and the HTTP API. Error is set when the document could not be processed.
type DocumentResult struct {
	SourceFile   string            `json:"source_file"`
	Metadata     map[string]string `json:"metadata"`
	Transactions []FlatRow         `json:"transactions"`
	Error        string            `json:"error,omitempty"`
	WorkbookID   string            `json:"workbook_id,omitempty"`
}
