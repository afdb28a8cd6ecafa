package parser

import (
	"github.com/rs/zerolog"

	"github.com/mshaim001-hue/ikap2/internal/models"
)

// Engine turns converted spreadsheet sheets into tables of credit rows.
// It keeps no state between calls and is safe for concurrent use.
type Engine struct {
	log zerolog.Logger
}

// NewEngine returns an engine that reports its decisions to log.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log.With().Str("component", "engine").Logger()}
}

// ProcessSheet extracts one table per section of sheet. Sections without a
// credit column or without qualifying rows are skipped.
func (e *Engine) ProcessSheet(sheet models.RawSheet, bankName string) []models.ProcessedTable {
	log := e.log.With().Str("sheet", sheet.Name).Int("page", sheet.Index+1).Logger()

	sections := SplitSections(sheet.Rows)
	if len(sections) == 0 {
		log.Debug().Msg("sheet is empty")
		return nil
	}
	log.Debug().Int("sections", len(sections)).Msg("split sheet")

	var tables []models.ProcessedTable
	for i, sec := range sections {
		secLog := log.With().Int("section", i).Int("header_row", sec.HeaderIndex).Logger()
		table, ok := e.processSection(secLog, sheet.Rows, sec)
		if !ok {
			continue
		}
		table.PageNumber = sheet.Index + 1
		table.BankName = bankName
		tables = append(tables, table)
	}
	return tables
}

func (e *Engine) processSection(log zerolog.Logger, rows [][]string, sec Section) (models.ProcessedTable, bool) {
	if sec.HeaderIndex < 0 {
		return models.ProcessedTable{}, false
	}
	if !sec.Detected {
		log.Warn().Str("strategy", sec.Strategy).Msg("no header found, using first row")
	} else {
		log.Debug().
			Str("strategy", sec.Strategy).
			Bool("confident", sec.Confident).
			Msg("header resolved")
	}

	body := sec.Body(rows)
	width := len(sec.Header)
	for _, r := range body {
		if len(r) > width {
			width = len(r)
		}
	}
	columns := alignColumns(NormalizeColumns(sec.Header), width)
	if !hasColumn(columns, models.ColumnCredit) {
		log.Debug().Strs("header", sec.Header).Msg("no credit column")
		return models.ProcessedTable{}, false
	}

	records := Consolidate(columns, body)
	effective := effectiveColumns(columns)
	table := models.ProcessedTable{Columns: effective}
	dropped := make(map[Verdict]int)
	for _, rec := range records {
		out, verdict := Classify(effective, rec)
		if !verdict.Kept() {
			dropped[verdict]++
			log.Debug().
				Str("verdict", string(verdict)).
				Str("credit", rec.Get(models.ColumnCredit)).
				Str("date", rec.Get(models.ColumnDate)).
				Msg("row dropped")
			continue
		}
		table.Rows = append(table.Rows, out)
	}

	ev := log.Debug().
		Int("body_rows", len(body)).
		Int("records", len(records)).
		Int("kept", len(table.Rows))
	for v, n := range dropped {
		ev = ev.Int(string(v), n)
	}
	ev.Msg("section processed")

	if len(table.Rows) == 0 {
		return models.ProcessedTable{}, false
	}
	return table, true
}
