package parser

import (
	"strings"

	"github.com/mshaim001-hue/ikap2/internal/models"
)

// Verdict explains why a record was kept or dropped.
type Verdict string

const (
	VerdictKept         Verdict = "kept"
	VerdictNoCredit     Verdict = "no_credit"
	VerdictSummaryRow   Verdict = "summary_row"
	VerdictNoEvidence   Verdict = "no_transaction_evidence"
	VerdictDebitPresent Verdict = "debit_present"
	VerdictEmpty        Verdict = "empty"
)

// Kept reports whether the record survived classification.
func (v Verdict) Kept() bool { return v == VerdictKept }

// Classify decides whether rec is a credit transaction and, if so, returns
// its sanitized copy. columns is the section's column mapping and fixes
// the order of the output fields.
func Classify(columns []models.Column, rec models.Record) (models.Record, Verdict) {
	if rec.Empty() {
		return models.Record{}, VerdictEmpty
	}
	credit := CleanNumeric(rec.Get(models.ColumnCredit))
	if isPlaceholder(rec.Get(models.ColumnCredit)) || !isPositiveAmount(credit) {
		return models.Record{}, VerdictNoCredit
	}

	docNo := strings.TrimSpace(rec.Get(models.ColumnDocumentNumber))
	hasDocNo := !isPlaceholder(docNo) && hasDigit(docNo)

	if containsAny(recordText(rec), summaryKeywords) && !hasDocNo {
		return models.Record{}, VerdictSummaryRow
	}

	date := cleanDate(rec.Get(models.ColumnDate))
	if !isValidDate(date) && !hasDocNo {
		return models.Record{}, VerdictNoEvidence
	}

	if d, ok := ParseDecimal(CleanNumeric(rec.Get(models.ColumnDebit))); ok && d.IsPositive() {
		return models.Record{}, VerdictDebitPresent
	}

	out := sanitize(columns, rec)
	if out.Len() == 0 {
		return models.Record{}, VerdictEmpty
	}
	out.Set(models.ColumnCredit, credit)
	if date != "" {
		out.Set(models.ColumnDate, date)
	}
	return out, VerdictKept
}

// recordText flattens every value of rec for keyword checks.
func recordText(rec models.Record) string {
	parts := make([]string, 0, rec.Len())
	for _, c := range rec.Columns() {
		if v := rec.Get(c); v != "" {
			parts = append(parts, v)
		}
	}
	return normalizeText(strings.Join(parts, " "))
}

// cleanDate joins a wrapped date cell into one line and cuts off any
// summary text the converter glued to it.
func cleanDate(raw string) string {
	if isPlaceholder(raw) {
		return ""
	}
	return truncateAtStopWords(singleLine(raw))
}

func sanitize(columns []models.Column, rec models.Record) models.Record {
	order := effectiveColumns(columns)
	for _, c := range rec.Columns() {
		if !hasColumn(order, c) {
			order = append(order, c)
		}
	}

	var out models.Record
	for _, col := range order {
		if col.IsOrdinal() {
			continue
		}
		v := rec.Get(col)
		if isPlaceholder(v) {
			continue
		}
		switch {
		case col.IsAmount():
			v = CleanNumeric(v)
		case col == models.ColumnDate:
			v = cleanDate(v)
		default:
			v = singleLine(v)
		}
		if v != "" {
			out.Set(col, v)
		}
	}
	return out
}
