package parser

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Keyword tables. All entries are passed through normalizeText at init so
// they compare equal to normalized cell text.
var (
	// headerKeywords mark a row as a table header; each entry counts once.
	headerKeywords = normalizeAll(
		"кредит", "дебет", "credit", "debit",
		"дата", "date", "күні",
		"номер", "документ", "document", "№",
		"назначение", "назнач",
	)

	creditKeywords = normalizeAll("кредит", "credit")
	debitKeywords  = normalizeAll("дебет", "debit")

	// metadataKeywords appear in the statement preamble rather than the table.
	metadataKeywords = normalizeAll(
		"лицевой счет", "лицевой счёт", "л/с",
		"валюта счета", "валюта", "currency",
		"период", "period",
		"входящий остаток", "исходящий остаток",
		"opening balance", "closing balance",
		"банк", "bank", "бик",
		"клиент", "client",
		"дата печати", "время печати",
		"выписка по счету", "выписка",
	)

	// dataRowBlockers must be absent from a row that follows a header.
	dataRowBlockers = normalizeAll("кредит", "дебет", "дата", "номер", "credit", "debit", "date")

	// headerFragmentTokens identify stray pieces of a repeated header.
	headerFragmentTokens = normalizeAll("дата", "назна", "дебет", "кредит", "date", "debit", "credit")

	summaryKeywords = normalizeAll(
		"обороты", "итого", "входящий остаток", "исходящий остаток",
		"всего", "total", "summary", "итог", "остаток",
		"документов по дебету", "документов по кредиту", "документов:",
		"opening balance", "closing balance", "turnover",
	)

	// dateStopWords end the useful part of a date cell that absorbed a
	// following summary line.
	dateStopWords = normalizeAll("обороты", "итого", "документов", "total", "turnover")
)

// emptyTokens are cell values that mean "no value".
var emptyTokens = map[string]bool{
	"":     true,
	"-":    true,
	"—":    true,
	"none": true,
	"null": true,
	"nan":  true,
	"н/д":  true,
}

var (
	digitPattern = regexp.MustCompile(`\d`)
	// ISO-like or dotted day-first dates: 2024-05-06, 2024/05/06, 06.05.2024.
	isoDatePattern    = regexp.MustCompile(`\d{4}[-/]\d{2}[-/]\d{2}`)
	dottedDatePattern = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)
	// Short dotted date used as a record boundary: 06.05.24 or 06.05.2024.
	boundaryDatePattern = regexp.MustCompile(`\d{2}\.\d{2}\.\d{2,4}`)
	// Document number glued to the date by the converter: "15 06.05.2024".
	numberedDatePattern = regexp.MustCompile(`^(\d+)\s+(.*)$`)
	lineBreakPattern    = regexp.MustCompile(`[\r\n]+`)
)

// foldDiacritics removes combining marks so that "ё" compares equal to "е".
// A new transformer is built per call because transformers keep state.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// normalizeText lowercases, folds diacritics and collapses whitespace,
// including line breaks the converter leaves inside wrapped cells.
func normalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	s = foldDiacritics(s)
	return strings.Join(strings.Fields(s), " ")
}

func normalizeAll(words ...string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, normalizeText(w))
	}
	return out
}

// isPlaceholder reports whether a cell is blank or holds a "no value" token.
func isPlaceholder(s string) bool {
	return emptyTokens[strings.ToLower(strings.TrimSpace(s))]
}

func hasDigit(s string) bool {
	return digitPattern.MatchString(s)
}

// containsAny reports whether text contains at least one of needles.
func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// cellsContainAny reports whether any normalized cell contains any needle.
func cellsContainAny(cells []string, needles []string) bool {
	for _, c := range cells {
		if containsAny(c, needles) {
			return true
		}
	}
	return false
}

func normalizeCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = normalizeText(c)
	}
	return out
}

// isValidDate reports whether s contains a full calendar date.
func isValidDate(s string) bool {
	return isoDatePattern.MatchString(s) || dottedDatePattern.MatchString(s)
}

// truncateAtStopWords cuts s at the first summary word, if any.
func truncateAtStopWords(s string) string {
	lower := strings.ToLower(s)
	cut := -1
	for _, w := range dateStopWords {
		if pos := strings.Index(lower, w); pos >= 0 && (cut < 0 || pos < cut) {
			cut = pos
		}
	}
	if cut < 0 {
		return s
	}
	// strings.ToLower can change byte lengths for some scripts; only cut
	// when the lowered text is byte-aligned with the original.
	if len(lower) != len(s) {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(s[:cut])
}

// singleLine replaces line breaks with spaces and collapses whitespace.
func singleLine(s string) string {
	s = lineBreakPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
