package parser

import (
	"fmt"
	"strings"

	"github.com/mshaim001-hue/ikap2/internal/models"
)

// columnRule maps header text to a canonical column.
type columnRule struct {
	column models.Column
	// substrings match anywhere in the normalized cell.
	substrings []string
	// words match a whole whitespace-separated token.
	words []string
}

// columnRules are tried in order and the first match wins. Purpose comes
// before Date and Date before Rate because some localized headers share
// fragments across those groups.
var columnRules = []columnRule{
	{column: models.ColumnCredit, substrings: normalizeAll("кредит", "credit")},
	{column: models.ColumnDebit, substrings: normalizeAll("дебет", "debit")},
	{column: models.ColumnPurpose, substrings: normalizeAll("назнач", "тағайындал", "төлем", "purpose", "description")},
	{column: models.ColumnDate, substrings: normalizeAll("дата", "күні", "date")},
	{column: models.ColumnRate, substrings: normalizeAll("курс", "бағам", "rate")},
	{column: models.ColumnSender, substrings: normalizeAll("отправ", "жібер", "sender", "payer")},
	{column: models.ColumnReceiver, substrings: normalizeAll("получ", "алушы", "receiver", "beneficiary", "payee")},
	{
		column:     models.ColumnDocumentNumber,
		substrings: normalizeAll("номер", "нөмір", "құжат", "документ", "document", "№"),
		words:      []string{"no", "no.", "entry"},
	},
}

// NormalizeColumns maps each header cell to a canonical column. The result
// has one label per input cell; blank cells get the empty label and are
// ignored downstream. Repeated labels are made unique with _2, _3 suffixes.
func NormalizeColumns(header []string) []models.Column {
	out := make([]models.Column, len(header))
	seen := make(map[string]int, len(header))
	for i, cell := range header {
		label := classifyHeaderCell(cell)
		if label == "" {
			continue
		}
		out[i] = uniqueLabel(label, seen)
	}
	return out
}

func classifyHeaderCell(cell string) models.Column {
	text := normalizeText(cell)
	if isPlaceholder(text) {
		return ""
	}
	for _, rule := range columnRules {
		if rule.matches(text) {
			return rule.column
		}
	}
	if ordinal := strings.Trim(text, " .)"); isDigits(ordinal) {
		return models.Column(ordinal)
	}
	return models.Column(text)
}

func (r columnRule) matches(text string) bool {
	if containsAny(text, r.substrings) {
		return true
	}
	if len(r.words) == 0 {
		return false
	}
	for _, tok := range strings.Fields(text) {
		for _, w := range r.words {
			if tok == w {
				return true
			}
		}
	}
	return false
}

// uniqueLabel returns label, or label_N if it was already used.
// seen is keyed case-insensitively and updated in place.
func uniqueLabel(label models.Column, seen map[string]int) models.Column {
	key := strings.ToLower(string(label))
	seen[key]++
	if seen[key] == 1 {
		return label
	}
	for {
		candidate := models.Column(fmt.Sprintf("%s_%d", label, seen[key]))
		ck := strings.ToLower(string(candidate))
		if _, taken := seen[ck]; !taken {
			seen[ck] = 1
			return candidate
		}
		seen[key]++
	}
}

// alignColumns pads columns with "other" labels so that every body cell
// has a name, keeping labels unique.
func alignColumns(columns []models.Column, width int) []models.Column {
	if len(columns) >= width {
		return columns
	}
	out := make([]models.Column, len(columns), width)
	copy(out, columns)
	seen := make(map[string]int, width)
	for _, c := range columns {
		if c != "" {
			seen[strings.ToLower(string(c))]++
		}
	}
	for len(out) < width {
		out = append(out, uniqueLabel(models.ColumnOther, seen))
	}
	return out
}

// effectiveColumns lists the non-empty labels in order.
func effectiveColumns(columns []models.Column) []models.Column {
	out := make([]models.Column, 0, len(columns))
	for _, c := range columns {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func hasColumn(columns []models.Column, want models.Column) bool {
	for _, c := range columns {
		if c == want {
			return true
		}
	}
	return false
}
