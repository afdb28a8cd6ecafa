package models

import (
	"strconv"
	"strings"
)

// Column is the semantic role of a spreadsheet column after header
// normalization. Headers that match no keyword keep their raw label.
type Column string

const (
	ColumnCredit         Column = "credit"
	ColumnDebit          Column = "debit"
	ColumnDate           Column = "date"
	ColumnDocumentNumber Column = "document_number"
	ColumnPurpose        Column = "purpose"
	ColumnRate           Column = "rate"
	ColumnSender         Column = "sender"
	ColumnReceiver       Column = "receiver"
	ColumnOther          Column = "other"
)

// Base strips a "_N" disambiguation suffix: "credit_2" -> "credit".
func (c Column) Base() Column {
	s := string(c)
	i := strings.LastIndexByte(s, '_')
	if i <= 0 || i == len(s)-1 {
		return c
	}
	if _, err := strconv.Atoi(s[i+1:]); err != nil {
		return c
	}
	return Column(s[:i])
}

// IsAmount reports whether the column holds a monetary or rate value.
func (c Column) IsAmount() bool {
	switch c.Base() {
	case ColumnCredit, ColumnDebit, ColumnRate:
		return true
	}
	return false
}

// IsOrdinal reports whether the label is a bare column number such as
// "1" or "3." that some statements print under the header.
func (c Column) IsOrdinal() bool {
	hasDigit := false
	for _, r := range string(c) {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == '.' || r == '_' || r == ' ' || r == ')':
		default:
			return false
		}
	}
	return hasDigit
}
