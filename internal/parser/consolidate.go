package parser

import (
	"strings"

	"github.com/mshaim001-hue/ikap2/internal/models"
)

type consolidatorState int

const (
	// stateIdle: no record has been opened yet.
	stateIdle consolidatorState = iota
	// stateAccumulating: a record is open and continuation rows merge into it.
	stateAccumulating
)

type rowRole int

const (
	roleNewRecord rowRole = iota
	roleContinuation
)

// recordSeed carries the boundary values a new record starts with.
type recordSeed struct {
	docNo string
	date  string
	// consumed are the row's columns already represented by the seed.
	consumed map[models.Column]bool
}

type consolidator struct {
	columns []models.Column
	state   consolidatorState
	current models.Record
	out     []models.Record
}

// Consolidate merges physically wrapped rows into logical records. columns
// labels row cells by position; cells under an empty label are ignored.
// Rows that cannot be attached to a record are dropped.
func Consolidate(columns []models.Column, rows [][]string) []models.Record {
	c := &consolidator{columns: columns}
	for _, row := range rows {
		c.feed(row)
	}
	c.flush()
	return c.out
}

func (c *consolidator) feed(row []string) {
	values := c.rowValues(row)
	if len(values) == 0 || isHeaderFragment(values) || isRepeatedHeader(row) {
		return
	}
	role, seed := classifyRow(c.columns, values)
	switch {
	case role == roleNewRecord:
		c.flush()
		c.open(values, seed)
		c.state = stateAccumulating
	case c.state == stateAccumulating:
		c.merge(values)
	}
}

// rowValues maps the non-blank cells of row to their column labels.
func (c *consolidator) rowValues(row []string) map[models.Column]string {
	values := make(map[models.Column]string)
	for i, cell := range row {
		if i >= len(c.columns) || c.columns[i] == "" {
			continue
		}
		if v := strings.TrimSpace(cell); v != "" {
			values[c.columns[i]] = v
		}
	}
	return values
}

func (c *consolidator) open(values map[models.Column]string, seed recordSeed) {
	rec := models.NewRecord(effectiveColumns(c.columns)...)
	if seed.docNo != "" {
		rec.Set(models.ColumnDocumentNumber, seed.docNo)
	}
	if seed.date != "" {
		rec.Set(models.ColumnDate, seed.date)
	}
	for _, col := range c.columns {
		v, ok := values[col]
		if !ok || seed.consumed[col] {
			continue
		}
		if col.IsAmount() {
			v = stripSpaces(v)
		}
		rec.Set(col, v)
	}
	c.current = rec
}

func (c *consolidator) merge(values map[models.Column]string) {
	for _, col := range c.columns {
		v, ok := values[col]
		if !ok || col == models.ColumnDocumentNumber {
			continue
		}
		prev := c.current.Get(col)
		switch {
		case col.IsAmount():
			c.current.Set(col, prev+stripSpaces(v))
		case prev == "":
			c.current.Set(col, v)
		default:
			c.current.Set(col, prev+" "+v)
		}
	}
}

func (c *consolidator) flush() {
	if c.state != stateAccumulating {
		return
	}
	c.out = append(c.out, c.current)
	c.current = models.Record{}
	c.state = stateIdle
}

// classifyRow decides whether a row starts a new record. Any one of a
// numbered document, a recognizable date or a non-zero amount is enough.
func classifyRow(columns []models.Column, values map[models.Column]string) (rowRole, recordSeed) {
	seed := recordSeed{consumed: map[models.Column]bool{
		models.ColumnDocumentNumber: true,
		models.ColumnDate:           true,
	}}
	date := values[models.ColumnDate]
	seed.date = date

	if no := values[models.ColumnDocumentNumber]; no != "" && hasDigit(no) {
		seed.docNo = no
		return roleNewRecord, seed
	}
	if m := numberedDatePattern.FindStringSubmatch(date); m != nil {
		seed.docNo = m[1]
		seed.date = strings.TrimSpace(m[2])
		return roleNewRecord, seed
	}
	if boundaryDatePattern.MatchString(date) {
		return roleNewRecord, seed
	}
	for col, v := range values {
		base := col.Base()
		if (base == models.ColumnCredit || base == models.ColumnDebit) && !isZeroToken(v) {
			seed.docNo = firstNumberedDocument(columns, values)
			return roleNewRecord, seed
		}
	}
	return roleContinuation, seed
}

// firstNumberedDocument returns any document-number cell holding a digit.
func firstNumberedDocument(columns []models.Column, values map[models.Column]string) string {
	for _, col := range columns {
		if v := values[col]; col.Base() == models.ColumnDocumentNumber && hasDigit(v) {
			return v
		}
	}
	return ""
}

// isHeaderFragment reports whether a row is a stray piece of a repeated
// header: every cell holds a header word and there are no digits.
func isHeaderFragment(values map[models.Column]string) bool {
	for _, v := range values {
		if hasDigit(v) || !containsAny(normalizeText(v), headerFragmentTokens) {
			return false
		}
	}
	return len(values) > 0
}

// isRepeatedHeader reports whether row is a full table header left inside a
// section body, as happens when a duplicate header is not split off.
func isRepeatedHeader(row []string) bool {
	for _, cell := range row {
		if hasDigit(cell) {
			return false
		}
	}
	return scoreHeader(row).qualifies()
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
