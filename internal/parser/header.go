package parser

import "strings"

const (
	headerScanLimit        = 50
	headerAccumulateLimit  = 20
	minHeaderCells         = 3
	minHeaderKeywords      = 2
	minMetadataKeywordHits = 3
)

// HeaderMatch is the outcome of header detection. Index is the row the
// body starts after; for accumulated headers that is the last merged row.
type HeaderMatch struct {
	Index     int
	Cells     []string
	Found     bool
	Strategy  string
	Confident bool
}

// HeaderStrategy is one step of the header detection chain.
type HeaderStrategy interface {
	Name() string
	Detect(rows [][]string) (HeaderMatch, bool)
}

// DefaultHeaderStrategies is the chain DetectHeader walks, strongest first.
func DefaultHeaderStrategies() []HeaderStrategy {
	return []HeaderStrategy{
		directScan{limit: headerScanLimit},
		accumulatedScan{limit: headerAccumulateLimit},
		creditKeywordScan{limit: headerScanLimit},
	}
}

// DetectHeader finds the table header in rows. When no strategy succeeds
// it falls back to the first row with Found unset. It returns Index -1
// only for empty input.
func DetectHeader(rows [][]string) HeaderMatch {
	return detectHeaderWith(DefaultHeaderStrategies(), rows)
}

func detectHeaderWith(chain []HeaderStrategy, rows [][]string) HeaderMatch {
	if len(rows) == 0 {
		return HeaderMatch{Index: -1, Strategy: "none"}
	}
	for _, s := range chain {
		if m, ok := s.Detect(rows); ok {
			m.Strategy = s.Name()
			return m
		}
	}
	return HeaderMatch{Index: 0, Cells: rows[0], Strategy: "first_row"}
}

// headerScore summarizes how header-like a row is.
type headerScore struct {
	cells       int
	keywords    int
	creditDebit bool
	metadata    bool
}

func scoreHeader(row []string) headerScore {
	cells := normalizeCells(row)
	var s headerScore
	for i, c := range cells {
		if c != "" && !isPlaceholder(row[i]) {
			s.cells++
		}
	}
	for _, kw := range headerKeywords {
		if cellsContainAny(cells, []string{kw}) {
			s.keywords++
		}
	}
	s.creditDebit = cellsContainAny(cells, creditKeywords) || cellsContainAny(cells, debitKeywords)
	s.metadata = cellsContainAny(cells, metadataKeywords)
	return s
}

// qualifies is the header predicate shared by detection and splitting.
func (s headerScore) qualifies() bool {
	if s.cells < minHeaderCells || s.keywords < minHeaderKeywords || !s.creditDebit {
		return false
	}
	if s.metadata && s.keywords < minMetadataKeywordHits {
		return false
	}
	return true
}

// looksLikeHeader reports whether row is a table header, and whether the
// following row supports that by looking like data.
func looksLikeHeader(row, next []string) (ok, confident bool) {
	if !scoreHeader(row).qualifies() {
		return false, false
	}
	return true, looksLikeDataRow(next)
}

func looksLikeDataRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	digits := false
	for _, c := range row {
		if hasDigit(c) {
			digits = true
			break
		}
	}
	if !digits {
		return false
	}
	return !containsAny(normalizeText(strings.Join(row, " ")), dataRowBlockers)
}

// mergeRows joins two rows cell by cell with a space, skipping blanks.
func mergeRows(a, b []string) []string {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]string, n)
	for i := range out {
		var parts []string
		if i < len(a) {
			if v := strings.TrimSpace(a[i]); v != "" {
				parts = append(parts, v)
			}
		}
		if i < len(b) {
			if v := strings.TrimSpace(b[i]); v != "" {
				parts = append(parts, v)
			}
		}
		out[i] = strings.Join(parts, " ")
	}
	return out
}

func rowAt(rows [][]string, i int) []string {
	if i < 0 || i >= len(rows) {
		return nil
	}
	return rows[i]
}

// directScan accepts the first single row that qualifies as a header.
type directScan struct{ limit int }

func (directScan) Name() string { return "direct" }

func (d directScan) Detect(rows [][]string) (HeaderMatch, bool) {
	for i := 0; i < len(rows) && i < d.limit; i++ {
		if ok, confident := looksLikeHeader(rows[i], rowAt(rows, i+1)); ok {
			return HeaderMatch{Index: i, Cells: rows[i], Found: true, Confident: confident}, true
		}
	}
	return HeaderMatch{}, false
}

// accumulatedScan merges consecutive rows from the top of the sheet to
// recover headers printed across several physical lines.
type accumulatedScan struct{ limit int }

func (accumulatedScan) Name() string { return "accumulated" }

func (a accumulatedScan) Detect(rows [][]string) (HeaderMatch, bool) {
	var merged []string
	for i := 0; i < len(rows) && i < a.limit; i++ {
		merged = mergeRows(merged, rows[i])
		if ok, confident := looksLikeHeader(merged, rowAt(rows, i+1)); ok {
			return HeaderMatch{Index: i, Cells: merged, Found: true, Confident: confident}, true
		}
	}
	return HeaderMatch{}, false
}

// creditKeywordScan takes the first row mentioning credit or debit at all.
type creditKeywordScan struct{ limit int }

func (creditKeywordScan) Name() string { return "credit_keyword" }

func (c creditKeywordScan) Detect(rows [][]string) (HeaderMatch, bool) {
	for i := 0; i < len(rows) && i < c.limit; i++ {
		cells := normalizeCells(rows[i])
		if cellsContainAny(cells, creditKeywords) || cellsContainAny(cells, debitKeywords) {
			return HeaderMatch{Index: i, Cells: rows[i], Found: true}, true
		}
	}
	return HeaderMatch{}, false
}
