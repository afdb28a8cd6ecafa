package parser

const (
	// A header repeated within this many rows of the previous one with
	// enough shared tokens is the same header, not a new page.
	duplicateHeaderWindow  = 5
	duplicateHeaderOverlap = 3
)

// Section is a contiguous row range [Start, End) of a sheet together with
// the header that governs it. Body rows start after HeaderIndex. Confident
// is set when the row after the header looks like data.
type Section struct {
	Start       int
	End         int
	HeaderIndex int
	Header      []string
	Detected    bool
	Strategy    string
	Confident   bool
}

// Body returns the section's data rows.
func (s Section) Body(rows [][]string) [][]string {
	from := s.HeaderIndex + 1
	if from < s.Start {
		from = s.Start
	}
	if from >= s.End || from >= len(rows) {
		return nil
	}
	return rows[from:s.End]
}

// SplitSections partitions a sheet at every repeated table header. The
// sections cover the sheet without gaps or overlaps; an empty sheet has
// none. With fewer than two headers the whole sheet is one section whose
// header comes from DetectHeader.
func SplitSections(rows [][]string) []Section {
	if len(rows) == 0 {
		return nil
	}

	headers := findHeaderRows(rows)
	if len(headers) < 2 {
		m := DetectHeader(rows)
		return []Section{{
			Start:       0,
			End:         len(rows),
			HeaderIndex: m.Index,
			Header:      m.Cells,
			Detected:    m.Found,
			Strategy:    m.Strategy,
			Confident:   m.Confident,
		}}
	}

	sections := make([]Section, 0, len(headers))
	for i, h := range headers {
		start, end := h, len(rows)
		if i == 0 {
			start = 0
		}
		if i+1 < len(headers) {
			end = headers[i+1]
		}
		sections = append(sections, Section{
			Start:       start,
			End:         end,
			HeaderIndex: h,
			Header:      rows[h],
			Detected:    true,
			Strategy:    "repeated",
			Confident:   looksLikeDataRow(rowAt(rows, h+1)),
		})
	}
	return sections
}

// findHeaderRows returns the indices of rows that qualify as headers,
// minus near-duplicates of the previously accepted one.
func findHeaderRows(rows [][]string) []int {
	var (
		accepted []int
		last     map[string]bool
	)
	for i, row := range rows {
		if ok, _ := looksLikeHeader(row, rowAt(rows, i+1)); !ok {
			continue
		}
		tokens := headerTokens(row)
		if n := len(accepted); n > 0 &&
			i-accepted[n-1] < duplicateHeaderWindow &&
			overlap(tokens, last) >= duplicateHeaderOverlap {
			continue
		}
		accepted = append(accepted, i)
		last = tokens
	}
	return accepted
}

func headerTokens(row []string) map[string]bool {
	out := make(map[string]bool, len(row))
	for _, c := range normalizeCells(row) {
		if c != "" && !isPlaceholder(c) {
			out[c] = true
		}
	}
	return out
}

func overlap(a, b map[string]bool) int {
	n := 0
	for k := range a {
		if b[k] {
			n++
		}
	}
	return n
}
