package extractor

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// FirstPageText returns the plain text of the first page of a PDF. It
// tries row-based extraction first, then coordinate-based reconstruction,
// then the library's plain-text path, and keeps the first readable result.
func FirstPageText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	if r.NumPage() == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}
	page := r.Page(1)
	if page.V.IsNull() {
		return "", fmt.Errorf("first page is empty")
	}

	var best string
	for _, method := range []func(pdf.Page) string{textByRow, textByContent, textByFonts} {
		text := method(page)
		if isReadable(text) {
			return text, nil
		}
		if len(text) > len(best) {
			best = text
		}
	}
	if best == "" {
		return "", fmt.Errorf("no text layer on first page")
	}
	return best, nil
}

// textByRow uses GetTextByRow, which keeps the layout of well-formed PDFs.
func textByRow(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return ""
	}
	var lines []string
	for _, row := range rows {
		parts := make([]string, 0, len(row.Content))
		for _, word := range row.Content {
			parts = append(parts, word.S)
		}
		if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// textByContent groups text objects by rounded Y coordinate and orders
// each group by X.
func textByContent(page pdf.Page) string {
	content := page.Content()
	if len(content.Text) == 0 {
		return ""
	}

	type textItem struct {
		x float64
		s string
	}
	rowMap := make(map[int][]textItem)
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		y := int(math.Round(t.Y))
		rowMap[y] = append(rowMap[y], textItem{x: t.X, s: t.S})
	}

	// PDF Y grows upwards.
	ys := make([]int, 0, len(rowMap))
	for y := range rowMap {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	var lines []string
	for _, y := range ys {
		items := rowMap[y]
		sort.Slice(items, func(a, b int) bool { return items[a].x < items[b].x })

		var b strings.Builder
		var prevX float64
		for j, item := range items {
			if j > 0 && item.x-prevX > 15 {
				b.WriteString(" ")
			}
			b.WriteString(item.s)
			prevX = item.x
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func textByFonts(page pdf.Page) string {
	fonts := make(map[string]*pdf.Font)
	for _, name := range page.Fonts() {
		f := page.Font(name)
		fonts[name] = &f
	}
	text, err := page.GetPlainText(fonts)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// isReadable rejects text decoded through a broken font map: it must be
// long enough and mostly letters, digits, spaces or punctuation.
func isReadable(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) < 20 {
		return false
	}
	total, readable := 0, 0
	for _, r := range text {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || unicode.IsPunct(r) {
			readable++
		}
	}
	return float64(readable)/float64(total) > 0.8
}
