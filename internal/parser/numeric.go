package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	lineBreakStripper = strings.NewReplacer("\r", "", "\n", "", "\u00a0", " ")
	splitDigits       = regexp.MustCompile(`(\d)\s+(\d)`)
	// A single amount with two decimal places: 4150000,00.
	decimalValue = regexp.MustCompile(`^\d+[,.]\d{2}$`)
	// Two amounts glued together by the converter: 33600000,0049563711,69.
	gluedDecimals = regexp.MustCompile(`^(\d+,\d{2})\d+,\d{2}$`)
)

// minRepeatedDigits is the shortest half accepted when an integer looks
// doubled. Shorter runs are too likely to be real numbers.
const minRepeatedDigits = 4

// CleanNumeric repairs the artifacts the PDF conversion leaves in amount
// cells: wrapped digits, values printed twice and two adjacent amounts
// merged into one cell. Clean input is returned unchanged.
func CleanNumeric(s string) string {
	s = lineBreakStripper.Replace(s)
	for {
		next := splitDigits.ReplaceAllString(s, "$1$2")
		if next == s {
			break
		}
		s = next
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	if half, ok := repeatedHalf(s); ok && decimalValue.MatchString(half) {
		return half
	}

	digits := strings.NewReplacer(",", "", ".", "").Replace(s)
	if half, ok := repeatedHalf(digits); ok && len(half) >= minRepeatedDigits && isDigits(half) {
		if strings.ContainsAny(s, ",.") && len(half) > 2 {
			return half[:len(half)-2] + "," + half[len(half)-2:]
		}
		return half
	}

	if m := gluedDecimals.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// repeatedHalf reports whether s is some string written twice in a row.
func repeatedHalf(s string) (string, bool) {
	if len(s) < 2 || len(s)%2 != 0 {
		return "", false
	}
	half := s[:len(s)/2]
	if half != s[len(s)/2:] {
		return "", false
	}
	return half, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseDecimal keeps digits, separators and the minus sign, treats a comma
// as the decimal point and parses the result. It reports false for blank,
// placeholder or unparseable input instead of failing.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == ',':
			b.WriteByte('.')
		}
	}
	text := b.String()
	switch text {
	case "", "-", ".", "-.", ".-", "--":
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// isPositiveAmount reports whether a raw amount cell holds a value above zero.
func isPositiveAmount(raw string) bool {
	if isPlaceholder(raw) {
		return false
	}
	d, ok := ParseDecimal(CleanNumeric(raw))
	return ok && d.IsPositive()
}

// isZeroToken reports whether an amount cell carries no movement.
func isZeroToken(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "0", "0,00", "0.00":
		return true
	}
	return false
}
