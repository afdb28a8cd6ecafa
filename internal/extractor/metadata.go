package extractor

import (
	"regexp"
	"strings"
)

// Metadata keys produced by ExtractMetadata.
const (
	KeyPrintDate      = "print_date"
	KeyPrintTime      = "print_time"
	KeyClient         = "client"
	KeyBINIIN         = "bin_iin"
	KeyBank           = "bank"
	KeyBIC            = "bic"
	KeyIIK            = "iik"
	KeyCurrency       = "currency"
	KeyOpeningBalance = "opening_balance"
	KeyClosingBalance = "closing_balance"
	KeyPeriodFrom     = "period_from"
	KeyPeriodTo       = "period_to"
	KeyTitle          = "statement_title"
	KeyRawHeader      = "raw_header"
)

type fieldPattern struct {
	key string
	re  *regexp.Regexp
}

// fieldPatterns are tried against each preamble line; the first match wins.
var fieldPatterns = []fieldPattern{
	{KeyPrintDate, regexp.MustCompile(`(?i)дата печати[:\s]+(.+)`)},
	{KeyPrintTime, regexp.MustCompile(`(?i)время печати[:\s]+(.+)`)},
	{KeyClient, regexp.MustCompile(`(?i)клиент[:\s]+(.+)`)},
	{KeyBINIIN, regexp.MustCompile(`(?i)бин/?иин[:\s]+(.+)`)},
	{KeyBank, regexp.MustCompile(`(?i)банк[:\s]+(.+)`)},
	{KeyBIC, regexp.MustCompile(`(?i)бик[:\s]+(.+)`)},
	{KeyIIK, regexp.MustCompile(`(?i)иик[:\s]+(.+)`)},
	{KeyCurrency, regexp.MustCompile(`(?i)валюта[:\s]+(.+)`)},
	{KeyOpeningBalance, regexp.MustCompile(`(?i)входящий остаток[:\s]+(.+)`)},
	{KeyClosingBalance, regexp.MustCompile(`(?i)исходящий остаток[:\s]+(.+)`)},
}

var periodPattern = regexp.MustCompile(`(?i)за период\s*с\s*([\d.]+)\s*по\s*([\d.]+)`)

// ExtractMetadata pulls statement details out of first-page text. Only the
// preamble is searched: lines up to and including the table header, which
// is the first line mentioning both "номер" and "кредит".
func ExtractMetadata(text string) map[string]string {
	text = strings.ReplaceAll(text, "\u00a0", " ")
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	var header []string
	for _, l := range lines {
		header = append(header, l)
		lower := strings.ToLower(l)
		if strings.Contains(lower, "номер") && strings.Contains(lower, "кредит") {
			break
		}
	}

	meta := make(map[string]string)
	for _, p := range fieldPatterns {
		for _, l := range header {
			if m := p.re.FindStringSubmatch(l); m != nil {
				meta[p.key] = strings.TrimSpace(m[1])
				break
			}
		}
	}

	if m := periodPattern.FindStringSubmatch(strings.Join(header, " ")); m != nil {
		meta[KeyPeriodFrom] = m[1]
		meta[KeyPeriodTo] = m[2]
	}

	for _, l := range lines {
		if strings.Contains(strings.ToLower(l), "выписка") {
			meta[KeyTitle] = l
			break
		}
	}

	if len(header) > 0 {
		meta[KeyRawHeader] = strings.Join(header, "\n")
	}
	return meta
}
