package extractor

import (
	"strings"
	"testing"
)

const firstPage = `АО "Kaspi Bank"
ВЫПИСКА ПО СЧЕТУ за период с 01.01.2024 по 31.01.2024
Дата печати: 05.02.2024
Время печати: 10:15:00
Клиент: ТОО "Ромашка"
БИН/ИИН: 123456789012
Банк: АО "Kaspi Bank"
БИК: CASPKZKA
ИИК: KZ123456789
Валюта: KZT
Входящий остаток: 1 000 000,00
Номер документа  Дата  Дебет  Кредит  Назначение
1  02.01.2024  0,00  500,00  Оплата
Исходящий остаток: 1 500 000,00`

func TestExtractMetadata(t *testing.T) {
	meta := ExtractMetadata(firstPage)

	tests := []struct {
		key      string
		expected string
	}{
		{KeyPrintDate, "05.02.2024"},
		{KeyPrintTime, "10:15:00"},
		{KeyClient, `ТОО "Ромашка"`},
		{KeyBINIIN, "123456789012"},
		{KeyBank, `АО "Kaspi Bank"`},
		{KeyBIC, "CASPKZKA"},
		{KeyIIK, "KZ123456789"},
		{KeyCurrency, "KZT"},
		{KeyOpeningBalance, "1 000 000,00"},
		{KeyPeriodFrom, "01.01.2024"},
		{KeyPeriodTo, "31.01.2024"},
		{KeyTitle, "ВЫПИСКА ПО СЧЕТУ за период с 01.01.2024 по 31.01.2024"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := meta[tt.key]; got != tt.expected {
				t.Errorf("%s: got %q, want %q", tt.key, got, tt.expected)
			}
		})
	}

	if _, ok := meta[KeyClosingBalance]; ok {
		t.Error("closing balance is below the table header and should not be read")
	}
	raw := meta[KeyRawHeader]
	if !strings.HasSuffix(raw, "Назначение") || strings.Contains(raw, "Оплата") {
		t.Errorf("raw header should stop at the table header, got %q", raw)
	}
}

func TestExtractMetadataEmpty(t *testing.T) {
	if meta := ExtractMetadata("  \n \n"); len(meta) != 0 {
		t.Errorf("got %v, want empty map", meta)
	}
}

func TestExtractMetadataNonBreakingSpaces(t *testing.T) {
	meta := ExtractMetadata("Валюта:\u00a0USD")
	if meta[KeyCurrency] != "USD" {
		t.Errorf("currency: got %q", meta[KeyCurrency])
	}
}

func TestFirstPageTextInvalid(t *testing.T) {
	if _, err := FirstPageText([]byte("not a pdf")); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestIsReadable(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"cyrillic text", "Выписка по счету за период с 01.01.2024", true},
		{"too short", "Выписка", false},
		{"control garbage", strings.Repeat("\x01\x02\x03a", 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isReadable(tt.input); got != tt.expected {
				t.Errorf("isReadable(%q): got %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
