package parser

import (
	"reflect"
	"testing"
)

func TestLooksLikeHeader(t *testing.T) {
	tests := []struct {
		name      string
		row       []string
		next      []string
		ok        bool
		confident bool
	}{
		{
			name:      "full header followed by data",
			row:       []string{"Дата", "№", "Дебет", "Кредит", "Назначение"},
			next:      []string{"01.02.2024", "12", "", "1500,00", "Оплата"},
			ok:        true,
			confident: true,
		},
		{
			name: "full header followed by another header",
			row:  []string{"Дата", "№", "Дебет", "Кредит", "Назначение"},
			next: []string{"Дата", "№", "Дебет", "Кредит", "Назначение"},
			ok:   true,
		},
		{
			name: "balance cell alone",
			row:  []string{"Остаток"},
		},
		{
			name: "too few cells",
			row:  []string{"Дата", "Кредит", ""},
		},
		{
			name: "keywords without credit or debit",
			row:  []string{"Дата", "Номер документа", "Назначение"},
		},
		{
			name: "metadata line with few keywords",
			row:  []string{"Валюта счета: KZT", "Кредит", "Банк"},
		},
		{
			name: "metadata words with enough keywords",
			row:  []string{"Дата", "Документ", "Дебет", "Кредит", "Банк получателя"},
			ok:   true,
		},
		{
			name: "placeholders do not count as cells",
			row:  []string{"Дебет", "Кредит", "-", "nan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, confident := looksLikeHeader(tt.row, tt.next)
			if ok != tt.ok {
				t.Errorf("ok: got %v, want %v", ok, tt.ok)
			}
			if confident != tt.confident {
				t.Errorf("confident: got %v, want %v", confident, tt.confident)
			}
		})
	}
}

func TestDetectHeader(t *testing.T) {
	header := []string{"Дата", "№", "Дебет", "Кредит", "Назначение"}

	tests := []struct {
		name     string
		rows     [][]string
		index    int
		found    bool
		strategy string
		cells    []string
	}{
		{
			name: "direct scan after preamble",
			rows: [][]string{
				{"Выписка по счету"},
				{"Клиент: ТОО Ромашка"},
				header,
				{"01.02.2024", "12", "", "1500,00", "Оплата"},
			},
			index:    2,
			found:    true,
			strategy: "direct",
			cells:    header,
		},
		{
			name: "header printed on two lines",
			rows: [][]string{
				{"Дата", "Номер", "Сумма", "Сумма"},
				{"", "", "Дебет", "Кредит"},
				{"01.02.2024", "12", "", "1500,00"},
			},
			index:    1,
			found:    true,
			strategy: "accumulated",
			cells:    []string{"Дата", "Номер", "Сумма Дебет", "Сумма Кредит"},
		},
		{
			name: "weak credit keyword fallback",
			rows: [][]string{
				{"Отчет"},
				{"Кредит"},
				{"100"},
			},
			index:    1,
			found:    true,
			strategy: "credit_keyword",
			cells:    []string{"Кредит"},
		},
		{
			name: "hard fallback to first row",
			rows: [][]string{
				{"a", "b"},
				{"1", "2"},
			},
			index:    0,
			found:    false,
			strategy: "first_row",
			cells:    []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DetectHeader(tt.rows)
			if m.Index != tt.index {
				t.Errorf("index: got %d, want %d", m.Index, tt.index)
			}
			if m.Found != tt.found {
				t.Errorf("found: got %v, want %v", m.Found, tt.found)
			}
			if m.Strategy != tt.strategy {
				t.Errorf("strategy: got %q, want %q", m.Strategy, tt.strategy)
			}
			if !reflect.DeepEqual(m.Cells, tt.cells) {
				t.Errorf("cells: got %q, want %q", m.Cells, tt.cells)
			}
		})
	}
}

func TestDetectHeaderEmpty(t *testing.T) {
	m := DetectHeader(nil)
	if m.Index != -1 || m.Found {
		t.Errorf("empty input: got index %d found %v", m.Index, m.Found)
	}
}

func TestDetectHeaderCustomChain(t *testing.T) {
	rows := [][]string{{"Кредит"}, {"100"}}
	m := detectHeaderWith([]HeaderStrategy{directScan{limit: headerScanLimit}}, rows)
	if m.Found || m.Strategy != "first_row" {
		t.Errorf("got found=%v strategy=%q, want fallback", m.Found, m.Strategy)
	}
}
