package parser

import (
	"testing"

	"github.com/mshaim001-hue/ikap2/internal/models"
)

var classifyColumns = []models.Column{
	models.ColumnDocumentNumber,
	models.ColumnDate,
	models.ColumnDebit,
	models.ColumnCredit,
	models.ColumnPurpose,
}

func record(values map[models.Column]string) models.Record {
	rec := models.NewRecord(classifyColumns...)
	for _, c := range classifyColumns {
		if v, ok := values[c]; ok {
			rec.Set(c, v)
		}
	}
	for c, v := range values {
		if !rec.Has(c) {
			rec.Set(c, v)
		}
	}
	return rec
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		values  map[models.Column]string
		verdict Verdict
	}{
		{
			name: "credit with date and number kept",
			values: map[models.Column]string{
				models.ColumnCredit:         "1500,00",
				models.ColumnDate:           "01.02.2024",
				models.ColumnDocumentNumber: "12",
			},
			verdict: VerdictKept,
		},
		{
			name: "positive debit alongside credit dropped",
			values: map[models.Column]string{
				models.ColumnCredit:         "1500,00",
				models.ColumnDebit:          "500,00",
				models.ColumnDate:           "01.02.2024",
				models.ColumnDocumentNumber: "12",
			},
			verdict: VerdictDebitPresent,
		},
		{
			name: "zero credit dropped",
			values: map[models.Column]string{
				models.ColumnCredit:         "0,00",
				models.ColumnDate:           "01.02.2024",
				models.ColumnDocumentNumber: "12",
			},
			verdict: VerdictNoCredit,
		},
		{
			name: "missing credit dropped",
			values: map[models.Column]string{
				models.ColumnDebit: "500,00",
				models.ColumnDate:  "01.02.2024",
			},
			verdict: VerdictNoCredit,
		},
		{
			name: "placeholder credit dropped",
			values: map[models.Column]string{
				models.ColumnCredit: "—",
				models.ColumnDate:   "01.02.2024",
			},
			verdict: VerdictNoCredit,
		},
		{
			name: "zero debit does not block",
			values: map[models.Column]string{
				models.ColumnCredit: "100",
				models.ColumnDebit:  "0,00",
				models.ColumnDate:   "01.02.2024",
			},
			verdict: VerdictKept,
		},
		{
			name: "text in debit does not block",
			values: map[models.Column]string{
				models.ColumnCredit: "100",
				models.ColumnDebit:  "см. выше",
				models.ColumnDate:   "01.02.2024",
			},
			verdict: VerdictKept,
		},
		{
			name: "turnover row dropped",
			values: map[models.Column]string{
				models.ColumnCredit:  "98000,00",
				models.ColumnDate:    "31.01.2024",
				models.ColumnPurpose: "Обороты за период",
			},
			verdict: VerdictSummaryRow,
		},
		{
			name: "summary words with document number kept",
			values: map[models.Column]string{
				models.ColumnCredit:         "98000,00",
				models.ColumnDate:           "31.01.2024",
				models.ColumnDocumentNumber: "44",
				models.ColumnPurpose:        "Возврат, итого по договору",
			},
			verdict: VerdictKept,
		},
		{
			name: "no date and no number dropped",
			values: map[models.Column]string{
				models.ColumnCredit:  "100",
				models.ColumnPurpose: "Оплата",
			},
			verdict: VerdictNoEvidence,
		},
		{
			name: "number without date kept",
			values: map[models.Column]string{
				models.ColumnCredit:         "100",
				models.ColumnDocumentNumber: "7",
			},
			verdict: VerdictKept,
		},
		{
			name: "short date needs a number",
			values: map[models.Column]string{
				models.ColumnCredit: "100",
				models.ColumnDate:   "01.02.24",
			},
			verdict: VerdictNoEvidence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, verdict := Classify(classifyColumns, record(tt.values))
			if verdict != tt.verdict {
				t.Fatalf("verdict: got %q, want %q", verdict, tt.verdict)
			}
			if !verdict.Kept() {
				if out.Len() != 0 {
					t.Errorf("dropped record should be empty, got %v", out.Columns())
				}
				return
			}
			d, ok := ParseDecimal(out.Get(models.ColumnCredit))
			if !ok || !d.IsPositive() {
				t.Errorf("kept row has non-positive credit %q", out.Get(models.ColumnCredit))
			}
			if d, ok := ParseDecimal(out.Get(models.ColumnDebit)); ok && d.IsPositive() {
				t.Errorf("kept row has positive debit %q", out.Get(models.ColumnDebit))
			}
		})
	}
}

func TestClassifySanitizes(t *testing.T) {
	rec := record(map[models.Column]string{
		models.ColumnDocumentNumber: "12\n",
		models.ColumnDate:           "01.02.2024\nИтого",
		models.ColumnDebit:          "-",
		models.ColumnCredit:         "4150000,004150000,00",
		models.ColumnPurpose:        "Оплата\nпо счету",
		"3":                         "3",
	})
	columns := append(append([]models.Column{}, classifyColumns...), "3")

	out, verdict := Classify(columns, rec)
	if verdict != VerdictKept {
		t.Fatalf("verdict: got %q, want kept", verdict)
	}

	want := map[models.Column]string{
		models.ColumnDocumentNumber: "12",
		models.ColumnDate:           "01.02.2024",
		models.ColumnCredit:         "4150000,00",
		models.ColumnPurpose:        "Оплата по счету",
	}
	for col, v := range want {
		if got := out.Get(col); got != v {
			t.Errorf("%s: got %q, want %q", col, got, v)
		}
	}
	if out.Has(models.ColumnDebit) {
		t.Errorf("placeholder debit should be dropped, got %q", out.Get(models.ColumnDebit))
	}
	if out.Has("3") {
		t.Error("ordinal column should be dropped")
	}

	cols := out.Columns()
	if len(cols) != 4 || cols[0] != models.ColumnDocumentNumber || cols[3] != models.ColumnPurpose {
		t.Errorf("column order: got %v", cols)
	}
}

func TestClassifyEmptyRecord(t *testing.T) {
	out, verdict := Classify(classifyColumns, models.Record{})
	if verdict != VerdictEmpty {
		t.Errorf("verdict: got %q, want %q", verdict, VerdictEmpty)
	}
	if out.Len() != 0 {
		t.Errorf("got %d fields, want none", out.Len())
	}
}
