package ingestion

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestClassifyEmptyRows(t *testing.T) {
	classifier := NewClassifier(DefaultConfig(), NewResolver(DefaultConfig()))

	rows := []RawRow{
		NewRawRow(2),
		NewRawRow(3, Cell{Header: "Firmanavn", Value: ""}, Cell{Header: "Status", Value: "   "}),
		NewRawRow(4, Cell{Header: "Firmanavn", Value: "undefined"}, Cell{Header: "Dato", Value: nil}),
	}
	for _, row := range rows {
		if got := classifier.Classify(row).Kind; got != RowEmpty {
			t.Fatalf("row %d: expected empty, got %s", row.Line, got)
		}
	}
}

func TestClassifyCompanyOrOrgNumberPolicy(t *testing.T) {
	cfg := DefaultConfig()
	classifier := NewClassifier(cfg, NewResolver(cfg))

	cases := []struct {
		name    string
		row     map[string]any
		kind    RowKind
		missing []string
	}{
		{
			name: "company only",
			row:  map[string]any{"Firmanavn": "Acme AS", "Status": "Ny", "Dato": "2024-01-05"},
			kind: RowValid,
		},
		{
			name: "org number only",
			row:  map[string]any{"Org.nr": "999", "Status": "Ny", "Dato": "2024-01-05"},
			kind: RowValid,
		},
		{
			name:    "no identity",
			row:     map[string]any{"Status": "Ny", "Dato": "2024-01-05"},
			kind:    RowInvalid,
			missing: []string{"Company/Firmanavn or Org.nr"},
		},
		{
			name:    "status and date missing",
			row:     map[string]any{"Firmanavn": "Acme AS"},
			kind:    RowInvalid,
			missing: []string{"Status", "Date"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifier.Classify(RowFromMap(tc.row))
			if got.Kind != tc.kind {
				t.Fatalf("expected %s, got %s (%+v)", tc.kind, got.Kind, got)
			}
			if !reflect.DeepEqual(got.Missing, tc.missing) {
				t.Fatalf("expected missing %v, got %v", tc.missing, got.Missing)
			}
		})
	}
}

func TestClassifyCompanyAndOrgNumberPolicy(t *testing.T) {
	cfg := DefaultConfig().WithPolicy(PolicyCompanyAndOrgNumber)
	classifier := NewClassifier(cfg, NewResolver(cfg))

	valid := RowFromMap(map[string]any{"Firmanavn": "Acme AS", "Org.nr": "999", "Status": "Ny"})
	if got := classifier.Classify(valid); got.Kind != RowValid {
		t.Fatalf("expected date to be optional under strict policy, got %+v", got)
	}

	invalid := RowFromMap(map[string]any{"Firmanavn": "Acme AS"})
	got := classifier.Classify(invalid)
	if got.Kind != RowInvalid {
		t.Fatalf("expected invalid, got %s", got.Kind)
	}
	want := []string{"Org.nr", "Status"}
	if !reflect.DeepEqual(got.Missing, want) {
		t.Fatalf("expected missing %v, got %v", want, got.Missing)
	}
}

func TestClassifyRejectsUnparseableNumbers(t *testing.T) {
	classifier := NewClassifier(DefaultConfig(), NewResolver(DefaultConfig()))
	row := RowFromMap(map[string]any{
		"Firmanavn": "Acme AS",
		"Status":    "Ny",
		"Dato":      "2024-01-05",
		"kWp":       "mye",
		"PPA pris":  math.NaN(),
	})

	got := classifier.Classify(row)
	if got.Kind != RowInvalid {
		t.Fatalf("expected invalid, got %s", got.Kind)
	}
	if len(got.Missing) != 0 {
		t.Fatalf("expected no missing fields, got %v", got.Missing)
	}
	if len(got.Problems) != 1 || !strings.Contains(got.Problems[0], `kWp: "mye"`) {
		t.Fatalf("unexpected problems: %v", got.Problems)
	}
}

func TestClassificationMessage(t *testing.T) {
	c := Classification{
		Kind:     RowInvalid,
		Missing:  []string{"Org.nr", "Status"},
		Problems: []string{`Invalid numeric value for kWp: "x"`},
	}

	want := `Row 7: Missing required fields: Org.nr, Status; Invalid numeric value for kWp: "x"`
	if got := c.Message(7); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{in: 12.5, want: 12.5, ok: true},
		{in: 7, want: 7, ok: true},
		{in: "0", want: 0, ok: true},
		{in: " 1 250,75 ", want: 1250.75, ok: true},
		{in: "0.45", want: 0.45, ok: true},
		{in: "12 kWp", ok: false},
		{in: "NaN", ok: false},
		{in: "Inf", ok: false},
		{in: math.Inf(1), ok: false},
	}

	for _, tc := range cases {
		got, err := parseNumber(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("parseNumber(%v) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("parseNumber(%v) expected error, got %v", tc.in, got)
		}
	}
}
