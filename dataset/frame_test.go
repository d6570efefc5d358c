package dataset

import (
	"testing"
)

func testFrame(t *testing.T) *Frame {
	t.Helper()
	f, err := NewFrame(
		Schema{
			{Name: "country", Type: Object},
			{Name: "gdp", Type: Int},
		},
		[][]any{
			{"us", int64(21)},
			{"cn", int64(14)},
			{"jp", int64(5)},
			{"de", int64(3)},
		},
	)
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}
	return f
}

func TestNewFrame_RowWidthMismatch(t *testing.T) {
	_, err := NewFrame(
		Schema{{Name: "a", Type: Int}},
		[][]any{{int64(1), int64(2)}},
	)
	if err == nil {
		t.Fatal("expected error for mismatched row width")
	}
}

func TestNewFrame_RejectsNonScalarCell(t *testing.T) {
	tests := []struct {
		name string
		cell any
	}{
		{"list", []any{int64(1)}},
		{"map", map[string]any{"k": int64(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFrame(
				Schema{{Name: "a", Type: Object}},
				[][]any{{tt.cell}},
			)
			if err == nil {
				t.Fatalf("expected error for %T cell", tt.cell)
			}
		})
	}
}

func TestNewFrame_NilCellAllowed(t *testing.T) {
	f, err := NewFrame(
		Schema{{Name: "a", Type: Int}},
		[][]any{{nil}, {int64(2)}},
	)
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}
	s, err := f.Column("a")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	if got := s.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
}

func TestFrame_Column(t *testing.T) {
	f := testFrame(t)
	s, err := f.Column("gdp")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	if len(s.Values) != 4 {
		t.Errorf("Column() len = %d, want 4", len(s.Values))
	}
	if _, err := f.Column("missing"); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestFrame_Where(t *testing.T) {
	f := testFrame(t)
	s, err := f.Column("gdp")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	mask, err := s.Compare(">", int64(5))
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	got, err := f.Where(mask)
	if err != nil {
		t.Fatalf("Where() error = %v", err)
	}
	if got.NumRows() != 2 {
		t.Errorf("Where() rows = %d, want 2", got.NumRows())
	}
}

func TestFrame_WhereMaskLengthMismatch(t *testing.T) {
	f := testFrame(t)
	if _, err := f.Where([]bool{true}); err == nil {
		t.Error("expected error for short mask")
	}
}

func TestFrame_Head(t *testing.T) {
	f := testFrame(t)
	if got := f.Head(2).NumRows(); got != 2 {
		t.Errorf("Head(2) rows = %d, want 2", got)
	}
	if got := f.Head(10).NumRows(); got != 4 {
		t.Errorf("Head(10) rows = %d, want 4", got)
	}
}

func TestFrame_SortValues(t *testing.T) {
	f := testFrame(t)
	sorted, err := f.SortValues("gdp", true)
	if err != nil {
		t.Fatalf("SortValues() error = %v", err)
	}
	if sorted.Rows[0][0] != "de" {
		t.Errorf("ascending first row = %v, want de", sorted.Rows[0][0])
	}
	// Original is untouched
	if f.Rows[0][0] != "us" {
		t.Errorf("source frame mutated, first row = %v", f.Rows[0][0])
	}
	desc, err := f.SortValues("gdp", false)
	if err != nil {
		t.Fatalf("SortValues() error = %v", err)
	}
	if desc.Rows[0][0] != "us" {
		t.Errorf("descending first row = %v, want us", desc.Rows[0][0])
	}
}

func TestFrame_GroupByAggregates(t *testing.T) {
	f, err := NewFrame(
		Schema{
			{Name: "dept", Type: Object},
			{Name: "salary", Type: Int},
		},
		[][]any{
			{"eng", int64(10)},
			{"sales", int64(6)},
			{"eng", int64(8)},
		},
	)
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}
	g, err := f.GroupBy("dept")
	if err != nil {
		t.Fatalf("GroupBy() error = %v", err)
	}

	counts := g.Count()
	if counts.NumRows() != 2 {
		t.Fatalf("Count() rows = %d, want 2", counts.NumRows())
	}

	sums, err := g.Sum("salary")
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	found := false
	for _, row := range sums.Rows {
		if row[0] == "eng" {
			found = true
			if row[1] != float64(18) {
				t.Errorf("Sum(eng) = %v, want 18", row[1])
			}
		}
	}
	if !found {
		t.Error("Sum() missing eng group")
	}

	means, err := g.Mean("salary")
	if err != nil {
		t.Fatalf("Mean() error = %v", err)
	}
	for _, row := range means.Rows {
		if row[0] == "eng" && row[1] != float64(9) {
			t.Errorf("Mean(eng) = %v, want 9", row[1])
		}
	}
}

func TestConcat(t *testing.T) {
	a := testFrame(t)
	b := testFrame(t)
	got, err := Concat([]*Frame{a, b})
	if err != nil {
		t.Fatalf("Concat() error = %v", err)
	}
	if got.NumRows() != 8 {
		t.Errorf("Concat() rows = %d, want 8", got.NumRows())
	}
}

func TestConcat_SchemaMismatch(t *testing.T) {
	a := testFrame(t)
	b, err := NewFrame(Schema{{Name: "x", Type: Int}}, nil)
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}
	if _, err := Concat([]*Frame{a, b}); err == nil {
		t.Error("expected error for mismatched schemas")
	}
}

func TestFingerprint(t *testing.T) {
	a := Schema{{Name: "x", Type: Int}, {Name: "y", Type: Object}}
	b := Schema{{Name: "x", Type: Int}, {Name: "y", Type: Object}}
	c := Schema{{Name: "x", Type: Float}, {Name: "y", Type: Object}}
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("identical schemas produced different fingerprints")
	}
	if Fingerprint(a) == Fingerprint(c) {
		t.Error("different schemas produced the same fingerprint")
	}
	if len(Fingerprint(a)) != 8 {
		t.Errorf("Fingerprint() length = %d, want 8", len(Fingerprint(a)))
	}
}
