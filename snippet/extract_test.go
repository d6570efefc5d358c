package snippet

import (
	"testing"

	"github.com/framechat/framechat/dataset"
)

func extract(t *testing.T, src string) map[int][]dataset.Predicate {
	t.Helper()
	filters, err := ExtractFilters(mustParse(t, src))
	if err != nil {
		t.Fatalf("ExtractFilters() error = %v", err)
	}
	return filters
}

func TestExtractFilters_SingleSlotOrdering(t *testing.T) {
	src := `df = dfs[0]
paid = df[df['loan_status'] == 'PAIDOFF']
older = paid[paid['age'] > 30]
result = {'type': 'number', 'value': older['age'].count()}
`
	filters := extract(t, src)
	got := filters[0]
	want := []dataset.Predicate{
		{Left: "loan_status", Op: "=", Right: "PAIDOFF"},
		{Left: "age", Op: ">", Right: int64(30)},
	}
	if len(got) != len(want) {
		t.Fatalf("filters[0] = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("filters[0][%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestExtractFilters_SlotFromAssignment(t *testing.T) {
	src := `df1 = dfs[1]
high = df1[df1['gdp'] > 10]
`
	filters := extract(t, src)
	if len(filters[1]) != 1 {
		t.Fatalf("filters[1] = %v, want one predicate", filters[1])
	}
	if len(filters[0]) != 0 {
		t.Errorf("filters[0] = %v, want none", filters[0])
	}
}

func TestExtractFilters_StickySlot(t *testing.T) {
	// The second comparison is over a name with no dfs assignment; it
	// inherits the slot of the previous comparison.
	src := `df1 = dfs[1]
high = df1[df1['gdp'] > 10]
tiny = high[high['pop'] < 5]
`
	filters := extract(t, src)
	if len(filters[1]) != 2 {
		t.Fatalf("filters[1] has %d predicates, want 2", len(filters[1]))
	}
	if filters[1][1].Left != "pop" || filters[1][1].Op != "<" {
		t.Errorf("sticky predicate = %v, want pop < 5", filters[1][1])
	}
}

func TestExtractFilters_DefaultSlotZero(t *testing.T) {
	src := "x = df[df['age'] >= 18]\n"
	filters := extract(t, src)
	if len(filters[0]) != 1 {
		t.Fatalf("filters[0] = %v, want one predicate", filters[0])
	}
	if filters[0][0] != (dataset.Predicate{Left: "age", Op: ">=", Right: int64(18)}) {
		t.Errorf("predicate = %v", filters[0][0])
	}
}

func TestExtractFilters_ReassignmentWins(t *testing.T) {
	src := `df = dfs[0]
df = dfs[2]
x = df[df['a'] == 1]
`
	filters := extract(t, src)
	if len(filters[2]) != 1 {
		t.Errorf("filters[2] = %v, want the predicate on the latest assignment", filters[2])
	}
}

func TestExtractFilters_SkipsUntokenizableComparators(t *testing.T) {
	src := `a = df[df['x'] in [1, 2]]
b = df[df['y'] == 3]
`
	filters := extract(t, src)
	// The list comparator cannot be flattened; only the second
	// comparison yields a predicate.
	if len(filters[0]) != 1 {
		t.Fatalf("filters[0] = %v, want one predicate", filters[0])
	}
	if filters[0][0].Left != "y" {
		t.Errorf("kept predicate = %v, want y = 3", filters[0][0])
	}
}

func TestExtractFilters_ChainedComparison(t *testing.T) {
	src := "x = df[18 <= df['age']]\ny = df[df['age'] < 30 ]\n"
	filters := extract(t, src)
	// Only comparisons whose left side is a subscript participate.
	if len(filters[0]) != 1 {
		t.Fatalf("filters[0] = %v, want one predicate", filters[0])
	}
}

func TestNeedsAllFrames(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"for over dfs", "for df in dfs:\n    x = 1\n", true},
		{"concat of dfs", "all = concat(dfs)\n", true},
		{"single slot", "x = dfs[0]['a'].sum()\n", false},
		{"dfs element arg", "x = concat([dfs[0]])\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsAllFrames(mustParse(t, tt.src)); got != tt.want {
				t.Errorf("NeedsAllFrames() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReferencedSlots(t *testing.T) {
	prog := mustParse(t, "a = dfs[0]['x'].sum()\nb = dfs[2]['y'].sum()\n")
	got := ReferencedSlots(prog, 3)
	want := []bool{true, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ReferencedSlots()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReferencedSlots_FallbackAllRequired(t *testing.T) {
	prog := mustParse(t, "x = df['a'].sum()\n")
	for i, req := range ReferencedSlots(prog, 2) {
		if !req {
			t.Errorf("slot %d not required, want all required when no dfs[i] appears", i)
		}
	}
}
