package snippet

import (
	"errors"
	"testing"
)

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return prog
}

func TestParse_Assignment(t *testing.T) {
	prog := mustParse(t, "x = 1 + 2 * 3\n")
	if len(prog.Stmts) != 1 {
		t.Fatalf("statements = %d, want 1", len(prog.Stmts))
	}
	stmt := prog.Stmts[0]
	if stmt.Kind != KindAssign {
		t.Fatalf("kind = %s, want Assign", stmt.Kind)
	}
	if stmt.Target.Name != "x" {
		t.Errorf("target = %q, want x", stmt.Target.Name)
	}
	// Precedence: 1 + (2 * 3)
	if stmt.X.Kind != KindBinary || stmt.X.Name != "+" {
		t.Fatalf("value = %s %q, want Binary +", stmt.X.Kind, stmt.X.Name)
	}
	if stmt.X.Y.Kind != KindBinary || stmt.X.Y.Name != "*" {
		t.Errorf("right operand = %s %q, want Binary *", stmt.X.Y.Kind, stmt.X.Y.Name)
	}
}

func TestParse_ComparisonChain(t *testing.T) {
	prog := mustParse(t, "ok = 1 < x <= 10\n")
	cmp := prog.Stmts[0].X
	if cmp.Kind != KindCompare {
		t.Fatalf("kind = %s, want Compare", cmp.Kind)
	}
	if len(cmp.Ops) != 2 || cmp.Ops[0] != "<" || cmp.Ops[1] != "<=" {
		t.Errorf("ops = %v, want [< <=]", cmp.Ops)
	}
	if len(cmp.Comparators) != 2 {
		t.Errorf("comparators = %d, want 2", len(cmp.Comparators))
	}
}

func TestParse_NotInAndIsNot(t *testing.T) {
	prog := mustParse(t, "a = x not in [1, 2]\nb = y is not 3\n")
	if got := prog.Stmts[0].X.Ops[0]; got != "not in" {
		t.Errorf("first op = %q, want \"not in\"", got)
	}
	if got := prog.Stmts[1].X.Ops[0]; got != "is not" {
		t.Errorf("second op = %q, want \"is not\"", got)
	}
}

func TestParse_ForBlock(t *testing.T) {
	src := "total = 0\nfor df in dfs:\n    total = total + 1\nresult = total\n"
	prog := mustParse(t, src)
	if len(prog.Stmts) != 3 {
		t.Fatalf("statements = %d, want 3", len(prog.Stmts))
	}
	loop := prog.Stmts[1]
	if loop.Kind != KindFor {
		t.Fatalf("kind = %s, want For", loop.Kind)
	}
	if loop.Target.Name != "df" || loop.X.Name != "dfs" {
		t.Errorf("loop = for %s in %s, want for df in dfs", loop.Target.Name, loop.X.Name)
	}
	if len(loop.Body) != 1 {
		t.Errorf("body statements = %d, want 1", len(loop.Body))
	}
}

func TestParse_InlineFor(t *testing.T) {
	prog := mustParse(t, "for df in dfs: total = total + 1\n")
	if len(prog.Stmts[0].Body) != 1 {
		t.Errorf("body statements = %d, want 1", len(prog.Stmts[0].Body))
	}
}

func TestParse_DictAndListLiterals(t *testing.T) {
	prog := mustParse(t, "result = {'type': 'number', 'value': [1, 2, 3]}\n")
	dict := prog.Stmts[0].X
	if dict.Kind != KindDict {
		t.Fatalf("kind = %s, want Dict", dict.Kind)
	}
	if len(dict.Keys) != 2 || len(dict.Vals) != 2 {
		t.Fatalf("dict entries = %d/%d, want 2/2", len(dict.Keys), len(dict.Vals))
	}
	if dict.Vals[1].Kind != KindList || len(dict.Vals[1].Elems) != 3 {
		t.Errorf("second value = %s with %d elems, want List with 3", dict.Vals[1].Kind, len(dict.Vals[1].Elems))
	}
}

func TestParse_BracketsJoinLines(t *testing.T) {
	src := "xs = [1,\n      2,\n      3]\n"
	prog := mustParse(t, src)
	if got := len(prog.Stmts[0].X.Elems); got != 3 {
		t.Errorf("list elems = %d, want 3", got)
	}
}

func TestParse_SubscriptAndAttributeChain(t *testing.T) {
	prog := mustParse(t, "v = dfs[0]['gdp'].sum()\n")
	call := prog.Stmts[0].X
	if call.Kind != KindCall || call.X.Kind != KindAttribute || call.X.Name != "sum" {
		t.Fatalf("expected call of attribute sum, got %s", call.Kind)
	}
	sub := call.X.X
	if sub.Kind != KindSubscript || sub.Index.Value != "gdp" {
		t.Fatalf("expected ['gdp'] subscript, got %s %v", sub.Kind, sub.Index)
	}
	if sub.X.Kind != KindSubscript || sub.X.Index.Value != int64(0) {
		t.Errorf("expected dfs[0] base, got %s %v", sub.X.Kind, sub.X.Index)
	}
}

func TestParse_Import(t *testing.T) {
	prog := mustParse(t, "import math\n")
	if prog.Stmts[0].Kind != KindImport || prog.Stmts[0].Name != "math" {
		t.Errorf("got %s %q, want Import math", prog.Stmts[0].Kind, prog.Stmts[0].Name)
	}
}

func TestParse_CommentsAndBlankLines(t *testing.T) {
	src := "# compute the answer\n\nx = 1  # trailing\n"
	prog := mustParse(t, src)
	if len(prog.Stmts) != 1 {
		t.Errorf("statements = %d, want 1", len(prog.Stmts))
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unexpected character", "x = a & b\n"},
		{"unterminated string", "x = 'abc\n"},
		{"dangling operator", "x = 1 +\n"},
		{"bad indentation", "for df in dfs:\n    x = 1\n  y = 2\n"},
		{"missing for colon", "for df in dfs\n    x = 1\n"},
		{"unclosed bracket", "x = [1, 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			if err == nil {
				t.Fatal("expected parse error")
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("error = %v, want ErrMalformed", err)
			}
			var mse *MalformedSnippetError
			if !errors.As(err, &mse) {
				t.Errorf("error type = %T, want *MalformedSnippetError", err)
			}
		})
	}
}
