package snippet

import (
	"fmt"
	"sort"

	"github.com/framechat/framechat/dataset"
)

// comparatorSymbols maps parsed comparison operators to the filter
// symbols connectors understand.
var comparatorSymbols = map[string]string{
	"==":     "=",
	"!=":     "!=",
	"<":      "<",
	"<=":     "<=",
	">":      ">",
	">=":     ">=",
	"is":     "is",
	"is not": "is not",
	"in":     "in",
	"not in": "not in",
}

// ExtractFilters collects per-slot comparison predicates from a parsed
// snippet, keyed by dataset slot index. Predicates appear in source
// order. Comparisons whose owning slot cannot be determined are
// attributed to the slot of the previous comparison, initially slot 0.
//
// Comparisons whose operands cannot be flattened into tokens are
// skipped; a skipped predicate only costs pruning, never correctness.
// The error return is reserved for programs whose shape defeats the
// walk entirely; callers degrade to "no predicates" when it is set.
func ExtractFilters(prog *Program) (map[int][]dataset.Predicate, error) {
	assignments := collectAssignments(prog)
	_ = collectCalls(prog) // call index kept for parity with assignments; see NeedsAllFrames

	filters := make(map[int][]dataset.Predicate)
	currentSlot := 0

	prog.Walk(func(n *Node) {
		if n.Kind != KindCompare || n.X == nil || n.X.Kind != KindSubscript {
			return
		}
		tokens, err := tokenizeOperand(n.X)
		if err != nil || len(tokens) == 0 {
			return
		}
		name, _ := tokens[0].(string)
		if slot, ok := slotByNearestAssignment(n.Line, assignments, name); ok {
			currentSlot = slot
		}
		left := tokens[len(tokens)-1]

		for i, op := range n.Ops {
			symbol, ok := comparatorSymbols[op]
			if !ok {
				symbol = "Unknown"
			}
			rtokens, err := tokenizeOperand(n.Comparators[i])
			if err != nil || len(rtokens) == 0 {
				continue
			}
			right := rtokens[len(rtokens)-1]
			filters[currentSlot] = append(filters[currentSlot], dataset.Predicate{
				Left:  left,
				Op:    symbol,
				Right: right,
			})
		}
	})
	return filters, nil
}

// tokenizeOperand flattens an operand expression into its token chain:
// a call yields its attribute name, a subscript yields the base chain
// followed by the index literal, a name yields the identifier, and a
// literal yields its value. foo[2][1] becomes ("foo", 2, 1).
func tokenizeOperand(n *Node) ([]any, error) {
	switch n.Kind {
	case KindCall:
		if n.X != nil && n.X.Kind == KindAttribute {
			return []any{n.X.Name}, nil
		}
		if n.X != nil && n.X.Kind == KindName {
			return []any{n.X.Name}, nil
		}
		return nil, fmt.Errorf("snippet: cannot tokenize call at line %d", n.Line)
	case KindSubscript:
		base, err := tokenizeOperand(n.X)
		if err != nil {
			return nil, err
		}
		if n.Index.Kind != KindLiteral {
			return nil, fmt.Errorf("snippet: non-literal subscript index at line %d", n.Line)
		}
		return append(base, n.Index.Value), nil
	case KindName:
		return []any{n.Name}, nil
	case KindLiteral:
		return []any{n.Value}, nil
	case KindUnary:
		if n.Name == "-" && n.X.Kind == KindLiteral {
			switch v := n.X.Value.(type) {
			case int64:
				return []any{-v}, nil
			case float64:
				return []any{-v}, nil
			}
		}
	case KindAttribute:
		return []any{n.Name}, nil
	}
	return nil, fmt.Errorf("snippet: cannot tokenize %s operand at line %d", n.Kind, n.Line)
}

// frameAssignment is one `name = dfs[i]` binding with its source line.
type frameAssignment struct {
	line   int
	target string
	slot   int
}

// collectAssignments indexes simple assignments of the form
// name = dfs[<literal int>], ordered by source line.
func collectAssignments(prog *Program) []frameAssignment {
	var out []frameAssignment
	prog.Walk(func(n *Node) {
		if n.Kind != KindAssign || n.Target.Kind != KindName {
			return
		}
		v := n.X
		if v.Kind != KindSubscript || v.X == nil || v.X.Kind != KindName || v.X.Name != FramesBinding {
			return
		}
		idx, ok := v.Index.Value.(int64)
		if v.Index.Kind != KindLiteral || !ok {
			return
		}
		out = append(out, frameAssignment{line: n.Line, target: n.Target.Name, slot: int(idx)})
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].line < out[j].line })
	return out
}

// collectCalls indexes every call node in source order.
func collectCalls(prog *Program) []*Node {
	var out []*Node
	prog.Walk(func(n *Node) {
		if n.Kind == KindCall {
			out = append(out, n)
		}
	})
	return out
}

// slotByNearestAssignment finds the most recent assignment of target
// at or before line and returns its slot. Later assignments win over
// earlier ones; assignments past the current line are ignored.
func slotByNearestAssignment(line int, assignments []frameAssignment, target string) (int, bool) {
	slot, found := 0, false
	for _, a := range assignments {
		if a.line > line {
			break
		}
		if a.target == target {
			slot, found = a.slot, true
		}
	}
	return slot, found
}

// NeedsAllFrames reports whether the snippet uses an idiom that
// requires the whole dataset collection: a for loop over dfs, or a call
// passing bare dfs (typically a concat).
func NeedsAllFrames(prog *Program) bool {
	needs := false
	prog.Walk(func(n *Node) {
		switch n.Kind {
		case KindFor:
			if n.X != nil && n.X.Kind == KindName && n.X.Name == FramesBinding {
				needs = true
			}
		case KindCall:
			for _, arg := range n.Args {
				if arg.Kind == KindName && arg.Name == FramesBinding {
					needs = true
				}
			}
		}
	})
	return needs
}

// ReferencedSlots returns, for n dataset slots, which slots the snippet
// indexes into via a literal dfs[i] subscript. When no slot is
// referenced at all every slot is reported as required, preserving
// behavior for snippets that only use the df convenience binding.
func ReferencedSlots(prog *Program, n int) []bool {
	out := make([]bool, n)
	seen := false
	prog.Walk(func(node *Node) {
		if node.Kind != KindSubscript || node.X == nil || node.X.Kind != KindName || node.X.Name != FramesBinding {
			return
		}
		if node.Index.Kind != KindLiteral {
			return
		}
		if idx, ok := node.Index.Value.(int64); ok && idx >= 0 && int(idx) < n {
			out[idx] = true
			seen = true
		}
	})
	if !seen {
		for i := range out {
			out[i] = true
		}
	}
	return out
}
