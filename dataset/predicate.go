package dataset

import "fmt"

// Predicate is one comparison constraint extracted from a generated
// snippet, used to scope what a connector must materialize. Left and
// Right are operand tokens: column names, literals, or method names,
// depending on what the snippet compared.
type Predicate struct {
	Left  any
	Op    string
	Right any
}

// String renders the predicate in filter-expression order.
func (p Predicate) String() string {
	return fmt.Sprintf("%v %s %v", p.Left, p.Op, p.Right)
}
