package snippet

// Well-known binding names shared between the analyses and the sandbox.
const (
	// FramesBinding is the name of the ordered dataset collection
	// injected into every snippet's namespace.
	FramesBinding = "dfs"

	// FrameBinding is the convenience alias bound when exactly one
	// dataset is in play.
	FrameBinding = "df"

	// ResultBinding is the variable a snippet must assign its final
	// answer to.
	ResultBinding = "result"
)

// Kind identifies the variant of a Node. The set is closed: the
// evaluator and the analyses switch exhaustively over it.
type Kind int

const (
	// Statements.
	KindAssign Kind = iota
	KindFor
	KindImport
	KindExprStmt

	// Expressions.
	KindName
	KindLiteral
	KindList
	KindDict
	KindSubscript
	KindAttribute
	KindCall
	KindCompare
	KindBinary
	KindUnary
	KindBoolOp
)

var kindNames = map[Kind]string{
	KindAssign:    "assign",
	KindFor:       "for",
	KindImport:    "import",
	KindExprStmt:  "expr",
	KindName:      "name",
	KindLiteral:   "literal",
	KindList:      "list",
	KindDict:      "dict",
	KindSubscript: "subscript",
	KindAttribute: "attribute",
	KindCall:      "call",
	KindCompare:   "compare",
	KindBinary:    "binary",
	KindUnary:     "unary",
	KindBoolOp:    "boolop",
}

func (k Kind) String() string { return kindNames[k] }

// Node is one tagged-variant tree node. Which fields are meaningful
// depends on Kind:
//
//	Assign:    Target (Name/Subscript/Attribute), X (value)
//	For:       Target (Name), X (iterable), Body
//	Import:    Name (module)
//	ExprStmt:  X
//	Name:      Name
//	Literal:   Value (string, int64, float64, bool, or nil)
//	List:      Elems
//	Dict:      Keys, Vals (parallel)
//	Subscript: X (base), Index
//	Attribute: X (base), Name (attribute)
//	Call:      X (callee), Args
//	Compare:   X (left), Ops, Comparators (parallel; chains allowed)
//	Binary:    Name (operator), X, Y
//	Unary:     Name (operator), X
//	BoolOp:    Name ("and"/"or"), X, Y
type Node struct {
	Kind Kind
	Line int
	Col  int

	Name  string
	Value any

	Target      *Node
	X           *Node
	Y           *Node
	Index       *Node
	Ops         []string
	Comparators []*Node
	Args        []*Node
	Elems       []*Node
	Keys        []*Node
	Vals        []*Node
	Body        []*Node
}

// Walk calls fn for every node in the subtree rooted at n, parents
// before children, statements in source order.
func Walk(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.children() {
		Walk(c, fn)
	}
}

func (n *Node) children() []*Node {
	var out []*Node
	add := func(c *Node) {
		if c != nil {
			out = append(out, c)
		}
	}
	add(n.Target)
	add(n.X)
	add(n.Y)
	add(n.Index)
	for _, c := range n.Comparators {
		add(c)
	}
	for _, c := range n.Args {
		add(c)
	}
	for _, c := range n.Elems {
		add(c)
	}
	for _, c := range n.Keys {
		add(c)
	}
	for _, c := range n.Vals {
		add(c)
	}
	for _, c := range n.Body {
		add(c)
	}
	return out
}

// Program is a parsed snippet: its statements in source order.
type Program struct {
	Stmts []*Node
}

// Walk visits every node of every statement in source order.
func (p *Program) Walk(fn func(*Node)) {
	for _, s := range p.Stmts {
		Walk(s, fn)
	}
}
