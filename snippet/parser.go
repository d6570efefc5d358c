package snippet

// Pratt-style parser over the token stream. Statements are newline
// delimited; for-bodies are INDENT/DEDENT delimited.

type parser struct {
	toks []token
	i    int
}

// Parse parses snippet source into a Program. Any failure is reported
// as a *MalformedSnippetError (matching ErrMalformed).
func Parse(src string) (*Program, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	prog := &Program{}
	for !p.at(tokEOF) {
		p.skipNewlines()
		if p.at(tokEOF) {
			break
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}
	return prog, nil
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) at(tt tokenType) bool { return p.toks[p.i].Type == tt }

func (p *parser) atOp(text string) bool {
	t := p.peek()
	return t.Type == tokOp && t.Text == text
}

func (p *parser) atKeyword(text string) bool {
	t := p.peek()
	return t.Type == tokKeyword && t.Text == text
}

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.Type != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) expectOp(text string) (token, error) {
	if !p.atOp(text) {
		t := p.peek()
		return t, malformedf(t.Line, t.Col, "expected %q, found %q", text, tokenText(t))
	}
	return p.next(), nil
}

func (p *parser) skipNewlines() {
	for p.at(tokNewline) {
		p.next()
	}
}

func (p *parser) endStatement() error {
	if p.at(tokNewline) {
		p.next()
		return nil
	}
	if p.at(tokEOF) || p.at(tokDedent) {
		return nil
	}
	t := p.peek()
	return malformedf(t.Line, t.Col, "unexpected %q after statement", tokenText(t))
}

func (p *parser) statement() (*Node, error) {
	t := p.peek()
	switch {
	case p.atKeyword("import"):
		return p.importStmt()
	case p.atKeyword("for"):
		return p.forStmt()
	}
	expr, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if p.atOp("=") {
		eq := p.next()
		if expr.Kind != KindName && expr.Kind != KindSubscript && expr.Kind != KindAttribute {
			return nil, malformedf(eq.Line, eq.Col, "cannot assign to %s expression", expr.Kind)
		}
		value, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if err := p.endStatement(); err != nil {
			return nil, err
		}
		return &Node{Kind: KindAssign, Line: t.Line, Col: t.Col, Target: expr, X: value}, nil
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return &Node{Kind: KindExprStmt, Line: t.Line, Col: t.Col, X: expr}, nil
}

func (p *parser) importStmt() (*Node, error) {
	kw := p.next()
	name := p.peek()
	if name.Type != tokIdent {
		return nil, malformedf(name.Line, name.Col, "expected module name after import")
	}
	p.next()
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return &Node{Kind: KindImport, Line: kw.Line, Col: kw.Col, Name: name.Text}, nil
}

func (p *parser) forStmt() (*Node, error) {
	kw := p.next()
	loopVar := p.peek()
	if loopVar.Type != tokIdent {
		return nil, malformedf(loopVar.Line, loopVar.Col, "expected loop variable after for")
	}
	p.next()
	if !p.atKeyword("in") {
		t := p.peek()
		return nil, malformedf(t.Line, t.Col, "expected in, found %q", tokenText(t))
	}
	p.next()
	iterable, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp(":"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &Node{
		Kind:   KindFor,
		Line:   kw.Line,
		Col:    kw.Col,
		Target: &Node{Kind: KindName, Line: loopVar.Line, Col: loopVar.Col, Name: loopVar.Text},
		X:      iterable,
		Body:   body,
	}, nil
}

// block parses either an inline statement after the colon or an
// indented suite on the following lines.
func (p *parser) block() ([]*Node, error) {
	if !p.at(tokNewline) {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		return []*Node{stmt}, nil
	}
	p.next()
	if !p.at(tokIndent) {
		t := p.peek()
		return nil, malformedf(t.Line, t.Col, "expected indented block")
	}
	p.next()
	var body []*Node
	for !p.at(tokDedent) && !p.at(tokEOF) {
		p.skipNewlines()
		if p.at(tokDedent) || p.at(tokEOF) {
			break
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	if p.at(tokDedent) {
		p.next()
	}
	if len(body) == 0 {
		t := p.peek()
		return nil, malformedf(t.Line, t.Col, "empty block")
	}
	return body, nil
}

// Expression parsing by precedence climbing.

const (
	bpOr      = 10
	bpAnd     = 20
	bpNot     = 30
	bpCompare = 40
	bpAdd     = 50
	bpMul     = 60
	bpUnary   = 70
	bpPostfix = 80
)

func (p *parser) expr(minBP int) (*Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		switch {
		case p.atKeyword("or") && bpOr >= minBP:
			p.next()
			right, err := p.expr(bpOr + 1)
			if err != nil {
				return nil, err
			}
			left = &Node{Kind: KindBoolOp, Line: t.Line, Col: t.Col, Name: "or", X: left, Y: right}
		case p.atKeyword("and") && bpAnd >= minBP:
			p.next()
			right, err := p.expr(bpAnd + 1)
			if err != nil {
				return nil, err
			}
			left = &Node{Kind: KindBoolOp, Line: t.Line, Col: t.Col, Name: "and", X: left, Y: right}
		case p.comparisonAhead() && bpCompare >= minBP:
			left, err = p.comparison(left)
			if err != nil {
				return nil, err
			}
		case t.Type == tokOp && (t.Text == "+" || t.Text == "-") && bpAdd >= minBP:
			p.next()
			right, err := p.expr(bpAdd + 1)
			if err != nil {
				return nil, err
			}
			left = &Node{Kind: KindBinary, Line: t.Line, Col: t.Col, Name: t.Text, X: left, Y: right}
		case t.Type == tokOp && (t.Text == "*" || t.Text == "/" || t.Text == "%") && bpMul >= minBP:
			p.next()
			right, err := p.expr(bpMul + 1)
			if err != nil {
				return nil, err
			}
			left = &Node{Kind: KindBinary, Line: t.Line, Col: t.Col, Name: t.Text, X: left, Y: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) comparisonAhead() bool {
	t := p.peek()
	if t.Type == tokOp {
		switch t.Text {
		case "==", "!=", "<", "<=", ">", ">=":
			return true
		}
		return false
	}
	if t.Type == tokKeyword {
		switch t.Text {
		case "in", "is":
			return true
		case "not":
			// "not in" as a comparison; bare "not" is a unary prefix.
			return p.i+1 < len(p.toks) && p.toks[p.i+1].Type == tokKeyword && p.toks[p.i+1].Text == "in"
		}
	}
	return false
}

// comparison consumes a chain such as a < b <= c, collecting operator
// symbols and comparators in parallel slices.
func (p *parser) comparison(left *Node) (*Node, error) {
	node := &Node{Kind: KindCompare, Line: left.Line, Col: left.Col, X: left}
	for p.comparisonAhead() {
		op, err := p.comparisonOp()
		if err != nil {
			return nil, err
		}
		right, err := p.expr(bpCompare + 1)
		if err != nil {
			return nil, err
		}
		node.Ops = append(node.Ops, op)
		node.Comparators = append(node.Comparators, right)
	}
	return node, nil
}

func (p *parser) comparisonOp() (string, error) {
	t := p.next()
	if t.Type == tokOp {
		return t.Text, nil
	}
	switch t.Text {
	case "in":
		return "in", nil
	case "is":
		if p.atKeyword("not") {
			p.next()
			return "is not", nil
		}
		return "is", nil
	case "not":
		if p.atKeyword("in") {
			p.next()
			return "not in", nil
		}
	}
	return "", malformedf(t.Line, t.Col, "expected comparison operator, found %q", tokenText(t))
}

func (p *parser) unary() (*Node, error) {
	t := p.peek()
	if p.atKeyword("not") {
		p.next()
		operand, err := p.expr(bpNot)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindUnary, Line: t.Line, Col: t.Col, Name: "not", X: operand}, nil
	}
	if t.Type == tokOp && t.Text == "-" {
		p.next()
		operand, err := p.expr(bpUnary)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindUnary, Line: t.Line, Col: t.Col, Name: "-", X: operand}, nil
	}
	return p.postfix()
}

func (p *parser) postfix() (*Node, error) {
	node, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		switch {
		case p.atOp("."):
			p.next()
			attr := p.peek()
			if attr.Type != tokIdent && attr.Type != tokKeyword {
				return nil, malformedf(attr.Line, attr.Col, "expected attribute name after '.'")
			}
			p.next()
			node = &Node{Kind: KindAttribute, Line: t.Line, Col: t.Col, X: node, Name: attr.Text}
		case p.atOp("("):
			p.next()
			args, err := p.callArgs()
			if err != nil {
				return nil, err
			}
			node = &Node{Kind: KindCall, Line: t.Line, Col: t.Col, X: node, Args: args}
		case p.atOp("["):
			p.next()
			index, err := p.expr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.expectOp("]"); err != nil {
				return nil, err
			}
			node = &Node{Kind: KindSubscript, Line: t.Line, Col: t.Col, X: node, Index: index}
		default:
			return node, nil
		}
	}
}

func (p *parser) callArgs() ([]*Node, error) {
	var args []*Node
	if p.atOp(")") {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.atOp(",") {
			p.next()
			continue
		}
		if _, err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return args, nil
	}
}

func (p *parser) primary() (*Node, error) {
	t := p.peek()
	switch t.Type {
	case tokIdent:
		p.next()
		return &Node{Kind: KindName, Line: t.Line, Col: t.Col, Name: t.Text}, nil
	case tokInt:
		p.next()
		return &Node{Kind: KindLiteral, Line: t.Line, Col: t.Col, Value: parseInt(t.Text)}, nil
	case tokFloat:
		p.next()
		return &Node{Kind: KindLiteral, Line: t.Line, Col: t.Col, Value: parseFloat(t.Text)}, nil
	case tokString:
		p.next()
		return &Node{Kind: KindLiteral, Line: t.Line, Col: t.Col, Value: t.Text}, nil
	case tokKeyword:
		switch t.Text {
		case "True":
			p.next()
			return &Node{Kind: KindLiteral, Line: t.Line, Col: t.Col, Value: true}, nil
		case "False":
			p.next()
			return &Node{Kind: KindLiteral, Line: t.Line, Col: t.Col, Value: false}, nil
		case "None":
			p.next()
			return &Node{Kind: KindLiteral, Line: t.Line, Col: t.Col, Value: nil}, nil
		}
	case tokOp:
		switch t.Text {
		case "(":
			p.next()
			inner, err := p.expr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return inner, nil
		case "[":
			return p.listLiteral()
		case "{":
			return p.dictLiteral()
		}
	}
	return nil, malformedf(t.Line, t.Col, "unexpected %q", tokenText(t))
}

func (p *parser) listLiteral() (*Node, error) {
	open := p.next()
	node := &Node{Kind: KindList, Line: open.Line, Col: open.Col}
	if p.atOp("]") {
		p.next()
		return node, nil
	}
	for {
		elem, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		node.Elems = append(node.Elems, elem)
		if p.atOp(",") {
			p.next()
			if p.atOp("]") {
				break
			}
			continue
		}
		break
	}
	if _, err := p.expectOp("]"); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) dictLiteral() (*Node, error) {
	open := p.next()
	node := &Node{Kind: KindDict, Line: open.Line, Col: open.Col}
	if p.atOp("}") {
		p.next()
		return node, nil
	}
	for {
		key, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expectOp(":"); err != nil {
			return nil, err
		}
		val, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		node.Keys = append(node.Keys, key)
		node.Vals = append(node.Vals, val)
		if p.atOp(",") {
			p.next()
			if p.atOp("}") {
				break
			}
			continue
		}
		break
	}
	if _, err := p.expectOp("}"); err != nil {
		return nil, err
	}
	return node, nil
}

func tokenText(t token) string {
	switch t.Type {
	case tokEOF:
		return "end of snippet"
	case tokNewline:
		return "newline"
	case tokIndent:
		return "indent"
	case tokDedent:
		return "dedent"
	}
	return t.Text
}
