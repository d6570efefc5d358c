package snippet

import (
	"strconv"
	"strings"
	"unicode"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokNewline
	tokIndent
	tokDedent
	tokIdent
	tokKeyword
	tokInt
	tokFloat
	tokString
	tokOp
)

var keywords = map[string]bool{
	"for": true, "in": true, "not": true, "is": true,
	"and": true, "or": true, "import": true,
	"True": true, "False": true, "None": true,
}

type token struct {
	Type tokenType
	Text string
	Line int
	Col  int
}

type lexer struct {
	src     string
	pos     int
	line    int
	col     int
	indents []int
	// depth tracks open brackets; newlines inside brackets are joined.
	depth int
	toks  []token
}

// lex tokenizes the snippet source, producing NEWLINE at logical line
// ends and INDENT/DEDENT pairs around nested blocks, Python-style.
func lex(src string) ([]token, error) {
	l := &lexer{src: src, line: 1, col: 1, indents: []int{0}}
	atLineStart := true
	for l.pos < len(l.src) {
		if atLineStart && l.depth == 0 {
			if err := l.lineStart(); err != nil {
				return nil, err
			}
			atLineStart = false
			continue
		}
		c := l.src[l.pos]
		switch {
		case c == '\n':
			if l.depth == 0 {
				l.emitNewline()
			}
			l.advance()
			l.line++
			l.col = 1
			atLineStart = l.depth == 0
		case c == ' ' || c == '\t' || c == '\r':
			l.advance()
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}
		case c == '\'' || c == '"':
			if err := l.lexString(c); err != nil {
				return nil, err
			}
		case c >= '0' && c <= '9':
			l.lexNumber()
		case isIdentStart(rune(c)):
			l.lexIdent()
		default:
			if err := l.lexOperator(); err != nil {
				return nil, err
			}
		}
	}
	if l.depth == 0 {
		l.emitNewline()
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.toks = append(l.toks, token{Type: tokDedent, Line: l.line, Col: l.col})
	}
	l.toks = append(l.toks, token{Type: tokEOF, Line: l.line, Col: l.col})
	return l.toks, nil
}

// lineStart measures indentation and emits INDENT/DEDENT tokens. Blank
// and comment-only lines are skipped without affecting indentation.
func (l *lexer) lineStart() error {
	width := 0
	i := l.pos
	for i < len(l.src) {
		switch l.src[i] {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			goto measured
		}
		i++
	}
measured:
	if i >= len(l.src) || l.src[i] == '\n' || l.src[i] == '#' || l.src[i] == '\r' {
		// Nothing significant on this line.
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.advance()
		}
		if l.pos < len(l.src) {
			l.advance()
			l.line++
			l.col = 1
		}
		return nil
	}
	l.col += i - l.pos
	l.pos = i
	top := l.indents[len(l.indents)-1]
	switch {
	case width > top:
		l.indents = append(l.indents, width)
		l.toks = append(l.toks, token{Type: tokIndent, Line: l.line, Col: 1})
	case width < top:
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
			l.indents = l.indents[:len(l.indents)-1]
			l.toks = append(l.toks, token{Type: tokDedent, Line: l.line, Col: 1})
		}
		if l.indents[len(l.indents)-1] != width {
			return malformedf(l.line, 1, "inconsistent indentation")
		}
	}
	return nil
}

func (l *lexer) emitNewline() {
	// Collapse runs of blank lines into a single NEWLINE.
	if n := len(l.toks); n > 0 && l.toks[n-1].Type != tokNewline && l.toks[n-1].Type != tokIndent && l.toks[n-1].Type != tokDedent {
		l.toks = append(l.toks, token{Type: tokNewline, Line: l.line, Col: l.col})
	}
}

func (l *lexer) lexString(quote byte) error {
	startLine, startCol := l.line, l.col
	l.advance() // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case quote:
			l.advance()
			l.toks = append(l.toks, token{Type: tokString, Text: b.String(), Line: startLine, Col: startCol})
			return nil
		case '\\':
			l.advance()
			if l.pos >= len(l.src) {
				return malformedf(startLine, startCol, "unterminated string literal")
			}
			switch l.src[l.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\', '\'', '"':
				b.WriteByte(l.src[l.pos])
			default:
				b.WriteByte('\\')
				b.WriteByte(l.src[l.pos])
			}
			l.advance()
		case '\n':
			return malformedf(startLine, startCol, "unterminated string literal")
		default:
			b.WriteByte(c)
			l.advance()
		}
	}
	return malformedf(startLine, startCol, "unterminated string literal")
}

func (l *lexer) lexNumber() {
	startLine, startCol := l.line, l.col
	start := l.pos
	isFloat := false
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.advance()
	}
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9' {
		isFloat = true
		l.advance()
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.advance()
		}
	}
	text := l.src[start:l.pos]
	tt := tokInt
	if isFloat {
		tt = tokFloat
	}
	l.toks = append(l.toks, token{Type: tt, Text: text, Line: startLine, Col: startCol})
}

func (l *lexer) lexIdent() {
	startLine, startCol := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(rune(l.src[l.pos])) {
		l.advance()
	}
	text := l.src[start:l.pos]
	tt := tokIdent
	if keywords[text] {
		tt = tokKeyword
	}
	l.toks = append(l.toks, token{Type: tt, Text: text, Line: startLine, Col: startCol})
}

var twoCharOps = map[string]bool{"==": true, "!=": true, "<=": true, ">=": true}

func (l *lexer) lexOperator() error {
	startLine, startCol := l.line, l.col
	if l.pos+1 < len(l.src) && twoCharOps[l.src[l.pos:l.pos+2]] {
		text := l.src[l.pos : l.pos+2]
		l.advance()
		l.advance()
		l.toks = append(l.toks, token{Type: tokOp, Text: text, Line: startLine, Col: startCol})
		return nil
	}
	c := l.src[l.pos]
	switch c {
	case '(', '[', '{':
		l.depth++
	case ')', ']', '}':
		if l.depth > 0 {
			l.depth--
		}
	case '=', '<', '>', '+', '-', '*', '/', '%', ',', ':', '.':
		// single-char operator
	default:
		return malformedf(l.line, l.col, "unexpected character %q", string(c))
	}
	l.advance()
	l.toks = append(l.toks, token{Type: tokOp, Text: string(c), Line: startLine, Col: startCol})
	return nil
}

func (l *lexer) advance() {
	l.pos++
	l.col++
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func parseInt(text string) int64 {
	n, _ := strconv.ParseInt(text, 10, 64)
	return n
}

func parseFloat(text string) float64 {
	f, _ := strconv.ParseFloat(text, 64)
	return f
}
