package filter

import (
	"fmt"
	"strconv"

	"github.com/yegors/vatmap/internal/model"
)

// SyntaxError is a lexical or grammatical error with its byte offset in
// the source query
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

// operator is a comparison operator of a condition leaf
type operator int

const (
	opEquals operator = iota
	opNotEquals
	opMatches
	opNotMatches
	opLess
	opLessOrEqual
	opGreater
	opGreaterOrEqual
)

func (o operator) String() string {
	switch o {
	case opEquals:
		return "="
	case opNotEquals:
		return "!="
	case opMatches:
		return "=~"
	case opNotMatches:
		return "!~"
	case opLess:
		return "<"
	case opLessOrEqual:
		return "<="
	case opGreater:
		return ">"
	default:
		return ">="
	}
}

// literalKind tags the right-hand value of a condition
type literalKind int

const (
	literalInt literalKind = iota
	literalFloat
	literalString
)

func (k literalKind) String() string {
	switch k {
	case literalInt:
		return "integer"
	case literalFloat:
		return "float"
	default:
		return "string"
	}
}

type literal struct {
	kind literalKind
	i    int64
	f    float64
	s    string
}

// asFloat converts a numeric literal for comparison against numeric fields
func (l literal) asFloat() float64 {
	if l.kind == literalInt {
		return float64(l.i)
	}
	return l.f
}

// node is one evaluated element of the compiled predicate tree. Every node
// is built at compile time and evaluation is pure: no node may fail once
// the query compiled.
type node interface {
	eval(p *model.Pilot) bool
}

type andNode struct{ left, right node }

func (n *andNode) eval(p *model.Pilot) bool { return n.left.eval(p) && n.right.eval(p) }

type orNode struct{ left, right node }

func (n *orNode) eval(p *model.Pilot) bool { return n.left.eval(p) || n.right.eval(p) }

type notNode struct{ inner node }

func (n *notNode) eval(p *model.Pilot) bool { return !n.inner.eval(p) }

// condNode is a compiled comparison leaf
type condNode func(p *model.Pilot) bool

func (n condNode) eval(p *model.Pilot) bool { return n(p) }

// parser is a recursive-descent parser over the token stream with
// precedence OR < AND < NOT < comparison
type parser struct {
	tokens []Token
	idx    int
}

func (ps *parser) current() Token {
	return ps.tokens[ps.idx]
}

func (ps *parser) advance() {
	if ps.idx < len(ps.tokens)-1 {
		ps.idx++
	}
}

func (ps *parser) unexpected(t Token, expected string) error {
	if t.Kind == TokenEOF {
		return &SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("unexpected end of query, expected %s", expected)}
	}
	return &SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("unexpected %s, expected %s", t, expected)}
}

func (ps *parser) parseOr() (node, error) {
	left, err := ps.parseAnd()
	if err != nil {
		return nil, err
	}
	for ps.current().Kind == TokenOr {
		ps.advance()
		right, err := ps.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &orNode{left: left, right: right}
	}
	return left, nil
}

func (ps *parser) parseAnd() (node, error) {
	left, err := ps.parseUnary()
	if err != nil {
		return nil, err
	}
	for ps.current().Kind == TokenAnd {
		ps.advance()
		right, err := ps.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &andNode{left: left, right: right}
	}
	return left, nil
}

func (ps *parser) parseUnary() (node, error) {
	if ps.current().Kind == TokenNot {
		ps.advance()
		inner, err := ps.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notNode{inner: inner}, nil
	}
	return ps.parsePrimary()
}

func (ps *parser) parsePrimary() (node, error) {
	t := ps.current()
	switch t.Kind {
	case TokenLeftParen:
		ps.advance()
		inner, err := ps.parseOr()
		if err != nil {
			return nil, err
		}
		if ps.current().Kind != TokenRightParen {
			return nil, ps.unexpected(ps.current(), "')'")
		}
		ps.advance()
		return inner, nil
	case TokenIdent:
		return ps.parseCondition()
	default:
		return nil, ps.unexpected(t, "identifier or '('")
	}
}

func (ps *parser) parseCondition() (node, error) {
	ident := ps.current()
	ps.advance()

	opToken := ps.current()
	var op operator
	switch opToken.Kind {
	case TokenEquals:
		op = opEquals
	case TokenNotEquals:
		op = opNotEquals
	case TokenMatches:
		op = opMatches
	case TokenNotMatches:
		op = opNotMatches
	case TokenLess:
		op = opLess
	case TokenLessOrEqual:
		op = opLessOrEqual
	case TokenGreater:
		op = opGreater
	case TokenGreaterOrEqual:
		op = opGreaterOrEqual
	default:
		return nil, ps.unexpected(opToken, "comparison operator")
	}
	ps.advance()

	valToken := ps.current()
	var val literal
	switch valToken.Kind {
	case TokenInt:
		i, err := strconv.ParseInt(valToken.Text, 10, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: valToken.Pos, Msg: fmt.Sprintf("invalid integer literal %q: %v", valToken.Text, err)}
		}
		val = literal{kind: literalInt, i: i}
	case TokenFloat:
		f, err := strconv.ParseFloat(valToken.Text, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: valToken.Pos, Msg: fmt.Sprintf("invalid float literal %q: %v", valToken.Text, err)}
		}
		val = literal{kind: literalFloat, f: f}
	case TokenString:
		val = literal{kind: literalString, s: valToken.Text}
	default:
		return nil, ps.unexpected(valToken, "integer, float or string literal")
	}
	ps.advance()

	return compileCondition(ident.Text, op, val)
}

// parse builds the full predicate tree and requires the query to be
// consumed entirely
func parse(tokens []Token) (node, error) {
	ps := &parser{tokens: tokens}
	root, err := ps.parseOr()
	if err != nil {
		return nil, err
	}
	if ps.current().Kind != TokenEOF {
		return nil, ps.unexpected(ps.current(), "end of query")
	}
	return root, nil
}
