package filter

import "fmt"

// TokenKind classifies one lexeme of a query
type TokenKind int

const (
	TokenIllegal TokenKind = iota
	TokenEOF
	TokenIdent
	TokenInt
	TokenFloat
	TokenString
	TokenEquals
	TokenNotEquals
	TokenMatches
	TokenNotMatches
	TokenLess
	TokenGreater
	TokenLessOrEqual
	TokenGreaterOrEqual
	TokenLeftParen
	TokenRightParen
	TokenAnd
	TokenOr
	TokenNot
)

// String returns a human-readable token kind name for error messages
func (k TokenKind) String() string {
	switch k {
	case TokenIllegal:
		return "illegal"
	case TokenEOF:
		return "end of query"
	case TokenIdent:
		return "identifier"
	case TokenInt:
		return "integer"
	case TokenFloat:
		return "float"
	case TokenString:
		return "string"
	case TokenEquals:
		return "'='"
	case TokenNotEquals:
		return "'!='"
	case TokenMatches:
		return "'=~'"
	case TokenNotMatches:
		return "'!~'"
	case TokenLess:
		return "'<'"
	case TokenGreater:
		return "'>'"
	case TokenLessOrEqual:
		return "'<='"
	case TokenGreaterOrEqual:
		return "'>='"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenAnd:
		return "AND"
	case TokenOr:
		return "OR"
	case TokenNot:
		return "NOT"
	default:
		return "unknown"
	}
}

// Token is one lexeme with its byte offset in the source query
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
}
