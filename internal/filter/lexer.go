package filter

import "strings"

func isIdentStart(r byte) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r byte) bool {
	return isIdentStart(r) || r == '.' || (r >= '0' && r <= '9')
}

func isDigit(r byte) bool {
	return r >= '0' && r <= '9'
}

// lex splits a query into tokens, always terminated by a TokenEOF.
// Unrecognized characters become TokenIllegal and are rejected by the
// parser with a position-carrying error.
func lex(src string) []Token {
	var tokens []Token
	i := 0
	emit := func(kind TokenKind, text string, pos int) {
		tokens = append(tokens, Token{Kind: kind, Text: text, Pos: pos})
	}

	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			word := src[start:i]
			switch strings.ToLower(word) {
			case "and":
				emit(TokenAnd, word, start)
			case "or":
				emit(TokenOr, word, start)
			case "not":
				emit(TokenNot, word, start)
			default:
				emit(TokenIdent, word, start)
			}

		case isDigit(c) || (c == '-' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			if c == '-' {
				i++
			}
			dotMet := false
			for i < len(src) {
				if isDigit(src[i]) {
					i++
				} else if src[i] == '.' && !dotMet {
					dotMet = true
					i++
				} else {
					break
				}
			}
			if dotMet {
				emit(TokenFloat, src[start:i], start)
			} else {
				emit(TokenInt, src[start:i], start)
			}

		case c == '"':
			start := i
			i++
			var sb strings.Builder
			closed := false
			for i < len(src) {
				if src[i] == '\\' && i+1 < len(src) {
					sb.WriteByte(src[i+1])
					i += 2
					continue
				}
				if src[i] == '"' {
					closed = true
					i++
					break
				}
				sb.WriteByte(src[i])
				i++
			}
			if closed {
				emit(TokenString, sb.String(), start)
			} else {
				emit(TokenIllegal, src[start:], start)
			}

		case c == '=':
			start := i
			i++
			if i < len(src) && src[i] == '=' {
				i++
				emit(TokenEquals, "==", start)
			} else if i < len(src) && src[i] == '~' {
				i++
				emit(TokenMatches, "=~", start)
			} else {
				emit(TokenEquals, "=", start)
			}

		case c == '!':
			start := i
			i++
			if i < len(src) && src[i] == '=' {
				i++
				emit(TokenNotEquals, "!=", start)
			} else if i < len(src) && src[i] == '~' {
				i++
				emit(TokenNotMatches, "!~", start)
			} else {
				emit(TokenNot, "!", start)
			}

		case c == '<':
			start := i
			i++
			if i < len(src) && src[i] == '=' {
				i++
				emit(TokenLessOrEqual, "<=", start)
			} else {
				emit(TokenLess, "<", start)
			}

		case c == '>':
			start := i
			i++
			if i < len(src) && src[i] == '=' {
				i++
				emit(TokenGreaterOrEqual, ">=", start)
			} else {
				emit(TokenGreater, ">", start)
			}

		case c == '&':
			start := i
			i++
			if i < len(src) && src[i] == '&' {
				i++
				emit(TokenAnd, "&&", start)
			} else {
				emit(TokenIllegal, "&", start)
			}

		case c == '|':
			start := i
			i++
			if i < len(src) && src[i] == '|' {
				i++
				emit(TokenOr, "||", start)
			} else {
				emit(TokenIllegal, "|", start)
			}

		case c == '(':
			emit(TokenLeftParen, "(", i)
			i++

		case c == ')':
			emit(TokenRightParen, ")", i)
			i++

		default:
			emit(TokenIllegal, string(c), i)
			i++
		}
	}

	emit(TokenEOF, "", len(src))
	return tokens
}
