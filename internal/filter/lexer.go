package filter

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/ticketvec-mcp/pkg/types"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokInt
	tokOp
	tokLParen
	tokRParen
	tokComma
	tokAnd
	tokOr
	tokNot
	tokLike
	tokIn
)

var keywords = map[string]tokenKind{
	"AND":  tokAnd,
	"OR":   tokOr,
	"NOT":  tokNot,
	"LIKE": tokLike,
	"IN":   tokIn,
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits a predicate into tokens
func lex(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			tokens = append(tokens, token{tokLParen, "(", i})
			i++
		case c == ')':
			tokens = append(tokens, token{tokRParen, ")", i})
			i++
		case c == ',':
			tokens = append(tokens, token{tokComma, ",", i})
			i++
		case c == '\'' || c == '"':
			text, next, err := lexString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{tokString, text, i})
			i = next
		case isDigit(c) || (c == '-' && i+1 < len(input) && isDigit(input[i+1])):
			start := i
			i++
			for i < len(input) && isDigit(input[i]) {
				i++
			}
			tokens = append(tokens, token{tokInt, input[start:i], start})
		case isIdentStart(c):
			start := i
			for i < len(input) && isIdentPart(input[i]) {
				i++
			}
			word := input[start:i]
			if kind, ok := keywords[strings.ToUpper(word)]; ok {
				tokens = append(tokens, token{kind, strings.ToUpper(word), start})
			} else {
				tokens = append(tokens, token{tokIdent, word, start})
			}
		default:
			op, ok := lexOperator(input[i:])
			if !ok {
				r, _ := utf8.DecodeRuneInString(input[i:])
				return nil, types.Errorf(types.ErrInvalidPredicate, "unexpected character %q at position %d", r, i)
			}
			tokens = append(tokens, token{tokOp, op, i})
			i += len(op)
		}
	}
	tokens = append(tokens, token{tokEOF, "", len(input)})
	return tokens, nil
}

func lexString(input string, start int) (string, int, error) {
	quote := input[start]
	var b strings.Builder
	i := start + 1
	for i < len(input) {
		c := input[i]
		if c == quote {
			if i+1 < len(input) && input[i+1] == quote {
				b.WriteByte(quote)
				i += 2
				continue
			}
			return b.String(), i + 1, nil
		}
		b.WriteByte(c)
		i++
	}
	return "", 0, types.Errorf(types.ErrInvalidPredicate, "unterminated string starting at position %d", start)
}

// operators are ordered so that two-character forms match first
var operators = []string{"==", "!=", "<>", "<=", ">=", "=", "<", ">"}

func lexOperator(s string) (string, bool) {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op, true
		}
	}
	return "", false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
