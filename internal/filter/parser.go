package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/ticketvec-mcp/pkg/types"
)

// Parse parses predicate text into an expression tree. Blank input yields a
// nil expression and no error.
func Parse(input string) (Expr, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok, "unexpected %q", tok.text)
	}
	return expr, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if tok.kind == tokEOF {
		return types.Errorf(types.ErrInvalidPredicate, "%s at end of input", msg)
	}
	return types.Errorf(types.ErrInvalidPredicate, "%s at position %d", msg, tok.pos)
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.peek().kind == tokNot {
		p.next()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Negation{Inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.next()
	switch tok.kind {
	case tokLParen:
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, p.errorf(closing, "expected ')'")
		}
		return expr, nil
	case tokIdent:
		column, ok := canonicalColumn(tok.text)
		if !ok {
			return nil, p.errorf(tok, "unknown column %q", tok.text)
		}
		return p.parsePredicate(column)
	default:
		return nil, p.errorf(tok, "expected column name or '('")
	}
}

func (p *parser) parsePredicate(column string) (Expr, error) {
	tok := p.next()
	switch tok.kind {
	case tokOp:
		value, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &Comparison{Column: column, Op: tok.text, Value: value}, nil
	case tokLike:
		return p.parseLike(column, false)
	case tokIn:
		return p.parseIn(column, false)
	case tokNot:
		switch after := p.next(); after.kind {
		case tokLike:
			return p.parseLike(column, true)
		case tokIn:
			return p.parseIn(column, true)
		default:
			return nil, p.errorf(after, "expected LIKE or IN after NOT")
		}
	default:
		return nil, p.errorf(tok, "expected operator after %s", column)
	}
}

func (p *parser) parseLike(column string, negate bool) (Expr, error) {
	tok := p.next()
	if tok.kind != tokString {
		return nil, p.errorf(tok, "LIKE requires a quoted pattern")
	}
	return &Like{Column: column, Pattern: tok.text, Negate: negate}, nil
}

func (p *parser) parseIn(column string, negate bool) (Expr, error) {
	if tok := p.next(); tok.kind != tokLParen {
		return nil, p.errorf(tok, "expected '(' after IN")
	}
	var values []Literal
	for {
		value, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, value)

		tok := p.next()
		if tok.kind == tokRParen {
			break
		}
		if tok.kind != tokComma {
			return nil, p.errorf(tok, "expected ',' or ')' in IN list")
		}
	}
	return &In{Column: column, Values: values, Negate: negate}, nil
}

func (p *parser) parseLiteral() (Literal, error) {
	tok := p.next()
	switch tok.kind {
	case tokString:
		return Literal{Str: tok.text}, nil
	case tokInt:
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return Literal{}, p.errorf(tok, "integer %s out of range", tok.text)
		}
		return Literal{Int: n, IsInt: true}, nil
	default:
		return Literal{}, p.errorf(tok, "expected a quoted string or integer")
	}
}
