package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Expr is a node of a predicate tree
type Expr interface {
	compile(c *compiler) error
	String() string
}

// Literal is a string or integer constant
type Literal struct {
	Str   string
	Int   int64
	IsInt bool
}

// String renders the literal in predicate syntax
func (l Literal) String() string {
	if l.IsInt {
		return strconv.FormatInt(l.Int, 10)
	}
	return "'" + strings.ReplaceAll(l.Str, "'", "''") + "'"
}

func (l Literal) value() any {
	if l.IsInt {
		return l.Int
	}
	return l.Str
}

// Comparison is `column op literal`
type Comparison struct {
	Column string
	Op     string
	Value  Literal
}

func (e *Comparison) String() string {
	return fmt.Sprintf("%s %s %s", e.Column, e.Op, e.Value)
}

// Like is `column [NOT] LIKE pattern`
type Like struct {
	Column  string
	Pattern string
	Negate  bool
}

func (e *Like) String() string {
	op := "LIKE"
	if e.Negate {
		op = "NOT LIKE"
	}
	return fmt.Sprintf("%s %s %s", e.Column, op, Literal{Str: e.Pattern})
}

// In is `column [NOT] IN (literal, ...)`
type In struct {
	Column string
	Values []Literal
	Negate bool
}

func (e *In) String() string {
	parts := make([]string, len(e.Values))
	for i, v := range e.Values {
		parts[i] = v.String()
	}
	op := "IN"
	if e.Negate {
		op = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", e.Column, op, strings.Join(parts, ", "))
}

// Binary is a conjunction or disjunction of two expressions
type Binary struct {
	Op    string // "AND" or "OR"
	Left  Expr
	Right Expr
}

func (e *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

// Negation is `NOT expr`
type Negation struct {
	Inner Expr
}

func (e *Negation) String() string {
	return fmt.Sprintf("NOT (%s)", e.Inner)
}
