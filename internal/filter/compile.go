package filter

import (
	"strings"

	"github.com/dshills/ticketvec-mcp/pkg/types"
)

// Columns lists the ticket columns a predicate may reference
var Columns = []string{
	"ticket_id", "summary", "description", "status", "priority", "assignee",
	"reporter", "created", "updated", "due_date", "estimate_seconds",
}

var columnSet = func() map[string]string {
	m := make(map[string]string, len(Columns))
	for _, c := range Columns {
		m[c] = c
	}
	return m
}()

func canonicalColumn(name string) (string, bool) {
	c, ok := columnSet[strings.ToLower(name)]
	return c, ok
}

// sqlOps maps predicate operators to their SQL spelling
var sqlOps = map[string]string{
	"=": "=", "==": "=", "!=": "!=", "<>": "!=",
	"<": "<", "<=": "<=", ">": ">", ">=": ">=",
}

type compiler struct {
	sb   strings.Builder
	args []any
}

// Compile turns an expression into a parameterized SQL fragment and its
// bound arguments. A nil expression compiles to an empty fragment.
func Compile(expr Expr) (string, []any, error) {
	if expr == nil {
		return "", nil, nil
	}
	c := &compiler{}
	if err := expr.compile(c); err != nil {
		return "", nil, err
	}
	return c.sb.String(), c.args, nil
}

// CompileString parses and compiles predicate text in one step
func CompileString(input string) (string, []any, error) {
	expr, err := Parse(input)
	if err != nil {
		return "", nil, err
	}
	return Compile(expr)
}

func (c *compiler) column(name string) error {
	col, ok := canonicalColumn(name)
	if !ok {
		return types.Errorf(types.ErrInvalidPredicate, "unknown column %q", name)
	}
	c.sb.WriteString(col)
	return nil
}

func (c *compiler) bind(v any) {
	c.sb.WriteByte('?')
	c.args = append(c.args, v)
}

func (e *Comparison) compile(c *compiler) error {
	op, ok := sqlOps[e.Op]
	if !ok {
		return types.Errorf(types.ErrInvalidPredicate, "unknown operator %q", e.Op)
	}
	if err := c.column(e.Column); err != nil {
		return err
	}
	c.sb.WriteString(" " + op + " ")
	c.bind(e.Value.value())
	return nil
}

func (e *Like) compile(c *compiler) error {
	if err := c.column(e.Column); err != nil {
		return err
	}
	if e.Negate {
		c.sb.WriteString(" NOT LIKE ")
	} else {
		c.sb.WriteString(" LIKE ")
	}
	c.bind(e.Pattern)
	return nil
}

func (e *In) compile(c *compiler) error {
	if len(e.Values) == 0 {
		return types.Errorf(types.ErrInvalidPredicate, "IN list for %s is empty", e.Column)
	}
	if err := c.column(e.Column); err != nil {
		return err
	}
	if e.Negate {
		c.sb.WriteString(" NOT IN (")
	} else {
		c.sb.WriteString(" IN (")
	}
	for i, v := range e.Values {
		if i > 0 {
			c.sb.WriteString(", ")
		}
		c.bind(v.value())
	}
	c.sb.WriteByte(')')
	return nil
}

func (e *Binary) compile(c *compiler) error {
	if e.Op != "AND" && e.Op != "OR" {
		return types.Errorf(types.ErrInvalidPredicate, "unknown connective %q", e.Op)
	}
	c.sb.WriteByte('(')
	if err := e.Left.compile(c); err != nil {
		return err
	}
	c.sb.WriteString(" " + e.Op + " ")
	if err := e.Right.compile(c); err != nil {
		return err
	}
	c.sb.WriteByte(')')
	return nil
}

func (e *Negation) compile(c *compiler) error {
	c.sb.WriteString("NOT (")
	if err := e.Inner.compile(c); err != nil {
		return err
	}
	c.sb.WriteByte(')')
	return nil
}
