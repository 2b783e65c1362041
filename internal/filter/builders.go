package filter

import "fmt"

// Eq builds `column = value`
func Eq(column string, value any) Expr { return cmp(column, "=", value) }

// Ne builds `column != value`
func Ne(column string, value any) Expr { return cmp(column, "!=", value) }

// Lt builds `column < value`
func Lt(column string, value any) Expr { return cmp(column, "<", value) }

// Le builds `column <= value`
func Le(column string, value any) Expr { return cmp(column, "<=", value) }

// Gt builds `column > value`
func Gt(column string, value any) Expr { return cmp(column, ">", value) }

// Ge builds `column >= value`
func Ge(column string, value any) Expr { return cmp(column, ">=", value) }

// LikePattern builds `column LIKE pattern`
func LikePattern(column, pattern string) Expr {
	return &Like{Column: column, Pattern: pattern}
}

// NotLike builds `column NOT LIKE pattern`
func NotLike(column, pattern string) Expr {
	return &Like{Column: column, Pattern: pattern, Negate: true}
}

// OneOf builds `column IN (values...)`
func OneOf(column string, values ...any) Expr {
	return &In{Column: column, Values: literals(values)}
}

// NoneOf builds `column NOT IN (values...)`
func NoneOf(column string, values ...any) Expr {
	return &In{Column: column, Values: literals(values), Negate: true}
}

// And joins expressions with AND, skipping nil ones
func And(exprs ...Expr) Expr { return join("AND", exprs) }

// Or joins expressions with OR, skipping nil ones
func Or(exprs ...Expr) Expr { return join("OR", exprs) }

// Not negates an expression
func Not(expr Expr) Expr { return &Negation{Inner: expr} }

func cmp(column, op string, value any) Expr {
	return &Comparison{Column: column, Op: op, Value: literal(value)}
}

func join(op string, exprs []Expr) Expr {
	var out Expr
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if out == nil {
			out = e
			continue
		}
		out = &Binary{Op: op, Left: out, Right: e}
	}
	return out
}

func literals(values []any) []Literal {
	out := make([]Literal, len(values))
	for i, v := range values {
		out[i] = literal(v)
	}
	return out
}

func literal(v any) Literal {
	switch x := v.(type) {
	case string:
		return Literal{Str: x}
	case int:
		return Literal{Int: int64(x), IsInt: true}
	case int32:
		return Literal{Int: int64(x), IsInt: true}
	case int64:
		return Literal{Int: x, IsInt: true}
	case fmt.Stringer:
		return Literal{Str: x.String()}
	default:
		return Literal{Str: fmt.Sprint(x)}
	}
}
