// Package filter parses and compiles ticket predicates.
//
// A predicate is a small boolean language over ticket columns:
//
//	status = 'Open' AND priority IN ('High', 'Highest')
//	NOT (assignee LIKE '%bot%') OR estimate_seconds >= 3600
//
// Supported: comparisons (= == != <> < <= > >=), LIKE, NOT LIKE, IN (...),
// NOT IN (...), AND, OR, NOT and parentheses. Literals are single- or
// double-quoted strings (a doubled quote escapes itself) and integers.
// Keywords and column names are case-insensitive.
//
// Predicates compile to a parameterized SQL fragment: column names come from
// a fixed whitelist and every literal becomes a bound argument, so predicate
// text can never change the shape of the surrounding query.
//
// Programmatic callers build the same tree without parsing:
//
//	expr := filter.And(filter.Eq("status", "Open"), filter.Gt("estimate_seconds", 0))
//	where, args, err := filter.Compile(expr)
package filter
