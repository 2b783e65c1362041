package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/ticketvec-mcp/pkg/types"
)

func TestCompileString(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "equality",
			input:     "ticket_id = 'TICKET-1'",
			wantWhere: "ticket_id = ?",
			wantArgs:  []any{"TICKET-1"},
		},
		{
			name:      "double equals and double quotes",
			input:     `status == "In Progress"`,
			wantWhere: "status = ?",
			wantArgs:  []any{"In Progress"},
		},
		{
			name:      "case-insensitive keywords and columns",
			input:     "Status = 'Open' and PRIORITY <> 'Low'",
			wantWhere: "(status = ? AND priority != ?)",
			wantArgs:  []any{"Open", "Low"},
		},
		{
			name:      "or binds looser than and",
			input:     "status = 'Open' OR status = 'New' AND priority = 'High'",
			wantWhere: "(status = ? OR (status = ? AND priority = ?))",
			wantArgs:  []any{"Open", "New", "High"},
		},
		{
			name:      "parentheses",
			input:     "(status = 'Open' OR status = 'New') AND priority = 'High'",
			wantWhere: "((status = ? OR status = ?) AND priority = ?)",
			wantArgs:  []any{"Open", "New", "High"},
		},
		{
			name:      "integer comparison",
			input:     "estimate_seconds >= 3600",
			wantWhere: "estimate_seconds >= ?",
			wantArgs:  []any{int64(3600)},
		},
		{
			name:      "negative integer",
			input:     "estimate_seconds > -1",
			wantWhere: "estimate_seconds > ?",
			wantArgs:  []any{int64(-1)},
		},
		{
			name:      "like and not like",
			input:     "summary LIKE '%login%' AND assignee NOT LIKE 'bot%'",
			wantWhere: "(summary LIKE ? AND assignee NOT LIKE ?)",
			wantArgs:  []any{"%login%", "bot%"},
		},
		{
			name:      "in and not in",
			input:     "priority IN ('High', 'Highest') AND status NOT IN ('Done')",
			wantWhere: "(priority IN (?, ?) AND status NOT IN (?))",
			wantArgs:  []any{"High", "Highest", "Done"},
		},
		{
			name:      "not",
			input:     "NOT status = 'Closed'",
			wantWhere: "NOT (status = ?)",
			wantArgs:  []any{"Closed"},
		},
		{
			name:      "escaped quote",
			input:     "summary = 'it''s broken'",
			wantWhere: "summary = ?",
			wantArgs:  []any{"it's broken"},
		},
		{
			name:      "injection attempt stays a literal",
			input:     "status = 'x'' OR 1=1 --'",
			wantWhere: "status = ?",
			wantArgs:  []any{"x' OR 1=1 --"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args, err := CompileString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestCompileString_Blank(t *testing.T) {
	where, args, err := CompileString("   ")
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Nil(t, args)
}

func TestCompileString_Invalid(t *testing.T) {
	inputs := []string{
		"status",
		"status =",
		"unknown_col = 'x'",
		"status = 'open",
		"status = 'a' AND",
		"(status = 'a'",
		"status = 'a')",
		"status IN ()",
		"status IN ('a' 'b')",
		"summary LIKE 5",
		"status NOT = 'a'",
		"status = 'a'; DROP TABLE tickets",
		"1 = 1",
		"status = open",
		"embedding = 'x'",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, _, err := CompileString(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrInvalidPredicate)
		})
	}
}

func TestBuilders(t *testing.T) {
	expr := And(
		Eq("status", "Open"),
		nil,
		Or(Gt("estimate_seconds", 0), LikePattern("summary", "%crash%")),
		Not(OneOf("priority", "Low", "Lowest")),
		NoneOf("assignee", "bot"),
		NotLike("reporter", "svc-%"),
	)
	where, args, err := Compile(expr)
	require.NoError(t, err)
	assert.Equal(t,
		"((((status = ? AND (estimate_seconds > ? OR summary LIKE ?)) AND NOT (priority IN (?, ?))) AND assignee NOT IN (?)) AND reporter NOT LIKE ?)",
		where)
	assert.Equal(t, []any{"Open", int64(0), "%crash%", "Low", "Lowest", "bot", "svc-%"}, args)
}

func TestBuilders_MatchParser(t *testing.T) {
	parsed, err := Parse("status = 'Open' AND priority != 'Low'")
	require.NoError(t, err)
	built := And(Eq("status", "Open"), Ne("priority", "Low"))

	w1, a1, err := Compile(parsed)
	require.NoError(t, err)
	w2, a2, err := Compile(built)
	require.NoError(t, err)
	assert.Equal(t, w1, w2)
	assert.Equal(t, a1, a2)
}

func TestBuilders_UnknownColumn(t *testing.T) {
	_, _, err := Compile(Eq("id; DROP TABLE tickets", 1))
	assert.ErrorIs(t, err, types.ErrInvalidPredicate)
}

func TestAndOfNothing(t *testing.T) {
	where, args, err := Compile(And())
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Nil(t, args)
}

func TestExprString(t *testing.T) {
	expr, err := Parse("status = 'it''s' AND estimate_seconds IN (1, 2)")
	require.NoError(t, err)
	assert.Equal(t, "(status = 'it''s' AND estimate_seconds IN (1, 2))", expr.String())
}
