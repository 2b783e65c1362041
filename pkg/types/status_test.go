package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"already exists", Errorf(ErrAlreadyExists, "project %q", "P"), 1},
		{"create failed", ErrCreateFailed, 2},
		{"read failed", ErrReadFailed, 4},
		{"embed failed", ErrEmbedFailed, 5},
		{"dimension", ErrDimensionMismatch, 6},
		{"write failed", ErrWriteFailed, 7},
		{"missing field", ErrMissingField, 8},
		{"parse", ErrParse, 9},
		{"not found", fmt.Errorf("open: %w", ErrNotFound), 10},
		{"open failed", ErrOpenFailed, 11},
		{"invalid project", ErrInvalidProject, 13},
		{"empty query", ErrEmptyQuery, 105},
		{"invalid limit", ErrInvalidLimit, 106},
		{"invalid format", ErrInvalidFormat, 107},
		{"invalid predicate", ErrInvalidPredicate, 112},
		{"tracker connect", fmt.Errorf("%w: %w", ErrTrackerConnect, errors.New("dial tcp")), 108},
		{"tracker", ErrTracker, 109},
		{"delete missing", Errorf(ErrDeleteNotFound, "project %q", "P"), 12},
		{"seed failed", fmt.Errorf("%w: %w", ErrSeedFailed, ErrCreateFailed), 103},
		{"format", ErrFormat, 110},
		{"busy", ErrBusy, 111},
		{"unknown", errors.New("boom"), CodeUnknown},
		{"normalize uses cause", fmt.Errorf("%w: %w", ErrNormalizeFailed, ErrMissingField), 8},
		{"specific kind wins over read failure", fmt.Errorf("%w: %w", ErrReadFailed, ErrNotFound), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestStatus(t *testing.T) {
	status := Status(Errorf(ErrAlreadyExists, "project %q", "P"))
	assert.Equal(t, `Err001: already exists: project "P"`, status)
	assert.False(t, IsSuccess(status))

	code, ok := StatusCode(status)
	assert.True(t, ok)
	assert.Equal(t, 1, code)

	code, ok = StatusCode(Status(ErrEmptyQuery))
	assert.True(t, ok)
	assert.Equal(t, 105, code)
}

func TestSucc(t *testing.T) {
	status := Succ("project %s created", "P")
	assert.Equal(t, "Succ: project P created", status)
	assert.True(t, IsSuccess(status))

	_, ok := StatusCode(status)
	assert.False(t, ok)
}

func TestKind(t *testing.T) {
	assert.Nil(t, Kind(nil))
	assert.Nil(t, Kind(errors.New("x")))
	assert.Equal(t, ErrNotFound, Kind(fmt.Errorf("wrap: %w", ErrNotFound)))
}

func TestTicketValidate(t *testing.T) {
	assert.NoError(t, (&Ticket{TicketID: "T-1", Summary: "s"}).Validate())
	assert.ErrorIs(t, (&Ticket{Summary: "s"}).Validate(), ErrMissingField)
	assert.ErrorIs(t, (&Ticket{TicketID: "T-1", Summary: "  "}).Validate(), ErrMissingField)
}

func TestEmbeddingText(t *testing.T) {
	tk := &Ticket{Summary: "Login fails", Description: "500 on submit"}
	assert.Equal(t, "Login fails:500 on submit", tk.EmbeddingText())
}

func TestRefinedKindsKeepParent(t *testing.T) {
	assert.ErrorIs(t, ErrDeleteNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrTrackerConnect, ErrTracker)
	assert.Equal(t, ErrDeleteNotFound, Kind(Errorf(ErrDeleteNotFound, "x")))
}
