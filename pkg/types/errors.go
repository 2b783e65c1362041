package types

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by the store, the ingestion pipeline or
// the query compiler wraps exactly one of these, so callers classify with
// errors.Is.
var (
	ErrAlreadyExists     = errors.New("already exists")
	ErrCreateFailed      = errors.New("create failed")
	ErrReadFailed        = errors.New("read failed")
	ErrEmbedFailed       = errors.New("embedding failed")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrWriteFailed       = errors.New("write failed")
	ErrMissingField      = errors.New("missing required field")
	ErrParse             = errors.New("parse error")
	ErrNotFound          = errors.New("not found")
	ErrOpenFailed        = errors.New("open failed")
	ErrInvalidProject    = errors.New("invalid project name")
	ErrEmptyQuery        = errors.New("query text and predicate cannot both be empty")
	ErrInvalidLimit      = errors.New("limit must be a positive integer")
	ErrInvalidFormat     = errors.New("unknown output format")
	ErrInvalidPredicate  = errors.New("invalid predicate")
	ErrTracker           = errors.New("issue tracker request failed")
	ErrFormat            = errors.New("cannot format results")
	ErrBusy              = errors.New("operation already in progress")
)

// Refinements of the kinds above. Each keeps its parent in the chain, so
// errors.Is(ErrDeleteNotFound, ErrNotFound) holds, but reports its own code.
var (
	ErrDeleteNotFound = fmt.Errorf("%w on delete", ErrNotFound)
	ErrTrackerConnect = fmt.Errorf("%w: cannot connect", ErrTracker)
)

// ErrSeedFailed tags a failed test-project initialization.
var ErrSeedFailed = errors.New("test project initialization failed")

// ErrNormalizeFailed tags normalization failures in the ingestion pipeline.
// It carries no code of its own: the wrapped MissingField or Parse cause
// decides the code.
var ErrNormalizeFailed = errors.New("normalize failed")

// Errorf wraps a kind sentinel with a formatted message
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
