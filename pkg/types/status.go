package types

import (
	"errors"
	"fmt"
	"strings"
)

// Status prefixes let callers branch on the outcome without parsing.
const (
	SuccessPrefix = "Succ"
	ErrorPrefix   = "Err"
)

// CodeUnknown is reported for errors that wrap no known kind
const CodeUnknown = 999

// codeTable maps kinds to stable numeric codes. Order matters: the first kind
// found in an error chain wins, so more specific kinds come first.
var codeTable = []struct {
	kind error
	code int
}{
	{ErrSeedFailed, 103},
	{ErrEmptyQuery, 105},
	{ErrInvalidLimit, 106},
	{ErrInvalidFormat, 107},
	{ErrTrackerConnect, 108},
	{ErrTracker, 109},
	{ErrFormat, 110},
	{ErrBusy, 111},
	{ErrInvalidPredicate, 112},
	{ErrInvalidProject, 13},
	{ErrAlreadyExists, 1},
	{ErrDeleteNotFound, 12},
	{ErrNotFound, 10},
	{ErrMissingField, 8},
	{ErrParse, 9},
	{ErrDimensionMismatch, 6},
	{ErrEmbedFailed, 5},
	{ErrWriteFailed, 7},
	{ErrCreateFailed, 2},
	{ErrOpenFailed, 11},
	{ErrReadFailed, 4},
}

// Code returns the stable numeric code for err
func Code(err error) int {
	if err == nil {
		return 0
	}
	for _, entry := range codeTable {
		if errors.Is(err, entry.kind) {
			return entry.code
		}
	}
	return CodeUnknown
}

// Kind returns the kind sentinel wrapped by err, or nil
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, entry := range codeTable {
		if errors.Is(err, entry.kind) {
			return entry.kind
		}
	}
	return nil
}

// Succ renders a success status line
func Succ(format string, args ...any) string {
	return SuccessPrefix + ": " + fmt.Sprintf(format, args...)
}

// Status renders err as "Err<code>: message"
func Status(err error) string {
	return fmt.Sprintf("%s%03d: %s", ErrorPrefix, Code(err), err.Error())
}

// IsSuccess reports whether a status line carries the success marker
func IsSuccess(status string) bool {
	return strings.HasPrefix(status, SuccessPrefix+":")
}

// StatusCode extracts the numeric code from a failure status line.
// It returns false for success lines and malformed input.
func StatusCode(status string) (int, bool) {
	if !strings.HasPrefix(status, ErrorPrefix) {
		return 0, false
	}
	var code int
	if _, err := fmt.Sscanf(status[len(ErrorPrefix):], "%d:", &code); err != nil {
		return 0, false
	}
	return code, true
}
