package query

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrInvalidPattern is wrapped by validation errors for malformed patterns.
	ErrInvalidPattern = eris.New("invalid pattern")
	// ErrPatternConflict is wrapped by validation errors for patterns whose
	// regex is identical to an already registered one.
	ErrPatternConflict = eris.New("pattern conflict")
)

// ValidationError reports why AddPattern rejected a pattern.
type ValidationError struct {
	PatternID string
	// Fields lists the offending fields of a malformed pattern.
	Fields []string
	// Conflicts lists the ids of registered patterns with an identical regex.
	Conflicts []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "query: pattern %q rejected", e.PatternID)
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, ": invalid fields [%s]", strings.Join(e.Fields, ", "))
	}
	if len(e.Conflicts) > 0 {
		fmt.Fprintf(&b, ": conflicts with [%s]", strings.Join(e.Conflicts, ", "))
	}
	return b.String()
}

// Unwrap lets callers test the error kind with errors.Is.
func (e *ValidationError) Unwrap() error {
	if len(e.Conflicts) > 0 {
		return ErrPatternConflict
	}
	return ErrInvalidPattern
}
