package snippet

import (
	"errors"
	"fmt"
)

// ErrMalformed is the sentinel for snippets that could not be parsed.
// Callers classify with errors.Is.
var ErrMalformed = errors.New("malformed snippet")

// MalformedSnippetError reports a parse failure with source location.
type MalformedSnippetError struct {
	// Message describes what the parser expected or found.
	Message string

	// Line is the 1-based line number of the failure.
	Line int

	// Column is the 1-based column number of the failure.
	Column int
}

// Error returns the message including line and column when known.
func (e *MalformedSnippetError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed snippet: %s (line %d, col %d)", e.Message, e.Line, e.Column)
	}
	return fmt.Sprintf("malformed snippet: %s", e.Message)
}

// Is reports whether this error matches ErrMalformed.
func (e *MalformedSnippetError) Is(target error) bool {
	return target == ErrMalformed
}

func malformedf(line, col int, format string, args ...any) *MalformedSnippetError {
	return &MalformedSnippetError{
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  col,
	}
}
