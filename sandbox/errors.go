package sandbox

import (
	"errors"
	"fmt"
)

// Sentinel errors for error classification.
var (
	// ErrNoResult indicates the snippet ran to completion without
	// binding the result variable.
	ErrNoResult = errors.New("no result returned")

	// ErrEvaluation indicates a runtime failure inside the snippet.
	ErrEvaluation = errors.New("snippet evaluation error")
)

// NoResultFoundError reports a snippet that bound no result value.
type NoResultFoundError struct {
	// Binding is the variable name the snippet was expected to assign.
	Binding string
}

func (e *NoResultFoundError) Error() string {
	return fmt.Sprintf("no result returned: snippet did not assign %q", e.Binding)
}

// Is reports whether this error matches ErrNoResult.
func (e *NoResultFoundError) Is(target error) bool {
	return target == ErrNoResult
}

// EvalError reports a runtime failure with the source location of the
// node being evaluated. The text feeds the correction loop, so it names
// what the snippet actually did wrong.
type EvalError struct {
	Message string
	Line    int
	Col     int
	Err     error
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d, col %d)", e.Message, e.Line, e.Col)
	}
	return e.Message
}

func (e *EvalError) Unwrap() error { return e.Err }

// Is reports whether this error matches ErrEvaluation.
func (e *EvalError) Is(target error) bool {
	return target == ErrEvaluation
}

func evalErrf(line, col int, format string, args ...any) *EvalError {
	return &EvalError{Message: fmt.Sprintf(format, args...), Line: line, Col: col}
}
