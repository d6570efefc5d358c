package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure modes. Use errors.Is to test for
// them; the concrete error types below carry additional context.
var (
	// ErrConfiguration indicates invalid configuration.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInvalidOutputType indicates the snippet's declared result type
	// does not satisfy the expected output-type hint.
	ErrInvalidOutputType = errors.New("invalid output type")

	// ErrOutputValueMismatch indicates the snippet's declared result
	// type tag is inconsistent with the shape of the value it carries.
	ErrOutputValueMismatch = errors.New("output value mismatch")

	// ErrMissingGrouping indicates grouping enforcement rejected a
	// snippet that references categorical columns without aggregating.
	ErrMissingGrouping = errors.New("missing grouping")
)

// InvalidOutputTypeError reports a mismatch between the result a
// snippet produced and the output type the caller asked for.
type InvalidOutputTypeError struct {
	Expected string
	Actual   ResultType
}

func (e *InvalidOutputTypeError) Error() string {
	return fmt.Sprintf("invalid output type: expected %q, snippet declared %q", e.Expected, e.Actual)
}

// Is reports whether target matches this error type.
func (e *InvalidOutputTypeError) Is(target error) bool {
	return target == ErrInvalidOutputType
}

// OutputValueMismatchError reports an internally inconsistent result:
// the type tag does not match the value alongside it.
type OutputValueMismatchError struct {
	Tag     ResultType
	Message string
}

func (e *OutputValueMismatchError) Error() string {
	return fmt.Sprintf("result type %q mismatch: %s", e.Tag, e.Message)
}

// Is reports whether target matches this error type.
func (e *OutputValueMismatchError) Is(target error) bool {
	return target == ErrOutputValueMismatch
}

// MissingGroupingError reports that a snippet references categorical
// columns but never aggregates over them.
type MissingGroupingError struct {
	Columns []string
}

func (e *MissingGroupingError) Error() string {
	return fmt.Sprintf("snippet references categorical columns %s without grouping; aggregate with groupby before reporting",
		strings.Join(e.Columns, ", "))
}

// Is reports whether target matches this error type.
func (e *MissingGroupingError) Is(target error) bool {
	return target == ErrMissingGrouping
}
