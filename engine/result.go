package engine

import (
	"github.com/framechat/framechat/dataset"
)

// ResultType tags the kind of value a snippet produced.
type ResultType string

// Result type tags. Snippets declare one of these in the `type` entry
// of their result dict.
const (
	TypeNumber ResultType = "number"
	TypeString ResultType = "string"
	TypeList   ResultType = "list"
	TypeFrame  ResultType = "dataframe"
	TypePlot   ResultType = "plot"
	TypeError  ResultType = "error"
)

// Result is the typed answer extracted from a snippet's `result`
// binding. Value holds a Go value whose shape corresponds to Type:
// numbers for TypeNumber, string for TypeString and TypePlot and
// TypeError, []any for TypeList, *dataset.Frame for TypeFrame.
type Result struct {
	Type  ResultType
	Value any
}

// resultFromValue converts the raw sandbox value of the `result`
// binding into a Result. Snippets must bind a dict with `type` and
// `value` entries; anything else is an output value mismatch so the
// retry loop can ask for a corrected snippet.
func resultFromValue(v any) (Result, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Result{}, &OutputValueMismatchError{
			Message: "result must be a dict with type and value entries",
		}
	}
	rawType, ok := m["type"]
	if !ok {
		return Result{}, &OutputValueMismatchError{Message: "result dict has no type entry"}
	}
	tag, ok := rawType.(string)
	if !ok {
		return Result{}, &OutputValueMismatchError{Message: "result type entry must be a string"}
	}
	value, ok := m["value"]
	if !ok {
		return Result{}, &OutputValueMismatchError{Tag: ResultType(tag), Message: "result dict has no value entry"}
	}
	return Result{Type: ResultType(tag), Value: value}, nil
}

// isNumeric reports whether v is one of the numeric value kinds the
// sandbox produces.
func isNumeric(v any) bool {
	switch v.(type) {
	case int, int64, float64:
		return true
	}
	return false
}

// isFrame reports whether v is a materialized dataset frame.
func isFrame(v any) bool {
	_, ok := v.(*dataset.Frame)
	return ok
}
