package engine

import "fmt"

// ValidateOutputType checks a result against the caller's output-type
// hint. An empty hint accepts anything, as does the "string" hint since
// every result renders as text. Unknown hints are not enforced.
func ValidateOutputType(expected string, res Result) error {
	switch expected {
	case "", "string":
		return nil
	case "number":
		if res.Type == TypeNumber {
			return nil
		}
	case "dataframe":
		if res.Type == TypeFrame {
			return nil
		}
	case "plot":
		if res.Type == TypePlot {
			return nil
		}
	default:
		return nil
	}
	return &InvalidOutputTypeError{Expected: expected, Actual: res.Type}
}

// ValidateResult checks that the result's type tag is consistent with
// the value it carries. A table-tagged scalar, for example, is rejected
// so the retry loop can correct the snippet instead of handing the
// caller a mislabeled answer.
func ValidateResult(res Result) error {
	switch res.Type {
	case TypeNumber:
		if !isNumeric(res.Value) {
			return mismatch(res, "value is not numeric")
		}
	case TypeString, TypePlot, TypeError:
		if _, ok := res.Value.(string); !ok {
			return mismatch(res, "value is not a string")
		}
	case TypeList:
		if _, ok := res.Value.([]any); !ok {
			return mismatch(res, "value is not a list")
		}
	case TypeFrame:
		if !isFrame(res.Value) {
			return mismatch(res, "value is not a dataframe")
		}
	default:
		return mismatch(res, "unrecognized result type tag")
	}
	return nil
}

func mismatch(res Result, msg string) error {
	return &OutputValueMismatchError{
		Tag:     res.Type,
		Message: fmt.Sprintf("%s (got %T)", msg, res.Value),
	}
}
