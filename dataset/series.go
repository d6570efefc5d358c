package dataset

import (
	"fmt"
	"strings"
)

// Series is a single Frame column with its declared type.
type Series struct {
	Name   string
	Type   DType
	Values []any
}

// Count returns the number of non-nil values.
func (s *Series) Count() int64 {
	var n int64
	for _, v := range s.Values {
		if v != nil {
			n++
		}
	}
	return n
}

// Sum adds all numeric values. Non-numeric values are an error.
func (s *Series) Sum() (float64, error) {
	var total float64
	for _, v := range s.Values {
		if v == nil {
			continue
		}
		f, ok := toFloat(v)
		if !ok {
			return 0, fmt.Errorf("dataset: cannot sum non-numeric value %v in %q", v, s.Name)
		}
		total += f
	}
	return total, nil
}

// Mean returns the arithmetic mean of non-nil values.
func (s *Series) Mean() (float64, error) {
	total, err := s.Sum()
	if err != nil {
		return 0, err
	}
	n := s.Count()
	if n == 0 {
		return 0, fmt.Errorf("dataset: mean of empty series %q", s.Name)
	}
	return total / float64(n), nil
}

// Min returns the smallest non-nil value by natural ordering.
func (s *Series) Min() (any, error) { return s.extreme(true) }

// Max returns the largest non-nil value by natural ordering.
func (s *Series) Max() (any, error) { return s.extreme(false) }

func (s *Series) extreme(min bool) (any, error) {
	var best any
	for _, v := range s.Values {
		if v == nil {
			continue
		}
		if best == nil || (min && lessValues(v, best)) || (!min && lessValues(best, v)) {
			best = v
		}
	}
	if best == nil {
		return nil, fmt.Errorf("dataset: no values in series %q", s.Name)
	}
	return best, nil
}

// Compare applies the comparison operator element-wise against a scalar
// (or, for "in"/"not in", a list) and returns a boolean mask.
func (s *Series) Compare(op string, rhs any) ([]bool, error) {
	mask := make([]bool, len(s.Values))
	for i, v := range s.Values {
		ok, err := compareValues(v, op, rhs)
		if err != nil {
			return nil, err
		}
		mask[i] = ok
	}
	return mask, nil
}

// Unique returns the distinct non-nil values in first-seen order.
func (s *Series) Unique() []any {
	seen := map[any]struct{}{}
	var out []any
	for _, v := range s.Values {
		if v == nil {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// CompareScalar applies one comparison operator to two scalar values,
// with the same operator set and coercion rules Series.Compare uses.
func CompareScalar(left any, op string, right any) (bool, error) {
	return compareValues(left, op, right)
}

func compareValues(left any, op string, right any) (bool, error) {
	switch op {
	case "in", "not in":
		items, ok := right.([]any)
		if !ok {
			return false, fmt.Errorf("dataset: right operand of %q must be a list", op)
		}
		found := false
		for _, it := range items {
			if equalValues(left, it) {
				found = true
				break
			}
		}
		if op == "in" {
			return found, nil
		}
		return !found, nil
	case "=", "==", "is":
		return equalValues(left, right), nil
	case "!=", "is not":
		return !equalValues(left, right), nil
	case "<":
		return lessValues(left, right), nil
	case "<=":
		return lessValues(left, right) || equalValues(left, right), nil
	case ">":
		return lessValues(right, left), nil
	case ">=":
		return lessValues(right, left) || equalValues(left, right), nil
	}
	return false, fmt.Errorf("dataset: unsupported comparison operator %q", op)
}

func equalValues(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	return a == b
}

func lessValues(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af < bf
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs) < 0
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
