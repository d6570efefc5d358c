package sandbox

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/framechat/framechat/dataset"
)

// Builtin is a whitelisted callable exposed to snippet code.
type Builtin func(args []any) (any, error)

// Module is a whitelisted importable library: a named bag of functions.
// Snippets reach it only through an explicit import statement.
type Module struct {
	Name  string
	Funcs map[string]Builtin
}

// Environment is the restricted evaluation namespace for one execution
// attempt. It is a value object: construct, bind, execute, discard.
// Nothing outside its maps is reachable from snippet code.
type Environment struct {
	// Builtins are the callables available without import.
	Builtins map[string]Builtin

	// Modules are the libraries an import statement may bind.
	Modules map[string]*Module

	// Bindings are the injected values: dataset frames, skills, hooks.
	Bindings map[string]any
}

// NewEnvironment returns an environment carrying the default builtin
// and module whitelists and no bindings.
func NewEnvironment() *Environment {
	return &Environment{
		Builtins: defaultBuiltins(),
		Modules:  defaultModules(),
		Bindings: make(map[string]any),
	}
}

// Bind injects a named value into the namespace.
func (e *Environment) Bind(name string, v any) {
	e.Bindings[name] = v
}

// namespace builds the mutable per-run variable table. Builtins and
// bindings are copied in so a run can never mutate the environment.
func (e *Environment) namespace() map[string]any {
	ns := make(map[string]any, len(e.Builtins)+len(e.Bindings))
	for name, fn := range e.Builtins {
		ns[name] = fn
	}
	for name, v := range e.Bindings {
		ns[name] = v
	}
	return ns
}

func defaultBuiltins() map[string]Builtin {
	return map[string]Builtin{
		"abs":    builtinAbs,
		"len":    builtinLen,
		"min":    builtinMin,
		"max":    builtinMax,
		"sum":    builtinSum,
		"round":  builtinRound,
		"sorted": builtinSorted,
		"str":    builtinStr,
		"int":    builtinInt,
		"float":  builtinFloat,
		"concat": builtinConcat,
	}
}

func defaultModules() map[string]*Module {
	return map[string]*Module{
		"math": {Name: "math", Funcs: map[string]Builtin{
			"sqrt":  numericUnary("math.sqrt", math.Sqrt),
			"floor": numericUnary("math.floor", math.Floor),
			"ceil":  numericUnary("math.ceil", math.Ceil),
			"pow": func(args []any) (any, error) {
				if len(args) != 2 {
					return nil, fmt.Errorf("math.pow expects 2 arguments, got %d", len(args))
				}
				x, xok := asFloat(args[0])
				y, yok := asFloat(args[1])
				if !xok || !yok {
					return nil, fmt.Errorf("math.pow expects numeric arguments")
				}
				return math.Pow(x, y), nil
			},
		}},
		"statistics": {Name: "statistics", Funcs: map[string]Builtin{
			"mean":   listAggregate("statistics.mean", func(total float64, n int) float64 { return total / float64(n) }),
			"median": builtinMedian,
		}},
	}
}

func numericUnary(name string, fn func(float64) float64) Builtin {
	return func(args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		f, ok := asFloat(args[0])
		if !ok {
			return nil, fmt.Errorf("%s expects a numeric argument", name)
		}
		return fn(f), nil
	}
}

func listAggregate(name string, finish func(total float64, n int) float64) Builtin {
	return func(args []any) (any, error) {
		items, err := oneList(name, args)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("%s of empty list", name)
		}
		var total float64
		for _, it := range items {
			f, ok := asFloat(it)
			if !ok {
				return nil, fmt.Errorf("%s expects numeric values", name)
			}
			total += f
		}
		return finish(total, len(items)), nil
	}
}

func builtinMedian(args []any) (any, error) {
	items, err := oneList("statistics.median", args)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("statistics.median of empty list")
	}
	vals := make([]float64, 0, len(items))
	for _, it := range items {
		f, ok := asFloat(it)
		if !ok {
			return nil, fmt.Errorf("statistics.median expects numeric values")
		}
		vals = append(vals, f)
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid], nil
	}
	return (vals[mid-1] + vals[mid]) / 2, nil
}

func builtinAbs(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("abs expects 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case int64:
		if v < 0 {
			return -v, nil
		}
		return v, nil
	default:
		f, ok := asFloat(args[0])
		if !ok {
			return nil, fmt.Errorf("abs expects a numeric argument")
		}
		return math.Abs(f), nil
	}
}

func builtinLen(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("len expects 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case string:
		return int64(len(v)), nil
	case []any:
		return int64(len(v)), nil
	case map[string]any:
		return int64(len(v)), nil
	case *dataset.Frame:
		return int64(v.NumRows()), nil
	case *dataset.Series:
		return int64(len(v.Values)), nil
	}
	return nil, fmt.Errorf("len of unsupported value %T", args[0])
}

func builtinMin(args []any) (any, error) { return minmax("min", args) }
func builtinMax(args []any) (any, error) { return minmax("max", args) }

func minmax(name string, args []any) (any, error) {
	items := args
	if len(args) == 1 {
		list, ok := args[0].([]any)
		if !ok {
			if s, sok := args[0].(*dataset.Series); sok {
				if name == "min" {
					return s.Min()
				}
				return s.Max()
			}
			return nil, fmt.Errorf("%s expects a list or multiple arguments", name)
		}
		items = list
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s of empty sequence", name)
	}
	best := items[0]
	for _, it := range items[1:] {
		bf, bok := asFloat(best)
		f, ok := asFloat(it)
		if !ok || !bok {
			return nil, fmt.Errorf("%s expects numeric values", name)
		}
		if (name == "min" && f < bf) || (name == "max" && f > bf) {
			best = it
		}
	}
	return best, nil
}

func builtinSum(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("sum expects 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case *dataset.Series:
		return v.Sum()
	case []any:
		var total float64
		for _, it := range v {
			f, ok := asFloat(it)
			if !ok {
				return nil, fmt.Errorf("sum expects numeric values")
			}
			total += f
		}
		return total, nil
	}
	return nil, fmt.Errorf("sum of unsupported value %T", args[0])
}

func builtinRound(args []any) (any, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, fmt.Errorf("round expects 1 or 2 arguments, got %d", len(args))
	}
	f, ok := asFloat(args[0])
	if !ok {
		return nil, fmt.Errorf("round expects a numeric argument")
	}
	digits := int64(0)
	if len(args) == 2 {
		d, dok := args[1].(int64)
		if !dok {
			return nil, fmt.Errorf("round digits must be an integer")
		}
		digits = d
	}
	scale := math.Pow(10, float64(digits))
	return math.Round(f*scale) / scale, nil
}

func builtinSorted(args []any) (any, error) {
	items, err := oneList("sorted", args)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		fi, iok := asFloat(out[i])
		fj, jok := asFloat(out[j])
		if iok && jok {
			return fi < fj
		}
		si, iok := out[i].(string)
		sj, jok := out[j].(string)
		if iok && jok {
			return si < sj
		}
		return false
	})
	return out, nil
}

func builtinStr(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("str expects 1 argument, got %d", len(args))
	}
	return Stringify(args[0]), nil
}

func builtinInt(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("int expects 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("int: cannot convert %q", v)
		}
		return n, nil
	}
	return nil, fmt.Errorf("int of unsupported value %T", args[0])
}

func builtinFloat(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("float expects 1 argument, got %d", len(args))
	}
	if f, ok := asFloat(args[0]); ok {
		return f, nil
	}
	if s, ok := args[0].(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("float: cannot convert %q", s)
		}
		return f, nil
	}
	return nil, fmt.Errorf("float of unsupported value %T", args[0])
}

// builtinConcat concatenates a list of frames, skipping nil slots.
func builtinConcat(args []any) (any, error) {
	items, err := oneList("concat", args)
	if err != nil {
		return nil, err
	}
	frames := make([]*dataset.Frame, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		f, ok := it.(*dataset.Frame)
		if !ok {
			return nil, fmt.Errorf("concat expects frames, got %T", it)
		}
		frames = append(frames, f)
	}
	return dataset.Concat(frames)
}

func oneList(name string, args []any) ([]any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
	}
	items, ok := args[0].([]any)
	if !ok {
		return nil, fmt.Errorf("%s expects a list, got %T", name, args[0])
	}
	return items, nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Stringify renders a snippet value the way the NL boundary presents it.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case string:
		return t
	case bool:
		if t {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, len(t))
		for i, it := range t {
			parts[i] = Stringify(it)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *dataset.Frame:
		return fmt.Sprintf("frame(%d rows x %d columns)", t.NumRows(), t.NumColumns())
	}
	return fmt.Sprintf("%v", v)
}
