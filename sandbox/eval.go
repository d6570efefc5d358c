package sandbox

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/framechat/framechat/dataset"
	"github.com/framechat/framechat/snippet"
)

// Execute runs a parsed snippet inside the environment and returns the
// value bound to the result variable. A run that completes without
// binding it fails with *NoResultFoundError.
func Execute(ctx context.Context, prog *snippet.Program, env *Environment) (any, error) {
	ns, err := Run(ctx, prog, env)
	if err != nil {
		return nil, err
	}
	v, ok := ns[snippet.ResultBinding]
	if !ok {
		return nil, &NoResultFoundError{Binding: snippet.ResultBinding}
	}
	return v, nil
}

// Run evaluates every statement and returns the final variable table.
// Panics raised while evaluating, whether from snippet values or an
// injected binding, come back as *EvalError so a bad run can feed the
// correction loop instead of taking the host down.
func Run(ctx context.Context, prog *snippet.Program, env *Environment) (ns map[string]any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ns = nil
			err = &EvalError{Message: fmt.Sprintf("runtime panic: %v", rec)}
		}
	}()
	r := &runner{ctx: ctx, env: env, ns: env.namespace()}
	for _, stmt := range prog.Stmts {
		if err := r.exec(stmt); err != nil {
			return nil, err
		}
	}
	return r.ns, nil
}

type runner struct {
	ctx context.Context
	env *Environment
	ns  map[string]any
}

func (r *runner) exec(n *snippet.Node) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	switch n.Kind {
	case snippet.KindAssign:
		return r.execAssign(n)
	case snippet.KindImport:
		return r.execImport(n)
	case snippet.KindFor:
		return r.execFor(n)
	case snippet.KindExprStmt:
		_, err := r.eval(n.X)
		return err
	}
	return evalErrf(n.Line, n.Col, "cannot execute %s node as a statement", n.Kind)
}

func (r *runner) execAssign(n *snippet.Node) error {
	value, err := r.eval(n.X)
	if err != nil {
		return err
	}
	switch n.Target.Kind {
	case snippet.KindName:
		r.ns[n.Target.Name] = value
		return nil
	case snippet.KindSubscript:
		base, err := r.eval(n.Target.X)
		if err != nil {
			return err
		}
		dict, ok := base.(map[string]any)
		if !ok {
			return evalErrf(n.Line, n.Col, "cannot assign into %T", base)
		}
		key, err := r.eval(n.Target.Index)
		if err != nil {
			return err
		}
		ks, ok := key.(string)
		if !ok {
			return evalErrf(n.Line, n.Col, "dict keys must be strings, got %T", key)
		}
		dict[ks] = value
		return nil
	}
	return evalErrf(n.Line, n.Col, "unsupported assignment target")
}

func (r *runner) execImport(n *snippet.Node) error {
	mod, ok := r.env.Modules[n.Name]
	if !ok {
		return evalErrf(n.Line, n.Col, "import of module %q is not allowed", n.Name)
	}
	r.ns[n.Name] = mod
	return nil
}

func (r *runner) execFor(n *snippet.Node) error {
	iterable, err := r.eval(n.X)
	if err != nil {
		return err
	}
	items, err := iterate(iterable)
	if err != nil {
		return evalErrf(n.Line, n.Col, "%v", err)
	}
	for _, item := range items {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		r.ns[n.Target.Name] = item
		for _, stmt := range n.Body {
			if err := r.exec(stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

func iterate(v any) ([]any, error) {
	switch t := v.(type) {
	case []any:
		return t, nil
	case *dataset.Series:
		return t.Values, nil
	}
	return nil, fmt.Errorf("value of type %T is not iterable", v)
}

func (r *runner) eval(n *snippet.Node) (any, error) {
	switch n.Kind {
	case snippet.KindName:
		v, ok := r.ns[n.Name]
		if !ok {
			return nil, evalErrf(n.Line, n.Col, "name %q is not defined", n.Name)
		}
		return v, nil
	case snippet.KindLiteral:
		return n.Value, nil
	case snippet.KindList:
		out := make([]any, 0, len(n.Elems))
		for _, e := range n.Elems {
			v, err := r.eval(e)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case snippet.KindDict:
		out := make(map[string]any, len(n.Keys))
		for i, k := range n.Keys {
			kv, err := r.eval(k)
			if err != nil {
				return nil, err
			}
			ks, ok := kv.(string)
			if !ok {
				return nil, evalErrf(k.Line, k.Col, "dict keys must be strings, got %T", kv)
			}
			vv, err := r.eval(n.Vals[i])
			if err != nil {
				return nil, err
			}
			out[ks] = vv
		}
		return out, nil
	case snippet.KindSubscript:
		return r.evalSubscript(n)
	case snippet.KindAttribute:
		return r.evalAttribute(n)
	case snippet.KindCall:
		return r.evalCall(n)
	case snippet.KindCompare:
		return r.evalCompare(n)
	case snippet.KindBinary:
		return r.evalBinary(n)
	case snippet.KindUnary:
		return r.evalUnary(n)
	case snippet.KindBoolOp:
		return r.evalBoolOp(n)
	}
	return nil, evalErrf(n.Line, n.Col, "cannot evaluate %s node", n.Kind)
}

func (r *runner) evalSubscript(n *snippet.Node) (any, error) {
	base, err := r.eval(n.X)
	if err != nil {
		return nil, err
	}
	index, err := r.eval(n.Index)
	if err != nil {
		return nil, err
	}
	switch b := base.(type) {
	case *dataset.Frame:
		switch idx := index.(type) {
		case string:
			s, err := b.Column(idx)
			if err != nil {
				return nil, evalErrf(n.Line, n.Col, "%v", err)
			}
			return s, nil
		case []bool:
			f, err := b.Where(idx)
			if err != nil {
				return nil, evalErrf(n.Line, n.Col, "%v", err)
			}
			return f, nil
		}
		return nil, evalErrf(n.Line, n.Col, "frame index must be a column name or boolean mask, got %T", index)
	case []any:
		i, ok := index.(int64)
		if !ok {
			return nil, evalErrf(n.Line, n.Col, "list index must be an integer, got %T", index)
		}
		if i < 0 || int(i) >= len(b) {
			return nil, evalErrf(n.Line, n.Col, "list index %d out of range (%d elements)", i, len(b))
		}
		return b[i], nil
	case map[string]any:
		k, ok := index.(string)
		if !ok {
			return nil, evalErrf(n.Line, n.Col, "dict index must be a string, got %T", index)
		}
		v, ok := b[k]
		if !ok {
			return nil, evalErrf(n.Line, n.Col, "dict has no key %q", k)
		}
		return v, nil
	case *dataset.Series:
		i, ok := index.(int64)
		if !ok {
			return nil, evalErrf(n.Line, n.Col, "series index must be an integer, got %T", index)
		}
		if i < 0 || int(i) >= len(b.Values) {
			return nil, evalErrf(n.Line, n.Col, "series index %d out of range (%d values)", i, len(b.Values))
		}
		return b.Values[i], nil
	}
	return nil, evalErrf(n.Line, n.Col, "value of type %T is not subscriptable", base)
}

// evalAttribute resolves plain attribute access. Most attributes are
// methods and arrive through evalCall; the ones reachable here are
// data attributes such as series.values.
func (r *runner) evalAttribute(n *snippet.Node) (any, error) {
	base, err := r.eval(n.X)
	if err != nil {
		return nil, err
	}
	switch b := base.(type) {
	case *dataset.Series:
		if n.Name == "values" {
			return append([]any(nil), b.Values...), nil
		}
	case *dataset.Frame:
		if n.Name == "columns" {
			out := make([]any, len(b.Fields))
			for i, f := range b.Fields {
				out[i] = f.Name
			}
			return out, nil
		}
	}
	return nil, evalErrf(n.Line, n.Col, "value of type %T has no attribute %q", base, n.Name)
}

func (r *runner) evalCall(n *snippet.Node) (any, error) {
	args := make([]any, 0, len(n.Args))
	for _, a := range n.Args {
		v, err := r.eval(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	if n.X.Kind == snippet.KindAttribute {
		base, err := r.eval(n.X.X)
		if err != nil {
			return nil, err
		}
		return r.callMethod(n, base, n.X.Name, args)
	}

	callee, err := r.eval(n.X)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(Builtin)
	if !ok {
		return nil, evalErrf(n.Line, n.Col, "value of type %T is not callable", callee)
	}
	out, err := fn(args)
	if err != nil {
		return nil, &EvalError{Message: err.Error(), Line: n.Line, Col: n.Col, Err: err}
	}
	return out, nil
}

func (r *runner) callMethod(n *snippet.Node, base any, method string, args []any) (any, error) {
	fail := func(err error) (any, error) {
		return nil, &EvalError{Message: err.Error(), Line: n.Line, Col: n.Col, Err: err}
	}
	switch b := base.(type) {
	case *Module:
		fn, ok := b.Funcs[method]
		if !ok {
			return nil, evalErrf(n.Line, n.Col, "module %q has no function %q", b.Name, method)
		}
		out, err := fn(args)
		if err != nil {
			return fail(err)
		}
		return out, nil

	case *dataset.Frame:
		switch method {
		case "filter":
			mask, ok := oneArg(args).([]bool)
			if !ok {
				return nil, evalErrf(n.Line, n.Col, "filter expects a boolean mask")
			}
			out, err := b.Where(mask)
			if err != nil {
				return fail(err)
			}
			return out, nil
		case "groupby":
			col, ok := oneArg(args).(string)
			if !ok {
				return nil, evalErrf(n.Line, n.Col, "groupby expects a column name")
			}
			out, err := b.GroupBy(col)
			if err != nil {
				return fail(err)
			}
			return out, nil
		case "sort_values":
			if len(args) < 1 || len(args) > 2 {
				return nil, evalErrf(n.Line, n.Col, "sort_values expects a column name and optional ascending flag")
			}
			col, ok := args[0].(string)
			if !ok {
				return nil, evalErrf(n.Line, n.Col, "sort_values expects a column name")
			}
			ascending := true
			if len(args) == 2 {
				asc, ok := args[1].(bool)
				if !ok {
					return nil, evalErrf(n.Line, n.Col, "sort_values ascending flag must be a boolean")
				}
				ascending = asc
			}
			out, err := b.SortValues(col, ascending)
			if err != nil {
				return fail(err)
			}
			return out, nil
		case "head":
			count, ok := oneArg(args).(int64)
			if !ok {
				return nil, evalErrf(n.Line, n.Col, "head expects an integer")
			}
			return b.Head(int(count)), nil
		case "count":
			if len(args) != 0 {
				return nil, evalErrf(n.Line, n.Col, "count takes no arguments")
			}
			return int64(b.NumRows()), nil
		}
		return nil, evalErrf(n.Line, n.Col, "frame has no method %q", method)

	case *dataset.Series:
		if len(args) != 0 && method != "tolist" {
			return nil, evalErrf(n.Line, n.Col, "series method %q takes no arguments", method)
		}
		switch method {
		case "count":
			return b.Count(), nil
		case "sum":
			out, err := b.Sum()
			if err != nil {
				return fail(err)
			}
			return out, nil
		case "mean":
			out, err := b.Mean()
			if err != nil {
				return fail(err)
			}
			return out, nil
		case "min":
			out, err := b.Min()
			if err != nil {
				return fail(err)
			}
			return out, nil
		case "max":
			out, err := b.Max()
			if err != nil {
				return fail(err)
			}
			return out, nil
		case "unique":
			return b.Unique(), nil
		case "nunique":
			return int64(len(b.Unique())), nil
		case "tolist":
			return append([]any(nil), b.Values...), nil
		}
		return nil, evalErrf(n.Line, n.Col, "series has no method %q", method)

	case *dataset.Grouped:
		switch method {
		case "count":
			return b.Count(), nil
		case "sum", "mean":
			col, ok := oneArg(args).(string)
			if !ok {
				return nil, evalErrf(n.Line, n.Col, "%s expects a column name", method)
			}
			var out *dataset.Frame
			var err error
			if method == "sum" {
				out, err = b.Sum(col)
			} else {
				out, err = b.Mean(col)
			}
			if err != nil {
				return fail(err)
			}
			return out, nil
		}
		return nil, evalErrf(n.Line, n.Col, "grouped frame has no method %q", method)

	case string:
		if len(args) != 0 {
			return nil, evalErrf(n.Line, n.Col, "string method %q takes no arguments", method)
		}
		switch method {
		case "lower":
			return strings.ToLower(b), nil
		case "upper":
			return strings.ToUpper(b), nil
		case "strip":
			return strings.TrimSpace(b), nil
		}
		return nil, evalErrf(n.Line, n.Col, "string has no method %q", method)
	}
	return nil, evalErrf(n.Line, n.Col, "value of type %T has no method %q", base, method)
}

func oneArg(args []any) any {
	if len(args) != 1 {
		return nil
	}
	return args[0]
}

// evalCompare evaluates a (possibly chained) comparison. Comparisons
// against a Series produce a boolean mask; chained links are combined
// with logical AND, element-wise where masks are involved.
func (r *runner) evalCompare(n *snippet.Node) (any, error) {
	left, err := r.eval(n.X)
	if err != nil {
		return nil, err
	}
	var acc any
	for i, op := range n.Ops {
		right, err := r.eval(n.Comparators[i])
		if err != nil {
			return nil, err
		}
		res, err := comparePair(left, op, right)
		if err != nil {
			return nil, &EvalError{Message: err.Error(), Line: n.Line, Col: n.Col, Err: err}
		}
		acc, err = andValues(acc, res)
		if err != nil {
			return nil, &EvalError{Message: err.Error(), Line: n.Line, Col: n.Col, Err: err}
		}
		left = right
	}
	return acc, nil
}

var swappedOps = map[string]string{
	"<": ">", "<=": ">=", ">": "<", ">=": "<=", "==": "==", "!=": "!=",
}

func comparePair(left any, op string, right any) (any, error) {
	if ls, ok := left.(*dataset.Series); ok {
		if _, rok := right.(*dataset.Series); rok {
			return nil, fmt.Errorf("series-to-series comparison is not supported")
		}
		return ls.Compare(op, right)
	}
	if rs, ok := right.(*dataset.Series); ok {
		swapped, ok := swappedOps[op]
		if !ok {
			return nil, fmt.Errorf("operator %q cannot compare a scalar against a series", op)
		}
		return rs.Compare(swapped, left)
	}
	return dataset.CompareScalar(left, op, right)
}

func andValues(acc, next any) (any, error) {
	if acc == nil {
		return next, nil
	}
	switch a := acc.(type) {
	case bool:
		switch b := next.(type) {
		case bool:
			return a && b, nil
		case []bool:
			if !a {
				return make([]bool, len(b)), nil
			}
			return b, nil
		}
	case []bool:
		switch b := next.(type) {
		case bool:
			if !b {
				return make([]bool, len(a)), nil
			}
			return a, nil
		case []bool:
			if len(a) != len(b) {
				return nil, fmt.Errorf("mask length mismatch: %d vs %d", len(a), len(b))
			}
			out := make([]bool, len(a))
			for i := range a {
				out[i] = a[i] && b[i]
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("cannot combine comparison results of types %T and %T", acc, next)
}

func (r *runner) evalBinary(n *snippet.Node) (any, error) {
	left, err := r.eval(n.X)
	if err != nil {
		return nil, err
	}
	right, err := r.eval(n.Y)
	if err != nil {
		return nil, err
	}
	out, err := binaryOp(n.Name, left, right)
	if err != nil {
		return nil, &EvalError{Message: err.Error(), Line: n.Line, Col: n.Col, Err: err}
	}
	return out, nil
}

func binaryOp(op string, left, right any) (any, error) {
	if op == "+" {
		if ls, ok := left.(string); ok {
			rs, ok := right.(string)
			if !ok {
				return nil, fmt.Errorf("cannot add string and %T", right)
			}
			return ls + rs, nil
		}
		if ll, ok := left.([]any); ok {
			rl, ok := right.([]any)
			if !ok {
				return nil, fmt.Errorf("cannot add list and %T", right)
			}
			out := make([]any, 0, len(ll)+len(rl))
			out = append(out, ll...)
			return append(out, rl...), nil
		}
	}

	li, lok := left.(int64)
	ri, rok := right.(int64)
	if lok && rok && op != "/" {
		switch op {
		case "+":
			return li + ri, nil
		case "-":
			return li - ri, nil
		case "*":
			return li * ri, nil
		case "%":
			if ri == 0 {
				return nil, fmt.Errorf("modulo by zero")
			}
			return li % ri, nil
		}
	}

	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, fmt.Errorf("unsupported operand types for %s: %T and %T", op, left, right)
	}
	switch op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return lf / rf, nil
	case "%":
		if rf == 0 {
			return nil, fmt.Errorf("modulo by zero")
		}
		return math.Mod(lf, rf), nil
	}
	return nil, fmt.Errorf("unsupported binary operator %q", op)
}

func (r *runner) evalUnary(n *snippet.Node) (any, error) {
	operand, err := r.eval(n.X)
	if err != nil {
		return nil, err
	}
	switch n.Name {
	case "-":
		switch v := operand.(type) {
		case int64:
			return -v, nil
		case float64:
			return -v, nil
		}
		return nil, evalErrf(n.Line, n.Col, "cannot negate %T", operand)
	case "not":
		switch v := operand.(type) {
		case bool:
			return !v, nil
		case []bool:
			out := make([]bool, len(v))
			for i, b := range v {
				out[i] = !b
			}
			return out, nil
		}
		return nil, evalErrf(n.Line, n.Col, "cannot apply not to %T", operand)
	}
	return nil, evalErrf(n.Line, n.Col, "unsupported unary operator %q", n.Name)
}

func (r *runner) evalBoolOp(n *snippet.Node) (any, error) {
	left, err := r.eval(n.X)
	if err != nil {
		return nil, err
	}
	// Short-circuit for plain booleans; masks always need both sides.
	if lb, ok := left.(bool); ok {
		if n.Name == "and" && !lb {
			return false, nil
		}
		if n.Name == "or" && lb {
			return true, nil
		}
	}
	right, err := r.eval(n.Y)
	if err != nil {
		return nil, err
	}
	lm, lok := left.([]bool)
	rm, rok := right.([]bool)
	if lok && rok {
		if len(lm) != len(rm) {
			return nil, evalErrf(n.Line, n.Col, "mask length mismatch: %d vs %d", len(lm), len(rm))
		}
		out := make([]bool, len(lm))
		for i := range lm {
			if n.Name == "and" {
				out[i] = lm[i] && rm[i]
			} else {
				out[i] = lm[i] || rm[i]
			}
		}
		return out, nil
	}
	lb, lok2 := left.(bool)
	rb, rok2 := right.(bool)
	if lok2 && rok2 {
		if n.Name == "and" {
			return lb && rb, nil
		}
		return lb || rb, nil
	}
	return nil, evalErrf(n.Line, n.Col, "unsupported operands for %s: %T and %T", n.Name, left, right)
}
