// Package dataset defines the tabular values the engine operates on:
// an in-memory Frame with typed columns, the Predicate used to scope
// materialization, and the Connector contract that data sources implement.
package dataset

import (
	"fmt"
	"sort"
)

// DType is the declared type of a column.
type DType string

// Column types. Object is the catch-all for string-like data, matching
// the naming the generated snippets see in schema descriptions.
const (
	Int    DType = "int"
	Float  DType = "float"
	Object DType = "object"
	Bool   DType = "bool"
)

// Field is one column declaration: name plus declared type.
type Field struct {
	Name string
	Type DType
}

// Schema is the ordered list of column declarations for a Frame.
type Schema []Field

// Index returns the position of the named column, or -1.
func (s Schema) Index(name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Frame is a two-dimensional, column-ordered table. Rows are stored
// row-major; cells are untyped and interpreted against the schema.
type Frame struct {
	Fields Schema
	Rows   [][]any
}

// NewFrame creates a Frame from a schema and rows. Rows whose width does
// not match the schema are rejected, as are non-scalar cells: grouping
// and distinct-value operations use cells as map keys, so every cell
// must be comparable.
func NewFrame(fields Schema, rows [][]any) (*Frame, error) {
	for i, r := range rows {
		if len(r) != len(fields) {
			return nil, fmt.Errorf("dataset: row %d has %d cells, schema has %d columns", i, len(r), len(fields))
		}
		for j, cell := range r {
			if !scalarCell(cell) {
				return nil, fmt.Errorf("dataset: row %d column %q holds non-scalar value %T", i, fields[j].Name, cell)
			}
		}
	}
	return &Frame{Fields: fields, Rows: rows}, nil
}

// scalarCell reports whether v is one of the cell types a Frame stores.
func scalarCell(v any) bool {
	switch v.(type) {
	case nil, string, bool, int, int64, float32, float64:
		return true
	}
	return false
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int { return len(f.Rows) }

// NumColumns returns the number of columns.
func (f *Frame) NumColumns() int { return len(f.Fields) }

// Column returns the named column as a Series.
func (f *Frame) Column(name string) (*Series, error) {
	idx := f.Fields.Index(name)
	if idx < 0 {
		return nil, fmt.Errorf("dataset: no column %q", name)
	}
	values := make([]any, len(f.Rows))
	for i, r := range f.Rows {
		values[i] = r[idx]
	}
	return &Series{Name: name, Type: f.Fields[idx].Type, Values: values}, nil
}

// Where returns a new Frame keeping only rows where mask is true.
// The mask length must match the row count.
func (f *Frame) Where(mask []bool) (*Frame, error) {
	if len(mask) != len(f.Rows) {
		return nil, fmt.Errorf("dataset: mask length %d does not match %d rows", len(mask), len(f.Rows))
	}
	out := &Frame{Fields: f.Fields}
	for i, keep := range mask {
		if keep {
			out.Rows = append(out.Rows, f.Rows[i])
		}
	}
	return out, nil
}

// Head returns the first n rows (all rows when n exceeds the row count).
func (f *Frame) Head(n int) *Frame {
	if n > len(f.Rows) {
		n = len(f.Rows)
	}
	if n < 0 {
		n = 0
	}
	return &Frame{Fields: f.Fields, Rows: f.Rows[:n]}
}

// SortValues returns a new Frame sorted by the named column.
func (f *Frame) SortValues(column string, ascending bool) (*Frame, error) {
	idx := f.Fields.Index(column)
	if idx < 0 {
		return nil, fmt.Errorf("dataset: no column %q", column)
	}
	rows := make([][]any, len(f.Rows))
	copy(rows, f.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		less := lessValues(rows[i][idx], rows[j][idx])
		if ascending {
			return less
		}
		return lessValues(rows[j][idx], rows[i][idx])
	})
	return &Frame{Fields: f.Fields, Rows: rows}, nil
}

// GroupBy groups rows by the distinct values of the named column.
func (f *Frame) GroupBy(column string) (*Grouped, error) {
	idx := f.Fields.Index(column)
	if idx < 0 {
		return nil, fmt.Errorf("dataset: no column %q", column)
	}
	g := &Grouped{frame: f, keyIndex: idx, keyName: column}
	seen := map[any]int{}
	for _, r := range f.Rows {
		k := r[idx]
		pos, ok := seen[k]
		if !ok {
			pos = len(g.keys)
			seen[k] = pos
			g.keys = append(g.keys, k)
			g.groups = append(g.groups, nil)
		}
		g.groups[pos] = append(g.groups[pos], r)
	}
	return g, nil
}

// Concat appends the rows of all frames sharing the first frame's schema.
func Concat(frames []*Frame) (*Frame, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("dataset: concat of zero frames")
	}
	out := &Frame{Fields: frames[0].Fields}
	for _, fr := range frames {
		if fr == nil {
			continue
		}
		if len(fr.Fields) != len(out.Fields) {
			return nil, fmt.Errorf("dataset: concat schema mismatch: %d vs %d columns", len(fr.Fields), len(out.Fields))
		}
		out.Rows = append(out.Rows, fr.Rows...)
	}
	return out, nil
}

// Grouped is the result of Frame.GroupBy, holding rows bucketed by the
// distinct values of the key column in first-seen order.
type Grouped struct {
	frame    *Frame
	keyIndex int
	keyName  string
	keys     []any
	groups   [][][]any
}

// Count returns a Frame with one row per group: (key, count).
func (g *Grouped) Count() *Frame {
	out := &Frame{Fields: Schema{
		{Name: g.keyName, Type: g.frame.Fields[g.keyIndex].Type},
		{Name: "count", Type: Int},
	}}
	for i, k := range g.keys {
		out.Rows = append(out.Rows, []any{k, int64(len(g.groups[i]))})
	}
	return out
}

// Sum returns a Frame with one row per group: (key, sum of column).
func (g *Grouped) Sum(column string) (*Frame, error) {
	return g.aggregate(column, "sum")
}

// Mean returns a Frame with one row per group: (key, mean of column).
func (g *Grouped) Mean(column string) (*Frame, error) {
	return g.aggregate(column, "mean")
}

func (g *Grouped) aggregate(column, how string) (*Frame, error) {
	idx := g.frame.Fields.Index(column)
	if idx < 0 {
		return nil, fmt.Errorf("dataset: no column %q", column)
	}
	out := &Frame{Fields: Schema{
		{Name: g.keyName, Type: g.frame.Fields[g.keyIndex].Type},
		{Name: column, Type: Float},
	}}
	for i, k := range g.keys {
		var total float64
		var n int
		for _, r := range g.groups[i] {
			v, ok := toFloat(r[idx])
			if !ok {
				return nil, fmt.Errorf("dataset: non-numeric value %v in column %q", r[idx], column)
			}
			total += v
			n++
		}
		val := total
		if how == "mean" && n > 0 {
			val = total / float64(n)
		}
		out.Rows = append(out.Rows, []any{k, val})
	}
	return out, nil
}
