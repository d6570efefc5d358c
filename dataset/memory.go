package dataset

import (
	"context"
	"sync"
)

// MemoryConnector serves a Frame held in memory. It is the reference
// Connector implementation and the one tests and examples use.
type MemoryConnector struct {
	mu      sync.Mutex
	base    *Frame
	filters []Predicate
}

// NewMemoryConnector wraps an in-memory Frame as a Connector.
func NewMemoryConnector(f *Frame) *MemoryConnector {
	return &MemoryConnector{base: f}
}

// Schema returns the ordered column declarations.
func (c *MemoryConnector) Schema() Schema { return c.base.Fields }

// ApplyFilters replaces the predicates applied on the next Materialize.
func (c *MemoryConnector) ApplyFilters(filters []Predicate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = filters
}

// Filters returns the currently applied predicates.
func (c *MemoryConnector) Filters() []Predicate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// Materialize returns the frame with any expressible filters applied.
// Predicates whose left token is not a known column are skipped: they
// are a pruning hint, not part of the snippet's semantics.
func (c *MemoryConnector) Materialize(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	filters := c.filters
	c.mu.Unlock()

	out := c.base
	for _, p := range filters {
		col, ok := p.Left.(string)
		if !ok || out.Fields.Index(col) < 0 {
			continue
		}
		series, err := out.Column(col)
		if err != nil {
			return nil, err
		}
		mask, err := series.Compare(p.Op, p.Right)
		if err != nil {
			// Inexpressible predicate, serve unpruned rows instead.
			continue
		}
		out, err = out.Where(mask)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SchemaFingerprint returns the schema identity hash.
func (c *MemoryConnector) SchemaFingerprint() string {
	return Fingerprint(c.base.Fields)
}
