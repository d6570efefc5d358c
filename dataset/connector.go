package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Connector is the contract a data source implements so the engine can
// materialize it on demand.
//
// Contract:
// - ApplyFilters replaces any previously applied filters; it never merges.
// - Materialize may perform I/O and must honor ctx cancellation.
// - SchemaFingerprint must be deterministic for an unchanged schema.
// - Filters are a pruning hint: a connector may ignore filters it cannot
//   express, but must never return rows outside the unfiltered set.
type Connector interface {
	// Schema returns the ordered column declarations.
	Schema() Schema

	// ApplyFilters sets the predicates to apply on the next Materialize.
	ApplyFilters(filters []Predicate)

	// Materialize loads the (possibly filtered) rows into a Frame.
	Materialize(ctx context.Context) (*Frame, error)

	// SchemaFingerprint returns a deterministic identity string derived
	// from the schema, used as a cache key component.
	SchemaFingerprint() string
}

// DirectQuerier is implemented by connectors that can run a SQL query
// directly against their backing store. Used in direct-SQL mode, where
// the generated snippet calls execute_sql_query instead of filtering
// materialized frames.
type DirectQuerier interface {
	ExecuteDirectQuery(ctx context.Context, sql string) (*Frame, error)
}

// Fingerprint hashes a schema into a short hex identity string.
func Fingerprint(s Schema) string {
	var b strings.Builder
	for _, f := range s {
		b.WriteString(f.Name)
		b.WriteByte(':')
		b.WriteString(string(f.Type))
		b.WriteByte(';')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}
