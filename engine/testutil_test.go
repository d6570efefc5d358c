package engine

import (
	"context"
	"sync"

	"github.com/framechat/framechat/dataset"
)

// mockConnector implements dataset.Connector with call tracking.
type mockConnector struct {
	mu sync.Mutex

	frame *dataset.Frame

	// Configurable returns
	materializeErr error

	// Call tracking
	materializeCalls int
	appliedFilters   [][]dataset.Predicate
}

func newMockConnector(f *dataset.Frame) *mockConnector {
	return &mockConnector{frame: f}
}

func (m *mockConnector) Schema() dataset.Schema { return m.frame.Fields }

func (m *mockConnector) ApplyFilters(filters []dataset.Predicate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appliedFilters = append(m.appliedFilters, filters)
}

func (m *mockConnector) Materialize(ctx context.Context) (*dataset.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.materializeCalls++
	if m.materializeErr != nil {
		return nil, m.materializeErr
	}
	return m.frame, nil
}

func (m *mockConnector) SchemaFingerprint() string {
	return dataset.Fingerprint(m.frame.Fields)
}

func (m *mockConnector) materialized() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.materializeCalls
}

func (m *mockConnector) lastFilters() []dataset.Predicate {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.appliedFilters) == 0 {
		return nil
	}
	return m.appliedFilters[len(m.appliedFilters)-1]
}

// mockDirectConnector adds direct query support.
type mockDirectConnector struct {
	*mockConnector

	queryResult *dataset.Frame
	queries     []string
}

func (m *mockDirectConnector) ExecuteDirectQuery(_ context.Context, sql string) (*dataset.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, sql)
	return m.queryResult, nil
}

// loanFrame is the dataset most executor tests run against.
func loanFrame() *dataset.Frame {
	f, _ := dataset.NewFrame(
		dataset.Schema{
			{Name: "loan_status", Type: dataset.Object},
			{Name: "age", Type: dataset.Int},
		},
		[][]any{
			{"PAIDOFF", int64(35)},
			{"PAIDOFF", int64(28)},
			{"COLLECTION", int64(41)},
			{"PAIDOFF", int64(52)},
		},
	)
	return f
}

// repairSequence returns a RepairFunc that yields the given snippets in
// order and counts invocations.
type repairSequence struct {
	mu       sync.Mutex
	snippets []string
	calls    int
}

func (r *repairSequence) fn(_ context.Context, _ string, _ string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var next string
	if r.calls < len(r.snippets) {
		next = r.snippets[r.calls]
	} else {
		next = r.snippets[len(r.snippets)-1]
	}
	r.calls++
	return next, nil
}

func (r *repairSequence) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
