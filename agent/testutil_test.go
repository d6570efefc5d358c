package agent

import (
	"context"
	"sync"

	"github.com/framechat/framechat/dataset"
)

// mockGenerator implements Generator with canned snippets and call
// tracking.
type mockGenerator struct {
	mu sync.Mutex

	// Configurable returns
	code       string
	genererr   error
	repairCode string

	// Call tracking
	generateCalls int
	repairCalls   int
	prompts       []Prompt
}

func (m *mockGenerator) Generate(_ context.Context, p Prompt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateCalls++
	m.prompts = append(m.prompts, p)
	return m.code, m.genererr
}

func (m *mockGenerator) Repair(_ context.Context, p Prompt, _, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repairCalls++
	return m.repairCode, nil
}

func (m *mockGenerator) generated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateCalls
}

func (m *mockGenerator) lastPrompt() Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return Prompt{}
	}
	return m.prompts[len(m.prompts)-1]
}

func gdpConnector() *dataset.MemoryConnector {
	f, _ := dataset.NewFrame(
		dataset.Schema{
			{Name: "country", Type: dataset.Object},
			{Name: "gdp", Type: dataset.Int},
		},
		[][]any{
			{"us", int64(21)},
			{"cn", int64(14)},
			{"jp", int64(5)},
		},
	)
	return dataset.NewMemoryConnector(f)
}

const sumGdpSnippet = "result = {'type': 'number', 'value': df['gdp'].sum()}\n"
