// Package skills manages the user-defined functions a snippet may call.
// Each skill pairs a Go handler with MCP tool metadata so the same
// description that is surfaced to the model also documents the binding
// injected into the sandbox. Skills can optionally be registered into a
// discovery index, which makes them searchable by natural-language
// queries when composing prompts.
package skills

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonwraymond/tooldiscovery/index"
	"github.com/jonwraymond/toolfoundation/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Errors returned by the manager.
var (
	ErrDuplicateSkill = errors.New("skills: duplicate skill name")
	ErrUnknownSkill   = errors.New("skills: unknown skill")
)

// Handler is the Go function a skill executes.
type Handler func(ctx context.Context, args []any) (any, error)

// Skill is one user-defined function exposed to generated snippets.
type Skill struct {
	// Tool carries the MCP metadata: name, description, input schema.
	// Tool.Name is the identifier snippets call.
	Tool mcp.Tool

	// Handler runs when a snippet calls the skill.
	Handler Handler
}

// Name returns the snippet-facing identifier.
func (s Skill) Name() string { return s.Tool.Name }

// Manager is the skill registry for one conversation. It tracks which
// skills the current turn actually used so only those are injected into
// the sandbox namespace.
type Manager struct {
	mu     sync.RWMutex
	skills map[string]Skill
	order  []string
	used   map[string]bool

	// idx, when set, receives every added skill for discovery.
	idx index.Index
}

// NewManager creates an empty skill registry.
func NewManager() *Manager {
	return &Manager{
		skills: make(map[string]Skill),
		used:   make(map[string]bool),
	}
}

// WithIndex attaches a discovery index; subsequently added skills are
// registered into it as local-backend tools under the "skills"
// namespace.
func (m *Manager) WithIndex(idx index.Index) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idx = idx
	return m
}

// Add registers skills. A name collision fails the whole call.
func (m *Manager) Add(skills ...Skill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range skills {
		if s.Tool.Name == "" {
			return fmt.Errorf("skills: skill with empty name")
		}
		if _, dup := m.skills[s.Tool.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateSkill, s.Tool.Name)
		}
		m.skills[s.Tool.Name] = s
		m.order = append(m.order, s.Tool.Name)
		if m.idx != nil {
			tool := model.Tool{Tool: s.Tool, Namespace: "skills"}
			if err := m.idx.RegisterTool(tool, model.NewLocalBackend(s.Tool.Name)); err != nil {
				return fmt.Errorf("skills: register %q in index: %w", s.Tool.Name, err)
			}
		}
	}
	return nil
}

// Get returns the named skill.
func (m *Manager) Get(name string) (Skill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.skills[name]
	if !ok {
		return Skill{}, fmt.Errorf("%w: %q", ErrUnknownSkill, name)
	}
	return s, nil
}

// Has reports whether the named skill exists.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.skills[name]
	return ok
}

// Names returns all skill names in registration order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// MarkUsed records that the current turn referenced the named skill.
func (m *Manager) MarkUsed(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used[name] = true
}

// Used returns the names marked used, in registration order.
func (m *Manager) Used() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for _, name := range m.order {
		if m.used[name] {
			out = append(out, name)
		}
	}
	return out
}

// ResetUsed clears the used set for a new turn.
func (m *Manager) ResetUsed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used = make(map[string]bool)
}

// Search queries the attached discovery index for skills matching the
// query. Without an index it returns nil.
func (m *Manager) Search(query string, limit int) ([]index.Summary, error) {
	m.mu.RLock()
	idx := m.idx
	m.mu.RUnlock()
	if idx == nil {
		return nil, nil
	}
	return idx.Search(query, limit)
}
