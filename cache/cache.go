// Package cache maps conversation fingerprints to previously accepted
// snippets so the engine can skip regeneration. A hit substitutes for
// the generation step only: the cached snippet still runs through the
// full sandbox, retry loop, and output validation.
package cache

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Separator joins key components. It is not expected to occur in data
// source identifiers or schema fingerprints.
const Separator = "~"

// Store is the fingerprint cache contract. Entries are append-only from
// the engine's point of view; eviction is the store's own business.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Get returns ("", false) for unknown keys, never an error value.
type Store interface {
	// Get returns the snippet cached under key, if any.
	Get(key string) (string, bool)

	// Set records snippet under key.
	Set(key, snippet string)

	// Clear removes all entries.
	Clear()
}

// BadMarker is optionally implemented by stores that can flag an entry
// as having produced a failing snippet. Flagged entries stop being
// returned by Get but remain inspectable in the store.
type BadMarker interface {
	MarkBad(key, reason string)
}

var questionCaser = cases.Lower(language.Und)

// NormalizeQuestion canonicalizes a question for use as a key
// component: surrounding whitespace is trimmed, inner whitespace runs
// collapse to single spaces, and the text is Unicode-lowercased.
func NormalizeQuestion(q string) string {
	return questionCaser.String(strings.Join(strings.Fields(q), " "))
}

// Key builds the deterministic cache key from the data source identity,
// the ordered dataset schema fingerprints, and the normalized question.
func Key(dataSource string, fingerprints []string, normalizedQuestion string) string {
	return dataSource + Separator + strings.Join(fingerprints, "") + Separator + normalizedQuestion
}

// Memory is an in-process Store backed by a map.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]string)}
}

// Get returns the snippet cached under key, if any.
func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

// Set records snippet under key.
func (m *Memory) Set(key, snippet string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = snippet
}

// MarkBad drops the entry so failing snippets are not replayed. The
// reason is discarded; the durable store keeps it for inspection.
func (m *Memory) MarkBad(key, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Clear removes all entries.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]string)
}
