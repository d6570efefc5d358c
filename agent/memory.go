package agent

import (
	"strings"
	"sync"
)

// defaultMemorySize is the number of recent messages included when
// rendering the conversation into a prompt.
const defaultMemorySize = 10

// Message is one conversational exchange entry.
type Message struct {
	Content string
	IsUser  bool
}

// Memory is a bounded conversation log. All messages are retained for
// inspection; only the most recent window is rendered into prompts so
// long conversations do not grow prompts without bound. Safe for
// concurrent use.
type Memory struct {
	mu       sync.Mutex
	size     int
	messages []Message
}

// NewMemory creates a Memory whose prompt window holds size messages.
// A non-positive size selects the default window.
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = defaultMemorySize
	}
	return &Memory{size: size}
}

// AddUser appends a user question.
func (m *Memory) AddUser(content string) { m.add(content, true) }

// AddAssistant appends an assistant answer.
func (m *Memory) AddAssistant(content string) { m.add(content, false) }

func (m *Memory) add(content string, user bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{Content: content, IsUser: user})
}

// Count returns the total number of stored messages.
func (m *Memory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// All returns a copy of every stored message in order.
func (m *Memory) All() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

// Conversation renders the most recent window as prompt text, one
// message per line with Q:/A: role prefixes.
func (m *Memory) Conversation() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := 0
	if len(m.messages) > m.size {
		start = len(m.messages) - m.size
	}
	var b strings.Builder
	for i, msg := range m.messages[start:] {
		if i > 0 {
			b.WriteByte('\n')
		}
		if msg.IsUser {
			b.WriteString("Q: ")
		} else {
			b.WriteString("A: ")
		}
		b.WriteString(msg.Content)
	}
	return b.String()
}

// Clear removes all messages.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}
