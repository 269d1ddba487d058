package service

import (
	"strings"
	"sync"

	"github.com/cortexa-labs/cortexa/internal/domain"
	"github.com/google/uuid"
)

// DefaultMemoryCapacity is the default bound on retained conversation turns.
const DefaultMemoryCapacity = 4

// ConversationMemory is an append-only bounded log of conversation turns.
// Eviction is strictly FIFO and happens on every insert, so the capacity
// invariant holds at all times, not only at read time. One instance per
// session; appends are serialized by the internal mutex.
type ConversationMemory struct {
	mu        sync.Mutex
	sessionID string
	capacity  int
	turns     []domain.Turn
}

// NewConversationMemory creates a memory bounded to the given capacity.
func NewConversationMemory(capacity int) *ConversationMemory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &ConversationMemory{
		sessionID: uuid.NewString(),
		capacity:  capacity,
		turns:     make([]domain.Turn, 0, capacity),
	}
}

// SessionID returns the identifier of this conversation session.
func (m *ConversationMemory) SessionID() string {
	return m.sessionID
}

// Capacity returns the configured bound.
func (m *ConversationMemory) Capacity() int {
	return m.capacity
}

// Append adds a turn at the tail, evicting from the head until the length
// is back within capacity.
func (m *ConversationMemory) Append(turn domain.Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, turn)
	for len(m.turns) > m.capacity {
		m.turns = m.turns[1:]
	}
}

// Recent returns the retained turns, oldest first. The returned slice is a
// copy; reading never mutates state.
func (m *ConversationMemory) Recent() []domain.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Clear drops all retained turns.
func (m *ConversationMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = m.turns[:0]
}

// FormatHistory serializes turns for the history layer.
func FormatHistory(turns []domain.Turn) string {
	if len(turns) == 0 {
		return "No previous conversation"
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		role := "User"
		if t.Role == domain.RoleAssistant {
			role = "Assistant"
		}
		lines = append(lines, role+": "+t.Text)
	}
	return strings.Join(lines, "\n")
}
