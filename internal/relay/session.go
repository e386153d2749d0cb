// In file: internal/relay/session.go
package relay

import (
	"context"
	"sync"

	"github.com/devops-ai/agent-gateway/internal/llm"
)

// SessionStore persists per-conversation message histories between turns.
//
// A conversation's lifecycle is created on first use, mutated every turn, and
// discarded when its TTL lapses after the client goes away. Nothing here is
// durable storage; losing a session just starts the conversation over.
type SessionStore interface {
	// Load returns the stored history for a conversation, or an empty slice
	// for a conversation the store has never seen.
	Load(ctx context.Context, conversationID string) ([]llm.Message, error)

	// Save replaces the stored history for a conversation and refreshes its
	// expiry.
	Save(ctx context.Context, conversationID string, messages []llm.Message) error
}

// MemorySessionStore is an in-process SessionStore for tests and for running
// the gateway without Redis. It never expires entries.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]llm.Message
}

var _ SessionStore = (*MemorySessionStore)(nil)

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string][]llm.Message),
	}
}

func (s *MemorySessionStore) Load(_ context.Context, conversationID string) ([]llm.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.sessions[conversationID]
	// Copy so callers can append without mutating the stored slice.
	messages := make([]llm.Message, len(stored))
	copy(messages, stored)
	return messages, nil
}

func (s *MemorySessionStore) Save(_ context.Context, conversationID string, messages []llm.Message) error {
	stored := make([]llm.Message, len(messages))
	copy(stored, messages)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[conversationID] = stored
	return nil
}
