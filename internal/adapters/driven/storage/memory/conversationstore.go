package memory

import (
	"context"
	"sync"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore keeps rolling conversation histories in memory.
// Operations serialize on one mutex; concurrent appends to the same
// conversation land in arrival order, last writer wins.
type ConversationStore struct {
	mu    sync.Mutex
	turns map[string][]domain.ConversationTurn
}

// NewConversationStore creates an empty store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{turns: make(map[string][]domain.ConversationTurn)}
}

// Append adds a turn, evicting the oldest beyond MaxConversationTurns.
func (s *ConversationStore) Append(_ context.Context, conversationID string, turn domain.ConversationTurn) error {
	if conversationID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.turns[conversationID], turn)
	if len(history) > domain.MaxConversationTurns {
		history = history[len(history)-domain.MaxConversationTurns:]
	}
	s.turns[conversationID] = history
	return nil
}

// Recent returns up to limit turns, oldest first.
func (s *ConversationStore) Recent(_ context.Context, conversationID string, limit int) ([]domain.ConversationTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.turns[conversationID]
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return append([]domain.ConversationTurn(nil), history...), nil
}

// Clear drops the conversation's history.
func (s *ConversationStore) Clear(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, conversationID)
	return nil
}
