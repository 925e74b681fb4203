// Package redis provides the Redis-backed conversation store, used when
// several processes share conversation state.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ConversationStore = (*ConversationStore)(nil)

const (
	// conversationPrefix namespaces conversation keys.
	conversationPrefix = "conversation:"

	// conversationTTL expires idle conversations. Every append refreshes it.
	conversationTTL = 24 * time.Hour
)

// ConversationStore keeps rolling conversation histories in Redis lists.
// Appends trim the list so at most MaxConversationTurns survive; Redis
// serializes commands per key, so concurrent appends land in arrival
// order, last writer wins.
type ConversationStore struct {
	client *redis.Client
}

// NewConversationStore creates a Redis-backed ConversationStore.
func NewConversationStore(client *redis.Client) *ConversationStore {
	return &ConversationStore{client: client}
}

// Append adds a turn and evicts the oldest beyond the window.
func (s *ConversationStore) Append(ctx context.Context, conversationID string, turn domain.ConversationTurn) error {
	if conversationID == "" {
		return domain.ErrInvalidInput
	}

	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshalling turn: %w", err)
	}

	key := conversationPrefix + conversationID

	// Pipeline keeps push, trim and expiry in one round trip.
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-domain.MaxConversationTurns), -1)
	pipe.Expire(ctx, key, conversationTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("appending turn: %w", err)
	}
	return nil
}

// Recent returns up to limit turns, oldest first.
func (s *ConversationStore) Recent(ctx context.Context, conversationID string, limit int) ([]domain.ConversationTurn, error) {
	key := conversationPrefix + conversationID

	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	raw, err := s.client.LRange(ctx, key, start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading conversation: %w", err)
	}

	turns := make([]domain.ConversationTurn, 0, len(raw))
	for _, item := range raw {
		var turn domain.ConversationTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("unmarshalling turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Clear drops the conversation's history.
func (s *ConversationStore) Clear(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, conversationPrefix+conversationID).Err(); err != nil {
		return fmt.Errorf("clearing conversation: %w", err)
	}
	return nil
}
