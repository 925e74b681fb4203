package driven

import (
	"context"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
)

// ProgressStore persists learner progress records. The store exclusively
// owns UserProgress; the core reads copies and hands updated copies back.
type ProgressStore interface {
	// Get returns the progress for a learner, or ErrNotFound.
	Get(ctx context.Context, userID string) (*domain.UserProgress, error)

	// Save persists a full progress record, replacing any existing one.
	Save(ctx context.Context, progress *domain.UserProgress) error

	// Delete removes a learner's record. Explicit operator action only.
	Delete(ctx context.Context, userID string) error

	// AppendInteraction records one exchange, creating the progress
	// record with a default profile when the learner is unknown.
	AppendInteraction(ctx context.Context, userID string, interaction domain.UserInteraction) error
}

// ConversationStore keeps the bounded rolling history per conversation id.
// Concurrent writers to the same conversation race; implementations apply
// last-writer-wins and must serialize individual operations internally.
type ConversationStore interface {
	// Append adds a turn, evicting the oldest beyond MaxConversationTurns.
	Append(ctx context.Context, conversationID string, turn domain.ConversationTurn) error

	// Recent returns up to limit turns, oldest first.
	Recent(ctx context.Context, conversationID string, limit int) ([]domain.ConversationTurn, error)

	// Clear drops the history for a conversation.
	Clear(ctx context.Context, conversationID string) error
}
