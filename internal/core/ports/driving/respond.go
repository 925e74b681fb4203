package driving

import (
	"context"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
)

// ResponseOptions tune a single response generation call.
type ResponseOptions struct {
	// Level is the learner's proficiency level.
	Level domain.Level

	// PreferredFormat biases candidate ordering toward a media type.
	PreferredFormat domain.Format

	// UserID enables interaction recording and gap hinting when set.
	UserID string

	// ConversationID selects the rolling history to prepend and extend.
	// Defaults to UserID when empty.
	ConversationID string
}

// Responder composes adaptive answers from retrieved content.
type Responder interface {
	// GenerateResponse returns the adaptive answer for a query. The
	// learner always receives a best-effort textual answer; internal
	// failures degrade to template fallbacks.
	GenerateResponse(ctx context.Context, query string, opts ResponseOptions) (string, error)

	// SuggestRelated returns up to limit pieces of indexed content
	// related to the query.
	SuggestRelated(ctx context.Context, query string, level domain.Level, limit int) ([]domain.RelatedContent, error)

	// RecordFeedback attaches feedback to a learner's latest exchange
	// and opportunistically schedules reranker training.
	RecordFeedback(ctx context.Context, userID, query, response, feedback string) error
}
