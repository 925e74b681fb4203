package driven

import (
	"context"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
)

// Reranker is the optional per-learner candidate scorer. The pipeline
// treats it as a capability: when nil or failing, retrieval keeps the
// index's native ordering and no error surfaces to the caller.
type Reranker interface {
	// Score rates a candidate document for a learner. Higher is better.
	Score(ctx context.Context, learnerID string, doc *domain.Document) (float64, error)

	// Train updates the learner's model from accumulated feedback and
	// returns the training loss. Triggered opportunistically after
	// feedback is recorded; must never block the response path.
	Train(ctx context.Context, learnerID string) (float64, error)
}
