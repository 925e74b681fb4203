package driven

import (
	"context"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
)

// DocumentIndex is the retrieval backend boundary. The similarity engine
// behind it is an external collaborator; the core treats Search as a
// black box that returns candidates ordered by relevance.
type DocumentIndex interface {
	// Add indexes a single document. The index takes ownership.
	Add(ctx context.Context, doc *domain.Document) error

	// AddBatch indexes several documents in one call.
	AddBatch(ctx context.Context, docs []*domain.Document) error

	// GetByID returns the document with the given id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*domain.Document, error)

	// Search returns up to limit candidates ordered by relevance.
	Search(ctx context.Context, query string, limit int) ([]*domain.Document, error)

	// SearchByType returns candidates restricted to one document type.
	SearchByType(ctx context.Context, query string, docType domain.DocType, limit int) ([]*domain.Document, error)

	// Delete removes a document from the index.
	Delete(ctx context.Context, id string) error
}
