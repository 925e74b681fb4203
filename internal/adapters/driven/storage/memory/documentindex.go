package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
)

// Ensure DocumentIndex implements the interface.
var _ driven.DocumentIndex = (*DocumentIndex)(nil)

// DocumentIndex is an in-memory keyword index. Relevance is term overlap:
// the more query terms a document contains, the higher it ranks. Ties
// break by insertion order so results are stable.
type DocumentIndex struct {
	mu    sync.RWMutex
	docs  map[string]*domain.Document
	order []string
}

// NewDocumentIndex creates an empty index.
func NewDocumentIndex() *DocumentIndex {
	return &DocumentIndex{docs: make(map[string]*domain.Document)}
}

// Add indexes a document, replacing any existing one with the same id.
func (i *DocumentIndex) Add(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, exists := i.docs[doc.ID]; !exists {
		i.order = append(i.order, doc.ID)
	}
	i.docs[doc.ID] = doc
	return nil
}

// AddBatch indexes several documents.
func (i *DocumentIndex) AddBatch(ctx context.Context, docs []*domain.Document) error {
	for _, doc := range docs {
		if err := i.Add(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// GetByID returns the document with the given id.
func (i *DocumentIndex) GetByID(_ context.Context, id string) (*domain.Document, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	doc, ok := i.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// Search returns up to limit documents sharing terms with the query,
// best overlap first.
func (i *DocumentIndex) Search(_ context.Context, query string, limit int) ([]*domain.Document, error) {
	return i.search(query, limit, ""), nil
}

// SearchByType is Search restricted to one document type.
func (i *DocumentIndex) SearchByType(_ context.Context, query string, docType domain.DocType, limit int) ([]*domain.Document, error) {
	return i.search(query, limit, docType), nil
}

// Delete removes a document from the index.
func (i *DocumentIndex) Delete(_ context.Context, id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(i.docs, id)
	for n, existing := range i.order {
		if existing == id {
			i.order = append(i.order[:n], i.order[n+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of indexed documents.
func (i *DocumentIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docs)
}

func (i *DocumentIndex) search(query string, limit int, docType domain.DocType) []*domain.Document {
	terms := tokenize(query)
	if len(terms) == 0 || limit <= 0 {
		return nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	type hit struct {
		doc   *domain.Document
		score int
		pos   int
	}
	var hits []hit
	for pos, id := range i.order {
		doc := i.docs[id]
		if docType != "" && doc.DocType != docType {
			continue
		}
		haystack := strings.ToLower(doc.Content + " " + doc.Title())
		score := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, hit{doc: doc, score: score, pos: pos})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return hits[a].pos < hits[b].pos
	})

	out := make([]*domain.Document, 0, limit)
	for _, h := range hits {
		out = append(out, h.doc)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
