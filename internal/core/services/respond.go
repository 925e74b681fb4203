package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driving"
	"github.com/tutoria-labs/tutoria/internal/logger"
)

// searchLimit is how many candidates retrieval fetches before reranking
// and selection narrow them down.
const searchLimit = 10

// previewLen bounds the content preview attached to suggestions.
const previewLen = 150

// Ensure ResponderService implements the interface.
var _ driving.Responder = (*ResponderService)(nil)

// ResponderService generates adaptive answers from indexed content.
type ResponderService struct {
	index         driven.DocumentIndex
	progress      driven.ProgressStore
	conversations driven.ConversationStore
	reranker      driven.Reranker
	vocab         *Vocabulary
	excerpts      *ExcerptSelector
	composer      *Composer
}

// NewResponderService creates a responder. The reranker is optional and
// may be nil; retrieval then keeps the index's ordering.
func NewResponderService(
	index driven.DocumentIndex,
	progress driven.ProgressStore,
	conversations driven.ConversationStore,
	reranker driven.Reranker,
	vocab *Vocabulary,
) *ResponderService {
	excerpts := NewExcerptSelector(vocab)
	return &ResponderService{
		index:         index,
		progress:      progress,
		conversations: conversations,
		reranker:      reranker,
		vocab:         vocab,
		excerpts:      excerpts,
		composer:      NewComposer(vocab, excerpts),
	}
}

// GenerateResponse answers a query with an adaptive, level-sized response.
// Retrieval failures degrade to fallback queries and finally a not-found
// message; the learner always gets text back.
func (s *ResponderService) GenerateResponse(ctx context.Context, query string, opts driving.ResponseOptions) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	profile := s.resolveProfile(ctx, opts)
	expanded := s.vocab.ExpandQuery(query)
	if expanded != query {
		logger.Debug("Query expanded: %q -> %q", query, expanded)
	}

	docs, exactMatch := s.searchByFormat(ctx, query, expanded, profile.PreferredFormat, searchLimit)

	approximate := false
	if len(docs) == 0 {
		docs = s.fallbackSearch(ctx)
		approximate = len(docs) > 0
	}

	var response string
	if len(docs) == 0 {
		response = s.composer.NotFound(query)
	} else {
		docs = s.rerank(ctx, opts.UserID, docs)
		docs = DedupeDocuments(docs)
		if len(docs) > 1+maxComplementaryDocs {
			docs = docs[:1+maxComplementaryDocs]
		}

		history := s.recentTurns(ctx, conversationID(opts))
		response = s.composer.Compose(ComposeInput{
			Query:       query,
			Level:       profile.Level,
			Primary:     docs[0],
			Complements: docs[1:],
			Related:     s.vocab.Related(query, 3),
			Approximate: approximate,
			ExactMatch:  exactMatch,
			Continuing:  len(history) > 0,
			History:     history,
			WeakTopic:   s.weakTopic(query, profile),
		})
	}

	s.record(ctx, query, response, opts)
	return response, nil
}

// SuggestRelated returns up to limit pieces of indexed content related to
// the query, falling back to static topic suggestions when the index has
// nothing.
func (s *ResponderService) SuggestRelated(ctx context.Context, query string, level domain.Level, limit int) ([]domain.RelatedContent, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 3
	}

	docs, err := s.index.Search(ctx, s.vocab.ExpandQuery(query), limit)
	if err != nil {
		logger.Warn("Suggestion search failed for %q: %v", query, err)
	}
	docs = DedupeDocuments(docs)

	out := make([]domain.RelatedContent, 0, limit)
	for _, doc := range docs {
		if len(out) >= limit {
			break
		}
		out = append(out, domain.RelatedContent{
			ID:      doc.ID,
			Title:   doc.Title(),
			Type:    doc.DocType,
			Preview: preview(doc.Content),
			Source:  doc.Source(),
		})
	}
	if len(out) == 0 {
		for _, topic := range s.vocab.Related(query, limit) {
			out = append(out, domain.RelatedContent{Title: topic})
		}
	}
	return out, nil
}

// RecordFeedback attaches feedback text to the learner's most recent
// matching exchange and schedules reranker training in the background.
func (s *ResponderService) RecordFeedback(ctx context.Context, userID, query, response, feedback string) error {
	if userID == "" || strings.TrimSpace(feedback) == "" {
		return fmt.Errorf("%w: user id and feedback are required", domain.ErrInvalidInput)
	}

	progress, err := s.progress.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		progress = domain.NewUserProgress(userID)
	} else if err != nil {
		return fmt.Errorf("loading progress: %w", err)
	}

	// Prefer annotating the latest interaction for the same query over
	// creating a detached feedback-only record.
	attached := false
	for i := len(progress.Interactions) - 1; i >= 0; i-- {
		in := &progress.Interactions[i]
		if in.Query == query && in.Feedback == "" {
			in.Feedback = feedback
			attached = true
			break
		}
	}
	if !attached {
		progress.AddInteraction(domain.UserInteraction{
			ID:       uuid.NewString(),
			Query:    query,
			Response: response,
			Feedback: feedback,
		})
	}

	if err := s.progress.Save(ctx, progress); err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}

	if s.reranker != nil {
		go func() {
			trainCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			loss, err := s.reranker.Train(trainCtx, userID)
			if err != nil {
				logger.Debug("Reranker training skipped for %s: %v", userID, err)
				return
			}
			logger.Debug("Reranker trained for %s (loss %.4f)", userID, loss)
		}()
	}
	return nil
}

// resolveProfile merges explicit options over the stored profile. Options
// win field by field; unknown learners fall back to the defaults.
func (s *ResponderService) resolveProfile(ctx context.Context, opts driving.ResponseOptions) domain.UserProfile {
	profile := domain.DefaultProfile()
	if opts.UserID != "" {
		if progress, err := s.progress.Get(ctx, opts.UserID); err == nil {
			profile = progress.Profile
		}
	}
	if opts.Level != "" {
		profile.Level = opts.Level
	}
	if opts.PreferredFormat != "" {
		profile.PreferredFormat = opts.PreferredFormat
	}
	return profile
}

// searchByFormat retrieves candidates for the expanded query, moves the
// preferred format to the front and reports whether the best candidate is
// an exact match for the learner's wording. Retrieval failures degrade to
// an empty candidate set.
func (s *ResponderService) searchByFormat(ctx context.Context, query, expanded string, format domain.Format, limit int) ([]*domain.Document, bool) {
	docs, err := s.index.Search(ctx, expanded, limit)
	if err != nil {
		logger.Warn("Search failed for %q: %v", query, err)
		return nil, false
	}
	docs = PartitionByFormat(docs, format)
	return docs, len(docs) > 0 && isExactMatch(query, docs[0])
}

// isExactMatch reports whether the document carries the learner's whole
// query verbatim. This stands in for a similarity threshold: the index
// behind the port has no score surface, so containment of the full query
// is the strongest signal available.
func isExactMatch(query string, doc *domain.Document) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(doc.Content), q) ||
		strings.Contains(strings.ToLower(doc.Title()), q)
}

// fallbackSearch tries the static fallback queries in order and returns
// the first non-empty candidate set.
func (s *ResponderService) fallbackSearch(ctx context.Context) []*domain.Document {
	for _, fq := range s.vocab.FallbackQueries {
		docs, err := s.index.Search(ctx, fq, searchLimit)
		if err != nil {
			continue
		}
		if len(docs) > 0 {
			logger.Debug("Fallback query %q matched %d documents", fq, len(docs))
			return docs
		}
	}
	return nil
}

// rerank reorders candidates by the personalized scorer. Any failure keeps
// the index's native ordering; reranking never breaks an answer.
func (s *ResponderService) rerank(ctx context.Context, userID string, docs []*domain.Document) []*domain.Document {
	if s.reranker == nil || userID == "" || len(docs) < 2 {
		return docs
	}

	scores := make([]float64, len(docs))
	for i, doc := range docs {
		score, err := s.reranker.Score(ctx, userID, doc)
		if err != nil {
			logger.Debug("Reranker unavailable for %s: %v", userID, err)
			return docs
		}
		scores[i] = score
	}

	reranked := make([]*domain.Document, len(docs))
	order := make([]int, len(docs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	for i, idx := range order {
		reranked[i] = docs[idx]
	}
	return reranked
}

// weakTopic returns the first query topic listed among the learner's
// weaknesses, or "".
func (s *ResponderService) weakTopic(query string, profile domain.UserProfile) string {
	if len(profile.Weaknesses) == 0 {
		return ""
	}
	weak := make(map[string]struct{}, len(profile.Weaknesses))
	for _, w := range profile.Weaknesses {
		weak[strings.ToLower(w)] = struct{}{}
	}
	for _, topic := range s.vocab.Topics(query) {
		if _, ok := weak[topic]; ok {
			return topic
		}
	}
	return ""
}

// recentTurns loads the rolling history for the conversation so prior
// turns can be prepended as plain-text context. Failures mean no context,
// never a failed answer.
func (s *ResponderService) recentTurns(ctx context.Context, conversationID string) []domain.ConversationTurn {
	if conversationID == "" {
		return nil
	}
	turns, err := s.conversations.Recent(ctx, conversationID, domain.MaxConversationTurns)
	if err != nil {
		logger.Debug("Loading conversation %s failed: %v", conversationID, err)
		return nil
	}
	return turns
}

// record persists the exchange in both the progress history and the
// rolling conversation. Persistence failures are logged, never surfaced:
// the learner already has their answer.
func (s *ResponderService) record(ctx context.Context, query, response string, opts driving.ResponseOptions) {
	if opts.UserID != "" {
		interaction := domain.UserInteraction{
			ID:       uuid.NewString(),
			Query:    query,
			Response: response,
		}
		if err := s.progress.AppendInteraction(ctx, opts.UserID, interaction); err != nil {
			logger.Warn("Recording interaction for %s failed: %v", opts.UserID, err)
		}
	}

	if id := conversationID(opts); id != "" {
		for _, turn := range []domain.ConversationTurn{
			{Role: domain.RoleUser, Content: query},
			{Role: domain.RoleAssistant, Content: response},
		} {
			if err := s.conversations.Append(ctx, id, turn); err != nil {
				logger.Warn("Recording conversation %s failed: %v", id, err)
				break
			}
		}
	}
}

func conversationID(opts driving.ResponseOptions) string {
	if opts.ConversationID != "" {
		return opts.ConversationID
	}
	return opts.UserID
}

func preview(content string) string {
	content = strings.TrimSpace(content)
	if len(content) <= previewLen {
		return content
	}
	return truncate(content, previewLen)
}
