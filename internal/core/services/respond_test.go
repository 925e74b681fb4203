package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockIndex implements driven.DocumentIndex for testing. When byQuery is
// set, Search matches only on exact query text; otherwise every search
// returns docs.
type mockIndex struct {
	docs      []*domain.Document
	byQuery   map[string][]*domain.Document
	added     []*domain.Document
	searchErr error
}

func (m *mockIndex) Add(_ context.Context, doc *domain.Document) error {
	m.added = append(m.added, doc)
	return nil
}

func (m *mockIndex) AddBatch(_ context.Context, docs []*domain.Document) error {
	m.added = append(m.added, docs...)
	return nil
}

func (m *mockIndex) GetByID(_ context.Context, id string) (*domain.Document, error) {
	for _, doc := range m.docs {
		if doc.ID == id {
			return doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockIndex) Search(_ context.Context, query string, limit int) ([]*domain.Document, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	docs := m.docs
	if m.byQuery != nil {
		docs = m.byQuery[query]
	}
	if limit < len(docs) {
		docs = docs[:limit]
	}
	return docs, nil
}

func (m *mockIndex) SearchByType(ctx context.Context, query string, docType domain.DocType, limit int) ([]*domain.Document, error) {
	all, err := m.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	var out []*domain.Document
	for _, doc := range all {
		if doc.DocType == docType {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *mockIndex) Delete(_ context.Context, _ string) error {
	return nil
}

// mockProgressStore implements driven.ProgressStore for testing.
type mockProgressStore struct {
	mu      sync.Mutex
	records map[string]*domain.UserProgress
	saveErr error
}

func newMockProgressStore() *mockProgressStore {
	return &mockProgressStore{records: map[string]*domain.UserProgress{}}
}

func (m *mockProgressStore) Get(_ context.Context, userID string) (*domain.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.records[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (m *mockProgressStore) Save(_ context.Context, progress *domain.UserProgress) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[progress.UserID] = progress
	return nil
}

func (m *mockProgressStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, userID)
	return nil
}

func (m *mockProgressStore) AppendInteraction(_ context.Context, userID string, interaction domain.UserInteraction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.records[userID]
	if !ok {
		p = domain.NewUserProgress(userID)
		m.records[userID] = p
	}
	p.AddInteraction(interaction)
	return nil
}

// mockConversationStore implements driven.ConversationStore for testing.
type mockConversationStore struct {
	mu    sync.Mutex
	turns map[string][]domain.ConversationTurn
}

func newMockConversationStore() *mockConversationStore {
	return &mockConversationStore{turns: map[string][]domain.ConversationTurn{}}
}

func (m *mockConversationStore) Append(_ context.Context, conversationID string, turn domain.ConversationTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := append(m.turns[conversationID], turn)
	if len(history) > domain.MaxConversationTurns {
		history = history[len(history)-domain.MaxConversationTurns:]
	}
	m.turns[conversationID] = history
	return nil
}

func (m *mockConversationStore) Recent(_ context.Context, conversationID string, limit int) ([]domain.ConversationTurn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.turns[conversationID]
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}

func (m *mockConversationStore) Clear(_ context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.turns, conversationID)
	return nil
}

// mockReranker implements driven.Reranker for testing.
type mockReranker struct {
	mu       sync.Mutex
	scores   map[string]float64
	scoreErr error
	trained  []string
}

func (m *mockReranker) Score(_ context.Context, _ string, doc *domain.Document) (float64, error) {
	if m.scoreErr != nil {
		return 0, m.scoreErr
	}
	return m.scores[doc.ID], nil
}

func (m *mockReranker) Train(_ context.Context, learnerID string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trained = append(m.trained, learnerID)
	return 0.1, nil
}

// --- Tests ---

func newTestResponder(index *mockIndex) (*ResponderService, *mockProgressStore, *mockConversationStore) {
	progress := newMockProgressStore()
	conversations := newMockConversationStore()
	svc := NewResponderService(index, progress, conversations, nil, MustLoadVocabulary())
	return svc, progress, conversations
}

func TestResponderService_GenerateResponse(t *testing.T) {
	ctx := context.Background()

	t.Run("empty query is invalid", func(t *testing.T) {
		svc, _, _ := newTestResponder(&mockIndex{})
		_, err := svc.GenerateResponse(ctx, "   ", driving.ResponseOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("answer carries excerpt and source marker", func(t *testing.T) {
		index := &mockIndex{docs: []*domain.Document{
			textDoc("aula1", "/m/aula1.txt", htmlLesson),
		}}
		svc, _, _ := newTestResponder(index)

		out, err := svc.GenerateResponse(ctx, "estrutura html", driving.ResponseOptions{Level: domain.LevelBeginner})
		require.NoError(t, err)
		assert.Contains(t, out, "Do material aula1.txt:")
		assert.Contains(t, out, "file_path: /m/aula1.txt")
		assert.Contains(t, out, "Para continuar explorando:")
		assert.Contains(t, out, "- Recursos recomendados para iniciantes")
	})

	t.Run("at most one primary and two complements", func(t *testing.T) {
		index := &mockIndex{docs: []*domain.Document{
			textDoc("a", "/m/a.txt", "HTML conteúdo principal da primeira aula."),
			textDoc("b", "/m/b.txt", "CSS conteúdo da segunda aula sobre estilos."),
			textDoc("c", "/m/c.txt", "JavaScript conteúdo da terceira aula."),
			textDoc("d", "/m/d.txt", "Banco de dados conteúdo da quarta aula."),
		}}
		svc, _, _ := newTestResponder(index)

		out, err := svc.GenerateResponse(ctx, "html css javascript", driving.ResponseOptions{})
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(out, "Conteúdo complementar"))
		assert.NotContains(t, out, "quarta aula")
	})

	t.Run("preferred format reorders candidates", func(t *testing.T) {
		video := &domain.Document{
			ID: "v", Content: "Transcrição da aula de HTML em vídeo.",
			DocType:  domain.DocTypeVideo,
			Metadata: map[string]any{domain.MetaSource: "/m/aula.mp4", domain.MetaDuration: 90.0},
		}
		index := &mockIndex{docs: []*domain.Document{
			textDoc("t", "/m/aula.txt", "Texto da aula de HTML."),
			video,
		}}
		svc, _, _ := newTestResponder(index)

		out, err := svc.GenerateResponse(ctx, "html", driving.ResponseOptions{PreferredFormat: domain.FormatVideo})
		require.NoError(t, err)
		assert.Contains(t, out, "Do vídeo aula.mp4")
	})

	t.Run("fallback retrieval marks the answer approximate", func(t *testing.T) {
		index := &mockIndex{byQuery: map[string][]*domain.Document{
			"HTML5 básico": {textDoc("a", "/m/a.txt", "HTML5 é a base da web.")},
		}}
		svc, _, _ := newTestResponder(index)

		out, err := svc.GenerateResponse(ctx, "assunto inexistente", driving.ResponseOptions{})
		require.NoError(t, err)
		assert.Contains(t, out, "conteúdo próximo")
	})

	t.Run("nothing indexed yields not-found echoing the query", func(t *testing.T) {
		svc, _, _ := newTestResponder(&mockIndex{})
		out, err := svc.GenerateResponse(ctx, "física quântica", driving.ResponseOptions{})
		require.NoError(t, err)
		assert.Contains(t, out, `"física quântica"`)
		assert.Contains(t, out, "Não encontrei conteúdo")
	})

	t.Run("search errors degrade instead of failing", func(t *testing.T) {
		svc, _, _ := newTestResponder(&mockIndex{searchErr: errors.New("backend down")})
		out, err := svc.GenerateResponse(ctx, "html", driving.ResponseOptions{})
		require.NoError(t, err)
		assert.Contains(t, out, "Não encontrei conteúdo")
	})

	t.Run("exchange is recorded for known users", func(t *testing.T) {
		index := &mockIndex{docs: []*domain.Document{textDoc("a", "/m/a.txt", "HTML básico.")}}
		svc, progress, conversations := newTestResponder(index)

		_, err := svc.GenerateResponse(ctx, "html", driving.ResponseOptions{UserID: "alice"})
		require.NoError(t, err)

		p, err := progress.Get(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, p.Interactions, 1)
		assert.Equal(t, "html", p.Interactions[0].Query)
		assert.NotEmpty(t, p.Interactions[0].ID)

		turns, err := conversations.Recent(ctx, "alice", 10)
		require.NoError(t, err)
		require.Len(t, turns, 2)
		assert.Equal(t, domain.RoleUser, turns[0].Role)
		assert.Equal(t, domain.RoleAssistant, turns[1].Role)
	})

	t.Run("second question continues the conversation", func(t *testing.T) {
		index := &mockIndex{docs: []*domain.Document{textDoc("a", "/m/a.txt", "HTML básico.")}}
		svc, _, _ := newTestResponder(index)

		_, err := svc.GenerateResponse(ctx, "html", driving.ResponseOptions{UserID: "alice"})
		require.NoError(t, err)
		out, err := svc.GenerateResponse(ctx, "css", driving.ResponseOptions{UserID: "alice"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "Continuando nossa conversa:"))
		assert.Contains(t, out, "Usuário: html")
		assert.Contains(t, out, "Assistente: ")
	})

	t.Run("direct hits skip the intro", func(t *testing.T) {
		index := &mockIndex{docs: []*domain.Document{textDoc("a", "/m/a.txt", "HTML básico.")}}
		svc, _, _ := newTestResponder(index)

		out, err := svc.GenerateResponse(ctx, "html", driving.ResponseOptions{})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "Do material a.txt:"))
	})

	t.Run("loose hits keep the intro", func(t *testing.T) {
		index := &mockIndex{docs: []*domain.Document{textDoc("a", "/m/a.txt", "HTML básico.")}}
		svc, _, _ := newTestResponder(index)

		out, err := svc.GenerateResponse(ctx, "linguagens de marcação", driving.ResponseOptions{})
		require.NoError(t, err)
		assert.False(t, strings.HasPrefix(out, "Do material a.txt:"))
		assert.Contains(t, out, "Do material a.txt:")
	})

	t.Run("anonymous queries leave no trace", func(t *testing.T) {
		index := &mockIndex{docs: []*domain.Document{textDoc("a", "/m/a.txt", "HTML básico.")}}
		svc, progress, conversations := newTestResponder(index)

		_, err := svc.GenerateResponse(ctx, "html", driving.ResponseOptions{})
		require.NoError(t, err)
		assert.Empty(t, progress.records)
		assert.Empty(t, conversations.turns)
	})

	t.Run("weak topic note for struggling learners", func(t *testing.T) {
		index := &mockIndex{docs: []*domain.Document{textDoc("a", "/m/a.txt", "JavaScript básico.")}}
		svc, progress, _ := newTestResponder(index)

		record := domain.NewUserProgress("bob")
		record.Profile.Weaknesses = []string{"javascript"}
		require.NoError(t, progress.Save(ctx, record))

		out, err := svc.GenerateResponse(ctx, "javascript", driving.ResponseOptions{UserID: "bob"})
		require.NoError(t, err)
		assert.Contains(t, out, `"javascript"`)
		assert.Contains(t, out, "Revise os fundamentos")
	})
}

func TestResponderService_Rerank(t *testing.T) {
	ctx := context.Background()
	docs := []*domain.Document{
		textDoc("a", "/m/a.txt", "Primeiro documento sobre HTML."),
		textDoc("b", "/m/b.txt", "Segundo documento sobre HTML e CSS."),
	}

	t.Run("scores reorder candidates", func(t *testing.T) {
		index := &mockIndex{docs: docs}
		reranker := &mockReranker{scores: map[string]float64{"a": 0.1, "b": 0.9}}
		svc := NewResponderService(index, newMockProgressStore(), newMockConversationStore(), reranker, MustLoadVocabulary())

		out, err := svc.GenerateResponse(ctx, "html", driving.ResponseOptions{UserID: "alice"})
		require.NoError(t, err)
		assert.Contains(t, out, "Do material b.txt:")
	})

	t.Run("scoring failure keeps native order", func(t *testing.T) {
		index := &mockIndex{docs: docs}
		reranker := &mockReranker{scoreErr: errors.New("model missing")}
		svc := NewResponderService(index, newMockProgressStore(), newMockConversationStore(), reranker, MustLoadVocabulary())

		out, err := svc.GenerateResponse(ctx, "html", driving.ResponseOptions{UserID: "alice"})
		require.NoError(t, err)
		assert.Contains(t, out, "Do material a.txt:")
	})

	t.Run("anonymous users skip reranking", func(t *testing.T) {
		index := &mockIndex{docs: docs}
		reranker := &mockReranker{scores: map[string]float64{"a": 0.1, "b": 0.9}}
		svc := NewResponderService(index, newMockProgressStore(), newMockConversationStore(), reranker, MustLoadVocabulary())

		out, err := svc.GenerateResponse(ctx, "html", driving.ResponseOptions{})
		require.NoError(t, err)
		assert.Contains(t, out, "Do material a.txt:")
	})
}

func TestResponderService_SuggestRelated(t *testing.T) {
	ctx := context.Background()

	t.Run("indexed content becomes suggestions", func(t *testing.T) {
		index := &mockIndex{docs: []*domain.Document{
			textDoc("a", "/m/a.txt", "HTML5 e suas tags semânticas."),
			textDoc("b", "/m/b.txt", "CSS e seletores."),
		}}
		svc, _, _ := newTestResponder(index)

		out, err := svc.SuggestRelated(ctx, "html", domain.LevelBeginner, 2)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "a", out[0].ID)
		assert.Equal(t, "/m/a.txt", out[0].Source)
		assert.NotEmpty(t, out[0].Preview)
	})

	t.Run("fallback topics when index is empty", func(t *testing.T) {
		svc, _, _ := newTestResponder(&mockIndex{})
		out, err := svc.SuggestRelated(ctx, "html", domain.LevelBeginner, 3)
		require.NoError(t, err)
		require.Len(t, out, 3)
		for _, s := range out {
			assert.Empty(t, s.ID)
			assert.NotEmpty(t, s.Title)
		}
	})

	t.Run("empty query is invalid", func(t *testing.T) {
		svc, _, _ := newTestResponder(&mockIndex{})
		_, err := svc.SuggestRelated(ctx, "", domain.LevelBeginner, 3)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestResponderService_RecordFeedback(t *testing.T) {
	ctx := context.Background()

	t.Run("feedback attaches to the matching interaction", func(t *testing.T) {
		index := &mockIndex{docs: []*domain.Document{textDoc("a", "/m/a.txt", "HTML básico.")}}
		svc, progress, _ := newTestResponder(index)

		_, err := svc.GenerateResponse(ctx, "html", driving.ResponseOptions{UserID: "alice"})
		require.NoError(t, err)

		require.NoError(t, svc.RecordFeedback(ctx, "alice", "html", "", "muito bom, ajudou"))

		p, err := progress.Get(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, p.Interactions, 1)
		assert.Equal(t, "muito bom, ajudou", p.Interactions[0].Feedback)
	})

	t.Run("unknown exchange creates a feedback record", func(t *testing.T) {
		svc, progress, _ := newTestResponder(&mockIndex{})

		require.NoError(t, svc.RecordFeedback(ctx, "bob", "css", "resposta", "confuso"))

		p, err := progress.Get(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, p.Interactions, 1)
		assert.Equal(t, "confuso", p.Interactions[0].Feedback)
		assert.False(t, p.Interactions[0].Timestamp.IsZero())
	})

	t.Run("feedback schedules reranker training", func(t *testing.T) {
		reranker := &mockReranker{}
		svc := NewResponderService(&mockIndex{}, newMockProgressStore(), newMockConversationStore(), reranker, MustLoadVocabulary())

		require.NoError(t, svc.RecordFeedback(ctx, "alice", "html", "", "bom"))

		assert.Eventually(t, func() bool {
			reranker.mu.Lock()
			defer reranker.mu.Unlock()
			return len(reranker.trained) == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("missing user or feedback is invalid", func(t *testing.T) {
		svc, _, _ := newTestResponder(&mockIndex{})
		assert.ErrorIs(t, svc.RecordFeedback(ctx, "", "q", "r", "bom"), domain.ErrInvalidInput)
		assert.ErrorIs(t, svc.RecordFeedback(ctx, "alice", "q", "r", "  "), domain.ErrInvalidInput)
	})
}
