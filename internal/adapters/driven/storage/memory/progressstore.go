package memory

import (
	"context"
	"sync"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
)

// Ensure ProgressStore implements the interface.
var _ driven.ProgressStore = (*ProgressStore)(nil)

// ProgressStore keeps learner progress in memory. Records are copied on
// the way in and out so callers never share state with the store.
type ProgressStore struct {
	mu      sync.RWMutex
	records map[string]*domain.UserProgress
}

// NewProgressStore creates an empty store.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{records: make(map[string]*domain.UserProgress)}
}

// Get returns a copy of the learner's progress.
func (s *ProgressStore) Get(_ context.Context, userID string) (*domain.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyProgress(record), nil
}

// Save replaces the learner's record.
func (s *ProgressStore) Save(_ context.Context, progress *domain.UserProgress) error {
	if progress == nil || progress.UserID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[progress.UserID] = copyProgress(progress)
	return nil
}

// Delete removes the learner's record.
func (s *ProgressStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[userID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.records, userID)
	return nil
}

// AppendInteraction records one exchange, creating the record with the
// default profile for unknown learners.
func (s *ProgressStore) AppendInteraction(_ context.Context, userID string, interaction domain.UserInteraction) error {
	if userID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[userID]
	if !ok {
		record = domain.NewUserProgress(userID)
		s.records[userID] = record
	}
	record.AddInteraction(interaction)
	return nil
}

func copyProgress(p *domain.UserProgress) *domain.UserProgress {
	out := &domain.UserProgress{
		UserID:  p.UserID,
		Profile: p.Profile,
	}
	out.Profile.Interests = append([]string(nil), p.Profile.Interests...)
	out.Profile.Strengths = append([]string(nil), p.Profile.Strengths...)
	out.Profile.Weaknesses = append([]string(nil), p.Profile.Weaknesses...)
	out.Interactions = append([]domain.UserInteraction(nil), p.Interactions...)
	return out
}
