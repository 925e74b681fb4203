package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore(t *testing.T) {
	store := newTestStore(t)
	assert.NotEmpty(t, store.Path())

	t.Run("reopening is idempotent", func(t *testing.T) {
		dir := t.TempDir()
		first, err := NewStore(dir)
		require.NoError(t, err)
		require.NoError(t, first.Close())

		second, err := NewStore(dir)
		require.NoError(t, err)
		assert.NoError(t, second.Close())
	})
}

func TestProgressStore_AppendAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t).ProgressStore()

	t.Run("unknown learner", func(t *testing.T) {
		_, err := store.Get(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("append creates with defaults", func(t *testing.T) {
		ts := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
		err := store.AppendInteraction(ctx, "alice", domain.UserInteraction{
			ID: "i1", Query: "o que é html", Response: "resposta", Timestamp: ts,
		})
		require.NoError(t, err)

		progress, err := store.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, domain.LevelIntermediate, progress.Profile.Level)
		assert.Equal(t, domain.FormatText, progress.Profile.PreferredFormat)
		require.Len(t, progress.Interactions, 1)
		assert.Equal(t, "o que é html", progress.Interactions[0].Query)
		assert.True(t, progress.Interactions[0].Timestamp.Equal(ts))
	})

	t.Run("interactions come back in timestamp order", func(t *testing.T) {
		base := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)
		require.NoError(t, store.AppendInteraction(ctx, "bob", domain.UserInteraction{
			ID: "b2", Query: "segunda", Timestamp: base.Add(time.Hour),
		}))
		require.NoError(t, store.AppendInteraction(ctx, "bob", domain.UserInteraction{
			ID: "b1", Query: "primeira", Timestamp: base,
		}))

		progress, err := store.Get(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, progress.Interactions, 2)
		assert.Equal(t, "primeira", progress.Interactions[0].Query)
	})

	t.Run("empty user id is invalid", func(t *testing.T) {
		err := store.AppendInteraction(ctx, "", domain.UserInteraction{ID: "x"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestProgressStore_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t).ProgressStore()

	record := domain.NewUserProgress("alice")
	record.Profile.Level = domain.LevelAdvanced
	record.Profile.PreferredFormat = domain.FormatVideo
	record.Profile.Interests = []string{"web"}
	record.Profile.Strengths = []string{"html"}
	record.Profile.Weaknesses = []string{"javascript", "css"}
	record.AddInteraction(domain.UserInteraction{
		ID: "i1", Query: "html", Feedback: "bom",
		Timestamp: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	})

	require.NoError(t, store.Save(ctx, record))

	got, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.LevelAdvanced, got.Profile.Level)
	assert.Equal(t, domain.FormatVideo, got.Profile.PreferredFormat)
	assert.Equal(t, []string{"javascript", "css"}, got.Profile.Weaknesses)
	require.Len(t, got.Interactions, 1)
	assert.Equal(t, "bom", got.Interactions[0].Feedback)

	t.Run("save replaces the history", func(t *testing.T) {
		record.Interactions = nil
		record.AddInteraction(domain.UserInteraction{
			ID: "i2", Query: "css", Timestamp: time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC),
		})
		require.NoError(t, store.Save(ctx, record))

		got, err := store.Get(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, got.Interactions, 1)
		assert.Equal(t, "i2", got.Interactions[0].ID)
	})
}

func TestProgressStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t).ProgressStore()

	require.NoError(t, store.AppendInteraction(ctx, "alice", domain.UserInteraction{ID: "i1", Query: "html"}))
	require.NoError(t, store.Delete(ctx, "alice"))

	_, err := store.Get(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "alice"), domain.ErrNotFound)
}
