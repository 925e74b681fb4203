package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
)

// progressStore implements driven.ProgressStore.
type progressStore struct {
	store *Store
}

var _ driven.ProgressStore = (*progressStore)(nil)

// Get loads the learner's profile and full interaction history.
func (s *progressStore) Get(ctx context.Context, userID string) (*domain.UserProgress, error) {
	var level, format, interests, strengths, weaknesses string
	row := s.store.db.QueryRowContext(ctx, `
		SELECT level, preferred_format, interests, strengths, weaknesses
		FROM users WHERE user_id = ?
	`, userID)
	if err := row.Scan(&level, &format, &interests, &strengths, &weaknesses); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	progress := &domain.UserProgress{
		UserID: userID,
		Profile: domain.UserProfile{
			Level:           domain.ParseLevel(level),
			PreferredFormat: domain.ParseFormat(format),
		},
	}
	lists := []struct {
		raw string
		dst *[]string
	}{
		{interests, &progress.Profile.Interests},
		{strengths, &progress.Profile.Strengths},
		{weaknesses, &progress.Profile.Weaknesses},
	}
	for _, l := range lists {
		if err := json.Unmarshal([]byte(l.raw), l.dst); err != nil {
			return nil, fmt.Errorf("unmarshalling profile lists: %w", err)
		}
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, query, response, feedback, timestamp
		FROM interactions WHERE user_id = ? ORDER BY timestamp
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("loading interactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var i domain.UserInteraction
		if err := rows.Scan(&i.ID, &i.Query, &i.Response, &i.Feedback, &i.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning interaction: %w", err)
		}
		progress.Interactions = append(progress.Interactions, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating interactions: %w", err)
	}
	return progress, nil
}

// Save replaces the full record: profile row plus interaction history.
func (s *progressStore) Save(ctx context.Context, progress *domain.UserProgress) error {
	if progress == nil || progress.UserID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertUser(ctx, tx, progress); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM interactions WHERE user_id = ?`, progress.UserID); err != nil {
		return fmt.Errorf("clearing interactions: %w", err)
	}
	for _, i := range progress.Interactions {
		if err := insertInteraction(ctx, tx, progress.UserID, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes the learner and, via cascade, their interactions.
func (s *progressStore) Delete(ctx context.Context, userID string) error {
	res, err := s.store.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendInteraction records one exchange, creating the user row with the
// default profile when the learner is unknown.
func (s *progressStore) AppendInteraction(ctx context.Context, userID string, interaction domain.UserInteraction) error {
	if userID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (user_id) VALUES (?)
		ON CONFLICT(user_id) DO NOTHING
	`, userID); err != nil {
		return fmt.Errorf("ensuring user: %w", err)
	}

	if err := insertInteraction(ctx, tx, userID, interaction); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertUser(ctx context.Context, tx *sql.Tx, progress *domain.UserProgress) error {
	interests, err := marshalList(progress.Profile.Interests)
	if err != nil {
		return err
	}
	strengths, err := marshalList(progress.Profile.Strengths)
	if err != nil {
		return err
	}
	weaknesses, err := marshalList(progress.Profile.Weaknesses)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (user_id, level, preferred_format, interests, strengths, weaknesses, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			level = excluded.level,
			preferred_format = excluded.preferred_format,
			interests = excluded.interests,
			strengths = excluded.strengths,
			weaknesses = excluded.weaknesses,
			updated_at = excluded.updated_at
	`, progress.UserID, string(progress.Profile.Level), string(progress.Profile.PreferredFormat),
		interests, strengths, weaknesses, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

func insertInteraction(ctx context.Context, tx *sql.Tx, userID string, i domain.UserInteraction) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO interactions (id, user_id, query, response, feedback, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, i.ID, userID, i.Query, i.Response, i.Feedback, i.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("inserting interaction: %w", err)
	}
	return nil
}

func marshalList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("marshalling list: %w", err)
	}
	return string(data), nil
}
