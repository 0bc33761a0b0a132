package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vasudev124/musicmind/internal/analytics"
)

// AnalyticsRepository handles analytics snapshot operations. Snapshots are
// append-only: there are no update or delete paths.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

// Save inserts a new analytics snapshot for a user.
func (r *AnalyticsRepository) Save(ctx context.Context, userID string, topGenres []analytics.GenreCount, moodScore int) (*AnalyticsSnapshot, error) {
	snapshot := &AnalyticsSnapshot{
		ID:        uuid.New(),
		UserID:    userID,
		TopGenres: topGenres,
		MoodScore: moodScore,
	}

	query := `
		INSERT INTO analytics (id, user_id, top_genres, mood_score, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		snapshot.ID,
		snapshot.UserID,
		snapshot.TopGenres,
		snapshot.MoodScore,
	).Scan(&snapshot.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting analytics snapshot: %w", err)
	}
	return snapshot, nil
}

// Latest retrieves the most recent snapshot for a user.
func (r *AnalyticsRepository) Latest(ctx context.Context, userID string) (*AnalyticsSnapshot, error) {
	query := `
		SELECT id, user_id, top_genres, mood_score, created_at
		FROM analytics
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var snapshot AnalyticsSnapshot
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&snapshot.ID,
		&snapshot.UserID,
		&snapshot.TopGenres,
		&snapshot.MoodScore,
		&snapshot.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
	return &snapshot, nil
}

// History retrieves snapshots for a user, newest first.
func (r *AnalyticsRepository) History(ctx context.Context, userID string, since time.Time, limit int) ([]AnalyticsSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, top_genres, mood_score, created_at
		FROM analytics
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot history: %w", err)
	}
	defer rows.Close()

	var snapshots []AnalyticsSnapshot
	for rows.Next() {
		var s AnalyticsSnapshot
		if err := rows.Scan(&s.ID, &s.UserID, &s.TopGenres, &s.MoodScore, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot rows: %w", err)
	}
	return snapshots, nil
}
