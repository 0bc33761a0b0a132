package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles user database operations.
type UserRepository struct {
	pool *pgxpool.Pool
}

// Upsert creates or updates a user keyed by Spotify ID. Concurrent upserts
// for the same ID resolve last-writer-wins at the database level.
func (r *UserRepository) Upsert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (spotify_id, display_name, refresh_token, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (spotify_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			refresh_token = EXCLUDED.refresh_token,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		user.SpotifyID,
		user.DisplayName,
		user.RefreshToken,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// Get retrieves a user by Spotify ID.
func (r *UserRepository) Get(ctx context.Context, spotifyID string) (*User, error) {
	query := `
		SELECT spotify_id, display_name, refresh_token, created_at, updated_at
		FROM users
		WHERE spotify_id = $1
	`
	var user User
	err := r.pool.QueryRow(ctx, query, spotifyID).Scan(
		&user.SpotifyID,
		&user.DisplayName,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

// SearchByName finds users whose display name contains the query,
// excluding the searching user. Backs the friend search endpoint.
func (r *UserRepository) SearchByName(ctx context.Context, query, excludeID string, limit int) ([]User, error) {
	if limit <= 0 {
		limit = 10
	}

	sql := `
		SELECT spotify_id, display_name, created_at, updated_at
		FROM users
		WHERE display_name ILIKE '%' || $1 || '%' AND spotify_id <> $2
		ORDER BY display_name
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, sql, query, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.SpotifyID, &user.DisplayName, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}
	return users, nil
}
