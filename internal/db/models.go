package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/vasudev124/musicmind/internal/analytics"
)

// User is a MusicMind account keyed by the Spotify user ID. Rows are created
// or overwritten on every successful login and never deleted.
type User struct {
	SpotifyID    string
	DisplayName  string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AnalyticsSnapshot is one dashboard computation for a user. Snapshots are
// append-only and immutable; history accumulates per user.
type AnalyticsSnapshot struct {
	ID        uuid.UUID
	UserID    string
	TopGenres []analytics.GenreCount
	MoodScore int
	CreatedAt time.Time
}
