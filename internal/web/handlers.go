package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/vasudev124/musicmind/internal/analytics"
	"github.com/vasudev124/musicmind/internal/auth"
	"github.com/vasudev124/musicmind/internal/cache"
	"github.com/vasudev124/musicmind/internal/db"
	"github.com/vasudev124/musicmind/internal/ml"
	"github.com/vasudev124/musicmind/internal/session"
	"github.com/vasudev124/musicmind/internal/spotify"
)

// Cache TTLs per resource.
const (
	profileCacheTTL   = 30 * time.Minute
	dashboardCacheTTL = 10 * time.Minute
	insightsCacheTTL  = 15 * time.Minute

	oauthStateCookie = "oauth_state"
	topSongsCount    = 20
	dashboardTracks  = 5
	snapshotTimeout  = 10 * time.Second

	historyWindow = 30 * 24 * time.Hour
	historyLimit  = 20
)

// OAuth is the slice of the authenticator the handlers use.
type OAuth interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// MusicAPI is the per-request Spotify surface the handlers consume.
type MusicAPI interface {
	Profile(ctx context.Context) (spotify.Profile, error)
	TopArtists(ctx context.Context) ([]spotify.Artist, error)
	TopTracks(ctx context.Context) ([]spotify.Track, error)
	AudioFeatures(ctx context.Context, ids []string) ([]*spotify.AudioFeature, error)
	SearchTracks(ctx context.Context, query string) ([]spotify.Track, error)
}

// MusicFactory builds a MusicAPI authorized with the session's token.
type MusicFactory func(ctx context.Context, sess session.Session) MusicAPI

// UserStore persists user records.
type UserStore interface {
	Upsert(ctx context.Context, user *db.User) error
	Get(ctx context.Context, spotifyID string) (*db.User, error)
	SearchByName(ctx context.Context, query, excludeID string, limit int) ([]db.User, error)
}

// SnapshotStore persists analytics snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, userID string, topGenres []analytics.GenreCount, moodScore int) (*db.AnalyticsSnapshot, error)
	Latest(ctx context.Context, userID string) (*db.AnalyticsSnapshot, error)
	History(ctx context.Context, userID string, since time.Time, limit int) ([]db.AnalyticsSnapshot, error)
}

// SongSearcher is the ML sidecar surface.
type SongSearcher interface {
	Search(ctx context.Context, query string) ([]ml.Song, error)
}

// HandlerDeps collects the injected dependencies for NewHandlers.
type HandlerDeps struct {
	OAuth       OAuth
	Codec       *session.Codec
	Music       MusicFactory
	Users       UserStore
	Snapshots   SnapshotStore
	Cache       cache.Store
	Search      SongSearcher
	FrontendURL string
	Logger      zerolog.Logger

	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	oauth       OAuth
	codec       *session.Codec
	music       MusicFactory
	users       UserStore
	snapshots   SnapshotStore
	cache       cache.Store
	search      SongSearcher
	frontendURL string
	logger      zerolog.Logger
	clock       func() time.Time
}

// NewHandlers creates a Handlers instance.
func NewHandlers(deps HandlerDeps) *Handlers {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	store := deps.Cache
	if store == nil {
		store = cache.Disabled{}
	}
	return &Handlers{
		oauth:       deps.OAuth,
		codec:       deps.Codec,
		music:       deps.Music,
		users:       deps.Users,
		snapshots:   deps.Snapshots,
		cache:       store,
		search:      deps.Search,
		frontendURL: deps.FrontendURL,
		logger:      deps.Logger.With().Str("component", "web").Logger(),
		clock:       clock,
	}
}

// Root reports the service banner (GET /).
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "MusicMind Backend API",
		"status":  "running",
	})
}

// Health reports liveness (GET /health).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Login starts the OAuth flow (GET /login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateState()
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, msgUpstreamFailed, err)
		return
	}

	// Keep the state in a short-lived cookie for validation on callback.
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})

	http.Redirect(w, r, h.oauth.AuthURL(state), http.StatusFound)
}

// Callback completes the OAuth flow (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil {
		h.authFailed(w, http.StatusBadRequest, "Missing state cookie")
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.authFailed(w, http.StatusBadRequest, "State mismatch")
		return
	}

	// Clear the state cookie; it is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		h.authFailed(w, http.StatusBadRequest, "Spotify authorization denied")
		return
	}

	token, err := h.oauth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Error().Err(err).Msg("code exchange failed")
		h.authFailed(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	sess := session.FromToken(token)

	profile, err := h.music(r.Context(), sess).Profile(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("profile fetch failed after login")
		h.authFailed(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	if err := h.users.Upsert(r.Context(), &db.User{
		SpotifyID:    profile.ID,
		DisplayName:  profile.DisplayName,
		RefreshToken: token.RefreshToken,
	}); err != nil {
		h.logger.Error().Err(err).Str("user", profile.ID).Msg("user upsert failed")
		h.authFailed(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	if err := h.codec.Encode(w, sess); err != nil {
		h.authFailed(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	http.Redirect(w, r, h.frontendURL+"/dashboard?login=success", http.StatusFound)
}

// Logout clears the session (GET /logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.codec.Clear(w)
	http.Redirect(w, r, h.frontendURL, http.StatusFound)
}

// LogoutAlias redirects the legacy /auth/logout path.
func (h *Handlers) LogoutAlias(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/logout", http.StatusFound)
}

// UserProfile returns the authenticated user's profile (GET /api/user/profile).
func (h *Handlers) UserProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := SessionFrom(ctx)

	profile, err := h.music(ctx, sess).Profile(ctx)
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, msgUpstreamFailed, err)
		return
	}

	key := cache.Key("profile", profile.ID)
	var cached spotify.Profile
	if cache.GetJSON(ctx, h.cache, key, &cached) {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	cache.SetJSON(ctx, h.cache, key, profile, profileCacheTTL)
	respondJSON(w, http.StatusOK, profile)
}

// DashboardResponse is the payload for GET /api/analytics/dashboard.
type DashboardResponse struct {
	TopGenres   []analytics.GenreCount `json:"topGenres"`
	MoodScore   int                    `json:"moodScore"`
	TopTracks   []spotify.Track        `json:"topTracks"`
	GeneratedAt time.Time              `json:"generatedAt"`
}

// Dashboard computes the analytics dashboard (GET /api/analytics/dashboard).
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := SessionFrom(ctx)
	music := h.music(ctx, sess)

	profile, err := music.Profile(ctx)
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, msgAnalyticsFailed, err)
		return
	}

	key := cache.Key("dashboard", profile.ID)
	var cached DashboardResponse
	if cache.GetJSON(ctx, h.cache, key, &cached) {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	// Top artists and top tracks are independent; fetch them concurrently.
	// Either failure aborts the aggregate.
	var (
		artists []spotify.Artist
		tracks  []spotify.Track
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		artists, err = music.TopArtists(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tracks, err = music.TopTracks(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, msgAnalyticsFailed, err)
		return
	}

	topGenres := analytics.RankGenres(artists)
	mood := h.moodFor(ctx, music, tracks)
	if mood.Degraded {
		h.logger.Warn().Str("reason", mood.Reason).Str("user", profile.ID).Msg("mood score degraded to neutral")
	}

	resp := DashboardResponse{
		TopGenres:   topGenres,
		MoodScore:   mood.Score,
		TopTracks:   tracks[:min(dashboardTracks, len(tracks))],
		GeneratedAt: h.now().UTC(),
	}

	// Persist the snapshot off the request path; a failed save must not
	// fail the dashboard.
	go h.saveSnapshot(profile.ID, topGenres, mood.Score)

	cache.SetJSON(ctx, h.cache, key, resp, dashboardCacheTTL)
	respondJSON(w, http.StatusOK, resp)
}

// moodFor fetches audio features for the tracks and computes the mood score,
// degrading to the neutral default when the optional call fails.
func (h *Handlers) moodFor(ctx context.Context, music MusicAPI, tracks []spotify.Track) analytics.MoodResult {
	if len(tracks) == 0 {
		return analytics.DegradedMood("no top tracks")
	}

	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}

	features, err := music.AudioFeatures(ctx, ids)
	if err != nil {
		return analytics.DegradedMood(fmt.Sprintf("audio features unavailable: %v", err))
	}
	return analytics.MoodFromFeatures(features)
}

func (h *Handlers) saveSnapshot(userID string, topGenres []analytics.GenreCount, moodScore int) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	if _, err := h.snapshots.Save(ctx, userID, topGenres, moodScore); err != nil {
		h.logger.Error().Err(err).Str("user", userID).Msg("snapshot save failed")
	}
}

// InsightsResponse is the payload for GET /api/analytics/insights.
type InsightsResponse struct {
	Clusters    []analytics.MoodCluster `json:"clusters"`
	Outliers    int                     `json:"outliers"`
	GeneratedAt time.Time               `json:"generatedAt"`
}

// Insights clusters the user's top tracks by mood (GET /api/analytics/insights).
func (h *Handlers) Insights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := SessionFrom(ctx)
	music := h.music(ctx, sess)

	profile, err := music.Profile(ctx)
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, msgAnalyticsFailed, err)
		return
	}

	key := cache.Key("insights", profile.ID)
	var cached InsightsResponse
	if cache.GetJSON(ctx, h.cache, key, &cached) {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	tracks, err := music.TopTracks(ctx)
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, msgAnalyticsFailed, err)
		return
	}

	items := make([]analytics.TrackFeature, len(tracks))
	for i, t := range tracks {
		items[i] = analytics.TrackFeature{Track: t}
	}

	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	if features, err := music.AudioFeatures(ctx, ids); err == nil {
		for i := range items {
			items[i].Feature = features[i]
		}
	}

	clusters, outliers := analytics.ClusterMoods(items, analytics.DefaultClusterCount)
	resp := InsightsResponse{
		Clusters:    clusters,
		Outliers:    outliers,
		GeneratedAt: h.now().UTC(),
	}

	cache.SetJSON(ctx, h.cache, key, resp, insightsCacheTTL)
	respondJSON(w, http.StatusOK, resp)
}

// TopSongs returns the user's current top tracks (GET /api/analytics/top-songs).
func (h *Handlers) TopSongs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := SessionFrom(ctx)

	tracks, err := h.music(ctx, sess).TopTracks(ctx)
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, msgUpstreamFailed, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"tracks": tracks[:min(topSongsCount, len(tracks))],
	})
}

// HistoryEntry is one stored dashboard computation in the history payload.
type HistoryEntry struct {
	MoodScore  int                    `json:"moodScore"`
	TopGenres  []analytics.GenreCount `json:"topGenres"`
	RecordedAt time.Time              `json:"recordedAt"`
}

// MoodHistory returns the user's recent analytics snapshots, newest first
// (GET /api/analytics/history).
func (h *Handlers) MoodHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := SessionFrom(ctx)

	profile, err := h.music(ctx, sess).Profile(ctx)
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, msgUpstreamFailed, err)
		return
	}

	snapshots, err := h.snapshots.History(ctx, profile.ID, h.now().Add(-historyWindow), historyLimit)
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, msgAnalyticsFailed, err)
		return
	}

	entries := make([]HistoryEntry, len(snapshots))
	for i, s := range snapshots {
		entries[i] = HistoryEntry{
			MoodScore:  s.MoodScore,
			TopGenres:  s.TopGenres,
			RecordedAt: s.CreatedAt,
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"snapshots": entries})
}

// Search runs the combined ML + Spotify song search (POST /api/search).
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := SessionFrom(ctx)

	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Query) == "" {
		respondError(w, h.logger, http.StatusBadRequest, msgQueryRequired, nil)
		return
	}
	query := strings.TrimSpace(body.Query)

	// Both result sources are optional enrichment; either may fail without
	// failing the request.
	var mlSongs []ml.Song
	if h.search != nil {
		songs, err := h.search.Search(ctx, query)
		if err != nil {
			if !errors.Is(err, ml.ErrUnavailable) {
				h.logger.Warn().Err(err).Msg("ml search failed")
			}
		} else {
			mlSongs = songs
		}
	}

	var spotifyTracks []spotify.Track
	if tracks, err := h.music(ctx, sess).SearchTracks(ctx, query); err != nil {
		h.logger.Warn().Err(err).Msg("spotify search failed")
	} else {
		spotifyTracks = tracks
	}

	respondJSON(w, http.StatusOK, mergeSearchResults(query, mlSongs, spotifyTracks))
}

// FriendSearch finds other users by display name (GET /friends/search?q=).
func (h *Handlers) FriendSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := SessionFrom(ctx)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, h.logger, http.StatusBadRequest, msgQueryRequired, nil)
		return
	}

	profile, err := h.music(ctx, sess).Profile(ctx)
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, msgUpstreamFailed, err)
		return
	}

	users, err := h.users.SearchByName(ctx, query, profile.ID, 10)
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, msgUpstreamFailed, err)
		return
	}

	results := make([]map[string]string, len(users))
	for i, u := range users {
		results[i] = map[string]string{
			"id":          u.SpotifyID,
			"displayName": u.DisplayName,
		}
	}
	respondJSON(w, http.StatusOK, results)
}

// RecommendGenerate queues a recommendation run (POST /api/recommend/generate).
// Generation itself is not implemented yet; the endpoint acknowledges the
// request so the frontend flow works end to end.
func (h *Handlers) RecommendGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := SessionFrom(ctx)

	profile, err := h.music(ctx, sess).Profile(ctx)
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, msgUpstreamFailed, err)
		return
	}

	// Generation runs against the stored account, so resolve it first.
	user, err := h.users.Get(ctx, profile.ID)
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, msgUpstreamFailed, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "pending",
		"userId":      user.SpotifyID,
		"displayName": user.DisplayName,
		"message":     "Recommendation generation queued",
		"requestedAt": h.now().UTC(),
	})
}

func (h *Handlers) authFailed(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>MusicMind</title></head>
<body><h1>%s</h1><p>Please return to <a href=%q>MusicMind</a> and try again.</p></body>
</html>`, msg, h.frontendURL)
}
