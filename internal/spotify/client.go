// Package spotify provides a thin wrapper around the Spotify Web API,
// exposing only the calls the analytics pipeline needs and mapping responses
// to local types.
package spotify

import (
	"context"
	"fmt"
	"net/http"

	api "github.com/zmb3/spotify/v2"
)

const (
	topItemsLimit       = 50
	searchLimit         = 5
	maxTracksPerRequest = 100 // audio-features batch cap per Spotify API limits
)

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api *api.Client
}

// New creates a Client from an authorized HTTP client.
func New(httpClient *http.Client) *Client {
	return &Client{api: api.New(httpClient)}
}

// Profile returns the current user's profile.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return Profile{}, fmt.Errorf("getting current user: %w", err)
	}
	return convertProfile(user), nil
}

// convertProfile maps a Spotify PrivateUser to the local Profile type. The
// follower count arrives as the library's Numeric (a defined int) and is
// converted to the wire type here.
func convertProfile(user *api.PrivateUser) Profile {
	p := Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
		Followers:   uint(user.Followers.Count),
	}
	if len(user.Images) > 0 {
		p.ImageURL = user.Images[0].URL
	}
	return p
}

// TopArtists returns the user's most-listened artists over the long term.
func (c *Client) TopArtists(ctx context.Context) ([]Artist, error) {
	page, err := c.api.CurrentUsersTopArtists(ctx, api.Limit(topItemsLimit), api.Timerange(api.LongTermRange))
	if err != nil {
		return nil, fmt.Errorf("fetching top artists: %w", err)
	}

	artists := make([]Artist, len(page.Artists))
	for i, a := range page.Artists {
		artists[i] = Artist{
			ID:     a.ID.String(),
			Name:   a.Name,
			Genres: a.Genres,
		}
	}
	return artists, nil
}

// TopTracks returns the user's most-played tracks over the short term.
func (c *Client) TopTracks(ctx context.Context) ([]Track, error) {
	page, err := c.api.CurrentUsersTopTracks(ctx, api.Limit(topItemsLimit), api.Timerange(api.ShortTermRange))
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks: %w", err)
	}

	tracks := make([]Track, len(page.Tracks))
	for i, t := range page.Tracks {
		tracks[i] = convertTrack(t)
	}
	return tracks, nil
}

// AudioFeatures returns audio features for the given track IDs, batched per
// API limits. The result is index-aligned with ids; entries the provider
// cannot analyze are nil and must be skipped by callers.
func (c *Client) AudioFeatures(ctx context.Context, ids []string) ([]*AudioFeature, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	apiIDs := make([]api.ID, len(ids))
	indexByID := make(map[string]int, len(ids))
	for i, id := range ids {
		apiIDs[i] = api.ID(id)
		indexByID[id] = i
	}

	features := make([]*AudioFeature, len(ids))
	for i := 0; i < len(apiIDs); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(apiIDs))

		batch, err := c.api.GetAudioFeatures(ctx, apiIDs[i:end]...)
		if err != nil {
			return nil, fmt.Errorf("fetching audio features (batch %d-%d): %w", i+1, end, err)
		}

		for _, f := range batch {
			if f == nil {
				continue
			}
			idx, ok := indexByID[f.ID.String()]
			if !ok {
				continue
			}
			features[idx] = &AudioFeature{
				Valence:      float64(f.Valence),
				Energy:       float64(f.Energy),
				Danceability: float64(f.Danceability),
				Acousticness: float64(f.Acousticness),
			}
		}
	}
	return features, nil
}

// SearchTracks searches the Spotify catalog for tracks matching the query.
func (c *Client) SearchTracks(ctx context.Context, query string) ([]Track, error) {
	result, err := c.api.Search(ctx, query, api.SearchTypeTrack, api.Limit(searchLimit))
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}
	if result.Tracks == nil {
		return nil, nil
	}

	tracks := make([]Track, len(result.Tracks.Tracks))
	for i, t := range result.Tracks.Tracks {
		tracks[i] = convertTrack(t)
	}
	return tracks, nil
}

// convertTrack maps a Spotify FullTrack to the local Track type.
func convertTrack(t api.FullTrack) Track {
	track := Track{
		ID:         t.ID.String(),
		Name:       t.Name,
		PreviewURL: t.PreviewURL,
		SpotifyURL: t.ExternalURLs["spotify"],
	}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	if len(t.Album.Images) > 0 {
		track.ImageURL = t.Album.Images[0].URL
	}
	return track
}
