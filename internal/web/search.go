package web

import (
	"sort"
	"strings"

	"github.com/vasudev124/musicmind/internal/ml"
	"github.com/vasudev124/musicmind/internal/spotify"
)

// SearchSong is one entry in the combined search response.
type SearchSong struct {
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Score      float64 `json:"score,omitempty"`
	SpotifyURL string  `json:"spotifyUrl,omitempty"`
}

// SearchResponse is the payload for POST /api/search. Featured is the
// highest-scored ML hit (nil when the sidecar returned nothing), Results the
// remaining ML hits, and SpotifyFallback the catalog hits the ML service did
// not know about.
type SearchResponse struct {
	Query           string       `json:"query"`
	Featured        *SearchSong  `json:"featured"`
	Results         []SearchSong `json:"results"`
	SpotifyFallback []SearchSong `json:"spotifyFallback"`
}

// mergeSearchResults combines ML sidecar hits with Spotify catalog hits.
// ML hits are ranked by score descending and enriched with a Spotify URL
// when a catalog hit matches by case-insensitive title and artist.
func mergeSearchResults(query string, mlSongs []ml.Song, spotifyTracks []spotify.Track) SearchResponse {
	ranked := make([]ml.Song, len(mlSongs))
	copy(ranked, mlSongs)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	urlByKey := make(map[string]string, len(spotifyTracks))
	for _, t := range spotifyTracks {
		urlByKey[songKey(t.Name, t.Artist)] = t.SpotifyURL
	}

	resp := SearchResponse{
		Query:           query,
		Results:         []SearchSong{},
		SpotifyFallback: []SearchSong{},
	}

	mlKeys := make(map[string]bool, len(ranked))
	for i, song := range ranked {
		key := songKey(song.Title, song.Artist)
		mlKeys[key] = true

		entry := SearchSong{
			Title:      song.Title,
			Artist:     song.Artist,
			SpotifyURL: urlByKey[key],
		}
		if i == 0 {
			resp.Featured = &entry
			continue
		}
		entry.Score = song.Score
		resp.Results = append(resp.Results, entry)
	}

	for _, t := range spotifyTracks {
		if mlKeys[songKey(t.Name, t.Artist)] {
			continue
		}
		resp.SpotifyFallback = append(resp.SpotifyFallback, SearchSong{
			Title:      t.Name,
			Artist:     t.Artist,
			SpotifyURL: t.SpotifyURL,
		})
	}

	return resp
}

func songKey(title, artist string) string {
	return strings.ToLower(title) + "-" + strings.ToLower(artist)
}
