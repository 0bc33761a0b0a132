// Package analytics implements the pure computations behind the dashboard:
// genre ranking, the mood score, and mood clustering of top tracks. Nothing
// in this package performs I/O.
package analytics

import (
	"sort"

	"github.com/vasudev124/musicmind/internal/spotify"
)

// topGenreCount caps how many genres the dashboard shows.
const topGenreCount = 5

// GenreCount is one entry in the ranked genre list.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// RankGenres counts every genre tag across the given artists and returns the
// top entries sorted by count descending. An artist may carry zero or many
// genres; all are counted. Ties keep first-seen order (stable sort), and the
// result is truncated to the top 5.
func RankGenres(artists []spotify.Artist) []GenreCount {
	counts := make(map[string]int)
	var order []string

	for _, artist := range artists {
		for _, genre := range artist.Genres {
			if _, seen := counts[genre]; !seen {
				order = append(order, genre)
			}
			counts[genre]++
		}
	}

	ranked := make([]GenreCount, len(order))
	for i, genre := range order {
		ranked[i] = GenreCount{Genre: genre, Count: counts[genre]}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > topGenreCount {
		ranked = ranked[:topGenreCount]
	}
	return ranked
}
