package analytics

import (
	"sort"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/vasudev124/musicmind/internal/spotify"
)

// DefaultClusterCount is the number of mood clusters computed for the
// insights view.
const DefaultClusterCount = 3

// TrackFeature pairs a track with its audio features. Feature may be nil
// when the provider has no analysis for the track.
type TrackFeature struct {
	Track   spotify.Track
	Feature *spotify.AudioFeature
}

// MoodCluster is a group of tracks with similar audio characteristics.
type MoodCluster struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	TrackCount  int                `json:"trackCount"`
	Tracks      []spotify.Track    `json:"tracks"`
	Centroid    map[string]float64 `json:"centroid"`
}

// featureNames defines the audio features used for clustering; order matches
// the coordinate vector.
var featureNames = []string{"energy", "valence", "danceability", "acousticness"}

// trackObservation wraps a TrackFeature to satisfy clusters.Observation.
type trackObservation struct {
	track  spotify.Track
	coords clusters.Coordinates
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// ClusterMoods groups tracks by audio-feature similarity using k-means and
// names each cluster after its mood quadrant. Tracks without features are
// counted as outliers. With fewer analyzable tracks than clusters, or when
// partitioning fails, everything is an outlier and no clusters are returned.
func ClusterMoods(items []TrackFeature, k int) ([]MoodCluster, int) {
	if k <= 0 {
		k = DefaultClusterCount
	}

	var obs clusters.Observations
	outliers := 0
	for _, item := range items {
		if item.Feature == nil {
			outliers++
			continue
		}
		obs = append(obs, trackObservation{
			track: item.Track,
			coords: clusters.Coordinates{
				item.Feature.Energy,
				item.Feature.Valence,
				item.Feature.Danceability,
				item.Feature.Acousticness,
			},
		})
	}

	if len(obs) < k {
		return nil, outliers + len(obs)
	}

	km := kmeans.New()
	result, err := km.Partition(obs, k)
	if err != nil {
		return nil, outliers + len(obs)
	}

	moodClusters := make([]MoodCluster, 0, len(result))
	for _, cluster := range result {
		var tracks []spotify.Track
		for _, o := range cluster.Observations {
			if to, ok := o.(trackObservation); ok {
				tracks = append(tracks, to.track)
			}
		}
		if len(tracks) == 0 {
			continue
		}

		centroid := make(map[string]float64, len(featureNames))
		for i, name := range featureNames {
			centroid[name] = cluster.Center[i]
		}

		moodClusters = append(moodClusters, MoodCluster{
			Name:        moodName(centroid),
			Description: moodDescription(centroid),
			TrackCount:  len(tracks),
			Tracks:      tracks,
			Centroid:    centroid,
		})
	}

	// Largest clusters first.
	sort.SliceStable(moodClusters, func(i, j int) bool {
		return moodClusters[i].TrackCount > moodClusters[j].TrackCount
	})

	return moodClusters, outliers
}

// moodName names a centroid using a 2x2 energy/valence quadrant, with an
// acoustic modifier when acousticness dominates.
func moodName(centroid map[string]float64) string {
	highEnergy := centroid["energy"] > 0.6
	highValence := centroid["valence"] > 0.5

	var name string
	switch {
	case highEnergy && highValence:
		name = "Upbeat Party"
	case highEnergy && !highValence:
		name = "Intense & Dark"
	case !highEnergy && highValence:
		name = "Chill & Happy"
	default:
		name = "Reflective & Melancholy"
	}

	if centroid["acousticness"] > 0.6 {
		return name + " (Acoustic)"
	}
	return name
}

func moodDescription(centroid map[string]float64) string {
	highEnergy := centroid["energy"] > 0.6
	highValence := centroid["valence"] > 0.5

	switch {
	case highEnergy && highValence:
		return "High-energy, positive vibes"
	case highEnergy && !highValence:
		return "Driving energy with darker tones"
	case !highEnergy && highValence:
		return "Relaxed and uplifting"
	default:
		return "Contemplative and introspective"
	}
}
