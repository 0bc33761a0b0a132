package analytics

import (
	"math"

	"github.com/vasudev124/musicmind/internal/spotify"
)

// NeutralMood is the score reported when no usable audio features exist.
const NeutralMood = 50

// MoodResult carries a mood score plus an explicit degradation marker, so
// callers (and tests) can distinguish a computed 50 from a defaulted one.
type MoodResult struct {
	Score    int    `json:"score"`
	Degraded bool   `json:"degraded,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// MoodScore computes a 0-100 mood score from per-track audio features.
//
// Nil entries are skipped; the provider omits features for tracks it cannot
// analyze. With zero usable records the neutral default of 50 is returned.
// Otherwise the score is the average of the mean valence and mean energy
// (both fractions in [0, 1]) scaled to 100 and rounded to the nearest
// integer. The formula is deliberately simple and is a compatibility
// contract: downstream consumers compare historical snapshots produced by it.
func MoodScore(features []*spotify.AudioFeature) int {
	var totalValence, totalEnergy float64
	count := 0

	for _, f := range features {
		if f == nil {
			continue
		}
		totalValence += f.Valence
		totalEnergy += f.Energy
		count++
	}

	if count == 0 {
		return NeutralMood
	}

	avgValence := totalValence / float64(count)
	avgEnergy := totalEnergy / float64(count)
	return int(math.Round((avgValence + avgEnergy) / 2 * 100))
}

// MoodFromFeatures wraps MoodScore in a non-degraded result.
func MoodFromFeatures(features []*spotify.AudioFeature) MoodResult {
	return MoodResult{Score: MoodScore(features)}
}

// DegradedMood returns the neutral default with the degradation reason
// recorded. Used when the audio-features call fails: the dashboard still
// renders, it just reports a neutral mood.
func DegradedMood(reason string) MoodResult {
	return MoodResult{Score: NeutralMood, Degraded: true, Reason: reason}
}
