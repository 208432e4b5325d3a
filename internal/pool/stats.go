package pool

import (
	"math"

	"github.com/justestif/go-vibe-discovery/internal/catalog"
	"github.com/justestif/go-vibe-discovery/internal/clustering"
)

// PoolStats summarises the manager's pools.
type PoolStats struct {
	Category       string             `json:"category"`
	TotalItems     int                `json:"total_items"`
	GenreSize      int                `json:"genre_pool_size"`
	PlaybackSize   int                `json:"playback_pool_size"`
	ReductionPct   float64            `json:"pool_reduction_pct"`
	FiltersApplied int                `json:"filters_applied"`
	ItemsShown     int                `json:"items_shown"`
	AvgFeatures    map[string]float64 `json:"avg_features"`
	Mood           string             `json:"mood,omitempty"`
}

// Stats reports pool sizes and the playback pool's primary feature averages.
// Tempo is rounded to 0.1 BPM, other averages to 0.001 and the reduction
// percentage to 0.1.
func (m *Manager) Stats() PoolStats {
	s := PoolStats{
		Category:       m.category,
		TotalItems:     m.catalog.Len(),
		GenreSize:      len(m.genre),
		PlaybackSize:   len(m.playback),
		FiltersApplied: len(m.queue),
		ItemsShown:     len(m.shown),
		AvgFeatures:    map[string]float64{},
	}
	if len(m.playback) == 0 {
		return s
	}

	if s.GenreSize > 0 {
		s.ReductionPct = round(float64(s.GenreSize-s.PlaybackSize)/float64(s.GenreSize)*100, 1)
	}

	avg := catalog.Averages(m.playback)
	for _, f := range catalog.PrimaryFeatures {
		places := 3
		if f == catalog.Tempo {
			places = 1
		}
		s.AvgFeatures[f.String()] = round(avg[f], places)
	}

	s.Mood = clustering.MoodName(map[string]float64{
		"energy":       avg[catalog.Energy],
		"valence":      avg[catalog.Valence],
		"acousticness": avg[catalog.Acousticness],
	})
	return s
}

// Moods groups the playback pool into k mood clusters.
func (m *Manager) Moods(k int) ([]clustering.Mood, []*catalog.Item) {
	cfg := clustering.DefaultMoodConfig()
	if k > 0 {
		cfg.NumClusters = k
	}
	return clustering.DetectMoods(m.playback, cfg)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
