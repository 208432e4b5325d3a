package clustering

import (
	"cmp"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/go-vibe-discovery/internal/catalog"
	"github.com/justestif/go-vibe-discovery/internal/logging"
)

// MoodConfig holds mood-based clustering parameters.
type MoodConfig struct {
	NumClusters    int // Number of clusters to create (default: 3)
	MinClusterSize int // Minimum items per mood (smaller clusters become outliers)
}

// DefaultMoodConfig returns the recommended default configuration.
func DefaultMoodConfig() MoodConfig {
	return MoodConfig{
		NumClusters:    3,
		MinClusterSize: 3,
	}
}

// itemObservation wraps an Item to implement clusters.Observation.
type itemObservation struct {
	item   *catalog.Item
	coords clusters.Coordinates
}

func (o itemObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o itemObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// moodFeatures are the audio features used for clustering, in coordinate order.
var moodFeatures = []catalog.Feature{
	catalog.Energy,
	catalog.Valence,
	catalog.Danceability,
	catalog.Acousticness,
}

// DetectMoods groups items by audio feature similarity using k-means clustering.
// Returns moods, largest first, and the outlier items that don't fit into any mood.
func DetectMoods(items []*catalog.Item, cfg MoodConfig) ([]Mood, []*catalog.Item) {
	if len(items) == 0 {
		return nil, nil
	}

	if cfg.NumClusters <= 0 {
		cfg.NumClusters = DefaultMoodConfig().NumClusters
	}

	// Fewer items than clusters: everything is an outlier
	if len(items) < cfg.NumClusters {
		return nil, slices.Clone(items)
	}

	var obs clusters.Observations
	for _, it := range items {
		obs = append(obs, itemObservation{
			item:   it,
			coords: extractFeatures(it),
		})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, cfg.NumClusters)
	if err != nil {
		logging.Warn().Err(err).Int("items", len(items)).Msg("k-means clustering failed")
		return nil, slices.Clone(items)
	}

	var moods []Mood
	var outliers []*catalog.Item

	for _, cluster := range result {
		var members []*catalog.Item
		for _, o := range cluster.Observations {
			if ob, ok := o.(itemObservation); ok {
				members = append(members, ob.item)
			}
		}

		if len(members) == 0 {
			continue
		}
		if len(members) < cfg.MinClusterSize {
			outliers = append(outliers, members...)
			continue
		}

		centroid := make(map[string]float64, len(moodFeatures))
		for i, f := range moodFeatures {
			centroid[f.String()] = cluster.Center[i]
		}

		moods = append(moods, Mood{
			Name:     MoodName(centroid),
			Items:    members,
			Centroid: centroid,
		})
	}

	slices.SortStableFunc(moods, func(a, b Mood) int {
		return cmp.Compare(len(b.Items), len(a.Items)) // Descending
	})

	return moods, outliers
}

// extractFeatures extracts the clustering features of an item as a coordinate vector.
func extractFeatures(it *catalog.Item) clusters.Coordinates {
	coords := make(clusters.Coordinates, len(moodFeatures))
	for i, f := range moodFeatures {
		coords[i] = it.Features[f]
	}
	return coords
}
