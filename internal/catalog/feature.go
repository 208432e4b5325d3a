// Package catalog holds the immutable item table the discovery engine draws from.
package catalog

// Feature identifies one audio feature column of an item.
type Feature int

// Audio features. The first five are the primary features used by the
// directional filters and the selector; the rest are skewed features only
// touched by progressive filters.
const (
	Danceability Feature = iota
	Energy
	Speechiness
	Valence
	Tempo
	Acousticness
	Instrumentalness
	Liveness
)

// NumFeatures is the number of audio features carried by every item.
const NumFeatures = 8

// Features holds one value per Feature, indexed by the Feature constant.
type Features [NumFeatures]float64

var featureNames = [NumFeatures]string{
	"danceability",
	"energy",
	"speechiness",
	"valence",
	"tempo",
	"acousticness",
	"instrumentalness",
	"liveness",
}

// PrimaryFeatures are the features that pool averages and radius envelopes are computed over.
var PrimaryFeatures = []Feature{Danceability, Energy, Speechiness, Valence, Tempo}

// SkewedFeatures are bimodal features narrowed by absolute thresholds.
var SkewedFeatures = []Feature{Acousticness, Instrumentalness, Liveness}

// AllFeatures lists every feature in column order.
var AllFeatures = []Feature{
	Danceability, Energy, Speechiness, Valence, Tempo,
	Acousticness, Instrumentalness, Liveness,
}

// String returns the dataset column name of the feature.
func (f Feature) String() string {
	if !f.Valid() {
		return "unknown"
	}
	return featureNames[f]
}

// Valid reports whether f names a known feature.
func (f Feature) Valid() bool {
	return f >= 0 && int(f) < NumFeatures
}

// Primary reports whether f is one of the five primary features.
func (f Feature) Primary() bool {
	return f >= Danceability && f <= Tempo
}

// UnitScaled reports whether the feature lives in [0,1]. Tempo is in BPM.
func (f Feature) UnitScaled() bool {
	return f.Valid() && f != Tempo
}

// ParseFeature resolves a column name to a Feature.
func ParseFeature(name string) (Feature, bool) {
	for i, n := range featureNames {
		if n == name {
			return Feature(i), true
		}
	}
	return 0, false
}

// Map returns the features as a name-keyed map, for display.
func (fs Features) Map() map[string]float64 {
	m := make(map[string]float64, NumFeatures)
	for i, v := range fs {
		m[featureNames[i]] = v
	}
	return m
}
