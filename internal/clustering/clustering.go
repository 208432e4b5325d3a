// Package clustering implements mood-based clustering of catalog items using audio features.
package clustering

import "github.com/justestif/go-vibe-discovery/internal/catalog"

// Mood is a group of items with a similar vibe.
type Mood struct {
	Name     string             // Descriptive name: "Upbeat Party (Acoustic)"
	Items    []*catalog.Item    // Items in this mood
	Centroid map[string]float64 // Average feature values for this cluster
}

// Len returns the number of items in the mood.
func (m Mood) Len() int {
	return len(m.Items)
}

// Category returns the display category of the mood's centroid.
func (m Mood) Category() MoodCategory {
	return GetMoodCategory(m.Centroid)
}
