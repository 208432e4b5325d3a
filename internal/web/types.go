package web

import (
	"time"

	"github.com/justestif/go-vibe-discovery/internal/catalog"
	"github.com/justestif/go-vibe-discovery/internal/clustering"
	"github.com/justestif/go-vibe-discovery/internal/filters"
)

// CreateSessionRequest is the body of POST /api/sessions.
type CreateSessionRequest struct {
	Name string `json:"name" validate:"max=100"`
}

// SetGenreRequest is the body of POST /api/sessions/{id}/genre.
type SetGenreRequest struct {
	Category string `json:"category" validate:"required"`
}

// ApplyFilterRequest is the body of POST /api/sessions/{id}/filters.
type ApplyFilterRequest struct {
	Filter string `json:"filter" validate:"required"`
}

// UpdateConfigRequest is the body of PUT /api/sessions/{id}/config.
type UpdateConfigRequest struct {
	FreshInjectionRatio *float64 `json:"fresh_injection_ratio" validate:"omitempty,gte=0,lte=1"`
	Strategy            *string  `json:"strategy"`
	AvoidLiked          *bool    `json:"avoid_liked"`
}

// LikeRequest is the body of POST /api/sessions/{id}/likes.
type LikeRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

// CategoryResponse describes one category group.
type CategoryResponse struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
	Size int      `json:"size"`
}

// FilterResponse describes one filter.
type FilterResponse struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Feature     string `json:"feature"`
	Direction   string `json:"direction"`
	Progressive bool   `json:"progressive"`
}

func newFilterResponse(id filters.ID) FilterResponse {
	return FilterResponse{
		ID:          int(id),
		Name:        id.String(),
		Feature:     id.Feature().String(),
		Direction:   id.Direction().String(),
		Progressive: id.Progressive(),
	}
}

// StrategyResponse describes a selection strategy.
type StrategyResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// QueueEntryResponse is one entry of a session's filter queue.
type QueueEntryResponse struct {
	Filter           FilterResponse `json:"filter"`
	ApplicationIndex int            `json:"application_index"`
	AppliedAt        time.Time      `json:"applied_at"`
}

// ItemResponse is a catalog item.
type ItemResponse struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Artist   string             `json:"artist"`
	Album    string             `json:"album,omitempty"`
	Category string             `json:"category"`
	Features map[string]float64 `json:"features"`
	Liked    bool               `json:"liked"`
}

func newItemResponse(it *catalog.Item, liked bool) ItemResponse {
	return ItemResponse{
		ID:       it.ID,
		Name:     it.Name,
		Artist:   it.Artist,
		Album:    it.Album,
		Category: it.Category,
		Features: it.Features.Map(),
		Liked:    liked,
	}
}

// LikeResponse is a liked item.
type LikeResponse struct {
	ItemID  string        `json:"item_id"`
	LikedAt time.Time     `json:"liked_at"`
	Item    *ItemResponse `json:"item,omitempty"`
}

// MoodResponse is one mood group of the playback pool.
type MoodResponse struct {
	Name     string                  `json:"name"`
	Size     int                     `json:"size"`
	Category clustering.MoodCategory `json:"category"`
	Centroid map[string]float64      `json:"centroid"`
	ItemIDs  []string                `json:"item_ids"`
}

// MoodsResponse groups the playback pool by mood.
type MoodsResponse struct {
	Moods    []MoodResponse `json:"moods"`
	Outliers []string       `json:"outliers"`
}

func newMoodsResponse(moods []clustering.Mood, outliers []*catalog.Item) MoodsResponse {
	resp := MoodsResponse{
		Moods:    make([]MoodResponse, len(moods)),
		Outliers: itemIDs(outliers),
	}
	for i, m := range moods {
		resp.Moods[i] = MoodResponse{
			Name:     m.Name,
			Size:     m.Len(),
			Category: m.Category(),
			Centroid: m.Centroid,
			ItemIDs:  itemIDs(m.Items),
		}
	}
	return resp
}

func itemIDs(items []*catalog.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
