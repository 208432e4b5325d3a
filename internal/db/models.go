package db

import (
	"time"

	"github.com/google/uuid"
)

// Session is the persisted settings of one discovery session.
type Session struct {
	ID                  uuid.UUID
	Name                string
	Category            string // empty until a genre pool is chosen
	FreshInjectionRatio float64
	Strategy            string
	AvoidLiked          bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// FilterRecord is one entry of a session's filter queue.
type FilterRecord struct {
	SessionID        uuid.UUID
	Position         int
	FilterID         int
	ApplicationIndex int
	AppliedAt        time.Time
}

// Like is an item a session marked as liked.
type Like struct {
	SessionID uuid.UUID
	ItemID    string
	LikedAt   time.Time
}
