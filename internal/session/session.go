// Package session keeps one discovery engine per listener and persists
// enough of its state to rebuild it after a restart.
package session

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/justestif/go-vibe-discovery/internal/pool"
)

// Common errors.
var (
	ErrNotFound = errors.New("session not found")
)

// Like is an item the listener marked as liked.
type Like struct {
	ItemID  string    `json:"item_id"`
	LikedAt time.Time `json:"liked_at"`
}

// Session owns a pool.Manager and the listener's likes. Engine calls go
// through Do, which serialises them.
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time

	mu       sync.Mutex
	manager  *pool.Manager
	now      func() time.Time
	lastUsed time.Time

	// likesMu is separate from mu: the selector asks IsLiked while Do
	// holds mu.
	likesMu sync.RWMutex
	likes   []Like
	liked   map[string]struct{}
}

func newSession(id, name string, createdAt time.Time, now func() time.Time) *Session {
	return &Session{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt,
		now:       now,
		lastUsed:  now(),
		liked:     make(map[string]struct{}),
	}
}

// Do runs fn with exclusive access to the session's engine.
func (s *Session) Do(fn func(*pool.Manager) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.now()
	return fn(s.manager)
}

// Use is Do for operations that cannot fail.
func (s *Session) Use(fn func(*pool.Manager)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.now()
	fn(s.manager)
}

// inspect runs fn under the lock without counting as use.
func (s *Session) inspect(fn func(*pool.Manager)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.manager)
}

// LastUsed returns when Do was last entered.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Like marks itemID as liked. It reports false if it already was.
func (s *Session) Like(itemID string, at time.Time) bool {
	s.likesMu.Lock()
	defer s.likesMu.Unlock()
	if _, ok := s.liked[itemID]; ok {
		return false
	}
	s.liked[itemID] = struct{}{}
	s.likes = append(s.likes, Like{ItemID: itemID, LikedAt: at})
	return true
}

// Liked returns the likes in the order they were made.
func (s *Session) Liked() []Like {
	s.likesMu.RLock()
	defer s.likesMu.RUnlock()
	return slices.Clone(s.likes)
}

// IsLiked implements pool.LikedSet.
func (s *Session) IsLiked(itemID string) bool {
	s.likesMu.RLock()
	defer s.likesMu.RUnlock()
	_, ok := s.liked[itemID]
	return ok
}

// Info is a summary of a session for listings.
type Info struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	CreatedAt   time.Time   `json:"created_at"`
	Category    string      `json:"category,omitempty"`
	QueueLength int         `json:"queue_length"`
	PoolSize    int         `json:"pool_size"`
	Likes       int         `json:"likes"`
	Config      pool.Config `json:"config"`
}

// Info summarises the session.
func (s *Session) Info() Info {
	info := Info{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt}
	s.inspect(func(m *pool.Manager) {
		info.Category = m.Category()
		info.QueueLength = len(m.Queue())
		info.PoolSize = len(m.PlaybackPool())
		info.Config = m.Config()
	})
	info.Likes = len(s.Liked())
	return info
}

// Snapshot captures the persistable state.
func (s *Session) Snapshot() State {
	st := State{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
		Likes:     s.Liked(),
	}
	s.inspect(func(m *pool.Manager) {
		cfg := m.Config()
		st.Category = m.Category()
		st.FreshInjectionRatio = cfg.FreshInjectionRatio
		st.Strategy = cfg.Strategy
		st.AvoidLiked = cfg.AvoidLiked
		st.Filters = m.Queue()
	})
	return st
}

var _ pool.LikedSet = (*Session)(nil)
