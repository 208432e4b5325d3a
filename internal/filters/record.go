package filters

import (
	"time"

	"github.com/justestif/go-vibe-discovery/internal/catalog"
)

// Record is one entry of a filter queue.
type Record struct {
	ID               ID        `json:"filter_id"`
	ApplicationIndex int       `json:"application_index"`
	AppliedAt        time.Time `json:"applied_at"`
}

// Feature returns the feature the record narrows.
func (r Record) Feature() catalog.Feature {
	return r.ID.Feature()
}

// Direction returns the record's direction.
func (r Record) Direction() Direction {
	return r.ID.Direction()
}

// CountOf returns how many records in queue carry id.
func CountOf(queue []Record, id ID) int {
	n := 0
	for _, r := range queue {
		if r.ID == id {
			n++
		}
	}
	return n
}

// Push adds filter id to queue with contradiction cancellation. When
// queue holds the opposite filter, every such record is removed and the
// new filter is dropped; cancelled reports that case. Otherwise the record
// is appended with its application index set. queue is not modified.
func Push(queue []Record, id ID, at time.Time) (out []Record, cancelled bool) {
	opposite := id.Opposite()
	if CountOf(queue, opposite) > 0 {
		out = make([]Record, 0, len(queue))
		for _, r := range queue {
			if r.ID != opposite {
				out = append(out, r)
			}
		}
		return out, true
	}

	out = make([]Record, len(queue), len(queue)+1)
	copy(out, queue)
	out = append(out, Record{
		ID:               id,
		ApplicationIndex: CountOf(queue, id),
		AppliedAt:        at,
	})
	return out, false
}

// Normalize replays records through Push in order, dropping invalid IDs
// and recomputing application indices. It turns a queue restored from
// storage into one that satisfies the queue invariants.
func Normalize(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if !r.ID.Valid() {
			continue
		}
		out, _ = Push(out, r.ID, r.AppliedAt)
	}
	return out
}
