package pool

import (
	"slices"
	"time"

	"github.com/justestif/go-vibe-discovery/internal/catalog"
	"github.com/justestif/go-vibe-discovery/internal/filters"
	"github.com/justestif/go-vibe-discovery/internal/metrics"
)

// StepReport describes one replayed filter.
type StepReport struct {
	FilterID  filters.ID `json:"filter_id"`
	Before    int        `json:"before"`    // pool size entering the step
	Nominal   int        `json:"nominal"`   // result size at the nominal radius
	Filtered  int        `json:"filtered"`  // result size actually used
	After     int        `json:"after"`     // pool size leaving the step
	Threshold float64    `json:"threshold"` // bound of the filter actually used
	Relaxed   bool       `json:"relaxed"`
	Mixed     MixReport  `json:"mixed"`
	Stopped   bool       `json:"stopped"` // empty result; replay ended here
}

// RebuildReport describes the last playback pool rebuild.
type RebuildReport struct {
	GenreSize    int           `json:"genre_size"`
	PlaybackSize int           `json:"playback_size"`
	Steps        []StepReport  `json:"steps,omitempty"`
	Expansion    *ExpandReport `json:"expansion,omitempty"`
	FellBack     bool          `json:"fell_back"`
	Duration     time.Duration `json:"duration"`
}

// LastRebuild returns the report of the most recent rebuild.
func (m *Manager) LastRebuild() RebuildReport {
	r := m.last
	r.Steps = slices.Clone(r.Steps)
	return r
}

// rebuild replays the filter queue over the genre pool into the playback pool.
func (m *Manager) rebuild() {
	start := time.Now()
	report := RebuildReport{GenreSize: len(m.genre)}

	current := slices.Clone(m.genre)
	for _, rec := range m.queue {
		next, step := m.step(rec, current)
		report.Steps = append(report.Steps, step)
		m.log.Debug().
			Str("filter", rec.ID.String()).
			Int("before", step.Before).
			Int("nominal", step.Nominal).
			Int("filtered", step.Filtered).
			Int("after", step.After).
			Bool("relaxed", step.Relaxed).
			Msg("rebuild step")
		if step.Stopped {
			m.log.Warn().
				Str("filter", rec.ID.String()).
				Int("pool_size", len(current)).
				Msg("filter emptied the pool, keeping last good pool")
			break
		}
		current = next
	}
	m.playback = current

	if len(m.queue) > 0 && len(m.playback) < m.cfg.MinPoolSize {
		exp := m.expand()
		report.Expansion = &exp
	}

	if len(m.playback) == 0 {
		m.log.Warn().Msg("playback pool empty after rebuild, falling back to genre pool")
		m.playback = slices.Clone(m.genre)
		report.FellBack = true
		metrics.RecordFallback()
	}

	report.PlaybackSize = len(m.playback)
	report.Duration = time.Since(start)
	m.last = report

	metrics.RecordRebuild(report.Duration, report.PlaybackSize)
}

// step applies one queued filter to current. A step removing more than
// RelaxThreshold of the pool is recomputed at the relaxed radius, and is
// reported relaxed only if that moved the threshold.
func (m *Manager) step(rec filters.Record, current []*catalog.Item) ([]*catalog.Item, StepReport) {
	params := filters.Params{ApplicationIndex: rec.ApplicationIndex}
	res := filters.Apply(rec.ID, current, params)

	report := StepReport{
		FilterID: rec.ID,
		Before:   len(current),
		Nominal:  len(res.Items),
	}

	// The first rung of a progressive ladder has nothing to relax to.
	if reduction(len(current), len(res.Items)) > m.cfg.RelaxThreshold {
		params.RadiusScale = m.cfg.RadiusRelaxation
		if relaxed := filters.Apply(rec.ID, current, params); relaxed.Threshold != res.Threshold {
			res = relaxed
			report.Relaxed = true
			metrics.RecordRelaxation(rec.ID.String())
		}
	}

	report.Filtered = len(res.Items)
	report.Threshold = res.Threshold

	if len(res.Items) == 0 {
		report.Stopped = true
		report.After = len(current)
		return current, report
	}

	mixed, mix := m.mix(current, res.Items)
	report.Mixed = mix
	report.After = len(mixed)
	return mixed, report
}

// reduction is the fraction of the pool a step removed.
func reduction(before, after int) float64 {
	if before == 0 {
		return 0
	}
	return float64(before-after) / float64(before)
}
