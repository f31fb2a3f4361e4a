// Package stats keeps a rolling window of render latencies.
package stats

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at     time.Time
	format string
	micros int64
}

// Snapshot aggregates the samples currently inside the window. Render times
// are in microseconds; a parse of a chat message rarely takes a millisecond.
type Snapshot struct {
	Count    int            `json:"count"`
	MinUs    int64          `json:"min_us"`
	MaxUs    int64          `json:"max_us"`
	AvgUs    float64        `json:"avg_us"`
	P50Us    float64        `json:"p50_us"`
	P95Us    float64        `json:"p95_us"`
	P99Us    float64        `json:"p99_us"`
	ByFormat map[string]int `json:"by_format"`
}

// RenderStats records how long renders take, per output format.
type RenderStats struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
	now     func() time.Time
}

func NewRenderStats(window time.Duration) *RenderStats {
	if window <= 0 {
		window = time.Hour
	}
	return &RenderStats{
		samples: make([]sample, 0, 256),
		window:  window,
		now:     time.Now,
	}
}

// Record adds one render of format that took d.
func (s *RenderStats) Record(format string, d time.Duration) {
	us := d.Microseconds()
	if us < 0 {
		us = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.pruneLocked(now)
	s.samples = append(s.samples, sample{at: now, format: format, micros: us})
}

// Since records the time elapsed since start; use with defer.
func (s *RenderStats) Since(format string, start time.Time) {
	s.Record(format, time.Since(start))
}

func (s *RenderStats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())

	snap := Snapshot{ByFormat: map[string]int{}}
	if len(s.samples) == 0 {
		return snap
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	for _, sm := range s.samples {
		values = append(values, sm.micros)
		sum += sm.micros
		snap.ByFormat[sm.format]++
	}
	slices.Sort(values)

	snap.Count = len(values)
	snap.MinUs = values[0]
	snap.MaxUs = values[len(values)-1]
	snap.AvgUs = float64(sum) / float64(len(values))
	snap.P50Us = percentile(values, 50)
	snap.P95Us = percentile(values, 95)
	snap.P99Us = percentile(values, 99)
	return snap
}

func (s *RenderStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	kept := s.samples[:0]
	for _, sm := range s.samples {
		if !sm.at.Before(cutoff) {
			kept = append(kept, sm)
		}
	}
	s.samples = kept
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}
	index := float64(len(sorted)-1) * pct / 100
	lower := int(index)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(index-float64(lower))
}
