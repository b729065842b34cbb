package engine

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Stats are the finalized counters for one resolution run. All counts
// are frozen once ResolveAll returns.
type Stats struct {
	// RunID uniquely identifies the run in logs and reports.
	RunID string `json:"run_id"`

	// TotalLookups is the number of unique airports resolved.
	TotalLookups int `json:"total_lookups"`

	// Successes counts outcomes carrying weather data, cached or fetched.
	Successes int `json:"successes"`

	// Failures counts outcomes that ended in a typed failure.
	Failures int `json:"failures"`

	// MemoryHits counts lookups served by the in-memory tier.
	MemoryHits int `json:"memory_hits"`

	// DurableHits counts lookups served by the persistent tier.
	DurableHits int `json:"durable_hits"`

	// NetworkFetches counts provider calls that were dispatched.
	NetworkFetches int `json:"network_fetches"`

	// Elapsed is the wall time of the whole run.
	Elapsed time.Duration `json:"elapsed_ns"`
}

// CacheHits is the total across both tiers.
func (s *Stats) CacheHits() int {
	return s.MemoryHits + s.DurableHits
}

// HitRate is the fraction of lookups served from cache, in [0, 1].
func (s *Stats) HitRate() float64 {
	if s.TotalLookups == 0 {
		return 0
	}
	return float64(s.CacheHits()) / float64(s.TotalLookups)
}

// SuccessRate is the fraction of lookups that resolved, in [0, 1].
func (s *Stats) SuccessRate() float64 {
	if s.TotalLookups == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.TotalLookups)
}

// statsAccumulator gathers counters while workers complete in arbitrary
// order. Counters are atomic so no worker serializes on another.
type statsAccumulator struct {
	runID        string
	startedAt    time.Time
	totalLookups int

	successes      atomic.Int64
	failures       atomic.Int64
	memoryHits     atomic.Int64
	durableHits    atomic.Int64
	networkFetches atomic.Int64
}

func newStatsAccumulator(total int) *statsAccumulator {
	return &statsAccumulator{
		runID:        uuid.NewString(),
		startedAt:    time.Now(),
		totalLookups: total,
	}
}

// finalize freezes the counters into an immutable Stats value.
func (a *statsAccumulator) finalize() *Stats {
	return &Stats{
		RunID:          a.runID,
		TotalLookups:   a.totalLookups,
		Successes:      int(a.successes.Load()),
		Failures:       int(a.failures.Load()),
		MemoryHits:     int(a.memoryHits.Load()),
		DurableHits:    int(a.durableHits.Load()),
		NetworkFetches: int(a.networkFetches.Load()),
		Elapsed:        time.Since(a.startedAt),
	}
}
