package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/flightwx/flightwx/internal/engine/cache"
	"github.com/flightwx/flightwx/internal/weather"
)

// Concurrency and timeout bounds for the resolver.
const (
	// MaxConcurrency caps the worker pool size.
	MaxConcurrency = 50

	// DefaultFetchTimeout is the per-request budget when none is configured.
	DefaultFetchTimeout = 30 * time.Second
)

// Configuration errors, raised before any fetch begins.
var (
	ErrInvalidConcurrency = fmt.Errorf("concurrency limit must be between 1 and %d", MaxConcurrency)
	ErrNilFetcher         = errors.New("fetcher cannot be nil")
	ErrNilStore           = errors.New("cache store cannot be nil")
)

// Fetcher performs one weather lookup. *weather.Client satisfies this;
// tests substitute instrumented fakes.
type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (weather.Record, error)
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// Concurrency bounds in-flight provider calls. Must be between 1
	// and MaxConcurrency; zero or negative is a configuration error.
	Concurrency int

	// FetchTimeout is the per-request budget. Zero means DefaultFetchTimeout.
	FetchTimeout time.Duration

	// Logger receives per-lookup traces and the run summary.
	Logger zerolog.Logger
}

// Service is the acquisition orchestrator: it decides per airport
// whether to serve from cache or dispatch a provider call, bounds the
// number of in-flight calls, and aggregates outcomes and statistics.
type Service struct {
	fetcher Fetcher
	store   *cache.Store
	limit   int
	timeout time.Duration
	logger  zerolog.Logger
}

// NewService validates opts and creates a Service. Limit violations are
// configuration errors: no work starts with an invalid pool size.
func NewService(fetcher Fetcher, store *cache.Store, opts ServiceOptions) (*Service, error) {
	if fetcher == nil {
		return nil, ErrNilFetcher
	}
	if store == nil {
		return nil, ErrNilStore
	}

	if opts.Concurrency < 1 || opts.Concurrency > MaxConcurrency {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, opts.Concurrency)
	}

	timeout := opts.FetchTimeout
	if timeout == 0 {
		timeout = DefaultFetchTimeout
	}

	return &Service{
		fetcher: fetcher,
		store:   store,
		limit:   opts.Concurrency,
		timeout: timeout,
		logger:  opts.Logger,
	}, nil
}

// ResolveAll resolves every lookup to an outcome keyed by normalized
// airport code. Lookups are deduplicated by code up front; cache hits
// resolve immediately without consuming a worker slot; misses are
// fetched with at most the configured number of calls in flight.
// Failures are recorded, never retried, and never halt the batch: the
// run finishes only when every airport has an outcome.
func (s *Service) ResolveAll(ctx context.Context, lookups []Lookup) (map[string]Outcome, *Stats, error) {
	unique := dedupeLookups(lookups)
	acc := newStatsAccumulator(len(unique))

	outcomes := make(map[string]Outcome, len(unique))
	if len(unique) == 0 {
		return outcomes, acc.finalize(), nil
	}

	s.logger.Info().Str("run_id", acc.runID).Int("airports", len(unique)).
		Int("concurrency", s.limit).Msg("starting weather resolution")

	// Phase 1: serve what the cache already has.
	var toFetch []Lookup
	for _, lk := range unique {
		entry, tier, ok := s.store.Get(lk.Code)
		if !ok {
			toFetch = append(toFetch, lk)
			continue
		}
		outcomes[lk.Code] = Outcome{Code: lk.Code, Record: entry.Record, Origin: originFromTier(tier)}
		acc.successes.Add(1)
		if tier == cache.TierDurable {
			acc.durableHits.Add(1)
		} else {
			acc.memoryHits.Add(1)
		}
	}

	// Phase 2: bounded dispatch of the misses. Workers never return an
	// error; a failed fetch is an outcome, not a fault.
	var mu sync.Mutex
	group := &errgroup.Group{}
	group.SetLimit(s.limit)

	for _, lk := range toFetch {
		lk := lk
		group.Go(func() error {
			outcome := s.fetchOne(ctx, lk, acc)
			mu.Lock()
			outcomes[lk.Code] = outcome
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	stats := acc.finalize()
	s.logger.Info().Str("run_id", stats.RunID).
		Int("successes", stats.Successes).Int("failures", stats.Failures).
		Int("cache_hits", stats.CacheHits()).Dur("elapsed", stats.Elapsed).
		Msg("weather resolution finished")

	return outcomes, stats, nil
}

// fetchOne performs a single bounded provider call. The cache write
// happens before the outcome becomes visible, so a duplicate lookup
// racing behind this fetch observes the cache instead of the network.
func (s *Service) fetchOne(ctx context.Context, lk Lookup, acc *statsAccumulator) Outcome {
	acc.networkFetches.Add(1)

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec, err := s.fetcher.Fetch(fetchCtx, lk.Latitude, lk.Longitude)
	if err != nil {
		fe := weather.AsFetchError(err)
		acc.failures.Add(1)
		s.logger.Warn().Str("airport", lk.Code).Str("reason", string(fe.Reason)).
			Str("detail", fe.Detail).Msg("weather unavailable")
		return Outcome{Code: lk.Code, Err: fe, Origin: OriginNetwork}
	}

	rec.Code = lk.Code
	rec.Name = lk.Name
	s.store.Put(lk.Code, rec)

	acc.successes.Add(1)
	s.logger.Debug().Str("airport", lk.Code).Float64("temp_c", rec.TemperatureC).
		Msg("weather fetched")
	return Outcome{Code: lk.Code, Record: rec, Origin: OriginNetwork}
}
