package cache

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/flightwx/flightwx/internal/weather"
)

// Defaults for store construction.
const (
	// DefaultTTL is the fixed lifetime of a cache entry.
	DefaultTTL = 30 * time.Minute

	// DefaultCapacity bounds the in-memory tier entry count.
	DefaultCapacity = 1024
)

// ErrInvalidCapacity is returned when the memory tier capacity is not positive.
var ErrInvalidCapacity = errors.New("cache capacity must be positive")

// Tier identifies which cache tier served a hit.
type Tier int

const (
	// TierMemory is the in-memory LRU tier.
	TierMemory Tier = iota

	// TierDurable is the SQLite-backed persistent tier.
	TierDurable
)

func (t Tier) String() string {
	if t == TierDurable {
		return "persistent-cache"
	}
	return "memory-cache"
}

// Options configures a Store.
type Options struct {
	// TTL is the entry lifetime. Zero means DefaultTTL.
	TTL time.Duration

	// Capacity bounds the in-memory tier. Zero means DefaultCapacity.
	Capacity int

	// DurablePath, when non-empty, enables the SQLite tier at that path.
	DurablePath string

	// Logger receives degradation warnings and debug traces.
	Logger zerolog.Logger
}

// Store is the two-tier weather cache. All access goes through Get, Put,
// Clear and Close; the store serializes tier mutation so concurrent
// workers cannot race LRU promotion or eviction.
type Store struct {
	ttl    time.Duration
	logger zerolog.Logger

	mu      sync.Mutex
	memory  *memoryTier
	durable *durableTier
}

// New creates a store from opts. A durable tier that cannot be opened is
// not fatal: the store degrades to memory-only and logs the failure.
func New(opts Options) (*Store, error) {
	if opts.Capacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if opts.Capacity == 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.TTL == 0 {
		opts.TTL = DefaultTTL
	}

	s := &Store{
		ttl:    opts.TTL,
		logger: opts.Logger,
		memory: newMemoryTier(opts.Capacity),
	}

	if opts.DurablePath != "" {
		durable, err := openDurableTier(opts.DurablePath)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", opts.DurablePath).
				Msg("persistent cache unavailable, continuing memory-only")
		} else {
			s.durable = durable
		}
	}

	return s, nil
}

// Get returns the entry for key and the tier that served it. A durable
// hit is promoted into the memory tier. Expired entries behave as absent.
func (s *Store) Get(key string) (Entry, Tier, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.memory.get(key); ok {
		return entry, TierMemory, true
	}

	if s.durable == nil {
		return Entry{}, TierMemory, false
	}

	entry, ok, err := s.durable.get(key)
	if err != nil {
		s.degradeLocked(err)
		return Entry{}, TierMemory, false
	}
	if !ok {
		return Entry{}, TierMemory, false
	}

	s.memory.put(entry)
	return entry, TierDurable, true
}

// Put stores rec under key with a fresh TTL. The memory write always
// happens; a durable write failure is logged and the store degrades to
// memory-only instead of failing the fetch path.
func (s *Store) Put(key string, rec weather.Record) {
	entry := NewEntry(key, rec, s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory.put(entry)

	if s.durable != nil {
		if err := s.durable.put(entry); err != nil {
			s.degradeLocked(err)
		}
	}
}

// Clear empties the memory tier and, when configured, the durable tier.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory.clear()

	if s.durable != nil {
		if err := s.durable.clear(); err != nil {
			s.degradeLocked(err)
			return err
		}
	}
	return nil
}

// Len returns the number of entries in the memory tier.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory.len()
}

// HasDurable reports whether the durable tier is active.
func (s *Store) HasDurable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.durable != nil
}

// Close releases the durable tier handle, if any.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.durable == nil {
		return nil
	}
	err := s.durable.close()
	s.durable = nil
	return err
}

// degradeLocked drops the durable tier after a persistence failure so
// the rest of the run stays memory-only. Caller must hold s.mu.
func (s *Store) degradeLocked(err error) {
	s.logger.Warn().Err(err).Msg("persistent cache failure, degrading to memory-only")
	_ = s.durable.close()
	s.durable = nil
}
