package cache

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightwx/flightwx/internal/weather"
)

func testRecord(code string, temp float64) weather.Record {
	return weather.Record{
		Code:         code,
		Name:         code + " International",
		TemperatureC: temp,
		Condition:    "Clear Sky",
		Humidity:     55,
		WindSpeedMS:  3.2,
		FetchedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func newMemoryStore(t *testing.T, opts Options) *Store {
	t.Helper()
	opts.Logger = zerolog.Nop()
	store, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGetIsIdempotent(t *testing.T) {
	store := newMemoryStore(t, Options{})
	store.Put("JFK", testRecord("JFK", 21.5))

	first, tier, ok := store.Get("JFK")
	require.True(t, ok)
	assert.Equal(t, TierMemory, tier)

	second, _, ok := store.Get("JFK")
	require.True(t, ok)
	assert.Equal(t, first.Record, second.Record)
	assert.Equal(t, first.ExpiresAt, second.ExpiresAt)
}

func TestMissReturnsAbsent(t *testing.T) {
	store := newMemoryStore(t, Options{})
	_, _, ok := store.Get("LAX")
	assert.False(t, ok)
}

func TestTTLExpiry(t *testing.T) {
	store := newMemoryStore(t, Options{TTL: 40 * time.Millisecond})
	store.Put("JFK", testRecord("JFK", 21.5))

	_, _, ok := store.Get("JFK")
	assert.True(t, ok, "entry should be served before expiry")

	time.Sleep(60 * time.Millisecond)

	_, _, ok = store.Get("JFK")
	assert.False(t, ok, "expired entry must behave as absent")
	assert.Zero(t, store.Len(), "expired entry must be lazily purged")
}

func TestLRUEvictionByAccessOrder(t *testing.T) {
	store := newMemoryStore(t, Options{Capacity: 3})
	store.Put("AAA", testRecord("AAA", 1))
	store.Put("BBB", testRecord("BBB", 2))
	store.Put("CCC", testRecord("CCC", 3))

	// Touch the oldest insertion so BBB becomes least recently used.
	_, _, ok := store.Get("AAA")
	require.True(t, ok)

	store.Put("DDD", testRecord("DDD", 4))

	_, _, ok = store.Get("BBB")
	assert.False(t, ok, "least recently accessed entry should be evicted")

	for _, code := range []string{"AAA", "CCC", "DDD"} {
		_, _, ok := store.Get(code)
		assert.True(t, ok, "%s should survive eviction", code)
	}
	assert.Equal(t, 3, store.Len())
}

func TestOverwriteDoesNotGrow(t *testing.T) {
	store := newMemoryStore(t, Options{Capacity: 2})
	store.Put("JFK", testRecord("JFK", 10))
	store.Put("JFK", testRecord("JFK", 12))

	assert.Equal(t, 1, store.Len())
	entry, _, ok := store.Get("JFK")
	require.True(t, ok)
	assert.InDelta(t, 12, entry.Record.TemperatureC, 0.001)
}

func TestInvalidCapacity(t *testing.T) {
	_, err := New(Options{Capacity: -1})
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestDurablePersistsAcrossStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.db")

	first := newMemoryStore(t, Options{DurablePath: path})
	require.True(t, first.HasDurable())
	first.Put("LAX", testRecord("LAX", 18.3))
	require.NoError(t, first.Close())

	second := newMemoryStore(t, Options{DurablePath: path})
	entry, tier, ok := second.Get("LAX")
	require.True(t, ok, "entry must survive a restart")
	assert.Equal(t, TierDurable, tier)
	assert.Equal(t, "LAX", entry.Record.Code)
	assert.InDelta(t, 18.3, entry.Record.TemperatureC, 0.001)

	// The durable hit is promoted, so the next read is a memory hit.
	_, tier, ok = second.Get("LAX")
	require.True(t, ok)
	assert.Equal(t, TierMemory, tier)
}

func TestDurableExpiredEntryIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.db")

	writer := newMemoryStore(t, Options{DurablePath: path, TTL: 10 * time.Millisecond})
	writer.Put("SFO", testRecord("SFO", 15))
	require.NoError(t, writer.Close())

	time.Sleep(30 * time.Millisecond)

	reader := newMemoryStore(t, Options{DurablePath: path})
	_, _, ok := reader.Get("SFO")
	assert.False(t, ok)
}

func TestClearEmptiesBothTiers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.db")

	store := newMemoryStore(t, Options{DurablePath: path})
	store.Put("JFK", testRecord("JFK", 20))
	store.Put("LAX", testRecord("LAX", 25))

	require.NoError(t, store.Clear())
	assert.Zero(t, store.Len())
	require.NoError(t, store.Close())

	reopened := newMemoryStore(t, Options{DurablePath: path})
	_, _, ok := reopened.Get("JFK")
	assert.False(t, ok, "clear must also erase the durable tier")
}

func TestUnusableDurablePathDegradesToMemoryOnly(t *testing.T) {
	// A directory is not a valid database file.
	store := newMemoryStore(t, Options{DurablePath: t.TempDir()})
	assert.False(t, store.HasDurable())

	store.Put("JFK", testRecord("JFK", 20))
	_, tier, ok := store.Get("JFK")
	require.True(t, ok)
	assert.Equal(t, TierMemory, tier)
}

func TestConcurrentAccess(t *testing.T) {
	store := newMemoryStore(t, Options{Capacity: 16})

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		worker := worker
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				code := fmt.Sprintf("A%02d", (worker+i)%24)
				store.Put(code, testRecord(code, float64(i)))
				store.Get(code)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, store.Len(), 16, "capacity bound must hold under concurrency")
}
