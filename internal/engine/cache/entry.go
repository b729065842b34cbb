package cache

import (
	"time"

	"github.com/flightwx/flightwx/internal/weather"
)

// Entry is a single cached weather record with its expiry metadata.
type Entry struct {
	// Key is the normalized (uppercased) airport code.
	Key string

	// Record is the cached weather observation.
	Record weather.Record

	// CreatedAt is when the entry was inserted.
	CreatedAt time.Time

	// ExpiresAt is when the entry stops being served.
	ExpiresAt time.Time
}

// NewEntry creates an entry expiring ttl from now.
func NewEntry(key string, rec weather.Record, ttl time.Duration) Entry {
	now := time.Now()
	return Entry{
		Key:       key,
		Record:    rec,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the entry has passed its expiry time.
func (e Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}
