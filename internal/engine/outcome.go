package engine

import (
	"github.com/flightwx/flightwx/internal/engine/cache"
	"github.com/flightwx/flightwx/internal/weather"
)

// Origin records where an outcome's data came from.
type Origin string

// Outcome origins.
const (
	OriginNetwork      Origin = "network"
	OriginMemoryCache  Origin = "memory-cache"
	OriginDurableCache Origin = "persistent-cache"
)

// originFromTier maps a cache tier to the outcome origin.
func originFromTier(t cache.Tier) Origin {
	if t == cache.TierDurable {
		return OriginDurableCache
	}
	return OriginMemoryCache
}

// Outcome is the tagged result of resolving one airport: either a
// record or a typed failure, with provenance.
type Outcome struct {
	// Code is the normalized airport code this outcome belongs to.
	Code string `json:"code"`

	// Record holds the weather data when Err is nil.
	Record weather.Record `json:"record"`

	// Err is the typed failure for unresolved airports, nil on success.
	Err *weather.FetchError `json:"error,omitempty"`

	// Origin tags where the data came from.
	Origin Origin `json:"origin"`
}

// OK reports whether the outcome carries weather data.
func (o Outcome) OK() bool {
	return o.Err == nil
}
