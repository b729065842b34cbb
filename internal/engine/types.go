package engine

import "strings"

// Lookup is one deduplicated airport to resolve: the uppercased IATA
// code is the cache identity; coordinates are carried for the provider
// call only.
type Lookup struct {
	Code      string
	Name      string
	Latitude  float64
	Longitude float64
}

// NormalizeCode canonicalizes an airport code for use as a cache key.
// Two lookups whose codes normalize equally share one cache entry even
// when their coordinate payloads differ.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// dedupeLookups normalizes codes and keeps the first occurrence of each,
// preserving input order.
func dedupeLookups(lookups []Lookup) []Lookup {
	seen := make(map[string]struct{}, len(lookups))
	unique := make([]Lookup, 0, len(lookups))
	for _, lk := range lookups {
		lk.Code = NormalizeCode(lk.Code)
		if lk.Code == "" {
			continue
		}
		if _, ok := seen[lk.Code]; ok {
			continue
		}
		seen[lk.Code] = struct{}{}
		unique = append(unique, lk)
	}
	return unique
}
