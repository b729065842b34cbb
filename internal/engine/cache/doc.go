// Package cache implements the two-tier weather cache: a bounded
// in-memory LRU tier with TTL expiry, optionally backed by a durable
// SQLite tier that survives process restarts. The store owns all
// eviction and consistency decisions; callers only use Get, Put, Clear
// and Close.
package cache
