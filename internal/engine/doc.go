// Package engine contains the acquisition orchestrator: given a
// deduplicated set of airports it merges the two-tier cache with
// bounded concurrent provider fetches, tolerating per-airport failure,
// and produces the outcome mapping plus run statistics the report
// renderer consumes.
package engine
