// Package event defines the canonical tour event model shared by all sources.
//
// Each source produces its own event variant (PerfectEvent, JapanEvent,
// DTourEvent) over a common contract: start, derived end, summary, optional
// location, description, and a deterministic UID built from the start time
// and stage label. UIDs are stable across runs over unchanged input, which is
// what makes the content-hash comparison in the storage layer meaningful.
package event
