// Package sink persists completed records.
//
// A Sink receives each record exactly once, after its comment thread has
// been merged, and routes it to a destination per kind. Records from
// different branches arrive in no particular order and from many goroutines,
// so every implementation is safe for concurrent use.
//
// Implementations:
//   - CSV writes areas.csv and routes.csv
//   - SQLite upserts into the cragscan database
//   - Memory keeps records for tests and dry runs
//   - Multi fans out to several sinks
package sink
