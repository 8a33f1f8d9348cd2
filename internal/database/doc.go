// Package database provides SQLite-based storage for cragscan.
//
// CragDB stores:
//   - one table per record kind (areas, routes) keyed by the site id
//   - a crawl_runs table with the summary of every finished crawl
//
// Records are written with UPSERT, so re-crawling a region refreshes rows
// in place instead of duplicating them. The driver is modernc.org/sqlite,
// which needs no cgo.
package database
