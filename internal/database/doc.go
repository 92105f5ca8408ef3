// Package database provides SQLite-based storage for run history.
//
// This package implements the RunDB, which stores:
//   - One record per download run with counters and the full report JSON
//   - One record per downloaded item for direct SQL inspection
//
// The database is a single file (via modernc.org/sqlite, CGO-free), so
// history travels with the operator's data directory and needs no server.
package database
