// Package model defines the core data structures used throughout imgurgrab.
//
// This package contains the following main types:
//   - ImageDescriptor: One downloadable image discovered in a tag listing
//   - RunContext: The immutable parameters of a single download run
//   - DownloadReport: The outcome of a run, with per-item results
//   - Mode: The download execution strategy (sequential or threaded)
//
// Multiple packages (imgur, download, report, database) need these types,
// so centralizing them prevents import cycles. All models are designed to
// be serializable to JSON for report output and history storage.
package model
