// Package download implements the download executor: the sequential and
// threaded strategies that retrieve image bytes and persist them under a
// run-scoped output directory.
//
// Target paths are planned before any worker starts, so the filesystem
// namespace is partitioned by descriptor and workers never contend on a
// path. Per-item failures are recorded in the run report and never abort
// the run.
package download
