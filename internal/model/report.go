package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Failure classification values recorded in ItemResult.Failure.
// They mirror the per-item error categories: network failures while
// fetching the image bytes, and filesystem failures while persisting them.
const (
	// FailureTransport marks a network-level failure (DNS, refused
	// connection, timeout, unexpected HTTP status).
	FailureTransport = "transport"

	// FailureWrite marks a filesystem failure (directory creation or
	// file write).
	FailureWrite = "write"
)

// ExifFinding is one EXIF metadata entry extracted from a downloaded image.
type ExifFinding struct {
	// Tag is the EXIF tag name, e.g. "Model" or "GPSLatitude".
	Tag string `json:"tag"`

	// Value is the formatted tag value.
	Value string `json:"value"`
}

// IsLocation reports whether the finding carries GPS position data.
func (f ExifFinding) IsLocation() bool {
	return strings.HasPrefix(f.Tag, "GPS")
}

// ItemResult is the outcome of downloading a single image descriptor.
type ItemResult struct {
	// Descriptor is the image this result belongs to.
	Descriptor ImageDescriptor `json:"descriptor"`

	// Path is the written file path relative to the run output root.
	// Set even on failure so the planned location can be reported.
	Path string `json:"path,omitempty"`

	// Bytes is the number of bytes written on success.
	Bytes int64 `json:"bytes,omitempty"`

	// Digest is the SHA3-256 hex digest of the written content.
	// Empty when digest computation is disabled or the item failed.
	Digest string `json:"digest,omitempty"`

	// Exif holds EXIF metadata findings when inspection is enabled.
	Exif []ExifFinding `json:"exif,omitempty"`

	// Failure classifies the error (FailureTransport or FailureWrite).
	// Empty on success.
	Failure string `json:"failure,omitempty"`

	// Error is the failure message. Empty on success.
	Error string `json:"error,omitempty"`
}

// Succeeded reports whether the item downloaded and persisted successfully.
func (i ItemResult) Succeeded() bool {
	return i.Error == ""
}

// DownloadReport is the outcome of one download run.
// Succeeded + Failed always equals len(Items) once the report is finalized.
type DownloadReport struct {
	// RunID uniquely identifies the run, also used as the history
	// database key.
	RunID string `json:"run_id"`

	// Tag is the gallery tag that was downloaded.
	Tag string `json:"tag"`

	// Mode is the execution strategy name ("sequential" or "threaded").
	Mode string `json:"mode"`

	// ThreadCount is the worker pool size for threaded runs, zero for
	// sequential runs.
	ThreadCount int `json:"thread_count,omitempty"`

	// OutputRoot is the run-scoped output directory.
	OutputRoot string `json:"output_root"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the wall-clock duration of the download phase.
	Elapsed time.Duration `json:"elapsed_ns"`

	// Succeeded is the number of images persisted successfully.
	Succeeded int `json:"succeeded"`

	// Failed is the number of images that could not be downloaded or
	// written. Per-item failures never abort a run.
	Failed int `json:"failed"`

	// TotalBytes is the sum of bytes written across successful items.
	TotalBytes int64 `json:"total_bytes"`

	// Items holds the per-item outcomes in descriptor input order,
	// regardless of completion order.
	Items []ItemResult `json:"items,omitempty"`
}

// NewDownloadReport creates an empty report for the given run with a fresh
// run ID. Items and counters are filled in by the download executor.
func NewDownloadReport(run RunContext) *DownloadReport {
	threadCount := 0
	if run.Mode == ModeThreaded {
		threadCount = run.ThreadCount
	}

	return &DownloadReport{
		RunID:       uuid.NewString(),
		Tag:         run.Tag,
		Mode:        run.Mode.String(),
		ThreadCount: threadCount,
		OutputRoot:  run.OutputRoot,
		StartedAt:   run.StartedAt,
		Items:       make([]ItemResult, 0),
	}
}

// Finalize records the aggregate counters and the total elapsed time.
// The succeeded and failed counts come from the executor's concurrency-safe
// counters; the byte total is summed from the item results.
func (r *DownloadReport) Finalize(succeeded, failed int, elapsed time.Duration) {
	r.Succeeded = succeeded
	r.Failed = failed
	r.Elapsed = elapsed

	var total int64
	for _, item := range r.Items {
		if item.Succeeded() {
			total += item.Bytes
		}
	}
	r.TotalBytes = total
}

// FailedItems returns the items that did not complete, in input order.
func (r *DownloadReport) FailedItems() []ItemResult {
	failed := make([]ItemResult, 0)
	for _, item := range r.Items {
		if !item.Succeeded() {
			failed = append(failed, item)
		}
	}
	return failed
}

// HasLocationMetadata reports whether any downloaded image carried GPS
// EXIF data. Report writers use this to surface a privacy warning.
func (r *DownloadReport) HasLocationMetadata() bool {
	for _, item := range r.Items {
		for _, finding := range item.Exif {
			if finding.IsLocation() {
				return true
			}
		}
	}
	return false
}
