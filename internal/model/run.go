package model

import (
	"fmt"
	"path/filepath"
	"time"
)

// OutputTimestampLayout is the layout of the timestamp embedded in the run
// output root. It is the ISO 8601 basic form in UTC, chosen because it
// contains no colons and is therefore a valid directory name on every
// platform.
const OutputTimestampLayout = "20060102T150405Z"

// RunContext carries the immutable parameters of one download run.
// It is created once at process start from command-line input and defines
// the filesystem namespace for the entire run.
type RunContext struct {
	// Tag is the gallery tag being downloaded.
	Tag string `json:"tag"`

	// Mode is the download execution strategy.
	Mode Mode `json:"-"`

	// ThreadCount is the fixed worker pool size. It is only meaningful
	// when Mode is ModeThreaded and must be at least 1 in that case.
	ThreadCount int `json:"thread_count,omitempty"`

	// OutputRoot is the run-scoped output directory,
	// e.g. "images/astronomy-20250301T142233Z". The embedded timestamp
	// makes it unique per run so repeated invocations never collide.
	OutputRoot string `json:"output_root"`

	// StartedAt is the wall-clock start of the run.
	StartedAt time.Time `json:"started_at"`
}

// NewRunContext creates the run context for a single invocation.
// The output root is outputDir/<tag>-<timestamp>, with the timestamp taken
// from startedAt in UTC.
func NewRunContext(tag string, mode Mode, threadCount int, outputDir string, startedAt time.Time) RunContext {
	stamp := startedAt.UTC().Format(OutputTimestampLayout)
	return RunContext{
		Tag:         tag,
		Mode:        mode,
		ThreadCount: threadCount,
		OutputRoot:  filepath.Join(outputDir, fmt.Sprintf("%s-%s", tag, stamp)),
		StartedAt:   startedAt,
	}
}

// Workers returns the number of concurrent downloads the run may perform.
// Sequential runs always report 1.
func (rc RunContext) Workers() int {
	if rc.Mode == ModeThreaded && rc.ThreadCount > 0 {
		return rc.ThreadCount
	}
	return 1
}
