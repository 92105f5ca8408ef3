package report

import (
	"io"

	"github.com/imgurgrab/imgurgrab/internal/model"
)

// Writer defines the interface for report output. Implementations write a
// completed download run in a specific format.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.DownloadReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously. This is useful
// for outputting to both the terminal and a report file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers. It returns the total
// bytes written across all writers and stops on the first error.
func (m *MultiWriter) Write(report *model.DownloadReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// workerCount returns the number of workers the run used.
func workerCount(report *model.DownloadReport) int {
	if report.ThreadCount > 0 {
		return report.ThreadCount
	}

	return 1
}
