package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/imgurgrab/imgurgrab/internal/model"
)

// SimpleWriter outputs human-readable text reports. This format is designed
// for terminal display with clear section formatting and no ANSI colors, so
// it pipes cleanly to files and other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables a per-item listing in addition to the summary.
	verbose bool

	// titler title-cases the tag for display.
	titler cases.Caser
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables the per-item listing.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
		titler:     cases.Title(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.DownloadReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeItems(&sb, report)
	w.writeFailures(&sb, report)
	w.writeMetadata(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.DownloadReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       IMGURGRAB DOWNLOAD REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Tag:         %s\n", w.titler.String(report.Tag)))
	sb.WriteString(fmt.Sprintf("Run ID:      %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Started:     %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Mode:        %s (%d worker(s))\n", report.Mode, workerCount(report)))
	sb.WriteString(fmt.Sprintf("Output Root: %s\n", report.OutputRoot))
	sb.WriteString("\n")
}

// writeSummary writes the run totals section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.DownloadReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RUN SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  SUCCEEDED: %d\n", report.Succeeded))
	sb.WriteString(fmt.Sprintf("  FAILED:    %d\n", report.Failed))
	sb.WriteString(fmt.Sprintf("  TOTAL:     %d images\n", report.Succeeded+report.Failed))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Bytes written: %d\n", report.TotalBytes))
	sb.WriteString(fmt.Sprintf("  Elapsed:       %s\n", report.Elapsed.Round(time.Millisecond)))
	sb.WriteString("\n")
}

// writeItems writes the per-item listing. Only shown in verbose mode.
func (w *SimpleWriter) writeItems(sb *strings.Builder, report *model.DownloadReport) {
	if !w.verbose {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DOWNLOADED IMAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, item := range report.Items {
		if item.Succeeded() {
			sb.WriteString(fmt.Sprintf("  [+] %s (%d bytes)\n", item.Path, item.Bytes))
		} else {
			sb.WriteString(fmt.Sprintf("  [-] %s\n", item.Descriptor.RemoteURL))
		}
	}
	sb.WriteString("\n")
}

// writeFailures writes the failed item section.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.DownloadReport) {
	failed := report.FailedItems()
	if len(failed) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILURES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(failed) == 0 {
		sb.WriteString("  No failures\n")
	} else {
		for _, item := range failed {
			sb.WriteString(fmt.Sprintf("  [-] %s\n", item.Descriptor.RemoteURL))
			sb.WriteString(fmt.Sprintf("      stage: %s\n", item.Failure))
			sb.WriteString(fmt.Sprintf("      error: %s\n", item.Error))
		}
	}
	sb.WriteString("\n")
}

// writeMetadata writes EXIF findings for downloaded images.
func (w *SimpleWriter) writeMetadata(sb *strings.Builder, report *model.DownloadReport) {
	withFindings := make([]model.ItemResult, 0, len(report.Items))
	for _, item := range report.Items {
		if len(item.Exif) > 0 {
			withFindings = append(withFindings, item)
		}
	}

	if len(withFindings) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("IMAGE METADATA\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(withFindings) == 0 {
		sb.WriteString("  No metadata findings\n\n")
		return
	}

	if report.HasLocationMetadata() {
		sb.WriteString("  NOTE: GPS location metadata found. Review before sharing.\n\n")
	}

	for _, item := range withFindings {
		sb.WriteString(fmt.Sprintf("  * %s\n", item.Descriptor.Filename))
		for _, finding := range item.Exif {
			sb.WriteString(fmt.Sprintf("      %s: %s\n", finding.Tag, finding.Value))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by imgurgrab\n")
	sb.WriteString("https://github.com/imgurgrab/imgurgrab\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
