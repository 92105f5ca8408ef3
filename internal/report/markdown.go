package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/imgurgrab/imgurgrab/internal/model"
)

// MarkdownWriter outputs reports in Markdown format. This format is
// designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter

	// titler title-cases the tag for display.
	titler cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		titler:     cases.Title(language.English),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.DownloadReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeItems(md, report)
	w.writeFailures(md, report)
	w.writeMetadata(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.DownloadReport) {
	md.H1("Imgurgrab Download Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Tag", w.titler.String(report.Tag)},
			{"Run ID", "`" + report.RunID + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Mode", report.Mode},
			{"Workers", strconv.Itoa(workerCount(report))},
			{"Output Root", "`" + report.OutputRoot + "`"},
		},
	})
	md.PlainText("")
}

// writeSummary writes the run totals section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.DownloadReport) {
	md.H2("Run Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Result", "Count"},
		Rows: [][]string{
			{"Succeeded", strconv.Itoa(report.Succeeded)},
			{"Failed", strconv.Itoa(report.Failed)},
			{"**Total**", "**" + strconv.Itoa(report.Succeeded+report.Failed) + "**"},
		},
	})
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Bytes written", strconv.FormatInt(report.TotalBytes, 10)},
			{"Elapsed", report.Elapsed.Round(time.Millisecond).String()},
		},
	})
	md.PlainText("")

	if report.Succeeded+report.Failed > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for the success distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.DownloadReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Download Results"),
		piechart.WithShowData(true),
	)

	if report.Succeeded > 0 {
		chart.LabelAndIntValue("Succeeded", uint64(report.Succeeded))
	}
	if report.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(report.Failed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.DownloadReport) {
	switch {
	case report.HasLocationMetadata():
		md.Caution(
			"GPS location metadata was found in downloaded images. Review the metadata section before sharing files.",
		)
	case report.Failed > 0:
		md.Warningf(
			"%d image(s) failed to download. See the failures section for details.",
			report.Failed,
		)
	default:
		md.Tip("All images downloaded without failures.")
	}
	md.PlainText("")
}

// writeItems writes a table of successfully downloaded images.
func (w *MarkdownWriter) writeItems(md *markdown.Markdown, report *model.DownloadReport) {
	md.H2("Downloaded Images")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Items))
	for _, item := range report.Items {
		if !item.Succeeded() {
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(item.Descriptor.Ordinal),
			item.Descriptor.Filename,
			strconv.FormatInt(item.Bytes, 10),
			truncateString(item.Digest, 16),
		})
	}

	if len(rows) == 0 {
		md.PlainText("No images were downloaded.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Ordinal", "File", "Bytes", "Digest"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFailures writes a table of failed downloads.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.DownloadReport) {
	failed := report.FailedItems()
	if len(failed) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, len(failed))
	for i, item := range failed {
		rows[i] = []string{
			truncateString(item.Descriptor.RemoteURL, 50),
			item.Failure,
			truncateString(item.Error, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Stage", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeMetadata writes EXIF findings for downloaded images.
func (w *MarkdownWriter) writeMetadata(md *markdown.Markdown, report *model.DownloadReport) {
	withFindings := make([]model.ItemResult, 0, len(report.Items))
	for _, item := range report.Items {
		if len(item.Exif) > 0 {
			withFindings = append(withFindings, item)
		}
	}

	if len(withFindings) == 0 {
		return
	}

	md.H2("Image Metadata")
	md.PlainText("")

	for _, item := range withFindings {
		lines := make([]string, 0, len(item.Exif))
		for _, finding := range item.Exif {
			lines = append(lines, finding.Tag+": "+finding.Value)
		}
		md.Details(item.Descriptor.Filename, strings.Join(lines, "<br>"))
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [imgurgrab](https://github.com/imgurgrab/imgurgrab)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}
