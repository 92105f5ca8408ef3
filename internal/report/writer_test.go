package report

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/imgurgrab/imgurgrab/internal/model"
)

// sampleReport builds a finished run with two successes and one transport
// failure.
func sampleReport(t *testing.T) *model.DownloadReport {
	t.Helper()

	run := model.NewRunContext("astronomy", model.ModeSequential, 0, "images", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	report := model.NewDownloadReport(run)
	report.Items = []model.ItemResult{
		{
			Descriptor: model.ImageDescriptor{RemoteURL: "https://i.imgur.com/aaa111.jpg", Filename: "aaa111.jpg", Ordinal: 0, GalleryID: "g1", GallerySize: 1},
			Path:       filepath.Join(run.OutputRoot, "aaa111.jpg"),
			Bytes:      120,
			Digest:     "0ab1c2d3e4f50617283940516273849a",
		},
		{
			Descriptor: model.ImageDescriptor{RemoteURL: "https://i.imgur.com/bbb222.png", Filename: "bbb222.png", Ordinal: 1, GalleryID: "g2", GallerySize: 1},
			Path:       filepath.Join(run.OutputRoot, "bbb222.png"),
			Bytes:      80,
			Digest:     "ffee0011aabbccddffee0011aabbccdd",
		},
		{
			Descriptor: model.ImageDescriptor{RemoteURL: "https://i.imgur.com/ccc333.jpg", Filename: "ccc333.jpg", Ordinal: 2, GalleryID: "g3", GallerySize: 2},
			Failure:    model.FailureTransport,
			Error:      "connection reset",
		},
	}
	report.Finalize(2, 1, 1500*time.Millisecond)

	return report
}

// TestSimpleWriter tests the human-readable terminal format.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("includes header and totals", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		writer := NewSimpleWriter(&buf)

		n, err := writer.Write(sampleReport(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		out := buf.String()
		for _, want := range []string{
			"IMGURGRAB DOWNLOAD REPORT",
			"Astronomy",
			"sequential",
			"SUCCEEDED: 2",
			"FAILED:    1",
			"TOTAL:     3 images",
			"Bytes written: 200",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("lists failures with stage and error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		writer := NewSimpleWriter(&buf)

		if _, err := writer.Write(sampleReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"FAILURES",
			"https://i.imgur.com/ccc333.jpg",
			"stage: transport",
			"error: connection reset",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("verbose lists downloaded files", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		writer := NewSimpleWriter(&buf, WithVerbose(true))

		report := sampleReport(t)
		if _, err := writer.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "DOWNLOADED IMAGES") {
			t.Error("expected the per-item section in verbose mode")
		}
		if !strings.Contains(out, report.Items[0].Path) {
			t.Errorf("expected output to list %q", report.Items[0].Path)
		}
	})

	t.Run("omits per-item section by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		writer := NewSimpleWriter(&buf)

		if _, err := writer.Write(sampleReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "DOWNLOADED IMAGES") {
			t.Error("expected no per-item section without verbose")
		}
	})

	t.Run("notes location metadata", func(t *testing.T) {
		t.Parallel()

		report := sampleReport(t)
		report.Items[0].Exif = []model.ExifFinding{
			{Tag: "GPSLatitude", Value: "35/1 40/1 1234/100"},
			{Tag: "Make", Value: "ACME"},
		}

		var buf bytes.Buffer
		writer := NewSimpleWriter(&buf)

		if _, err := writer.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "GPS location metadata found") {
			t.Error("expected the location metadata note")
		}
		if !strings.Contains(out, "GPSLatitude: 35/1 40/1 1234/100") {
			t.Error("expected the finding listing")
		}
	})

	t.Run("shows empty sections when configured", func(t *testing.T) {
		t.Parallel()

		report := sampleReport(t)
		report.Items = report.Items[:2]
		report.Finalize(2, 0, time.Second)

		var buf bytes.Buffer
		writer := NewSimpleWriter(&buf, WithShowEmpty(true))

		if _, err := writer.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "No failures") {
			t.Error("expected the empty failures section")
		}
		if !strings.Contains(out, "No metadata findings") {
			t.Error("expected the empty metadata section")
		}
	})
}

// TestJSONWriter tests the JSON output format.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("round-trips through encoding/json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		writer := NewJSONWriter(&buf)

		report := sampleReport(t)
		n, err := writer.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		var decoded model.DownloadReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}

		if decoded.Tag != "astronomy" {
			t.Errorf("expected tag 'astronomy', got %q", decoded.Tag)
		}
		if decoded.Succeeded != 2 || decoded.Failed != 1 {
			t.Errorf("expected {2, 1}, got {%d, %d}", decoded.Succeeded, decoded.Failed)
		}
		if len(decoded.Items) != 3 {
			t.Errorf("expected 3 items, got %d", len(decoded.Items))
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		writer := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := writer.Write(sampleReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  \"") {
			t.Error("expected indented output")
		}
	})

	t.Run("full writer wraps with version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		writer := NewFullJSONWriter(&buf, "v1.2.3")

		if _, err := writer.Write(sampleReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded struct {
			Version string                `json:"version"`
			Report  *model.DownloadReport `json:"report"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}

		if decoded.Version != "v1.2.3" {
			t.Errorf("expected version 'v1.2.3', got %q", decoded.Version)
		}
		if decoded.Report == nil || decoded.Report.Tag != "astronomy" {
			t.Errorf("expected wrapped report, got %+v", decoded.Report)
		}
	})
}

// TestMarkdownWriter tests the Markdown output format.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders run tables and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		writer := NewMarkdownWriter(&buf)

		if _, err := writer.Write(sampleReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# Imgurgrab Download Report",
			"## Run Summary",
			"## Downloaded Images",
			"Astronomy",
			"aaa111.jpg",
			"mermaid",
			"## Failures",
			"connection reset",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("warns about failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		writer := NewMarkdownWriter(&buf)

		if _, err := writer.Write(sampleReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "[!WARNING]") {
			t.Error("expected a warning alert for failed downloads")
		}
	})

	t.Run("cautions about location metadata", func(t *testing.T) {
		t.Parallel()

		report := sampleReport(t)
		report.Items[0].Exif = []model.ExifFinding{{Tag: "GPSLatitude", Value: "35/1 40/1 1234/100"}}

		var buf bytes.Buffer
		writer := NewMarkdownWriter(&buf)

		if _, err := writer.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "[!CAUTION]") {
			t.Error("expected a caution alert for location metadata")
		}
		if !strings.Contains(out, "## Image Metadata") {
			t.Error("expected the metadata section")
		}
	})

	t.Run("tips when the run is clean", func(t *testing.T) {
		t.Parallel()

		report := sampleReport(t)
		report.Items = report.Items[:2]
		report.Finalize(2, 0, time.Second)

		var buf bytes.Buffer
		writer := NewMarkdownWriter(&buf)

		if _, err := writer.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "[!TIP]") {
			t.Error("expected a tip alert for a clean run")
		}
	})
}

// TestMultiWriter tests fan-out to multiple writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var first, second bytes.Buffer
	writer := NewMultiWriter(NewSimpleWriter(&first), NewJSONWriter(&second))

	total, err := writer.Write(sampleReport(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Len() == 0 || second.Len() == 0 {
		t.Error("expected both writers to receive output")
	}
	if total != first.Len()+second.Len() {
		t.Errorf("expected total %d, got %d", first.Len()+second.Len(), total)
	}
}

// TestTruncateString tests string truncation for table cells.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short string unchanged", input: "short", maxLen: 10, want: "short"},
		{name: "exact length unchanged", input: "exact", maxLen: 5, want: "exact"},
		{name: "long string truncated", input: "a very long string indeed", maxLen: 10, want: "a very ..."},
		{name: "tiny limit", input: "abcdef", maxLen: 3, want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
