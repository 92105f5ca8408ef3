package download

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/imgurgrab/imgurgrab/internal/model"
	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/errgroup"
)

const (
	dirPerm  = 0750
	filePerm = 0600
)

// imageFetcher retrieves the raw bytes of one image.
type imageFetcher interface {
	DownloadImage(ctx context.Context, imageURL string) ([]byte, error)
}

// MetadataScanner extracts findings from downloaded image bytes. Scan
// failures are logged and ignored; metadata is best-effort.
type MetadataScanner func(data []byte) ([]model.ExifFinding, error)

// Executor downloads a planned set of images with either a sequential loop
// or a fixed-size worker pool.
type Executor struct {
	// fetcher retrieves image bytes over the network.
	fetcher imageFetcher

	// scanner, when set, inspects each downloaded image for metadata.
	scanner MetadataScanner

	// logger is used for per-item and run-level logging.
	logger *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets a custom logger for the executor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMetadataScanner enables metadata inspection of downloaded images.
func WithMetadataScanner(scanner MetadataScanner) Option {
	return func(e *Executor) {
		e.scanner = scanner
	}
}

// NewExecutor creates an Executor that downloads through the given fetcher.
func NewExecutor(fetcher imageFetcher, opts ...Option) *Executor {
	e := &Executor{
		fetcher: fetcher,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// counters tracks run totals. Atomics because threaded workers update them
// concurrently.
type counters struct {
	succeeded atomic.Int64
	failed    atomic.Int64
}

func (c *counters) succeed() { c.succeeded.Add(1) }
func (c *counters) fail()    { c.failed.Add(1) }

// DownloadAll retrieves every descriptor's bytes and persists them under
// the run's output root, dispatching on the run's mode. Per-item failures
// are recorded in the report and never abort the run; the error return
// indicates the run itself could not proceed, for example a cancelled
// context or an unwritable output root.
func (e *Executor) DownloadAll(ctx context.Context, run model.RunContext, descriptors []model.ImageDescriptor) (*model.DownloadReport, error) {
	report := model.NewDownloadReport(run)
	layout := PlanLayout(run.OutputRoot, descriptors)

	// Create every planned directory up front so workers never race on
	// directory creation.
	for _, dir := range layout.Dirs {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	e.logger.Info("starting download run",
		"tag", run.Tag,
		"mode", run.Mode.String(),
		"workers", run.Workers(),
		"images", len(descriptors),
		"output", run.OutputRoot,
	)

	start := time.Now()

	var (
		tally   counters
		results []model.ItemResult
		err     error
	)
	switch run.Mode {
	case model.ModeThreaded:
		results, err = e.runThreaded(ctx, run.Workers(), layout.Targets, &tally)
	default:
		results, err = e.runSequential(ctx, layout.Targets, &tally)
	}
	if err != nil {
		return nil, err
	}

	report.Items = results
	report.Finalize(int(tally.succeeded.Load()), int(tally.failed.Load()), time.Since(start))

	e.logger.Info("download run complete",
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"bytes", report.TotalBytes,
		"elapsed", report.Elapsed,
	)

	return report, nil
}

// runSequential downloads targets one at a time in listing order.
func (e *Executor) runSequential(ctx context.Context, targets []Target, tally *counters) ([]model.ItemResult, error) {
	results := make([]model.ItemResult, len(targets))

	for i, target := range targets {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		results[i] = e.downloadOne(ctx, target, tally, i, len(targets))
	}

	return results, nil
}

// runThreaded downloads targets with a fixed-size worker pool. Results keep
// descriptor order regardless of completion order; each goroutine writes
// only its own slice element.
func (e *Executor) runThreaded(ctx context.Context, workers int, targets []Target, tally *counters) ([]model.ItemResult, error) {
	results := make([]model.ItemResult, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			results[i] = e.downloadOne(ctx, target, tally, i, len(targets))

			// Per-item failures are recorded in the result, not
			// propagated, so the remaining downloads continue.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// downloadOne fetches a single target and persists it. Failures are
// recorded on the returned result, never returned.
func (e *Executor) downloadOne(ctx context.Context, target Target, tally *counters, index, total int) model.ItemResult {
	result := model.ItemResult{
		Descriptor: target.Descriptor,
		Path:       target.Path,
	}

	data, err := e.fetcher.DownloadImage(ctx, target.Descriptor.RemoteURL)
	if err != nil {
		result.Failure = model.FailureTransport
		result.Error = err.Error()
		tally.fail()
		e.logger.Warn("download failed",
			"url", target.Descriptor.RemoteURL,
			"index", index+1,
			"total", total,
			"error", err,
		)

		return result
	}

	if err := os.WriteFile(target.Path, data, filePerm); err != nil {
		result.Failure = model.FailureWrite
		result.Error = err.Error()
		tally.fail()
		e.logger.Warn("write failed",
			"path", target.Path,
			"error", err,
		)

		return result
	}

	result.Bytes = int64(len(data))
	sum := sha3.Sum256(data)
	result.Digest = hex.EncodeToString(sum[:])

	if e.scanner != nil {
		findings, err := e.scanner(data)
		if err != nil {
			e.logger.Debug("metadata scan failed", "path", target.Path, "error", err)
		}
		result.Exif = findings
	}

	tally.succeed()
	e.logger.Info("downloaded image",
		"url", target.Descriptor.RemoteURL,
		"path", target.Path,
		"bytes", result.Bytes,
		"index", index+1,
		"total", total,
	)

	return result
}
