package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/imgurgrab/imgurgrab/internal/config"
	"github.com/imgurgrab/imgurgrab/internal/database"
	"github.com/imgurgrab/imgurgrab/internal/download"
	"github.com/imgurgrab/imgurgrab/internal/imgur"
	"github.com/imgurgrab/imgurgrab/internal/inspect"
	"github.com/imgurgrab/imgurgrab/internal/log"
	"github.com/imgurgrab/imgurgrab/internal/model"
	"github.com/imgurgrab/imgurgrab/internal/report"
	"github.com/spf13/cobra"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download all images publicly posted under a gallery tag",
		Long: `Fetch lists every image publicly posted under an Imgur gallery tag and
downloads them into a run-scoped directory.

The gallery listing is materialized with a single API call, then each
image is downloaded either one at a time (--mode sequential) or with a
fixed pool of workers (--mode threaded). Failures of individual images
are recorded in the report but never abort the run.

The Imgur API client ID is read from the IMGUR_CLIENT_ID environment
variable before any network call is made.

Examples:
  # Download the "astronomy" tag one image at a time
  imgurgrab fetch --tag astronomy --mode sequential

  # Download with the default pool of 10 workers
  imgurgrab fetch --tag astronomy --mode threaded

  # Download with a custom worker count
  imgurgrab fetch --tag astronomy --mode threaded --threads 4

  # Write a JSON report instead of the human-readable one
  imgurgrab fetch --tag astronomy --mode threaded --json -o report.json

  # Route all traffic through a SOCKS5 proxy
  imgurgrab fetch --tag astronomy --mode threaded --proxy 127.0.0.1:9050

Configuration file (.imgurgrab) example:
  defaults:
    mode: threaded
    threads: 10
  tags:
    astronomy:
      threads: 4
      exif: true`,
		Args: cobra.NoArgs,
		RunE: runFetchCmd,
	}

	// Gallery selection flags
	cmd.Flags().StringP("tag", "t", "",
		"Gallery tag to download (required)")
	cmd.Flags().String("mode", "",
		`Download strategy: "sequential" or "threaded" (required)`)
	cmd.Flags().IntP("threads", "n", config.DefaultThreads,
		"Worker pool size for threaded mode")

	// Download behavior flags
	cmd.Flags().StringP("output-dir", "d", config.DefaultOutputDir,
		"Directory under which the run output root is created")
	cmd.Flags().DurationP("timeout", "T", config.DefaultTimeout,
		"Timeout for each API and image request")
	cmd.Flags().StringP("proxy", "x", "",
		"Route traffic through a SOCKS5 proxy at specified address (e.g., 127.0.0.1:9050)")
	cmd.Flags().BoolP("exif", "e", false,
		"Inspect downloaded images for EXIF metadata (GPS, device, authorship)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .imgurgrab in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Skip recording the run in the history database")

	return cmd
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, _ []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential masking
	cfg.Verbose = getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runFetch(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.Tag, err = cmd.Flags().GetString("tag")
	if err != nil {
		return nil, err
	}

	cfg.Mode, err = cmd.Flags().GetString("mode")
	if err != nil {
		return nil, err
	}

	cfg.Threads, err = cmd.Flags().GetInt("threads")
	if err != nil {
		return nil, err
	}
	cfg.ThreadsSet = cmd.Flags().Changed("threads")

	cfg.OutputDir, err = cmd.Flags().GetString("output-dir")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.ProxyAddress, err = cmd.Flags().GetString("proxy")
	if err != nil {
		return nil, err
	}

	cfg.Exif, err = cmd.Flags().GetBool("exif")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load defaults and per-tag overrides from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file is found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.FileConfig, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	applyTagConfig(cfg, cmd)

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.NoHistory, err = cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}

	// Run history always lands in the XDG data directory
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// applyTagConfig overlays file-based settings onto cfg.
// Explicit CLI flags always win; file settings only fill in values the
// user did not pass on the command line.
func applyTagConfig(cfg *config.Config, cmd *cobra.Command) {
	if cfg.FileConfig == nil || cfg.Tag == "" {
		return
	}

	tagCfg := cfg.FileConfig.GetTagConfig(cfg.Tag)

	if cfg.Mode == "" && tagCfg.Mode != "" {
		cfg.Mode = tagCfg.Mode
	}
	if !cmd.Flags().Changed("threads") && tagCfg.Threads > 0 {
		cfg.Threads = tagCfg.Threads
	}
	if !cmd.Flags().Changed("output-dir") && tagCfg.OutputDir != "" {
		cfg.OutputDir = tagCfg.OutputDir
	}
	if !cmd.Flags().Changed("proxy") && tagCfg.Proxy != "" {
		cfg.ProxyAddress = tagCfg.Proxy
	}
	if tagCfg.UserAgent != "" {
		cfg.UserAgent = tagCfg.UserAgent
	}
	if tagCfg.Exif {
		cfg.Exif = true
	}
	if len(tagCfg.Types) > 0 {
		cfg.AcceptedTypes = tagCfg.Types
	}
}

// runFetch executes the download run.
func runFetch(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// The credential check runs before any network traffic so a
	// misconfigured environment fails fast.
	clientID, err := config.LookupCredential()
	if err != nil {
		return err
	}

	mode, err := cfg.ParseMode()
	if err != nil {
		return err
	}

	logger.Info("starting fetch",
		"tag", cfg.Tag,
		"mode", mode.String(),
		"threads", cfg.Threads,
		"outputDir", cfg.OutputDir,
	)

	client, err := newImgurClient(clientID, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	fmt.Printf("Fetching gallery listing for tag %q...\n", cfg.Tag)

	descriptors, err := client.FetchTaggedImages(ctx, cfg.Tag)
	if err != nil {
		return err
	}

	run := model.NewRunContext(cfg.Tag, mode, cfg.Threads, cfg.OutputDir, time.Now())

	fmt.Printf("Found %d image(s). Downloading to %s...\n\n", len(descriptors), run.OutputRoot)

	executorOpts := []download.Option{download.WithLogger(logger)}
	if cfg.Exif {
		executorOpts = append(executorOpts, download.WithMetadataScanner(inspect.Scan))
	}
	executor := download.NewExecutor(client, executorOpts...)

	runReport, err := executor.DownloadAll(ctx, run, descriptors)
	if err != nil {
		return err
	}

	fmt.Printf("Download completed in %s: %d succeeded, %d failed\n\n",
		runReport.Elapsed.Round(time.Millisecond), runReport.Succeeded, runReport.Failed)

	// Generate and output report
	if err := outputReport(cfg, runReport); err != nil {
		logger.Error("report failed", "tag", cfg.Tag, "error", err)
	}

	// Record the run in the history database
	if err := saveRunReport(ctx, cfg, runReport, logger); err != nil {
		logger.Error("failed to save run history", "tag", cfg.Tag, "error", err)
	}

	// Per-image failures are reported above, not turned into a non-zero
	// exit: the run itself completed.
	return nil
}

// newImgurClient builds the API client from the run configuration.
func newImgurClient(clientID string, cfg *config.Config, logger *slog.Logger) (*imgur.Client, error) {
	opts := []imgur.ClientOption{
		imgur.WithTimeout(cfg.Timeout),
		imgur.WithUserAgent(cfg.UserAgent),
		imgur.WithAcceptedTypes(cfg.AcceptedTypes),
		imgur.WithLogger(logger),
	}
	if cfg.MaxImageBytes > 0 {
		opts = append(opts, imgur.WithMaxImageBytes(cfg.MaxImageBytes))
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, imgur.WithSOCKS5Proxy(cfg.ProxyAddress))
	}

	return imgur.NewClient(clientID, opts...)
}

// outputReport outputs the download report in the requested format.
func outputReport(cfg *config.Config, runReport *model.DownloadReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports reveal what was downloaded and from where, so they are
		// only readable by the owner.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full report with version envelope)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(runReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(runReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(runReport)
	return err
}

// saveRunReport records the run in the history database.
// If history is disabled, this function is a no-op.
func saveRunReport(ctx context.Context, cfg *config.Config, runReport *model.DownloadReport, logger *slog.Logger) error {
	if cfg.NoHistory {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	if err := db.SaveRun(ctx, runReport); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Info("run saved to history", "runID", runReport.RunID, "dir", cfg.DBDir)
	return nil
}
