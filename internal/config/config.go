package config

import (
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/adrg/xdg"

	"github.com/imgurgrab/imgurgrab/internal/model"
)

// Default configuration values. These mirror the platform's practical
// limits and the tool's historical defaults where applicable.
const (
	// DefaultThreads is the worker pool size for threaded downloads.
	// Ten workers saturate a typical home connection without tripping
	// the platform's abuse detection.
	DefaultThreads = 10

	// DefaultTimeout is the per-request timeout for API and image calls.
	// The gallery endpoint and the image CDN both respond within a few
	// seconds normally; thirty seconds accommodates slow mirrors without
	// letting a stalled server hang the run indefinitely.
	DefaultTimeout = 30 * time.Second

	// DefaultOutputDir is the directory under which run-scoped output
	// roots are created.
	DefaultOutputDir = "images"

	// DefaultUserAgent identifies imgurgrab in HTTP requests.
	DefaultUserAgent = "imgurgrab/1.0 (+https://github.com/imgurgrab/imgurgrab)"

	// DefaultMaxImageBytes limits the size of a single downloaded image.
	// Responses larger than this are rejected to prevent memory
	// exhaustion from mislabeled or malicious content.
	DefaultMaxImageBytes = 50 * 1024 * 1024 // 50MB

	// AppName is the application name used for XDG directory paths.
	AppName = "imgurgrab"
)

// DefaultAcceptedTypes lists the image MIME types downloaded by default.
// Gallery items of any other type (videos, animated posts) are skipped.
// The set can be overridden per tag in the configuration file.
func DefaultAcceptedTypes() []string {
	return []string{"image/jpeg", "image/png"}
}

// CredentialEnvVar is the environment variable holding the Imgur API
// client ID used in the Authorization header.
const CredentialEnvVar = "IMGUR_CLIENT_ID"

// legacyCredentialEnvVar is the lowercase spelling of the credential
// variable, accepted as a fallback.
const legacyCredentialEnvVar = "imgur_client_id"

// tagPattern matches valid gallery tag names: letters, digits,
// underscores and hyphens.
var tagPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Config holds all configuration options for a download run.
// It is populated from CLI flags (plus an optional YAML file) and passed
// through the application via dependency injection rather than global state.
type Config struct {
	// Tag is the gallery tag to download. Required.
	Tag string

	// Mode is the raw execution strategy name ("sequential" or
	// "threaded") as given on the command line. Required.
	Mode string

	// Threads is the fixed worker pool size for threaded mode.
	// Ignored in sequential mode.
	Threads int

	// ThreadsSet records whether --threads was given explicitly.
	// Passing it together with sequential mode is a usage error.
	ThreadsSet bool

	// OutputDir is the directory under which the run-scoped output root
	// is created.
	OutputDir string

	// Timeout is the per-request timeout for API and image downloads.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxImageBytes is the maximum accepted size of a single image.
	// Zero means use the default.
	MaxImageBytes int64

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	// All API and image traffic is routed through it when set.
	ProxyAddress string

	// AcceptedTypes lists the image MIME types to download.
	// Empty means use DefaultAcceptedTypes.
	AcceptedTypes []string

	// Exif enables EXIF metadata inspection of downloaded images.
	Exif bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .imgurgrab in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// FileConfig holds defaults and per-tag overrides loaded from the
	// configuration file. Populated by LoadConfigFile; may be nil.
	FileConfig *File

	// DBDir is the directory for the run history database.
	// Defaults to the XDG data directory.
	DBDir string

	// NoHistory disables saving the run to the history database.
	NoHistory bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe defaults; required fields (Tag, Mode) are
// left empty and enforced by Validate.
func NewConfig() *Config {
	return &Config{
		Threads:       DefaultThreads,
		OutputDir:     DefaultOutputDir,
		Timeout:       DefaultTimeout,
		UserAgent:     DefaultUserAgent,
		MaxImageBytes: DefaultMaxImageBytes,
		AcceptedTypes: DefaultAcceptedTypes(),
		DBDir:         XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for imgurgrab.
// On Linux: ~/.local/share/imgurgrab
// On macOS: ~/Library/Application Support/imgurgrab
// On Windows: %LOCALAPPDATA%\imgurgrab
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for imgurgrab.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ParseMode converts the raw mode name into a model.Mode.
// Call Validate first; after successful validation this cannot fail.
func (c *Config) ParseMode() (model.Mode, error) {
	return model.ParseMode(c.Mode)
}

// Validate checks if the configuration is valid.
// It returns a specific sentinel error describing the first problem found,
// so callers can match with errors.Is. This is called once after CLI
// parsing, before any network call.
func (c *Config) Validate() error {
	if c.Tag == "" {
		return ErrTagRequired
	}

	if !tagPattern.MatchString(c.Tag) {
		return ErrInvalidTag
	}

	if c.Mode == "" {
		return ErrModeRequired
	}

	mode, err := model.ParseMode(c.Mode)
	if err != nil {
		return ErrInvalidMode
	}

	// --threads only applies to the threaded strategy
	if mode == model.ModeSequential && c.ThreadsSet {
		return ErrThreadsWithSequential
	}

	if c.Threads < 1 {
		return ErrInvalidThreadCount
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxImageBytes < 0 {
		return ErrInvalidMaxImageBytes
	}

	if c.OutputDir == "" {
		return ErrNoOutputDir
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// LookupCredential reads the Imgur API client ID from the environment.
// It checks CredentialEnvVar first and falls back to the lowercase
// spelling. Returns ErrNoCredential when neither is set, so the process
// can abort before any network call is attempted.
func LookupCredential() (string, error) {
	if v := os.Getenv(CredentialEnvVar); v != "" {
		return v, nil
	}
	if v := os.Getenv(legacyCredentialEnvVar); v != "" {
		return v, nil
	}
	return "", ErrNoCredential
}
