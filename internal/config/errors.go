package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and LookupCredential()
// and provide specific information about what is wrong with the input.
// They are package-level sentinels so callers can match with errors.Is()
// while still getting a human-readable message.
var (
	// ErrTagRequired is returned when no gallery tag is specified.
	ErrTagRequired = errors.New("no tag specified: provide one with --tag")

	// ErrInvalidTag is returned when the tag contains characters outside
	// the platform's tag-name syntax.
	ErrInvalidTag = errors.New("invalid tag: only letters, digits, '-' and '_' are allowed")

	// ErrModeRequired is returned when no download mode is specified.
	ErrModeRequired = errors.New("no mode specified: provide --mode sequential or --mode threaded")

	// ErrInvalidMode is returned when the mode is neither "sequential"
	// nor "threaded".
	ErrInvalidMode = errors.New(`invalid mode: must be "sequential" or "threaded"`)

	// ErrThreadsWithSequential is returned when --threads is combined
	// with sequential mode, where it has no effect.
	ErrThreadsWithSequential = errors.New("invalid flag combination: --threads only applies to --mode threaded")

	// ErrInvalidThreadCount is returned when the thread count is below one.
	// A pool of zero workers would never download anything.
	ErrInvalidThreadCount = errors.New("invalid thread count: must be at least 1")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxImageBytes is returned when the image size cap is
	// negative. Use 0 to keep the default limit.
	ErrInvalidMaxImageBytes = errors.New("invalid max image size: must be non-negative")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("no output directory: provide one with --output-dir")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoCredential is returned when neither credential environment
	// variable is set. The run aborts before any network call.
	ErrNoCredential = errors.New("missing credential: set IMGUR_CLIENT_ID to your Imgur API client ID")
)
