// Package log provides secure logging utilities for imgurgrab.
//
// The SecureHandler wraps any slog.Handler and masks credential-bearing
// attributes before they reach the underlying handler, so the Imgur API
// client ID can never leak into log output, even at debug level.
package log
