package imgur

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingClientID is returned when a client is constructed without
	// an API credential.
	ErrMissingClientID = errors.New("imgur: missing client ID credential")

	// ErrEmptyTag is returned when a gallery listing is requested for an
	// empty tag.
	ErrEmptyTag = errors.New("imgur: tag must not be empty")

	// ErrInvalidProxyAddress is returned when the SOCKS5 proxy address is
	// not a valid host:port pair.
	ErrInvalidProxyAddress = errors.New("imgur: invalid proxy address format (expected host:port)")

	// ErrImageTooLarge is returned when an image body exceeds the
	// configured size cap.
	ErrImageTooLarge = errors.New("imgur: image exceeds the configured size limit")
)

// AuthError indicates the platform rejected the supplied credential.
// It maps HTTP 401 and 403 responses from the tag endpoint.
type AuthError struct {
	// StatusCode is the HTTP status the platform returned.
	StatusCode int
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("imgur: credential rejected (HTTP %d)", e.StatusCode)
}

// NotFoundError indicates a tag listing produced no downloadable images,
// either because the platform returned 404 or because every returned item
// was filtered out.
type NotFoundError struct {
	// Tag is the gallery tag that produced no results.
	Tag string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("imgur: no images found for tag %q", e.Tag)
}

// TransportError indicates a network-level failure, an unexpected HTTP
// status, or a malformed response body.
type TransportError struct {
	// URL is the request URL that failed.
	URL string
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("imgur: request to %s failed: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error so callers can use errors.Is and
// errors.As on the cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}
