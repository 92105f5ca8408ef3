package model

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ImageDescriptor describes one downloadable image discovered in a tag
// listing. Descriptors are immutable once constructed from the API response;
// the gallery fetcher produces the full list up front and the download
// executor consumes it exactly once.
type ImageDescriptor struct {
	// RemoteURL is the absolute URL of the image binary,
	// e.g. "https://i.imgur.com/a1B2c3D.jpg".
	RemoteURL string `json:"remote_url"`

	// Filename is the suggested local filename, derived from the remote
	// URL's last path segment or from the gallery post identifier.
	// Never empty.
	Filename string `json:"filename"`

	// Ordinal is the zero-based position of the image within the tag
	// result set. It is used for directory and file naming when no name
	// can be derived and to disambiguate colliding filenames.
	Ordinal int `json:"ordinal"`

	// GalleryID is the identifier of the gallery post that owns the image.
	GalleryID string `json:"gallery_id,omitempty"`

	// GalleryIndex is the zero-based position of the image within its
	// owning gallery.
	GalleryIndex int `json:"gallery_index"`

	// GallerySize is the total number of images in the owning gallery.
	// A value greater than one means the image belongs to a multi-image
	// album and is placed in its own subdirectory of the run output root.
	GallerySize int `json:"gallery_size"`

	// ContentType is the MIME type reported by the API for this image,
	// e.g. "image/jpeg". May be empty when the API omits it.
	ContentType string `json:"content_type,omitempty"`
}

// DeriveFilename derives a local filename for an image.
// It prefers the last path segment of the remote URL, falls back to the
// gallery post identifier, and finally to the zero-padded ordinal so the
// result is never empty.
func DeriveFilename(remoteURL, galleryID string, ordinal int) string {
	if u, err := url.Parse(remoteURL); err == nil {
		base := path.Base(u.Path)
		if base != "" && base != "." && base != "/" {
			return base
		}
	}

	if galleryID != "" {
		return galleryID
	}

	return fmt.Sprintf("%04d", ordinal)
}

// IsImage reports whether the descriptor's content type is an image type.
// Descriptors with an empty content type are assumed to be images because
// the API occasionally omits the field for direct image posts.
func (d ImageDescriptor) IsImage() bool {
	if d.ContentType == "" {
		return true
	}
	return strings.HasPrefix(d.ContentType, "image/")
}
