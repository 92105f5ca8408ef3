package imgur

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/imgurgrab/imgurgrab/internal/model"
)

// galleryResponse is the envelope of Imgur API v3 responses.
type galleryResponse struct {
	Data    galleryTag `json:"data"`
	Success bool       `json:"success"`
	Status  int        `json:"status"`
}

// galleryTag is the tag object returned by the tag endpoint.
type galleryTag struct {
	Name  string        `json:"name"`
	Items []galleryItem `json:"items"`
}

// galleryItem is one gallery post: either a single image or an album
// carrying its own images array.
type galleryItem struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Link        string         `json:"link"`
	IsAlbum     bool           `json:"is_album"`
	ImagesCount int            `json:"images_count"`
	Images      []galleryImage `json:"images"`
	Type        string         `json:"type"`
}

// galleryImage is one image inside an album.
type galleryImage struct {
	ID   string `json:"id"`
	Link string `json:"link"`
	Type string `json:"type"`
}

// FetchTaggedImages issues a single GET to the tag endpoint and returns one
// descriptor per downloadable image, flattening albums and preserving the
// platform's ordering. The returned slice is fully materialized; callers
// own it and no further listing requests are made.
//
// HTTP 401 and 403 map to *AuthError, an empty result maps to
// *NotFoundError, and network failures or malformed bodies map to
// *TransportError.
func (c *Client) FetchTaggedImages(ctx context.Context, tag string) ([]model.ImageDescriptor, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, ErrEmptyTag
	}

	endpoint := fmt.Sprintf("%s/3/gallery/t/%s", c.baseURL, url.PathEscape(tag))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Tag: tag}
	case resp.StatusCode != http.StatusOK:
		return nil, &TransportError{URL: endpoint, Err: fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxListingBytes))
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: err}
	}

	var listing galleryResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, &TransportError{URL: endpoint, Err: fmt.Errorf("malformed gallery response: %w", err)}
	}

	descriptors := c.flatten(listing.Data.Items)
	if len(descriptors) == 0 {
		return nil, &NotFoundError{Tag: tag}
	}

	c.logger.Debug("fetched tag listing",
		"tag", tag,
		"galleries", len(listing.Data.Items),
		"images", len(descriptors))

	return descriptors, nil
}

// flatten converts gallery items into a flat descriptor list. Albums
// contribute one descriptor per accepted image; plain image posts
// contribute themselves. Entries outside the accepted MIME types are
// skipped. Ordinals are assigned in listing order and are unique across
// the whole run.
func (c *Client) flatten(items []galleryItem) []model.ImageDescriptor {
	descriptors := make([]model.ImageDescriptor, 0, len(items))

	ordinal := 0
	for _, item := range items {
		if item.IsAlbum || len(item.Images) > 0 {
			accepted := make([]galleryImage, 0, len(item.Images))
			for _, img := range item.Images {
				if img.Link == "" || !c.accepts(img.Type) {
					c.logger.Debug("skipping album entry", "gallery", item.ID, "type", img.Type)
					continue
				}
				accepted = append(accepted, img)
			}

			for idx, img := range accepted {
				descriptors = append(descriptors, model.ImageDescriptor{
					RemoteURL:    img.Link,
					Filename:     model.DeriveFilename(img.Link, item.ID, ordinal),
					Ordinal:      ordinal,
					GalleryID:    item.ID,
					GalleryIndex: idx,
					GallerySize:  len(accepted),
					ContentType:  img.Type,
				})
				ordinal++
			}
			continue
		}

		if item.Link == "" || !c.accepts(item.Type) {
			c.logger.Debug("skipping gallery entry", "gallery", item.ID, "type", item.Type)
			continue
		}

		descriptors = append(descriptors, model.ImageDescriptor{
			RemoteURL:    item.Link,
			Filename:     model.DeriveFilename(item.Link, item.ID, ordinal),
			Ordinal:      ordinal,
			GalleryID:    item.ID,
			GalleryIndex: 0,
			GallerySize:  1,
			ContentType:  item.Type,
		})
		ordinal++
	}

	return descriptors
}

// accepts reports whether the MIME type is downloadable. An empty type is
// accepted because direct image posts occasionally omit it.
func (c *Client) accepts(contentType string) bool {
	if contentType == "" {
		return true
	}

	for _, t := range c.acceptedTypes {
		if t == contentType {
			return true
		}
	}

	return false
}
