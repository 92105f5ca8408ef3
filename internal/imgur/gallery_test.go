package imgur

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// galleryFixture is a tag listing with three galleries: two single-image
// posts and one two-image album, four downloadable images in total.
const galleryFixture = `{
  "data": {
    "name": "astronomy",
    "items": [
      {"id": "g1", "title": "first", "link": "https://i.imgur.com/aaa111.jpg", "is_album": false, "type": "image/jpeg"},
      {"id": "g2", "title": "second", "link": "https://i.imgur.com/bbb222.png", "is_album": false, "type": "image/png"},
      {"id": "g3", "title": "third", "is_album": true, "images_count": 2, "images": [
        {"id": "c1", "link": "https://i.imgur.com/ccc333.jpg", "type": "image/jpeg"},
        {"id": "c2", "link": "https://i.imgur.com/ddd444.png", "type": "image/png"}
      ]}
    ]
  },
  "success": true,
  "status": 200
}`

// newGalleryServer starts a fake tag endpoint serving the given body for
// the named tag.
func newGalleryServer(t *testing.T, tag, body string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/3/gallery/t/"+tag, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body)) //nolint:errcheck
	})

	return httptest.NewServer(mux)
}

// TestClientFetchTaggedImages tests the tag listing call and its error
// mapping.
func TestClientFetchTaggedImages(t *testing.T) {
	t.Parallel()

	t.Run("returns descriptors in listing order", func(t *testing.T) {
		t.Parallel()

		server := newGalleryServer(t, "astronomy", galleryFixture)
		defer server.Close()

		client, err := NewClient("test-client", WithBaseURL(server.URL))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		descriptors, err := client.FetchTaggedImages(context.Background(), "astronomy")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(descriptors) != 4 {
			t.Fatalf("expected 4 descriptors, got %d", len(descriptors))
		}

		wantURLs := []string{
			"https://i.imgur.com/aaa111.jpg",
			"https://i.imgur.com/bbb222.png",
			"https://i.imgur.com/ccc333.jpg",
			"https://i.imgur.com/ddd444.png",
		}
		for i, d := range descriptors {
			if d.RemoteURL != wantURLs[i] {
				t.Errorf("descriptor %d: expected URL %q, got %q", i, wantURLs[i], d.RemoteURL)
			}
			if d.Ordinal != i {
				t.Errorf("descriptor %d: expected ordinal %d, got %d", i, i, d.Ordinal)
			}
		}

		if descriptors[0].GallerySize != 1 || descriptors[1].GallerySize != 1 {
			t.Error("expected single-image posts to report gallery size 1")
		}
		if descriptors[2].GallerySize != 2 || descriptors[3].GallerySize != 2 {
			t.Error("expected album images to report gallery size 2")
		}
		if descriptors[2].GalleryIndex != 0 || descriptors[3].GalleryIndex != 1 {
			t.Error("expected album images to carry their in-album index")
		}
		if descriptors[2].GalleryID != "g3" || descriptors[3].GalleryID != "g3" {
			t.Error("expected album images to share the album gallery ID")
		}
		if descriptors[0].Filename != "aaa111.jpg" {
			t.Errorf("expected derived filename 'aaa111.jpg', got %q", descriptors[0].Filename)
		}
	})

	t.Run("sends credential on the listing request", func(t *testing.T) {
		t.Parallel()

		var gotAuth string
		mux := http.NewServeMux()
		mux.HandleFunc("/3/gallery/t/astronomy", func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(galleryFixture)) //nolint:errcheck
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client, err := NewClient("secret-id", WithBaseURL(server.URL))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		if _, err := client.FetchTaggedImages(context.Background(), "astronomy"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotAuth != "Client-ID secret-id" {
			t.Errorf("expected Authorization 'Client-ID secret-id', got %q", gotAuth)
		}
	})

	t.Run("rejects empty tag without a request", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			_, _ = w.Write([]byte(galleryFixture)) //nolint:errcheck
		}))
		defer server.Close()

		client, err := NewClient("test-client", WithBaseURL(server.URL))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		if _, err := client.FetchTaggedImages(context.Background(), "   "); !errors.Is(err, ErrEmptyTag) {
			t.Errorf("expected ErrEmptyTag, got %v", err)
		}
		if requests.Load() != 0 {
			t.Errorf("expected no HTTP requests, observed %d", requests.Load())
		}
	})

	t.Run("maps 401 to AuthError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}))
		defer server.Close()

		client, err := NewClient("bad-credential", WithBaseURL(server.URL))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		_, err = client.FetchTaggedImages(context.Background(), "astronomy")

		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected *AuthError, got %v", err)
		}
		if authErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", authErr.StatusCode)
		}
	})

	t.Run("maps 403 to AuthError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer server.Close()

		client, err := NewClient("bad-credential", WithBaseURL(server.URL))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		_, err = client.FetchTaggedImages(context.Background(), "astronomy")

		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected *AuthError, got %v", err)
		}
		if authErr.StatusCode != http.StatusForbidden {
			t.Errorf("expected status 403, got %d", authErr.StatusCode)
		}
	})

	t.Run("maps 404 to NotFoundError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}))
		defer server.Close()

		client, err := NewClient("test-client", WithBaseURL(server.URL))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		_, err = client.FetchTaggedImages(context.Background(), "no-such-tag")

		var notFoundErr *NotFoundError
		if !errors.As(err, &notFoundErr) {
			t.Fatalf("expected *NotFoundError, got %v", err)
		}
		if notFoundErr.Tag != "no-such-tag" {
			t.Errorf("expected tag 'no-such-tag', got %q", notFoundErr.Tag)
		}
	})

	t.Run("maps empty item list to NotFoundError", func(t *testing.T) {
		t.Parallel()

		server := newGalleryServer(t, "empty", `{"data": {"name": "empty", "items": []}, "success": true, "status": 200}`)
		defer server.Close()

		client, err := NewClient("test-client", WithBaseURL(server.URL))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		_, err = client.FetchTaggedImages(context.Background(), "empty")

		var notFoundErr *NotFoundError
		if !errors.As(err, &notFoundErr) {
			t.Fatalf("expected *NotFoundError, got %v", err)
		}
	})

	t.Run("maps malformed JSON to TransportError", func(t *testing.T) {
		t.Parallel()

		server := newGalleryServer(t, "broken", `{"data": {`)
		defer server.Close()

		client, err := NewClient("test-client", WithBaseURL(server.URL))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		_, err = client.FetchTaggedImages(context.Background(), "broken")

		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			t.Fatalf("expected *TransportError, got %v", err)
		}
	})

	t.Run("maps connection failure to TransportError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		baseURL := server.URL
		server.Close()

		client, err := NewClient("test-client", WithBaseURL(baseURL))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		_, err = client.FetchTaggedImages(context.Background(), "astronomy")

		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			t.Fatalf("expected *TransportError, got %v", err)
		}
	})

	t.Run("maps unexpected status to TransportError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer server.Close()

		client, err := NewClient("test-client", WithBaseURL(server.URL))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		_, err = client.FetchTaggedImages(context.Background(), "astronomy")

		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			t.Fatalf("expected *TransportError, got %v", err)
		}
	})

	t.Run("skips entries outside accepted types", func(t *testing.T) {
		t.Parallel()

		const fixture = `{
  "data": {
    "name": "mixed",
    "items": [
      {"id": "v1", "link": "https://i.imgur.com/video.mp4", "is_album": false, "type": "video/mp4"},
      {"id": "a1", "is_album": true, "images": [
        {"id": "m1", "link": "https://i.imgur.com/clip.mp4", "type": "video/mp4"},
        {"id": "m2", "link": "https://i.imgur.com/photo.jpg", "type": "image/jpeg"}
      ]}
    ]
  },
  "success": true,
  "status": 200
}`
		server := newGalleryServer(t, "mixed", fixture)
		defer server.Close()

		client, err := NewClient("test-client", WithBaseURL(server.URL))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		descriptors, err := client.FetchTaggedImages(context.Background(), "mixed")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(descriptors) != 1 {
			t.Fatalf("expected 1 descriptor, got %d", len(descriptors))
		}
		if descriptors[0].RemoteURL != "https://i.imgur.com/photo.jpg" {
			t.Errorf("expected the jpeg to survive filtering, got %q", descriptors[0].RemoteURL)
		}
		if descriptors[0].GallerySize != 1 {
			t.Errorf("expected gallery size to count accepted images only, got %d", descriptors[0].GallerySize)
		}
	})

	t.Run("filtered-out listing maps to NotFoundError", func(t *testing.T) {
		t.Parallel()

		const fixture = `{
  "data": {
    "name": "videos",
    "items": [
      {"id": "v1", "link": "https://i.imgur.com/only.mp4", "is_album": false, "type": "video/mp4"}
    ]
  },
  "success": true,
  "status": 200
}`
		server := newGalleryServer(t, "videos", fixture)
		defer server.Close()

		client, err := NewClient("test-client", WithBaseURL(server.URL))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		_, err = client.FetchTaggedImages(context.Background(), "videos")

		var notFoundErr *NotFoundError
		if !errors.As(err, &notFoundErr) {
			t.Fatalf("expected *NotFoundError, got %v", err)
		}
	})
}
