package imgur

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// DefaultBaseURL is the Imgur API v3 endpoint.
const DefaultBaseURL = "https://api.imgur.com"

const (
	defaultTimeout       = 30 * time.Second
	defaultUserAgent     = "imgurgrab/1.0 (+https://github.com/imgurgrab/imgurgrab)"
	defaultMaxImageBytes = 50 * 1024 * 1024

	// maxListingBytes caps the tag listing response body. Gallery listings
	// are small JSON documents; anything larger is treated as malformed.
	maxListingBytes = 10 * 1024 * 1024
)

// Client is an Imgur API client scoped to the needs of a download run:
// one tag listing call plus one call per image binary.
type Client struct {
	httpClient    *http.Client
	clientID      string
	baseURL       string
	userAgent     string
	proxyAddress  string
	timeout       time.Duration
	maxImageBytes int64
	acceptedTypes []string
	logger        *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API endpoint. Tests use this to point the
// client at a local fake server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithMaxImageBytes caps the size of a single image download.
func WithMaxImageBytes(n int64) ClientOption {
	return func(c *Client) {
		c.maxImageBytes = n
	}
}

// WithSOCKS5Proxy routes all traffic through the SOCKS5 proxy at the given
// host:port address.
func WithSOCKS5Proxy(address string) ClientOption {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithAcceptedTypes restricts descriptors to the given MIME types.
func WithAcceptedTypes(types []string) ClientOption {
	return func(c *Client) {
		c.acceptedTypes = types
	}
}

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates an Imgur client authenticated with the given Client-ID
// credential. The credential is injected into the Authorization header of
// every outgoing request and must not be empty.
func NewClient(clientID string, opts ...ClientOption) (*Client, error) {
	if clientID == "" {
		return nil, ErrMissingClientID
	}

	c := &Client{
		clientID:      clientID,
		baseURL:       DefaultBaseURL,
		userAgent:     defaultUserAgent,
		timeout:       defaultTimeout,
		maxImageBytes: defaultMaxImageBytes,
		acceptedTypes: []string{"image/jpeg", "image/png"},
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	httpClient, err := c.newHTTPClient()
	if err != nil {
		return nil, err
	}
	c.httpClient = httpClient

	return c, nil
}

// newHTTPClient builds the underlying HTTP client, optionally routing
// connections through a SOCKS5 proxy.
func (c *Client) newHTTPClient() (*http.Client, error) {
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	}

	if c.proxyAddress != "" {
		if !isValidProxyAddress(c.proxyAddress) {
			return nil, ErrInvalidProxyAddress
		}

		dialer, err := proxy.SOCKS5("tcp", c.proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}

		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}

	return &http.Client{
		Transport: &headerInjectingTransport{
			base:      transport,
			clientID:  c.clientID,
			userAgent: c.userAgent,
		},
		Timeout: c.timeout,
	}, nil
}

// DownloadImage fetches the raw bytes of a single image. The read is capped
// at the configured maximum image size; an oversized body fails the item
// instead of exhausting memory.
func (c *Client) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, &TransportError{URL: imageURL, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: imageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{URL: imageURL, Err: fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)}
	}

	// Read one byte past the cap so oversized bodies are detectable.
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxImageBytes+1))
	if err != nil {
		return nil, &TransportError{URL: imageURL, Err: err}
	}
	if int64(len(data)) > c.maxImageBytes {
		return nil, &TransportError{URL: imageURL, Err: ErrImageTooLarge}
	}

	c.logger.Debug("downloaded image", "url", imageURL, "bytes", len(data))

	return data, nil
}

// headerInjectingTransport wraps an http.RoundTripper to inject the
// Authorization credential and User-Agent header into every request.
type headerInjectingTransport struct {
	base      http.RoundTripper
	clientID  string
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the caller's copy.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Client-ID "+t.clientID)
	clone.Header.Set("User-Agent", t.userAgent)

	return t.base.RoundTrip(clone)
}

// isValidProxyAddress reports whether the address is a host:port pair with
// a port in the valid range.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}

	n, err := strconv.Atoi(port)

	return err == nil && n >= 1 && n <= 65535
}
