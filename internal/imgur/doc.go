// Package imgur implements the gallery fetcher: a minimal client for the
// Imgur API v3 tag endpoint and the image CDN.
//
// The client injects the Client-ID credential into the Authorization header
// of every request, fetches one page of gallery items for a tag, and
// flattens albums into a flat, order-preserving list of image descriptors.
// Image binaries are retrieved with a size-capped read. Traffic can
// optionally be routed through a SOCKS5 proxy.
package imgur
