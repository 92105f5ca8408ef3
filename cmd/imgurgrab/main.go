// Package main provides the entry point for the imgurgrab CLI.
//
// imgurgrab is a bulk downloader for publicly tagged Imgur images.
// It materializes a gallery tag listing with a single API call and
// downloads every image into a run-scoped directory tree.
//
// Usage:
//
//	imgurgrab fetch --tag <tag> --mode <sequential|threaded>
//	imgurgrab history list
//
// See --help for all available options.
package main

// main is the entry point for imgurgrab.
func main() {
	Execute()
}
