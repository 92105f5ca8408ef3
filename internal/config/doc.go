// Package config provides configuration structures and utilities for
// imgurgrab. It defines the options for downloading tagged galleries,
// validates command-line input before any network call, and loads optional
// YAML configuration files with per-tag overrides.
package config
