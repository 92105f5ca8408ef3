package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestLoadConfigFile tests YAML configuration file loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads defaults and tag overrides", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		content := `defaults:
  mode: threaded
  threads: 4
  outputDir: downloads
tags:
  astronomy:
    threads: 20
    exif: true
    types:
      - image/png
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cf.Defaults.Mode != "threaded" {
			t.Errorf("defaults mode = %q, expected threaded", cf.Defaults.Mode)
		}
		if cf.Defaults.Threads != 4 {
			t.Errorf("defaults threads = %d, expected 4", cf.Defaults.Threads)
		}
		if cf.Defaults.OutputDir != "downloads" {
			t.Errorf("defaults outputDir = %q, expected downloads", cf.Defaults.OutputDir)
		}

		tagCfg := cf.GetTagConfig("astronomy")
		if tagCfg.Threads != 20 {
			t.Errorf("tag threads = %d, expected 20", tagCfg.Threads)
		}
		if !tagCfg.Exif {
			t.Error("expected exif enabled for tag")
		}
		if len(tagCfg.Types) != 1 || tagCfg.Types[0] != "image/png" {
			t.Errorf("tag types = %v, expected [image/png]", tagCfg.Types)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nonexistent"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed yaml returns error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(path, []byte("tags: [not a map"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})

	t.Run("empty file yields usable config", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(path, []byte(""), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Tags == nil {
			t.Error("expected initialized Tags map")
		}
	})
}

// TestFindConfigFile tests the configuration file search order.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path is returned when it exists", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "custom.yml")
		if err := os.WriteFile(path, []byte("defaults: {}\n"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile = %q, expected %q", got, path)
		}
	})

	t.Run("missing explicit path returns empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yml")); got != "" {
			t.Errorf("FindConfigFile = %q, expected empty", got)
		}
	})
}
