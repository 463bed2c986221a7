// Package testsupport provides shared helpers for package tests: temp-dir
// scoped configs, deterministic synthetic images, and index store setup.
package testsupport

import (
	"path/filepath"
	"testing"

	"photodelta/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// Thresholds keep their defaults; tests override via options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.IndexDir = filepath.Join(base, "index")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Matching.Progress = false

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithMatching replaces the matching thresholds on the test config.
func WithMatching(m config.Matching) ConfigOption {
	return func(c *config.Config) {
		c.Matching = m
	}
}

// WithIndexWorkers overrides the reconcile worker count.
func WithIndexWorkers(n int) ConfigOption {
	return func(c *config.Config) {
		c.Matching.IndexWorkers = n
	}
}
