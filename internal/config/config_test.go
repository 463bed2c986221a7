package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photodelta/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Matching.MaxSide != 900 || cfg.Matching.HashMaxDistance != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg.Matching)
	}
	if cfg.Matching.MinGoodMatches != 40 || cfg.Matching.MinInliers != 18 {
		t.Fatalf("unexpected confirmation thresholds: %+v", cfg.Matching)
	}
	if !cfg.Matching.Progress {
		t.Fatal("progress should default on")
	}
}

func TestLoadAppliesFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[matching]
max_side = 640
phash_max_distance = 6
progress = false

[tools]
dcraw_binary = "dcraw_emu"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Matching.MaxSide != 640 || cfg.Matching.HashMaxDistance != 6 {
		t.Fatalf("overrides not applied: %+v", cfg.Matching)
	}
	if cfg.Matching.Progress {
		t.Fatal("progress override not applied")
	}
	if cfg.Tools.DcrawBinary != "dcraw_emu" {
		t.Fatalf("tool override not applied: %q", cfg.Tools.DcrawBinary)
	}
	// Untouched values keep their defaults.
	if cfg.Matching.MaxCandidates != 30 {
		t.Fatalf("default lost: %+v", cfg.Matching)
	}
}

func TestLoadMissingExplicitFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("file should not exist")
	}
	if cfg.Matching.MaxSide != 900 {
		t.Fatalf("expected defaults, got %+v", cfg.Matching)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"tiny max side", func(c *config.Config) { c.Matching.MaxSide = 10 }, "max_side"},
		{"distance range", func(c *config.Config) { c.Matching.HashMaxDistance = 65 }, "phash_max_distance"},
		{"chunk range", func(c *config.Config) { c.Matching.MinSharedChunks = 5 }, "min_shared_chunks"},
		{"inliers above matches", func(c *config.Config) { c.Matching.MinInliers = 50 }, "orb_min_inliers"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateSampleParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample must load cleanly: exists=%v err=%v", exists, err)
	}
}
