package main

import (
	"testing"

	"photodelta/internal/config"
)

func TestApplyOverridesOnlyTouchesChangedFlags(t *testing.T) {
	cfg := config.Default()
	flags := runFlags{
		maxSide:         0,
		hashMaxDistance: 4,
		minInliers:      25,
		noProgress:      true,
	}
	changed := map[string]bool{
		"phash-max-distance": true,
		"orb-min-inliers":    true,
		"no-progress":        true,
	}

	applyOverrides(&cfg, flags, func(name string) bool { return changed[name] })

	if cfg.Matching.HashMaxDistance != 4 {
		t.Errorf("phash-max-distance override lost, got %d", cfg.Matching.HashMaxDistance)
	}
	if cfg.Matching.MinInliers != 25 {
		t.Errorf("orb-min-inliers override lost, got %d", cfg.Matching.MinInliers)
	}
	if cfg.Matching.Progress {
		t.Error("no-progress override lost")
	}
	if cfg.Matching.MaxSide != config.Default().Matching.MaxSide {
		t.Errorf("untouched max-side clobbered, got %d", cfg.Matching.MaxSide)
	}
	if cfg.Matching.Features != config.Default().Matching.Features {
		t.Errorf("untouched orb-features clobbered, got %d", cfg.Matching.Features)
	}
}

func TestApplyOverridesPaths(t *testing.T) {
	cfg := config.Default()
	flags := runFlags{outputDir: "/tmp/out", indexDir: "/tmp/index"}
	changed := map[string]bool{"output-dir": true, "index-dir": true}

	applyOverrides(&cfg, flags, func(name string) bool { return changed[name] })

	if cfg.Paths.OutputDir != "/tmp/out" || cfg.Paths.IndexDir != "/tmp/index" {
		t.Errorf("path overrides lost: %+v", cfg.Paths)
	}
}
