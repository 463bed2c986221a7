package config

import (
	"fmt"

	"photodelta/internal/phash"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.IndexDir == "" {
		return fmt.Errorf("paths.index_dir is required")
	}
	if c.Paths.OutputDir == "" {
		return fmt.Errorf("paths.output_dir is required")
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	if m.MaxSide < 64 {
		return fmt.Errorf("matching.max_side must be at least 64, got %d", m.MaxSide)
	}
	if m.HashMaxDistance < 0 || m.HashMaxDistance > 64 {
		return fmt.Errorf("matching.phash_max_distance must be in 0..64, got %d", m.HashMaxDistance)
	}
	if m.MinSharedChunks < 1 || m.MinSharedChunks > phash.ChunkCount {
		return fmt.Errorf("matching.min_shared_chunks must be in 1..%d, got %d", phash.ChunkCount, m.MinSharedChunks)
	}
	if m.MaxCandidates < 1 {
		return fmt.Errorf("matching.max_candidates must be positive, got %d", m.MaxCandidates)
	}
	if m.Features < 100 {
		return fmt.Errorf("matching.orb_features must be at least 100, got %d", m.Features)
	}
	if m.MinGoodMatches < 1 {
		return fmt.Errorf("matching.orb_min_matches must be positive, got %d", m.MinGoodMatches)
	}
	if m.MinInliers < 1 {
		return fmt.Errorf("matching.orb_min_inliers must be positive, got %d", m.MinInliers)
	}
	if m.MinInliers > m.MinGoodMatches {
		return fmt.Errorf("matching.orb_min_inliers (%d) cannot exceed matching.orb_min_matches (%d)", m.MinInliers, m.MinGoodMatches)
	}
	if m.IndexWorkers < 0 {
		return fmt.Errorf("matching.index_workers cannot be negative, got %d", m.IndexWorkers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}
