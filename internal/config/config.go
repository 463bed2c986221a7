package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	IndexDir  string `toml:"index_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Matching contains the tunable thresholds of the matching engine.
type Matching struct {
	// MaxSide bounds the longer dimension of decoded rasters.
	MaxSide int `toml:"max_side"`
	// HashMaxDistance is the Hamming distance cutoff for candidates.
	HashMaxDistance int `toml:"phash_max_distance"`
	// MinSharedChunks is the prefilter strictness (1..4).
	MinSharedChunks int `toml:"min_shared_chunks"`
	// MaxCandidates bounds the shortlist per source image.
	MaxCandidates int `toml:"max_candidates"`
	// Features bounds keypoint detection per raster.
	Features int `toml:"orb_features"`
	// MinGoodMatches is the ratio-test floor for accepting a pair.
	MinGoodMatches int `toml:"orb_min_matches"`
	// MinInliers is the homography inlier floor for accepting a pair.
	MinInliers int `toml:"orb_min_inliers"`
	// IndexWorkers bounds the parallel decode+hash pool (0 = GOMAXPROCS).
	IndexWorkers int `toml:"index_workers"`
	// Progress toggles interactive progress bars.
	Progress bool `toml:"progress"`
}

// Tools contains external binary configuration.
type Tools struct {
	DcrawBinary string `toml:"dcraw_binary"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for photodelta.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Matching Matching `toml:"matching"`
	Tools    Tools    `toml:"tools"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/photodelta/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("photodelta.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.IndexDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	trimmed := strings.TrimSpace(pathValue)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", trimmed, err)
	}
	return abs, nil
}

// ExpandPath resolves ~ prefixes and relative paths for callers outside the
// package.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}
