package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"photodelta/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			if exists {
				fmt.Fprintf(out, "Config file: %s\n", path)
			} else {
				fmt.Fprintln(out, "Config file: (defaults, no file found)")
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Setting", "Value"},
				[][]string{
					{"index_dir", cfg.Paths.IndexDir},
					{"output_dir", cfg.Paths.OutputDir},
					{"log_dir", cfg.Paths.LogDir},
					{"max_side", fmt.Sprintf("%d", cfg.Matching.MaxSide)},
					{"phash_max_distance", fmt.Sprintf("%d", cfg.Matching.HashMaxDistance)},
					{"min_shared_chunks", fmt.Sprintf("%d", cfg.Matching.MinSharedChunks)},
					{"max_candidates", fmt.Sprintf("%d", cfg.Matching.MaxCandidates)},
					{"orb_features", fmt.Sprintf("%d", cfg.Matching.Features)},
					{"orb_min_matches", fmt.Sprintf("%d", cfg.Matching.MinGoodMatches)},
					{"orb_min_inliers", fmt.Sprintf("%d", cfg.Matching.MinInliers)},
					{"index_workers", fmt.Sprintf("%d", cfg.Matching.IndexWorkers)},
					{"dcraw_binary", cfg.Tools.DcrawBinary},
					{"log_format", cfg.Logging.Format},
					{"log_level", cfg.Logging.Level},
				},
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
