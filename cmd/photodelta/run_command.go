package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"photodelta/internal/config"
	"photodelta/internal/delta"
)

// runFlags carries every threshold override the run command accepts. Values
// are only applied when the corresponding flag was set on the command line.
type runFlags struct {
	setA string
	setB string

	outputDir string
	indexDir  string

	maxSide         int
	hashMaxDistance int
	minSharedChunks int
	maxCandidates   int
	features        int
	minGoodMatches  int
	minInliers      int
	indexWorkers    int
	noProgress      bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Index both sets and compute matches and deltas",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCfg := *cfg
			applyOverrides(&runCfg, flags, cmd.Flags().Changed)
			if err := runCfg.Validate(); err != nil {
				return err
			}
			logger, err := newLogger(&runCfg)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			progress := newProgressRenderer(&runCfg)
			res, err := delta.Run(cmd.Context(), delta.Options{
				SetA:     flags.setA,
				SetB:     flags.setB,
				Config:   &runCfg,
				Logger:   logger,
				Progress: progress.update,
			})
			progress.finish()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderRunSummary(res))
			fmt.Fprintf(out, "Artifacts written to %s\n", runCfg.Paths.OutputDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.setA, "set-a", "", "Directory root of set A")
	cmd.Flags().StringVar(&flags.setB, "set-b", "", "Directory root of set B")
	_ = cmd.MarkFlagRequired("set-a")
	_ = cmd.MarkFlagRequired("set-b")

	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Directory for the JSON artifacts")
	cmd.Flags().StringVar(&flags.indexDir, "index-dir", "", "Directory holding the persistent indexes")
	cmd.Flags().IntVar(&flags.maxSide, "max-side", 0, "Bound on the longer raster dimension")
	cmd.Flags().IntVar(&flags.hashMaxDistance, "phash-max-distance", 0, "Hamming distance cutoff for candidates")
	cmd.Flags().IntVar(&flags.minSharedChunks, "min-shared-chunks", 0, "Chunk prefilter strictness (1-4)")
	cmd.Flags().IntVar(&flags.maxCandidates, "max-candidates", 0, "Shortlist bound per source image")
	cmd.Flags().IntVar(&flags.features, "orb-features", 0, "Keypoint budget per raster")
	cmd.Flags().IntVar(&flags.minGoodMatches, "orb-min-matches", 0, "Ratio-test floor for a confirmed pair")
	cmd.Flags().IntVar(&flags.minInliers, "orb-min-inliers", 0, "Inlier floor for a confirmed pair")
	cmd.Flags().IntVar(&flags.indexWorkers, "index-workers", 0, "Parallel decode workers during indexing")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "Disable progress bars")

	return cmd
}

// applyOverrides copies set flags onto the config. The changed predicate
// reports whether a flag was given explicitly, so zero values from untouched
// flags never clobber configured thresholds.
func applyOverrides(cfg *config.Config, flags runFlags, changed func(string) bool) {
	if changed("output-dir") {
		cfg.Paths.OutputDir = flags.outputDir
	}
	if changed("index-dir") {
		cfg.Paths.IndexDir = flags.indexDir
	}
	if changed("max-side") {
		cfg.Matching.MaxSide = flags.maxSide
	}
	if changed("phash-max-distance") {
		cfg.Matching.HashMaxDistance = flags.hashMaxDistance
	}
	if changed("min-shared-chunks") {
		cfg.Matching.MinSharedChunks = flags.minSharedChunks
	}
	if changed("max-candidates") {
		cfg.Matching.MaxCandidates = flags.maxCandidates
	}
	if changed("orb-features") {
		cfg.Matching.Features = flags.features
	}
	if changed("orb-min-matches") {
		cfg.Matching.MinGoodMatches = flags.minGoodMatches
	}
	if changed("orb-min-inliers") {
		cfg.Matching.MinInliers = flags.minInliers
	}
	if changed("index-workers") {
		cfg.Matching.IndexWorkers = flags.indexWorkers
	}
	if changed("no-progress") && flags.noProgress {
		cfg.Matching.Progress = false
	}
}

func renderRunSummary(res *delta.Result) string {
	rows := [][]string{
		{"Indexed in A", strconv.Itoa(res.Summary.Counts.IndexedA)},
		{"Indexed in B", strconv.Itoa(res.Summary.Counts.IndexedB)},
		{"Matches A->B", strconv.Itoa(res.Summary.Counts.MatchesAtoB)},
		{"Matches B->A", strconv.Itoa(res.Summary.Counts.MatchesBtoA)},
		{"Only in A", strconv.Itoa(res.Summary.Counts.AMinusB)},
		{"Only in B", strconv.Itoa(res.Summary.Counts.BMinusA)},
	}
	return renderTable(
		[]string{"Stage", "Count"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	)
}

// progressRenderer draws one bar per pipeline phase on stderr. It stays
// inert when progress is disabled or stderr is not a terminal.
type progressRenderer struct {
	enabled bool
	phase   string
	bar     *progressbar.ProgressBar
}

func newProgressRenderer(cfg *config.Config) *progressRenderer {
	enabled := cfg.Matching.Progress &&
		(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
	return &progressRenderer{enabled: enabled}
}

func (p *progressRenderer) update(phase string, done, total int) {
	if !p.enabled {
		return
	}
	if phase != p.phase {
		p.finish()
		p.phase = phase
		p.bar = progressbar.Default(int64(total), phase)
	}
	_ = p.bar.Set(done)
}

func (p *progressRenderer) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
	p.phase = ""
}
