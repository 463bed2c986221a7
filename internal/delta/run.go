// Package delta runs the full two-set pipeline: reconcile both persistent
// indexes against their directories, match each set against the other, and
// write the JSON artifacts.
package delta

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"photodelta/internal/candidates"
	"photodelta/internal/config"
	"photodelta/internal/fileutil"
	"photodelta/internal/imagedec"
	"photodelta/internal/index"
	"photodelta/internal/keypoint"
	"photodelta/internal/logging"
	"photodelta/internal/match"
	"photodelta/internal/phash"
	"photodelta/internal/report"
)

// Phase names passed to the progress callback, in execution order.
const (
	PhaseIndexA    = "index A"
	PhaseIndexB    = "index B"
	PhaseMatchAtoB = "match A->B"
	PhaseMatchBtoA = "match B->A"
)

// Options configures one run.
type Options struct {
	// SetA and SetB are the two directory roots to compare.
	SetA string
	SetB string

	Config *config.Config
	Logger *slog.Logger

	// Progress, when set, receives per-phase completion updates.
	Progress func(phase string, done, total int)
}

// Result carries everything a caller needs to present a finished run.
type Result struct {
	Summary report.Summary
	Files   report.Files
	AtoB    match.DirectionResult
	BtoA    match.DirectionResult
	StatsA  index.Stats
	StatsB  index.Stats
}

// fingerprinter adapts the decoder for index reconciliation.
type fingerprinter struct {
	decoder imagedec.Decoder
	maxSide int
}

func (f fingerprinter) Fingerprint(ctx context.Context, path string) (phash.Fingerprint, error) {
	img, err := f.decoder.Decode(ctx, path, f.maxSide)
	if err != nil {
		return 0, err
	}
	return phash.FromImage(img)
}

// Run executes the pipeline. The index directory is guarded by a file lock
// so concurrent runs cannot interleave writes to the same databases.
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("delta: config is required")
	}
	if opts.SetA == "" || opts.SetB == "" {
		return nil, errors.New("delta: both set directories are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := fileutil.EnsureDir(cfg.Paths.IndexDir); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	lock := flock.New(filepath.Join(cfg.Paths.IndexDir, "photodelta.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire index lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another photodelta run is using this index directory")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release index lock", logging.Error(err))
		}
	}()

	decoder := imagedec.New(imagedec.WithRawConverter(
		imagedec.NewDcrawCLI(imagedec.WithBinary(cfg.Tools.DcrawBinary))))
	fp := fingerprinter{decoder: decoder, maxSide: cfg.Matching.MaxSide}

	storeA, err := index.Open(filepath.Join(cfg.Paths.IndexDir, "a.sqlite"))
	if err != nil {
		return nil, fmt.Errorf("open index A: %w", err)
	}
	defer storeA.Close()
	storeB, err := index.Open(filepath.Join(cfg.Paths.IndexDir, "b.sqlite"))
	if err != nil {
		return nil, fmt.Errorf("open index B: %w", err)
	}
	defer storeB.Close()

	statsA, entriesA, err := reconcileSet(ctx, storeA, opts.SetA, "A", PhaseIndexA, fp, cfg, logger, opts.Progress)
	if err != nil {
		return nil, err
	}
	statsB, entriesB, err := reconcileSet(ctx, storeB, opts.SetB, "B", PhaseIndexB, fp, cfg, logger, opts.Progress)
	if err != nil {
		return nil, err
	}

	params := match.Params{
		MaxSide:         cfg.Matching.MaxSide,
		HashMaxDistance: cfg.Matching.HashMaxDistance,
		MinSharedChunks: cfg.Matching.MinSharedChunks,
		MaxCandidates:   cfg.Matching.MaxCandidates,
		MinGoodMatches:  cfg.Matching.MinGoodMatches,
		MinInliers:      cfg.Matching.MinInliers,
	}
	engine := match.NewEngine(decoder, keypoint.NewScorer(cfg.Matching.Features), params, logger)

	indexB := candidates.Build(entriesB)
	aToB, err := engine.MatchDirection(ctx, entriesA, entriesB, indexB, phaseProgress(opts.Progress, PhaseMatchAtoB))
	if err != nil {
		return nil, err
	}
	indexA := candidates.Build(entriesA)
	bToA, err := engine.MatchDirection(ctx, entriesB, entriesA, indexA, phaseProgress(opts.Progress, PhaseMatchBtoA))
	if err != nil {
		return nil, err
	}

	summary := report.Summary{
		RunID:     uuid.NewString(),
		Timestamp: time.Now().UTC(),
		SetA:      opts.SetA,
		SetB:      opts.SetB,
		Counts: report.Counts{
			IndexedA: len(entriesA),
			IndexedB: len(entriesB),
		},
		Params: report.Params{
			MaxSide:         cfg.Matching.MaxSide,
			HashMaxDistance: cfg.Matching.HashMaxDistance,
			MinSharedChunks: cfg.Matching.MinSharedChunks,
			MaxCandidates:   cfg.Matching.MaxCandidates,
			Features:        cfg.Matching.Features,
			MinGoodMatches:  cfg.Matching.MinGoodMatches,
			MinInliers:      cfg.Matching.MinInliers,
		},
	}
	files, err := report.Write(cfg.Paths.OutputDir, summary, aToB, bToA)
	if err != nil {
		return nil, err
	}
	summary.Counts.MatchesAtoB = len(aToB.Matches)
	summary.Counts.MatchesBtoA = len(bToA.Matches)
	summary.Counts.AMinusB = len(aToB.Unmatched)
	summary.Counts.BMinusA = len(bToA.Unmatched)
	summary.Outputs = files

	logger.Info("run complete",
		logging.String("run_id", summary.RunID),
		logging.Int("indexed_a", len(entriesA)),
		logging.Int("indexed_b", len(entriesB)),
		logging.Int("matches_a_to_b", len(aToB.Matches)),
		logging.Int("matches_b_to_a", len(bToA.Matches)))

	return &Result{
		Summary: summary,
		Files:   files,
		AtoB:    aToB,
		BtoA:    bToA,
		StatsA:  statsA,
		StatsB:  statsB,
	}, nil
}

// ReconcileSet refreshes one set's index without matching. Used by the
// standalone index command.
func ReconcileSet(ctx context.Context, cfg *config.Config, set, root string, logger *slog.Logger, progress func(phase string, done, total int)) (index.Stats, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := fileutil.EnsureDir(cfg.Paths.IndexDir); err != nil {
		return index.Stats{}, fmt.Errorf("create index directory: %w", err)
	}
	lock := flock.New(filepath.Join(cfg.Paths.IndexDir, "photodelta.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return index.Stats{}, fmt.Errorf("acquire index lock: %w", err)
	}
	if !ok {
		return index.Stats{}, errors.New("another photodelta run is using this index directory")
	}
	defer func() { _ = lock.Unlock() }()

	store, err := index.Open(filepath.Join(cfg.Paths.IndexDir, dbName(set)))
	if err != nil {
		return index.Stats{}, fmt.Errorf("open index %s: %w", set, err)
	}
	defer store.Close()

	decoder := imagedec.New(imagedec.WithRawConverter(
		imagedec.NewDcrawCLI(imagedec.WithBinary(cfg.Tools.DcrawBinary))))
	fp := fingerprinter{decoder: decoder, maxSide: cfg.Matching.MaxSide}

	phase := PhaseIndexA
	if set == "B" {
		phase = PhaseIndexB
	}
	return store.Reconcile(ctx, root, fp, index.ReconcileOptions{
		Workers:  cfg.Matching.IndexWorkers,
		Progress: phaseProgress(progress, phase),
		Logger:   logger,
	})
}

func reconcileSet(
	ctx context.Context,
	store *index.Store,
	root, label, phase string,
	fp index.Fingerprinter,
	cfg *config.Config,
	logger *slog.Logger,
	progress func(phase string, done, total int),
) (index.Stats, []index.Entry, error) {
	stats, err := store.Reconcile(ctx, root, fp, index.ReconcileOptions{
		Workers:  cfg.Matching.IndexWorkers,
		Progress: phaseProgress(progress, phase),
		Logger:   logger,
	})
	if err != nil {
		return index.Stats{}, nil, fmt.Errorf("index set %s: %w", label, err)
	}
	entries, err := store.Entries(ctx)
	if err != nil {
		return index.Stats{}, nil, fmt.Errorf("load set %s entries: %w", label, err)
	}
	if len(entries) == 0 {
		return index.Stats{}, nil, fmt.Errorf("set %s indexed 0 files under %s", label, root)
	}
	logger.Info("set indexed",
		logging.String("set", label),
		logging.String("root", root),
		logging.Int("entries", len(entries)),
		logging.Int("added", stats.Added),
		logging.Int("updated", stats.Updated),
		logging.Int("removed", stats.Removed),
		logging.Int("skipped", stats.Skipped))
	return stats, entries, nil
}

func dbName(set string) string {
	if set == "B" {
		return "b.sqlite"
	}
	return "a.sqlite"
}

func phaseProgress(progress func(phase string, done, total int), phase string) func(done, total int) {
	if progress == nil {
		return nil
	}
	return func(done, total int) {
		progress(phase, done, total)
	}
}
