package index

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"photodelta/internal/logging"
	"photodelta/internal/phash"
	"photodelta/internal/scan"
)

// Fingerprinter computes the perceptual fingerprint of one file on disk.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, path string) (phash.Fingerprint, error)
}

// ReconcileOptions tunes a reconciliation pass.
type ReconcileOptions struct {
	// Workers bounds the parallel decode+hash pool. Zero means GOMAXPROCS.
	Workers int
	// Progress, when set, is called after each changed file is processed.
	Progress func(done, total int)
	Logger   *slog.Logger
}

// Stats summarizes one reconciliation pass.
type Stats struct {
	Scanned   int
	Unchanged int
	Added     int
	Updated   int
	Removed   int
	Skipped   int
}

type pendingFile struct {
	file   scan.File
	update bool
}

type hashResult struct {
	pending pendingFile
	hash    phash.Fingerprint
	err     error
}

// Reconcile brings the store in line with the files currently under root:
// entries for vanished paths are deleted, new or changed files are decoded
// and hashed, and unchanged entries are left untouched. Files that fail to
// decode are skipped, never fatal. Reconciliation is idempotent; an
// interrupted pass is repaired by the next one.
func (s *Store) Reconcile(ctx context.Context, root string, fp Fingerprinter, opts ReconcileOptions) (Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	files, err := scan.Root(root)
	if err != nil {
		return Stats{}, err
	}

	stored, err := s.signatures(ctx)
	if err != nil {
		return Stats{}, err
	}

	onDisk := make(map[string]struct{}, len(files))
	for _, f := range files {
		onDisk[f.Path] = struct{}{}
	}
	var stale []string
	for path := range stored {
		if _, ok := onDisk[path]; !ok {
			stale = append(stale, path)
		}
	}
	if err := s.DeletePaths(ctx, stale); err != nil {
		return Stats{}, err
	}

	stats := Stats{Scanned: len(files), Removed: len(stale)}
	var pending []pendingFile
	for _, f := range files {
		old, ok := stored[f.Path]
		if ok && old == f.Signature {
			stats.Unchanged++
			continue
		}
		pending = append(pending, pendingFile{file: f, update: ok})
	}
	if len(pending) == 0 {
		return stats, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(pending) {
		workers = len(pending)
	}

	// The collector below can return early on a persistence error; cancel
	// releases any worker still blocked sending a result.
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()
	grp, gctx := errgroup.WithContext(rctx)
	jobs := make(chan pendingFile)
	results := make(chan hashResult)

	grp.Go(func() error {
		defer close(jobs)
		for _, p := range pending {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case jobs <- p:
			}
		}
		return nil
	})
	for i := 0; i < workers; i++ {
		grp.Go(func() error {
			for p := range jobs {
				hash, err := fp.Fingerprint(gctx, p.file.Path)
				if err != nil && gctx.Err() != nil {
					return gctx.Err()
				}
				select {
				case <-gctx.Done():
					return gctx.Err()
				case results <- hashResult{pending: p, hash: hash, err: err}:
				}
			}
			return nil
		})
	}
	go func() {
		_ = grp.Wait()
		close(results)
	}()

	// Upserts are serialized here; workers only decode and hash.
	done := 0
	for res := range results {
		done++
		if opts.Progress != nil {
			opts.Progress(done, len(pending))
		}
		if res.err != nil {
			// Best effort: an undecodable file is absent from matching.
			stats.Skipped++
			logger.Debug("skipping undecodable file",
				logging.String("path", res.pending.file.Path),
				logging.Error(res.err))
			continue
		}
		entry := Entry{Path: res.pending.file.Path, Ext: res.pending.file.Ext, Hash: res.hash}
		if err := s.Upsert(ctx, entry, res.pending.file.Signature); err != nil {
			return stats, err
		}
		if res.pending.update {
			stats.Updated++
		} else {
			stats.Added++
		}
	}
	if err := grp.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return stats, err
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}
