// Package match orchestrates the per-image candidate retrieval and geometric
// confirmation passes that turn two indexed sets into matches and deltas.
package match

import (
	"context"
	"image"
	"log/slog"

	"photodelta/internal/candidates"
	"photodelta/internal/imagedec"
	"photodelta/internal/index"
	"photodelta/internal/logging"
	"photodelta/internal/phash"
)

// Matcher scores a candidate pair of grayscale rasters, returning the
// ratio-test match count and the homography inlier count.
type Matcher interface {
	Score(src, dst *image.Gray) (goodMatches, inliers int)
}

// Params are the tunable thresholds for one run.
type Params struct {
	MaxSide         int
	HashMaxDistance int
	MinSharedChunks int
	MaxCandidates   int
	MinGoodMatches  int
	MinInliers      int
}

// Match is one accepted cross-set correspondence. JSON field names follow
// the on-disk matches.json format.
type Match struct {
	SrcPath      string `json:"srcPath"`
	SrcExt       string `json:"srcExt"`
	DstPath      string `json:"dstPath"`
	DstExt       string `json:"dstExt"`
	HashDistance int    `json:"phashDist"`
	GoodMatches  int    `json:"orbGoodMatches"`
	Inliers      int    `json:"orbInliers"`
}

// DirectionResult aggregates one directional pass: accepted matches plus the
// source paths with no accepted match. Every source entry lands in exactly
// one of the two lists.
type DirectionResult struct {
	Matches   []Match
	Unmatched []string
}

// Engine evaluates sources against a destination set. It holds no per-pass
// state; destination raster caches live for a single MatchDirection call.
type Engine struct {
	decoder imagedec.Decoder
	scorer  Matcher
	params  Params
	logger  *slog.Logger
}

// NewEngine builds an engine from its collaborators.
func NewEngine(decoder imagedec.Decoder, scorer Matcher, params Params, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{decoder: decoder, scorer: scorer, params: params, logger: logger}
}

// MatchDirection runs one directional pass. Each source entry is decoded
// fresh, hashed, shortlisted against the destination chunk index, and its
// candidates confirmed geometrically in ascending hash-distance order. The
// best confirmed candidate wins by (inliers, good matches, -distance), with
// lexicographic destination path as the final tie-break.
func (e *Engine) MatchDirection(
	ctx context.Context,
	src, dst []index.Entry,
	dstIndex *candidates.ChunkIndex,
	progress func(done, total int),
) (DirectionResult, error) {
	result := DirectionResult{
		Matches:   []Match{},
		Unmatched: []string{},
	}
	grayCache := make(map[int]*image.Gray)

	for i, entry := range src {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		best, found := e.bestMatch(ctx, entry, dst, dstIndex, grayCache)
		if found {
			result.Matches = append(result.Matches, best)
		} else {
			result.Unmatched = append(result.Unmatched, entry.Path)
		}
		if progress != nil {
			progress(i+1, len(src))
		}
	}
	return result, nil
}

func (e *Engine) bestMatch(
	ctx context.Context,
	src index.Entry,
	dst []index.Entry,
	dstIndex *candidates.ChunkIndex,
	grayCache map[int]*image.Gray,
) (Match, bool) {
	img, err := e.decoder.Decode(ctx, src.Path, e.params.MaxSide)
	if err != nil {
		e.logger.Debug("source decode failed",
			logging.String("path", src.Path), logging.Error(err))
		return Match{}, false
	}

	// Hash the fresh decode rather than reusing the indexed fingerprint:
	// the raster is needed for grayscale confirmation anyway.
	fp, err := phash.FromImage(img)
	if err != nil {
		e.logger.Debug("source hash failed",
			logging.String("path", src.Path), logging.Error(err))
		return Match{}, false
	}

	cands := dstIndex.Query(fp, e.params.HashMaxDistance, e.params.MinSharedChunks, e.params.MaxCandidates)
	if len(cands) == 0 {
		return Match{}, false
	}

	srcGray := imagedec.Grayscale(img, e.params.MaxSide)

	var best Match
	found := false
	for _, cand := range cands {
		gray, ok := grayCache[cand.Pos]
		if !ok {
			dstImg, err := e.decoder.Decode(ctx, dst[cand.Pos].Path, e.params.MaxSide)
			if err != nil {
				e.logger.Debug("destination decode failed",
					logging.String("path", dst[cand.Pos].Path), logging.Error(err))
				continue
			}
			gray = imagedec.Grayscale(dstImg, e.params.MaxSide)
			grayCache[cand.Pos] = gray
		}

		good, inliers := e.scorer.Score(srcGray, gray)
		if good < e.params.MinGoodMatches || inliers < e.params.MinInliers {
			continue
		}
		candidate := Match{
			SrcPath:      src.Path,
			SrcExt:       src.Ext,
			DstPath:      dst[cand.Pos].Path,
			DstExt:       dst[cand.Pos].Ext,
			HashDistance: cand.Distance,
			GoodMatches:  good,
			Inliers:      inliers,
		}
		if !found || better(candidate, best) {
			best = candidate
			found = true
		}
	}
	return best, found
}

// better orders confirmed candidates: inlier count dominates, good-match
// count breaks ties, closer hash distance breaks further ties, and the
// lexicographically smaller destination path decides anything still equal.
func better(a, b Match) bool {
	if a.Inliers != b.Inliers {
		return a.Inliers > b.Inliers
	}
	if a.GoodMatches != b.GoodMatches {
		return a.GoodMatches > b.GoodMatches
	}
	if a.HashDistance != b.HashDistance {
		return a.HashDistance < b.HashDistance
	}
	return a.DstPath < b.DstPath
}
