package keypoint

import "image"

const (
	// minKeypoints is the sparsity floor: a raster yielding fewer corners
	// cannot be confirmed at all.
	minKeypoints = 10
	// minRatioMatches is the floor for attempting a homography fit.
	minRatioMatches = 10
	// loweRatio rejects ambiguous descriptor matches.
	loweRatio = 0.75
	// ransacThreshold is the inlier reprojection error in working-resolution
	// pixels.
	ransacThreshold  = 5.0
	ransacIterations = 512
	ransacSeed       = 1
)

// Scorer confirms a candidate pair of grayscale rasters by keypoint matching
// and robust homography fitting.
type Scorer struct {
	detector *Detector
}

// NewScorer builds a scorer bounded to the given keypoint count per raster.
func NewScorer(features int) *Scorer {
	return &Scorer{detector: NewDetector(features)}
}

// Score returns the number of ratio-test matches between the two rasters and
// the homography inlier count among them. Too few keypoints yields (0, 0);
// too few matches yields (matches, 0). Both are normal negative signals, not
// errors.
func (s *Scorer) Score(a, b *image.Gray) (good, inliers int) {
	kpa, descA := s.detector.DetectAndCompute(a)
	kpb, descB := s.detector.DetectAndCompute(b)
	if len(kpa) < minKeypoints || len(kpb) < minKeypoints {
		return 0, 0
	}

	matches := MatchRatio(descA, descB, loweRatio)
	if len(matches) < minRatioMatches {
		return len(matches), 0
	}

	src := make([]Point, len(matches))
	dst := make([]Point, len(matches))
	for i, m := range matches {
		src[i] = Point{X: kpa[m.Src].X, Y: kpa[m.Src].Y}
		dst[i] = Point{X: kpb[m.Dst].X, Y: kpb[m.Dst].Y}
	}
	inliers = CountRANSACInliers(src, dst, ransacThreshold, ransacIterations, ransacSeed)
	return len(matches), inliers
}
