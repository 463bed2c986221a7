package keypoint

import (
	"math"
	"math/rand"
)

// Point is an image-plane coordinate pair.
type Point struct {
	X, Y float64
}

// CountRANSACInliers fits a homography mapping src points onto dst points
// with a RANSAC loop and returns the inlier count of the best model found.
// An inlier is a correspondence whose forward reprojection error is at most
// thresh pixels. The loop is seeded, so results are reproducible. Fewer than
// four correspondences cannot constrain a homography and score zero.
func CountRANSACInliers(src, dst []Point, thresh float64, iterations int, seed int64) int {
	n := len(src)
	if n < 4 || len(dst) != n {
		return 0
	}

	rng := rand.New(rand.NewSource(seed))
	threshSq := thresh * thresh
	best := 0
	for iter := 0; iter < iterations; iter++ {
		i0, i1, i2, i3 := sampleFour(rng, n)
		h, ok := solveHomography(
			[4]Point{src[i0], src[i1], src[i2], src[i3]},
			[4]Point{dst[i0], dst[i1], dst[i2], dst[i3]},
		)
		if !ok {
			continue
		}
		inliers := 0
		for i := 0; i < n; i++ {
			if reprojectionSq(h, src[i], dst[i]) <= threshSq {
				inliers++
			}
		}
		if inliers > best {
			best = inliers
			if best == n {
				break
			}
		}
	}
	return best
}

func sampleFour(rng *rand.Rand, n int) (int, int, int, int) {
	var picked [4]int
	for i := 0; i < 4; {
		c := rng.Intn(n)
		dup := false
		for j := 0; j < i; j++ {
			if picked[j] == c {
				dup = true
				break
			}
		}
		if !dup {
			picked[i] = c
			i++
		}
	}
	return picked[0], picked[1], picked[2], picked[3]
}

// solveHomography computes the exact projective transform mapping four
// source points to four destination points, fixing h33 = 1. Degenerate
// samples (collinear triples, repeated points) fail the elimination and
// report ok = false.
func solveHomography(src, dst [4]Point) ([9]float64, bool) {
	var m [8][9]float64
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		m[2*i] = [9]float64{x, y, 1, 0, 0, 0, -u * x, -u * y, u}
		m[2*i+1] = [9]float64{0, 0, 0, x, y, 1, -v * x, -v * y, v}
	}

	// Gaussian elimination with partial pivoting.
	for col := 0; col < 8; col++ {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-9 {
			return [9]float64{}, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		for r := 0; r < 8; r++ {
			if r == col {
				continue
			}
			f := m[r][col] / m[col][col]
			if f == 0 {
				continue
			}
			for c := col; c < 9; c++ {
				m[r][c] -= f * m[col][c]
			}
		}
	}

	var h [9]float64
	for i := 0; i < 8; i++ {
		h[i] = m[i][8] / m[i][i]
	}
	h[8] = 1
	return h, true
}

func reprojectionSq(h [9]float64, p, q Point) float64 {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < 1e-12 {
		return math.Inf(1)
	}
	u := (h[0]*p.X + h[1]*p.Y + h[2]) / w
	v := (h[3]*p.X + h[4]*p.Y + h[5]) / w
	du := u - q.X
	dv := v - q.Y
	return du*du + dv*dv
}
