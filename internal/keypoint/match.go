package keypoint

import "math/bits"

// Match links a source descriptor to its accepted destination counterpart.
type Match struct {
	Src      int
	Dst      int
	Distance int
}

// HammingDistance counts differing bits between two descriptors.
func HammingDistance(a, b Descriptor) int {
	d := 0
	for i := range a {
		d += bits.OnesCount8(a[i] ^ b[i])
	}
	return d
}

// MatchRatio brute-force matches src descriptors against dst with a
// two-nearest-neighbor search, accepting a match only when the best distance
// is below ratio times the second best. Fewer than two destination
// descriptors cannot pass the test.
func MatchRatio(src, dst []Descriptor, ratio float64) []Match {
	if len(dst) < 2 {
		return nil
	}
	var matches []Match
	for i, q := range src {
		best, second := -1, -1
		bestIdx := -1
		for j := range dst {
			d := HammingDistance(q, dst[j])
			switch {
			case best < 0 || d < best:
				second = best
				best = d
				bestIdx = j
			case second < 0 || d < second:
				second = d
			}
		}
		if float64(best) < ratio*float64(second) {
			matches = append(matches, Match{Src: i, Dst: bestIdx, Distance: best})
		}
	}
	return matches
}
