package keypoint

import "image"

// circle16 is the Bresenham circle of radius 3 used by the FAST-9 segment
// test, in clockwise order starting from the top.
var circle16 = [16][2]int{
	{0, -3}, {1, -3}, {2, -2}, {3, -1},
	{3, 0}, {3, 1}, {2, 2}, {1, 3},
	{0, 3}, {-1, 3}, {-2, 2}, {-3, 1},
	{-3, 0}, {-3, -1}, {-2, -2}, {-1, -3},
}

const fastArc = 9

type corner struct {
	x, y  int
	score int
}

// detectFAST runs the FAST-9 segment test with 3x3 non-maximum suppression.
// Pixels closer than border to any edge are ignored so later stages can
// sample patches around every returned corner.
func detectFAST(img *image.Gray, threshold, border int) []corner {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 2*border || h <= 2*border {
		return nil
	}

	offsets := make([]int, 16)
	for i, c := range circle16 {
		offsets[i] = c[1]*img.Stride + c[0]
	}

	scores := make([]int32, w*h)
	for y := border; y < h-border; y++ {
		row := y * img.Stride
		for x := border; x < w-border; x++ {
			idx := row + x
			p := int(img.Pix[idx])
			lo := p - threshold
			hi := p + threshold

			// Quick reject on the four compass points. A contiguous run of
			// 9 among 16 circle positions covers at least 2 of them, so a
			// corner must have 2 compass points on the same side.
			bright, dark := 0, 0
			for _, k := range [4]int{0, 4, 8, 12} {
				v := int(img.Pix[idx+offsets[k]])
				if v > hi {
					bright++
				} else if v < lo {
					dark++
				}
			}
			if bright < 2 && dark < 2 {
				continue
			}

			var signs [16]int8
			for i := 0; i < 16; i++ {
				v := int(img.Pix[idx+offsets[i]])
				if v > hi {
					signs[i] = 1
				} else if v < lo {
					signs[i] = -1
				}
			}
			if !hasArc(signs, 1) && !hasArc(signs, -1) {
				continue
			}

			var score int32
			for i := 0; i < 16; i++ {
				if signs[i] != 0 {
					v := int(img.Pix[idx+offsets[i]])
					d := v - p
					if d < 0 {
						d = -d
					}
					score += int32(d - threshold)
				}
			}
			scores[y*w+x] = score
		}
	}

	var corners []corner
	for y := border; y < h-border; y++ {
		for x := border; x < w-border; x++ {
			s := scores[y*w+x]
			if s == 0 {
				continue
			}
			if !localMax(scores, w, x, y, s) {
				continue
			}
			corners = append(corners, corner{x: x, y: y, score: int(s)})
		}
	}
	return corners
}

// hasArc reports whether signs contains at least fastArc contiguous entries
// (with wrap-around) equal to want.
func hasArc(signs [16]int8, want int8) bool {
	run := 0
	for i := 0; i < 32; i++ {
		if signs[i&15] == want {
			run++
			if run >= fastArc {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// localMax applies 3x3 suppression; score ties are broken toward the earlier
// pixel in scan order to keep detection deterministic.
func localMax(scores []int32, w, x, y int, s int32) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n := scores[(y+dy)*w+(x+dx)]
			if n > s {
				return false
			}
			if n == s && (dy < 0 || (dy == 0 && dx < 0)) {
				return false
			}
		}
	}
	return true
}
