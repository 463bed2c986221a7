package keypoint

import (
	"image"
	"math"
	"sort"
)

// Keypoint is a detected corner with coordinates mapped back to the base
// raster.
type Keypoint struct {
	X, Y  float64
	Score int
	Angle float64
	Level int
}

// detectionBorder keeps every sampled patch (orientation and rotated
// descriptor tests) inside the raster.
const detectionBorder = 18

// Detector finds oriented corners with binary descriptors across a small
// scale pyramid.
type Detector struct {
	Features    int
	Threshold   int
	Levels      int
	ScaleFactor float64
}

// NewDetector returns a detector bounded to the given number of features.
func NewDetector(features int) *Detector {
	if features <= 0 {
		features = 500
	}
	return &Detector{
		Features:    features,
		Threshold:   20,
		Levels:      4,
		ScaleFactor: 1.2,
	}
}

// DetectAndCompute returns up to Features keypoints, strongest first, with
// their descriptors aligned by index.
func (d *Detector) DetectAndCompute(img *image.Gray) ([]Keypoint, []Descriptor) {
	b := img.Bounds()
	baseW, baseH := b.Dx(), b.Dy()

	var kps []Keypoint
	var descs []Descriptor

	level := img
	scale := 1.0
	for l := 0; l < d.Levels; l++ {
		if l > 0 {
			scale *= d.ScaleFactor
			w := int(math.Round(float64(baseW) / scale))
			h := int(math.Round(float64(baseH) / scale))
			if w <= 2*detectionBorder+1 || h <= 2*detectionBorder+1 {
				break
			}
			level = resizeGray(img, w, h)
		} else if baseW <= 2*detectionBorder+1 || baseH <= 2*detectionBorder+1 {
			break
		}

		corners := detectFAST(level, d.Threshold, detectionBorder)
		if len(corners) == 0 {
			continue
		}
		smoothed := boxBlur(level)
		for _, c := range corners {
			angle := orientation(level, c.x, c.y)
			kps = append(kps, Keypoint{
				X:     float64(c.x) * scale,
				Y:     float64(c.y) * scale,
				Score: c.score,
				Angle: angle,
				Level: l,
			})
			descs = append(descs, computeDescriptor(smoothed, c.x, c.y, angle))
		}
	}

	if len(kps) > d.Features {
		order := make([]int, len(kps))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return kps[order[a]].Score > kps[order[b]].Score
		})
		order = order[:d.Features]
		sort.Ints(order)

		topKps := make([]Keypoint, len(order))
		topDescs := make([]Descriptor, len(order))
		for i, idx := range order {
			topKps[i] = kps[idx]
			topDescs[i] = descs[idx]
		}
		kps, descs = topKps, topDescs
	}
	return kps, descs
}
