package keypoint

import (
	"image"
	"math"
	"math/rand"
)

// DescriptorBits is the length of a binary descriptor.
const DescriptorBits = 256

// Descriptor is a steered binary patch descriptor compared by Hamming
// distance.
type Descriptor [DescriptorBits / 8]byte

// patchRadius bounds the descriptor sampling offsets. Rotated samples stay
// within patchRadius*sqrt(2) of the keypoint, which the detection border
// must cover.
const patchRadius = 12

// orientRadius is the circular patch used for the intensity centroid.
const orientRadius = 7

// briefPattern holds the 256 pixel-pair test offsets, drawn once from a
// seeded Gaussian so every run extracts identical descriptors.
var briefPattern = makePattern(0x51ef)

func makePattern(seed int64) [DescriptorBits][4]int {
	rng := rand.New(rand.NewSource(seed))
	draw := func() int {
		for {
			v := int(math.Round(rng.NormFloat64() * float64(patchRadius) / 2.4))
			if v >= -patchRadius && v <= patchRadius {
				return v
			}
		}
	}
	var pattern [DescriptorBits][4]int
	for i := range pattern {
		pattern[i] = [4]int{draw(), draw(), draw(), draw()}
	}
	return pattern
}

// orientation computes the intensity-centroid angle of the patch around
// (x, y). The caller guarantees the patch is inside the image.
func orientation(img *image.Gray, x, y int) float64 {
	var m10, m01 int
	for dy := -orientRadius; dy <= orientRadius; dy++ {
		for dx := -orientRadius; dx <= orientRadius; dx++ {
			if dx*dx+dy*dy > orientRadius*orientRadius {
				continue
			}
			v := int(img.Pix[(y+dy)*img.Stride+(x+dx)])
			m10 += dx * v
			m01 += dy * v
		}
	}
	return math.Atan2(float64(m01), float64(m10))
}

// computeDescriptor extracts the steered descriptor at (x, y) from a
// smoothed raster.
func computeDescriptor(smoothed *image.Gray, x, y int, angle float64) Descriptor {
	sin, cos := math.Sincos(angle)
	var desc Descriptor
	for i, p := range briefPattern {
		x1 := x + int(math.Round(cos*float64(p[0])-sin*float64(p[1])))
		y1 := y + int(math.Round(sin*float64(p[0])+cos*float64(p[1])))
		x2 := x + int(math.Round(cos*float64(p[2])-sin*float64(p[3])))
		y2 := y + int(math.Round(sin*float64(p[2])+cos*float64(p[3])))
		if smoothed.Pix[y1*smoothed.Stride+x1] < smoothed.Pix[y2*smoothed.Stride+x2] {
			desc[i>>3] |= 1 << uint(i&7)
		}
	}
	return desc
}
