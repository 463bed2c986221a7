// Package phash computes fixed-width perceptual fingerprints for decoded
// images and provides the distance and chunking primitives the candidate
// index is built on.
package phash

import (
	"fmt"
	"image"
	"strconv"

	"github.com/artyom/phash"
	"github.com/disintegration/imaging"
)

// Fingerprint is a 64-bit DCT-based perceptual hash. Visually similar images
// produce fingerprints with a small Hamming distance.
type Fingerprint uint64

const (
	// ChunkCount is the number of equal-width chunks a fingerprint splits into.
	ChunkCount = 4
	// ChunkBits is the width of a single chunk.
	ChunkBits = 64 / ChunkCount
)

// FromImage computes the fingerprint of a decoded image.
func FromImage(img image.Image) (Fingerprint, error) {
	h, err := phash.Get(img, func(img image.Image, w, h int) image.Image {
		return imaging.Resize(img, w, h, imaging.Lanczos)
	})
	if err != nil {
		return 0, fmt.Errorf("perceptual hash: %w", err)
	}
	return Fingerprint(h), nil
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b Fingerprint) int {
	return phash.Distance(uint64(a), uint64(b))
}

// Chunks splits the fingerprint into ChunkCount chunks of ChunkBits each,
// most significant first.
func (f Fingerprint) Chunks() [ChunkCount]uint16 {
	var out [ChunkCount]uint16
	for i := 0; i < ChunkCount; i++ {
		shift := uint(64 - ChunkBits*(i+1))
		out[i] = uint16(uint64(f) >> shift)
	}
	return out
}

// Hex renders the fingerprint as a fixed-width lowercase hex string, the
// form stored in the index database.
func (f Fingerprint) Hex() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// ParseHex parses a fingerprint previously rendered by Hex.
func ParseHex(s string) (Fingerprint, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse fingerprint %q: %w", s, err)
	}
	return Fingerprint(v), nil
}
