package testsupport

import (
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// TexturedImage builds a deterministic blocky raster with enough corner
// structure for keypoint detection. Different seeds give visually unrelated
// images.
func TexturedImage(w, h, block int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for by := 0; by < h; by += block {
		for bx := 0; bx < w; bx += block {
			v := uint8(rng.Intn(256))
			for y := by; y < by+block && y < h; y++ {
				for x := bx; x < bx+block && x < w; x++ {
					img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
				}
			}
		}
	}
	return img
}

// WritePNG encodes img to path, creating parent directories as needed.
func WritePNG(t testing.TB, path string, img image.Image) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

// WriteTexturedPNG writes a deterministic textured PNG and returns nothing;
// the same seed always produces a byte-identical raster.
func WriteTexturedPNG(t testing.TB, path string, seed int64) {
	t.Helper()
	WritePNG(t, path, TexturedImage(256, 256, 16, seed))
}
