package imagedec_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"golang.org/x/image/tiff"

	"photodelta/internal/imagedec"
)

func testImage(w, h int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestDecodeBoundsDimensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wide.png")
	writePNG(t, path, testImage(400, 100, 1))

	dec := imagedec.New()
	img, err := dec.Decode(context.Background(), path, 200)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 200 || b.Dy() != 50 {
		t.Fatalf("expected 200x50, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestDecodeKeepsSmallImages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.png")
	writePNG(t, path, testImage(40, 30, 2))

	dec := imagedec.New()
	img, err := dec.Decode(context.Background(), path, 900)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Fatalf("expected 40x30, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestDecodeCorruptFileFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.jpg")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	dec := imagedec.New()
	if _, err := dec.Decode(context.Background(), path, 900); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDecodeMissingFileFails(t *testing.T) {
	dec := imagedec.New()
	if _, err := dec.Decode(context.Background(), filepath.Join(t.TempDir(), "gone.jpg"), 900); err == nil {
		t.Fatal("expected error for missing file")
	}
}

type fixedConverter struct {
	img image.Image
}

func (f fixedConverter) Convert(context.Context, string) (image.Image, error) {
	return f.img, nil
}

func TestDecodeRoutesRawToConverter(t *testing.T) {
	dec := imagedec.New(imagedec.WithRawConverter(fixedConverter{img: testImage(600, 300, 3)}))
	img, err := dec.Decode(context.Background(), "/photos/shot.NEF", 300)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 150 {
		t.Fatalf("expected 300x150, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestIsRaw(t *testing.T) {
	if !imagedec.IsRaw(".nef") || !imagedec.IsRaw(".NEF") {
		t.Fatal("expected .nef to be raw")
	}
	if imagedec.IsRaw(".jpg") {
		t.Fatal("expected .jpg not to be raw")
	}
}

func TestGrayscaleBoundsAndChannels(t *testing.T) {
	gray := imagedec.Grayscale(testImage(400, 200, 4), 100)
	b := gray.Bounds()
	if b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("expected 100x50, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestDcrawCLIDecodesStubOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs unsupported on windows")
	}
	dir := t.TempDir()

	var buf bytes.Buffer
	if err := tiff.Encode(&buf, testImage(64, 48, 5), nil); err != nil {
		t.Fatalf("encode tiff fixture: %v", err)
	}
	fixture := filepath.Join(dir, "fixture.tif")
	if err := os.WriteFile(fixture, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	stub := filepath.Join(dir, "dcraw")
	script := "#!/bin/sh\ncat " + fixture + "\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	cli := imagedec.NewDcrawCLI(imagedec.WithBinary(stub))
	img, err := cli.Convert(context.Background(), filepath.Join(dir, "shot.nef"))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Fatalf("expected 64x48, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestDcrawCLIReportsFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs unsupported on windows")
	}
	dir := t.TempDir()
	stub := filepath.Join(dir, "dcraw")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\necho 'cannot decode' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	cli := imagedec.NewDcrawCLI(imagedec.WithBinary(stub))
	if _, err := cli.Convert(context.Background(), "shot.nef"); err == nil {
		t.Fatal("expected conversion error")
	}
}
