package imagedec

import (
	"image"

	"github.com/disintegration/imaging"
)

// Grayscale produces the single-channel raster used for geometric
// confirmation. It is an independent downscale step: maxSide may differ from
// the bound the color decode used.
func Grayscale(img image.Image, maxSide int) *image.Gray {
	fitted := imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	gray := imaging.Grayscale(fitted)

	b := gray.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		srcRow := gray.Pix[y*gray.Stride:]
		dstRow := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			// Grayscale output has equal RGB channels; take R.
			dstRow[x] = srcRow[x*4]
		}
	}
	return out
}
