package keypoint

import (
	"image"
	"math"
)

// resizeGray bilinearly resamples a grayscale raster to the given size.
func resizeGray(src *image.Gray, w, h int) *image.Gray {
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if sw == 0 || sh == 0 || w == 0 || h == 0 {
		return dst
	}

	xRatio := float64(sw) / float64(w)
	yRatio := float64(sh) / float64(h)
	for y := 0; y < h; y++ {
		sy := (float64(y)+0.5)*yRatio - 0.5
		y0 := int(math.Floor(sy))
		fy := sy - float64(y0)
		y1 := y0 + 1
		if y0 < 0 {
			y0, y1, fy = 0, 0, 0
		}
		if y1 >= sh {
			y1 = sh - 1
		}
		for x := 0; x < w; x++ {
			sx := (float64(x)+0.5)*xRatio - 0.5
			x0 := int(math.Floor(sx))
			fx := sx - float64(x0)
			x1 := x0 + 1
			if x0 < 0 {
				x0, x1, fx = 0, 0, 0
			}
			if x1 >= sw {
				x1 = sw - 1
			}

			p00 := float64(src.Pix[y0*src.Stride+x0])
			p01 := float64(src.Pix[y0*src.Stride+x1])
			p10 := float64(src.Pix[y1*src.Stride+x0])
			p11 := float64(src.Pix[y1*src.Stride+x1])

			top := p00 + (p01-p00)*fx
			bot := p10 + (p11-p10)*fx
			dst.Pix[y*dst.Stride+x] = uint8(math.Round(top + (bot-top)*fy))
		}
	}
	return dst
}

// boxBlur applies a 5x5 mean filter. Descriptor bit tests compare single
// pixels, so a little smoothing makes them stable under noise.
func boxBlur(src *image.Gray) *image.Gray {
	const radius = 2
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	tmp := make([]uint16, w*h)
	dst := image.NewGray(image.Rect(0, 0, w, h))

	// Horizontal pass.
	for y := 0; y < h; y++ {
		row := y * src.Stride
		for x := 0; x < w; x++ {
			var sum, n uint16
			for dx := -radius; dx <= radius; dx++ {
				xx := x + dx
				if xx < 0 || xx >= w {
					continue
				}
				sum += uint16(src.Pix[row+xx])
				n++
			}
			tmp[y*w+x] = sum / n
		}
	}

	// Vertical pass.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum, n uint16
			for dy := -radius; dy <= radius; dy++ {
				yy := y + dy
				if yy < 0 || yy >= h {
					continue
				}
				sum += tmp[yy*w+x]
				n++
			}
			dst.Pix[y*dst.Stride+x] = uint8(sum / n)
		}
	}
	return dst
}
