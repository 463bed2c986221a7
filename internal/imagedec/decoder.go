// Package imagedec loads image files into normalized in-memory rasters.
//
// Standard raster formats decode in-process; raw camera files are demosaiced
// by an external converter behind the RawConverter interface. Decode errors
// are recoverable by contract: callers treat any error as "no image
// available" for that file and skip it.
package imagedec

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Decoder turns a file on disk into a normalized raster: orientation
// corrected, converted to a single color representation, and proportionally
// downscaled so neither dimension exceeds maxSide.
type Decoder interface {
	Decode(ctx context.Context, path string, maxSide int) (*image.NRGBA, error)
}

var rawExts = map[string]struct{}{
	".nef": {},
}

// IsRaw reports whether the extension names a raw camera format that needs
// external demosaicing.
func IsRaw(ext string) bool {
	_, ok := rawExts[strings.ToLower(ext)]
	return ok
}

// Library is the default Decoder. It handles jpeg/png/tiff directly and
// delegates raw formats to its converter.
type Library struct {
	raw RawConverter
}

// Option configures a Library decoder.
type Option func(*Library)

// WithRawConverter overrides the raw camera converter.
func WithRawConverter(c RawConverter) Option {
	return func(l *Library) {
		if c != nil {
			l.raw = c
		}
	}
}

// New constructs a Library decoder. Raw conversion defaults to the dcraw CLI.
func New(opts ...Option) *Library {
	l := &Library{raw: NewDcrawCLI()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Decode implements Decoder.
func (l *Library) Decode(ctx context.Context, path string, maxSide int) (*image.NRGBA, error) {
	if maxSide <= 0 {
		return nil, errors.New("max side must be positive")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if IsRaw(ext) {
		img, err := l.raw.Convert(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("raw decode %s: %w", filepath.Base(path), err)
		}
		return bound(img, maxSide), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return bound(img, maxSide), nil
}

// bound proportionally downscales img so neither dimension exceeds maxSide.
// Images already inside the bound are cloned unchanged.
func bound(img image.Image, maxSide int) *image.NRGBA {
	return imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
}
