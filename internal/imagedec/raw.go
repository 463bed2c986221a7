package imagedec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

var commandContext = exec.CommandContext

// RawConverter demosaics a raw camera file into an in-memory image.
type RawConverter interface {
	Convert(ctx context.Context, path string) (image.Image, error)
}

// DcrawOption configures the dcraw CLI converter.
type DcrawOption func(*DcrawCLI)

// WithBinary overrides the default dcraw binary name.
func WithBinary(binary string) DcrawOption {
	return func(c *DcrawCLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// DcrawCLI wraps the dcraw command-line raw converter. The fixed pipeline
// applies the camera white balance, disables auto brightening, emits 8-bit
// output, and demosaics at half resolution to keep processing cost bounded.
type DcrawCLI struct {
	binary string
}

// NewDcrawCLI constructs a converter using defaults.
func NewDcrawCLI(opts ...DcrawOption) *DcrawCLI {
	cli := &DcrawCLI{binary: "dcraw"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Convert runs dcraw and decodes its TIFF output.
func (c *DcrawCLI) Convert(ctx context.Context, path string) (image.Image, error) {
	if path == "" {
		return nil, errors.New("input path required")
	}

	// -c stdout, -T TIFF, -w camera WB, -W no auto brighten, -h half size
	cmd := commandContext(ctx, c.binary, "-c", "-T", "-w", "-W", "-h", path) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("dcraw %s: %w: %s", filepath.Base(path), err, detail)
		}
		return nil, fmt.Errorf("dcraw %s: %w", filepath.Base(path), err)
	}

	img, err := tiff.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode dcraw output for %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
