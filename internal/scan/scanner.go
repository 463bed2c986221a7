// Package scan discovers supported image files under a directory tree and
// pairs each one with a cheap filesystem change signature.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Signature is the filesystem change token for one file. Two scans that
// observe the same signature treat the file content as unchanged.
type Signature struct {
	ModTimeNS int64
	Size      int64
}

// File pairs a discovered path with its extension and current signature.
type File struct {
	Path      string
	Ext       string
	Signature Signature
}

var supportedExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".tif":  {},
	".tiff": {},
	".nef":  {},
}

// SupportedExt reports whether the extension (with leading dot, any case)
// belongs to the fixed supported set.
func SupportedExt(ext string) bool {
	_, ok := supportedExts[strings.ToLower(ext)]
	return ok
}

// SignatureFor stats a single path and returns its current signature.
func SignatureFor(path string) (Signature, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Signature{}, err
	}
	return Signature{ModTimeNS: info.ModTime().UnixNano(), Size: info.Size()}, nil
}

// Root walks the directory tree under root and returns every regular file
// with a supported extension, in lexical path order. Unreadable subtrees are
// skipped; a missing or unreadable root fails the scan.
func Root(root string) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %q is not a directory", root)
	}

	var files []File
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Best effort: an unreadable subtree drops out of the scan.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := supportedExts[ext]; !ok {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			// File vanished between listing and stat.
			return nil
		}
		files = append(files, File{
			Path:      path,
			Ext:       ext,
			Signature: Signature{ModTimeNS: fi.ModTime().UnixNano(), Size: fi.Size()},
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %q: %w", root, walkErr)
	}
	return files, nil
}
