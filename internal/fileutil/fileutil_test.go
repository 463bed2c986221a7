package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"photodelta/internal/fileutil"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := fileutil.WriteFileAtomic(path, []byte(`{"ok":true}`), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Fatalf("unexpected content %q", data)
	}

	// Overwrite leaves no temp artifacts behind.
	if err := fileutil.WriteFileAtomic(path, []byte("v2"), 0o644); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the target file, found %d entries", len(entries))
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := fileutil.EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("directory missing: %v", err)
	}
}
