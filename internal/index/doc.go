// Package index persists per-set image fingerprints in SQLite and keeps
// them reconciled with the live filesystem. The store is the sole owner of
// persisted fingerprints: entries for vanished paths are deleted, entries
// whose file signature changed are recomputed, and unchanged entries are
// reused without decoding the file again.
package index
