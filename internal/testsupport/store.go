package testsupport

import (
	"testing"

	"photodelta/internal/index"
)

// MustOpenStore opens an index store for tests and registers cleanup.
func MustOpenStore(t testing.TB, dbPath string) *index.Store {
	t.Helper()

	store, err := index.Open(dbPath)
	if err != nil {
		t.Fatalf("index.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
