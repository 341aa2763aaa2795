package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nhle/led-repair/internal/model"
	"github.com/nhle/led-repair/internal/store"
)

// NewTestStore creates a FileStore rooted at a fresh temporary data
// directory that is removed when the test completes.
func NewTestStore(t *testing.T) *store.FileStore {
	t.Helper()
	return store.NewFileStore(store.NewPaths(t.TempDir()))
}

// NewTestArchive opens an in-memory archive with all migrations applied.
// It automatically closes the archive when the test completes.
func NewTestArchive(t *testing.T) *store.Archive {
	t.Helper()

	a, err := store.OpenArchive(":memory:")
	if err != nil {
		t.Fatalf("opening test archive: %v", err)
	}

	t.Cleanup(func() {
		if err := a.Close(); err != nil {
			t.Errorf("closing test archive: %v", err)
		}
	})

	return a
}

// NewBoard returns a board with every required field filled in.
func NewBoard(id, site string) model.Board {
	return model.Board{
		BoardID: id,
		Name:    site,
		IC:      "ICN2153",
		DC:      "2024",
		Size:    "P2.5",
	}
}

// SeedBoards adds boards to s, failing the test on error.
func SeedBoards(t *testing.T, s store.BoardStore, boards ...model.Board) {
	t.Helper()

	for _, b := range boards {
		if _, err := s.AddBoard(context.Background(), b); err != nil {
			t.Fatalf("seeding board %s: %v", b.BoardID, err)
		}
	}
}

// WriteFile creates a file under dir with the given contents and returns its
// path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
