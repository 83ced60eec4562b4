package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "state", "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMarkAndLookup(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	processed, err := store.IsProcessed(ctx, "/media/movie.mkv", 1000, 1700000000)
	if err != nil || processed {
		t.Fatalf("fresh path: processed=%v err=%v", processed, err)
	}

	if err := store.MarkProcessed(ctx, "/media/movie.mkv", 1000, 1700000000); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}
	processed, err = store.IsProcessed(ctx, "/media/movie.mkv", 1000, 1700000000)
	if err != nil || !processed {
		t.Fatalf("after mark: processed=%v err=%v", processed, err)
	}
}

func TestChangedFileInvalidatesEntry(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	if err := store.MarkProcessed(ctx, "/media/movie.mkv", 1000, 1700000000); err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		name string
		size int64
		mod  int64
	}{
		{"size changed", 2000, 1700000000},
		{"mtime changed", 1000, 1700009999},
	} {
		processed, err := store.IsProcessed(ctx, "/media/movie.mkv", tc.size, tc.mod)
		if err != nil {
			t.Fatal(err)
		}
		if processed {
			t.Errorf("%s: stale entry still counts as processed", tc.name)
		}
	}
}

func TestMarkFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "movie.mkv")
	if err := os.WriteFile(path, []byte("container"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := store.MarkFile(ctx, path); err != nil {
		t.Fatalf("MarkFile: %v", err)
	}
	processed, err := store.IsFileProcessed(ctx, path)
	if err != nil || !processed {
		t.Fatalf("round trip: processed=%v err=%v", processed, err)
	}

	// Growing the file invalidates the entry.
	if err := os.WriteFile(path, []byte("container grown"), 0o644); err != nil {
		t.Fatal(err)
	}
	processed, err = store.IsFileProcessed(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if processed {
		t.Error("modified file still counts as processed")
	}
}

func TestForgetAndCount(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	_ = store.MarkProcessed(ctx, "/a.mkv", 1, 1)
	_ = store.MarkProcessed(ctx, "/b.mkv", 2, 2)
	if n, _ := store.Count(ctx); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
	if err := store.Forget(ctx, "/a.mkv"); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Errorf("count after forget = %d, want 1", n)
	}
	processed, _ := store.IsProcessed(ctx, "/a.mkv", 1, 1)
	if processed {
		t.Error("forgotten path still processed")
	}
}

func TestIsFileProcessedMissingFile(t *testing.T) {
	store := openStore(t)
	processed, err := store.IsFileProcessed(context.Background(), filepath.Join(t.TempDir(), "absent.mkv"))
	if err != nil || processed {
		t.Errorf("missing file: processed=%v err=%v", processed, err)
	}
}
