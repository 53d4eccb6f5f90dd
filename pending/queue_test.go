package pending

import (
	"context"
	"path/filepath"
	"testing"

	"feedback-capture/storage"
)

func openTestStore(t *testing.T, dbPath string) *storage.SQLiteKeyValueStore {
	t.Helper()
	store, err := storage.OpenSQLiteKeyValueStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	return store
}

func TestQueue_OrderingPreserved(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "queue.db"))
	defer store.Close()

	queue := NewQueue(store)
	ctx := context.Background()

	for _, path := range []string{"/tmp/a.mp4", "/tmp/b.mp4", "/tmp/c.mp4"} {
		if err := queue.Enqueue(ctx, path); err != nil {
			t.Fatalf("Enqueue(%s) failed: %v", path, err)
		}
	}

	paths, err := queue.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{"/tmp/a.mp4", "/tmp/b.mp4", "/tmp/c.mp4"}
	if len(paths) != len(want) {
		t.Fatalf("List returned %d entries, want %d", len(paths), len(want))
	}
	for i, path := range want {
		if paths[i] != path {
			t.Errorf("Entry %d is %q, want %q", i, paths[i], path)
		}
	}
}

func TestQueue_EmptyReadsAsEmptyList(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "queue.db"))
	defer store.Close()

	queue := NewQueue(store)
	paths, err := queue.List(context.Background())
	if err != nil {
		t.Fatalf("List on empty queue failed: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("List on empty queue returned %v, want empty", paths)
	}
}

func TestQueue_DurabilityRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "queue.db")
	ctx := context.Background()

	store := openTestStore(t, dbPath)
	queue := NewQueue(store)
	if err := queue.Enqueue(ctx, "/tmp/a.mp4"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Simulate a process restart by reopening the store
	reopened := openTestStore(t, dbPath)
	defer reopened.Close()

	paths, err := NewQueue(reopened).List(ctx)
	if err != nil {
		t.Fatalf("List after reopen failed: %v", err)
	}
	if len(paths) != 1 || paths[0] != "/tmp/a.mp4" {
		t.Errorf("List after reopen returned %v, want [/tmp/a.mp4]", paths)
	}
}

func TestQueue_RemoveDeletesSingleEntry(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "queue.db"))
	defer store.Close()

	queue := NewQueue(store)
	ctx := context.Background()

	for _, path := range []string{"/tmp/a.mp4", "/tmp/b.mp4", "/tmp/c.mp4"} {
		if err := queue.Enqueue(ctx, path); err != nil {
			t.Fatalf("Enqueue(%s) failed: %v", path, err)
		}
	}

	if err := queue.Remove(ctx, "/tmp/b.mp4"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	paths, err := queue.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/tmp/a.mp4" || paths[1] != "/tmp/c.mp4" {
		t.Errorf("Queue after Remove is %v, want [/tmp/a.mp4 /tmp/c.mp4]", paths)
	}

	// Removing an absent entry is a no-op
	if err := queue.Remove(ctx, "/tmp/missing.mp4"); err != nil {
		t.Errorf("Remove on missing entry returned error: %v", err)
	}
}

func TestQueue_RemoveLastEntryClearsStoredValue(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "queue.db"))
	defer store.Close()

	queue := NewQueue(store)
	ctx := context.Background()

	if err := queue.Enqueue(ctx, "/tmp/a.mp4"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := queue.Remove(ctx, "/tmp/a.mp4"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	// Empty list round-trips as an absent key
	_, ok, err := store.Get(ctx, StorageKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Stored value still present after last entry removed")
	}
}

func TestQueue_Clear(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "queue.db"))
	defer store.Close()

	queue := NewQueue(store)
	ctx := context.Background()

	if err := queue.Enqueue(ctx, "/tmp/a.mp4"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := queue.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	paths, err := queue.List(ctx)
	if err != nil {
		t.Fatalf("List after Clear failed: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("Queue after Clear is %v, want empty", paths)
	}
}
