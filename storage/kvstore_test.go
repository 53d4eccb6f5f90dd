package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteKeyValueStore_SetGetRemove(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := OpenSQLiteKeyValueStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	// Missing key reports absence, not an error
	_, ok, err := store.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get on missing key returned error: %v", err)
	}
	if ok {
		t.Error("Get on missing key reported existence")
	}

	if err := store.Set(ctx, "token", "abc123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok, err := store.Get(ctx, "token")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || value != "abc123" {
		t.Errorf("Get returned (%q, %v), want (\"abc123\", true)", value, ok)
	}

	// Set replaces existing value
	if err := store.Set(ctx, "token", "def456"); err != nil {
		t.Fatalf("Set (replace) failed: %v", err)
	}
	value, _, _ = store.Get(ctx, "token")
	if value != "def456" {
		t.Errorf("Get after replace returned %q, want %q", value, "def456")
	}

	if err := store.Remove(ctx, "token"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	_, ok, _ = store.Get(ctx, "token")
	if ok {
		t.Error("Key still exists after Remove")
	}

	// Removing a missing key is a no-op
	if err := store.Remove(ctx, "token"); err != nil {
		t.Errorf("Remove on missing key returned error: %v", err)
	}
}

func TestSQLiteKeyValueStore_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := OpenSQLiteKeyValueStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := store.Set(ctx, "key", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := OpenSQLiteKeyValueStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if !ok || value != "value" {
		t.Errorf("Get after reopen returned (%q, %v), want (\"value\", true)", value, ok)
	}
}
