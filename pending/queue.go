package pending

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"feedback-capture/storage"
)

// StorageKey is the single well-known key the pending list is persisted under.
const StorageKey = "pending_videos"

// Queue is the durable, ordered list of delivery-ready video paths that could
// not be uploaded for lack of connectivity. The whole list is serialized under
// one key; every read-modify-write cycle runs under the queue's mutex so no
// two code paths mutate the stored list concurrently.
type Queue struct {
	store storage.KeyValueStore
	mu    sync.Mutex
}

// NewQueue creates a pending queue backed by the given store
func NewQueue(store storage.KeyValueStore) *Queue {
	return &Queue{store: store}
}

// Enqueue appends a delivery-ready file path to the persisted list
func (q *Queue) Enqueue(ctx context.Context, path string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	paths, err := q.load(ctx)
	if err != nil {
		return err
	}

	paths = append(paths, path)
	return q.save(ctx, paths)
}

// List returns the persisted list in insertion order.
// An absent key reads as an empty list.
func (q *Queue) List(ctx context.Context) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.load(ctx)
}

// Remove deletes the first occurrence of path from the persisted list. Callers
// invoke this only after that entry's own upload has been confirmed successful.
func (q *Queue) Remove(ctx context.Context, path string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	paths, err := q.load(ctx)
	if err != nil {
		return err
	}

	for i, p := range paths {
		if p == path {
			paths = append(paths[:i], paths[i+1:]...)
			return q.save(ctx, paths)
		}
	}

	// Not present; nothing to do
	return nil
}

// Clear removes the persisted list entirely
func (q *Queue) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.store.Remove(ctx, StorageKey)
}

// load reads and decodes the persisted list. Must be called with q.mu held.
func (q *Queue) load(ctx context.Context) ([]string, error) {
	raw, ok, err := q.store.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending list: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var paths []string
	if err := json.Unmarshal([]byte(raw), &paths); err != nil {
		return nil, fmt.Errorf("failed to decode pending list: %w", err)
	}
	return paths, nil
}

// save encodes and writes the persisted list. An empty list is stored as an
// absent key so the encoding round-trips consistently. Must be called with
// q.mu held.
func (q *Queue) save(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return q.store.Remove(ctx, StorageKey)
	}

	raw, err := json.Marshal(paths)
	if err != nil {
		return fmt.Errorf("failed to encode pending list: %w", err)
	}
	if err := q.store.Set(ctx, StorageKey, string(raw)); err != nil {
		return fmt.Errorf("failed to write pending list: %w", err)
	}
	return nil
}
