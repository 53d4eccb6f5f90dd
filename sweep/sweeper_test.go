package sweep

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"feedback-capture/client"
	"feedback-capture/pending"
	"feedback-capture/storage"
)

// failingClient fails uploads for the paths in failPaths and records the
// order of attempts
type failingClient struct {
	mu        sync.Mutex
	failPaths map[string]bool
	attempts  []string
	block     chan struct{} // when set, uploads block until closed
}

func (f *failingClient) UploadVideo(ctx context.Context, request client.UploadVideoRequest) (*client.UploadVideoResponse, error) {
	f.mu.Lock()
	f.attempts = append(f.attempts, request.FilePath)
	block := f.block
	fail := f.failPaths[request.FilePath]
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if fail {
		return nil, client.NewRecoverableUploadError(errors.New("no route to host"))
	}
	return &client.UploadVideoResponse{VideoID: "v-1"}, nil
}

func (f *failingClient) SubmitConsent(ctx context.Context, videoID string, allow bool) error {
	return nil
}

func (f *failingClient) attemptsSnapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	attempts := make([]string, len(f.attempts))
	copy(attempts, f.attempts)
	return attempts
}

func newTestQueue(t *testing.T, paths ...string) *pending.Queue {
	t.Helper()
	store, err := storage.OpenSQLiteKeyValueStore(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	queue := pending.NewQueue(store)
	for _, path := range paths {
		if err := queue.Enqueue(context.Background(), path); err != nil {
			t.Fatalf("Enqueue(%s) failed: %v", path, err)
		}
	}
	return queue
}

func TestSweep_PartialFailureKeepsFailedEntryOnly(t *testing.T) {
	queue := newTestQueue(t, "/tmp/a.mp4", "/tmp/b.mp4", "/tmp/c.mp4")
	serverClient := &failingClient{failPaths: map[string]bool{"/tmp/b.mp4": true}}

	sweeper := NewSweeper(queue, serverClient, nil)
	uploaded, failed := sweeper.Sweep(context.Background())

	if uploaded != 2 || failed != 1 {
		t.Errorf("Sweep returned (uploaded=%d, failed=%d), want (2, 1)", uploaded, failed)
	}

	paths, err := queue.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(paths) != 1 || paths[0] != "/tmp/b.mp4" {
		t.Errorf("Post-sweep queue = %v, want exactly [/tmp/b.mp4]", paths)
	}
}

func TestSweep_AttemptsInInsertionOrder(t *testing.T) {
	queue := newTestQueue(t, "/tmp/a.mp4", "/tmp/b.mp4", "/tmp/c.mp4")
	serverClient := &failingClient{}

	NewSweeper(queue, serverClient, nil).Sweep(context.Background())

	attempts := serverClient.attemptsSnapshot()
	want := []string{"/tmp/a.mp4", "/tmp/b.mp4", "/tmp/c.mp4"}
	if len(attempts) != len(want) {
		t.Fatalf("Attempted %d uploads, want %d", len(attempts), len(want))
	}
	for i, path := range want {
		if attempts[i] != path {
			t.Errorf("Attempt %d was %q, want %q", i, attempts[i], path)
		}
	}
}

func TestSweep_EmptyQueueIsNoOp(t *testing.T) {
	queue := newTestQueue(t)
	serverClient := &failingClient{}

	uploaded, failed := NewSweeper(queue, serverClient, nil).Sweep(context.Background())
	if uploaded != 0 || failed != 0 {
		t.Errorf("Sweep of empty queue returned (%d, %d), want (0, 0)", uploaded, failed)
	}
	if len(serverClient.attemptsSnapshot()) != 0 {
		t.Error("Sweep of empty queue attempted uploads")
	}
}

func TestSweep_SecondSweepSkippedWhileFirstInFlight(t *testing.T) {
	queue := newTestQueue(t, "/tmp/a.mp4")
	block := make(chan struct{})
	serverClient := &failingClient{block: block}

	sweeper := NewSweeper(queue, serverClient, nil)

	firstDone := make(chan struct{})
	go func() {
		sweeper.Sweep(context.Background())
		close(firstDone)
	}()

	// Wait until the first sweep is inside an upload
	deadline := time.Now().Add(time.Second)
	for len(serverClient.attemptsSnapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	// A second trigger while the first is in flight must not start another pass
	uploaded, failed := sweeper.Sweep(context.Background())
	if uploaded != 0 || failed != 0 {
		t.Errorf("Overlapping sweep returned (%d, %d), want (0, 0)", uploaded, failed)
	}

	close(block)
	<-firstDone

	if got := len(serverClient.attemptsSnapshot()); got != 1 {
		t.Errorf("Total upload attempts = %d, want 1 (no duplicate send)", got)
	}
}
