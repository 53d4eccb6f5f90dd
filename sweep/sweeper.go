package sweep

import (
	"context"
	"log"
	"sync"

	"feedback-capture/client"
	filemanagement "feedback-capture/file-management"
	"feedback-capture/pending"
)

// Sweeper drains the pending queue when connectivity returns. One sweep runs
// at a time; a trigger while a sweep is in flight is skipped (the running
// sweep already sees the full list).
type Sweeper struct {
	queue        *pending.Queue
	serverClient client.FeedbackServerClient
	fileTracker  filemanagement.FileTracker

	mu       sync.Mutex
	inFlight bool
}

// NewSweeper creates a sweeper over the given queue and server client
func NewSweeper(queue *pending.Queue, serverClient client.FeedbackServerClient, fileTracker filemanagement.FileTracker) *Sweeper {
	return &Sweeper{
		queue:        queue,
		serverClient: serverClient,
		fileTracker:  fileTracker,
	}
}

// Sweep attempts to upload every currently queued entry in insertion order,
// sequentially. An entry is removed from the durable list only after its own
// upload is confirmed; a failure leaves it (and the rest of the list intact
// behind it) queued for the next sweep. Failures are logged, never surfaced
// to the user. Returns the number of uploaded and failed entries.
func (s *Sweeper) Sweep(ctx context.Context) (uploaded, failed int) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		log.Println("Sweep already in flight, skipping")
		return 0, 0
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	paths, err := s.queue.List(ctx)
	if err != nil {
		log.Printf("Failed to read pending queue: %v", err)
		return 0, 0
	}
	if len(paths) == 0 {
		return 0, 0
	}

	log.Printf("Sweeping %d pending video(s)", len(paths))

	for _, path := range paths {
		if ctx.Err() != nil {
			log.Printf("Sweep canceled: %v", ctx.Err())
			failed += len(paths) - uploaded - failed
			return uploaded, failed
		}

		_, err := s.serverClient.UploadVideo(ctx, client.UploadVideoRequest{
			FilePath: path,
			MimeType: "video/mp4",
		})
		if err != nil {
			// Entry stays queued for the next sweep
			log.Printf("Sweep upload failed for %s: %v", path, err)
			failed++
			continue
		}

		if err := s.queue.Remove(ctx, path); err != nil {
			log.Printf("Failed to remove %s from pending queue: %v", path, err)
		}
		if s.fileTracker != nil {
			s.fileTracker.DeleteFile(path)
		}
		uploaded++
		log.Printf("Sweep uploaded %s", path)
	}

	return uploaded, failed
}
