package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"feedback-capture/client"
	"feedback-capture/common"
	"feedback-capture/compression"
	"feedback-capture/connectivity"
	filemanagement "feedback-capture/file-management"
	"feedback-capture/keepawake"
	"feedback-capture/navigation"
	"feedback-capture/pending"
	"feedback-capture/permissions"
	"feedback-capture/recording"
	"feedback-capture/sweep"
)

// Indicator is the loading indicator shown during a foreground upload. It is
// released in every outcome, not just the happy path.
type Indicator interface {
	Start(message string)
	Stop()
}

type nopIndicator struct{}

func (nopIndicator) Start(message string) {}
func (nopIndicator) Stop()                {}

// FeedbackClient orchestrates the record, compress, upload-or-queue pipeline
type FeedbackClient struct {
	recorder     recording.Recorder
	compressor   compression.Compressor
	serverClient client.FeedbackServerClient
	queue        *pending.Queue
	sweeper      *sweep.Sweeper
	monitor      connectivity.Monitor
	navigator    navigation.Navigator
	permissions  permissions.Checker
	wakeLock     keepawake.Lock
	fileTracker  filemanagement.FileTracker
	indicator    Indicator
	alert        func(message string)

	mu          sync.Mutex
	isRunning   bool
	lastVideoID string
	sessionDone chan struct{}
	unsubscribe func()
	wg          sync.WaitGroup
}

// NewFeedbackClient creates a feedback client with injected dependencies
func NewFeedbackClient(
	recorder recording.Recorder,
	compressor compression.Compressor,
	serverClient client.FeedbackServerClient,
	queue *pending.Queue,
	sweeper *sweep.Sweeper,
	monitor connectivity.Monitor,
	navigator navigation.Navigator,
	permChecker permissions.Checker,
	wakeLock keepawake.Lock,
	fileTracker filemanagement.FileTracker,
	indicator Indicator,
	alert func(message string),
) *FeedbackClient {
	if indicator == nil {
		indicator = nopIndicator{}
	}
	if alert == nil {
		alert = func(message string) { log.Printf("ALERT: %s", message) }
	}
	return &FeedbackClient{
		recorder:     recorder,
		compressor:   compressor,
		serverClient: serverClient,
		queue:        queue,
		sweeper:      sweeper,
		monitor:      monitor,
		navigator:    navigator,
		permissions:  permChecker,
		wakeLock:     wakeLock,
		fileTracker:  fileTracker,
		indicator:    indicator,
		alert:        alert,
	}
}

// Start subscribes to connectivity transitions and runs a startup sweep so
// videos queued before the last shutdown get another delivery attempt
func (c *FeedbackClient) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return fmt.Errorf("feedback client is already running")
	}
	c.isRunning = true
	c.mu.Unlock()

	if err := c.fileTracker.EnsureTempDirectory(); err != nil {
		c.mu.Lock()
		c.isRunning = false
		c.mu.Unlock()
		return fmt.Errorf("failed to create temp directory: %w", err)
	}

	// Clean up stale recordings but keep everything the queue still references
	queued, err := c.queue.List(ctx)
	if err != nil {
		log.Printf("Failed to read pending queue during startup: %v", err)
	}
	c.fileTracker.CleanupTempDirectory(queued)

	// Each became-connected transition triggers one sweep; the sweeper's
	// in-flight guard keeps them from overlapping
	c.unsubscribe = c.monitor.Subscribe(func(connected bool) {
		if !connected {
			return
		}
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.sweeper.Sweep(context.Background())
		}()
	})
	c.monitor.Start()

	// Startup reconciliation
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.sweeper.Sweep(context.Background())
	}()

	log.Println("Feedback client started")
	return nil
}

// Stop tears down the pipeline: recording ends, the connectivity listener is
// unsubscribed, and in-flight work is awaited
func (c *FeedbackClient) Stop() {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return
	}
	c.isRunning = false
	unsubscribe := c.unsubscribe
	c.mu.Unlock()

	if err := c.recorder.StopRecording(); err != nil {
		log.Printf("Error stopping recorder: %v", err)
	}
	if unsubscribe != nil {
		unsubscribe()
	}
	c.monitor.Stop()
	c.wakeLock.Release()
	c.wg.Wait()

	log.Println("Feedback client stopped")
}

// StartRecording begins a capture session after the permission check. The
// pipeline continues in the background when the session finishes.
func (c *FeedbackClient) StartRecording(ctx context.Context) error {
	granted, err := c.permissions.RequestCameraAndMicrophone(ctx)
	if err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}
	if !granted {
		c.alert("Camera and microphone permission required")
		return fmt.Errorf("camera and microphone permission not granted")
	}

	c.wakeLock.Acquire()

	done := make(chan struct{})
	c.mu.Lock()
	c.sessionDone = done
	c.mu.Unlock()

	started, err := c.recorder.StartRecording(func(rawClip *recording.RawClip, recErr error) {
		defer close(done)
		c.onRecordingFinished(rawClip, recErr)
	})
	if err != nil {
		c.wakeLock.Release()
		close(done)
		log.Printf("Failed to start recording: %v", err)
		return fmt.Errorf("failed to start recording: %w", err)
	}
	if !started {
		close(done)
		return fmt.Errorf("recording already in progress")
	}

	c.navigator.NavigateTo(navigation.ScreenVideoRecord)
	return nil
}

// StopRecording ends the capture session; stopping when idle is a no-op
func (c *FeedbackClient) StopRecording() {
	if err := c.recorder.StopRecording(); err != nil {
		log.Printf("Error stopping recorder: %v", err)
	}
}

// SessionDone returns a channel closed once the current session's pipeline
// (through upload or enqueue) has finished. Before any session it returns an
// already-closed channel.
func (c *FeedbackClient) SessionDone() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionDone == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return c.sessionDone
}

// Remaining returns the seconds left before the automatic stop
func (c *FeedbackClient) Remaining() int {
	return c.recorder.Remaining()
}

// IsRecording reports whether a capture session is in progress
func (c *FeedbackClient) IsRecording() bool {
	return c.recorder.IsRecording()
}

// onRecordingFinished resolves once per session with the raw clip or an error
func (c *FeedbackClient) onRecordingFinished(rawClip *recording.RawClip, err error) {
	c.wakeLock.Release()

	if err != nil {
		log.Printf("Recording failed: %v", err)
		c.alert("Recording failed, please try again")
		return
	}

	log.Printf("Raw clip ready: %s", rawClip.Path)
	c.deliver(rawClip)
}

// deliver runs the compress then upload-or-queue stages for one raw clip.
// Compression completes (or fails) before the connectivity branch is taken.
func (c *FeedbackClient) deliver(rawClip *recording.RawClip) {
	compressed, err := c.compressor.Compress(rawClip)

	// The raw capture is useless once compression has run either way
	c.fileTracker.DeleteFile(rawClip.Path)

	if err != nil {
		log.Printf("Compression failed: %v", err)
		c.alert(fmt.Sprintf("Could not prepare your video: %v", err))
		return
	}

	if !c.monitor.IsConnected() {
		if err := c.queue.Enqueue(context.Background(), compressed.Path); err != nil {
			log.Printf("Failed to queue %s: %v", compressed.Path, err)
			c.alert("Could not save your video for later upload")
			return
		}
		log.Printf("Offline: queued %s for upload on reconnect", compressed.Path)
		return
	}

	c.uploadForeground(compressed)
}

// uploadForeground uploads a freshly recorded video with the loading
// indicator held; on success the user moves on to the consent screen
func (c *FeedbackClient) uploadForeground(compressed *compression.VideoClip) {
	c.indicator.Start("Uploading your video...")
	defer c.indicator.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	resp, err := c.serverClient.UploadVideo(ctx, client.UploadVideoRequest{
		FilePath:           compressed.Path,
		MimeType:           common.VideoFormatToMimeType(compressed.Format),
		Duration:           compressed.Duration,
		RecordingTimestamp: compressed.Timestamp,
	})
	if err != nil {
		log.Printf("Failed to upload %s: %v", compressed.Path, err)
		c.alert("Upload failed, your video will be retried when possible")
		if client.IsRecoverableUploadError(err) {
			// A recoverable failure joins the offline queue so the next
			// sweep retries it instead of dead-ending the video
			if qErr := c.queue.Enqueue(context.Background(), compressed.Path); qErr != nil {
				log.Printf("Failed to queue %s after upload failure: %v", compressed.Path, qErr)
			}
		} else {
			// Retrying a client-side failure would fail the same way
			c.fileTracker.DeleteFile(compressed.Path)
		}
		return
	}

	log.Printf("Successfully uploaded %s", compressed.Path)

	c.mu.Lock()
	c.lastVideoID = resp.VideoID
	c.mu.Unlock()

	c.fileTracker.DeleteFile(compressed.Path)
	c.navigator.NavigateTo(navigation.ScreenThankYou)
}

// SubmitConsent sends the social-media sharing answer for the last uploaded
// video and returns the user to the home screen
func (c *FeedbackClient) SubmitConsent(ctx context.Context, allow bool) error {
	c.mu.Lock()
	videoID := c.lastVideoID
	c.mu.Unlock()

	if videoID == "" {
		return fmt.Errorf("no uploaded video to give consent for")
	}

	if err := c.serverClient.SubmitConsent(ctx, videoID, allow); err != nil {
		return fmt.Errorf("failed to submit consent: %w", err)
	}

	c.navigator.NavigateTo(navigation.ScreenHome)
	return nil
}
