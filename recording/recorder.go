package recording

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"feedback-capture/common"
)

// FinishedCallback receives the result of a recording session. It is invoked
// exactly once per session, with either the finalized raw clip or an error.
type FinishedCallback func(clip *RawClip, err error)

// TickCallback is invoked once per countdown second with the remaining time
type TickCallback func(remaining int)

type Recorder interface {
	// StartRecording begins a new recording session. The returned bool is
	// false when a session is already in progress. The session ends on
	// StopRecording or when the countdown reaches zero, whichever comes
	// first; either way onFinished fires once.
	StartRecording(onFinished FinishedCallback) (bool, error)
	// StopRecording ends the current recording session. Calling it when no
	// session is active is a no-op.
	StopRecording() error
	// IsRecording checks if a recording is currently in progress
	IsRecording() bool
	// Remaining returns the seconds left before the automatic stop
	Remaining() int
}

// GoCVRecorder records a single clip per session from a local camera
type GoCVRecorder struct {
	device        string // Device identifier, e.g., "/dev/video0" or "0" for default camera
	clipDirectory string
	settings      RecordingSettings
	onTick        TickCallback

	mu          sync.RWMutex
	isRecording bool
	stopOnce    *sync.Once
	stopChan    chan struct{}
	countdown   *Countdown
}

func NewGoCVRecorder(device string, clipDirectory string, settings RecordingSettings, onTick TickCallback) *GoCVRecorder {
	if settings.MaxDuration <= 0 {
		settings.MaxDuration = DefaultRecordingSettings.MaxDuration
	}
	if settings.FrameRate <= 0 {
		settings.FrameRate = DefaultRecordingSettings.FrameRate
	}
	if settings.Codec == "" {
		settings.Codec = DefaultRecordingSettings.Codec
	}
	return &GoCVRecorder{
		device:        device,
		clipDirectory: clipDirectory,
		settings:      settings,
		onTick:        onTick,
	}
}

func (r *GoCVRecorder) IsRecording() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isRecording
}

func (r *GoCVRecorder) Remaining() int {
	r.mu.RLock()
	countdown := r.countdown
	r.mu.RUnlock()

	if countdown == nil {
		return int(r.settings.MaxDuration / time.Second)
	}
	return countdown.Remaining()
}

func (r *GoCVRecorder) StartRecording(onFinished FinishedCallback) (bool, error) {
	r.mu.Lock()
	if r.isRecording {
		r.mu.Unlock()
		return false, nil // Already recording
	}
	r.isRecording = true
	r.stopOnce = &sync.Once{}
	r.stopChan = make(chan struct{})
	stopChan := r.stopChan
	r.mu.Unlock()

	// Parse device ID
	deviceID := 0
	if r.device != "" && r.device != "0" {
		if id, err := strconv.Atoi(r.device); err == nil {
			deviceID = id
		}
	}

	// Open webcam
	webcam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		r.mu.Lock()
		r.isRecording = false
		r.mu.Unlock()
		return false, fmt.Errorf("failed to open webcam: %w", err)
	}

	countdown := NewCountdown(
		int(r.settings.MaxDuration/time.Second),
		r.settings.TickInterval,
		r.onTick,
		func() {
			// Automatic stop at zero routes through the same path as a
			// manual stop
			if err := r.StopRecording(); err != nil {
				log.Printf("Automatic stop failed: %v", err)
			}
		},
	)

	r.mu.Lock()
	r.countdown = countdown
	r.mu.Unlock()

	countdown.Start()

	// The recording goroutine owns the webcam for the whole session and
	// resolves onFinished exactly once.
	go func(webcam *gocv.VideoCapture) {
		defer func() {
			log.Println("Closing webcam from recording session...")
			webcam.Close()

			r.mu.Lock()
			r.isRecording = false
			r.countdown = nil
			r.mu.Unlock()
		}()

		clip, err := r.recordClip(webcam, stopChan)

		// Stop the countdown in case the session ended early on a
		// capture error
		countdown.Stop()

		if onFinished != nil {
			onFinished(clip, err)
		}
	}(webcam)

	return true, nil
}

func (r *GoCVRecorder) recordClip(webcam *gocv.VideoCapture, stopChan <-chan struct{}) (*RawClip, error) {
	if webcam == nil {
		return nil, fmt.Errorf("webcam not initialized")
	}

	fileExtension := common.CodecToFileExtension(r.settings.Codec)
	clipPath := fmt.Sprintf("%s/testimonial_%s%s", r.clipDirectory, uuid.New().String(), fileExtension)

	log.Printf("Recording to %s with codec %s", clipPath, r.settings.Codec)

	// Get frame properties from webcam
	width := int(webcam.Get(gocv.VideoCaptureFrameWidth))
	height := int(webcam.Get(gocv.VideoCaptureFrameHeight))

	if width <= 0 || height <= 0 {
		width = 640
		height = 480
		log.Printf("Using default resolution: %dx%d", width, height)
	} else {
		log.Printf("Using webcam resolution: %dx%d", width, height)
	}

	writer, err := gocv.VideoWriterFile(clipPath, r.settings.Codec, r.settings.FrameRate, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create video writer: %w", err)
	}
	defer func() {
		log.Printf("Closing video writer for %s", clipPath)
		writer.Close()
	}()

	img := gocv.NewMat()
	defer img.Close()

	startTime := time.Now()
	frameCount := 0

	// Frame interval for precise timing control
	frameInterval := time.Duration(float64(time.Second) / r.settings.FrameRate)
	nextFrameTime := startTime

	stopped := false
	for !stopped && time.Since(startTime) < r.settings.MaxDuration {
		select {
		case <-stopChan:
			// Manual stop or countdown expiry
			stopped = true
			continue
		default:
		}

		// Wait until it's time for the next frame to maintain proper frame rate
		if now := time.Now(); now.Before(nextFrameTime) {
			time.Sleep(nextFrameTime.Sub(now))
		}

		if ok := webcam.Read(&img); !ok {
			log.Printf("Failed to read frame %d from webcam", frameCount)
			time.Sleep(time.Millisecond * 67) // Wait a bit before retrying
			// Don't advance nextFrameTime on failed reads
			continue
		}

		if img.Empty() {
			log.Printf("Empty frame %d from webcam", frameCount)
			continue
		}

		if err := writer.Write(img); err != nil {
			log.Printf("Failed to write frame %d to video: %v", frameCount, err)
		}
		frameCount++

		nextFrameTime = nextFrameTime.Add(frameInterval)
	}

	clipDuration := time.Since(startTime)

	log.Printf("Recorded %d frames for %s in %v", frameCount, clipPath, clipDuration)

	if frameCount <= 0 {
		return nil, fmt.Errorf("no frames were recorded from webcam")
	}

	return &RawClip{
		Path:      clipPath,
		Codec:     r.settings.Codec,
		Timestamp: startTime.UTC(),
		Duration:  clipDuration,
		Frames:    frameCount,
		FrameRate: r.settings.FrameRate,
	}, nil
}

func (r *GoCVRecorder) StopRecording() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRecording {
		return nil // Not recording; stop is a no-op
	}

	// A manual stop tap and the countdown expiry may race; whichever gets
	// here first closes the channel, the other is a no-op.
	r.stopOnce.Do(func() {
		close(r.stopChan)
	})
	if r.countdown != nil {
		r.countdown.Stop()
	}
	return nil
}
