package recording

import "time"

// RecordingSettings configure a single capture session
type RecordingSettings struct {
	MaxDuration  time.Duration // Hard ceiling; the countdown force-stops at this point
	Codec        string        // Video codec for the raw capture (e.g., "MJPG")
	FrameRate    float64       // Frame rate for the raw capture
	TickInterval time.Duration // Countdown tick; zero means one second
}

var DefaultRecordingSettings = RecordingSettings{
	MaxDuration: 60 * time.Second,
	Codec:       "MJPG",
	FrameRate:   15.0,
}
