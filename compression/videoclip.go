package compression

import "time"

// VideoClip is a delivery-ready compressed video; the only artifact that is
// ever enqueued or uploaded.
type VideoClip struct {
	Path      string
	Codec     string
	Format    string
	Timestamp time.Time
	Duration  time.Duration
}
