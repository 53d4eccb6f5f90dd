package recording

import (
	"path"
	"strings"
	"time"

	"feedback-capture/common"
)

// RawClip is the unprocessed output of one recording session
type RawClip struct {
	Path      string
	Codec     string
	Timestamp time.Time
	Duration  time.Duration
	Frames    int
	FrameRate float64
}

func (c *RawClip) FileExtension() string {
	// Determine extension based on path
	if strings.Contains(c.Path, ".") {
		return strings.TrimLeft(path.Ext(c.Path), ".")
	}
	// Fallback to codec-based extension
	return common.CodecToFileExtension(c.Codec)
}
