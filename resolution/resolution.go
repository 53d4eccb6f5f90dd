package resolution

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolution is a target frame size for the delivery downscale.
type Resolution struct {
	Width  int
	Height int
}

var presets = map[string]Resolution{
	"240p":  {Width: 426, Height: 240},
	"360p":  {Width: 640, Height: 360},
	"480p":  {Width: 854, Height: 480},
	"720p":  {Width: 1280, Height: 720},
	"1080p": {Width: 1920, Height: 1080},
}

// Parse accepts "640x360", "640:360" or a preset name like "360p".
func Parse(value string) (Resolution, error) {
	value = strings.TrimSpace(value)
	if preset, ok := presets[value]; ok {
		return preset, nil
	}

	separator := "x"
	if strings.Contains(value, ":") {
		separator = ":"
	}
	parts := strings.Split(value, separator)
	if len(parts) != 2 {
		return Resolution{}, fmt.Errorf("invalid resolution %q", value)
	}

	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return Resolution{}, fmt.Errorf("invalid width in %q", value)
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return Resolution{}, fmt.Errorf("invalid height in %q", value)
	}
	if width <= 0 || height <= 0 {
		return Resolution{}, fmt.Errorf("resolution %q must be positive", value)
	}

	return Resolution{Width: width, Height: height}, nil
}

// MustParse is for compiled-in values; it panics on invalid input.
func MustParse(value string) Resolution {
	res, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return res
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// IsZero reports whether no downscale target is set
func (r Resolution) IsZero() bool {
	return r.Width == 0 && r.Height == 0
}

// ScaleFilter renders the ffmpeg video filter that downscales to this size
func (r Resolution) ScaleFilter() string {
	return fmt.Sprintf("scale=%d:%d", r.Width, r.Height)
}
