package compression

import (
	"feedback-capture/resolution"
)

// Profile is the fixed delivery target for compressed testimonial videos.
// Every recording goes through the same profile; this is not a general
// transcoding surface.
type Profile struct {
	OutputFormat        string                // Container format for delivery ("mp4")
	OutputCodec         string                // Requested video codec; resolved against available encoders
	VideoBitRate        string                // Target video bitrate (e.g., "400k")
	FrameRate           int                   // Target frame rate
	DownscaleResolution resolution.Resolution // Low-quality downscale target
	CompressEvenSmall   bool                  // Compress even files below the small-file threshold
}

// SmallFileThreshold is the size below which compression could be skipped if
// the profile allowed it.
const SmallFileThreshold = 1 << 20 // 1 MiB

// DeliveryProfile returns the fixed low-quality profile used for uploads:
// 400 kbps, 10 fps, 360p, audio kept, small files compressed too.
func DeliveryProfile() Profile {
	return Profile{
		OutputFormat:        "mp4",
		OutputCodec:         "libx264",
		VideoBitRate:        "400k",
		FrameRate:           10,
		DownscaleResolution: resolution.MustParse("360p"),
		CompressEvenSmall:   true,
	}
}
