package compression

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xfrr/goffmpeg/transcoder"

	"feedback-capture/common"
	"feedback-capture/recording"
)

type Compressor interface {
	// Compress transforms a raw recorded clip into a delivery-ready clip
	// using the fixed profile. On failure no output file is handed
	// downstream.
	Compress(rawClip *recording.RawClip) (*VideoClip, error)
}

// FfmpegCompressor implements Compressor using goffmpeg
type FfmpegCompressor struct {
	profile Profile
}

// NewFfmpegCompressor creates a compressor for the given profile. The
// profile's codec is resolved against the encoders the local ffmpeg build
// actually provides.
func NewFfmpegCompressor(profile Profile, codecs common.CodecProvider) (*FfmpegCompressor, error) {
	codec, err := codecs.GetFallbackCodec(profile.OutputCodec)
	if err != nil {
		return nil, fmt.Errorf("no usable encoder for profile: %w", err)
	}
	if codec != profile.OutputCodec {
		log.Printf("Using encoder %s instead of %s", codec, profile.OutputCodec)
	}
	profile.OutputCodec = codec

	return &FfmpegCompressor{profile: profile}, nil
}

func (c *FfmpegCompressor) Compress(rawClip *recording.RawClip) (*VideoClip, error) {
	if stat, err := os.Stat(rawClip.Path); err != nil {
		return nil, &CompressionError{SourcePath: rawClip.Path, InnerError: err}
	} else if !c.profile.CompressEvenSmall && stat.Size() < SmallFileThreshold {
		// Below the threshold the raw clip would ship as-is; the fixed
		// delivery profile compresses everything.
		log.Printf("Skipping compression for small file %s (%d bytes)", rawClip.Path, stat.Size())
		return &VideoClip{
			Path:      rawClip.Path,
			Codec:     rawClip.Codec,
			Format:    rawClip.FileExtension(),
			Timestamp: rawClip.Timestamp,
			Duration:  rawClip.Duration,
		}, nil
	}

	trans := new(transcoder.Transcoder)

	outputPath := c.outputPath(rawClip)

	if err := trans.Initialize(rawClip.Path, outputPath); err != nil {
		return nil, &CompressionError{SourcePath: rawClip.Path, InnerError: err}
	}

	trans.MediaFile().SetVideoCodec(c.profile.OutputCodec)
	trans.MediaFile().SetOutputFormat(c.profile.OutputFormat)
	trans.MediaFile().SetFrameRate(c.profile.FrameRate)

	// The testimonial audio track is kept; only the video stream is squeezed
	trans.MediaFile().SetVideoBitRate(c.profile.VideoBitRate)

	if !c.profile.DownscaleResolution.IsZero() {
		trans.MediaFile().SetVideoFilter(c.profile.DownscaleResolution.ScaleFilter())
	}

	done := trans.Run(false)

	// Get the duration from the input file's metadata, which was already
	// probed during initialization.
	duration, err := c.parseDuration(trans.MediaFile().Metadata().Format.Duration)
	if err != nil {
		// Fallback to the duration from the raw clip struct
		duration = rawClip.Duration
	}

	if err := <-done; err != nil {
		// Don't leave a partial output behind
		os.Remove(outputPath)
		return nil, &CompressionError{SourcePath: rawClip.Path, InnerError: err}
	}

	return &VideoClip{
		Path:      outputPath,
		Codec:     c.profile.OutputCodec,
		Format:    c.profile.OutputFormat,
		Timestamp: rawClip.Timestamp,
		Duration:  duration,
	}, nil
}

func (c *FfmpegCompressor) outputPath(rawClip *recording.RawClip) string {
	base := strings.TrimSuffix(rawClip.Path, filepath.Ext(rawClip.Path))
	return base + "_compressed." + strings.TrimLeft(c.profile.OutputFormat, ".")
}

func (c *FfmpegCompressor) parseDuration(durationStr string) (time.Duration, error) {
	if durationStr == "" {
		return 0, fmt.Errorf("empty duration in video metadata")
	}

	durationSeconds, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration '%s': %w", durationStr, err)
	}

	if durationSeconds <= 0 {
		return 0, fmt.Errorf("invalid or zero duration: %f seconds", durationSeconds)
	}

	return time.Duration(durationSeconds * float64(time.Second)), nil
}
