// Package smartencoder selects the best available video encoder with
// fallback support.
package smartencoder

import (
	"errors"

	"github.com/user/carousel/pkg/adapters/ffmpegencoder"
	"github.com/user/carousel/pkg/adapters/pngsequence"
	"github.com/user/carousel/pkg/ports"
)

// Backend identifies the encoder that was selected.
type Backend string

const (
	// BackendFFmpeg encodes H.264 MP4 through an ffmpeg process.
	BackendFFmpeg Backend = "ffmpeg"
	// BackendPNGSequence archives PNG frames in a zip.
	BackendPNGSequence Backend = "png-sequence"
)

// Extension returns the file extension of the backend's output.
func (b Backend) Extension() string {
	if b == BackendPNGSequence {
		return ".zip"
	}
	return ".mp4"
}

// Info describes the selected encoder.
type Info struct {
	Backend      Backend
	FallbackUsed bool
}

// Options configures encoder selection.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
	// DisableFallback makes New fail instead of falling back to PNG frames.
	DisableFallback bool
	// Logger receives the fallback warning.
	Logger ports.Logger
}

// ErrNoEncoderAvailable is returned when ffmpeg is missing and fallback is
// disabled.
var ErrNoEncoderAvailable = errors.New("smartencoder: no encoder available")

// lookup is replaced in tests.
var lookup = ffmpegencoder.IsAvailable

// New returns the ffmpeg H.264 encoder when ffmpeg can be found and the PNG
// sequence encoder otherwise.
func New(opts Options) (ports.VideoEncoder, Info, error) {
	if opts.FFmpegPath != "" {
		ffmpegencoder.SetFFmpegPath(opts.FFmpegPath)
	}

	if lookup() {
		return ffmpegencoder.New(), Info{Backend: BackendFFmpeg}, nil
	}

	if opts.DisableFallback {
		return nil, Info{}, ErrNoEncoderAvailable
	}

	if opts.Logger != nil {
		opts.Logger.Warn("ffmpeg not available, writing PNG frame sequence instead")
	}
	return pngsequence.New(), Info{Backend: BackendPNGSequence, FallbackUsed: true}, nil
}

// IsFFmpegAvailable reports whether H.264 encoding through ffmpeg is possible.
func IsFFmpegAvailable() bool {
	return lookup()
}
