package ports

import (
	"image"
)

// VideoEncoder abstracts video encoding operations.
type VideoEncoder interface {
	// Begin initializes the encoder with the frame size and frame rate.
	Begin(width, height int, fps float64, opts EncoderOptions) error

	// EncodeFrame encodes a single frame presented at timestampMs.
	EncodeFrame(img image.Image, timestampMs int) error

	// End finalizes encoding and returns the encoded output.
	End() ([]byte, error)

	// Abort discards a started encoding and releases its resources. It is a
	// no-op when nothing is in progress.
	Abort()
}

// EncoderOptions configures video encoding parameters.
type EncoderOptions struct {
	Bitrate int // Target bitrate in kbps, 0 lets the encoder decide
	Quality int // CRF: 0-51 (lower is higher quality)
}

// VideoInfo describes an encoded video container.
type VideoInfo struct {
	Codec       string
	Width       int
	Height      int
	DurationMs  int
	SampleCount int
}

// VideoProber inspects encoded video data.
type VideoProber interface {
	// Probe parses data and reports its first video track.
	Probe(data []byte) (VideoInfo, error)
}
