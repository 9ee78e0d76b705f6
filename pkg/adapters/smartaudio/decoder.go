// Package smartaudio decodes audio in any container: WAVE is parsed in
// process and everything else is transcoded to float WAVE by ffmpeg.
package smartaudio

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"

	"github.com/user/carousel/pkg/adapters/ffmpegencoder"
	"github.com/user/carousel/pkg/adapters/wavcodec"
	"github.com/user/carousel/pkg/ports"
)

// Backend identifies how a stream was decoded.
type Backend string

const (
	// BackendWAV parses RIFF/WAVE directly.
	BackendWAV Backend = "wav"
	// BackendFFmpeg transcodes through an ffmpeg process.
	BackendFFmpeg Backend = "ffmpeg"
)

// ErrNoDecoderAvailable is returned for non-WAVE input when ffmpeg is missing.
var ErrNoDecoderAvailable = errors.New("smartaudio: non-WAV audio requires ffmpeg")

// Options configures the decoder.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
	Logger     ports.Logger
}

// Decoder implements ports.AudioDecoder.
type Decoder struct {
	opts Options

	// transcode is replaced in tests.
	transcode func(data []byte) ([]byte, error)
}

// New creates a decoder.
func New(opts Options) *Decoder {
	if opts.FFmpegPath != "" {
		ffmpegencoder.SetFFmpegPath(opts.FFmpegPath)
	}
	return &Decoder{opts: opts, transcode: ffmpegTranscode}
}

// BackendFor reports which backend Decode would use for data.
func BackendFor(data []byte) Backend {
	if wavcodec.IsWAV(data) {
		return BackendWAV
	}
	return BackendFFmpeg
}

// Decode returns the PCM samples of data.
func (d *Decoder) Decode(data []byte) (ports.AudioBuffer, error) {
	if BackendFor(data) == BackendWAV {
		return wavcodec.Decode(data)
	}

	if d.opts.Logger != nil {
		d.opts.Logger.Debug("Transcoding %d bytes of audio with ffmpeg", len(data))
	}
	wav, err := d.transcode(data)
	if err != nil {
		return ports.AudioBuffer{}, err
	}
	buf, err := wavcodec.Decode(wav)
	if err != nil {
		return ports.AudioBuffer{}, fmt.Errorf("read ffmpeg output: %w", err)
	}
	return buf, nil
}

func ffmpegTranscode(data []byte) ([]byte, error) {
	ffmpegPath, err := ffmpegencoder.FindFFmpeg()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDecoderAvailable, err)
	}

	cmd := exec.Command(ffmpegPath,
		"-hide_banner",
		"-i", "pipe:0",
		"-vn",
		"-acodec", "pcm_f32le",
		"-f", "wav",
		"pipe:1",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode failed: %w\nstderr: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}

var _ ports.AudioDecoder = (*Decoder)(nil)
