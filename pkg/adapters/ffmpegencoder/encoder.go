// Package ffmpegencoder encodes RGBA frames to H.264 MP4 by piping raw video
// into an external ffmpeg process.
package ffmpegencoder

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/user/carousel/pkg/ports"
)

// DefaultCRF is used when EncoderOptions.Quality is outside 1..51.
const DefaultCRF = 23

// Encoder implements ports.VideoEncoder with ffmpeg and libx264.
type Encoder struct {
	mu sync.Mutex

	width  int
	height int
	fps    float64

	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderr     bytes.Buffer
	tempPath   string
	frameCount int
	frame      *image.RGBA
}

// New creates a new ffmpeg encoder.
func New() *Encoder {
	return &Encoder{}
}

// Args builds the ffmpeg command line for a rawvideo RGBA stdin stream.
func Args(width, height int, fps float64, opts ports.EncoderOptions, output string) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		"-crf", strconv.Itoa(CRF(opts.Quality)),
	}
	if opts.Bitrate > 0 {
		args = append(args, "-b:v", fmt.Sprintf("%dk", opts.Bitrate))
	}
	return append(args,
		"-profile:v", "high",
		"-movflags", "+faststart",
		output,
	)
}

// CRF maps a quality setting to an x264 constant rate factor.
func CRF(quality int) int {
	if quality < 1 || quality > 51 {
		return DefaultCRF
	}
	return quality
}

// Begin starts ffmpeg writing to a temporary MP4.
func (e *Encoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ffmpegPath, err := FindFFmpeg()
	if err != nil {
		return err
	}

	e.width = width
	e.height = height
	e.fps = fps
	e.frameCount = 0
	e.frame = image.NewRGBA(image.Rect(0, 0, width, height))
	e.stderr.Reset()

	tmpFile, err := os.CreateTemp("", "carousel_*.mp4")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	e.tempPath = tmpFile.Name()
	tmpFile.Close()

	e.cmd = exec.Command(ffmpegPath, Args(width, height, fps, opts, e.tempPath)...)
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		e.cleanup()
		return fmt.Errorf("get stdin pipe: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		e.cleanup()
		return fmt.Errorf("start ffmpeg: %w", err)
	}
	return nil
}

// EncodeFrame writes one frame. ffmpeg assigns constant-rate timestamps, so
// frames must arrive in presentation order.
func (e *Encoder) EncodeFrame(img image.Image, timestampMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil {
		return ErrNotInitialized
	}

	draw.Draw(e.frame, e.frame.Bounds(), img, img.Bounds().Min, draw.Src)
	if _, err := e.stdin.Write(e.frame.Pix); err != nil {
		return fmt.Errorf("write frame at %dms: %w\nstderr: %s", timestampMs, err, e.stderr.String())
	}

	e.frameCount++
	return nil
}

// End closes the input stream, waits for ffmpeg and returns the MP4 bytes.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil {
		return nil, ErrNotInitialized
	}
	defer e.cleanup()

	e.stdin.Close()
	e.stdin = nil

	if err := e.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, e.stderr.String())
	}

	data, err := os.ReadFile(e.tempPath)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	return data, nil
}

// Abort kills ffmpeg and removes the partial output.
func (e *Encoder) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cleanup()
}

func (e *Encoder) cleanup() {
	if e.stdin != nil {
		e.stdin.Close()
		e.stdin = nil
	}
	if e.cmd != nil && e.cmd.ProcessState == nil && e.cmd.Process != nil {
		e.cmd.Process.Kill()
		e.cmd.Wait()
	}
	e.cmd = nil
	if e.tempPath != "" {
		os.Remove(e.tempPath)
		e.tempPath = ""
	}
}

var _ ports.VideoEncoder = (*Encoder)(nil)
