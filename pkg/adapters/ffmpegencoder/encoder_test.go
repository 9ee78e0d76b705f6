package ffmpegencoder

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/user/carousel/pkg/ports"
)

func createTestImage(width, height, frameNum int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x*255/width + frameNum*10) % 256),
				G: uint8((y*255/height + frameNum*5) % 256),
				B: uint8((x + y + frameNum*3) % 256),
				A: 255,
			})
		}
	}
	return img
}

func TestCRF(t *testing.T) {
	tests := []struct {
		quality int
		want    int
	}{
		{0, DefaultCRF},
		{-3, DefaultCRF},
		{18, 18},
		{51, 51},
		{63, DefaultCRF},
	}
	for _, tt := range tests {
		if got := CRF(tt.quality); got != tt.want {
			t.Errorf("CRF(%d) = %d, want %d", tt.quality, got, tt.want)
		}
	}
}

func TestArgs(t *testing.T) {
	args := Args(1080, 1350, 30, ports.EncoderOptions{Quality: 20, Bitrate: 4000}, "out.mp4")

	if args[len(args)-1] != "out.mp4" {
		t.Errorf("expected output last, got %q", args[len(args)-1])
	}
	for _, want := range []string{"1080x1350", "30", "20", "4000k", "libx264", "yuv420p"} {
		if !slices.Contains(args, want) {
			t.Errorf("expected %q in args %v", want, args)
		}
	}

	noBitrate := Args(2, 2, 29.97, ports.EncoderOptions{}, "x.mp4")
	if slices.Contains(noBitrate, "-b:v") {
		t.Error("bitrate flag should be omitted when Bitrate is 0")
	}
	if !slices.Contains(noBitrate, "29.97") {
		t.Errorf("expected fractional fps, got %v", noBitrate)
	}
}

func TestFindFFmpeg_CustomPathMissing(t *testing.T) {
	SetFFmpegPath(filepath.Join(t.TempDir(), "no-ffmpeg"))
	defer SetFFmpegPath("")

	if _, err := FindFFmpeg(); !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("expected ErrFFmpegNotFound, got %v", err)
	}
}

func TestEncoder_NotInitialized(t *testing.T) {
	enc := New()
	if err := enc.EncodeFrame(image.NewRGBA(image.Rect(0, 0, 2, 2)), 0); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if _, err := enc.End(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestEncoder_Encode(t *testing.T) {
	if !IsAvailable() {
		t.Skip("ffmpeg not available")
	}

	enc := New()
	width, height, fps := 320, 240, 30.0
	if err := enc.Begin(width, height, fps, ports.EncoderOptions{Quality: 25}); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	for i := 0; i < 30; i++ {
		if err := enc.EncodeFrame(createTestImage(width, height, i), i*1000/30); err != nil {
			t.Fatalf("EncodeFrame failed at frame %d: %v", i, err)
		}
	}

	data, err := enc.End()
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if len(data) < 8 || string(data[4:8]) != "ftyp" {
		t.Errorf("expected MP4 output starting with ftyp box")
	}
}

func TestEncoder_AbortRemovesPartialOutput(t *testing.T) {
	enc := New()
	enc.Abort() // nothing started

	if !IsAvailable() {
		t.Skip("ffmpeg not available")
	}

	if err := enc.Begin(64, 48, 10, ports.EncoderOptions{}); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := enc.EncodeFrame(createTestImage(64, 48, 0), 0); err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	partial := enc.tempPath

	enc.Abort()

	if _, err := os.Stat(partial); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed, stat err=%v", partial, err)
	}
	if enc.cmd != nil {
		t.Error("expected ffmpeg process to be released")
	}
	if _, err := enc.End(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized after Abort, got %v", err)
	}
}
