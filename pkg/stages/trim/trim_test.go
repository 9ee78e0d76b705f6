package trim

import (
	"context"
	"errors"
	"testing"

	"github.com/user/carousel/pkg/adapters/logger"
	"github.com/user/carousel/pkg/adapters/wavcodec"
	"github.com/user/carousel/pkg/mocks"
	"github.com/user/carousel/pkg/pipeline"
	"github.com/user/carousel/pkg/ports"
)

// tenSeconds returns 10s of mono audio at 100 Hz where each sample holds
// its own index / 1000.
func tenSeconds() ports.AudioBuffer {
	samples := make([]float32, 1000)
	for i := range samples {
		samples[i] = float32(i) / 1000
	}
	return ports.AudioBuffer{SampleRate: 100, Channels: [][]float32{samples}}
}

func TestTrim_Window(t *testing.T) {
	out, err := Trim(tenSeconds(), 2, 3.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Length() != 150 {
		t.Fatalf("expected 150 samples, got %d", out.Length())
	}
	if out.Channels[0][0] != 0.2 {
		t.Errorf("expected first sample 0.2, got %v", out.Channels[0][0])
	}
}

func TestTrim_InvalidRange(t *testing.T) {
	for _, r := range [][2]float64{{5, 5}, {6, 5}, {20, 30}} {
		if _, err := Trim(tenSeconds(), r[0], r[1]); !errors.Is(err, ErrInvalidTrimRange) {
			t.Errorf("trim(%v, %v): expected ErrInvalidTrimRange, got %v", r[0], r[1], err)
		}
	}
}

func TestTrim_FullRange(t *testing.T) {
	src := tenSeconds()
	out, err := Trim(src, 0, src.Duration())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Length() != src.Length() {
		t.Errorf("expected %d samples, got %d", src.Length(), out.Length())
	}
}

func TestTrim_EndJustBeforeBoundary(t *testing.T) {
	// 349.9999999 samples floors to 349: the sample at 3.5s is excluded.
	out, err := Trim(tenSeconds(), 2, 3.5-1e-9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Length() != 149 {
		t.Errorf("expected 149 samples, got %d", out.Length())
	}

	out, err = Trim(tenSeconds(), 2, 3.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Length() != 150 {
		t.Errorf("expected 150 samples at the exact boundary, got %d", out.Length())
	}
}

func TestTrim_EndPastLength(t *testing.T) {
	out, err := Trim(tenSeconds(), 9, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Length() != 100 {
		t.Errorf("expected 100 samples, got %d", out.Length())
	}
}

func TestTrim_DoesNotAliasSource(t *testing.T) {
	src := tenSeconds()
	out, err := Trim(src, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out.Channels[0][0] = 42
	if src.Channels[0][0] == 42 {
		t.Error("trim must copy samples")
	}
}

func TestStage_Execute(t *testing.T) {
	decoder := &mocks.AudioDecoder{Buffer: tenSeconds()}
	stage := NewStage(decoder, logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.TrimInput{Data: []byte("audio"), Start: 1, End: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Samples != 200 || result.SampleRate != 100 || result.Channels != 1 {
		t.Errorf("unexpected result %+v", result)
	}

	decoded, err := wavcodec.Decode(result.WAV)
	if err != nil {
		t.Fatalf("output is not valid WAV: %v", err)
	}
	if decoded.Length() != 200 {
		t.Errorf("expected 200 decoded samples, got %d", decoded.Length())
	}
}

func TestStage_Execute_DecodeFailure(t *testing.T) {
	decoder := &mocks.AudioDecoder{
		DecodeFunc: func(data []byte) (ports.AudioBuffer, error) {
			return ports.AudioBuffer{}, wavcodec.ErrInvalidWAV
		},
	}
	stage := NewStage(decoder, logger.NewNoop())

	_, err := stage.Execute(context.Background(), pipeline.TrimInput{Start: 0, End: 1})
	if !errors.Is(err, wavcodec.ErrInvalidWAV) {
		t.Errorf("expected ErrInvalidWAV, got %v", err)
	}
}
