package timing

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/user/carousel/pkg/adapters/logger"
	"github.com/user/carousel/pkg/pipeline"
)

const eps = 1e-9

func TestCompute_MatchAudioRoundTrip(t *testing.T) {
	settings := pipeline.VideoSettings{
		FPS:                30,
		TransitionDuration: 0.5,
		SlideDuration:      3,
		TimingMode:         pipeline.TimingMatchAudio,
	}
	clip := &pipeline.AudioClip{Duration: 12, TrimStart: 1, TrimEnd: 11}

	got := Compute(4, clip, settings)

	if math.Abs(got.SlideDuration-2.875) > eps {
		t.Errorf("expected slide duration 2.875, got %v", got.SlideDuration)
	}
	if math.Abs(got.TotalDuration-10) > eps {
		t.Errorf("expected total 10, got %v", got.TotalDuration)
	}
	if got.TotalFrames != 300 {
		t.Errorf("expected 300 frames, got %d", got.TotalFrames)
	}
}

func TestCompute_MatchAudioFloors(t *testing.T) {
	settings := pipeline.VideoSettings{FPS: 30, TimingMode: pipeline.TimingMatchAudio}

	// 0.2s of audio is raised to 1s, then 1s / 5 slides is floored to 1s per slide.
	got := Compute(5, &pipeline.AudioClip{TrimStart: 0, TrimEnd: 0.2}, settings)
	if got.SlideDuration != 1 {
		t.Errorf("expected slide duration floored at 1, got %v", got.SlideDuration)
	}
}

func TestCompute_FixedMode(t *testing.T) {
	settings := pipeline.VideoSettings{FPS: 24, TransitionDuration: 0.5, SlideDuration: 3, TimingMode: pipeline.TimingFixed}

	got := Compute(3, &pipeline.AudioClip{TrimEnd: 100}, settings)
	if got.SlideDuration != 3 {
		t.Errorf("fixed mode must ignore audio, got %v", got.SlideDuration)
	}
	if math.Abs(got.TotalDuration-8) > eps {
		t.Errorf("expected total 8, got %v", got.TotalDuration)
	}
	if got.TotalFrames != 192 {
		t.Errorf("expected 192 frames, got %d", got.TotalFrames)
	}
}

func TestCompute_TransitionClamp(t *testing.T) {
	settings := pipeline.VideoSettings{FPS: 30, TransitionDuration: 5, SlideDuration: 2}

	got := Compute(3, nil, settings)
	if got.TransitionDuration != 1 {
		t.Errorf("expected transition clamped to 1, got %v", got.TransitionDuration)
	}

	single := Compute(1, nil, settings)
	if single.TransitionDuration != 0 {
		t.Errorf("expected no transition for one slide, got %v", single.TransitionDuration)
	}
	if single.TotalDuration != 2 {
		t.Errorf("expected total 2, got %v", single.TotalDuration)
	}
}

func TestCompute_FramesRoundUp(t *testing.T) {
	got := Compute(1, nil, pipeline.VideoSettings{FPS: 30, SlideDuration: 1.01})
	if got.TotalFrames != 31 {
		t.Errorf("expected 31 frames, got %d", got.TotalFrames)
	}
}

func TestStage_Execute_InvalidFPS(t *testing.T) {
	stage := NewStage(logger.NewNoop())

	_, err := stage.Execute(context.Background(), pipeline.TimingInput{
		SlideCount: 3,
		Settings:   pipeline.VideoSettings{FPS: 0, SlideDuration: 3},
	})
	if !errors.Is(err, ErrInvalidFPS) {
		t.Errorf("expected ErrInvalidFPS, got %v", err)
	}
}
