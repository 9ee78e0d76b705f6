// Package timing derives the video schedule from slide count, audio and
// settings.
package timing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/user/carousel/pkg/pipeline"
	"github.com/user/carousel/pkg/ports"
)

// ErrInvalidFPS is returned for a non-positive frame rate.
var ErrInvalidFPS = errors.New("fps must be positive")

// Lower bounds for match-audio mode, in seconds.
const (
	minAudioDuration = 1.0
	minSlideDuration = 1.0
)

// Stage computes video timing.
type Stage struct {
	logger ports.Logger
}

// NewStage creates a new timing stage.
func NewStage(logger ports.Logger) *Stage {
	return &Stage{logger: logger.WithComponent("timing")}
}

// Execute validates the frame rate and computes the timing.
func (s *Stage) Execute(ctx context.Context, input pipeline.TimingInput) (pipeline.VideoTiming, error) {
	if input.Settings.FPS <= 0 || math.IsNaN(input.Settings.FPS) {
		return pipeline.VideoTiming{}, fmt.Errorf("%w: %v", ErrInvalidFPS, input.Settings.FPS)
	}

	t := Compute(input.SlideCount, input.Clip, input.Settings)
	s.logger.Debug("Timing: %d slides x %.3fs, transition %.3fs, total %.3fs, %d frames",
		input.SlideCount, t.SlideDuration, t.TransitionDuration, t.TotalDuration, t.TotalFrames)
	return t, nil
}

// Compute returns the schedule for slideCount slides.
//
// In match-audio mode with a clip, the slide duration is solved so the video
// lasts as long as the trimmed clip (at least one second), and is floored at
// one second. Otherwise the configured slide duration is used. The transition
// is clamped to half a slide and is zero for a single slide.
func Compute(slideCount int, clip *pipeline.AudioClip, settings pipeline.VideoSettings) pipeline.VideoTiming {
	n := float64(max(slideCount, 0))
	transition := math.Max(0, settings.TransitionDuration)

	slideDuration := settings.SlideDuration
	if settings.TimingMode == pipeline.TimingMatchAudio && clip != nil && slideCount > 0 {
		audio := math.Max(minAudioDuration, clip.TrimEnd-clip.TrimStart)
		slideDuration = math.Max(minSlideDuration, (audio+(n-1)*transition)/n)
	}
	slideDuration = math.Max(0, slideDuration)

	transition = math.Min(transition, slideDuration/2)
	if slideCount <= 1 {
		transition = 0
	}

	total := 0.0
	if slideCount > 0 {
		total = n*slideDuration - (n-1)*transition
	}

	frames := 0
	if settings.FPS > 0 {
		// Epsilon absorbs float error so an exact product does not round up.
		frames = int(math.Ceil(total*settings.FPS - 1e-9))
	}

	return pipeline.VideoTiming{
		SlideDuration:      slideDuration,
		TransitionDuration: transition,
		TotalDuration:      total,
		TotalFrames:        max(frames, 0),
		FPS:                settings.FPS,
	}
}

// FrameTime returns the presentation time of frame index in seconds.
func FrameTime(index int, fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(index) / fps
}
