// Package encode renders the video frame sequence and streams it into a
// video encoder.
package encode

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/user/carousel/pkg/pipeline"
	"github.com/user/carousel/pkg/ports"
	"github.com/user/carousel/pkg/stages/frames"
)

var (
	// ErrNoSlides is returned when there is nothing to encode.
	ErrNoSlides = errors.New("no slides to encode")

	// ErrNoFrames is returned when the timing yields zero frames.
	ErrNoFrames = errors.New("timing has no frames")
)

// Stage renders frames and encodes them into a video.
type Stage struct {
	renderer ports.Renderer
	encoder  ports.VideoEncoder
	sink     ports.DebugSink
	logger   ports.Logger
}

// NewStage creates a new encode stage.
func NewStage(renderer ports.Renderer, encoder ports.VideoEncoder, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		encoder:  encoder,
		sink:     sink,
		logger:   logger.WithComponent("encode"),
	}
}

// Execute renders frames 0..TotalFrames-1 and encodes them in order. Frames
// are produced one at a time so memory stays bounded by the slide bitmaps.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{}

	if len(input.Slides) == 0 {
		return result, ErrNoSlides
	}
	t := input.Timing
	if t.TotalFrames <= 0 || t.FPS <= 0 {
		return result, fmt.Errorf("%w: %d frames at %v fps", ErrNoFrames, t.TotalFrames, t.FPS)
	}

	// Most encoders need even dimensions.
	width, height := input.Width, input.Height
	if width <= 0 || height <= 0 {
		b := input.Slides[0].Bounds()
		width, height = b.Dx(), b.Dy()
	}
	width, height = width/2*2, height/2*2

	slides := make([]image.Image, len(input.Slides))
	for i, img := range input.Slides {
		if b := img.Bounds(); b.Dx() != width || b.Dy() != height || b.Min != (image.Point{}) {
			img = s.renderer.CoverImage(img, width, height)
		}
		slides[i] = img
	}

	s.logger.Debug("Encoding %d frames at %.1f fps", t.TotalFrames, t.FPS)

	opts := ports.EncoderOptions{
		Bitrate: input.Bitrate,
		Quality: input.Quality,
	}
	if err := s.encoder.Begin(width, height, t.FPS, opts); err != nil {
		return result, fmt.Errorf("begin encoding: %w", err)
	}
	finished := false
	defer func() {
		if !finished {
			s.encoder.Abort()
		}
	}()

	sampleEvery := max(1, int(math.Round(t.FPS)))
	for f := 0; f < t.TotalFrames; f++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		canvas := s.renderer.CreateCanvas(width, height, color.Black)
		frames.RenderFrame(canvas, slides, f, t, input.Transition)
		img := canvas.ToImage()

		timestampMs := int(math.Round(float64(f) * 1000 / t.FPS))
		if err := s.encoder.EncodeFrame(img, timestampMs); err != nil {
			return result, fmt.Errorf("encode frame %d at %dms: %w", f, timestampMs, err)
		}

		if s.sink.Enabled() && f%sampleEvery == 0 {
			s.sink.SaveFrame(f, img)
		}
	}

	data, err := s.encoder.End()
	finished = true
	if err != nil {
		return result, fmt.Errorf("end encoding: %w", err)
	}

	result.VideoData = data
	result.DurationMs = int(math.Round(t.TotalDuration * 1000))
	result.FrameCount = t.TotalFrames
	result.FileSize = int64(len(data))

	s.logger.Debug("Video encoded: %d bytes", result.FileSize)
	return result, nil
}
