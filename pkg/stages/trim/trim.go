// Package trim cuts a time window out of an audio stream and re-encodes it
// as 16-bit PCM WAVE.
package trim

import (
	"context"
	"fmt"
	"math"

	"github.com/user/carousel/pkg/adapters/wavcodec"
	"github.com/user/carousel/pkg/pipeline"
	"github.com/user/carousel/pkg/ports"
)

// Stage decodes, trims and re-encodes audio.
type Stage struct {
	decoder ports.AudioDecoder
	logger  ports.Logger
}

// NewStage creates a new trim stage.
func NewStage(decoder ports.AudioDecoder, logger ports.Logger) *Stage {
	return &Stage{
		decoder: decoder,
		logger:  logger.WithComponent("trim"),
	}
}

// Execute trims input.Data to [Start, End) seconds. The source bytes are
// never modified.
func (s *Stage) Execute(ctx context.Context, input pipeline.TrimInput) (pipeline.TrimResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.TrimResult{}, err
	}

	buf, err := s.decoder.Decode(input.Data)
	if err != nil {
		return pipeline.TrimResult{}, fmt.Errorf("decode audio: %w", err)
	}
	s.logger.Debug("Decoded %.3fs of audio, %d channels at %d Hz", buf.Duration(), len(buf.Channels), buf.SampleRate)

	out, err := Trim(buf, input.Start, input.End)
	if err != nil {
		return pipeline.TrimResult{}, err
	}

	wav, err := wavcodec.Encode(out)
	if err != nil {
		return pipeline.TrimResult{}, fmt.Errorf("encode WAV: %w", err)
	}

	s.logger.Debug("Trimmed to %d samples (%.3fs)", out.Length(), out.Duration())
	return pipeline.TrimResult{
		WAV:        wav,
		SampleRate: out.SampleRate,
		Channels:   len(out.Channels),
		Samples:    out.Length(),
		Duration:   out.Duration(),
	}, nil
}

// Trim copies the samples between start and end seconds into a new buffer.
// startSample = floor(start*rate), endSample = min(floor(end*rate), length).
// The range is invalid when endSample <= startSample.
func Trim(buf ports.AudioBuffer, start, end float64) (ports.AudioBuffer, error) {
	if buf.SampleRate <= 0 {
		return ports.AudioBuffer{}, fmt.Errorf("%w: sample rate %d", ErrInvalidTrimRange, buf.SampleRate)
	}

	rate := float64(buf.SampleRate)
	length := buf.Length()

	startSample := max(0, int(math.Floor(start*rate)))
	endSample := min(int(math.Floor(end*rate)), length)

	if endSample <= startSample {
		return ports.AudioBuffer{}, fmt.Errorf("%w: %.3fs-%.3fs (samples %d-%d of %d)",
			ErrInvalidTrimRange, start, end, startSample, endSample, length)
	}

	out := ports.AudioBuffer{
		SampleRate: buf.SampleRate,
		Channels:   make([][]float32, len(buf.Channels)),
	}
	for ch, samples := range buf.Channels {
		window := make([]float32, endSample-startSample)
		if startSample < len(samples) {
			copy(window, samples[startSample:min(endSample, len(samples))])
		}
		out.Channels[ch] = window
	}
	return out, nil
}
