// Package frames computes which slides are visible at a point in time and
// draws video frames with transitions.
package frames

import (
	"image"
	"math"

	"github.com/user/carousel/pkg/pipeline"
	"github.com/user/carousel/pkg/ports"
	"github.com/user/carousel/pkg/stages/timing"
)

// Info returns the slides visible at time t (seconds).
//
// Slides start every step = slideDuration - transitionDuration seconds. The
// last transitionDuration seconds of each slide overlap the next one; during
// that window SlideB is the next slide and Blend rises from 0 to 1. The last
// slide never transitions and times past the end hold the last slide.
func Info(t float64, slideCount int, slideDuration, transitionDuration float64) pipeline.FrameInfo {
	if slideCount <= 0 {
		return pipeline.FrameInfo{}
	}
	if t < 0 || math.IsNaN(t) {
		t = 0
	}

	trans := math.Max(0, math.Min(transitionDuration, slideDuration))
	step := slideDuration - trans
	if step <= 0 {
		// Degenerate schedule: every slide is pure transition.
		return pipeline.FrameInfo{SlideA: slideCount - 1}
	}

	slideA := min(int(math.Floor(t/step)), slideCount-1)
	elapsed := t - float64(slideA)*step

	// Inside the overlap the previous slide is still fading out, so it is
	// the base layer.
	if slideA > 0 && trans > 0 && elapsed < trans {
		slideA--
		elapsed += step
	}

	info := pipeline.FrameInfo{SlideA: slideA}
	if trans > 0 && slideA < slideCount-1 && elapsed >= step {
		info.SlideB = slideA + 1
		info.HasB = true
		info.Blend = clamp01((elapsed - step) / trans)
	}
	return info
}

// RenderFrame draws frame frameIndex of the schedule onto canvas. Slides are
// expected at the canvas size. Unknown transition kinds draw SlideA only.
func RenderFrame(canvas ports.Canvas, slides []image.Image, frameIndex int, t pipeline.VideoTiming, kind pipeline.TransitionKind) pipeline.FrameInfo {
	if len(slides) == 0 {
		return pipeline.FrameInfo{}
	}

	info := Info(timing.FrameTime(frameIndex, t.FPS), len(slides), t.SlideDuration, t.TransitionDuration)
	a := slides[info.SlideA]

	if !info.HasB {
		canvas.DrawImage(a, 0, 0)
		return info
	}
	b := slides[info.SlideB]

	switch kind {
	case pipeline.TransitionCrossfade:
		canvas.DrawImage(a, 0, 0)
		canvas.DrawImageOpacity(b, 0, 0, info.Blend)
	case pipeline.TransitionSlide:
		offset := int(math.Round(info.Blend * float64(canvas.Width())))
		canvas.DrawImage(a, -offset, 0)
		canvas.DrawImage(b, canvas.Width()-offset, 0)
	default:
		canvas.DrawImage(a, 0, 0)
	}
	return info
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
