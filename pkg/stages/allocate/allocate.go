// Package allocate maps uploaded images onto carousel slide positions.
package allocate

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/user/carousel/pkg/pipeline"
	"github.com/user/carousel/pkg/ports"
)

// Slide count bounds accepted by the generator.
const (
	MinSlides = 1
	MaxSlides = 12
)

// Stage plans image allocation for a project.
type Stage struct {
	logger ports.Logger
}

// NewStage creates a new allocate stage.
func NewStage(logger ports.Logger) *Stage {
	return &Stage{
		logger: logger.WithComponent("allocate"),
	}
}

// Execute validates the slide count and computes the allocation plan.
func (s *Stage) Execute(ctx context.Context, input pipeline.AllocateInput) (pipeline.AllocateResult, error) {
	if err := ValidateSlideCount(input.SlideCount); err != nil {
		return pipeline.AllocateResult{}, err
	}

	mode := ResolveMode(input.Mode)
	if mode != input.Mode {
		s.logger.Debug("Allocation mode %q resolved to %q", input.Mode, mode)
	}

	plan := Allocate(input.UploadedCount, input.SlideCount, mode)
	s.logger.Debug("Allocated %d photo slides and %d text slides (%d%%)",
		plan.Ratio.Uploaded, plan.Ratio.TextOnly, plan.Ratio.PercentUploaded)

	return pipeline.AllocateResult{Plan: plan}, nil
}

// ValidateSlideCount checks that n is within MinSlides..MaxSlides.
func ValidateSlideCount(n int) error {
	if n < MinSlides || n > MaxSlides {
		return fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidSlideCount, n, MinSlides, MaxSlides)
	}
	return nil
}

// ResolveMode maps a requested mode to the one actually implemented.
// Auto and unknown modes fall back to sequential.
func ResolveMode(mode pipeline.AllocationMode) pipeline.AllocationMode {
	return pipeline.AllocateSequential
}

// Allocate resolves mode through ResolveMode, then assigns the first min(uploaded, slides) positions to uploads in
// order and leaves the rest text-only. It is total: negative inputs are
// treated as zero and slideCount 0 yields an empty plan.
func Allocate(uploadedCount, slideCount int, mode pipeline.AllocationMode) pipeline.AllocationPlan {
	if slideCount < 0 {
		slideCount = 0
	}
	if uploadedCount < 0 {
		uploadedCount = 0
	}
	used := min(uploadedCount, slideCount)

	perSlide := make([]pipeline.SlideSource, slideCount)
	for i := range perSlide {
		src := pipeline.SlideSource{
			Position:       i,
			Role:           RoleFor(i, slideCount),
			Source:         pipeline.SourceTextOnly,
			ReferenceIndex: -1,
		}
		if i < used {
			src.Source = pipeline.SourceUserUpload
			src.ReferenceIndex = i
		}
		perSlide[i] = src
	}

	percent := 0
	if slideCount > 0 {
		percent = int(math.Round(100 * float64(used) / float64(slideCount)))
	}

	return pipeline.AllocationPlan{
		PerSlide: perSlide,
		Ratio: pipeline.AllocationRatio{
			Uploaded:        used,
			TextOnly:        slideCount - used,
			PercentUploaded: percent,
		},
	}
}

// RoleFor returns the narrative role of a position. Position 0 is always the
// hook, so a single slide carousel is hook only.
func RoleFor(position, slideCount int) pipeline.SlideType {
	switch {
	case position == 0:
		return pipeline.SlideHook
	case slideCount > 1 && position == slideCount-1:
		return pipeline.SlideCloser
	default:
		return pipeline.SlideStory
	}
}

// BuildSlides creates fresh pending slides from a plan. Upload references
// beyond len(images) leave the slide without an image.
func BuildSlides(plan pipeline.AllocationPlan, images []pipeline.UploadedImage) []pipeline.CarouselSlide {
	slides := make([]pipeline.CarouselSlide, len(plan.PerSlide))
	for i, src := range plan.PerSlide {
		slide := pipeline.CarouselSlide{
			ID:         uuid.NewString(),
			Position:   src.Position,
			SlideType:  src.Role,
			Status:     pipeline.StatusPending,
			SourceKind: src.Source,
		}
		if src.Source == pipeline.SourceUserUpload && src.ReferenceIndex >= 0 && src.ReferenceIndex < len(images) {
			slide.ImageRef = images[src.ReferenceIndex].ID
		} else {
			slide.SourceKind = pipeline.SourceTextOnly
		}
		slides[i] = slide
	}
	return slides
}
