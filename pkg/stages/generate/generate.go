// Package generate fills carousel slides with text overlays from a text
// generator. Slides are processed independently: one slide failing never
// stops the others.
package generate

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/user/carousel/pkg/pipeline"
	"github.com/user/carousel/pkg/ports"
)

// Stage generates overlay text for every slide of a project.
type Stage struct {
	textgen    ports.TextGenerator
	logger     ports.Logger
	numWorkers int
}

// NewStage creates a new generate stage. numWorkers <= 0 uses runtime.NumCPU.
func NewStage(textgen ports.TextGenerator, logger ports.Logger, numWorkers int) *Stage {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Stage{
		textgen:    textgen,
		logger:     logger.WithComponent("generate"),
		numWorkers: numWorkers,
	}
}

// ResolveVisibility reports whether the headline is shown at position.
func ResolveVisibility(mode pipeline.HeadlineVisibility, position int) bool {
	switch mode {
	case pipeline.HeadlineNone:
		return false
	case pipeline.HeadlineFirstOnly:
		return position == 0
	default:
		return true
	}
}

// Execute regenerates every slide of the project concurrently and folds the
// outcomes in position order. The returned slides are new values; the input
// project is not modified.
//
// When ctx is cancelled, slides not yet picked up stay pending and Execute
// returns ctx.Err() together with the partial result. When every slide
// failed, the result is returned with an error wrapping ErrAllSlidesFailed.
func (s *Stage) Execute(ctx context.Context, input pipeline.GenerateInput) (pipeline.GenerateResult, error) {
	project := input.Project
	slides := pipeline.CloneSlides(project.Slides)
	if len(slides) == 0 {
		return pipeline.GenerateResult{Slides: slides}, nil
	}

	numWorkers := min(s.numWorkers, len(slides))
	s.logger.Debug("Generating text for %d slides with %d workers", len(slides), numWorkers)

	for _, r := range s.executeParallel(ctx, &project, slides, numWorkers) {
		slides[r.index] = r.slide
	}

	result := Fold(slides)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if result.Failed() {
		return result, fmt.Errorf("%w: %s", ErrAllSlidesFailed, result.FirstError)
	}

	s.logger.Debug("Generation completed with %d errors", result.ErrorCount)
	return result, nil
}

// Regenerate reruns generation for one slide. Every other slide is returned
// unchanged. When generation fails the slide ends in error but keeps the
// overlays of its last successful run, so a later retry or a manual edit
// starts from them. Export only reads ready slides, so a failed slide is
// skipped until it is ready again.
func (s *Stage) Regenerate(ctx context.Context, project pipeline.Project, slideIndex int) ([]pipeline.CarouselSlide, error) {
	if slideIndex < 0 || slideIndex >= len(project.Slides) {
		return nil, fmt.Errorf("%w: %d (have %d slides)", ErrSlideIndexOutOfRange, slideIndex, len(project.Slides))
	}

	slides := pipeline.CloneSlides(project.Slides)
	slides[slideIndex] = s.processSlide(ctx, &project, slides[slideIndex])

	if slides[slideIndex].Status == pipeline.StatusError {
		return slides, fmt.Errorf("%w: slide %d: %s", ErrSlideFailed, slideIndex, slides[slideIndex].Error)
	}
	return slides, nil
}

// Fold aggregates per-slide outcomes in position order. Only the first
// error message by position is kept.
func Fold(slides []pipeline.CarouselSlide) pipeline.GenerateResult {
	result := pipeline.GenerateResult{Slides: slides}
	for _, slide := range slides {
		if slide.Status != pipeline.StatusError {
			continue
		}
		if result.ErrorCount == 0 {
			result.FirstError = slide.Error
		}
		result.ErrorCount++
	}
	return result
}

type indexedSlide struct {
	index int
	slide pipeline.CarouselSlide
}

// executeParallel runs processSlide on a worker pool and returns the
// processed slides sorted by index. Slides skipped after cancellation are
// absent from the result.
func (s *Stage) executeParallel(ctx context.Context, project *pipeline.Project, slides []pipeline.CarouselSlide, numWorkers int) []indexedSlide {
	jobs := make(chan int, len(slides))
	results := make(chan indexedSlide, len(slides))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go s.worker(ctx, &wg, project, slides, jobs, results)
	}

	for i := range slides {
		if ctx.Err() != nil {
			break
		}
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]indexedSlide, 0, len(slides))
	for r := range results {
		collected = append(collected, r)
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].index < collected[j].index
	})
	return collected
}

func (s *Stage) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	project *pipeline.Project,
	slides []pipeline.CarouselSlide,
	jobs <-chan int,
	results chan<- indexedSlide,
) {
	defer wg.Done()

	for idx := range jobs {
		if ctx.Err() != nil {
			continue
		}
		results <- indexedSlide{index: idx, slide: s.processSlide(ctx, project, slides[idx])}
	}
}

// processSlide generates text for a single slide. Failures, including
// panics in the text generator, end up on the slide and are not returned.
// Overlays are only replaced on success.
func (s *Stage) processSlide(ctx context.Context, project *pipeline.Project, slide pipeline.CarouselSlide) (out pipeline.CarouselSlide) {
	slide.Status = pipeline.StatusGenerating
	slide.Error = ""

	if slide.SourceKind == pipeline.SourceUserUpload {
		if img, ok := project.ImageByID(slide.ImageRef); ok {
			slide.ImageURL = img.Source
		}
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("Slide %d failed: %v", slide.Position, r)
			slide.Status = pipeline.StatusError
			slide.Error = fmt.Sprintf("text generator panic: %v", r)
			out = slide
		}
	}()

	text, err := s.textgen.Generate(ctx, ports.SlideContext{
		Theme:       project.Theme,
		Keywords:    project.Keywords,
		Role:        string(slide.SlideType),
		Position:    slide.Position,
		TotalSlides: len(project.Slides),
		Style:       project.Style,
		HasImage:    slide.SourceKind == pipeline.SourceUserUpload,
	})
	if err != nil {
		if ctx.Err() != nil {
			// Interrupted mid-call: keep the status reached so far.
			return slide
		}
		s.logger.Warn("Slide %d failed: %v", slide.Position, err)
		slide.Status = pipeline.StatusError
		slide.Error = err.Error()
		return slide
	}

	raw := project.OverlayStyle.Clone()
	raw.Content = pipeline.OverlayContent{Primary: text.Primary, Secondary: text.Secondary}
	slide.AIGeneratedOverlay = raw

	display := raw.Clone()
	if override, ok := project.Overrides[slide.Position]; ok {
		display.Content.Primary = override
	}
	if !ResolveVisibility(project.HeadlineVisibility, slide.Position) {
		display.Content.Primary = ""
	}
	slide.TextOverlay = display

	slide.Status = pipeline.StatusReady
	s.logger.Debug("Slide %d ready", slide.Position)
	return slide
}
