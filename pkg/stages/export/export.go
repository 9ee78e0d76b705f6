// Package export composites finished slides into encoded images for each
// target platform.
package export

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sort"
	"sync"

	"github.com/user/carousel/pkg/filter"
	"github.com/user/carousel/pkg/overlay"
	"github.com/user/carousel/pkg/pipeline"
	"github.com/user/carousel/pkg/ports"
)

// TextOnlyBackground is the canvas colour for slides without a photo when
// the overlay sets no background colour.
var TextOnlyBackground = color.NRGBA{R: 0x2b, G: 0x2b, B: 0x2b, A: 0xff}

// Stage composites platforms x ready slides.
type Stage struct {
	renderer   ports.Renderer
	store      ports.ImageStore
	overlays   *overlay.Renderer
	sink       ports.DebugSink
	logger     ports.Logger
	numWorkers int
}

// NewStage creates a new export stage. numWorkers <= 0 uses runtime.NumCPU.
func NewStage(renderer ports.Renderer, store ports.ImageStore, sink ports.DebugSink, logger ports.Logger, numWorkers int) *Stage {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Stage{
		renderer:   renderer,
		store:      store,
		overlays:   overlay.NewRenderer(renderer),
		sink:       sink,
		logger:     logger.WithComponent("export"),
		numWorkers: numWorkers,
	}
}

type job struct {
	platform int
	slide    int // index into the ready slice
}

type outcome struct {
	job   job
	image *pipeline.ExportedImage
	err   error
}

// sourceLoader decodes a slide's bound image at most once.
type sourceLoader func() (image.Image, error)

// Execute composites every (platform, ready slide) pair. Pairs that fail are
// logged, recorded in Failures and skipped. Results are ordered by platform
// then slide position. ErrNothingExported is returned only when no pair
// succeeded.
func (s *Stage) Execute(ctx context.Context, input pipeline.ExportInput) (pipeline.ExportResult, error) {
	var ready []pipeline.CarouselSlide
	for _, slide := range input.Slides {
		if slide.Status == pipeline.StatusReady {
			ready = append(ready, slide)
		}
	}

	total := len(ready) * len(input.Platforms)
	if total == 0 {
		return pipeline.ExportResult{}, fmt.Errorf("%w: %d ready slides, %d platforms", ErrNothingExported, len(ready), len(input.Platforms))
	}

	var recipe filter.Recipe
	if input.Filter != nil {
		recipe = filter.Resolve(*input.Filter)
	}

	images := make(map[string]pipeline.UploadedImage, len(input.Images))
	for _, img := range input.Images {
		images[img.ID] = img
	}
	loaders := make([]sourceLoader, len(ready))
	for i, slide := range ready {
		if isPhoto(slide) {
			loaders[i] = s.loader(ctx, slide, images)
		}
	}

	numWorkers := min(s.numWorkers, total)
	s.logger.Debug("Exporting %d slides to %d platforms with %d workers", len(ready), len(input.Platforms), numWorkers)

	jobs := make(chan job, total)
	results := make(chan outcome, total)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					continue
				}
				img, err := s.safeComposite(input, ready[j.slide], input.Platforms[j.platform], j.platform == 0, loaders[j.slide], recipe)
				results <- outcome{job: j, image: img, err: err}
			}
		}()
	}

	for p := range input.Platforms {
		for i := range ready {
			jobs <- job{platform: p, slide: i}
		}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]outcome, 0, total)
	for o := range results {
		outcomes = append(outcomes, o)
	}
	sort.Slice(outcomes, func(i, j int) bool {
		a, b := outcomes[i].job, outcomes[j].job
		if a.platform != b.platform {
			return a.platform < b.platform
		}
		return ready[a.slide].Position < ready[b.slide].Position
	})

	var result pipeline.ExportResult
	for _, o := range outcomes {
		platform := input.Platforms[o.job.platform]
		slide := ready[o.job.slide]
		if o.err != nil {
			s.logger.Warn("Export %s slide %d failed: %v", platform.Name, slide.Position, o.err)
			result.Failures = append(result.Failures, pipeline.ExportFailure{
				Platform:   platform.Name,
				SlideIndex: slide.Position,
				Err:        o.err.Error(),
			})
			continue
		}
		result.Images = append(result.Images, *o.image)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if len(result.Images) == 0 {
		return result, fmt.Errorf("%w: all %d pairs failed", ErrNothingExported, len(result.Failures))
	}

	s.logger.Debug("Exported %d images, %d failures", len(result.Images), len(result.Failures))
	return result, nil
}

func isPhoto(slide pipeline.CarouselSlide) bool {
	return slide.SourceKind == pipeline.SourceUserUpload && slide.ImageRef != ""
}

// loader returns a shared, lazily evaluated decode of the slide's image.
func (s *Stage) loader(ctx context.Context, slide pipeline.CarouselSlide, images map[string]pipeline.UploadedImage) sourceLoader {
	return sync.OnceValues(func() (image.Image, error) {
		ref, ok := images[slide.ImageRef]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, slide.ImageRef)
		}
		data, err := s.store.Open(ctx, ref.Source)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", ref.Source, err)
		}
		img, err := s.renderer.DecodeImage(data, ports.FormatAuto)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", ref.Source, err)
		}
		return img, nil
	})
}

// safeComposite turns a panic in one pair into that pair's error.
func (s *Stage) safeComposite(
	input pipeline.ExportInput,
	slide pipeline.CarouselSlide,
	platform pipeline.PlatformSpec,
	saveOverlay bool,
	load sourceLoader,
	recipe filter.Recipe,
) (img *pipeline.ExportedImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return s.composite(input, slide, platform, saveOverlay, load, recipe)
}

// composite runs crop, cover, filter, overlay and encode for one pair.
func (s *Stage) composite(
	input pipeline.ExportInput,
	slide pipeline.CarouselSlide,
	platform pipeline.PlatformSpec,
	saveOverlay bool,
	load sourceLoader,
	recipe filter.Recipe,
) (*pipeline.ExportedImage, error) {
	width, height := platform.Width, platform.Height
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid platform size %dx%d", width, height)
	}

	var canvas ports.Canvas
	if load == nil {
		bg := color.Color(TextOnlyBackground)
		if slide.TextOverlay != nil {
			bg = filter.ParseHexOr(slide.TextOverlay.Styling.BackgroundColor, TextOnlyBackground)
		}
		canvas = s.renderer.CreateCanvas(width, height, bg)
	} else {
		src, err := load()
		if err != nil {
			return nil, err
		}

		if slide.CropArea != nil {
			b := src.Bounds()
			rect := slide.CropArea.ToPixels(b.Dx(), b.Dy())
			if rect.Empty() {
				return nil, fmt.Errorf("%w: %+v", ErrEmptyCrop, *slide.CropArea)
			}
			src = s.renderer.CropImage(src, rect)
		}

		src = s.renderer.CoverImage(src, width, height)
		if !recipe.Empty() {
			src = filter.Apply(src, recipe)
		}

		canvas = s.renderer.CreateCanvas(width, height, nil)
		canvas.DrawImage(src, 0, 0)
	}

	layer, err := s.overlays.Render(slide.TextOverlay, width, height)
	if err != nil {
		return nil, fmt.Errorf("render overlay: %w", err)
	}
	if layer.Visible {
		canvas.DrawImage(layer.Image, 0, 0)
		if saveOverlay && s.sink.Enabled() {
			s.sink.SaveOverlay(slide.Position, layer.Image)
		}
	}

	final := canvas.ToImage()
	format := ports.ParseImageFormat(platform.Format)
	data, err := s.renderer.EncodeImage(final, format, platform.Quality)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}

	out := &pipeline.ExportedImage{
		Platform:   platform.Name,
		SlideIndex: slide.Position,
		Format:     format.String(),
		Width:      width,
		Height:     height,
		Data:       data,
	}
	if input.KeepImages {
		out.Image = final
	}
	return out, nil
}

// ContainFit letterboxes img into width x height for presentation previews.
// The export path always uses cover fitting.
func ContainFit(renderer ports.Renderer, img image.Image, width, height int, bg color.Color) image.Image {
	return renderer.ContainImage(img, width, height, bg)
}
