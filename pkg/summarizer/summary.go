package summarizer

import (
	"time"

	"github.com/user/carousel/pkg/pipeline"
)

// Summary contains everything collected during an export session.
type Summary struct {
	GeneratedAt time.Time

	Project    ProjectInfo
	Allocation AllocationInfo
	Generation GenerationInfo

	// Exports lists image output grouped by platform, in platform order.
	Exports  []PlatformExport
	Failures []FailureInfo

	// Video is nil when no video was rendered.
	Video *VideoInfo
}

// ProjectInfo describes the carousel being exported.
type ProjectInfo struct {
	ID           string
	Theme        string
	SlideCount   int
	Visibility   string
	FilterPreset string
}

// AllocationInfo reports how photos were spread over the slides.
type AllocationInfo struct {
	Uploaded        int
	TextOnly        int
	PercentUploaded int
}

// GenerationInfo reports slide status counts.
type GenerationInfo struct {
	Ready      int
	Errors     int
	Pending    int
	FirstError string
}

// PlatformExport is one platform's exported files.
type PlatformExport struct {
	Platform   string
	Width      int
	Height     int
	Format     string
	Files      []string
	TotalBytes int64
}

// FailureInfo is one failed (platform, slide) pair.
type FailureInfo struct {
	Platform string
	Slide    int // 1-based
	Message  string
}

// VideoInfo describes the rendered video.
type VideoInfo struct {
	Path          string
	AudioPath     string
	Backend       string
	Codec         string
	Width         int
	Height        int
	FPS           float64
	FrameCount    int
	DurationMs    int
	FileSize      int64
	SlideDuration float64
	Transition    string
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithProject records project metadata and counts slide statuses.
func (b *Builder) WithProject(p *pipeline.Project) *Builder {
	b.summary.Project = ProjectInfo{
		ID:           p.ID,
		Theme:        p.Theme,
		SlideCount:   len(p.Slides),
		Visibility:   string(p.HeadlineVisibility),
		FilterPreset: p.Filter.Preset,
	}

	var gen GenerationInfo
	for _, s := range p.Slides {
		switch s.Status {
		case pipeline.StatusReady:
			gen.Ready++
		case pipeline.StatusError:
			gen.Errors++
			if gen.FirstError == "" {
				gen.FirstError = s.Error
			}
		default:
			gen.Pending++
		}
	}
	b.summary.Generation = gen
	return b
}

// WithAllocation records the allocation ratio.
func (b *Builder) WithAllocation(ratio pipeline.AllocationRatio) *Builder {
	b.summary.Allocation = AllocationInfo{
		Uploaded:        ratio.Uploaded,
		TextOnly:        ratio.TextOnly,
		PercentUploaded: ratio.PercentUploaded,
	}
	return b
}

// WithExport groups exported images by platform. paths[i] is where
// result.Images[i] was written.
func (b *Builder) WithExport(platforms []pipeline.PlatformSpec, result pipeline.ExportResult, paths []string) *Builder {
	byName := map[string]*PlatformExport{}
	var exports []PlatformExport
	for _, p := range platforms {
		exports = append(exports, PlatformExport{
			Platform: p.Name,
			Width:    p.Width,
			Height:   p.Height,
			Format:   p.Format,
		})
	}
	for i := range exports {
		byName[exports[i].Platform] = &exports[i]
	}

	for i, img := range result.Images {
		pe, ok := byName[img.Platform]
		if !ok {
			continue
		}
		if i < len(paths) {
			pe.Files = append(pe.Files, paths[i])
		}
		pe.TotalBytes += int64(len(img.Data))
	}
	b.summary.Exports = exports
	return b.WithFailures(result.Failures)
}

// WithFailures appends failed (platform, slide) pairs.
func (b *Builder) WithFailures(failures []pipeline.ExportFailure) *Builder {
	for _, f := range failures {
		b.summary.Failures = append(b.summary.Failures, FailureInfo{
			Platform: f.Platform,
			Slide:    f.SlideIndex + 1,
			Message:  f.Err,
		})
	}
	return b
}

// WithVideo sets video output information.
func (b *Builder) WithVideo(video VideoInfo) *Builder {
	b.summary.Video = &video
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
