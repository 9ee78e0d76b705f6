// Package orchestrator coordinates the carousel stages: allocation, text
// generation, image export and video export.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strings"

	"github.com/user/carousel/pkg/pipeline"
	"github.com/user/carousel/pkg/ports"
	"github.com/user/carousel/pkg/stages/allocate"
	"github.com/user/carousel/pkg/summarizer"
)

// File names written into the output directory.
const (
	StateFileName   = "slides.json"
	SummaryFileName = "summary.md"
	AudioFileName   = "audio.wav"
)

// wholeClip is used as the trim end when no window is configured. Trim
// clamps it to the clip length.
const wholeClip = float64(math.MaxInt32)

// ErrNoReadySlides is returned when a video is requested for a project
// without ready slides.
var ErrNoReadySlides = errors.New("no ready slides")

// Generator is the generate stage with single-slide regeneration.
type Generator interface {
	pipeline.Stage[pipeline.GenerateInput, pipeline.GenerateResult]
	Regenerate(ctx context.Context, project pipeline.Project, slideIndex int) ([]pipeline.CarouselSlide, error)
}

// Stages groups the stages the orchestrator drives. Stages a command does
// not use may be nil.
type Stages struct {
	Allocate pipeline.Stage[pipeline.AllocateInput, pipeline.AllocateResult]
	Generate Generator
	Export   pipeline.Stage[pipeline.ExportInput, pipeline.ExportResult]
	Timing   pipeline.Stage[pipeline.TimingInput, pipeline.VideoTiming]
	Encode   pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	Trim     pipeline.Stage[pipeline.TrimInput, pipeline.TrimResult]
}

// ExportConfig configures image export.
type ExportConfig struct {
	Platforms []pipeline.PlatformSpec
	OutputDir string
	Summary   bool
}

// VideoConfig configures video export.
type VideoConfig struct {
	Platform   pipeline.PlatformSpec
	Settings   pipeline.VideoSettings
	OutputDir  string
	OutputPath string // defaults to OutputDir/video.mp4

	AudioPath string
	TrimStart float64
	TrimEnd   float64 // <= TrimStart keeps the whole clip

	Quality int // CRF
	Bitrate int // kbps
	Backend string
	Summary bool
}

// ExportOutcome is the result of ExportImages.
type ExportOutcome struct {
	Result      pipeline.ExportResult
	Paths       []string // Paths[i] holds Result.Images[i]
	SummaryPath string
}

// VideoOutcome is the result of ExportVideo.
type VideoOutcome struct {
	Path        string
	AudioPath   string
	Timing      pipeline.VideoTiming
	Encoded     pipeline.EncodeResult
	Info        *ports.VideoInfo
	Failures    []pipeline.ExportFailure
	SummaryPath string
}

// Orchestrator coordinates the execution of the carousel stages.
type Orchestrator struct {
	stages Stages
	prober ports.VideoProber
	fs     ports.FileSystem
	sink   ports.DebugSink
	logger ports.Logger
}

// New creates a new Orchestrator. prober may be nil.
func New(stages Stages, prober ports.VideoProber, fs ports.FileSystem, sink ports.DebugSink, logger ports.Logger) *Orchestrator {
	return &Orchestrator{
		stages: stages,
		prober: prober,
		fs:     fs,
		sink:   sink,
		logger: logger,
	}
}

// Plan allocates the uploaded images over project.SlideCount slides and
// replaces the project's slides with fresh pending ones.
func (o *Orchestrator) Plan(ctx context.Context, project pipeline.Project) (pipeline.Project, pipeline.AllocationPlan, error) {
	o.logger.Info("Allocating %d images over %d slides", len(project.Images), project.SlideCount)

	allocated, err := o.stages.Allocate.Execute(ctx, pipeline.AllocateInput{
		UploadedCount: len(project.Images),
		SlideCount:    project.SlideCount,
		Mode:          project.AllocationMode,
	})
	if err != nil {
		o.logger.Error("Failed to allocate images: %s", err)
		return project, pipeline.AllocationPlan{}, fmt.Errorf("allocate stage: %w", err)
	}

	plan := allocated.Plan
	project.Slides = allocate.BuildSlides(plan, project.Images)
	o.logger.Info("Allocation: %d photo slides, %d text-only (%d%%)", plan.Ratio.Uploaded, plan.Ratio.TextOnly, plan.Ratio.PercentUploaded)

	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(plan, "", "  "); err == nil {
			o.sink.SaveAllocationJSON(data)
		}
		o.saveSlidesDebug(project.Slides)
	}
	return project, plan, nil
}

// Generate fills every slide with text. The returned project carries the
// new slides even when an error is returned.
func (o *Orchestrator) Generate(ctx context.Context, project pipeline.Project) (pipeline.Project, pipeline.GenerateResult, error) {
	o.logger.Info("Generating text for %d slides", len(project.Slides))

	result, err := o.stages.Generate.Execute(ctx, pipeline.GenerateInput{Project: project})
	if result.Slides != nil {
		project.Slides = result.Slides
	}
	o.saveSlidesDebug(project.Slides)

	if err != nil {
		o.logger.Error("Failed to generate slides: %s", err)
		return project, result, fmt.Errorf("generate stage: %w", err)
	}
	if result.ErrorCount > 0 {
		o.logger.Warn("%d of %d slides failed, first error: %s", result.ErrorCount, len(result.Slides), result.FirstError)
	} else {
		o.logger.Info("All slides generated")
	}
	return project, result, nil
}

// Regenerate reruns text generation for the slide at slideIndex (0-based).
func (o *Orchestrator) Regenerate(ctx context.Context, project pipeline.Project, slideIndex int) (pipeline.Project, error) {
	o.logger.Info("Regenerating slide %d", slideIndex+1)

	slides, err := o.stages.Generate.Regenerate(ctx, project, slideIndex)
	if slides != nil {
		project.Slides = slides
		o.saveSlidesDebug(project.Slides)
	}
	if err != nil {
		o.logger.Error("Failed to regenerate slide %d: %s", slideIndex+1, err)
		return project, fmt.Errorf("regenerate: %w", err)
	}
	return project, nil
}

// ExportImages composites every ready slide for every platform and writes
// the images to OutputDir/<platform>/slide-NN.<ext>.
func (o *Orchestrator) ExportImages(ctx context.Context, project pipeline.Project, cfg ExportConfig) (ExportOutcome, error) {
	o.logger.Info("Exporting %d slides to %d platforms", len(project.Slides), len(cfg.Platforms))

	result, err := o.stages.Export.Execute(ctx, pipeline.ExportInput{
		Slides:    project.Slides,
		Images:    project.Images,
		Platforms: cfg.Platforms,
		Filter:    &project.Filter,
	})
	outcome := ExportOutcome{Result: result}
	if err != nil {
		o.logger.Error("Failed to export images: %s", err)
		return outcome, fmt.Errorf("export stage: %w", err)
	}

	for _, img := range result.Images {
		path := ImagePath(cfg.OutputDir, img)
		if err := o.fs.WriteFile(path, img.Data); err != nil {
			o.logger.Error("Failed to write output: %s", err)
			return outcome, fmt.Errorf("write %s: %w", path, err)
		}
		outcome.Paths = append(outcome.Paths, path)
	}

	if len(result.Failures) > 0 {
		o.logger.Warn("Exported %d images, %d failed", len(result.Images), len(result.Failures))
	} else {
		o.logger.Info("Exported %d images", len(result.Images))
	}

	if cfg.Summary {
		summary := summarizer.NewBuilder().
			WithProject(&project).
			WithAllocation(ratioOf(project.Slides)).
			WithExport(cfg.Platforms, result, outcome.Paths).
			Build()
		outcome.SummaryPath = filepath.Join(cfg.OutputDir, SummaryFileName)
		if err := o.writeSummary(outcome.SummaryPath, summary); err != nil {
			return outcome, err
		}
	}
	return outcome, nil
}

// ExportVideo renders the ready slides for one platform into a video. When
// an audio path is set, the clip is trimmed, written next to the video as
// WAV and, in match-audio mode, drives the slide duration.
func (o *Orchestrator) ExportVideo(ctx context.Context, project pipeline.Project, cfg VideoConfig) (VideoOutcome, error) {
	var outcome VideoOutcome

	// 1. Composite slides at the video size
	o.logger.Info("Compositing slides for %s video", cfg.Platform.Name)
	exported, err := o.stages.Export.Execute(ctx, pipeline.ExportInput{
		Slides:     project.Slides,
		Images:     project.Images,
		Platforms:  []pipeline.PlatformSpec{cfg.Platform},
		Filter:     &project.Filter,
		KeepImages: true,
	})
	outcome.Failures = exported.Failures
	if err != nil {
		o.logger.Error("Failed to export images: %s", err)
		return outcome, fmt.Errorf("export stage: %w", err)
	}
	slides := make([]image.Image, 0, len(exported.Images))
	for _, img := range exported.Images {
		slides = append(slides, img.Image)
	}
	if len(slides) == 0 {
		return outcome, ErrNoReadySlides
	}

	// 2. Audio
	var clip *pipeline.AudioClip
	if cfg.AudioPath != "" {
		c, path, err := o.trimAudio(ctx, cfg)
		if err != nil {
			return outcome, err
		}
		clip, outcome.AudioPath = c, path
	}

	// 3. Timing
	timing, err := o.stages.Timing.Execute(ctx, pipeline.TimingInput{
		SlideCount: len(slides),
		Clip:       clip,
		Settings:   cfg.Settings,
	})
	if err != nil {
		o.logger.Error("Failed to compute timing: %s", err)
		return outcome, fmt.Errorf("timing stage: %w", err)
	}
	outcome.Timing = timing
	o.logger.Info("Video timing: %d slides x %.2fs, %d frames", len(slides), timing.SlideDuration, timing.TotalFrames)
	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(timing, "", "  "); err == nil {
			o.sink.SaveTimingJSON(data)
		}
	}

	// 4. Encode
	o.logger.Info("Encoding video with CRF %d", cfg.Quality)
	encoded, err := o.stages.Encode.Execute(ctx, pipeline.EncodeInput{
		Slides:     slides,
		Timing:     timing,
		Transition: cfg.Settings.Transition,
		Width:      cfg.Platform.Width,
		Height:     cfg.Platform.Height,
		Quality:    cfg.Quality,
		Bitrate:    cfg.Bitrate,
	})
	if err != nil {
		o.logger.Error("Failed to encode video: %s", err)
		return outcome, fmt.Errorf("encode stage: %w", err)
	}
	outcome.Encoded = encoded
	o.logger.Info("Video encoded: %d bytes", len(encoded.VideoData))

	// 5. Write output file
	outcome.Path = cfg.OutputPath
	if outcome.Path == "" {
		outcome.Path = filepath.Join(cfg.OutputDir, "video.mp4")
	}
	if err := o.fs.WriteFile(outcome.Path, encoded.VideoData); err != nil {
		o.logger.Error("Failed to write output: %s", err)
		return outcome, fmt.Errorf("write output: %w", err)
	}

	if o.prober != nil && strings.EqualFold(filepath.Ext(outcome.Path), ".mp4") {
		info, err := o.prober.Probe(encoded.VideoData)
		if err != nil {
			o.logger.Warn("Could not inspect video: %s", err)
		} else {
			outcome.Info = &info
			o.logger.Debug("Video stream: %s %dx%d, %d samples", info.Codec, info.Width, info.Height, info.SampleCount)
		}
	}

	if cfg.Summary {
		video := summarizer.VideoInfo{
			Path:          outcome.Path,
			AudioPath:     outcome.AudioPath,
			Backend:       cfg.Backend,
			Width:         cfg.Platform.Width / 2 * 2,
			Height:        cfg.Platform.Height / 2 * 2,
			FPS:           timing.FPS,
			FrameCount:    encoded.FrameCount,
			DurationMs:    encoded.DurationMs,
			FileSize:      encoded.FileSize,
			SlideDuration: timing.SlideDuration,
			Transition:    string(cfg.Settings.Transition),
		}
		if outcome.Info != nil {
			video.Codec = outcome.Info.Codec
			video.Width, video.Height = outcome.Info.Width, outcome.Info.Height
		}
		summary := summarizer.NewBuilder().
			WithProject(&project).
			WithAllocation(ratioOf(project.Slides)).
			WithFailures(outcome.Failures).
			WithVideo(video).
			Build()
		outcome.SummaryPath = filepath.Join(cfg.OutputDir, SummaryFileName)
		if err := o.writeSummary(outcome.SummaryPath, summary); err != nil {
			return outcome, err
		}
	}

	o.logger.Info("Video export completed successfully")
	return outcome, nil
}

// trimAudio trims the configured clip and writes it as WAV.
func (o *Orchestrator) trimAudio(ctx context.Context, cfg VideoConfig) (*pipeline.AudioClip, string, error) {
	data, err := o.fs.ReadFile(cfg.AudioPath)
	if err != nil {
		return nil, "", fmt.Errorf("read audio: %w", err)
	}

	start, end := cfg.TrimStart, cfg.TrimEnd
	if end <= start {
		end = wholeClip
	}
	o.logger.Info("Trimming audio %s", filepath.Base(cfg.AudioPath))

	trimmed, err := o.stages.Trim.Execute(ctx, pipeline.TrimInput{Data: data, Start: start, End: end})
	if err != nil {
		o.logger.Error("Failed to trim audio: %s", err)
		return nil, "", fmt.Errorf("trim stage: %w", err)
	}

	path := filepath.Join(cfg.OutputDir, AudioFileName)
	if err := o.fs.WriteFile(path, trimmed.WAV); err != nil {
		return nil, "", fmt.Errorf("write audio: %w", err)
	}
	o.logger.Info("Audio trimmed to %.2fs", trimmed.Duration)

	return &pipeline.AudioClip{
		Duration:  trimmed.Duration,
		TrimStart: start,
		TrimEnd:   start + trimmed.Duration,
	}, path, nil
}

func (o *Orchestrator) writeSummary(path string, summary *summarizer.Summary) error {
	w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), o.fs)
	if err := w.Write(path, summary); err != nil {
		o.logger.Error("Failed to write summary: %s", err)
		return err
	}
	return nil
}

func (o *Orchestrator) saveSlidesDebug(slides []pipeline.CarouselSlide) {
	if !o.sink.Enabled() {
		return
	}
	if data, err := json.MarshalIndent(slides, "", "  "); err == nil {
		o.sink.SaveSlidesJSON(data)
	}
}

// SaveProject writes the project state as JSON.
func (o *Orchestrator) SaveProject(path string, project pipeline.Project) error {
	data, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	if err := o.fs.WriteFile(path, data); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	return nil
}

// LoadProject reads a project written by SaveProject.
func (o *Orchestrator) LoadProject(path string) (pipeline.Project, error) {
	var project pipeline.Project
	data, err := o.fs.ReadFile(path)
	if err != nil {
		return project, fmt.Errorf("read project: %w", err)
	}
	if err := json.Unmarshal(data, &project); err != nil {
		return project, fmt.Errorf("parse project %s: %w", path, err)
	}
	return project, nil
}

// ImagePath is where an exported image is written under dir.
func ImagePath(dir string, img pipeline.ExportedImage) string {
	ext := ports.ParseImageFormat(img.Format).Extension()
	return filepath.Join(dir, img.Platform, fmt.Sprintf("slide-%02d%s", img.SlideIndex+1, ext))
}

// ratioOf recomputes the allocation ratio from the slides' source kinds.
func ratioOf(slides []pipeline.CarouselSlide) pipeline.AllocationRatio {
	var r pipeline.AllocationRatio
	for _, s := range slides {
		if s.SourceKind == pipeline.SourceUserUpload {
			r.Uploaded++
		} else {
			r.TextOnly++
		}
	}
	if n := len(slides); n > 0 {
		r.PercentUploaded = int(math.Round(100 * float64(r.Uploaded) / float64(n)))
	}
	return r
}
