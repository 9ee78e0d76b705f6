package main

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/carousel/pkg/adapters/imagestore"
	"github.com/user/carousel/pkg/adapters/llmtext"
	"github.com/user/carousel/pkg/adapters/mp4probe"
	"github.com/user/carousel/pkg/adapters/smartaudio"
	"github.com/user/carousel/pkg/adapters/smartencoder"
	"github.com/user/carousel/pkg/adapters/templatetext"
	"github.com/user/carousel/pkg/config"
	"github.com/user/carousel/pkg/contactsheet"
	"github.com/user/carousel/pkg/orchestrator"
	"github.com/user/carousel/pkg/overrides"
	"github.com/user/carousel/pkg/pipeline"
	"github.com/user/carousel/pkg/platform"
	"github.com/user/carousel/pkg/ports"
	"github.com/user/carousel/pkg/stages/allocate"
	"github.com/user/carousel/pkg/stages/encode"
	"github.com/user/carousel/pkg/stages/export"
	"github.com/user/carousel/pkg/stages/generate"
	"github.com/user/carousel/pkg/stages/timing"
	"github.com/user/carousel/pkg/stages/trim"
)

// apiKeyEnvVars are checked in order for the text generation API key.
var apiKeyEnvVars = []string{"CAROUSEL_API_KEY", "OPENAI_API_KEY"}

func statePath(outputDir string) string {
	return filepath.Join(outputDir, orchestrator.StateFileName)
}

// contentFlags override the project file's content section.
func contentFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "theme", Aliases: []string{"t"}, Usage: l10n.T("Carousel theme"), Category: l10n.T("Content")},
		&cli.StringSliceFlag{Name: "keyword", Aliases: []string{"k"}, Usage: l10n.T("Keyword (repeatable)"), Category: l10n.T("Content")},
		&cli.StringFlag{Name: "style", Usage: l10n.T("Writing style hint"), Category: l10n.T("Content")},
		&cli.StringSliceFlag{Name: "image", Aliases: []string{"i"}, Usage: l10n.T("Photo path or URL (repeatable)"), Category: l10n.T("Content")},
		&cli.IntFlag{Name: "slides", Aliases: []string{"n"}, Usage: l10n.T("Number of slides (1-12)"), Category: l10n.T("Content")},
		&cli.StringFlag{Name: "allocation", Usage: l10n.T("Allocation mode (sequential, auto)"), Category: l10n.T("Content")},
		&cli.StringFlag{Name: "headlines", Usage: l10n.T("Headline visibility (all, first_only, none)"), Category: l10n.T("Content")},
		&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: l10n.T("Filter preset"), Category: l10n.T("Look")},
	}
}

func applyContentFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("theme") {
		cfg.Theme = c.String("theme")
	}
	if c.IsSet("keyword") {
		cfg.Keywords = c.StringSlice("keyword")
	}
	if c.IsSet("style") {
		cfg.Style = c.String("style")
	}
	if c.IsSet("image") {
		cfg.Images = c.StringSlice("image")
	}
	if c.IsSet("slides") {
		cfg.SlideCount = c.Int("slides")
	}
	if c.IsSet("allocation") {
		cfg.AllocationMode = c.String("allocation")
	}
	if c.IsSet("headlines") {
		cfg.HeadlineVisibility = c.String("headlines")
	}
	if c.IsSet("filter") {
		cfg.Filter.Preset = c.String("filter")
	}
}

// textFlags select the text generator.
func textFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "provider", Usage: l10n.T("Text provider (template, llm)"), Category: l10n.T("Text")},
		&cli.StringFlag{Name: "model", Usage: l10n.T("LLM model name"), Category: l10n.T("Text")},
		&cli.StringFlag{Name: "overrides", Usage: l10n.T("CSV file with manual headlines (slide,headline)"), Category: l10n.T("Text")},
	}
}

func applyTextFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("provider") {
		cfg.TextGen.Provider = c.String("provider")
	}
	if c.IsSet("model") {
		cfg.TextGen.Model = c.String("model")
	}
	if c.IsSet("overrides") {
		cfg.OverridesFile = c.String("overrides")
	}
}

func newTextGenerator(e *env) (ports.TextGenerator, error) {
	if e.cfg.TextGen.Provider != config.ProviderLLM {
		return templatetext.New(), nil
	}
	var key string
	for _, name := range apiKeyEnvVars {
		if key = os.Getenv(name); key != "" {
			break
		}
	}
	if key == "" {
		return nil, fmt.Errorf("%w: set %s", llmtext.ErrAPIKeyRequired, strings.Join(apiKeyEnvVars, " or "))
	}
	return llmtext.NewClient(llmtext.Config{
		APIKey:         key,
		BaseURL:        e.cfg.TextGen.BaseURL,
		Model:          e.cfg.TextGen.Model,
		TimeoutSeconds: e.cfg.TextGen.TimeoutSeconds,
	}), nil
}

// orchestratorFor wires the stages a command needs. The text generator and
// video encoder are optional.
func orchestratorFor(e *env, textgen ports.TextGenerator, encoder ports.VideoEncoder) *orchestrator.Orchestrator {
	stages := orchestrator.Stages{
		Allocate: allocate.NewStage(e.log),
		Export:   export.NewStage(e.renderer, imagestore.New(), e.sink, e.log, e.cfg.Workers),
		Timing:   timing.NewStage(e.log),
		Trim:     trim.NewStage(smartaudio.New(smartaudio.Options{FFmpegPath: e.cfg.Video.FFmpeg, Logger: e.log}), e.log),
	}
	if textgen != nil {
		stages.Generate = generate.NewStage(textgen, e.log, e.cfg.Workers)
	}
	if encoder != nil {
		stages.Encode = encode.NewStage(e.renderer, encoder, e.sink, e.log)
	}
	return orchestrator.New(stages, mp4probe.New(), e.fs, e.sink, e.log)
}

// applyOverrides loads the overrides CSV, if any, into the project.
func applyOverrides(e *env, project *pipeline.Project) error {
	path := e.cfg.OverridesFile
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open overrides: %w", err)
	}
	defer f.Close()

	parsed, err := overrides.Parse(f, len(project.Slides))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	project.Overrides = parsed
	e.log.Info("Loaded %d headline overrides", len(parsed))
	return nil
}

// loadState reads the saved project or fails with a hint to run plan.
func loadState(e *env, orch *orchestrator.Orchestrator) (pipeline.Project, error) {
	if ok, _ := e.fs.Exists(e.state); !ok {
		return pipeline.Project{}, fmt.Errorf("%s not found, run `carousel plan` first", e.state)
	}
	return orch.LoadProject(e.state)
}

func planCommand() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: l10n.T("Allocate photos to slides and save the project state"),
		Flags: contentFlags(),
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.cancel()

			applyContentFlags(c, &e.cfg)
			if err := e.cfg.Validate(); err != nil {
				return err
			}

			orch := orchestratorFor(e, nil, nil)
			project, _, err := orch.Plan(e.ctx, e.cfg.ToProject())
			if err != nil {
				return err
			}
			if err := orch.SaveProject(e.state, project); err != nil {
				return err
			}

			for _, s := range project.Slides {
				source := l10n.T("text only")
				if img, ok := project.ImageByID(s.ImageRef); ok {
					source = img.Filename
				}
				fmt.Printf("%2d  %-6s  %s\n", s.Position+1, s.SlideType, source)
			}
			e.log.Info("Project saved to %s", e.state)
			return nil
		},
	}
}

func generateCommand() *cli.Command {
	flags := append(contentFlags(), textFlags()...)
	flags = append(flags,
		&cli.BoolFlag{Name: "fresh", Usage: l10n.T("Plan again instead of reusing the saved state"), Category: l10n.T("Content")},
		&cli.StringFlag{Name: "save-headlines", Usage: l10n.T("Write generated headlines as an editable overrides CSV"), Category: l10n.T("Text")},
	)
	return &cli.Command{
		Name:  "generate",
		Usage: l10n.T("Generate text overlays for every slide"),
		Flags: flags,
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.cancel()

			applyContentFlags(c, &e.cfg)
			applyTextFlags(c, &e.cfg)
			if err := e.cfg.Validate(); err != nil {
				return err
			}

			textgen, err := newTextGenerator(e)
			if err != nil {
				return err
			}
			orch := orchestratorFor(e, textgen, nil)

			var project pipeline.Project
			if ok, _ := e.fs.Exists(e.state); ok && !c.Bool("fresh") {
				if project, err = orch.LoadProject(e.state); err != nil {
					return err
				}
			} else if project, _, err = orch.Plan(e.ctx, e.cfg.ToProject()); err != nil {
				return err
			}
			if err := applyOverrides(e, &project); err != nil {
				return err
			}

			project, _, genErr := orch.Generate(e.ctx, project)
			if err := orch.SaveProject(e.state, project); err != nil {
				return err
			}
			if path := c.String("save-headlines"); path != "" {
				if err := saveHeadlines(e, path, project); err != nil {
					return err
				}
			}
			return genErr
		},
	}
}

// saveHeadlines writes the raw generated headlines as overrides CSV.
func saveHeadlines(e *env, path string, project pipeline.Project) error {
	headlines := map[int]string{}
	for _, s := range project.Slides {
		if s.AIGeneratedOverlay != nil {
			headlines[s.Position] = s.AIGeneratedOverlay.Content.Primary
		}
	}
	var b strings.Builder
	if err := overrides.Write(&b, headlines); err != nil {
		return err
	}
	if err := e.fs.WriteFile(path, []byte(b.String())); err != nil {
		return fmt.Errorf("write headlines: %w", err)
	}
	e.log.Info("Headlines saved to %s", path)
	return nil
}

func regenerateCommand() *cli.Command {
	flags := append(textFlags(), &cli.IntFlag{Name: "slide", Aliases: []string{"s"}, Required: true, Usage: l10n.T("Slide number to regenerate (1-based)")})
	return &cli.Command{
		Name:  "regenerate",
		Usage: l10n.T("Regenerate the text of a single slide"),
		Flags: flags,
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.cancel()

			applyTextFlags(c, &e.cfg)
			textgen, err := newTextGenerator(e)
			if err != nil {
				return err
			}
			orch := orchestratorFor(e, textgen, nil)

			project, err := loadState(e, orch)
			if err != nil {
				return err
			}
			if err := applyOverrides(e, &project); err != nil {
				return err
			}

			project, regenErr := orch.Regenerate(e.ctx, project, c.Int("slide")-1)
			if errors.Is(regenErr, generate.ErrSlideIndexOutOfRange) {
				return regenErr
			}
			if err := orch.SaveProject(e.state, project); err != nil {
				return err
			}
			return regenErr
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: l10n.T("Export slide images for each platform"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "platforms", Aliases: []string{"p"}, Usage: l10n.T("Comma separated platforms or WxH sizes"), Category: l10n.T("Output")},
			&cli.StringFlag{Name: "quality", Usage: l10n.T("Quality preset (low, medium, high)"), Category: l10n.T("Output")},
			&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: l10n.T("Filter preset"), Category: l10n.T("Look")},
			&cli.BoolFlag{Name: "no-summary", Usage: l10n.T("Do not write summary.md"), Category: l10n.T("Output")},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.cancel()

			if c.IsSet("platforms") {
				e.cfg.Platforms = strings.Split(c.String("platforms"), ",")
			}
			if c.IsSet("quality") {
				e.cfg.Quality = c.String("quality")
			}
			platforms, err := e.cfg.ToPlatforms()
			if err != nil {
				return err
			}

			orch := orchestratorFor(e, nil, nil)
			project, err := loadState(e, orch)
			if err != nil {
				return err
			}
			if c.IsSet("filter") {
				project.Filter.Preset = c.String("filter")
			}

			outcome, err := orch.ExportImages(e.ctx, project, orchestrator.ExportConfig{
				Platforms: platforms,
				OutputDir: e.cfg.OutputDir,
				Summary:   !c.Bool("no-summary"),
			})
			if err != nil {
				return err
			}
			if outcome.SummaryPath != "" {
				e.log.Info("Summary saved to %s", outcome.SummaryPath)
			}
			return nil
		},
	}
}

func videoCommand() *cli.Command {
	return &cli.Command{
		Name:  "video",
		Usage: l10n.T("Render the slides into a video"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "platform", Aliases: []string{"p"}, Usage: l10n.T("Video platform or WxH size"), Category: l10n.T("Video")},
			&cli.Float64Flag{Name: "fps", Usage: l10n.T("Frames per second"), Category: l10n.T("Video")},
			&cli.Float64Flag{Name: "slide-duration", Usage: l10n.T("Seconds per slide"), Category: l10n.T("Video")},
			&cli.Float64Flag{Name: "transition-duration", Usage: l10n.T("Transition length in seconds"), Category: l10n.T("Video")},
			&cli.StringFlag{Name: "transition", Usage: l10n.T("Transition (none, crossfade, slide)"), Category: l10n.T("Video")},
			&cli.StringFlag{Name: "timing", Usage: l10n.T("Timing mode (fixed, match-audio)"), Category: l10n.T("Video")},
			&cli.StringFlag{Name: "audio", Aliases: []string{"a"}, Usage: l10n.T("Narration audio file"), Category: l10n.T("Audio")},
			&cli.Float64Flag{Name: "trim-start", Usage: l10n.T("Audio trim start in seconds"), Category: l10n.T("Audio")},
			&cli.Float64Flag{Name: "trim-end", Usage: l10n.T("Audio trim end in seconds (0 = end of clip)"), Category: l10n.T("Audio")},
			&cli.IntFlag{Name: "crf", Usage: l10n.T("Video CRF value (0-51, lower is better, overrides quality preset)"), Category: l10n.T("Video")},
			&cli.IntFlag{Name: "bitrate", Usage: l10n.T("Target bitrate in kbps"), Category: l10n.T("Video")},
			&cli.StringFlag{Name: "ffmpeg", Usage: l10n.T("Path to ffmpeg (falls back to FFMPEG_PATH env, then PATH)"), Category: l10n.T("Video")},
			&cli.BoolFlag{Name: "no-fallback", Usage: l10n.T("Fail instead of writing PNG frames when ffmpeg is missing"), Category: l10n.T("Video")},
			&cli.StringFlag{Name: "file", Usage: l10n.T("Video file path (default: <output>/video.mp4)"), Category: l10n.T("Output")},
			&cli.BoolFlag{Name: "no-summary", Usage: l10n.T("Do not write summary.md"), Category: l10n.T("Output")},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.cancel()

			v := &e.cfg.Video
			if c.IsSet("platform") {
				v.Platform = c.String("platform")
			}
			if c.IsSet("fps") {
				v.FPS = c.Float64("fps")
			}
			if c.IsSet("slide-duration") {
				v.SlideDuration = c.Float64("slide-duration")
			}
			if c.IsSet("transition-duration") {
				v.TransitionDuration = c.Float64("transition-duration")
			}
			if c.IsSet("transition") {
				v.Transition = pipeline.TransitionKind(c.String("transition"))
			}
			if c.IsSet("timing") {
				v.TimingMode = pipeline.TimingMode(c.String("timing"))
			}
			if c.IsSet("audio") {
				v.Audio = c.String("audio")
			}
			if c.IsSet("trim-start") {
				v.TrimStart = c.Float64("trim-start")
			}
			if c.IsSet("trim-end") {
				v.TrimEnd = c.Float64("trim-end")
			}
			if c.IsSet("bitrate") {
				v.Bitrate = c.Int("bitrate")
			}
			if c.IsSet("ffmpeg") {
				v.FFmpeg = c.String("ffmpeg")
			}
			if c.IsSet("file") {
				v.Output = c.String("file")
			}

			specs, err := platform.Parse(v.Platform)
			if err != nil {
				return err
			}

			encoder, info, err := smartencoder.New(smartencoder.Options{
				FFmpegPath:      v.FFmpeg,
				DisableFallback: c.Bool("no-fallback"),
				Logger:          e.log,
			})
			if err != nil {
				return err
			}

			output := v.Output
			if output == "" {
				output = filepath.Join(e.cfg.OutputDir, "video"+info.Backend.Extension())
			}
			crf := e.cfg.VideoCRF()
			if c.IsSet("crf") {
				crf = c.Int("crf")
			}

			orch := orchestratorFor(e, nil, encoder)
			project, err := loadState(e, orch)
			if err != nil {
				return err
			}

			outcome, err := orch.ExportVideo(e.ctx, project, orchestrator.VideoConfig{
				Platform:   specs[0],
				Settings:   e.cfg.ToVideoSettings(),
				OutputDir:  e.cfg.OutputDir,
				OutputPath: output,
				AudioPath:  v.Audio,
				TrimStart:  v.TrimStart,
				TrimEnd:    v.TrimEnd,
				Quality:    crf,
				Bitrate:    v.Bitrate,
				Backend:    string(info.Backend),
				Summary:    !c.Bool("no-summary"),
			})
			if err != nil {
				return err
			}
			e.log.Info("Output saved to %s", outcome.Path)
			return nil
		},
	}
}

func trimCommand() *cli.Command {
	return &cli.Command{
		Name:      "trim",
		Usage:     l10n.T("Trim an audio file to a window and save it as WAV"),
		ArgsUsage: "<audio>",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "start", Usage: l10n.T("Start in seconds")},
			&cli.Float64Flag{Name: "end", Required: true, Usage: l10n.T("End in seconds")},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: l10n.T("Output WAV path")},
			&cli.StringFlag{Name: "ffmpeg", Usage: l10n.T("Path to ffmpeg for non-WAV input")},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit(l10n.T("An audio file argument is required"), 2)
			}
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.cancel()

			data, err := e.fs.ReadFile(c.Args().First())
			if err != nil {
				return err
			}

			decoder := smartaudio.New(smartaudio.Options{FFmpegPath: c.String("ffmpeg"), Logger: e.log})
			result, err := trim.NewStage(decoder, e.log).Execute(e.ctx, pipeline.TrimInput{
				Data:  data,
				Start: c.Float64("start"),
				End:   c.Float64("end"),
			})
			if err != nil {
				return err
			}
			if err := e.fs.WriteFile(c.String("file"), result.WAV); err != nil {
				return err
			}
			e.log.Info("Trimmed audio saved to %s (%.2fs)", c.String("file"), result.Duration)
			return nil
		},
	}
}

func contactSheetCommand() *cli.Command {
	def := contactsheet.DefaultOptions()
	return &cli.Command{
		Name:  "contact-sheet",
		Usage: l10n.T("Render a preview grid of all slides"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "platform", Aliases: []string{"p"}, Value: "instagram-portrait", Usage: l10n.T("Platform whose composites are previewed")},
			&cli.IntFlag{Name: "columns", Value: def.Columns, Usage: l10n.T("Cells per row")},
			&cli.IntFlag{Name: "cell-width", Value: def.CellWidth, Usage: l10n.T("Cell width in pixels")},
			&cli.IntFlag{Name: "cell-height", Value: def.CellHeight, Usage: l10n.T("Cell height in pixels")},
			&cli.StringFlag{Name: "file", Usage: l10n.T("Output PNG path (default: <output>/contact-sheet.png)")},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.cancel()

			specs, err := platform.Parse(c.String("platform"))
			if err != nil {
				return err
			}
			orch := orchestratorFor(e, nil, nil)
			project, err := loadState(e, orch)
			if err != nil {
				return err
			}

			exported, err := export.NewStage(e.renderer, imagestore.New(), e.sink, e.log, e.cfg.Workers).
				Execute(e.ctx, pipeline.ExportInput{
					Slides:     project.Slides,
					Images:     project.Images,
					Platforms:  specs[:1],
					Filter:     &project.Filter,
					KeepImages: true,
				})
			if err != nil {
				return err
			}

			opts := def
			opts.Columns = c.Int("columns")
			opts.CellWidth = c.Int("cell-width")
			opts.CellHeight = c.Int("cell-height")

			output := c.String("file")
			if output == "" {
				output = filepath.Join(e.cfg.OutputDir, "contact-sheet.png")
			}

			sheet := contactsheet.New(e.renderer, e.fs, e.log, opts)
			images := make([]image.Image, len(exported.Images))
			for i, img := range exported.Images {
				images[i] = img.Image
			}
			if _, err := sheet.Execute(e.ctx, contactsheet.Input{Images: images, OutputPath: output}); err != nil {
				return err
			}
			e.log.Info("Output saved to %s", output)
			return nil
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: l10n.T("Show version information"),
		Action: func(c *cli.Context) error {
			fmt.Println(l10n.F("carousel (Go) version %s", version))
			return nil
		},
	}
}
