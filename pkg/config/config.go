// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/user/carousel/pkg/filter"
	"github.com/user/carousel/pkg/pipeline"
	"github.com/user/carousel/pkg/platform"
	"github.com/user/carousel/pkg/stages/allocate"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Text generator providers.
const (
	ProviderTemplate = "template"
	ProviderLLM      = "llm"
)

// Config represents a carousel project file.
type Config struct {
	// Content
	Theme              string   `yaml:"theme"`
	Keywords           []string `yaml:"keywords"`
	Style              string   `yaml:"style"`
	SlideCount         int      `yaml:"slide_count"`
	AllocationMode     string   `yaml:"allocation_mode"`
	HeadlineVisibility string   `yaml:"headline_visibility"`
	Images             []string `yaml:"images"`
	OverridesFile      string   `yaml:"overrides"`

	// Look
	Filter  pipeline.FilterConfig `yaml:"filter"`
	Overlay OverlayConfig         `yaml:"overlay"`

	// Export
	Platforms []string `yaml:"platforms"`
	Quality   string   `yaml:"quality"`
	OutputDir string   `yaml:"output"`
	Workers   int      `yaml:"workers"`

	// Video
	Video VideoConfig `yaml:"video"`

	// Text generation
	TextGen TextGenConfig `yaml:"text"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// OverlayConfig is the overlay template applied to generated text.
type OverlayConfig struct {
	FontFamily      string  `yaml:"font_family"`
	FontWeight      string  `yaml:"font_weight"`
	FontPath        string  `yaml:"font_path"`
	PrimarySize     float64 `yaml:"primary_size"`
	SecondarySize   float64 `yaml:"secondary_size"`
	Color           string  `yaml:"color"`
	BackgroundColor string  `yaml:"background_color"`
	Shadow          bool    `yaml:"shadow"`
	ShadowColor     string  `yaml:"shadow_color"`
	StrokeColor     string  `yaml:"stroke_color"`
	StrokeWidth     float64 `yaml:"stroke_width"`
	Alignment       string  `yaml:"alignment"`
	HorizontalAlign string  `yaml:"horizontal_align"`
	Padding         float64 `yaml:"padding"`
}

// VideoConfig extends the timing settings with encoding and audio options.
type VideoConfig struct {
	pipeline.VideoSettings `yaml:",inline"`

	Output    string  `yaml:"output"`
	Audio     string  `yaml:"audio"`
	TrimStart float64 `yaml:"trim_start"`
	TrimEnd   float64 `yaml:"trim_end"`
	Platform  string  `yaml:"platform"`
	Bitrate   int     `yaml:"bitrate"`
	FFmpeg    string  `yaml:"ffmpeg"`
}

// TextGenConfig selects and configures the text generator.
type TextGenConfig struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	style := pipeline.DefaultOverlayStyle()
	return Config{
		SlideCount:         5,
		AllocationMode:     string(pipeline.AllocateSequential),
		HeadlineVisibility: string(pipeline.HeadlineAll),

		Filter: pipeline.FilterConfig{Preset: "none"},
		Overlay: OverlayConfig{
			FontFamily:      style.Styling.Font.Family,
			FontWeight:      style.Styling.Font.Weight,
			PrimarySize:     style.Styling.PrimarySize,
			SecondarySize:   style.Styling.SecondarySize,
			Color:           style.Styling.Color,
			Shadow:          style.Styling.Shadow.Enabled,
			ShadowColor:     style.Styling.Shadow.Color,
			Alignment:       string(style.Positioning.Alignment),
			HorizontalAlign: string(style.Positioning.HorizontalAlign),
			Padding:         style.Positioning.Padding,
		},

		Platforms: []string{"instagram-portrait"},
		OutputDir: "./carousel",

		Video: VideoConfig{
			VideoSettings: pipeline.DefaultVideoSettings(),
			Platform:      "instagram-portrait",
		},

		TextGen: TextGenConfig{
			Provider: ProviderTemplate,
		},

		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file on top of Defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	// Relative image and overrides paths are relative to the project file.
	base := filepath.Dir(path)
	for i, img := range cfg.Images {
		cfg.Images[i] = resolvePath(base, img)
	}
	if cfg.OverridesFile != "" {
		cfg.OverridesFile = resolvePath(base, cfg.OverridesFile)
	}
	if cfg.Video.Audio != "" {
		cfg.Video.Audio = resolvePath(base, cfg.Video.Audio)
	}

	return cfg, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) || strings.Contains(p, "://") {
		return p
	}
	return filepath.Join(base, p)
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	if err := allocate.ValidateSlideCount(c.SlideCount); err != nil {
		return err
	}
	switch pipeline.AllocationMode(c.AllocationMode) {
	case pipeline.AllocateSequential, pipeline.AllocateAuto:
	default:
		return fmt.Errorf("%w: allocation_mode %q", ErrInvalidConfig, c.AllocationMode)
	}
	switch pipeline.HeadlineVisibility(c.HeadlineVisibility) {
	case pipeline.HeadlineAll, pipeline.HeadlineFirstOnly, pipeline.HeadlineNone:
	default:
		return fmt.Errorf("%w: headline_visibility %q", ErrInvalidConfig, c.HeadlineVisibility)
	}
	if c.Filter.Preset != "" && !filter.IsPreset(c.Filter.Preset) {
		return fmt.Errorf("%w: filter preset %q (have %s)", ErrInvalidConfig, c.Filter.Preset, strings.Join(filter.PresetNames(), ", "))
	}
	switch platform.QualityPreset(c.Quality) {
	case "", platform.QualityLow, platform.QualityMedium, platform.QualityHigh:
	default:
		return fmt.Errorf("%w: quality %q", ErrInvalidConfig, c.Quality)
	}
	switch c.TextGen.Provider {
	case "", ProviderTemplate, ProviderLLM:
	default:
		return fmt.Errorf("%w: text provider %q", ErrInvalidConfig, c.TextGen.Provider)
	}
	if c.Video.FPS <= 0 {
		return fmt.Errorf("%w: fps %v", ErrInvalidConfig, c.Video.FPS)
	}
	return nil
}

// ParseColor parses a hex color string to color.Color. Invalid input yields
// black.
func ParseColor(hex string) color.Color {
	return filter.ParseHexOr(hex, color.Black)
}

// OverlayStyle converts the overlay section to a TextOverlay template.
func (c Config) OverlayStyle() pipeline.TextOverlay {
	o := c.Overlay
	style := pipeline.DefaultOverlayStyle()

	style.Styling.Font = pipeline.FontSpec{Family: o.FontFamily, Weight: o.FontWeight, Path: o.FontPath}
	if o.PrimarySize > 0 {
		style.Styling.PrimarySize = o.PrimarySize
	}
	if o.SecondarySize > 0 {
		style.Styling.SecondarySize = o.SecondarySize
	}
	style.Styling.Color = o.Color
	style.Styling.BackgroundColor = o.BackgroundColor
	style.Styling.Shadow.Enabled = o.Shadow
	if o.ShadowColor != "" {
		style.Styling.Shadow.Color = o.ShadowColor
	}
	if o.StrokeWidth > 0 {
		style.Styling.Stroke = &pipeline.StrokeSpec{Color: o.StrokeColor, Width: o.StrokeWidth}
	}
	if o.Alignment != "" {
		style.Positioning.Alignment = pipeline.VerticalAlign(o.Alignment)
	}
	if o.HorizontalAlign != "" {
		style.Positioning.HorizontalAlign = pipeline.HorizontalAlign(o.HorizontalAlign)
	}
	style.Positioning.Padding = o.Padding
	return style
}

// ToProject builds a project without slides. Images get fresh IDs in list
// order.
func (c Config) ToProject() pipeline.Project {
	images := make([]pipeline.UploadedImage, len(c.Images))
	for i, src := range c.Images {
		images[i] = pipeline.UploadedImage{
			ID:       uuid.NewString(),
			Source:   src,
			Filename: filepath.Base(src),
		}
	}
	return pipeline.Project{
		ID:                 uuid.NewString(),
		Theme:              c.Theme,
		Keywords:           c.Keywords,
		Style:              c.Style,
		SlideCount:         c.SlideCount,
		AllocationMode:     pipeline.AllocationMode(c.AllocationMode),
		HeadlineVisibility: pipeline.HeadlineVisibility(c.HeadlineVisibility),
		Images:             images,
		OverlayStyle:       c.OverlayStyle(),
		Filter:             c.Filter,
	}
}

// ToPlatforms resolves the platform list. When a quality preset is set it
// replaces each preset's own JPEG quality.
func (c Config) ToPlatforms() ([]pipeline.PlatformSpec, error) {
	specs, err := platform.Parse(strings.Join(c.Platforms, ","))
	if err != nil {
		return nil, err
	}
	if c.Quality == "" {
		return specs, nil
	}
	preset := platform.QualityPreset(c.Quality)
	for i, spec := range specs {
		b, err := platform.FromPreset(spec.Name)
		if err != nil {
			b = platform.NewBuilder().WithName(spec.Name).WithSize(spec.Width, spec.Height)
		}
		specs[i] = b.WithQualityPreset(preset).Build()
	}
	return specs, nil
}

// ToVideoSettings returns the timing settings with zero values replaced by
// defaults.
func (c Config) ToVideoSettings() pipeline.VideoSettings {
	def := pipeline.DefaultVideoSettings()
	s := c.Video.VideoSettings
	if s.FPS <= 0 {
		s.FPS = def.FPS
	}
	if s.SlideDuration <= 0 {
		s.SlideDuration = def.SlideDuration
	}
	if s.TransitionDuration < 0 {
		s.TransitionDuration = 0
	}
	if s.TimingMode == "" {
		s.TimingMode = def.TimingMode
	}
	if s.Transition == "" {
		s.Transition = def.Transition
	}
	return s
}

// VideoCRF returns the x264 CRF for the configured quality preset.
func (c Config) VideoCRF() int {
	return platform.GetQualitySettings(platform.QualityPreset(c.Quality)).VideoCRF
}
