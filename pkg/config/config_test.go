package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/carousel/pkg/pipeline"
	"github.com/user/carousel/pkg/stages/allocate"
)

func TestDefaults_Valid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("Defaults().Validate() = %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "carousel.yaml")
	content := `theme: Kyoto in autumn
keywords: [temples, maple]
slide_count: 4
headline_visibility: first_only
images:
  - photos/a.jpg
  - /abs/b.jpg
  - https://example.com/c.jpg
overrides: overrides.csv
filter:
  preset: earlybird
  params:
    bloom: 50
platforms: [instagram-portrait, x]
quality: high
video:
  fps: 24
  transition: slide
  audio: narration.wav
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Theme != "Kyoto in autumn" || cfg.SlideCount != 4 {
		t.Errorf("content = %q/%d", cfg.Theme, cfg.SlideCount)
	}
	if cfg.Images[0] != filepath.Join(dir, "photos/a.jpg") {
		t.Errorf("relative image not resolved: %s", cfg.Images[0])
	}
	if cfg.Images[1] != "/abs/b.jpg" || cfg.Images[2] != "https://example.com/c.jpg" {
		t.Errorf("absolute/url images changed: %v", cfg.Images[1:])
	}
	if cfg.OverridesFile != filepath.Join(dir, "overrides.csv") {
		t.Errorf("OverridesFile = %s", cfg.OverridesFile)
	}
	if cfg.Filter.Preset != "earlybird" || cfg.Filter.Params.Bloom != 50 {
		t.Errorf("Filter = %+v", cfg.Filter)
	}
	if cfg.Video.FPS != 24 || cfg.Video.Transition != pipeline.TransitionSlide {
		t.Errorf("Video = %+v", cfg.Video)
	}
	// Untouched defaults survive.
	if cfg.Video.SlideDuration != 3 || cfg.AllocationMode != "sequential" {
		t.Errorf("defaults lost: slide=%v mode=%s", cfg.Video.SlideDuration, cfg.AllocationMode)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"slide count zero", func(c *Config) { c.SlideCount = 0 }, allocate.ErrInvalidSlideCount},
		{"slide count 13", func(c *Config) { c.SlideCount = 13 }, allocate.ErrInvalidSlideCount},
		{"allocation mode", func(c *Config) { c.AllocationMode = "random" }, ErrInvalidConfig},
		{"visibility", func(c *Config) { c.HeadlineVisibility = "some" }, ErrInvalidConfig},
		{"filter preset", func(c *Config) { c.Filter.Preset = "sepia-ish" }, ErrInvalidConfig},
		{"quality", func(c *Config) { c.Quality = "ultra" }, ErrInvalidConfig},
		{"provider", func(c *Config) { c.TextGen.Provider = "magic" }, ErrInvalidConfig},
		{"fps", func(c *Config) { c.Video.FPS = 0 }, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	got := color.NRGBAModel.Convert(ParseColor("#ff8000")).(color.NRGBA)
	if got.R != 0xff || got.G != 0x80 || got.B != 0 {
		t.Errorf("ParseColor(#ff8000) = %v", got)
	}
	r, g, b, _ := ParseColor("zzz").RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("invalid colour should be black")
	}
}

func TestToProject(t *testing.T) {
	cfg := Defaults()
	cfg.Theme = "t"
	cfg.Images = []string{"/x/a.jpg", "/x/b.png"}
	cfg.Overlay.StrokeWidth = 2
	cfg.Overlay.StrokeColor = "#000000"

	p := cfg.ToProject()

	if p.ID == "" {
		t.Error("project ID should be set")
	}
	if len(p.Images) != 2 || p.Images[1].Filename != "b.png" || p.Images[0].ID == p.Images[1].ID {
		t.Errorf("Images = %+v", p.Images)
	}
	if p.Slides != nil {
		t.Errorf("slides should not be built yet")
	}
	if p.OverlayStyle.Styling.Stroke == nil || p.OverlayStyle.Styling.Stroke.Width != 2 {
		t.Errorf("stroke not applied: %+v", p.OverlayStyle.Styling.Stroke)
	}
	if p.OverlayStyle.Styling.PrimarySize != 72 {
		t.Errorf("PrimarySize = %v", p.OverlayStyle.Styling.PrimarySize)
	}
}

func TestToPlatforms(t *testing.T) {
	cfg := Defaults()
	cfg.Platforms = []string{"facebook", "linkedin", "1200x628"}

	specs, err := cfg.ToPlatforms()
	if err != nil {
		t.Fatalf("ToPlatforms: %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("got %d specs", len(specs))
	}
	if specs[0].Quality != 85 {
		t.Errorf("facebook quality = %d, want preset 85", specs[0].Quality)
	}

	cfg.Quality = "low"
	specs, err = cfg.ToPlatforms()
	if err != nil {
		t.Fatal(err)
	}
	if specs[0].Quality != 75 {
		t.Errorf("facebook quality = %d, want 75", specs[0].Quality)
	}
	if specs[1].Format != "png" || specs[1].Quality != 0 {
		t.Errorf("linkedin = %+v, want png without quality", specs[1])
	}
	if specs[2].Width != 1200 || specs[2].Height != 628 || specs[2].Quality != 75 {
		t.Errorf("custom = %+v", specs[2])
	}
}

func TestToVideoSettings_FillsZeros(t *testing.T) {
	cfg := Config{}
	s := cfg.ToVideoSettings()
	if s.FPS != 30 || s.SlideDuration != 3 || s.TimingMode != pipeline.TimingFixed || s.Transition != pipeline.TransitionCrossfade {
		t.Errorf("ToVideoSettings() = %+v", s)
	}
	// A zero transition is a valid choice and is kept.
	if s.TransitionDuration != 0 {
		t.Errorf("TransitionDuration = %v, want 0", s.TransitionDuration)
	}
}
