// Package platform provides the built-in publishing platform image specs and
// a fluent builder for custom ones.
package platform

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/user/carousel/pkg/pipeline"
	"github.com/user/carousel/pkg/ports"
)

// DefaultJPEGQuality is used when a platform sets no JPEG quality.
const DefaultJPEGQuality = 90

// ErrUnknownPlatform is returned for names that are neither presets nor
// WxH custom sizes.
var ErrUnknownPlatform = errors.New("unknown platform")

// QualityPreset names a quality level shared by image and video export.
type QualityPreset string

const (
	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// QualitySettings contains quality parameters for image and video encoding.
type QualitySettings struct {
	JPEGQuality int // 1-100, higher is better
	VideoCRF    int // x264 CRF 0-51, lower is better
}

// GetQualitySettings returns quality settings for the given preset.
func GetQualitySettings(preset QualityPreset) QualitySettings {
	switch preset {
	case QualityLow:
		return QualitySettings{JPEGQuality: 75, VideoCRF: 30}
	case QualityHigh:
		return QualitySettings{JPEGQuality: 95, VideoCRF: 18}
	default: // medium
		return QualitySettings{JPEGQuality: 88, VideoCRF: 23}
	}
}

var presets = []pipeline.PlatformSpec{
	{Name: "instagram-portrait", Width: 1080, Height: 1350, Format: "jpeg", Quality: DefaultJPEGQuality},
	{Name: "instagram-square", Width: 1080, Height: 1080, Format: "jpeg", Quality: DefaultJPEGQuality},
	{Name: "instagram-story", Width: 1080, Height: 1920, Format: "jpeg", Quality: DefaultJPEGQuality},
	{Name: "tiktok", Width: 1080, Height: 1920, Format: "jpeg", Quality: DefaultJPEGQuality},
	{Name: "facebook", Width: 1080, Height: 1350, Format: "jpeg", Quality: 85},
	{Name: "linkedin", Width: 1080, Height: 1350, Format: "png"},
	{Name: "x", Width: 1600, Height: 900, Format: "jpeg", Quality: 85},
	{Name: "pinterest", Width: 1000, Height: 1500, Format: "png"},
}

// Names returns the preset names in display order.
func Names() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// Lookup returns the preset called name.
func Lookup(name string) (pipeline.PlatformSpec, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	i := slices.IndexFunc(presets, func(p pipeline.PlatformSpec) bool { return p.Name == name })
	if i < 0 {
		return pipeline.PlatformSpec{}, false
	}
	return presets[i], true
}

// Parse resolves a comma separated list of preset names or custom WxH sizes
// (e.g. "instagram-portrait,1200x628"). Duplicates are dropped.
func Parse(list string) ([]pipeline.PlatformSpec, error) {
	var specs []pipeline.PlatformSpec
	seen := map[string]bool{}
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" || seen[strings.ToLower(item)] {
			continue
		}
		seen[strings.ToLower(item)] = true

		if spec, ok := Lookup(item); ok {
			specs = append(specs, spec)
			continue
		}
		w, h, err := parseSize(item)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, item)
		}
		specs = append(specs, NewBuilder().WithName(item).WithSize(w, h).Build())
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: empty list", ErrUnknownPlatform)
	}
	return specs, nil
}

func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("not a size: %s", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, err
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, err
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("non-positive size: %s", s)
	}
	return w, h, nil
}

// Builder provides a fluent interface for building a PlatformSpec.
type Builder struct {
	spec pipeline.PlatformSpec
}

// NewBuilder starts from the instagram-portrait preset.
func NewBuilder() *Builder {
	spec, _ := Lookup("instagram-portrait")
	return &Builder{spec: spec}
}

// FromPreset starts from a named preset.
func FromPreset(name string) (*Builder, error) {
	spec, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
	}
	return &Builder{spec: spec}, nil
}

// WithName sets the platform name used in output file names.
func (b *Builder) WithName(name string) *Builder {
	b.spec.Name = name
	return b
}

// WithSize sets the output pixel size.
func (b *Builder) WithSize(width, height int) *Builder {
	b.spec.Width = width
	b.spec.Height = height
	return b
}

// WithFormat sets the output format (jpeg or png).
func (b *Builder) WithFormat(format string) *Builder {
	b.spec.Format = format
	return b
}

// WithQuality sets the JPEG quality.
func (b *Builder) WithQuality(quality int) *Builder {
	b.spec.Quality = quality
	return b
}

// WithQualityPreset applies a quality preset's JPEG quality.
func (b *Builder) WithQualityPreset(preset QualityPreset) *Builder {
	b.spec.Quality = GetQualitySettings(preset).JPEGQuality
	return b
}

// Build returns the final spec with constraints applied.
func (b *Builder) Build() pipeline.PlatformSpec {
	spec := b.spec

	spec.Width = max(1, spec.Width)
	spec.Height = max(1, spec.Height)

	format := ports.ParseImageFormat(spec.Format)
	spec.Format = format.String()

	if format == ports.FormatJPEG {
		if spec.Quality <= 0 {
			spec.Quality = DefaultJPEGQuality
		}
		spec.Quality = min(spec.Quality, 100)
	} else {
		spec.Quality = 0
	}
	return spec
}
