package pipeline

import (
	"image"
	"math"
)

// =============================================================================
// Enumerations
// =============================================================================

// SlideType is the narrative role of a slide by position.
type SlideType string

const (
	SlideHook   SlideType = "hook"
	SlideStory  SlideType = "story"
	SlideCloser SlideType = "closer"
)

// SlideStatus tracks a slide through generation.
type SlideStatus string

const (
	StatusPending    SlideStatus = "pending"
	StatusGenerating SlideStatus = "generating"
	StatusReady      SlideStatus = "ready"
	StatusError      SlideStatus = "error"
)

// SourceKind tells whether a slide is backed by a photo.
type SourceKind string

const (
	SourceUserUpload SourceKind = "user_upload"
	SourceTextOnly   SourceKind = "text_only"
)

// AllocationMode selects how uploaded images are spread over slides.
type AllocationMode string

const (
	AllocateSequential AllocationMode = "sequential"
	AllocateAuto       AllocationMode = "auto"
)

// HeadlineVisibility controls on which slides the headline is displayed.
type HeadlineVisibility string

const (
	HeadlineAll       HeadlineVisibility = "all"
	HeadlineFirstOnly HeadlineVisibility = "first_only"
	HeadlineNone      HeadlineVisibility = "none"
)

// VerticalAlign is the vertical overlay anchor.
type VerticalAlign string

const (
	AlignTop    VerticalAlign = "top"
	AlignMiddle VerticalAlign = "center"
	AlignBottom VerticalAlign = "bottom"
)

// HorizontalAlign is the horizontal overlay anchor.
type HorizontalAlign string

const (
	AlignStart  HorizontalAlign = "left"
	AlignCenter HorizontalAlign = "center"
	AlignEnd    HorizontalAlign = "right"
)

// TransitionKind selects how adjacent slides blend in video export.
type TransitionKind string

const (
	TransitionNone      TransitionKind = "none"
	TransitionCrossfade TransitionKind = "crossfade"
	TransitionSlide     TransitionKind = "slide"
)

// TimingMode selects how the per-slide video duration is chosen.
type TimingMode string

const (
	TimingFixed      TimingMode = "fixed"
	TimingMatchAudio TimingMode = "match-audio"
)

// =============================================================================
// Project Data Model
// =============================================================================

// UploadedImage is a user photo. It is immutable once uploaded and slides
// refer to it by ID.
type UploadedImage struct {
	ID       string `json:"id"`
	Source   string `json:"source"` // local path or http(s) URL
	Filename string `json:"filename"`
}

// PercentRect is a rectangle in 0-100 percentages of some natural size.
type PercentRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ToPixels converts the rectangle against a width x height image and clamps
// it to the image bounds.
func (r PercentRect) ToPixels(width, height int) image.Rectangle {
	x0 := int(math.Round(r.X / 100 * float64(width)))
	y0 := int(math.Round(r.Y / 100 * float64(height)))
	x1 := int(math.Round((r.X + r.Width) / 100 * float64(width)))
	y1 := int(math.Round((r.Y + r.Height) / 100 * float64(height)))
	return image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, width, height))
}

// Percent2D is a point in 0-100 percentages of the canvas.
type Percent2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// OverlayContent is the headline and optional subtitle.
type OverlayContent struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
}

// FontSpec selects an embedded font.
type FontSpec struct {
	Family string `json:"family"` // sans or mono
	Weight string `json:"weight"` // normal or bold
	Path   string `json:"path,omitempty"`
}

// ShadowSpec is a hard drop shadow behind the text.
type ShadowSpec struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color,omitempty"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// StrokeSpec is an outline around each glyph.
type StrokeSpec struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// OverlayStyling describes how overlay text looks. Sizes and offsets are in
// pixels at a 1080 px wide reference canvas.
type OverlayStyling struct {
	Font            FontSpec    `json:"font"`
	PrimarySize     float64     `json:"primarySize"`
	SecondarySize   float64     `json:"secondarySize"`
	Color           string      `json:"color,omitempty"`
	BackgroundColor string      `json:"backgroundColor,omitempty"`
	Shadow          ShadowSpec  `json:"shadow"`
	Stroke          *StrokeSpec `json:"stroke,omitempty"`
}

// OverlayPositioning places the overlay. FreePosition, when set, wins over
// the alignment lookup.
type OverlayPositioning struct {
	Alignment       VerticalAlign   `json:"alignment"`
	HorizontalAlign HorizontalAlign `json:"horizontalAlign"`
	Padding         float64         `json:"padding"`
	FreePosition    *Percent2D      `json:"freePosition,omitempty"`
}

// TextOverlay is a styled text layer description.
type TextOverlay struct {
	Content     OverlayContent     `json:"content"`
	Styling     OverlayStyling     `json:"styling"`
	Positioning OverlayPositioning `json:"positioning"`
}

// Clone returns a deep copy of the overlay.
func (o *TextOverlay) Clone() *TextOverlay {
	if o == nil {
		return nil
	}
	c := *o
	if o.Styling.Stroke != nil {
		s := *o.Styling.Stroke
		c.Styling.Stroke = &s
	}
	if o.Positioning.FreePosition != nil {
		p := *o.Positioning.FreePosition
		c.Positioning.FreePosition = &p
	}
	return &c
}

// DefaultOverlayStyle returns the overlay template used for generated text.
func DefaultOverlayStyle() TextOverlay {
	return TextOverlay{
		Styling: OverlayStyling{
			Font:          FontSpec{Family: "sans", Weight: "bold"},
			PrimarySize:   72,
			SecondarySize: 40,
			Color:         "#ffffff",
			Shadow: ShadowSpec{
				Enabled: true,
				Color:   "#000000",
				OffsetX: 3,
				OffsetY: 3,
			},
		},
		Positioning: OverlayPositioning{
			Alignment:       AlignBottom,
			HorizontalAlign: AlignCenter,
			Padding:         24,
		},
	}
}

// CarouselSlide is one unit of the carousel.
type CarouselSlide struct {
	ID                 string       `json:"id"`
	Position           int          `json:"position"`
	SlideType          SlideType    `json:"slideType"`
	ImageRef           string       `json:"imageRef,omitempty"`
	ImageURL           string       `json:"imageUrl,omitempty"`
	TextOverlay        *TextOverlay `json:"textOverlay,omitempty"`
	AIGeneratedOverlay *TextOverlay `json:"aiGeneratedOverlay,omitempty"`
	Status             SlideStatus  `json:"status"`
	Error              string       `json:"error,omitempty"`
	CropArea           *PercentRect `json:"cropArea,omitempty"`
	SourceKind         SourceKind   `json:"sourceKind"`
}

// Clone returns a deep copy of the slide.
func (s CarouselSlide) Clone() CarouselSlide {
	c := s
	c.TextOverlay = s.TextOverlay.Clone()
	c.AIGeneratedOverlay = s.AIGeneratedOverlay.Clone()
	if s.CropArea != nil {
		r := *s.CropArea
		c.CropArea = &r
	}
	return c
}

// CloneSlides deep-copies a slide list.
func CloneSlides(slides []CarouselSlide) []CarouselSlide {
	out := make([]CarouselSlide, len(slides))
	for i, s := range slides {
		out[i] = s.Clone()
	}
	return out
}

// FilterParams are the continuous vintage filter controls.
type FilterParams struct {
	Grain      float64 `json:"grain" yaml:"grain"`             // 0-100
	Bloom      float64 `json:"bloom" yaml:"bloom"`             // 0-100
	ShadowFade float64 `json:"shadowFade" yaml:"shadow_fade"`  // 0-100
	ColorBias  float64 `json:"colorBias" yaml:"color_bias"`    // -100..100, >0 warm
	Vignette   float64 `json:"vignette" yaml:"vignette"`       // 0-100
}

// FilterConfig is a named preset plus additive custom parameters.
type FilterConfig struct {
	Preset string       `json:"preset" yaml:"preset"`
	Params FilterParams `json:"params" yaml:"params"`
}

// PlatformSpec is one target publishing format.
type PlatformSpec struct {
	Name    string `json:"name" yaml:"name"`
	Width   int    `json:"width" yaml:"width"`
	Height  int    `json:"height" yaml:"height"`
	Format  string `json:"format" yaml:"format"`   // jpeg or png
	Quality int    `json:"quality" yaml:"quality"` // JPEG quality 1-100
}

// Project owns its slides and uploaded images.
type Project struct {
	ID                 string             `json:"id"`
	Theme              string             `json:"theme"`
	Keywords           []string           `json:"keywords,omitempty"`
	Style              string             `json:"style,omitempty"`
	SlideCount         int                `json:"slideCount"`
	AllocationMode     AllocationMode     `json:"allocationMode"`
	HeadlineVisibility HeadlineVisibility `json:"headlineVisibility"`
	Images             []UploadedImage    `json:"images"`
	Slides             []CarouselSlide    `json:"slides"`
	Overrides          map[int]string     `json:"overrides,omitempty"` // 0-based position -> headline
	OverlayStyle       TextOverlay        `json:"overlayStyle"`
	Filter             FilterConfig       `json:"filter"`
}

// ImageByID looks up an uploaded image.
func (p *Project) ImageByID(id string) (UploadedImage, bool) {
	for _, img := range p.Images {
		if img.ID == id {
			return img, true
		}
	}
	return UploadedImage{}, false
}

// =============================================================================
// Allocate Stage Types
// =============================================================================

// SlideSource is the allocation decision for one slide position.
type SlideSource struct {
	Position       int        `json:"position"`
	Role           SlideType  `json:"role"`
	Source         SourceKind `json:"source"`
	ReferenceIndex int        `json:"referenceIndex"` // index into uploads, -1 for text-only
}

// AllocationRatio summarizes how many slides carry photos.
type AllocationRatio struct {
	Uploaded        int `json:"uploaded"`
	TextOnly        int `json:"textOnly"`
	PercentUploaded int `json:"percentUploaded"`
}

// AllocationPlan maps uploads onto slide positions.
type AllocationPlan struct {
	PerSlide []SlideSource   `json:"perSlide"`
	Ratio    AllocationRatio `json:"ratio"`
}

// AllocateInput contains the allocation parameters.
type AllocateInput struct {
	UploadedCount int
	SlideCount    int
	Mode          AllocationMode
}

// AllocateResult contains the allocation plan.
type AllocateResult struct {
	Plan AllocationPlan
}

// =============================================================================
// Generate Stage Types
// =============================================================================

// GenerateInput contains the project whose slides get text overlays.
type GenerateInput struct {
	Project Project
}

// GenerateResult is the aggregated outcome of a generation batch.
type GenerateResult struct {
	Slides     []CarouselSlide
	ErrorCount int
	FirstError string
}

// Failed reports whether every slide failed.
func (r GenerateResult) Failed() bool {
	return len(r.Slides) > 0 && r.ErrorCount == len(r.Slides)
}

// =============================================================================
// Export Stage Types
// =============================================================================

// ExportInput contains everything needed to composite final images.
type ExportInput struct {
	Slides     []CarouselSlide
	Images     []UploadedImage
	Platforms  []PlatformSpec
	Filter     *FilterConfig
	KeepImages bool // keep decoded composites in ExportedImage.Image
}

// ExportedImage is one encoded (platform, slide) output.
type ExportedImage struct {
	Platform   string      `json:"platform"`
	SlideIndex int         `json:"slideIndex"`
	Format     string      `json:"format"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Data       []byte      `json:"-"`
	Image      image.Image `json:"-"`
}

// ExportFailure records a skipped (platform, slide) pair.
type ExportFailure struct {
	Platform   string `json:"platform"`
	SlideIndex int    `json:"slideIndex"`
	Err        string `json:"error"`
}

// ExportResult contains every successfully composited pair.
type ExportResult struct {
	Images   []ExportedImage
	Failures []ExportFailure
}

// =============================================================================
// Video Types
// =============================================================================

// VideoSettings configures video export timing.
type VideoSettings struct {
	FPS                float64        `json:"fps" yaml:"fps"`
	TransitionDuration float64        `json:"transitionDuration" yaml:"transition_duration"`
	SlideDuration      float64        `json:"slideDuration" yaml:"slide_duration"`
	TimingMode         TimingMode     `json:"timingMode" yaml:"timing_mode"`
	Transition         TransitionKind `json:"transition" yaml:"transition"`
}

// DefaultVideoSettings returns VideoSettings with default values.
func DefaultVideoSettings() VideoSettings {
	return VideoSettings{
		FPS:                30,
		TransitionDuration: 0.5,
		SlideDuration:      3,
		TimingMode:         TimingFixed,
		Transition:         TransitionCrossfade,
	}
}

// AudioClip describes the narration track window.
type AudioClip struct {
	Duration  float64 `json:"duration"`
	TrimStart float64 `json:"trimStart"`
	TrimEnd   float64 `json:"trimEnd"`
}

// VideoTiming is the derived video schedule.
type VideoTiming struct {
	SlideDuration      float64 `json:"slideDuration"`
	TransitionDuration float64 `json:"transitionDuration"`
	TotalDuration      float64 `json:"totalDuration"`
	TotalFrames        int     `json:"totalFrames"`
	FPS                float64 `json:"fps"`
}

// TimingInput contains the timing parameters.
type TimingInput struct {
	SlideCount int
	Clip       *AudioClip
	Settings   VideoSettings
}

// FrameInfo tells which slides are visible at a time and how they blend.
type FrameInfo struct {
	SlideA int
	SlideB int // valid only when HasB
	HasB   bool
	Blend  float64
}

// EncodeInput contains the slide bitmaps and schedule for video encoding.
type EncodeInput struct {
	Slides     []image.Image
	Timing     VideoTiming
	Transition TransitionKind
	Width      int
	Height     int
	Quality    int // CRF
	Bitrate    int // kbps
}

// EncodeResult contains the encoded video.
type EncodeResult struct {
	VideoData  []byte
	DurationMs int
	FrameCount int
	FileSize   int64
}

// =============================================================================
// Trim Stage Types
// =============================================================================

// TrimInput contains the encoded audio and the window to keep.
type TrimInput struct {
	Data  []byte
	Start float64 // seconds
	End   float64 // seconds
}

// TrimResult contains the re-encoded audio window.
type TrimResult struct {
	WAV        []byte
	SampleRate int
	Channels   int
	Samples    int // per channel
	Duration   float64
}
