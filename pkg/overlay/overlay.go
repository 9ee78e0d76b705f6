// Package overlay renders a TextOverlay description into a transparent layer
// sized to the target canvas.
package overlay

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/user/carousel/pkg/filter"
	"github.com/user/carousel/pkg/pipeline"
	"github.com/user/carousel/pkg/ports"
)

// ReferenceWidth is the canvas width that overlay sizes are authored against.
const ReferenceWidth = 1080.0

// Fallback sizes when the styling leaves them unset.
const (
	defaultPrimarySize   = 72.0
	defaultSecondarySize = 40.0
	lineSpacing          = 1.2
	blockGap             = 0.4 // gap between headline and subtitle, in subtitle ems
	wrapFraction         = 0.9
)

// ErrInvalidSize is returned for non-positive layer dimensions.
var ErrInvalidSize = errors.New("invalid overlay size")

// Line is one rendered line of text in canvas pixels.
type Line struct {
	Text     string
	X, Y     float64 // anchor: horizontal centre, vertical middle
	FontSize float64
	Primary  bool
}

// Layer is the rendered overlay. An invisible layer has no image.
type Layer struct {
	Visible bool
	Anchor  image.Point
	Box     image.Rectangle // background box, empty when no background colour
	Lines   []Line
	Image   image.Image // full canvas size, transparent outside the text
}

// Renderer draws overlays through a ports.Renderer.
type Renderer struct {
	renderer ports.Renderer
}

// NewRenderer creates an overlay renderer.
func NewRenderer(renderer ports.Renderer) *Renderer {
	return &Renderer{renderer: renderer}
}

// Anchor returns the overlay anchor in pixels. A free position wins over
// the alignment lookup.
func Anchor(pos pipeline.OverlayPositioning, width, height int) (float64, float64) {
	if pos.FreePosition != nil {
		return pos.FreePosition.X / 100 * float64(width), pos.FreePosition.Y / 100 * float64(height)
	}

	fy := 0.85
	switch pos.Alignment {
	case pipeline.AlignTop:
		fy = 0.20
	case pipeline.AlignMiddle:
		fy = 0.55
	}

	fx := 0.50
	switch pos.HorizontalAlign {
	case pipeline.AlignStart:
		fx = 0.25
	case pipeline.AlignEnd:
		fx = 0.75
	}

	return fx * float64(width), fy * float64(height)
}

// Render lays out and draws the overlay at width x height. A nil overlay or
// an empty headline produces an invisible layer.
func (r *Renderer) Render(o *pipeline.TextOverlay, width, height int) (Layer, error) {
	if width <= 0 || height <= 0 {
		return Layer{}, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if o == nil || strings.TrimSpace(o.Content.Primary) == "" {
		return Layer{}, nil
	}

	st := o.Styling
	scale := float64(width) / ReferenceWidth

	primarySize := orDefault(st.PrimarySize, defaultPrimarySize) * scale
	secondarySize := orDefault(st.SecondarySize, defaultSecondarySize) * scale
	padding := math.Max(0, o.Positioning.Padding) * scale

	ax, ay := Anchor(o.Positioning, width, height)

	var bg color.Color
	if st.BackgroundColor != "" {
		if c, err := filter.ParseHex(st.BackgroundColor); err == nil {
			bg = c
		}
	}
	textColor := filter.ParseHexOr(st.Color, nil)
	if textColor == nil {
		behind := bg
		if behind == nil {
			behind = color.Black
		}
		textColor = filter.ContrastingText(behind)
	}

	family := ports.FontSans
	if st.Font.Family == string(ports.FontMono) {
		family = ports.FontMono
	}
	primaryStyle := ports.TextStyle{
		FontSize: primarySize,
		Family:   family,
		Bold:     st.Font.Weight == "bold",
		FontPath: st.Font.Path,
		Color:    textColor,
		Align:    ports.AlignCenter,
	}
	secondaryStyle := primaryStyle
	secondaryStyle.FontSize = secondarySize
	secondaryStyle.Bold = false

	canvas := r.renderer.CreateCanvas(width, height, color.Transparent)

	// Widest box centred on the anchor that stays on the canvas.
	boxWidth := 2 * math.Min(ax, float64(width)-ax)
	wrapWidth := math.Max(1, wrapFraction*boxWidth-2*padding)

	primaryLines := canvas.WrapText(o.Content.Primary, wrapWidth, primaryStyle)
	var secondaryLines []string
	if strings.TrimSpace(o.Content.Secondary) != "" {
		secondaryLines = canvas.WrapText(o.Content.Secondary, wrapWidth, secondaryStyle)
	}

	primaryLH := primarySize * lineSpacing
	secondaryLH := secondarySize * lineSpacing
	blockH := float64(len(primaryLines)) * primaryLH
	if len(secondaryLines) > 0 {
		blockH += blockGap*secondarySize + float64(len(secondaryLines))*secondaryLH
	}

	blockW := 0.0
	for _, l := range primaryLines {
		w, _ := canvas.MeasureText(l, primaryStyle)
		blockW = math.Max(blockW, w)
	}
	for _, l := range secondaryLines {
		w, _ := canvas.MeasureText(l, secondaryStyle)
		blockW = math.Max(blockW, w)
	}

	top := ay - blockH/2
	var lines []Line
	y := top + primaryLH/2
	for _, l := range primaryLines {
		lines = append(lines, Line{Text: l, X: ax, Y: y, FontSize: primarySize, Primary: true})
		y += primaryLH
	}
	if len(secondaryLines) > 0 {
		y += blockGap*secondarySize - primaryLH/2 + secondaryLH/2
		for _, l := range secondaryLines {
			lines = append(lines, Line{Text: l, X: ax, Y: y, FontSize: secondarySize})
			y += secondaryLH
		}
	}

	layer := Layer{
		Visible: true,
		Anchor:  image.Pt(int(math.Round(ax)), int(math.Round(ay))),
		Lines:   lines,
	}

	if bg != nil {
		layer.Box = image.Rect(
			int(math.Floor(ax-blockW/2-padding)),
			int(math.Floor(top-padding)),
			int(math.Ceil(ax+blockW/2+padding)),
			int(math.Ceil(top+blockH+padding)),
		)
		canvas.DrawRoundedRect(layer.Box.Min.X, layer.Box.Min.Y, layer.Box.Dx(), layer.Box.Dy(), int(padding/2), bg)
	}

	drawBlock(canvas, lines, true, primaryStyle, st, scale)
	drawBlock(canvas, lines, false, secondaryStyle, st, scale)

	layer.Image = canvas.ToImage()
	return layer, nil
}

// drawBlock paints the shadow, stroke and fill passes for one text block.
func drawBlock(canvas ports.Canvas, lines []Line, primary bool, style ports.TextStyle, st pipeline.OverlayStyling, scale float64) {
	var block []Line
	for _, l := range lines {
		if l.Primary == primary {
			block = append(block, l)
		}
	}
	if len(block) == 0 {
		return
	}

	if st.Shadow.Enabled {
		shadow := style
		shadow.Color = filter.ParseHexOr(st.Shadow.Color, color.NRGBA{A: 160})
		dx, dy := st.Shadow.OffsetX*scale, st.Shadow.OffsetY*scale
		for _, l := range block {
			canvas.DrawText(l.Text, l.X+dx, l.Y+dy, shadow)
		}
	}

	if st.Stroke != nil && st.Stroke.Width > 0 {
		stroke := style
		stroke.Color = filter.ParseHexOr(st.Stroke.Color, color.Black)
		for _, off := range strokeOffsets(st.Stroke.Width * scale) {
			for _, l := range block {
				canvas.DrawText(l.Text, l.X+off[0], l.Y+off[1], stroke)
			}
		}
	}

	for _, l := range block {
		canvas.DrawText(l.Text, l.X, l.Y, style)
	}
}

// strokeOffsets returns eight points on a circle of radius w.
func strokeOffsets(w float64) [][2]float64 {
	offs := make([][2]float64, 0, 8)
	for i := 0; i < 8; i++ {
		a := float64(i) * math.Pi / 4
		offs = append(offs, [2]float64{w * math.Cos(a), w * math.Sin(a)})
	}
	return offs
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
