// Package filter turns a vintage filter configuration into an ordered list of
// pixel adjustments and applies it to images.
//
// The same Recipe drives the CSS preview string, the ffmpeg preview chain and
// the raster export path, so all three stay visually in step.
package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/user/carousel/pkg/pipeline"
)

// OpKind names a single adjustment.
type OpKind string

const (
	OpBrightness OpKind = "brightness"
	OpContrast   OpKind = "contrast"
	OpSaturate   OpKind = "saturate"
	OpSepia      OpKind = "sepia"
	OpHueRotate  OpKind = "hue-rotate" // degrees
	OpVignette   OpKind = "vignette"   // opacity at the corners
	OpGrain      OpKind = "grain"      // noise overlay opacity
)

// Op is one numeric adjustment.
type Op struct {
	Kind  OpKind
	Value float64
}

// IsColor reports whether the op is a per-pixel colour transform that CSS
// filter functions can express.
func (o Op) IsColor() bool {
	switch o.Kind {
	case OpBrightness, OpContrast, OpSaturate, OpSepia, OpHueRotate:
		return true
	}
	return false
}

func (o Op) String() string {
	if o.Kind == OpHueRotate {
		return fmt.Sprintf("%s(%sdeg)", o.Kind, formatNumber(o.Value))
	}
	return fmt.Sprintf("%s(%s)", o.Kind, formatNumber(o.Value))
}

// Recipe is an ordered list of adjustments. Order matters.
type Recipe struct {
	Ops []Op
}

// Empty reports whether the recipe changes nothing.
func (r Recipe) Empty() bool {
	return len(r.Ops) == 0
}

// String renders every op, space separated.
func (r Recipe) String() string {
	parts := make([]string, len(r.Ops))
	for i, op := range r.Ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, " ")
}

// CSS renders the colour ops as a CSS filter value. Vignette and grain are
// layered separately in a preview and are left out. An empty recipe gives "none".
func (r Recipe) CSS() string {
	var parts []string
	for _, op := range r.Ops {
		if op.IsColor() {
			parts = append(parts, op.String())
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

// FFmpeg renders the recipe as an ffmpeg -vf filter chain. An empty recipe
// gives "null".
func (r Recipe) FFmpeg() string {
	var parts []string
	for _, op := range r.Ops {
		v := formatNumber(op.Value)
		switch op.Kind {
		case OpBrightness:
			parts = append(parts, fmt.Sprintf("colorchannelmixer=rr=%s:gg=%s:bb=%s", v, v, v))
		case OpContrast:
			parts = append(parts, fmt.Sprintf("eq=contrast=%s", v))
		case OpSaturate:
			parts = append(parts, fmt.Sprintf("eq=saturation=%s", v))
		case OpSepia:
			m := sepiaMatrix(op.Value)
			parts = append(parts, fmt.Sprintf(
				"colorchannelmixer=rr=%s:rg=%s:rb=%s:gr=%s:gg=%s:gb=%s:br=%s:bg=%s:bb=%s",
				formatNumber(m[0][0]), formatNumber(m[0][1]), formatNumber(m[0][2]),
				formatNumber(m[1][0]), formatNumber(m[1][1]), formatNumber(m[1][2]),
				formatNumber(m[2][0]), formatNumber(m[2][1]), formatNumber(m[2][2]),
			))
		case OpHueRotate:
			parts = append(parts, fmt.Sprintf("hue=h=%s", v))
		case OpVignette:
			// ffmpeg's vignette angle controls darkening strength.
			parts = append(parts, fmt.Sprintf("vignette=angle=%s", formatNumber(op.Value*math.Pi/4)))
		case OpGrain:
			parts = append(parts, fmt.Sprintf("noise=alls=%d:allf=t", int(math.Round(op.Value*40))))
		}
	}
	if len(parts) == 0 {
		return "null"
	}
	return strings.Join(parts, ",")
}

// Resolve builds the recipe for cfg: the preset's ops first, then the custom
// parameters appended in a fixed order (bloom, shadow fade, colour bias,
// vignette, grain). Zero parameters add nothing. Unknown presets resolve to
// no base ops.
func Resolve(cfg pipeline.FilterConfig) Recipe {
	base := Preset(cfg.Preset)
	ops := make([]Op, 0, len(base)+6)
	ops = append(ops, base...)
	ops = append(ops, customOps(cfg.Params)...)
	return Recipe{Ops: ops}
}

func customOps(p pipeline.FilterParams) []Op {
	var ops []Op

	if p.Bloom != 0 {
		ops = append(ops, Op{OpBrightness, round4(1 + 0.002*p.Bloom)})
	}
	if p.ShadowFade != 0 {
		ops = append(ops,
			Op{OpContrast, round4(1 - 0.003*p.ShadowFade)},
			Op{OpBrightness, round4(1 + 0.002*p.ShadowFade)},
		)
	}
	switch {
	case p.ColorBias > 0:
		ops = append(ops, Op{OpSepia, round4(0.003 * p.ColorBias)})
	case p.ColorBias < 0:
		ops = append(ops, Op{OpHueRotate, round4(0.5 * p.ColorBias)})
	}
	if p.Vignette != 0 {
		ops = append(ops, Op{OpVignette, round4(0.008 * p.Vignette)})
	}
	if p.Grain != 0 {
		ops = append(ops, Op{OpGrain, round4(p.Grain / 100)})
	}

	return ops
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(round4(v), 'f', -1, 64)
}
