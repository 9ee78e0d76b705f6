package filter

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"
)

// Fixed grain seed so repeated exports are bit-identical.
const (
	grainSeed1 = 0x5eed
	grainSeed2 = 0xca7
)

// Vignette darkening starts at this fraction of the centre-to-corner distance.
const vignetteStart = 0.4

type matrix3 [3][3]float64

// Apply runs every op of the recipe over img in order and returns a new
// image. Each op clamps its output channels to [0, 1] before the next one
// runs. Alpha is preserved.
func Apply(img image.Image, recipe Recipe) *image.NRGBA {
	out := imaging.Clone(img)
	for _, op := range recipe.Ops {
		switch op.Kind {
		case OpVignette:
			vignette(out, op.Value)
		case OpGrain:
			grain(out, op.Value)
		default:
			if fn := colorFunc(op); fn != nil {
				out = imaging.AdjustFunc(out, fn)
			}
		}
	}
	return out
}

// colorFunc returns the per-pixel transform for a colour op, or nil for
// unknown kinds.
func colorFunc(op Op) func(color.NRGBA) color.NRGBA {
	switch op.Kind {
	case OpBrightness:
		return linearFunc(op.Value, 0)
	case OpContrast:
		return linearFunc(op.Value, 0.5-0.5*op.Value)
	case OpSaturate:
		return matrixFunc(saturateMatrix(op.Value))
	case OpSepia:
		return matrixFunc(sepiaMatrix(op.Value))
	case OpHueRotate:
		return matrixFunc(hueRotateMatrix(op.Value))
	}
	return nil
}

func linearFunc(slope, intercept float64) func(color.NRGBA) color.NRGBA {
	return func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: toByte(float64(c.R)/255*slope + intercept),
			G: toByte(float64(c.G)/255*slope + intercept),
			B: toByte(float64(c.B)/255*slope + intercept),
			A: c.A,
		}
	}
}

func matrixFunc(m matrix3) func(color.NRGBA) color.NRGBA {
	return func(c color.NRGBA) color.NRGBA {
		r := float64(c.R) / 255
		g := float64(c.G) / 255
		b := float64(c.B) / 255
		return color.NRGBA{
			R: toByte(m[0][0]*r + m[0][1]*g + m[0][2]*b),
			G: toByte(m[1][0]*r + m[1][1]*g + m[1][2]*b),
			B: toByte(m[2][0]*r + m[2][1]*g + m[2][2]*b),
			A: c.A,
		}
	}
}

func saturateMatrix(s float64) matrix3 {
	return matrix3{
		{0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s},
		{0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s},
		{0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s},
	}
}

func sepiaMatrix(amount float64) matrix3 {
	k := 1 - clamp01(amount)
	return matrix3{
		{0.393 + 0.607*k, 0.769 - 0.769*k, 0.189 - 0.189*k},
		{0.349 - 0.349*k, 0.686 + 0.314*k, 0.168 - 0.168*k},
		{0.272 - 0.272*k, 0.534 - 0.534*k, 0.131 + 0.869*k},
	}
}

func hueRotateMatrix(deg float64) matrix3 {
	rad := deg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	return matrix3{
		{0.213 + c*0.787 - s*0.213, 0.715 - c*0.715 - s*0.715, 0.072 - c*0.072 + s*0.928},
		{0.213 - c*0.213 + s*0.143, 0.715 + c*0.285 + s*0.140, 0.072 - c*0.072 - s*0.283},
		{0.213 - c*0.213 - s*0.787, 0.715 - c*0.715 + s*0.715, 0.072 + c*0.928 + s*0.072},
	}
}

// vignette darkens towards the corners. Inside vignetteStart of the
// centre-to-corner distance nothing changes; beyond it the black overlay
// opacity rises linearly to opacity at the corners.
func vignette(img *image.NRGBA, opacity float64) {
	opacity = clamp01(opacity)
	if opacity == 0 {
		return
	}

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	cx, cy := w/2, h/2
	maxDist := math.Hypot(cx, cy)
	if maxDist == 0 {
		return
	}

	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		dy := float64(y) + 0.5 - cy
		for x := 0; x < b.Dx(); x++ {
			d := math.Hypot(float64(x)+0.5-cx, dy) / maxDist
			alpha := opacity * clamp01((d-vignetteStart)/(1-vignetteStart))
			if alpha == 0 {
				continue
			}
			i := x * 4
			keep := 1 - alpha
			row[i] = toByte(float64(row[i]) / 255 * keep)
			row[i+1] = toByte(float64(row[i+1]) / 255 * keep)
			row[i+2] = toByte(float64(row[i+2]) / 255 * keep)
		}
	}
}

// grain blends monochrome noise over the image in overlay mode. The noise
// sequence is seeded identically on every call.
func grain(img *image.NRGBA, opacity float64) {
	opacity = clamp01(opacity)
	if opacity == 0 {
		return
	}

	rng := rand.New(rand.NewPCG(grainSeed1, grainSeed2))
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			n := rng.Float64()
			i := x * 4
			for ch := 0; ch < 3; ch++ {
				base := float64(row[i+ch]) / 255
				row[i+ch] = toByte(base + (overlayBlend(base, n)-base)*opacity)
			}
		}
	}
}

func overlayBlend(base, blend float64) float64 {
	if base < 0.5 {
		return 2 * base * blend
	}
	return 1 - 2*(1-base)*(1-blend)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func toByte(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}
