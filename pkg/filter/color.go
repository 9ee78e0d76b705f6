package filter

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa" (the leading # is optional).
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// ParseHexOr parses s and falls back to def when s is empty or invalid.
func ParseHexOr(s string, def color.Color) color.Color {
	if s == "" {
		return def
	}
	c, err := ParseHex(s)
	if err != nil {
		return def
	}
	return c
}

// Luminance returns the WCAG relative luminance of c in [0, 1].
func Luminance(c color.Color) float64 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return 0.2126*linearize(n.R) + 0.7152*linearize(n.G) + 0.0722*linearize(n.B)
}

func linearize(v uint8) float64 {
	s := float64(v) / 255
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

// ContrastRatio returns the WCAG contrast ratio between two colours.
func ContrastRatio(a, b color.Color) float64 {
	la, lb := Luminance(a), Luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// ContrastingText picks white or black, whichever reads better on bg.
func ContrastingText(bg color.Color) color.Color {
	if ContrastRatio(color.White, bg) >= ContrastRatio(color.Black, bg) {
		return color.White
	}
	return color.Black
}
