package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts image decoding, encoding and geometry operations.
type Renderer interface {
	// CreateCanvas creates a new drawing canvas filled with bg.
	// A nil or fully transparent bg leaves the canvas transparent.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// DecodeImage decodes image data. FormatAuto sniffs the format.
	DecodeImage(data []byte, format ImageFormat) (image.Image, error)

	// EncodeImage encodes an image. quality applies to JPEG only.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)

	// ResizeImage resizes an image to exactly width x height, ignoring aspect.
	ResizeImage(img image.Image, width, height int) image.Image

	// CropImage extracts rect from img. The result has a (0,0) origin.
	CropImage(img image.Image, rect image.Rectangle) image.Image

	// CoverImage scales img to fill width x height and center-crops the overflow.
	CoverImage(img image.Image, width, height int) image.Image

	// ContainImage scales img to fit inside width x height and letterboxes
	// the remainder with bg.
	ContainImage(img image.Image, width, height int, bg color.Color) image.Image
}

// Canvas provides drawing operations for compositing images and text.
type Canvas interface {
	// Width returns the canvas width in pixels.
	Width() int

	// Height returns the canvas height in pixels.
	Height() int

	// Clear fills the whole canvas with c.
	Clear(c color.Color)

	// DrawImage draws an image at the specified position.
	DrawImage(img image.Image, x, y int)

	// DrawImageOpacity draws an image at the specified position with a
	// uniform opacity in [0,1].
	DrawImageOpacity(img image.Image, x, y int, opacity float64)

	// DrawRect draws a filled rectangle.
	DrawRect(x, y, w, h int, c color.Color)

	// DrawRoundedRect draws a filled rounded rectangle.
	DrawRoundedRect(x, y, w, h, radius int, c color.Color)

	// DrawText draws a single line of text anchored at (x, y).
	// The vertical anchor is the middle of the line.
	DrawText(text string, x, y float64, style TextStyle)

	// MeasureText returns the width and height of a single line of text.
	MeasureText(text string, style TextStyle) (width, height float64)

	// WrapText breaks text into lines no wider than maxWidth.
	WrapText(text string, maxWidth float64, style TextStyle) []string

	// ToImage returns the canvas as an image.Image.
	ToImage() image.Image
}

// FontFamily selects one of the embedded font families.
type FontFamily string

const (
	FontSans FontFamily = "sans"
	FontMono FontFamily = "mono"
)

// TextStyle defines text rendering properties.
type TextStyle struct {
	FontSize float64
	Family   FontFamily
	Bold     bool
	FontPath string // optional TrueType file overriding Family/Bold
	Color    color.Color
	Align    TextAlign
}

// TextAlign specifies horizontal text alignment relative to the anchor.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
	FormatAuto
)

// String returns the lowercase format name.
func (f ImageFormat) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	default:
		return "auto"
	}
}

// Extension returns the file extension for the format, including the dot.
func (f ImageFormat) Extension() string {
	if f == FormatPNG {
		return ".png"
	}
	return ".jpg"
}

// ParseImageFormat parses "jpeg", "jpg" or "png". Anything else is JPEG.
func ParseImageFormat(s string) ImageFormat {
	switch s {
	case "png", "PNG":
		return FormatPNG
	default:
		return FormatJPEG
	}
}
