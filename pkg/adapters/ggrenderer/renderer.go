// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/user/carousel/pkg/ports"
)

// DefaultJPEGQuality is used when EncodeImage is called with quality 0.
const DefaultJPEGQuality = 90

// Renderer implements ports.Renderer using gg for drawing and imaging for
// geometry.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// CreateCanvas creates a new drawing canvas.
func (r *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	dc := gg.NewContext(width, height)
	if bg != nil {
		if _, _, _, a := bg.RGBA(); a > 0 {
			dc.SetColor(bg)
			dc.Clear()
		}
	}
	return &Canvas{dc: dc, faces: map[faceKey]font.Face{}}
}

// DecodeImage decodes JPEG or PNG data. JPEG and sniffed input honour the
// EXIF orientation tag so phone photos come out upright.
func (r *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	reader := bytes.NewReader(data)

	switch format {
	case ports.FormatPNG:
		img, err := png.Decode(reader)
		if err != nil {
			return nil, fmt.Errorf("decode PNG: %w", err)
		}
		return img, nil
	default:
		img, err := imaging.Decode(reader, imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		return img, nil
	}
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		if quality <= 0 {
			quality = DefaultJPEGQuality
		}
		if quality > 100 {
			quality = 100
		}
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	return buf.Bytes(), nil
}

// ResizeImage resizes an image to the specified dimensions.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// CropImage extracts rect, given relative to the image origin.
func (r *Renderer) CropImage(img image.Image, rect image.Rectangle) image.Image {
	return imaging.Crop(img, rect.Add(img.Bounds().Min))
}

// CoverImage fills width x height, center-cropping any aspect mismatch.
func (r *Renderer) CoverImage(img image.Image, width, height int) image.Image {
	return imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
}

// ContainImage fits img inside width x height and letterboxes with bg.
// Smaller images are scaled up.
func (r *Renderer) ContainImage(img image.Image, width, height int, bg color.Color) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return imaging.New(width, height, bg)
	}

	scale := min(float64(width)/float64(b.Dx()), float64(height)/float64(b.Dy()))
	w := max(1, int(float64(b.Dx())*scale+0.5))
	h := max(1, int(float64(b.Dy())*scale+0.5))

	fitted := imaging.Resize(img, w, h, imaging.Lanczos)
	return imaging.PasteCenter(imaging.New(width, height, bg), fitted)
}

var _ ports.Renderer = (*Renderer)(nil)

// Parsed embedded fonts are shared; faces are not safe for concurrent use
// and live on each canvas.
var (
	fontsOnce sync.Once
	fonts     map[faceKey]*truetype.Font
	fontsErr  error
)

type faceKey struct {
	family ports.FontFamily
	bold   bool
	path   string
	size   float64
}

func loadFonts() {
	fonts = map[faceKey]*truetype.Font{}
	for key, ttf := range map[faceKey][]byte{
		{family: ports.FontSans}:             goregular.TTF,
		{family: ports.FontSans, bold: true}: gobold.TTF,
		{family: ports.FontMono}:             gomono.TTF,
		{family: ports.FontMono, bold: true}: gomonobold.TTF,
	} {
		f, err := truetype.Parse(ttf)
		if err != nil {
			fontsErr = fmt.Errorf("parse embedded font: %w", err)
			return
		}
		fonts[key] = f
	}
}

// Canvas implements ports.Canvas using gg.Context.
type Canvas struct {
	dc    *gg.Context
	faces map[faceKey]font.Face
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int {
	return c.dc.Width()
}

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int {
	return c.dc.Height()
}

// Clear fills the whole canvas.
func (c *Canvas) Clear(col color.Color) {
	c.dc.SetColor(col)
	c.dc.Clear()
}

// DrawImage draws an image at the specified position.
func (c *Canvas) DrawImage(img image.Image, x, y int) {
	c.dc.DrawImage(img, x, y)
}

// DrawImageOpacity draws an image with a uniform opacity.
func (c *Canvas) DrawImageOpacity(img image.Image, x, y int, opacity float64) {
	if opacity <= 0 {
		return
	}
	if opacity >= 1 {
		c.dc.DrawImage(img, x, y)
		return
	}

	dst, ok := c.dc.Image().(draw.Image)
	if !ok {
		return
	}
	b := img.Bounds()
	rect := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	mask := image.NewUniform(color.Alpha{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(dst, rect, img, b.Min, mask, image.Point{}, draw.Over)
}

// DrawRect draws a filled rectangle.
func (c *Canvas) DrawRect(x, y, w, h int, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	c.dc.Fill()
}

// DrawRoundedRect draws a filled rounded rectangle.
func (c *Canvas) DrawRoundedRect(x, y, w, h, radius int, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawRoundedRectangle(float64(x), float64(y), float64(w), float64(h), float64(radius))
	c.dc.Fill()
}

// DrawText draws one line of text anchored at (x, y), vertically centred.
func (c *Canvas) DrawText(text string, x, y float64, style ports.TextStyle) {
	c.useFace(style)
	c.dc.SetColor(style.Color)

	ax := 0.0
	switch style.Align {
	case ports.AlignCenter:
		ax = 0.5
	case ports.AlignRight:
		ax = 1.0
	}

	c.dc.DrawStringAnchored(text, x, y, ax, 0.5)
}

// MeasureText returns the rendered size of a single line.
func (c *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	c.useFace(style)
	return c.dc.MeasureString(text)
}

// WrapText splits text on spaces and newlines into lines that fit maxWidth.
// A single word wider than maxWidth stays on its own line.
func (c *Canvas) WrapText(text string, maxWidth float64, style ports.TextStyle) []string {
	c.useFace(style)
	return c.dc.WordWrap(text, maxWidth)
}

// ToImage returns the canvas as an image.Image.
func (c *Canvas) ToImage() image.Image {
	return c.dc.Image()
}

// useFace selects the face for style, falling back to the embedded sans
// font when a custom font file cannot be loaded.
func (c *Canvas) useFace(style ports.TextStyle) {
	size := style.FontSize
	if size <= 0 {
		size = 16
	}
	family := style.Family
	if family != ports.FontMono {
		family = ports.FontSans
	}
	key := faceKey{family: family, bold: style.Bold, path: style.FontPath, size: size}

	if face, ok := c.faces[key]; ok {
		c.dc.SetFontFace(face)
		return
	}

	var face font.Face
	if style.FontPath != "" {
		if f, err := gg.LoadFontFace(style.FontPath, size); err == nil {
			face = f
		}
	}
	if face == nil {
		fontsOnce.Do(loadFonts)
		if fontsErr != nil {
			return
		}
		face = truetype.NewFace(fonts[faceKey{family: family, bold: style.Bold}], &truetype.Options{
			Size:    size,
			Hinting: font.HintingFull,
		})
	}

	c.faces[key] = face
	c.dc.SetFontFace(face)
}

var _ ports.Canvas = (*Canvas)(nil)
