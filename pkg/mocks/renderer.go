package mocks

import (
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/user/carousel/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
// Unset funcs fall back to simple geometry-correct behaviour.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	DecodeImageFunc  func(data []byte, format ports.ImageFormat) (image.Image, error)
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc  func(img image.Image, width, height int) image.Image
	CropImageFunc    func(img image.Image, rect image.Rectangle) image.Image
	CoverImageFunc   func(img image.Image, width, height int) image.Image

	mu          sync.Mutex
	Canvases    []*Canvas
	DecodeCalls int
	CropCalls   []image.Rectangle
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	c := NewCanvas(width, height)
	c.Background = bg
	m.mu.Lock()
	m.Canvases = append(m.Canvases, c)
	m.mu.Unlock()
	return c
}

func (m *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	m.mu.Lock()
	m.DecodeCalls++
	m.mu.Unlock()
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data, format)
	}
	return image.NewRGBA(image.Rect(0, 0, 100, 100)), nil
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte(format.String()), nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func (m *Renderer) CropImage(img image.Image, rect image.Rectangle) image.Image {
	m.mu.Lock()
	m.CropCalls = append(m.CropCalls, rect)
	m.mu.Unlock()
	if m.CropImageFunc != nil {
		return m.CropImageFunc(img, rect)
	}
	return image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
}

func (m *Renderer) CoverImage(img image.Image, width, height int) image.Image {
	if m.CoverImageFunc != nil {
		return m.CoverImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func (m *Renderer) ContainImage(img image.Image, width, height int, bg color.Color) image.Image {
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

var _ ports.Renderer = (*Renderer)(nil)

// DrawCall records one drawing operation on a Canvas.
type DrawCall struct {
	Op      string // image, rect, rounded-rect, text, clear
	Image   image.Image
	Text    string
	X, Y    float64
	W, H    int
	Opacity float64
	Color   color.Color
	Style   ports.TextStyle
}

// Canvas is a mock implementation of ports.Canvas that records draw calls.
// Text measures 0.5 em per rune and wraps on spaces.
type Canvas struct {
	width      int
	height     int
	Background color.Color
	Calls      []DrawCall
}

// NewCanvas creates a recording canvas.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{width: width, height: height}
}

func (m *Canvas) Width() int  { return m.width }
func (m *Canvas) Height() int { return m.height }

func (m *Canvas) Clear(c color.Color) {
	m.Calls = append(m.Calls, DrawCall{Op: "clear", Color: c})
}

func (m *Canvas) DrawImage(img image.Image, x, y int) {
	m.Calls = append(m.Calls, DrawCall{Op: "image", Image: img, X: float64(x), Y: float64(y), Opacity: 1})
}

func (m *Canvas) DrawImageOpacity(img image.Image, x, y int, opacity float64) {
	m.Calls = append(m.Calls, DrawCall{Op: "image", Image: img, X: float64(x), Y: float64(y), Opacity: opacity})
}

func (m *Canvas) DrawRect(x, y, w, h int, c color.Color) {
	m.Calls = append(m.Calls, DrawCall{Op: "rect", X: float64(x), Y: float64(y), W: w, H: h, Color: c})
}

func (m *Canvas) DrawRoundedRect(x, y, w, h, radius int, c color.Color) {
	m.Calls = append(m.Calls, DrawCall{Op: "rounded-rect", X: float64(x), Y: float64(y), W: w, H: h, Color: c})
}

func (m *Canvas) DrawText(text string, x, y float64, style ports.TextStyle) {
	m.Calls = append(m.Calls, DrawCall{Op: "text", Text: text, X: x, Y: y, Color: style.Color, Style: style})
}

func (m *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	return float64(len([]rune(text))) * style.FontSize * 0.5, style.FontSize
}

func (m *Canvas) WrapText(text string, maxWidth float64, style ports.TextStyle) []string {
	var lines []string
	var cur string
	for _, word := range strings.Fields(text) {
		next := word
		if cur != "" {
			next = cur + " " + word
		}
		if w, _ := m.MeasureText(next, style); w > maxWidth && cur != "" {
			lines = append(lines, cur)
			cur = word
			continue
		}
		cur = next
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func (m *Canvas) ToImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, m.width, m.height))
}

// CallsOf returns the recorded calls with the given op.
func (m *Canvas) CallsOf(op string) []DrawCall {
	var out []DrawCall
	for _, c := range m.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

var _ ports.Canvas = (*Canvas)(nil)
