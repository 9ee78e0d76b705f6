// Package contactsheet lays slides out on a single preview grid. Each slide
// is letterboxed into its cell so nothing is cropped.
package contactsheet

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/user/carousel/pkg/ports"
	"github.com/user/carousel/pkg/stages/export"
)

// ErrNoImages is returned when there is nothing to lay out.
var ErrNoImages = errors.New("contact sheet has no images")

// Options configures the grid.
type Options struct {
	// Columns is the number of cells per row.
	Columns int
	// CellWidth and CellHeight size each slide cell in pixels.
	CellWidth  int
	CellHeight int
	// Gap is the spacing between cells and around the edge.
	Gap int
	// Background fills the sheet and letterbox bars.
	Background color.Color
	// LabelColor draws the 1-based slide number under each cell when set.
	LabelColor color.Color
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		Columns:    4,
		CellWidth:  270,
		CellHeight: 338,
		Gap:        12,
		Background: color.RGBA{R: 24, G: 24, B: 24, A: 255},
		LabelColor: color.RGBA{R: 200, G: 200, B: 200, A: 255},
	}
}

// Input is the set of slide images to lay out.
type Input struct {
	Images     []image.Image
	OutputPath string // optional; the PNG is written here when set
}

// Result is the rendered sheet.
type Result struct {
	Image  image.Image
	Data   []byte
	Width  int
	Height int
}

// Stage renders contact sheets.
type Stage struct {
	renderer ports.Renderer
	fs       ports.FileSystem
	logger   ports.Logger
	opts     Options
}

// New creates a contact sheet stage.
func New(renderer ports.Renderer, fs ports.FileSystem, logger ports.Logger, opts Options) *Stage {
	def := DefaultOptions()
	if opts.Columns <= 0 {
		opts.Columns = def.Columns
	}
	if opts.CellWidth <= 0 || opts.CellHeight <= 0 {
		opts.CellWidth, opts.CellHeight = def.CellWidth, def.CellHeight
	}
	opts.Gap = max(0, opts.Gap)
	if opts.Background == nil {
		opts.Background = def.Background
	}
	return &Stage{
		renderer: renderer,
		fs:       fs,
		logger:   logger.WithComponent("contactsheet"),
		opts:     opts,
	}
}

// labelHeight is the strip reserved under each cell for its number.
func (s *Stage) labelHeight() int {
	if s.opts.LabelColor == nil {
		return 0
	}
	return max(16, s.opts.CellHeight/10)
}

// Size returns the sheet dimensions for n images.
func (s *Stage) Size(n int) (int, int) {
	cols := min(s.opts.Columns, max(1, n))
	rows := (n + cols - 1) / cols
	w := cols*s.opts.CellWidth + (cols+1)*s.opts.Gap
	h := rows*(s.opts.CellHeight+s.labelHeight()) + (rows+1)*s.opts.Gap
	return w, h
}

// CellOrigin returns the top-left corner of cell i.
func (s *Stage) CellOrigin(i, n int) image.Point {
	cols := min(s.opts.Columns, max(1, n))
	col, row := i%cols, i/cols
	return image.Point{
		X: s.opts.Gap + col*(s.opts.CellWidth+s.opts.Gap),
		Y: s.opts.Gap + row*(s.opts.CellHeight+s.labelHeight()+s.opts.Gap),
	}
}

// Execute renders the sheet and writes it to OutputPath when set.
func (s *Stage) Execute(ctx context.Context, input Input) (Result, error) {
	n := len(input.Images)
	if n == 0 {
		return Result{}, ErrNoImages
	}

	width, height := s.Size(n)
	s.logger.Debug("Rendering contact sheet %dx%d for %d slides", width, height, n)

	canvas := s.renderer.CreateCanvas(width, height, s.opts.Background)
	for i, img := range input.Images {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if img == nil {
			continue
		}
		at := s.CellOrigin(i, n)
		cell := export.ContainFit(s.renderer, img, s.opts.CellWidth, s.opts.CellHeight, s.opts.Background)
		canvas.DrawImage(cell, at.X, at.Y)

		if lh := s.labelHeight(); lh > 0 {
			style := ports.TextStyle{
				FontSize: float64(lh) * 0.7,
				Color:    s.opts.LabelColor,
				Align:    ports.AlignCenter,
			}
			canvas.DrawText(fmt.Sprintf("%d", i+1),
				float64(at.X)+float64(s.opts.CellWidth)/2,
				float64(at.Y+s.opts.CellHeight)+float64(lh)/2,
				style)
		}
	}

	sheet := canvas.ToImage()
	data, err := s.renderer.EncodeImage(sheet, ports.FormatPNG, 0)
	if err != nil {
		return Result{}, fmt.Errorf("encode contact sheet: %w", err)
	}

	if input.OutputPath != "" {
		if err := s.fs.WriteFile(input.OutputPath, data); err != nil {
			return Result{}, fmt.Errorf("write contact sheet: %w", err)
		}
	}

	return Result{Image: sheet, Data: data, Width: width, Height: height}, nil
}
