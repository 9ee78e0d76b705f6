// Package filesink writes intermediate pipeline results to a debug directory.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/carousel/pkg/ports"
)

// Sink saves debug output to files under baseDir:
//
//	allocation.json, slides.json, timing.json
//	overlays/slide-NN.png
//	frames/frame-NNNN.png
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new file sink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveAllocationJSON saves the image source allocation plan.
func (s *Sink) SaveAllocationJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "allocation.json"), data)
}

// SaveSlidesJSON saves the slide list after generation.
func (s *Sink) SaveSlidesJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "slides.json"), data)
}

// SaveTimingJSON saves the computed video timing.
func (s *Sink) SaveTimingJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "timing.json"), data)
}

// SaveOverlay saves a transparent overlay layer as PNG. Positions are
// written 1-based to match what users see.
func (s *Sink) SaveOverlay(position int, img image.Image) error {
	return s.savePNG(filepath.Join("overlays", fmt.Sprintf("slide-%02d.png", position+1)), img)
}

// SaveFrame saves a sampled video frame as PNG.
func (s *Sink) SaveFrame(index int, img image.Image) error {
	return s.savePNG(filepath.Join("frames", fmt.Sprintf("frame-%04d.png", index)), img)
}

func (s *Sink) savePNG(rel string, img image.Image) error {
	path := filepath.Join(s.baseDir, rel)
	if err := s.fs.MkdirAll(filepath.Dir(path)); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode %s: %w", rel, err)
	}
	return s.fs.WriteFile(path, data)
}

var _ ports.DebugSink = (*Sink)(nil)
