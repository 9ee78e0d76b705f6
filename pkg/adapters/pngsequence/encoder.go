// Package pngsequence is the encoder of last resort: it stores every frame as
// a numbered PNG inside a zip archive, with a manifest carrying the timing.
package pngsequence

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/user/carousel/pkg/ports"
)

// ErrNotInitialized is returned when frames arrive before Begin.
var ErrNotInitialized = errors.New("pngsequence: encoder not initialized")

// Manifest describes the archived sequence.
type Manifest struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	FPS        float64 `json:"fps"`
	FrameCount int     `json:"frameCount"`
	Timestamps []int   `json:"timestampsMs"`
}

// ManifestName is the archive entry holding the Manifest.
const ManifestName = "manifest.json"

// FrameName returns the archive entry name for frame index.
func FrameName(index int) string {
	return fmt.Sprintf("frame_%05d.png", index)
}

// Encoder implements ports.VideoEncoder by zipping PNG frames.
type Encoder struct {
	mu       sync.Mutex
	buf      *bytes.Buffer
	zw       *zip.Writer
	manifest Manifest
	png      png.Encoder
}

// New creates a PNG sequence encoder. Frames are stored with fast
// compression since the archive is usually re-encoded elsewhere.
func New() *Encoder {
	return &Encoder{png: png.Encoder{CompressionLevel: png.BestSpeed}}
}

// Begin starts a new archive.
func (e *Encoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.buf = &bytes.Buffer{}
	e.zw = zip.NewWriter(e.buf)
	e.manifest = Manifest{Width: width, Height: height, FPS: fps}
	return nil
}

// EncodeFrame appends one PNG entry.
func (e *Encoder) EncodeFrame(img image.Image, timestampMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.zw == nil {
		return ErrNotInitialized
	}

	// PNG data is already deflated.
	w, err := e.zw.CreateHeader(&zip.FileHeader{
		Name:   FrameName(e.manifest.FrameCount),
		Method: zip.Store,
	})
	if err != nil {
		return fmt.Errorf("create frame entry: %w", err)
	}
	if err := e.png.Encode(w, img); err != nil {
		return fmt.Errorf("encode frame %d: %w", e.manifest.FrameCount, err)
	}

	e.manifest.FrameCount++
	e.manifest.Timestamps = append(e.manifest.Timestamps, timestampMs)
	return nil
}

// End writes the manifest and returns the zip bytes.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.zw == nil {
		return nil, ErrNotInitialized
	}

	w, err := e.zw.Create(ManifestName)
	if err != nil {
		return nil, fmt.Errorf("create manifest: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e.manifest); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	if err := e.zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}

	data := e.buf.Bytes()
	e.zw = nil
	e.buf = nil
	return data, nil
}

// Abort drops the archive in progress.
func (e *Encoder) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.zw = nil
	e.buf = nil
}

var _ ports.VideoEncoder = (*Encoder)(nil)
