// Package wavcodec reads and writes RIFF/WAVE audio.
package wavcodec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/user/carousel/pkg/ports"
)

// ErrInvalidWAV is returned for data that is not a readable WAVE stream.
var ErrInvalidWAV = errors.New("invalid WAV data")

// WAVE format tags.
const (
	formatPCM        = 0x0001
	formatFloat      = 0x0003
	formatExtensible = 0xFFFE
)

// IsWAV reports whether data starts with a RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// binaryWriter accumulates the first write error.
type binaryWriter struct {
	w   io.Writer
	err error
}

func (bw *binaryWriter) fourCC(s string) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write([]byte(s))
}

func (bw *binaryWriter) u32(v uint32) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

func (bw *binaryWriter) u16(v uint16) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

// Encode writes buf as 16-bit PCM WAVE with interleaved little-endian
// samples. Samples are clamped to [-1, 1].
func Encode(buf ports.AudioBuffer) ([]byte, error) {
	channels := len(buf.Channels)
	if channels == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidWAV)
	}
	if buf.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidWAV, buf.SampleRate)
	}

	frames := buf.Length()
	blockAlign := channels * 2
	dataSize := frames * blockAlign

	var out bytes.Buffer
	out.Grow(44 + dataSize)
	bw := &binaryWriter{w: &out}

	bw.fourCC("RIFF")
	bw.u32(uint32(36 + dataSize))
	bw.fourCC("WAVE")

	bw.fourCC("fmt ")
	bw.u32(16)
	bw.u16(formatPCM)
	bw.u16(uint16(channels))
	bw.u32(uint32(buf.SampleRate))
	bw.u32(uint32(buf.SampleRate * blockAlign)) // byte rate
	bw.u16(uint16(blockAlign))
	bw.u16(16)

	bw.fourCC("data")
	bw.u32(uint32(dataSize))
	if bw.err != nil {
		return nil, fmt.Errorf("write header: %w", bw.err)
	}

	pcm := make([]byte, dataSize)
	i := 0
	for f := 0; f < frames; f++ {
		for ch := 0; ch < channels; ch++ {
			var s float32
			if f < len(buf.Channels[ch]) {
				s = buf.Channels[ch][f]
			}
			binary.LittleEndian.PutUint16(pcm[i:], uint16(toInt16(s)))
			i += 2
		}
	}
	out.Write(pcm)

	return out.Bytes(), nil
}

func toInt16(s float32) int16 {
	v := float64(s)
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(-1, math.Min(1, v))
	if v < 0 {
		return int16(math.Round(v * 32768))
	}
	return int16(math.Round(v * 32767))
}

type format struct {
	tag           uint16
	channels      int
	sampleRate    int
	bitsPerSample int
}

// Decode parses a WAVE stream with 8/16/24/32-bit integer PCM or 32/64-bit
// float samples into per-channel floats.
func Decode(data []byte) (ports.AudioBuffer, error) {
	if !IsWAV(data) {
		return ports.AudioBuffer{}, fmt.Errorf("%w: missing RIFF/WAVE header", ErrInvalidWAV)
	}

	var fmtChunk *format
	var pcm []byte

	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		end := body + size
		if end > len(data) {
			// Streams written before their length was known carry a bogus size.
			end = len(data)
		}

		switch id {
		case "fmt ":
			if end-body < 16 {
				return ports.AudioBuffer{}, fmt.Errorf("%w: short fmt chunk", ErrInvalidWAV)
			}
			c := data[body:end]
			fmtChunk = &format{
				tag:           binary.LittleEndian.Uint16(c[0:2]),
				channels:      int(binary.LittleEndian.Uint16(c[2:4])),
				sampleRate:    int(binary.LittleEndian.Uint32(c[4:8])),
				bitsPerSample: int(binary.LittleEndian.Uint16(c[14:16])),
			}
			if fmtChunk.tag == formatExtensible && len(c) >= 26 {
				fmtChunk.tag = binary.LittleEndian.Uint16(c[24:26])
			}
		case "data":
			pcm = data[body:end]
		}

		// Chunks are word aligned.
		pos = body + size + size%2
	}

	if fmtChunk == nil {
		return ports.AudioBuffer{}, fmt.Errorf("%w: missing fmt chunk", ErrInvalidWAV)
	}
	if pcm == nil {
		return ports.AudioBuffer{}, fmt.Errorf("%w: missing data chunk", ErrInvalidWAV)
	}
	if fmtChunk.channels <= 0 || fmtChunk.sampleRate <= 0 {
		return ports.AudioBuffer{}, fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidWAV, fmtChunk.channels, fmtChunk.sampleRate)
	}

	read, err := sampleReader(fmtChunk.tag, fmtChunk.bitsPerSample)
	if err != nil {
		return ports.AudioBuffer{}, err
	}

	bytesPerSample := fmtChunk.bitsPerSample / 8
	frameSize := bytesPerSample * fmtChunk.channels
	frames := len(pcm) / frameSize

	buf := ports.AudioBuffer{
		SampleRate: fmtChunk.sampleRate,
		Channels:   make([][]float32, fmtChunk.channels),
	}
	for ch := range buf.Channels {
		buf.Channels[ch] = make([]float32, frames)
	}
	for f := 0; f < frames; f++ {
		base := f * frameSize
		for ch := 0; ch < fmtChunk.channels; ch++ {
			off := base + ch*bytesPerSample
			buf.Channels[ch][f] = read(pcm[off : off+bytesPerSample])
		}
	}

	return buf, nil
}

func sampleReader(tag uint16, bits int) (func([]byte) float32, error) {
	switch {
	case tag == formatPCM && bits == 8:
		return func(b []byte) float32 { return (float32(b[0]) - 128) / 128 }, nil
	case tag == formatPCM && bits == 16:
		return func(b []byte) float32 {
			return float32(int16(binary.LittleEndian.Uint16(b))) / 32768
		}, nil
	case tag == formatPCM && bits == 24:
		return func(b []byte) float32 {
			v := int32(uint32(b[0])<<8|uint32(b[1])<<16|uint32(b[2])<<24) >> 8
			return float32(v) / 8388608
		}, nil
	case tag == formatPCM && bits == 32:
		return func(b []byte) float32 {
			return float32(float64(int32(binary.LittleEndian.Uint32(b))) / 2147483648)
		}, nil
	case tag == formatFloat && bits == 32:
		return func(b []byte) float32 {
			return math.Float32frombits(binary.LittleEndian.Uint32(b))
		}, nil
	case tag == formatFloat && bits == 64:
		return func(b []byte) float32 {
			return float32(math.Float64frombits(binary.LittleEndian.Uint64(b)))
		}, nil
	}
	return nil, fmt.Errorf("%w: unsupported format tag %#x with %d bits", ErrInvalidWAV, tag, bits)
}

// Decoder implements ports.AudioDecoder for WAVE data.
type Decoder struct{}

// NewDecoder creates a WAVE decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode parses data as WAVE.
func (d *Decoder) Decode(data []byte) (ports.AudioBuffer, error) {
	return Decode(data)
}

var _ ports.AudioDecoder = (*Decoder)(nil)
