// Package mp4probe inspects encoded MP4 files to report codec, frame size,
// duration and sample count of the first video track.
package mp4probe

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/carousel/pkg/ports"
)

// Codec names reported in ports.VideoInfo.
const (
	CodecH264    = "h264"
	CodecHEVC    = "hevc"
	CodecAV1     = "av1"
	CodecUnknown = "unknown"
)

// ErrNoVideoTrack is returned when the file has no video track.
var ErrNoVideoTrack = errors.New("mp4probe: no video track found")

// Prober implements ports.VideoProber with mp4ff.
type Prober struct{}

// New creates a new prober.
func New() *Prober {
	return &Prober{}
}

// Probe parses data as MP4 and describes its first video track.
func (p *Prober) Probe(data []byte) (ports.VideoInfo, error) {
	f, err := mp4.DecodeFile(bytes.NewReader(data))
	if err != nil {
		return ports.VideoInfo{}, fmt.Errorf("decode mp4: %w", err)
	}

	if f.IsFragmented() {
		return probeFragmented(f)
	}
	return probeProgressive(f)
}

func probeProgressive(f *mp4.File) (ports.VideoInfo, error) {
	if f.Moov == nil {
		return ports.VideoInfo{}, fmt.Errorf("%w: no moov box", ErrNoVideoTrack)
	}
	trak := videoTrack(f.Moov.Traks)
	if trak == nil {
		return ports.VideoInfo{}, ErrNoVideoTrack
	}

	info := describeTrack(trak)
	if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Timescale > 0 {
		info.DurationMs = int(mdhd.Duration * 1000 / uint64(mdhd.Timescale))
	}
	if stbl := trak.Mdia.Minf.Stbl; stbl.Stsz != nil {
		info.SampleCount = int(stbl.Stsz.SampleNumber)
	}
	return info, nil
}

func probeFragmented(f *mp4.File) (ports.VideoInfo, error) {
	if f.Init == nil || f.Init.Moov == nil {
		return ports.VideoInfo{}, fmt.Errorf("%w: no init segment", ErrNoVideoTrack)
	}
	moov := f.Init.Moov
	trak := videoTrack(moov.Traks)
	if trak == nil {
		return ports.VideoInfo{}, ErrNoVideoTrack
	}
	info := describeTrack(trak)
	trackID := trak.Tkhd.TrackID

	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var totalDur uint64
	for _, seg := range f.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return info, fmt.Errorf("get samples: %w", err)
			}
			for _, s := range samples {
				totalDur += uint64(s.Dur)
			}
			info.SampleCount += len(samples)
		}
	}

	if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Timescale > 0 {
		info.DurationMs = int(totalDur * 1000 / uint64(mdhd.Timescale))
	}
	return info, nil
}

// videoTrack returns the first track with a vide handler and a sample table.
func videoTrack(traks []*mp4.TrakBox) *mp4.TrakBox {
	for _, trak := range traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
			continue
		}
		return trak
	}
	return nil
}

func describeTrack(trak *mp4.TrakBox) ports.VideoInfo {
	info := ports.VideoInfo{Codec: CodecUnknown}
	if trak.Tkhd != nil {
		info.Width = int(trak.Tkhd.Width >> 16)
		info.Height = int(trak.Tkhd.Height >> 16)
	}

	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		codec := codecOf(child.Type())
		if codec == CodecUnknown {
			continue
		}
		info.Codec = codec
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok && vse.Width > 0 {
			info.Width = int(vse.Width)
			info.Height = int(vse.Height)
		}
		return info
	}
	return info
}

func codecOf(boxType string) string {
	switch boxType {
	case "avc1", "avc3":
		return CodecH264
	case "hvc1", "hev1":
		return CodecHEVC
	case "av01":
		return CodecAV1
	}
	return CodecUnknown
}

var _ ports.VideoProber = (*Prober)(nil)
