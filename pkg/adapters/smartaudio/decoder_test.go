package smartaudio

import (
	"errors"
	"testing"

	"github.com/user/carousel/pkg/adapters/wavcodec"
	"github.com/user/carousel/pkg/ports"
)

func sineWAV(t *testing.T) []byte {
	t.Helper()
	samples := make([]float32, 800)
	for i := range samples {
		samples[i] = 0.25
	}
	data, err := wavcodec.Encode(ports.AudioBuffer{SampleRate: 8000, Channels: [][]float32{samples}})
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return data
}

func TestBackendFor(t *testing.T) {
	if BackendFor(sineWAV(t)) != BackendWAV {
		t.Error("expected WAV backend for RIFF data")
	}
	if BackendFor([]byte("ID3\x04mp3 data")) != BackendFFmpeg {
		t.Error("expected ffmpeg backend for MP3 data")
	}
}

func TestDecode_WAVSkipsFFmpeg(t *testing.T) {
	d := New(Options{})
	d.transcode = func(data []byte) ([]byte, error) {
		t.Fatal("transcode must not be called for WAV input")
		return nil, nil
	}

	buf, err := d.Decode(sineWAV(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.SampleRate != 8000 || buf.Length() != 800 {
		t.Errorf("unexpected buffer: %d Hz, %d samples", buf.SampleRate, buf.Length())
	}
}

func TestDecode_OtherFormatsTranscode(t *testing.T) {
	wav := sineWAV(t)
	d := New(Options{})
	var got []byte
	d.transcode = func(data []byte) ([]byte, error) {
		got = data
		return wav, nil
	}

	buf, err := d.Decode([]byte("OggS"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "OggS" {
		t.Errorf("transcode received %q", got)
	}
	if buf.Length() != 800 {
		t.Errorf("expected 800 samples, got %d", buf.Length())
	}
}

func TestDecode_TranscodeFailure(t *testing.T) {
	d := New(Options{})
	d.transcode = func(data []byte) ([]byte, error) {
		return nil, ErrNoDecoderAvailable
	}

	if _, err := d.Decode([]byte("fLaC")); !errors.Is(err, ErrNoDecoderAvailable) {
		t.Errorf("expected ErrNoDecoderAvailable, got %v", err)
	}
}

func TestDecode_BadTranscodeOutput(t *testing.T) {
	d := New(Options{})
	d.transcode = func(data []byte) ([]byte, error) {
		return []byte("garbage"), nil
	}

	if _, err := d.Decode([]byte("fLaC")); !errors.Is(err, wavcodec.ErrInvalidWAV) {
		t.Errorf("expected ErrInvalidWAV, got %v", err)
	}
}
