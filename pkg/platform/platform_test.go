package platform

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	spec, ok := Lookup(" Instagram-Portrait ")
	if !ok {
		t.Fatal("expected instagram-portrait preset")
	}
	if spec.Width != 1080 || spec.Height != 1350 || spec.Format != "jpeg" || spec.Quality != DefaultJPEGQuality {
		t.Errorf("unexpected spec %+v", spec)
	}
	if _, ok := Lookup("myspace"); ok {
		t.Error("unexpected preset myspace")
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != len(presets) || names[0] != "instagram-portrait" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestParse(t *testing.T) {
	specs, err := Parse("instagram-square, 1200x628 ,instagram-square,linkedin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("expected 3 specs, got %d", len(specs))
	}
	if specs[1].Name != "1200x628" || specs[1].Width != 1200 || specs[1].Height != 628 {
		t.Errorf("unexpected custom spec %+v", specs[1])
	}
	if specs[2].Format != "png" || specs[2].Quality != 0 {
		t.Errorf("unexpected linkedin spec %+v", specs[2])
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "nope", "0x100", "10xabc"} {
		if _, err := Parse(in); !errors.Is(err, ErrUnknownPlatform) {
			t.Errorf("Parse(%q): expected ErrUnknownPlatform, got %v", in, err)
		}
	}
}

func TestBuilder(t *testing.T) {
	spec := NewBuilder().
		WithName("banner").
		WithSize(0, 500).
		WithFormat("webp").
		WithQuality(150).
		Build()

	if spec.Name != "banner" || spec.Width != 1 || spec.Height != 500 {
		t.Errorf("unexpected geometry %+v", spec)
	}
	if spec.Format != "jpeg" || spec.Quality != 100 {
		t.Errorf("expected jpeg at quality 100, got %s at %d", spec.Format, spec.Quality)
	}

	png := NewBuilder().WithFormat("png").WithQuality(80).Build()
	if png.Quality != 0 {
		t.Errorf("png specs carry no quality, got %d", png.Quality)
	}
}

func TestBuilder_QualityPreset(t *testing.T) {
	b, err := FromPreset("tiktok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	spec := b.WithQualityPreset(QualityLow).Build()
	if spec.Quality != GetQualitySettings(QualityLow).JPEGQuality {
		t.Errorf("expected low quality, got %d", spec.Quality)
	}
	if _, err := FromPreset("nope"); !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("expected ErrUnknownPlatform, got %v", err)
	}
}

func TestGetQualitySettings(t *testing.T) {
	low, med, high := GetQualitySettings(QualityLow), GetQualitySettings("other"), GetQualitySettings(QualityHigh)
	if !(low.JPEGQuality < med.JPEGQuality && med.JPEGQuality < high.JPEGQuality) {
		t.Errorf("JPEG quality should increase: %d %d %d", low.JPEGQuality, med.JPEGQuality, high.JPEGQuality)
	}
	if !(low.VideoCRF > med.VideoCRF && med.VideoCRF > high.VideoCRF) {
		t.Errorf("CRF should decrease: %d %d %d", low.VideoCRF, med.VideoCRF, high.VideoCRF)
	}
}
