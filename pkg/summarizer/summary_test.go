package summarizer

import (
	"testing"

	"github.com/user/carousel/pkg/pipeline"
)

func testProject() *pipeline.Project {
	return &pipeline.Project{
		ID:                 "p1",
		Theme:              "Kyoto in autumn",
		HeadlineVisibility: pipeline.HeadlineAll,
		Filter:             pipeline.FilterConfig{Preset: "film"},
		Slides: []pipeline.CarouselSlide{
			{Position: 1, Status: pipeline.StatusReady},
			{Position: 2, Status: pipeline.StatusError, Error: "first"},
			{Position: 3, Status: pipeline.StatusError, Error: "second"},
			{Position: 4, Status: pipeline.StatusPending},
		},
	}
}

func TestBuilder_WithProject(t *testing.T) {
	s := NewBuilder().WithProject(testProject()).Build()

	if s.Project.SlideCount != 4 {
		t.Errorf("SlideCount = %d, want 4", s.Project.SlideCount)
	}
	if s.Project.FilterPreset != "film" {
		t.Errorf("FilterPreset = %q", s.Project.FilterPreset)
	}
	g := s.Generation
	if g.Ready != 1 || g.Errors != 2 || g.Pending != 1 {
		t.Errorf("Generation = %+v", g)
	}
	if g.FirstError != "first" {
		t.Errorf("FirstError = %q, want first", g.FirstError)
	}
	if s.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be set")
	}
}

func TestBuilder_WithExport(t *testing.T) {
	platforms := []pipeline.PlatformSpec{
		{Name: "instagram-portrait", Width: 1080, Height: 1350, Format: "jpeg"},
		{Name: "linkedin", Width: 1200, Height: 1500, Format: "png"},
	}
	result := pipeline.ExportResult{
		Images: []pipeline.ExportedImage{
			{Platform: "instagram-portrait", SlideIndex: 0, Data: make([]byte, 10)},
			{Platform: "instagram-portrait", SlideIndex: 1, Data: make([]byte, 20)},
			{Platform: "linkedin", SlideIndex: 0, Data: make([]byte, 5)},
		},
		Failures: []pipeline.ExportFailure{
			{Platform: "linkedin", SlideIndex: 1, Err: "decode failed"},
		},
	}
	paths := []string{"a.jpg", "b.jpg", "c.png"}

	s := NewBuilder().WithExport(platforms, result, paths).Build()

	if len(s.Exports) != 2 {
		t.Fatalf("Exports = %d, want 2", len(s.Exports))
	}
	ig := s.Exports[0]
	if ig.Platform != "instagram-portrait" || len(ig.Files) != 2 || ig.TotalBytes != 30 {
		t.Errorf("instagram export = %+v", ig)
	}
	li := s.Exports[1]
	if len(li.Files) != 1 || li.Files[0] != "c.png" || li.TotalBytes != 5 {
		t.Errorf("linkedin export = %+v", li)
	}
	if len(s.Failures) != 1 {
		t.Fatalf("Failures = %d, want 1", len(s.Failures))
	}
	if f := s.Failures[0]; f.Slide != 2 || f.Message != "decode failed" {
		t.Errorf("failure = %+v, want 1-based slide 2", f)
	}
}

func TestBuilder_WithVideo(t *testing.T) {
	s := NewBuilder().Build()
	if s.Video != nil {
		t.Fatal("Video should be nil by default")
	}

	s = NewBuilder().WithVideo(VideoInfo{Path: "out.mp4", FrameCount: 90}).Build()
	if s.Video == nil || s.Video.FrameCount != 90 {
		t.Errorf("Video = %+v", s.Video)
	}
}
