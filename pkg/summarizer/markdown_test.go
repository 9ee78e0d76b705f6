package summarizer

import (
	"strings"
	"testing"

	"github.com/user/carousel/pkg/mocks"
	"github.com/user/carousel/pkg/pipeline"
)

func TestMarkdownFormatter_Sections(t *testing.T) {
	s := NewBuilder().
		WithProject(testProject()).
		WithAllocation(pipeline.AllocationRatio{Uploaded: 3, TextOnly: 1, PercentUploaded: 75}).
		WithExport(
			[]pipeline.PlatformSpec{{Name: "x", Width: 1600, Height: 900, Format: "jpeg"}},
			pipeline.ExportResult{
				Images:   []pipeline.ExportedImage{{Platform: "x", Data: make([]byte, 2048)}},
				Failures: []pipeline.ExportFailure{{Platform: "x", SlideIndex: 2, Err: "boom"}},
			},
			[]string{"out/x/slide-01.jpg"},
		).
		WithVideo(VideoInfo{
			Path:       "out/video.mp4",
			Backend:    "ffmpeg",
			Codec:      "h264",
			Width:      1080,
			Height:     1350,
			FPS:        30,
			FrameCount: 270,
			DurationMs: 9000,
			FileSize:   3 * 1024 * 1024,
		}).
		Build()

	out := NewMarkdownFormatter().Format(s)

	for _, want := range []string{
		"# Carousel Export Summary",
		"| Theme | Kyoto in autumn |",
		"| Photos | 3 uploaded, 1 text-only (75%) |",
		"- Errors: 2",
		"- First error: first",
		"| x | 1600x900 | jpeg | 1 | 2.0 KiB |",
		"- `out/x/slide-01.jpg`",
		"- x slide 3: boom",
		"## Video",
		"| Frames | 270 at 30 fps |",
		"| Duration | 9.00s |",
		"| File size | 3.0 MiB |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestMarkdownFormatter_OmitsEmptySections(t *testing.T) {
	out := NewMarkdownFormatter().Format(NewBuilder().WithProject(testProject()).Build())

	for _, absent := range []string{"## Exports", "## Failures", "## Video"} {
		if strings.Contains(out, absent) {
			t.Errorf("output should not contain %q", absent)
		}
	}
}

func TestMarkdownFormatter_EscapesPipes(t *testing.T) {
	p := testProject()
	p.Theme = "a|b"
	out := NewMarkdownFormatter().Format(NewBuilder().WithProject(p).Build())

	if !strings.Contains(out, `| Theme | a\|b |`) {
		t.Errorf("theme not escaped:\n%s", out)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1024 * 1024, "1.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(FormatFunc(func(*Summary) string { return "hello" }), fs)

	if err := w.Write("out/summary.md", NewSummary()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, ok := fs.GetFile("out/summary.md")
	if !ok || string(data) != "hello" {
		t.Errorf("written = %q, %v", data, ok)
	}
}
