package summarizer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as Markdown.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder

	b.WriteString("# Carousel Export Summary\n\n")
	fmt.Fprintf(&b, "Generated at %s\n\n", s.GeneratedAt.Format(time.RFC3339))

	f.writeProject(&b, s)
	f.writeGeneration(&b, s)
	f.writeExports(&b, s)
	f.writeFailures(&b, s)
	f.writeVideo(&b, s)

	return b.String()
}

func (f *MarkdownFormatter) writeProject(b *strings.Builder, s *Summary) {
	p := s.Project
	b.WriteString("## Project\n\n")
	b.WriteString("| Item | Value |\n|------|-------|\n")
	if p.ID != "" {
		fmt.Fprintf(b, "| ID | %s |\n", p.ID)
	}
	fmt.Fprintf(b, "| Theme | %s |\n", escapeCell(p.Theme))
	fmt.Fprintf(b, "| Slides | %d |\n", p.SlideCount)
	if p.Visibility != "" {
		fmt.Fprintf(b, "| Headline visibility | %s |\n", p.Visibility)
	}
	if p.FilterPreset != "" {
		fmt.Fprintf(b, "| Filter | %s |\n", p.FilterPreset)
	}
	a := s.Allocation
	if a.Uploaded+a.TextOnly > 0 {
		fmt.Fprintf(b, "| Photos | %d uploaded, %d text-only (%d%%) |\n", a.Uploaded, a.TextOnly, a.PercentUploaded)
	}
	b.WriteString("\n")
}

func (f *MarkdownFormatter) writeGeneration(b *strings.Builder, s *Summary) {
	g := s.Generation
	b.WriteString("## Generation\n\n")
	fmt.Fprintf(b, "- Ready: %d\n", g.Ready)
	fmt.Fprintf(b, "- Errors: %d\n", g.Errors)
	if g.Pending > 0 {
		fmt.Fprintf(b, "- Pending: %d\n", g.Pending)
	}
	if g.FirstError != "" {
		fmt.Fprintf(b, "- First error: %s\n", g.FirstError)
	}
	b.WriteString("\n")
}

func (f *MarkdownFormatter) writeExports(b *strings.Builder, s *Summary) {
	if len(s.Exports) == 0 {
		return
	}
	b.WriteString("## Exports\n\n")
	b.WriteString("| Platform | Size | Format | Files | Total |\n")
	b.WriteString("|----------|------|--------|-------|-------|\n")
	for _, e := range s.Exports {
		fmt.Fprintf(b, "| %s | %dx%d | %s | %d | %s |\n",
			e.Platform, e.Width, e.Height, e.Format, len(e.Files), formatBytes(e.TotalBytes))
	}
	b.WriteString("\n")

	for _, e := range s.Exports {
		if len(e.Files) == 0 {
			continue
		}
		fmt.Fprintf(b, "### %s\n\n", e.Platform)
		for _, file := range e.Files {
			fmt.Fprintf(b, "- `%s`\n", filepath.ToSlash(file))
		}
		b.WriteString("\n")
	}
}

func (f *MarkdownFormatter) writeFailures(b *strings.Builder, s *Summary) {
	if len(s.Failures) == 0 {
		return
	}
	b.WriteString("## Failures\n\n")
	for _, fl := range s.Failures {
		fmt.Fprintf(b, "- %s slide %d: %s\n", fl.Platform, fl.Slide, fl.Message)
	}
	b.WriteString("\n")
}

func (f *MarkdownFormatter) writeVideo(b *strings.Builder, s *Summary) {
	v := s.Video
	if v == nil {
		return
	}
	b.WriteString("## Video\n\n")
	b.WriteString("| Item | Value |\n|------|-------|\n")
	fmt.Fprintf(b, "| File | `%s` |\n", filepath.ToSlash(v.Path))
	if v.Backend != "" {
		fmt.Fprintf(b, "| Encoder | %s |\n", v.Backend)
	}
	if v.Codec != "" {
		fmt.Fprintf(b, "| Codec | %s |\n", v.Codec)
	}
	fmt.Fprintf(b, "| Resolution | %dx%d |\n", v.Width, v.Height)
	fmt.Fprintf(b, "| Frames | %d at %.0f fps |\n", v.FrameCount, v.FPS)
	fmt.Fprintf(b, "| Duration | %.2fs |\n", float64(v.DurationMs)/1000)
	if v.SlideDuration > 0 {
		fmt.Fprintf(b, "| Per slide | %.2fs |\n", v.SlideDuration)
	}
	if v.Transition != "" {
		fmt.Fprintf(b, "| Transition | %s |\n", v.Transition)
	}
	fmt.Fprintf(b, "| File size | %s |\n", formatBytes(v.FileSize))
	if v.AudioPath != "" {
		fmt.Fprintf(b, "| Audio | `%s` |\n", filepath.ToSlash(v.AudioPath))
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

var _ Formatter = (*MarkdownFormatter)(nil)
