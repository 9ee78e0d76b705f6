// Package templatetext produces deterministic slide text from the theme and
// keywords without any network access.
package templatetext

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/user/carousel/pkg/ports"
)

var (
	hookTemplates = []string{
		"%s, like you've never seen it",
		"Everything about %s",
		"Why %s matters",
		"A closer look at %s",
	}
	storyTemplates = []string{
		"It starts with %s",
		"Then comes %s",
		"Don't overlook %s",
		"The secret is %s",
		"All about %s",
	}
	closerTemplates = []string{
		"Save this for later",
		"Which one is your favourite?",
		"Follow for more %s",
		"Share this with a friend",
	}
)

// Generator implements ports.TextGenerator with fixed templates. The same
// slide context always yields the same text.
type Generator struct{}

// New creates a template generator.
func New() *Generator {
	return &Generator{}
}

// Generate returns a headline for the slide's role and a subtitle built from
// its keyword.
func (g *Generator) Generate(ctx context.Context, slide ports.SlideContext) (ports.GeneratedText, error) {
	if err := ctx.Err(); err != nil {
		return ports.GeneratedText{}, err
	}

	theme := strings.TrimSpace(slide.Theme)
	if theme == "" {
		theme = "this"
	}
	keyword := keywordFor(slide)
	pick := pickIndex(theme, slide.Position)

	var headline, subtitle string
	switch slide.Role {
	case "hook":
		headline = fmt.Sprintf(hookTemplates[pick%len(hookTemplates)], theme)
		subtitle = fmt.Sprintf("%d slides", slide.TotalSlides)
	case "closer":
		tmpl := closerTemplates[pick%len(closerTemplates)]
		if strings.Contains(tmpl, "%s") {
			headline = fmt.Sprintf(tmpl, theme)
		} else {
			headline = tmpl
		}
		subtitle = theme
	default:
		headline = fmt.Sprintf(storyTemplates[pick%len(storyTemplates)], keyword)
		subtitle = fmt.Sprintf("%d / %d", slide.Position+1, slide.TotalSlides)
	}

	return ports.GeneratedText{
		Primary:   capitalize(headline),
		Secondary: subtitle,
	}, nil
}

// keywordFor cycles through the keywords by story position, falling back
// to the theme.
func keywordFor(slide ports.SlideContext) string {
	var keywords []string
	for _, k := range slide.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		if slide.Theme == "" {
			return "the details"
		}
		return slide.Theme
	}
	return keywords[max(0, slide.Position-1)%len(keywords)]
}

func pickIndex(theme string, position int) int {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(theme)))
	return int(h.Sum32()%1024) + position
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}

var _ ports.TextGenerator = (*Generator)(nil)
