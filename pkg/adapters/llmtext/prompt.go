package llmtext

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/user/carousel/pkg/ports"
)

// SystemPrompt instructs the model to answer with one JSON object.
const SystemPrompt = `You write short overlay text for social media carousel slides.
Respond with JSON only: {"headline": "...", "subtitle": "..."}.
The headline is at most 8 words. The subtitle is one short sentence or empty.
A hook slide grabs attention, story slides carry the narrative, the closer
ends with a call to action. Do not use hashtags or emoji.`

// UserPrompt describes one slide to the model.
func UserPrompt(slide ports.SlideContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Theme: %s\n", slide.Theme)
	if len(slide.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(slide.Keywords, ", "))
	}
	if slide.Style != "" {
		fmt.Fprintf(&b, "Style: %s\n", slide.Style)
	}
	fmt.Fprintf(&b, "Slide %d of %d, role: %s\n", slide.Position+1, slide.TotalSlides, slide.Role)
	if slide.HasImage {
		b.WriteString("The slide shows a photo; keep the text short.\n")
	} else {
		b.WriteString("The slide is text only.\n")
	}
	return b.String()
}

// DecodeLLMJSON decodes JSON from a model response, tolerating code fences
// and prose around the object.
func DecodeLLMJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}

	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}

	sanitized := sanitizeJSONPayload(trimmed)
	if sanitized == "" || sanitized == trimmed {
		return fmt.Errorf("%w (payload snippet: %s)", directErr, summarizePayloadSnippet(trimmed))
	}
	if err := json.Unmarshal([]byte(sanitized), target); err != nil {
		return fmt.Errorf("%w (sanitized payload snippet: %s)", err, summarizePayloadSnippet(sanitized))
	}
	return nil
}

func sanitizeJSONPayload(content string) string {
	trimmed := strings.TrimSpace(stripCodeFenceBlock(content))
	if trimmed == "" || trimmed[0] == '{' {
		return trimmed
	}
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	return trimmed
}

func stripCodeFenceBlock(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func summarizePayloadSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
