package ports

import "context"

// SlideContext is everything a text generator knows about one slide.
type SlideContext struct {
	Theme       string
	Keywords    []string
	Role        string // hook, story or closer
	Position    int    // 0-based
	TotalSlides int
	Style       string
	HasImage    bool
}

// GeneratedText is the text produced for one slide.
type GeneratedText struct {
	Primary   string
	Secondary string
}

// TextGenerator produces overlay text for a slide. Implementations may call
// remote services and fail on network or quota errors.
type TextGenerator interface {
	Generate(ctx context.Context, slide SlideContext) (GeneratedText, error)
}
