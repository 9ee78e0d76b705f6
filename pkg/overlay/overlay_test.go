package overlay

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/user/carousel/pkg/mocks"
	"github.com/user/carousel/pkg/pipeline"
)

func newOverlay(primary string) *pipeline.TextOverlay {
	o := pipeline.DefaultOverlayStyle()
	o.Content.Primary = primary
	return &o
}

func TestAnchor_Lookup(t *testing.T) {
	tests := []struct {
		v      pipeline.VerticalAlign
		h      pipeline.HorizontalAlign
		wx, wy float64
	}{
		{pipeline.AlignTop, pipeline.AlignStart, 250, 200},
		{pipeline.AlignMiddle, pipeline.AlignCenter, 500, 550},
		{pipeline.AlignBottom, pipeline.AlignEnd, 750, 850},
	}

	for _, tt := range tests {
		x, y := Anchor(pipeline.OverlayPositioning{Alignment: tt.v, HorizontalAlign: tt.h}, 1000, 1000)
		if x != tt.wx || y != tt.wy {
			t.Errorf("%s/%s: expected (%v,%v), got (%v,%v)", tt.v, tt.h, tt.wx, tt.wy, x, y)
		}
	}
}

func TestAnchor_FreePositionWins(t *testing.T) {
	pos := pipeline.OverlayPositioning{
		Alignment:       pipeline.AlignTop,
		HorizontalAlign: pipeline.AlignStart,
		FreePosition:    &pipeline.Percent2D{X: 10, Y: 90},
	}

	x, y := Anchor(pos, 1080, 1350)
	if x != 108 || y != 1215 {
		t.Errorf("expected (108,1215), got (%v,%v)", x, y)
	}
}

func TestRender_EmptyPrimaryIsInvisible(t *testing.T) {
	renderer := &mocks.Renderer{}
	r := NewRenderer(renderer)

	for _, o := range []*pipeline.TextOverlay{nil, newOverlay(""), newOverlay("   ")} {
		layer, err := r.Render(o, 1080, 1080)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if layer.Visible || layer.Image != nil || !layer.Box.Empty() {
			t.Errorf("expected invisible layer, got %+v", layer)
		}
	}
	if len(renderer.Canvases) != 0 {
		t.Errorf("expected no canvas to be created, got %d", len(renderer.Canvases))
	}
}

func TestRender_InvalidSize(t *testing.T) {
	r := NewRenderer(&mocks.Renderer{})
	if _, err := r.Render(newOverlay("hi"), 0, 100); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestRender_DrawOrder(t *testing.T) {
	renderer := &mocks.Renderer{}
	r := NewRenderer(renderer)

	o := newOverlay("Golden hour")
	o.Content.Secondary = "by the sea"
	o.Styling.BackgroundColor = "#000000"
	o.Styling.Stroke = &pipeline.StrokeSpec{Color: "#ff0000", Width: 2}

	layer, err := r.Render(o, 1080, 1080)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !layer.Visible || layer.Image == nil {
		t.Fatal("expected visible layer")
	}
	if layer.Box.Empty() {
		t.Error("expected background box")
	}

	canvas := renderer.Canvases[0]
	if canvas.Calls[0].Op != "rounded-rect" {
		t.Fatalf("expected box first, got %s", canvas.Calls[0].Op)
	}

	texts := canvas.CallsOf("text")
	// headline: 1 shadow + 8 stroke + 1 fill, then subtitle the same.
	if len(texts) != 20 {
		t.Fatalf("expected 20 text draws, got %d", len(texts))
	}
	for i := 0; i < 10; i++ {
		if texts[i].Text != "Golden hour" {
			t.Errorf("draw %d: expected headline, got %q", i, texts[i].Text)
		}
	}
	for i := 10; i < 20; i++ {
		if texts[i].Text != "by the sea" {
			t.Errorf("draw %d: expected subtitle, got %q", i, texts[i].Text)
		}
	}

	// The fill pass is last and sits exactly on the line anchor.
	fill := texts[9]
	if fill.X != layer.Lines[0].X || fill.Y != layer.Lines[0].Y {
		t.Errorf("fill not on anchor: (%v,%v) vs (%v,%v)", fill.X, fill.Y, layer.Lines[0].X, layer.Lines[0].Y)
	}
	if fill.Color != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("expected white fill, got %v", fill.Color)
	}
}

func TestRender_NoBackgroundNoBox(t *testing.T) {
	renderer := &mocks.Renderer{}
	r := NewRenderer(renderer)

	layer, err := r.Render(newOverlay("Hello"), 1080, 1080)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !layer.Box.Empty() {
		t.Errorf("expected no box, got %v", layer.Box)
	}
	if n := len(renderer.Canvases[0].CallsOf("rounded-rect")); n != 0 {
		t.Errorf("expected no box draw, got %d", n)
	}
}

func TestRender_ContrastingDefaultColor(t *testing.T) {
	renderer := &mocks.Renderer{}
	r := NewRenderer(renderer)

	o := newOverlay("Hello")
	o.Styling.Color = ""
	o.Styling.Shadow.Enabled = false
	o.Styling.BackgroundColor = "#ffffff"

	if _, err := r.Render(o, 540, 540); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	texts := renderer.Canvases[0].CallsOf("text")
	if len(texts) != 1 {
		t.Fatalf("expected 1 text draw, got %d", len(texts))
	}
	if texts[0].Color != color.Black {
		t.Errorf("expected black text on white box, got %v", texts[0].Color)
	}
}

func TestRender_ScalesWithWidth(t *testing.T) {
	renderer := &mocks.Renderer{}
	r := NewRenderer(renderer)

	o := newOverlay("Hi")
	layer, err := r.Render(o, 540, 960)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := layer.Lines[0].FontSize; got != 36 {
		t.Errorf("expected font size 36 at half width, got %v", got)
	}
	if layer.Anchor != image.Pt(270, 816) {
		t.Errorf("unexpected anchor %v", layer.Anchor)
	}
}

func TestRender_WrapsInsideCanvas(t *testing.T) {
	renderer := &mocks.Renderer{}
	r := NewRenderer(renderer)

	o := newOverlay("a very long headline that cannot possibly fit on one line")
	layer, err := r.Render(o, 1080, 1080)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(layer.Lines) < 2 {
		t.Fatalf("expected wrapping, got %d lines", len(layer.Lines))
	}

	canvas := renderer.Canvases[0]
	for _, l := range layer.Lines {
		w, _ := canvas.MeasureText(l.Text, canvas.CallsOf("text")[0].Style)
		if l.X-w/2 < 0 || l.X+w/2 > 1080 {
			t.Errorf("line %q overflows the canvas", l.Text)
		}
	}
}
