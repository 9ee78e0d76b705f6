package generate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/user/carousel/pkg/adapters/logger"
	"github.com/user/carousel/pkg/mocks"
	"github.com/user/carousel/pkg/pipeline"
	"github.com/user/carousel/pkg/ports"
	"github.com/user/carousel/pkg/stages/allocate"
)

func testProject(uploads, slides int) pipeline.Project {
	images := make([]pipeline.UploadedImage, uploads)
	for i := range images {
		images[i] = pipeline.UploadedImage{
			ID:     fmt.Sprintf("img-%d", i),
			Source: fmt.Sprintf("photos/%d.jpg", i),
		}
	}
	plan := allocate.Allocate(uploads, slides, pipeline.AllocateSequential)
	return pipeline.Project{
		Theme:              "summer road trip",
		Keywords:           []string{"film", "coast"},
		SlideCount:         slides,
		HeadlineVisibility: pipeline.HeadlineAll,
		Images:             images,
		Slides:             allocate.BuildSlides(plan, images),
		OverlayStyle:       pipeline.DefaultOverlayStyle(),
	}
}

func TestResolveVisibility(t *testing.T) {
	tests := []struct {
		mode     pipeline.HeadlineVisibility
		position int
		want     bool
	}{
		{pipeline.HeadlineAll, 0, true},
		{pipeline.HeadlineAll, 3, true},
		{pipeline.HeadlineFirstOnly, 0, true},
		{pipeline.HeadlineFirstOnly, 1, false},
		{pipeline.HeadlineNone, 0, false},
		{"", 2, true},
	}

	for _, tt := range tests {
		if got := ResolveVisibility(tt.mode, tt.position); got != tt.want {
			t.Errorf("ResolveVisibility(%q, %d) = %v, want %v", tt.mode, tt.position, got, tt.want)
		}
	}
}

func TestStage_Execute_AllReady(t *testing.T) {
	textgen := &mocks.TextGenerator{}
	stage := NewStage(textgen, logger.NewNoop(), 3)
	project := testProject(2, 4)

	result, err := stage.Execute(context.Background(), pipeline.GenerateInput{Project: project})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ErrorCount != 0 || result.FirstError != "" {
		t.Errorf("expected no errors, got %d %q", result.ErrorCount, result.FirstError)
	}
	if textgen.CallCount() != 4 {
		t.Errorf("expected generator called for every slide, got %d", textgen.CallCount())
	}

	for i, s := range result.Slides {
		if s.Position != i {
			t.Errorf("slide %d out of order: position %d", i, s.Position)
		}
		if s.Status != pipeline.StatusReady {
			t.Errorf("slide %d: expected ready, got %s", i, s.Status)
		}
		want := fmt.Sprintf("%s %d", s.SlideType, i)
		if s.TextOverlay == nil || s.TextOverlay.Content.Primary != want {
			t.Errorf("slide %d: unexpected overlay %+v", i, s.TextOverlay)
		}
	}

	if result.Slides[0].ImageURL != "photos/0.jpg" || result.Slides[1].ImageURL != "photos/1.jpg" {
		t.Errorf("image urls not bound: %q %q", result.Slides[0].ImageURL, result.Slides[1].ImageURL)
	}
	if result.Slides[2].ImageURL != "" {
		t.Errorf("text-only slide should have no image url, got %q", result.Slides[2].ImageURL)
	}

	if project.Slides[0].Status != pipeline.StatusPending {
		t.Error("input project slides were mutated")
	}
}

func TestStage_Execute_PartialFailure(t *testing.T) {
	textgen := &mocks.TextGenerator{
		GenerateFunc: func(ctx context.Context, slide ports.SlideContext) (ports.GeneratedText, error) {
			if slide.Position == 2 {
				return ports.GeneratedText{}, errors.New("quota exceeded")
			}
			return ports.GeneratedText{Primary: "ok"}, nil
		},
	}
	stage := NewStage(textgen, logger.NewNoop(), 4)
	project := testProject(5, 5)

	result, err := stage.Execute(context.Background(), pipeline.GenerateInput{Project: project})
	if err != nil {
		t.Fatalf("partial failure must not be an error: %v", err)
	}

	if result.ErrorCount != 1 {
		t.Errorf("expected 1 error, got %d", result.ErrorCount)
	}
	if result.FirstError != "quota exceeded" {
		t.Errorf("unexpected first error %q", result.FirstError)
	}

	for i, s := range result.Slides {
		if i == 2 {
			if s.Status != pipeline.StatusError || s.Error != "quota exceeded" {
				t.Errorf("slide 2: expected error status, got %s %q", s.Status, s.Error)
			}
			if s.TextOverlay != nil {
				t.Error("failed slide should have no overlay")
			}
			continue
		}
		if s.Status != pipeline.StatusReady {
			t.Errorf("slide %d: expected ready, got %s", i, s.Status)
		}
		if s.ID != project.Slides[i].ID || s.ImageRef != project.Slides[i].ImageRef {
			t.Errorf("slide %d: unrelated fields changed", i)
		}
	}
}

func TestStage_Execute_FirstErrorByPosition(t *testing.T) {
	textgen := &mocks.TextGenerator{
		GenerateFunc: func(ctx context.Context, slide ports.SlideContext) (ports.GeneratedText, error) {
			if slide.Position >= 3 {
				return ports.GeneratedText{}, fmt.Errorf("boom %d", slide.Position)
			}
			return ports.GeneratedText{Primary: "ok"}, nil
		},
	}
	stage := NewStage(textgen, logger.NewNoop(), 8)

	result, err := stage.Execute(context.Background(), pipeline.GenerateInput{Project: testProject(0, 6)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ErrorCount != 3 || result.FirstError != "boom 3" {
		t.Errorf("expected 3 errors starting at boom 3, got %d %q", result.ErrorCount, result.FirstError)
	}
}

func TestStage_Execute_AllFail(t *testing.T) {
	textgen := &mocks.TextGenerator{
		GenerateFunc: func(ctx context.Context, slide ports.SlideContext) (ports.GeneratedText, error) {
			return ports.GeneratedText{}, errors.New("service down")
		},
	}
	stage := NewStage(textgen, logger.NewNoop(), 2)

	result, err := stage.Execute(context.Background(), pipeline.GenerateInput{Project: testProject(1, 3)})
	if !errors.Is(err, ErrAllSlidesFailed) {
		t.Fatalf("expected ErrAllSlidesFailed, got %v", err)
	}
	if !result.Failed() || result.ErrorCount != 3 {
		t.Errorf("expected failed result with 3 errors, got %+v", result)
	}
}

func TestStage_Execute_PanicIsolated(t *testing.T) {
	textgen := &mocks.TextGenerator{
		GenerateFunc: func(ctx context.Context, slide ports.SlideContext) (ports.GeneratedText, error) {
			if slide.Position == 1 {
				panic("bad generator")
			}
			return ports.GeneratedText{Primary: "ok"}, nil
		},
	}
	stage := NewStage(textgen, logger.NewNoop(), 2)

	result, err := stage.Execute(context.Background(), pipeline.GenerateInput{Project: testProject(0, 3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Slides[1].Status != pipeline.StatusError || result.ErrorCount != 1 {
		t.Errorf("expected slide 1 to fail, got %+v", result.Slides[1])
	}
}

func TestStage_Execute_OverrideAndVisibility(t *testing.T) {
	stage := NewStage(&mocks.TextGenerator{}, logger.NewNoop(), 2)

	project := testProject(0, 3)
	project.HeadlineVisibility = pipeline.HeadlineFirstOnly
	project.Overrides = map[int]string{0: "Manual hook", 1: "Manual story"}

	result, err := stage.Execute(context.Background(), pipeline.GenerateInput{Project: project})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := result.Slides[0].TextOverlay.Content.Primary; got != "Manual hook" {
		t.Errorf("expected override on slide 0, got %q", got)
	}
	if got := result.Slides[1].TextOverlay.Content.Primary; got != "" {
		t.Errorf("expected hidden headline on slide 1, got %q", got)
	}
	for i, s := range result.Slides {
		want := fmt.Sprintf("%s %d", s.SlideType, i)
		if s.AIGeneratedOverlay.Content.Primary != want {
			t.Errorf("slide %d: raw result not preserved, got %q", i, s.AIGeneratedOverlay.Content.Primary)
		}
	}
}

func TestStage_Execute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	textgen := &mocks.TextGenerator{
		GenerateFunc: func(ctx context.Context, slide ports.SlideContext) (ports.GeneratedText, error) {
			calls.Add(1)
			cancel()
			return ports.GeneratedText{Primary: "first"}, nil
		},
	}
	stage := NewStage(textgen, logger.NewNoop(), 1)

	result, err := stage.Execute(ctx, pipeline.GenerateInput{Project: testProject(0, 5)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected exactly one generator call, got %d", calls.Load())
	}
	if result.Slides[0].Status != pipeline.StatusReady {
		t.Errorf("in-flight slide should keep ready, got %s", result.Slides[0].Status)
	}
	for i := 1; i < 5; i++ {
		if result.Slides[i].Status != pipeline.StatusPending {
			t.Errorf("slide %d: expected pending, got %s", i, result.Slides[i].Status)
		}
	}
}

func TestStage_Regenerate(t *testing.T) {
	stage := NewStage(&mocks.TextGenerator{}, logger.NewNoop(), 2)

	first, err := stage.Execute(context.Background(), pipeline.GenerateInput{Project: testProject(2, 4)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	project := testProject(2, 4)
	project.Slides = first.Slides

	regen := NewStage(&mocks.TextGenerator{
		GenerateFunc: func(ctx context.Context, slide ports.SlideContext) (ports.GeneratedText, error) {
			return ports.GeneratedText{Primary: "fresh"}, nil
		},
	}, logger.NewNoop(), 2)

	slides, err := regen.Regenerate(context.Background(), project, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slides[2].TextOverlay.Content.Primary != "fresh" {
		t.Errorf("slide 2 not regenerated: %q", slides[2].TextOverlay.Content.Primary)
	}
	for _, i := range []int{0, 1, 3} {
		if !reflect.DeepEqual(slides[i], project.Slides[i]) {
			t.Errorf("slide %d changed during regeneration", i)
		}
	}
}

func TestStage_Regenerate_Errors(t *testing.T) {
	stage := NewStage(&mocks.TextGenerator{
		GenerateFunc: func(ctx context.Context, slide ports.SlideContext) (ports.GeneratedText, error) {
			return ports.GeneratedText{}, errors.New("nope")
		},
	}, logger.NewNoop(), 1)
	project := testProject(0, 2)

	if _, err := stage.Regenerate(context.Background(), project, 5); !errors.Is(err, ErrSlideIndexOutOfRange) {
		t.Errorf("expected ErrSlideIndexOutOfRange, got %v", err)
	}

	slides, err := stage.Regenerate(context.Background(), project, 1)
	if !errors.Is(err, ErrSlideFailed) {
		t.Fatalf("expected ErrSlideFailed, got %v", err)
	}
	if slides[1].Status != pipeline.StatusError || slides[0].Status != pipeline.StatusPending {
		t.Errorf("unexpected statuses %s %s", slides[0].Status, slides[1].Status)
	}
}

func TestStage_Regenerate_FailureKeepsPreviousOverlay(t *testing.T) {
	ok := NewStage(&mocks.TextGenerator{
		GenerateFunc: func(ctx context.Context, slide ports.SlideContext) (ports.GeneratedText, error) {
			return ports.GeneratedText{Primary: "first run"}, nil
		},
	}, logger.NewNoop(), 1)
	first, err := ok.Execute(context.Background(), pipeline.GenerateInput{Project: testProject(1, 2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	project := testProject(1, 2)
	project.Slides = first.Slides

	failing := NewStage(&mocks.TextGenerator{
		GenerateFunc: func(ctx context.Context, slide ports.SlideContext) (ports.GeneratedText, error) {
			return ports.GeneratedText{}, errors.New("rate limited")
		},
	}, logger.NewNoop(), 1)
	slides, err := failing.Regenerate(context.Background(), project, 1)
	if !errors.Is(err, ErrSlideFailed) {
		t.Fatalf("expected ErrSlideFailed, got %v", err)
	}

	got := slides[1]
	if got.Status != pipeline.StatusError || got.Error != "rate limited" {
		t.Errorf("unexpected status %s (%q)", got.Status, got.Error)
	}
	if got.TextOverlay == nil || got.TextOverlay.Content.Primary != "first run" {
		t.Errorf("expected display overlay from the previous run, got %+v", got.TextOverlay)
	}
	if got.AIGeneratedOverlay == nil || got.AIGeneratedOverlay.Content.Primary != "first run" {
		t.Errorf("expected raw overlay from the previous run, got %+v", got.AIGeneratedOverlay)
	}
}
