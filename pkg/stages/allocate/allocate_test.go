package allocate

import (
	"context"
	"errors"
	"testing"

	"github.com/user/carousel/pkg/adapters/logger"
	"github.com/user/carousel/pkg/pipeline"
)

func TestAllocate_Sequential(t *testing.T) {
	tests := []struct {
		name     string
		uploaded int
		slides   int
		wantUp   int
		wantText int
		wantPct  int
	}{
		{"more slides than uploads", 3, 5, 3, 2, 60},
		{"more uploads than slides", 8, 4, 4, 0, 100},
		{"no uploads", 0, 6, 0, 6, 0},
		{"equal", 5, 5, 5, 0, 100},
		{"rounding", 1, 3, 1, 2, 33},
		{"zero slides", 3, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Allocate(tt.uploaded, tt.slides, pipeline.AllocateSequential)

			if len(plan.PerSlide) != tt.slides {
				t.Fatalf("expected %d slides, got %d", tt.slides, len(plan.PerSlide))
			}
			if plan.Ratio.Uploaded != tt.wantUp {
				t.Errorf("expected uploaded %d, got %d", tt.wantUp, plan.Ratio.Uploaded)
			}
			if plan.Ratio.TextOnly != tt.wantText {
				t.Errorf("expected text-only %d, got %d", tt.wantText, plan.Ratio.TextOnly)
			}
			if plan.Ratio.Uploaded+plan.Ratio.TextOnly != tt.slides {
				t.Errorf("ratio does not add up to slide count")
			}
			if plan.Ratio.PercentUploaded != tt.wantPct {
				t.Errorf("expected percent %d, got %d", tt.wantPct, plan.Ratio.PercentUploaded)
			}

			for i, src := range plan.PerSlide {
				if src.Position != i {
					t.Errorf("slide %d: position %d", i, src.Position)
				}
				if i < tt.wantUp {
					if src.Source != pipeline.SourceUserUpload || src.ReferenceIndex != i {
						t.Errorf("slide %d: expected upload %d, got %s/%d", i, i, src.Source, src.ReferenceIndex)
					}
				} else if src.Source != pipeline.SourceTextOnly || src.ReferenceIndex != -1 {
					t.Errorf("slide %d: expected text-only, got %s/%d", i, src.Source, src.ReferenceIndex)
				}
			}
		})
	}
}

func TestAllocate_Deterministic(t *testing.T) {
	a := Allocate(4, 7, pipeline.AllocateSequential)
	b := Allocate(4, 7, pipeline.AllocateSequential)

	if len(a.PerSlide) != len(b.PerSlide) || a.Ratio != b.Ratio {
		t.Fatalf("plans differ: %+v vs %+v", a.Ratio, b.Ratio)
	}
	for i := range a.PerSlide {
		if a.PerSlide[i] != b.PerSlide[i] {
			t.Errorf("slide %d differs: %+v vs %+v", i, a.PerSlide[i], b.PerSlide[i])
		}
	}
}

func TestAllocate_AutoAndUnknownFallBack(t *testing.T) {
	seq := Allocate(2, 5, pipeline.AllocateSequential)
	for _, mode := range []pipeline.AllocationMode{pipeline.AllocateAuto, "bogus", ""} {
		got := Allocate(2, 5, mode)
		if got.Ratio != seq.Ratio {
			t.Errorf("mode %q: expected %+v, got %+v", mode, seq.Ratio, got.Ratio)
		}
	}
}

func TestRoleFor(t *testing.T) {
	tests := []struct {
		position int
		count    int
		want     pipeline.SlideType
	}{
		{0, 1, pipeline.SlideHook},
		{0, 2, pipeline.SlideHook},
		{1, 2, pipeline.SlideCloser},
		{0, 5, pipeline.SlideHook},
		{2, 5, pipeline.SlideStory},
		{4, 5, pipeline.SlideCloser},
	}

	for _, tt := range tests {
		if got := RoleFor(tt.position, tt.count); got != tt.want {
			t.Errorf("RoleFor(%d, %d) = %s, want %s", tt.position, tt.count, got, tt.want)
		}
	}
}

func TestValidateSlideCount(t *testing.T) {
	for _, n := range []int{1, 6, 12} {
		if err := ValidateSlideCount(n); err != nil {
			t.Errorf("ValidateSlideCount(%d) unexpected error: %v", n, err)
		}
	}
	for _, n := range []int{-1, 0, 13} {
		if err := ValidateSlideCount(n); !errors.Is(err, ErrInvalidSlideCount) {
			t.Errorf("ValidateSlideCount(%d) expected ErrInvalidSlideCount, got %v", n, err)
		}
	}
}

func TestBuildSlides(t *testing.T) {
	images := []pipeline.UploadedImage{
		{ID: "img-a", Source: "a.jpg"},
		{ID: "img-b", Source: "b.jpg"},
	}
	plan := Allocate(len(images), 4, pipeline.AllocateSequential)

	slides := BuildSlides(plan, images)
	if len(slides) != 4 {
		t.Fatalf("expected 4 slides, got %d", len(slides))
	}

	seen := map[string]bool{}
	for i, s := range slides {
		if s.Status != pipeline.StatusPending {
			t.Errorf("slide %d: expected pending, got %s", i, s.Status)
		}
		if s.ID == "" || seen[s.ID] {
			t.Errorf("slide %d: expected unique id, got %q", i, s.ID)
		}
		seen[s.ID] = true
	}

	if slides[0].ImageRef != "img-a" || slides[1].ImageRef != "img-b" {
		t.Errorf("unexpected image refs: %q %q", slides[0].ImageRef, slides[1].ImageRef)
	}
	if slides[2].ImageRef != "" || slides[2].SourceKind != pipeline.SourceTextOnly {
		t.Errorf("slide 2 should be text-only, got %+v", slides[2])
	}
	if slides[3].SlideType != pipeline.SlideCloser {
		t.Errorf("last slide should be closer, got %s", slides[3].SlideType)
	}
}

func TestStage_Execute(t *testing.T) {
	stage := NewStage(logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.AllocateInput{
		UploadedCount: 2,
		SlideCount:    3,
		Mode:          pipeline.AllocateAuto,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Plan.Ratio.Uploaded != 2 || result.Plan.Ratio.TextOnly != 1 {
		t.Errorf("unexpected ratio: %+v", result.Plan.Ratio)
	}

	_, err = stage.Execute(context.Background(), pipeline.AllocateInput{SlideCount: 0})
	if !errors.Is(err, ErrInvalidSlideCount) {
		t.Errorf("expected ErrInvalidSlideCount, got %v", err)
	}
}
