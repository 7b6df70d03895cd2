package ui

import (
	"strings"
	"testing"

	"github.com/desertthunder/crate/internal/models"
)

func TestRenderError(t *testing.T) {
	out := RenderError("no playlist id given")

	if !strings.Contains(out, "no playlist id given") {
		t.Errorf("expected the message in the output, got %q", out)
	}
	if !strings.Contains(out, "✗") {
		t.Errorf("expected the failure marker in the output, got %q", out)
	}
}

func TestRenderOK(t *testing.T) {
	out := RenderOK("exported")

	if !strings.Contains(out, "exported") || !strings.Contains(out, "✓") {
		t.Errorf("expected a marked success message, got %q", out)
	}
}

func TestRenderMerge(t *testing.T) {
	report := &models.MergeReport{
		PlaylistA:         models.MergeSide{ID: "a1", Tracks: 2},
		PlaylistB:         models.MergeSide{ID: "b1", Tracks: 2},
		UnionCount:        3,
		IntersectionCount: 1,
		WouldAddFromBToA:  1,
	}

	out := RenderMerge(report)
	for _, want := range []string{"Union: 3", "Intersection: 1", "a1", "b1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in merge output, got %q", want, out)
		}
	}
}
