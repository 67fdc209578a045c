package display

import "testing"

func TestAspectFitWiderDisplayLetterboxesSides(t *testing.T) {
	// 1920x1080 draw target, 4:3 source: pillarboxed left/right.
	x, y, w, h, scale := AspectFit(1920, 1080, 1024, 768)
	if w >= 1920 {
		t.Fatalf("width = %d, want < 1920 (pillarboxed)", w)
	}
	if h != 1080 {
		t.Fatalf("height = %d, want 1080 (full height)", h)
	}
	if x <= 0 {
		t.Fatalf("x = %d, want > 0 (centered with side bars)", x)
	}
	if y != 0 {
		t.Fatalf("y = %d, want 0", y)
	}
	if scale <= 0 {
		t.Fatalf("scale = %f, want > 0", scale)
	}
}

func TestAspectFitTallerDisplayLetterboxesTopBottom(t *testing.T) {
	// narrow draw target, wide source: letterboxed top/bottom.
	x, y, w, h, _ := AspectFit(800, 1600, 1920, 1080)
	if h >= 1600 {
		t.Fatalf("height = %d, want < 1600 (letterboxed)", h)
	}
	if w != 800 {
		t.Fatalf("width = %d, want 800 (full width)", w)
	}
	if y <= 0 {
		t.Fatalf("y = %d, want > 0 (centered with top/bottom bars)", y)
	}
	if x != 0 {
		t.Fatalf("x = %d, want 0", x)
	}
}

func TestAspectFitZeroDimensionIsSafe(t *testing.T) {
	x, y, w, h, scale := AspectFit(0, 1080, 1920, 1080)
	if x != 0 || y != 0 || w != 0 || h != 0 || scale != 0 {
		t.Fatalf("got x=%d y=%d w=%d h=%d scale=%f, want all zero", x, y, w, h, scale)
	}
}
