package display

import "testing"

type sizedSource struct {
	width, height int
}

func (s sizedSource) Name() string    { return "sized" }
func (s sizedSource) Size() (int, int) { return s.width, s.height }

func TestSoftwareGraphicsContextRenderSourceReportsNativeSize(t *testing.T) {
	ctx := NewSoftwareGraphicsContext()
	w, h, ok := ctx.RenderSource(sizedSource{width: 640, height: 480}, 1920, 1080)
	if !ok || w != 640 || h != 480 {
		t.Fatalf("RenderSource = (%d, %d, %v), want (640, 480, true)", w, h, ok)
	}
}

func TestSoftwareGraphicsContextRenderSourceFailsForZeroSize(t *testing.T) {
	ctx := NewSoftwareGraphicsContext()
	if _, _, ok := ctx.RenderSource(sizedSource{}, 100, 100); ok {
		t.Fatal("expected RenderSource to fail for a zero-sized source")
	}
}

func TestSoftwareTexRenderAndStageSurfaceRoundTrip(t *testing.T) {
	ctx := NewSoftwareGraphicsContext()
	tr := ctx.CreateTexRender()
	defer tr.Destroy()

	if ok := tr.Begin(320, 240); !ok {
		t.Fatal("Begin should succeed for a positive size")
	}
	tr.End()

	stage := ctx.CreateStageSurface(320, 240)
	defer stage.Destroy()
	stage.Stage(tr.Texture())

	data, linesize, ok := stage.Map()
	if !ok {
		t.Fatal("Map should succeed after Stage")
	}
	if linesize != 320*4 {
		t.Fatalf("linesize = %d, want %d", linesize, 320*4)
	}
	if len(data) != 320*240*4 {
		t.Fatalf("len(data) = %d, want %d", len(data), 320*240*4)
	}
	stage.Unmap()
}

func TestSoftwareTexRenderBeginFailsForZeroDimensions(t *testing.T) {
	ctx := NewSoftwareGraphicsContext()
	tr := ctx.CreateTexRender()
	defer tr.Destroy()
	if tr.Begin(0, 0) {
		t.Fatal("Begin should fail for zero dimensions")
	}
}
