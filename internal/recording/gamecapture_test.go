package recording

import (
	"testing"

	"github.com/anvilforge/rig/internal/capture"
)

func TestFramebufferGameCaptureFiresOnStartOnlyOnFirstFrame(t *testing.T) {
	var starts int
	var forwarded []capture.Frame
	g := NewFramebufferGameCapture(func() int64 { return 0 }, func(f capture.Frame) {
		forwarded = append(forwarded, f)
	})
	g.OnStartCapture(func(width, height uint32) { starts++ })

	g.onFrame(capture.Frame{Width: 1920, Height: 1080})
	g.onFrame(capture.Frame{Width: 1920, Height: 1080})

	if starts != 1 {
		t.Fatalf("starts = %d, want 1", starts)
	}
	if len(forwarded) != 2 {
		t.Fatalf("forwarded = %d frames, want 2", len(forwarded))
	}
}

func TestFramebufferGameCaptureOnDisconnectFiresOnStopAndResetsStart(t *testing.T) {
	var stops int
	var starts int
	g := NewFramebufferGameCapture(func() int64 { return 0 }, nil)
	g.OnStartCapture(func(width, height uint32) { starts++ })
	g.OnStopCapture(func() { stops++ })

	g.onFrame(capture.Frame{Width: 640, Height: 480})
	g.onDisconnect()
	g.onFrame(capture.Frame{Width: 640, Height: 480})

	if stops != 1 {
		t.Fatalf("stops = %d, want 1", stops)
	}
	if starts != 2 {
		t.Fatalf("starts = %d, want 2 (restarted after disconnect)", starts)
	}
}

func TestFramebufferGameCaptureApplySettingsStartsServerAndGetServerNameIsStable(t *testing.T) {
	g := NewFramebufferGameCapture(func() int64 { return 0 }, nil)
	if err := g.ApplySettings(GameCaptureSettings{ProcessID: 4242}); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	defer g.Stop()

	name := g.GetServerName()
	if name == "" {
		t.Fatal("expected a non-empty pipe name after ApplySettings")
	}
	if again := g.GetServerName(); again != name {
		t.Fatalf("GetServerName changed on repeated call: %q vs %q", name, again)
	}
}
