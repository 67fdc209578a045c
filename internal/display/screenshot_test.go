package display

import (
	"sync"
	"testing"
	"time"
)

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestScreenshotRenderStageSaveCompletesCallback(t *testing.T) {
	stage := &fakeStageSurface{mapData: []byte{9, 9, 9, 9}, mapLinesize: 4, mapOK: true}
	ctx := &fakeGraphicsContext{renderOK: true, srcW: 320, srcH: 240, stage: stage}

	var savedName string
	save := func(data []byte, width, height, linesize int, filename string) bool {
		savedName = filename
		return true
	}

	s := NewScreenshot(ctx, save)
	defer s.Stop()

	var success bool
	var gotW, gotH uint32
	done := make(chan struct{})
	s.Request(&ScreenshotRequest{
		Source:   fakeSource{name: "src", w: 320, h: 240},
		Filename: "shot.png",
		Callback: func(ok bool, w, h uint32, filename string) {
			success, gotW, gotH = ok, w, h
			close(done)
		},
	})

	// render+stage, then save, then drain — Tick models one frame each call.
	for i := 0; i < 3; i++ {
		s.Tick()
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for screenshot completion callback")
	}

	if !success {
		t.Fatal("expected success=true")
	}
	if gotW != 320 || gotH != 240 {
		t.Fatalf("got %dx%d, want 320x240 (resolved from the source's native size)", gotW, gotH)
	}
	if savedName != "shot.png" {
		t.Fatalf("savedName = %q, want shot.png", savedName)
	}
}

func TestScreenshotRequestsAreFIFOOnlyOneInFlight(t *testing.T) {
	stage := &fakeStageSurface{mapData: []byte{1, 2, 3, 4}, mapLinesize: 4, mapOK: true}
	ctx := &fakeGraphicsContext{renderOK: true, srcW: 100, srcH: 100, stage: stage}

	save := func(data []byte, width, height, linesize int, filename string) bool { return true }
	s := NewScreenshot(ctx, save)
	defer s.Stop()

	var order []string
	var mu sync.Mutex
	complete := func(name string) ScreenshotCallback {
		return func(ok bool, w, h uint32, filename string) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	s.Request(&ScreenshotRequest{Source: fakeSource{name: "a", w: 10, h: 10}, Filename: "a.png", Callback: complete("a")})
	s.Request(&ScreenshotRequest{Source: fakeSource{name: "b", w: 10, h: 10}, Filename: "b.png", Callback: complete("b")})

	if s.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", s.Pending())
	}

	waitUntil(t, 3*time.Second, func() bool {
		s.Tick()
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	if order[0] != "a" || order[1] != "b" {
		t.Fatalf("completion order = %v, want [a b]", order)
	}
}
