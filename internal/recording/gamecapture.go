package recording

import (
	"sync"

	"github.com/anvilforge/rig/internal/capture"
)

// FramebufferGameCapture is the production GameCaptureSource: CH does not
// hook the game process itself (that is the injected RiG DLL's job), it
// just receives frames the hook streams in over an
// internal/capture.FramebufferSource pipe named after the target process
// id, mirroring original_source/Crucible/FramebufferSource.cpp feeding
// OBS's game_capture source.
type FramebufferGameCapture struct {
	now     capture.MonotonicNow
	forward capture.FrameSink

	mu          sync.Mutex
	source      *capture.FramebufferSource
	started     bool
	lastWidth   uint32
	lastHeight  uint32
	onStart     func(width, height uint32)
	onStop      func()
}

// NewFramebufferGameCapture builds an adapter that forwards every decoded
// frame to forward (typically the encode/display pipeline) in addition to
// firing OnStartCapture once on the first frame of each capture.
func NewFramebufferGameCapture(now capture.MonotonicNow, forward capture.FrameSink) *FramebufferGameCapture {
	return &FramebufferGameCapture{now: now, forward: forward}
}

// ApplySettings (re)starts the framebuffer server under a pipe name keyed
// on the target process id, ready for the hook DLL to dial.
func (g *FramebufferGameCapture) ApplySettings(settings GameCaptureSettings) error {
	g.mu.Lock()
	old := g.source
	g.started = false
	g.mu.Unlock()

	if old != nil {
		old.Stop()
	}

	source := capture.NewFramebufferSource(int(settings.ProcessID), g.now, g.onFrame)
	source.SetOnDisconnect(g.onDisconnect)
	source.Start()

	g.mu.Lock()
	g.source = source
	g.mu.Unlock()
	return nil
}

// GetServerName returns the pipe name the hook DLL should dial, or "" when
// ApplySettings has not yet created a source; it starts no server itself
// (the source restarts its own server if that server has died).
func (g *FramebufferGameCapture) GetServerName() string {
	g.mu.Lock()
	source := g.source
	g.mu.Unlock()
	if source == nil {
		return ""
	}
	return source.GetServerName()
}

func (g *FramebufferGameCapture) OnStartCapture(fn func(width, height uint32)) {
	g.mu.Lock()
	g.onStart = fn
	g.mu.Unlock()
}

func (g *FramebufferGameCapture) OnStopCapture(fn func()) {
	g.mu.Lock()
	g.onStop = fn
	g.mu.Unlock()
}

// Stop tears down the current framebuffer server, if any.
func (g *FramebufferGameCapture) Stop() {
	g.mu.Lock()
	source := g.source
	g.source = nil
	g.mu.Unlock()
	if source != nil {
		source.Stop()
	}
}

// Name identifies this capture as a display.Source.
func (g *FramebufferGameCapture) Name() string { return "game_capture" }

// Size reports the dimensions of the most recently received frame, so a
// display.Source can be built directly over this adapter instead of a
// separate dimension-tracking type.
func (g *FramebufferGameCapture) Size() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return int(g.lastWidth), int(g.lastHeight)
}

func (g *FramebufferGameCapture) onFrame(f capture.Frame) {
	g.mu.Lock()
	first := !g.started
	g.started = true
	g.lastWidth, g.lastHeight = f.Width, f.Height
	onStart := g.onStart
	g.mu.Unlock()

	if first && onStart != nil {
		onStart(f.Width, f.Height)
	}
	if g.forward != nil {
		g.forward(f)
	}
}

func (g *FramebufferGameCapture) onDisconnect() {
	g.mu.Lock()
	g.started = false
	onStop := g.onStop
	g.mu.Unlock()
	if onStop != nil {
		onStop()
	}
}
