package rig

import (
	"sync"

	"github.com/anvilforge/rig/internal/ipc"
	"github.com/anvilforge/rig/internal/overlay"
	"github.com/anvilforge/rig/internal/protocol"
)

// FramebufferServer receives (info-header, payload) pairs for one overlay
// channel and converts them into overlay.Frame values buffered into the
// channel's rotator (spec.md §4.4). It auto-starts its IPC server on
// first use, matching the FramebufferSource's "auto-starts its IPC server
// if not running" contract reused on the consuming side.
type FramebufferServer struct {
	mu       sync.Mutex
	channel  overlay.Channel
	pipe     *ipc.Server
	composer *overlay.Composer
	started  bool

	pendingInfo *protocol.FramebufferInfo
}

// NewFramebufferServer creates (but does not start) a server for channel,
// feeding decoded frames into composer.
func NewFramebufferServer(pipeName string, channel overlay.Channel, composer *overlay.Composer) *FramebufferServer {
	fs := &FramebufferServer{channel: channel, composer: composer}
	fs.pipe = ipc.NewServer(pipeName, -1, fs.onMessage)
	return fs
}

// Start auto-starts the underlying pipe if it is not already running.
func (fs *FramebufferServer) Start() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.started {
		return nil
	}
	if err := fs.pipe.Start(); err != nil {
		return err
	}
	fs.started = true
	return nil
}

// Stop tears down the pipe.
func (fs *FramebufferServer) Stop() {
	fs.pipe.Stop()
	fs.mu.Lock()
	fs.started = false
	fs.mu.Unlock()
}

// onMessage implements the alternating info-header/payload protocol: the
// first message on a pair is always a FramebufferInfo header; the second
// is the raw BGRA payload. A disconnect (data==nil) just clears any
// half-received header so the next pair starts clean.
func (fs *FramebufferServer) onMessage(data []byte) {
	if data == nil {
		fs.mu.Lock()
		fs.pendingInfo = nil
		fs.mu.Unlock()
		return
	}

	fs.mu.Lock()
	pending := fs.pendingInfo
	fs.mu.Unlock()

	if pending == nil {
		info, err := protocol.DecodeFramebufferInfo(data)
		if err != nil {
			log.Warn("framebuffer: expected info header", "channel", fs.channel, "error", err)
			return
		}
		fs.mu.Lock()
		fs.pendingInfo = &info
		fs.mu.Unlock()
		return
	}

	fs.mu.Lock()
	fs.pendingInfo = nil
	fs.mu.Unlock()

	expected := pending.PayloadSize()
	if uint64(len(data)) != expected {
		// spec.md §8 scenario E: a size mismatch leaves the channel blank
		// for this frame; the next correctly-sized pair succeeds.
		log.Warn("framebuffer: payload size mismatch, dropping frame",
			"channel", fs.channel, "expected", expected, "got", len(data))
		return
	}

	frame := overlay.Frame{
		Width:  int(pending.Width),
		Height: int(pending.Height),
		Pixels: data,
	}
	fs.composer.Buffer(fs.channel, frame)
}
