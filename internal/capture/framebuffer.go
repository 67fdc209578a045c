// Package capture implements CH's two IPC-fed video/audio sources
// (spec.md §4.11): a framebuffer server that RiG's injected hook streams
// raw frames into, and an audio-buffer server multiplexing independent
// loopback/mic streams by id.
package capture

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/anvilforge/rig/internal/ipc"
	"github.com/anvilforge/rig/internal/logging"
	"github.com/anvilforge/rig/internal/protocol"
)

var log = logging.L("capture")

// Frame is one decoded framebuffer payload: BGRA, full range, timestamped
// at host-monotonic receipt time (original_source/Crucible/FramebufferSource.cpp).
type Frame struct {
	Width       uint32
	Height      uint32
	LineSize    uint32
	Data        []byte
	TimestampNs int64
}

// FrameSink receives decoded frames as they arrive.
type FrameSink func(Frame)

// MonotonicNow returns the current host-monotonic time in nanoseconds;
// swappable in tests.
type MonotonicNow func() int64

// FramebufferSource auto-starts its own IPC server on first use (or after
// the previous one died) and exposes its current pipe name via
// GetServerName, mirroring FramebufferSource.cpp's get_server_name proc
// handler and lazy (re)start.
type FramebufferSource struct {
	now  MonotonicNow
	sink FrameSink

	mu         sync.Mutex
	server     *ipc.Server
	serverName string
	died       atomic.Bool
	onDisconnect func()

	haveMetadata bool
	pending      protocol.FramebufferInfo

	restarts int
	pid      int
}

// SetOnDisconnect registers fn to run when the connected peer drops the
// pipe; fn may be changed or cleared at any time and runs on the IPC
// server's own goroutine.
func (f *FramebufferSource) SetOnDisconnect(fn func()) {
	f.mu.Lock()
	f.onDisconnect = fn
	f.mu.Unlock()
}

// NewFramebufferSource constructs a source that has not started an IPC
// server yet; the server is created lazily on the first GetServerName or
// Start call.
func NewFramebufferSource(pid int, now MonotonicNow, sink FrameSink) *FramebufferSource {
	f := &FramebufferSource{pid: pid, now: now, sink: sink}
	f.died.Store(true)
	return f
}

// GetServerName returns the current pipe name, starting (or restarting) the
// server first if it isn't running.
func (f *FramebufferSource) GetServerName() string {
	f.mu.Lock()
	died := f.died.Load()
	f.mu.Unlock()
	if died {
		f.Start()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.serverName
}

// Start (re)starts the underlying IPC server under a fresh pipe name, the
// way CrucibleFramebufferServer::Start increments its restart counter each
// time.
func (f *FramebufferSource) Start() {
	f.mu.Lock()
	name := fmt.Sprintf("CrucibleFramebufferServer%d-%d", f.pid, f.restarts)
	f.restarts++
	f.haveMetadata = false
	f.mu.Unlock()

	server := ipc.NewServer(name, -1, f.handleMessage)
	if err := server.Start(); err != nil {
		log.Warn("framebuffer server failed to start", "pipe", name, "error", err)
		f.died.Store(true)
		return
	}

	f.mu.Lock()
	f.server = server
	f.serverName = name
	f.mu.Unlock()
	f.died.Store(false)
}

// Stop tears down the IPC server.
func (f *FramebufferSource) Stop() {
	f.mu.Lock()
	server := f.server
	f.mu.Unlock()
	if server != nil {
		server.Stop()
	}
	f.died.Store(true)
}

// handleMessage implements the two-message protocol: a FramebufferInfo
// header, then a raw payload of info.LineSize*info.Height bytes.
func (f *FramebufferSource) handleMessage(data []byte) {
	if data == nil {
		log.Warn("framebuffer server: peer disconnected")
		f.died.Store(true)
		f.mu.Lock()
		onDisconnect := f.onDisconnect
		f.mu.Unlock()
		if onDisconnect != nil {
			onDisconnect()
		}
		return
	}

	f.mu.Lock()
	haveMetadata := f.haveMetadata
	f.mu.Unlock()

	if !haveMetadata {
		info, err := protocol.DecodeFramebufferInfo(data)
		if err != nil {
			return
		}
		f.mu.Lock()
		f.pending = info
		f.haveMetadata = true
		f.mu.Unlock()
		return
	}

	f.mu.Lock()
	info := f.pending
	f.haveMetadata = false
	f.mu.Unlock()

	if uint64(len(data)) < info.PayloadSize() {
		// Short payload: drop and wait for a fresh header, matching
		// FramebufferSource.cpp resetting have_metadata on size mismatch.
		return
	}

	if f.sink == nil {
		return
	}
	f.sink(Frame{
		Width:       info.Width,
		Height:      info.Height,
		LineSize:    info.LineSize,
		Data:        data,
		TimestampNs: f.now(),
	})
}
