package rig

import (
	"sync"

	"github.com/anvilforge/rig/internal/ipc"
)

// ResetTarget receives the Restart Coordinator's atomic reset steps
// (spec.md §4.2): reset indicator to NONE, zero the hotkey table, hide
// any visible overlay, reset cursor to the default arrow. A concrete RiG
// process implements this directly against its indicator.Current,
// hotkey.Table, and overlay/cursor state.
type ResetTarget interface {
	ResetIndicatorToNone()
	ZeroHotkeyTable()
	HideOverlay()
	ResetCursorToDefault()
}

// CommandServer owns the Command pipe and the Restart Coordinator: it
// accepts JSON command frames (dispatched via Dispatcher) and, on
// disconnect, performs the fixed reset sequence before reopening the pipe
// under the same name (spec.md §4.2).
type CommandServer struct {
	pipe       *ipc.Server
	dispatcher *Dispatcher
	reset      ResetTarget

	mu       sync.Mutex
	started  bool
	restarts int
}

// NewCommandServer creates a Command Server bound to pipeName, dispatching
// decoded commands through dispatcher and running reset's steps on every
// disconnect.
func NewCommandServer(pipeName string, dispatcher *Dispatcher, reset ResetTarget) *CommandServer {
	cs := &CommandServer{dispatcher: dispatcher, reset: reset}
	cs.pipe = ipc.NewServer(pipeName, -1, cs.onMessage)
	return cs
}

// Start begins listening. Emits a startup log line (spec.md §4.2:
// "Startup, disconnect, and successful restart each emit a log line").
func (cs *CommandServer) Start() error {
	cs.mu.Lock()
	cs.started = true
	cs.mu.Unlock()

	if err := cs.pipe.Start(); err != nil {
		return err
	}
	log.Info("command server started")
	return nil
}

// Stop tears down the pipe permanently (process shutdown, not a restart).
func (cs *CommandServer) Stop() {
	cs.pipe.Stop()
}

// Restarts reports how many times the Restart Coordinator has fired, for
// tests and diagnostics.
func (cs *CommandServer) Restarts() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.restarts
}

func (cs *CommandServer) onMessage(data []byte) {
	if data == nil {
		cs.onDisconnect()
		return
	}
	cs.dispatcher.Handle(data)
}

// onDisconnect runs the Restart Coordinator's fixed reset sequence, then
// reopens the pipe under the same name (spec.md §4.2, steps 1-5). Restart
// is idempotent: ResetTarget's steps are all themselves idempotent
// (setting NONE twice, zeroing an already-zero table, hiding an
// already-hidden overlay, and resetting an already-default cursor are all
// no-ops), so calling onDisconnect twice in a row is safe.
func (cs *CommandServer) onDisconnect() {
	log.Warn("command pipe disconnected, restarting")

	cs.reset.ResetIndicatorToNone()
	cs.reset.ZeroHotkeyTable()
	cs.reset.HideOverlay()
	cs.reset.ResetCursorToDefault()

	if err := cs.pipe.Restart(); err != nil {
		log.Error("command pipe restart failed", "error", err)
		return
	}

	cs.mu.Lock()
	cs.restarts++
	cs.mu.Unlock()
	log.Info("command pipe restarted")
}
