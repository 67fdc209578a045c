package ipc

import "fmt"

// Pipe name conventions from spec.md §6.

// CommandPipeName is RiG's Command Server pipe name for the given process ID.
func CommandPipeName(pid int) string {
	return fmt.Sprintf("AnvilRenderer%d", pid)
}

// FramebufferPipeName is one overlay channel's Framebuffer Server pipe name.
// seq increments every time the server restarts (spec.md §6).
func FramebufferPipeName(pid int, seq int) string {
	return fmt.Sprintf("AnvilFramebufferServer%d-%d", pid, seq)
}

// CapturePipeName is the Capture Host's control-pipe name.
const CapturePipeName = "ForgeCrucible"
