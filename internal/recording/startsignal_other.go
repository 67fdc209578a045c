//go:build !windows

package recording

// SignalStartEvent is a no-op off Windows: the start-event handle is a
// Win32 concept with no POSIX analogue, so non-Windows builds just log
// that initialization is complete instead of signaling anything (the
// same cgo/no-cgo split internal/capture uses for its pcap host probe).
func SignalStartEvent(handle uintptr) error {
	log.Info("recording: start event signaling is a no-op on this platform", "handle", handle)
	return nil
}
