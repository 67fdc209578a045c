//go:build windows

package recording

import "golang.org/x/sys/windows"

// SignalStartEvent sets the Win32 event whose handle Forge created and
// passed on the command line, telling Forge that CH finished
// initializing (spec.md §6's `<start_event_handle>` argument).
func SignalStartEvent(handle uintptr) error {
	h := windows.Handle(handle)
	return windows.SetEvent(h)
}
