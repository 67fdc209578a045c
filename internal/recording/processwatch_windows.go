//go:build windows

package recording

import "golang.org/x/sys/windows"

// WaitForProcessExit blocks until the Forge process identified by pid
// exits, so cmd/capturehost can shut down cleanly once its parent is gone
// (spec.md §6's "exit when it exits" contract).
func WaitForProcessExit(pid int) error {
	h, err := windows.OpenProcess(windows.SYNCHRONIZE, false, uint32(pid))
	if err != nil {
		// Already gone, or never existed: either way there is nothing
		// left to wait on.
		return nil
	}
	defer windows.CloseHandle(h)
	_, err = windows.WaitForSingleObject(h, windows.INFINITE)
	return err
}
