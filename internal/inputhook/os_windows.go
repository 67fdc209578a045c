//go:build windows

package inputhook

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// winOS implements realOS against the real Win32 APIs via
// golang.org/x/sys/windows, the same syscall-binding style the teacher
// uses for its own privileged Windows calls.
type winOS struct {
	user32 *windows.LazyDLL

	procGetCursorInfo       *windows.LazyProc
	procShowCursor          *windows.LazyProc
	procGetClipCursor       *windows.LazyProc
	procClipCursor          *windows.LazyProc
	procSetCursor           *windows.LazyProc
	procRegisterRawInputDev *windows.LazyProc
}

func newDefaultOS() realOS {
	user32 := windows.NewLazySystemDLL("user32.dll")
	return &winOS{
		user32:                  user32,
		procGetCursorInfo:       user32.NewProc("GetCursorInfo"),
		procShowCursor:          user32.NewProc("ShowCursor"),
		procGetClipCursor:       user32.NewProc("GetClipCursor"),
		procClipCursor:          user32.NewProc("ClipCursor"),
		procSetCursor:           user32.NewProc("SetCursor"),
		procRegisterRawInputDev: user32.NewProc("RegisterRawInputDevices"),
	}
}

// cursorInfo mirrors Win32's CURSORINFO.
type cursorInfo struct {
	cbSize      uint32
	flags       uint32
	hCursor     uintptr
	ptScreenPos Point
}

const cursorShowing = 0x00000001

func (w *winOS) GetCursorInfo() (visible bool, handle uintptr, err error) {
	var ci cursorInfo
	ci.cbSize = uint32(unsafe.Sizeof(ci))
	ret, _, callErr := w.procGetCursorInfo.Call(uintptr(unsafe.Pointer(&ci)))
	if ret == 0 {
		return false, 0, callErr
	}
	return ci.flags&cursorShowing != 0, ci.hCursor, nil
}

func (w *winOS) ShowCursor(show bool) int {
	var arg uintptr
	if show {
		arg = 1
	}
	ret, _, _ := w.procShowCursor.Call(arg)
	return int(int32(ret))
}

func (w *winOS) GetClipCursor() (Rect, error) {
	var r Rect
	ret, _, err := w.procGetClipCursor.Call(uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return Rect{}, err
	}
	return r, nil
}

func (w *winOS) ClipCursor(rect *Rect) error {
	var arg uintptr
	if rect != nil {
		arg = uintptr(unsafe.Pointer(rect))
	}
	ret, _, err := w.procClipCursor.Call(arg)
	if ret == 0 {
		return err
	}
	return nil
}

func (w *winOS) SetCursor(handle uintptr) uintptr {
	ret, _, _ := w.procSetCursor.Call(handle)
	return ret
}

func (w *winOS) RegisterRawInputDevices(devices []RawDevice) error {
	if len(devices) == 0 {
		return nil
	}
	ret, _, err := w.procRegisterRawInputDev.Call(uintptr(unsafe.Pointer(&devices[0])), uintptr(len(devices)), unsafe.Sizeof(devices[0]))
	if ret == 0 {
		return err
	}
	return nil
}
