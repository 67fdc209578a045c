//go:build !windows

package inputhook

// noopOS is the off-Windows realOS: the RiG DLL only ever loads into a
// Windows game process, so this exists purely so the state machine in
// state.go builds and is testable on the development platform.
type noopOS struct {
	cursorVisible bool
	clipRect      Rect
	cursor        uintptr
}

func newDefaultOS() realOS {
	return &noopOS{cursorVisible: true}
}

func (o *noopOS) GetCursorInfo() (visible bool, handle uintptr, err error) {
	return o.cursorVisible, o.cursor, nil
}

func (o *noopOS) ShowCursor(show bool) int {
	o.cursorVisible = show
	return 0
}

func (o *noopOS) GetClipCursor() (Rect, error) {
	return o.clipRect, nil
}

func (o *noopOS) ClipCursor(rect *Rect) error {
	if rect == nil {
		o.clipRect = Rect{}
		return nil
	}
	o.clipRect = *rect
	return nil
}

func (o *noopOS) SetCursor(handle uintptr) uintptr {
	prev := o.cursor
	o.cursor = handle
	return prev
}

func (o *noopOS) RegisterRawInputDevices(devices []RawDevice) error {
	return nil
}
