// Package inputhook implements the Input Hook Layer of spec.md §4.7: the
// saved cursor/raw-input state that is captured on overlay show and
// restored on overlay hide, plus the overlay-visible rewrite rules for a
// fixed set of Win32 input APIs. The real Win32 cursor and raw-input calls
// live in os_windows.go (with a no-op os_other.go off Windows); installing
// the API hooks themselves is not part of this package. This file holds
// the state machine itself so it can be exercised without a real hook in
// place.
package inputhook

import (
	"sync"

	"github.com/anvilforge/rig/internal/logging"
)

var log = logging.L("inputhook")

// Rect mirrors a Win32 RECT (left, top, right, bottom).
type Rect struct {
	Left, Top, Right, Bottom int32
}

// RawDevice mirrors one RAWINPUTDEVICE registration entry.
type RawDevice struct {
	UsagePage uint16
	Usage     uint16
	Flags     uint32
	HwndTarget uintptr
}

// Point mirrors a Win32 POINT.
type Point struct {
	X, Y int32
}

// SavedState is the cursor/raw-input saved state of spec.md §3:
// "{ saved_cursor_handle, saved_show_count, saved_clip_rect?,
// saved_raw_devices }". Lifecycle: captured on overlay show; restored on
// overlay hide; must survive nested show/hide toggles without drift.
type SavedState struct {
	CursorHandle    uintptr
	ShowCount       int
	CursorWasHidden bool // true if Show() had to call ShowCursor(true) to reveal the real cursor
	ClipRect        *Rect
	RawDevices      []RawDevice
	CursorPos       *Point // saved mouse position, set lazily on first GetCursorPos
	GameCursor      uintptr // last cursor SetCursor was asked to install by the game
	OverlayCursor   uintptr // cursor to show while the overlay is visible, set via set_cursor
}

// realOS is the seam to the actual Win32 calls (os_windows.go); a
// non-Windows build gets a no-op implementation (os_other.go) so the
// state machine itself is fully portable and testable.
type realOS interface {
	GetCursorInfo() (visible bool, handle uintptr, err error)
	ShowCursor(show bool) int
	GetClipCursor() (Rect, error)
	ClipCursor(rect *Rect) error
	SetCursor(handle uintptr) uintptr
	RegisterRawInputDevices(devices []RawDevice) error
}

// Hook holds the saved state and tracks whether the overlay is currently
// visible. All methods are safe for concurrent use; the hook table itself
// is process-global in the original design, represented here as one
// instance the caller owns for the process's lifetime.
type Hook struct {
	mu sync.Mutex
	os realOS

	visible bool
	saved   SavedState

	quickSelectRetain map[int]bool // VKs to keep live in GetKeyboardState/GetAsyncKeyState during overlay-visible suppression
}

// New creates a Hook bound to the given OS seam (nil uses the
// platform-default implementation).
func New(os realOS) *Hook {
	if os == nil {
		os = newDefaultOS()
	}
	return &Hook{os: os, quickSelectRetain: make(map[int]bool)}
}

// SetQuickSelectRetainedKeys replaces the set of virtual-key codes that
// remain visible through GetKeyboardState/GetAsyncKeyState while the
// overlay suppresses input (the Cancel/Select roles need their keys live
// during quick-select, per spec.md §4.12).
func (h *Hook) SetQuickSelectRetainedKeys(vks []int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.quickSelectRetain = make(map[int]bool, len(vks))
	for _, vk := range vks {
		h.quickSelectRetain[vk] = true
	}
}

// Show captures saved state and installs the overlay's input rewrites.
// Idempotent: a second Show() while already visible is a no-op, so
// nested show/hide toggles cannot drift the saved state (spec.md §8
// invariant #7, "overlay cursor symmetry").
func (h *Hook) Show(overlayCursor uintptr) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.visible {
		return nil
	}

	visible, handle, err := h.os.GetCursorInfo()
	if err != nil {
		return err
	}
	h.saved.CursorHandle = handle

	count := 0
	h.saved.CursorWasHidden = !visible
	if h.saved.CursorWasHidden {
		for i := 0; i < 3; i++ {
			count = h.os.ShowCursor(true)
			if count >= 0 {
				break
			}
		}
	}
	h.saved.ShowCount = count

	rect, err := h.os.GetClipCursor()
	if err != nil {
		return err
	}
	h.saved.ClipRect = &rect
	if err := h.os.ClipCursor(nil); err != nil {
		return err
	}

	h.saved.GameCursor = h.os.SetCursor(overlayCursor)
	h.saved.OverlayCursor = overlayCursor
	h.visible = true
	log.Debug("overlay shown, input state saved")
	return nil
}

// Hide restores every item captured by Show, in reverse order. A no-op if
// not currently visible.
func (h *Hook) Hide() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.visible {
		return nil
	}

	h.os.SetCursor(h.saved.GameCursor)

	if h.saved.ClipRect != nil {
		if err := h.os.ClipCursor(h.saved.ClipRect); err != nil {
			return err
		}
	}

	if h.saved.CursorWasHidden {
		h.os.ShowCursor(false)
	}

	if len(h.saved.RawDevices) > 0 {
		if err := h.os.RegisterRawInputDevices(h.saved.RawDevices); err != nil {
			return err
		}
	}

	h.saved = SavedState{}
	h.saved.CursorPos = nil
	h.visible = false
	log.Debug("overlay hidden, input state restored")
	return nil
}

// Visible reports whether the overlay's input rewrites are currently
// active.
func (h *Hook) Visible() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.visible
}

// GetCursorPos implements the overlay-visible rewrite: the first call
// after Show records the real position; every subsequent call returns
// that saved position unchanged, regardless of real mouse movement.
func (h *Hook) GetCursorPos(real Point) Point {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.visible {
		return real
	}
	if h.saved.CursorPos == nil {
		p := real
		h.saved.CursorPos = &p
	}
	return *h.saved.CursorPos
}

// SetCursorPos updates the saved position without moving the real cursor,
// while the overlay is visible.
func (h *Hook) SetCursorPos(p Point) (handledByOverlay bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.visible {
		return false
	}
	h.saved.CursorPos = &p
	return true
}

// GetClipCursorState returns the saved clip rect while visible, falling
// back to primaryMonitor when no rect has been saved yet.
func (h *Hook) GetClipCursorState(primaryMonitor Rect) Rect {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.saved.ClipRect != nil {
		return *h.saved.ClipRect
	}
	return primaryMonitor
}

// ClipCursor records rect (or clears it for a nil rect) without making the
// real OS call, while the overlay is visible.
func (h *Hook) ClipCursor(rect *Rect) (handledByOverlay bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.visible {
		return false
	}
	h.saved.ClipRect = rect
	return true
}

// MaskPressedBits zeroes every bit in state except those for retained
// quick-select keys, implementing the GetKeyboardState/GetAsyncKeyState
// overlay-visible rewrite. state is a 256-entry pressed-bit array indexed
// by virtual-key code (matching Win32's GetKeyboardState layout).
func (h *Hook) MaskPressedBits(state []byte) []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.visible {
		return state
	}
	out := make([]byte, len(state))
	for vk, pressed := range state {
		if h.quickSelectRetain[vk] {
			out[vk] = pressed
		}
	}
	return out
}

// RegisterRawInputDevices applies a registration request to the saved
// device list only, while the overlay is visible (the saved list is the
// source of truth during that time); returns false (caller should make
// the real call) when not visible.
func (h *Hook) RegisterRawInputDevices(devices []RawDevice) (handledByOverlay bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.visible {
		return false
	}
	h.saved.RawDevices = append([]RawDevice(nil), devices...)
	return true
}

// GetRegisteredRawInputDevices returns the saved device list while
// visible.
func (h *Hook) GetRegisteredRawInputDevices() (devices []RawDevice, handledByOverlay bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.visible {
		return nil, false
	}
	return append([]RawDevice(nil), h.saved.RawDevices...), true
}

// GetCursor returns the game's last requested cursor (set via SetCursor
// while visible).
func (h *Hook) GetCursor() uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.saved.GameCursor
}

// SetCursor saves the game's requested cursor while the overlay is
// visible, returning the previously-saved one (the real SetCursor
// return-value contract); while hidden it is a pass-through signal to
// the caller (handledByOverlay=false).
func (h *Hook) SetCursor(handle uintptr) (previous uintptr, handledByOverlay bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.visible {
		return 0, false
	}
	previous = h.saved.GameCursor
	h.saved.GameCursor = handle
	return previous, true
}

// ShowCursor consumes the call internally via an overlay-local counter
// without touching the real cursor visibility, while visible.
func (h *Hook) ShowCursor(show bool) (count int, handledByOverlay bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.visible {
		return 0, false
	}
	if show {
		h.saved.ShowCount++
	} else {
		h.saved.ShowCount--
	}
	return h.saved.ShowCount, true
}

// SetCursorPosResult is the fixed return value for Hook_SetCursorPos: the
// source returns true regardless of whether the overlay suppressed the
// real OS call (spec.md §9 open question (i), kept as-is).
const SetCursorPosResult = true
