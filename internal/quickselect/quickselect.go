// Package quickselect implements the Quick-Select timer/gesture state
// machine of spec.md §4.12: a middle-mouse-button gesture armed by a
// time-boxed timeout window and entered by a middle-click within it.
package quickselect

import (
	"sync"
	"time"
)

// Gate is the minimal surface the hotkey dispatcher needs: whether
// quick-select is currently active (§8 invariant #10).
type Gate interface {
	Active() bool
}

// Timer is the quick-select timer/state machine: { deadline, active }.
// Arming starts a deadline; a middle-click before the deadline transitions
// to selecting. Clearing active always clears cursor suppression for the
// role that owns it (the caller is responsible for that side effect via
// the onExit hook passed to New).
type Timer struct {
	mu       sync.Mutex
	deadline time.Time
	armed    bool
	active   bool

	nowFunc func() time.Time // injectable for tests

	onEnter func() // called when entering selection mode
	onExit  func() // called when leaving selection mode (cancel, select, or timeout)
}

// New creates an unarmed, inactive timer. onEnter/onExit may be nil.
func New(onEnter, onExit func()) *Timer {
	return &Timer{
		nowFunc: time.Now,
		onEnter: onEnter,
		onExit:  onExit,
	}
}

// Start arms the timer: a middle-click within ms milliseconds from now
// transitions to selecting (spec.md: "StartQuickSelectTimeout(ms)").
func (t *Timer) Start(ms int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.armed = true
	t.deadline = t.nowFunc().Add(time.Duration(ms) * time.Millisecond)
}

// MiddleClick reports a middle-mouse-button press. If the timer is armed
// and the deadline has not passed, transitions to selecting and returns
// true. Otherwise it is a no-op and returns false. The arming window is
// consumed by any middle-click attempt, successful or not.
func (t *Timer) MiddleClick() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.armed {
		return false
	}
	armed := t.nowFunc().Before(t.deadline)
	t.armed = false
	if !armed {
		return false
	}
	if t.active {
		return true // already selecting; nothing to re-enter
	}
	t.active = true
	if t.onEnter != nil {
		t.onEnter()
	}
	return true
}

// End leaves selection mode, whether via Cancel, Select, or an external
// reason (Forge disconnect, RiG restart). Always clears cursor suppression
// for the owning role. A no-op if not currently active.
func (t *Timer) End() {
	t.mu.Lock()
	wasActive := t.active
	t.active = false
	t.armed = false
	t.mu.Unlock()

	if wasActive && t.onExit != nil {
		t.onExit()
	}
}

// Active reports whether quick-select is currently in selecting mode.
// Implements the Gate interface consumed by internal/hotkey.Dispatcher.
func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}
