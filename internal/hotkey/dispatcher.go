package hotkey

import "sync"

// Channel is an overlay channel name, used by the Overlay/Stream immediate
// toggle roles (spec.md §4.8).
type Channel string

const (
	ChannelHighlighter  Channel = "highlighter"
	ChannelStreaming    Channel = "streaming"
	ChannelNotifications Channel = "notifications"
)

// Handlers are the side effects the Dispatcher drives. Overlay/Stream
// toggle immediately; the rest emit a Forge event on their firing edge.
type Handlers struct {
	ToggleOverlay func()
	ToggleStream  func()

	OnScreenshot        func()
	OnBookmark          func()
	OnStartStopStream   func()
	OnQuickClip         func()
	OnQuickForwardClip  func()
	OnPTTPress          func()
	OnPTTRelease        func()

	// OnCancel/OnSelect only fire while quick-select is active.
	OnCancel func()
	OnSelect func()
}

// quickSelectGate reports whether quick-select is currently active. While
// active, only Cancel and Select roles fire (spec.md §4.12, §8 invariant
// #10); all other keys are suppressed by the caller before reaching the
// dispatcher, but Dispatcher also enforces it directly as a second line of
// defense.
type quickSelectGate interface {
	Active() bool
}

// Dispatcher converts raw (vk, modifier mask, pressed) transitions into
// role events. Every role fires on the press edge except PTT, which also
// fires a matching release edge (to stop transmitting). Holding a key
// never re-fires.
type Dispatcher struct {
	table    *Table
	handlers Handlers
	gate     quickSelectGate

	mu      sync.Mutex
	pressed map[Role]bool // per-role, not per-VK: distinct roles may share a VK
}

// NewDispatcher creates a dispatcher bound to table and handlers. gate may
// be nil if quick-select is not wired up (all roles always live).
func NewDispatcher(table *Table, handlers Handlers, gate quickSelectGate) *Dispatcher {
	return &Dispatcher{
		table:    table,
		handlers: handlers,
		gate:     gate,
		pressed:  make(map[Role]bool),
	}
}

// HandleKey processes one raw key transition. down is true on key-down,
// false on key-up. mask is the modifier mask held at the time of this
// transition (not including the key itself, if it is itself a modifier).
func (d *Dispatcher) HandleKey(vk int, mask Modifier, down bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	role, ok := d.table.MatchingRole(vk, mask)
	if !ok {
		return
	}

	selecting := d.gate != nil && d.gate.Active()
	if selecting && role != RoleCancel && role != RoleSelect {
		return // suppressed during quick-select (§4.12, invariant #10)
	}
	if !selecting && (role == RoleCancel || role == RoleSelect) {
		return // only meaningful while quick-select is active
	}

	wasPressed := d.pressed[role]
	if down == wasPressed {
		return // holding a key must not re-fire
	}
	d.pressed[role] = down

	d.fire(role, down)
}

func (d *Dispatcher) fire(role Role, down bool) {
	switch role {
	case RoleOverlay:
		if down {
			call(d.handlers.ToggleOverlay)
		}
	case RoleStream:
		if down {
			call(d.handlers.ToggleStream)
		}
	case RoleScreenshot:
		if down {
			call(d.handlers.OnScreenshot)
		}
	case RoleBookmark:
		if down {
			call(d.handlers.OnBookmark)
		}
	case RoleStartStopStream:
		if down {
			call(d.handlers.OnStartStopStream)
		}
	case RoleQuickClip:
		if down {
			call(d.handlers.OnQuickClip)
		}
	case RoleQuickForwardClip:
		if down {
			call(d.handlers.OnQuickForwardClip)
		}
	case RolePTT:
		if down {
			call(d.handlers.OnPTTPress)
		} else {
			call(d.handlers.OnPTTRelease)
		}
	case RoleCancel:
		if down {
			call(d.handlers.OnCancel)
		}
	case RoleSelect:
		if down {
			call(d.handlers.OnSelect)
		}
	}
}

func call(f func()) {
	if f != nil {
		f()
	}
}
