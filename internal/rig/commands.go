// Package rig implements the RiG-side Command Server, Restart Coordinator,
// Forge Event Channel, and per-channel Framebuffer Servers of spec.md
// §4.2–§4.4: the glue binding internal/ipc's pipes to the indicator,
// hotkey, overlay, and rotator packages.
package rig

import (
	"sync"

	"github.com/anvilforge/rig/internal/hotkey"
	"github.com/anvilforge/rig/internal/logging"
	"github.com/anvilforge/rig/internal/protocol"
)

var log = logging.L("rig")

// roleByWire maps an update_settings wire role name to a hotkey.Role.
var roleByWire = map[string]hotkey.Role{
	"bookmark":            hotkey.RoleBookmark,
	"overlay":             hotkey.RoleOverlay,
	"screenshot":          hotkey.RoleScreenshot,
	"stream":              hotkey.RoleStream,
	"start_stop_stream":   hotkey.RoleStartStopStream,
	"ptt":                 hotkey.RolePTT,
	"quick_clip":          hotkey.RoleQuickClip,
	"quick_forward_clip":  hotkey.RoleQuickForwardClip,
	"cancel":              hotkey.RoleCancel,
	"select":              hotkey.RoleSelect,
}

// OverlayController is the subset of overlay/indicator/cursor state the
// Command Dispatcher mutates. A concrete RiG process wires its real
// indicator.Current, hotkey.Table, input hook and overlay visibility
// through this interface.
type OverlayController interface {
	SetIndicator(kind protocol.IndicatorKind)
	SetNativeIndicatorsDisabled(disabled bool)
	SetHotkeyTable(bindings map[hotkey.Role]struct {
		VK        int
		Whitelist hotkey.Modifier
	})
	SetCursor(cursorID int)
	DismissOverlay(channel string)
	UpdateForwardBufferCaption(caption string)
	AttachForgeEventPipe(name string)
}

// Dispatcher applies parsed commands to an OverlayController. Malformed
// JSON and unknown commands are logged and ignored (see Handle).
type Dispatcher struct {
	mu         sync.Mutex
	controller OverlayController
}

// NewDispatcher binds a Dispatcher to controller.
func NewDispatcher(controller OverlayController) *Dispatcher {
	return &Dispatcher{controller: controller}
}

// Handle decodes and applies one raw command message. Malformed JSON and
// unknown command names are logged and otherwise ignored (spec.md §4.2).
func (d *Dispatcher) Handle(raw []byte) {
	cmd, err := protocol.ParseCommand(raw)
	if err != nil {
		log.Warn("malformed command", "error", err)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch cmd.Command {
	case protocol.CmdIndicator:
		kind, ok := protocol.IndicatorByName(cmd.Name)
		if !ok {
			log.Warn("unknown indicator name", "name", cmd.Name)
			return
		}
		d.controller.SetIndicator(kind)

	case protocol.CmdDisableNativeIndicators:
		disabled := cmd.Disabled != nil && *cmd.Disabled
		d.controller.SetNativeIndicatorsDisabled(disabled)

	case protocol.CmdForgeInfo:
		d.controller.AttachForgeEventPipe(cmd.EventPipeName)

	case protocol.CmdUpdateSettings:
		bindings := make(map[hotkey.Role]struct {
			VK        int
			Whitelist hotkey.Modifier
		}, len(cmd.Hotkeys))
		for _, b := range cmd.Hotkeys {
			role, ok := roleByWire[b.Role]
			if !ok {
				log.Warn("unknown hotkey role", "role", b.Role)
				continue
			}
			var whitelist hotkey.Modifier
			if b.Ctrl {
				whitelist |= hotkey.ModCtrl
			}
			if b.Shift {
				whitelist |= hotkey.ModShift
			}
			if b.Alt {
				whitelist |= hotkey.ModAlt
			}
			if b.Meta {
				whitelist |= hotkey.ModMeta
			}
			bindings[role] = struct {
				VK        int
				Whitelist hotkey.Modifier
			}{VK: b.VK, Whitelist: whitelist}
		}
		d.controller.SetHotkeyTable(bindings)

	case protocol.CmdSetCursor:
		d.controller.SetCursor(cmd.CursorID)

	case protocol.CmdDismissOverlay:
		d.controller.DismissOverlay(cmd.Channel)

	case protocol.CmdStreamStatus:
		// Reserved/no-op placeholder (spec.md §9 open question (ii)):
		// preserved in the command table for forward compatibility.

	case protocol.CmdUpdateForwardBufferLabel:
		d.controller.UpdateForwardBufferCaption(cmd.Caption)

	default:
		log.Warn("unknown command", "command", cmd.Command)
	}
}

// indicatorNoneSentinel documents the Restart Coordinator's reset target
// (ResetTarget.ResetIndicatorToNone) as a named value; nothing in the
// package refers to it.
const indicatorNoneSentinel = protocol.IndicatorNone
