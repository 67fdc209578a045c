// Package protocol defines the JSON wire contracts exchanged between RiG,
// Forge and the Capture Host over the pipes in internal/ipc: command
// envelopes (Forge -> RiG), event envelopes (RiG -> Forge, CH -> Forge),
// the framebuffer info header, and the audio packet header. See spec.md
// §3 and §6.
package protocol

import "encoding/json"

// Command names accepted by RiG's Command Server (spec.md §4.2).
const (
	CmdIndicator                = "indicator"
	CmdDisableNativeIndicators  = "disable_native_indicators"
	CmdForgeInfo                = "forge_info"
	CmdUpdateSettings           = "update_settings"
	CmdSetCursor                = "set_cursor"
	CmdDismissOverlay           = "dismiss_overlay"
	CmdStreamStatus             = "stream_status"
	CmdUpdateForwardBufferLabel = "update_forward_buffer_indicator"
	CmdGameCaptureInfo          = "game_capture_info"
)

// Command is one JSON command frame: {"command": "<name>", ...}. All
// fields besides Command are optional; unused ones are zero.
type Command struct {
	Command string `json:"command"`

	// indicator
	Name string `json:"name,omitempty"`

	// disable_native_indicators
	Disabled *bool `json:"disabled,omitempty"`

	// forge_info
	EventPipeName string `json:"eventPipeName,omitempty"`

	// update_settings
	Hotkeys []HotkeyBinding `json:"hotkeys,omitempty"`

	// set_cursor
	CursorID int `json:"cursorId,omitempty"`

	// dismiss_overlay
	Channel string `json:"channel,omitempty"`

	// update_forward_buffer_indicator
	Caption string `json:"caption,omitempty"`

	// game_capture_info: the pipe name the hook DLL's FramebufferSource
	// should dial to stream frames into CH (spec.md §4.9's get_server_name).
	ServerPipeName string `json:"serverPipeName,omitempty"`
}

// HotkeyBinding is the wire shape of one hotkey table slot in an
// update_settings command.
type HotkeyBinding struct {
	Role      string `json:"role"`
	VK        int    `json:"vk"`
	Ctrl      bool   `json:"ctrl,omitempty"`
	Shift     bool   `json:"shift,omitempty"`
	Alt       bool   `json:"alt,omitempty"`
	Meta      bool   `json:"meta,omitempty"`
}

// ParseCommand decodes one JSON command frame. Malformed JSON is returned as
// an error to the caller, who must log and ignore per spec.md §4.2.
func ParseCommand(data []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return Command{}, err
	}
	return c, nil
}
