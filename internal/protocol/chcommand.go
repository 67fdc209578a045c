package protocol

import (
	"encoding/json"
	"fmt"
)

// CH-side command names (spec.md §4.9's "command surface"), distinct from
// the RiG-side Command table in command.go: these arrive on CH's
// "ForgeCrucible" pipe rather than RiG's "AnvilRenderer<pid>" pipe.
const (
	CHCmdConnect             = "connect"
	CHCmdCaptureNewProcess   = "capture_new_process"
	CHCmdQueryMics           = "query_mics"
	CHCmdUpdateSettings      = "update_settings"
	CHCmdSaveRecordingBuffer = "save_recording_buffer"
)

// CHMicrophoneSettings is update_settings' "microphone" object on the CH
// command surface.
type CHMicrophoneSettings struct {
	Enabled        bool           `json:"enabled"`
	PTTMode        bool           `json:"ptt_mode"`
	SourceSettings map[string]any `json:"source_settings"`
}

// CHPTTKey is update_settings' "ptt_key" object on the CH command surface.
type CHPTTKey struct {
	Shift   bool `json:"shift"`
	Ctrl    bool `json:"ctrl"`
	Alt     bool `json:"alt"`
	Meta    bool `json:"meta"`
	Keycode int  `json:"keycode"`
}

// CHCommand is one decoded frame from CH's command surface. Only the
// fields relevant to Command are populated; unrelated fields are zero.
type CHCommand struct {
	Command string `json:"command"`

	// connect
	AnvilPipe string `json:"anvil_pipe"`
	EventPipe string `json:"event_pipe"`

	// capture_new_process
	GameCapture   map[string]any  `json:"game_capture"`
	Encoder       map[string]any  `json:"encoder"`
	Filename      string          `json:"filename"`
	MuxerSettings json.RawMessage `json:"muxer_settings"`

	// update_settings
	Microphone CHMicrophoneSettings `json:"microphone"`
	PTTKey     CHPTTKey             `json:"ptt_key"`
}

// ParseCHCommand decodes one JSON CH command frame.
func ParseCHCommand(data []byte) (CHCommand, error) {
	var cmd CHCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return CHCommand{}, fmt.Errorf("protocol: decode CH command: %w", err)
	}
	return cmd, nil
}

// ParseMuxerSettings tolerates muxer_settings arriving as either a JSON
// object or the empty-string placeholder spec.md's own sample traffic
// uses ({"muxer_settings":""}): an object decodes normally, anything else
// (including absent or malformed input) yields an empty map rather than
// an error, since spec.md leaves the muxer settings shape unspecified.
func ParseMuxerSettings(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}
	return m
}
