package recording

import (
	"github.com/anvilforge/rig/internal/protocol"
)

// MicEnumerator lists available microphone input devices for query_mics
// (spec.md §4.9); a concrete CH process backs this with its platform audio
// API (internal/capture's host probing is the analogous pattern for video
// devices).
type MicEnumerator interface {
	Enumerate() ([]protocol.MicDevice, error)
}

// Dispatcher decodes CH command frames arriving over internal/forgeconn and
// applies them to a Controller, mirroring internal/rig's Dispatcher on the
// RiG side of the same command-table idiom (spec.md §4.9's "command
// surface").
type Dispatcher struct {
	controller *Controller
	mics       MicEnumerator
}

// NewDispatcher binds a Dispatcher to controller, enumerating microphones
// through mics on query_mics.
func NewDispatcher(controller *Controller, mics MicEnumerator) *Dispatcher {
	return &Dispatcher{controller: controller, mics: mics}
}

// Handle decodes and applies one raw CH command message. Malformed JSON
// and unknown command names are logged and otherwise ignored, matching
// internal/rig.Dispatcher's error handling for the symmetric RiG-side
// table.
func (d *Dispatcher) Handle(raw []byte) {
	cmd, err := protocol.ParseCHCommand(raw)
	if err != nil {
		log.Warn("malformed CH command", "error", err)
		return
	}

	switch cmd.Command {
	case protocol.CHCmdConnect:
		if err := d.controller.Connect(ConnectSettings{
			AnvilPipe: cmd.AnvilPipe,
			EventPipe: cmd.EventPipe,
		}); err != nil {
			log.Warn("connect failed", "error", err)
		}

	case protocol.CHCmdCaptureNewProcess:
		settings := CaptureSettings{
			GameCapture:   gameCaptureFromWire(cmd.GameCapture),
			VideoEncoder:  cmd.Encoder,
			Filename:      cmd.Filename,
			MuxerSettings: protocol.ParseMuxerSettings(cmd.MuxerSettings),
		}
		if err := d.controller.CaptureNewProcess(settings); err != nil {
			log.Warn("capture_new_process failed", "error", err)
		}

	case protocol.CHCmdQueryMics:
		mics, err := d.mics.Enumerate()
		if err != nil {
			log.Warn("mic enumeration failed", "error", err)
			mics = nil
		}
		d.controller.QueryMics(mics)

	case protocol.CHCmdUpdateSettings:
		settings := UpdateSettingsCommand{
			Microphone: MicrophoneSettings{
				Enabled:        cmd.Microphone.Enabled,
				PTTMode:        cmd.Microphone.PTTMode,
				SourceSettings: cmd.Microphone.SourceSettings,
			},
			PTTKey: PTTKey{
				Shift:   cmd.PTTKey.Shift,
				Ctrl:    cmd.PTTKey.Ctrl,
				Alt:     cmd.PTTKey.Alt,
				Meta:    cmd.PTTKey.Meta,
				Keycode: cmd.PTTKey.Keycode,
			},
		}
		if err := d.controller.UpdateSettings(settings); err != nil {
			log.Warn("update_settings failed", "error", err)
		}

	case protocol.CHCmdSaveRecordingBuffer:
		if err := d.controller.SaveRecordingBuffer(cmd.Filename); err != nil {
			log.Warn("save_recording_buffer failed", "error", err)
		}

	default:
		log.Warn("unknown CH command", "command", cmd.Command)
	}
}

// gameCaptureFromWire extracts the fields GameCaptureSettings needs from
// the generic game_capture JSON object, keeping the rest in Raw for the
// concrete GameCaptureSource to interpret.
func gameCaptureFromWire(raw map[string]any) GameCaptureSettings {
	var pid uint32
	if v, ok := raw["process_id"]; ok {
		if f, ok := v.(float64); ok {
			pid = uint32(f)
		}
	}
	return GameCaptureSettings{ProcessID: pid, Raw: raw}
}
