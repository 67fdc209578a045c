package protocol

import "encoding/json"

// Event names carried on the RiG -> Forge channel (spec.md §4.3) and the
// CH -> Forge channel (spec.md §4.9).
const (
	EventKey                  = "key_event"
	EventMouse                = "mouse_event"
	EventInitBrowser          = "init_browser"
	EventShowBrowser          = "show_browser"
	EventHideBrowser          = "hide_browser"
	EventHideTutorial         = "hide_tutorial"
	EventSetGameHWND          = "set_game_hwnd"
	EventCreateBookmark       = "create_bookmark"
	EventSaveScreenshot       = "save_screenshot"
	EventSaveQuickClip        = "save_quick_clip"
	EventSaveQuickForwardClip = "save_quick_forward_clip"
	EventStartStream          = "start_stream"
	EventStopStream           = "stop_stream"
	EventStartStopStreamKey   = "start_stop_stream_hotkey"

	// CH -> Forge (spec.md §4.9, §8 scenario A/C)
	EventStartedRecording = "started_recording"
	EventStoppedRecording = "stopped_recording"
	EventBufferReady      = "buffer_ready"
	EventMicList          = "mic_list"
)

// Event is the generic envelope: {"event": "<name>", "timestamp": <ms>, ...}.
// Payload carries event-specific fields as a raw JSON object merged in by
// the caller (see Marshal).
type Event struct {
	Event     string          `json:"event"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"-"`
}

// eventWire is the on-wire shape: the payload's fields are flattened
// alongside "event"/"timestamp", matching the original's single flat JSON
// object per event.
type eventWire struct {
	Event     string `json:"event"`
	Timestamp int64  `json:"timestamp"`
}

// Marshal renders the event as a single flat JSON object: the fixed
// "event"/"timestamp" fields plus whatever fields Payload carries.
func (e Event) Marshal() ([]byte, error) {
	base := map[string]any{
		"event":     e.Event,
		"timestamp": e.Timestamp,
	}
	if len(e.Payload) > 0 {
		var extra map[string]any
		if err := json.Unmarshal(e.Payload, &extra); err != nil {
			return nil, err
		}
		for k, v := range extra {
			base[k] = v
		}
	}
	return json.Marshal(base)
}

// NewEvent builds an Event from a name, timestamp (ms) and an arbitrary
// payload struct that will be flattened into the wire object.
func NewEvent(name string, timestampMs int64, payload any) (Event, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Event{}, err
		}
		raw = b
	}
	return Event{Event: name, Timestamp: timestampMs, Payload: raw}, nil
}

// KeyEventPayload carries the raw Win32 message fields for a key event.
type KeyEventPayload struct {
	Message uint32 `json:"message"`
	WParam  uint64 `json:"wparam"`
	LParam  int64  `json:"lparam"`
}

// MouseEventPayload carries the raw Win32 message fields for a mouse event.
type MouseEventPayload struct {
	Message uint32 `json:"message"`
	X       int32  `json:"x"`
	Y       int32  `json:"y"`
}

// SaveQuickClipPayload is the payload for save_quick_clip, which additionally
// reports whether the tutorial overlay was active (spec.md §4.3).
type SaveQuickClipPayload struct {
	TutorialActive bool `json:"tutorial_active"`
}

// StartedRecordingPayload is the payload for started_recording (scenario A).
type StartedRecordingPayload struct {
	Filename string `json:"filename"`
}

// StoppedRecordingPayload is the payload for stopped_recording (scenario A).
type StoppedRecordingPayload struct {
	TotalFrames int64 `json:"total_frames"`
}

// BufferReadyPayload is the payload for buffer_ready (scenario C).
type BufferReadyPayload struct {
	Filename string `json:"filename"`
}

// MicListPayload is the reply to query_mics.
type MicListPayload struct {
	Microphones []MicDevice `json:"microphones"`
}

// MicDevice describes one enumerated input device.
type MicDevice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
