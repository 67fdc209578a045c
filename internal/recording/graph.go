package recording

// GameCaptureSource is the capture graph's video source (spec.md §4.9): it
// applies game-capture settings and signals start/stop/resize of the
// captured game window.
type GameCaptureSource interface {
	ApplySettings(settings GameCaptureSettings) error
	OnStartCapture(fn func(width, height uint32))
	OnStopCapture(fn func())

	// GetServerName returns the pipe name the hook DLL dials to stream
	// frames in, or "" before ApplySettings has created a capture source.
	GetServerName() string
}

// GameCaptureSettings carries the capture_new_process command's
// game-capture fields.
type GameCaptureSettings struct {
	ProcessID uint32
	Raw       map[string]any
}

// VideoEncoder is the capture graph's video encoder (spec.md §4.10); the
// controller only needs to apply settings, the encode path lives in
// internal/encoder.
type VideoEncoder interface {
	ApplySettings(settings map[string]any) error
}

// Output is a muxer or recording-buffer output: both share start/stop and
// the same completion signals (spec.md §4.9 step 7).
type Output interface {
	Start() error
	Stop()
	OnStart(fn func())
	OnStop(fn func())
}

// BufferOutput additionally supports flushing a precise replay buffer to a
// filename, wired to save_recording_buffer.
type BufferOutput interface {
	Output
	OnBufferFinished(fn func(filename string))
	PreciseBuffer(filename string) error
}

// MicSource is the controller's microphone input source.
type MicSource interface {
	ApplySettings(settings map[string]any) error
	SetMuted(muted bool)
	BindPTT(combo KeyCombination, active bool)
	BindContinuous(combo KeyCombination, active bool)
	SetRouted(routed bool)
}

// KeyCombination is a platform key-combination derived from a ptt_key
// object (spec.md §4.9 "Microphone and PTT").
type KeyCombination struct {
	VK    int
	Shift bool
	Ctrl  bool
	Alt   bool
	Meta  bool
}
