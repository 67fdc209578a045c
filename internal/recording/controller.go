// Package recording implements the Recording Controller (spec.md §4.9):
// the Capture Host's owner of the capture graph (game-capture source,
// audio loopback, optional microphone, video/audio encoders, muxer output
// and recording-buffer output), driven by commands arriving from Forge
// over internal/forgeconn and reporting indicator state directly to RiG
// over its own internal/ipc client connection.
package recording

import (
	"errors"
	"sync"
	"time"

	"github.com/anvilforge/rig/internal/logging"
	"github.com/anvilforge/rig/internal/protocol"
	"github.com/anvilforge/rig/internal/workerpool"
)

var log = logging.L("recording")

var errNoBufferOutput = errors.New("recording: no buffer output, capture_new_process has not run yet")

// EventSender delivers CH -> Forge events (satisfied by *forgeconn.Channel).
type EventSender interface {
	SendEvent(ev protocol.Event)
}

// VideoSubsystem resets the shared video pipeline to new base/output
// dimensions (spec.md §4.9 step 5 and the dynamic-resize path).
type VideoSubsystem interface {
	Reset(dims Dimensions) error
}

// Dimensions is an output size, already letterboxed to the configured
// target width where needed.
type Dimensions struct {
	Width  uint32
	Height uint32
}

// OutputFactory builds a fresh muxer output and recording-buffer output
// sharing the controller's encoders (spec.md §4.9 step 6); both are
// recreated on every capture_new_process.
type OutputFactory interface {
	NewMuxerOutput(filename string, muxerSettings map[string]any) Output
	NewBufferOutput(filename string, muxerSettings map[string]any) BufferOutput
}

// CaptureSettings is the capture_new_process command payload.
type CaptureSettings struct {
	GameCapture   GameCaptureSettings
	VideoEncoder  map[string]any
	Filename      string
	MuxerSettings map[string]any
}

// ConnectSettings is the connect command payload: the pipe names CH needs
// to reach RiG directly and to hand to Forge.
type ConnectSettings struct {
	AnvilPipe string
	EventPipe string
}

// MicrophoneSettings is update_settings' "microphone" object.
type MicrophoneSettings struct {
	Enabled        bool           `json:"enabled"`
	PTTMode        bool           `json:"ptt_mode"`
	SourceSettings map[string]any `json:"source_settings"`
}

// PTTKey is update_settings' "ptt_key" object.
type PTTKey struct {
	Shift   bool `json:"shift"`
	Ctrl    bool `json:"ctrl"`
	Alt     bool `json:"alt"`
	Meta    bool `json:"meta"`
	Keycode int  `json:"keycode"`
}

// UpdateSettingsCommand is the update_settings command payload.
type UpdateSettingsCommand struct {
	Microphone MicrophoneSettings `json:"microphone"`
	PTTKey     PTTKey             `json:"ptt_key"`
}

// Controller owns the capture graph's lifecycle end to end.
type Controller struct {
	anvil   AnvilClient
	events  EventSender
	watchdog *Watchdog

	gameCapture GameCaptureSource
	videoEncoder VideoEncoder
	mic         MicSource
	video       VideoSubsystem
	outputs     OutputFactory

	targetWidth uint32
	restart     workerpool.JoinableThread

	mu           sync.Mutex
	filename     string
	muxerSettings map[string]any
	baseWidth    uint32
	baseHeight   uint32
	muxerOutput  Output
	bufferOutput BufferOutput

	recording bool
	usingMic  bool
	usingPTT  bool
	micMuted  bool
}

// NewController wires a Controller from its graph dependencies. gameCapture
// and mic are long-lived singletons (reused across capture_new_process,
// per original_source's UpdateGameCapture/UpdateSettings calling
// obs_source_update on an existing source rather than recreating it);
// muxerOutput/bufferOutput are rebuilt fresh every capture_new_process via
// outputs.
func NewController(anvil AnvilClient, events EventSender, watchdog *Watchdog, gameCapture GameCaptureSource, videoEncoder VideoEncoder, mic MicSource, video VideoSubsystem, outputs OutputFactory, targetWidth uint32) *Controller {
	c := &Controller{
		anvil:        anvil,
		events:       events,
		watchdog:     watchdog,
		gameCapture:  gameCapture,
		videoEncoder: videoEncoder,
		mic:          mic,
		video:        video,
		outputs:      outputs,
		targetWidth:  targetWidth,
	}
	c.gameCapture.OnStartCapture(c.handleStartCapture)
	c.gameCapture.OnStopCapture(c.handleStopCapture)
	return c
}

// Connect attaches the controller to RiG's command pipe and hands Forge's
// event pipe name along (spec.md §4.9's connect command).
func (c *Controller) Connect(settings ConnectSettings) error {
	if err := c.anvil.Connect(settings.AnvilPipe); err != nil {
		return err
	}
	c.anvil.SendForgeInfo(settings.EventPipe)
	return nil
}

// CaptureNewProcess runs the 7-step start sequence of spec.md §4.9.
func (c *Controller) CaptureNewProcess(settings CaptureSettings) error {
	c.watchdog.Bump()

	c.stopGraph()

	if err := c.gameCapture.ApplySettings(settings.GameCapture); err != nil {
		return err
	}
	c.anvil.SendGameCaptureInfo(c.gameCapture.GetServerName())

	if err := c.videoEncoder.ApplySettings(settings.VideoEncoder); err != nil {
		return err
	}

	c.mu.Lock()
	c.filename = settings.Filename
	c.muxerSettings = settings.MuxerSettings
	dims := Dimensions{Width: c.baseWidth, Height: c.baseHeight}
	c.mu.Unlock()

	if err := c.video.Reset(dims); err != nil {
		return err
	}

	muxer := c.outputs.NewMuxerOutput(settings.Filename, settings.MuxerSettings)
	buffer := c.outputs.NewBufferOutput(settings.Filename, settings.MuxerSettings)
	muxer.OnStart(func() { c.emitEvent(protocol.EventStartedRecording, protocol.StartedRecordingPayload{Filename: settings.Filename}) })
	muxer.OnStop(func() {
		c.emitEvent(protocol.EventStoppedRecording, protocol.StoppedRecordingPayload{})
	})
	buffer.OnBufferFinished(func(filename string) {
		c.emitEvent(protocol.EventBufferReady, protocol.BufferReadyPayload{Filename: filename})
	})

	c.mu.Lock()
	c.muxerOutput = muxer
	c.bufferOutput = buffer
	c.mu.Unlock()

	return nil
}

// stopGraph releases the current outputs and resets video configuration
// (step 1 of the start sequence), also run before any resize restart.
func (c *Controller) stopGraph() {
	c.restart.Stop()

	c.mu.Lock()
	muxer, buffer := c.muxerOutput, c.bufferOutput
	c.muxerOutput, c.bufferOutput = nil, nil
	c.baseWidth, c.baseHeight = 0, 0
	c.mu.Unlock()

	if muxer != nil {
		muxer.Stop()
	}
	if buffer != nil {
		buffer.Stop()
	}
	c.setRecording(false)
}

// QueryMics replies to Forge's query_mics with the enumerated device list;
// enumeration itself is the caller's responsibility (platform-specific,
// lives in internal/capture).
func (c *Controller) QueryMics(mics []protocol.MicDevice) {
	c.watchdog.Bump()
	c.emitEvent(protocol.EventMicList, protocol.MicListPayload{Microphones: mics})
}

// UpdateSettings applies microphone and push-to-talk settings (spec.md
// §4.9 "Microphone and PTT").
func (c *Controller) UpdateSettings(settings UpdateSettingsCommand) error {
	c.watchdog.Bump()

	combo := KeyCombination{
		VK:    settings.PTTKey.Keycode,
		Shift: settings.PTTKey.Shift,
		Ctrl:  settings.PTTKey.Ctrl,
		Alt:   settings.PTTKey.Alt,
		Meta:  settings.PTTKey.Meta,
	}

	continuous := settings.Microphone.Enabled && !settings.Microphone.PTTMode
	ptt := settings.Microphone.Enabled && settings.Microphone.PTTMode
	enabled := settings.Microphone.Enabled

	if err := c.mic.ApplySettings(settings.Microphone.SourceSettings); err != nil {
		return err
	}
	c.mic.SetMuted(false)

	// muted initializes to the ptt-mode flag itself: until push-to-talk is
	// first pressed the mic is effectively silent, matching
	// original_source/Crucible/Crucible.cpp's MicUpdated(ptt, enabled, ptt).
	c.micUpdated(&ptt, &enabled, &ptt)

	c.mic.BindPTT(combo, ptt)
	c.mic.BindContinuous(combo, continuous)
	c.mic.SetRouted(enabled)
	return nil
}

// SaveRecordingBuffer asks the current buffer output to flush to filename
// (spec.md §4.9's save_recording_buffer command).
func (c *Controller) SaveRecordingBuffer(filename string) error {
	c.watchdog.Bump()

	c.mu.Lock()
	buffer := c.bufferOutput
	c.mu.Unlock()
	if buffer == nil {
		return errNoBufferOutput
	}
	return buffer.PreciseBuffer(filename)
}

func (c *Controller) handleStartCapture(width, height uint32) {
	if c.updateSize(width, height) {
		// The resize restart thread starts the outputs itself once the
		// new dimensions are applied.
		return
	}

	c.mu.Lock()
	muxer, buffer := c.muxerOutput, c.bufferOutput
	c.mu.Unlock()
	if muxer != nil {
		if err := muxer.Start(); err != nil {
			log.Error("muxer output start failed", "error", err)
		}
	}
	if buffer != nil {
		if err := buffer.Start(); err != nil {
			log.Error("buffer output start failed", "error", err)
		}
	}
	c.setRecording(true)
}

func (c *Controller) handleStopCapture() {
	c.mu.Lock()
	muxer, buffer := c.muxerOutput, c.bufferOutput
	c.mu.Unlock()
	if muxer != nil {
		muxer.Stop()
	}
	if buffer != nil {
		buffer.Stop()
	}
	c.setRecording(false)
}

// updateSize implements spec.md §4.9's "Dynamic resize": when the reported
// size differs from the current base size, recompute the letterboxed
// output size, join any prior restart, and spawn a new one that resets
// video and restarts the outputs. Returns true if a resize (and therefore
// a restart) was triggered.
func (c *Controller) updateSize(width, height uint32) bool {
	c.mu.Lock()
	if width == c.baseWidth && height == c.baseHeight {
		c.mu.Unlock()
		return false
	}
	dims := computeLetterboxDims(width, height, c.targetWidth)
	c.baseWidth, c.baseHeight = width, height
	muxer, buffer := c.muxerOutput, c.bufferOutput
	c.mu.Unlock()

	// Restarts must serialize: join the previous one before starting the
	// next (original_source carries an explicit TODO that this should
	// eventually become a real command queue instead of join-then-spawn).
	c.restart.Stop()
	c.restart.Start(func(stop <-chan struct{}) {
		select {
		case <-stop:
			return
		default:
		}
		if muxer != nil {
			muxer.Stop()
		}
		if buffer != nil {
			buffer.Stop()
		}
		if err := c.video.Reset(dims); err != nil {
			log.Error("resize: video reset failed", "error", err)
			return
		}
		if muxer != nil {
			if err := muxer.Start(); err != nil {
				log.Error("resize: muxer restart failed", "error", err)
			}
		}
		if buffer != nil {
			if err := buffer.Start(); err != nil {
				log.Error("resize: buffer restart failed", "error", err)
			}
		}
		c.setRecording(true)
	})
	return true
}

// computeLetterboxDims mirrors original_source/Crucible/Crucible.cpp's
// UpdateSize: scale down to targetWidth preserving aspect if the reported
// width exceeds it, otherwise output at native size.
func computeLetterboxDims(width, height, targetWidth uint32) Dimensions {
	if width > targetWidth {
		scale := float64(width) / float64(targetWidth)
		return Dimensions{Width: targetWidth, Height: uint32(float64(height) / scale)}
	}
	return Dimensions{Width: width, Height: height}
}

func (c *Controller) setRecording(v bool) {
	c.mu.Lock()
	changed := c.recording != v
	c.recording = v
	ind := c.currentIndicatorLocked()
	c.mu.Unlock()
	if changed {
		c.publishIndicator(ind)
	}
}

// micUpdated mirrors original_source's AnvilCommands::MicUpdated: any of
// the three tristate fields may be left nil ("indeterminate") to leave
// that piece of state untouched.
func (c *Controller) micUpdated(muted, active, ptt *bool) {
	c.mu.Lock()
	changed := false
	if active != nil && *active != c.usingMic {
		c.usingMic = *active
		changed = true
	}
	if muted != nil && *muted != c.micMuted {
		c.micMuted = *muted
		changed = true
	}
	if ptt != nil && *ptt != c.usingPTT {
		c.usingPTT = *ptt
		changed = true
	}
	ind := c.currentIndicatorLocked()
	c.mu.Unlock()
	if changed {
		c.publishIndicator(ind)
	}
}

// currentIndicatorLocked derives the Anvil indicator role from
// (recording, using_mic, using_ptt, mic_muted) in that priority (spec.md
// §4.9 "Anvil indicator feedback"). c.mu must be held.
func (c *Controller) currentIndicatorLocked() protocol.IndicatorKind {
	if !c.recording {
		return protocol.IndicatorNone
	}
	if !c.usingMic {
		return protocol.IndicatorCapturing
	}
	if !c.micMuted {
		return protocol.IndicatorMicActive
	}
	if c.usingPTT {
		return protocol.IndicatorMicIdle
	}
	return protocol.IndicatorMicMuted
}

func (c *Controller) publishIndicator(kind protocol.IndicatorKind) {
	c.anvil.SendIndicator(kind.String())
}

func (c *Controller) emitEvent(name string, payload any) {
	ev, err := protocol.NewEvent(name, time.Now().UnixMilli(), payload)
	if err != nil {
		log.Warn("failed to build event", "event", name, "error", err)
		return
	}
	c.events.SendEvent(ev)
}
