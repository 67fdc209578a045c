// Command rig is a development harness for the renderer-in-game side of
// the stack: a fake game loop driving the same packages a real injected
// DLL would use (internal/rig's Command Server and Framebuffer Servers,
// internal/overlay's composition rule over a software graphics backend,
// internal/indicator, internal/hotkey, internal/inputhook,
// internal/rotator, internal/quickselect) without an actual hooked
// Present call or game process to inject into.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/anvilforge/rig/internal/config"
	"github.com/anvilforge/rig/internal/hotkey"
	"github.com/anvilforge/rig/internal/indicator"
	"github.com/anvilforge/rig/internal/inputhook"
	"github.com/anvilforge/rig/internal/ipc"
	"github.com/anvilforge/rig/internal/logging"
	"github.com/anvilforge/rig/internal/overlay"
	"github.com/anvilforge/rig/internal/protocol"
	"github.com/anvilforge/rig/internal/quickselect"
	"github.com/anvilforge/rig/internal/rig"
)

var log = logging.L("rig")

// renderTickRate matches displayTickRate's conventional capture framerate
// on the CH side; spec.md doesn't pin a render-loop cadence either.
const renderTickRate = 30 * time.Millisecond

func main() {
	cfg, err := config.LoadRigConfig(os.Getenv("RIG_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "rig:", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, nil)

	pid := cfg.ForgePID
	if pid == 0 {
		pid = os.Getpid()
	}

	app := newRigApp(cfg, pid)

	imagesLoaded := true
	if err := app.mgr.LoadImages(); err != nil {
		log.Error("failed to load indicator images; running without rendering", "error", err)
		imagesLoaded = false
	}

	dispatcher := rig.NewDispatcher(app)
	cmdServer := rig.NewCommandServer(ipc.CommandPipeName(pid), dispatcher, app)
	if err := cmdServer.Start(); err != nil {
		log.Error("failed to start command server", "error", err)
		os.Exit(1)
	}
	defer cmdServer.Stop()

	// hkDispatcher is wired against the live hotkey table and quick-select
	// gate exactly as a real injected hook would drive it; this harness has
	// no raw keyboard/mouse message pump to feed it (that plumbing is a
	// platform-specific hook install, which internal/inputhook does not
	// contain), so it sits ready for HandleKey calls a real hook source
	// would make.
	app.hkDispatcher = hotkey.NewDispatcher(app.hotkeyTable, app.hotkeyHandlers(), app.quickSelect)

	log.Info("rig harness running", "pid", pid, "command_pipe", ipc.CommandPipeName(pid))

	stop := make(chan struct{})
	if imagesLoaded {
		go app.renderLoop(stop)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	close(stop)
	app.events.Close()
	log.Info("shutting down rig harness")
}

// rigApp wires the RiG-side packages together and implements both
// rig.OverlayController (live command effects) and rig.ResetTarget (the
// Restart Coordinator's reset sequence).
type rigApp struct {
	cfg *config.RigConfig
	pid int

	mu                       sync.Mutex
	current                  *indicator.Current
	mgr                      *indicator.Manager
	hotkeyTable              *hotkey.Table
	hkDispatcher             *hotkey.Dispatcher
	inputHook                *inputhook.Hook
	composer                 *overlay.Composer
	backend                  overlay.Backend
	quickSelect              *quickselect.Timer
	events                   *rig.EventChannel
	framebufferServers       map[overlay.Channel]*rig.FramebufferServer
	channelSeq               int
	overlayVisible           bool
	nativeIndicatorsDisabled bool
	activeChannel            overlay.Channel
	cursorID                 int
	quickSelectRetainedVKs   []int
	forwardBufferCaption     string
}

func newRigApp(cfg *config.RigConfig, pid int) *rigApp {
	composer := overlay.NewComposer()
	mgr := indicator.NewManager(&indicator.SoftwareComposer{AssetDir: cfg.IndicatorAssetDir})

	app := &rigApp{
		cfg:                cfg,
		pid:                pid,
		current:            indicator.NewCurrent(),
		mgr:                mgr,
		hotkeyTable:        hotkey.NewTable(),
		inputHook:          inputhook.New(nil),
		composer:           composer,
		backend:            overlay.NewSoftwareBackend(composer),
		events:             rig.NewEventChannel(),
		framebufferServers: make(map[overlay.Channel]*rig.FramebufferServer),
		activeChannel:      overlay.ChannelHighlighter,
	}
	app.quickSelect = quickselect.New(app.onQuickSelectEnter, app.onQuickSelectExit)
	return app
}

// renderLoop is the fake Present hook: it ticks the same composition rule
// a real backend's draw call would run every frame.
func (a *rigApp) renderLoop(stop chan struct{}) {
	if err := a.backend.Init(a.mgr); err != nil {
		log.Error("failed to init overlay backend", "error", err)
		return
	}
	defer a.backend.Free()

	ticker := time.NewTicker(renderTickRate)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.renderTick()
		}
	}
}

func (a *rigApp) renderTick() {
	if err := a.backend.UpdateIndicatorTextures(a.mgr); err != nil {
		log.Warn("failed to update indicator textures", "error", err)
		return
	}

	a.mu.Lock()
	visible := a.overlayVisible
	channel := a.activeChannel
	nativeDisabled := a.nativeIndicatorsDisabled
	a.mu.Unlock()

	current := a.current.Kind()
	if nativeDisabled {
		current = protocol.IndicatorNone
	}

	if err := overlay.ComposeFrame(a.backend, visible, channel, current, false); err != nil {
		log.Warn("failed to compose overlay frame", "error", err)
	}
}

// hotkeyHandlers binds role-firing side effects: Overlay toggles local
// overlay visibility immediately; Stream does not toggle a local streaming
// channel here but, like the rest, emits a Forge event
// (start_stop_stream_hotkey) on its firing edge.
func (a *rigApp) hotkeyHandlers() hotkey.Handlers {
	return hotkey.Handlers{
		ToggleOverlay: a.toggleOverlay,
		ToggleStream:  func() { a.emit(protocol.EventStartStopStreamKey, nil) },

		OnScreenshot:       func() { a.emit(protocol.EventSaveScreenshot, nil) },
		OnBookmark:         func() { a.emit(protocol.EventCreateBookmark, nil) },
		OnStartStopStream:  func() { a.emit(protocol.EventStartStopStreamKey, nil) },
		OnQuickClip:        func() { a.emit(protocol.EventSaveQuickClip, protocol.SaveQuickClipPayload{TutorialActive: a.current.Kind() == protocol.IndicatorTutorial}) },
		OnQuickForwardClip: func() { a.emit(protocol.EventSaveQuickForwardClip, nil) },

		// Push-to-talk is bound independently on the Capture Host side
		// (recording.Controller.UpdateSettings' BindPTT/BindContinuous);
		// there is no ptt_press/ptt_release entry in protocol/event.go's
		// event table for RiG to relay, so the local press/release edges
		// are logged only.
		OnPTTPress:   func() { log.Debug("ptt pressed") },
		OnPTTRelease: func() { log.Debug("ptt released") },

		OnCancel: func() { a.quickSelect.End() },
		OnSelect: func() { a.quickSelect.End() },
	}
}

func (a *rigApp) emit(name string, payload any) {
	ev, err := protocol.NewEvent(name, time.Now().UnixMilli(), payload)
	if err != nil {
		log.Warn("failed to build event", "event", name, "error", err)
		return
	}
	a.events.Send(ev)
}

func (a *rigApp) toggleOverlay() {
	a.mu.Lock()
	a.overlayVisible = !a.overlayVisible
	visible := a.overlayVisible
	a.mu.Unlock()

	var err error
	if visible {
		err = a.inputHook.Show(0)
	} else {
		err = a.inputHook.Hide()
	}
	if err != nil {
		log.Warn("input hook show/hide failed", "error", err)
	}
}

// onMiddleMouseDown is what a real input hook's raw mouse message pump
// calls on every middle-button press (spec.md §4.12): arm the quick-select
// window, or attempt to enter selection mode if one is already armed.
func (a *rigApp) onMiddleMouseDown() {
	if a.quickSelect.MiddleClick() {
		return
	}
	a.quickSelect.Start(a.cfg.QuickSelectTimeoutMS)
}

func (a *rigApp) onQuickSelectEnter() {
	a.mu.Lock()
	retained := a.quickSelectRetainedVKs
	a.mu.Unlock()
	a.inputHook.SetQuickSelectRetainedKeys(retained)
}

func (a *rigApp) onQuickSelectExit() {
	a.inputHook.SetQuickSelectRetainedKeys(nil)
}

// --- rig.OverlayController ---

func (a *rigApp) SetIndicator(kind protocol.IndicatorKind) {
	a.current.Set(kind)
}

func (a *rigApp) SetNativeIndicatorsDisabled(disabled bool) {
	a.mu.Lock()
	a.nativeIndicatorsDisabled = disabled
	a.mu.Unlock()
}

func (a *rigApp) SetHotkeyTable(bindings map[hotkey.Role]struct {
	VK        int
	Whitelist hotkey.Modifier
}) {
	a.hotkeyTable.Replace(bindings)

	retained := make([]int, 0, 2)
	if slot, ok := bindings[hotkey.RoleCancel]; ok {
		retained = append(retained, slot.VK)
	}
	if slot, ok := bindings[hotkey.RoleSelect]; ok {
		retained = append(retained, slot.VK)
	}
	a.mu.Lock()
	a.quickSelectRetainedVKs = retained
	a.mu.Unlock()
}

func (a *rigApp) SetCursor(cursorID int) {
	a.mu.Lock()
	a.cursorID = cursorID
	a.mu.Unlock()
}

func (a *rigApp) DismissOverlay(channel string) {
	a.mu.Lock()
	a.overlayVisible = false
	a.mu.Unlock()
	if err := a.inputHook.Hide(); err != nil {
		log.Warn("input hook hide failed", "error", err)
	}
}

// UpdateForwardBufferCaption stores the caption the FORWARD_BUFFER
// indicator composes with on its next regular recompose; indicator.Manager
// only exposes a recompose hook for the hotkey-help-dependent ENABLED
// bitmap (spec.md §4.5), so the caption itself is held here rather than
// forced through an unrelated recompose path.
func (a *rigApp) UpdateForwardBufferCaption(caption string) {
	a.mu.Lock()
	a.forwardBufferCaption = caption
	a.mu.Unlock()
	log.Debug("forward buffer caption updated", "caption", caption)
}

// AttachForgeEventPipe implements the forge_info command: attach/switch
// the Anvil event pipe, then (re)start each overlay channel's Framebuffer
// Server so Forge can begin streaming composited frames in.
func (a *rigApp) AttachForgeEventPipe(name string) {
	if err := a.events.Attach(name); err != nil {
		log.Warn("failed to attach forge event pipe", "error", err)
	}

	a.mu.Lock()
	seq := a.channelSeq
	a.channelSeq++
	a.mu.Unlock()

	for _, ch := range []overlay.Channel{overlay.ChannelHighlighter, overlay.ChannelStreaming, overlay.ChannelNotifications} {
		if existing, ok := a.framebufferServers[ch]; ok {
			existing.Stop()
		}
		fs := rig.NewFramebufferServer(ipc.FramebufferPipeName(a.pid, seq), ch, a.composer)
		if err := fs.Start(); err != nil {
			log.Warn("failed to start framebuffer server", "channel", ch, "error", err)
			continue
		}
		a.framebufferServers[ch] = fs
	}
}

// --- rig.ResetTarget ---

func (a *rigApp) ResetIndicatorToNone() {
	a.current.Reset()
}

func (a *rigApp) ZeroHotkeyTable() {
	a.hotkeyTable.Zero()
}

func (a *rigApp) HideOverlay() {
	a.mu.Lock()
	a.overlayVisible = false
	a.mu.Unlock()
	if err := a.inputHook.Hide(); err != nil {
		log.Warn("input hook hide failed", "error", err)
	}
}

func (a *rigApp) ResetCursorToDefault() {
	a.mu.Lock()
	a.cursorID = 0
	a.mu.Unlock()
}
