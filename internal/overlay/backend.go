// Package overlay implements the graphics-API-agnostic overlay renderer
// contract of spec.md §4.6: a capability set each graphics back-end
// implements, a scoped save/restore guard around every frame's overlay
// draw, and the composition rule binding the indicator manager and the
// per-channel texture rotators together.
package overlay

import (
	"fmt"

	"github.com/anvilforge/rig/internal/indicator"
	"github.com/anvilforge/rig/internal/protocol"
	"github.com/anvilforge/rig/internal/rotator"
)

// Channel identifies one of the three overlay channels (spec.md §3).
type Channel string

const (
	ChannelHighlighter   Channel = "highlighter"
	ChannelStreaming     Channel = "streaming"
	ChannelNotifications Channel = "notifications"
)

// Frame is one decoded overlay frame destined for a channel's texture
// rotator: BGRA pixels at a fixed size, matching what the Framebuffer
// Server decodes off the wire (spec.md §4.11).
type Frame struct {
	Width  int
	Height int
	Pixels []byte // BGRA
}

// Backend is the capability set every graphics-API variant implements
// (spec.md §4.6): "{ init(indicator_manager), free(), draw_indicator(kind,
// alpha), draw_overlay(channel) -> bool, update_overlay(),
// update_indicator_textures() }". Exactly one backend is active at a time,
// selected at first frame from the presented swap chain's device type.
type Backend interface {
	// Init acquires the device, queries back-buffer size, and creates
	// per-indicator textures, vertex buffers, and the shader pipeline
	// (spec.md §4.6 "Initialization ordering"). Failure must release any
	// resources already created before Init returns its error.
	Init(mgr *indicator.Manager) error

	// Free releases every GPU resource created by Init.
	Free()

	// DrawIndicator draws the given indicator kind at the given alpha
	// (0..1), used both for steady display and animated fade in/out.
	DrawIndicator(kind protocol.IndicatorKind, alpha float64) error

	// DrawOverlay draws the named channel's current rotator texture and
	// reports whether anything was actually drawn (a false return means
	// the channel has no content yet, per the composition rule).
	DrawOverlay(channel Channel) (bool, error)

	// UpdateOverlay buffers the next decoded frame into each channel's
	// rotator via rotator.buffer(upload).
	UpdateOverlay(channel Channel, frame Frame) error

	// UpdateIndicatorTextures re-uploads any indicator bitmap the
	// Indicator Manager marked dirty (IndicatorManager.ImageUpdated).
	UpdateIndicatorTextures(mgr *indicator.Manager) error
}

// SavedState is the fixed list of graphics pipeline state items that must
// be saved before, and restored after, every overlay draw (spec.md §4.6).
// Concrete backends populate this with API-specific opaque handles; the
// Guard only enforces save-then-restore ordering, never interprets the
// contents.
type SavedState struct {
	Rasterizer     any
	DepthStencil   any
	DepthStencilRef uint32
	Viewports      any
	RenderTargets  any
	DepthView      any
	BlendState     any
	BlendFactors   [4]float32
	SampleMask     uint32
	Topology       any
	InputLayout    any
	BoundTexture   any // absent on APIs that don't expose a queryable slot
}

// StateSaver/StateRestorer are implemented by a Backend's private pipeline
// object; Guard calls them in matching save/restore pairs so that even a
// panicking draw body still restores state (spec.md: "failure to restore
// any one of these has been shown to corrupt game rendering").
type StateSaver interface {
	SaveState() (SavedState, error)
}

type StateRestorer interface {
	RestoreState(SavedState) error
}

// Guard runs draw wrapped in a save-before/restore-after pair, restoring
// even if draw panics, matching the "central invariant of the renderer
// layer" (spec.md §4.6). It re-panics after restoring so callers still see
// the original failure.
func Guard(pipeline interface {
	StateSaver
	StateRestorer
}, draw func() error) (err error) {
	saved, serr := pipeline.SaveState()
	if serr != nil {
		return fmt.Errorf("overlay: save state: %w", serr)
	}

	defer func() {
		rerr := pipeline.RestoreState(saved)
		if p := recover(); p != nil {
			panic(p) // restore already ran above; propagate the original panic
		}
		if err == nil {
			err = rerr
		}
	}()

	return draw()
}

// Composer binds the per-channel rotators (N=3 per spec.md §3) that
// UpdateOverlay/DrawOverlay operate on. One Composer is shared by the
// active Backend for the lifetime of the overlay.
type Composer struct {
	rotators map[Channel]*rotator.Rotator[Frame]
}

// NewComposer allocates a fresh N=3 rotator for each of the three
// channels, each seeded with empty frames.
func NewComposer() *Composer {
	c := &Composer{rotators: make(map[Channel]*rotator.Rotator[Frame])}
	for _, ch := range []Channel{ChannelHighlighter, ChannelStreaming, ChannelNotifications} {
		c.rotators[ch] = rotator.New(make([]Frame, 3))
	}
	return c
}

// Buffer stages frame into channel's rotator (UpdateOverlay's "buffer the
// next decoded frame" step).
func (c *Composer) Buffer(channel Channel, frame Frame) {
	r, ok := c.rotators[channel]
	if !ok {
		return
	}
	r.Buffer(func(buf *Frame) { *buf = frame })
}

// Draw submits channel's most recent complete frame to submit, returning
// false if the channel has never been buffered (DrawOverlay's "no content
// yet" case).
func (c *Composer) Draw(channel Channel, submit func(Frame)) bool {
	r, ok := c.rotators[channel]
	if !ok {
		return false
	}
	return r.Draw(func(buf *Frame) { submit(*buf) })
}

// ComposeFrame implements the per-frame composition rule (spec.md §4.6):
// if the browser overlay is visible and drawOverlay(activeChannel)
// reports true, indicator drawing is suppressed for that frame; otherwise
// the current indicator is drawn. glBackground additionally composites
// the NOTIFICATIONS channel underneath the indicator on OpenGL, since
// that back-end lets the indicator use browser-rendered content as
// background.
func ComposeFrame(b Backend, overlayVisible bool, activeChannel Channel, currentIndicator protocol.IndicatorKind, glBackground bool) error {
	if overlayVisible {
		drew, err := b.DrawOverlay(activeChannel)
		if err != nil {
			return err
		}
		if drew {
			return nil // overlay drawn: suppress indicator this frame
		}
	}

	if glBackground {
		if _, err := b.DrawOverlay(ChannelNotifications); err != nil {
			return err
		}
	}

	if currentIndicator == protocol.IndicatorNone {
		return nil
	}
	return b.DrawIndicator(currentIndicator, 1.0)
}
