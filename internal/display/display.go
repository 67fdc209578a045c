package display

import (
	"fmt"
	"sync"

	"github.com/anvilforge/rig/internal/protocol"
	"github.com/anvilforge/rig/internal/workerpool"
)

// stageDepth is RemoteDisplay's N=3 back-to-back stage count (spec.md
// §4.13): up to three frames can be in flight across render/stage/send at
// once, each owning its own texrender+stagesurface pair.
const stageDepth = 3

// FrameConsumer receives one mapped display frame. A real implementation
// writes header then data as two messages over an internal/ipc client,
// matching internal/capture.FramebufferSource's wire shape on the
// producer side.
type FrameConsumer interface {
	Send(header protocol.FramebufferInfo, data []byte) bool
}

type stageSlot struct {
	tr     TexRender
	stage  StageSurface
	width  int
	height int
}

func (s *stageSlot) destroy() {
	if s.tr != nil {
		s.tr.Destroy()
		s.tr = nil
	}
	if s.stage != nil {
		s.stage.Destroy()
		s.stage = nil
	}
}

// Display drives one named channel's render->stage->map->send pipeline.
// RenderTick is called by whatever owns the graphics context once per
// frame (the render thread, spec.md §5); the send loop runs on its own
// background thread gated by the staged channel, matching the original's
// condition-variable-driven send thread.
type Display struct {
	name     string
	ctx      GraphicsContext
	consumer FrameConsumer

	mu      sync.Mutex
	source  Source
	enabled bool
	drawW   int
	drawH   int
	idle    []*stageSlot

	staged chan *stageSlot
	thread workerpool.JoinableThread
}

// New creates a Display for name, idle with stageDepth fresh slots. It
// does not start the send thread; call Start once the caller is ready to
// receive frames.
func New(name string, ctx GraphicsContext, consumer FrameConsumer) *Display {
	d := &Display{
		name:     name,
		ctx:      ctx,
		consumer: consumer,
		staged:   make(chan *stageSlot, stageDepth),
	}
	for i := 0; i < stageDepth; i++ {
		d.idle = append(d.idle, &stageSlot{})
	}
	return d
}

// Start launches the send thread.
func (d *Display) Start() {
	d.thread.Start(d.sendLoop)
}

// Stop joins the send thread and releases every slot's GPU resources.
func (d *Display) Stop() {
	d.thread.Stop()

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.idle {
		s.destroy()
	}
	d.idle = nil
drain:
	for {
		select {
		case s := <-d.staged:
			s.destroy()
		default:
			break drain
		}
	}
}

// SetSource sets the render source for this channel; nil disables
// rendering without disabling the channel itself.
func (d *Display) SetSource(source Source) {
	d.mu.Lock()
	d.source = source
	d.mu.Unlock()
}

// SetEnabled toggles whether RenderTick does anything.
func (d *Display) SetEnabled(enabled bool) {
	d.mu.Lock()
	d.enabled = enabled
	d.mu.Unlock()
}

// Resize sets the draw size consumers expect frames at; 0,0 means "use the
// source's native size every tick" (matching the original's draw_cx==0
// fallback).
func (d *Display) Resize(width, height int) {
	d.mu.Lock()
	d.drawW, d.drawH = width, height
	d.mu.Unlock()
}

// RenderTick renders one frame if the channel is enabled, has a source,
// and a stage slot is idle. It must be called from the goroutine that owns
// the graphics context. A missing idle slot or a render/stage failure
// drops the frame without leaking: the slot, if acquired, always returns
// to idle or moves to staged, never neither.
func (d *Display) RenderTick() {
	d.mu.Lock()
	if !d.enabled || d.source == nil || len(d.idle) == 0 {
		d.mu.Unlock()
		return
	}
	slot := d.idle[len(d.idle)-1]
	d.idle = d.idle[:len(d.idle)-1]
	source := d.source
	drawW, drawH := d.drawW, d.drawH
	d.mu.Unlock()

	if drawW <= 0 || drawH <= 0 {
		drawW, drawH = source.Size()
	}

	ok := drawW > 0 && drawH > 0
	if ok {
		d.ctx.Enter()
		if slot.tr == nil {
			slot.tr = d.ctx.CreateTexRender()
		}
		slot.tr.Reset()
		if ok = slot.tr.Begin(drawW, drawH); ok {
			srcW, srcH, rendered := d.ctx.RenderSource(source, drawW, drawH)
			slot.tr.End()
			ok = rendered && srcW > 0 && srcH > 0
			if ok {
				if slot.stage == nil {
					slot.stage = d.ctx.CreateStageSurface(drawW, drawH)
				}
				slot.stage.Stage(slot.tr.Texture())
				slot.width, slot.height = drawW, drawH
			}
		}
		d.ctx.Leave()
	}

	if !ok {
		d.mu.Lock()
		d.idle = append(d.idle, slot)
		d.mu.Unlock()
		return
	}

	select {
	case d.staged <- slot:
	default:
		// stageDepth slots total, so this can only happen if the send
		// thread is wedged; drop the frame rather than block the render
		// thread (spec.md §5: render thread must not block on IPC).
		log.Warn("display: staged queue full, dropping frame", "name", d.name)
		d.mu.Lock()
		d.idle = append(d.idle, slot)
		d.mu.Unlock()
	}
}

func (d *Display) sendLoop(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case slot := <-d.staged:
			d.ctx.Enter()
			data, linesize, ok := slot.stage.Map()
			if ok {
				header := protocol.FramebufferInfo{
					Width:    uint32(slot.width),
					Height:   uint32(slot.height),
					LineSize: uint32(linesize),
				}
				if !d.consumer.Send(header, data) {
					log.Warn("display: consumer send failed", "name", d.name)
				}
				slot.stage.Unmap()
			} else {
				log.Warn("display: stage map failed", "name", d.name)
			}
			d.ctx.Leave()

			d.mu.Lock()
			d.idle = append(d.idle, slot)
			d.mu.Unlock()
		}
	}
}

// Registry tracks every active Display by name, mirroring RemoteDisplay.cpp's
// Display::SetSource/Connect/SetEnabled/Resize/List/Stop/StopAll free
// functions as methods on an owned instance instead of package-level
// mutable state.
type Registry struct {
	ctx GraphicsContext

	mu       sync.Mutex
	displays map[string]*Display
}

// NewRegistry creates a Registry that renders through ctx.
func NewRegistry(ctx GraphicsContext) *Registry {
	return &Registry{ctx: ctx, displays: make(map[string]*Display)}
}

// Connect creates (if absent) and starts the named Display's send thread,
// attaching consumer as its remote endpoint.
func (r *Registry) Connect(name string, consumer FrameConsumer) *Display {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.displays[name]; ok {
		return d
	}
	d := New(name, r.ctx, consumer)
	d.Start()
	r.displays[name] = d
	return d
}

// SetSource sets the render source for an already-connected display.
func (r *Registry) SetSource(name string, source Source) error {
	d, ok := r.get(name)
	if !ok {
		return fmt.Errorf("display: %q not connected", name)
	}
	d.SetSource(source)
	return nil
}

// SetEnabled toggles an already-connected display.
func (r *Registry) SetEnabled(name string, enabled bool) error {
	d, ok := r.get(name)
	if !ok {
		return fmt.Errorf("display: %q not connected", name)
	}
	d.SetEnabled(enabled)
	return nil
}

// Resize sets an already-connected display's draw size.
func (r *Registry) Resize(name string, width, height int) error {
	d, ok := r.get(name)
	if !ok {
		return fmt.Errorf("display: %q not connected", name)
	}
	d.Resize(width, height)
	return nil
}

// List returns every connected display's name.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.displays))
	for name := range r.displays {
		names = append(names, name)
	}
	return names
}

// Stop stops and removes the named display.
func (r *Registry) Stop(name string) {
	r.mu.Lock()
	d, ok := r.displays[name]
	delete(r.displays, name)
	r.mu.Unlock()
	if ok {
		d.Stop()
	}
}

// StopAll stops and removes every display.
func (r *Registry) StopAll() {
	r.mu.Lock()
	all := r.displays
	r.displays = make(map[string]*Display)
	r.mu.Unlock()
	for _, d := range all {
		d.Stop()
	}
}

// RenderTick renders one frame on every connected, enabled display. The
// caller invokes this once per frame from the render thread.
func (r *Registry) RenderTick() {
	r.mu.Lock()
	displays := make([]*Display, 0, len(r.displays))
	for _, d := range r.displays {
		displays = append(displays, d)
	}
	r.mu.Unlock()
	for _, d := range displays {
		d.RenderTick()
	}
}

func (r *Registry) get(name string) (*Display, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.displays[name]
	return d, ok
}
