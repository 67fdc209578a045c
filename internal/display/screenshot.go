package display

import "sync"

// ScreenshotCallback reports whether a request succeeded, the resolved
// width/height (filled in from the source when the request left them at
// 0), and the destination filename.
type ScreenshotCallback func(success bool, width, height uint32, filename string)

// ScreenshotRequest is a single-shot capture: render source at Width x
// Height (or the source's native size if either is 0), save to Filename,
// then report via Callback.
type ScreenshotRequest struct {
	Source   Source
	Width    uint32
	Height   uint32
	Filename string
	Callback ScreenshotCallback
}

// SaveFunc persists one mapped frame to filename; a production
// implementation hands off to an outputsink.Sink (local disk or S3).
type SaveFunc func(data []byte, width, height, linesize int, filename string) bool

type saveResult struct {
	success bool
}

// Screenshot implements ScreenshotProvider.cpp's FIFO single-flight queue
// (spec.md §4.13): render -> copy -> stage -> save (from a worker) ->
// complete callback, only one request in flight, the rest wait in FIFO
// order.
type Screenshot struct {
	ctx  GraphicsContext
	save SaveFunc

	mu      sync.Mutex
	pending []*ScreenshotRequest
	slot    stageSlot
	staged  bool
	saving  bool

	results chan saveResult
}

// NewScreenshot creates a Screenshot provider rendering through ctx and
// persisting completed frames with save.
func NewScreenshot(ctx GraphicsContext, save SaveFunc) *Screenshot {
	return &Screenshot{ctx: ctx, save: save, results: make(chan saveResult, 1)}
}

// Request enqueues a capture; it runs as soon as nothing is in flight,
// otherwise FIFO behind whatever is already queued.
func (s *Screenshot) Request(req *ScreenshotRequest) {
	s.mu.Lock()
	s.pending = append(s.pending, req)
	s.mu.Unlock()
}

// Pending reports how many requests (including any in flight) are queued.
func (s *Screenshot) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Tick drives the state machine one step; call it once per frame from the
// render thread, same as Display.RenderTick.
func (s *Screenshot) Tick() {
	s.drainResult()

	s.mu.Lock()
	staged, saving := s.staged, s.saving
	s.mu.Unlock()

	switch {
	case staged && !saving:
		s.startSave()
	case !staged:
		s.renderAndStage()
	}
}

// Stop releases any idle (not in-flight) GPU resources. Call once nothing
// is pending.
func (s *Screenshot) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slot.tr != nil {
		s.slot.tr.Destroy()
		s.slot.tr = nil
	}
	if s.slot.stage != nil {
		s.slot.stage.Destroy()
		s.slot.stage = nil
	}
}

func (s *Screenshot) drainResult() {
	var res saveResult
	select {
	case res = <-s.results:
	default:
		return
	}

	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	req := s.pending[0]
	s.pending = s.pending[1:]
	if s.slot.stage != nil {
		s.slot.stage.Destroy()
		s.slot.stage = nil
	}
	s.staged, s.saving = false, false
	s.mu.Unlock()

	if req.Callback != nil {
		req.Callback(res.success, req.Width, req.Height, req.Filename)
	}
}

func (s *Screenshot) startSave() {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	req := s.pending[0]
	stage := s.slot.stage
	s.saving = true
	s.mu.Unlock()

	go func() {
		data, linesize, ok := stage.Map()
		var success bool
		if ok {
			success = s.save(data, int(req.Width), int(req.Height), linesize, req.Filename)
			stage.Unmap()
		} else {
			log.Warn("screenshot: stage map failed", "filename", req.Filename)
		}
		s.results <- saveResult{success: success}
	}()
}

func (s *Screenshot) renderAndStage() {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	req := s.pending[0]
	s.mu.Unlock()

	drawW, drawH := int(req.Width), int(req.Height)
	if drawW <= 0 || drawH <= 0 {
		drawW, drawH = req.Source.Size()
		req.Width, req.Height = uint32(drawW), uint32(drawH)
	}
	if drawW <= 0 || drawH <= 0 {
		return
	}

	s.ctx.Enter()
	defer s.ctx.Leave()

	if s.slot.tr == nil {
		s.slot.tr = s.ctx.CreateTexRender()
	}
	s.slot.tr.Reset()
	if !s.slot.tr.Begin(drawW, drawH) {
		return
	}
	srcW, srcH, rendered := s.ctx.RenderSource(req.Source, drawW, drawH)
	s.slot.tr.End()
	if !rendered || srcW <= 0 || srcH <= 0 {
		return
	}

	s.mu.Lock()
	if s.slot.stage == nil {
		s.slot.stage = s.ctx.CreateStageSurface(drawW, drawH)
	}
	s.slot.stage.Stage(s.slot.tr.Texture())
	s.staged = true
	s.mu.Unlock()
}
