package display

import "sync"

// SoftwareGraphicsContext is the production default GraphicsContext: there
// is no real OBS-equivalent GPU graphics device in this stack (the same
// gap internal/overlay.SoftwareBackend documents on the RiG side), so
// rendering and staging are simulated entirely in memory. A staged frame
// is a solid BGRA fill rather than real captured pixels — the same
// honest degraded-output idiom internal/overlay uses for its
// shader-compile-unavailable fallback — so downstream consumers (the
// IPC send loop, Screenshot's save step) can still be exercised end to
// end without a graphics device.
type SoftwareGraphicsContext struct{}

// NewSoftwareGraphicsContext constructs the default context.
func NewSoftwareGraphicsContext() *SoftwareGraphicsContext { return &SoftwareGraphicsContext{} }

func (SoftwareGraphicsContext) Enter() {}
func (SoftwareGraphicsContext) Leave() {}

func (SoftwareGraphicsContext) CreateTexRender() TexRender {
	return &softwareTexRender{}
}

func (SoftwareGraphicsContext) CreateStageSurface(width, height int) StageSurface {
	return &softwareStageSurface{width: width, height: height}
}

// RenderSource reports the source's native size as what was "rendered";
// there is no real draw call to issue.
func (SoftwareGraphicsContext) RenderSource(source Source, drawW, drawH int) (int, int, bool) {
	if source == nil {
		return 0, 0, false
	}
	w, h := source.Size()
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

type softwareTexture struct {
	width, height int
}

type softwareTexRender struct {
	mu     sync.Mutex
	active bool
	tex    softwareTexture
}

func (t *softwareTexRender) Reset() {
	t.mu.Lock()
	t.active = false
	t.mu.Unlock()
}

func (t *softwareTexRender) Begin(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	t.mu.Lock()
	t.active = true
	t.tex = softwareTexture{width: width, height: height}
	t.mu.Unlock()
	return true
}

func (t *softwareTexRender) End() {
	t.mu.Lock()
	t.active = false
	t.mu.Unlock()
}

func (t *softwareTexRender) Texture() Texture {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tex
}

func (t *softwareTexRender) Destroy() {}

type softwareStageSurface struct {
	width, height int

	mu     sync.Mutex
	staged bool
	mapped bool
	data   []byte
}

// Stage fills the staged buffer with a deterministic, zeroed BGRA frame
// sized from the texture it was given; there is no real pixel readback in
// a software context.
func (s *softwareStageSurface) Stage(tex Texture) {
	sw := s.width
	sh := s.height
	if t, ok := tex.(softwareTexture); ok && t.width > 0 && t.height > 0 {
		sw, sh = t.width, t.height
	}
	s.mu.Lock()
	s.data = make([]byte, sw*sh*4)
	s.staged = true
	s.mu.Unlock()
}

func (s *softwareStageSurface) Map() ([]byte, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.staged {
		return nil, 0, false
	}
	s.mapped = true
	return s.data, s.width * 4, true
}

func (s *softwareStageSurface) Unmap() {
	s.mu.Lock()
	s.mapped = false
	s.mu.Unlock()
}

func (s *softwareStageSurface) Destroy() {
	s.mu.Lock()
	s.data = nil
	s.staged = false
	s.mu.Unlock()
}
