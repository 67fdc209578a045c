package overlay

import (
	"fmt"
	"sync"

	"github.com/anvilforge/rig/internal/indicator"
	"github.com/anvilforge/rig/internal/protocol"
)

// SoftwareBackend is an in-memory Backend used off-Windows and in tests:
// it tracks which textures exist and what was drawn last without issuing
// any real GPU calls. It still enforces the same ordering contract
// (Init before draw, kind must have a composed bitmap) so callers can be
// exercised end to end without a graphics device.
type SoftwareBackend struct {
	mu       sync.Mutex
	composer *Composer
	textures map[protocol.IndicatorKind]indicator.Bitmap
	ready    bool

	lastIndicator protocol.IndicatorKind
	lastAlpha     float64
	lastChannel   Channel
}

// NewSoftwareBackend creates an un-initialized software backend bound to
// composer (typically shared with the caller's own Composer instance).
func NewSoftwareBackend(composer *Composer) *SoftwareBackend {
	return &SoftwareBackend{
		composer: composer,
		textures: make(map[protocol.IndicatorKind]indicator.Bitmap),
	}
}

func (b *SoftwareBackend) Init(mgr *indicator.Manager) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	textures := make(map[protocol.IndicatorKind]indicator.Bitmap, len(indicator.Kinds()))
	for _, kind := range indicator.Kinds() {
		bmp, ok := mgr.GetImage(kind)
		if !ok {
			continue
		}
		textures[kind] = bmp
	}
	b.textures = textures
	b.ready = true
	return nil
}

func (b *SoftwareBackend) Free() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.textures = make(map[protocol.IndicatorKind]indicator.Bitmap)
	b.ready = false
}

func (b *SoftwareBackend) DrawIndicator(kind protocol.IndicatorKind, alpha float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ready {
		return fmt.Errorf("overlay: draw indicator before Init")
	}
	if _, ok := b.textures[kind]; !ok {
		return fmt.Errorf("overlay: no texture for indicator kind %v", kind)
	}
	b.lastIndicator = kind
	b.lastAlpha = alpha
	return nil
}

func (b *SoftwareBackend) DrawOverlay(channel Channel) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ready {
		return false, fmt.Errorf("overlay: draw overlay before Init")
	}
	drew := b.composer.Draw(channel, func(Frame) {})
	if drew {
		b.lastChannel = channel
	}
	return drew, nil
}

func (b *SoftwareBackend) UpdateOverlay(channel Channel, frame Frame) error {
	b.composer.Buffer(channel, frame)
	return nil
}

func (b *SoftwareBackend) UpdateIndicatorTextures(mgr *indicator.Manager) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for kind := range b.textures {
		if !mgr.ImageUpdated(kind) {
			continue
		}
		bmp, ok := mgr.GetImage(kind)
		if !ok {
			continue
		}
		b.textures[kind] = bmp
		mgr.ResetImageUpdated(kind)
	}
	return nil
}

// LastIndicator reports the kind/alpha most recently passed to
// DrawIndicator, for tests.
func (b *SoftwareBackend) LastIndicator() (protocol.IndicatorKind, float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastIndicator, b.lastAlpha
}
