// Package indicator implements the Indicator Manager of spec.md §4.5: one
// RGBA bitmap per indicator kind, a dirty flag per kind, and the welcome
// ("ENABLED") bitmap's hotkey-dependent regeneration.
package indicator

import (
	"fmt"
	"sync"

	"github.com/anvilforge/rig/internal/logging"
	"github.com/anvilforge/rig/internal/protocol"
)

var log = logging.L("indicator")

// Bitmap is a fully-decoded RGBA image. Per spec.md's Data Model invariant,
// a bitmap for a kind is either absent (logged) or fully decoded RGBA —
// there is no partially-loaded state.
type Bitmap struct {
	Width, Height int
	Pixels        []byte // RGBA, len == Width*Height*4
}

// Composer builds a bitmap for one indicator kind from resource assets
// (color bar, icon, optional live badge) plus rendered caption/hotkey-help
// text. The actual GDI+ text/image painting is an external collaborator
// per spec.md §1 ("Non-goals"); Composer is the seam a real renderer
// implements.
type Composer interface {
	Compose(kind protocol.IndicatorKind, hotkeyHelp string) (Bitmap, error)
}

type entry struct {
	bitmap  Bitmap
	present bool
	dirty   bool
}

// Manager owns one bitmap per indicator kind; a single manager-wide
// RWMutex guards every entry (coarser than one lock per entry).
type Manager struct {
	composer Composer
	mu       sync.RWMutex
	entries  map[protocol.IndicatorKind]*entry
	hotkeyHelp string
}

// NewManager creates a Manager that will compose bitmaps via composer.
func NewManager(composer Composer) *Manager {
	return &Manager{
		composer: composer,
		entries:  make(map[protocol.IndicatorKind]*entry),
	}
}

// allKinds enumerates the closed indicator set, NONE excluded (NONE has no
// bitmap — it disables drawing, per spec.md §3 invariant #1).
var allKinds = []protocol.IndicatorKind{
	protocol.IndicatorCapturing,
	protocol.IndicatorMicIdle,
	protocol.IndicatorMicActive,
	protocol.IndicatorMicMuted,
	protocol.IndicatorEnabled,
	protocol.IndicatorBookmark,
	protocol.IndicatorCacheLimit,
	protocol.IndicatorClipProcessing,
	protocol.IndicatorClipProcessed,
	protocol.IndicatorStreamStarted,
	protocol.IndicatorStreamStopped,
	protocol.IndicatorStreaming,
	protocol.IndicatorStreamMicIdle,
	protocol.IndicatorStreamMicActive,
	protocol.IndicatorStreamMicMuted,
	protocol.IndicatorScreenshotProcessing,
	protocol.IndicatorScreenshotSaved,
	protocol.IndicatorTutorial,
	protocol.IndicatorForwardBuffer,
}

// Kinds returns the closed set of indicator kinds a Manager ever composes
// a bitmap for (NONE excluded), for callers that need to enumerate them
// without reaching into package internals.
func Kinds() []protocol.IndicatorKind {
	return allKinds
}

// LoadImages composes every bitmap once at startup. It fails (a "Fatal"
// error per spec.md §7) if any required resource is missing; the caller
// must then keep the process running without rendering, per spec.md §7's
// user-visible behaviour.
func (m *Manager) LoadImages() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, kind := range allKinds {
		bmp, err := m.composer.Compose(kind, m.hotkeyHelp)
		if err != nil {
			log.Error("failed to compose indicator bitmap", "kind", kind, "error", err)
			return fmt.Errorf("indicator: load_images: compose %v: %w", kind, err)
		}
		m.entries[kind] = &entry{bitmap: bmp, present: true, dirty: true}
	}
	log.Info("indicator images loaded", "count", len(allKinds))
	return nil
}

// UpdateImages recomposes only the welcome (ENABLED) bitmap, and marks it
// dirty, when the hotkey help text has changed. Other kinds are generated
// once at startup (spec.md §4.5).
func (m *Manager) UpdateImages(hotkeyHelp string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hotkeyHelp == m.hotkeyHelp {
		return
	}
	m.hotkeyHelp = hotkeyHelp

	bmp, err := m.composer.Compose(protocol.IndicatorEnabled, hotkeyHelp)
	if err != nil {
		log.Warn("failed to recompose welcome bitmap", "error", err)
		if e, ok := m.entries[protocol.IndicatorEnabled]; ok {
			e.present = false
		}
		return
	}
	m.entries[protocol.IndicatorEnabled] = &entry{bitmap: bmp, present: true, dirty: true}
}

// GetImage returns the bitmap for kind, if present.
func (m *Manager) GetImage(kind protocol.IndicatorKind) (Bitmap, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[kind]
	if !ok || !e.present {
		return Bitmap{}, false
	}
	return e.bitmap, true
}

// ImageUpdated reports and does not clear the per-kind dirty flag.
func (m *Manager) ImageUpdated(kind protocol.IndicatorKind) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[kind]
	return ok && e.dirty
}

// ResetImageUpdated clears the dirty flag for kind, so back-ends know not
// to re-upload the texture again until the next change.
func (m *Manager) ResetImageUpdated(kind protocol.IndicatorKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[kind]; ok {
		e.dirty = false
	}
}
