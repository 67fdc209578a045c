package recording

import "sync"

// SoftwareVideoSubsystem is the production default VideoSubsystem: there is
// no real OBS-equivalent compositing device in this stack (the same gap
// internal/overlay.SoftwareBackend documents for the RiG side), so it just
// records the requested dimensions instead of issuing any graphics calls.
// It is the honest stand-in a real compositor would replace, not a test
// fake: cmd/capturehost wires it unconditionally today.
type SoftwareVideoSubsystem struct {
	mu   sync.Mutex
	dims Dimensions
}

// NewSoftwareVideoSubsystem constructs an idle subsystem.
func NewSoftwareVideoSubsystem() *SoftwareVideoSubsystem {
	return &SoftwareVideoSubsystem{}
}

func (s *SoftwareVideoSubsystem) Reset(dims Dimensions) error {
	s.mu.Lock()
	s.dims = dims
	s.mu.Unlock()
	return nil
}

// Dims reports the dimensions from the last Reset, for callers that need
// to size downstream buffers without a real compositor to query.
func (s *SoftwareVideoSubsystem) Dims() Dimensions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dims
}

// SoftwareMicSource is the production default MicSource: no real platform
// audio-capture API is available in this stack, so it tracks the settings
// a real device would apply (mute state, routing, bound key combinations)
// without opening any device, the same honest-stand-in pattern
// internal/overlay.SoftwareBackend uses for graphics.
type SoftwareMicSource struct {
	mu         sync.Mutex
	settings   map[string]any
	muted      bool
	routed     bool
	pttBound   bool
	pttCombo   KeyCombination
	contBound  bool
	contCombo  KeyCombination
}

// NewSoftwareMicSource constructs a mic source with no settings applied.
func NewSoftwareMicSource() *SoftwareMicSource {
	return &SoftwareMicSource{}
}

func (s *SoftwareMicSource) ApplySettings(settings map[string]any) error {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return nil
}

func (s *SoftwareMicSource) SetMuted(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
}

func (s *SoftwareMicSource) BindPTT(combo KeyCombination, active bool) {
	s.mu.Lock()
	s.pttBound = active
	s.pttCombo = combo
	s.mu.Unlock()
}

func (s *SoftwareMicSource) BindContinuous(combo KeyCombination, active bool) {
	s.mu.Lock()
	s.contBound = active
	s.contCombo = combo
	s.mu.Unlock()
}

func (s *SoftwareMicSource) SetRouted(routed bool) {
	s.mu.Lock()
	s.routed = routed
	s.mu.Unlock()
}

// Muted reports the last SetMuted value, for diagnostics and tests.
func (s *SoftwareMicSource) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Routed reports the last SetRouted value.
func (s *SoftwareMicSource) Routed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routed
}
