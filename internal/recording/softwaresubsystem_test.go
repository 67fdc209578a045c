package recording

import "testing"

func TestSoftwareVideoSubsystemRecordsLastReset(t *testing.T) {
	s := NewSoftwareVideoSubsystem()
	if err := s.Reset(Dimensions{Width: 1920, Height: 1080}); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if got := s.Dims(); got.Width != 1920 || got.Height != 1080 {
		t.Fatalf("Dims() = %+v, want 1920x1080", got)
	}
}

func TestSoftwareMicSourceTracksMuteAndRoutingState(t *testing.T) {
	m := NewSoftwareMicSource()
	if err := m.ApplySettings(map[string]any{"device": "default"}); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	m.SetMuted(true)
	m.SetRouted(true)

	if !m.Muted() {
		t.Fatal("expected Muted() to be true")
	}
	if !m.Routed() {
		t.Fatal("expected Routed() to be true")
	}

	m.BindPTT(KeyCombination{VK: 0x20}, true)
	m.BindContinuous(KeyCombination{VK: 0x10}, false)
}
