package recording

import "github.com/anvilforge/rig/internal/protocol"

// StaticMicEnumerator is the production default MicEnumerator: there is no
// real cross-platform audio-device enumeration API in this stack (the
// same gap SoftwareMicSource documents for capture itself), so it reports
// a single synthesized "default" device rather than querying real
// hardware. cmd/capturehost wires this unconditionally today.
type StaticMicEnumerator struct{}

func (StaticMicEnumerator) Enumerate() ([]protocol.MicDevice, error) {
	return []protocol.MicDevice{{ID: "default", Name: "Default Microphone"}}, nil
}
