package recording

import (
	"fmt"

	"github.com/anvilforge/rig/internal/encoder"
)

// codecInitializer is the subset of the WebRTC-style encoder adapters
// (encoder.X264Adapter, encoder.NVENCAdapter) the controller needs:
// (re)initialize with fresh codec parameters on every capture_new_process.
type codecInitializer interface {
	Init(settings encoder.CodecSettings, cores int, maxPayloadSize int) encoder.Result
}

// EncoderAdapter is the production VideoEncoder: it translates the
// capture_new_process command's freeform "encoder" object into the
// CodecSettings encoder.X264Adapter/NVENCAdapter already expect, rather
// than duplicating their init logic.
type EncoderAdapter struct {
	enc codecInitializer
}

// NewEncoderAdapter wraps enc (an encoder.X264Adapter or encoder.NVENCAdapter)
// as a recording.VideoEncoder.
func NewEncoderAdapter(enc codecInitializer) *EncoderAdapter {
	return &EncoderAdapter{enc: enc}
}

// ApplySettings reads width/height/bitrate_kbps/max_bitrate_kbps/framerate
// from the wire "encoder" object, defaulting anything absent, and
// (re)initializes the wrapped adapter.
func (e *EncoderAdapter) ApplySettings(settings map[string]any) error {
	codec := encoder.CodecSettings{
		Width:            intField(settings, "width", 1920),
		Height:           intField(settings, "height", 1080),
		StartBitrateKbps: intField(settings, "bitrate_kbps", 6000),
		MaxBitrateKbps:   intField(settings, "max_bitrate_kbps", 8000),
		MinBitrateKbps:   intField(settings, "min_bitrate_kbps", 1000),
		MaxFramerate:     intField(settings, "framerate", 60),
	}
	cores := intField(settings, "cores", 4)
	maxPayloadSize := intField(settings, "max_payload_size", 1200)

	if result := e.enc.Init(codec, cores, maxPayloadSize); result != encoder.ResultOk {
		return fmt.Errorf("recording: encoder init failed")
	}
	return nil
}

// intField reads a numeric field out of a generically-decoded JSON object,
// tolerating both float64 (the common case) and int (set directly by
// tests), and falling back to def for anything absent or the wrong type.
func intField(m map[string]any, key string, def int) int {
	v, ok := m[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}
