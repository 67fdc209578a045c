package recording

import (
	"github.com/anvilforge/rig/internal/capture"
	"github.com/anvilforge/rig/internal/encoder"
)

// frameEncoder is the subset of encoder.VideoEncoder the data-plane
// pipeline drives per frame, kept narrow so tests can fake it without the
// full WebRTC-shaped adapter surface.
type frameEncoder interface {
	Encode(frame encoder.RawFrame, frameTypes []encoder.FrameType) encoder.Result
	RegisterEncodeCompleteCallback(cb encoder.EncodeCompleteCallback)
}

// writableOutput is the extra Write method fileOutput/bufferOutput expose
// beyond the Output/BufferOutput interfaces Controller sees.
type writableOutput interface {
	Write(data []byte) error
}

// FramePipeline is the data-plane counterpart to Controller: it encodes
// each frame FramebufferGameCapture forwards and fans the result out to
// whichever outputs FileOutputFactory currently has live. Controller
// itself only ever touches settings and lifecycle, never frame bytes
// (spec.md §4.9's control/data-plane split), so this wiring lives
// alongside it rather than inside Controller.
type FramePipeline struct {
	enc     frameEncoder
	outputs *FileOutputFactory
}

// NewFramePipeline binds a FramePipeline and registers its encode-complete
// callback on enc immediately.
func NewFramePipeline(enc frameEncoder, outputs *FileOutputFactory) *FramePipeline {
	p := &FramePipeline{enc: enc, outputs: outputs}
	enc.RegisterEncodeCompleteCallback(p.onEncoded)
	return p
}

// Forward is the capture.FrameSink FramebufferGameCapture should be
// constructed with: it encodes the incoming frame and relies on
// onEncoded to route the result to the live outputs.
func (p *FramePipeline) Forward(f capture.Frame) {
	p.enc.Encode(encoder.RawFrame{
		Width:       int(f.Width),
		Height:      int(f.Height),
		TimestampUs: f.TimestampNs / 1000,
		Data:        f.Data,
	}, []encoder.FrameType{encoder.FrameTypeDelta})
}

func (p *FramePipeline) onEncoded(frame encoder.EncodedFrame) {
	if muxer := p.outputs.CurrentMuxer(); muxer != nil {
		if err := muxer.Write(frame.Data); err != nil {
			log.Warn("recording: write to muxer output failed", "error", err)
		}
	}
	if buffer := p.outputs.CurrentBuffer(); buffer != nil {
		if err := buffer.Write(frame.Data); err != nil {
			log.Warn("recording: write to buffer output failed", "error", err)
		}
	}
}
