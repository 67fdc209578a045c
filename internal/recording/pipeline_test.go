package recording

import (
	"testing"

	"github.com/anvilforge/rig/internal/capture"
	"github.com/anvilforge/rig/internal/encoder"
)

type fakeFrameEncoder struct {
	cb          encoder.EncodeCompleteCallback
	lastFrame   encoder.RawFrame
	encodeCalls int
}

func (f *fakeFrameEncoder) Encode(frame encoder.RawFrame, frameTypes []encoder.FrameType) encoder.Result {
	f.lastFrame = frame
	f.encodeCalls++
	return encoder.ResultOk
}

func (f *fakeFrameEncoder) RegisterEncodeCompleteCallback(cb encoder.EncodeCompleteCallback) {
	f.cb = cb
}

func TestFramePipelineForwardEncodesEachFrame(t *testing.T) {
	enc := &fakeFrameEncoder{}
	outputs := NewFileOutputFactory(&fakeSink{})
	p := NewFramePipeline(enc, outputs)

	p.Forward(capture.Frame{Width: 1920, Height: 1080, Data: []byte{1, 2, 3}, TimestampNs: 5000})

	if enc.encodeCalls != 1 {
		t.Fatalf("encodeCalls = %d, want 1", enc.encodeCalls)
	}
	if enc.lastFrame.Width != 1920 || enc.lastFrame.Height != 1080 {
		t.Fatalf("lastFrame dims = %dx%d, want 1920x1080", enc.lastFrame.Width, enc.lastFrame.Height)
	}
	if enc.lastFrame.TimestampUs != 5 {
		t.Fatalf("TimestampUs = %d, want 5", enc.lastFrame.TimestampUs)
	}
}

func TestFramePipelineRoutesEncodedDataToLiveOutputs(t *testing.T) {
	enc := &fakeFrameEncoder{}
	outputs := NewFileOutputFactory(&fakeSink{})
	NewFramePipeline(enc, outputs)

	muxer := outputs.NewMuxerOutput("clip.mp4", nil)
	if err := muxer.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	buffer := outputs.NewBufferOutput("buffer.mp4", nil)
	if err := buffer.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	enc.cb(encoder.EncodedFrame{Data: []byte("nal")})

	fo := muxer.(*fileOutput)
	if fo.buf.String() != "nal" {
		t.Fatalf("muxer buffer = %q, want nal", fo.buf.String())
	}
	bo := buffer.(*bufferOutput)
	if string(bo.ring) != "nal" {
		t.Fatalf("buffer ring = %q, want nal", bo.ring)
	}
}
