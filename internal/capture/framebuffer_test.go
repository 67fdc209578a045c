package capture

import (
	"testing"

	"github.com/anvilforge/rig/internal/protocol"
)

func fixedClock(ns int64) MonotonicNow {
	return func() int64 { return ns }
}

func TestFramebufferSourceDispatchesFrameAfterHeaderAndPayload(t *testing.T) {
	var got Frame
	f := &FramebufferSource{now: fixedClock(123)}
	f.sink = func(frame Frame) { got = frame }

	header, err := protocol.EncodeFramebufferInfo(protocol.FramebufferInfo{Width: 4, Height: 2, LineSize: 16})
	if err != nil {
		t.Fatalf("EncodeFramebufferInfo: %v", err)
	}
	f.handleMessage(header)

	payload := make([]byte, 32)
	for i := range payload {
		payload[i] = byte(i)
	}
	f.handleMessage(payload)

	if got.Width != 4 || got.Height != 2 || got.LineSize != 16 {
		t.Fatalf("got = %+v, want width=4 height=2 line_size=16", got)
	}
	if got.TimestampNs != 123 {
		t.Fatalf("TimestampNs = %d, want 123", got.TimestampNs)
	}
	if len(got.Data) != len(payload) {
		t.Fatalf("len(Data) = %d, want %d", len(got.Data), len(payload))
	}
}

func TestFramebufferSourceDropsShortPayloadAndAwaitsFreshHeader(t *testing.T) {
	var calls int
	f := &FramebufferSource{now: fixedClock(0)}
	f.sink = func(frame Frame) { calls++ }

	header, _ := protocol.EncodeFramebufferInfo(protocol.FramebufferInfo{Width: 4, Height: 2, LineSize: 16})
	f.handleMessage(header)
	f.handleMessage(make([]byte, 4)) // too short: line_size*height = 32

	if calls != 0 {
		t.Fatalf("calls = %d, want 0 for a short payload", calls)
	}

	f.mu.Lock()
	haveMetadata := f.haveMetadata
	f.mu.Unlock()
	if haveMetadata {
		t.Fatal("haveMetadata should reset to false after a short payload")
	}
}

func TestFramebufferSourceIgnoresNonHeaderBeforeMetadata(t *testing.T) {
	var calls int
	f := &FramebufferSource{now: fixedClock(0)}
	f.sink = func(frame Frame) { calls++ }

	f.handleMessage([]byte("not a header"))
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
	f.mu.Lock()
	haveMetadata := f.haveMetadata
	f.mu.Unlock()
	if haveMetadata {
		t.Fatal("haveMetadata should remain false for a non-header message")
	}
}

func TestFramebufferSourceMarksDiedOnDisconnect(t *testing.T) {
	f := &FramebufferSource{now: fixedClock(0)}
	f.died.Store(false)
	f.handleMessage(nil)
	if !f.died.Load() {
		t.Fatal("died should be true after a nil (disconnect) message")
	}
}
