package protocol

import (
	"bytes"
	"testing"
)

func TestParseCommandRoundTrip(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"command":"indicator","name":"bookmark"}`))
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if cmd.Command != CmdIndicator || cmd.Name != "bookmark" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestParseCommandMalformed(t *testing.T) {
	if _, err := ParseCommand([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestIndicatorByName(t *testing.T) {
	cases := map[string]IndicatorKind{
		"idle":                       IndicatorNone,
		"capturing":                  IndicatorCapturing,
		"forward_buffer_in_progress": IndicatorForwardBuffer,
	}
	for name, want := range cases {
		got, ok := IndicatorByName(name)
		if !ok || got != want {
			t.Errorf("IndicatorByName(%q) = %v, %v; want %v, true", name, got, ok, want)
		}
	}
	if _, ok := IndicatorByName("not_a_real_indicator"); ok {
		t.Error("unknown indicator name should not resolve")
	}
}

func TestFramebufferInfoRoundTrip(t *testing.T) {
	fi := FramebufferInfo{Width: 1920, Height: 1080, LineSize: 1920 * 4}
	msg, err := EncodeFramebufferInfo(fi)
	if err != nil {
		t.Fatalf("EncodeFramebufferInfo: %v", err)
	}
	if !bytes.HasPrefix(msg, []byte("FramebufferInfo")) {
		t.Fatalf("missing literal tag: %q", msg)
	}
	if msg[len(msg)-1] != 0 {
		t.Fatal("missing terminating NUL")
	}

	got, err := DecodeFramebufferInfo(msg)
	if err != nil {
		t.Fatalf("DecodeFramebufferInfo: %v", err)
	}
	if got != fi {
		t.Fatalf("got %+v, want %+v", got, fi)
	}
	if got.PayloadSize() != uint64(1920*4*1080) {
		t.Fatalf("PayloadSize = %d", got.PayloadSize())
	}
}

func TestDecodeFramebufferInfoRejectsWrongTag(t *testing.T) {
	if _, err := DecodeFramebufferInfo([]byte(`{"width":1}`)); err != ErrNotFramebufferInfo {
		t.Fatalf("expected ErrNotFramebufferInfo, got %v", err)
	}
}

func TestAudioHeaderRoundTrip(t *testing.T) {
	h := AudioHeader{StreamID: 0xdeadbeef, SampleRate: 48000, Speakers: 2, Format: 1, Frames: 960}
	buf := EncodeAudioHeader(h)
	if len(buf) != AudioHeaderSize {
		t.Fatalf("len = %d, want %d", len(buf), AudioHeaderSize)
	}
	got, err := DecodeAudioHeader(buf)
	if err != nil {
		t.Fatalf("DecodeAudioHeader: %v", err)
	}
	if got != h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
}

func TestDecodeAudioHeaderShort(t *testing.T) {
	if _, err := DecodeAudioHeader([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short packet")
	}
}

func TestEventMarshalFlattensPayload(t *testing.T) {
	ev, err := NewEvent(EventSaveQuickClip, 1234, SaveQuickClipPayload{TutorialActive: true})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	data, err := ev.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Contains(data, []byte(`"tutorial_active":true`)) {
		t.Fatalf("payload not flattened: %s", data)
	}
	if !bytes.Contains(data, []byte(`"event":"save_quick_clip"`)) {
		t.Fatalf("missing event name: %s", data)
	}
}
