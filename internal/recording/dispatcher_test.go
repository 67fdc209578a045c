package recording

import (
	"encoding/json"
	"testing"

	"github.com/anvilforge/rig/internal/protocol"
)

type fakeMicEnumerator struct {
	mics []protocol.MicDevice
	err  error
}

func (f *fakeMicEnumerator) Enumerate() ([]protocol.MicDevice, error) {
	return f.mics, f.err
}

func TestDispatcherConnectAppliesAnvilAndEventPipes(t *testing.T) {
	ctrl, anvil, _, _, _, _ := newTestController()
	d := NewDispatcher(ctrl, &fakeMicEnumerator{})

	d.Handle([]byte(`{"command":"connect","anvil_pipe":"AnvilRenderer123","event_pipe":"ForgeEvents"}`))

	anvil.mu.Lock()
	connected, forgeInfo := anvil.connected, anvil.forgeInfo
	anvil.mu.Unlock()
	if connected != "AnvilRenderer123" {
		t.Fatalf("connected = %q, want AnvilRenderer123", connected)
	}
	if forgeInfo != "ForgeEvents" {
		t.Fatalf("forgeInfo = %q, want ForgeEvents", forgeInfo)
	}
}

func TestDispatcherCaptureNewProcessExtractsProcessIDAndMuxerSettings(t *testing.T) {
	ctrl, _, _, gc, _, outputs := newTestController()
	d := NewDispatcher(ctrl, &fakeMicEnumerator{})

	d.Handle([]byte(`{"command":"capture_new_process","game_capture":{"process_id":4242},"encoder":{"bitrate":6000},"filename":"a.mp4","muxer_settings":""}`))

	if gc.settings.ProcessID != 4242 {
		t.Fatalf("ProcessID = %d, want 4242", gc.settings.ProcessID)
	}
	if outputs.muxer == nil {
		t.Fatal("expected a muxer output to be created")
	}
}

func TestDispatcherQueryMicsRepliesWithEnumeratedDevices(t *testing.T) {
	ctrl, _, events, _, _, _ := newTestController()
	mics := &fakeMicEnumerator{mics: []protocol.MicDevice{{ID: "default", Name: "Default Mic"}}}
	d := NewDispatcher(ctrl, mics)

	d.Handle([]byte(`{"command":"query_mics"}`))

	names := events.names()
	if len(names) != 1 || names[0] != protocol.EventMicList {
		t.Fatalf("events = %v, want a single %s event", names, protocol.EventMicList)
	}
}

func TestDispatcherUnknownCommandIsIgnored(t *testing.T) {
	ctrl, _, events, _, _, _ := newTestController()
	d := NewDispatcher(ctrl, &fakeMicEnumerator{})

	d.Handle([]byte(`{"command":"not_a_real_command"}`))

	if len(events.names()) != 0 {
		t.Fatal("an unknown command must not emit any event")
	}
}

func TestDispatcherMalformedJSONIsIgnored(t *testing.T) {
	ctrl, _, _, _, _, _ := newTestController()
	d := NewDispatcher(ctrl, &fakeMicEnumerator{})

	d.Handle([]byte(`{not json`))
}

func TestParseMuxerSettingsAcceptsObjectOrEmptyPlaceholder(t *testing.T) {
	if got := protocol.ParseMuxerSettings(json.RawMessage(`""`)); len(got) != 0 {
		t.Fatalf("got %v, want empty map for the empty-string placeholder", got)
	}
	got := protocol.ParseMuxerSettings(json.RawMessage(`{"container":"mp4"}`))
	if got["container"] != "mp4" {
		t.Fatalf("got %v, want container=mp4", got)
	}
}
