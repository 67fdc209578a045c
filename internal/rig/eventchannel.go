package rig

import (
	"sync"

	"github.com/anvilforge/rig/internal/ipc"
	"github.com/anvilforge/rig/internal/protocol"
)

// EventChannel is the RiG -> Forge event channel of spec.md §4.3: a
// fire-and-forget JSON stream. Unlike the CH -> Forge channel, this one is
// lossy — if the pipe is not yet open, writes are dropped, not queued.
type EventChannel struct {
	mu     sync.Mutex
	client *ipc.Client
	name   string
}

// NewEventChannel creates an EventChannel with no pipe name. The pipe is
// not named or opened until Attach is called (spec.md §4.2's forge_info command
// supplies the pipe name at runtime).
func NewEventChannel() *EventChannel {
	return &EventChannel{}
}

// Attach (re)opens the event pipe under name, closing any previous
// connection first. Matches the forge_info command's "attach/switch the
// Anvil event pipe name" effect.
func (ec *EventChannel) Attach(name string) error {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if ec.client != nil {
		ec.client.Close()
	}
	ec.name = name
	ec.client = ipc.NewClient(name)

	if err := ec.client.Open(); err != nil {
		log.Warn("forge event pipe not yet available", "pipe", name, "error", err)
		return nil // no queue and no re-dial: Send drops events until the next Attach connects
	}
	return nil
}

// Send renders ev and writes it, best-effort. If the pipe is not
// connected, the event is dropped (not queued), per spec.md §4.3.
func (ec *EventChannel) Send(ev protocol.Event) {
	data, err := ev.Marshal()
	if err != nil {
		log.Warn("failed to marshal forge event", "event", ev.Event, "error", err)
		return
	}

	ec.mu.Lock()
	client := ec.client
	ec.mu.Unlock()

	if client == nil {
		log.Debug("forge event dropped: no pipe attached", "event", ev.Event)
		return
	}
	if !client.Write(data) {
		log.Debug("forge event dropped: pipe not connected", "event", ev.Event)
	}
}

// Close tears down the underlying client connection.
func (ec *EventChannel) Close() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if ec.client != nil {
		ec.client.Close()
		ec.client = nil
	}
}
