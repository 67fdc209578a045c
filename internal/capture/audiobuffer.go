package capture

import (
	"sync"

	"github.com/anvilforge/rig/internal/ipc"
	"github.com/anvilforge/rig/internal/protocol"
)

// AudioPacket is one decoded PCM packet routed to a specific stream.
type AudioPacket struct {
	StreamID    uint64
	SampleRate  uint32
	Speakers    uint32
	Format      uint32
	Frames      uint32
	Data        []byte
	TimestampNs int64
}

// AudioSink receives decoded audio packets, one per stream-id, as they
// arrive; new == true the first time a given StreamID is seen.
type AudioSink func(packet AudioPacket, new bool)

// AudioBufferSource multiplexes independent audio streams identified by a
// u64 stream-id carried in each packet's header (spec.md §4.11,
// original_source/Crucible/AudioBufferSource.cpp). Unlike FramebufferSource
// it is pinned to one pipe name for its whole lifetime (the original reads
// the name once from its creation settings).
type AudioBufferSource struct {
	now  MonotonicNow
	sink AudioSink

	mu      sync.Mutex
	server  *ipc.Server
	streams map[uint64]struct{}
}

// NewAudioBufferSource starts an IPC server under pipeName immediately if
// non-empty, matching AudioBufferSource's constructor.
func NewAudioBufferSource(pipeName string, now MonotonicNow, sink AudioSink) *AudioBufferSource {
	a := &AudioBufferSource{now: now, sink: sink, streams: make(map[uint64]struct{})}
	if pipeName != "" {
		a.start(pipeName)
	}
	return a
}

func (a *AudioBufferSource) start(pipeName string) {
	server := ipc.NewServer(pipeName, -1, a.handleMessage)
	if err := server.Start(); err != nil {
		log.Warn("audio buffer server failed to start", "pipe", pipeName, "error", err)
		return
	}
	a.mu.Lock()
	a.server = server
	a.mu.Unlock()
}

// Stop tears down the IPC server.
func (a *AudioBufferSource) Stop() {
	a.mu.Lock()
	server := a.server
	a.mu.Unlock()
	if server != nil {
		server.Stop()
	}
}

func (a *AudioBufferSource) handleMessage(data []byte) {
	if data == nil {
		log.Warn("audio buffer server: peer disconnected")
		return
	}

	header, err := protocol.DecodeAudioHeader(data)
	if err != nil {
		log.Warn("audio buffer server: malformed packet", "error", err)
		return
	}
	pcm := data[protocol.AudioHeaderSize:]

	a.mu.Lock()
	_, seen := a.streams[header.StreamID]
	if !seen {
		a.streams[header.StreamID] = struct{}{}
		log.Info("adding new audio stream", "stream_id", header.StreamID)
	}
	a.mu.Unlock()

	if a.sink == nil {
		return
	}
	a.sink(AudioPacket{
		StreamID:    header.StreamID,
		SampleRate:  header.SampleRate,
		Speakers:    header.Speakers,
		Format:      header.Format,
		Frames:      header.Frames,
		Data:        pcm,
		TimestampNs: a.now(),
	}, !seen)
}
