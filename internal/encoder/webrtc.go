package encoder

import (
	"github.com/pion/rtcp"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
)

// TrackSink pushes encoded frames produced by a VideoEncoder onto a
// pion WebRTC sample track and turns incoming PLI/FIR feedback into a
// ForceKeyframe request the next Encode call honors (spec.md §4.10's
// WebRTC adapter is named an out-of-scope collaborator in §1; this is the
// concrete boundary between our encoder contract and a real peer
// connection).
type TrackSink struct {
	track         *webrtc.TrackLocalStaticSample
	forceKeyframe chan struct{}
}

// NewTrackSink wraps a TrackLocalStaticSample created for an H264 codec.
func NewTrackSink(track *webrtc.TrackLocalStaticSample) *TrackSink {
	return &TrackSink{
		track:         track,
		forceKeyframe: make(chan struct{}, 1),
	}
}

// OnEncodedFrame is registered as a VideoEncoder's EncodeCompleteCallback:
// it writes the Annex-B payload straight to the track as one sample.
func (t *TrackSink) OnEncodedFrame(frame EncodedFrame) {
	_ = t.track.WriteSample(media.Sample{
		Data:     frame.Data,
		Duration: 0, // timing comes from the RTP packetizer's clock rate, not a fixed per-sample duration
	})
}

// HandleRTCP inspects a decoded RTCP packet list for PLI/FIR and requests
// a keyframe on the next Encode call if either is present.
func (t *TrackSink) HandleRTCP(packets []rtcp.Packet) {
	for _, pkt := range packets {
		switch pkt.(type) {
		case *rtcp.PictureLossIndication, *rtcp.FullIntraRequest:
			select {
			case t.forceKeyframe <- struct{}{}:
			default:
			}
			return
		}
	}
}

// ConsumeForceKeyframe reports (and clears) whether feedback requested a
// keyframe since the last call; pacedEncodeLoop checks this before
// building the frameTypes slice it passes to Encode.
func (t *TrackSink) ConsumeForceKeyframe() bool {
	select {
	case <-t.forceKeyframe:
		return true
	default:
		return false
	}
}

// frameTypesFor builds the FrameType slice Encode expects, forcing a
// keyframe when feedback requested one or the caller asks for one
// directly (e.g. a fresh connection's first frame).
func frameTypesFor(forceKeyframe bool) []FrameType {
	if forceKeyframe {
		return []FrameType{FrameTypeKey}
	}
	return []FrameType{FrameTypeDelta}
}

// pacedEncodeLoop is the glue a capture pipeline stage runs: pull frames
// off a channel as they arrive and push them through enc, requesting a
// keyframe whenever sink has one pending. Completed samples reach the track
// only through enc's registered callback (such as sink.OnEncodedFrame).
// It is unexported and has no caller outside this file.
func pacedEncodeLoop(enc VideoEncoder, sink *TrackSink, frames <-chan RawFrame, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			forceKeyframe := sink.ConsumeForceKeyframe()
			if enc.Encode(frame, frameTypesFor(forceKeyframe)) != ResultOk {
				log.Warn("encode failed, dropping frame", "timestamp_us", frame.TimestampUs)
			}
		}
	}
}
