package encoder

import "fmt"

// Result mirrors the WebRTC video encoder contract's tri-state return
// (spec.md §4.10): callers branch on Ok/Error, never on a bare bool.
type Result int

const (
	ResultOk Result = iota
	ResultError
)

// PacketizationMode controls NAL-unit slicing, parsed from the SDP/codec
// parameters the peer negotiated.
type PacketizationMode int

const (
	// SingleNalUnit forces exactly one slice per frame: every encoded
	// frame must fit in a single NAL unit before fragmentation.
	SingleNalUnit PacketizationMode = iota
	// NonInterleaved allows multiple slices per frame, sized to the
	// maximum RTP payload.
	NonInterleaved
)

// ParsePacketizationMode reads the "packetization-mode" fmtp parameter the
// way the original H264 RTP payloader does: "1" selects NonInterleaved,
// anything else (including absent) selects SingleNalUnit.
func ParsePacketizationMode(fmtpPacketizationMode string) PacketizationMode {
	if fmtpPacketizationMode == "1" {
		return NonInterleaved
	}
	return SingleNalUnit
}

// CodecSettings is the subset of negotiated codec parameters the adapters
// need at init time.
type CodecSettings struct {
	Width             int
	Height            int
	StartBitrateKbps  int
	MaxBitrateKbps    int
	MinBitrateKbps    int
	MaxFramerate      int
	PacketizationMode PacketizationMode
}

// FrameType enumerates the WebRTC frame-type hints passed into Encode,
// mirroring libwebrtc's VideoFrameType.
type FrameType int

const (
	FrameTypeDelta FrameType = iota
	FrameTypeKey
)

// RawFrame is a single unencoded video frame handed to Encode.
type RawFrame struct {
	Width       int
	Height      int
	TimestampUs int64
	Data        []byte
}

// ScalingSettings reports the resolution bounds the encoder can adapt
// within, consumed by the WebRTC stack's quality scaler.
type ScalingSettings struct {
	Enabled       bool
	MinQP, MaxQP  int
	MinResolution int
}

// EncodedFrame is the adapter's output: Annex-B NAL units plus a
// fragmentation header describing each NAL's offset (past its start code)
// and length (spec.md §4.10).
type EncodedFrame struct {
	Data        []byte
	Fragments   []NALFragment
	FrameType   FrameType
	TimestampUs int64
}

// EncodeCompleteCallback receives each encoded frame as it becomes ready.
type EncodeCompleteCallback func(frame EncodedFrame)

// VideoEncoder is the WebRTC video-encoder adapter contract both the x264
// and NVENC adapters implement (spec.md §4.10).
type VideoEncoder interface {
	Init(settings CodecSettings, cores int, maxPayloadSize int) Result
	Release() Result
	Encode(frame RawFrame, frameTypes []FrameType) Result
	SetRates(bitrateKbps int, framerate float64) Result
	RegisterEncodeCompleteCallback(cb EncodeCompleteCallback)
	GetScalingSettings() ScalingSettings
}

// errNotInitialized is returned by adapters whose Encode/SetRates is
// called before a successful Init.
var errNotInitialized = fmt.Errorf("encoder: not initialized")
