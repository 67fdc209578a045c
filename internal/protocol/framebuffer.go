package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// framebufferInfoTag is the ASCII literal prefixing every framebuffer info
// header message (spec.md §3, §6).
const framebufferInfoTag = "FramebufferInfo"

// ErrNotFramebufferInfo is returned when a message does not start with the
// FramebufferInfo tag.
var ErrNotFramebufferInfo = errors.New("protocol: not a FramebufferInfo header")

// FramebufferInfo is the JSON body of the info header that precedes every
// framebuffer payload message.
type FramebufferInfo struct {
	Width    uint32 `json:"width"`
	Height   uint32 `json:"height"`
	LineSize uint32 `json:"line_size"`
}

// PayloadSize is the expected byte length of the payload message that
// follows this header (spec.md invariant #4).
func (fi FramebufferInfo) PayloadSize() uint64 {
	return uint64(fi.LineSize) * uint64(fi.Height)
}

// EncodeFramebufferInfo renders the literal tag, JSON body, and terminating
// NUL as one message, per spec.md §6.
func EncodeFramebufferInfo(fi FramebufferInfo) ([]byte, error) {
	body, err := json.Marshal(fi)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(framebufferInfoTag)+len(body)+1)
	out = append(out, framebufferInfoTag...)
	out = append(out, body...)
	out = append(out, 0)
	return out, nil
}

// DecodeFramebufferInfo parses a message produced by EncodeFramebufferInfo.
func DecodeFramebufferInfo(msg []byte) (FramebufferInfo, error) {
	if !bytes.HasPrefix(msg, []byte(framebufferInfoTag)) {
		return FramebufferInfo{}, ErrNotFramebufferInfo
	}
	rest := msg[len(framebufferInfoTag):]
	rest = bytes.TrimSuffix(rest, []byte{0})

	var fi FramebufferInfo
	if err := json.Unmarshal(rest, &fi); err != nil {
		return FramebufferInfo{}, fmt.Errorf("protocol: decode framebuffer info: %w", err)
	}
	return fi, nil
}

// AudioHeaderSize is the fixed byte length of an audio packet header
// (stream_id u64, sample_rate u32, speakers u32, format u32, frames u32),
// little-endian, per spec.md §3/§6.
const AudioHeaderSize = 8 + 4 + 4 + 4 + 4

// AudioHeader is the fixed binary header preceding interleaved PCM.
type AudioHeader struct {
	StreamID   uint64
	SampleRate uint32
	Speakers   uint32
	Format     uint32
	Frames     uint32
}
