package protocol

import (
	"encoding/binary"
	"fmt"
)

// EncodeAudioHeader renders the fixed little-endian audio packet header.
func EncodeAudioHeader(h AudioHeader) []byte {
	buf := make([]byte, AudioHeaderSize)
	binary.LittleEndian.PutUint64(buf[0:8], h.StreamID)
	binary.LittleEndian.PutUint32(buf[8:12], h.SampleRate)
	binary.LittleEndian.PutUint32(buf[12:16], h.Speakers)
	binary.LittleEndian.PutUint32(buf[16:20], h.Format)
	binary.LittleEndian.PutUint32(buf[20:24], h.Frames)
	return buf
}

// DecodeAudioHeader parses the fixed header from the start of a packet,
// returning the header and the number of header bytes consumed.
func DecodeAudioHeader(packet []byte) (AudioHeader, error) {
	if len(packet) < AudioHeaderSize {
		return AudioHeader{}, fmt.Errorf("protocol: audio packet too short: %d bytes", len(packet))
	}
	return AudioHeader{
		StreamID:   binary.LittleEndian.Uint64(packet[0:8]),
		SampleRate: binary.LittleEndian.Uint32(packet[8:12]),
		Speakers:   binary.LittleEndian.Uint32(packet[12:16]),
		Format:     binary.LittleEndian.Uint32(packet[16:20]),
		Frames:     binary.LittleEndian.Uint32(packet[20:24]),
	}, nil
}
