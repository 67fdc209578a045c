package encoder

// NALFragment describes one NAL unit's position within a fragmentized
// buffer: Offset and Length exclude the Annex-B start code, matching
// libwebrtc's RTPFragmentationHeader (x264.cpp's RTPFragmentize).
type NALFragment struct {
	Offset int
	Length int
}

// NAL is one encoder-emitted NAL unit, start code and payload together, as
// x264/NVENC hand them back (Annex-B: 0x000001 or 0x00000001 prefix).
type NAL struct {
	Payload       []byte
	LongStartCode bool // true selects a 4-byte start code, false a 3-byte one
}

// Fragmentizer accumulates encoded NAL units into a single Annex-B buffer
// and the fragmentation header describing each unit's offset (past its
// start code) and length. The backing buffer is reused and only ever
// grown across calls within a stream, never shrunk, avoiding a realloc on
// every frame once the working set size is reached.
type Fragmentizer struct {
	buf []byte
}

// Fragmentize copies nals into the fragmentizer's buffer in order and
// returns the concatenated bytes alongside one NALFragment per input NAL.
// The returned slice aliases the fragmentizer's internal buffer and is
// only valid until the next call to Fragmentize.
func (f *Fragmentizer) Fragmentize(nals []NAL) ([]byte, []NALFragment) {
	required := 0
	for _, nal := range nals {
		required += len(nal.Payload)
	}
	if cap(f.buf) < required {
		f.buf = make([]byte, 0, required)
	} else {
		f.buf = f.buf[:0]
	}

	fragments := make([]NALFragment, len(nals))
	length := 0
	for i, nal := range nals {
		startCodeLength := 3
		if nal.LongStartCode {
			startCodeLength = 4
		}
		fragments[i] = NALFragment{
			Offset: length + startCodeLength,
			Length: len(nal.Payload) - startCodeLength,
		}
		length += len(nal.Payload)
		f.buf = append(f.buf, nal.Payload...)
	}
	return f.buf, fragments
}
