package encoder

import (
	"bytes"
	"testing"
)

func TestFragmentizeComputesOffsetsPastStartCode(t *testing.T) {
	var f Fragmentizer

	sps := NAL{Payload: []byte{0, 0, 0, 1, 0x67, 0xAA, 0xBB}, LongStartCode: true}
	slice := NAL{Payload: []byte{0, 0, 1, 0x65, 0xCC, 0xDD, 0xEE}, LongStartCode: false}

	data, frags := f.Fragmentize([]NAL{sps, slice})

	if len(frags) != 2 {
		t.Fatalf("len(frags) = %d, want 2", len(frags))
	}
	if frags[0].Offset != 4 || frags[0].Length != 3 {
		t.Fatalf("frags[0] = %+v, want offset 4 length 3", frags[0])
	}
	if frags[1].Offset != len(sps.Payload)+3 || frags[1].Length != 4 {
		t.Fatalf("frags[1] = %+v, want offset %d length 4", frags[1], len(sps.Payload)+3)
	}

	want := append(append([]byte{}, sps.Payload...), slice.Payload...)
	if !bytes.Equal(data, want) {
		t.Fatalf("data = %v, want %v", data, want)
	}
}

func TestFragmentizeBufferGrowsButNeverShrinks(t *testing.T) {
	var f Fragmentizer

	big := NAL{Payload: make([]byte, 1000), LongStartCode: true}
	_, _ = f.Fragmentize([]NAL{big})
	grownCap := cap(f.buf)

	small := NAL{Payload: []byte{0, 0, 0, 1, 0x41}, LongStartCode: true}
	data, frags := f.Fragmentize([]NAL{small})

	if cap(f.buf) < grownCap {
		t.Fatalf("buffer shrank: cap = %d, was %d", cap(f.buf), grownCap)
	}
	if len(data) != len(small.Payload) {
		t.Fatalf("len(data) = %d, want %d", len(data), len(small.Payload))
	}
	if len(frags) != 1 || frags[0].Length != 1 {
		t.Fatalf("frags = %+v, want one fragment of length 1", frags)
	}
}

func TestFragmentizeEmptyInput(t *testing.T) {
	var f Fragmentizer
	data, frags := f.Fragmentize(nil)
	if len(data) != 0 || len(frags) != 0 {
		t.Fatalf("got data=%v frags=%v, want both empty", data, frags)
	}
}
