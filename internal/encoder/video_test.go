package encoder

import "testing"

func TestParsePacketizationMode(t *testing.T) {
	if got := ParsePacketizationMode("1"); got != NonInterleaved {
		t.Fatalf("ParsePacketizationMode(1) = %v, want NonInterleaved", got)
	}
	if got := ParsePacketizationMode("0"); got != SingleNalUnit {
		t.Fatalf("ParsePacketizationMode(0) = %v, want SingleNalUnit", got)
	}
	if got := ParsePacketizationMode(""); got != SingleNalUnit {
		t.Fatalf("ParsePacketizationMode('') = %v, want SingleNalUnit", got)
	}
}
