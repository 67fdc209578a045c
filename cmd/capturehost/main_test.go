package main

import "testing"

func TestParseArgsNoArgsReturnsMinusOne(t *testing.T) {
	if _, code := parseArgs(nil); code != -1 {
		t.Fatalf("code = %d, want -1", code)
	}
}

func TestParseArgsStandaloneFlag(t *testing.T) {
	args, code := parseArgs([]string{"-standalone"})
	if code != 0 {
		t.Fatalf("code = %d, want 0", code)
	}
	if !args.standalone {
		t.Fatal("expected standalone to be true")
	}
}

func TestParseArgsTooFewArgsReturnsMinusFour(t *testing.T) {
	if _, code := parseArgs([]string{"1234"}); code != -4 {
		t.Fatalf("code = %d, want -4", code)
	}
}

func TestParseArgsBadPIDReturnsMinusTwo(t *testing.T) {
	if _, code := parseArgs([]string{"not-a-pid", "5678"}); code != -2 {
		t.Fatalf("code = %d, want -2", code)
	}
}

func TestParseArgsBadEventHandleReturnsMinusThree(t *testing.T) {
	if _, code := parseArgs([]string{"1234", "not-a-handle"}); code != -3 {
		t.Fatalf("code = %d, want -3", code)
	}
}

func TestParseArgsValidAttachMode(t *testing.T) {
	args, code := parseArgs([]string{"1234", "5678"})
	if code != 0 {
		t.Fatalf("code = %d, want 0", code)
	}
	if args.forgePID != 1234 {
		t.Fatalf("forgePID = %d, want 1234", args.forgePID)
	}
	if args.startEventHandle != 5678 {
		t.Fatalf("startEventHandle = %d, want 5678", args.startEventHandle)
	}
}
