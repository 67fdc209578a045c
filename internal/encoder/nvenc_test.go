package encoder

import "testing"

func TestSurfacePoolSizeFormula(t *testing.T) {
	cases := []struct {
		frameIntervalP int
		want           int
	}{
		{frameIntervalP: 1, want: 4}, // 1*2*2 = 4, floor is also 4
		{frameIntervalP: 3, want: 12},
		{frameIntervalP: 0, want: 4}, // 0*2*2 = 0, clamped to the floor of 4
	}
	for _, c := range cases {
		if got := surfacePoolSize(c.frameIntervalP); got != c.want {
			t.Errorf("surfacePoolSize(%d) = %d, want %d", c.frameIntervalP, got, c.want)
		}
	}
}

func TestSurfacePoolLifecycle(t *testing.T) {
	p := newSurfacePool(1)
	if len(p.idle) != 4 {
		t.Fatalf("initial idle = %d, want 4", len(p.idle))
	}

	s, ok := p.acquire()
	if !ok {
		t.Fatal("acquire failed on a fresh pool")
	}
	if len(p.idle) != 3 || len(p.processing) != 1 {
		t.Fatalf("after acquire: idle=%d processing=%d, want 3/1", len(p.idle), len(p.processing))
	}

	p.markReady()
	if len(p.processing) != 0 || len(p.ready) != 1 {
		t.Fatalf("after markReady: processing=%d ready=%d, want 0/1", len(p.processing), len(p.ready))
	}

	got, ok := p.takeReady()
	if !ok || got != s {
		t.Fatalf("takeReady returned (%v, %v), want (%v, true)", got, ok, s)
	}
	if len(p.idle) != 4 || len(p.ready) != 0 {
		t.Fatalf("after takeReady: idle=%d ready=%d, want 4/0", len(p.idle), len(p.ready))
	}
}

func TestSurfacePoolExhaustion(t *testing.T) {
	p := newSurfacePool(1)
	for i := 0; i < 4; i++ {
		if _, ok := p.acquire(); !ok {
			t.Fatalf("acquire %d failed unexpectedly", i)
		}
	}
	if _, ok := p.acquire(); ok {
		t.Fatal("acquire succeeded after pool exhausted")
	}
}

func TestPickDeviceSkipsLowComputeAndMissingFeatures(t *testing.T) {
	devices := []CUDADevice{
		{Index: 0, Name: "old", ComputeMajor: 2, ComputeMinor: 1, SupportsH264: true, SupportsDynamicBitrate: true, MaxWidth: 4096, MaxHeight: 4096},
		{Index: 1, Name: "no-h264", ComputeMajor: 5, ComputeMinor: 0, SupportsH264: false, SupportsDynamicBitrate: true, MaxWidth: 4096, MaxHeight: 4096},
		{Index: 2, Name: "good", ComputeMajor: 3, ComputeMinor: 5, SupportsH264: true, SupportsDynamicBitrate: true, MaxWidth: 1920, MaxHeight: 1080},
	}

	got, ok := pickDevice(devices, 1280, 720)
	if !ok || got.Index != 2 {
		t.Fatalf("pickDevice = (%+v, %v), want device 2", got, ok)
	}
}

func TestPickDeviceRejectsTooSmallSurfaceLimit(t *testing.T) {
	devices := []CUDADevice{
		{Index: 0, Name: "small", ComputeMajor: 5, ComputeMinor: 0, SupportsH264: true, SupportsDynamicBitrate: true, MaxWidth: 640, MaxHeight: 480},
	}
	if _, ok := pickDevice(devices, 1920, 1080); ok {
		t.Fatal("pickDevice accepted a device below the requested resolution")
	}
}

type fakeNVENCSession struct {
	encodeErr      error
	reconfigureErr error
	nals           []NAL
	closed         bool
	lastBitrate    int
}

func (f *fakeNVENCSession) EncodeFrame(yuv []byte, forceKeyframe bool) ([]NAL, error) {
	return f.nals, f.encodeErr
}

func (f *fakeNVENCSession) Reconfigure(bitrateKbps int, framerate float64) error {
	f.lastBitrate = bitrateKbps
	return f.reconfigureErr
}

func (f *fakeNVENCSession) Close() { f.closed = true }

func newTestNVENCAdapter(session *fakeNVENCSession, devices []CUDADevice) *NVENCAdapter {
	return NewNVENCAdapter(
		func() []CUDADevice { return devices },
		func(device CUDADevice, settings CodecSettings, async bool) (nvencSession, error) {
			return session, nil
		},
	)
}

func TestNVENCAdapterEncodeRoundTrip(t *testing.T) {
	devices := []CUDADevice{{Index: 0, ComputeMajor: 5, SupportsH264: true, SupportsDynamicBitrate: true, MaxWidth: 1920, MaxHeight: 1080}}
	session := &fakeNVENCSession{nals: []NAL{{Payload: []byte{0, 0, 0, 1, 0x67, 1, 2}, LongStartCode: true}}}
	a := newTestNVENCAdapter(session, devices)

	if got := a.Init(CodecSettings{Width: 1280, Height: 720, StartBitrateKbps: 4000}, 4, 1200); got != ResultOk {
		t.Fatalf("Init = %v, want ResultOk", got)
	}

	var captured EncodedFrame
	a.RegisterEncodeCompleteCallback(func(frame EncodedFrame) { captured = frame })

	if got := a.Encode(RawFrame{Data: []byte{1, 2, 3}}, []FrameType{FrameTypeKey}); got != ResultOk {
		t.Fatalf("Encode = %v, want ResultOk", got)
	}
	if len(captured.Fragments) != 1 {
		t.Fatalf("captured.Fragments = %v, want 1 fragment", captured.Fragments)
	}
}

func TestNVENCAdapterInitFailsWithNoSuitableDevice(t *testing.T) {
	a := newTestNVENCAdapter(&fakeNVENCSession{}, nil)
	if got := a.Init(CodecSettings{Width: 1280, Height: 720}, 4, 1200); got != ResultError {
		t.Fatalf("Init = %v, want ResultError", got)
	}
}

func TestNVENCAdapterSetRatesRollsBackOnFailure(t *testing.T) {
	devices := []CUDADevice{{Index: 0, ComputeMajor: 5, SupportsH264: true, SupportsDynamicBitrate: true, MaxWidth: 1920, MaxHeight: 1080}}
	session := &fakeNVENCSession{reconfigureErr: errNotInitialized}
	a := newTestNVENCAdapter(session, devices)
	a.Init(CodecSettings{Width: 1280, Height: 720, StartBitrateKbps: 4000}, 4, 1200)

	if got := a.SetRates(6000, 60); got != ResultError {
		t.Fatalf("SetRates = %v, want ResultError", got)
	}
	if a.bitrateKbps != 4000 {
		t.Fatalf("bitrateKbps = %d, want rolled back to 4000", a.bitrateKbps)
	}
}
