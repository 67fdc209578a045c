package encoder

import "sync"

// CUDADevice describes one enumerated GPU candidate for the NVENC adapter
// (original_source/Crucible/NVENC/Encoder.cpp's OpenDevice).
type CUDADevice struct {
	Index                  int
	Name                   string
	ComputeMajor           int
	ComputeMinor           int
	SupportsH264           bool
	SupportsDynamicBitrate bool
	MaxWidth, MaxHeight    int
}

// computeAtLeast reports whether the device's compute capability is >= the
// given major.minor, matching OpenDevice's make_version comparison.
func (d CUDADevice) computeAtLeast(major, minor int) bool {
	return d.ComputeMajor<<4|d.ComputeMinor >= major<<4|minor
}

func (d CUDADevice) supports(width, height int) bool {
	return d.SupportsH264 && d.SupportsDynamicBitrate && d.computeAtLeast(3, 0) &&
		width <= d.MaxWidth && height <= d.MaxHeight
}

// pickDevice returns the first device satisfying NVENC's minimum
// requirements: compute >= 3.0, H.264 support, dynamic bitrate change, and
// large enough surface limits for the requested resolution.
func pickDevice(devices []CUDADevice, width, height int) (CUDADevice, bool) {
	for _, d := range devices {
		if d.supports(width, height) {
			return d, true
		}
	}
	return CUDADevice{}, false
}

// surfaceState is the idle/processing/ready lifecycle a surface pair moves
// through (NVENC/Encoder.cpp's enc->idle/processing/ready deques).
type surfaceState int

const (
	surfaceIdle surfaceState = iota
	surfaceProcessing
	surfaceReady
)

type nvencSurface struct {
	id    int
	state surfaceState
}

// surfacePool manages NVENC's input/output surface pairs through their
// idle -> processing -> ready lifecycle.
type surfacePool struct {
	mu         sync.Mutex
	idle       []*nvencSurface
	processing []*nvencSurface
	ready      []*nvencSurface
}

// surfacePoolSize is NVENC/Encoder.cpp:785's pool sizing formula: two
// NVENC encode sessions per GPU, doubled again to decrease the likelihood
// of blocking the next group of frames.
func surfacePoolSize(frameIntervalP int) int {
	n := frameIntervalP * 2 * 2
	if n < 4 {
		return 4
	}
	return n
}

func newSurfacePool(frameIntervalP int) *surfacePool {
	n := surfacePoolSize(frameIntervalP)
	p := &surfacePool{}
	for i := 0; i < n; i++ {
		p.idle = append(p.idle, &nvencSurface{id: i, state: surfaceIdle})
	}
	return p
}

func (p *surfacePool) acquire() (*nvencSurface, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.idle) == 0 {
		return nil, false
	}
	s := p.idle[0]
	p.idle = p.idle[1:]
	s.state = surfaceProcessing
	p.processing = append(p.processing, s)
	return s, true
}

// markReady moves every currently-processing surface to ready, matching
// Encoder.cpp's bulk enc->ready.insert(processing) + processing.clear().
func (p *surfacePool) markReady() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.processing {
		s.state = surfaceReady
	}
	p.ready = append(p.ready, p.processing...)
	p.processing = nil
}

// takeReady pops the oldest ready surface back to idle, or reports none
// available (Encoder.cpp's pop-output path).
func (p *surfacePool) takeReady() (*nvencSurface, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.ready) == 0 {
		return nil, false
	}
	s := p.ready[0]
	p.ready = p.ready[1:]
	s.state = surfaceIdle
	p.idle = append(p.idle, s)
	return s, true
}

// nvencSession is the narrow slice of the native NVENC encode session the
// adapter drives, isolated so the adapter can be exercised with a fake.
type nvencSession interface {
	EncodeFrame(yuv []byte, forceKeyframe bool) ([]NAL, error)
	Reconfigure(bitrateKbps int, framerate float64) error
	Close()
}

type nvencFactory func(device CUDADevice, settings CodecSettings, async bool) (nvencSession, error)

// NVENCAdapter is the hardware WebRTC video-encoder adapter: enumerate
// CUDA devices, pick the first meeting NVENC's requirements, try async
// mode first and fall back to sync mode if async initialization fails,
// then drive a pool of input/output surface pairs through their
// idle/processing/ready lifecycle (original_source/Crucible/NVENC/Encoder.cpp).
type NVENCAdapter struct {
	enumerate  func() []CUDADevice
	newSession nvencFactory

	mu           sync.Mutex
	session      nvencSession
	pool         *surfacePool
	bitrateKbps  int
	maxFramerate int
	frag         Fragmentizer
	callback     EncodeCompleteCallback
}

// NewNVENCAdapter constructs an adapter backed by the given device
// enumerator and session factory; production code wires real CUDA/NVENC
// bindings, tests wire fakes.
func NewNVENCAdapter(enumerate func() []CUDADevice, newSession nvencFactory) *NVENCAdapter {
	return &NVENCAdapter{enumerate: enumerate, newSession: newSession}
}

func (a *NVENCAdapter) Init(settings CodecSettings, cores int, maxPayloadSize int) Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	devices := a.enumerate()
	device, ok := pickDevice(devices, settings.Width, settings.Height)
	if !ok {
		log.Warn("no CUDA device meets NVENC requirements")
		return ResultError
	}

	session, err := a.newSession(device, settings, true)
	if err != nil {
		log.Warn("NVENC async init failed, retrying sync", "device", device.Name, "error", err)
		session, err = a.newSession(device, settings, false)
		if err != nil {
			log.Warn("NVENC sync init also failed", "device", device.Name, "error", err)
			return ResultError
		}
	}

	frameIntervalP := 1 // default: no B-frames, matching b_frames_actual+1 when b-frames are disabled
	a.session = session
	a.pool = newSurfacePool(frameIntervalP)
	a.bitrateKbps = settings.StartBitrateKbps
	a.maxFramerate = settings.MaxFramerate
	return ResultOk
}

func (a *NVENCAdapter) Release() Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return ResultError
	}
	a.session.Close()
	a.session = nil
	a.pool = nil
	return ResultOk
}

func (a *NVENCAdapter) RegisterEncodeCompleteCallback(cb EncodeCompleteCallback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callback = cb
}

func (a *NVENCAdapter) Encode(frame RawFrame, frameTypes []FrameType) Result {
	a.mu.Lock()
	session, pool, cb := a.session, a.pool, a.callback
	a.mu.Unlock()

	if session == nil || pool == nil {
		return ResultError
	}
	surface, ok := pool.acquire()
	if !ok {
		log.Warn("encode: no idle surfaces while trying to encode frame")
		return ResultError
	}

	keyframe := false
	for _, ft := range frameTypes {
		if ft == FrameTypeKey {
			keyframe = true
			break
		}
	}

	nals, err := session.EncodeFrame(frame.Data, keyframe)
	pool.markReady()
	if err != nil {
		return ResultError
	}
	if _, ok := pool.takeReady(); !ok {
		log.Warn("encode: surface produced no output", "surface", surface.id)
		return ResultError
	}
	if len(nals) == 0 {
		return ResultOk
	}

	a.mu.Lock()
	data, fragments := a.frag.Fragmentize(nals)
	a.mu.Unlock()

	if cb != nil {
		cb(EncodedFrame{
			Data:        data,
			Fragments:   fragments,
			FrameType:   frameTypeFromKeyframe(keyframe),
			TimestampUs: frame.TimestampUs,
		})
	}
	return ResultOk
}

func (a *NVENCAdapter) SetRates(bitrateKbps int, framerate float64) Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return ResultError
	}
	if bitrateKbps == a.bitrateKbps {
		return ResultOk
	}
	prevBitrate, prevFramerate := a.bitrateKbps, a.maxFramerate
	if err := a.session.Reconfigure(bitrateKbps, framerate); err != nil {
		a.bitrateKbps, a.maxFramerate = prevBitrate, prevFramerate
		log.Warn("NVENC bitrate reconfigure failed, rolled back", "error", err)
		return ResultError
	}
	a.bitrateKbps = bitrateKbps
	a.maxFramerate = int(framerate)
	return ResultOk
}

func (a *NVENCAdapter) GetScalingSettings() ScalingSettings {
	return ScalingSettings{Enabled: true}
}
