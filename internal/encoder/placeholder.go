package encoder

import "sync"

// SoftwarePlaceholderEncoder is the adapter of last resort: it satisfies
// the VideoEncoder contract without ever touching a hardware or native
// codec, so the recording graph can still start (and tests can still run)
// on a host where neither OpenH264 nor NVENC initialize. It emits no
// frames; once Init has run, Encode succeeds and simply drops the input
// (before Init, or after Release, it returns ResultError).
type SoftwarePlaceholderEncoder struct {
	mu          sync.Mutex
	bitrateKbps int
	framerate   float64
	callback    EncodeCompleteCallback
	initialized bool
}

// NewSoftwarePlaceholderEncoder constructs an un-initialized placeholder.
func NewSoftwarePlaceholderEncoder() *SoftwarePlaceholderEncoder {
	return &SoftwarePlaceholderEncoder{}
}

func (p *SoftwarePlaceholderEncoder) Init(settings CodecSettings, cores int, maxPayloadSize int) Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bitrateKbps = settings.StartBitrateKbps
	p.framerate = float64(settings.MaxFramerate)
	p.initialized = true
	return ResultOk
}

func (p *SoftwarePlaceholderEncoder) Release() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initialized = false
	return ResultOk
}

func (p *SoftwarePlaceholderEncoder) RegisterEncodeCompleteCallback(cb EncodeCompleteCallback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callback = cb
}

func (p *SoftwarePlaceholderEncoder) Encode(frame RawFrame, frameTypes []FrameType) Result {
	p.mu.Lock()
	initialized := p.initialized
	p.mu.Unlock()
	if !initialized {
		return ResultError
	}
	return ResultOk
}

func (p *SoftwarePlaceholderEncoder) SetRates(bitrateKbps int, framerate float64) Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return ResultError
	}
	p.bitrateKbps = bitrateKbps
	p.framerate = framerate
	return ResultOk
}

func (p *SoftwarePlaceholderEncoder) GetScalingSettings() ScalingSettings {
	return ScalingSettings{Enabled: false}
}
