package encoder

import (
	"sync"

	openh264 "github.com/y9o/go-openh264"
)

// openh264Session is the thin slice of the go-openh264 encoder surface
// X264Adapter drives; isolating it behind an interface keeps the adapter
// testable with a fake and keeps the real SDK's call shape in one place.
type openh264Session interface {
	Encode(yuv []byte, forceKeyframe bool) ([]NAL, error)
	SetBitrateAndFramerate(bitrateBps uint32, framerate float32) error
	Close()
}

type openh264Factory func(width, height int, bitrateKbps int, maxFramerate int) (openh264Session, error)

func newOpenH264Session(width, height, bitrateKbps, maxFramerate int) (openh264Session, error) {
	enc, err := openh264.NewEncoder(openh264.Config{
		Width:        width,
		Height:       height,
		BitrateBps:   uint32(bitrateKbps) * 1000,
		MaxFrameRate: float32(maxFramerate),
		UsageType:    openh264.CameraVideoRealTime,
	})
	if err != nil {
		return nil, err
	}
	return &openh264SessionImpl{enc: enc}, nil
}

type openh264SessionImpl struct {
	enc *openh264.Encoder
}

func (s *openh264SessionImpl) Encode(yuv []byte, forceKeyframe bool) ([]NAL, error) {
	if forceKeyframe {
		s.enc.ForceIntraFrame()
	}
	units, err := s.enc.EncodeI420(yuv)
	if err != nil {
		return nil, err
	}
	nals := make([]NAL, len(units))
	for i, u := range units {
		nals[i] = NAL{Payload: u.Payload, LongStartCode: u.LongStartCode}
	}
	return nals, nil
}

func (s *openh264SessionImpl) SetBitrateAndFramerate(bitrateBps uint32, framerate float32) error {
	return s.enc.SetOption(openh264.OptionBitrate, bitrateBps, openh264.OptionMaxFrameRate, framerate)
}

func (s *openh264SessionImpl) Close() {
	s.enc.Close()
}

// X264Adapter is the software WebRTC video-encoder adapter grounded on
// original_source/Crucible/x264.cpp, backed here by go-openh264 in place of
// a direct libx264 binding. When OpenH264 can't be initialized the adapter
// degrades to the SoftwarePlaceholderEncoder in placeholder.go.
type X264Adapter struct {
	newSession openh264Factory

	mu            sync.Mutex
	session       openh264Session
	packetization PacketizationMode
	bitrateKbps   int
	maxFramerate  int
	frag          Fragmentizer
	callback      EncodeCompleteCallback
	placeholder   *SoftwarePlaceholderEncoder
}

// NewX264Adapter constructs an adapter that has not been Init'd yet.
func NewX264Adapter() *X264Adapter {
	return &X264Adapter{newSession: newOpenH264Session}
}

func (a *X264Adapter) Init(settings CodecSettings, cores int, maxPayloadSize int) Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.packetization = settings.PacketizationMode
	a.bitrateKbps = settings.StartBitrateKbps
	a.maxFramerate = settings.MaxFramerate

	session, err := a.newSession(settings.Width, settings.Height, settings.StartBitrateKbps, settings.MaxFramerate)
	if err != nil {
		log.Warn("openh264 init failed, falling back to software placeholder", "error", err)
		a.session = nil
		a.placeholder = NewSoftwarePlaceholderEncoder()
		return a.placeholder.Init(settings, cores, maxPayloadSize)
	}
	a.placeholder = nil
	a.session = session
	return ResultOk
}

func (a *X264Adapter) Release() Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.placeholder != nil {
		return a.placeholder.Release()
	}
	if a.session == nil {
		return ResultError
	}
	a.session.Close()
	a.session = nil
	return ResultOk
}

func (a *X264Adapter) RegisterEncodeCompleteCallback(cb EncodeCompleteCallback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callback = cb
	if a.placeholder != nil {
		a.placeholder.RegisterEncodeCompleteCallback(cb)
	}
}

func (a *X264Adapter) Encode(frame RawFrame, frameTypes []FrameType) Result {
	a.mu.Lock()
	if a.placeholder != nil {
		placeholder := a.placeholder
		a.mu.Unlock()
		return placeholder.Encode(frame, frameTypes)
	}
	session := a.session
	cb := a.callback
	a.mu.Unlock()

	if session == nil {
		return ResultError
	}

	keyframe := false
	for _, ft := range frameTypes {
		if ft == FrameTypeKey {
			keyframe = true
			break
		}
	}

	nals, err := session.Encode(frame.Data, keyframe)
	if err != nil {
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

func frameTypeFromKeyframe(keyframe bool) FrameType {
	if keyframe {
		return FrameTypeKey
	}
	return FrameTypeDelta
}

func (a *X264Adapter) SetRates(bitrateKbps int, framerate float64) Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.placeholder != nil {
		return a.placeholder.SetRates(bitrateKbps, framerate)
	}
	if a.session == nil {
		return ResultError
	}
	if bitrateKbps == a.bitrateKbps {
		return ResultOk
	}

	prevBitrate, prevFramerate := a.bitrateKbps, a.maxFramerate
	log.Info("updating bitrate", "from_kbps", prevBitrate, "to_kbps", bitrateKbps)
	if err := a.session.SetBitrateAndFramerate(uint32(bitrateKbps)*1000, float32(framerate)); err != nil {
		// Roll back in-memory settings; the encoder keeps running with
		// its previous rate control parameters.
		a.bitrateKbps, a.maxFramerate = prevBitrate, prevFramerate
		log.Warn("bitrate reconfigure failed, rolled back", "error", err)
		return ResultError
	}
	a.bitrateKbps = bitrateKbps
	a.maxFramerate = int(framerate)
	return ResultOk
}

func (a *X264Adapter) GetScalingSettings() ScalingSettings {
	return ScalingSettings{Enabled: true}
}
