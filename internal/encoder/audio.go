package encoder

import "github.com/anvilforge/rig/internal/logging"

var log = logging.L("encoder")

// AudioEncoderSettings names a registered audio encoder and its default
// bitrate, ranked best-first (original_source/AudioEncoderSelection.cpp).
type AudioEncoderSettings struct {
	ID      string
	Bitrate int
}

// audioRank is the fixed ranked list: platform-native AAC first, then
// libfdk, Media Foundation, and finally the FFmpeg software fallback.
// Order matters — FindBestAudioEncoder only ever moves up this list, never
// down, as it sees more registered encoder types.
var audioRank = []AudioEncoderSettings{
	{ID: "CoreAudio_AAC", Bitrate: 128},
	{ID: "libfdk_aac", Bitrate: 128},
	{ID: "mf_aac", Bitrate: 128},
	{ID: "ffmpeg_aac", Bitrate: 160},
}

// FindBestAudioEncoder picks the highest-ranked entry in audioRank whose id
// appears in registered, defaulting to the lowest-ranked (FFmpeg) entry if
// none of the preferred encoders are registered at all.
func FindBestAudioEncoder(registered []string) AudioEncoderSettings {
	best := len(audioRank) - 1
	for _, id := range registered {
		for i, enc := range audioRank {
			if enc.ID != id {
				continue
			}
			if i >= best {
				break
			}
			best = i
		}
	}
	chosen := audioRank[best]
	log.Info("selected audio encoder", "id", chosen.ID, "bitrate_kbps", chosen.Bitrate)
	return chosen
}
