package indicator

import (
	"os"
	"path/filepath"

	"github.com/anvilforge/rig/internal/protocol"
)

// indicatorSize is the fixed bitmap size every composed indicator uses.
// spec.md leaves the pixel dimensions of the composed bitmaps unspecified;
// this matches the smallest size the teacher's own toast/badge assets use.
const indicatorSize = 32

// SoftwareComposer is the production indicator.Composer: there is no
// GDI+-equivalent text/image rendering library anywhere in this stack (the
// same gap overlay.SoftwareBackend documents for the graphics device
// itself), so once the kind's resource asset file is found under AssetDir
// it composes a flat bitmap in a per-kind color (colorForKind) rather than
// drawing real glyphs or icon art. A missing required asset is reported as an error, matching
// spec.md §7's "Fatal: missing resource at startup" requirement.
type SoftwareComposer struct {
	// AssetDir is checked for a "<kind>.png" marker file per indicator
	// kind; its presence stands in for "the real resource asset loaded
	// successfully". Required so LoadImages can still fail the way a real
	// composer fails when an asset is missing.
	AssetDir string
}

// assetFile is which marker-file basename each kind expects, mirroring
// the kind names already used on the wire (protocol.IndicatorByName).
func assetFile(kind protocol.IndicatorKind) string {
	name, ok := protocol.IndicatorName(kind)
	if !ok {
		return ""
	}
	return name + ".png"
}

// Compose synthesizes a solid-color indicatorSize x indicatorSize RGBA
// bitmap for kind. The color itself carries no meaning beyond making
// different kinds visually distinguishable in a software render; hotkey
// help text is accepted but not painted onto the bitmap since there is no
// font-rendering library in this stack to paint it with.
func (c *SoftwareComposer) Compose(kind protocol.IndicatorKind, hotkeyHelp string) (Bitmap, error) {
	file := assetFile(kind)
	if file == "" {
		return Bitmap{}, errUnknownIndicatorKind(kind)
	}
	if c.AssetDir != "" {
		if _, err := os.Stat(filepath.Join(c.AssetDir, file)); err != nil {
			return Bitmap{}, err
		}
	}

	pixels := make([]byte, indicatorSize*indicatorSize*4)
	r, g, b := colorForKind(kind)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i+0] = r
		pixels[i+1] = g
		pixels[i+2] = b
		pixels[i+3] = 0xff
	}
	return Bitmap{Width: indicatorSize, Height: indicatorSize, Pixels: pixels}, nil
}

// colorForKind picks a deterministic, visually-distinct fill per kind so a
// software render of two different indicators never looks identical.
func colorForKind(kind protocol.IndicatorKind) (byte, byte, byte) {
	seed := byte(kind)
	return seed * 17, seed * 29, seed * 47
}

type errUnknownIndicatorKind protocol.IndicatorKind

func (e errUnknownIndicatorKind) Error() string {
	return "indicator: unknown kind"
}
