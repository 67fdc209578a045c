package indicator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/anvilforge/rig/internal/protocol"
)

func TestSoftwareComposerComposesFixedSizeBitmap(t *testing.T) {
	c := &SoftwareComposer{}
	bmp, err := c.Compose(protocol.IndicatorCapturing, "")
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if bmp.Width != indicatorSize || bmp.Height != indicatorSize {
		t.Fatalf("dims = %dx%d, want %dx%d", bmp.Width, bmp.Height, indicatorSize, indicatorSize)
	}
	if len(bmp.Pixels) != indicatorSize*indicatorSize*4 {
		t.Fatalf("pixel buffer len = %d", len(bmp.Pixels))
	}
}

func TestSoftwareComposerFailsWhenAssetMissing(t *testing.T) {
	dir := t.TempDir()
	c := &SoftwareComposer{AssetDir: dir}
	if _, err := c.Compose(protocol.IndicatorBookmark, ""); err == nil {
		t.Fatal("expected an error for a missing asset marker file")
	}
}

func TestSoftwareComposerSucceedsWhenAssetPresent(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bookmark.png"), []byte{}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	c := &SoftwareComposer{AssetDir: dir}
	if _, err := c.Compose(protocol.IndicatorBookmark, ""); err != nil {
		t.Fatalf("Compose: %v", err)
	}
}

func TestSoftwareComposerDistinctKindsGetDistinctColors(t *testing.T) {
	c := &SoftwareComposer{}
	a, _ := c.Compose(protocol.IndicatorCapturing, "")
	b, _ := c.Compose(protocol.IndicatorStreaming, "")
	if a.Pixels[0] == b.Pixels[0] && a.Pixels[1] == b.Pixels[1] && a.Pixels[2] == b.Pixels[2] {
		t.Fatal("expected different indicator kinds to produce different fill colors")
	}
}
