// Package display implements the Display and Screenshot providers
// (spec.md §4.13): both run inside a shared graphics context, rendering a
// named source into a texrender, staging it to a CPU-readable surface, and
// handing the mapped bytes off to a consumer — a connected remote viewer
// for Display, a file writer for Screenshot.
//
// Neither provider talks to a real graphics API directly. GraphicsContext
// is the narrow slice of that API this package needs, mirrored on
// internal/overlay's Backend split: the pipeline orchestration (queue
// discipline, letterbox math, send-thread lifecycle) is ordinary testable
// Go, and only the GraphicsContext implementation is backend-specific.
package display

import "github.com/anvilforge/rig/internal/logging"

var log = logging.L("display")

// Texture is an opaque GPU texture handle. Callers never inspect it; it
// only flows from a TexRender into a StageSurface.
type Texture any

// TexRender is the render-target stage: reset, begin at a given size
// (draw happens inside the context's RenderSource while bound), end, then
// Texture retrieves what was drawn.
type TexRender interface {
	Reset()
	Begin(width, height int) bool
	End()
	Texture() Texture
	Destroy()
}

// StageSurface is the GPU-to-CPU readback stage.
type StageSurface interface {
	Stage(tex Texture)
	// Map returns the mapped pixel bytes and the row stride in bytes.
	// ok is false on a map failure; the caller must not call Unmap.
	Map() (data []byte, linesize int, ok bool)
	Unmap()
	Destroy()
}

// Source is a named render source a GraphicsContext knows how to draw,
// analogous to an obs_source_t.
type Source interface {
	Name() string
	Size() (width, height int)
}

// GraphicsContext is the shared graphics context both providers render
// through. Enter/Leave bracket any call touching the context, mirroring
// obs_enter_graphics/obs_leave_graphics — every real implementation must
// serialize concurrent callers itself, since Display and Screenshot may
// both be active at once.
type GraphicsContext interface {
	Enter()
	Leave()

	CreateTexRender() TexRender
	CreateStageSurface(width, height int) StageSurface

	// RenderSource draws source scaled and letterboxed to fit drawW x
	// drawH into the texrender currently bound by a prior
	// TexRender.Begin, and reports the source's native size at the time
	// of the draw. ok is false if the source had no content to draw.
	RenderSource(source Source, drawW, drawH int) (sourceW, sourceH int, ok bool)
}

// AspectFit computes the letterboxed destination rectangle and scale
// factor for drawing a srcW x srcH source into a drawW x drawH target,
// centered with the source's aspect ratio preserved. Grounded on
// RemoteDisplay.cpp/ScreenshotProvider.cpp's Draw(), which both compute
// display_aspect vs source_aspect the same way.
func AspectFit(drawW, drawH, srcW, srcH int) (x, y, width, height int, scale float64) {
	if drawW <= 0 || drawH <= 0 || srcW <= 0 || srcH <= 0 {
		return 0, 0, 0, 0, 0
	}

	displayAspect := float64(drawW) / float64(drawH)
	sourceAspect := float64(srcW) / float64(srcH)

	if displayAspect > sourceAspect {
		scale = float64(drawH) / float64(srcH)
		width = int(float64(drawH) * sourceAspect)
		height = drawH
	} else {
		scale = float64(drawW) / float64(srcW)
		width = drawW
		height = int(float64(drawW) / sourceAspect)
	}
	x = drawW/2 - width/2
	y = drawH/2 - height/2

	// Recomputed from scale, matching the original's two-pass width/height
	// (the first pass only fixes x/y, the final size comes from scale).
	width = int(scale * float64(srcW))
	height = int(scale * float64(srcH))
	return x, y, width, height, scale
}
