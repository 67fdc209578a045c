package indicator

import (
	"sync"
	"time"

	"github.com/anvilforge/rig/internal/protocol"
)

// transientDuration is how long a transient indicator (e.g. "bookmark
// saved") stays current before reverting to the saved continuous kind
// (e.g. "streaming"). spec.md §3 leaves the exact duration unspecified
// ("after a timeout"); 3s matches the teacher's own toast/notification
// dismissal timing convention (internal/remote desktop viewer toasts).
const transientDuration = 3 * time.Second

// transientKinds are indicators that auto-revert. Continuous kinds (idle,
// streaming-family states, mic-family states) are sticky until explicitly
// replaced.
var transientKinds = map[protocol.IndicatorKind]bool{
	protocol.IndicatorBookmark:              true,
	protocol.IndicatorCacheLimit:            true,
	protocol.IndicatorClipProcessing:        true,
	protocol.IndicatorClipProcessed:         true,
	protocol.IndicatorStreamStarted:         true,
	protocol.IndicatorStreamStopped:         true,
	protocol.IndicatorScreenshotProcessing:  true,
	protocol.IndicatorScreenshotSaved:       true,
	protocol.IndicatorEnabled:               true,
}

// Current holds the single global current-indicator state (spec.md §3
// invariant: "exactly one current indicator"). Transient kinds revert to a
// saved continuous kind after transientDuration.
type Current struct {
	mu         sync.Mutex
	kind       protocol.IndicatorKind
	continuous protocol.IndicatorKind // NONE until a continuous kind is set
	timer      *time.Timer
	nowFunc    func() time.Time
	afterFunc  func(d time.Duration, f func()) *time.Timer
}

// NewCurrent creates a Current initialized to NONE.
func NewCurrent() *Current {
	return &Current{
		kind:       protocol.IndicatorNone,
		continuous: protocol.IndicatorNone,
		afterFunc:  time.AfterFunc,
	}
}

// Set changes the current indicator to kind. If kind is transient, a timer
// is armed to revert to the last continuous kind after transientDuration.
// Setting NONE disables drawing (spec.md invariant #1) and clears any
// pending revert.
func (c *Current) Set(kind protocol.IndicatorKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(kind)
}

func (c *Current) setLocked(kind protocol.IndicatorKind) {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	c.kind = kind

	switch {
	case kind == protocol.IndicatorNone:
		c.continuous = protocol.IndicatorNone
	case transientKinds[kind]:
		revertTo := c.continuous
		c.timer = c.afterFunc(transientDuration, func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			// Only revert if nothing else changed the indicator meanwhile.
			if c.kind == kind {
				c.kind = revertTo
			}
		})
	default:
		c.continuous = kind
	}
}

// Reset sets the current indicator to NONE and clears the saved continuous
// kind, matching the Restart Coordinator's reset step (spec.md §4.2, §8
// invariant #3).
func (c *Current) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(protocol.IndicatorNone)
}

// Kind returns the current indicator kind.
func (c *Current) Kind() protocol.IndicatorKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind
}
