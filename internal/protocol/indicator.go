package protocol

// IndicatorKind is the closed enumeration of indicator bitmaps (spec.md §3).
type IndicatorKind int

const (
	IndicatorNone IndicatorKind = iota
	IndicatorCapturing
	IndicatorMicIdle
	IndicatorMicActive
	IndicatorMicMuted
	IndicatorEnabled
	IndicatorBookmark
	IndicatorCacheLimit
	IndicatorClipProcessing
	IndicatorClipProcessed
	IndicatorStreamStarted
	IndicatorStreamStopped
	IndicatorStreaming
	IndicatorStreamMicIdle
	IndicatorStreamMicActive
	IndicatorStreamMicMuted
	IndicatorScreenshotProcessing
	IndicatorScreenshotSaved
	IndicatorTutorial
	IndicatorForwardBuffer
)

// indicatorNames is the symbolic-name table from spec.md §6, command name
// to indicator kind.
var indicatorNames = map[string]IndicatorKind{
	"idle":                        IndicatorNone,
	"capturing":                   IndicatorCapturing,
	"mic_idle":                    IndicatorMicIdle,
	"mic_active":                  IndicatorMicActive,
	"mic_muted":                   IndicatorMicMuted,
	"enabled":                     IndicatorEnabled,
	"bookmark":                    IndicatorBookmark,
	"cache_limit":                 IndicatorCacheLimit,
	"clip_processing":             IndicatorClipProcessing,
	"clip_processed":              IndicatorClipProcessed,
	"stream_started":              IndicatorStreamStarted,
	"stream_stopped":              IndicatorStreamStopped,
	"streaming":                   IndicatorStreaming,
	"stream_mic_idle":             IndicatorStreamMicIdle,
	"stream_mic_active":           IndicatorStreamMicActive,
	"stream_mic_muted":            IndicatorStreamMicMuted,
	"screenshot_processing":       IndicatorScreenshotProcessing,
	"screenshot":                  IndicatorScreenshotSaved,
	"first_time_tutorial":         IndicatorTutorial,
	"forward_buffer_in_progress":  IndicatorForwardBuffer,
}

// IndicatorByName resolves a symbolic command name to its indicator kind.
// ok is false for an unknown name, which the caller must log and ignore.
func IndicatorByName(name string) (kind IndicatorKind, ok bool) {
	kind, ok = indicatorNames[name]
	return kind, ok
}

func (k IndicatorKind) String() string {
	name, ok := IndicatorName(k)
	if !ok {
		return "unknown"
	}
	return name
}

// IndicatorName is IndicatorByName's inverse: the symbolic command name
// for kind, if one exists (NONE included, as "idle").
func IndicatorName(k IndicatorKind) (name string, ok bool) {
	for n, kind := range indicatorNames {
		if kind == k {
			return n, true
		}
	}
	return "", false
}
