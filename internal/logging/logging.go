// Package logging provides the process-wide structured logger used by both
// the RiG renderer and the Capture Host. Packages may grab a component
// logger at init time, before Init runs; the switchable root handler makes
// sure those loggers pick up the real sink once the process configures one.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey struct{}

// switchableHandler lets package-level loggers created before Init() runs
// dynamically pick up the configured handler.
type switchableHandler struct {
	state  *switchableState
	attrs  []slog.Attr
	groups []string
}

type switchableState struct {
	current slog.Handler
}

func newSwitchableHandler(h slog.Handler) *switchableHandler {
	return &switchableHandler{state: &switchableState{current: h}}
}

func (h *switchableHandler) set(handler slog.Handler) {
	h.state.current = handler
}

func (h *switchableHandler) materialize() slog.Handler {
	handler := h.state.current
	for _, group := range h.groups {
		handler = handler.WithGroup(group)
	}
	if len(h.attrs) > 0 {
		handler = handler.WithAttrs(h.attrs)
	}
	return handler
}

func (h *switchableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.materialize().Enabled(ctx, level)
}

func (h *switchableHandler) Handle(ctx context.Context, record slog.Record) error {
	return h.materialize().Handle(ctx, record)
}

func (h *switchableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr{}, h.attrs...), attrs...)
	groups := append([]string{}, h.groups...)
	return &switchableHandler{state: h.state, attrs: merged, groups: groups}
}

func (h *switchableHandler) WithGroup(name string) slog.Handler {
	attrs := append([]slog.Attr{}, h.attrs...)
	groups := append(append([]string{}, h.groups...), name)
	return &switchableHandler{state: h.state, attrs: attrs, groups: groups}
}

var (
	rootHandler   = newSwitchableHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	defaultLogger = slog.New(rootHandler)
)

func init() {
	slog.SetDefault(defaultLogger)
}

// Init configures the process logger. format is "json" or "text" (default
// "text"); level is "debug"|"info"|"warn"|"error" (default "info"); output
// defaults to os.Stdout. Call once, early in process startup.
func Init(format, level string, output io.Writer) {
	if output == nil {
		output = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	rootHandler.set(handler)
	defaultLogger = slog.New(rootHandler)
	slog.SetDefault(defaultLogger)
}

// L returns a logger tagged with the given component name. RiG components
// (rig, indicator, hotkey, overlay, inputhook, rotator) and CH components
// (recording, encoder, capture, display) all use this to get a consistently
// tagged logger without needing Init to have already run.
func L(component string) *slog.Logger {
	return defaultLogger.With(slog.String("component", component))
}

// NewContext returns a context carrying the given logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the logger from context, falling back to the default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return l
	}
	return defaultLogger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
