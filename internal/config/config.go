// Package config loads RiG/CH process configuration the way the teacher
// codebase does: a viper-backed struct with mapstructure tags and a
// Default() constructor.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// RigConfig configures the renderer-in-game process.
type RigConfig struct {
	// ForgePID is the process ID RiG derives its Command Server pipe name
	// from (spec.md §6, "AnvilRenderer<pid>").
	ForgePID int `mapstructure:"forge_pid"`

	// IndicatorAssetDir holds the resource assets the IndicatorManager
	// composes bitmaps from (color bar, icon, live badge).
	IndicatorAssetDir string `mapstructure:"indicator_asset_dir"`

	// QuickSelectTimeoutMS is the default arming window for the
	// middle-mouse quick-select gesture (spec.md §4.12), unless a
	// StartQuickSelectTimeout call overrides it.
	QuickSelectTimeoutMS int `mapstructure:"quick_select_timeout_ms"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// DefaultRigConfig returns the baseline RiG configuration.
func DefaultRigConfig() *RigConfig {
	return &RigConfig{
		QuickSelectTimeoutMS: 500,
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

// Validate rejects configurations that would make RiG unable to start.
func (c *RigConfig) Validate() error {
	if c.QuickSelectTimeoutMS < 0 {
		return fmt.Errorf("config: quick_select_timeout_ms must be >= 0")
	}
	return nil
}

// LoadRigConfig reads configuration from the given file path (if
// non-empty) layered over DefaultRigConfig, the same viper-over-Default()
// layering LoadCaptureHostConfig uses.
func LoadRigConfig(path string) (*RigConfig, error) {
	cfg := DefaultRigConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CaptureHostConfig configures the Capture Host process.
type CaptureHostConfig struct {
	Standalone      bool   `mapstructure:"standalone"`
	ForgePID        int    `mapstructure:"forge_pid"`
	StartEventName  string `mapstructure:"start_event_name"`

	// ForgeControlURL is the websocket endpoint internal/forgeconn dials
	// to receive the CH command surface and queue events while
	// disconnected (spec.md §6); there is no CLI positional for it, so it
	// only ever comes from this config file.
	ForgeControlURL string `mapstructure:"forge_control_url"`

	// DisplayConsumerPipe, when non-empty, names the pipe a remote
	// display viewer dials to receive the game_capture Display channel's
	// rendered frames (spec.md §4.13). Empty disables the Display
	// provider entirely.
	DisplayConsumerPipe string `mapstructure:"display_consumer_pipe"`

	DefaultTargetWidth  int `mapstructure:"default_target_width"`
	DefaultTargetHeight int `mapstructure:"default_target_height"`

	VideoEncoder string `mapstructure:"video_encoder"` // "x264" | "nvenc"
	VideoBitrateKbps int `mapstructure:"video_bitrate_kbps"`

	MicrophoneEnabled bool   `mapstructure:"microphone_enabled"`
	MicrophonePTTMode bool   `mapstructure:"microphone_ptt_mode"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// DefaultCaptureHostConfig returns the baseline CH configuration.
func DefaultCaptureHostConfig() *CaptureHostConfig {
	return &CaptureHostConfig{
		ForgeControlURL:     "ws://127.0.0.1:9981/ch",
		DefaultTargetWidth:  1280,
		DefaultTargetHeight: 720,
		VideoEncoder:        "x264",
		VideoBitrateKbps:    2500,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// Validate rejects configurations that would make the controller unable to
// build a valid capture graph.
func (c *CaptureHostConfig) Validate() error {
	if c.DefaultTargetWidth <= 0 || c.DefaultTargetHeight <= 0 {
		return fmt.Errorf("config: target dimensions must be positive")
	}
	if c.VideoBitrateKbps <= 0 {
		return fmt.Errorf("config: video_bitrate_kbps must be positive")
	}
	if c.VideoEncoder != "x264" && c.VideoEncoder != "nvenc" {
		return fmt.Errorf("config: unknown video_encoder %q", c.VideoEncoder)
	}
	return nil
}

// LoadCaptureHostConfig reads configuration from the given file path (if
// non-empty) layered over DefaultCaptureHostConfig, the way the teacher's
// loader layers viper over its own Default().
func LoadCaptureHostConfig(path string) (*CaptureHostConfig, error) {
	cfg := DefaultCaptureHostConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
