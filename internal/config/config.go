// Package config holds the player configuration.
package config

import "github.com/phanxgames/tableau"

// Config holds all player configuration.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Playback PlaybackConfig `yaml:"playback"`
	Batching BatchingConfig `yaml:"batching"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds window settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	TPS        int    `yaml:"tps"`
	ClearColor string `yaml:"clear_color"` // #rrggbb or #rrggbbaa
	ShowFPS    bool   `yaml:"show_fps"`
}

// PlaybackConfig selects what is played and how.
type PlaybackConfig struct {
	Scene       string  `yaml:"scene"`
	Composition string  `yaml:"composition"` // empty plays the first one
	Atlas       string  `yaml:"atlas"`       // TexturePacker JSON
	AtlasImage  string  `yaml:"atlas_image"` // page 0 image, defaults to the atlas path with a .png extension
	Speed       float64 `yaml:"speed"`
	ExitOnStop  bool    `yaml:"exit_on_stop"`
}

// BatchingConfig bounds mesh split size.
type BatchingConfig struct {
	MaxItems    int `yaml:"max_items"`
	MaxTextures int `yaml:"max_textures"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`    // debug, info, warn, error
	LogFile string `yaml:"log_file"` // empty = stdout only
	Stats   bool   `yaml:"stats"`    // per-tick composition stats
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "tableau",
			Width:      800,
			Height:     600,
			TPS:        60,
			ClearColor: "#000000",
			ShowFPS:    false,
		},
		Playback: PlaybackConfig{
			Speed: 1,
		},
		Batching: BatchingConfig{
			MaxItems:    tableau.DefaultLimits.MaxItemsPerSplit,
			MaxTextures: tableau.DefaultLimits.MaxFragmentTextures,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Limits converts the batching section to reconciler limits.
func (b BatchingConfig) Limits() tableau.Limits {
	return tableau.Limits{
		MaxItemsPerSplit:    b.MaxItems,
		MaxFragmentTextures: b.MaxTextures,
	}
}

// Options returns the composition options the player builds with.
func (c *Config) Options() tableau.Options {
	return tableau.Options{
		Limits:   c.Batching.Limits(),
		Viewport: tableau.Rect{Width: float64(c.Window.Width), Height: float64(c.Window.Height)},
		Debug:    c.Logging.Stats,
	}
}

// Clear parses Window.ClearColor. Malformed values fall back to opaque black.
func (w WindowConfig) Clear() tableau.Color {
	c, err := ParseColor(w.ClearColor)
	if err != nil {
		return tableau.Color{A: 1}
	}
	return c
}
