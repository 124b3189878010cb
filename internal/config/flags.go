package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagScene    = flag.String("scene", "", "Scene JSON to play")
	flagAtlas    = flag.String("atlas", "", "TexturePacker atlas JSON")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging and tick stats")
	flagMaxItems = flag.Int("max-items", 0, "Maximum sprites per mesh split")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config. A positional argument
// names the scene when --scene is absent.
func applyFlags(cfg *Config) {
	if *flagScene != "" {
		cfg.Playback.Scene = *flagScene
	} else if flag.NArg() > 0 {
		cfg.Playback.Scene = flag.Arg(0)
	}
	if *flagAtlas != "" {
		cfg.Playback.Atlas = *flagAtlas
	}
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Stats = true
		cfg.Window.ShowFPS = true
	}
	if *flagMaxItems > 0 {
		cfg.Batching.MaxItems = *flagMaxItems
	}
}
