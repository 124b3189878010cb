package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phanxgames/tableau"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 800 || cfg.Window.Height != 600 {
		t.Errorf("expected 800x600, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.TPS != 60 {
		t.Errorf("expected tps 60, got %d", cfg.Window.TPS)
	}
	if cfg.Playback.Speed != 1 {
		t.Errorf("expected speed 1, got %f", cfg.Playback.Speed)
	}
	if cfg.Batching.Limits() != tableau.DefaultLimits {
		t.Errorf("expected default limits, got %+v", cfg.Batching.Limits())
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Stats {
		t.Error("expected stats to be off by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
window:
  title: "intro"
  width: 1280
  height: 720
  clear_color: "#336699"

playback:
  scene: "intro.json"
  composition: "main"
  speed: 0.5
  exit_on_stop: true

batching:
  max_items: 64

logging:
  level: "debug"
  log_file: "player.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Title != "intro" || cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("window = %+v", cfg.Window)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Window.TPS != 60 {
		t.Errorf("expected tps 60 to survive, got %d", cfg.Window.TPS)
	}
	if cfg.Playback.Scene != "intro.json" || cfg.Playback.Composition != "main" {
		t.Errorf("playback = %+v", cfg.Playback)
	}
	if cfg.Playback.Speed != 0.5 || !cfg.Playback.ExitOnStop {
		t.Errorf("playback = %+v", cfg.Playback)
	}
	if cfg.Batching.MaxItems != 64 {
		t.Errorf("expected max items 64, got %d", cfg.Batching.MaxItems)
	}
	if cfg.Batching.MaxTextures != tableau.DefaultLimits.MaxFragmentTextures {
		t.Errorf("expected default max textures, got %d", cfg.Batching.MaxTextures)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "player.log" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadExplicitPath(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "player.yaml")
	if err := os.WriteFile(configPath, []byte("batching:\n  max_textures: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Batching.MaxTextures != 4 {
		t.Errorf("expected max textures 4, got %d", cfg.Batching.MaxTextures)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing explicit path")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Playback.Scene = "loop.json"
	cfg.Batching.MaxItems = 8
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded %+v, want %+v", loaded, cfg)
	}
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Window.Width = 320
	cfg.Window.Height = 200
	cfg.Batching.MaxItems = 2
	cfg.Logging.Stats = true

	opts := cfg.Options()
	if opts.Viewport != (tableau.Rect{Width: 320, Height: 200}) {
		t.Errorf("viewport = %+v", opts.Viewport)
	}
	if opts.Limits.MaxItemsPerSplit != 2 || !opts.Debug {
		t.Errorf("options = %+v", opts)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want tableau.Color
		ok   bool
	}{
		{"#ff0000", tableau.Color{R: 1, A: 1}, true},
		{"#00ff0080", tableau.Color{G: 1, A: 128.0 / 255}, true},
		{"0000ff", tableau.Color{B: 1, A: 1}, true},
		{"#fff", tableau.Color{}, false},
		{"#gg0000", tableau.Color{}, false},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseColor(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	w := WindowConfig{ClearColor: "bogus"}
	if w.Clear() != (tableau.Color{A: 1}) {
		t.Errorf("Clear fallback = %+v", w.Clear())
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if found := findConfigFile(); found != "" {
		t.Errorf("expected no config file, found %s", found)
	}

	if err := os.WriteFile("tableau.yaml", []byte("window:\n  width: 1024\n"), 0644); err != nil {
		t.Fatalf("failed to create config file: %v", err)
	}
	if found := findConfigFile(); found != "./tableau.yaml" {
		t.Errorf("expected ./tableau.yaml, got %s", found)
	}
}
