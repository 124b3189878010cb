// Package main is the tableau player: it loads a scene document and plays
// one of its compositions in a window.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/phanxgames/tableau"
	"github.com/phanxgames/tableau/internal/config"
	"github.com/phanxgames/tableau/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging, os.Stdout)
	tableau.SetLogger(log)
	log.Debug("config", zap.Reflect("config", cfg))

	code := play(cfg, log)
	_ = log.Sync()
	os.Exit(code)
}

// play runs the player and returns the process exit code.
func play(cfg *config.Config, log *zap.Logger) int {
	if cfg.Playback.Scene == "" {
		log.Error("no scene given, pass --scene or set playback.scene")
		return 2
	}

	p, err := newPlayer(cfg, log)
	if err != nil {
		log.Error("failed to load scene", zap.String("scene", cfg.Playback.Scene), zap.Error(err))
		return 1
	}
	if err := p.run(); err != nil {
		log.Error("playback error", zap.Error(err))
		return 1
	}

	log.Info("player closed normally")
	return 0
}
