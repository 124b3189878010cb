package main

import (
	"fmt"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"

	"github.com/phanxgames/tableau"
	"github.com/phanxgames/tableau/ebitenrender"
	"github.com/phanxgames/tableau/internal/config"
)

// player holds a built composition and the renderer its pages are
// registered with.
type player struct {
	cfg      *config.Config
	comp     *tableau.Composition
	renderer *ebitenrender.Renderer
	log      *zap.Logger
}

func newPlayer(cfg *config.Config, log *zap.Logger) (*player, error) {
	data, err := os.ReadFile(cfg.Playback.Scene)
	if err != nil {
		return nil, err
	}
	scene, err := tableau.LoadScene(data)
	if err != nil {
		return nil, err
	}
	comp, err := scene.Build(cfg.Playback.Composition, cfg.Options())
	if err != nil {
		return nil, err
	}

	p := &player{cfg: cfg, comp: comp, renderer: ebitenrender.NewRenderer(), log: log}
	p.loadTextures(scene, filepath.Dir(cfg.Playback.Scene))
	if cfg.Playback.Atlas != "" {
		if err := p.loadAtlas(); err != nil {
			return nil, err
		}
	}
	p.watch()

	p.log.Info("scene loaded",
		zap.String("scene", cfg.Playback.Scene),
		zap.String("composition", comp.ID),
		zap.Int("items", len(comp.Items())),
		zap.Float64("duration", comp.Duration()),
	)
	return p, nil
}

// loadTextures registers every page the scene names. A page that fails to
// load is left unregistered and draws as the magenta placeholder.
func (p *player) loadTextures(scene *tableau.SceneData, dir string) {
	for _, tex := range scene.Textures {
		if tex.File == "" {
			continue
		}
		path := tex.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		img, _, err := ebitenutil.NewImageFromFile(path)
		if err != nil {
			p.log.Warn("texture not loaded", zap.String("file", path), zap.Uint16("page", tex.Page), zap.Error(err))
			continue
		}
		p.renderer.RegisterPage(tex.Page, img)
	}
}

// loadAtlas registers a TexturePacker atlas at page 0, replacing whatever the
// scene put there.
func (p *player) loadAtlas() error {
	data, err := os.ReadFile(p.cfg.Playback.Atlas)
	if err != nil {
		return fmt.Errorf("atlas: %w", err)
	}
	imgPath := p.cfg.Playback.AtlasImage
	if imgPath == "" {
		imgPath = strings.TrimSuffix(p.cfg.Playback.Atlas, filepath.Ext(p.cfg.Playback.Atlas)) + ".png"
	}
	img, _, err := ebitenutil.NewImageFromFile(imgPath)
	if err != nil {
		return fmt.Errorf("atlas image: %w", err)
	}
	atlas, err := ebitenrender.LoadAtlas(data, []*ebiten.Image{img}, 0)
	if err != nil {
		return err
	}
	p.renderer.RegisterAtlas(atlas, 0)
	p.log.Debug("atlas loaded", zap.String("atlas", p.cfg.Playback.Atlas), zap.Int("regions", atlas.Len()))
	return nil
}

// watch logs the composition's lifecycle events.
func (p *player) watch() {
	p.comp.On(tableau.EventMessageBegin, func(e tableau.Event) {
		p.log.Info("message", zap.String("item", e.Item.ID), zap.String("payload", e.Payload))
	})
	p.comp.On(tableau.EventClick, func(e tableau.Event) {
		p.log.Info("click", zap.String("item", e.Item.ID), zap.String("payload", e.Payload))
	})
	p.comp.On(tableau.EventLoopStart, func(e tableau.Event) {
		if e.Item == nil {
			p.log.Debug("composition loop", zap.Int("cycle", p.comp.Cycle()))
		}
	})
	p.comp.On(tableau.EventCompositionEnd, func(e tableau.Event) {
		p.log.Info("composition ended", zap.Float64("time", e.Time))
	})
}

func (p *player) runConfig() ebitenrender.RunConfig {
	w := p.cfg.Window
	title := w.Title
	if p.comp.Name != "" {
		title += " - " + p.comp.Name
	}
	return ebitenrender.RunConfig{
		Title:      title,
		Width:      w.Width,
		Height:     w.Height,
		TPS:        w.TPS,
		ClearColor: w.Clear(),
		ShowFPS:    w.ShowFPS,
		ExitOnStop: p.cfg.Playback.ExitOnStop,
		Speed:      p.cfg.Playback.Speed,
		Renderer:   p.renderer,
	}
}

func (p *player) run() error {
	return ebitenrender.Run(p.comp, p.runConfig())
}
