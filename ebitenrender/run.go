package ebitenrender

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/phanxgames/tableau"
)

// RunConfig configures the window and playback loop of Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// TPS is the tick rate. Zero keeps Ebitengine's default of 60.
	TPS        int
	ClearColor tableau.Color
	// ShowFPS prints FPS, TPS and renderer counters in the top-left corner.
	ShowFPS bool
	// ExitOnStop ends the loop once the composition stops.
	ExitOnStop bool
	// Speed scales the tick delta. Zero means 1.
	Speed float64
	// Renderer is used instead of a fresh one when set, for callers that
	// registered pages up front.
	Renderer *Renderer
	// Update, when set, runs every tick before the composition advances.
	// Returning an error ends the loop.
	Update func() error
}

// game implements ebiten.Game around one composition.
type game struct {
	comp     *tableau.Composition
	renderer *Renderer
	cfg      RunConfig
	clear    color.RGBA
	speed    float64
}

// Run opens a window and plays the composition until the window closes, an
// Update hook fails, or the composition stops with ExitOnStop set.
func Run(comp *tableau.Composition, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)

	g := newGame(comp, cfg)
	tableau.Logger().Info("playback started",
		zap.String("composition", comp.ID),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("tps", ebiten.TPS()),
	)
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	return err
}

func newGame(comp *tableau.Composition, cfg RunConfig) *game {
	r := cfg.Renderer
	if r == nil {
		r = NewRenderer()
	}
	speed := cfg.Speed
	if speed <= 0 {
		speed = 1
	}
	comp.Camera().SetViewport(tableau.Rect{Width: float64(cfg.Width), Height: float64(cfg.Height)})
	return &game{comp: comp, renderer: r, cfg: cfg, clear: toRGBA(cfg.ClearColor), speed: speed}
}

// Update implements ebiten.Game.
func (g *game) Update() error {
	if g.cfg.Update != nil {
		if err := g.cfg.Update(); err != nil {
			return err
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		g.comp.Click(float64(x), float64(y))
	}
	g.step(g.speed / float64(ebiten.TPS()))
	if g.cfg.ExitOnStop && g.comp.Stopped() {
		return ebiten.Termination
	}
	return nil
}

// step advances the composition and hands the resulting delta to the
// renderer.
func (g *game) step(dt float64) {
	g.comp.Tick(dt)
	g.renderer.Sync(g.comp.DiffMeshSplits())
}

// Draw implements ebiten.Game.
func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(g.clear)
	g.renderer.Draw(screen, g.comp)
	if g.cfg.ShowFPS {
		st := g.renderer.Stats()
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nbatches: %d draws: %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(), st.Batches, st.DrawCalls))
	}
}

// Layout implements ebiten.Game.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}
