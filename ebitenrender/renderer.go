package ebitenrender

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/phanxgames/tableau"
)

// whitePage is the sentinel page of the 1x1 white image used by particles
// without a region.
const whitePage = 0xFFFE

// WhiteRegion samples a built-in 1x1 white pixel. Sprites using it draw as
// solid rectangles of their tint, sized by the item scale.
var WhiteRegion = tableau.TextureRegion{Page: whitePage, Width: 1, Height: 1, OriginalW: 1, OriginalH: 1}

var whiteImage *ebiten.Image

func ensureWhiteImage() *ebiten.Image {
	if whiteImage == nil {
		whiteImage = ebiten.NewImage(1, 1)
		whiteImage.Fill(color.White)
	}
	return whiteImage
}

// Stats counts renderer work. Batch counters are cumulative; the per-frame
// counters are reset by every Draw.
type Stats struct {
	Batches   int // live batches
	Allocated int // batches handed out by Sync
	Released  int // batches returned by Sync
	Resized   int // batches replaced because a split outgrew them

	DrawCalls int
	Quads     int
	Culled    int
	Particles int
}

// Renderer draws a composition's mesh splits and particle emitters with
// Ebitengine. Each split owns one batch, allocated, rewritten and released
// from the deltas passed to Sync.
type Renderer struct {
	pages  []*ebiten.Image
	pool   batchPool
	stats  Stats
	warned map[uint16]bool

	// particle scratch buffers, reused across emitters
	verts []ebiten.Vertex
	inds  []uint32
}

// NewRenderer creates an empty renderer.
func NewRenderer() *Renderer {
	return &Renderer{warned: make(map[uint16]bool)}
}

// RegisterPage stores an atlas page image at the given index, replacing any
// previous page there.
func (r *Renderer) RegisterPage(index uint16, img *ebiten.Image) {
	for int(index) >= len(r.pages) {
		r.pages = append(r.pages, nil)
	}
	r.pages[index] = img
	delete(r.warned, index)
}

// RegisterAtlas registers every page of an atlas starting at firstPage, the
// same offset passed to LoadAtlas.
func (r *Renderer) RegisterAtlas(a *Atlas, firstPage uint16) {
	for i, img := range a.Pages {
		r.RegisterPage(firstPage+uint16(i), img)
	}
}

// Stats returns the current counters.
func (r *Renderer) Stats() Stats {
	return r.stats
}

func (r *Renderer) page(index uint16) *ebiten.Image {
	switch index {
	case magentaPlaceholderPage:
		return ensureMagentaImage()
	case whitePage:
		return ensureWhiteImage()
	}
	if int(index) < len(r.pages) && r.pages[index] != nil {
		return r.pages[index]
	}
	if !r.warned[index] {
		r.warned[index] = true
		tableau.Logger().Warn("texture page not registered, drawing placeholder", zap.Uint16("page", index))
	}
	return ensureMagentaImage()
}

// Sync applies a split delta: added splits get a batch, modified splits keep
// theirs unless they outgrew it, removed splits give theirs back.
func (r *Renderer) Sync(d tableau.SplitDelta) {
	for _, s := range d.Remove {
		if b, ok := s.Batch.(*batch); ok {
			r.pool.release(b)
			r.stats.Batches--
			r.stats.Released++
		}
		s.Batch = nil
	}
	for _, s := range d.Add {
		r.attach(s)
	}
	for _, s := range d.Modify {
		b, ok := s.Batch.(*batch)
		if !ok {
			r.attach(s)
			continue
		}
		if len(s.Items) > b.quads {
			r.pool.release(b)
			b = r.pool.acquire(len(s.Items))
			s.Batch = b
			r.stats.Resized++
		}
		b.reset(s)
	}
	if !d.Empty() {
		tableau.Logger().Debug("render sync",
			zap.Int("add", len(d.Add)),
			zap.Int("remove", len(d.Remove)),
			zap.Int("modify", len(d.Modify)),
			zap.Int("batches", r.stats.Batches),
		)
	}
}

func (r *Renderer) attach(s *tableau.MeshSplit) {
	b := r.pool.acquire(len(s.Items))
	b.reset(s)
	s.Batch = b
	r.stats.Batches++
	r.stats.Allocated++
}

// Draw renders the composition through its camera. Splits and particle
// emitters are interleaved by list index so render order matches the item
// list.
func (r *Renderer) Draw(screen *ebiten.Image, c *tableau.Composition) {
	r.stats.DrawCalls = 0
	r.stats.Quads = 0
	r.stats.Culled = 0
	r.stats.Particles = 0

	cam := c.Camera()
	view := cam.ViewMatrix()
	splits := c.MeshSplits()

	si := 0
	for _, it := range c.Items() {
		p, ok := it.Content().(*tableau.ParticleContent)
		if !ok || !it.Active() || it.Faulted() {
			continue
		}
		for si < len(splits) && splits[si].Priority() < it.ListIndex() {
			r.drawSplit(screen, splits[si], cam, view)
			si++
		}
		r.drawParticles(screen, it, p, view)
	}
	for ; si < len(splits); si++ {
		r.drawSplit(screen, splits[si], cam, view)
	}
}

func (r *Renderer) drawSplit(screen *ebiten.Image, s *tableau.MeshSplit, cam *tableau.Camera, view [6]float64) {
	b, ok := s.Batch.(*batch)
	if !ok {
		// Drawn before the first Sync.
		r.attach(s)
		b = s.Batch.(*batch)
	}

	var op ebiten.DrawTrianglesOptions
	op.Blend = ebitenBlend(s.Key.BlendMode)
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha

	for _, pg := range b.pages {
		b.verts, b.inds = b.verts[:0], b.inds[:0]
		for _, it := range s.Items {
			sp := it.Sprite()
			if sp == nil || sp.Hidden || sp.Region.Page != pg {
				continue
			}
			if cam.ShouldCull(it) {
				r.stats.Culled++
				continue
			}
			m := tableau.MultiplyAffine(view, it.Transform().WorldMatrix().Affine2D())
			b.verts, b.inds = appendQuad(b.verts, b.inds, m, &sp.Region, 1, sp.Color)
		}
		if len(b.inds) == 0 {
			continue
		}
		screen.DrawTriangles32(b.verts, b.inds, r.page(pg), &op)
		r.stats.DrawCalls++
		r.stats.Quads += len(b.inds) / 6
	}
}

// drawParticles draws every live particle of one emitter in a single call.
// World-space particles are positioned by the view alone; attached ones by
// the emitter's world matrix as well.
func (r *Renderer) drawParticles(screen *ebiten.Image, it *tableau.Item, p *tableau.ParticleContent, view [6]float64) {
	e := p.Emitter
	if e.AliveCount() == 0 {
		return
	}
	cfg := e.Config()
	base := view
	if !cfg.WorldSpace {
		base = tableau.MultiplyAffine(view, it.Transform().WorldMatrix().Affine2D())
	}
	region := cfg.Region
	if region.Width == 0 || region.Height == 0 {
		region = WhiteRegion
	}

	r.verts, r.inds = r.verts[:0], r.inds[:0]
	e.Each(func(pt tableau.Particle) {
		m := base
		m[4] += base[0]*pt.X + base[2]*pt.Y
		m[5] += base[1]*pt.X + base[3]*pt.Y
		col := pt.Color
		col.A *= float64(pt.Alpha)
		r.verts, r.inds = appendQuad(r.verts, r.inds, m, &region, float64(pt.Scale), col)
	})

	var op ebiten.DrawTrianglesOptions
	op.Blend = ebitenBlend(cfg.BlendMode)
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	screen.DrawTriangles32(r.verts, r.inds, r.page(region.Page), &op)
	r.stats.DrawCalls++
	r.stats.Particles += len(r.inds) / 6
}
