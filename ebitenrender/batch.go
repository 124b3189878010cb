package ebitenrender

import (
	"math/bits"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/tableau"
)

// batch is the GPU-side buffer of one mesh split. It is stored in
// MeshSplit.Batch and keeps its capacity across Modify deltas.
type batch struct {
	verts []ebiten.Vertex
	inds  []uint32
	// pages lists the distinct texture pages of the split in member order.
	// Each page is one DrawTriangles32 call.
	pages []uint16
	quads int // capacity in quads, a power of two
}

// reset records the split's current pages without touching the buffers.
func (b *batch) reset(s *tableau.MeshSplit) {
	b.pages = b.pages[:0]
	for _, it := range s.Items {
		sp := it.Sprite()
		if sp == nil {
			continue
		}
		p := sp.Region.Page
		found := false
		for _, q := range b.pages {
			if q == p {
				found = true
				break
			}
		}
		if !found {
			b.pages = append(b.pages, p)
		}
	}
}

// batchPool recycles released batches keyed by quad capacity. After warmup,
// acquire and release do not allocate.
type batchPool struct {
	buckets map[int][]*batch
}

// acquire returns a batch able to hold at least n quads.
func (p *batchPool) acquire(n int) *batch {
	q := nextPowerOfTwo(n)
	if stack := p.buckets[q]; len(stack) > 0 {
		b := stack[len(stack)-1]
		p.buckets[q] = stack[:len(stack)-1]
		return b
	}
	return &batch{
		verts: make([]ebiten.Vertex, 0, q*4),
		inds:  make([]uint32, 0, q*6),
		quads: q,
	}
}

// release returns b to the pool.
func (p *batchPool) release(b *batch) {
	if b == nil {
		return
	}
	if p.buckets == nil {
		p.buckets = make(map[int][]*batch)
	}
	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
	b.pages = b.pages[:0]
	p.buckets[b.quads] = append(p.buckets[b.quads], b)
}

// size returns how many batches sit in the pool.
func (p *batchPool) size() int {
	n := 0
	for _, s := range p.buckets {
		n += len(s)
	}
	return n
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// appendQuad appends 4 vertices and 6 indices for a textured region drawn
// under the affine matrix m ([a, b, c, d, tx, ty]). The quad covers the
// region's trimmed rectangle inside (0, 0, OriginalW, OriginalH), scaled
// around that rectangle's center by s.
func appendQuad(verts []ebiten.Vertex, inds []uint32, m [6]float64, r *tableau.TextureRegion, s float64, c tableau.Color) ([]ebiten.Vertex, []uint32) {
	ox := float64(r.OffsetX)
	oy := float64(r.OffsetY)
	w := float64(r.Width)
	h := float64(r.Height)
	halfW := float64(r.OriginalW) / 2
	halfH := float64(r.OriginalH) / 2

	// Local corners: TL, TR, BL, BR
	lx := [4]float64{ox, ox + w, ox, ox + w}
	ly := [4]float64{oy, oy, oy + h, oy + h}
	if s != 1 {
		for i := range lx {
			lx[i] = (lx[i]-halfW)*s + halfW
			ly[i] = (ly[i]-halfH)*s + halfH
		}
	}

	a, b, cc, d, tx, ty := m[0], m[1], m[2], m[3], m[4], m[5]

	// Source UVs in page pixels. Rotated regions are stored 90 degrees
	// clockwise with a stored rect of Height x Width.
	rx, ry := float32(r.X), float32(r.Y)
	rw, rh := float32(r.Width), float32(r.Height)
	var sx, sy [4]float32
	if r.Rotated {
		sx = [4]float32{rx + rh, rx + rh, rx, rx}
		sy = [4]float32{ry, ry + rw, ry, ry + rw}
	} else {
		sx = [4]float32{rx, rx + rw, rx, rx + rw}
		sy = [4]float32{ry, ry, ry + rh, ry + rh}
	}

	// Premultiplied RGBA.
	ca := float32(c.A)
	cr := float32(c.R) * ca
	cg := float32(c.G) * ca
	cb := float32(c.B) * ca

	base := uint32(len(verts))
	for i := 0; i < 4; i++ {
		verts = append(verts, ebiten.Vertex{
			DstX:   float32(a*lx[i] + cc*ly[i] + tx),
			DstY:   float32(b*lx[i] + d*ly[i] + ty),
			SrcX:   sx[i],
			SrcY:   sy[i],
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
	}

	// Two triangles: TL-TR-BL, TR-BR-BL
	inds = append(inds,
		base+0, base+1, base+2,
		base+1, base+3, base+2,
	)
	return verts, inds
}
