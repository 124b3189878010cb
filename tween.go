package tableau

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields of a transform or sprite
// simultaneously. Create one via the convenience constructors and either
// attach it to an item with Item.AddTween, which advances it while the item is
// active, or call Update(dt) yourself.
type TweenGroup struct {
	tweens  [4]*gween.Tween
	count   int
	fields  [4]*float64
	scratch [4]float64
	target  *Transform
	apply   func()
	Done    bool
}

// Update advances all tweens by dt seconds, writes values to the target
// fields and touches the target transform.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.commit(allDone)
}

// Seek jumps every tween to t seconds after its start. A looping item seeks
// its tweens to the wrapped local time.
func (g *TweenGroup) Seek(t float32) {
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Set(t)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.commit(allDone)
}

func (g *TweenGroup) commit(done bool) {
	g.Done = done
	if g.apply != nil {
		g.apply()
	}
	if g.target != nil {
		g.target.touch()
	}
}

// Reset rewinds every tween to its start without writing the fields.
func (g *TweenGroup) Reset() {
	for i := 0; i < g.count; i++ {
		g.tweens[i].Reset()
	}
	g.Done = false
}

// TweenPosition creates a TweenGroup that moves t's local position to the
// given target over duration seconds.
func TweenPosition(t *Transform, to Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 3, target: t}
	g.tweens[0] = gween.New(float32(t.position.X), float32(to.X), duration, fn)
	g.tweens[1] = gween.New(float32(t.position.Y), float32(to.Y), duration, fn)
	g.tweens[2] = gween.New(float32(t.position.Z), float32(to.Z), duration, fn)
	g.fields[0] = &t.position.X
	g.fields[1] = &t.position.Y
	g.fields[2] = &t.position.Z
	return g
}

// TweenScale creates a TweenGroup that animates t's local scale.
func TweenScale(t *Transform, to Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 3, target: t}
	g.tweens[0] = gween.New(float32(t.scale.X), float32(to.X), duration, fn)
	g.tweens[1] = gween.New(float32(t.scale.Y), float32(to.Y), duration, fn)
	g.tweens[2] = gween.New(float32(t.scale.Z), float32(to.Z), duration, fn)
	g.fields[0] = &t.scale.X
	g.fields[1] = &t.scale.Y
	g.fields[2] = &t.scale.Z
	return g
}

// TweenEuler creates a TweenGroup that rotates t from one set of Euler angles
// to another. Angles are interpolated component-wise in degrees.
func TweenEuler(t *Transform, from, to Euler, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 3, target: t}
	g.tweens[0] = gween.New(float32(from.X), float32(to.X), duration, fn)
	g.tweens[1] = gween.New(float32(from.Y), float32(to.Y), duration, fn)
	g.tweens[2] = gween.New(float32(from.Z), float32(to.Z), duration, fn)
	for i := 0; i < 3; i++ {
		g.fields[i] = &g.scratch[i]
	}
	g.apply = func() {
		t.rotation = QuatFromEuler(Euler{X: g.scratch[0], Y: g.scratch[1], Z: g.scratch[2]})
	}
	return g
}

// TweenColor creates a TweenGroup that animates all four components of a
// sprite's tint. Color is not part of the batch key.
func TweenColor(s *SpriteContent, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 4}
	g.tweens[0] = gween.New(float32(s.Color.R), float32(to.R), duration, fn)
	g.tweens[1] = gween.New(float32(s.Color.G), float32(to.G), duration, fn)
	g.tweens[2] = gween.New(float32(s.Color.B), float32(to.B), duration, fn)
	g.tweens[3] = gween.New(float32(s.Color.A), float32(to.A), duration, fn)
	g.fields[0] = &s.Color.R
	g.fields[1] = &s.Color.G
	g.fields[2] = &s.Color.B
	g.fields[3] = &s.Color.A
	return g
}
