package tableau

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenPositionReachesTarget(t *testing.T) {
	tr := validTransform(nil)
	tr.SetPosition(Vec3{10, 20, 0})

	g := TweenPosition(tr, Vec3{100, 200, 0}, 1.0, ease.Linear)

	// Exact halves avoid float32 accumulation drift.
	g.Update(0.5)
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	p := tr.Position()
	if math.Abs(p.X-100) > 0.5 || math.Abs(p.Y-200) > 0.5 {
		t.Errorf("position = %+v, want ~(100,200)", p)
	}
}

func TestTweenScaleReachesTarget(t *testing.T) {
	tr := validTransform(nil)
	g := TweenScale(tr, Vec3{2, 3, 1}, 0.5, ease.Linear)

	g.Update(0.25)
	g.Update(0.25)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	s := tr.Scale()
	if math.Abs(s.X-2) > 0.01 || math.Abs(s.Y-3) > 0.01 || math.Abs(s.Z-1) > 0.01 {
		t.Errorf("scale = %+v, want ~(2,3,1)", s)
	}
}

func TestTweenColorAllComponents(t *testing.T) {
	s := NewSpriteContent(TextureRegion{})
	s.Color = Color{R: 1, G: 0, B: 0, A: 1}
	target := Color{R: 0, G: 1, B: 0.5, A: 0.5}

	g := TweenColor(s, target, 1.0, ease.Linear)
	g.Update(0.5)
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	for _, c := range []struct {
		name      string
		got, want float64
	}{
		{"R", s.Color.R, target.R},
		{"G", s.Color.G, target.G},
		{"B", s.Color.B, target.B},
		{"A", s.Color.A, target.A},
	} {
		if math.Abs(c.got-c.want) > 0.01 {
			t.Errorf("%s = %f, want %f", c.name, c.got, c.want)
		}
	}
}

func TestTweenEulerRotates(t *testing.T) {
	tr := validTransform(nil)
	g := TweenEuler(tr, Euler{}, Euler{Z: 90}, 1.0, ease.Linear)
	g.Update(0.5)
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected done after full duration")
	}
	assertVec3(t, "x axis", tr.LocalToWorld(Vec3{1, 0, 0}), Vec3{0, 1, 0})
}

func TestTweenGroupDoneFlagTransition(t *testing.T) {
	g := TweenPosition(validTransform(nil), Vec3{50, 50, 0}, 0.5, ease.Linear)

	if g.Done {
		t.Fatal("should not be Done at start")
	}
	g.Update(0.25)
	if g.Done {
		t.Fatal("should not be Done partway through")
	}
	g.Update(0.25)
	if !g.Done {
		t.Fatal("should be Done after full duration")
	}

	// Update after done is a no-op.
	g.Update(0.1)
	if !g.Done {
		t.Fatal("should remain Done")
	}
}

func TestTweenGroupTouchesTransform(t *testing.T) {
	tr := validTransform(nil)
	tr.WorldMatrix()
	gen := tr.Generation()

	g := TweenPosition(tr, Vec3{100, 100, 0}, 1.0, ease.Linear)
	g.Update(0.1)

	if tr.Generation() == gen {
		t.Fatal("tween update should invalidate the transform")
	}
	if tr.WorldPosition().X == 0 {
		t.Error("world position should follow the tween")
	}
}

func TestTweenSeekAndReset(t *testing.T) {
	tr := validTransform(nil)
	g := TweenPosition(tr, Vec3{100, 0, 0}, 1.0, ease.Linear)

	g.Seek(0.25)
	if math.Abs(tr.Position().X-25) > 0.01 {
		t.Errorf("X after seek = %f, want 25", tr.Position().X)
	}
	g.Seek(2)
	if !g.Done {
		t.Error("seeking past the end should finish the group")
	}

	g.Reset()
	if g.Done {
		t.Error("Reset should clear Done")
	}
	g.Update(0.5)
	if math.Abs(tr.Position().X-50) > 0.01 {
		t.Errorf("X after reset = %f, want 50", tr.Position().X)
	}
}

func TestTweenEasingFunctionsProduceDifferentCurves(t *testing.T) {
	lin, cub := validTransform(nil), validTransform(nil)
	gL := TweenPosition(lin, Vec3{100, 0, 0}, 1.0, ease.Linear)
	gC := TweenPosition(cub, Vec3{100, 0, 0}, 1.0, ease.OutCubic)

	gL.Update(0.5)
	gC.Update(0.5)

	if math.Abs(lin.Position().X-cub.Position().X) < 1.0 {
		t.Errorf("easing curves should differ at midpoint: linear=%f cubic=%f", lin.Position().X, cub.Position().X)
	}
}

func TestTweenGroupUpdateZeroAlloc(t *testing.T) {
	g := TweenPosition(validTransform(nil), Vec3{100, 100, 0}, 1.0, ease.Linear)
	g.Update(0.01)

	result := testing.AllocsPerRun(100, func() {
		g.Update(0.001)
	})
	if result > 0 {
		t.Errorf("TweenGroup.Update allocated %f times per run, want 0", result)
	}
}

// --- Item tweens ---

func TestItemTweenRunsWhileActive(t *testing.T) {
	c := loadComp(t, Options{Duration: 10}, ItemDef{ID: "a", Delay: 1, Duration: 3})
	a := c.Item("a")
	a.AddTween(TweenPosition(a.Transform(), Vec3{10, 0, 0}, 1, ease.Linear))

	c.Tick(0.5)
	if a.Transform().Position().X != 0 {
		t.Error("tween ran before the item started")
	}
	c.Tick(1) // activation tick advances the tween by the full step
	c.Tick(0.5)
	if math.Abs(a.Transform().WorldPosition().X-10) > 0.01 {
		t.Errorf("X = %f, want 10", a.Transform().WorldPosition().X)
	}
}

func TestItemTweenFollowsLoop(t *testing.T) {
	c := loadComp(t, Options{Duration: 10}, ItemDef{ID: "a", Duration: 1, EndBehavior: EndLoop})
	a := c.Item("a")
	a.AddTween(TweenPosition(a.Transform(), Vec3{100, 0, 0}, 1, ease.Linear))

	c.Tick(0.5)
	if math.Abs(a.Transform().Position().X-50) > 0.01 {
		t.Fatalf("X = %f, want 50", a.Transform().Position().X)
	}
	c.Tick(0.75) // wraps to local time 0.25
	if math.Abs(a.Transform().Position().X-25) > 0.01 {
		t.Errorf("X after wrap = %f, want 25", a.Transform().Position().X)
	}
}

func TestItemTweenFollowsSeek(t *testing.T) {
	c := loadComp(t, Options{Duration: 10}, ItemDef{ID: "a", Duration: 5})
	a := c.Item("a")
	a.AddTween(TweenPosition(a.Transform(), Vec3{100, 0, 0}, 1, ease.Linear))

	c.Tick(0.8)
	c.Seek(0.25)
	if math.Abs(a.Transform().Position().X-25) > 0.01 {
		t.Errorf("X after seek = %f, want 25", a.Transform().Position().X)
	}
}
