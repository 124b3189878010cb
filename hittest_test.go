package tableau

import "testing"

func TestHitRectContains(t *testing.T) {
	r := HitRect{X: 10, Y: 20, Width: 30, Height: 40}
	tests := []struct {
		x, y float64
		want bool
	}{
		{10, 20, true},
		{40, 60, true},
		{25, 40, true},
		{9.9, 30, false},
		{20, 60.1, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestHitCircleContains(t *testing.T) {
	c := HitCircle{CenterX: 50, CenterY: 50, Radius: 10}
	if !c.Contains(50, 50) {
		t.Error("center should hit")
	}
	if !c.Contains(60, 50) {
		t.Error("edge should hit")
	}
	if c.Contains(58, 58) {
		t.Error("corner of the bounding square should miss")
	}
}

func TestHitPolygonContains(t *testing.T) {
	tri := HitPolygon{Points: []Vec2{{0, 0}, {10, 0}, {5, 10}}}
	if !tri.Contains(5, 3) {
		t.Error("interior should hit")
	}
	if tri.Contains(1, 9) {
		t.Error("outside the slanted edge should miss")
	}

	// Reversed winding order gives the same answer.
	rev := HitPolygon{Points: []Vec2{{5, 10}, {10, 0}, {0, 0}}}
	if !rev.Contains(5, 3) || rev.Contains(1, 9) {
		t.Error("winding order should not matter")
	}

	if (HitPolygon{Points: []Vec2{{0, 0}, {1, 1}}}).Contains(0, 0) {
		t.Error("degenerate polygon should never hit")
	}
}

func TestHitTestDefaultShape(t *testing.T) {
	c := loadComp(t, Options{Duration: 5}, ItemDef{
		ID: "b", Duration: 5, Content: &InteractContent{Payload: "b"},
		Scale: &Vec3{20, 20, 1},
	})
	c.Tick(0.1)

	// A unit square centered on the item, scaled by 20.
	if c.HitTest(9, -9) == nil {
		t.Error("point inside the scaled unit square should hit")
	}
	if c.HitTest(11, 0) != nil {
		t.Error("point outside should miss")
	}
}

func TestHitTestRotatedShape(t *testing.T) {
	c := loadComp(t, Options{Duration: 5}, ItemDef{
		ID: "bar", Duration: 5,
		Content:  &InteractContent{Shape: HitRect{X: 0, Y: -1, Width: 10, Height: 2}},
		Rotation: Euler{Z: 90},
	})
	c.Tick(0.1)

	// The bar now points along +Y.
	if c.HitTest(0, 5) == nil {
		t.Error("point along the rotated bar should hit")
	}
	if c.HitTest(5, 0) != nil {
		t.Error("point along the unrotated axis should miss")
	}
}

func TestHitTestSkipsNonInteract(t *testing.T) {
	c := loadComp(t, Options{Duration: 5},
		ItemDef{ID: "s", Duration: 5, Content: NewSpriteContent(TextureRegion{Width: 10, Height: 10})},
	)
	c.Tick(0.1)
	if c.HitTest(0, 0) != nil {
		t.Error("sprites are not hit targets")
	}
}
