package tableau

// HitShape defines a custom hit testing region in an item's local space.
type HitShape interface {
	Contains(x, y float64) bool
}

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// HitPolygon is a convex polygon hit area in local coordinates.
// Points must define a convex polygon in either winding order.
type HitPolygon struct {
	Points []Vec2
}

// Contains reports whether (x, y) lies inside a convex polygon using a
// cross-product sign test.
func (p HitPolygon) Contains(x, y float64) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}

	var positive, negative bool
	for i := 0; i < n; i++ {
		x1, y1 := p.Points[i].X, p.Points[i].Y
		j := (i + 1) % n
		x2, y2 := p.Points[j].X, p.Points[j].Y

		cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// defaultHitShape is used by interact items without a shape.
var defaultHitShape = HitRect{X: -0.5, Y: -0.5, Width: 1, Height: 1}

// itemContainsWorld tests a world point against an interact item's shape.
func itemContainsWorld(it *Item, ic *InteractContent, wx, wy float64) bool {
	local := it.transform.WorldToLocal(Vec3{X: wx, Y: wy})
	shape := ic.Shape
	if shape == nil {
		shape = defaultHitShape
	}
	return shape.Contains(local.X, local.Y)
}

// HitTest returns the topmost active interact item containing the world
// point, or nil. Items are tested in reverse render order.
func (c *Composition) HitTest(wx, wy float64) *Item {
	for i := len(c.items) - 1; i >= 0; i-- {
		it := c.items[i]
		if !it.Active() || it.faulted {
			continue
		}
		ic, ok := it.content.(*InteractContent)
		if !ok {
			continue
		}
		if itemContainsWorld(it, ic, wx, wy) {
			return it
		}
	}
	return nil
}

// Click converts a screen point through the camera, hit-tests it and emits
// EventClick for the item hit. It returns the item, or nil.
func (c *Composition) Click(sx, sy float64) *Item {
	wx, wy := c.camera.ScreenToWorld(sx, sy)
	it := c.HitTest(wx, wy)
	if it == nil {
		return nil
	}
	c.emit(Event{
		Type:    EventClick,
		Item:    it,
		Payload: it.content.(*InteractContent).Payload,
		X:       wx,
		Y:       wy,
	})
	return it
}
