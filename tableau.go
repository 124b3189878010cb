package tableau

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for anchors, sizes and screen coordinates.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width && r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height && r.Y+r.Height >= other.Y
}

// Range is a general-purpose min/max range used by the particle emitter.
type Range struct {
	Min, Max float64
}

// BlendMode selects a compositing operation. The renderer maps each value to
// its own blend state.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                       // additive / lighter
	BlendMultiply                  // multiply (source * destination; only darkens)
	BlendScreen                    // screen (1 - (1-src)*(1-dst); only brightens)
	BlendErase                     // destination-out (punch transparent holes)
	BlendNone                      // opaque copy (skip blending)
)

// RenderMode selects how a sprite's quad is oriented.
type RenderMode uint8

const (
	RenderModeBillboard RenderMode = iota // faces the camera
	RenderModeMesh                        // uses the item's full world rotation
	RenderModeVerticalBillboard
	RenderModeHorizontalBillboard
)

// MaskMode selects a sprite's participation in stencil masking.
type MaskMode uint8

const (
	MaskNone      MaskMode = iota
	MaskWrite              // writes the stencil
	MaskObscured           // drawn only outside the mask
	MaskRevealed           // drawn only inside the mask
)

// Side selects face culling for a sprite quad.
type Side uint8

const (
	SideFront Side = iota
	SideBack
	SideDouble
)

// EndBehavior is the policy governing an item after its active duration elapses.
type EndBehavior uint8

const (
	EndDestroy EndBehavior = iota // item is removed from the composition
	EndFreeze                     // last frame holds, item stays active
	EndLoop                       // local time wraps around
	EndForward                    // item stops rendering, transform stays clamped for descendants
)

// String returns the scene-file spelling of the end behavior.
func (b EndBehavior) String() string {
	switch b {
	case EndDestroy:
		return "destroy"
	case EndFreeze:
		return "freeze"
	case EndLoop:
		return "loop"
	case EndForward:
		return "forward"
	}
	return "unknown"
}

// LifetimeState is an item's position in its Pending → Active → Ended lifecycle.
type LifetimeState uint8

const (
	StatePending LifetimeState = iota
	StateActive
	StateEnded
)

// String returns a lowercase name for the state.
func (s LifetimeState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

// EventType identifies a kind of lifecycle or interaction event.
type EventType uint8

const (
	EventMessageBegin    EventType = iota // a message item became active
	EventMessageEnd                       // a message item left its active window
	EventItemEnd                          // an item reached the end of its lifetime
	EventLoopStart                        // a looping item wrapped around
	EventClick                            // an active interact item was clicked
	EventCompositionEnd                   // the composition reached its end
	eventTypeCount
)

// String returns a lowercase name for the event type.
func (e EventType) String() string {
	switch e {
	case EventMessageBegin:
		return "message-begin"
	case EventMessageEnd:
		return "message-end"
	case EventItemEnd:
		return "end"
	case EventLoopStart:
		return "loop-start"
	case EventClick:
		return "click"
	case EventCompositionEnd:
		return "composition-end"
	}
	return "unknown"
}
