package tableau

import "fmt"

// ItemDef is the resolved description of an item, as produced by the scene
// loader or written by hand.
type ItemDef struct {
	ID       string
	Name     string
	ParentID string

	Delay       float64
	Duration    float64
	EndBehavior EndBehavior
	Static      bool

	Position Vec3
	Rotation Euler
	// Scale defaults to (1, 1, 1) when nil.
	Scale  *Vec3
	Anchor Vec2
	Path   *Path

	// Content defaults to NullContent when nil.
	Content Content
}

// Item is a timed entity. It exclusively owns its Transform; the transform
// tree only mirrors the item tree as associations.
type Item struct {
	ID       string
	Name     string
	ParentID string

	window    TimeWindow
	transform *Transform
	content   Content

	listIndex int
	state     LifetimeState
	localTime float64
	cycle     int

	comp     *Composition
	parent   *Item
	children []*Item

	tweens []*TweenGroup

	renderDirty bool // batch key or visibility changed since the last tick
	inSplits    bool // registered with the sprite reconciler
	endFired    bool
	faulted     bool
	retired     bool // destroyed; restored on composition restart
}

// NewItem validates def and builds an Item in the Pending state.
func NewItem(def ItemDef) (*Item, error) {
	if def.Delay < 0 {
		return nil, fmt.Errorf("item %q: %w", def.ID, ErrNegativeDelay)
	}
	if !def.Static && def.Duration <= 0 {
		return nil, fmt.Errorf("item %q: %w", def.ID, ErrInvalidDuration)
	}

	tr := NewTransform()
	tr.position = def.Position
	tr.rotation = QuatFromEuler(def.Rotation)
	if def.Scale != nil {
		tr.scale = *def.Scale
	}
	tr.anchor = def.Anchor
	tr.path = def.Path

	content := def.Content
	if content == nil {
		content = &NullContent{}
	}

	it := &Item{
		ID:       def.ID,
		Name:     def.Name,
		ParentID: def.ParentID,
		window: TimeWindow{
			Delay:       def.Delay,
			Duration:    def.Duration,
			EndBehavior: def.EndBehavior,
			Static:      def.Static,
		},
		transform: tr,
		content:   content,
		listIndex: -1,
	}
	if b, ok := content.(contentBinder); ok {
		b.bind(it)
	}
	return it, nil
}

// Transform returns the item's transform node.
func (it *Item) Transform() *Transform { return it.transform }

// Content returns the item's payload.
func (it *Item) Content() Content { return it.content }

// Window returns the item's time window.
func (it *Item) Window() TimeWindow { return it.window }

// ListIndex returns the render-order key. -1 until the item is added to a
// composition.
func (it *Item) ListIndex() int { return it.listIndex }

// State returns the lifecycle state.
func (it *Item) State() LifetimeState { return it.state }

// Active reports whether the item is inside its active window.
func (it *Item) Active() bool { return it.state == StateActive }

// Faulted reports whether the item panicked during an update. A faulted item
// is skipped until the composition restarts.
func (it *Item) Faulted() bool { return it.faulted }

// LocalTime returns the item's time within its window.
func (it *Item) LocalTime() float64 { return it.localTime }

// Parent returns the resolved parent item, or nil.
func (it *Item) Parent() *Item { return it.parent }

// Children returns the resolved child items. The returned slice MUST NOT be
// mutated by the caller.
func (it *Item) Children() []*Item { return it.children }

// Composition returns the owning composition, or nil.
func (it *Item) Composition() *Composition { return it.comp }

// MarkRenderDirty flags a batch key or visibility change. The composition
// forwards it to the reconciler on the next tick.
func (it *Item) MarkRenderDirty() {
	if it.renderDirty {
		return
	}
	it.renderDirty = true
	if it.comp != nil {
		it.comp.restyled = append(it.comp.restyled, it)
	}
}

// AddTween attaches a tween that advances with the item while it is active.
func (it *Item) AddTween(g *TweenGroup) {
	it.tweens = append(it.tweens, g)
}

// Sprite returns the sprite content, or nil if the item is not a sprite.
func (it *Item) Sprite() *SpriteContent {
	s, _ := it.content.(*SpriteContent)
	return s
}

// splitRole classifies the item for the sprite reconciler.
type splitRole uint8

const (
	roleNone    splitRole = iota // ignored: renders nothing
	roleMember                   // batched sprite
	roleBlocker                  // renders outside any batch; splits runs
)

func (it *Item) splitRole() splitRole {
	switch c := it.content.(type) {
	case *SpriteContent:
		if c.Hidden {
			return roleBlocker
		}
		return roleMember
	case *ParticleContent:
		return roleBlocker
	default:
		return roleNone
	}
}

// batchKey returns the sprite's key; non-sprites return the zero key.
func (it *Item) batchKey() BatchKey {
	if s, ok := it.content.(*SpriteContent); ok {
		return s.BatchKey()
	}
	return BatchKey{}
}

// texturePage returns the atlas page a member samples.
func (it *Item) texturePage() uint16 {
	if s, ok := it.content.(*SpriteContent); ok {
		return s.Region.Page
	}
	return 0
}

// setParent links it under p in both the item and transform trees.
func (it *Item) setParent(p *Item) error {
	var pt *Transform
	if p != nil {
		pt = p.transform
	} else if it.comp != nil {
		pt = it.comp.root
	}
	if err := it.transform.SetParent(pt); err != nil {
		return fmt.Errorf("item %q: %w", it.ID, err)
	}
	if it.parent != nil {
		it.parent.removeChild(it)
	}
	it.parent = p
	if p != nil {
		p.children = append(p.children, it)
	}
	return nil
}

func (it *Item) removeChild(child *Item) {
	for i, c := range it.children {
		if c == child {
			copy(it.children[i:], it.children[i+1:])
			it.children[len(it.children)-1] = nil
			it.children = it.children[:len(it.children)-1]
			return
		}
	}
}

// reset returns the item to Pending for a composition restart.
func (it *Item) reset() {
	it.state = StatePending
	it.localTime = 0
	it.cycle = 0
	it.endFired = false
	it.faulted = false
	it.retired = false
	it.transform.setValid(false)
	it.transform.setTime(0)
	if p, ok := it.content.(*ParticleContent); ok {
		p.Emitter.Reset()
	}
}
