package tableau

// ContentKind distinguishes what an item renders or does.
type ContentKind uint8

const (
	ContentNull     ContentKind = iota // transform only
	ContentSprite                      // batched textured quad
	ContentParticle                    // CPU particle emitter, drawn on its own
	ContentMessage                     // emits message begin/end events
	ContentInteract                    // clickable hit region
)

// String returns the scene-file spelling of the kind.
func (k ContentKind) String() string {
	switch k {
	case ContentNull:
		return "null"
	case ContentSprite:
		return "sprite"
	case ContentParticle:
		return "particle"
	case ContentMessage:
		return "message"
	case ContentInteract:
		return "interact"
	}
	return "unknown"
}

// Content is an item's payload.
type Content interface {
	Kind() ContentKind
}

// LoopStarter is implemented by content with one-shot state that must be
// re-armed each time a looping item wraps around.
type LoopStarter interface {
	OnLoopStart()
}

// contentUpdater is implemented by content that simulates per tick.
type contentUpdater interface {
	update(it *Item, dt float64)
}

// contentActivator is implemented by content that starts and stops with its
// item's active window.
type contentActivator interface {
	activate(it *Item)
	deactivate(it *Item)
}

// contentBinder is implemented by content that needs its owning item, to
// report render state changes.
type contentBinder interface {
	bind(it *Item)
}

// TextureRegion describes a sub-rectangle within an atlas page.
// Value type, stored directly on the content.
type TextureRegion struct {
	Page      uint16 // atlas page index registered with the renderer
	X, Y      uint16 // top-left corner of the sub-image rect within the page
	Width     uint16
	Height    uint16
	OriginalW uint16 // untrimmed width as authored
	OriginalH uint16 // untrimmed height as authored
	OffsetX   int16  // horizontal trim offset
	OffsetY   int16  // vertical trim offset
	Rotated   bool   // stored 90 degrees clockwise in the atlas
}

// --- Null ---

// NullContent renders nothing. Null items exist to carry a transform for
// their descendants.
type NullContent struct{}

// Kind implements Content.
func (*NullContent) Kind() ContentKind { return ContentNull }

// --- Sprite ---

// SpriteContent is a textured quad. Sprites are the batched content family:
// consecutive sprites with an equal BatchKey share one draw batch.
//
// Fields may be set freely before the item is added to a composition. After
// that, use the setters so the reconciler sees the change.
type SpriteContent struct {
	Region     TextureRegion
	Color      Color
	RenderMode RenderMode
	BlendMode  BlendMode
	MaskMode   MaskMode
	Side       Side
	// Hidden sprites stay alive but leave their batch and block merging
	// across their position.
	Hidden bool

	item *Item
}

// NewSpriteContent returns a visible white sprite for region.
func NewSpriteContent(region TextureRegion) *SpriteContent {
	return &SpriteContent{Region: region, Color: ColorWhite}
}

// Kind implements Content.
func (*SpriteContent) Kind() ContentKind { return ContentSprite }

func (s *SpriteContent) bind(it *Item) { s.item = it }

func (s *SpriteContent) changed() {
	if s.item != nil {
		s.item.MarkRenderDirty()
	}
}

// BatchKey returns the render-state fingerprint of the sprite.
func (s *SpriteContent) BatchKey() BatchKey {
	return BatchKey{
		RenderMode: s.RenderMode,
		BlendMode:  s.BlendMode,
		MaskMode:   s.MaskMode,
		Side:       s.Side,
	}
}

// SetVisible shows or hides the sprite.
func (s *SpriteContent) SetVisible(v bool) {
	if s.Hidden == !v {
		return
	}
	s.Hidden = !v
	s.changed()
}

// SetBlendMode changes the blend mode.
func (s *SpriteContent) SetBlendMode(b BlendMode) {
	if s.BlendMode == b {
		return
	}
	s.BlendMode = b
	s.changed()
}

// SetRenderMode changes the render mode.
func (s *SpriteContent) SetRenderMode(m RenderMode) {
	if s.RenderMode == m {
		return
	}
	s.RenderMode = m
	s.changed()
}

// SetMaskMode changes the mask mode.
func (s *SpriteContent) SetMaskMode(m MaskMode) {
	if s.MaskMode == m {
		return
	}
	s.MaskMode = m
	s.changed()
}

// SetRegion changes the texture region. A page change can move the sprite
// into another batch when the texture budget is exhausted.
func (s *SpriteContent) SetRegion(r TextureRegion) {
	pageChanged := s.Region.Page != r.Page
	s.Region = r
	if pageChanged {
		s.changed()
	}
}

// --- Message ---

// MessageContent emits EventMessageBegin when its item becomes active and
// EventMessageEnd when it leaves its active window.
type MessageContent struct {
	Payload string
}

// Kind implements Content.
func (*MessageContent) Kind() ContentKind { return ContentMessage }

// --- Interact ---

// InteractContent makes an item clickable while it is active.
type InteractContent struct {
	// Shape is tested in the item's local space. Nil means a unit square
	// centered on the origin.
	Shape HitShape
	// Payload is copied into EventClick.
	Payload string
}

// Kind implements Content.
func (*InteractContent) Kind() ContentKind { return ContentInteract }
