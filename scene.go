package tableau

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SceneData is a parsed scene document. Items are still in their JSON form;
// Build materializes one composition.
type SceneData struct {
	Version      string           `json:"version"`
	Textures     []TextureDoc     `json:"textures"`
	Compositions []CompositionDoc `json:"compositions"`
}

// TextureDoc names an atlas page.
type TextureDoc struct {
	ID   string `json:"id"`
	Page uint16 `json:"page"`
	File string `json:"file"`
}

// CompositionDoc is one composition in a scene document.
type CompositionDoc struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Duration    float64   `json:"duration"`
	EndBehavior string    `json:"endBehavior"`
	Items       []ItemDoc `json:"items"`
}

// ItemDoc is one item in a composition document.
type ItemDoc struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	ParentID    string          `json:"parentId"`
	Type        string          `json:"type"`
	Delay       float64         `json:"delay"`
	Duration    float64         `json:"duration"`
	EndBehavior string          `json:"endBehavior"`
	Static      bool            `json:"static"`
	Transform   TransformDoc    `json:"transform"`
	Content     json.RawMessage `json:"content"`
}

// TransformDoc is an item's local transform.
type TransformDoc struct {
	Position []float64 `json:"position"`
	Rotation []float64 `json:"rotation"` // Euler degrees
	Scale    []float64 `json:"scale"`
	Anchor   []float64 `json:"anchor"`
	Path     *PathDoc  `json:"path"`
}

// PathDoc is a keyframed position curve.
type PathDoc struct {
	Keys []PathKeyDoc `json:"keys"`
}

// PathKeyDoc is one path keyframe. Ease names the easing into the next key.
type PathKeyDoc struct {
	Time  float64   `json:"time"`
	Value []float64 `json:"value"`
	Ease  string    `json:"ease"`
}

type spriteDoc struct {
	Page       uint16    `json:"page"`
	Region     []float64 `json:"region"` // x, y, w, h
	Size       []float64 `json:"size"`   // untrimmed w, h
	Rotated    bool      `json:"rotated"`
	Color      []float64 `json:"color"`
	RenderMode string    `json:"renderMode"`
	BlendMode  string    `json:"blendMode"`
	MaskMode   string    `json:"maskMode"`
	Side       string    `json:"side"`
	Visible    *bool     `json:"visible"`
}

type particleDoc struct {
	MaxParticles int       `json:"maxParticles"`
	EmitRate     float64   `json:"emitRate"`
	Burst        int       `json:"burst"`
	Lifetime     []float64 `json:"lifetime"`
	Speed        []float64 `json:"speed"`
	Angle        []float64 `json:"angle"` // degrees
	StartScale   []float64 `json:"startScale"`
	EndScale     []float64 `json:"endScale"`
	StartAlpha   []float64 `json:"startAlpha"`
	EndAlpha     []float64 `json:"endAlpha"`
	Gravity      []float64 `json:"gravity"`
	StartColor   []float64 `json:"startColor"`
	EndColor     []float64 `json:"endColor"`
	Page         uint16    `json:"page"`
	Region       []float64 `json:"region"`
	BlendMode    string    `json:"blendMode"`
	WorldSpace   bool      `json:"worldSpace"`
}

type messageDoc struct {
	Payload string `json:"payload"`
}

type interactDoc struct {
	Payload string    `json:"payload"`
	Shape   *shapeDoc `json:"shape"`
}

type shapeDoc struct {
	Type   string      `json:"type"` // rect, circle, polygon
	Rect   []float64   `json:"rect"`
	Center []float64   `json:"center"`
	Radius float64     `json:"radius"`
	Points [][]float64 `json:"points"`
}

// LoadScene parses a scene document and checks its version. Versions 1.x,
// 2.x and 3.0 are accepted.
func LoadScene(data []byte) (*SceneData, error) {
	var s SceneData
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("tableau: parse scene: %w", err)
	}
	if !supportedVersion(s.Version) {
		return nil, fmt.Errorf("tableau: scene version %q: %w", s.Version, ErrUnsupportedVersion)
	}
	return &s, nil
}

func supportedVersion(v string) bool {
	majorStr, minorStr, _ := strings.Cut(v, ".")
	major, err := strconv.Atoi(majorStr)
	if err != nil {
		return false
	}
	minor := 0
	if minorStr != "" {
		// Patch components are ignored.
		minorStr, _, _ = strings.Cut(minorStr, ".")
		if minor, err = strconv.Atoi(minorStr); err != nil {
			return false
		}
	}
	switch major {
	case 1, 2:
		return true
	case 3:
		return minor == 0
	}
	return false
}

// Composition returns the document with the given id. An empty id selects
// the first composition.
func (s *SceneData) Composition(id string) (*CompositionDoc, error) {
	for i := range s.Compositions {
		if id == "" || s.Compositions[i].ID == id {
			return &s.Compositions[i], nil
		}
	}
	return nil, fmt.Errorf("tableau: composition %q: %w", id, ErrNoComposition)
}

// Build materializes the composition with the given id. Duration and end
// behavior come from the document; base supplies limits, viewport and debug.
func (s *SceneData) Build(id string, base Options) (*Composition, error) {
	doc, err := s.Composition(id)
	if err != nil {
		return nil, err
	}
	defs, err := doc.ItemDefs()
	if err != nil {
		return nil, err
	}

	opts := base
	opts.ID = doc.ID
	opts.Name = doc.Name
	opts.Duration = doc.Duration
	if doc.EndBehavior != "" {
		if opts.EndBehavior, err = parseEndBehavior(doc.EndBehavior); err != nil {
			return nil, fmt.Errorf("tableau: composition %q: %w", doc.ID, err)
		}
	}

	c := NewComposition(opts)
	if err := c.Load(defs); err != nil {
		return nil, fmt.Errorf("tableau: composition %q: %w", doc.ID, err)
	}
	return c, nil
}

// ItemDefs resolves every item document.
func (d *CompositionDoc) ItemDefs() ([]ItemDef, error) {
	defs := make([]ItemDef, 0, len(d.Items))
	for i := range d.Items {
		def, err := d.Items[i].ItemDef()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// ItemDef resolves an item document into an ItemDef.
func (d *ItemDoc) ItemDef() (ItemDef, error) {
	def := ItemDef{
		ID:       d.ID,
		Name:     d.Name,
		ParentID: d.ParentID,
		Delay:    d.Delay,
		Duration: d.Duration,
		Static:   d.Static,
		Position: vec3(d.Transform.Position, Vec3{}),
		Anchor:   vec2(d.Transform.Anchor, Vec2{}),
	}
	var err error
	if d.EndBehavior != "" {
		if def.EndBehavior, err = parseEndBehavior(d.EndBehavior); err != nil {
			return def, fmt.Errorf("item %q: %w", d.ID, err)
		}
	}
	if r := d.Transform.Rotation; len(r) > 0 {
		e := vec3(r, Vec3{})
		def.Rotation = Euler{X: e.X, Y: e.Y, Z: e.Z}
	}
	if len(d.Transform.Scale) > 0 {
		s := vec3(d.Transform.Scale, Vec3One)
		def.Scale = &s
	}
	if d.Transform.Path != nil {
		if def.Path, err = d.Transform.Path.path(); err != nil {
			return def, fmt.Errorf("item %q: %w", d.ID, err)
		}
	}
	if def.Content, err = d.content(); err != nil {
		return def, fmt.Errorf("item %q: %w", d.ID, err)
	}
	return def, nil
}

func (p *PathDoc) path() (*Path, error) {
	keys := make([]PathKey, 0, len(p.Keys))
	for _, k := range p.Keys {
		key := PathKey{Time: k.Time, Value: vec3(k.Value, Vec3{})}
		if k.Ease != "" {
			fn, ok := EaseByName(k.Ease)
			if !ok {
				return nil, fmt.Errorf("unknown ease %q", k.Ease)
			}
			key.Ease = fn
		}
		keys = append(keys, key)
	}
	return NewPath(keys...), nil
}

func (d *ItemDoc) content() (Content, error) {
	raw := d.Content
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	switch d.Type {
	case "", "null":
		return &NullContent{}, nil
	case "sprite":
		var sd spriteDoc
		if err := json.Unmarshal(raw, &sd); err != nil {
			return nil, fmt.Errorf("sprite content: %w", err)
		}
		return sd.build()
	case "particle":
		var pd particleDoc
		if err := json.Unmarshal(raw, &pd); err != nil {
			return nil, fmt.Errorf("particle content: %w", err)
		}
		return pd.build()
	case "message":
		var md messageDoc
		if err := json.Unmarshal(raw, &md); err != nil {
			return nil, fmt.Errorf("message content: %w", err)
		}
		return &MessageContent{Payload: md.Payload}, nil
	case "interact":
		var id interactDoc
		if err := json.Unmarshal(raw, &id); err != nil {
			return nil, fmt.Errorf("interact content: %w", err)
		}
		ic := &InteractContent{Payload: id.Payload}
		if id.Shape != nil {
			shape, err := id.Shape.build()
			if err != nil {
				return nil, err
			}
			ic.Shape = shape
		}
		return ic, nil
	}
	return nil, fmt.Errorf("type %q: %w", d.Type, ErrUnknownItemType)
}

func (sd *spriteDoc) build() (*SpriteContent, error) {
	reg, err := region(sd.Page, sd.Region, sd.Size)
	if err != nil {
		return nil, fmt.Errorf("sprite %w", err)
	}
	s := NewSpriteContent(reg)
	s.Region.Rotated = sd.Rotated
	s.Color = color(sd.Color, ColorWhite)
	s.Hidden = sd.Visible != nil && !*sd.Visible

	if s.RenderMode, err = parseRenderMode(sd.RenderMode); err != nil {
		return nil, err
	}
	if s.BlendMode, err = parseBlendMode(sd.BlendMode); err != nil {
		return nil, err
	}
	if s.MaskMode, err = parseMaskMode(sd.MaskMode); err != nil {
		return nil, err
	}
	if s.Side, err = parseSide(sd.Side); err != nil {
		return nil, err
	}
	return s, nil
}

func (pd *particleDoc) build() (*ParticleContent, error) {
	blend, err := parseBlendMode(pd.BlendMode)
	if err != nil {
		return nil, err
	}
	reg, err := region(pd.Page, pd.Region, nil)
	if err != nil {
		return nil, fmt.Errorf("particle %w", err)
	}
	angle := rangeOf(pd.Angle, Range{0, 360})
	cfg := EmitterConfig{
		MaxParticles: pd.MaxParticles,
		EmitRate:     pd.EmitRate,
		Burst:        pd.Burst,
		Lifetime:     rangeOf(pd.Lifetime, Range{1, 1}),
		Speed:        rangeOf(pd.Speed, Range{}),
		Angle:        Range{Min: degToRad(angle.Min), Max: degToRad(angle.Max)},
		StartScale:   rangeOf(pd.StartScale, Range{1, 1}),
		EndScale:     rangeOf(pd.EndScale, Range{1, 1}),
		StartAlpha:   rangeOf(pd.StartAlpha, Range{1, 1}),
		EndAlpha:     rangeOf(pd.EndAlpha, Range{0, 0}),
		Gravity:      vec2(pd.Gravity, Vec2{}),
		StartColor:   color(pd.StartColor, ColorWhite),
		EndColor:     color(pd.EndColor, ColorWhite),
		Region:       reg,
		BlendMode:    blend,
		WorldSpace:   pd.WorldSpace,
	}
	return NewParticleContent(cfg), nil
}

func (sd *shapeDoc) build() (HitShape, error) {
	switch sd.Type {
	case "rect":
		if len(sd.Rect) != 4 {
			return nil, fmt.Errorf("rect shape needs 4 values, got %d", len(sd.Rect))
		}
		return HitRect{X: sd.Rect[0], Y: sd.Rect[1], Width: sd.Rect[2], Height: sd.Rect[3]}, nil
	case "circle":
		c := vec2(sd.Center, Vec2{})
		return HitCircle{CenterX: c.X, CenterY: c.Y, Radius: sd.Radius}, nil
	case "polygon":
		pts := make([]Vec2, 0, len(sd.Points))
		for _, p := range sd.Points {
			pts = append(pts, vec2(p, Vec2{}))
		}
		return HitPolygon{Points: pts}, nil
	}
	return nil, fmt.Errorf("unknown hit shape %q", sd.Type)
}

// --- Field helpers ---

func vec3(v []float64, def Vec3) Vec3 {
	switch len(v) {
	case 0:
		return def
	case 1:
		return Vec3{X: v[0], Y: def.Y, Z: def.Z}
	case 2:
		return Vec3{X: v[0], Y: v[1], Z: def.Z}
	}
	return Vec3{X: v[0], Y: v[1], Z: v[2]}
}

func vec2(v []float64, def Vec2) Vec2 {
	if len(v) < 2 {
		return def
	}
	return Vec2{X: v[0], Y: v[1]}
}

func color(v []float64, def Color) Color {
	switch len(v) {
	case 3:
		return Color{R: v[0], G: v[1], B: v[2], A: 1}
	case 4:
		return Color{R: v[0], G: v[1], B: v[2], A: v[3]}
	}
	return def
}

func rangeOf(v []float64, def Range) Range {
	switch len(v) {
	case 1:
		return Range{Min: v[0], Max: v[0]}
	case 2:
		return Range{Min: v[0], Max: v[1]}
	}
	return def
}

func region(page uint16, rect, size []float64) (TextureRegion, error) {
	r := TextureRegion{Page: page}
	for _, vs := range [][]float64{rect, size} {
		for _, v := range vs {
			if !(v >= 0 && v <= math.MaxUint16) {
				return r, fmt.Errorf("region value %v out of range [0, %d]", v, math.MaxUint16)
			}
		}
	}
	if len(rect) == 4 {
		r.X, r.Y = uint16(rect[0]), uint16(rect[1])
		r.Width, r.Height = uint16(rect[2]), uint16(rect[3])
	}
	r.OriginalW, r.OriginalH = r.Width, r.Height
	if len(size) == 2 {
		r.OriginalW, r.OriginalH = uint16(size[0]), uint16(size[1])
	}
	return r, nil
}

// --- Enum parsing ---

func parseEndBehavior(s string) (EndBehavior, error) {
	switch s {
	case "destroy":
		return EndDestroy, nil
	case "freeze":
		return EndFreeze, nil
	case "loop":
		return EndLoop, nil
	case "forward":
		return EndForward, nil
	}
	return EndDestroy, fmt.Errorf("unknown end behavior %q", s)
}

func parseRenderMode(s string) (RenderMode, error) {
	switch s {
	case "", "billboard":
		return RenderModeBillboard, nil
	case "mesh":
		return RenderModeMesh, nil
	case "verticalBillboard":
		return RenderModeVerticalBillboard, nil
	case "horizontalBillboard":
		return RenderModeHorizontalBillboard, nil
	}
	return 0, fmt.Errorf("unknown render mode %q", s)
}

func parseBlendMode(s string) (BlendMode, error) {
	switch s {
	case "", "normal":
		return BlendNormal, nil
	case "add":
		return BlendAdd, nil
	case "multiply":
		return BlendMultiply, nil
	case "screen":
		return BlendScreen, nil
	case "erase":
		return BlendErase, nil
	case "none":
		return BlendNone, nil
	}
	return 0, fmt.Errorf("unknown blend mode %q", s)
}

func parseMaskMode(s string) (MaskMode, error) {
	switch s {
	case "", "none":
		return MaskNone, nil
	case "write":
		return MaskWrite, nil
	case "obscured":
		return MaskObscured, nil
	case "revealed":
		return MaskRevealed, nil
	}
	return 0, fmt.Errorf("unknown mask mode %q", s)
}

func parseSide(s string) (Side, error) {
	switch s {
	case "", "front":
		return SideFront, nil
	case "back":
		return SideBack, nil
	case "double":
		return SideDouble, nil
	}
	return 0, fmt.Errorf("unknown side %q", s)
}
