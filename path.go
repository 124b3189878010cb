package tableau

import (
	"sort"

	"github.com/tanema/gween/ease"
)

// PathKey is one keyframe of a positional curve. Ease shapes the segment
// that starts at this key; nil means linear.
type PathKey struct {
	Time  float64
	Value Vec3
	Ease  ease.TweenFunc
}

// Path is a keyframed position offset sampled at an item's local time.
// Keys are kept sorted by Time.
type Path struct {
	keys []PathKey
}

// NewPath creates a path from keys in any order.
func NewPath(keys ...PathKey) *Path {
	p := &Path{keys: append([]PathKey(nil), keys...)}
	sort.SliceStable(p.keys, func(i, j int) bool { return p.keys[i].Time < p.keys[j].Time })
	return p
}

// Keys returns the sorted keyframes. The returned slice MUST NOT be mutated.
func (p *Path) Keys() []PathKey {
	return p.keys
}

// Sample evaluates the curve at local time t, clamping outside the key range.
func (p *Path) Sample(t float64) Vec3 {
	n := len(p.keys)
	if n == 0 {
		return Vec3{}
	}
	if t <= p.keys[0].Time {
		return p.keys[0].Value
	}
	if t >= p.keys[n-1].Time {
		return p.keys[n-1].Value
	}

	// First key strictly after t; the segment is [i-1, i].
	i := sort.Search(n, func(i int) bool { return p.keys[i].Time > t })
	a, b := p.keys[i-1], p.keys[i]
	span := b.Time - a.Time
	if span <= 0 {
		return b.Value
	}

	fn := a.Ease
	if fn == nil {
		fn = ease.Linear
	}
	f := float64(fn(float32(t-a.Time), 0, 1, float32(span)))
	return a.Value.Lerp(b.Value, f)
}

// easeByName maps scene-file easing names onto gween easing functions.
var easeByName = map[string]ease.TweenFunc{
	"linear":     ease.Linear,
	"inOutQuad":  ease.InOutQuad,
	"inOutSine":  ease.InOutSine,
	"outCubic":   ease.OutCubic,
	"inOutCubic": ease.InOutCubic,
	"outBounce":  ease.OutBounce,
	"outElastic": ease.OutElastic,
}

// EaseByName returns the easing function registered under name, or
// ease.Linear with ok=false when the name is unknown.
func EaseByName(name string) (fn ease.TweenFunc, ok bool) {
	if name == "" {
		return ease.Linear, true
	}
	fn, ok = easeByName[name]
	if !ok {
		return ease.Linear, false
	}
	return fn, true
}
