package tableau

// BatchKey groups sprites that can be submitted in a single draw batch. It is
// compared with ==.
//
// Texture identity is not part of the key: a batch samples up to
// Limits.MaxFragmentTextures atlas pages, and the reconciler closes a split
// when one more page would exceed that budget.
type BatchKey struct {
	RenderMode RenderMode
	BlendMode  BlendMode
	MaskMode   MaskMode
	Side       Side
}

// Limits bound the size of a mesh split. They come from queried GPU
// capability (uniform vectors per draw, fragment texture units).
type Limits struct {
	MaxItemsPerSplit    int
	MaxFragmentTextures int
}

// DefaultLimits are conservative WebGL1-class limits.
var DefaultLimits = Limits{
	MaxItemsPerSplit:    16,
	MaxFragmentTextures: 8,
}

// normalized replaces non-positive limits with the defaults.
func (l Limits) normalized() Limits {
	if l.MaxItemsPerSplit < 1 {
		l.MaxItemsPerSplit = DefaultLimits.MaxItemsPerSplit
	}
	if l.MaxFragmentTextures < 1 {
		l.MaxFragmentTextures = DefaultLimits.MaxFragmentTextures
	}
	return l
}
