package tableau

// Transform is a node in the transform tree. World values are computed
// lazily: a read validates the parent chain, then recomputes this node only if
// its own dirty flag is set or the parent's generation moved since the last
// computation. Mutations never walk the subtree.
//
// The parent pointer is a non-owning back-reference.
type Transform struct {
	parent *Transform

	// Local
	position Vec3
	rotation Quat
	scale    Vec3
	anchor   Vec2
	path     *Path
	time     float64 // local time the path is sampled at

	// Computed
	worldMatrix   Mat4
	worldRotation Quat
	worldScale    Vec3

	dirty      bool
	generation uint64
	parentGen  uint64
	valid      bool
}

// NewTransform returns a root transform at the origin with unit scale.
// It reads as identity until it is marked valid.
func NewTransform() *Transform {
	return &Transform{
		rotation:      QuatIdentity,
		scale:         Vec3One,
		worldMatrix:   Mat4Identity,
		worldRotation: QuatIdentity,
		worldScale:    Vec3One,
		dirty:         true,
	}
}

// touch records a local change.
func (t *Transform) touch() {
	t.dirty = true
	t.generation++
}

// --- Local setters ---

// SetPosition sets the local position.
func (t *Transform) SetPosition(p Vec3) {
	t.position = p
	t.touch()
}

// SetRotation sets the local rotation from a quaternion.
func (t *Transform) SetRotation(q Quat) {
	t.rotation = q.Normalize()
	t.touch()
}

// SetEuler sets the local rotation from XYZ Euler angles in degrees.
func (t *Transform) SetEuler(e Euler) {
	t.rotation = QuatFromEuler(e)
	t.touch()
}

// SetScale sets the local scale. Negative components mirror that axis.
func (t *Transform) SetScale(s Vec3) {
	t.scale = s
	t.touch()
}

// SetAnchor sets the local anchor offset applied before scale and rotation.
func (t *Transform) SetAnchor(a Vec2) {
	t.anchor = a
	t.touch()
}

// SetPath attaches a keyframed position curve. Pass nil to detach.
func (t *Transform) SetPath(p *Path) {
	t.path = p
	t.touch()
}

// setTime moves the path sampling time. Only a transform with a path is
// invalidated.
func (t *Transform) setTime(local float64) {
	if t.time == local {
		return
	}
	t.time = local
	if t.path != nil {
		t.touch()
	}
}

// Position returns the local position.
func (t *Transform) Position() Vec3 { return t.position }

// Rotation returns the local rotation.
func (t *Transform) Rotation() Quat { return t.rotation }

// Scale returns the local scale.
func (t *Transform) Scale() Vec3 { return t.scale }

// Anchor returns the local anchor.
func (t *Transform) Anchor() Vec2 { return t.anchor }

// Parent returns the parent transform, or nil for a root.
func (t *Transform) Parent() *Transform { return t.parent }

// Generation returns the node's version counter. It increases on every local
// change, reparent and world recomputation.
func (t *Transform) Generation() uint64 { return t.generation }

// --- Hierarchy ---

// SetParent attaches t under parent, or detaches it when parent is nil.
// Returns ErrCyclicParent if parent is t or one of its descendants.
func (t *Transform) SetParent(parent *Transform) error {
	if parent == t.parent {
		return nil
	}
	if parent != nil && isAncestor(t, parent) {
		return ErrCyclicParent
	}
	t.parent = parent
	t.touch()
	return nil
}

// isAncestor reports whether candidate is node or one of node's ancestors.
func isAncestor(candidate, node *Transform) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// --- Validity ---

// setValid gates world reads. An invalid transform reads as identity but
// still computes its world cache for descendants.
func (t *Transform) setValid(v bool) {
	t.valid = v
}

// Valid reports whether world reads return computed values.
func (t *Transform) Valid() bool { return t.valid }

// --- World accessors ---

// WorldMatrix returns the composed world matrix, or the identity if the
// owning item has not started.
func (t *Transform) WorldMatrix() Mat4 {
	if !t.valid {
		return Mat4Identity
	}
	t.update()
	return t.worldMatrix
}

// WorldPosition returns the world-space origin of this node.
func (t *Transform) WorldPosition() Vec3 {
	if !t.valid {
		return Vec3{}
	}
	t.update()
	return t.worldMatrix.Translation()
}

// WorldRotation returns parent rotation composed with the local rotation.
func (t *Transform) WorldRotation() Quat {
	if !t.valid {
		return QuatIdentity
	}
	t.update()
	return t.worldRotation
}

// WorldScale returns the component-wise product of the scales along the
// parent chain. Signs are preserved per axis.
func (t *Transform) WorldScale() Vec3 {
	if !t.valid {
		return Vec3One
	}
	t.update()
	return t.worldScale
}

// LocalToWorld converts a point in this node's space to world space.
func (t *Transform) LocalToWorld(p Vec3) Vec3 {
	return t.WorldMatrix().TransformPoint(p)
}

// WorldToLocal converts a world-space point into this node's space.
func (t *Transform) WorldToLocal(p Vec3) Vec3 {
	return t.WorldMatrix().invert().TransformPoint(p)
}

// stale reports whether the cached world values need recomputing. The parent
// must already be up to date.
func (t *Transform) stale() bool {
	if t.dirty {
		return true
	}
	return t.parent != nil && t.parentGen != t.parent.generation
}

// update brings the world cache up to date, validating ancestors first.
func (t *Transform) update() {
	if t.parent != nil {
		t.parent.update()
	}
	if !t.stale() {
		return
	}

	local := t.localMatrix()
	if t.parent != nil {
		p := t.parent
		t.worldMatrix = p.worldMatrix.Mul(local)
		t.worldRotation = p.worldRotation.Mul(t.rotation).Normalize()
		t.worldScale = p.worldScale.Mul(t.scale)
		t.parentGen = p.generation
	} else {
		t.worldMatrix = local
		t.worldRotation = t.rotation
		t.worldScale = t.scale
		t.parentGen = 0
	}
	t.dirty = false
	t.generation++
}

// localMatrix builds T(position + path) * R * S * T(-anchor).
func (t *Transform) localMatrix() Mat4 {
	pos := t.position
	if t.path != nil {
		pos = pos.Add(t.path.Sample(t.time))
	}
	m := composeMatrix(pos, t.rotation, t.scale)
	if t.anchor.X != 0 || t.anchor.Y != 0 {
		m = m.Mul(translateMatrix(Vec3{-t.anchor.X, -t.anchor.Y, 0}))
	}
	return m
}
