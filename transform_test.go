package tableau

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertVec3(t *testing.T, name string, got, want Vec3) {
	t.Helper()
	if math.Abs(got.X-want.X) > epsilon || math.Abs(got.Y-want.Y) > epsilon || math.Abs(got.Z-want.Z) > epsilon {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

// validTransform returns a transform that reads its computed values.
func validTransform(parent *Transform) *Transform {
	tr := NewTransform()
	tr.setValid(true)
	if parent != nil {
		if err := tr.SetParent(parent); err != nil {
			panic(err)
		}
	}
	return tr
}

func TestTransformChainWorldPosition(t *testing.T) {
	root := validTransform(nil)
	child := validTransform(root)
	grandchild := validTransform(child)
	for _, tr := range []*Transform{root, child, grandchild} {
		tr.SetPosition(Vec3{1, 0, 0})
	}

	assertVec3(t, "grandchild", grandchild.WorldPosition(), Vec3{3, 0, 0})

	// Only the root is touched; the grandchild must notice on its own.
	root.SetPosition(Vec3{5, 2, 0})
	assertVec3(t, "grandchild after root move", grandchild.WorldPosition(), Vec3{7, 2, 0})
}

func TestTransformMiddleMutation(t *testing.T) {
	root := validTransform(nil)
	child := validTransform(root)
	grandchild := validTransform(child)
	grandchild.WorldPosition()

	child.SetPosition(Vec3{0, 4, 0})
	assertVec3(t, "grandchild", grandchild.WorldPosition(), Vec3{0, 4, 0})
	assertVec3(t, "root", root.WorldPosition(), Vec3{})
}

func TestTransformCachedReadDoesNotRecompute(t *testing.T) {
	root := validTransform(nil)
	child := validTransform(root)
	child.SetPosition(Vec3{1, 1, 0})
	child.WorldMatrix()

	gen := child.Generation()
	child.WorldMatrix()
	child.WorldPosition()
	if child.Generation() != gen {
		t.Errorf("generation moved from %d to %d without a change", gen, child.Generation())
	}

	root.SetPosition(Vec3{1, 0, 0})
	child.WorldMatrix()
	if child.Generation() == gen {
		t.Error("generation should move after parent change")
	}
}

func TestTransformInvalidReadsIdentity(t *testing.T) {
	tr := NewTransform()
	tr.SetPosition(Vec3{10, 20, 30})
	tr.SetScale(Vec3{2, 2, 2})

	if tr.WorldMatrix() != Mat4Identity {
		t.Error("invalid transform should read identity matrix")
	}
	assertVec3(t, "position", tr.WorldPosition(), Vec3{})
	assertVec3(t, "scale", tr.WorldScale(), Vec3One)
	if tr.WorldRotation() != QuatIdentity {
		t.Error("invalid transform should read identity rotation")
	}

	tr.setValid(true)
	assertVec3(t, "position after valid", tr.WorldPosition(), Vec3{10, 20, 30})
}

func TestTransformInvalidParentStillComposes(t *testing.T) {
	parent := NewTransform() // never valid
	parent.SetPosition(Vec3{3, 0, 0})
	child := validTransform(parent)
	child.SetPosition(Vec3{1, 0, 0})

	assertVec3(t, "child", child.WorldPosition(), Vec3{4, 0, 0})
	assertVec3(t, "parent", parent.WorldPosition(), Vec3{})
}

func TestTransformNegativeScalePreserved(t *testing.T) {
	parent := validTransform(nil)
	parent.SetScale(Vec3{-1, 1, 1})
	child := validTransform(parent)
	child.SetScale(Vec3{1, -2, 1})

	assertVec3(t, "world scale", child.WorldScale(), Vec3{-1, -2, 1})
	if child.WorldRotation() != QuatIdentity {
		t.Errorf("negative scale leaked into rotation: %+v", child.WorldRotation())
	}
	assertVec3(t, "point", child.LocalToWorld(Vec3{1, 1, 0}), Vec3{-1, -2, 0})
}

func TestTransformRotation(t *testing.T) {
	tr := validTransform(nil)
	tr.SetEuler(Euler{Z: 90})
	assertVec3(t, "x axis", tr.LocalToWorld(Vec3{1, 0, 0}), Vec3{0, 1, 0})
}

func TestTransformAnchor(t *testing.T) {
	tr := validTransform(nil)
	tr.SetPosition(Vec3{10, 0, 0})
	tr.SetAnchor(Vec2{5, 5})
	assertVec3(t, "origin", tr.LocalToWorld(Vec3{}), Vec3{5, -5, 0})
	assertVec3(t, "anchor", tr.LocalToWorld(Vec3{5, 5, 0}), Vec3{10, 0, 0})
}

func TestTransformWorldToLocalRoundTrip(t *testing.T) {
	parent := validTransform(nil)
	parent.SetPosition(Vec3{4, -3, 0})
	parent.SetEuler(Euler{Z: 30})
	child := validTransform(parent)
	child.SetScale(Vec3{2, 3, 1})

	p := Vec3{1.5, -0.25, 0}
	assertVec3(t, "round trip", child.WorldToLocal(child.LocalToWorld(p)), p)
}

func TestTransformPathSampledAtTime(t *testing.T) {
	tr := validTransform(nil)
	tr.SetPath(NewPath(
		PathKey{Time: 0, Value: Vec3{}},
		PathKey{Time: 2, Value: Vec3{10, 0, 0}},
	))
	tr.setTime(1)
	assertVec3(t, "midpoint", tr.WorldPosition(), Vec3{5, 0, 0})
	tr.setTime(5)
	assertVec3(t, "clamped", tr.WorldPosition(), Vec3{10, 0, 0})
}

func TestTransformSetParentCycle(t *testing.T) {
	a := NewTransform()
	b := NewTransform()
	c := NewTransform()
	if err := b.SetParent(a); err != nil {
		t.Fatal(err)
	}
	if err := c.SetParent(b); err != nil {
		t.Fatal(err)
	}

	if err := a.SetParent(c); !errors.Is(err, ErrCyclicParent) {
		t.Errorf("a under c: err = %v, want ErrCyclicParent", err)
	}
	if err := a.SetParent(a); !errors.Is(err, ErrCyclicParent) {
		t.Errorf("a under a: err = %v, want ErrCyclicParent", err)
	}
	if a.Parent() != nil {
		t.Error("rejected SetParent must not change the parent")
	}
}

func TestTransformReparent(t *testing.T) {
	left := validTransform(nil)
	left.SetPosition(Vec3{-10, 0, 0})
	right := validTransform(nil)
	right.SetPosition(Vec3{10, 0, 0})
	child := validTransform(left)

	assertVec3(t, "under left", child.WorldPosition(), Vec3{-10, 0, 0})
	if err := child.SetParent(right); err != nil {
		t.Fatal(err)
	}
	assertVec3(t, "under right", child.WorldPosition(), Vec3{10, 0, 0})
}
