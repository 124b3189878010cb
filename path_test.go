package tableau

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestPathSortsKeys(t *testing.T) {
	p := NewPath(
		PathKey{Time: 2, Value: Vec3{2, 0, 0}},
		PathKey{Time: 0, Value: Vec3{}},
		PathKey{Time: 1, Value: Vec3{1, 0, 0}},
	)
	keys := p.Keys()
	for i := 1; i < len(keys); i++ {
		if keys[i-1].Time > keys[i].Time {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
}

func TestPathSampleClamps(t *testing.T) {
	p := NewPath(
		PathKey{Time: 1, Value: Vec3{1, 2, 3}},
		PathKey{Time: 3, Value: Vec3{5, 6, 7}},
	)
	assertVec3(t, "before", p.Sample(0), Vec3{1, 2, 3})
	assertVec3(t, "after", p.Sample(9), Vec3{5, 6, 7})
	assertVec3(t, "mid", p.Sample(2), Vec3{3, 4, 5})
}

func TestPathSampleEased(t *testing.T) {
	p := NewPath(
		PathKey{Time: 0, Value: Vec3{}, Ease: ease.InOutQuad},
		PathKey{Time: 1, Value: Vec3{10, 0, 0}},
	)
	// InOutQuad is symmetric around the midpoint and slow at the start.
	assertVec3(t, "mid", p.Sample(0.5), Vec3{5, 0, 0})
	if x := p.Sample(0.25).X; x >= 2.5 {
		t.Errorf("eased quarter = %v, want < 2.5", x)
	}
}

func TestPathEmpty(t *testing.T) {
	assertVec3(t, "empty", NewPath().Sample(1), Vec3{})
}

func TestEaseByName(t *testing.T) {
	if _, ok := EaseByName("outBounce"); !ok {
		t.Error("outBounce should be registered")
	}
	if _, ok := EaseByName(""); !ok {
		t.Error("empty name should select linear")
	}
	if _, ok := EaseByName("wobble"); ok {
		t.Error("unknown name should report ok=false")
	}
}
