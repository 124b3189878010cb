package tableau

import "testing"

func TestResolveTimePending(t *testing.T) {
	r := ResolveTime(0.5, TimeWindow{Delay: 1, Duration: 2})
	if r.State != StatePending || r.Active {
		t.Errorf("got %+v, want pending", r)
	}
}

func TestResolveTimeInsideWindow(t *testing.T) {
	r := ResolveTime(1.5, TimeWindow{Delay: 1, Duration: 2})
	if r.State != StateActive || !r.Active {
		t.Fatalf("got %+v, want active", r)
	}
	assertNear(t, "local", r.LocalTime, 0.5)
}

func TestResolveTimeStartIsInclusive(t *testing.T) {
	r := ResolveTime(1, TimeWindow{Delay: 1, Duration: 2})
	if !r.Active {
		t.Errorf("t == delay should be active, got %+v", r)
	}
}

func TestResolveTimeEndBehaviors(t *testing.T) {
	tests := []struct {
		name   string
		end    EndBehavior
		at     float64
		state  LifetimeState
		active bool
		local  float64
		cycle  int
	}{
		{"destroy at end", EndDestroy, 3, StateEnded, false, 2, 0},
		{"destroy after", EndDestroy, 10, StateEnded, false, 2, 0},
		{"freeze", EndFreeze, 10, StateActive, true, 2, 0},
		{"forward", EndForward, 4, StateEnded, false, 2, 0},
		{"loop first wrap", EndLoop, 3.5, StateActive, true, 0.5, 1},
		{"loop third pass", EndLoop, 6, StateActive, true, 1, 2},
		{"loop exact boundary", EndLoop, 5, StateActive, true, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ResolveTime(tt.at, TimeWindow{Delay: 1, Duration: 2, EndBehavior: tt.end})
			if r.State != tt.state || r.Active != tt.active || r.Cycle != tt.cycle {
				t.Errorf("got %+v, want state=%v active=%v cycle=%d", r, tt.state, tt.active, tt.cycle)
			}
			assertNear(t, "local", r.LocalTime, tt.local)
		})
	}
}

func TestResolveTimeStatic(t *testing.T) {
	w := TimeWindow{Delay: 1, Static: true}
	if r := ResolveTime(0, w); r.Active {
		t.Error("static item should still honor its delay")
	}
	r := ResolveTime(1000, w)
	if !r.Active {
		t.Fatal("static item should stay active")
	}
	assertNear(t, "local", r.LocalTime, 999)
}

func TestEndBehaviorString(t *testing.T) {
	for b, want := range map[EndBehavior]string{
		EndDestroy: "destroy",
		EndFreeze:  "freeze",
		EndLoop:    "loop",
		EndForward: "forward",
	} {
		if b.String() != want {
			t.Errorf("%d.String() = %q, want %q", b, b.String(), want)
		}
	}
}
