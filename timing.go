package tableau

import "math"

// TimeWindow describes when an item is alive on the composition timeline.
type TimeWindow struct {
	Delay       float64
	Duration    float64
	EndBehavior EndBehavior
	// Static items have no end: once started they stay active forever and
	// Duration is ignored.
	Static bool
}

// Resolution is the outcome of mapping a global playhead onto a TimeWindow.
type Resolution struct {
	State     LifetimeState
	Active    bool
	LocalTime float64
	// Cycle counts completed loops for EndLoop windows; zero otherwise.
	Cycle int
}

// End returns the global time at which the window's first pass finishes.
func (w TimeWindow) End() float64 {
	return w.Delay + w.Duration
}

// ResolveTime maps globalTime onto w. It is a pure function: lifecycle side
// effects (events, reconciler notifications) are applied by the Composition.
func ResolveTime(globalTime float64, w TimeWindow) Resolution {
	if globalTime < w.Delay {
		return Resolution{State: StatePending}
	}
	local := globalTime - w.Delay
	if w.Static {
		return Resolution{State: StateActive, Active: true, LocalTime: local}
	}
	if local < w.Duration {
		return Resolution{State: StateActive, Active: true, LocalTime: local}
	}

	switch w.EndBehavior {
	case EndFreeze:
		return Resolution{State: StateActive, Active: true, LocalTime: w.Duration}
	case EndLoop:
		cycles := math.Floor(local / w.Duration)
		return Resolution{
			State:     StateActive,
			Active:    true,
			LocalTime: local - cycles*w.Duration,
			Cycle:     int(cycles),
		}
	case EndForward:
		return Resolution{State: StateEnded, LocalTime: w.Duration}
	default:
		return Resolution{State: StateEnded, LocalTime: w.Duration}
	}
}
