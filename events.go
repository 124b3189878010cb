package tableau

import "slices"

// Event is a lifecycle or interaction notification emitted during Tick or
// Click.
type Event struct {
	Type EventType
	// Item is the item the event concerns. Nil for EventCompositionEnd and for
	// EventLoopStart raised by a composition-level loop.
	Item *Item
	// Time is the composition's global time when the event fired.
	Time float64
	// Payload carries the message text or the interact payload.
	Payload string
	// Cycle is the loop count for EventLoopStart.
	Cycle int
	// X and Y are the world-space click position for EventClick.
	X, Y float64
}

// EventSink receives every event a composition emits, after the registered
// callbacks. The ecs adapter implements it.
type EventSink interface {
	HandleEvent(Event)
}

type eventHandler struct {
	id uint32
	fn func(Event)
}

type handlerRegistry struct {
	handlers [eventTypeCount][]eventHandler
	nextID   uint32
}

// CallbackHandle allows removing a registered composition callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires. Safe to call from
// inside the callback itself.
func (h CallbackHandle) Remove() {
	if h.reg == nil || h.event >= eventTypeCount {
		return
	}
	s := h.reg.handlers[h.event]
	for i := range s {
		if s[i].id == h.id {
			// Build a new slice so an in-flight emit keeps its view.
			h.reg.handlers[h.event] = append(s[:i:i], s[i+1:]...)
			return
		}
	}
}

func (r *handlerRegistry) add(t EventType, fn func(Event)) CallbackHandle {
	r.nextID++
	id := r.nextID
	r.handlers[t] = append(r.handlers[t], eventHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: r, event: t}
}

func (r *handlerRegistry) emit(e Event) {
	if e.Type >= eventTypeCount {
		return
	}
	for _, h := range slices.Clip(r.handlers[e.Type]) {
		h.fn(e)
	}
}

func (r *handlerRegistry) count(t EventType) int {
	if t >= eventTypeCount {
		return 0
	}
	return len(r.handlers[t])
}
