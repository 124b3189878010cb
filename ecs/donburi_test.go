package ecs

import (
	"testing"

	"github.com/phanxgames/tableau"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func newComp(t *testing.T, opts tableau.Options, defs ...tableau.ItemDef) *tableau.Composition {
	t.Helper()
	c := tableau.NewComposition(opts)
	if err := c.Load(defs); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	var sink tableau.EventSink = NewDonburiSink(world)
	if sink == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
}

func TestDonburiSinkPublishes(t *testing.T) {
	world := donburi.NewWorld()
	c := newComp(t, tableau.Options{Duration: 5},
		tableau.ItemDef{ID: "msg", Duration: 1, Content: &tableau.MessageContent{Payload: "hello"}},
	)
	c.SetEventSink(NewDonburiSink(world))

	var received []tableau.Event
	LifecycleEventType.Subscribe(world, func(w donburi.World, e tableau.Event) {
		received = append(received, e)
	})

	c.Tick(0.5)
	c.Tick(1)

	// Events are queued; process them.
	LifecycleEventType.ProcessEvents(world)

	if len(received) != 3 {
		t.Fatalf("expected 3 events, got %d", len(received))
	}
	want := []tableau.EventType{tableau.EventMessageBegin, tableau.EventMessageEnd, tableau.EventItemEnd}
	for i, e := range received {
		if e.Type != want[i] {
			t.Errorf("event %d = %v, want %v", i, e.Type, want[i])
		}
	}
	if received[0].Payload != "hello" || received[0].Item != c.Item("msg") {
		t.Errorf("event 0: %+v", received[0])
	}
}

func TestDonburiSinkMirrorsItems(t *testing.T) {
	world := donburi.NewWorld()
	c := newComp(t, tableau.Options{Duration: 10},
		tableau.ItemDef{ID: "spin", Duration: 1, EndBehavior: tableau.EndLoop},
		tableau.ItemDef{ID: "quiet", Duration: 5},
	)
	sink := NewDonburiSink(world)
	c.SetEventSink(sink)

	c.Tick(0.5)
	c.Tick(1)
	c.Tick(1)

	rec, ok := sink.Record(c.Item("spin"))
	if !ok {
		t.Fatal("looping item should be mirrored")
	}
	if rec.ID != "spin" || rec.Loops != 2 || rec.LastEvent != tableau.EventLoopStart || rec.Kind != tableau.ContentNull {
		t.Errorf("record = %+v", rec)
	}
	if _, ok := sink.Entity(c.Item("quiet")); ok {
		t.Error("an item without events has no entity")
	}
	if world.Len() != 1 {
		t.Errorf("world has %d entities, want 1", world.Len())
	}

	sink.Forget(c.Item("spin"))
	if _, ok := sink.Record(c.Item("spin")); ok {
		t.Error("forgotten item should have no record")
	}
	if world.Len() != 0 {
		t.Errorf("world has %d entities after Forget", world.Len())
	}
}

func TestDonburiSinkClicks(t *testing.T) {
	world := donburi.NewWorld()
	c := newComp(t, tableau.Options{Duration: 10},
		tableau.ItemDef{ID: "btn", Duration: 10, Content: &tableau.InteractContent{
			Payload: "go",
			Shape:   tableau.HitRect{X: -5, Y: -5, Width: 10, Height: 10},
		}},
	)
	c.Camera().SetViewport(tableau.Rect{Width: 100, Height: 100})
	sink := NewDonburiSink(world)
	c.SetEventSink(sink)

	c.Tick(0.1)
	if c.Click(50, 50) == nil {
		t.Fatal("click at the viewport center should hit")
	}
	c.Click(50, 50)

	rec, _ := sink.Record(c.Item("btn"))
	if rec.Clicks != 2 || rec.Payload != "go" || rec.Kind != tableau.ContentInteract {
		t.Errorf("record = %+v", rec)
	}
}

func TestDonburiSinkCompositionEvents(t *testing.T) {
	world := donburi.NewWorld()
	c := newComp(t, tableau.Options{Duration: 1, EndBehavior: tableau.EndLoop},
		tableau.ItemDef{ID: "a", Duration: 1, Static: true},
	)
	sink := NewDonburiSink(world)
	c.SetEventSink(sink)

	c.Tick(1.5)
	if sink.CompositionLoops() != 1 {
		t.Errorf("loops = %d, want 1", sink.CompositionLoops())
	}

	count := 0
	LifecycleEventType.Subscribe(world, func(w donburi.World, e tableau.Event) {
		count++
	})
	events.ProcessAllEvents(world)
	if count == 0 {
		t.Error("composition events should be published too")
	}
}
