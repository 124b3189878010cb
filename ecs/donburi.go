package ecs

import (
	"github.com/phanxgames/tableau"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// LifecycleEventType is the Donburi event type for tableau composition
// events. Subscribe to it in your ECS systems to receive message, end, loop
// and click events.
var LifecycleEventType = events.NewEventType[tableau.Event]()

// ItemRecord mirrors the event history of one composition item.
type ItemRecord struct {
	ID        string
	Kind      tableau.ContentKind
	LastEvent tableau.EventType
	Ends      int
	Loops     int
	Clicks    int
	// Payload is the last message or click payload.
	Payload string
}

// ItemRecordComponent holds the ItemRecord of a mirrored item entity.
var ItemRecordComponent = donburi.NewComponentType[ItemRecord]()

// DonburiSink is a tableau.EventSink backed by a Donburi world. Every event
// is published to LifecycleEventType, and items that raise events get an
// entity carrying an ItemRecord.
type DonburiSink struct {
	world    donburi.World
	entities map[*tableau.Item]donburi.Entity
	loops    int
	ended    bool
}

// NewDonburiSink creates a sink publishing into world. Install it with
// Composition.SetEventSink.
func NewDonburiSink(world donburi.World) *DonburiSink {
	return &DonburiSink{world: world, entities: make(map[*tableau.Item]donburi.Entity)}
}

// HandleEvent implements tableau.EventSink.
func (s *DonburiSink) HandleEvent(e tableau.Event) {
	LifecycleEventType.Publish(s.world, e)

	if e.Item == nil {
		switch e.Type {
		case tableau.EventLoopStart:
			s.loops++
		case tableau.EventCompositionEnd:
			s.ended = true
		}
		return
	}

	entry := s.world.Entry(s.entity(e.Item))
	rec := ItemRecordComponent.Get(entry)
	rec.LastEvent = e.Type
	switch e.Type {
	case tableau.EventItemEnd:
		rec.Ends++
	case tableau.EventLoopStart:
		rec.Loops++
	case tableau.EventClick:
		rec.Clicks++
		rec.Payload = e.Payload
	case tableau.EventMessageBegin:
		rec.Payload = e.Payload
	}
}

func (s *DonburiSink) entity(it *tableau.Item) donburi.Entity {
	if ent, ok := s.entities[it]; ok && s.world.Valid(ent) {
		return ent
	}
	ent := s.world.Create(ItemRecordComponent)
	ItemRecordComponent.SetValue(s.world.Entry(ent), ItemRecord{ID: it.ID, Kind: it.Content().Kind()})
	s.entities[it] = ent
	return ent
}

// Entity returns the entity mirroring it, if it has raised an event.
func (s *DonburiSink) Entity(it *tableau.Item) (donburi.Entity, bool) {
	ent, ok := s.entities[it]
	if !ok || !s.world.Valid(ent) {
		var none donburi.Entity
		return none, false
	}
	return ent, true
}

// Record returns a copy of the item's record.
func (s *DonburiSink) Record(it *tableau.Item) (ItemRecord, bool) {
	ent, ok := s.Entity(it)
	if !ok {
		return ItemRecord{}, false
	}
	return *ItemRecordComponent.Get(s.world.Entry(ent)), true
}

// Forget removes the entity mirroring it.
func (s *DonburiSink) Forget(it *tableau.Item) {
	if ent, ok := s.Entity(it); ok {
		s.world.Remove(ent)
	}
	delete(s.entities, it)
}

// CompositionLoops returns how many composition-level loop events arrived.
func (s *DonburiSink) CompositionLoops() int { return s.loops }

// CompositionEnded reports whether the composition end event arrived.
func (s *DonburiSink) CompositionEnded() bool { return s.ended }
