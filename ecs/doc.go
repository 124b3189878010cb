// Package ecs provides ECS adapters for tableau's composition events.
//
// The primary adapter is [NewDonburiSink], which bridges composition
// lifecycle events (message begin and end, item end, loop start, click,
// composition end) into a [Donburi] world as typed events. Subscribe to
// [LifecycleEventType] in your ECS systems to receive them. Each item that
// raises an event is also mirrored as an entity holding an [ItemRecord].
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	comp.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
