package tableau

import (
	"fmt"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"
)

// Options configures a Composition.
type Options struct {
	ID   string
	Name string

	// Limits bound mesh split size. Zero values select DefaultLimits.
	Limits Limits

	// Duration is the composition length in seconds. Zero derives it from
	// the longest item window at Load.
	Duration float64

	// EndBehavior applies when the playhead reaches Duration. EndDestroy
	// stops ticking, EndLoop restarts every item, EndFreeze and EndForward
	// hold the last frame.
	EndBehavior EndBehavior

	// Viewport is the camera's initial screen rectangle.
	Viewport Rect

	// Debug enables per-tick stats logging and partition invariant checks.
	Debug bool
}

// Composition owns a set of items, drives their lifecycles from a global
// playhead and keeps the mesh split partition of the active sprites.
//
// A Composition is not safe for concurrent use. Structural changes requested
// from event callbacks during Tick are deferred until the tick completes.
type Composition struct {
	ID   string
	Name string

	opts       Options
	items      []*Item // sorted by listIndex; includes retired items
	byID       map[string]*Item
	orphans    []*Item // ParentID names an item not loaded yet
	restyled   []*Item
	root       *Transform
	camera     *Camera
	reconciler *Reconciler
	handlers   handlerRegistry
	sink       EventSink

	globalTime float64
	duration   float64
	cycle      int
	ended      bool
	stopped    bool
	ticking    bool
	deferred   []func()
}

// NewComposition creates an empty composition.
func NewComposition(opts Options) *Composition {
	root := NewTransform()
	root.setValid(true)
	return &Composition{
		ID:         opts.ID,
		Name:       opts.Name,
		opts:       opts,
		byID:       make(map[string]*Item),
		root:       root,
		camera:     NewCamera(opts.Viewport),
		reconciler: NewReconciler(opts.Limits),
		duration:   opts.Duration,
	}
}

// --- Accessors ---

// GlobalTime returns the playhead position in seconds.
func (c *Composition) GlobalTime() float64 { return c.globalTime }

// Duration returns the composition length in seconds.
func (c *Composition) Duration() float64 { return c.duration }

// Root returns the transform every top-level item is parented to. Moving it
// moves the whole composition.
func (c *Composition) Root() *Transform { return c.root }

// Camera returns the composition's camera.
func (c *Composition) Camera() *Camera { return c.camera }

// Items returns every item in render order, including destroyed ones kept
// for a restart. The returned slice MUST NOT be mutated by the caller.
func (c *Composition) Items() []*Item { return c.items }

// Item returns the item with the given id, or nil.
func (c *Composition) Item(id string) *Item { return c.byID[id] }

// Ended reports whether the playhead has reached the end at least once
// since the last restart.
func (c *Composition) Ended() bool { return c.ended }

// Stopped reports whether the composition stopped ticking after an
// EndDestroy end.
func (c *Composition) Stopped() bool { return c.stopped }

// Cycle returns how many times an EndLoop composition has wrapped.
func (c *Composition) Cycle() int { return c.cycle }

// --- Events ---

// On registers fn for events of type t.
func (c *Composition) On(t EventType, fn func(Event)) CallbackHandle {
	return c.handlers.add(t, fn)
}

// SetEventSink installs a sink that receives every event after the
// callbacks. Pass nil to remove it.
func (c *Composition) SetEventSink(s EventSink) {
	c.sink = s
}

func (c *Composition) emit(e Event) {
	e.Time = c.globalTime
	c.handlers.emit(e)
	if c.sink != nil {
		c.sink.HandleEvent(e)
	}
}

// --- Mesh splits ---

// MeshSplits returns the current partition in render order.
func (c *Composition) MeshSplits() []*MeshSplit {
	return c.reconciler.MeshSplits()
}

// DiffMeshSplits reports the batch changes since the previous call.
func (c *Composition) DiffMeshSplits() SplitDelta {
	return c.reconciler.DiffMeshSplits()
}

// CombinedMeshSplits recomputes the partition over every item without
// touching reconciler state. With includeInactive, items outside their
// window are partitioned as if active.
func (c *Composition) CombinedMeshSplits(includeInactive bool) []*MeshSplit {
	return c.reconciler.MeshSplitsOf(c.items, 0, -1, includeInactive)
}

// Limits returns the active split limits.
func (c *Composition) Limits() Limits {
	return c.reconciler.Limits()
}

// SetLimits changes the split limits and re-partitions.
func (c *Composition) SetLimits(l Limits) {
	c.reconciler.SetLimits(l)
}

// --- Loading and structure ---

// Load builds items from defs and appends them in order. It fails without
// modifying the composition when a def has an invalid window, a duplicate id,
// or the parent graph has a cycle. Parents that are not loaded yet are
// resolved on a later tick.
func (c *Composition) Load(defs []ItemDef) error {
	items := make([]*Item, 0, len(defs))
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.ID != "" {
			if seen[d.ID] || c.byID[d.ID] != nil {
				return fmt.Errorf("item %q: %w", d.ID, ErrDuplicateID)
			}
			seen[d.ID] = true
		}
		it, err := NewItem(d)
		if err != nil {
			return err
		}
		items = append(items, it)
	}
	if err := c.checkParentCycles(items); err != nil {
		return err
	}

	for _, it := range items {
		c.insert(it, len(c.items))
	}
	for _, it := range items {
		c.link(it)
	}
	if c.opts.Duration <= 0 {
		c.duration = c.longestWindow()
	}

	log.Info("composition loaded",
		zap.String("composition", c.ID),
		zap.Int("items", len(items)),
		zap.Int("orphans", len(c.orphans)),
		zap.Float64("duration", c.duration),
	)
	return nil
}

// checkParentCycles walks the ParentID graph of the loaded items plus items
// and reports the first cycle.
func (c *Composition) checkParentCycles(items []*Item) error {
	parentOf := make(map[string]string, len(c.byID)+len(items))
	for id, it := range c.byID {
		parentOf[id] = it.ParentID
	}
	for _, it := range items {
		if it.ID != "" {
			parentOf[it.ID] = it.ParentID
		}
	}

	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]uint8, len(parentOf))
	var path []string
	for _, it := range items {
		path = path[:0]
		cur := it.ID
		for cur != "" && state[cur] == 0 {
			state[cur] = visiting
			path = append(path, cur)
			cur = parentOf[cur]
		}
		if cur != "" && state[cur] == visiting {
			return fmt.Errorf("item %q: %w", cur, ErrCyclicParent)
		}
		for _, id := range path {
			state[id] = done
		}
	}
	return nil
}

func (c *Composition) longestWindow() float64 {
	var d float64
	for _, it := range c.items {
		if !it.window.Static {
			d = math.Max(d, it.window.End())
		}
	}
	return d
}

// AddItem inserts it at render position pos (clamped to the item count).
// Items after pos are renumbered only as far as needed to keep listIndex
// strictly increasing. During a tick the insertion is deferred.
func (c *Composition) AddItem(it *Item, pos int) error {
	if it.comp != nil {
		return fmt.Errorf("item %q already belongs to a composition: %w", it.ID, ErrDuplicateID)
	}
	if it.ID != "" && c.byID[it.ID] != nil {
		return fmt.Errorf("item %q: %w", it.ID, ErrDuplicateID)
	}
	if it.ID != "" {
		if it.ParentID == it.ID {
			return fmt.Errorf("item %q: %w", it.ID, ErrCyclicParent)
		}
		for p := c.byID[it.ParentID]; p != nil; p = c.byID[p.ParentID] {
			if p.ParentID == it.ID {
				return fmt.Errorf("item %q: %w", it.ID, ErrCyclicParent)
			}
		}
	}

	// Claim the id now so a second add in the same tick is rejected.
	it.comp = c
	if it.ID != "" {
		c.byID[it.ID] = it
	}
	c.structural(func() {
		c.insert(it, pos)
		c.link(it)
		if c.opts.Duration <= 0 && !it.window.Static {
			c.duration = math.Max(c.duration, it.window.End())
		}
	})
	return nil
}

// AppendItem adds it on top of every other item.
func (c *Composition) AppendItem(it *Item) error {
	return c.AddItem(it, math.MaxInt)
}

// RemoveItem unloads it. The reconciler treats this like an end of
// lifetime. Children of it lose their parent and wait for an item with the
// same id to be added again. During a tick the removal is deferred.
func (c *Composition) RemoveItem(it *Item) error {
	if it == nil || it.comp != c {
		return ErrItemNotFound
	}
	c.structural(func() { c.removeItem(it) })
	return nil
}

// SetParent reparents it under parent, or under the composition root when
// parent is nil. During a tick the change is deferred.
func (c *Composition) SetParent(it, parent *Item) error {
	if it == nil || it.comp != c {
		return ErrItemNotFound
	}
	if parent != nil {
		if parent.comp != c {
			return fmt.Errorf("parent %q: %w", parent.ID, ErrItemNotFound)
		}
		for p := parent; p != nil; p = p.parent {
			if p == it {
				return fmt.Errorf("item %q: %w", it.ID, ErrCyclicParent)
			}
		}
	}
	c.structural(func() {
		if it.comp != c {
			return
		}
		c.dropOrphan(it)
		it.ParentID = ""
		if parent != nil {
			it.ParentID = parent.ID
		}
		if err := it.setParent(parent); err != nil {
			log.Warn("reparent rejected", zap.String("item", it.ID), zap.Error(err))
			return
		}
		if c.opts.Debug {
			debugCheckTreeDepth(it)
		}
	})
	return nil
}

// structural applies op now, or after the current tick.
func (c *Composition) structural(op func()) {
	if c.ticking {
		c.deferred = append(c.deferred, op)
		return
	}
	op()
}

func (c *Composition) flush() {
	for len(c.deferred) > 0 {
		ops := c.deferred
		c.deferred = nil
		for _, op := range ops {
			op()
		}
	}
}

// insert places it at pos and assigns its listIndex.
func (c *Composition) insert(it *Item, pos int) {
	pos = min(max(pos, 0), len(c.items))
	li := 0
	if pos > 0 {
		li = c.items[pos-1].listIndex + 1
	}
	c.items = slices.Insert(c.items, pos, it)
	it.listIndex = li
	for j := pos + 1; j < len(c.items) && c.items[j].listIndex <= c.items[j-1].listIndex; j++ {
		c.items[j].listIndex = c.items[j-1].listIndex + 1
	}
	it.comp = c
	if it.ID != "" {
		c.byID[it.ID] = it
	}
	if it.renderDirty {
		c.restyled = append(c.restyled, it)
	}
}

// link resolves it.ParentID, or parks it as an orphan.
func (c *Composition) link(it *Item) {
	var parent *Item
	if it.ParentID != "" {
		parent = c.byID[it.ParentID]
		if parent == nil {
			c.orphans = append(c.orphans, it)
		}
	}
	if err := it.setParent(parent); err != nil {
		log.Warn("parent link rejected", zap.String("item", it.ID), zap.Error(err))
		return
	}
	if parent != nil && c.opts.Debug {
		debugCheckTreeDepth(it)
	}
	// Orphans waiting for this item can attach now.
	if it.ID != "" && len(c.orphans) > 0 {
		c.resolveParents()
	}
}

// resolveParents retries every orphan.
func (c *Composition) resolveParents() {
	if len(c.orphans) == 0 {
		return
	}
	pending := c.orphans
	c.orphans = nil
	for _, it := range pending {
		p := c.byID[it.ParentID]
		if p == nil {
			c.orphans = append(c.orphans, it)
			continue
		}
		if err := it.setParent(p); err != nil {
			log.Warn("parent link rejected", zap.String("item", it.ID), zap.String("parent", it.ParentID), zap.Error(err))
			continue
		}
		if c.opts.Debug {
			debugCheckTreeDepth(it)
		}
	}
}

func (c *Composition) dropOrphan(it *Item) {
	if i := slices.Index(c.orphans, it); i >= 0 {
		c.orphans = slices.Delete(c.orphans, i, i+1)
	}
}

func (c *Composition) removeItem(it *Item) {
	if it.comp != c {
		return
	}
	if it.state == StateActive {
		c.deactivate(it)
	}
	c.leaveSplits(it)

	if i := slices.Index(c.items, it); i >= 0 {
		c.items = slices.Delete(c.items, i, i+1)
	}
	if it.ID != "" && c.byID[it.ID] == it {
		delete(c.byID, it.ID)
	}
	c.dropOrphan(it)

	for _, child := range slices.Clone(it.children) {
		_ = child.setParent(nil)
		if child.ParentID != "" {
			c.orphans = append(c.orphans, child)
		}
	}
	if it.parent != nil {
		it.parent.removeChild(it)
		it.parent = nil
	}
	_ = it.transform.SetParent(nil)
	it.transform.setValid(false)
	it.state = StatePending
	it.comp = nil
	it.listIndex = -1
}

// --- Playback ---

// Tick advances the playhead by dt seconds and applies every resulting
// lifecycle transition. Negative dt is ignored; use Seek to move backwards.
func (c *Composition) Tick(dt float64) {
	if c.stopped || dt < 0 {
		return
	}
	c.flush()
	c.resolveParents()

	c.globalTime += dt
	looped := false
	if c.duration > 0 && c.globalTime >= c.duration {
		if c.opts.EndBehavior == EndLoop {
			c.globalTime = math.Mod(c.globalTime, c.duration)
			c.cycle++
			c.restart()
			looped = true
		} else {
			c.globalTime = c.duration
		}
	}

	c.advance(dt)
	if looped {
		c.emit(Event{Type: EventLoopStart, Cycle: c.cycle})
	}
	c.checkEnd()
}

// Seek moves the playhead to t, clamped to [0, Duration], and applies the
// transitions that result, backwards ones included. Seeking before the end
// of a stopped composition resumes it.
func (c *Composition) Seek(t float64) {
	t = max(t, 0)
	if c.duration > 0 {
		t = min(t, c.duration)
	}
	c.flush()
	c.resolveParents()

	if t < c.globalTime {
		for _, it := range c.items {
			if it.window.Static || t < it.window.End() {
				if it.retired || it.state == StateEnded {
					it.reset()
				}
				it.endFired = false
			}
		}
		if c.duration <= 0 || t < c.duration {
			c.ended = false
			c.stopped = false
		}
	}
	c.globalTime = t
	c.advance(0)
	for _, it := range c.items {
		if it.Active() {
			for _, g := range it.tweens {
				g.Seek(float32(it.localTime))
			}
		}
	}
	c.checkEnd()
}

// Restart rewinds the composition to time zero. Destroyed items come back.
func (c *Composition) Restart() {
	c.flush()
	c.globalTime = 0
	c.ended = false
	c.stopped = false
	c.restart()
	c.advance(0)
}

// restart returns every item to Pending without firing end events.
func (c *Composition) restart() {
	for _, it := range c.items {
		if it.state == StateActive {
			if a, ok := it.content.(contentActivator); ok {
				a.deactivate(it)
			}
		}
		c.leaveSplits(it)
		it.reset()
		for _, g := range it.tweens {
			g.Reset()
		}
	}
}

// checkEnd fires EventCompositionEnd once when the playhead sits at the end.
func (c *Composition) checkEnd() {
	if c.ended || c.duration <= 0 || c.globalTime < c.duration {
		return
	}
	c.ended = true
	c.emit(Event{Type: EventCompositionEnd})
	if c.opts.EndBehavior != EndDestroy {
		return
	}
	for _, it := range c.items {
		if it.state == StateActive {
			c.deactivate(it)
		}
	}
	c.stopped = true
	log.Info("composition stopped", zap.String("composition", c.ID), zap.Float64("time", c.globalTime))
}

// advance resolves every item at the current playhead.
func (c *Composition) advance(dt float64) {
	var stats debugStats
	var start time.Time
	if c.opts.Debug {
		start = time.Now()
	}

	c.ticking = true
	for _, it := range c.items {
		if it.retired || it.faulted {
			continue
		}
		c.safeUpdate(it, dt, &stats)
	}
	c.camera.update(float32(dt))

	if c.opts.Debug {
		stats.resolveTime = time.Since(start)
		start = time.Now()
	}
	stats.restyled = c.syncRestyled()
	c.ticking = false
	c.flush()

	if c.opts.Debug {
		stats.reconcileTime = time.Since(start)
		stats.itemCount = len(c.items)
		for _, it := range c.items {
			if it.Active() {
				stats.activeCount++
			}
		}
		splits := c.reconciler.MeshSplits()
		stats.splitCount = len(splits)
		stats.breakCount = countBatchBreaks(splits)
		c.debugCheckSplits()
		c.debugLog(stats)
	}
}

// safeUpdate isolates a misbehaving item: a panic faults the item and
// playback continues with the rest.
func (c *Composition) safeUpdate(it *Item, dt float64, stats *debugStats) {
	defer func() {
		if r := recover(); r != nil {
			it.faulted = true
			c.leaveSplits(it)
			it.transform.setValid(false)
			log.Error("item faulted",
				zap.String("composition", c.ID),
				zap.String("item", it.ID),
				zap.Any("panic", r),
			)
		}
	}()
	c.updateItem(it, dt, stats)
}

func (c *Composition) updateItem(it *Item, dt float64, stats *debugStats) {
	res := ResolveTime(c.globalTime, it.window)
	prev := it.state
	it.state = res.State
	it.localTime = res.LocalTime

	switch {
	case res.Active && prev != StateActive:
		it.cycle = res.Cycle
		c.activate(it)
		stats.activated++
	case !res.Active && prev == StateActive:
		if res.State == StatePending {
			c.deactivate(it)
		} else {
			c.finish(it)
			stats.ended++
		}
	case res.State == StateEnded && prev == StatePending:
		// The whole window fell inside one step.
		c.activate(it)
		c.finish(it)
		stats.activated++
		stats.ended++
	}

	wrapped := false
	if res.Active && prev == StateActive && res.Cycle != it.cycle {
		if res.Cycle > it.cycle {
			c.loopStart(it, res.Cycle)
			wrapped = true
		}
		it.cycle = res.Cycle
	}
	if res.Active && !it.endFired && !it.window.Static &&
		it.window.EndBehavior == EndFreeze && c.globalTime >= it.window.End() {
		it.endFired = true
		c.emit(Event{Type: EventItemEnd, Item: it})
	}

	// Forward items keep feeding their clamped transform to descendants.
	if res.Active || (res.State == StateEnded && it.window.EndBehavior == EndForward) {
		it.transform.setTime(it.localTime)
	}
	if !res.Active {
		return
	}
	if u, ok := it.content.(contentUpdater); ok {
		u.update(it, dt)
	}
	for _, g := range it.tweens {
		if wrapped {
			g.Seek(float32(it.localTime))
		} else {
			g.Update(float32(dt))
		}
	}
}

func (c *Composition) activate(it *Item) {
	it.transform.setValid(true)
	if it.splitRole() != roleNone {
		c.reconciler.AddItem(it)
		it.inSplits = true
	}
	if a, ok := it.content.(contentActivator); ok {
		a.activate(it)
	}
	if m, ok := it.content.(*MessageContent); ok {
		c.emit(Event{Type: EventMessageBegin, Item: it, Payload: m.Payload})
	}
}

// deactivate handles Active to Pending, from a backwards seek or an unload.
func (c *Composition) deactivate(it *Item) {
	c.leaveSplits(it)
	it.transform.setValid(false)
	if a, ok := it.content.(contentActivator); ok {
		a.deactivate(it)
	}
	if m, ok := it.content.(*MessageContent); ok {
		c.emit(Event{Type: EventMessageEnd, Item: it, Payload: m.Payload})
	}
}

// finish handles Active to Ended for EndDestroy and EndForward items.
func (c *Composition) finish(it *Item) {
	c.deactivate(it)
	if it.window.EndBehavior == EndDestroy {
		it.retired = true
	}
	if !it.endFired {
		it.endFired = true
		c.emit(Event{Type: EventItemEnd, Item: it})
	}
}

func (c *Composition) loopStart(it *Item, cycle int) {
	if l, ok := it.content.(LoopStarter); ok {
		l.OnLoopStart()
	}
	for _, g := range it.tweens {
		g.Reset()
	}
	c.emit(Event{Type: EventLoopStart, Item: it, Cycle: cycle})
}

func (c *Composition) leaveSplits(it *Item) {
	if it.inSplits {
		c.reconciler.RemoveItem(it)
		it.inSplits = false
	}
}

// syncRestyled forwards render state changes of active items to the
// reconciler. It returns how many items were processed.
func (c *Composition) syncRestyled() int {
	n := len(c.restyled)
	for _, it := range c.restyled {
		it.renderDirty = false
		if it.comp != c || !it.Active() || it.faulted {
			continue
		}
		c.reconciler.UpdateItem(it)
		it.inSplits = it.splitRole() != roleNone
	}
	clear(c.restyled)
	c.restyled = c.restyled[:0]
	return n
}
