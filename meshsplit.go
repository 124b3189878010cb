package tableau

import (
	"fmt"
	"slices"
	"sort"
)

// MeshSplit is a contiguous run of same-key sprites sharing one draw batch.
// A split keeps its identity (ID and Batch) for as long as the reconciler
// can reuse it, so the renderer can update its batch in place.
type MeshSplit struct {
	ID    uint32
	Key   BatchKey
	Items []*Item
	// Batch is owned by the renderer. The reconciler never reads it.
	Batch any
}

// IndexStart returns the listIndex of the first member.
func (s *MeshSplit) IndexStart() int {
	if len(s.Items) == 0 {
		return -1
	}
	return s.Items[0].listIndex
}

// IndexEnd returns the listIndex of the last member.
func (s *MeshSplit) IndexEnd() int {
	if len(s.Items) == 0 {
		return -1
	}
	return s.Items[len(s.Items)-1].listIndex
}

// Priority is the split's z-order, taken from its first member.
func (s *MeshSplit) Priority() int {
	return s.IndexStart()
}

// Len returns the number of members.
func (s *MeshSplit) Len() int {
	return len(s.Items)
}

// SplitDelta lists the batch changes since the previous DiffMeshSplits call.
type SplitDelta struct {
	Add    []*MeshSplit // need a new batch
	Remove []*MeshSplit // batch must be released
	Modify []*MeshSplit // members or priority changed; batch is kept
}

// Empty reports whether the delta carries no changes.
func (d SplitDelta) Empty() bool {
	return len(d.Add) == 0 && len(d.Remove) == 0 && len(d.Modify) == 0
}

// splitEntry is an item registered with the reconciler. Role, key and page
// are cached so the partition only changes through UpdateItem.
type splitEntry struct {
	item *Item
	role splitRole
	key  BatchKey
	page uint16
}

func newSplitEntry(it *Item, role splitRole) splitEntry {
	return splitEntry{item: it, role: role, key: it.batchKey(), page: it.texturePage()}
}

// joinable reports whether b may continue a run ending in a.
func joinable(a, b *splitEntry) bool {
	return a.role == roleMember && b.role == roleMember && a.key == b.key
}

type splitSnapshot struct {
	split    *MeshSplit
	items    []*Item
	pages    []uint16 // texture page of each member
	priority int
	seen     bool
}

// samePages reports whether items still sample the pages in pages.
func samePages(pages []uint16, items []*Item) bool {
	if len(pages) != len(items) {
		return false
	}
	for i, it := range items {
		if it.texturePage() != pages[i] {
			return false
		}
	}
	return true
}

func memberPages(items []*Item) []uint16 {
	pages := make([]uint16, len(items))
	for i, it := range items {
		pages[i] = it.texturePage()
	}
	return pages
}

// Reconciler maintains the mesh-split partition of the active sprites of a
// composition and diffs it frame to frame.
//
// The partition is canonical: members are walked in listIndex order and a new
// split starts when the key changes, a blocking item lies between two
// members, the split is full, or the member's texture page would exceed the
// texture budget. Because the result depends only on the registered set, the
// order of AddItem calls never matters.
type Reconciler struct {
	limits  Limits
	entries []splitEntry // sorted by listIndex; members and blockers
	splits  []*MeshSplit
	owner   map[*Item]*MeshSplit
	prev    []splitSnapshot
	prevOf  map[*MeshSplit]int // index into prev
	// dropped holds splits of the last diff that left the partition since.
	// They can be revived, keeping their batch, until the next diff.
	dropped []*MeshSplit
	nextID  uint32
}

// NewReconciler creates an empty reconciler. Non-positive limits fall back to
// DefaultLimits.
func NewReconciler(limits Limits) *Reconciler {
	return &Reconciler{
		limits: limits.normalized(),
		owner:  make(map[*Item]*MeshSplit),
		prevOf: make(map[*MeshSplit]int),
	}
}

// Limits returns the active limits.
func (r *Reconciler) Limits() Limits {
	return r.limits
}

// SetLimits changes the limits and re-partitions every registered item.
func (r *Reconciler) SetLimits(limits Limits) {
	limits = limits.normalized()
	if limits == r.limits {
		return
	}
	r.limits = limits
	r.replace(0, len(r.splits), r.partition(r.entries))
}

// MeshSplits returns the current partition in render order. The returned
// slice MUST NOT be mutated by the caller.
func (r *Reconciler) MeshSplits() []*MeshSplit {
	return r.splits
}

// SplitOf returns the split holding it, or nil.
func (r *Reconciler) SplitOf(it *Item) *MeshSplit {
	return r.owner[it]
}

// Len returns the number of registered items, members and blockers.
func (r *Reconciler) Len() int {
	return len(r.entries)
}

// --- Mutation ---

// AddItem registers an item that became active. Sprites join or open a
// split; particles and hidden sprites are recorded as blockers. Items that
// render nothing are ignored.
func (r *Reconciler) AddItem(it *Item) {
	role := it.splitRole()
	if role == roleNone {
		return
	}
	pos := r.search(it.listIndex)
	if pos < len(r.entries) && r.entries[pos].item == it {
		return
	}
	r.entries = slices.Insert(r.entries, pos, newSplitEntry(it, role))
	r.rebuild(pos-1, pos+1, nil)
}

// RemoveItem unregisters an item that ended, was destroyed or unloaded. The
// item's listIndex must not have changed since it was last seen.
func (r *Reconciler) RemoveItem(it *Item) {
	pos, ok := r.find(it)
	if !ok {
		return
	}
	e := r.entries[pos]
	r.entries = slices.Delete(r.entries, pos, pos+1)

	if e.role == roleBlocker {
		// The splits on both sides may now be adjacent.
		from := r.splitIndexBefore(e.item.listIndex)
		r.CombineSplits(from)
		return
	}
	r.rebuild(pos-1, pos, it)
}

// UpdateItem re-reads an item's role, key and texture page after a render
// state change.
func (r *Reconciler) UpdateItem(it *Item) {
	role := it.splitRole()
	pos, ok := r.find(it)
	switch {
	case !ok:
		r.AddItem(it)
		return
	case role == roleNone:
		r.RemoveItem(it)
		return
	}
	next := newSplitEntry(it, role)
	if next == r.entries[pos] {
		return
	}
	r.entries[pos] = next
	r.rebuild(pos-1, pos+1, nil)
}

// CombineSplits re-scans the partition from split index from to the end and
// merges whatever became mergeable, typically after a blocker left.
func (r *Reconciler) CombineSplits(from int) {
	if len(r.entries) == 0 {
		r.replace(0, len(r.splits), nil)
		return
	}
	if from < 0 {
		from = 0
	}
	start := 0
	if from < len(r.splits) {
		start = r.search(r.splits[from].IndexStart())
	} else if len(r.splits) > 0 {
		start = r.search(r.splits[len(r.splits)-1].IndexStart())
		from = len(r.splits) - 1
	}
	if start >= len(r.entries) {
		start = len(r.entries) - 1
	}
	start = r.runStart(start)
	si := r.splitIndexFrom(r.entries[start].item.listIndex)
	if si > from {
		si = from
	}
	r.replace(si, len(r.splits), r.partition(r.entries[start:]))
}

// --- Diff ---

// DiffMeshSplits compares the partition with the one captured by the
// previous call and records the current one for the next.
func (r *Reconciler) DiffMeshSplits() SplitDelta {
	var d SplitDelta

	prev := make(map[*MeshSplit]*splitSnapshot, len(r.prev))
	for i := range r.prev {
		prev[r.prev[i].split] = &r.prev[i]
	}
	for _, s := range r.splits {
		snap, ok := prev[s]
		if !ok {
			d.Add = append(d.Add, s)
			continue
		}
		snap.seen = true
		if snap.priority != s.Priority() || !slices.Equal(snap.items, s.Items) ||
			!samePages(snap.pages, s.Items) {
			d.Modify = append(d.Modify, s)
		}
	}
	for i := range r.prev {
		if !r.prev[i].seen {
			d.Remove = append(d.Remove, r.prev[i].split)
		}
	}

	r.prev = r.prev[:0]
	clear(r.prevOf)
	for i, s := range r.splits {
		r.prev = append(r.prev, splitSnapshot{
			split:    s,
			items:    slices.Clone(s.Items),
			pages:    memberPages(s.Items),
			priority: s.Priority(),
		})
		r.prevOf[s] = i
	}
	r.dropped = r.dropped[:0]
	return d
}

// --- Pure partition ---

// MeshSplitsOf partitions items[from:to] without touching the reconciler's
// state. items must be sorted by listIndex; to < 0 means len(items).
// Inactive items are skipped entirely unless includeInactive is set, in which
// case they are partitioned as if active. The returned splits carry no ID.
func (r *Reconciler) MeshSplitsOf(items []*Item, from, to int, includeInactive bool) []*MeshSplit {
	if to < 0 || to > len(items) {
		to = len(items)
	}
	if from < 0 {
		from = 0
	}
	if from >= to {
		return nil
	}

	entries := make([]splitEntry, 0, to-from)
	for _, it := range items[from:to] {
		if !includeInactive && !it.Active() {
			continue
		}
		role := it.splitRole()
		if role == roleNone {
			continue
		}
		entries = append(entries, newSplitEntry(it, role))
	}

	groups := r.partition(entries)
	out := make([]*MeshSplit, len(groups))
	for i, g := range groups {
		out[i] = &MeshSplit{Key: g.key, Items: g.items}
	}
	return out
}

type splitGroup struct {
	key   BatchKey
	items []*Item
}

// partition applies the canonical split rule to a run-aligned slice of entries.
func (r *Reconciler) partition(entries []splitEntry) []splitGroup {
	var groups []splitGroup
	var pages []uint16
	open := false

	for i := range entries {
		e := &entries[i]
		if e.role == roleBlocker {
			open = false
			continue
		}
		if open {
			g := &groups[len(groups)-1]
			newPage := !slices.Contains(pages, e.page)
			if g.key != e.key ||
				len(g.items) >= r.limits.MaxItemsPerSplit ||
				(newPage && len(pages) >= r.limits.MaxFragmentTextures) {
				open = false
			}
		}
		if !open {
			groups = append(groups, splitGroup{key: e.key})
			pages = pages[:0]
			open = true
		}
		g := &groups[len(groups)-1]
		g.items = append(g.items, e.item)
		if !slices.Contains(pages, e.page) {
			pages = append(pages, e.page)
		}
	}
	return groups
}

// --- Window maintenance ---

// rebuild recomputes the runs touching entries[lo..hi] and replaces the
// splits that covered them. removed is an item that was just taken out of
// entries and whose split must be replaced too.
func (r *Reconciler) rebuild(lo, hi int, removed *Item) {
	n := len(r.entries)
	lo = max(lo, 0)
	hi = min(hi, n-1)

	var window []splitEntry
	loLI, hiLI := 0, -1
	if n > 0 && lo <= hi {
		start := r.runStart(lo)
		end := r.runEnd(hi)
		window = r.entries[start : end+1]
		loLI = r.entries[start].item.listIndex
		hiLI = r.entries[end].item.listIndex
	}
	if removed != nil {
		li := removed.listIndex
		if hiLI < loLI {
			loLI, hiLI = li, li
		} else {
			loLI = min(loLI, li)
			hiLI = max(hiLI, li)
		}
		delete(r.owner, removed)
	}
	if hiLI < loLI {
		return
	}

	si := r.splitIndexFrom(loLI)
	sj := sort.Search(len(r.splits), func(i int) bool {
		return r.splits[i].IndexStart() > hiLI
	})
	r.replace(si, sj, r.partition(window))
}

// replace swaps splits[si:sj] for groups, reusing old split objects where a
// group keeps the same key and shares members with one.
func (r *Reconciler) replace(si, sj int, groups []splitGroup) {
	old := slices.Clone(r.splits[si:sj])
	oldIndex := make(map[*MeshSplit]int, len(old))
	for oi, o := range old {
		oldIndex[o] = oi
	}

	// Overlap is measured against the old ownership, before any
	// reassignment. Pairs are matched largest overlap first.
	type match struct{ group, old, count int }
	var matches []match
	for gi, g := range groups {
		counts := make(map[int]int)
		for _, it := range g.items {
			if oi, ok := oldIndex[r.owner[it]]; ok && old[oi].Key == g.key {
				counts[oi]++
			}
		}
		for oi, n := range counts {
			matches = append(matches, match{gi, oi, n})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.count != b.count {
			return a.count > b.count
		}
		if a.group != b.group {
			return a.group < b.group
		}
		return a.old < b.old
	})

	used := make([]bool, len(old))
	fresh := make([]*MeshSplit, len(groups))
	for _, m := range matches {
		if used[m.old] || fresh[m.group] != nil {
			continue
		}
		used[m.old] = true
		fresh[m.group] = old[m.old]
	}

	// Drop the old ownership; a member that turned into a blocker must not
	// keep pointing at a reused split.
	for oi, o := range old {
		for _, it := range o.Items {
			delete(r.owner, it)
		}
		if !used[oi] {
			o.Items = nil
			if _, ok := r.prevOf[o]; ok {
				r.dropped = append(r.dropped, o)
			}
		}
	}
	for gi, g := range groups {
		s := fresh[gi]
		if s == nil {
			s = r.revive(g)
		}
		if s == nil {
			r.nextID++
			s = &MeshSplit{ID: r.nextID, Key: g.key}
		}
		fresh[gi] = s
		s.Items = g.items
		for _, it := range s.Items {
			r.owner[it] = s
		}
	}
	r.splits = slices.Replace(r.splits, si, sj, fresh...)
}

// revive takes back the dropped split whose last diffed members overlap g
// the most, so a run that leaves and re-enters between two diffs keeps its
// batch. It returns nil when none shares a member and the key.
func (r *Reconciler) revive(g splitGroup) *MeshSplit {
	best, bestCount := -1, 0
	for di, s := range r.dropped {
		if s.Key != g.key {
			continue
		}
		snap := &r.prev[r.prevOf[s]]
		n := 0
		for _, it := range g.items {
			if slices.Contains(snap.items, it) {
				n++
			}
		}
		if n > bestCount {
			best, bestCount = di, n
		}
	}
	if best < 0 {
		return nil
	}
	s := r.dropped[best]
	r.dropped = slices.Delete(r.dropped, best, best+1)
	return s
}

// runStart walks left from i to the first entry of its run.
func (r *Reconciler) runStart(i int) int {
	for i > 0 && joinable(&r.entries[i-1], &r.entries[i]) {
		i--
	}
	return i
}

// runEnd walks right from i to the last entry of its run.
func (r *Reconciler) runEnd(i int) int {
	for i < len(r.entries)-1 && joinable(&r.entries[i], &r.entries[i+1]) {
		i++
	}
	return i
}

// search returns the position of the first entry with listIndex >= li.
func (r *Reconciler) search(li int) int {
	return sort.Search(len(r.entries), func(i int) bool {
		return r.entries[i].item.listIndex >= li
	})
}

// find returns the position of it in entries.
func (r *Reconciler) find(it *Item) (int, bool) {
	pos := r.search(it.listIndex)
	if pos < len(r.entries) && r.entries[pos].item == it {
		return pos, true
	}
	return pos, false
}

// splitIndexFrom returns the index of the first split ending at or after li.
func (r *Reconciler) splitIndexFrom(li int) int {
	return sort.Search(len(r.splits), func(i int) bool {
		return r.splits[i].IndexEnd() >= li
	})
}

// splitIndexBefore returns the index of the last split starting before li,
// or 0.
func (r *Reconciler) splitIndexBefore(li int) int {
	i := sort.Search(len(r.splits), func(i int) bool {
		return r.splits[i].IndexStart() >= li
	})
	return max(i-1, 0)
}

// validate checks the partition invariants. Used by tests and debug mode.
func (r *Reconciler) validate() error {
	var members []*Item
	for i := range r.entries {
		if r.entries[i].role == roleMember {
			members = append(members, r.entries[i].item)
		}
	}
	var covered []*Item
	for si, s := range r.splits {
		if len(s.Items) == 0 {
			return fmt.Errorf("split %d is empty", si)
		}
		if len(s.Items) > r.limits.MaxItemsPerSplit {
			return fmt.Errorf("split %d holds %d items, limit %d", si, len(s.Items), r.limits.MaxItemsPerSplit)
		}
		for _, it := range s.Items {
			if it.batchKey() != s.Key {
				return fmt.Errorf("split %d: item %q has a foreign key", si, it.ID)
			}
			if r.owner[it] != s {
				return fmt.Errorf("split %d: item %q owner mismatch", si, it.ID)
			}
		}
		covered = append(covered, s.Items...)
	}
	if !slices.Equal(covered, members) {
		return fmt.Errorf("splits cover %d items, want %d in listIndex order", len(covered), len(members))
	}
	for i := 1; i < len(covered); i++ {
		if covered[i-1].listIndex >= covered[i].listIndex {
			return fmt.Errorf("items %q and %q out of order", covered[i-1].ID, covered[i].ID)
		}
	}
	return nil
}
