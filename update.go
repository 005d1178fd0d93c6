package rcftree

import "container/heap"

// seqEntry identifies one insertion occurrence: a particular sequence index
// arriving for a particular point-store index. The tree uses these to track
// globally which occurrence is oldest, for eviction when Update runs out of
// free interior slots.
type seqEntry struct {
	seq        int64
	pointIndex int
}

// seqHeap is a min-heap over seqEntry ordered by seq, giving O(log n) access to
// the globally oldest live occurrence.
type seqHeap []seqEntry

func (h seqHeap) Len() int           { return len(h) }
func (h seqHeap) Less(i, j int) bool { return h[i].seq < h[j].seq }
func (h seqHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *seqHeap) Push(x interface{}) { *h = append(*h, x.(seqEntry)) }
func (h *seqHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// pushOldest registers a fresh occurrence in the eviction-order heap.
func (t *Tree) pushOldest(e seqEntry) {
	heap.Push(&t.oldest, e)
	t.liveSeq[e] = true
}

// popOldestLive pops and returns the globally oldest occurrence still live,
// discarding stale heap entries left behind by earlier deletions along the way.
func (t *Tree) popOldestLive() (seqEntry, bool) {
	for len(t.oldest) > 0 {
		e := heap.Pop(&t.oldest).(seqEntry)
		if t.liveSeq[e] {
			delete(t.liveSeq, e)
			return e, true
		}
	}
	return seqEntry{}, false
}

// ancestorSlots walks path against the tree's current shape and returns the
// interior slots visited along the way, from root to the immediate parent of
// the leaf path descends to — i.e. every ancestor of that leaf, in descending
// order. Computed from the live tree rather than carried inside pathStep itself,
// since a pathStep only records (visited child, sibling).
func (t *Tree) ancestorSlots(path []pathStep) []int {
	slots := make([]int, 0, len(path))
	cur := t.root
	for i := 0; i < len(path); i++ {
		invariant(t.IsInternal(cur), "ancestorSlots: expected an interior slot at level %d", i)
		slots = append(slots, int(cur))
		cur = path[i].First
	}
	return slots
}

// spliceEdge replaces oldChild with newChild under parent's child pointer,
// updating newChild's parent link when parent-tracking is enabled.
func (t *Tree) spliceEdge(parent int, oldChild, newChild NodeIndex) {
	switch {
	case t.store.left(parent) == oldChild:
		t.store.setLeft(parent, newChild)
	case t.store.right(parent) == oldChild:
		t.store.setRight(parent, newChild)
	default:
		invariant(false, "spliceEdge: %d is not a child of slot %d", oldChild, parent)
	}
	if t.store.hasParent() && t.IsInternal(newChild) {
		t.store.setParent(int(newChild), NodeIndex(parent))
	}
}

// manageAncestorsAdd is the insert-side ancestor fix-up: walking from the
// leaf-ward end of ancestors up to the root, each slot's mass and (if enabled)
// point-sum are incremented/recomputed, and its box cache entry is folded to
// include x via checkContainsAndRebuildBox followed by checkContainsAndAddPoint.
func (t *Tree) manageAncestorsAdd(ancestors []int, x []float32) {
	for i := len(ancestors) - 1; i >= 0; i-- {
		s := ancestors[i]
		t.nodeMass[s]++
		if t.centerOfMass {
			t.pointSum.setPointSum(s, t.childPointSum(t.store.left(s)), t.childPointSum(t.store.right(s)))
		}
		t.checkContainsAndRebuildBox(s, x)
		t.checkContainsAndAddPoint(s, x)
	}
}

// manageAncestorsDelete is the delete-side ancestor fix-up: mass and
// point-sum are decremented/recomputed at every ancestor, but checkContains-
// AndRebuildBox only runs until the first time it reports containment still
// holds — once a cached ancestor's box is known unaffected by the removal,
// everything further up is unaffected too.
func (t *Tree) manageAncestorsDelete(ancestors []int, x []float32) {
	stop := false
	for i := len(ancestors) - 1; i >= 0; i-- {
		s := ancestors[i]
		t.nodeMass[s]--
		if t.centerOfMass {
			t.pointSum.setPointSum(s, t.childPointSum(t.store.left(s)), t.childPointSum(t.store.right(s)))
		}
		if !stop && t.checkContainsAndRebuildBox(s, x) {
			stop = true
		}
	}
}

// unlinkLeaf splices leaf's sibling up into leaf's grandparent (or makes the
// sibling the new root), then releases leaf's former parent slot back to the
// free list. ancestors is leaf's ancestor chain (root..parent), computed before
// the splice.
func (t *Tree) unlinkLeaf(leaf NodeIndex, path []pathStep, ancestors []int) {
	if len(ancestors) == 0 {
		invariant(t.root == leaf, "unlinkLeaf: expected %d to be the root", leaf)
		t.root = NullIndex
		return
	}
	parentSlot := ancestors[len(ancestors)-1]
	sibling := path[len(path)-1].Second
	if len(ancestors) == 1 {
		t.root = sibling
		if t.store.hasParent() && t.IsInternal(sibling) {
			t.store.setParent(int(sibling), NullIndex)
		}
	} else {
		grandParent := ancestors[len(ancestors)-2]
		t.spliceEdge(grandParent, NodeIndex(parentSlot), sibling)
	}
	if err := t.free.release(parentSlot); err != nil {
		panic(ContractViolation{Message: "unlinkLeaf: " + err.Error()})
	}
	// Scrub the released slot: stale children would make ExtractColumns treat
	// it as in-use, and stale cache rows would survive into the slot's next
	// incarnation and be mistaken for a live box.
	t.store.setLeft(parentSlot, NullIndex)
	t.store.setRight(parentSlot, NullIndex)
	if idx, ok := t.cache.translate(parentSlot); ok {
		t.cache.rangeSum[idx] = 0
	}
	if t.centerOfMass {
		t.pointSum.invalidatePointSum(parentSlot)
	}
}

// Delete removes one occurrence of pointIndex at sequenceIndex. If that
// was the last remaining occurrence, the leaf is unlinked from the tree and its
// former parent's interior slot is returned to the free list; otherwise the leaf
// stays and only its mass (and ancestors' aggregate mass) shrinks by one.
//
// Calling Delete for an occurrence that was never inserted is a contract
// violation (MissingLeafError via ContractViolation), not a recoverable error:
// the coordinator and the tree are expected to stay consistent. With sequence
// tracking enabled the (point, sequence) pair is checked; without it, only that
// the descent for the point's vector ends at a leaf holding that vector.
func (t *Tree) Delete(pointIndex int, sequenceIndex int64) error {
	leaf := leafIndexFor(pointIndex, t.capacity)
	invariant(t.IsLeaf(leaf), "Delete: invalid point index %d", pointIndex)

	t.leaves.removeLeaf(pointIndex, sequenceIndex)
	delete(t.liveSeq, seqEntry{seq: sequenceIndex, pointIndex: pointIndex})

	x := t.pointStore.Get(pointIndex)
	path := t.getPath(x)
	reached := t.root
	if len(path) > 0 {
		reached = path[len(path)-1].First
	}
	if !t.IsLeaf(reached) || !samePoint(t.PointOf(reached), x) {
		panic(ContractViolation{Message: (&MissingLeafError{PointIndex: pointIndex, SequenceIndex: sequenceIndex}).Error()})
	}
	ancestors := t.ancestorSlots(path)

	residual := t.leaves.decreaseLeafMass(leaf, t.capacity)
	walkAncestors := ancestors
	if residual == 0 {
		t.unlinkLeaf(leaf, path, ancestors)
		if len(ancestors) > 0 {
			walkAncestors = ancestors[:len(ancestors)-1]
		}
	}
	t.manageAncestorsDelete(walkAncestors, x)

	tracer().Debugf("delete: point=%d seq=%d residual=%d", pointIndex, sequenceIndex, residual)
	return nil
}

// Update inserts pointIndex (already resolved through the point store) at
// sequenceIndex, descending to the leaf x would occupy, and either (duplicate
// point) bumping that leaf's mass in place, or splitting the edge above it with
// a freshly drawn cut. When the free-index manager has no interior slot
// left, the globally oldest live occurrence is evicted first via Delete, so a
// single Update can both insert and evict.
func (t *Tree) Update(pointIndex int, sequenceIndex int64) (Option[UpdateResult], error) {
	x := t.pointStore.Get(pointIndex)
	invariant(len(x) == t.dims, "Update: point has wrong dimensionality")
	entry := seqEntry{seq: sequenceIndex, pointIndex: pointIndex}

	if t.root == NullIndex {
		leaf := t.leaves.addLeaf(pointIndex, sequenceIndex, t.capacity)
		t.root = leaf
		t.pushOldest(entry)
		tracer().Debugf("update: inserted first leaf %d as root", leaf)
		return Some(UpdateResult{InsertedLeaf: leaf, EvictedLeaf: None[NodeIndex]()}), nil
	}

	path := t.getPath(x)
	existingLeaf := t.root
	if len(path) > 0 {
		existingLeaf = path[len(path)-1].First
	}
	invariant(t.IsLeaf(existingLeaf), "Update: descent did not end at a leaf")

	if samePoint(t.PointOf(existingLeaf), x) {
		t.leaves.addLeaf(pointIndex, sequenceIndex, t.capacity)
		t.leaves.increaseLeafMass(existingLeaf, t.capacity)
		t.pushOldest(entry)
		t.manageAncestorsAdd(t.ancestorSlots(path), x)
		return Some(UpdateResult{InsertedLeaf: existingLeaf, EvictedLeaf: None[NodeIndex]()}), nil
	}

	evicted := None[NodeIndex]()
	if t.free.size() == 0 {
		victim, ok := t.popOldestLive()
		invariant(ok, "Update: capacity exhausted with no eviction candidate")
		evictedLeaf := leafIndexFor(victim.pointIndex, t.capacity)
		if err := t.Delete(victim.pointIndex, victim.seq); err != nil {
			return None[UpdateResult](), err
		}
		evicted = Some(evictedLeaf)

		// The tree shape may have changed anywhere along x's descent path.
		path = t.getPath(x)
		existingLeaf = t.root
		if len(path) > 0 {
			existingLeaf = path[len(path)-1].First
		}
	}

	s, err := t.free.take()
	if err != nil {
		return None[UpdateResult](), err
	}
	newLeaf := t.leaves.addLeaf(pointIndex, sequenceIndex, t.capacity)
	t.pushOldest(entry)

	box := t.getBox(existingLeaf)
	dim, val := t.cutPolicy.DrawCut(box, x)

	var left, right NodeIndex
	if x[dim] <= val {
		left, right = newLeaf, existingLeaf
	} else {
		left, right = existingLeaf, newLeaf
	}
	t.store.setLeft(s, left)
	t.store.setRight(s, right)
	t.store.setCutDim(s, dim)
	t.cutVal[s] = val
	t.nodeMass[s] = int32(t.Mass(left) + t.Mass(right))
	if t.centerOfMass {
		t.pointSum.setPointSum(s, t.childPointSum(left), t.childPointSum(right))
	}
	if idx, ok := t.cache.translate(s); ok {
		merged := cloneBox(box)
		for k := range merged.Min {
			if x[k] < merged.Min[k] {
				merged.Min[k] = x[k]
			}
			if x[k] > merged.Max[k] {
				merged.Max[k] = x[k]
			}
		}
		t.cache.copyBoxToData(idx, merged)
	}

	ancestors := t.ancestorSlots(path)
	if len(ancestors) == 0 {
		t.root = NodeIndex(s)
		if t.store.hasParent() {
			t.store.setParent(s, NullIndex)
		}
	} else {
		parentSlot := ancestors[len(ancestors)-1]
		t.spliceEdge(parentSlot, existingLeaf, NodeIndex(s))
	}
	t.manageAncestorsAdd(ancestors, x)

	tracer().Debugf("update: inserted leaf %d via new interior %d", newLeaf, s)
	return Some(UpdateResult{InsertedLeaf: newLeaf, EvictedLeaf: evicted}), nil
}

// samePoint reports whether a and b are equal on every coordinate, used to
// distinguish a genuine duplicate insertion from a point that merely shares a
// leaf's descent path up to some prefix of cuts.
func samePoint(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
