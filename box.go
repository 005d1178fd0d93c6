package rcftree

// getBox returns the tight bounding box of node i's subtree. A leaf's box
// is the degenerate [point, point]; an internal node consults the cache when
// possible and otherwise reconstructs from its children.
func (t *Tree) getBox(i NodeIndex) Box {
	if t.IsLeaf(i) {
		p := t.PointOf(i)
		return Box{Min: cloneFloats(p), Max: cloneFloats(p)}
	}
	invariant(t.IsInternal(i), "getBox: expected a valid node index, got %d", i)
	s := int(i)
	if idx, ok := t.cache.translate(s); ok && !t.cache.empty(idx) {
		return Box{Min: cloneFloats(t.cache.minSlice(idx)), Max: cloneFloats(t.cache.maxSlice(idx))}
	}
	return t.reconstructBox(s)
}

// reconstructBox rebuilds slot s's box from its two children, recursing into each
// child's own cache to minimize work, and opportunistically populates s's cache
// slot (if it has one) as a side effect.
func (t *Tree) reconstructBox(s int) Box {
	left := t.store.left(s)
	right := t.store.right(s)
	invariant(left != NullIndex && right != NullIndex, "reconstructBox: slot %d missing a child", s)
	box := t.getBox(left)
	box = t.growNodeBox(box, right)
	if idx, ok := t.cache.translate(s); ok {
		t.cache.copyBoxToData(idx, box)
	}
	return box
}

// growNodeBox extends box (in place) by sibling's subtree box, consulting caches
// transparently through getBox.
func (t *Tree) growNodeBox(box Box, sibling NodeIndex) Box {
	sib := t.getBox(sibling)
	for k := range box.Min {
		if sib.Min[k] < box.Min[k] {
			box.Min[k] = sib.Min[k]
		}
		if sib.Max[k] > box.Max[k] {
			box.Max[k] = sib.Max[k]
		}
	}
	return box
}

// checkContainsAndAddPoint folds x into cached slot s's box if s is cached and
// nonempty. Its return is dual-purpose: true iff the recomputed range sum equals
// the value stored before the update, i.e. x was already inside the box. The
// insert-side ancestor fix-up (update.go) ignores the return; the delete-side
// walk stops early on checkContainsAndRebuildBox instead.
func (t *Tree) checkContainsAndAddPoint(s int, x []float32) bool {
	idx, ok := t.cache.translate(s)
	if !ok || t.cache.empty(idx) {
		return false
	}
	min := t.cache.minSlice(idx)
	max := t.cache.maxSlice(idx)
	prevRangeSum := t.cache.rangeSum[idx]
	for k := range min {
		if x[k] < min[k] {
			min[k] = x[k]
		}
		if x[k] > max[k] {
			max[k] = x[k]
		}
	}
	newRangeSum := rangeSumOf(min, max)
	if newRangeSum == 0 {
		newRangeSum = minPositiveRangeSum
	}
	t.cache.rangeSum[idx] = newRangeSum
	return newRangeSum == prevRangeSum
}

// checkStrictlyContains reports whether x lies strictly inside cached slot s's
// box on every dimension. Only meaningful when s is cached and nonempty; callers
// are expected to have already checked that.
func (t *Tree) checkStrictlyContains(s int, x []float32) bool {
	idx, ok := t.cache.translate(s)
	invariant(ok && !t.cache.empty(idx), "checkStrictlyContains: slot %d is not a populated cache entry", s)
	min := t.cache.minSlice(idx)
	max := t.cache.maxSlice(idx)
	for k := range min {
		if !(min[k] < x[k] && x[k] < max[k]) {
			return false
		}
	}
	return true
}

// checkContainsAndRebuildBox is the correctness backstop for drift and for
// deletions that shrink boxes. When s is cached and nonempty and x fails
// strict containment, the box is rebuilt from the subtree and written back, and
// false is returned. True means strict containment was positively confirmed —
// the signal the delete ancestor walk uses to stop rebuilding further up (see
// update.go). A cache miss or empty slot cannot confirm anything and returns
// false without rebuilding, so the walk keeps going: with a partial cache,
// slots above an uncached ancestor may still hold boxes the deletion shrank.
func (t *Tree) checkContainsAndRebuildBox(s int, x []float32) bool {
	idx, ok := t.cache.translate(s)
	if !ok || t.cache.empty(idx) {
		return false
	}
	if !t.checkStrictlyContains(s, x) {
		t.reconstructBox(s)
		return false
	}
	return true
}

func cloneFloats(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
