package rcftree

// Tree is a single Random Cut Forest tree: a bounded column-oriented arena of
// interior nodes, a partial bounding-box cache, leaf bookkeeping, and an optional
// center-of-mass cache, together with the update and scoring traversals built on
// top of them. A Tree is not safe for concurrent mutation or for concurrent
// mutation-and-query; callers serialize all access to one tree.
type Tree struct {
	capacity int
	dims     int

	store  nodeStore
	cutVal []float32
	cache  *boxCache

	leaves   *leafBook
	free     *freeList
	pointSum *pointSumCache
	nodeMass []int32 // one aggregate mass per interior slot, always maintained

	pointStore   PointStoreView
	cutPolicy    CutPolicy
	centerOfMass bool

	root NodeIndex

	oldest  seqHeap
	liveSeq map[seqEntry]bool
}

// UpdateResult is returned (wrapped in an Option) from Update: the leaf index that
// was inserted, and — when the tree was at capacity and had to evict the
// oldest-sequence leaf — the leaf index that was evicted.
type UpdateResult struct {
	InsertedLeaf NodeIndex
	EvictedLeaf  Option[NodeIndex]
}

// Size returns the number of interior nodes currently in use.
func (t *Tree) Size() int {
	return t.capacity - t.free.size()
}

// GetCapacity returns the tree's fixed interior-node capacity.
func (t *Tree) GetCapacity() int {
	return t.capacity
}

// IsLeaf reports whether i addresses a leaf.
func (t *Tree) IsLeaf(i NodeIndex) bool {
	return isLeafIndex(i, t.capacity)
}

// IsInternal reports whether i addresses an interior slot.
func (t *Tree) IsInternal(i NodeIndex) bool {
	return isInternalIndex(i, t.capacity)
}

// Root returns the tree's current root, or NullIndex if the tree is empty.
func (t *Tree) Root() NodeIndex {
	return t.root
}

// GetLeafMass returns the duplicate count (>=1) for a leaf.
func (t *Tree) GetLeafMass(leafIdx NodeIndex) int {
	invariant(t.IsLeaf(leafIdx), "getLeafMass: expected a leaf index, got %d", leafIdx)
	return t.leaves.getLeafMass(leafIdx, t.capacity)
}

// PointOf resolves a leaf to its point-store vector.
func (t *Tree) PointOf(leafIdx NodeIndex) []float32 {
	invariant(t.IsLeaf(leafIdx), "PointOf: expected a leaf index, got %d", leafIdx)
	return t.pointStore.Get(pointIndexOf(leafIdx, t.capacity))
}

// PointIndexOf recovers the point-store index encoded in a leaf's combined
// index, for coordinators reconciling reference counts against Update's result
// without needing to know the combined-index encoding themselves.
func (t *Tree) PointIndexOf(leafIdx NodeIndex) int {
	invariant(t.IsLeaf(leafIdx), "PointIndexOf: expected a leaf index, got %d", leafIdx)
	return pointIndexOf(leafIdx, t.capacity)
}

// ExtractColumns returns the persisted column vectors {leftIndex, rightIndex,
// cutDimension, cutValues, root} that NewTree's prefill options accept, for
// round-trip reconstruction.
func (t *Tree) ExtractColumns() (left, right []NodeIndex, cutDim []int, cutVal []float32, root NodeIndex, rootPresent bool) {
	left = make([]NodeIndex, t.capacity)
	right = make([]NodeIndex, t.capacity)
	cutDim = make([]int, t.capacity)
	cutVal = make([]float32, t.capacity)
	for s := 0; s < t.capacity; s++ {
		left[s] = t.store.left(s)
		right[s] = t.store.right(s)
		cutDim[s] = t.store.cutDim(s)
	}
	copy(cutVal, t.cutVal)
	return left, right, cutDim, cutVal, t.root, t.root != NullIndex
}

// Mass returns the aggregate duplicate-inclusive mass of the subtree rooted at i:
// a leaf's own mass for a leaf, or the maintained mass column for an interior slot.
func (t *Tree) Mass(i NodeIndex) int {
	if t.IsLeaf(i) {
		return t.leaves.getLeafMass(i, t.capacity)
	}
	invariant(t.IsInternal(i), "Mass: expected a valid node index, got %d", i)
	return int(t.nodeMass[i])
}

// childPointSum resolves c's contribution to a parent's point-sum cache: its own
// cached row if c is interior, or point*mass if c is a leaf.
func (t *Tree) childPointSum(c NodeIndex) []float32 {
	if t.IsLeaf(c) {
		mass := float32(t.leaves.getLeafMass(c, t.capacity))
		return t.pointStore.GetScaledPoint(pointIndexOf(c, t.capacity), mass)
	}
	return t.pointSum.getPointSum(int(c))
}

// ResizeCache reallocates the bounding-box cache for a new fraction, preserving
// existing entries up to the new limit. Must only be called when no traversal is
// in flight.
func (t *Tree) ResizeCache(fraction float64) {
	invariant(fraction >= 0 && fraction <= 1, "resizeCache: fraction must be in [0,1], got %v", fraction)
	t.cache.resize(fraction, t.capacity)
	tracer().Debugf("resized box cache to fraction %v (limit %d)", fraction, t.cache.limit)
}
