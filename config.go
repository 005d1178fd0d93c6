package rcftree

// TreeConfig holds the construction options for a tree. A TreeConfig is
// validated once, at NewTree; a Tree's dimensions and capacity are fixed for its
// life thereafter.
type TreeConfig struct {
	// Dimensions is the fixed point-vector length d.
	Dimensions int
	// Capacity is the maximum number of interior nodes; it also fixes the
	// leaf-index offset (capacity+1).
	Capacity int
	// BoundingBoxCacheFraction is the fraction of interior slots that carry a
	// box cache entry, in [0,1].
	BoundingBoxCacheFraction float64
	// CenterOfMassEnabled allocates and maintains the pointSum cache.
	CenterOfMassEnabled bool
	// StoreSequencesEnabled maintains the per-leaf sequence-index multiset.
	StoreSequencesEnabled bool
	// StoreParent maintains the parent[] column.
	StoreParent bool
	// PointStoreView is required; construction fails when it is nil.
	PointStoreView PointStoreView
	// CutPolicy draws the (dimension, value) cut used to split an edge on insert.
	// Out of scope in detail (the random-number policy belongs to the forest-level
	// coordinator), but the update engine still needs an injected instance to
	// operate, so it is named here as a construction option the same way
	// PointStoreView is. Required; construction fails when it is nil.
	CutPolicy CutPolicy

	// The following four fields reconstruct a tree from persisted column
	// vectors; all four must be provided together and all of length
	// Capacity, or none of them.
	LeftIndex    []NodeIndex
	RightIndex   []NodeIndex
	CutDimension []int
	CutValues    []float32
	Root         NodeIndex
	RootPresent  bool
}

// NewTree validates cfg and constructs an empty (or reconstructed) tree.
func NewTree(cfg TreeConfig) (*Tree, error) {
	invariant(cfg.PointStoreView != nil, "pointStoreView must be present")
	invariant(cfg.CutPolicy != nil, "cutPolicy must be present")
	invariant(cfg.Dimensions > 0, "dimensions must be positive")
	invariant(cfg.Capacity > 0, "capacity must be positive")
	invariant(cfg.BoundingBoxCacheFraction >= 0 && cfg.BoundingBoxCacheFraction <= 1,
		"boundingBoxCacheFraction must be in [0,1], got %v", cfg.BoundingBoxCacheFraction)

	prefilled := cfg.LeftIndex != nil || cfg.RightIndex != nil || cfg.CutDimension != nil || cfg.CutValues != nil
	if prefilled {
		invariant(cfg.LeftIndex != nil && cfg.RightIndex != nil && cfg.CutDimension != nil && cfg.CutValues != nil,
			"prefilled reconstruction requires leftIndex, rightIndex, cutDimension and cutValues together")
		invariant(len(cfg.LeftIndex) == cfg.Capacity && len(cfg.RightIndex) == cfg.Capacity &&
			len(cfg.CutDimension) == cfg.Capacity && len(cfg.CutValues) == cfg.Capacity,
			"prefilled column vectors must all have length capacity=%d", cfg.Capacity)
	}

	t := &Tree{
		capacity:     cfg.Capacity,
		dims:         cfg.Dimensions,
		store:        newNodeStore(cfg.Capacity, cfg.Dimensions),
		cutVal:       make([]float32, cfg.Capacity),
		cache:        newBoxCache(cfg.BoundingBoxCacheFraction, cfg.Capacity, cfg.Dimensions),
		leaves:       newLeafBook(cfg.StoreSequencesEnabled),
		free:         newFreeList(cfg.Capacity),
		nodeMass:     make([]int32, cfg.Capacity),
		pointStore:   cfg.PointStoreView,
		cutPolicy:    cfg.CutPolicy,
		root:         NullIndex,
		centerOfMass: cfg.CenterOfMassEnabled,
		liveSeq:      make(map[seqEntry]bool),
	}
	if cfg.StoreParent {
		t.store.enableParent()
	}
	if cfg.CenterOfMassEnabled {
		t.pointSum = newPointSumCache(cfg.Capacity, cfg.Dimensions)
	}

	if prefilled {
		t.loadPrefilled(cfg)
	}
	return t, nil
}

// loadPrefilled installs persisted column vectors and marks every slot they
// reference as in-use in the free-index manager, for round-trip
// reconstruction.
func (t *Tree) loadPrefilled(cfg TreeConfig) {
	inUse := make([]bool, t.capacity)
	for s := 0; s < t.capacity; s++ {
		t.store.setLeft(s, cfg.LeftIndex[s])
		t.store.setRight(s, cfg.RightIndex[s])
		t.store.setCutDim(s, cfg.CutDimension[s])
		t.cutVal[s] = cfg.CutValues[s]
		if cfg.LeftIndex[s] != NullIndex || cfg.RightIndex[s] != NullIndex {
			inUse[s] = true
		}
	}
	if cfg.RootPresent {
		t.root = cfg.Root
		if isInternalIndex(t.root, t.capacity) {
			inUse[t.root] = true
		}
	}
	// take() always hands out the smallest free slot and cannot claim a chosen
	// one, so to mark an arbitrary set in-use we instead rebuild the free list
	// directly from the complement.
	t.free = freeListFromInUse(inUse)
	t.rebuildAncestryAndMasses()
}

// freeListFromInUse builds a freeList whose free set is exactly the slots not
// marked in-use.
func freeListFromInUse(inUse []bool) *freeList {
	fl := &freeList{}
	n := len(inUse)
	i := 0
	for i < n {
		if inUse[i] {
			i++
			continue
		}
		j := i
		for j < n && !inUse[j] {
			j++
		}
		fl.intervals = append(fl.intervals, interval{i, j})
		fl.free += j - i
		i = j
	}
	return fl
}

// rebuildAncestryAndMasses walks the reconstructed tree once, post-order, to
// populate parent links (if enabled) and the mass/pointSum columns from the
// shape of the tree and the leaves' own masses — persisted column vectors carry
// no explicit interior mass or point-sum, so both are recomputed bottom-up.
// Leaf masses come from this tree's own leaf bookkeeping, which NewTree creates
// empty, so every leaf of a reconstructed tree has mass 1: duplicate counts of
// the source tree are not carried in the column vectors and are not restored.
func (t *Tree) rebuildAncestryAndMasses() {
	var walk func(i NodeIndex, parent NodeIndex) int
	walk = func(i NodeIndex, parent NodeIndex) int {
		if t.IsLeaf(i) {
			return t.leaves.getLeafMass(i, t.capacity)
		}
		invariant(t.IsInternal(i), "rebuildAncestryAndMasses: dangling child reference %d", i)
		if t.store.hasParent() {
			t.store.setParent(int(i), parent)
		}
		leftMass := walk(t.store.left(int(i)), i)
		rightMass := walk(t.store.right(int(i)), i)
		t.nodeMass[i] = int32(leftMass + rightMass)
		if t.centerOfMass {
			t.pointSum.setPointSum(int(i), t.childPointSum(t.store.left(int(i))), t.childPointSum(t.store.right(int(i))))
		}
		return leftMass + rightMass
	}
	if t.root != NullIndex {
		walk(t.root, NullIndex)
	}
}
