package refstore

import (
	"sync"

	rcftree "github.com/rcf-go/rcftree"
)

// Store is a flat, reference-counted point store: rcftree.PointStoreView plus
// the bookkeeping a single-tree Coordinator needs to reuse slots once every
// tree has dropped its last leaf referencing them.
type Store struct {
	mu       sync.Mutex
	dims     int
	vectors  [][]float32
	refCount []int
	free     []int
}

// New creates an empty store for vectors of the given dimensionality.
func New(dims int) *Store {
	return &Store{dims: dims}
}

// Get implements rcftree.PointStoreView.
func (s *Store) Get(pointIndex int) []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vectors[pointIndex]
}

// GetScaledPoint implements rcftree.PointStoreView.
func (s *Store) GetScaledPoint(pointIndex int, scalar float32) []float32 {
	s.mu.Lock()
	v := s.vectors[pointIndex]
	s.mu.Unlock()
	out := make([]float32, len(v))
	for k, c := range v {
		out[k] = c * scalar
	}
	return out
}

// Dimensions implements rcftree.PointStoreView.
func (s *Store) Dimensions() int { return s.dims }

// IncrementRefCount implements rcftree.PointStoreView.
func (s *Store) IncrementRefCount(pointIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refCount[pointIndex]++
}

// DecrementRefCount implements rcftree.PointStoreView. When a point's reference
// count drops to zero its vector is released and the slot is queued for reuse.
func (s *Store) DecrementRefCount(pointIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refCount[pointIndex]--
	if s.refCount[pointIndex] <= 0 {
		s.vectors[pointIndex] = nil
		s.free = append(s.free, pointIndex)
		tracer().Debugf("refstore: released point %d", pointIndex)
	}
}

// insert stores point in a reused or fresh slot, with a reference count of
// one: that single reference is the coordinator's own provisional hold on the
// point while it is fanned out across trees: the input handle must be dropped
// exactly once, and CompleteUpdate's final DecrementRefCount relinquishes it.
// Every tree that keeps the point as a leaf adds its own reference on top via
// IncrementRefCount, so the count settles at "number of trees retaining it"
// once the provisional hold is dropped, never at zero for a point any tree
// still references.
func (s *Store) insert(point []float32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.free); n > 0 {
		p := s.free[n-1]
		s.free = s.free[:n-1]
		s.vectors[p] = point
		s.refCount[p] = 1
		return p
	}
	p := len(s.vectors)
	s.vectors = append(s.vectors, point)
	s.refCount = append(s.refCount, 1)
	return p
}

// Coordinator is a reference rcftree.Coordinator driving a single tree:
// InitUpdate stores the incoming point, CompleteUpdate bumps the inserted
// leaf's count, drops the evicted leaf's count (if any), and finally drops the
// input handle.
type Coordinator struct {
	store *Store
	tree  *rcftree.Tree
}

// NewCoordinator builds a Coordinator over store, reconciling reference counts
// for tree.
func NewCoordinator(store *Store, tree *rcftree.Tree) *Coordinator {
	return &Coordinator{store: store, tree: tree}
}

// InitUpdate implements rcftree.Coordinator.
func (c *Coordinator) InitUpdate(point []float32) (int, error) {
	return c.store.insert(point), nil
}

// CompleteUpdate implements rcftree.Coordinator.
func (c *Coordinator) CompleteUpdate(result rcftree.Option[rcftree.UpdateResult], inputPointIndex int) {
	var res rcftree.UpdateResult
	if result.Match().Some(&res) != nil {
		c.store.IncrementRefCount(c.tree.PointIndexOf(res.InsertedLeaf))
		if res.EvictedLeaf.IsSome() {
			evicted := res.EvictedLeaf.WithDefault(rcftree.NullIndex)
			c.store.DecrementRefCount(c.tree.PointIndexOf(evicted))
		}
	}
	// Update failing (e.g. ErrCapacityExhausted when the evicted occurrence freed
	// no interior slot) means nothing was inserted, so there is no count to bump
	// beyond the drop below.
	c.store.DecrementRefCount(inputPointIndex)
}
