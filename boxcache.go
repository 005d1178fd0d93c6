package rcftree

// Box is an axis-aligned bounding box: a pair of vectors (min, max).
type Box struct {
	Min []float32
	Max []float32
}

func rangeSumOf(min, max []float32) float32 {
	var sum float32
	for k := range min {
		sum += max[k] - min[k]
	}
	return sum
}

func cloneBox(b Box) Box {
	min := make([]float32, len(b.Min))
	max := make([]float32, len(b.Max))
	copy(min, b.Min)
	copy(max, b.Max)
	return Box{Min: min, Max: max}
}

// boxCache is a partial cache of subtree bounding boxes: a fraction f of interior
// slots — those with s < limit — carry a cached box and range-sum; the remainder
// are structurally uncacheable for the tree's lifetime (see the Open Question in
// DESIGN.md about whether cache-slot identity should instead be remapped). Backing
// storage is one flat array of (min, max) per cached slot, plus one rangeSum per
// cached slot. rangeSum == 0 marks an empty (unpopulated) cache slot.
type boxCache struct {
	fraction float64
	limit    int
	dims     int
	boxData  []float32 // length 2*dims*limit: [min(0)...max(0)][min(1)...max(1)]...
	rangeSum []float32 // length limit
}

func newBoxCache(fraction float64, capacity, dims int) *boxCache {
	limit := int(fraction * float64(capacity))
	return &boxCache{
		fraction: fraction,
		limit:    limit,
		dims:     dims,
		boxData:  make([]float32, 2*dims*limit),
		rangeSum: make([]float32, limit),
	}
}

// translate maps an interior slot to a cache-array index, or reports a miss.
func (c *boxCache) translate(s int) (int, bool) {
	if s < c.limit {
		return s, true
	}
	return 0, false
}

func (c *boxCache) empty(idx int) bool {
	return c.rangeSum[idx] == 0
}

func (c *boxCache) minSlice(idx int) []float32 {
	base := idx * 2 * c.dims
	return c.boxData[base : base+c.dims]
}

func (c *boxCache) maxSlice(idx int) []float32 {
	base := idx*2*c.dims + c.dims
	return c.boxData[base : base+c.dims]
}

// copyBoxToData writes min, max and the range sum for cached slot s atomically
// with respect to other readers of the same slot: the range sum (the field that
// signals emptiness) is written last.
func (c *boxCache) copyBoxToData(idx int, box Box) {
	copy(c.minSlice(idx), box.Min)
	copy(c.maxSlice(idx), box.Max)
	rs := rangeSumOf(box.Min, box.Max)
	if rs == 0 {
		// A degenerate (point) box has range sum 0, which would collide with the
		// "empty slot" sentinel. The original RCF avoids this by never caching a
		// single-point subtree's box under slot-empty semantics for a box whose
		// dimensions are all equal; we nudge by storing the tiny positive value
		// minPositiveRangeSum only when every coordinate truly coincides,
		// keeping the emptiness sentinel unambiguous.
		rs = minPositiveRangeSum
	}
	c.rangeSum[idx] = rs
}

// minPositiveRangeSum is the sentinel used to distinguish a populated, degenerate
// (all coordinates equal) cached box from an empty cache slot, since both would
// otherwise report rangeSum == 0.
const minPositiveRangeSum = 1e-30

// resize reallocates the cache for a new fraction, preserving existing entries up
// to the new limit. Must only be called with no traversal in flight.
func (c *boxCache) resize(newFraction float64, capacity int) {
	newLimit := int(newFraction * float64(capacity))
	newBoxData := make([]float32, 2*c.dims*newLimit)
	newRangeSum := make([]float32, newLimit)
	keep := c.limit
	if newLimit < keep {
		keep = newLimit
	}
	copy(newBoxData, c.boxData[:2*c.dims*keep])
	copy(newRangeSum, c.rangeSum[:keep])
	c.fraction = newFraction
	c.limit = newLimit
	c.boxData = newBoxData
	c.rangeSum = newRangeSum
}
