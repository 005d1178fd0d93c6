package rcftree

import "math"

// ScoreFunc is a scalar policy callback supplying a score contribution for a
// node at the given depth and mass: scoreSeen for a duplicate of the query
// point, scoreUnseen for everything else.
type ScoreFunc func(depth int, mass int) float64

// DampFunc scales a duplicate match's contribution down as its mass grows.
type DampFunc func(mass int) float64

// DefaultScoreUnseen is the standard displacement-based contribution for a
// novel point at the given depth.
func DefaultScoreUnseen(depth, mass int) float64 {
	return 1.0 / float64(depth+1)
}

// DefaultScoreSeen discounts a duplicate's contribution by the depth the
// duplicate mass would have added to the tree.
func DefaultScoreSeen(depth, mass int) float64 {
	return 1.0 / (float64(depth) + math.Log2(float64(mass)+1))
}

// DefaultTreeDamp approaches 1/2 from above as a duplicate's mass grows.
var DefaultTreeDamp DampFunc = Compose(
	func(mass int) float64 { return float64(mass) },
	func(m float64) float64 { return 1 - m/(2*(m+1)) },
)

// switchFraction is the cache-coverage boundary below which Score threads a
// single accumulator box through the traversal rather than re-materializing
// boxes node by node.
const switchFraction = 0.499

// Score computes the anomaly score of x against this tree: a leaf whose mass
// exceeds ignoreMass and whose coordinates all compare equal to x's (float
// equality, so -0 and +0 match and NaN never does) short-circuits the traversal via
// scoreSeen/treeDamp; every other leaf contributes scoreUnseen, damped upward by
// the probability each ancestor would have cut x away from its subtree.
func (t *Tree) Score(x []float32, ignoreMass int, scoreSeen, scoreUnseen ScoreFunc, treeDamp DampFunc) float64 {
	invariant(len(x) == t.dims, "Score: point has wrong dimensionality")
	if t.root == NullIndex {
		return 0
	}
	var box *Box
	if t.cache.fraction < switchFraction || ignoreMass > 0 {
		box = &Box{}
	}
	_, score, _ := t.scoreScalar(t.root, 0, box, ignoreMass, x, scoreSeen, scoreUnseen, treeDamp)
	return score
}

// scoreScalar is the recursive scoring traversal, returning (prob, score, live):
// prob is the probability this subtree would have induced a new cut for x (0
// once a live duplicate match has been found, which also signals callers to
// short-circuit without further score adjustment); live is 1 when the subtree's
// contribution came from a leaf whose mass exceeded ignoreMass, 0 otherwise —
// it tells an ancestor's box bookkeeping whether to grow its accumulator by the
// sibling or to discard it and start over from the sibling's own box.
func (t *Tree) scoreScalar(node NodeIndex, depth int, box *Box, ignoreMass int, x []float32,
	scoreSeen, scoreUnseen ScoreFunc, treeDamp DampFunc) (prob float64, score float64, live int) {

	if t.IsLeaf(node) {
		p := t.PointOf(node)
		if box != nil {
			box.Min = cloneFloats(p)
			box.Max = cloneFloats(p)
		}
		mass := t.Mass(node)
		massIsLive := mass > ignoreMass
		if massIsLive && samePoint(p, x) {
			return 0, treeDamp(mass) * scoreSeen(depth, mass), 1
		}
		liveFlag := 0
		if massIsLive {
			liveFlag = 1
		}
		return 1, scoreUnseen(depth, mass), liveFlag
	}

	s := int(node)
	var child, sibling NodeIndex
	if x[t.store.cutDim(s)] <= t.cutVal[s] {
		child, sibling = t.store.left(s), t.store.right(s)
	} else {
		child, sibling = t.store.right(s), t.store.left(s)
	}

	childProb, childScore, childLive := t.scoreScalar(child, depth+1, box, ignoreMass, x, scoreSeen, scoreUnseen, treeDamp)
	if childProb == 0 {
		return 0, childScore, childLive
	}

	if box != nil {
		if childLive == 1 {
			*box = t.growNodeBox(*box, sibling)
		} else {
			*box = t.getBox(sibling)
		}
	}

	p := t.probabilityOfCut(s, x, box)
	result := childScore*(1-p) + p*scoreUnseen(depth, t.Mass(node))
	return p, result, childLive
}

// probabilityOfCut computes the chance a random cut would separate x from the node's box: a cached box is always
// preferred, falling back to the traversal's accumulator and finally to a
// materialized box via getBox.
func (t *Tree) probabilityOfCut(s int, x []float32, box *Box) float64 {
	if idx, ok := t.cache.translate(s); ok && !t.cache.empty(idx) {
		return probabilityOfCutOverBox(t.cache.minSlice(idx), t.cache.maxSlice(idx), float64(t.cache.rangeSum[idx]), x)
	}
	if box != nil {
		return probabilityOfCutOverBox(box.Min, box.Max, float64(rangeSumOf(box.Min, box.Max)), x)
	}
	b := t.getBox(NodeIndex(s))
	return probabilityOfCutOverBox(b.Min, b.Max, float64(rangeSumOf(b.Min, b.Max)), x)
}

func probabilityOfCutOverBox(min, max []float32, rangeSum float64, x []float32) float64 {
	var minExcess, maxExcess float64
	for k := range min {
		if d := float64(min[k]) - float64(x[k]); d > 0 {
			minExcess += d
		}
		if d := float64(x[k]) - float64(max[k]); d > 0 {
			maxExcess += d
		}
	}
	numerator := minExcess + maxExcess
	if numerator == 0 {
		return 0
	}
	return numerator / (rangeSum + numerator)
}
