package rcftree

// pathStep is one level of a root-to-leaf descent: the child actually visited,
// paired with its (unvisited) sibling — the "stack of pairs (visited, sibling)" of
// getPath produces.
type pathStep = Pair[NodeIndex, NodeIndex]

// getPath descends from the root toward the position x would occupy, recording at
// each internal slot which child was taken and what its sibling was. Descent ends
// when the visited index is no longer internal: ordinarily a leaf, but possibly
// NullIndex if called against a slot that has not yet had both children wired up
// (only happens transiently during reconstruction).
func (t *Tree) getPath(x []float32) []pathStep {
	var path []pathStep
	cur := t.root
	for t.IsInternal(cur) {
		s := int(cur)
		var child, sibling NodeIndex
		if x[t.store.cutDim(s)] <= t.cutVal[s] {
			child, sibling = t.store.left(s), t.store.right(s)
		} else {
			child, sibling = t.store.right(s), t.store.left(s)
		}
		path = append(path, P(child, sibling))
		cur = child
	}
	return path
}
