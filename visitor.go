package rcftree

// NodeView is the read-only cursor a traversal passes to a Visitor: the
// current node, its depth, and its
// unvisited sibling (NullIndex at a leaf). Sibling's box is materialized lazily
// through SiblingBox, only if the visitor actually asks for it. A NodeView must
// not be retained past the call it was passed to — the next descent step
// mutates the cursor's tree-side state (box caches, not the view itself, but
// the view is only meaningful for the instant of the call).
type NodeView struct {
	Node    NodeIndex
	Depth   int
	Sibling NodeIndex
	tree    *Tree
}

// Mass returns the current node's aggregate mass.
func (v NodeView) Mass() int { return v.tree.Mass(v.Node) }

// IsLeaf reports whether the current node is a leaf.
func (v NodeView) IsLeaf() bool { return v.tree.IsLeaf(v.Node) }

// Point resolves the current node to its point-store vector; only valid when
// IsLeaf().
func (v NodeView) Point() []float32 { return v.tree.PointOf(v.Node) }

// Box returns the current node's bounding box, consulting the cache transparently.
func (v NodeView) Box() Box { return v.tree.getBox(v.Node) }

// SiblingBox returns the unvisited sibling's bounding box. Only valid when
// Sibling != NullIndex (i.e. not called from acceptLeaf).
func (v NodeView) SiblingBox() Box {
	invariant(v.Sibling != NullIndex, "NodeView.SiblingBox: no sibling at this view (called from a leaf?)")
	return v.tree.getBox(v.Sibling)
}

// Visitor is the single-descent traversal protocol: acceptLeaf fires
// once, at the leaf x descends to; accept fires once per internal node on the
// way back up, innermost first.
type Visitor interface {
	AcceptLeaf(view NodeView)
	Accept(view NodeView)
}

// Traverse performs a single-visitor descent toward the leaf x would occupy,
// then unwinds calling Accept at each internal node passed on the way back up.
func (t *Tree) Traverse(x []float32, v Visitor) {
	if t.root == NullIndex {
		return
	}
	t.traverse(t.root, 0, x, v)
}

func (t *Tree) traverse(node NodeIndex, depth int, x []float32, v Visitor) {
	if t.IsLeaf(node) {
		v.AcceptLeaf(NodeView{Node: node, Depth: depth, Sibling: NullIndex, tree: t})
		return
	}
	s := int(node)
	var child, sibling NodeIndex
	if x[t.store.cutDim(s)] <= t.cutVal[s] {
		child, sibling = t.store.left(s), t.store.right(s)
	} else {
		child, sibling = t.store.right(s), t.store.left(s)
	}
	t.traverse(child, depth+1, x, v)
	v.Accept(NodeView{Node: node, Depth: depth, Sibling: sibling, tree: t})
}

// MultiVisitor is the multi-descent traversal protocol: for algorithms
// (directional attribution and similar) that need to compare both sides of a
// cut rather than only the cut-dictated one.
type MultiVisitor interface {
	Visitor
	// Trigger is asked at every internal node before descending; true forks
	// the traversal down both children.
	Trigger(view NodeView) bool
	// NewCopy returns a fresh visitor seeded from this one's state, to carry
	// down the forked (non-cut-dictated) branch.
	NewCopy() MultiVisitor
	// Combine folds another visitor's accumulated state (typically the forked
	// copy, after it finishes its branch) into this one.
	Combine(other MultiVisitor)
}

// TraverseMulti performs a multi-visitor descent: at each internal node,
// Trigger decides whether to fork down both children (descending the
// cut-dictated side with v and the sibling side with a fresh NewCopy, then
// Combine-ing the copy back in) or only the cut-dictated side.
func (t *Tree) TraverseMulti(x []float32, v MultiVisitor) {
	if t.root == NullIndex {
		return
	}
	t.traverseMulti(t.root, 0, x, v)
}

func (t *Tree) traverseMulti(node NodeIndex, depth int, x []float32, v MultiVisitor) {
	if t.IsLeaf(node) {
		v.AcceptLeaf(NodeView{Node: node, Depth: depth, Sibling: NullIndex, tree: t})
		return
	}
	s := int(node)
	var child, sibling NodeIndex
	if x[t.store.cutDim(s)] <= t.cutVal[s] {
		child, sibling = t.store.left(s), t.store.right(s)
	} else {
		child, sibling = t.store.right(s), t.store.left(s)
	}
	view := NodeView{Node: node, Depth: depth, Sibling: sibling, tree: t}

	if v.Trigger(view) {
		forked := v.NewCopy()
		t.traverseMulti(child, depth+1, x, v)
		t.traverseMulti(sibling, depth+1, x, forked)
		v.Combine(forked)
	} else {
		t.traverseMulti(child, depth+1, x, v)
	}
	v.Accept(view)
}
