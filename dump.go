package rcftree

import (
	"fmt"

	tp "github.com/xlab/treeprint"
)

// Dump renders the tree as an ASCII tree for diagnostics: a one-line header
// followed by a treeprint rendering of every node, leaves included.
func (t *Tree) Dump() string {
	header := fmt.Sprintf("\nTree(capacity=%d size=%d dims=%d)\n", t.capacity, t.Size(), t.dims)
	p := tp.New()
	t.ppt(p, t.root)
	return header + p.String() + "\n"
}

func (t *Tree) ppt(p tp.Tree, node NodeIndex) {
	if node == NullIndex {
		p.AddNode("<empty>")
		return
	}
	if t.IsLeaf(node) {
		point := t.PointOf(node)
		mass := t.GetLeafMass(node)
		p.AddNode(fmt.Sprintf("leaf(point=%d, %v, mass=%d)", pointIndexOf(node, t.capacity), point, mass))
		return
	}
	s := int(node)
	branch := p.AddBranch(fmt.Sprintf("node(%d, cutDim=%d, cutVal=%v, mass=%d)", s, t.store.cutDim(s), t.cutVal[s], t.Mass(node)))
	t.ppt(branch, t.store.left(s))
	t.ppt(branch, t.store.right(s))
}
