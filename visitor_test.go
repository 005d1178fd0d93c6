package rcftree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingVisitor records every node visited on the way down (leaf) and up
// (internal), along with the depths reported.
type countingVisitor struct {
	leafDepth      int
	leafSeen       bool
	internalDepths []int
}

func (v *countingVisitor) AcceptLeaf(view NodeView) {
	v.leafDepth = view.Depth
	v.leafSeen = true
}

func (v *countingVisitor) Accept(view NodeView) {
	v.internalDepths = append(v.internalDepths, view.Depth)
	// sibling box must be resolvable from any internal view.
	_ = view.SiblingBox()
}

func TestTraverseVisitsLeafThenUnwindsInternals(t *testing.T) {
	tree, ps := newTestTree(t, 8, 2, 1.0, 40)
	pts := [][]float32{{0, 0}, {10, 10}, {-5, 2}, {3, -7}}
	for i, p := range pts {
		idx := ps.add(p)
		_, err := tree.Update(idx, int64(i))
		require.NoError(t, err)
	}

	v := &countingVisitor{}
	tree.Traverse(f32(0, 0), v)
	assert.True(t, v.leafSeen)
	// internal depths must be strictly decreasing (innermost unwound first).
	for i := 1; i < len(v.internalDepths); i++ {
		assert.Less(t, v.internalDepths[i], v.internalDepths[i-1])
	}
}

func TestTraverseEmptyTreeIsNoop(t *testing.T) {
	tree, _ := newTestTree(t, 4, 2, 1.0, 41)
	v := &countingVisitor{}
	assert.NotPanics(t, func() {
		tree.Traverse(f32(0, 0), v)
	})
	assert.False(t, v.leafSeen)
}

// alwaysTriggerVisitor forks the descent at every internal node and counts
// how many leaves were visited across both branches.
type alwaysTriggerVisitor struct {
	leaves int
}

func (v *alwaysTriggerVisitor) AcceptLeaf(view NodeView) { v.leaves++ }
func (v *alwaysTriggerVisitor) Accept(view NodeView)     {}
func (v *alwaysTriggerVisitor) Trigger(view NodeView) bool { return true }
func (v *alwaysTriggerVisitor) NewCopy() MultiVisitor      { return &alwaysTriggerVisitor{} }
func (v *alwaysTriggerVisitor) Combine(other MultiVisitor) {
	v.leaves += other.(*alwaysTriggerVisitor).leaves
}

func TestTraverseMultiForkingVisitsEveryLeaf(t *testing.T) {
	tree, ps := newTestTree(t, 8, 2, 1.0, 42)
	pts := [][]float32{{0, 0}, {10, 10}, {-5, 2}, {3, -7}, {8, 1}}
	for i, p := range pts {
		idx := ps.add(p)
		_, err := tree.Update(idx, int64(i))
		require.NoError(t, err)
	}

	v := &alwaysTriggerVisitor{}
	tree.TraverseMulti(f32(0, 0), v)
	assert.Equal(t, len(pts), v.leaves, "trigger=true on every node must visit all leaves")
}

// neverTriggerVisitor behaves like a single-path descent.
type neverTriggerVisitor struct {
	leaves int
}

func (v *neverTriggerVisitor) AcceptLeaf(view NodeView) { v.leaves++ }
func (v *neverTriggerVisitor) Accept(view NodeView)     {}
func (v *neverTriggerVisitor) Trigger(view NodeView) bool { return false }
func (v *neverTriggerVisitor) NewCopy() MultiVisitor      { return &neverTriggerVisitor{} }
func (v *neverTriggerVisitor) Combine(other MultiVisitor) {}

func TestTraverseMultiWithoutTriggerVisitsOneLeaf(t *testing.T) {
	tree, ps := newTestTree(t, 8, 2, 1.0, 43)
	pts := [][]float32{{0, 0}, {10, 10}, {-5, 2}, {3, -7}, {8, 1}}
	for i, p := range pts {
		idx := ps.add(p)
		_, err := tree.Update(idx, int64(i))
		require.NoError(t, err)
	}

	v := &neverTriggerVisitor{}
	tree.TraverseMulti(f32(0, 0), v)
	assert.Equal(t, 1, v.leaves)
}

func TestNodeViewSiblingBoxRequiresSibling(t *testing.T) {
	tree, ps := newTestTree(t, 4, 2, 1.0, 44)
	p0 := ps.add(f32(0, 0))
	p1 := ps.add(f32(1, 1))
	_, err := tree.Update(p0, 0)
	require.NoError(t, err)
	res, err := tree.Update(p1, 1)
	require.NoError(t, err)
	var r UpdateResult
	res.Match().Some(&r)

	leafView := NodeView{Node: r.InsertedLeaf, Depth: 1, Sibling: NullIndex, tree: tree}
	assert.Panics(t, func() {
		leafView.SiblingBox()
	})
}
