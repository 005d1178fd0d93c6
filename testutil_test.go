package rcftree

import (
	"math/rand"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

// testPointStore is a minimal slice-backed PointStoreView for tests: points are
// appended and never reclaimed, since these tests don't exercise the
// forest-level coordinator's reference-count reuse (see refstore for that).
type testPointStore struct {
	dims   int
	points [][]float32
}

func newTestPointStore(dims int) *testPointStore {
	return &testPointStore{dims: dims}
}

func (s *testPointStore) add(p []float32) int {
	cp := make([]float32, len(p))
	copy(cp, p)
	s.points = append(s.points, cp)
	return len(s.points) - 1
}

func (s *testPointStore) Get(pointIndex int) []float32 { return s.points[pointIndex] }

func (s *testPointStore) GetScaledPoint(pointIndex int, scalar float32) []float32 {
	p := s.points[pointIndex]
	out := make([]float32, len(p))
	for k, v := range p {
		out[k] = v * scalar
	}
	return out
}

func (s *testPointStore) Dimensions() int { return s.dims }

func (s *testPointStore) IncrementRefCount(int) {}
func (s *testPointStore) DecrementRefCount(int) {}

// newTestTree builds a Tree wired to a fresh testPointStore and a seeded
// UniformCutPolicy.
func newTestTree(t *testing.T, capacity, dims int, fraction float64, seed int64, opts ...func(*TreeConfig)) (*Tree, *testPointStore) {
	t.Helper()
	teardown := gotestingadapter.QuickConfig(t, "rcftree")
	t.Cleanup(teardown)

	ps := newTestPointStore(dims)
	cfg := TreeConfig{
		Dimensions:               dims,
		Capacity:                 capacity,
		BoundingBoxCacheFraction: fraction,
		PointStoreView:           ps,
		CutPolicy:                UniformCutPolicy{Rand: rand.New(rand.NewSource(seed))},
	}
	for _, o := range opts {
		o(&cfg)
	}
	tree, err := NewTree(cfg)
	require.NoError(t, err)
	return tree, ps
}

func withCenterOfMass(cfg *TreeConfig) { cfg.CenterOfMassEnabled = true }
func withSequences(cfg *TreeConfig)    { cfg.StoreSequencesEnabled = true }
func withParent(cfg *TreeConfig)       { cfg.StoreParent = true }

func f32(vs ...float32) []float32 { return vs }
