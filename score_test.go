package rcftree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreEmptyTreeIsZero(t *testing.T) {
	tree, _ := newTestTree(t, 4, 2, 1.0, 30)
	score := tree.Score(f32(0, 0), 0, func(int, int) float64 { return 1 }, func(int, int) float64 { return 1 }, func(int) float64 { return 1 })
	assert.Equal(t, 0.0, score)
}

func TestProbabilityOfCutOverBoxZeroWhenInside(t *testing.T) {
	min := f32(0, 0)
	max := f32(10, 10)
	rangeSum := float64(rangeSumOf(min, max))
	p := probabilityOfCutOverBox(min, max, rangeSum, f32(5, 5))
	assert.Equal(t, 0.0, p)
}

func TestProbabilityOfCutOverBoxPositiveWhenOutside(t *testing.T) {
	min := f32(0, 0)
	max := f32(10, 10)
	rangeSum := float64(rangeSumOf(min, max))
	p := probabilityOfCutOverBox(min, max, rangeSum, f32(20, 5))
	assert.Greater(t, p, 0.0)
	assert.Less(t, p, 1.0)
}

func TestDynamicScoreUsesAccumulatorBelowSwitchFraction(t *testing.T) {
	// With a sparse cache (fraction < 0.499) Score must still produce sane
	// results driven by the accumulator-box code path rather than the
	// per-node cache lookup path.
	tree, ps := newTestTree(t, 8, 2, 0.1, 31)
	for i, v := range [][2]float32{{1, 1}, {2, -2}, {-3, 3}, {5, 5}} {
		p := ps.add(f32(v[0], v[1]))
		_, err := tree.Update(p, int64(i))
		require.NoError(t, err)
	}
	score := tree.Score(f32(0, 0), 0,
		func(depth, mass int) float64 { return 0 },
		func(depth, mass int) float64 { return float64(depth + 1) },
		func(mass int) float64 { return 1 })
	assert.Greater(t, score, 0.0)
}

func TestScoreIgnoreMassThresholdSwitchesSeenVsUnseen(t *testing.T) {
	tree, ps := newTestTree(t, 4, 1, 1.0, 32)
	p := ps.add(f32(7))
	_, err := tree.Update(p, 0)
	require.NoError(t, err)
	_, err = tree.Update(p, 1) // duplicate, mass becomes 2
	require.NoError(t, err)

	seen := func(depth, mass int) float64 { return 10 }
	unseen := func(depth, mass int) float64 { return 1 }
	damp := func(mass int) float64 { return 1 }

	below := tree.Score(f32(7), 1, seen, unseen, damp) // ignoreMass < mass(2): treated as seen
	above := tree.Score(f32(7), 2, seen, unseen, damp) // ignoreMass >= mass(2): treated as novel
	assert.Equal(t, 10.0, below)
	assert.Equal(t, 1.0, above)
}
