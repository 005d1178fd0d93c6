package rcftree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeListInitiallyAllFree(t *testing.T) {
	fl := newFreeList(4)
	assert.Equal(t, 4, fl.size())
	for i := 0; i < 4; i++ {
		assert.False(t, fl.inUse(i))
	}
}

func TestFreeListTakeAscending(t *testing.T) {
	fl := newFreeList(3)
	for want := 0; want < 3; want++ {
		got, err := fl.take()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := fl.take()
	assert.ErrorIs(t, err, ErrCapacityExhausted)
}

func TestFreeListReleaseMergesNeighbors(t *testing.T) {
	fl := newFreeList(5)
	for i := 0; i < 5; i++ {
		_, err := fl.take()
		require.NoError(t, err)
	}
	assert.Equal(t, 0, fl.size())

	require.NoError(t, fl.release(2))
	require.NoError(t, fl.release(1))
	require.NoError(t, fl.release(3))
	// merging 1,2,3 into one interval; 0 and 4 remain taken.
	assert.Equal(t, 3, fl.size())
	assert.False(t, fl.inUse(1))
	assert.False(t, fl.inUse(2))
	assert.False(t, fl.inUse(3))
	assert.True(t, fl.inUse(0))
	assert.True(t, fl.inUse(4))

	got, err := fl.take()
	require.NoError(t, err)
	assert.Equal(t, 1, got, "take must return the smallest free index")
}

func TestFreeListReleaseAlreadyFreeFails(t *testing.T) {
	fl := newFreeList(2)
	err := fl.release(0)
	assert.ErrorIs(t, err, ErrAlreadyFree)
}

func TestFreeListTakeReleaseRoundTrip(t *testing.T) {
	// take/release every slot in an arbitrary order, verifying the free set
	// converges back to everything free (free ∪ in-use = [0,cap) throughout).
	fl := newFreeList(8)
	taken := make([]int, 0, 8)
	for i := 0; i < 8; i++ {
		s, err := fl.take()
		require.NoError(t, err)
		taken = append(taken, s)
	}
	order := []int{3, 0, 7, 1, 6, 2, 5, 4}
	for _, s := range order {
		require.NoError(t, fl.release(taken[s]))
	}
	assert.Equal(t, 8, fl.size())
	for i := 0; i < 8; i++ {
		assert.False(t, fl.inUse(i))
	}
}
