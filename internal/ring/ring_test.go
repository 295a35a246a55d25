// ABOUTME: Tests for the bounded ring buffer
// ABOUTME: Covers push/get/clear/snapshot and the even-count median behavior
package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lessInt64(a, b int64) bool { return a < b }

func TestPushAndGetOrder(t *testing.T) {
	r := New[int64](3)
	r.Push(1)
	r.Push(2)
	r.Push(3)

	require.Equal(t, 3, r.Len())
	assert.Equal(t, int64(1), r.Get(0))
	assert.Equal(t, int64(2), r.Get(1))
	assert.Equal(t, int64(3), r.Get(2))
}

func TestPushOverwritesOldest(t *testing.T) {
	r := New[int64](3)
	for _, v := range []int64{1, 2, 3, 4, 5} {
		r.Push(v)
	}

	require.Equal(t, 3, r.Len())
	assert.Equal(t, []int64{3, 4, 5}, r.Snapshot())
}

func TestLenNeverExceedsCapacity(t *testing.T) {
	r := New[int64](4)
	for i := int64(0); i < 100; i++ {
		r.Push(i)
		assert.LessOrEqual(t, r.Len(), r.Cap())
	}
	assert.Equal(t, 4, r.Len())
}

func TestClear(t *testing.T) {
	r := New[int64](3)
	r.Push(1)
	r.Push(2)
	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Snapshot())

	r.Push(9)
	assert.Equal(t, []int64{9}, r.Snapshot())
}

func TestMedianOddCount(t *testing.T) {
	r := New[int64](5)
	for _, v := range []int64{5, 1, 4, 2, 3} {
		r.Push(v)
	}
	assert.Equal(t, int64(3), r.Median(lessInt64))
	// live order must be unaffected by the sort used for median
	assert.Equal(t, []int64{5, 1, 4, 2, 3}, r.Snapshot())
}

func TestMedianEvenCountIsUpperMiddle(t *testing.T) {
	r := New[int64](4)
	for _, v := range []int64{1, 2, 3, 4} {
		r.Push(v)
	}
	// sorted copy is [1,2,3,4]; index count/2 = 2 -> value 3 (upper-middle,
	// not the average of 2 and 3).
	assert.Equal(t, int64(3), r.Median(lessInt64))
}

func TestCapacityOneOnlyNewestMatters(t *testing.T) {
	r := New[int64](1)
	r.Push(10)
	r.Push(20)

	require.Equal(t, 1, r.Len())
	assert.Equal(t, int64(20), r.Get(0))
	assert.Equal(t, int64(20), r.Median(lessInt64))
}

func TestGetPanicsOutOfRange(t *testing.T) {
	r := New[int64](2)
	r.Push(1)
	assert.Panics(t, func() { r.Get(1) })
	assert.Panics(t, func() { r.Get(-1) })
}
