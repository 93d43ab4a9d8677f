package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueDequeueOrder(t *testing.T) {
	rq := NewRingQueue[int](3)
	require.NoError(t, rq.Enqueue(1))
	require.NoError(t, rq.Enqueue(2))
	require.NoError(t, rq.Enqueue(3))
	assert.ErrorIs(t, rq.Enqueue(4), ErrQueueFull)

	for _, want := range []int{1, 2, 3} {
		got, err := rq.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := rq.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestWrapAround(t *testing.T) {
	rq := NewRingQueue[string](2)
	require.NoError(t, rq.Enqueue("a"))
	_, err := rq.Dequeue()
	require.NoError(t, err)
	require.NoError(t, rq.Enqueue("b"))
	require.NoError(t, rq.Enqueue("c"))

	got, err := rq.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, "b", got)
	got, err = rq.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, "c", got)
}

func TestPushOverwritesOldest(t *testing.T) {
	rq := NewRingQueue[int](3)
	for i := 1; i <= 5; i++ {
		rq.Push(i)
	}
	assert.Equal(t, 3, rq.Len())

	var seen []int
	rq.Each(func(v int) { seen = append(seen, v) })
	assert.Equal(t, []int{3, 4, 5}, seen)
}
