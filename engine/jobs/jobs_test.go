package jobs

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystemValidation(t *testing.T) {
	_, err := NewSystem(0, 4)
	assert.ErrorIs(t, err, ErrNoWorkers)

	_, err = NewSystem(2, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestTasksRunAndComplete(t *testing.T) {
	js, err := NewSystem(4, 16)
	require.NoError(t, err)

	var completed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		js.Submit(Task{
			Name:    "work",
			OnStart: func() (interface{}, error) { return 42, nil },
			OnComplete: func(result interface{}) {
				defer wg.Done()
				if result == 42 {
					completed.Add(1)
				}
			},
		})
	}
	wg.Wait()
	require.NoError(t, js.Shutdown())

	assert.Equal(t, int32(32), completed.Load())
}

func TestFailureCallback(t *testing.T) {
	js, err := NewSystem(1, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	var got error
	js.Submit(Task{
		Name:    "broken",
		OnStart: func() (interface{}, error) { return nil, fmt.Errorf("decode error") },
		OnComplete: func(interface{}) {
			t.Error("OnComplete must not run for failed tasks")
		},
		OnFailure: func(err error) {
			got = err
			wg.Done()
		},
	})
	wg.Wait()
	require.NoError(t, js.Shutdown())

	assert.EqualError(t, got, "decode error")
}

func TestShutdownDrainsQueue(t *testing.T) {
	js, err := NewSystem(2, 64)
	require.NoError(t, err)

	var done atomic.Int32
	for i := 0; i < 20; i++ {
		js.Submit(Task{
			Name:    "drain",
			OnStart: func() (interface{}, error) { done.Add(1); return nil, nil },
		})
	}
	require.NoError(t, js.Shutdown())
	assert.Equal(t, int32(20), done.Load())
}
