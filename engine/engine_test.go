package engine

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestUpdateGameStopsLoopOnError(t *testing.T) {
	e := &Engine{
		gameInstance: &Game{
			FnUpdate: func(*Engine, float64) error {
				return errors.New("boom")
			},
		},
	}
	// A failing update stops the loop; the process stays alive so the
	// shutdown path can still run.
	assert.False(t, e.updateGame(0.016))
}

func TestUpdateGameContinuesWithoutCallback(t *testing.T) {
	e := &Engine{gameInstance: &Game{}}
	assert.True(t, e.updateGame(0.016))

	calls := 0
	e.gameInstance.FnUpdate = func(*Engine, float64) error {
		calls++
		return nil
	}
	assert.True(t, e.updateGame(0.016))
	assert.Equal(t, 1, calls)
}
