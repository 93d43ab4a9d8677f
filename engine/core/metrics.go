package core

import (
	"sync"

	"github.com/spaghettifunk/tessera/engine/containers"
)

const AVG_COUNT int = 30

// MetricsState keeps a rolling window of the most recent frame times and a
// once-per-second FPS figure.
type MetricsState struct {
	mstimes            *containers.RingQueue[float64]
	msavg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{
			mstimes: containers.NewRingQueue[float64](AVG_COUNT),
		}
	})
	return nil
}

func MetricsUpdate(frameElapsedTime float64) {
	// Calculate frame ms average over the rolling window.
	frameMS := frameElapsedTime * 1000.0
	metricsState.mstimes.Push(frameMS)

	sum := 0.0
	metricsState.mstimes.Each(func(ms float64) {
		sum += ms
	})
	metricsState.msavg = sum / float64(metricsState.mstimes.Len())

	// Calculate frames per second.
	metricsState.accumulatedFrameMS += frameMS
	if metricsState.accumulatedFrameMS > 1000 {
		metricsState.fps = float64(metricsState.frames)
		metricsState.accumulatedFrameMS -= 1000
		metricsState.frames = 0
	}

	// Count all frames.
	metricsState.frames++
}

func MetricsFPS() float64 {
	return metricsState.fps
}

func MetricsFrameTime() float64 {
	return metricsState.msavg
}

func MetricsFrame() (float64, float64) {
	return metricsState.fps, metricsState.msavg
}
