package core

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrSwapchainOutOfDate signals that the presentation surface changed and
	// the swapchain must be rebuilt before the next frame. It is consumed
	// inside the renderer and never reaches the caller of DrawFrame.
	ErrSwapchainOutOfDate = errors.New("swapchain out of date, recreation required")
	// ErrFrameSkipped is returned when the current frame cannot be drawn
	// (minimized window, recreation in progress) and should simply be retried.
	ErrFrameSkipped  = errors.New("frame skipped")
	ErrNoSuitableGPU = errors.New("no physical device meets the engine requirements")
)

// Assert panics with the formatted message when the condition does not hold.
// Used for programmer contract violations, not runtime failures.
func Assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}
